package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-backend/config"
	"storefront-backend/internal/models"
)

// webhookTolerance bounds how old a signed webhook timestamp may be
const webhookTolerance = 5 * time.Minute

// PaymentService handles the Stripe integration: payment intent creation
// and webhook reconciliation
type PaymentService struct {
	config *config.Config
	client *http.Client
	orders *OrderService
	events *OrderEventsService
	now    func() time.Time
}

// NewPaymentService creates a new payment service. The events hub is
// optional; when present, reconciled orders are pushed to connected clients.
func NewPaymentService(cfg *config.Config, orders *OrderService, events *OrderEventsService) *PaymentService {
	return &PaymentService{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		orders: orders,
		events: events,
		now:    time.Now,
	}
}

// PaymentIntent represents the provider-side payment intent
type PaymentIntent struct {
	ID           string            `json:"id"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	ReceiptEmail string            `json:"receipt_email"`
	Metadata     map[string]string `json:"metadata"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreatePaymentIntent requests a provider payment intent for the given
// amount (in major currency units) tagged with the user's ID, and returns
// the intent's client secret.
func (s *PaymentService) CreatePaymentIntent(userID string, amount float64, currency string) (string, error) {
	if userID == "" {
		return "", ErrUnauthorized
	}
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if currency == "" {
		currency = "usd"
	}

	// Convert to minor currency units
	minorUnits := int64(math.Round(amount * 100))

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minorUnits, 10))
	form.Set("currency", currency)
	form.Set("metadata[userId]", userID)

	req, err := http.NewRequest("POST", s.config.StripeBaseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.StripeSecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call payment provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp stripeErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("payment provider error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return "", fmt.Errorf("failed to decode intent response: %w", err)
	}
	if intent.ClientSecret == "" {
		return "", fmt.Errorf("empty client secret received")
	}

	return intent.ClientSecret, nil
}

// WebhookEvent represents a provider webhook event
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ConstructEvent verifies the webhook signature header against the shared
// webhook secret and parses the event. Verification fails closed: any
// malformed or mismatched signature yields ErrInvalidSignature; a verified
// but unparseable payload yields ErrInvalidPayload.
//
// The header carries a timestamp and one or more v1 signatures:
// t=<unix>,v1=<hex hmac-sha256 of "<unix>.<payload>">
func (s *PaymentService) ConstructEvent(payload []byte, sigHeader string) (*WebhookEvent, error) {
	if sigHeader == "" || s.config.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("missing signature or webhook secret: %w", ErrInvalidSignature)
	}

	var timestamp int64 = -1
	var signatures [][]byte

	for _, part := range strings.Split(sigHeader, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			ts, err := strconv.ParseInt(pair[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed timestamp: %w", ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(pair[1])
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return nil, fmt.Errorf("signature header incomplete: %w", ErrInvalidSignature)
	}

	if s.now().Sub(time.Unix(timestamp, 0)) > webhookTolerance {
		return nil, fmt.Errorf("signature timestamp too old: %w", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(s.config.StripeWebhookSecret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	verified := false
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			verified = true
			break
		}
	}
	if !verified {
		return nil, fmt.Errorf("no matching signature: %w", ErrInvalidSignature)
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", ErrInvalidPayload)
	}

	return &event, nil
}

// HandleEvent processes a verified webhook event. Payment-succeeded events
// reconcile the matching order; everything else is acknowledged and ignored.
func (s *PaymentService) HandleEvent(event *WebhookEvent) error {
	switch event.Type {
	case "payment_intent.succeeded":
		var intent PaymentIntent
		if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
			return fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return s.reconcile(&intent)

	default:
		log.Printf("Unhandled webhook event type: %s", event.Type)
		return nil
	}
}

// reconcile matches a succeeded payment intent to the user's most recent
// unpaid order of equal total and marks it paid. An unmatched event is
// acknowledged without touching any state.
func (s *PaymentService) reconcile(intent *PaymentIntent) error {
	userID := intent.Metadata["userId"]
	amount := float64(intent.Amount) / 100

	order, err := s.orders.FindUnpaidOrder(userID, amount)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("No unpaid order matches payment %s (user=%s amount=%.2f)", intent.ID, userID, amount)
			return nil
		}
		return err
	}

	result := &models.PaymentResult{
		ID:           intent.ID,
		Status:       intent.Status,
		EmailAddress: intent.ReceiptEmail,
	}
	if err := s.orders.MarkPaid(order.ID, result); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost a race with a concurrent delivery of the same event
			return nil
		}
		return err
	}

	log.Printf("Order %s marked paid (payment=%s)", order.ID, intent.ID)

	if s.events != nil {
		s.events.NotifyOrderPaid(order.UserID, order.ID, order.TotalPrice)
	}

	return nil
}
