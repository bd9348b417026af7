package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/services"
)

// maxWebhookBody caps how much of a webhook payload is read before verification
const maxWebhookBody = 64 * 1024

// PaymentHandlers contains the payment intent and webhook handlers
type PaymentHandlers struct {
	paymentService *services.PaymentService
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(paymentService *services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService: paymentService,
	}
}

type createPaymentIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreatePaymentIntent requests a provider payment intent for the
// authenticated user and returns its client secret
func (h *PaymentHandlers) CreatePaymentIntent(c *gin.Context) {
	userID := c.GetString("userID")

	var req createPaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	clientSecret, err := h.paymentService.CreatePaymentIntent(userID, req.Amount, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment amount"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment intent"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
}

// HandleWebhook verifies and processes a provider webhook delivery. The raw
// body is read before any parsing so the signature covers the exact bytes
// sent by the provider.
func (h *PaymentHandlers) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	event, err := h.paymentService.ConstructEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	if err := h.paymentService.HandleEvent(event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
