package models

import "time"

// ShippingAddress represents the delivery address attached to an order
type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PaymentResult holds the provider's view of a completed payment
type PaymentResult struct {
	ID           string `json:"id" db:"payment_id"`
	Status       string `json:"status" db:"payment_status"`
	EmailAddress string `json:"email_address" db:"payment_email"`
}

// OrderItem is a frozen snapshot of a product at order time
type OrderItem struct {
	ID        string  `json:"id" db:"id"`
	OrderID   string  `json:"orderId" db:"order_id"`
	ProductID string  `json:"product" db:"product_id"`
	Name      string  `json:"name" db:"name"`
	Price     float64 `json:"price" db:"price"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Image     string  `json:"image" db:"image"`
}

// Order represents a persisted checkout
type Order struct {
	ID              string          `json:"id" db:"id"`
	UserID          string          `json:"user" db:"user_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	TotalPrice      float64         `json:"totalPrice" db:"total_price"`
	IsPaid          bool            `json:"isPaid" db:"is_paid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	IsDelivered     bool            `json:"isDelivered" db:"is_delivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItemInput is one checkout line item as sent by the client
type OrderItemInput struct {
	ProductID string  `json:"product" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"min=1"`
	Image     string  `json:"image"`
}

// OrderCreation represents data for creating a new order
type OrderCreation struct {
	Items           []OrderItemInput `json:"items" validate:"required"`
	ShippingAddress ShippingAddress  `json:"shippingAddress"`
	TotalPrice      float64          `json:"totalPrice" validate:"gte=0"`
}

// GetTotalItems returns the total number of units in the order
func (o *Order) GetTotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
