package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated     = "ORDER_CREATED"
	EventTypePaymentCompleted = "PAYMENT_COMPLETED"
	EventTypePaymentFailed    = "PAYMENT_FAILED"
	EventTypeMarketingDigest  = "MARKETING_DIGEST"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when checkout creates an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Items         []OrderLineData `json:"items"`
}

// PaymentCompletedEvent published when a payment leaves pending as completed
type PaymentCompletedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	PaymentID     int64           `json:"payment_id"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// PaymentFailedEvent published when a payment leaves pending as failed
type PaymentFailedEvent struct {
	BaseEvent
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	PaymentID   int64  `json:"payment_id"`
	Method      string `json:"method"`
	Reason      string `json:"reason"`
}

// MarketingDigestEvent published by the scheduler for channel posting
type MarketingDigestEvent struct {
	BaseEvent
	Products []DigestProduct `json:"products"`
}

// OrderLineData represents line data carried in events
type OrderLineData struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// DigestProduct is the slice of catalog data posted to the channel
type DigestProduct struct {
	Slug            string          `json:"slug"`
	NameUz          string          `json:"name_uz"`
	NameRu          string          `json:"name_ru"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent int             `json:"discount_percent"`
}
