package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Category represents a catalog category with bilingual names
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Slug      string    `db:"slug" json:"slug"`
	NameUz    string    `db:"name_uz" json:"name_uz"`
	NameRu    string    `db:"name_ru" json:"name_ru"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Product represents a catalog entry. Products are never hard-deleted;
// IsActive=false means removed from the storefront.
type Product struct {
	ID              int64               `db:"id" json:"id"`
	CategoryID      int64               `db:"category_id" json:"category_id"`
	Slug            string              `db:"slug" json:"slug"`
	NameUz          string              `db:"name_uz" json:"name_uz"`
	NameRu          string              `db:"name_ru" json:"name_ru"`
	DescriptionUz   string              `db:"description_uz" json:"description_uz,omitempty"`
	DescriptionRu   string              `db:"description_ru" json:"description_ru,omitempty"`
	Price           decimal.Decimal     `db:"price" json:"price"`
	OriginalPrice   decimal.NullDecimal `db:"original_price" json:"original_price,omitempty"`
	DiscountPercent int                 `db:"discount_percent" json:"discount_percent"`
	Stock           int                 `db:"stock" json:"stock"`
	Rating          decimal.Decimal     `db:"rating" json:"rating"`
	IsActive        bool                `db:"is_active" json:"is_active"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}

// CartItem associates a product with a quantity under exactly one owner:
// an anonymous session id or an authenticated user id.
type CartItem struct {
	ID        int64          `db:"id" json:"id"`
	SessionID sql.NullString `db:"session_id" json:"session_id,omitempty"`
	UserID    sql.NullInt64  `db:"user_id" json:"user_id,omitempty"`
	ProductID int64          `db:"product_id" json:"product_id"`
	Quantity  int            `db:"quantity" json:"quantity"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// CartLine is a cart item joined with its product for storefront display
// and for checkout pricing.
type CartLine struct {
	CartItem
	ProductSlug   string          `db:"product_slug" json:"product_slug"`
	ProductNameUz string          `db:"product_name_uz" json:"product_name_uz"`
	ProductNameRu string          `db:"product_name_ru" json:"product_name_ru"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// Order is an immutable snapshot of a checkout; only the status fields
// change after creation.
type Order struct {
	ID              int64           `db:"id" json:"id"`
	OrderNumber     string          `db:"order_number" json:"order_number"`
	SessionID       sql.NullString  `db:"session_id" json:"session_id,omitempty"`
	UserID          sql.NullInt64   `db:"user_id" json:"user_id,omitempty"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          string          `db:"status" json:"status"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	PaymentMethod   string          `db:"payment_method" json:"payment_method"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerPhone   string          `db:"customer_phone" json:"customer_phone"`
	ShippingAddress string          `db:"shipping_address" json:"shipping_address"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem is a denormalized line snapshot; later catalog price changes
// never alter historical orders.
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// Payment is the one-to-one settlement record for an order. It is created
// pending in the same transaction as the order and may leave pending at
// most once.
type Payment struct {
	ID            int64           `db:"id" json:"id"`
	OrderID       int64           `db:"order_id" json:"order_id"`
	Method        string          `db:"method" json:"method"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Status        string          `db:"status" json:"status"`
	CardNumber    sql.NullString  `db:"card_number" json:"card_number,omitempty"`
	TransactionID sql.NullString  `db:"transaction_id" json:"transaction_id,omitempty"`
	BankAccount   sql.NullString  `db:"bank_account" json:"bank_account,omitempty"`
	BankName      sql.NullString  `db:"bank_name" json:"bank_name,omitempty"`
	AccountHolder sql.NullString  `db:"account_holder" json:"account_holder,omitempty"`
	ProcessedAt   sql.NullTime    `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment methods
const (
	PaymentMethodQRCard       = "qr_card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCashDelivery = "cash_delivery"
)

// ProcessedEvent for notification-consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
