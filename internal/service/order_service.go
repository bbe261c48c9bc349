package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// orderStore is the slice of the store the order flow touches.
type orderStore interface {
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem, payment *models.Payment) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	GetPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error)
}

type orderEvents interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
}

// OrderService converts a validated cart into a persisted order with its
// initial pending payment.
type OrderService struct {
	store          orderStore
	eventPublisher orderEvents
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a checkout submission: the client's cart
// snapshot plus contact and shipping details. Client-submitted prices and
// totals are informational only; every line is re-priced from the
// catalog before anything is persisted.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1"`
	PaymentMethod   string             `json:"payment_method" binding:"required,oneof=qr_card bank_transfer cash_delivery"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	CustomerName    string             `json:"customer_name" binding:"required"`
	CustomerPhone   string             `json:"customer_phone" binding:"required"`
	ShippingAddress string             `json:"shipping_address" binding:"required"`
	Notes           string             `json:"notes"`
}

// OrderItemRequest represents one submitted cart line
type OrderItemRequest struct {
	ProductID int64           `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderResponse represents the response after checkout
type CreateOrderResponse struct {
	OrderID       int64           `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
}

// CreateOrder snapshots the submitted cart into an order. Lines are
// re-priced from the catalog and the minimum-order gate is re-validated
// here, not trusted from the client. Order and pending payment land in
// one transaction; the OrderCreated event is published best-effort
// afterwards.
func (s *OrderService) CreateOrder(ctx context.Context, owner store.CartOwner, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if len(req.Items) == 0 {
		util.CheckoutRejectedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	products, err := s.repriceItems(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	lines := make([]models.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		product := products[item.ProductID]
		lines = append(lines, models.CartLine{
			CartItem:      models.CartItem{ProductID: item.ProductID, Quantity: item.Quantity},
			ProductNameUz: product.NameUz,
			UnitPrice:     product.Price,
		})
	}

	gate := EvaluateGate(lines)
	if !gate.CanCheckout {
		util.CheckoutRejectedTotal.WithLabelValues("below_minimum").Inc()
		return nil, minimumOrderError(gate)
	}

	if !req.TotalAmount.IsZero() && !req.TotalAmount.Equal(gate.Total) {
		s.logger.Info("Client total disagrees with catalog pricing",
			zap.String("client_total", req.TotalAmount.String()),
			zap.String("server_total", gate.Total.String()))
	}

	orderNumber, err := s.generateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	eventItems := make([]models.OrderLineData, 0, len(lines))
	for _, line := range lines {
		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductNameUz,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    subtotal,
		})
		eventItems = append(eventItems, models.OrderLineData{
			ProductID:   line.ProductID,
			ProductName: line.ProductNameUz,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    subtotal,
		})
	}

	order := &models.Order{
		OrderNumber:     orderNumber,
		SessionID:       sql.NullString{String: owner.SessionID, Valid: owner.UserID == 0},
		UserID:          sql.NullInt64{Int64: owner.UserID, Valid: owner.UserID > 0},
		TotalAmount:     gate.Total,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}

	payment := &models.Payment{
		Method: req.PaymentMethod,
		Amount: gate.Total,
		Status: models.PaymentStatusPending,
	}

	if err := s.store.CreateOrderTx(ctx, order, items, payment); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.String()))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Items:         eventItems,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &CreateOrderResponse{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

// repriceItems resolves every submitted product against the catalog.
// Client prices never reach this point; the catalog price is
// authoritative. A missing or inactive product rejects the checkout.
func (s *OrderService) repriceItems(ctx context.Context, items []OrderItemRequest) (map[int64]*models.Product, error) {
	productIDs := make([]int64, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	productMap := make(map[int64]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	for _, item := range items {
		if _, ok := productMap[item.ProductID]; !ok {
			return nil, fmt.Errorf("product not found: %d", item.ProductID)
		}
	}

	return productMap, nil
}

// newOrderNumber builds a date-encoded human-readable order number with
// a random suffix.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// generateOrderNumber retries newOrderNumber until unused. Uniqueness is
// ultimately backed by the orders.order_number unique constraint;
// collisions get a few retries.
func (s *OrderService) generateOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		number := newOrderNumber(time.Now())

		exists, err := s.store.OrderNumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check order number: %w", err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique order number")
}

// OrderDetail bundles an order with its lines and payment
type OrderDetail struct {
	Order   *models.Order      `json:"order"`
	Items   []models.OrderItem `json:"items"`
	Payment *models.Payment    `json:"payment"`
}

// GetOrder retrieves an order with items and payment
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*OrderDetail, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payment, err := s.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderDetail{Order: order, Items: items, Payment: payment}, nil
}
