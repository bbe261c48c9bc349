package service

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderStore struct {
	products []models.Product

	createCalls int
	lastOrder   *models.Order
	lastItems   []models.OrderItem
	lastPayment *models.Payment
}

func (f *fakeOrderStore) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeOrderStore) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	return false, nil
}

func (f *fakeOrderStore) CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem, payment *models.Payment) error {
	f.createCalls++
	f.lastOrder = order
	f.lastItems = items
	f.lastPayment = payment
	order.ID = 7
	payment.OrderID = order.ID
	return nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return f.lastOrder, nil
}

func (f *fakeOrderStore) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	return f.lastItems, nil
}

func (f *fakeOrderStore) GetPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	return f.lastPayment, nil
}

type fakeOrderEvents struct {
	published []*models.OrderCreatedEvent
}

func (f *fakeOrderEvents) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	f.published = append(f.published, event)
	return nil
}

func newTestOrderService(fk *fakeOrderStore, events *fakeOrderEvents) *OrderService {
	return &OrderService{store: fk, eventPublisher: events, logger: zap.NewNop()}
}

func TestCreateOrderBelowMinimumWritesNothing(t *testing.T) {
	fk := &fakeOrderStore{products: []models.Product{
		{ID: 1, NameUz: "Guruch 10kg", Price: decimal.NewFromInt(100000)},
	}}
	events := &fakeOrderEvents{}
	svc := newTestOrderService(fk, events)

	// The client claims an above-threshold unit price; the catalog says
	// 2 × 100000 = 200000, under the 500000 minimum.
	req := &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(400000)},
		},
		PaymentMethod:   models.PaymentMethodCashDelivery,
		CustomerName:    "Test",
		CustomerPhone:   "+998901234567",
		ShippingAddress: "Tashkent",
	}

	resp, err := svc.CreateOrder(context.Background(), store.CartOwner{SessionID: "sess-1"}, req)
	require.Error(t, err)
	assert.Nil(t, resp)

	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "MINIMUM_ORDER_NOT_REACHED", bizErr.Code)
	require.NotNil(t, bizErr.Total)
	require.NotNil(t, bizErr.Remaining)
	assert.True(t, bizErr.Total.Equal(decimal.NewFromInt(200000)))
	assert.True(t, bizErr.Remaining.Equal(decimal.NewFromInt(300000)))

	// Nothing reached the store or the broker.
	assert.Zero(t, fk.createCalls)
	assert.Empty(t, events.published)
}

func TestMinimumOrderRejectionPayloadCarriesShortfall(t *testing.T) {
	gate := EvaluateGate([]models.CartLine{{
		CartItem:  models.CartItem{ProductID: 1, Quantity: 1},
		UnitPrice: decimal.NewFromInt(350000),
	}})
	require.False(t, gate.CanCheckout)

	body, err := json.Marshal(minimumOrderError(gate))
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "MINIMUM_ORDER_NOT_REACHED", payload["error"])
	assert.Equal(t, "350000", payload["total"])
	assert.Equal(t, "150000", payload["remaining"])
	assert.NotEmpty(t, payload["message_uz"])
	assert.NotEmpty(t, payload["message_ru"])
}

func TestCreateOrderPersistsCatalogPrices(t *testing.T) {
	fk := &fakeOrderStore{products: []models.Product{
		{ID: 1, NameUz: "Guruch 10kg", Price: decimal.NewFromInt(300000)},
		{ID: 2, NameUz: "Yog' 5l", Price: decimal.NewFromInt(150000)},
	}}
	events := &fakeOrderEvents{}
	svc := newTestOrderService(fk, events)

	// Client-submitted unit prices and total are nonsense on purpose.
	req := &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
			{ProductID: 2, Quantity: 2, UnitPrice: decimal.NewFromInt(1)},
		},
		PaymentMethod:   models.PaymentMethodBankTransfer,
		TotalAmount:     decimal.NewFromInt(3),
		CustomerName:    "Test",
		CustomerPhone:   "+998901234567",
		ShippingAddress: "Tashkent",
	}

	resp, err := svc.CreateOrder(context.Background(), store.CartOwner{UserID: 42}, req)
	require.NoError(t, err)

	require.Equal(t, 1, fk.createCalls)
	require.Len(t, fk.lastItems, 2)
	assert.True(t, fk.lastItems[0].UnitPrice.Equal(decimal.NewFromInt(300000)))
	assert.True(t, fk.lastItems[1].UnitPrice.Equal(decimal.NewFromInt(150000)))
	assert.True(t, fk.lastItems[1].Subtotal.Equal(decimal.NewFromInt(300000)))

	total := decimal.NewFromInt(600000)
	assert.True(t, fk.lastOrder.TotalAmount.Equal(total))
	assert.True(t, fk.lastPayment.Amount.Equal(total))
	assert.Equal(t, models.PaymentStatusPending, fk.lastPayment.Status)
	assert.True(t, resp.TotalAmount.Equal(total))

	require.Len(t, events.published, 1)
	assert.True(t, events.published[0].TotalAmount.Equal(total))
}

func TestNewOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-20260829-[0-9A-F]{6}$`)

	for i := 0; i < 20; i++ {
		number := newOrderNumber(now)
		assert.Regexp(t, pattern, number)
	}
}

func TestNewOrderNumberVaries(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[newOrderNumber(now)] = true
	}
	// Random suffixes; a same-instant collision across 50 draws would be
	// astronomically unlucky.
	assert.Greater(t, len(seen), 1)
}
