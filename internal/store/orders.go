package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"
)

// ErrPaymentAlreadyProcessed is returned when a payment has already left
// the pending status; a payment transitions out of pending at most once.
var ErrPaymentAlreadyProcessed = fmt.Errorf("payment already processed")

// CreateOrderTx persists the order, its denormalized line snapshots and
// the initial pending payment in a single transaction. Either all rows
// exist afterwards or none do.
func (s *Store) CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem, payment *models.Payment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (order_number, session_id, user_id, total_amount, status,
		                    payment_status, payment_method, customer_name, customer_phone,
		                    shipping_address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *`,
		order.OrderNumber, order.SessionID, order.UserID, order.TotalAmount,
		order.Status, order.PaymentStatus, order.PaymentMethod, order.CustomerName,
		order.CustomerPhone, order.ShippingAddress, order.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.GetContext(ctx, &items[i].ID, `
			INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			items[i].OrderID, items[i].ProductID, items[i].ProductName,
			items[i].UnitPrice, items[i].Quantity, items[i].Subtotal)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	payment.OrderID = order.ID
	err = tx.GetContext(ctx, payment, `
		INSERT INTO payments (order_id, method, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING *`,
		payment.OrderID, payment.Method, payment.Amount, payment.Status)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderNumberExists reports whether an order number is already taken
func (s *Store) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)", number)
	return exists, err
}

// GetOrderItemsByOrderID retrieves all line snapshots for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetPaymentByOrderID retrieves the payment for an order
func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE order_id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment not found for order: %d", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// PaymentResult carries the method-specific fields stamped onto a payment
// when it leaves pending.
type PaymentResult struct {
	CardNumber    string
	TransactionID string
	BankAccount   string
	BankName      string
	AccountHolder string
}

// CompletePaymentTx flips a pending payment to completed and the order to
// confirmed in one transaction. The WHERE status = 'pending' guard makes
// the transition single-shot even under concurrent confirmations.
func (s *Store) CompletePaymentTx(ctx context.Context, orderID int64, result PaymentResult) (*models.Payment, error) {
	return s.finishPaymentTx(ctx, orderID, models.PaymentStatusCompleted, models.OrderStatusConfirmed, result)
}

// FailPaymentTx flips a pending payment to failed, leaving the order
// status untouched so the customer can retry with another method by
// placing a new order.
func (s *Store) FailPaymentTx(ctx context.Context, orderID int64, result PaymentResult) (*models.Payment, error) {
	return s.finishPaymentTx(ctx, orderID, models.PaymentStatusFailed, "", result)
}

func (s *Store) finishPaymentTx(ctx context.Context, orderID int64, paymentStatus, orderStatus string, result PaymentResult) (*models.Payment, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var payment models.Payment
	err = tx.GetContext(ctx, &payment, `
		UPDATE payments
		SET status = $1,
		    card_number = NULLIF($2, ''),
		    transaction_id = NULLIF($3, ''),
		    bank_account = NULLIF($4, ''),
		    bank_name = NULLIF($5, ''),
		    account_holder = NULLIF($6, ''),
		    processed_at = NOW(),
		    updated_at = NOW()
		WHERE order_id = $7 AND status = $8
		RETURNING *`,
		paymentStatus, result.CardNumber, result.TransactionID, result.BankAccount,
		result.BankName, result.AccountHolder, orderID, models.PaymentStatusPending)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentAlreadyProcessed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if orderStatus != "" {
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET status = $1, payment_status = $2, updated_at = NOW()
			WHERE id = $3`, orderStatus, paymentStatus, orderID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET payment_status = $1, updated_at = NOW()
			WHERE id = $2`, paymentStatus, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order payment status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &payment, nil
}

// IsEventProcessed checks if a notification event has been handled
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks a notification event as handled
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
