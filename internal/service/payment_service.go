package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/config"
	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cardPrefixes are the two domestic card networks accepted for QR-card
// payments: UzCard and Humo.
var cardPrefixes = []string{"8600", "9860"}

// PaymentService dispatches to the three payment method handlers. A
// payment leaves pending at most once; the database guard plus a short
// Redis lock per order enforce that under concurrent requests.
type PaymentService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	cfg            config.PaymentsConfig
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(store *store.Store, redis *redisclient.Client, eventPublisher *broker.EventPublisher, cfg config.PaymentsConfig) *PaymentService {
	return &PaymentService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		logger:         util.GetLogger(),
	}
}

// ValidateCardNumber reports whether a QR-card number is acceptable:
// exactly 16 digits starting with an UzCard or Humo issuer prefix.
// Spaces are tolerated and stripped.
func ValidateCardNumber(cardNumber string) bool {
	digits := make([]byte, 0, len(cardNumber))
	for i := 0; i < len(cardNumber); i++ {
		c := cardNumber[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == ' ':
		default:
			return false
		}
	}

	if len(digits) != 16 {
		return false
	}
	for _, prefix := range cardPrefixes {
		if string(digits[:4]) == prefix {
			return true
		}
	}
	return false
}

// BankDetails is the static destination account returned to customers
// paying by bank transfer.
type BankDetails struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	MFO           string `json:"mfo"`
	AccountHolder string `json:"account_holder"`
}

// BankTransferDetails is the customer-side payload for a bank transfer
type BankTransferDetails struct {
	AccountNumber string `json:"account_number" binding:"required"`
	BankName      string `json:"bank_name" binding:"required"`
	AccountHolder string `json:"account_holder" binding:"required"`
}

// PaymentOutcome is returned by every handler
type PaymentOutcome struct {
	Payment     *models.Payment `json:"payment"`
	BankDetails *BankDetails    `json:"bank_details,omitempty"`
}

// ProcessQRCard validates the card number format and completes the
// payment locally; there is no gateway call, settlement is manual. A
// format failure marks the payment failed.
func (ps *PaymentService) ProcessQRCard(ctx context.Context, orderID int64, cardNumber, senderName string) (*PaymentOutcome, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ProcessQRCard")
	defer span.End()

	return ps.process(ctx, orderID, models.PaymentMethodQRCard, func(order *models.Order) (*models.Payment, error) {
		if !ValidateCardNumber(cardNumber) {
			payment, err := ps.store.FailPaymentTx(ctx, orderID, store.PaymentResult{CardNumber: cardNumber})
			if err != nil {
				return nil, err
			}
			ps.publishFailed(ctx, order, payment, "invalid_card_number")
			util.PaymentsFailedTotal.WithLabelValues(models.PaymentMethodQRCard).Inc()
			return payment, ErrInvalidCardNumber
		}

		transactionID := fmt.Sprintf("TXN-%s", uuid.New().String()[:8])
		payment, err := ps.store.CompletePaymentTx(ctx, orderID, store.PaymentResult{
			CardNumber:    cardNumber,
			TransactionID: transactionID,
			AccountHolder: senderName,
		})
		if err != nil {
			return nil, err
		}

		ps.logger.Info("QR-card payment completed",
			zap.Int64("order_id", orderID),
			zap.String("transaction_id", transactionID))
		return payment, nil
	})
}

// ProcessBankTransfer records the customer's bank details, marks the
// payment initiated and hands back the static destination account for the
// out-of-band transfer. Fund receipt is never verified by this system.
func (ps *PaymentService) ProcessBankTransfer(ctx context.Context, orderID int64, details BankTransferDetails) (*PaymentOutcome, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ProcessBankTransfer")
	defer span.End()

	if details.AccountNumber == "" || details.BankName == "" || details.AccountHolder == "" {
		return nil, ErrMissingBankDetails
	}

	outcome, err := ps.process(ctx, orderID, models.PaymentMethodBankTransfer, func(order *models.Order) (*models.Payment, error) {
		payment, err := ps.store.CompletePaymentTx(ctx, orderID, store.PaymentResult{
			BankAccount:   details.AccountNumber,
			BankName:      details.BankName,
			AccountHolder: details.AccountHolder,
		})
		if err != nil {
			return nil, err
		}
		ps.logger.Info("Bank transfer initiated", zap.Int64("order_id", orderID))
		return payment, nil
	})
	if err != nil {
		return outcome, err
	}

	destination := ps.DestinationBankDetails()
	outcome.BankDetails = &destination
	return outcome, nil
}

// ProcessCashDelivery confirms immediately; settlement happens in the
// real world at delivery time.
func (ps *PaymentService) ProcessCashDelivery(ctx context.Context, orderID int64) (*PaymentOutcome, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ProcessCashDelivery")
	defer span.End()

	return ps.process(ctx, orderID, models.PaymentMethodCashDelivery, func(order *models.Order) (*models.Payment, error) {
		payment, err := ps.store.CompletePaymentTx(ctx, orderID, store.PaymentResult{})
		if err != nil {
			return nil, err
		}
		ps.logger.Info("Cash-on-delivery confirmed", zap.Int64("order_id", orderID))
		return payment, nil
	})
}

// process wraps a method handler with the shared machinery: order lookup,
// per-order lock, the pending guard, metrics and the completed event.
func (ps *PaymentService) process(ctx context.Context, orderID int64, method string, handle func(*models.Order) (*models.Payment, error)) (*PaymentOutcome, error) {
	util.PaymentAttemptsTotal.WithLabelValues(method).Inc()
	start := time.Now()
	defer func() {
		util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	order, err := ps.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	locked, err := ps.redis.AcquirePaymentLock(ctx, orderID, ps.cfg.LockTTL)
	if err != nil {
		ps.logger.Warn("Payment lock unavailable, relying on database guard",
			zap.Int64("order_id", orderID), zap.Error(err))
	} else if !locked {
		return nil, ErrPaymentInProgress
	} else {
		defer func() {
			if err := ps.redis.ReleasePaymentLock(context.Background(), orderID); err != nil {
				ps.logger.Warn("Failed to release payment lock", zap.Error(err))
			}
		}()
	}

	existing, err := ps.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.PaymentStatusPending {
		return nil, ErrPaymentAlreadyProcessed
	}

	payment, err := handle(order)
	if errors.Is(err, store.ErrPaymentAlreadyProcessed) {
		return nil, ErrPaymentAlreadyProcessed
	}
	if err != nil {
		return &PaymentOutcome{Payment: payment}, err
	}

	util.PaymentsCompletedTotal.WithLabelValues(method).Inc()
	ps.publishCompleted(ctx, order, payment)

	return &PaymentOutcome{Payment: payment}, nil
}

func (ps *PaymentService) publishCompleted(ctx context.Context, order *models.Order, payment *models.Payment) {
	event := &models.PaymentCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentCompleted,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		PaymentID:     payment.ID,
		Method:        payment.Method,
		Amount:        payment.Amount,
		TransactionID: payment.TransactionID.String,
	}
	if err := ps.eventPublisher.PublishPaymentCompleted(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentCompleted event", zap.Error(err))
	}
}

func (ps *PaymentService) publishFailed(ctx context.Context, order *models.Order, payment *models.Payment, reason string) {
	event := &models.PaymentFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentFailed,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		PaymentID:   payment.ID,
		Method:      payment.Method,
		Reason:      reason,
	}
	if err := ps.eventPublisher.PublishPaymentFailed(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentFailed event", zap.Error(err))
	}
}

// DestinationBankDetails returns the static transfer destination account
func (ps *PaymentService) DestinationBankDetails() BankDetails {
	return BankDetails{
		AccountNumber: ps.cfg.BankAccountNumber,
		BankName:      ps.cfg.BankName,
		MFO:           ps.cfg.BankMFO,
		AccountHolder: ps.cfg.AccountHolder,
	}
}

// PaymentMethod is a storefront-facing method descriptor
type PaymentMethod struct {
	ID      string `json:"id"`
	LabelUz string `json:"label_uz"`
	LabelRu string `json:"label_ru"`
}

// PaymentMethods returns the enabled methods with bilingual labels
func (ps *PaymentService) PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: models.PaymentMethodQRCard, LabelUz: "QR-karta (UzCard/Humo)", LabelRu: "QR-карта (UzCard/Humo)"},
		{ID: models.PaymentMethodBankTransfer, LabelUz: "Bank o'tkazmasi", LabelRu: "Банковский перевод"},
		{ID: models.PaymentMethodCashDelivery, LabelUz: "Yetkazib berishda naqd to'lov", LabelRu: "Наличными при доставке"},
	}
}
