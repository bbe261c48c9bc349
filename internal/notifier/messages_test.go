package notifier

import (
	"testing"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatOrderCreated(t *testing.T) {
	event := &models.OrderCreatedEvent{
		OrderNumber:   "ORD-20260829-A1B2C3",
		TotalAmount:   decimal.NewFromInt(600000),
		PaymentMethod: models.PaymentMethodQRCard,
		CustomerName:  "Aziz",
		CustomerPhone: "+998901234567",
		Items: []models.OrderLineData{{
			ProductName: "Un 50kg",
			Quantity:    3,
			UnitPrice:   decimal.NewFromInt(200000),
			Subtotal:    decimal.NewFromInt(600000),
		}},
	}

	msg := FormatOrderCreated(event)

	assert.Contains(t, msg, "ORD-20260829-A1B2C3")
	assert.Contains(t, msg, "Aziz")
	assert.Contains(t, msg, "Un 50kg × 3")
	assert.Contains(t, msg, "600000 so'm")
	assert.Contains(t, msg, "QR-karta")
}

func TestFormatPaymentCompletedWithTransaction(t *testing.T) {
	event := &models.PaymentCompletedEvent{
		OrderNumber:   "ORD-20260829-A1B2C3",
		Method:        models.PaymentMethodQRCard,
		Amount:        decimal.NewFromInt(600000),
		TransactionID: "TXN-12ab34cd",
	}

	msg := FormatPaymentCompleted(event)

	assert.Contains(t, msg, "ORD-20260829-A1B2C3")
	assert.Contains(t, msg, "TXN-12ab34cd")
}

func TestFormatPaymentCompletedWithoutTransaction(t *testing.T) {
	event := &models.PaymentCompletedEvent{
		OrderNumber: "ORD-20260829-A1B2C3",
		Method:      models.PaymentMethodCashDelivery,
		Amount:      decimal.NewFromInt(600000),
	}

	msg := FormatPaymentCompleted(event)

	assert.Contains(t, msg, "Naqd")
	assert.NotContains(t, msg, "Tranzaksiya")
}

func TestFormatPaymentFailed(t *testing.T) {
	event := &models.PaymentFailedEvent{
		OrderNumber: "ORD-20260829-A1B2C3",
		Method:      models.PaymentMethodQRCard,
		Reason:      "invalid_card_number",
	}

	msg := FormatPaymentFailed(event)

	assert.Contains(t, msg, "invalid_card_number")
	assert.Contains(t, msg, "ORD-20260829-A1B2C3")
}

func TestFormatMarketingDigest(t *testing.T) {
	event := &models.MarketingDigestEvent{
		Products: []models.DigestProduct{{
			NameUz:          "Shakar 25kg",
			NameRu:          "Сахар 25кг",
			Price:           decimal.NewFromInt(300000),
			DiscountPercent: 15,
		}},
	}

	msg := FormatMarketingDigest(event)

	assert.Contains(t, msg, "Shakar 25kg")
	assert.Contains(t, msg, "Сахар 25кг")
	assert.Contains(t, msg, "-15%")
}
