package notifier

import (
	"fmt"
	"strings"

	"storefront-service/internal/models"
)

var methodLabels = map[string]string{
	models.PaymentMethodQRCard:       "QR-karta",
	models.PaymentMethodBankTransfer: "Bank o'tkazmasi",
	models.PaymentMethodCashDelivery: "Naqd (yetkazishda)",
}

// FormatOrderCreated renders the channel post for a new order
func FormatOrderCreated(event *models.OrderCreatedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 <b>Yangi buyurtma</b> %s\n", event.OrderNumber)
	fmt.Fprintf(&b, "Mijoz: %s (%s)\n", event.CustomerName, event.CustomerPhone)
	fmt.Fprintf(&b, "To'lov usuli: %s\n", methodLabel(event.PaymentMethod))
	for _, item := range event.Items {
		fmt.Fprintf(&b, "• %s × %d = %s so'm\n", item.ProductName, item.Quantity, item.Subtotal.StringFixed(0))
	}
	fmt.Fprintf(&b, "<b>Jami: %s so'm</b>", event.TotalAmount.StringFixed(0))
	return b.String()
}

// FormatPaymentCompleted renders the channel post for a completed payment
func FormatPaymentCompleted(event *models.PaymentCompletedEvent) string {
	msg := fmt.Sprintf("✅ <b>To'lov qabul qilindi</b> %s\nUsul: %s\nSumma: %s so'm",
		event.OrderNumber, methodLabel(event.Method), event.Amount.StringFixed(0))
	if event.TransactionID != "" {
		msg += fmt.Sprintf("\nTranzaksiya: %s", event.TransactionID)
	}
	return msg
}

// FormatPaymentFailed renders the channel post for a failed payment
func FormatPaymentFailed(event *models.PaymentFailedEvent) string {
	return fmt.Sprintf("❌ <b>To'lov amalga oshmadi</b> %s\nUsul: %s\nSabab: %s",
		event.OrderNumber, methodLabel(event.Method), event.Reason)
}

// FormatMarketingDigest renders the periodic catalog digest post
func FormatMarketingDigest(event *models.MarketingDigestEvent) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Haftalik aksiyalar / Акции недели</b>\n")
	for _, p := range event.Products {
		fmt.Fprintf(&b, "• %s / %s — %s so'm (-%d%%)\n",
			p.NameUz, p.NameRu, p.Price.StringFixed(0), p.DiscountPercent)
	}
	return b.String()
}

func methodLabel(method string) string {
	if label, ok := methodLabels[method]; ok {
		return label
	}
	return method
}
