package service

import (
	"github.com/shopspring/decimal"

	"storefront-service/internal/models"
)

// MinimumOrderAmount is the wholesale checkout threshold in sum.
var MinimumOrderAmount = decimal.NewFromInt(500000)

// GateResult is the outcome of evaluating a cart against the wholesale
// minimum. Remaining is zero once the threshold is met.
type GateResult struct {
	Total       decimal.Decimal `json:"total"`
	CanCheckout bool            `json:"can_checkout"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// EvaluateGate computes the cart total and whether checkout is permitted.
// Pure function; exact decimal arithmetic throughout. An empty cart never
// passes, a cart exactly at the threshold does.
func EvaluateGate(lines []models.CartLine) GateResult {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if len(lines) == 0 || total.LessThan(MinimumOrderAmount) {
		remaining := MinimumOrderAmount.Sub(total)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		return GateResult{Total: total, CanCheckout: false, Remaining: remaining}
	}

	return GateResult{Total: total, CanCheckout: true, Remaining: decimal.Zero}
}
