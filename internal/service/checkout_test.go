package service

import (
	"testing"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(quantity int, price string) models.CartLine {
	return models.CartLine{
		CartItem:  models.CartItem{Quantity: quantity},
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestEvaluateGateEmptyCart(t *testing.T) {
	result := EvaluateGate(nil)

	assert.False(t, result.CanCheckout)
	assert.True(t, result.Total.IsZero())
	assert.True(t, result.Remaining.Equal(MinimumOrderAmount))
}

func TestEvaluateGateBelowThreshold(t *testing.T) {
	result := EvaluateGate([]models.CartLine{line(1, "100000")})

	assert.False(t, result.CanCheckout)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(100000)))
	assert.True(t, result.Remaining.Equal(decimal.NewFromInt(400000)))
}

func TestEvaluateGateExactlyAtThreshold(t *testing.T) {
	result := EvaluateGate([]models.CartLine{line(5, "100000")})

	assert.True(t, result.CanCheckout)
	assert.True(t, result.Total.Equal(MinimumOrderAmount))
	assert.True(t, result.Remaining.IsZero())
}

func TestEvaluateGateAboveThreshold(t *testing.T) {
	result := EvaluateGate([]models.CartLine{line(3, "200000")})

	assert.True(t, result.CanCheckout)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(600000)))
	assert.True(t, result.Remaining.IsZero())
}

func TestEvaluateGateSumsMultipleLines(t *testing.T) {
	result := EvaluateGate([]models.CartLine{
		line(2, "150000"),
		line(1, "99999.99"),
		line(4, "25000.50"),
	})

	// 300000 + 99999.99 + 100002 = 500001.99
	assert.True(t, result.Total.Equal(decimal.RequireFromString("500001.99")))
	assert.True(t, result.CanCheckout)
	assert.True(t, result.Remaining.IsZero())
}

func TestEvaluateGateDecimalExactness(t *testing.T) {
	// Ten lines of 49999.999 must come out one sum short of the
	// threshold, something float64 accumulation cannot promise.
	lines := make([]models.CartLine, 10)
	for i := range lines {
		lines[i] = line(1, "49999.999")
	}

	result := EvaluateGate(lines)

	assert.False(t, result.CanCheckout)
	assert.True(t, result.Total.Equal(decimal.RequireFromString("499999.99")))
	assert.True(t, result.Remaining.Equal(decimal.RequireFromString("0.01")))
}
