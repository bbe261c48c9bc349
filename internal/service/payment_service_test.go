package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCardNumber(t *testing.T) {
	tests := []struct {
		name  string
		card  string
		valid bool
	}{
		{"uzcard", "8600123456789012", true},
		{"humo", "9860123456789012", true},
		{"uzcard with spaces", "8600 1234 5678 9012", true},
		{"wrong prefix", "1234567890123456", false},
		{"visa prefix", "4111111111111111", false},
		{"fifteen digits", "860012345678901", false},
		{"seventeen digits", "86001234567890123", false},
		{"letters", "8600abcd56789012", false},
		{"empty", "", false},
		{"prefix only", "8600", false},
		{"humo wrong length", "9860 1234 5678 901", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateCardNumber(tt.card))
		})
	}
}

func TestPaymentMethodsBilingualLabels(t *testing.T) {
	ps := &PaymentService{}
	methods := ps.PaymentMethods()

	assert.Len(t, methods, 3)
	ids := make(map[string]bool)
	for _, m := range methods {
		ids[m.ID] = true
		assert.NotEmpty(t, m.LabelUz)
		assert.NotEmpty(t, m.LabelRu)
	}
	assert.True(t, ids["qr_card"])
	assert.True(t, ids["bank_transfer"])
	assert.True(t, ids["cash_delivery"])
}
