package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		want   string
	}{
		{name: "whole amount", amount: decimal.NewFromInt(20), want: "S/ 20.00"},
		{name: "rounds half up", amount: decimal.RequireFromString("2.345"), want: "S/ 2.35"},
		{name: "rounds down", amount: decimal.RequireFromString("2.344"), want: "S/ 2.34"},
		{name: "credit in favour", amount: decimal.RequireFromString("-5"), want: "S/ -5.00"},
		{name: "zero", amount: decimal.Zero, want: "S/ 0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount))
		})
	}
}

func TestFormatDoesNotMutate(t *testing.T) {
	amount := decimal.RequireFromString("1.005")
	_ = Format(amount)
	assert.Equal(t, "1.005", amount.String())
}
