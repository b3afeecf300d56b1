package money

import "github.com/shopspring/decimal"

// Symbol is the currency prefix used on receipts and listings.
const Symbol = "S/"

// Format renders an amount for display with two decimals, rounding half away from zero.
// Stored amounts are never rounded; this is for presentation only.
func Format(amount decimal.Decimal) string {
	return Symbol + " " + amount.StringFixed(2)
}
