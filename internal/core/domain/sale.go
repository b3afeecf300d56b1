package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod tells how a sale was settled.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCredit
}

// SaleItem is one line of a sale. Name and price are snapshots taken when the sale was
// recorded, so later product edits never change history.
type SaleItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"priceAtSale"`
}

// Subtotal returns price times quantity for the line.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is an immutable record of a completed checkout.
type Sale struct {
	SaleID        string          `json:"id"`
	Date          time.Time       `json:"date"`
	Items         []SaleItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CustomerID    *string         `json:"customerId"` // Set iff PaymentMethod is credit
}

// SaleTotal sums the subtotals of items.
func SaleTotal(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
