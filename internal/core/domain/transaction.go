package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates why a customer's balance moved.
type TransactionType string

const (
	Purchase TransactionType = "purchase"
	Payment  TransactionType = "payment"
)

// Transaction is an append-only entry of a customer's credit account. The customer's
// balance always equals the sum of the amounts of their transactions.
type Transaction struct {
	TransactionID string          `json:"id"`
	CustomerID    string          `json:"customerId"`
	Date          time.Time       `json:"date"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"` // +total for purchases, -paid for payments
	SaleID        *string         `json:"saleId"` // Only set for purchases
}
