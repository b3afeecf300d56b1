package domain

import "github.com/shopspring/decimal"

// Customer is an end-customer of a tenant who may buy on credit and log in to see
// their own history.
type Customer struct {
	CustomerID string `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	// Balance is positive when the customer owes the tenant and negative when the
	// tenant holds credit in the customer's favour. It is only changed by sales and
	// payments.
	Balance decimal.Decimal `json:"balance"`
}

// HasDebt reports whether the customer owes money.
func (c Customer) HasDebt() bool {
	return c.Balance.IsPositive()
}
