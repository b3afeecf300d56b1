package dto

import (
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest defines the data needed to open a customer account.
type CreateCustomerRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// CustomerResponse is a customer without its login secret.
type CustomerResponse struct {
	CustomerID string          `json:"id"`
	Name       string          `json:"name"`
	Username   string          `json:"username"`
	Balance    decimal.Decimal `json:"balance"`
	HasDebt    bool            `json:"hasDebt"`
}

// ToCustomerResponse converts a domain.Customer to CustomerResponse.
func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID: c.CustomerID,
		Name:       c.Name,
		Username:   c.Username,
		Balance:    c.Balance,
		HasDebt:    c.HasDebt(),
	}
}

// ToCustomerResponses converts a slice of customers.
func ToCustomerResponses(customers []domain.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// StatementEntry is one transaction of a customer, joined to its sale for purchases.
type StatementEntry struct {
	Transaction domain.Transaction `json:"transaction"`
	Sale        *domain.Sale       `json:"sale,omitempty"`
}

// CustomerStatement is what a logged in customer sees: the current balance and the
// account history newest first.
type CustomerStatement struct {
	TenantID string           `json:"tenantId"`
	Customer CustomerResponse `json:"customer"`
	Entries  []StatementEntry `json:"entries"`
}

// BalanceMismatch reports a customer whose stored balance is not the sum of its
// transactions.
type BalanceMismatch struct {
	CustomerID string          `json:"customerId"`
	Name       string          `json:"name"`
	Stored     decimal.Decimal `json:"stored"`
	Computed   decimal.Decimal `json:"computed"`
}
