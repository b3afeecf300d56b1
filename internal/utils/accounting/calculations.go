package accounting

import (
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	"github.com/SscSPs/bodega_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// SignedAmount returns the balance effect of a purchase or payment of the given size.
// Purchases increase what the customer owes, payments decrease it.
func SignedAmount(txType domain.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if txType == domain.Payment {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// BalancesByCustomer folds the transaction history into a balance per customer id.
func BalancesByCustomer(transactions []domain.Transaction) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, txn := range transactions {
		balances[txn.CustomerID] = balances[txn.CustomerID].Add(txn.Amount)
	}
	return balances
}

// FindBalanceMismatches checks that every customer's stored balance equals the sum of
// its transactions and returns the customers for which it does not, in ledger order.
func FindBalanceMismatches(ledger domain.TenantLedger) []dto.BalanceMismatch {
	computed := BalancesByCustomer(ledger.Transactions)
	mismatches := []dto.BalanceMismatch{}
	for _, c := range ledger.Customers {
		sum := computed[c.CustomerID]
		if !c.Balance.Equal(sum) {
			mismatches = append(mismatches, dto.BalanceMismatch{
				CustomerID: c.CustomerID,
				Name:       c.Name,
				Stored:     c.Balance,
				Computed:   sum,
			})
		}
	}
	return mismatches
}
