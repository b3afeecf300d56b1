package dto

import (
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one cart line. Name and price are only used when the product is
// missing from the catalog, otherwise the catalog values at call time win.
type SaleItemRequest struct {
	ProductID   string           `json:"productId" validate:"notblank"`
	Quantity    int              `json:"quantity" validate:"gt=0"`
	ProductName string           `json:"productName"`
	UnitPrice   *decimal.Decimal `json:"priceAtSale" validate:"omitempty,gte=0"`
}

// RecordSaleRequest defines a checkout.
type RecordSaleRequest struct {
	Items         []SaleItemRequest    `json:"items" validate:"dive"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"oneof=cash credit"`
	CustomerID    *string              `json:"customerId"` // Required for credit sales
}

// ListSalesParams defines pagination for the sale history.
type ListSalesParams struct {
	Limit     int     `json:"limit"`
	NextToken *string `json:"nextToken"`
}

// ListSalesResponse is one page of sales, newest first.
type ListSalesResponse struct {
	Sales     []domain.Sale `json:"sales"`
	NextToken *string       `json:"nextToken,omitempty"`
}
