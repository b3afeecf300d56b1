package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry of a tenant. Products are never deleted.
type Product struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`    // Unit price, never negative
	Stock     int             `json:"stock"`    // May go below zero under the lenient sale policy
	Category  string          `json:"category"` // Free text
	ImageURL  *string         `json:"imageUrl"` // Nullable image reference
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}
