package dto

import (
	"github.com/shopspring/decimal"
)

// CreateProductRequest defines the data needed to add a product to the catalog.
type CreateProductRequest struct {
	Name     string          `json:"name" validate:"notblank"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Stock    int             `json:"stock" validate:"gte=0"`
	Category string          `json:"category"`
	ImageURL *string         `json:"imageUrl"` // Optional
}

// ProductFilter narrows a catalog listing. Zero values match everything.
type ProductFilter struct {
	Category    string // Exact category, empty for all
	Search      string // Case-insensitive substring of the name
	InStockOnly bool   // Only products with stock > 0
}
