package services

import (
	"context"

	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	"github.com/SscSPs/bodega_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// SaleWriterSvc defines the checkout operation.
type SaleWriterSvc interface {
	// RecordSale commits a sale, moves stock and, for credit sales, charges the customer.
	RecordSale(ctx context.Context, tenantID string, req dto.RecordSaleRequest) (*domain.Sale, error)
}

// SaleReaderSvc defines read operations for sale history.
type SaleReaderSvc interface {
	// GetSale retrieves a sale by id.
	GetSale(ctx context.Context, tenantID string, saleID string) (*domain.Sale, error)

	// ListSales returns sales newest first using token based pagination.
	ListSales(ctx context.Context, tenantID string, params dto.ListSalesParams) (*dto.ListSalesResponse, error)
}

// ProductWriterSvc defines catalog mutations.
type ProductWriterSvc interface {
	AddProduct(ctx context.Context, tenantID string, req dto.CreateProductRequest) (*domain.Product, error)

	// UpdateProduct replaces the product with the same id. An unknown id is a no-op.
	UpdateProduct(ctx context.Context, tenantID string, product domain.Product) (*domain.Product, error)
}

// ProductReaderSvc defines catalog queries.
type ProductReaderSvc interface {
	// ListProducts returns matching products, newest first.
	ListProducts(ctx context.Context, tenantID string, filter dto.ProductFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context, tenantID string) ([]string, error)
}

// CustomerWriterSvc defines customer account mutations.
type CustomerWriterSvc interface {
	// AddCustomer creates a customer with a zero balance. It does not check usernames.
	AddCustomer(ctx context.Context, tenantID string, req dto.CreateCustomerRequest) (*domain.Customer, error)

	// RecordPayment credits amount to the customer's account.
	RecordPayment(ctx context.Context, tenantID string, customerID string, amount decimal.Decimal) (*domain.Transaction, error)
}

// CustomerReaderSvc defines customer queries.
type CustomerReaderSvc interface {
	GetCustomer(ctx context.Context, tenantID string, customerID string) (*domain.Customer, error)
	// ListCustomers returns every customer, newest first.
	ListCustomers(ctx context.Context, tenantID string) ([]domain.Customer, error)

	// ListCustomerTransactions returns the customer's transactions newest first.
	ListCustomerTransactions(ctx context.Context, tenantID string, customerID string) ([]domain.Transaction, error)

	// UsernameTaken reports whether a customer already uses username, ignoring case.
	UsernameTaken(ctx context.Context, tenantID string, username string) (bool, error)
}

// UserManagerSvc defines tenant user management.
type UserManagerSvc interface {
	AddUser(ctx context.Context, tenantID string, user domain.User) error
	ListUsers(ctx context.Context, tenantID string) ([]domain.User, error)
}

// LedgerAuditorSvc verifies ledger consistency.
type LedgerAuditorSvc interface {
	// VerifyBalances lists customers whose balance differs from their transactions.
	VerifyBalances(ctx context.Context, tenantID string) ([]dto.BalanceMismatch, error)
}

// LedgerSvcFacade combines all tenant ledger interfaces.
type LedgerSvcFacade interface {
	SaleWriterSvc
	SaleReaderSvc
	ProductWriterSvc
	ProductReaderSvc
	CustomerWriterSvc
	CustomerReaderSvc
	UserManagerSvc
	LedgerAuditorSvc
}
