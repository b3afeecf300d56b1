package services

import (
	"context"

	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	"github.com/SscSPs/bodega_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// SessionLifecycleSvc defines login state management.
type SessionLifecycleSvc interface {
	// Login resolves the credentials and, on success, replaces the active principal.
	// A failed login leaves the current principal untouched and returns false.
	Login(ctx context.Context, username, password string) (bool, error)

	// Logout clears the active principal.
	Logout(ctx context.Context) error

	// Current returns the active principal. A tenant or customer principal whose tenant
	// no longer exists is logged out and reported as absent.
	Current(ctx context.Context) (domain.Principal, bool)
}

// OperatorSessionSvc defines actions available to the platform operator.
type OperatorSessionSvc interface {
	CreateTenant(ctx context.Context, req dto.CreateTenantRequest) (domain.TenantLedger, error)
	ListTenants(ctx context.Context) ([]dto.TenantSummary, error)
}

// TenantSessionSvc defines actions available to tenant staff and admins.
type TenantSessionSvc interface {
	RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*domain.Sale, error)
	AddProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	AddCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListCustomerTransactions(ctx context.Context, customerID string) ([]domain.Transaction, error)
	RecordPayment(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Transaction, error)
	ListSales(ctx context.Context, params dto.ListSalesParams) (*dto.ListSalesResponse, error)
	VerifyBalances(ctx context.Context) ([]dto.BalanceMismatch, error)

	// AddUser and ListUsers require an admin tenant principal.
	AddUser(ctx context.Context, user domain.User) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// CustomerSessionSvc defines the read-only view of a logged in customer.
type CustomerSessionSvc interface {
	Statement(ctx context.Context) (*dto.CustomerStatement, error)
}

// SessionSvcFacade combines all session interfaces.
type SessionSvcFacade interface {
	SessionLifecycleSvc
	OperatorSessionSvc
	TenantSessionSvc
	CustomerSessionSvc
}
