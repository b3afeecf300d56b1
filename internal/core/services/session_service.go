package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bodega_ledger/internal/core/ports/services"
	"github.com/SscSPs/bodega_ledger/internal/dto"
	"github.com/SscSPs/bodega_ledger/internal/platform/metrics"
)

// sessionService holds the active principal and routes every scoped call to the tenant
// captured at login. It is the only place capability checks are made.
type sessionService struct {
	BaseService
	identity portssvc.IdentityResolverSvc
	registry portssvc.RegistrySvcFacade
	ledger   portssvc.LedgerSvcFacade
	store    portsrepo.SessionStore
	metrics  *metrics.LedgerMetrics

	mu      sync.Mutex
	current domain.Principal
}

// NewSessionService restores the persisted principal, if any. An unreadable record is
// discarded and the session starts logged out.
func NewSessionService(
	ctx context.Context,
	identity portssvc.IdentityResolverSvc,
	registry portssvc.RegistrySvcFacade,
	ledger portssvc.LedgerSvcFacade,
	store portsrepo.SessionStore,
	m *metrics.LedgerMetrics,
) (portssvc.SessionSvcFacade, error) {
	s := &sessionService{
		identity: identity,
		registry: registry,
		ledger:   ledger,
		store:    store,
		metrics:  m,
	}

	record, err := store.LoadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if record == nil {
		return s, nil
	}

	principal, err := record.Principal()
	if err != nil {
		s.LogWarn(ctx, err, "Discarding unreadable session")
		if clearErr := store.ClearSession(ctx); clearErr != nil {
			return nil, fmt.Errorf("failed to clear session: %w", clearErr)
		}
		return s, nil
	}
	s.current = principal
	s.LogDebug(ctx, "Session restored", slog.String("kind", string(principal.Kind())))
	return s, nil
}

// Ensure sessionService implements the SessionSvcFacade interface
var _ portssvc.SessionSvcFacade = (*sessionService)(nil)

// --- lifecycle ---

func (s *sessionService) Login(ctx context.Context, username, password string) (bool, error) {
	principal, err := s.identity.Resolve(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.metrics.ObserveLogin("failed")
			s.LogInfo(ctx, "Login failed", slog.String("username", username))
			return false, nil
		}
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveSession(ctx, domain.NewSessionRecord(principal)); err != nil {
		s.LogError(ctx, err, "Failed to persist session")
		return false, err
	}
	s.current = principal
	s.metrics.ObserveLogin(string(principal.Kind()))

	attrs := []any{slog.String("username", username), slog.String("kind", string(principal.Kind()))}
	if tenantID, ok := domain.ScopedTenantID(principal); ok {
		attrs = append(attrs, slog.String("tenant_id", tenantID))
	}
	s.LogInfo(ctx, "Login succeeded", attrs...)
	return true, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

func (s *sessionService) Current(ctx context.Context) (domain.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, false
	}
	if tenantID, scoped := domain.ScopedTenantID(s.current); scoped && !s.registry.Exists(ctx, tenantID) {
		s.LogWarn(ctx, apperrors.ErrTenantNotFound, "Forcing logout of dangling session", slog.String("tenant_id", tenantID))
		if err := s.clearLocked(ctx); err != nil {
			s.LogError(ctx, err, "Failed to clear dangling session")
		}
		return nil, false
	}
	return s.current, true
}

func (s *sessionService) clearLocked(ctx context.Context) error {
	s.current = nil
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// --- scope checks ---

func (s *sessionService) requireOperator(ctx context.Context) error {
	p, ok := s.Current(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}
	switch p.(type) {
	case domain.OperatorPrincipal:
		return nil
	case domain.TenantPrincipal, domain.CustomerPrincipal:
		return fmt.Errorf("%w: operator session required", apperrors.ErrForbidden)
	default:
		panic(fmt.Sprintf("services: unknown principal %T", p))
	}
}

func (s *sessionService) requireTenant(ctx context.Context) (domain.TenantPrincipal, error) {
	p, ok := s.Current(ctx)
	if !ok {
		return domain.TenantPrincipal{}, apperrors.ErrNoSession
	}
	switch v := p.(type) {
	case domain.TenantPrincipal:
		return v, nil
	case domain.OperatorPrincipal, domain.CustomerPrincipal:
		return domain.TenantPrincipal{}, fmt.Errorf("%w: tenant session required", apperrors.ErrForbidden)
	default:
		panic(fmt.Sprintf("services: unknown principal %T", p))
	}
}

func (s *sessionService) requireAdmin(ctx context.Context) (domain.TenantPrincipal, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return tp, err
	}
	if !tp.User.IsAdmin() {
		return domain.TenantPrincipal{}, fmt.Errorf("%w: admin role required", apperrors.ErrForbidden)
	}
	return tp, nil
}

func (s *sessionService) requireCustomer(ctx context.Context) (domain.CustomerPrincipal, error) {
	p, ok := s.Current(ctx)
	if !ok {
		return domain.CustomerPrincipal{}, apperrors.ErrNoSession
	}
	switch v := p.(type) {
	case domain.CustomerPrincipal:
		return v, nil
	case domain.OperatorPrincipal, domain.TenantPrincipal:
		return domain.CustomerPrincipal{}, fmt.Errorf("%w: customer session required", apperrors.ErrForbidden)
	default:
		panic(fmt.Sprintf("services: unknown principal %T", p))
	}
}

// --- operator ---

func (s *sessionService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest) (domain.TenantLedger, error) {
	if err := s.requireOperator(ctx); err != nil {
		return domain.TenantLedger{}, err
	}
	return s.registry.CreateTenant(ctx, req)
}

func (s *sessionService) ListTenants(ctx context.Context) ([]dto.TenantSummary, error) {
	if err := s.requireOperator(ctx); err != nil {
		return nil, err
	}
	return s.registry.ListTenants(ctx), nil
}

// --- tenant ---

func (s *sessionService) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*domain.Sale, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.RecordSale(ctx, tp.TenantID, req)
}

func (s *sessionService) AddProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.AddProduct(ctx, tp.TenantID, req)
}

func (s *sessionService) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.UpdateProduct(ctx, tp.TenantID, product)
}

func (s *sessionService) ListProducts(ctx context.Context, filter dto.ProductFilter) ([]domain.Product, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListProducts(ctx, tp.TenantID, filter)
}

func (s *sessionService) ListCategories(ctx context.Context) ([]string, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListCategories(ctx, tp.TenantID)
}

// AddCustomer rejects a username already used by another customer of the tenant,
// compared case-insensitively.
func (s *sessionService) AddCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*domain.Customer, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	taken, err := s.ledger.UsernameTaken(ctx, tp.TenantID, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateUsername, req.Username)
	}
	return s.ledger.AddCustomer(ctx, tp.TenantID, req)
}

func (s *sessionService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListCustomers(ctx, tp.TenantID)
}

func (s *sessionService) ListCustomerTransactions(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListCustomerTransactions(ctx, tp.TenantID, customerID)
}

func (s *sessionService) RecordPayment(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Transaction, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.RecordPayment(ctx, tp.TenantID, customerID, amount)
}

func (s *sessionService) ListSales(ctx context.Context, params dto.ListSalesParams) (*dto.ListSalesResponse, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListSales(ctx, tp.TenantID, params)
}

func (s *sessionService) VerifyBalances(ctx context.Context) ([]dto.BalanceMismatch, error) {
	tp, err := s.requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.VerifyBalances(ctx, tp.TenantID)
}

func (s *sessionService) AddUser(ctx context.Context, user domain.User) error {
	tp, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	return s.ledger.AddUser(ctx, tp.TenantID, user)
}

func (s *sessionService) ListUsers(ctx context.Context) ([]domain.User, error) {
	tp, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListUsers(ctx, tp.TenantID)
}

// --- customer ---

// Statement reads the customer from the ledger rather than the session copy, so the
// balance reflects sales and payments made after login.
func (s *sessionService) Statement(ctx context.Context) (*dto.CustomerStatement, error) {
	cp, err := s.requireCustomer(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := s.ledger.GetCustomer(ctx, cp.TenantID, cp.Customer.CustomerID)
	if err != nil {
		return nil, err
	}
	txns, err := s.ledger.ListCustomerTransactions(ctx, cp.TenantID, customer.CustomerID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.registry.Lookup(ctx, cp.TenantID)
	if err != nil {
		return nil, err
	}

	sales := make(map[string]domain.Sale, len(ledger.Sales))
	for _, sale := range ledger.Sales {
		sales[sale.SaleID] = sale
	}

	entries := make([]dto.StatementEntry, 0, len(txns))
	for _, txn := range txns {
		entry := dto.StatementEntry{Transaction: txn}
		if txn.SaleID != nil {
			if sale, ok := sales[*txn.SaleID]; ok {
				entry.Sale = &sale
			}
		}
		entries = append(entries, entry)
	}

	return &dto.CustomerStatement{
		TenantID: cp.TenantID,
		Customer: dto.ToCustomerResponse(customer),
		Entries:  entries,
	}, nil
}
