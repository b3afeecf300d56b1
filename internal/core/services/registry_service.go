package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bodega_ledger/internal/core/ports/services"
	"github.com/SscSPs/bodega_ledger/internal/dto"
	"github.com/SscSPs/bodega_ledger/internal/platform/metrics"
)

// registryService owns every tenant ledger and is the only component that talks to the
// snapshot store. Each committed mutation rewrites the whole snapshot.
type registryService struct {
	BaseService
	store   portsrepo.SnapshotStore
	metrics *metrics.LedgerMetrics

	mu      sync.RWMutex
	tenants domain.Snapshot
}

// NewRegistryService loads the snapshot once and returns the registry holding it.
func NewRegistryService(ctx context.Context, store portsrepo.SnapshotStore, m *metrics.LedgerMetrics) (portssvc.RegistrySvcFacade, error) {
	snapshot, err := store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot == nil {
		snapshot = domain.Snapshot{}
	}

	r := &registryService{store: store, metrics: m, tenants: snapshot}
	m.SetTenants(len(snapshot))
	r.LogInfo(ctx, "Tenant registry loaded", slog.Int("tenants", len(snapshot)))
	return r, nil
}

// Ensure registryService implements the RegistrySvcFacade interface
var _ portssvc.RegistrySvcFacade = (*registryService)(nil)

// CreateTenant registers a tenant with an empty ledger and a single admin user.
func (s *registryService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest) (domain.TenantLedger, error) {
	if err := dto.Validate(req); err != nil {
		return domain.TenantLedger{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[req.TenantID]; exists {
		s.LogWarn(ctx, apperrors.ErrDuplicateTenant, "Tenant creation rejected", slog.String("tenant_id", req.TenantID))
		return domain.TenantLedger{}, fmt.Errorf("%w: %s", apperrors.ErrDuplicateTenant, req.TenantID)
	}

	admin := domain.User{Username: req.AdminUsername, Password: req.AdminPassword, Role: domain.RoleAdmin}
	ledger := domain.NewTenantLedger(admin, req.MaxUsers)

	next := s.copyTenants()
	next[req.TenantID] = ledger
	if err := s.save(ctx, next); err != nil {
		return domain.TenantLedger{}, err
	}
	s.tenants = next
	s.metrics.SetTenants(len(next))

	s.LogInfo(ctx, "Tenant created",
		slog.String("tenant_id", req.TenantID),
		slog.String("admin", admin.Username),
		slog.Int("max_users", req.MaxUsers))
	return ledger.Clone(), nil
}

// Update runs fn against a copy of the tenant's ledger and commits the copy only if fn
// and the snapshot write both succeed.
func (s *registryService) Update(ctx context.Context, tenantID string, fn func(ledger *domain.TenantLedger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tenants[tenantID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrTenantNotFound, tenantID)
	}

	working := current.Clone()
	if err := fn(&working); err != nil {
		return err
	}

	next := s.copyTenants()
	next[tenantID] = working
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.tenants = next
	return nil
}

// Lookup returns a copy of the tenant's ledger.
func (s *registryService) Lookup(ctx context.Context, tenantID string) (domain.TenantLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger, ok := s.tenants[tenantID]
	if !ok {
		return domain.TenantLedger{}, fmt.Errorf("%w: %s", apperrors.ErrTenantNotFound, tenantID)
	}
	return ledger.Clone(), nil
}

// Exists reports whether the tenant is registered.
func (s *registryService) Exists(ctx context.Context, tenantID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tenants[tenantID]
	return ok
}

// ListTenants summarizes every tenant in tenant id order.
func (s *registryService) ListTenants(ctx context.Context) []dto.TenantSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]dto.TenantSummary, 0, len(s.tenants))
	for _, id := range s.tenants.TenantIDs() {
		ledger := s.tenants[id]
		summary := dto.TenantSummary{
			TenantID:  id,
			UserCount: len(ledger.Users),
			MaxUsers:  ledger.MaxUsers,
		}
		if admin, ok := ledger.Admin(); ok {
			summary.AdminUsername = admin.Username
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Snapshot returns a deep copy of every ledger.
func (s *registryService) Snapshot(ctx context.Context) domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenants.Clone()
}

// copyTenants returns a new map sharing the (never mutated in place) ledgers.
func (s *registryService) copyTenants() domain.Snapshot {
	next := make(domain.Snapshot, len(s.tenants)+1)
	for id, ledger := range s.tenants {
		next[id] = ledger
	}
	return next
}

func (s *registryService) save(ctx context.Context, next domain.Snapshot) error {
	err := s.store.SaveSnapshot(ctx, next)
	s.metrics.ObserveSave(err)
	if err != nil {
		s.LogError(ctx, err, "Failed to save snapshot")
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to save snapshot", err)
	}
	return nil
}
