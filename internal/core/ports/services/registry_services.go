package services

import (
	"context"

	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	"github.com/SscSPs/bodega_ledger/internal/dto"
)

// TenantReaderSvc defines read operations over the tenant registry.
type TenantReaderSvc interface {
	// Lookup returns a copy of the ledger of tenantID.
	Lookup(ctx context.Context, tenantID string) (domain.TenantLedger, error)

	// Exists reports whether tenantID is registered.
	Exists(ctx context.Context, tenantID string) bool

	// ListTenants summarizes every tenant, sorted by id.
	ListTenants(ctx context.Context) []dto.TenantSummary

	// Snapshot returns a deep copy of all ledgers.
	Snapshot(ctx context.Context) domain.Snapshot
}

// TenantWriterSvc defines write operations over the tenant registry.
type TenantWriterSvc interface {
	// CreateTenant registers a new tenant whose only user is the given admin.
	CreateTenant(ctx context.Context, req dto.CreateTenantRequest) (domain.TenantLedger, error)

	// Update applies fn to a copy of the ledger of tenantID and commits the copy
	// (memory and storage) only when fn and the save both succeed.
	Update(ctx context.Context, tenantID string, fn func(ledger *domain.TenantLedger) error) error
}

// RegistrySvcFacade combines all registry interfaces.
type RegistrySvcFacade interface {
	TenantReaderSvc
	TenantWriterSvc
}
