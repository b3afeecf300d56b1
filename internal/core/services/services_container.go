package services

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bodega_ledger/internal/core/ports/services"
	"github.com/SscSPs/bodega_ledger/internal/platform/config"
	"github.com/SscSPs/bodega_ledger/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(ctx context.Context, cfg *config.Config, store portsrepo.Store, m *metrics.LedgerMetrics) (*portssvc.ServiceContainer, error) {
	container := &portssvc.ServiceContainer{}

	// The registry loads the snapshot, everything else reads through it
	registry, err := NewRegistryService(ctx, store, m)
	if err != nil {
		return nil, err
	}
	container.Registry = registry

	container.Ledger = NewLedgerService(registry, cfg.SalePolicy, m)
	container.Identity = NewIdentityService(registry, cfg.OperatorUsername, cfg.OperatorPassword)

	container.Session, err = NewSessionService(ctx, container.Identity, registry, container.Ledger, store, m)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	return container, nil
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.RegistrySvcFacade   = (*registryService)(nil)
	_ portssvc.LedgerSvcFacade     = (*ledgerService)(nil)
	_ portssvc.IdentityResolverSvc = (*identityService)(nil)
	_ portssvc.SessionSvcFacade    = (*sessionService)(nil)
)
