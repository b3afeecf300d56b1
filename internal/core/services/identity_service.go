package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/bodega_ledger/internal/core/ports/services"
)

type identityService struct {
	BaseService
	registry         portssvc.TenantReaderSvc
	operatorUsername string
	operatorPassword string
}

// NewIdentityService returns a resolver checking the operator pair first, then tenant
// users, then customers.
func NewIdentityService(registry portssvc.TenantReaderSvc, operatorUsername, operatorPassword string) portssvc.IdentityResolverSvc {
	return &identityService{
		registry:         registry,
		operatorUsername: operatorUsername,
		operatorPassword: operatorPassword,
	}
}

var _ portssvc.IdentityResolverSvc = (*identityService)(nil)

func (s *identityService) Resolve(ctx context.Context, username, password string) (domain.Principal, error) {
	if s.operatorUsername != "" && username == s.operatorUsername && password == s.operatorPassword {
		return domain.OperatorPrincipal{Username: username}, nil
	}

	snapshot := s.registry.Snapshot(ctx)
	tenantIDs := snapshot.TenantIDs()

	for _, tenantID := range tenantIDs {
		for _, u := range snapshot[tenantID].Users {
			if u.Username == username && u.Password == password {
				return domain.TenantPrincipal{TenantID: tenantID, User: u}, nil
			}
		}
	}

	for _, tenantID := range tenantIDs {
		for _, c := range snapshot[tenantID].Customers {
			if c.Username == username && c.Password == password {
				return domain.CustomerPrincipal{TenantID: tenantID, Customer: c}, nil
			}
		}
	}

	s.LogDebug(ctx, "Credentials did not resolve", slog.String("username", username))
	return nil, apperrors.ErrInvalidCredentials
}
