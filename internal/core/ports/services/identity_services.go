package services

import (
	"context"

	"github.com/SscSPs/bodega_ledger/internal/core/domain"
)

// IdentityResolverSvc maps credentials to a principal.
type IdentityResolverSvc interface {
	// Resolve returns the principal owning the credentials, or
	// apperrors.ErrInvalidCredentials. The error never tells which tier nearly matched.
	Resolve(ctx context.Context, username, password string) (domain.Principal, error)
}
