package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
)

// beginner is satisfied by *pgxpool.Pool and by pgx.Tx for nested savepoints.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withTx runs fn in a transaction on db. The transaction commits when fn returns nil
// and rolls back otherwise. Begin and commit failures come back as 500 AppErrors.
func withTx(ctx context.Context, db beginner, fn func(tx pgx.Tx) error) error {
	err := pgx.BeginFunc(ctx, db, fn)
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewAppError(500, "snapshot transaction failed", err)
}
