package pgsql

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
)

type refusingBeginner struct{}

func (refusingBeginner) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("connection refused")
}

func TestWithTx_BeginFailureIsInternal(t *testing.T) {
	called := false
	err := withTx(context.Background(), refusingBeginner{}, func(pgx.Tx) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, called)
}
