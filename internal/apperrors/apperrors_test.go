package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerErrorsMatchTheirCategory(t *testing.T) {
	assert.ErrorIs(t, ErrDuplicateUsername, ErrDuplicate)
	assert.ErrorIs(t, ErrInsufficientStock, ErrValidation)
	assert.ErrorIs(t, ErrInvalidCredentials, ErrNotFound)
	assert.ErrorIs(t, ErrUserLimitReached, ErrForbidden)
	assert.ErrorIs(t, ErrNoSession, ErrUnauthorized)
	assert.NotErrorIs(t, ErrCustomerNotFound, ErrProductNotFound)
}

func TestNewAppError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAppError(http.StatusInternalServerError, "failed to save snapshot", cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to save snapshot")

	assert.ErrorIs(t, NewInternalServerError("boom"), ErrInternal)

	notInternal := NewAppError(http.StatusBadRequest, "bad", ErrValidation)
	assert.NotErrorIs(t, notInternal, ErrInternal)
}
