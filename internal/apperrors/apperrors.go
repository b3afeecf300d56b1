package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the active principal may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates that no principal is logged in.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an infrastructure failure (storage, encoding).
var ErrInternal = errors.New("internal error")

// Ledger specific errors. Each wraps one of the base errors above so callers can match
// either the precise kind or the broad category with errors.Is.
var (
	ErrDuplicateTenant    = fmt.Errorf("%w: tenant already exists", ErrDuplicate)
	ErrDuplicateUsername  = fmt.Errorf("%w: username already exists", ErrDuplicate)
	ErrCustomerRequired   = fmt.Errorf("%w: credit sale requires an existing customer", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrEmptySale          = fmt.Errorf("%w: sale must contain at least one item", ErrValidation)
	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", ErrValidation)
	ErrCustomerNotFound   = fmt.Errorf("%w: customer", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("%w: product", ErrNotFound)
	ErrTenantNotFound     = fmt.Errorf("%w: tenant", ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrNotFound)
	ErrUserLimitReached   = fmt.Errorf("%w: user limit reached", ErrForbidden)
	ErrNoSession          = fmt.Errorf("%w: no active session", ErrUnauthorized)
)

// AppError carries a status-like code and a message alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError. Code 500 errors also match ErrInternal.
func NewAppError(code int, message string, err error) *AppError {
	if code == http.StatusInternalServerError && err != nil && !errors.Is(err, ErrInternal) {
		err = fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if code == http.StatusInternalServerError && err == nil {
		err = ErrInternal
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NewInternalServerError returns a 500 AppError.
func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}
