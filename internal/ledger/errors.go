package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing invoice, purchase, payment, customer or supplier.
	ErrNotFound = errors.New("not found")
	// ErrStore is matched by every *StoreError.
	ErrStore = errors.New("store error")
)

// StoreError wraps a persistence failure. Payment operations that fail with it
// may have been partially applied and must not be retried blindly.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// Validationf builds an ErrValidation with details.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound with details.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
