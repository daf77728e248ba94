package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidUserId = errors.New("invalid user id")
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("storage error")
	ErrConflict      = errors.New("conflict")

	// ErrBusy is returned when the per-user lock could not be acquired in time.
	ErrBusy = fmt.Errorf("%w: user storage busy", ErrIO)
)

// ValidationError describes a record field that failed schema validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IOError wraps a storage failure so that callers can match it with errors.Is(err, ErrIO).
func IOError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrIO) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}
