package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrMissingIndex    = errors.New("query requires a composite index")
	ErrUnavailable     = errors.New("store unavailable")
	ErrInvalidCursor   = errors.New("invalid or stale cursor")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError is detectable before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MissingIndexError is a provisioning problem, not a data or logic one.
// Hint holds the console link or index description reported by the store.
type MissingIndexError struct {
	Hint string
	Err  error
}

func (e *MissingIndexError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%v: %s", ErrMissingIndex, e.Hint)
	}
	return ErrMissingIndex.Error()
}

func (e *MissingIndexError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMissingIndex}
	}
	return []error{ErrMissingIndex, e.Err}
}
