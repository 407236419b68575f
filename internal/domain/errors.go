package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching across the typed errors below.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
)

// ValidationError represents malformed input to an aggregate operation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// InvalidStateError represents an operation not permitted in the current aggregate state
type InvalidStateError struct {
	Message string `json:"message"`
}

func (e *InvalidStateError) Error() string { return e.Message }

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// NewInvalidStateError creates a new invalid state error
func NewInvalidStateError(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidStateError checks if an error is an InvalidStateError
func IsInvalidStateError(err error) (*InvalidStateError, bool) {
	var stateErr *InvalidStateError
	if errors.As(err, &stateErr) {
		return stateErr, true
	}
	return nil, false
}

// NotFoundError represents a child entity id unknown to the aggregate
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, id fmt.Stringer) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) (*NotFoundError, bool) {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr, true
	}
	return nil, false
}
