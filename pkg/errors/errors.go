package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeAuthRequired indicates the caller must be signed in
	ErrorTypeAuthRequired ErrorType = "AUTH_REQUIRED"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeUpstream indicates a failed fetch from the tee-time provider
	ErrorTypeUpstream ErrorType = "UPSTREAM_FETCH"

	// ErrorTypeMalformedTime indicates a slot time string that does not
	// match the provider's display format
	ErrorTypeMalformedTime ErrorType = "MALFORMED_TIME"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewAuthRequiredError creates a new auth required error
func NewAuthRequiredError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAuthRequired,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamError creates a new upstream fetch error
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUpstream,
		Message: message,
		Err:     err,
	}
}

// NewMalformedTimeError creates a new malformed time error
func NewMalformedTimeError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformedTime,
		Message: message,
		Err:     err,
	}
}
