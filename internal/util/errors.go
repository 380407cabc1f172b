package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrRateLimited   = errors.New("rate limit exceeded")
)

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// ValidationError represents a validation failure. Causes keeps the
// underlying errors so callers can match them with errors.Is and errors.As.
type ValidationError struct {
	Fields  map[string]string
	Message string
	Causes  []error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s (fields: %v)", e.Message, e.Fields)
}

// Is checks if the error matches the target.
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, Fields: make(map[string]string)}
}

// AddField adds a field error.
func (e *ValidationError) AddField(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// AddCause records a field error backed by an underlying error.
func (e *ValidationError) AddCause(field string, err error) {
	e.AddField(field, err.Error())
	e.Causes = append(e.Causes, err)
}

// Unwrap returns the recorded causes.
func (e *ValidationError) Unwrap() []error {
	return e.Causes
}

// HasErrors reports whether any field errors were recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// RouteError ties a failure to a single route definition.
type RouteError struct {
	Index int
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *RouteError) Error() string {
	return fmt.Sprintf("route %d (%q): %v", e.Index, e.Path, e.Cause)
}

// Unwrap returns the underlying error.
func (e *RouteError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *RouteError) Is(target error) bool {
	_, ok := target.(*RouteError)
	return ok
}

// NewRouteError creates a new RouteError.
func NewRouteError(index int, path string, cause error) *RouteError {
	return &RouteError{Index: index, Path: path, Cause: cause}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
