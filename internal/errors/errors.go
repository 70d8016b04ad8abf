// Package errors provides centralized error definitions and error handling utilities
// for Refract. It defines the sentinel errors returned by the component lifecycle,
// typed errors for configuration and stream failures, and classification helpers.
//
// # Error Types
//
//   - ConfigurationError: an effect factory or handler factory failed while a
//     component instance was being mounted
//   - StreamError: an effect stream terminated with an error
//   - ValidationError: invalid input, such as a malformed props file
//
// # Usage
//
//	err := errors.NewConfigurationError("effect factory panicked", cause).
//		WithComponent("counter-1").
//		WithFactory(errors.FactoryEffect)
//
//	var cfgErr *errors.ConfigurationError
//	if errors.As(err, &cfgErr) { ... }
//
//	if errors.Is(err, errors.ErrAlreadyMounted) { ... }
//
// # Error Classification
//
// Errors carry a Severity and a user-facing flag. GetSeverity and IsUserFacing
// inspect any error chain and fall back to sensible defaults for foreign errors.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Lifecycle sentinel errors
var (
	// ErrAlreadyMounted indicates Mount was called on an instance that was already mounted.
	ErrAlreadyMounted = New("component already mounted")
	// ErrNotMounted indicates an operation that requires a mounted instance.
	ErrNotMounted = New("component not mounted")
	// ErrNilEffectStream indicates the effect factory returned no stream.
	ErrNilEffectStream = New("effect factory returned a nil stream")
	// ErrNilHandler indicates the handler factory returned no handler.
	ErrNilHandler = New("handler factory returned a nil handler")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrPanic indicates a recovered panic.
	ErrPanic = New("recovered panic")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// RefractError is the base interface for all Refract errors.
type RefractError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain Errors
// -----------------------------------------------------------------------------

// Factory names which factory failed during mount.
type Factory string

const (
	FactoryEffect  Factory = "effect"
	FactoryHandler Factory = "handler"
)

// ConfigurationError is returned to the host when a component instance cannot
// be mounted because its effect factory or handler factory failed.
//
// Example:
//
//	err := errors.NewConfigurationError("handler factory failed", errors.ErrNilHandler)
//	err = err.WithComponent("counter-1").WithFactory(errors.FactoryHandler)
//	fmt.Println(err) // "configuration error [component=counter-1, factory=handler]: handler factory failed: handler factory returned a nil handler"
type ConfigurationError struct {
	baseError
	ComponentID string
	Factory     Factory
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: false,
		},
	}
}

// WithComponent adds the component instance ID to the error context.
func (e *ConfigurationError) WithComponent(id string) *ConfigurationError {
	e.ComponentID = id
	return e
}

// WithFactory records which factory failed.
func (e *ConfigurationError) WithFactory(f Factory) *ConfigurationError {
	e.Factory = f
	return e
}

// Error returns the formatted error message.
func (e *ConfigurationError) Error() string {
	var parts []string
	if e.ComponentID != "" {
		parts = append(parts, fmt.Sprintf("component=%s", e.ComponentID))
	}
	if e.Factory != "" {
		parts = append(parts, fmt.Sprintf("factory=%s", e.Factory))
	}
	return e.format("configuration error", parts)
}

// Is checks if this error matches the target.
func (e *ConfigurationError) Is(target error) bool {
	if _, ok := target.(*ConfigurationError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// StreamError wraps an error emitted by an effect stream.
type StreamError struct {
	baseError
	ComponentID string
}

// NewStreamError creates a new StreamError wrapping cause.
func NewStreamError(cause error) *StreamError {
	return &StreamError{
		baseError: baseError{
			message:    "effect stream failed",
			cause:      cause,
			severity:   SeverityWarning,
			userFacing: false,
		},
	}
}

// WithComponent adds the component instance ID to the error context.
func (e *StreamError) WithComponent(id string) *StreamError {
	e.ComponentID = id
	return e
}

// Error returns the formatted error message.
func (e *StreamError) Error() string {
	var parts []string
	if e.ComponentID != "" {
		parts = append(parts, fmt.Sprintf("component=%s", e.ComponentID))
	}
	return e.format("stream error", parts)
}

// Is checks if this error matches the target.
func (e *StreamError) Is(target error) bool {
	if _, ok := target.(*StreamError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("unknown property").WithField("colour")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var refractErr RefractError
	if As(err, &refractErr) {
		return refractErr.IsUserFacing()
	}

	// Lifecycle misuse is reported verbatim.
	return Is(err, ErrAlreadyMounted) || Is(err, ErrNotMounted)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement RefractError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var refractErr RefractError
	if As(err, &refractErr) {
		return refractErr.Severity()
	}
	return SeverityError
}

// FromPanic converts a recovered panic value into an error wrapping ErrPanic.
// Errors passed to panic are preserved in the chain.
func FromPanic(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, r)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to decode props")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
