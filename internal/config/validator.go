package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "watch.debounce_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidBindings returns the list of valid stream bindings
func ValidBindings() []string {
	return []string{BindingSubject, BindingBus}
}

const (
	maxEffectLogSize = 1000
	maxDebounceMs    = 60_000
)

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateStream()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateWatch()...)
	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateStream() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidBindings(), c.Stream.Binding) {
		errors = append(errors, ValidationError{
			Field:   "stream.binding",
			Value:   c.Stream.Binding,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBindings(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.EffectLogSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.effect_log_size",
			Value:   c.TUI.EffectLogSize,
			Message: "must be positive",
		})
	}
	if c.TUI.EffectLogSize > maxEffectLogSize {
		errors = append(errors, ValidationError{
			Field:   "tui.effect_log_size",
			Value:   c.TUI.EffectLogSize,
			Message: fmt.Sprintf("exceeds maximum of %d", maxEffectLogSize),
		})
	}

	return errors
}

func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}
	if c.Watch.DebounceMs > maxDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxDebounceMs),
		})
	}

	return errors
}
