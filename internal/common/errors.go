package common

import (
	"errors"
	"fmt"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnsupportedFormat indicates an input file whose extension is not a known archive form
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	// ErrMalformedContainer indicates a container that could not be decompressed or decoded
	ErrMalformedContainer = errors.New("malformed container")
	// ErrNotJSON indicates a body that is not JSON-shaped or does not parse as JSON
	ErrNotJSON = errors.New("body is not JSON")
	// ErrEntryTooLarge indicates an archive or archive entry above the configured size cap
	ErrEntryTooLarge = errors.New("entry exceeds size limit")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets errors.Is match validation failures against ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Section string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Section != "" && e.Field != "" {
		return fmt.Sprintf("configuration error in section '%s', field '%s': %s", e.Section, e.Field, e.Reason)
	} else if e.Section != "" {
		return fmt.Sprintf("configuration error in section '%s': %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(section, field, reason string) *ConfigurationError {
	return &ConfigurationError{
		Section: section,
		Field:   field,
		Reason:  reason,
	}
}

// ArchiveError ties a decoding failure to the archive (and optional inner entry) it came from
type ArchiveError struct {
	Archive string
	Entry   string
	Wrapped error
}

func (e *ArchiveError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("archive '%s' entry '%s': %v", e.Archive, e.Entry, e.Wrapped)
	}
	return fmt.Sprintf("archive '%s': %v", e.Archive, e.Wrapped)
}

func (e *ArchiveError) Unwrap() error {
	return e.Wrapped
}

// NewArchiveError creates a new archive error
func NewArchiveError(archive, entry string, wrapped error) *ArchiveError {
	return &ArchiveError{
		Archive: archive,
		Entry:   entry,
		Wrapped: wrapped,
	}
}

// RecoverToError converts a recovered panic value into an error. It returns nil when r is nil.
func RecoverToError(r interface{}) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
