package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrTypeParse             ErrorType = "parse"
	ErrTypeReference         ErrorType = "reference"
	ErrTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrTypeValidation        ErrorType = "validation"
	ErrTypeConfig            ErrorType = "config"
	ErrTypeFileSystem        ErrorType = "filesystem"
	ErrTypeInternal          ErrorType = "internal"
)

// Error represents a structured error with type and optional suggestions
type Error struct {
	Type        ErrorType
	Message     string
	Cause       error
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a suggestion for resolving the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// New creates a new structured error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new structured error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type == errType
	}

	return false
}

// GetType returns the error type if it's a structured error
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}

// SuggestionsOf returns the suggestions attached to a structured error, if any
func SuggestionsOf(err error) []string {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Suggestions
	}

	return nil
}

// NewParseError reports a heading or line the parser could not accept.
// The offending heading text is always part of the message.
func NewParseError(heading, reason string) *Error {
	return Newf(ErrTypeParse, "%s: %q", reason, heading).
		WithSuggestion("Headings must look like '## name (type)'")
}

// NewReferenceError reports a {identity} marker with no matching record
func NewReferenceError(identity string) *Error {
	return Newf(ErrTypeReference, "no record with identity %q", identity).
		WithSuggestion("Check the spelling of the referenced heading name").
		WithSuggestion("Records at or above the unique depth cannot be referenced")
}

// NewUnsupportedFormatError reports a source or destination format with no handler
func NewUnsupportedFormatError(direction, format string) *Error {
	return Newf(ErrTypeUnsupportedFormat, "unsupported %s format %q", direction, format).
		WithSuggestion("Supported sources: .md, .markdown, .txt, .json, .html").
		WithSuggestion("Supported destinations: sql, ts, json, md, html")
}

// NewConfigError creates a configuration error with suggestions
func NewConfigError(message, field string) *Error {
	err := New(ErrTypeConfig, message)
	if field != "" {
		err.Message = fmt.Sprintf("%s (field: %s)", message, field)
	}

	return err.
		WithSuggestion("Check your configuration file syntax").
		WithSuggestion("Run with --help to see valid configuration options")
}
