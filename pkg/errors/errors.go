// Package errors provides structured error types for ordiview.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the pipeline stages and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the offending file, sample or field
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map onto the failure kinds of the pipeline:
//   - PARSE_ERROR: malformed ordination, mapping or taxa files
//   - ALIGNMENT_ERROR, EMPTY_INTERSECTION, ALL_FILTERED: sample-id reconciliation
//   - CONFIGURATION_ERROR: invalid option combinations or option values
//   - LOGIC_ERROR: too few displayable axes
//   - IO_ERROR: output directory or file failures
//   - INTERNAL_ERROR: broken invariants that indicate a bug
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "missing %q section", "Site")
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // Handle malformed input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input file errors
	ErrCodeParse Code = "PARSE_ERROR"

	// Sample reconciliation errors
	ErrCodeAlignment         Code = "ALIGNMENT_ERROR"
	ErrCodeEmptyIntersection Code = "EMPTY_INTERSECTION"
	ErrCodeAllFiltered       Code = "ALL_FILTERED"

	// Option errors
	ErrCodeConfiguration Code = "CONFIGURATION_ERROR"

	// Plotting errors
	ErrCodeLogic Code = "LOGIC_ERROR"

	// Output errors
	ErrCodeIO Code = "IO_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsAlignment reports whether err is any of the sample reconciliation errors.
func IsAlignment(err error) bool {
	switch GetCode(err) {
	case ErrCodeAlignment, ErrCodeEmptyIntersection, ErrCodeAllFiltered:
		return true
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// Plural formats n followed by the singular or plural noun.
//
//	Plural(1, "sample", "samples") // "1 sample"
//	Plural(3, "sample", "samples") // "3 samples"
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
