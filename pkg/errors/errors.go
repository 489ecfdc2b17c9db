// Package errors provides structured error types for Stackflow.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI, and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Structural violations of a block tree carry their own codes
// (DUPLICATE_ID, DANGLING_PARENT, CYCLIC_PARENT) so callers can tell a
// rejected import from a missing block (NOT_FOUND) or a malformed request
// (INVALID_*).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateID, "block %d already exists", id)
//	if errors.Is(err, errors.ErrCodeDuplicateID) {
//	    // Handle duplicate
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStoreUnavailable, origErr, "load chart %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Tree structure errors
	ErrCodeDuplicateID    Code = "DUPLICATE_ID"
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeDanglingParent Code = "DANGLING_PARENT"
	ErrCodeCyclicParent   Code = "CYCLIC_PARENT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidState  Code = "INVALID_STATE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Storage errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the HTTP status the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeNotFound:
		return 404
	case ErrCodeDuplicateID:
		return 409
	case ErrCodeDanglingParent, ErrCodeCyclicParent, ErrCodeInvalidInput,
		ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return 422
	case ErrCodeInvalidState:
		return 409
	case ErrCodeStoreUnavailable:
		return 503
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
