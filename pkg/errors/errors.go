// Package errors provides structured error types for the mindmap application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, server and library code
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (including malformed mind-map trees)
//   - RASTERIZATION / SURFACE_UNAVAILABLE: export pipeline failures
//   - GENERATION / EMPTY_RESPONSE: remote generation failures
//   - NETWORK / TIMEOUT / RATE_LIMITED: transport failures
//   - INTERNAL: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidTree, "root node has no name")
//	if errors.Is(err, errors.ErrCodeInvalidTree) {
//	    // render nothing for this map
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRasterization, origErr, "decode scene")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidTree   Code = "INVALID_TREE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidMode   Code = "INVALID_MODE"

	// Export pipeline errors
	ErrCodeRasterization      Code = "RASTERIZATION"
	ErrCodeSurfaceUnavailable Code = "SURFACE_UNAVAILABLE"
	ErrCodeExportInProgress   Code = "EXPORT_IN_PROGRESS"

	// Remote generation errors
	ErrCodeGeneration    Code = "GENERATION"
	ErrCodeEmptyResponse Code = "EMPTY_RESPONSE"
	ErrCodeBusy          Code = "BUSY"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

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
// It unwraps the error chain looking for an *Error with a matching code,
// so a GENERATION error wrapping a RATE_LIMITED error matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
