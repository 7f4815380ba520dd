// Package errors provides structured error types for the MapForge application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND / TIMEOUT / CONNECTION_ERROR / RATE_LIMITED: geocoding outcomes
//   - *_FAILED / NO_NETWORKS_FETCHED: terminal pipeline outcomes
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidCRS, "unsupported EPSG code: %d", code)
//	if errors.Is(err, errors.ErrCodeInvalidCRS) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeConnection, origErr, "failed to reach %s", host)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPlace    Code = "INVALID_PLACE"
	ErrCodeInvalidRadius   Code = "INVALID_RADIUS"
	ErrCodeInvalidCategory Code = "INVALID_CATEGORY"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Geocoding errors
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeConnection  Code = "CONNECTION_ERROR"
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeUnknown     Code = "UNKNOWN"

	// Region construction errors
	ErrCodeInvalidCRS         Code = "INVALID_CRS"
	ErrCodeReprojectionFailed Code = "REPROJECTION_FAILED"

	// Network fetch errors
	ErrCodeEmptyResult       Code = "EMPTY_RESULT"
	ErrCodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	ErrCodeMalformedRegion   Code = "MALFORMED_REGION"

	// Terminal pipeline errors
	ErrCodeGeocodeFailed     Code = "GEOCODE_FAILED"
	ErrCodeRegionFailed      Code = "REGION_FAILED"
	ErrCodeNoNetworksFetched Code = "NO_NETWORKS_FETCHED"

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
