package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"
	ErrCancelled    ErrorCode = "CANCELLED"

	// Environment errors
	ErrRootMissing ErrorCode = "ROOT_MISSING"
	ErrHomeUnset   ErrorCode = "HOME_UNSET"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Override errors
	ErrInvalidOverride   ErrorCode = "INVALID_OVERRIDE"
	ErrAmbiguousOverride ErrorCode = "AMBIGUOUS_OVERRIDE"
	ErrNoVariant         ErrorCode = "NO_VARIANT"

	// Link errors
	ErrLinkConflict  ErrorCode = "LINK_CONFLICT"
	ErrSourceMissing ErrorCode = "SOURCE_MISSING"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrNotManaged    ErrorCode = "NOT_MANAGED"
	ErrLinkFailed    ErrorCode = "LINK_FAILED"
)

// DotfilesError represents a structured error with code and details
type DotfilesError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DotfilesError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DotfilesError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a DotfilesError carrying the same code
func (e *DotfilesError) Is(target error) bool {
	var targetErr *DotfilesError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DotfilesError with the given code and message
func New(code ErrorCode, message string) *DotfilesError {
	return &DotfilesError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DotfilesError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DotfilesError {
	return &DotfilesError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DotfilesError. It returns nil for a nil err.
func Wrap(err error, code ErrorCode, message string) *DotfilesError {
	if err == nil {
		return nil
	}
	return &DotfilesError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotfilesError {
	if err == nil {
		return nil
	}
	return &DotfilesError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DotfilesError) WithDetail(key string, value interface{}) *DotfilesError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dfErr *DotfilesError
	if errors.As(err, &dfErr) {
		return dfErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DotfilesError
func GetErrorCode(err error) ErrorCode {
	var dfErr *DotfilesError
	if errors.As(err, &dfErr) {
		return dfErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DotfilesError
func GetErrorDetails(err error) map[string]interface{} {
	var dfErr *DotfilesError
	if errors.As(err, &dfErr) {
		return dfErr.Details
	}
	return nil
}
