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

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigSave  ErrorCode = "CONFIG_SAVE"

	// Resolution errors, raised before anything on disk is touched
	ErrUnknownTitle      ErrorCode = "UNKNOWN_TITLE"
	ErrUnknownPackage    ErrorCode = "UNKNOWN_PACKAGE"
	ErrPackageDirMissing ErrorCode = "PACKAGE_DIR_NOT_FOUND"
	ErrToolNotFound      ErrorCode = "TOOL_NOT_FOUND"

	// Staging errors
	ErrUnresolvedPath ErrorCode = "UNRESOLVED_PATH"
	ErrArchiveRead    ErrorCode = "ARCHIVE_READ"

	// Mutation errors
	ErrChecksumMismatch ErrorCode = "CHECKSUM_MISMATCH"
	ErrSourceMissing    ErrorCode = "SOURCE_MISSING"
	ErrNoBackup         ErrorCode = "NO_BACKUP"
	ErrToolFailure      ErrorCode = "EXTERNAL_TOOL_FAILURE"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// KhError represents a structured error with code and details
type KhError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KhError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KhError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *KhError) Is(target error) bool {
	var targetErr *KhError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KhError with the given code and message
func New(code ErrorCode, message string) *KhError {
	return &KhError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KhError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KhError {
	return &KhError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KhError
func Wrap(err error, code ErrorCode, message string) *KhError {
	if err == nil {
		return nil
	}
	return &KhError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KhError {
	if err == nil {
		return nil
	}
	return &KhError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KhError) WithDetail(key string, value interface{}) *KhError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *KhError) WithDetails(details map[string]interface{}) *KhError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var khErr *KhError
	if errors.As(err, &khErr) {
		return khErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a KhError
func GetErrorCode(err error) ErrorCode {
	var khErr *KhError
	if errors.As(err, &khErr) {
		return khErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a KhError
func GetErrorDetails(err error) map[string]interface{} {
	var khErr *KhError
	if errors.As(err, &khErr) {
		return khErr.Details
	}
	return nil
}

