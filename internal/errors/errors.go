package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., an account already registered).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"

	// ErrCodeMalformedToken indicates a bearer token that could not be decoded.
	ErrCodeMalformedToken ErrorCode = "malformed_token"
	// ErrCodeStaleCredential indicates a persisted credential that normalises to "no token".
	ErrCodeStaleCredential ErrorCode = "stale_credential"
	// ErrCodeNetwork indicates a transport-level failure talking to the API.
	ErrCodeNetwork ErrorCode = "network"
	// ErrCodeAPI indicates the API answered but reported failure.
	ErrCodeAPI ErrorCode = "api"
	// ErrCodeSwitchConflict indicates another session-mutating operation is in flight.
	ErrCodeSwitchConflict ErrorCode = "switch_conflict"
	// ErrCodeStoreMismatch indicates a rescoped token does not carry the requested store.
	ErrCodeStoreMismatch ErrorCode = "store_mismatch"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
	// Status is the HTTP status returned by the API (optional, for api errors)
	Status int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
	}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
	}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
	}
}

// MalformedToken creates a new MalformedToken error wrapping the decode failure.
func MalformedToken(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedToken,
		Message: "malformed bearer token",
		Cause:   cause,
	}
}

// StaleCredential creates a new StaleCredential error.
func StaleCredential() *AppError {
	return &AppError{
		Code:    ErrCodeStaleCredential,
		Message: "persisted credential is empty or a placeholder",
	}
}

// Network creates a new Network error wrapping the transport failure.
func Network(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeNetwork,
		Message: "network request failed",
		Cause:   cause,
	}
}

// API creates a new API error carrying the server-provided message and HTTP status.
func API(status int, message string) *AppError {
	return &AppError{
		Code:    ErrCodeAPI,
		Message: message,
		Status:  status,
	}
}

// SwitchConflict creates a new SwitchConflict error naming the operation in flight.
func SwitchConflict(inFlight string) *AppError {
	return &AppError{
		Code:    ErrCodeSwitchConflict,
		Message: fmt.Sprintf("%s already in progress, try again", inFlight),
	}
}

// StoreMismatch creates a new StoreMismatch error.
func StoreMismatch(requested, granted string) *AppError {
	return &AppError{
		Code:    ErrCodeStoreMismatch,
		Message: fmt.Sprintf("requested store %q but token is scoped to %q", requested, granted),
		Field:   "store_id",
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsMalformedToken checks if an error is a MalformedToken error.
func IsMalformedToken(err error) bool {
	return isCode(err, ErrCodeMalformedToken)
}

// IsNetwork checks if an error is a Network error.
func IsNetwork(err error) bool {
	return isCode(err, ErrCodeNetwork)
}

// IsAPI checks if an error is an API error.
func IsAPI(err error) bool {
	return isCode(err, ErrCodeAPI)
}

// IsSwitchConflict checks if an error is a SwitchConflict error.
func IsSwitchConflict(err error) bool {
	return isCode(err, ErrCodeSwitchConflict)
}

// IsStoreMismatch checks if an error is a StoreMismatch error.
func IsStoreMismatch(err error) bool {
	return isCode(err, ErrCodeStoreMismatch)
}

// IsUnauthorized reports whether the API rejected the credential (HTTP 401).
func IsUnauthorized(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeAPI && appErr.Status == 401
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

const fallbackUserMessage = "Something went wrong. Please try again."

// UserMessage returns text suitable for showing to an end user.
// API messages pass through; transport and internal details are replaced.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fallbackUserMessage
	}
	switch appErr.Code {
	case ErrCodeAPI, ErrCodeValidation, ErrCodeConflict:
		if msg := strings.TrimSpace(appErr.Message); msg != "" {
			return msg
		}
		return fallbackUserMessage
	case ErrCodeNetwork, ErrCodeTimeout:
		return "Unable to reach the server. Check your connection and try again."
	case ErrCodeSwitchConflict:
		return "Another account operation is in progress. Please try again in a moment."
	case ErrCodeStoreMismatch:
		return "The store could not be selected. Please try again."
	default:
		return fallbackUserMessage
	}
}
