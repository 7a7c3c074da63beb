package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// AppError is the custom error type for the application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrAlreadyExists(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_ALREADY_EXISTS,
		Message:  fmt.Sprintf("%s already exists", resource),
	}
}

func ErrPermissionDenied(action string) AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_PERMISSION_DENIED,
		Message:  fmt.Sprintf("Permission denied: %s", action),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

// Authentication Errors
func ErrInvalidCredentials() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_CREDENTIALS,
		Message:  "Invalid email or password",
	}
}

func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_TOKEN,
		Message:  "Invalid authentication token",
	}
}

func ErrTokenExpired() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_TOKEN_EXPIRED,
		Message:  "Authentication token has expired",
	}
}

func ErrUserNotFound() AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_AUTH_USER_NOT_FOUND,
		Message:  "User not found",
	}
}

func ErrUserAlreadyExists(email string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_AUTH_USER_ALREADY_EXISTS,
		Message:  "User already exists",
	}.WithDetail("email", email)
}

func ErrProviderFailed(provider string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_PROVIDER_FAILED,
		Message:  fmt.Sprintf("Sign-in failed with %s", provider),
	}
}

// Session Errors
func ErrSessionNotFound(joinCode string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_SESSION_NOT_FOUND,
		Message:  "Session not found or has ended",
	}.WithDetail("join_code", joinCode)
}

func ErrSessionEnded(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusGone,
		Code:     ErrorCode_SESSION_ENDED,
		Message:  "Session has ended",
	}.WithDetail("session_id", sessionID)
}

func ErrSessionNotJoined() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_SESSION_NOT_JOINED,
		Message:  "No session joined",
	}
}

// ErrOperationPending rejects a duplicate submission while the first
// request is still in flight.
func ErrOperationPending(operation string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_OPERATION_PENDING,
		Message:  fmt.Sprintf("Operation already in progress: %s", operation),
	}
}

// Validation Errors
func ErrValidation(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_VALIDATION_FAILED,
		Message:  message,
	}
}

// Backend integration Errors
func ErrNetworkFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_NETWORK_FAILED,
		Message:  fmt.Sprintf("Network request failed: %s", operation),
	}
}

func ErrBackendFailed(operation string, status int, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: status,
		Code:     ErrorCode_BACKEND_FAILED,
		Message:  fmt.Sprintf("Backend call failed: %s", operation),
	}.WithDetail("status", fmt.Sprintf("%d", status))
}

// CodeOf extracts the ErrorCode from err, or ErrorCode_INTERNAL when err
// is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCode_INTERNAL
}

// IsNotFound reports whether err represents a missing resource
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrorCode_NOT_FOUND, ErrorCode_SESSION_NOT_FOUND, ErrorCode_AUTH_USER_NOT_FOUND:
		return true
	}
	return false
}

// IsAuthFailure reports whether err should be shown inline on an auth form
func IsAuthFailure(err error) bool {
	switch CodeOf(err) {
	case ErrorCode_UNAUTHENTICATED, ErrorCode_AUTH_INVALID_CREDENTIALS,
		ErrorCode_AUTH_INVALID_TOKEN, ErrorCode_AUTH_TOKEN_EXPIRED,
		ErrorCode_AUTH_USER_ALREADY_EXISTS, ErrorCode_AUTH_PROVIDER_FAILED:
		return true
	}
	return false
}

// IsRetryable reports whether the failed operation can be retried without
// corrupting already-displayed state.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCode_NETWORK_FAILED, ErrorCode_BACKEND_FAILED:
		return true
	}
	return false
}
