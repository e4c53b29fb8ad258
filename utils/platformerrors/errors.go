package platformerrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInvalidArgument means caller input was malformed; the caller must fix the input.
	ErrorTypeInvalidArgument ErrorType = "INVALID_ARGUMENT"
	// ErrorTypeConfiguration means the engine id or another deployment setting is missing or invalid.
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"
	// ErrorTypeCredential means service-account credential resolution failed.
	ErrorTypeCredential ErrorType = "CREDENTIAL"
	// ErrorTypeTransientSearch means the upstream API timed out or returned 429/5xx after retries; callers may retry later.
	ErrorTypeTransientSearch ErrorType = "TRANSIENT_SEARCH"
	// ErrorTypeSearchRequest means the upstream API rejected the request as malformed or unauthorized.
	ErrorTypeSearchRequest ErrorType = "SEARCH_REQUEST"
	// ErrorTypeInternal is the fallback for unclassified failures.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// Layer represents the application layer where the error occurred
type Layer string

const (
	LayerDomain         Layer = "domain"
	LayerRoute          Layer = "route"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError represents an error with a type, origin layer, and metadata.
// Messages must never embed credential material or raw tokens.
type PlatformError struct {
	Type      ErrorType
	Layer     Layer
	Message   string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Layer, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Layer, e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *PlatformError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the error type
func (e *PlatformError) GetErrorType() ErrorType {
	return e.Type
}

// NewError creates a new PlatformError with the specified parameters
func NewError(layer Layer, errorType ErrorType, message string, err error) *PlatformError {
	return &PlatformError{
		Type:      errorType,
		Layer:     layer,
		Message:   message,
		Err:       err,
		Timestamp: time.Now().UTC(),
	}
}

// AsError wraps an error with layer context, preserving the type of an
// existing PlatformError in the chain.
func AsError(layer Layer, err error, message string) *PlatformError {
	if err == nil {
		return nil
	}

	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return NewError(layer, platformErr.Type, fmt.Sprintf("%s: %s", message, platformErr.Message), platformErr)
	}

	return NewError(layer, ErrorTypeInternal, message, err)
}

// TypeOf returns the error type of err, or ErrorTypeInternal when err is not
// a PlatformError.
func TypeOf(err error) ErrorType {
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr.Type
	}
	return ErrorTypeInternal
}

// IsErrorType checks if an error is a PlatformError with the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}

	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr.Type == errorType
	}

	return false
}

// Retryable reports whether the failure class may succeed on a later call.
func Retryable(err error) bool {
	return IsErrorType(err, ErrorTypeTransientSearch)
}

// ErrorTypeToHTTPStatus maps error types to HTTP status codes
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeInvalidArgument:
		return http.StatusBadRequest
	case ErrorTypeConfiguration, ErrorTypeCredential:
		return http.StatusServiceUnavailable
	case ErrorTypeTransientSearch, ErrorTypeSearchRequest:
		return http.StatusBadGateway
	case ErrorTypeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// LogError logs a platform error with proper structure
func LogError(logger zerolog.Logger, err *PlatformError) {
	if err == nil {
		return
	}

	event := logger.Error().
		Str("error_type", string(err.Type)).
		Str("layer", string(err.Layer)).
		Time("timestamp_utc", err.Timestamp)

	if err.Err != nil {
		event = event.Err(err.Err)
	}

	event.Msg(err.Message)
}
