package utils

import "fmt"

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrInvalidInput = "INVALID_INPUT"

	// Authentication/Authorization errors
	ErrUnauthorized = "UNAUTHORIZED"
	ErrForbidden    = "FORBIDDEN" // Caller is authenticated but the gate denied the action
	ErrInvalidToken = "INVALID_TOKEN"

	// Identity errors
	ErrDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"
	ErrAccountDisabled    = "ACCOUNT_DISABLED"

	// Moderation errors
	ErrInvalidTransition = "INVALID_TRANSITION" // approve/reject on a non-pending post

	// Posting limits and validation
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrValidationFailed  = "VALIDATION_FAILED"

	// Collaborator failures
	ErrUploadFailed = "UPLOAD_FAILED"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"

	ErrDatabase = "DATABASE_ERROR"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// Specific error creators for common cases
func NewNotFoundError(what string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: what + " not found",
	}
}

func NewDeniedError(reason string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: "Denied: " + reason,
	}
}

func NewValidationError(field string) *AppError {
	return &AppError{
		Code:    ErrValidationFailed,
		Message: "Missing or invalid field: " + field,
	}
}

func NewRateLimitError(quota int) *AppError {
	return &AppError{
		Code:    ErrRateLimitExceeded,
		Message: fmt.Sprintf("Monthly post quota of %d reached", quota),
	}
}

func NewActorTimeoutError(actorName string) *AppError {
	return &AppError{
		Code:    ErrActorTimeout,
		Message: "Actor communication timeout: " + actorName,
	}
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound:
		return 404 // http.StatusNotFound
	case ErrInvalidInput, ErrValidationFailed:
		return 400 // http.StatusBadRequest
	case ErrUnauthorized, ErrInvalidToken, ErrInvalidCredentials:
		return 401 // http.StatusUnauthorized
	case ErrForbidden, ErrAccountDisabled:
		return 403 // http.StatusForbidden
	case ErrDuplicateEmail, ErrInvalidTransition:
		return 409 // http.StatusConflict
	case ErrRateLimitExceeded:
		return 429 // http.StatusTooManyRequests
	case ErrUploadFailed, ErrDatabase, ErrActorTimeout:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
