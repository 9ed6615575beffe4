package dto

import (
	"net/http"

	"github.com/erp/stockflow/internal/domain/shared"
)

// Domain error codes, as carried by shared.DomainError
const (
	ErrCodeNotFound           = shared.CodeNotFound
	ErrCodeInvalidArgument    = shared.CodeInvalidArgument
	ErrCodeConflict           = shared.CodeConflict
	ErrCodeInsufficientStock  = shared.CodeInsufficientStock
	ErrCodeInvariantViolation = shared.CodeInvariantViolation
	ErrCodeTransient          = shared.CodeTransient
)

// Transport error codes raised by the HTTP layer itself
const (
	// ErrCodeValidation is used when request binding or field validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRouteNotFound is used for unknown routes
	ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"
	// ErrCodeInternal is used for unexpected failures
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeUnavailable is used when a dependency such as the database is down
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeInvalidArgument:    http.StatusBadRequest,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeInvariantViolation: http.StatusInternalServerError,
	ErrCodeTransient:          http.StatusServiceUnavailable,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// retryableCodes are safe for the client to retry unchanged
var retryableCodes = map[string]bool{
	ErrCodeTransient:   true,
	ErrCodeUnavailable: true,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether an error code marks a temporary failure
func IsRetryable(code string) bool {
	return retryableCodes[code]
}
