package dto

import (
	"net/http"

	"github.com/storeline/backend/internal/domain/shared"
)

// Codes produced by the transport layer itself. Domain errors keep the code
// of their shared.DomainError.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
	ErrCodeTokenRevoked = "TOKEN_REVOKED"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "PERMISSION_DENIED"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,

	shared.ErrTenantNotIdentified.Code:      http.StatusForbidden,
	shared.ErrPermissionDenied.Code:         http.StatusForbidden,
	shared.ErrSequenceAllocationFailed.Code: http.StatusServiceUnavailable,
	shared.ErrInsufficientStock.Code:        http.StatusUnprocessableEntity,
	shared.ErrInvalidReturnState.Code:       http.StatusConflict,
	shared.ErrNotFound.Code:                 http.StatusNotFound,
	shared.ErrUnauthorized.Code:             http.StatusUnauthorized,
	shared.ErrInvalidInput.Code:             http.StatusBadRequest,
	shared.ErrConflict.Code:                 http.StatusConflict,
	shared.ErrConcurrencyConflict.Code:      http.StatusConflict,
	shared.ErrInvalidState.Code:             http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
