package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrConflict            = NewDomainError("CONFLICT", "Resource conflicts with existing data")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Authentication required")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)

// Tenancy and authorization errors. These are never retried by the server.
var (
	ErrTenantNotIdentified = NewDomainError("TENANT_NOT_IDENTIFIED", "Tenant not identified")
	ErrPermissionDenied    = NewDomainError("PERMISSION_DENIED", "This action is unauthorized.")
	ErrInvalidReturnState  = NewDomainError("INVALID_RETURN_STATE", "Return has already been decided")
)

// ErrSequenceAllocationFailed is transient: no document exists and the client may retry the request.
var ErrSequenceAllocationFailed = NewDomainError("SEQUENCE_ALLOCATION_FAILED", "Could not allocate a document number, please retry")

// CodeOf returns the code of the first DomainError in err's chain, or "" when there is none.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// Invalid returns an INVALID_INPUT error carrying a specific message.
// errors.Is(err, ErrInvalidInput) holds for the result.
func Invalid(message string) error {
	return Detailed(ErrInvalidInput, message)
}

// Conflict returns a CONFLICT error carrying a specific message
func Conflict(message string) error {
	return Detailed(ErrConflict, message)
}

// Detailed returns an error with the code of sentinel and its own message.
// errors.Is(err, sentinel) holds for the result.
func Detailed(sentinel *DomainError, message string) error {
	return &detailedError{DomainError: DomainError{Code: sentinel.Code, Message: message}, sentinel: sentinel}
}

type detailedError struct {
	DomainError
	sentinel *DomainError
}

func (e *detailedError) Error() string { return e.Message }

func (e *detailedError) Is(target error) bool { return target == e.sentinel }

func (e *detailedError) As(target any) bool {
	if de, ok := target.(**DomainError); ok {
		*de = &e.DomainError
		return true
	}
	return false
}
