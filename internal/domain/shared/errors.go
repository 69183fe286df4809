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
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInvariantViolation  = NewDomainError("INVARIANT_VIOLATION", "Stock level invariant violated")
)

// IsNotFound reports whether err is (or wraps) a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	return hasCode(err, "NOT_FOUND")
}

// IsConflict reports whether err is a duplicate or state-conflict domain error.
func IsConflict(err error) bool {
	return hasCode(err, "ALREADY_EXISTS") || hasCode(err, "CONFLICT") || hasCode(err, "DUPLICATE_MOVEMENT")
}

// IsConcurrencyConflict reports whether err indicates an optimistic lock failure.
func IsConcurrencyConflict(err error) bool {
	return hasCode(err, "CONCURRENCY_CONFLICT") || hasCode(err, "OPTIMISTIC_LOCK_FAILED")
}

// IsInsufficientStock reports whether err indicates a stock shortage.
func IsInsufficientStock(err error) bool {
	return hasCode(err, "INSUFFICIENT_STOCK")
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
