package shared

import "errors"

// DomainError represents a domain-level error with a stable, client-facing code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal to sentinels
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes surfaced to customers
const (
	CodeNotAuthenticated       = "NOT_AUTHENTICATED"
	CodeNotAuthorized          = "NOT_AUTHORIZED"
	CodeIncompleteShippingInfo = "INCOMPLETE_SHIPPING_INFO"
	CodeEmptyOrder             = "EMPTY_ORDER"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeWindowExpired          = "WINDOW_EXPIRED"
	CodePersistenceFailure     = "PERSISTENCE_FAILURE"
)

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict    = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrNotAuthenticated       = NewDomainError(CodeNotAuthenticated, "Please sign in first")
	ErrNotAuthorized          = NewDomainError(CodeNotAuthorized, "Not authorized to act on this resource")
	ErrIncompleteShippingInfo = NewDomainError(CodeIncompleteShippingInfo, "Shipping name, phone and address are required")
	ErrEmptyOrder             = NewDomainError(CodeEmptyOrder, "There are no items to check out")
	ErrInvalidTransition      = NewDomainError(CodeInvalidTransition, "Action is not allowed in the current order status")
	ErrWindowExpired          = NewDomainError(CodeWindowExpired, "The return window for this order has closed")
	ErrPersistenceFailure     = NewDomainError(CodePersistenceFailure, "The request could not be saved, please try again")
)

// AsDomainError returns the domain error in err's chain, if any
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
