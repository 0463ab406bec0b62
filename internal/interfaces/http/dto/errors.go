package dto

import (
	"net/http"
	"strings"

	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain codes come from
// the shared package and are passed through unchanged.
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeInvalidInput is used for malformed path or query values
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeTokenExpired is used when the access token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the access token cannot be verified
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the access token was logged out
	ErrCodeTokenRevoked = "TOKEN_REVOKED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Auth
	shared.CodeNotAuthenticated: http.StatusUnauthorized,
	shared.CodeNotAuthorized:    http.StatusForbidden,

	// Business rules -> 422 Unprocessable Entity
	shared.CodeIncompleteShippingInfo: http.StatusUnprocessableEntity,
	shared.CodeEmptyOrder:             http.StatusUnprocessableEntity,

	// Lifecycle conflicts -> 409 Conflict
	shared.CodeInvalidTransition: http.StatusConflict,
	shared.CodeWindowExpired:     http.StatusConflict,
	ErrCodeAlreadyExists:         http.StatusConflict,
	ErrCodeConcurrencyConflict:   http.StatusConflict,
	"ALREADY_RATED":              http.StatusConflict,
	"IDEMPOTENCY_IN_PROGRESS":    http.StatusConflict,
	"PRODUCT_UNAVAILABLE":        http.StatusConflict,

	// Resources
	ErrCodeNotFound: http.StatusNotFound,

	// Input -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	// Transport
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Server
	shared.CodePersistenceFailure: http.StatusInternalServerError,
	ErrCodeInternal:               http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR":         http.StatusInternalServerError,
}

// prefixHTTPStatus covers code families such as INVALID_EMAIL or TOKEN_EXPIRED
var prefixHTTPStatus = []struct {
	prefix string
	status int
}{
	{"INVALID_", http.StatusBadRequest},
	{"TOKEN_", http.StatusUnauthorized},
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	for _, p := range prefixHTTPStatus {
		if strings.HasPrefix(code, p.prefix) {
			return p.status
		}
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps codes emitted by gin or older clients to the
// codes this API documents
var LegacyErrorCodeMapping = map[string]string{
	"UNAUTHORIZED":  shared.CodeNotAuthenticated,
	"FORBIDDEN":     shared.CodeNotAuthorized,
	"BAD_REQUEST":   ErrCodeInvalidInput,
	"INVALID_TOKEN": ErrCodeTokenInvalid,
}

// NormalizeErrorCode converts a legacy error code to the documented format
// If the code is already in the documented format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
