package dto

import "net/http"

// Error codes produced by the HTTP layer itself. Domain errors keep their own
// codes (NOT_FOUND, INVALID_AMOUNT, ...) and are mapped below.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	"LEDGER_INCONSISTENT": http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	"INVALID_INPUT":         http.StatusBadRequest,
	"INVALID_AMOUNT":        http.StatusBadRequest,
	"INVALID_CURRENCY":      http.StatusBadRequest,
	"INVALID_CATEGORY":      http.StatusBadRequest,
	"INVALID_DEGREE":        http.StatusBadRequest,
	"INVALID_ROLE":          http.StatusBadRequest,
	"INVALID_STATUS":        http.StatusBadRequest,
	"INVALID_USERNAME":      http.StatusBadRequest,
	"INVALID_PASSWORD":      http.StatusBadRequest,
	"INVALID_MEMBER_NUMBER": http.StatusBadRequest,
	"INVALID_NAME":          http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:  http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,
	"INVALID_STATE":  http.StatusConflict,

	ErrCodeTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
