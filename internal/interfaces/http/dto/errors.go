package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUnavailable is used when a backing store cannot be reached
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
)

// Authentication error codes
const (
	ErrCodeUnauthorized  = "ERR_UNAUTHORIZED"
	ErrCodeForbidden     = "ERR_FORBIDDEN"
	ErrCodeTokenExpired  = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "ERR_TOKEN_INVALID"
	ErrCodeMissingCart   = "ERR_MISSING_CART_SESSION"
	ErrCodeSellerOnly    = "ERR_SELLER_ONLY"
	ErrCodeTooLarge      = "ERR_REQUEST_TOO_LARGE"
	ErrCodeMaxConnection = "ERR_MAX_CONNECTIONS"
)

// Resource and business rule error codes
const (
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeNoMethod     = "ERR_METHOD_NOT_ALLOWED"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeTokenExpired:  http.StatusUnauthorized,
	ErrCodeTokenInvalid:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeSellerOnly:    http.StatusForbidden,
	ErrCodeMissingCart:   http.StatusBadRequest,
	ErrCodeTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeMaxConnection: http.StatusServiceUnavailable,
	ErrCodeNoMethod:      http.StatusMethodNotAllowed,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"INVALID_INPUT":           ErrCodeValidation,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"ALREADY_EXISTS":          ErrCodeConflict,
	"INVALID_QUANTITY":        ErrCodeValidation,
	"INVALID_NAME":            ErrCodeValidation,
	"INVALID_PRICE":           ErrCodeValidation,
	"INVALID_CURRENCY":        ErrCodeValidation,
	"INVALID_CATEGORY":        ErrCodeValidation,
	"INVALID_SELLER":          ErrCodeValidation,
	"EMPTY_CART":              ErrCodeBusinessRule,
	"EMPTY_ORDER":             ErrCodeBusinessRule,
	"ORDER_WITHOUT_USER":      ErrCodeBusinessRule,
	"MISSING_CHANNEL":         ErrCodeBusinessRule,
	"INVALID_CHANNEL":         ErrCodeBusinessRule,
	"DISPATCH_IN_PROGRESS":    ErrCodeConflict,
	"ORDER_STORE_UNAVAILABLE": ErrCodeUnavailable,
	"IMAGE_STORAGE_DISABLED":  ErrCodeUnavailable,
	"IMAGE_NOT_UPLOADED":      ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
