package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeInvalidCredentials is used when a login does not match a user
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Lending error codes
const (
	ErrCodeAssetNotLendable    = "ERR_ASSET_NOT_LENDABLE"
	ErrCodeInvalidQuantity     = "ERR_INVALID_QUANTITY"
	ErrCodeInvalidDate         = "ERR_INVALID_DATE"
	ErrCodeInvalidDueDate      = "ERR_INVALID_DUE_DATE"
	ErrCodeInvalidStatus       = "ERR_INVALID_STATUS"
	ErrCodeInvalidTransition   = "ERR_INVALID_TRANSITION"
	ErrCodeInvalidAsset        = "ERR_INVALID_ASSET"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
	ErrCodeStockBelowCommitted = "ERR_STOCK_BELOW_COMMITTED"
	ErrCodeAssetInUse          = "ERR_ASSET_IN_USE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	// ErrCodeRateLimited is used when a client exceeds its request budget
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Lending rule violations on the request itself -> 400
	ErrCodeAssetNotLendable:  http.StatusBadRequest,
	ErrCodeInvalidQuantity:   http.StatusBadRequest,
	ErrCodeInvalidDate:       http.StatusBadRequest,
	ErrCodeInvalidDueDate:    http.StatusBadRequest,
	ErrCodeInvalidStatus:     http.StatusBadRequest,
	ErrCodeInvalidTransition: http.StatusBadRequest,
	ErrCodeInvalidAsset:      http.StatusBadRequest,

	// Lending conflicts with current inventory -> 409
	ErrCodeInsufficientStock:   http.StatusConflict,
	ErrCodeStockBelowCommitted: http.StatusConflict,
	ErrCodeAssetInUse:          http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
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
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CONFLICT":             ErrCodeConflict,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	// identity
	"INVALID_CREDENTIALS":  ErrCodeInvalidCredentials,
	"TOKEN_EXPIRED":        ErrCodeTokenExpired,
	"TOKEN_INVALID":        ErrCodeTokenInvalid,
	"INVALID_ROLE":         ErrCodeValidation,
	"INVALID_USERNAME":     ErrCodeValidation,
	"INVALID_PASSWORD":     ErrCodeValidation,
	"INVALID_EMAIL":        ErrCodeValidation,
	"INVALID_DISPLAY_NAME": ErrCodeValidation,
	"PASSWORD_HASH_ERROR":  ErrCodeInternal,

	// lending
	"ASSET_NOT_LENDABLE":    ErrCodeAssetNotLendable,
	"INVALID_QUANTITY":      ErrCodeInvalidQuantity,
	"INVALID_DATE":          ErrCodeInvalidDate,
	"INVALID_DUE_DATE":      ErrCodeInvalidDueDate,
	"INVALID_STATUS":        ErrCodeInvalidStatus,
	"INVALID_TRANSITION":    ErrCodeInvalidTransition,
	"INVALID_ASSET":         ErrCodeInvalidAsset,
	"INSUFFICIENT_STOCK":    ErrCodeInsufficientStock,
	"STOCK_BELOW_COMMITTED": ErrCodeStockBelowCommitted,
	"ASSET_IN_USE":          ErrCodeAssetInUse,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
