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
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value or collection size is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeJobNotCompleted is used when a print job has no document yet
	ErrCodeJobNotCompleted = "ERR_JOB_NOT_COMPLETED"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeInvalidTenant   = "ERR_INVALID_TENANT"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Document error codes
const (
	ErrCodeRenderFailed    = "ERR_RENDER_FAILED"
	ErrCodeRenderCancelled = "ERR_RENDER_CANCELLED"
	// ErrCodeAssetUnavailable is used when the logo could not be fetched
	ErrCodeAssetUnavailable = "ERR_ASSET_UNAVAILABLE"
	ErrCodeStorageFailed    = "ERR_STORAGE_FAILED"
	ErrCodeStorageDisabled  = "ERR_STORAGE_DISABLED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeJobNotCompleted: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidTenant:   http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRenderFailed:     http.StatusInternalServerError,
	ErrCodeRenderCancelled:  http.StatusServiceUnavailable,
	ErrCodeAssetUnavailable: http.StatusBadGateway,
	ErrCodeStorageFailed:    http.StatusInternalServerError,
	ErrCodeStorageDisabled:  http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain and renderer error codes to the
// standardized API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":         ErrCodeNotFound,
	"INVALID_INPUT":     ErrCodeInvalidInput,
	"INVALID_STATE":     ErrCodeInvalidState,
	"VALIDATION_ERROR":  ErrCodeValidation,
	"BAD_REQUEST":       ErrCodeBadRequest,
	"INTERNAL_ERROR":    ErrCodeInternal,
	"INVALID_TENANT":    ErrCodeInvalidTenant,
	"INVALID_INVOICE":   ErrCodeInvalidInput,
	"INVALID_INVOICES":  ErrCodeInvalidInput,
	"INVALID_LINE_ITEM": ErrCodeInvalidInput,
	"INVALID_FILE_NAME": ErrCodeInvalidInput,
	"BATCH_TOO_LARGE":   ErrCodeValidationRange,
	"JOB_NOT_COMPLETED": ErrCodeJobNotCompleted,
	"STORAGE_DISABLED":  ErrCodeStorageDisabled,

	"RENDER_FAILED":      ErrCodeRenderFailed,
	"FONT_FAILED":        ErrCodeRenderFailed,
	"RENDER_CANCELLED":   ErrCodeRenderCancelled,
	"ASSET_FETCH_FAILED": ErrCodeAssetUnavailable,
	"STORAGE_FAILED":     ErrCodeStorageFailed,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
