package dto

import "net/http"

// Wire error codes. Every error leaving the API carries one of these
// ERR_-prefixed codes; domain-layer codes are translated on the way out by
// NormalizeErrorCode.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
	ErrCodeTimeout  = "ERR_TIMEOUT"

	// Request validation
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"

	// Authentication and authorization
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	// Resources
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest marks a replayed idempotency key.
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"

	// Business rules
	ErrCodeInvalidState  = "ERR_INVALID_STATE"
	ErrCodeBusinessRule  = "ERR_BUSINESS_RULE"
	ErrCodeInvalidAmount = "ERR_INVALID_AMOUNT"
	// ErrCodeExceedsBalance marks a payment larger than the outstanding fee.
	ErrCodeExceedsBalance = "ERR_EXCEEDS_BALANCE"

	// Malformed input
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	// Rate limiting
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus decides the response status for each wire code.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeTimeout:  http.StatusGatewayTimeout,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	// Amount problems answer 400, matching what clients of the previous
	// system expect. Other rule violations answer 422.
	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:   http.StatusUnprocessableEntity,
	ErrCodeInvalidAmount:  http.StatusBadRequest,
	ErrCodeExceedsBalance: http.StatusBadRequest,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the status for a wire code, or 500 for codes that
// are not in the table.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping translates domain error codes to wire codes.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"DUPLICATE_REQUEST":    ErrCodeDuplicateRequest,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"VALIDATION_ERRORS":    ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	// Ledger rules
	"INVALID_AMOUNT":  ErrCodeInvalidAmount,
	"EXCEEDS_BALANCE": ErrCodeExceedsBalance,

	// Aggregate field validation
	"INVALID_NAME":            ErrCodeValidation,
	"INVALID_GENDER":          ErrCodeValidation,
	"INVALID_IDENTITY_NUMBER": ErrCodeValidation,
	"INVALID_CLASS_LEVEL":     ErrCodeValidation,
	"INVALID_ADDRESS":         ErrCodeValidation,
	"INVALID_DATE_OF_BIRTH":   ErrCodeValidation,
	"INVALID_FEE":             ErrCodeValidation,
	"INVALID_YEAR":            ErrCodeValidation,
	"INVALID_DATE":            ErrCodeValidation,
	"INVALID_USERNAME":        ErrCodeValidation,
	"INVALID_PASSWORD":        ErrCodeValidation,
	"INVALID_EMAIL":           ErrCodeValidation,

	// Authentication
	"INVALID_CREDENTIALS": ErrCodeUnauthorized,
	"ACCOUNT_LOCKED":      ErrCodeUnauthorized,
	"ACCOUNT_DEACTIVATED": ErrCodeUnauthorized,
	"ACCOUNT_INACTIVE":    ErrCodeUnauthorized,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenInvalid,
	"TOKEN_ERROR":         ErrCodeUnauthorized,
	"USER_NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_DEACTIVATED": ErrCodeConflict,
	"PASSWORD_HASH_ERROR": ErrCodeInternal,
}

// NormalizeErrorCode maps a domain code to its wire code. Codes already in
// the wire format, and unknown codes, pass through unchanged.
func NormalizeErrorCode(code string) string {
	if wire, ok := LegacyErrorCodeMapping[code]; ok {
		return wire
	}
	return code
}
