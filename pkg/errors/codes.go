package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeUnknown            ErrorCode = "COMMON_099"

	// CodeOK is the sentinel returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Document conversion (OCR) error codes.  Conversion failures are surfaced to
// the caller as a distinct upstream failure; the appeal pipeline is never
// invoked when conversion fails.
const (
	ErrCodeConversionFailed      ErrorCode = "CNV_001"
	ErrCodeConversionEmptyOutput ErrorCode = "CNV_002"
	ErrCodeConversionUnsupported ErrorCode = "CNV_003"
	ErrCodeConversionTooLarge    ErrorCode = "CNV_004"
)

// Text generation (LLM) error codes.  Generation failures are recovered
// locally by the letter composer's deterministic template path and must never
// surface as a pipeline failure.
const (
	ErrCodeGenerationFailed      ErrorCode = "GEN_001"
	ErrCodeGenerationTimeout     ErrorCode = "GEN_002"
	ErrCodeGenerationUnavailable ErrorCode = "GEN_003"
	ErrCodeGenerationEmpty       ErrorCode = "GEN_004"
)

// Appeal module error codes.
const (
	ErrCodeAppealNotFound      ErrorCode = "APL_001"
	ErrCodeAppealInputTooShort ErrorCode = "APL_002"
	ErrCodeAppealSaveFailed    ErrorCode = "APL_003"
	ErrCodeAppealEventFailed   ErrorCode = "APL_004"
)

// Payer reference data error codes.
const (
	ErrCodePayerNotFound    ErrorCode = "PAY_001"
	ErrCodePayerSeedFailed  ErrorCode = "PAY_002"
	ErrCodePayerDataInvalid ErrorCode = "PAY_003"
)

// Object storage error codes.
const (
	ErrCodeStorageUploadFailed   ErrorCode = "STO_001"
	ErrCodeStorageDownloadFailed ErrorCode = "STO_002"
	ErrCodeStorageNotFound       ErrorCode = "STO_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeUnknown:            http.StatusInternalServerError,

	ErrCodeConversionFailed:      http.StatusBadGateway,
	ErrCodeConversionEmptyOutput: http.StatusUnprocessableEntity,
	ErrCodeConversionUnsupported: http.StatusBadRequest,
	ErrCodeConversionTooLarge:    http.StatusRequestEntityTooLarge,

	ErrCodeGenerationFailed:      http.StatusInternalServerError,
	ErrCodeGenerationTimeout:     http.StatusGatewayTimeout,
	ErrCodeGenerationUnavailable: http.StatusServiceUnavailable,
	ErrCodeGenerationEmpty:       http.StatusInternalServerError,

	ErrCodeAppealNotFound:      http.StatusNotFound,
	ErrCodeAppealInputTooShort: http.StatusBadRequest,
	ErrCodeAppealSaveFailed:    http.StatusInternalServerError,
	ErrCodeAppealEventFailed:   http.StatusInternalServerError,

	ErrCodePayerNotFound:    http.StatusNotFound,
	ErrCodePayerSeedFailed:  http.StatusInternalServerError,
	ErrCodePayerDataInvalid: http.StatusInternalServerError,

	ErrCodeStorageUploadFailed:   http.StatusInternalServerError,
	ErrCodeStorageDownloadFailed: http.StatusInternalServerError,
	ErrCodeStorageNotFound:       http.StatusNotFound,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeUnknown:            "unknown error",

	ErrCodeConversionFailed:      "document conversion failed",
	ErrCodeConversionEmptyOutput: "document conversion produced no text",
	ErrCodeConversionUnsupported: "unsupported document type",
	ErrCodeConversionTooLarge:    "document too large",

	ErrCodeGenerationFailed:      "letter generation failed",
	ErrCodeGenerationTimeout:     "letter generation timed out",
	ErrCodeGenerationUnavailable: "letter generation service unavailable",
	ErrCodeGenerationEmpty:       "letter generation returned empty text",

	ErrCodeAppealNotFound:      "appeal not found",
	ErrCodeAppealInputTooShort: "denial text must be at least 50 characters",
	ErrCodeAppealSaveFailed:    "failed to save appeal",
	ErrCodeAppealEventFailed:   "failed to publish appeal event",

	ErrCodePayerNotFound:    "payer not found",
	ErrCodePayerSeedFailed:  "failed to seed payer data",
	ErrCodePayerDataInvalid: "invalid payer reference data",

	ErrCodeStorageUploadFailed:   "object upload failed",
	ErrCodeStorageDownloadFailed: "object download failed",
	ErrCodeStorageNotFound:       "object not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
