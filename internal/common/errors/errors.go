// Package errors provides the standardized error type carried from handlers to
// the JSON envelope.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeContractPropertyMissing ErrorCode = "CONTRACT_PROPERTY_MISSING"
	ErrCodeContractTypeMismatch    ErrorCode = "CONTRACT_TYPE_MISMATCH"

	ErrCodeRegistryNotFound ErrorCode = "REGISTRY_NOT_FOUND"
	ErrCodeRegistryInvalid  ErrorCode = "REGISTRY_INVALID"

	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeTooManyParameters ErrorCode = "TOO_MANY_PARAMETERS"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"

	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	// EnvelopeCode overrides the envelope code derived from Code when non-zero.
	EnvelopeCode int `json:"-"`
	cause        error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Envelope Mapping
// ==========================

// Envelope codes for failures. 101-104 tell the client how to present the
// message; 300/400/500 report oversized query, form and cookie input.
const (
	EnvelopeFailed          = 0
	EnvelopeFailedTip       = 101
	EnvelopeFailedWarn      = 102
	EnvelopeFailedError     = 103
	EnvelopeFailedFormError = 104

	EnvelopeTooManyQuery   = 300
	EnvelopeTooManyForm    = 400
	EnvelopeTooManyCookies = 500
)

var envelopeCodes = map[ErrorCode]int{
	ErrCodeValidationFailed:  EnvelopeFailedFormError,
	ErrCodeNotFound:          EnvelopeFailedTip,
	ErrCodeRegistryNotFound:  EnvelopeFailedError,
	ErrCodeRegistryInvalid:   EnvelopeFailedError,
	ErrCodeStoreUnavailable:  EnvelopeFailedWarn,
	ErrCodeTooManyParameters: EnvelopeTooManyQuery,
	ErrCodeInternal:          EnvelopeFailedError,
}

var httpStatuses = map[ErrorCode]int{
	ErrCodeValidationFailed:  http.StatusUnprocessableEntity,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeTooManyParameters: http.StatusBadRequest,
	ErrCodeStoreUnavailable:  http.StatusServiceUnavailable,
}

// EnvelopeCode returns the envelope code reported for err.
func EnvelopeCode(err *StandardError) int {
	if err.EnvelopeCode != 0 {
		return err.EnvelopeCode
	}
	if code, ok := envelopeCodes[err.Code]; ok {
		return code
	}
	return EnvelopeFailed
}

// HTTPStatus returns the transport status for err. Contract violations are
// never transport faults, so anything unmapped other than internal errors is 200.
func HTTPStatus(err *StandardError) int {
	if status, ok := httpStatuses[err.Code]; ok {
		return status
	}
	if err.Code == ErrCodeInternal {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError reports rejected request input.
func NewValidationFailedError(details string, fields map[string]interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "request validation failed",
		Details:   details,
		Metadata:  fields,
		Timestamp: time.Now().UTC(),
	}
}

// NewTooManyParametersError reports oversized request input. envelopeCode is
// one of EnvelopeTooManyQuery, EnvelopeTooManyForm or EnvelopeTooManyCookies.
func NewTooManyParametersError(kind string, count, limit, envelopeCode int) *StandardError {
	return &StandardError{
		Code:    ErrCodeTooManyParameters,
		Message: fmt.Sprintf("too many %s parameters", kind),
		Details: fmt.Sprintf("%d %s parameters exceed the limit of %d", count, kind, limit),
		Metadata: map[string]interface{}{
			"kind":  kind,
			"count": count,
			"limit": limit,
		},
		EnvelopeCode: envelopeCode,
		Timestamp:    time.Now().UTC(),
	}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   id,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryNotFoundError reports a missing registry document.
func NewRegistryNotFoundError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryNotFound,
		Message:   "contract registry not found",
		Details:   path,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRegistryInvalidError reports a registry document that failed to decode
// or to match its schema.
func NewRegistryInvalidError(details string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryInvalid,
		Message:   "contract registry is invalid",
		Details:   details,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStoreUnavailableError creates a retryable storage error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "violation store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewContractViolationError describes a failed contract check. It is used for
// logging and reporting only; the response itself carries the override envelope.
func NewContractViolationError(handlerID, reason, diagnostic string) *StandardError {
	code := ErrCodeContractTypeMismatch
	if reason == "property_missing" {
		code = ErrCodeContractPropertyMissing
	}
	return &StandardError{
		Code:    code,
		Message: diagnostic,
		Metadata: map[string]interface{}{
			"handler": handlerID,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryable reports whether the failure may succeed when retried.
func IsRetryable(err *StandardError) bool {
	return err.Retryable
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CONTRACT"):
		return "CONTRACT"
	case strings.HasPrefix(codeStr, "REGISTRY"):
		return "REGISTRY"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARAMETERS"):
		return "REQUEST"
	case strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}
