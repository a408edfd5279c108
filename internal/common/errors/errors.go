// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidAction ErrorCode = "INVALID_ACTION"

	ErrCodeQueryFailed  ErrorCode = "QUERY_FAILED"
	ErrCodeQueryTimeout ErrorCode = "QUERY_TIMEOUT"

	ErrCodeDuplicateFilterName ErrorCode = "DUPLICATE_FILTER_NAME"
	ErrCodeSavedFilterNotFound ErrorCode = "SAVED_FILTER_NOT_FOUND"
	ErrCodeDatabaseError       ErrorCode = "DATABASE_ERROR"
	ErrCodeDatabaseUnavailable ErrorCode = "DATABASE_UNAVAILABLE"

	ErrCodePlacesProviderFailed ErrorCode = "PLACES_PROVIDER_FAILED"
	ErrCodeGeocodeFailed        ErrorCode = "GEOCODE_FAILED"
	ErrCodeCacheFailed          ErrorCode = "CACHE_FAILED"

	ErrCodeTimeout  ErrorCode = "TIMEOUT"
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidation, "Filter validation failed", details, false)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

func NewInvalidActionError(action string) *StandardError {
	return newError(ErrCodeInvalidAction, "Unsupported action", fmt.Sprintf("action: %s", action), false)
}

// NewQueryFailedError creates a retryable listing query error.
func NewQueryFailedError(backend string, err error) *StandardError {
	return newError(ErrCodeQueryFailed, "Listing query failed",
		fmt.Sprintf("backend: %s, error: %s", backend, errText(err)), true)
}

func NewQueryTimeoutError(backend string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Listing query timeout", fmt.Sprintf("backend: %s", backend), true)
}

// NewDuplicateFilterNameError is a business error; the process decides whether to overwrite.
func NewDuplicateFilterNameError(owner, name string) *StandardError {
	return newError(ErrCodeDuplicateFilterName, "Saved filter name already exists",
		fmt.Sprintf("ownerId: %s, name: %s", owner, name), false)
}

func NewSavedFilterNotFoundError(owner, name string) *StandardError {
	return newError(ErrCodeSavedFilterNotFound, "Saved filter not found",
		fmt.Sprintf("ownerId: %s, name: %s", owner, name), false)
}

func NewDatabaseError(operation string, err error) *StandardError {
	return newError(ErrCodeDatabaseError, "Database operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, errText(err)), true)
}

func NewDatabaseUnavailableError(service string) *StandardError {
	return newError(ErrCodeDatabaseUnavailable, "Database not configured",
		fmt.Sprintf("service: %s", service), false)
}

// NewPlacesProviderFailedError creates a retryable places lookup error.
func NewPlacesProviderFailedError(category string, err error) *StandardError {
	return newError(ErrCodePlacesProviderFailed, "Places provider request failed",
		fmt.Sprintf("category: %s, error: %s", category, errText(err)), true)
}

// NewGeocodeFailedError is not retryable: an unresolvable address stays unresolvable.
func NewGeocodeFailedError(address string, err error) *StandardError {
	return newError(ErrCodeGeocodeFailed, "Address could not be geocoded",
		fmt.Sprintf("address: %s, error: %s", address, errText(err)), false)
}

func NewCacheFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeCacheFailed, "Insights cache operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, errText(err)), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), errText(err), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errText(err), false)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled on BPMN boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidation:           "VALIDATION_ERROR",
	ErrCodeInvalidInput:         "INVALID_INPUT",
	ErrCodeInvalidAction:        "INVALID_INPUT",
	ErrCodeQueryFailed:          "QUERY_FAILED",
	ErrCodeQueryTimeout:         "QUERY_TIMEOUT",
	ErrCodeDuplicateFilterName:  "DUPLICATE_FILTER_NAME",
	ErrCodeSavedFilterNotFound:  "SAVED_FILTER_NOT_FOUND",
	ErrCodeDatabaseError:        "DATABASE_ERROR",
	ErrCodeDatabaseUnavailable:  "DATABASE_ERROR",
	ErrCodePlacesProviderFailed: "PLACES_PROVIDER_FAILED",
	ErrCodeGeocodeFailed:        "GEOCODE_FAILED",
	ErrCodeCacheFailed:          "CACHE_FAILED",
	ErrCodeTimeout:              "TIMEOUT",
	ErrCodeInternal:             "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeQueryFailed,
		ErrCodeDatabaseError,
		ErrCodePlacesProviderFailed,
		ErrCodeCacheFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError unwraps err to a StandardError, or wraps it as an internal error.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "FILTER"):
		return "SAVED_FILTER"
	case strings.Contains(codeStr, "PLACES") || strings.Contains(codeStr, "GEOCODE"):
		return "PLACES"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
