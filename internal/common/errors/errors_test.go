// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// StandardError Tests
// ==========================

func TestStandardError_Error(t *testing.T) {
	err := NewSavedFilterNotFoundError("u1", "cheap")
	assert.Equal(t, "SAVED_FILTER_NOT_FOUND: Saved filter not found (ownerId: u1, name: cheap)", err.Error())

	bare := &StandardError{Code: ErrCodeInternal, Message: "boom"}
	assert.Equal(t, "INTERNAL_ERROR: boom", bare.Error())
}

func TestAsStandardError(t *testing.T) {
	dup := NewDuplicateFilterNameError("u1", "cheap")
	wrapped := fmt.Errorf("save: %w", dup)
	assert.Same(t, dup, AsStandardError(wrapped))

	plain := AsStandardError(stderrors.New("disk full"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "disk full", plain.Details)
	assert.False(t, plain.Retryable)
}

// ==========================
// BPMN Conversion Tests
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"query failed is retried", NewQueryFailedError("postgres", stderrors.New("conn reset")), "QUERY_FAILED", 3},
		{"timeout", NewQueryTimeoutError("elasticsearch"), "QUERY_TIMEOUT", 2},
		{"duplicate name is a business error", NewDuplicateFilterNameError("u1", "x"), "DUPLICATE_FILTER_NAME", 0},
		{"unavailable maps to database", NewDatabaseUnavailableError("postgres"), "DATABASE_ERROR", 0},
		{"invalid action maps to invalid input", NewInvalidActionError("purge"), "INVALID_INPUT", 0},
		{"geocode is not retried", NewGeocodeFailedError("nowhere", nil), "GEOCODE_FAILED", 0},
		{"unmapped code passes through", &StandardError{Code: "CUSTOM", Message: "m", Retryable: true}, "CUSTOM", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	std := NewCacheFailedError("get", stderrors.New("redis down")).WithMetadata("key", "austin-tx")
	vars := ConvertToBPMNError(std).ToErrorVariables()

	assert.Equal(t, "CACHE_FAILED", vars["errorCode"])
	assert.Equal(t, "Insights cache operation failed", vars["errorMessage"])
	assert.Equal(t, true, vars["retryable"])
	assert.Equal(t, "austin-tx", vars["key"])
	require.Contains(t, vars, "timestamp")
}

// ==========================
// Utility Tests
// ==========================

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeQueryFailed:          "DATABASE",
		ErrCodeDatabaseError:        "DATABASE",
		ErrCodeDuplicateFilterName:  "SAVED_FILTER",
		ErrCodeSavedFilterNotFound:  "SAVED_FILTER",
		ErrCodePlacesProviderFailed: "PLACES",
		ErrCodeGeocodeFailed:        "PLACES",
		ErrCodeCacheFailed:          "CACHE",
		ErrCodeInvalidInput:         "VALIDATION",
		ErrCodeValidation:           "VALIDATION",
		ErrCodeTimeout:              "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), code)
	}
	assert.True(t, IsRetryableErrorCode(ErrCodeCacheFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidation))
}

func TestRetriesLeft(t *testing.T) {
	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Retries: retries}}
	}
	tests := []struct {
		name    string
		retries int32
		max     int
		want    int32
	}{
		{"decrements", 3, 3, 2},
		{"capped at max", 5, 2, 2},
		{"never negative", 0, 3, 0},
		{"no retries for business errors", 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RetriesLeft(job(tt.retries), tt.max))
		})
	}
}
