// internal/workers/search/apply-property-filter/handler_test.go
package applypropertyfilter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-search-workers/internal/common/errors"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/models"
	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/filter"
	"listing-search-workers/internal/search/memory"
)

// ==========================
// Test Helper Functions
// ==========================

type failingSource struct {
	err error
}

func (f failingSource) Name() string { return "failing" }

func (f failingSource) Search(context.Context, filter.Constraints, search.Page) (*search.SourceResult, error) {
	return nil, f.err
}

func sampleListings() []models.Listing {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var out []models.Listing
	for i := 0; i < 25; i++ {
		out = append(out, models.Listing{
			ID:        fmt.Sprintf("L%02d", i),
			Title:     fmt.Sprintf("Listing %d", i),
			Price:     float64(100000 + i*10000),
			Bedrooms:  1 + i%4,
			Status:    "active",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func createTestHandler(t *testing.T, source search.Source) *Handler {
	log := logger.NewTestLogger(t)
	executor := search.NewExecutor(source, search.Options{DefaultPageSize: 10}, log)
	return NewHandler(LoadConfig(), executor, nil, log)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_AppliesFilter(t *testing.T) {
	h := createTestHandler(t, memory.NewSource(sampleListings()))

	out, err := h.Execute(context.Background(), &Input{
		FilterState: filter.State{Bedrooms: filter.Int(3)},
		Pagination:  search.Pagination{Page: 1},
		RequestSeq:  7,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Result)

	assert.False(t, out.Stale)
	assert.Empty(t, out.ErrorCode)
	assert.Equal(t, uint64(7), out.Result.RequestSeq)
	// bedrooms 3 or 4: i%4 in {2,3}
	assert.Equal(t, 12, out.Result.TotalMatches)
	assert.Equal(t, 10, out.Result.PageSize)
	assert.Equal(t, 2, out.Result.TotalPages)
	assert.True(t, out.Result.HasMore)
	assert.Len(t, out.Result.Listings, 10)
	assert.Equal(t, 25, out.Result.Stats.TotalCount)
	for _, l := range out.Result.Listings {
		assert.GreaterOrEqual(t, l.Bedrooms, 3)
	}
}

func TestHandler_Execute_EmptyFilterSkipsSource(t *testing.T) {
	h := createTestHandler(t, failingSource{err: fmt.Errorf("must not be called")})

	out, err := h.Execute(context.Background(), &Input{RequestSeq: 1})
	require.NoError(t, err)

	assert.Empty(t, out.ErrorCode)
	assert.Equal(t, 0, out.Result.TotalMatches)
	assert.Empty(t, out.Result.Listings)
	assert.NotNil(t, out.Result.Listings)
}

// ==========================
// Failure & Sequencing Tests
// ==========================

func TestHandler_Execute_QueryFailureCompletesWithEmptyResult(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode errors.ErrorCode
	}{
		{"connection refused", fmt.Errorf("dial tcp: connection refused"), errors.ErrCodeQueryFailed},
		{"deadline", context.DeadlineExceeded, errors.ErrCodeQueryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, failingSource{err: tt.err})

			out, err := h.Execute(context.Background(), &Input{
				FilterState: filter.State{Search: "loft"},
				RequestSeq:  3,
			})
			require.NoError(t, err)

			assert.Equal(t, string(tt.wantCode), out.ErrorCode)
			assert.NotEmpty(t, out.Error)
			require.NotNil(t, out.Result)
			assert.Equal(t, 0, out.Result.TotalMatches)
			assert.Equal(t, uint64(3), out.Result.RequestSeq)
			assert.Equal(t, "loft", out.Result.Applied.Search)
		})
	}
}

func TestHandler_Execute_SupersededRequestIsDiscarded(t *testing.T) {
	h := createTestHandler(t, failingSource{err: fmt.Errorf("must not be called")})

	out, err := h.Execute(context.Background(), &Input{
		FilterState:      filter.State{Search: "loft"},
		Pagination:       search.Pagination{Page: 2},
		RequestSeq:       4,
		LatestRequestSeq: 5,
	})
	require.NoError(t, err)

	assert.True(t, out.Stale)
	assert.Empty(t, out.ErrorCode)
	assert.Equal(t, 2, out.Result.Page)
	assert.Equal(t, uint64(4), out.Result.RequestSeq)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := createTestHandler(t, memory.NewSource(nil))

	_, err := h.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.AsStandardError(err).Code)
}

// ==========================
// Pagination Bounds Tests
// ==========================

func TestInputSchema_PaginationBounds(t *testing.T) {
	tests := []struct {
		name  string
		page  float64
		size  float64
		valid bool
	}{
		{"typical", 3, 20, true},
		{"largest page", 2147483647, 100, true},
		{"page past int32", 3e9, 20, false},
		{"page size too large", 1, 5000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := schema.Validate(map[string]interface{}{
				"pagination": map[string]interface{}{"page": tt.page, "pageSize": tt.size},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.Summary())
		})
	}
}

func TestHandler_Execute_HugePageIsEmpty(t *testing.T) {
	h := createTestHandler(t, memory.NewSource(sampleListings()))

	out, err := h.Execute(context.Background(), &Input{
		FilterState: filter.State{PriceMin: filter.Float(1)},
		Pagination:  search.Pagination{Page: 2147483647, PageSize: 100},
	})
	require.NoError(t, err)
	assert.Empty(t, out.ErrorCode)
	assert.Empty(t, out.Result.Listings)
	assert.Equal(t, 25, out.Result.TotalMatches)
}
