// Package search applies filter states to a listing source and returns
// paginated results with aggregate statistics.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/metrics"
	"listing-search-workers/internal/common/observability"
	"listing-search-workers/internal/models"
	"listing-search-workers/internal/search/filter"
)

var (
	ErrQueryFailed  = errors.New("QUERY_FAILED")
	ErrQueryTimeout = errors.New("QUERY_TIMEOUT")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Options bounds pagination; zero values select the defaults.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Builder         filter.Builder
}

type Executor struct {
	source Source
	opts   Options
	logger logger.Logger
}

func NewExecutor(source Source, opts Options, log logger.Logger) *Executor {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = MaxPageSize
	}
	if opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = opts.MaxPageSize
	}
	return &Executor{
		source: source,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"backend": source.Name()}),
	}
}

// MaxOffset bounds Page.Offset. Larger page numbers are clamped; they
// return no listings either way.
const MaxOffset = math.MaxInt32

// NormalizePage clamps p into a valid 1-based page whose offset fits in
// MaxOffset.
func (e *Executor) NormalizePage(p Pagination) Page {
	page := Page{Number: p.Page, Size: p.PageSize}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size <= 0 {
		page.Size = e.opts.DefaultPageSize
	}
	if page.Size > e.opts.MaxPageSize {
		page.Size = e.opts.MaxPageSize
	}
	if last := MaxOffset/page.Size + 1; page.Number > last {
		page.Number = last
	}
	return page
}

// Apply runs state against the source.
//
// An empty state, or one whose every field was dropped as invalid, returns
// an empty result without querying the source. On source failure the
// result is still a well-formed empty result and the error wraps
// ErrQueryFailed or ErrQueryTimeout.
func (e *Executor) Apply(ctx context.Context, state filter.State, p Pagination) (*FilterResult, error) {
	page := e.NormalizePage(p)
	backend := e.source.Name()

	ctx, span := observability.StartSpan(ctx, "search", "filter.apply",
		attribute.String("backend", backend),
		attribute.Int("page", page.Number),
		attribute.Int("page_size", page.Size),
	)
	defer span.End()

	if state.IsEmpty() {
		metrics.FilterApplications.WithLabelValues(backend, "empty").Inc()
		span.SetAttributes(attribute.Bool("empty_guard", true))
		return EmptyResult(state, page), nil
	}

	constraints := e.opts.Builder.Build(state)
	if len(constraints.Dropped) > 0 {
		e.logger.Warn("Dropped invalid filter fields", map[string]interface{}{
			"fields": constraints.Dropped,
		})
	}
	if constraints.IsEmpty() {
		metrics.FilterApplications.WithLabelValues(backend, "empty").Inc()
		span.SetAttributes(attribute.Bool("empty_guard", true))
		return EmptyResult(state, page), nil
	}

	start := time.Now()
	res, err := e.source.Search(ctx, constraints, page)
	metrics.FilterQueryDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FilterApplications.WithLabelValues(backend, "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		wrapped := classify(ctx, err)
		e.logger.Error("Listing query failed", map[string]interface{}{
			"error":       err.Error(),
			"constraints": len(constraints.Items),
		})
		return EmptyResult(state, page), wrapped
	}

	metrics.FilterApplications.WithLabelValues(backend, "ok").Inc()
	span.SetAttributes(attribute.Int("matching", res.Matching))

	result := &FilterResult{
		Listings:     res.Listings,
		TotalMatches: res.Matching,
		Page:         page.Number,
		PageSize:     page.Size,
		TotalPages:   totalPages(res.Matching, page.Size),
		Applied:      state,
		Stats: FilterStats{
			MatchingCount: res.Matching,
			TotalCount:    res.Total,
			AveragePrice:  res.AveragePrice,
			MinPrice:      res.MinPrice,
			MaxPrice:      res.MaxPrice,
		},
	}
	if result.Listings == nil {
		result.Listings = []models.Listing{}
	}
	result.HasMore = page.Number < result.TotalPages

	e.logger.Debug("Filter applied", map[string]interface{}{
		"matching": res.Matching,
		"total":    res.Total,
		"page":     page.Number,
		"returned": len(result.Listings),
	})
	return result, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrQueryFailed, err)
}

func totalPages(matching, size int) int {
	if matching <= 0 || size <= 0 {
		return 0
	}
	return (matching + size - 1) / size
}
