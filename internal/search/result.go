// internal/search/result.go
package search

import (
	"context"

	"listing-search-workers/internal/models"
	"listing-search-workers/internal/search/filter"
)

// Pagination is the caller's paging request. Page is 1-based; zero values
// select the first page and the configured default size.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Page is a normalized Pagination handed to a Source.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of matching rows preceding this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// SourceResult is what a Source returns for one query: the page of rows and
// aggregates over every matching row, plus the size of the whole corpus.
type SourceResult struct {
	Listings     []models.Listing
	Matching     int
	Total        int
	AveragePrice float64
	MinPrice     float64
	MaxPrice     float64
}

// Source is the listing datastore the executor queries.
type Source interface {
	Name() string
	Search(ctx context.Context, constraints filter.Constraints, page Page) (*SourceResult, error)
}

// FilterStats aggregates over the matching set, not the corpus.
type FilterStats struct {
	MatchingCount int     `json:"matchingCount"`
	TotalCount    int     `json:"totalCount"`
	AveragePrice  float64 `json:"averagePrice"`
	MinPrice      float64 `json:"minPrice"`
	MaxPrice      float64 `json:"maxPrice"`
}

// FilterResult is built fresh for every Apply call and not modified afterwards.
type FilterResult struct {
	Listings     []models.Listing `json:"listings"`
	TotalMatches int              `json:"totalMatches"`
	Page         int              `json:"page"`
	PageSize     int              `json:"pageSize"`
	TotalPages   int              `json:"totalPages"`
	HasMore      bool             `json:"hasMore"`
	Applied      filter.State     `json:"applied"`
	Stats        FilterStats      `json:"stats"`
	RequestSeq   uint64           `json:"requestSeq,omitempty"`
}

// EmptyResult is the well-formed zero result for state at page.
func EmptyResult(state filter.State, page Page) *FilterResult {
	return &FilterResult{
		Listings: []models.Listing{},
		Page:     page.Number,
		PageSize: page.Size,
		Applied:  state,
	}
}
