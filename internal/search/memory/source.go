// Package memory is a listing source over an in-process slice, used by the
// operator CLI against exported listings and by tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"listing-search-workers/internal/models"
	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/filter"
)

type Source struct {
	mu       sync.RWMutex
	listings []models.Listing
}

func NewSource(listings []models.Listing) *Source {
	return &Source{listings: append([]models.Listing(nil), listings...)}
}

// LoadJSON reads a JSON array of listings.
func LoadJSON(r io.Reader) (*Source, error) {
	var listings []models.Listing
	if err := json.NewDecoder(r).Decode(&listings); err != nil {
		return nil, fmt.Errorf("decoding listings: %w", err)
	}
	return NewSource(listings), nil
}

func (s *Source) Name() string { return "memory" }

// Add appends listings to the corpus.
func (s *Source) Add(listings ...models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, listings...)
}

// Search matches newest listings first, ties broken by id.
func (s *Source) Search(ctx context.Context, constraints filter.Constraints, page search.Page) (*search.SourceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var matched []models.Listing
	for _, l := range s.listings {
		if constraints.Matches(l) {
			matched = append(matched, l)
		}
	}
	total := len(s.listings)
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	res := &search.SourceResult{Matching: len(matched), Total: total}
	if len(matched) > 0 {
		res.MinPrice = matched[0].Price
		res.MaxPrice = matched[0].Price
		var sum float64
		for _, l := range matched {
			sum += l.Price
			if l.Price < res.MinPrice {
				res.MinPrice = l.Price
			}
			if l.Price > res.MaxPrice {
				res.MaxPrice = l.Price
			}
		}
		res.AveragePrice = sum / float64(len(matched))
	}

	start := page.Offset()
	if start >= 0 && start < len(matched) {
		end := start + page.Size
		if end > len(matched) {
			end = len(matched)
		}
		res.Listings = matched[start:end]
	}
	return res, nil
}
