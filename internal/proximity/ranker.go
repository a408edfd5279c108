// Package proximity ranks places near a coordinate by rating and distance.
package proximity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/metrics"
	"listing-search-workers/internal/common/observability"
	"listing-search-workers/internal/models"
)

var (
	ErrPlacesProvider = errors.New("PLACES_PROVIDER_FAILED")
	ErrGeocode        = errors.New("GEOCODE_FAILED")
)

const (
	RatingWeight   = 0.7
	DistanceWeight = 0.3
	MinRating      = 3.0
	MinRatingCount = 10
	MaxPerCategory = 6
)

type Ranker struct {
	provider PlacesProvider
	logger   logger.Logger
}

func NewRanker(provider PlacesProvider, log logger.Logger) *Ranker {
	return &Ranker{
		provider: provider,
		logger:   log.WithFields(map[string]interface{}{"component": "proximity"}),
	}
}

// Score combines rating and distance: rating*0.7 - (km/1000)*0.3.
func Score(rating, distanceKm float64) float64 {
	return rating*RatingWeight - (distanceKm/1000)*DistanceWeight
}

// Rank returns at most MaxPerCategory places of category within radiusMeters
// of origin, best score first. Places without a name or coordinate, rated
// below MinRating, or with fewer than MinRatingCount ratings are discarded.
func (r *Ranker) Rank(ctx context.Context, origin models.Coordinate, category Category, radiusMeters int) ([]models.NearbyPlace, error) {
	ctx, span := observability.StartSpan(ctx, "proximity", "proximity.rank",
		attribute.String("category", string(category)),
		attribute.Int("radius_m", radiusMeters),
	)
	defer span.End()

	raw, err := r.provider.NearbySearch(ctx, origin, radiusMeters, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s: %v", ErrPlacesProvider, category, err)
	}

	ranked := make([]models.NearbyPlace, 0, len(raw))
	for _, p := range raw {
		if !eligible(p) {
			continue
		}
		km := Distance(origin, *p.Location)
		ranked = append(ranked, models.NearbyPlace{
			Name:        p.Name,
			PlaceID:     p.PlaceID,
			Location:    *p.Location,
			Rating:      p.Rating,
			RatingCount: p.RatingCount,
			Types:       p.Types,
			Vicinity:    p.Vicinity,
			PriceLevel:  p.PriceLevel,
			DistanceKm:  km,
			Score:       Score(p.Rating, km),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > MaxPerCategory {
		ranked = ranked[:MaxPerCategory]
	}

	span.SetAttributes(
		attribute.Int("candidates", len(raw)),
		attribute.Int("ranked", len(ranked)),
	)
	return ranked, nil
}

func eligible(p RawPlace) bool {
	return p.Name != "" &&
		p.Location != nil &&
		p.Rating > 0 &&
		p.Rating >= MinRating &&
		p.RatingCount >= MinRatingCount
}

// RankAll ranks every category concurrently at its default radius. A
// category whose fetch fails maps to an empty list and is reported in
// failed; the other categories are unaffected.
func (r *Ranker) RankAll(ctx context.Context, origin models.Coordinate) (places map[Category][]models.NearbyPlace, failed []Category) {
	places = make(map[Category][]models.NearbyPlace, len(Categories))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, category := range Categories {
		wg.Add(1)
		go func(c Category) {
			defer wg.Done()

			ranked, err := r.Rank(ctx, origin, c, c.DefaultRadius())
			if err != nil {
				metrics.PlacesCategoryFailures.WithLabelValues(string(c)).Inc()
				r.logger.Warn("Nearby place search failed", map[string]interface{}{
					"category": string(c),
					"error":    err.Error(),
				})
				ranked = []models.NearbyPlace{}
			}

			mu.Lock()
			defer mu.Unlock()
			places[c] = ranked
			if err != nil {
				failed = append(failed, c)
			}
		}(category)
	}
	wg.Wait()

	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	return places, failed
}
