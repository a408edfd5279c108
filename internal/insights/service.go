// internal/insights/service.go
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/observability"
	"listing-search-workers/internal/models"
	"listing-search-workers/internal/proximity"
)

var ErrEmptyAddress = errors.New("INVALID_INPUT")

type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]models.Coordinate, error)
}

type PlaceRanker interface {
	RankAll(ctx context.Context, origin models.Coordinate) (map[proximity.Category][]models.NearbyPlace, []proximity.Category)
}

type AirQualitySource interface {
	Current(ctx context.Context, at models.Coordinate) (*models.AirQuality, error)
}

// Service resolves an address to a cached or freshly assembled Entry.
type Service struct {
	cache    Cache
	geocoder Geocoder
	ranker   PlaceRanker
	air      AirQualitySource
	now      func() time.Time
	logger   logger.Logger
}

// NewService wires the lookup. air may be nil to skip air quality.
func NewService(cache Cache, geocoder Geocoder, ranker PlaceRanker, air AirQualitySource, log logger.Logger) *Service {
	return &Service{
		cache:    cache,
		geocoder: geocoder,
		ranker:   ranker,
		air:      air,
		now:      time.Now,
		logger:   log.WithFields(map[string]interface{}{"component": "insights"}),
	}
}

// Lookup returns the insights for address and whether they came from the
// cache. refresh bypasses a fresh cache entry. Only a geocode failure is
// fatal; cache, ranking and air-quality failures degrade the result.
func (s *Service) Lookup(ctx context.Context, address string, refresh bool) (*Entry, bool, error) {
	if strings.TrimSpace(address) == "" {
		return nil, false, fmt.Errorf("%w: address is required", ErrEmptyAddress)
	}

	ctx, span := observability.StartSpan(ctx, "insights", "insights.lookup",
		attribute.Bool("refresh", refresh),
	)
	defer span.End()

	if !refresh {
		cached, ok, err := s.cache.Get(ctx, address)
		if err != nil {
			s.logger.Warn("Insights cache read failed, treating as miss", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if ok {
			span.SetAttributes(attribute.Bool("cached", true))
			return cached, true, nil
		}
	}

	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, proximity.ErrGeocode) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %v", proximity.ErrGeocode, err)
	}
	if len(coords) == 0 {
		return nil, false, fmt.Errorf("%w: no results for %q", proximity.ErrGeocode, address)
	}
	origin := coords[0]

	places, failed := s.ranker.RankAll(ctx, origin)
	entry := &Entry{
		Address:   strings.TrimSpace(address),
		Location:  origin,
		Places:    make(map[string][]models.NearbyPlace, len(places)),
		FetchedAt: s.now().UTC(),
	}
	for c, list := range places {
		entry.Places[string(c)] = list
	}
	for _, c := range failed {
		entry.FailedCategories = append(entry.FailedCategories, string(c))
	}

	if s.air != nil {
		aq, err := s.air.Current(ctx, origin)
		if err != nil {
			s.logger.Warn("Air quality lookup failed", map[string]interface{}{"error": err.Error()})
		} else {
			entry.AirQuality = aq
		}
	}

	if err := s.cache.Put(ctx, address, entry); err != nil {
		s.logger.Warn("Insights cache write failed", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info("Assembled neighborhood insights", map[string]interface{}{
		"failedCategories": len(entry.FailedCategories),
		"airQuality":       entry.AirQuality != nil,
	})
	return entry, false, nil
}
