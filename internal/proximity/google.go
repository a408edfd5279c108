// internal/proximity/google.go
package proximity

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"listing-search-workers/internal/common/config"
	commonhttp "listing-search-workers/internal/common/http"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/models"
)

// GoogleProvider implements PlacesProvider on the Google Maps web services.
type GoogleProvider struct {
	client *maps.Client
	logger logger.Logger
}

func NewGoogleProvider(cfg config.PlacesConfig, log logger.Logger) (*GoogleProvider, error) {
	httpClient := commonhttp.NewClient(time.Duration(cfg.Timeout) * time.Millisecond)
	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(httpClient.HTTPClient()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{
		client: client,
		logger: log.WithFields(map[string]interface{}{"provider": "google"}),
	}, nil
}

func (g *GoogleProvider) NearbySearch(ctx context.Context, origin models.Coordinate, radiusMeters int, category Category) ([]RawPlace, error) {
	if radiusMeters <= 0 {
		radiusMeters = category.DefaultRadius()
	}
	resp, err := g.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: origin.Lat, Lng: origin.Lng},
		Radius:   uint(radiusMeters),
		Type:     maps.PlaceType(category.PlaceType()),
	})
	if err != nil {
		return nil, err
	}

	out := make([]RawPlace, 0, len(resp.Results))
	for _, r := range resp.Results {
		p := RawPlace{
			Name:        r.Name,
			PlaceID:     r.PlaceID,
			Location:    &models.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Rating:      float64(r.Rating),
			RatingCount: r.UserRatingsTotal,
			Types:       r.Types,
			Vicinity:    r.Vicinity,
		}
		if r.PriceLevel > 0 {
			level := r.PriceLevel
			p.PriceLevel = &level
		}
		out = append(out, p)
	}
	g.logger.Debug("Nearby search", map[string]interface{}{
		"category": string(category),
		"radius":   radiusMeters,
		"results":  len(out),
	})
	return out, nil
}

// Geocode returns ErrGeocode when the address resolves to nothing.
func (g *GoogleProvider) Geocode(ctx context.Context, address string) ([]models.Coordinate, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocode, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results for %q", ErrGeocode, address)
	}
	coords := make([]models.Coordinate, 0, len(results))
	for _, r := range results {
		coords = append(coords, models.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng})
	}
	return coords, nil
}

func (g *GoogleProvider) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error) {
	r, err := g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{PlaceID: placeID})
	if err != nil {
		return nil, fmt.Errorf("%w: details %s: %v", ErrPlacesProvider, placeID, err)
	}
	return &PlaceDetail{
		PlaceID:     r.PlaceID,
		Name:        r.Name,
		Address:     r.FormattedAddress,
		Phone:       r.FormattedPhoneNumber,
		Website:     r.Website,
		MapsURL:     r.URL,
		Rating:      float64(r.Rating),
		RatingCount: r.UserRatingsTotal,
		Location:    &models.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
	}, nil
}
