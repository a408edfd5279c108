// internal/proximity/provider.go
package proximity

import (
	"context"

	"listing-search-workers/internal/models"
)

// RawPlace is a provider search result before filtering and scoring.
type RawPlace struct {
	Name        string
	PlaceID     string
	Location    *models.Coordinate
	Rating      float64
	RatingCount int
	Types       []string
	Vicinity    string
	PriceLevel  *int
}

type PlaceDetail struct {
	PlaceID     string             `json:"placeId"`
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	Phone       string             `json:"phone,omitempty"`
	Website     string             `json:"website,omitempty"`
	MapsURL     string             `json:"mapsUrl,omitempty"`
	Rating      float64            `json:"rating"`
	RatingCount int                `json:"ratingCount"`
	Location    *models.Coordinate `json:"location,omitempty"`
}

// PlacesProvider is the external places and geocoding service.
type PlacesProvider interface {
	NearbySearch(ctx context.Context, origin models.Coordinate, radiusMeters int, category Category) ([]RawPlace, error)
	Geocode(ctx context.Context, address string) ([]models.Coordinate, error)
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error)
}
