// internal/models/place.go
package models

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NearbyPlace is a ranked point of interest around an origin.
type NearbyPlace struct {
	Name        string     `json:"name"`
	PlaceID     string     `json:"placeId"`
	Location    Coordinate `json:"location"`
	Rating      float64    `json:"rating"`
	RatingCount int        `json:"ratingCount"`
	Types       []string   `json:"types,omitempty"`
	Vicinity    string     `json:"vicinity,omitempty"`
	PriceLevel  *int       `json:"priceLevel,omitempty"`
	DistanceKm  float64    `json:"distanceKm"`
	Score       float64    `json:"score"`
}

// AirQuality is a current-conditions snapshot for a coordinate.
type AirQuality struct {
	AQI               int    `json:"aqi"`
	Category          string `json:"category"`
	DominantPollutant string `json:"dominantPollutant,omitempty"`
	IndexCode         string `json:"indexCode,omitempty"`
}
