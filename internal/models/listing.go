// internal/models/listing.go
package models

import "time"

// Listing is a property-listing row as returned by any listing source.
type Listing struct {
	ID                    string      `json:"id"`
	Title                 string      `json:"title"`
	Description           string      `json:"description,omitempty"`
	Address               string      `json:"address"`
	City                  string      `json:"city"`
	State                 string      `json:"state"`
	ZipCode               string      `json:"zipCode"`
	Price                 float64     `json:"price"`
	Bedrooms              int         `json:"bedrooms"`
	Bathrooms             float64     `json:"bathrooms"`
	PropertyType          string      `json:"propertyType"`
	Features              []string    `json:"features,omitempty"`
	Sqft                  int         `json:"sqft"`
	YearBuilt             int         `json:"yearBuilt"`
	LotSize               float64     `json:"lotSize"`
	GarageSpaces          int         `json:"garageSpaces"`
	HOAFee                float64     `json:"hoaFee"`
	NearbyAmenities       []string    `json:"nearbyAmenities,omitempty"`
	Status                string      `json:"status"`
	DaysOnMarket          int         `json:"daysOnMarket"`
	OpenHouse             bool        `json:"openHouse"`
	VirtualTour           bool        `json:"virtualTour"`
	PriceReduced          bool        `json:"priceReduced"`
	Foreclosure           bool        `json:"foreclosure"`
	ShortSale             bool        `json:"shortSale"`
	AccessibilityFeatures []string    `json:"accessibilityFeatures,omitempty"`
	Location              *Coordinate `json:"location,omitempty"`
	CreatedAt             time.Time   `json:"createdAt"`
}

// HasAll reports whether every item of want appears in have.
func HasAll(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one item of want appears in have.
func HasAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
