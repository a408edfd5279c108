// Package filter holds the search filter state, its URL encoding and the
// translation of a state into listing constraints.
package filter

import (
	"math"
	"reflect"
	"sort"
	"strings"
)

type PropertyType string

const (
	PropertyTypeHouse       PropertyType = "house"
	PropertyTypeCondo       PropertyType = "condo"
	PropertyTypeTownhouse   PropertyType = "townhouse"
	PropertyTypeApartment   PropertyType = "apartment"
	PropertyTypeMultiFamily PropertyType = "multi_family"
	PropertyTypeLand        PropertyType = "land"
)

var propertyTypes = map[PropertyType]struct{}{
	PropertyTypeHouse:       {},
	PropertyTypeCondo:       {},
	PropertyTypeTownhouse:   {},
	PropertyTypeApartment:   {},
	PropertyTypeMultiFamily: {},
	PropertyTypeLand:        {},
}

func (p PropertyType) Valid() bool {
	_, ok := propertyTypes[p]
	return ok
}

type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusPending ListingStatus = "pending"
	StatusSold    ListingStatus = "sold"
	StatusNew     ListingStatus = "new"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSold, StatusNew:
		return true
	}
	return false
}

// State is every user-selectable search criterion at one point in time.
// All fields are optional; nil pointers, blank strings, empty sets and
// false flags are unset.
//
// State is treated as a value: use Update to derive a modified copy.
type State struct {
	Search   string `json:"search,omitempty"`
	Location string `json:"location,omitempty"`

	PriceMin  *float64      `json:"priceMin,omitempty"`
	PriceMax  *float64      `json:"priceMax,omitempty"`
	Bedrooms  *int          `json:"bedrooms,omitempty"`
	Bathrooms *float64      `json:"bathrooms,omitempty"`
	Type      *PropertyType `json:"propertyType,omitempty"`
	Features  []string      `json:"features,omitempty"`

	SqftMin      *int     `json:"sqftMin,omitempty"`
	SqftMax      *int     `json:"sqftMax,omitempty"`
	YearBuiltMin *int     `json:"yearBuiltMin,omitempty"`
	YearBuiltMax *int     `json:"yearBuiltMax,omitempty"`
	LotSizeMin   *float64 `json:"lotSizeMin,omitempty"`
	LotSizeMax   *float64 `json:"lotSizeMax,omitempty"`
	GarageSpaces *int     `json:"garageSpaces,omitempty"`
	HOAFeeMin    *float64 `json:"hoaFeeMin,omitempty"`
	HOAFeeMax    *float64 `json:"hoaFeeMax,omitempty"`

	NearbyAmenities map[string]bool `json:"nearbyAmenities,omitempty"`
	ListingStatus   []ListingStatus `json:"listingStatus,omitempty"`
	DaysOnMarket    *int            `json:"daysOnMarket,omitempty"`

	OpenHouse    bool `json:"openHouse,omitempty"`
	VirtualTour  bool `json:"virtualTour,omitempty"`
	PriceReduced bool `json:"priceReduced,omitempty"`
	Foreclosure  bool `json:"foreclosure,omitempty"`
	ShortSale    bool `json:"shortSale,omitempty"`

	AccessibilityFeatures []string `json:"accessibilityFeatures,omitempty"`
}

// Float returns a pointer to v, for populating optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for populating optional fields.
func Int(v int) *int { return &v }

// Type returns a pointer to t, for populating State.Type.
func Type(t PropertyType) *PropertyType { return &t }

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.PriceMin = cloneFloat(s.PriceMin)
	out.PriceMax = cloneFloat(s.PriceMax)
	out.Bedrooms = cloneInt(s.Bedrooms)
	out.Bathrooms = cloneFloat(s.Bathrooms)
	if s.Type != nil {
		t := *s.Type
		out.Type = &t
	}
	out.Features = cloneStrings(s.Features)
	out.SqftMin = cloneInt(s.SqftMin)
	out.SqftMax = cloneInt(s.SqftMax)
	out.YearBuiltMin = cloneInt(s.YearBuiltMin)
	out.YearBuiltMax = cloneInt(s.YearBuiltMax)
	out.LotSizeMin = cloneFloat(s.LotSizeMin)
	out.LotSizeMax = cloneFloat(s.LotSizeMax)
	out.GarageSpaces = cloneInt(s.GarageSpaces)
	out.HOAFeeMin = cloneFloat(s.HOAFeeMin)
	out.HOAFeeMax = cloneFloat(s.HOAFeeMax)
	if s.NearbyAmenities != nil {
		out.NearbyAmenities = make(map[string]bool, len(s.NearbyAmenities))
		for k, v := range s.NearbyAmenities {
			out.NearbyAmenities[k] = v
		}
	}
	if s.ListingStatus != nil {
		out.ListingStatus = append([]ListingStatus(nil), s.ListingStatus...)
	}
	out.DaysOnMarket = cloneInt(s.DaysOnMarket)
	out.AccessibilityFeatures = cloneStrings(s.AccessibilityFeatures)
	return out
}

// Update applies fn to a deep copy of s and returns the copy; s is left unchanged.
func (s State) Update(fn func(*State)) State {
	next := s.Clone()
	fn(&next)
	return next
}

// Normalize returns the canonical form of s:
//   - search and location are trimmed;
//   - numeric fields that are NaN, infinite or negative are unset;
//   - sets are trimmed, de-duplicated and sorted, and become nil when empty;
//   - amenity flags keep only true entries.
func (s State) Normalize() State {
	n := s.Clone()
	n.Search = strings.TrimSpace(n.Search)
	n.Location = strings.TrimSpace(n.Location)

	for _, f := range []**float64{&n.PriceMin, &n.PriceMax, &n.Bathrooms, &n.LotSizeMin, &n.LotSizeMax, &n.HOAFeeMin, &n.HOAFeeMax} {
		if *f != nil && !validNumber(**f) {
			*f = nil
		}
	}
	for _, i := range []**int{&n.Bedrooms, &n.SqftMin, &n.SqftMax, &n.YearBuiltMin, &n.YearBuiltMax, &n.GarageSpaces, &n.DaysOnMarket} {
		if *i != nil && **i < 0 {
			*i = nil
		}
	}
	if n.Type != nil {
		t := PropertyType(strings.TrimSpace(string(*n.Type)))
		n.Type = &t
		if t == "" {
			n.Type = nil
		}
	}

	n.Features = normalizeSet(n.Features)
	n.AccessibilityFeatures = normalizeSet(n.AccessibilityFeatures)

	statuses := make([]string, len(n.ListingStatus))
	for i, st := range n.ListingStatus {
		statuses[i] = string(st)
	}
	n.ListingStatus = nil
	for _, st := range normalizeSet(statuses) {
		n.ListingStatus = append(n.ListingStatus, ListingStatus(st))
	}

	var amenities map[string]bool
	for k, v := range n.NearbyAmenities {
		k = strings.TrimSpace(k)
		if !v || k == "" {
			continue
		}
		if amenities == nil {
			amenities = make(map[string]bool)
		}
		amenities[k] = true
	}
	n.NearbyAmenities = amenities
	return n
}

// IsEmpty reports whether no field of s is populated.
func (s State) IsEmpty() bool {
	return reflect.DeepEqual(s.Normalize(), State{})
}

// Equal compares a and b field by field with set semantics.
func Equal(a, b State) bool {
	return reflect.DeepEqual(a.Normalize(), b.Normalize())
}

// ActiveAmenities returns the categories flagged true, sorted.
func (s State) ActiveAmenities() []string {
	out := make([]string, 0, len(s.NearbyAmenities))
	for k, v := range s.NearbyAmenities {
		if v && strings.TrimSpace(k) != "" {
			out = append(out, strings.TrimSpace(k))
		}
	}
	sort.Strings(out)
	return out
}

func validNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func normalizeSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
