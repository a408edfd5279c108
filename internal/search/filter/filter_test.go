package filter

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-search-workers/internal/models"
)

func fullState() State {
	return State{
		Search:                "garden",
		Location:              "Austin, TX",
		PriceMin:              Float(250000),
		PriceMax:              Float(612500.5),
		Bedrooms:              Int(3),
		Bathrooms:             Float(2.5),
		Type:                  Type(PropertyTypeHouse),
		Features:              []string{"pool", "fireplace", "pool"},
		SqftMin:               Int(1200),
		SqftMax:               Int(3000),
		YearBuiltMin:          Int(1990),
		YearBuiltMax:          Int(2020),
		LotSizeMin:            Float(0.25),
		LotSizeMax:            Float(1.75),
		GarageSpaces:          Int(2),
		HOAFeeMin:             Float(0),
		HOAFeeMax:             Float(350),
		NearbyAmenities:       map[string]bool{"schools": true, "parks": true, "gyms": false},
		ListingStatus:         []ListingStatus{StatusNew, StatusActive},
		DaysOnMarket:          Int(30),
		OpenHouse:             true,
		VirtualTour:           true,
		PriceReduced:          true,
		Foreclosure:           true,
		ShortSale:             true,
		AccessibilityFeatures: []string{"ramp", "elevator"},
	}
}

func fixedBuilder() Builder {
	return Builder{Now: func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }}
}

// ==========================
// State
// ==========================

func TestState_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{name: "zero value", state: State{}, want: true},
		{name: "whitespace search", state: State{Search: "   "}, want: true},
		{name: "empty sets", state: State{Features: []string{}, ListingStatus: []ListingStatus{}}, want: true},
		{name: "blank feature label", state: State{Features: []string{" "}}, want: true},
		{name: "only false amenity flags", state: State{NearbyAmenities: map[string]bool{"schools": false}}, want: true},
		{name: "search term", state: State{Search: "loft"}, want: false},
		{name: "zero price min is populated", state: State{PriceMin: Float(0)}, want: false},
		{name: "single flag", state: State{OpenHouse: true}, want: false},
		{name: "true amenity flag", state: State{NearbyAmenities: map[string]bool{"parks": true}}, want: false},
		{name: "status set", state: State{ListingStatus: []ListingStatus{StatusSold}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.IsEmpty())
		})
	}
}

func TestState_UpdateLeavesOriginalUntouched(t *testing.T) {
	original := State{Features: []string{"pool"}, PriceMin: Float(100), NearbyAmenities: map[string]bool{"schools": true}}

	next := original.Update(func(s *State) {
		s.Features = append(s.Features, "garage")
		*s.PriceMin = 200
		s.NearbyAmenities["parks"] = true
	})

	assert.Equal(t, []string{"pool"}, original.Features)
	assert.Equal(t, 100.0, *original.PriceMin)
	assert.Len(t, original.NearbyAmenities, 1)

	assert.Equal(t, []string{"pool", "garage"}, next.Features)
	assert.Equal(t, 200.0, *next.PriceMin)
	assert.Len(t, next.NearbyAmenities, 2)
}

func TestEqual_SetSemantics(t *testing.T) {
	a := State{Features: []string{"pool", "garage"}, ListingStatus: []ListingStatus{StatusActive, StatusNew}}
	b := State{Features: []string{"garage", "pool", "pool"}, ListingStatus: []ListingStatus{StatusNew, StatusActive}}
	assert.True(t, Equal(a, b))

	c := b.Update(func(s *State) { s.Features = []string{"garage"} })
	assert.False(t, Equal(a, c))
}

// ==========================
// Builder
// ==========================

func TestBuild_EmptyStateEmitsNothing(t *testing.T) {
	c := fixedBuilder().Build(State{})
	assert.True(t, c.IsEmpty())
	assert.NoError(t, c.Err())
}

func TestBuild_RangeBoundsAreIndependent(t *testing.T) {
	minOnly := fixedBuilder().Build(State{PriceMin: Float(300000)})
	require.Len(t, minOnly.Items, 1)
	assert.Equal(t, Constraint{Field: FieldPrice, Op: OpGTE, Number: 300000}, minOnly.Items[0])

	maxOnly := fixedBuilder().Build(State{PriceMax: Float(600000)})
	require.Len(t, maxOnly.Items, 1)
	assert.Equal(t, Constraint{Field: FieldPrice, Op: OpLTE, Number: 600000}, maxOnly.Items[0])

	both := fixedBuilder().Build(State{SqftMin: Int(1000), SqftMax: Int(2000)})
	assert.ElementsMatch(t, []Constraint{
		{Field: FieldSqft, Op: OpGTE, Number: 1000},
		{Field: FieldSqft, Op: OpLTE, Number: 2000},
	}, both.Items)
}

func TestBuild_OneConstraintPerPopulatedField(t *testing.T) {
	c := fixedBuilder().Build(fullState())
	require.NoError(t, c.Err())

	byField := map[Field][]Constraint{}
	for _, item := range c.Items {
		byField[item.Field] = append(byField[item.Field], item)
	}

	assert.Len(t, byField[FieldPrice], 2)
	assert.Len(t, byField[FieldYearBuilt], 2)
	assert.Equal(t, OpHasAll, byField[FieldFeatures][0].Op)
	assert.Equal(t, []string{"fireplace", "pool"}, byField[FieldFeatures][0].Values)
	assert.Equal(t, OpHasAll, byField[FieldAccessibility][0].Op)
	assert.Equal(t, OpHasAny, byField[FieldNearbyAmenities][0].Op)
	assert.Equal(t, []string{"parks", "schools"}, byField[FieldNearbyAmenities][0].Values)
	assert.Equal(t, OpIn, byField[FieldStatus][0].Op)
	assert.Equal(t, []string{"active", "new"}, byField[FieldStatus][0].Values)
	assert.Equal(t, Constraint{Field: FieldDaysOnMarket, Op: OpLTE, Number: 30}, byField[FieldDaysOnMarket][0])
	for _, f := range []Field{FieldOpenHouse, FieldVirtualTour, FieldPriceReduced, FieldForeclosure, FieldShortSale} {
		require.Len(t, byField[f], 1, f)
		assert.Equal(t, OpIsTrue, byField[f][0].Op)
	}
}

func TestBuild_DropsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		dropped []string
		kept    int
	}{
		{name: "NaN price", state: State{PriceMin: Float(math.NaN())}, dropped: []string{"priceMin"}},
		{name: "infinite lot size", state: State{LotSizeMax: Float(math.Inf(1))}, dropped: []string{"lotSizeMax"}},
		{name: "negative bedrooms", state: State{Bedrooms: Int(-1)}, dropped: []string{"bedrooms"}},
		{name: "bathrooms off half step", state: State{Bathrooms: Float(1.3)}, dropped: []string{"bathrooms"}},
		{name: "bathrooms half step kept", state: State{Bathrooms: Float(1.5)}, kept: 1},
		{name: "unknown property type", state: State{Type: Type("castle")}, dropped: []string{"propertyType"}},
		{
			name:    "unknown status keeps valid ones",
			state:   State{ListingStatus: []ListingStatus{"archived", StatusSold, "bogus"}},
			dropped: []string{"listingStatus"},
			kept:    1,
		},
		{
			name:    "invalid field does not block others",
			state:   State{PriceMin: Float(-5), Search: "loft"},
			dropped: []string{"priceMin"},
			kept:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fixedBuilder().Build(tt.state)
			assert.Equal(t, tt.dropped, c.Dropped)
			assert.Len(t, c.Items, tt.kept)
			if len(tt.dropped) > 0 {
				assert.ErrorIs(t, c.Err(), ErrValidation)
			}
		})
	}
}

func TestBuild_ClampsYearBuilt(t *testing.T) {
	c := fixedBuilder().Build(State{YearBuiltMin: Int(1492), YearBuiltMax: Int(2150)})
	assert.ElementsMatch(t, []Constraint{
		{Field: FieldYearBuilt, Op: OpGTE, Number: 1800},
		{Field: FieldYearBuilt, Op: OpLTE, Number: 2026},
	}, c.Items)
}

func TestConstraints_Matches(t *testing.T) {
	listing := models.Listing{
		Title:                 "Sunny Garden Bungalow",
		Address:               "12 Elm St",
		City:                  "Austin",
		State:                 "TX",
		Price:                 450000,
		Bedrooms:              3,
		Bathrooms:             2,
		PropertyType:          "house",
		Features:              []string{"pool", "fireplace", "deck"},
		NearbyAmenities:       []string{"parks"},
		Status:                "active",
		DaysOnMarket:          12,
		OpenHouse:             true,
		AccessibilityFeatures: []string{"ramp"},
	}

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{name: "text search case-insensitive", state: State{Search: "garden"}, want: true},
		{name: "location on city", state: State{Location: "austin"}, want: true},
		{name: "price inside range", state: State{PriceMin: Float(400000), PriceMax: Float(450000)}, want: true},
		{name: "price above max", state: State{PriceMax: Float(449999)}, want: false},
		{name: "all features present", state: State{Features: []string{"pool", "deck"}}, want: true},
		{name: "one feature missing", state: State{Features: []string{"pool", "sauna"}}, want: false},
		{name: "any amenity matches", state: State{NearbyAmenities: map[string]bool{"schools": true, "parks": true}}, want: true},
		{name: "no amenity matches", state: State{NearbyAmenities: map[string]bool{"schools": true}}, want: false},
		{name: "status in set", state: State{ListingStatus: []ListingStatus{StatusPending, StatusActive}}, want: true},
		{name: "status not in set", state: State{ListingStatus: []ListingStatus{StatusSold}}, want: false},
		{name: "days on market within", state: State{DaysOnMarket: Int(12)}, want: true},
		{name: "flag required and set", state: State{OpenHouse: true}, want: true},
		{name: "flag required and unset", state: State{Foreclosure: true}, want: false},
		{name: "type matches", state: State{Type: Type(PropertyTypeHouse)}, want: true},
		{name: "accessibility missing", state: State{AccessibilityFeatures: []string{"elevator"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixedBuilder().Build(tt.state).Matches(listing))
		})
	}
}

// ==========================
// URL encoding
// ==========================

func TestURL_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state State
	}{
		{name: "empty", state: State{}},
		{name: "full", state: fullState()},
		{name: "search with reserved characters", state: State{Search: "2 bed & bath = 100% nice?"}},
		{name: "feature containing comma", state: State{Features: []string{"washer, dryer", "a/c"}}},
		{name: "fractional values", state: State{Bathrooms: Float(1.5), LotSizeMin: Float(0.125), PriceMax: Float(1e7 + 0.01)}},
		{name: "unknown property type survives", state: State{Type: Type("castle")}},
		{name: "zero values", state: State{Bedrooms: Int(0), HOAFeeMax: Float(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.state)
			values, err := url.ParseQuery(encoded)
			require.NoError(t, err)

			decoded, dropped := Decode(values)
			assert.Empty(t, dropped)
			assert.True(t, Equal(decoded, tt.state), "encoded: %s", encoded)
			assert.Equal(t, tt.state.Normalize(), decoded)
		})
	}
}

func TestEncode_OmitsUnsetAndFalse(t *testing.T) {
	encoded := Encode(State{
		PriceMin:        Float(100),
		NearbyAmenities: map[string]bool{"schools": false, "parks": true},
		OpenHouse:       false,
	})
	assert.Equal(t, "near=parks&price_min=100", encoded)
}

func TestDecode_CoercesMalformedValues(t *testing.T) {
	values := url.Values{
		"price_min":  {"abc"},
		"price_max":  {"500000"},
		"beds":       {"-2"},
		"baths":      {"NaN"},
		"garage":     {"2.0"},
		"sqft_min":   {"1.5"},
		"open_house": {"maybe"},
		"unknown":    {"ignored"},
	}

	s, dropped := Decode(values)

	assert.Equal(t, []string{"baths", "beds", "open_house", "price_min", "sqft_min"}, dropped)
	assert.Nil(t, s.PriceMin)
	require.NotNil(t, s.PriceMax)
	assert.Equal(t, 500000.0, *s.PriceMax)
	assert.Nil(t, s.Bedrooms)
	assert.Nil(t, s.Bathrooms)
	require.NotNil(t, s.GarageSpaces)
	assert.Equal(t, 2, *s.GarageSpaces)
	assert.False(t, s.OpenHouse)
}

func TestParseQuery(t *testing.T) {
	s, dropped, err := ParseQuery("?q=loft&status=active&status=new&near=parks")
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, "loft", s.Search)
	assert.Equal(t, []ListingStatus{StatusActive, StatusNew}, s.ListingStatus)
	assert.Equal(t, map[string]bool{"parks": true}, s.NearbyAmenities)

	_, _, err = ParseQuery("q=%zz")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFromMap(t *testing.T) {
	raw := map[string]interface{}{
		"search":                "condo",
		"priceMin":              float64(200000),
		"priceMax":              "350000",
		"bedrooms":              "two",
		"features":              []interface{}{"pool", "gym"},
		"listingStatus":         "active,pending",
		"nearbyAmenities":       map[string]interface{}{"transit": true, "parks": false},
		"openHouse":             true,
		"virtualTour":           false,
		"accessibilityFeatures": nil,
	}

	s, dropped := FromMap(raw)

	assert.Equal(t, []string{"beds"}, dropped)
	assert.Equal(t, "condo", s.Search)
	assert.Equal(t, 200000.0, *s.PriceMin)
	assert.Equal(t, 350000.0, *s.PriceMax)
	assert.Nil(t, s.Bedrooms)
	assert.Equal(t, []string{"gym", "pool"}, s.Features)
	assert.Equal(t, []ListingStatus{StatusActive, StatusPending}, s.ListingStatus)
	assert.Equal(t, map[string]bool{"transit": true}, s.NearbyAmenities)
	assert.True(t, s.OpenHouse)
	assert.False(t, s.VirtualTour)
}
