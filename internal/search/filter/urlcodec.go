// internal/search/filter/urlcodec.go
package filter

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query-string keys.
const (
	keySearch       = "q"
	keyLocation     = "location"
	keyPriceMin     = "price_min"
	keyPriceMax     = "price_max"
	keyBedrooms     = "beds"
	keyBathrooms    = "baths"
	keyType         = "type"
	keyFeature      = "feature"
	keySqftMin      = "sqft_min"
	keySqftMax      = "sqft_max"
	keyYearMin      = "year_min"
	keyYearMax      = "year_max"
	keyLotMin       = "lot_min"
	keyLotMax       = "lot_max"
	keyGarage       = "garage"
	keyHOAMin       = "hoa_min"
	keyHOAMax       = "hoa_max"
	keyNear         = "near"
	keyStatus       = "status"
	keyDaysOnMarket = "dom"
	keyOpenHouse    = "open_house"
	keyVirtualTour  = "virtual_tour"
	keyPriceReduced = "price_reduced"
	keyForeclosure  = "foreclosure"
	keyShortSale    = "short_sale"
	keyAccess       = "access"
)

// jsonAliases maps the JSON field names of State to their query keys, so a
// loosely typed variables map can be decoded with the same coercion rules.
var jsonAliases = map[string]string{
	"search":                keySearch,
	"location":              keyLocation,
	"priceMin":              keyPriceMin,
	"priceMax":              keyPriceMax,
	"bedrooms":              keyBedrooms,
	"bathrooms":             keyBathrooms,
	"propertyType":          keyType,
	"features":              keyFeature,
	"sqftMin":               keySqftMin,
	"sqftMax":               keySqftMax,
	"yearBuiltMin":          keyYearMin,
	"yearBuiltMax":          keyYearMax,
	"lotSizeMin":            keyLotMin,
	"lotSizeMax":            keyLotMax,
	"garageSpaces":          keyGarage,
	"hoaFeeMin":             keyHOAMin,
	"hoaFeeMax":             keyHOAMax,
	"nearbyAmenities":       keyNear,
	"listingStatus":         keyStatus,
	"daysOnMarket":          keyDaysOnMarket,
	"openHouse":             keyOpenHouse,
	"virtualTour":           keyVirtualTour,
	"priceReduced":          keyPriceReduced,
	"foreclosure":           keyForeclosure,
	"shortSale":             keyShortSale,
	"accessibilityFeatures": keyAccess,
}

// Encode renders s as a query string. Decode(Encode(s)) equals s.Normalize().
func Encode(s State) string {
	return Values(s).Encode()
}

// Values renders s as url.Values; unset fields are omitted.
func Values(s State) url.Values {
	n := s.Normalize()
	v := url.Values{}

	setString(v, keySearch, n.Search)
	setString(v, keyLocation, n.Location)
	setFloat(v, keyPriceMin, n.PriceMin)
	setFloat(v, keyPriceMax, n.PriceMax)
	setInt(v, keyBedrooms, n.Bedrooms)
	setFloat(v, keyBathrooms, n.Bathrooms)
	if n.Type != nil {
		v.Set(keyType, string(*n.Type))
	}
	for _, f := range n.Features {
		v.Add(keyFeature, f)
	}
	setInt(v, keySqftMin, n.SqftMin)
	setInt(v, keySqftMax, n.SqftMax)
	setInt(v, keyYearMin, n.YearBuiltMin)
	setInt(v, keyYearMax, n.YearBuiltMax)
	setFloat(v, keyLotMin, n.LotSizeMin)
	setFloat(v, keyLotMax, n.LotSizeMax)
	setInt(v, keyGarage, n.GarageSpaces)
	setFloat(v, keyHOAMin, n.HOAFeeMin)
	setFloat(v, keyHOAMax, n.HOAFeeMax)
	for _, a := range n.ActiveAmenities() {
		v.Add(keyNear, a)
	}
	for _, st := range n.ListingStatus {
		v.Add(keyStatus, string(st))
	}
	setInt(v, keyDaysOnMarket, n.DaysOnMarket)
	setFlag(v, keyOpenHouse, n.OpenHouse)
	setFlag(v, keyVirtualTour, n.VirtualTour)
	setFlag(v, keyPriceReduced, n.PriceReduced)
	setFlag(v, keyForeclosure, n.Foreclosure)
	setFlag(v, keyShortSale, n.ShortSale)
	for _, a := range n.AccessibilityFeatures {
		v.Add(keyAccess, a)
	}
	return v
}

// ParseQuery decodes a raw query string, with or without a leading "?".
func ParseQuery(raw string) (State, []string, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if err != nil {
		return State{}, nil, fmt.Errorf("%w: malformed query string: %v", ErrValidation, err)
	}
	s, dropped := Decode(values)
	return s, dropped, nil
}

// Decode builds a normalized State from query values. Values that do not
// parse, are not finite, or are negative leave their field unset; the
// offending keys are returned sorted. Unknown keys are ignored.
func Decode(values url.Values) (State, []string) {
	d := decoder{values: values}
	var s State

	s.Search = d.str(keySearch)
	s.Location = d.str(keyLocation)
	s.PriceMin = d.float(keyPriceMin)
	s.PriceMax = d.float(keyPriceMax)
	s.Bedrooms = d.int(keyBedrooms)
	s.Bathrooms = d.float(keyBathrooms)
	if t := d.str(keyType); t != "" {
		pt := PropertyType(t)
		s.Type = &pt
	}
	s.Features = values[keyFeature]
	s.SqftMin = d.int(keySqftMin)
	s.SqftMax = d.int(keySqftMax)
	s.YearBuiltMin = d.int(keyYearMin)
	s.YearBuiltMax = d.int(keyYearMax)
	s.LotSizeMin = d.float(keyLotMin)
	s.LotSizeMax = d.float(keyLotMax)
	s.GarageSpaces = d.int(keyGarage)
	s.HOAFeeMin = d.float(keyHOAMin)
	s.HOAFeeMax = d.float(keyHOAMax)
	for _, a := range values[keyNear] {
		if s.NearbyAmenities == nil {
			s.NearbyAmenities = make(map[string]bool)
		}
		s.NearbyAmenities[a] = true
	}
	for _, st := range values[keyStatus] {
		s.ListingStatus = append(s.ListingStatus, ListingStatus(st))
	}
	s.DaysOnMarket = d.int(keyDaysOnMarket)
	s.OpenHouse = d.flag(keyOpenHouse)
	s.VirtualTour = d.flag(keyVirtualTour)
	s.PriceReduced = d.flag(keyPriceReduced)
	s.Foreclosure = d.flag(keyForeclosure)
	s.ShortSale = d.flag(keyShortSale)
	s.AccessibilityFeatures = values[keyAccess]

	sort.Strings(d.dropped)
	return s.Normalize(), d.dropped
}

// FromMap decodes a loosely typed map, keyed by JSON field names or query
// keys, with the same coercion as Decode. Numbers may arrive as JSON
// numbers or strings; sets as arrays or comma-separated strings; amenity
// flags as an object of booleans or a list of names.
func FromMap(raw map[string]interface{}) (State, []string) {
	values := url.Values{}
	var dropped []string

	for key, val := range raw {
		if alias, ok := jsonAliases[key]; ok {
			key = alias
		}
		if val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			if isSetKey(key) && strings.Contains(v, ",") {
				for _, part := range strings.Split(v, ",") {
					values.Add(key, part)
				}
				continue
			}
			values.Add(key, v)
		case bool:
			if v {
				values.Add(key, "true")
			}
		case float64:
			values.Add(key, strconv.FormatFloat(v, 'f', -1, 64))
		case int:
			values.Add(key, strconv.Itoa(v))
		case []interface{}:
			for _, item := range v {
				values.Add(key, fmt.Sprint(item))
			}
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case map[string]interface{}:
			for name, flag := range v {
				if b, ok := flag.(bool); ok && b {
					values.Add(key, name)
				}
			}
		default:
			dropped = append(dropped, key)
		}
	}

	s, more := Decode(values)
	dropped = append(dropped, more...)
	sort.Strings(dropped)
	return s, dropped
}

func isSetKey(key string) bool {
	switch key {
	case keyFeature, keyNear, keyStatus, keyAccess:
		return true
	}
	return false
}

type decoder struct {
	values  url.Values
	dropped []string
}

func (d *decoder) raw(key string) (string, bool) {
	v := strings.TrimSpace(d.values.Get(key))
	return v, v != ""
}

func (d *decoder) str(key string) string {
	v, _ := d.raw(key)
	return v
}

func (d *decoder) float(key string) *float64 {
	v, ok := d.raw(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !validNumber(f) {
		d.dropped = append(d.dropped, key)
		return nil
	}
	return &f
}

// int accepts integral floats such as "3.0".
func (d *decoder) int(key string) *int {
	v, ok := d.raw(key)
	if !ok {
		return nil
	}
	if i, err := strconv.Atoi(v); err == nil {
		if i < 0 {
			d.dropped = append(d.dropped, key)
			return nil
		}
		return &i
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !validNumber(f) || f != math.Trunc(f) || f > math.MaxInt32 {
		d.dropped = append(d.dropped, key)
		return nil
	}
	i := int(f)
	return &i
}

func (d *decoder) flag(key string) bool {
	v, ok := d.raw(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		d.dropped = append(d.dropped, key)
		return false
	}
	return b
}

func setString(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setFloat(v url.Values, key string, val *float64) {
	if val != nil {
		v.Set(key, strconv.FormatFloat(*val, 'f', -1, 64))
	}
}

func setInt(v url.Values, key string, val *int) {
	if val != nil {
		v.Set(key, strconv.Itoa(*val))
	}
}

func setFlag(v url.Values, key string, val bool) {
	if val {
		v.Set(key, "1")
	}
}
