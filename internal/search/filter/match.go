// internal/search/filter/match.go
package filter

import (
	"strings"

	"listing-search-workers/internal/models"
)

// Matches evaluates c against a single listing in memory.
func (c Constraint) Matches(l models.Listing) bool {
	switch c.Op {
	case OpText:
		needle := strings.ToLower(c.Text)
		for _, hay := range textColumns(l, c.Field) {
			if strings.Contains(strings.ToLower(hay), needle) {
				return true
			}
		}
		return false
	case OpGTE:
		v, ok := numericValue(l, c.Field)
		return ok && v >= c.Number
	case OpLTE:
		v, ok := numericValue(l, c.Field)
		return ok && v <= c.Number
	case OpEq:
		return strings.EqualFold(scalarValue(l, c.Field), c.Text)
	case OpHasAll:
		return models.HasAll(setValue(l, c.Field), c.Values)
	case OpHasAny:
		return models.HasAny(setValue(l, c.Field), c.Values)
	case OpIn:
		v := scalarValue(l, c.Field)
		for _, want := range c.Values {
			if strings.EqualFold(v, want) {
				return true
			}
		}
		return false
	case OpIsTrue:
		return flagValue(l, c.Field)
	}
	return false
}

// TextColumns lists the listing columns a text constraint searches.
func TextColumns(field Field) []string {
	switch field {
	case FieldSearch:
		return []string{"title", "description", "address"}
	case FieldLocation:
		return []string{"address", "city", "state", "zip_code"}
	}
	return nil
}

func textColumns(l models.Listing, field Field) []string {
	switch field {
	case FieldSearch:
		return []string{l.Title, l.Description, l.Address}
	case FieldLocation:
		return []string{l.Address, l.City, l.State, l.ZipCode}
	}
	return nil
}

func numericValue(l models.Listing, field Field) (float64, bool) {
	switch field {
	case FieldPrice:
		return l.Price, true
	case FieldBedrooms:
		return float64(l.Bedrooms), true
	case FieldBathrooms:
		return l.Bathrooms, true
	case FieldSqft:
		return float64(l.Sqft), true
	case FieldYearBuilt:
		return float64(l.YearBuilt), true
	case FieldLotSize:
		return l.LotSize, true
	case FieldGarageSpaces:
		return float64(l.GarageSpaces), true
	case FieldHOAFee:
		return l.HOAFee, true
	case FieldDaysOnMarket:
		return float64(l.DaysOnMarket), true
	}
	return 0, false
}

func scalarValue(l models.Listing, field Field) string {
	switch field {
	case FieldPropertyType:
		return l.PropertyType
	case FieldStatus:
		return l.Status
	}
	return ""
}

func setValue(l models.Listing, field Field) []string {
	switch field {
	case FieldFeatures:
		return l.Features
	case FieldNearbyAmenities:
		return l.NearbyAmenities
	case FieldAccessibility:
		return l.AccessibilityFeatures
	}
	return nil
}

func flagValue(l models.Listing, field Field) bool {
	switch field {
	case FieldOpenHouse:
		return l.OpenHouse
	case FieldVirtualTour:
		return l.VirtualTour
	case FieldPriceReduced:
		return l.PriceReduced
	case FieldForeclosure:
		return l.Foreclosure
	case FieldShortSale:
		return l.ShortSale
	}
	return false
}
