// internal/search/filter/builder.go
package filter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"listing-search-workers/internal/models"
)

var ErrValidation = errors.New("VALIDATION_ERROR")

// ValidationError lists the fields the builder dropped.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid filter fields dropped: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MinYearBuilt is the lower clamp for year-built bounds.
const MinYearBuilt = 1800

// Field names a listing attribute a constraint applies to.
type Field string

const (
	FieldSearch          Field = "search"
	FieldLocation        Field = "location"
	FieldPrice           Field = "price"
	FieldBedrooms        Field = "bedrooms"
	FieldBathrooms       Field = "bathrooms"
	FieldPropertyType    Field = "property_type"
	FieldFeatures        Field = "features"
	FieldSqft            Field = "sqft"
	FieldYearBuilt       Field = "year_built"
	FieldLotSize         Field = "lot_size"
	FieldGarageSpaces    Field = "garage_spaces"
	FieldHOAFee          Field = "hoa_fee"
	FieldNearbyAmenities Field = "nearby_amenities"
	FieldStatus          Field = "status"
	FieldDaysOnMarket    Field = "days_on_market"
	FieldOpenHouse       Field = "open_house"
	FieldVirtualTour     Field = "virtual_tour"
	FieldPriceReduced    Field = "price_reduced"
	FieldForeclosure     Field = "foreclosure"
	FieldShortSale       Field = "short_sale"
	FieldAccessibility   Field = "accessibility_features"
)

// Op is the comparison a constraint performs.
type Op string

const (
	OpText   Op = "text"    // case-insensitive substring on the field's text columns
	OpGTE    Op = "gte"     // inclusive lower bound
	OpLTE    Op = "lte"     // inclusive upper bound
	OpEq     Op = "eq"      // exact match on Text
	OpHasAll Op = "has_all" // every item of Values present
	OpHasAny Op = "has_any" // at least one item of Values present
	OpIn     Op = "in"      // scalar value is one of Values
	OpIsTrue Op = "is_true"
)

// Constraint is one narrowing condition derived from a populated field.
type Constraint struct {
	Field  Field    `json:"field"`
	Op     Op       `json:"op"`
	Number float64  `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
	Values []string `json:"values,omitempty"`
}

// Constraints is the builder output. All items must hold for a listing to match.
type Constraints struct {
	Items   []Constraint `json:"items"`
	Dropped []string     `json:"dropped,omitempty"`
}

func (c Constraints) IsEmpty() bool { return len(c.Items) == 0 }

// Err returns a *ValidationError when fields were dropped.
func (c Constraints) Err() error {
	if len(c.Dropped) == 0 {
		return nil
	}
	return &ValidationError{Fields: append([]string(nil), c.Dropped...)}
}

// Matches reports whether l satisfies every constraint.
func (c Constraints) Matches(l models.Listing) bool {
	for _, item := range c.Items {
		if !item.Matches(l) {
			return false
		}
	}
	return true
}

// Builder translates a State into Constraints. Now supplies the current
// year for the year-built clamp; nil means time.Now.
type Builder struct {
	Now func() time.Time
}

// Build uses the wall clock.
func Build(s State) Constraints {
	return Builder{}.Build(s)
}

func (b Builder) Build(s State) Constraints {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	e := emitter{currentYear: now().Year()}

	e.text(FieldSearch, s.Search)
	e.text(FieldLocation, s.Location)

	e.floatBound(FieldPrice, OpGTE, "priceMin", s.PriceMin)
	e.floatBound(FieldPrice, OpLTE, "priceMax", s.PriceMax)
	e.intBound(FieldBedrooms, OpGTE, "bedrooms", s.Bedrooms)
	if s.Bathrooms != nil {
		if v := *s.Bathrooms; validNumber(v) && math.Mod(v*2, 1) != 0 {
			e.drop("bathrooms")
		} else {
			e.floatBound(FieldBathrooms, OpGTE, "bathrooms", s.Bathrooms)
		}
	}
	if s.Type != nil {
		t := PropertyType(strings.ToLower(strings.TrimSpace(string(*s.Type))))
		switch {
		case t == "":
		case !t.Valid():
			e.drop("propertyType")
		default:
			e.add(Constraint{Field: FieldPropertyType, Op: OpEq, Text: string(t)})
		}
	}
	e.set(FieldFeatures, OpHasAll, s.Features)

	e.intBound(FieldSqft, OpGTE, "sqftMin", s.SqftMin)
	e.intBound(FieldSqft, OpLTE, "sqftMax", s.SqftMax)
	e.year(OpGTE, "yearBuiltMin", s.YearBuiltMin)
	e.year(OpLTE, "yearBuiltMax", s.YearBuiltMax)
	e.floatBound(FieldLotSize, OpGTE, "lotSizeMin", s.LotSizeMin)
	e.floatBound(FieldLotSize, OpLTE, "lotSizeMax", s.LotSizeMax)
	e.intBound(FieldGarageSpaces, OpGTE, "garageSpaces", s.GarageSpaces)
	e.floatBound(FieldHOAFee, OpGTE, "hoaFeeMin", s.HOAFeeMin)
	e.floatBound(FieldHOAFee, OpLTE, "hoaFeeMax", s.HOAFeeMax)

	e.set(FieldNearbyAmenities, OpHasAny, s.ActiveAmenities())
	e.statuses(s.ListingStatus)
	e.intBound(FieldDaysOnMarket, OpLTE, "daysOnMarket", s.DaysOnMarket)

	e.flag(FieldOpenHouse, s.OpenHouse)
	e.flag(FieldVirtualTour, s.VirtualTour)
	e.flag(FieldPriceReduced, s.PriceReduced)
	e.flag(FieldForeclosure, s.Foreclosure)
	e.flag(FieldShortSale, s.ShortSale)

	e.set(FieldAccessibility, OpHasAll, s.AccessibilityFeatures)

	return e.out
}

type emitter struct {
	currentYear int
	out         Constraints
}

func (e *emitter) add(c Constraint) { e.out.Items = append(e.out.Items, c) }

func (e *emitter) drop(name string) {
	for _, d := range e.out.Dropped {
		if d == name {
			return
		}
	}
	e.out.Dropped = append(e.out.Dropped, name)
}

func (e *emitter) text(field Field, v string) {
	if v = strings.TrimSpace(v); v != "" {
		e.add(Constraint{Field: field, Op: OpText, Text: v})
	}
}

func (e *emitter) floatBound(field Field, op Op, name string, v *float64) {
	if v == nil {
		return
	}
	if !validNumber(*v) {
		e.drop(name)
		return
	}
	e.add(Constraint{Field: field, Op: op, Number: *v})
}

func (e *emitter) intBound(field Field, op Op, name string, v *int) {
	if v == nil {
		return
	}
	if *v < 0 {
		e.drop(name)
		return
	}
	e.add(Constraint{Field: field, Op: op, Number: float64(*v)})
}

func (e *emitter) year(op Op, name string, v *int) {
	if v == nil {
		return
	}
	y := *v
	if y < MinYearBuilt {
		y = MinYearBuilt
	}
	if y > e.currentYear {
		y = e.currentYear
	}
	e.add(Constraint{Field: FieldYearBuilt, Op: op, Number: float64(y)})
}

func (e *emitter) set(field Field, op Op, items []string) {
	if items = normalizeSet(items); len(items) > 0 {
		e.add(Constraint{Field: field, Op: op, Values: items})
	}
}

func (e *emitter) statuses(in []ListingStatus) {
	if len(in) == 0 {
		return
	}
	var valid []string
	for _, st := range in {
		st = ListingStatus(strings.ToLower(strings.TrimSpace(string(st))))
		if st == "" {
			continue
		}
		if !st.Valid() {
			e.drop("listingStatus")
			continue
		}
		valid = append(valid, string(st))
	}
	if valid = normalizeSet(valid); len(valid) > 0 {
		e.add(Constraint{Field: FieldStatus, Op: OpIn, Values: valid})
	}
}

func (e *emitter) flag(field Field, v bool) {
	if v {
		e.add(Constraint{Field: field, Op: OpIsTrue})
	}
}
