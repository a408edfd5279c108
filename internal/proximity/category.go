// internal/proximity/category.go
package proximity

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategorySchools     Category = "schools"
	CategoryRestaurants Category = "restaurants"
	CategoryShopping    Category = "shopping"
	CategoryHealthcare  Category = "healthcare"
	CategoryParks       Category = "parks"
	CategoryTransit     Category = "transit"
	CategoryGyms        Category = "gyms"
)

// Categories is every category RankAll fetches, in display order.
var Categories = []Category{
	CategorySchools,
	CategoryRestaurants,
	CategoryShopping,
	CategoryHealthcare,
	CategoryParks,
	CategoryTransit,
	CategoryGyms,
}

var defaultRadii = map[Category]int{
	CategorySchools:     2000,
	CategoryRestaurants: 1000,
	CategoryShopping:    1500,
	CategoryHealthcare:  3000,
	CategoryParks:       1500,
	CategoryTransit:     1000,
	CategoryGyms:        1500,
}

var placeTypes = map[Category]string{
	CategorySchools:     "school",
	CategoryRestaurants: "restaurant",
	CategoryShopping:    "shopping_mall",
	CategoryHealthcare:  "hospital",
	CategoryParks:       "park",
	CategoryTransit:     "transit_station",
	CategoryGyms:        "gym",
}

// DefaultRadius is the search radius in metres used for c by RankAll.
func (c Category) DefaultRadius() int { return defaultRadii[c] }

// PlaceType is the provider place type searched for c.
func (c Category) PlaceType() string { return placeTypes[c] }

func (c Category) Valid() bool {
	_, ok := defaultRadii[c]
	return ok
}

// ParseCategory accepts a category name in any case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown place category %q", s)
	}
	return c, nil
}
