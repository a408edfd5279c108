// internal/search/elastic/mapping.go
package elastic

import "strings"

// rawIgnoreAbove keeps long descriptions under Lucene's term size limit.
const rawIgnoreAbove = 8191

// IndexMapping is the create-index body for the listings index. Text
// search fields are analyzed and carry a keyword subfield for substring
// wildcards; everything filtered by term is a keyword.
func IndexMapping() map[string]interface{} {
	typed := func(t string) map[string]interface{} { return map[string]interface{}{"type": t} }
	searchable := func() map[string]interface{} {
		return map[string]interface{}{
			"type": "text",
			"fields": map[string]interface{}{
				strings.TrimPrefix(RawSuffix, "."): map[string]interface{}{
					"type":         "keyword",
					"ignore_above": rawIgnoreAbove,
				},
			},
		}
	}

	props := map[string]interface{}{
		"id":           typed("keyword"),
		"title":        searchable(),
		"description":  searchable(),
		"address":      searchable(),
		"city":         searchable(),
		"state":        searchable(),
		"zip_code":     searchable(),
		"geo_location": typed("geo_point"),
		"created_at":   typed("date"),
	}
	for _, f := range []string{"property_type", "features", "nearby_amenities", "status", "accessibility_features"} {
		props[f] = typed("keyword")
	}
	for _, f := range []string{"price", "bathrooms", "lot_size", "hoa_fee"} {
		props[f] = typed("double")
	}
	for _, f := range []string{"bedrooms", "sqft", "year_built", "garage_spaces", "days_on_market"} {
		props[f] = typed("integer")
	}
	for _, f := range []string{"open_house", "virtual_tour", "price_reduced", "foreclosure", "short_sale"} {
		props[f] = typed("boolean")
	}

	return map[string]interface{}{
		"mappings": map[string]interface{}{"properties": props},
	}
}
