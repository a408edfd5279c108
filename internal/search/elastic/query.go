// internal/search/elastic/query.go
package elastic

import (
	"fmt"
	"strings"

	"listing-search-workers/internal/search/filter"
)

// textBoost ranks matches in the listed columns above the rest.
var textBoost = map[string]float64{
	"title":   3,
	"address": 2,
	"city":    2,
}

// RawSuffix names the keyword subfield IndexMapping adds to every text
// column. Wildcards on it match substrings of the whole value, the same way
// the SQL backend's ILIKE does.
const RawSuffix = ".raw"

// BuildQuery renders constraints as a bool query. Text constraints score in
// must; every other constraint is a non-scoring filter clause.
func BuildQuery(c filter.Constraints) (map[string]interface{}, error) {
	must := []interface{}{}
	filters := []interface{}{}

	for _, item := range c.Items {
		field := string(item.Field)
		switch item.Op {
		case filter.OpText:
			q, err := substring(item)
			if err != nil {
				return nil, err
			}
			must = append(must, q)
		case filter.OpGTE, filter.OpLTE:
			filters = append(filters, map[string]interface{}{
				"range": map[string]interface{}{
					field: map[string]interface{}{string(item.Op): item.Number},
				},
			})
		case filter.OpEq:
			filters = append(filters, term(field, item.Text))
		case filter.OpHasAll:
			for _, v := range item.Values {
				filters = append(filters, term(field, v))
			}
		case filter.OpHasAny, filter.OpIn:
			filters = append(filters, map[string]interface{}{
				"terms": map[string]interface{}{field: item.Values},
			})
		case filter.OpIsTrue:
			filters = append(filters, term(field, true))
		default:
			return nil, fmt.Errorf("unsupported operator %q on %s", item.Op, item.Field)
		}
	}

	if len(must) == 0 && len(filters) == 0 {
		return map[string]interface{}{"match_all": map[string]interface{}{}}, nil
	}
	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	return map[string]interface{}{"bool": boolQuery}, nil
}

// substring matches item.Text anywhere in any of the field's text columns,
// ignoring case.
func substring(item filter.Constraint) (map[string]interface{}, error) {
	cols := filter.TextColumns(item.Field)
	if len(cols) == 0 {
		return nil, fmt.Errorf("field %s does not support text search", item.Field)
	}
	pattern := "*" + escapeWildcard(item.Text) + "*"
	should := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		w := map[string]interface{}{
			"value":            pattern,
			"case_insensitive": true,
		}
		if b, ok := textBoost[col]; ok {
			w["boost"] = b
		}
		should = append(should, map[string]interface{}{
			"wildcard": map[string]interface{}{col + RawSuffix: w},
		})
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
		},
	}, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string { return wildcardEscaper.Replace(s) }

func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

// searchBody is the full request body for one page plus price aggregates.
func searchBody(query map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"query": query,
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
		},
		"aggs": map[string]interface{}{
			"avg_price": map[string]interface{}{"avg": map[string]interface{}{"field": "price"}},
			"min_price": map[string]interface{}{"min": map[string]interface{}{"field": "price"}},
			"max_price": map[string]interface{}{"max": map[string]interface{}{"field": "price"}},
		},
	}
}
