// internal/workers/search/parse-filter-state/models.go
package parsefilterstate

import "listing-search-workers/internal/search/filter"

// Input carries either a loosely typed filter map or a URL query string.
// When both are present the query string wins.
type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters,omitempty"`
	Query      string                 `json:"query,omitempty"`
}

type Output struct {
	FilterState   filter.State `json:"filterState"`
	Query         string       `json:"query"`
	DroppedFields []string     `json:"droppedFields"`
	IsEmpty       bool         `json:"isEmpty"`
}

var inputSchema = `{
	"type": "object",
	"properties": {
		"rawFilters": {"type": ["object", "null"]},
		"query": {"type": "string", "maxLength": 4096}
	}
}`
