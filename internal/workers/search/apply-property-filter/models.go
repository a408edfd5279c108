// internal/workers/search/apply-property-filter/models.go
package applypropertyfilter

import (
	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/filter"
)

// Input is one filter application. RequestSeq numbers the request within
// a search session; LatestRequestSeq is the newest number the session has
// issued when the job is picked up.
type Input struct {
	FilterState      filter.State      `json:"filterState"`
	Pagination       search.Pagination `json:"pagination"`
	RequestSeq       uint64            `json:"requestSeq,omitempty"`
	LatestRequestSeq uint64            `json:"latestRequestSeq,omitempty"`
}

// Output always carries a well-formed result. Error and ErrorCode are set
// when the listing query failed; Stale is set when a newer request
// superseded this one and the query was skipped.
type Output struct {
	Result    *search.FilterResult `json:"result"`
	Stale     bool                 `json:"stale"`
	Error     string               `json:"error,omitempty"`
	ErrorCode string               `json:"errorCode,omitempty"`
}

var inputSchema = `{
	"type": "object",
	"properties": {
		"filterState": {"type": ["object", "null"]},
		"pagination": {
			"type": ["object", "null"],
			"properties": {
				"page": {"type": "integer", "minimum": 0, "maximum": 2147483647},
				"pageSize": {"type": "integer", "minimum": 0, "maximum": 1000}
			}
		},
		"requestSeq": {"type": "integer", "minimum": 0},
		"latestRequestSeq": {"type": "integer", "minimum": 0}
	}
}`
