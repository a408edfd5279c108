// internal/workers/search/manage-saved-filters/models.go
package managesavedfilters

import (
	"listing-search-workers/internal/savedfilter"
	"listing-search-workers/internal/search/filter"
)

type Action string

const (
	ActionSave      Action = "save"
	ActionOverwrite Action = "overwrite"
	ActionGet       Action = "get"
	ActionList      Action = "list"
	ActionDelete    Action = "delete"
	ActionExists    Action = "exists"
)

type Input struct {
	Action      Action        `json:"action"`
	OwnerID     string        `json:"ownerId"`
	Name        string        `json:"name,omitempty"`
	ID          string        `json:"id,omitempty"`
	FilterState *filter.State `json:"filterState,omitempty"`
}

// Output fields are populated per action: SavedFilter and Query for save,
// overwrite and get; SavedFilters for list; Exists for exists; Deleted for
// delete.
type Output struct {
	Action       Action                    `json:"action"`
	SavedFilter  *savedfilter.SavedFilter  `json:"savedFilter,omitempty"`
	Query        string                    `json:"query,omitempty"`
	SavedFilters []savedfilter.SavedFilter `json:"savedFilters,omitempty"`
	Exists       bool                      `json:"exists"`
	Deleted      bool                      `json:"deleted"`
}

var inputSchema = `{
	"type": "object",
	"required": ["action"],
	"properties": {
		"action": {"type": "string", "enum": ["save", "overwrite", "get", "list", "delete", "exists"]},
		"ownerId": {"type": "string"},
		"name": {"type": "string", "maxLength": 200},
		"id": {"type": "string"},
		"filterState": {"type": ["object", "null"]}
	}
}`
