// internal/workers/insights/neighborhood-insights/models.go
package neighborhoodinsights

import "listing-search-workers/internal/insights"

type Input struct {
	Address string `json:"address"`
	Refresh bool   `json:"refresh,omitempty"`
}

type Output struct {
	Insights *insights.Entry `json:"insights"`
	Cached   bool            `json:"cached"`
	Degraded bool            `json:"degraded"`
}

var inputSchema = `{
	"type": "object",
	"required": ["address"],
	"properties": {
		"address": {"type": "string", "minLength": 1, "maxLength": 500},
		"refresh": {"type": "boolean"}
	}
}`
