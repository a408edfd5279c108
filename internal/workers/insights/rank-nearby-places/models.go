// internal/workers/insights/rank-nearby-places/models.go
package ranknearbyplaces

import "listing-search-workers/internal/models"

// Input asks for the best places of one category around Origin.
// RadiusMeters zero selects the category's default radius.
type Input struct {
	Origin       models.Coordinate `json:"origin"`
	Category     string            `json:"category"`
	RadiusMeters int               `json:"radiusMeters,omitempty"`
}

type Output struct {
	Category     string               `json:"category"`
	RadiusMeters int                  `json:"radiusMeters"`
	Places       []models.NearbyPlace `json:"places"`
	Count        int                  `json:"count"`
}

var inputSchema = `{
	"type": "object",
	"required": ["origin", "category"],
	"properties": {
		"origin": {
			"type": "object",
			"required": ["lat", "lng"],
			"properties": {
				"lat": {"type": "number", "minimum": -90, "maximum": 90},
				"lng": {"type": "number", "minimum": -180, "maximum": 180}
			}
		},
		"category": {
			"type": "string",
			"enum": ["schools", "restaurants", "shopping", "healthcare", "parks", "transit", "gyms"]
		},
		"radiusMeters": {"type": "integer", "minimum": 0, "maximum": 50000}
	}
}`
