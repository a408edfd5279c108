// internal/insights/airquality.go
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"listing-search-workers/internal/common/config"
	commonhttp "listing-search-workers/internal/common/http"
	"listing-search-workers/internal/models"
)

const currentConditionsPath = "/v1/currentConditions:lookup"

// AirQualityClient reads current conditions from the Google Air Quality API.
type AirQualityClient struct {
	http    *commonhttp.Client
	baseURL string
	apiKey  string
}

func NewAirQualityClient(cfg config.AirQualityConfig) *AirQualityClient {
	return &AirQualityClient{
		http:    commonhttp.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

type lookupRequest struct {
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

type lookupResponse struct {
	Indexes []struct {
		Code              string `json:"code"`
		AQI               int    `json:"aqi"`
		Category          string `json:"category"`
		DominantPollutant string `json:"dominantPollutant"`
	} `json:"indexes"`
}

func (c *AirQualityClient) Current(ctx context.Context, at models.Coordinate) (*models.AirQuality, error) {
	var req lookupRequest
	req.Location.Latitude = at.Lat
	req.Location.Longitude = at.Lng

	var resp lookupResponse
	err := c.http.PostJSON(ctx, c.baseURL+currentConditionsPath,
		map[string]string{"X-Goog-Api-Key": c.apiKey}, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("air quality lookup: %w", err)
	}
	if len(resp.Indexes) == 0 {
		return nil, fmt.Errorf("air quality lookup: no index returned")
	}
	idx := resp.Indexes[0]
	return &models.AirQuality{
		AQI:               idx.AQI,
		Category:          idx.Category,
		DominantPollutant: idx.DominantPollutant,
		IndexCode:         idx.Code,
	}, nil
}
