package insights

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-search-workers/internal/common/config"
	"listing-search-workers/internal/models"
)

func TestAirQualityClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/currentConditions:lookup", r.URL.Path)
		assert.Equal(t, "aq-key", r.Header.Get("X-Goog-Api-Key"))

		var body map[string]map[string]float64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 39.78, body["location"]["latitude"])

		_, _ = io.WriteString(w, `{"indexes": [
			{"code": "uaqi", "displayName": "Universal AQI", "aqi": 71, "category": "Good air quality", "dominantPollutant": "o3"},
			{"code": "usa_epa", "aqi": 40}
		]}`)
	}))
	defer srv.Close()

	client := NewAirQualityClient(config.AirQualityConfig{Enabled: true, APIKey: "aq-key", BaseURL: srv.URL + "/", Timeout: 1000})
	aq, err := client.Current(context.Background(), models.Coordinate{Lat: 39.78, Lng: -89.65})
	require.NoError(t, err)
	assert.Equal(t, 71, aq.AQI)
	assert.Equal(t, "uaqi", aq.IndexCode)
	assert.Equal(t, "o3", aq.DominantPollutant)
}

func TestAirQualityClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Goog-Api-Key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"indexes": []}`)
	}))
	defer srv.Close()

	_, err := NewAirQualityClient(config.AirQualityConfig{BaseURL: srv.URL, Timeout: 1000}).
		Current(context.Background(), models.Coordinate{})
	assert.Error(t, err)

	_, err = NewAirQualityClient(config.AirQualityConfig{APIKey: "k", BaseURL: srv.URL, Timeout: 1000}).
		Current(context.Background(), models.Coordinate{})
	assert.ErrorContains(t, err, "no index")
}
