package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"listing-search-workers/internal/common/config"
	"listing-search-workers/internal/common/logger"
)

func TestHealthMux(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		readyErr   error
		wantCode   int
		wantStatus string
	}{
		{"health", "/health", fmt.Errorf("ignored"), http.StatusOK, "healthy"},
		{"ready", "/ready", nil, http.StatusOK, "ready"},
		{"not ready", "/ready", fmt.Errorf("redis ping failed"), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := healthMux(func(context.Context) error { return tt.readyErr })

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}

func TestHealthMux_Metrics(t *testing.T) {
	mux := healthMux(func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestOpenSavedFilterStore_SQLite(t *testing.T) {
	cfg := &config.Config{
		Saved:    config.SavedFiltersConfig{Driver: "sqlite"},
		Database: config.DatabaseConfig{SQLite: config.SQLiteConfig{Path: ":memory:"}},
	}

	store, err := openSavedFilterStore(context.Background(), cfg, nil, logger.NewZapAdapter(zaptest.NewLogger(t)))
	require.NoError(t, err)

	exists, err := store.Exists(context.Background(), "owner-1", "starter")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOpenSavedFilterStore_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Saved: config.SavedFiltersConfig{Driver: "mysql"}}

	_, err := openSavedFilterStore(context.Background(), cfg, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}
