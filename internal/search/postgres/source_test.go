package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/filter"
)

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createTestSource(t *testing.T) (*Source, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src, err := NewSource(db, "properties", createTestLogger(t))
	require.NoError(t, err)
	return src, mock
}

var listingRowColumns = []string{
	"id", "title", "description", "address", "city", "state", "zip_code",
	"price", "bedrooms", "bathrooms", "property_type", "features", "sqft", "year_built",
	"lot_size", "garage_spaces", "hoa_fee", "nearby_amenities", "status", "days_on_market",
	"open_house", "virtual_tour", "price_reduced", "foreclosure", "short_sale",
	"accessibility_features", "latitude", "longitude", "created_at",
}

// ==========================
// Translate
// ==========================

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		state    filter.State
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "open-ended lower bound",
			state:    filter.State{PriceMin: filter.Float(300000)},
			wantSQL:  "price >= $1",
			wantArgs: []interface{}{300000.0},
		},
		{
			name:     "independent range bounds",
			state:    filter.State{SqftMin: filter.Int(900), SqftMax: filter.Int(1800)},
			wantSQL:  "sqft >= $1 AND sqft <= $2",
			wantArgs: []interface{}{900.0, 1800.0},
		},
		{
			name:     "text search escapes wildcards",
			state:    filter.State{Search: "50%_off"},
			wantSQL:  "(title ILIKE $1 OR description ILIKE $1 OR address ILIKE $1)",
			wantArgs: []interface{}{`%50\%\_off%`},
		},
		{
			name:     "features require all",
			state:    filter.State{Features: []string{"pool", "deck"}},
			wantSQL:  "features @> $1",
			wantArgs: []interface{}{pq.StringArray{"deck", "pool"}},
		},
		{
			name: "amenities any and status in",
			state: filter.State{
				NearbyAmenities: map[string]bool{"parks": true},
				ListingStatus:   []filter.ListingStatus{filter.StatusActive},
			},
			wantSQL:  "nearby_amenities && $1 AND status = ANY($2)",
			wantArgs: []interface{}{pq.StringArray{"parks"}, pq.StringArray{"active"}},
		},
		{
			name:     "flags and property type",
			state:    filter.State{Type: filter.Type(filter.PropertyTypeCondo), ShortSale: true},
			wantSQL:  "LOWER(property_type) = $1 AND short_sale = TRUE",
			wantArgs: []interface{}{"condo"},
		},
		{
			name:    "empty",
			state:   filter.State{},
			wantSQL: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := Translate(filter.Build(tt.state))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, clause.SQL)
			assert.Equal(t, tt.wantArgs, clause.Args)
		})
	}
}

func TestNewSource_RejectsBadTableName(t *testing.T) {
	_, err := NewSource(nil, "properties; DROP TABLE x", createTestLogger(t))
	assert.Error(t, err)
}

// ==========================
// Search
// ==========================

func TestSearch_ReturnsPageAndStats(t *testing.T) {
	src, mock := createTestSource(t)
	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*), COALESCE(AVG(price), 0), COALESCE(MIN(price), 0), COALESCE(MAX(price), 0) FROM "properties" WHERE price >= $1 AND price <= $2`)).
		WithArgs(300000.0, 600000.0).
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg", "min", "max"}).AddRow(4, 450000.0, 300000.0, 600000.0))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "properties"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	mock.ExpectQuery(`SELECT id, title, .* FROM "properties" WHERE price >= \$1 AND price <= \$2 ORDER BY created_at DESC, id ASC LIMIT \$3 OFFSET \$4`).
		WithArgs(300000.0, 600000.0, 2, 0).
		WillReturnRows(sqlmock.NewRows(listingRowColumns).
			AddRow("L6", "Six", "", "6 Main St", "Austin", "TX", "78701",
				600000.0, 3, 2.5, "house", "{pool,garage}", 1800, 2001,
				0.3, 2, 0.0, "{parks}", "active", 4,
				true, false, false, false, false,
				nil, 30.27, -97.74, created).
			AddRow("L5", "Five", "", "5 Main St", "Austin", "TX", "78701",
				500000.0, 2, 2.0, "condo", nil, 1100, 1999,
				0.0, 1, 250.0, nil, "new", 1,
				false, true, false, false, false,
				"{ramp}", nil, nil, created))

	constraints := filter.Build(filter.State{PriceMin: filter.Float(300000), PriceMax: filter.Float(600000)})
	res, err := src.Search(context.Background(), constraints, search.Page{Number: 1, Size: 2})

	require.NoError(t, err)
	assert.Equal(t, 4, res.Matching)
	assert.Equal(t, 10, res.Total)
	assert.Equal(t, 450000.0, res.AveragePrice)
	assert.Equal(t, 300000.0, res.MinPrice)
	assert.Equal(t, 600000.0, res.MaxPrice)
	require.Len(t, res.Listings, 2)

	first := res.Listings[0]
	assert.Equal(t, "L6", first.ID)
	assert.Equal(t, []string{"pool", "garage"}, first.Features)
	assert.Equal(t, []string{"parks"}, first.NearbyAmenities)
	require.NotNil(t, first.Location)
	assert.InDelta(t, 30.27, first.Location.Lat, 1e-9)

	second := res.Listings[1]
	assert.Nil(t, second.Location)
	assert.Empty(t, second.Features)
	assert.Equal(t, []string{"ramp"}, second.AccessibilityFeatures)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_SkipsPageQueryWithoutMatches(t *testing.T) {
	src, mock := createTestSource(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(AVG\(price\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg", "min", "max"}).AddRow(0, 0.0, 0.0, 0.0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "properties"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	res, err := src.Search(context.Background(), filter.Build(filter.State{Foreclosure: true}), search.Page{Number: 1, Size: 20})

	require.NoError(t, err)
	assert.Equal(t, 0, res.Matching)
	assert.Empty(t, res.Listings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_PropagatesQueryErrors(t *testing.T) {
	src, mock := createTestSource(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE`).WillReturnError(errors.New("connection refused"))

	res, err := src.Search(context.Background(), filter.Build(filter.State{Bedrooms: filter.Int(2)}), search.Page{Number: 1, Size: 20})

	assert.Nil(t, res)
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
