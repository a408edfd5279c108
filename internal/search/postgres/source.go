// Package postgres queries the listings table with constraints rendered as SQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/lib/pq"

	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/models"
	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/filter"
)

const listingColumns = `id, title, COALESCE(description, ''), address, city, state, zip_code,
	price, bedrooms, bathrooms, property_type, features, sqft, year_built,
	lot_size, garage_spaces, hoa_fee, nearby_amenities, status, days_on_market,
	open_house, virtual_tour, price_reduced, foreclosure, short_sale,
	accessibility_features, latitude, longitude, created_at`

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Source struct {
	db     *sql.DB
	table  string
	logger logger.Logger
}

func NewSource(db *sql.DB, table string, log logger.Logger) (*Source, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid listings table name %q", table)
	}
	return &Source{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		logger: log,
	}, nil
}

func (s *Source) Name() string { return "postgres" }

// Search runs the aggregate, corpus-count and page queries. The page query
// is skipped when nothing matches.
func (s *Source) Search(ctx context.Context, constraints filter.Constraints, page search.Page) (*search.SourceResult, error) {
	clause, err := Translate(constraints)
	if err != nil {
		return nil, err
	}
	where := ""
	if clause.SQL != "" {
		where = " WHERE " + clause.SQL
	}
	s.logger.Debug("Querying listings", map[string]interface{}{
		"where": clause.SQL,
		"args":  len(clause.Args),
		"page":  page.Number,
		"size":  page.Size,
	})

	res := &search.SourceResult{}

	statsQuery := fmt.Sprintf(
		`SELECT COUNT(*), COALESCE(AVG(price), 0), COALESCE(MIN(price), 0), COALESCE(MAX(price), 0) FROM %s%s`,
		s.table, where)
	if err := s.db.QueryRowContext(ctx, statsQuery, clause.Args...).Scan(
		&res.Matching, &res.AveragePrice, &res.MinPrice, &res.MaxPrice,
	); err != nil {
		return nil, fmt.Errorf("aggregate query: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&res.Total); err != nil {
		return nil, fmt.Errorf("corpus count: %w", err)
	}

	if res.Matching == 0 || page.Offset() >= res.Matching {
		return res, nil
	}

	n := len(clause.Args)
	pageQuery := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d`,
		listingColumns, s.table, where, n+1, n+2)
	args := append(append([]interface{}{}, clause.Args...), page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("page query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		res.Listings = append(res.Listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return res, nil
}

func scanListing(rows *sql.Rows) (models.Listing, error) {
	var l models.Listing
	var lat, lng sql.NullFloat64
	err := rows.Scan(
		&l.ID, &l.Title, &l.Description, &l.Address, &l.City, &l.State, &l.ZipCode,
		&l.Price, &l.Bedrooms, &l.Bathrooms, &l.PropertyType, pq.Array(&l.Features), &l.Sqft, &l.YearBuilt,
		&l.LotSize, &l.GarageSpaces, &l.HOAFee, pq.Array(&l.NearbyAmenities), &l.Status, &l.DaysOnMarket,
		&l.OpenHouse, &l.VirtualTour, &l.PriceReduced, &l.Foreclosure, &l.ShortSale,
		pq.Array(&l.AccessibilityFeatures), &lat, &lng, &l.CreatedAt,
	)
	if err != nil {
		return l, err
	}
	if lat.Valid && lng.Valid {
		l.Location = &models.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	return l, nil
}
