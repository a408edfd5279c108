// Package elastic queries a listings index in Elasticsearch.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/models"
	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/filter"
)

// MaxResultWindow is the index.max_result_window default. Pages reaching
// past it are served as hit-free requests that still carry totals and
// aggregates.
const MaxResultWindow = 10000

type Source struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSource(client *elasticsearch.Client, index string, log logger.Logger) (*Source, error) {
	if index == "" {
		return nil, fmt.Errorf("listings index name is required")
	}
	return &Source{client: client, index: index, logger: log}, nil
}

func (s *Source) Name() string { return "elasticsearch" }

func (s *Source) Search(ctx context.Context, constraints filter.Constraints, page search.Page) (*search.SourceResult, error) {
	query, err := BuildQuery(constraints)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(searchBody(query))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	from := page.Offset()
	size := page.Size
	if from < 0 || from+size > MaxResultWindow {
		s.logger.Debug("Page is past the result window", map[string]interface{}{
			"page":   page.Number,
			"offset": from,
		})
		from, size = 0, 0
	}
	req := esapi.SearchRequest{
		Index:          []string{s.index},
		Body:           bytes.NewReader(body),
		From:           &from,
		Size:           &size,
		TrackTotalHits: true,
	}

	s.logger.Debug("Querying listings index", map[string]interface{}{
		"index": s.index,
		"from":  from,
		"size":  size,
	})

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	total, err := s.count(ctx)
	if err != nil {
		return nil, err
	}

	out := &search.SourceResult{
		Matching:     parsed.Hits.Total.Value,
		Total:        total,
		AveragePrice: parsed.Aggregations.AvgPrice.get(),
		MinPrice:     parsed.Aggregations.MinPrice.get(),
		MaxPrice:     parsed.Aggregations.MaxPrice.get(),
	}
	for _, hit := range parsed.Hits.Hits {
		out.Listings = append(out.Listings, hit.Source.listing())
	}
	return out, nil
}

func (s *Source) count(ctx context.Context) (int, error) {
	res, err := esapi.CountRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return 0, fmt.Errorf("count request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count query failed: %s", res.String())
	}
	var r struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return r.Count, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		AvgPrice aggValue `json:"avg_price"`
		MinPrice aggValue `json:"min_price"`
		MaxPrice aggValue `json:"max_price"`
	} `json:"aggregations"`
}

// aggValue is null when no document matched.
type aggValue struct {
	Value *float64 `json:"value"`
}

func (a aggValue) get() float64 {
	if a.Value == nil {
		return 0
	}
	return *a.Value
}

// document is the indexed listing shape; field names match the SQL columns.
type document struct {
	ID                    string    `json:"id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description"`
	Address               string    `json:"address"`
	City                  string    `json:"city"`
	State                 string    `json:"state"`
	ZipCode               string    `json:"zip_code"`
	Price                 float64   `json:"price"`
	Bedrooms              int       `json:"bedrooms"`
	Bathrooms             float64   `json:"bathrooms"`
	PropertyType          string    `json:"property_type"`
	Features              []string  `json:"features"`
	Sqft                  int       `json:"sqft"`
	YearBuilt             int       `json:"year_built"`
	LotSize               float64   `json:"lot_size"`
	GarageSpaces          int       `json:"garage_spaces"`
	HOAFee                float64   `json:"hoa_fee"`
	NearbyAmenities       []string  `json:"nearby_amenities"`
	Status                string    `json:"status"`
	DaysOnMarket          int       `json:"days_on_market"`
	OpenHouse             bool      `json:"open_house"`
	VirtualTour           bool      `json:"virtual_tour"`
	PriceReduced          bool      `json:"price_reduced"`
	Foreclosure           bool      `json:"foreclosure"`
	ShortSale             bool      `json:"short_sale"`
	AccessibilityFeatures []string  `json:"accessibility_features"`
	GeoLocation           *geoPoint `json:"geo_location"`
	CreatedAt             time.Time `json:"created_at"`
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (d document) listing() models.Listing {
	l := models.Listing{
		ID:                    d.ID,
		Title:                 d.Title,
		Description:           d.Description,
		Address:               d.Address,
		City:                  d.City,
		State:                 d.State,
		ZipCode:               d.ZipCode,
		Price:                 d.Price,
		Bedrooms:              d.Bedrooms,
		Bathrooms:             d.Bathrooms,
		PropertyType:          d.PropertyType,
		Features:              d.Features,
		Sqft:                  d.Sqft,
		YearBuilt:             d.YearBuilt,
		LotSize:               d.LotSize,
		GarageSpaces:          d.GarageSpaces,
		HOAFee:                d.HOAFee,
		NearbyAmenities:       d.NearbyAmenities,
		Status:                d.Status,
		DaysOnMarket:          d.DaysOnMarket,
		OpenHouse:             d.OpenHouse,
		VirtualTour:           d.VirtualTour,
		PriceReduced:          d.PriceReduced,
		Foreclosure:           d.Foreclosure,
		ShortSale:             d.ShortSale,
		AccessibilityFeatures: d.AccessibilityFeatures,
		CreatedAt:             d.CreatedAt,
	}
	if d.GeoLocation != nil {
		l.Location = &models.Coordinate{Lat: d.GeoLocation.Lat, Lng: d.GeoLocation.Lon}
	}
	return l
}
