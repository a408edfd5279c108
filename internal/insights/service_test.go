package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"listing-search-workers/internal/models"
	"listing-search-workers/internal/proximity"
)

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, address string) (*Entry, bool, error) {
	args := m.Called(ctx, address)
	e, _ := args.Get(0).(*Entry)
	return e, args.Bool(1), args.Error(2)
}

func (m *mockCache) Put(ctx context.Context, address string, e *Entry) error {
	return m.Called(ctx, address, e).Error(0)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Geocode(ctx context.Context, address string) ([]models.Coordinate, error) {
	args := m.Called(ctx, address)
	c, _ := args.Get(0).([]models.Coordinate)
	return c, args.Error(1)
}

type mockRanker struct{ mock.Mock }

func (m *mockRanker) RankAll(ctx context.Context, origin models.Coordinate) (map[proximity.Category][]models.NearbyPlace, []proximity.Category) {
	args := m.Called(ctx, origin)
	places, _ := args.Get(0).(map[proximity.Category][]models.NearbyPlace)
	failed, _ := args.Get(1).([]proximity.Category)
	return places, failed
}

type mockAir struct{ mock.Mock }

func (m *mockAir) Current(ctx context.Context, at models.Coordinate) (*models.AirQuality, error) {
	args := m.Called(ctx, at)
	aq, _ := args.Get(0).(*models.AirQuality)
	return aq, args.Error(1)
}

const address = "12 Oak St, Springfield"

var springfield = models.Coordinate{Lat: 39.78, Lng: -89.65}

func newTestService(t *testing.T, air AirQualitySource) (*Service, *mockCache, *mockGeocoder, *mockRanker) {
	cache, geo, ranker := new(mockCache), new(mockGeocoder), new(mockRanker)
	svc := NewService(cache, geo, ranker, air, createTestLogger(t))
	svc.now = func() time.Time { return fetchedAt }
	return svc, cache, geo, ranker
}

func TestService_CacheHitSkipsProviders(t *testing.T) {
	svc, cache, geo, ranker := newTestService(t, nil)
	cache.On("Get", mock.Anything, address).Return(sampleEntry(), true, nil)

	got, cached, err := svc.Lookup(context.Background(), address, false)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "Washington Park", got.Places["parks"][0].Name)
	geo.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	ranker.AssertNotCalled(t, "RankAll", mock.Anything, mock.Anything)
}

func TestService_MissAssemblesAndWritesThrough(t *testing.T) {
	air := new(mockAir)
	svc, cache, geo, ranker := newTestService(t, air)

	cache.On("Get", mock.Anything, address).Return(nil, false, nil)
	geo.On("Geocode", mock.Anything, address).Return([]models.Coordinate{springfield}, nil)
	ranker.On("RankAll", mock.Anything, springfield).Return(
		map[proximity.Category][]models.NearbyPlace{
			proximity.CategoryParks:   {{Name: "Washington Park"}},
			proximity.CategoryTransit: {},
		},
		[]proximity.Category{proximity.CategoryTransit},
	)
	air.On("Current", mock.Anything, springfield).Return(&models.AirQuality{AQI: 55, Category: "Moderate"}, nil)
	cache.On("Put", mock.Anything, address, mock.MatchedBy(func(e *Entry) bool {
		return e.FetchedAt.Equal(fetchedAt) && e.AirQuality != nil
	})).Return(nil)

	got, cached, err := svc.Lookup(context.Background(), address, false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, springfield, got.Location)
	assert.Equal(t, []string{"transit"}, got.FailedCategories)
	assert.Empty(t, got.Places["transit"])
	assert.Equal(t, 55, got.AirQuality.AQI)
	cache.AssertExpectations(t)
}

func TestService_RefreshBypassesCache(t *testing.T) {
	svc, cache, geo, ranker := newTestService(t, nil)
	geo.On("Geocode", mock.Anything, address).Return([]models.Coordinate{springfield}, nil)
	ranker.On("RankAll", mock.Anything, springfield).Return(map[proximity.Category][]models.NearbyPlace{}, nil)
	cache.On("Put", mock.Anything, address, mock.Anything).Return(nil)

	_, cached, err := svc.Lookup(context.Background(), address, true)
	require.NoError(t, err)
	assert.False(t, cached)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestService_GeocodeFailureIsFatal(t *testing.T) {
	svc, cache, geo, ranker := newTestService(t, nil)
	cache.On("Get", mock.Anything, address).Return(nil, false, nil)
	geo.On("Geocode", mock.Anything, address).Return(nil, errors.New("ZERO_RESULTS"))

	got, _, err := svc.Lookup(context.Background(), address, false)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, proximity.ErrGeocode))
	ranker.AssertNotCalled(t, "RankAll", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_DegradedCollaborators(t *testing.T) {
	air := new(mockAir)
	svc, cache, geo, ranker := newTestService(t, air)

	cache.On("Get", mock.Anything, address).Return(nil, false, ErrCache)
	geo.On("Geocode", mock.Anything, address).Return([]models.Coordinate{springfield}, nil)
	ranker.On("RankAll", mock.Anything, springfield).Return(map[proximity.Category][]models.NearbyPlace{}, nil)
	air.On("Current", mock.Anything, springfield).Return(nil, errors.New("quota"))
	cache.On("Put", mock.Anything, address, mock.Anything).Return(ErrCache)

	got, cached, err := svc.Lookup(context.Background(), address, false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Nil(t, got.AirQuality)
}

func TestService_EmptyAddress(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	_, _, err := svc.Lookup(context.Background(), "   ", false)
	assert.True(t, errors.Is(err, ErrEmptyAddress))
}
