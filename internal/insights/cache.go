// Package insights caches and assembles neighborhood insights for an address.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/metrics"
	"listing-search-workers/internal/models"
)

// MaxAge is how long an entry stays valid after FetchedAt.
const MaxAge = 30 * 24 * time.Hour

const DefaultKeyPrefix = "insights:"

var ErrCache = errors.New("CACHE_FAILED")

// Entry is everything known about the neighborhood of one address.
type Entry struct {
	Address          string                          `json:"address"`
	Location         models.Coordinate               `json:"location"`
	Places           map[string][]models.NearbyPlace `json:"places"`
	FailedCategories []string                        `json:"failedCategories,omitempty"`
	AirQuality       *models.AirQuality              `json:"airQuality,omitempty"`
	FetchedAt        time.Time                       `json:"fetchedAt"`
}

// Fresh reports whether e is still within MaxAge at now.
func (e *Entry) Fresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < MaxAge
}

type Cache interface {
	// Get returns the entry for address when present and fresh.
	Get(ctx context.Context, address string) (*Entry, bool, error)
	// Put stores e under address, replacing any previous entry.
	Put(ctx context.Context, address string, e *Entry) error
}

// NormalizeAddress is the cache identity of an address.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// RedisCache stores entries as JSON without a TTL; staleness is checked on read.
type RedisCache struct {
	client *redis.Client
	prefix string
	now    func() time.Time
	logger logger.Logger
}

type CacheOption func(*RedisCache)

func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *RedisCache) { c.now = now }
}

func NewRedisCache(client *redis.Client, prefix string, log logger.Logger, opts ...CacheOption) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	c := &RedisCache{
		client: client,
		prefix: prefix,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"cache": "insights"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Key(address string) string {
	return c.prefix + NormalizeAddress(address)
}

func (c *RedisCache) Get(ctx context.Context, address string) (*Entry, bool, error) {
	key := c.Key(address)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.InsightsCacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.InsightsCacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("%w: get %s: %v", ErrCache, key, err)
	}

	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		metrics.InsightsCacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("%w: decode %s: %v", ErrCache, key, err)
	}
	if !e.Fresh(c.now()) {
		metrics.InsightsCacheLookups.WithLabelValues("stale").Inc()
		c.logger.Debug("Insights entry is stale", map[string]interface{}{
			"key":       key,
			"fetchedAt": e.FetchedAt,
		})
		return nil, false, nil
	}

	metrics.InsightsCacheLookups.WithLabelValues("hit").Inc()
	return &e, true, nil
}

func (c *RedisCache) Put(ctx context.Context, address string, e *Entry) error {
	key := c.Key(address)
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrCache, key, err)
	}
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrCache, key, err)
	}
	return nil
}
