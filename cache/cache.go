package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
	"weather-dashboard/observability"
)

// CachedGeocoder wraps a Geocoder and caches location search results.
// Weather and forecast answers are never cached; only the place name lookups are.
type CachedGeocoder struct {
	source         datasource.Geocoder
	cache          map[string]cacheEntry // key is query:limit
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	now            func() time.Time
}

// cacheEntry represents a cached search result with its timestamp
type cacheEntry struct {
	Locations []models.Location
	Timestamp time.Time
}

// NewCachedGeocoder creates a new cached wrapper around a geocoder
func NewCachedGeocoder(source datasource.Geocoder, cacheDuration time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		source:        source,
		cache:         make(map[string]cacheEntry),
		cacheDuration: cacheDuration,
		now:           time.Now,
	}
}

// SearchLocations returns matching places, using the cache when available
func (c *CachedGeocoder) SearchLocations(ctx context.Context, query string, limit int) ([]models.Location, error) {
	cacheKey := fmt.Sprintf("%s:%d", strings.ToLower(strings.TrimSpace(query)), limit)

	c.mutex.RLock()
	entry, found := c.cache[cacheKey]
	c.mutex.RUnlock()

	if found && c.now().Sub(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()
		observability.LocationCache.WithLabelValues("hit").Inc()

		slog.Debug("location cache hit", "query", query, "age", c.now().Sub(entry.Timestamp).Round(time.Second))
		return clone(entry.Locations), nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()
	observability.LocationCache.WithLabelValues("miss").Inc()

	slog.Debug("location cache miss", "query", query)

	locations, err := c.source.SearchLocations(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.cache[cacheKey] = cacheEntry{
		Locations: clone(locations),
		Timestamp: c.now(),
	}
	c.mutex.Unlock()

	return locations, nil
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedGeocoder) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Purge drops expired entries and returns how many were removed
func (c *CachedGeocoder) Purge() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key, entry := range c.cache {
		if c.now().Sub(entry.Timestamp) >= c.cacheDuration {
			delete(c.cache, key)
			removed++
		}
	}
	return removed
}

func clone(locations []models.Location) []models.Location {
	return append([]models.Location(nil), locations...)
}

// Ensure CachedGeocoder implements the Geocoder interface
var _ datasource.Geocoder = (*CachedGeocoder)(nil)
