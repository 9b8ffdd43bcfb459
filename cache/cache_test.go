package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"weather-dashboard/models"
)

type countingGeocoder struct {
	calls int
	err   error
}

func (g *countingGeocoder) SearchLocations(ctx context.Context, query string, limit int) ([]models.Location, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return []models.Location{models.NewLocation(query+", IN", 13.0827, 80.2707)}, nil
}

func newTestCache(source *countingGeocoder, ttl time.Duration) (*CachedGeocoder, *time.Time) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	c := NewCachedGeocoder(source, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCachedGeocoderHitAndMiss(t *testing.T) {
	source := &countingGeocoder{}
	c, _ := newTestCache(source, time.Hour)
	ctx := context.Background()

	first, err := c.SearchLocations(ctx, "Chennai", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.SearchLocations(ctx, "  chennai ", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if source.calls != 1 {
		t.Errorf("expected one upstream call, got %d", source.calls)
	}
	if second[0] != first[0] {
		t.Errorf("expected cached result %+v, got %+v", first[0], second[0])
	}
	if hits, misses := c.CacheStats(); hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}

	// a different limit is a different key
	if _, err := c.SearchLocations(ctx, "Chennai", 1); err != nil {
		t.Fatal(err)
	}
	if source.calls != 2 {
		t.Errorf("expected a second upstream call, got %d", source.calls)
	}
}

func TestCachedGeocoderExpiry(t *testing.T) {
	source := &countingGeocoder{}
	c, now := newTestCache(source, time.Minute)
	ctx := context.Background()

	c.SearchLocations(ctx, "Ooty", 5)
	*now = now.Add(2 * time.Minute)

	if removed := c.Purge(); removed != 1 {
		t.Errorf("expected 1 expired entry, got %d", removed)
	}
	c.SearchLocations(ctx, "Ooty", 5)
	if source.calls != 2 {
		t.Errorf("expected refetch after expiry, got %d calls", source.calls)
	}
}

func TestCachedGeocoderDoesNotCacheErrors(t *testing.T) {
	source := &countingGeocoder{err: errors.New("boom")}
	c, _ := newTestCache(source, time.Hour)

	for range 2 {
		if _, err := c.SearchLocations(context.Background(), "Delhi", 5); err == nil {
			t.Fatal("expected error")
		}
	}
	if source.calls != 2 {
		t.Errorf("expected errors not to be cached, got %d calls", source.calls)
	}
}

func TestCachedGeocoderReturnsCopies(t *testing.T) {
	c, _ := newTestCache(&countingGeocoder{}, time.Hour)
	got, _ := c.SearchLocations(context.Background(), "Jaipur", 5)
	got[0].Label = "changed"

	again, _ := c.SearchLocations(context.Background(), "Jaipur", 5)
	if again[0].Label != "Jaipur, IN" {
		t.Errorf("cache entry was mutated: %+v", again[0])
	}
}
