package dashboard

import (
	"context"
	"sync/atomic"
	"testing"

	"weather-dashboard/models"
)

func TestRefresherRepeatsLastSearch(t *testing.T) {
	var calls atomic.Int32
	c := newTestController(fetchFunc(func(ctx context.Context, lat, lon float64) (models.CurrentWeather, models.ForecastPayload, error) {
		calls.Add(1)
		return models.CurrentWeather{}, validPayload(), nil
	}))

	r, err := NewRefresher(c, "*/15 * * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Refresh()
	if calls.Load() != 0 {
		t.Fatalf("expected no refresh before the first search, got %d calls", calls.Load())
	}

	c.Search(context.Background(), mumbai)
	first := c.View().SearchID

	r.Refresh()
	if calls.Load() != 2 {
		t.Fatalf("expected the search to be repeated, got %d calls", calls.Load())
	}
	view := c.View()
	if view.Location.Label != "Mumbai, IN" || view.Status != StatusLoaded || view.SearchID == first {
		t.Errorf("unexpected state after refresh %+v", view)
	}
}

func TestRefresherRejectsBadSchedule(t *testing.T) {
	c := newTestController(succeed(models.CurrentWeather{}))
	if _, err := NewRefresher(c, "every tuesday"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}
