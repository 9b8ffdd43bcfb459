package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"weather-dashboard/models"
)

// stubProvider returns canned answers and counts calls
type stubProvider struct {
	current     models.CurrentWeather
	forecast    models.ForecastPayload
	currentErr  error
	forecastErr error
	delay       time.Duration
	calls       atomic.Int32
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) CurrentWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return models.CurrentWeather{}, ctx.Err()
		}
	}
	return s.current, s.currentErr
}

func (s *stubProvider) Forecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error) {
	s.calls.Add(1)
	return s.forecast, s.forecastErr
}

func TestFetchWeatherReturnsBoth(t *testing.T) {
	p := &stubProvider{
		current:  models.CurrentWeather{City: "Mumbai, IN", Temperature: 30},
		forecast: models.ForecastPayload{City: models.ForecastCity{Name: "Mumbai"}},
	}

	current, forecast, err := NewClient(p).FetchWeather(context.Background(), 19.07, 72.87)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Temperature != 30 || forecast.City.Name != "Mumbai" {
		t.Errorf("unexpected results %+v %+v", current, forecast)
	}
	if p.calls.Load() != 2 {
		t.Errorf("expected 2 provider calls, got %d", p.calls.Load())
	}
}

func TestFetchWeatherFailsTogether(t *testing.T) {
	tests := []struct {
		name string
		p    *stubProvider
	}{
		{"current fails", &stubProvider{currentErr: errors.New("connection refused")}},
		{"forecast fails", &stubProvider{forecastErr: &StatusError{StatusCode: 502}}},
		{"forecast fails while current is slow", &stubProvider{forecastErr: errors.New("reset"), delay: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, forecast, err := NewClient(tt.p).FetchWeather(context.Background(), 1, 2)
			if !errors.Is(err, ErrNetworkFailure) {
				t.Fatalf("expected ErrNetworkFailure, got %v", err)
			}
			if current != (models.CurrentWeather{}) || forecast.List != nil || forecast.City.Name != "" {
				t.Errorf("expected no partial result, got %+v %+v", current, forecast)
			}
		})
	}
}

func TestFetchWeatherMalformedIsAlsoNetworkFailure(t *testing.T) {
	p := &stubProvider{forecastErr: malformed(errors.New("missing list"))}

	_, _, err := NewClient(p).FetchWeather(context.Background(), 1, 2)
	if !errors.Is(err, ErrNetworkFailure) || !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected both sentinels, got %v", err)
	}
}

func TestFetchWeatherRunsRequestsConcurrently(t *testing.T) {
	var inflight, peak atomic.Int32
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		if n == 2 {
			close(release)
		}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		inflight.Add(-1)

		if r.URL.Path == "/weather" {
			w.Write([]byte(currentBody))
			return
		}
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	p := NewOpenWeatherMapProvider("k").WithBaseURL(srv.URL, "")
	if _, _, err := NewClient(p).FetchWeather(context.Background(), 19.07, 72.87); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak.Load() != 2 {
		t.Fatalf("expected both requests in flight together, peak was %d", peak.Load())
	}
}
