package datasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"weather-dashboard/models"
)

func TestRateLimitedProviderForwards(t *testing.T) {
	stub := &stubProvider{current: models.CurrentWeather{Temperature: 21}}
	p := NewRateLimitedProvider(stub, 10, 10, 2)

	got, err := p.CurrentWeather(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Temperature != 21 {
		t.Errorf("expected forwarded result, got %+v", got)
	}
	if p.Name() != "stub [Rate Limited]" {
		t.Errorf("unexpected name %q", p.Name())
	}
}

func TestRateLimitedProviderThrottles(t *testing.T) {
	stub := &stubProvider{}
	// one token, refilled every 200ms
	p := NewRateLimitedProvider(stub, 5, 5, 1)

	start := time.Now()
	for range 3 {
		if _, err := p.Forecast(context.Background(), 1, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Errorf("expected throttling, three calls took %v", elapsed)
	}
}

func TestRateLimitedProviderCanceledContext(t *testing.T) {
	stub := &stubProvider{}
	p := NewRateLimitedProvider(stub, 0.01, 0.01, 1)

	// use up the burst
	if _, err := p.CurrentWeather(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.CurrentWeather(ctx, 1, 2)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if stub.calls.Load() != 1 {
		t.Errorf("expected the throttled call not to reach the provider, calls=%d", stub.calls.Load())
	}
}
