package datasource

import (
	"context"
	"fmt"

	"weather-dashboard/models"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with one limiter per endpoint
type RateLimitedProvider struct {
	provider        Provider
	weatherLimiter  *rate.Limiter
	forecastLimiter *rate.Limiter
	name            string
}

// NewRateLimitedProvider creates a provider that throttles calls to the wrapped one.
// weatherRPS and forecastRPS are the maximum requests per second for the current weather and
// forecast endpoints (can be fractional for less than 1 request per second); burst is the maximum burst size.
func NewRateLimitedProvider(provider Provider, weatherRPS, forecastRPS float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider:        provider,
		weatherLimiter:  rate.NewLimiter(rate.Limit(weatherRPS), burst),
		forecastLimiter: rate.NewLimiter(rate.Limit(forecastRPS), burst),
		name:            fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

// CurrentWeather waits for the weather limiter, then forwards to the underlying provider
func (r *RateLimitedProvider) CurrentWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, error) {
	if err := r.weatherLimiter.Wait(ctx); err != nil {
		return models.CurrentWeather{}, fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return r.provider.CurrentWeather(ctx, lat, lon)
}

// Forecast waits for the forecast limiter, then forwards to the underlying provider
func (r *RateLimitedProvider) Forecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error) {
	if err := r.forecastLimiter.Wait(ctx); err != nil {
		return models.ForecastPayload{}, fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return r.provider.Forecast(ctx, lat, lon)
}

// Name returns the provider name
func (r *RateLimitedProvider) Name() string {
	return r.name
}

// Verify that our rate limited type implements the required interface
var _ Provider = (*RateLimitedProvider)(nil)
