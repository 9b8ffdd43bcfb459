package datasource

import (
	"context"
	"errors"
	"time"

	"weather-dashboard/models"
	"weather-dashboard/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// InstrumentedProvider records a span and request metrics around every provider call
type InstrumentedProvider struct {
	provider Provider
}

// NewInstrumentedProvider wraps provider with tracing and metrics
func NewInstrumentedProvider(provider Provider) *InstrumentedProvider {
	return &InstrumentedProvider{provider: provider}
}

// Name returns the wrapped provider's name
func (p *InstrumentedProvider) Name() string {
	return p.provider.Name()
}

// CurrentWeather forwards to the wrapped provider
func (p *InstrumentedProvider) CurrentWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, error) {
	var out models.CurrentWeather
	err := p.observe(ctx, "current", lat, lon, func(ctx context.Context) error {
		var err error
		out, err = p.provider.CurrentWeather(ctx, lat, lon)
		return err
	})
	return out, err
}

// Forecast forwards to the wrapped provider
func (p *InstrumentedProvider) Forecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error) {
	var out models.ForecastPayload
	err := p.observe(ctx, "forecast", lat, lon, func(ctx context.Context) error {
		var err error
		out, err = p.provider.Forecast(ctx, lat, lon)
		return err
	})
	return out, err
}

func (p *InstrumentedProvider) observe(ctx context.Context, endpoint string, lat, lon float64, call func(context.Context) error) error {
	ctx, span := observability.Tracer().Start(ctx, "weather."+endpoint)
	defer span.End()
	span.SetAttributes(
		attribute.String("weather.provider", p.provider.Name()),
		attribute.Float64("geo.lat", lat),
		attribute.Float64("geo.lon", lon),
	)

	start := time.Now()
	err := call(ctx)
	observability.UpstreamLatency.WithLabelValues(p.provider.Name(), endpoint).Observe(time.Since(start).Seconds())
	observability.UpstreamRequests.WithLabelValues(p.provider.Name(), endpoint, outcome(err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "network"
	}
}

var _ Provider = (*InstrumentedProvider)(nil)
