package datasource

import (
	"context"
	"fmt"

	"weather-dashboard/models"

	"golang.org/x/sync/errgroup"
)

// Client fetches current conditions and the forecast for a location together
type Client struct {
	provider Provider
}

// NewClient creates a client on top of provider
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Name returns the provider name
func (c *Client) Name() string {
	return c.provider.Name()
}

// FetchWeather issues the current weather and forecast requests concurrently and waits for both.
// If either fails the whole call fails with an error matching ErrNetworkFailure (decode problems
// also match ErrMalformedPayload); no partial result is returned.
//
// There is no retry or backoff here; the only timeout is the provider's HTTP client timeout.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, models.ForecastPayload, error) {
	var (
		current  models.CurrentWeather
		forecast models.ForecastPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = c.provider.CurrentWeather(gctx, lat, lon)
		if err != nil {
			return fmt.Errorf("current weather: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		forecast, err = c.provider.Forecast(gctx, lat, lon)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.CurrentWeather{}, models.ForecastPayload{}, fmt.Errorf("%s: %w", c.provider.Name(), networkFailure(err))
	}
	return current, forecast, nil
}
