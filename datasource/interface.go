package datasource

import (
	"context"

	"weather-dashboard/models"
)

// Provider is a weather service that can report current conditions and a multi-day forecast
// for a coordinate pair
type Provider interface {
	// CurrentWeather fetches current conditions
	CurrentWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, error)

	// Forecast fetches the raw multi-day forecast
	Forecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error)

	// Name returns the provider's name
	Name() string
}

// Geocoder resolves free-text city queries to selectable locations
type Geocoder interface {
	SearchLocations(ctx context.Context, query string, limit int) ([]models.Location, error)
}
