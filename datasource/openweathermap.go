package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weather-dashboard/models"
)

// OpenWeatherMapProvider implements both Provider and Geocoder
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	geoURL     string
	httpClient *http.Client
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string) *OpenWeatherMapProvider {
	return &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		geoURL:  "https://api.openweathermap.org/geo/1.0",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithBaseURL overrides the data and geocoding endpoints
func (p *OpenWeatherMapProvider) WithBaseURL(baseURL, geoURL string) *OpenWeatherMapProvider {
	if baseURL != "" {
		p.baseURL = baseURL
	}
	if geoURL != "" {
		p.geoURL = geoURL
	}
	return p
}

// WithHTTPClient replaces the HTTP client
func (p *OpenWeatherMapProvider) WithHTTPClient(c *http.Client) *OpenWeatherMapProvider {
	p.httpClient = c
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// owmCurrentResponse is the body of /weather
type owmCurrentResponse struct {
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		TempMin   float64  `json:"temp_min"`
		TempMax   float64  `json:"temp_max"`
		Humidity  float64  `json:"humidity"`
		Pressure  float64  `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Weather []models.SampleCondition `json:"weather"`
	Name    string                   `json:"name"`
	Dt      int64                    `json:"dt"`
	Sys     struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

// CurrentWeather fetches current conditions for a coordinate pair
func (p *OpenWeatherMapProvider) CurrentWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, error) {
	var response owmCurrentResponse
	if err := p.get(ctx, p.baseURL+"/weather", p.coordParams(lat, lon), &response); err != nil {
		return models.CurrentWeather{}, err
	}

	if response.Main == nil || response.Main.Temp == nil {
		return models.CurrentWeather{}, malformed(fmt.Errorf("current weather: missing main.temp"))
	}
	if len(response.Weather) == 0 {
		return models.CurrentWeather{}, malformed(fmt.Errorf("current weather: missing weather"))
	}

	// Format location
	city := response.Name
	if response.Sys.Country != "" {
		city = fmt.Sprintf("%s, %s", response.Name, response.Sys.Country)
	}

	return models.CurrentWeather{
		Provider:    p.Name(),
		City:        city,
		Temperature: *response.Main.Temp,
		FeelsLike:   response.Main.FeelsLike,
		TempMin:     response.Main.TempMin,
		TempMax:     response.Main.TempMax,
		Humidity:    response.Main.Humidity,
		Pressure:    response.Main.Pressure,
		WindSpeed:   response.Wind.Speed,
		WindDeg:     response.Wind.Deg,
		Clouds:      response.Clouds.All,
		Description: response.Weather[0].Description,
		Icon:        response.Weather[0].Icon,
		Sunrise:     time.Unix(response.Sys.Sunrise, 0).UTC(),
		Sunset:      time.Unix(response.Sys.Sunset, 0).UTC(),
		Timezone:    response.Timezone,
		Timestamp:   time.Unix(response.Dt, 0).UTC(),
	}, nil
}

// Forecast fetches the 5 day / 3 hour forecast for a coordinate pair.
// The samples are validated by the forecast shaper, not here.
func (p *OpenWeatherMapProvider) Forecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error) {
	var payload models.ForecastPayload
	if err := p.get(ctx, p.baseURL+"/forecast", p.coordParams(lat, lon), &payload); err != nil {
		return models.ForecastPayload{}, err
	}
	if payload.List == nil {
		return models.ForecastPayload{}, malformed(fmt.Errorf("forecast: missing list"))
	}
	payload.Provider = p.Name()
	return payload, nil
}

// SearchLocations resolves a city query through the geocoding API
func (p *OpenWeatherMapProvider) SearchLocations(ctx context.Context, query string, limit int) ([]models.Location, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("limit", strconv.Itoa(limit))
	params.Add("appid", p.apiKey)

	var results []struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		State   string  `json:"state"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := p.get(ctx, p.geoURL+"/direct", params, &results); err != nil {
		return nil, err
	}

	locations := make([]models.Location, 0, len(results))
	for _, r := range results {
		label := r.Name
		if r.Country != "" {
			label = fmt.Sprintf("%s, %s", r.Name, r.Country)
		}
		locations = append(locations, models.NewLocation(label, r.Lat, r.Lon))
	}
	return locations, nil
}

func (p *OpenWeatherMapProvider) coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("appid", p.apiKey)
	params.Add("units", "metric") // Use metric units
	return params
}

// get performs a GET request and decodes the JSON body into out
func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return networkFailure(fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkFailure(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return networkFailure(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	if err := json.Unmarshal(body, out); err != nil {
		return malformed(fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}

var (
	_ Provider = (*OpenWeatherMapProvider)(nil)
	_ Geocoder = (*OpenWeatherMapProvider)(nil)
)
