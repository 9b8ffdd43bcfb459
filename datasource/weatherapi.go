package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/models"
)

// forecastDays is the longest forecast the WeatherAPI free tier returns
const forecastDays = 3

// WeatherAPIProvider implements Provider on top of WeatherAPI.com.
// Its answers are mapped onto the OpenWeatherMap shaped models.
type WeatherAPIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewWeatherAPIProvider creates a new WeatherAPI provider
func NewWeatherAPIProvider(apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithBaseURL overrides the API endpoint
func (p *WeatherAPIProvider) WithBaseURL(baseURL string) *WeatherAPIProvider {
	if baseURL != "" {
		p.baseURL = baseURL
	}
	return p
}

// Name returns the provider name
func (p *WeatherAPIProvider) Name() string {
	return "WeatherAPI"
}

type wapiCondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type wapiLocation struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// CurrentWeather fetches current conditions for a coordinate pair
func (p *WeatherAPIProvider) CurrentWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, error) {
	var response struct {
		Location wapiLocation `json:"location"`
		Current  *struct {
			TempC            *float64      `json:"temp_c"`
			FeelsLikeC       float64       `json:"feelslike_c"`
			Humidity         float64       `json:"humidity"`
			WindKph          float64       `json:"wind_kph"`
			WindDegree       int           `json:"wind_degree"`
			PressureMb       float64       `json:"pressure_mb"`
			Cloud            int           `json:"cloud"`
			Condition        wapiCondition `json:"condition"`
			LastUpdatedEpoch int64         `json:"last_updated_epoch"`
		} `json:"current"`
	}
	if err := p.get(ctx, "/current.json", p.coordParams(lat, lon), &response); err != nil {
		return models.CurrentWeather{}, err
	}
	if response.Current == nil || response.Current.TempC == nil {
		return models.CurrentWeather{}, malformed(fmt.Errorf("current weather: missing current.temp_c"))
	}

	c := response.Current
	return models.CurrentWeather{
		Provider:    p.Name(),
		City:        fmt.Sprintf("%s, %s", response.Location.Name, response.Location.Country),
		Temperature: *c.TempC,
		FeelsLike:   c.FeelsLikeC,
		TempMin:     *c.TempC,
		TempMax:     *c.TempC,
		Humidity:    c.Humidity,
		Pressure:    c.PressureMb,
		WindSpeed:   c.WindKph / 3.6, // Convert to m/s
		WindDeg:     c.WindDegree,
		Clouds:      c.Cloud,
		Description: strings.ToLower(c.Condition.Text),
		Icon:        c.Condition.Icon,
		Timestamp:   time.Unix(c.LastUpdatedEpoch, 0).UTC(),
	}, nil
}

// Forecast fetches the hourly forecast and exposes it as forecast samples
func (p *WeatherAPIProvider) Forecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error) {
	params := p.coordParams(lat, lon)
	params.Add("days", strconv.Itoa(forecastDays))

	var response struct {
		Location wapiLocation `json:"location"`
		Forecast *struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch  int64         `json:"time_epoch"`
					Time       string        `json:"time"`
					TempC      *float64      `json:"temp_c"`
					Humidity   float64       `json:"humidity"`
					WindKph    float64       `json:"wind_kph"`
					WindDegree int           `json:"wind_degree"`
					PressureMb float64       `json:"pressure_mb"`
					Cloud      int           `json:"cloud"`
					Condition  wapiCondition `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := p.get(ctx, "/forecast.json", params, &response); err != nil {
		return models.ForecastPayload{}, err
	}
	if response.Forecast == nil {
		return models.ForecastPayload{}, malformed(fmt.Errorf("forecast: missing forecast"))
	}

	payload := models.ForecastPayload{
		Provider: p.Name(),
		City: models.ForecastCity{
			Name:    response.Location.Name,
			Country: response.Location.Country,
		},
		List: []models.ForecastSample{},
	}

	// Process hourly forecasts for each day
	for _, day := range response.Forecast.ForecastDay {
		for _, hour := range day.Hour {
			sample := models.ForecastSample{
				Dt:      hour.TimeEpoch,
				DtTxt:   time.Unix(hour.TimeEpoch, 0).UTC().Format("2006-01-02 15:04:05"),
				Weather: []models.SampleCondition{{Description: strings.ToLower(hour.Condition.Text), Icon: hour.Condition.Icon}},
				Wind:    &models.SampleWind{Speed: hour.WindKph / 3.6, Deg: hour.WindDegree},
				Clouds:  &models.SampleClouds{All: hour.Cloud},
			}
			if hour.TempC != nil {
				sample.Main = &models.SampleMain{
					Temp:     hour.TempC,
					TempMin:  *hour.TempC,
					TempMax:  *hour.TempC,
					Humidity: hour.Humidity,
					Pressure: hour.PressureMb,
				}
			}
			payload.List = append(payload.List, sample)
		}
	}

	return payload, nil
}

func (p *WeatherAPIProvider) coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Add("q", fmt.Sprintf("%s,%s", strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64)))
	params.Add("key", p.apiKey)
	return params
}

func (p *WeatherAPIProvider) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
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

var _ Provider = (*WeatherAPIProvider)(nil)
