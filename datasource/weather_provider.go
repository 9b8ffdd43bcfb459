package datasource

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted in the configuration
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderWeatherAPI     = "weatherapi"
)

// RateLimitConfig configures request throttling towards a provider
type RateLimitConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	WeatherRPS  float64 `mapstructure:"weatherRps"`
	ForecastRPS float64 `mapstructure:"forecastRps"`
	Burst       int     `mapstructure:"burst"`
}

// ProviderConfig is the configuration of a single provider
type ProviderConfig struct {
	APIKey    string          `mapstructure:"apiKey"`
	BaseURL   string          `mapstructure:"baseUrl"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// Config represents the application configuration
type Config struct {
	// Provider selects the weather provider used for searches
	Provider string `mapstructure:"provider"`

	OpenWeatherMap ProviderConfig `mapstructure:"openWeatherMap"`
	WeatherAPI     ProviderConfig `mapstructure:"weatherAPI"`

	// GeoURL is the OpenWeatherMap geocoding endpoint used by the location search
	GeoURL           string        `mapstructure:"geoUrl"`
	LocationCacheTTL time.Duration `mapstructure:"locationCacheTtl"`

	// RiskTable optionally points at a YAML file replacing the built-in risk table
	RiskTable string `mapstructure:"riskTable"`

	// RefreshSchedule is a cron spec for re-running the current search; empty disables it
	RefreshSchedule string `mapstructure:"refreshSchedule"`
}

// LoadConfig loads configuration from a JSON file. A missing file is not an error:
// defaults and environment variables are used instead.
func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("provider", "WEATHER_PROVIDER")
	_ = v.BindEnv("openWeatherMap.apiKey", "OPENWEATHERMAP_API_KEY")
	_ = v.BindEnv("weatherAPI.apiKey", "WEATHERAPI_KEY")
	_ = v.BindEnv("riskTable", "RISK_TABLE")
	_ = v.BindEnv("refreshSchedule", "REFRESH_SCHEDULE")

	if filename != "" {
		v.SetConfigFile(filename)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Provider = strings.ToLower(config.Provider)

	switch config.Provider {
	case ProviderOpenWeatherMap, ProviderWeatherAPI:
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
	return &config, nil
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOpenWeatherMap)

	// OpenWeatherMap free tier allows 60 calls/minute
	v.SetDefault("openWeatherMap.baseUrl", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openWeatherMap.rateLimit.enabled", true)
	v.SetDefault("openWeatherMap.rateLimit.weatherRps", 1.0)
	v.SetDefault("openWeatherMap.rateLimit.forecastRps", 1.0)
	v.SetDefault("openWeatherMap.rateLimit.burst", 5)

	// WeatherAPI free tier allows ~23 calls/minute
	v.SetDefault("weatherAPI.baseUrl", "https://api.weatherapi.com/v1")
	v.SetDefault("weatherAPI.rateLimit.enabled", true)
	v.SetDefault("weatherAPI.rateLimit.weatherRps", 0.4)
	v.SetDefault("weatherAPI.rateLimit.forecastRps", 0.4)
	v.SetDefault("weatherAPI.rateLimit.burst", 3)

	v.SetDefault("geoUrl", "https://api.openweathermap.org/geo/1.0")
	v.SetDefault("locationCacheTtl", "1h")
}

// NewProvider builds the configured provider, wrapped with rate limiting (when enabled)
// and instrumentation
func NewProvider(config *Config) (Provider, error) {
	var (
		provider Provider
		pc       ProviderConfig
	)

	switch config.Provider {
	case ProviderOpenWeatherMap:
		pc = config.OpenWeatherMap
		if pc.APIKey == "" {
			return nil, errors.New("OpenWeatherMap is selected but no API key provided")
		}
		provider = NewOpenWeatherMapProvider(pc.APIKey).WithBaseURL(pc.BaseURL, config.GeoURL)
	case ProviderWeatherAPI:
		pc = config.WeatherAPI
		if pc.APIKey == "" {
			return nil, errors.New("WeatherAPI is selected but no API key provided")
		}
		provider = NewWeatherAPIProvider(pc.APIKey).WithBaseURL(pc.BaseURL)
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}

	if pc.RateLimit.Enabled {
		provider = NewRateLimitedProvider(provider, pc.RateLimit.WeatherRPS, pc.RateLimit.ForecastRPS, pc.RateLimit.Burst)
	}
	return NewInstrumentedProvider(provider), nil
}

// NewGeocoder builds the location search backend. Geocoding always goes through
// OpenWeatherMap, so it needs that provider's API key even when WeatherAPI serves the weather.
func NewGeocoder(config *Config) (Geocoder, error) {
	if config.OpenWeatherMap.APIKey == "" {
		return nil, errors.New("location search needs an OpenWeatherMap API key")
	}
	return NewOpenWeatherMapProvider(config.OpenWeatherMap.APIKey).WithBaseURL(config.OpenWeatherMap.BaseURL, config.GeoURL), nil
}
