package models

import (
	"time"
)

// ForecastPayload is the raw multi-day forecast as returned by the upstream API.
// Fields the shaper depends on are pointers so a missing value can be told apart from zero.
type ForecastPayload struct {
	Provider string           `json:"provider"`
	City     ForecastCity     `json:"city"`
	List     []ForecastSample `json:"list"`
}

// ForecastCity is the city block of a forecast payload
type ForecastCity struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Timezone int    `json:"timezone"`
}

// ForecastSample is one timestamped sample of the forecast list (3-hour steps)
type ForecastSample struct {
	Dt      int64             `json:"dt"`
	DtTxt   string            `json:"dt_txt"`
	Main    *SampleMain       `json:"main"`
	Weather []SampleCondition `json:"weather"`
	Wind    *SampleWind       `json:"wind,omitempty"`
	Clouds  *SampleClouds     `json:"clouds,omitempty"`
	Pop     float64           `json:"pop"`
}

// SampleMain holds the thermodynamic values of a sample
type SampleMain struct {
	Temp     *float64 `json:"temp"`
	TempMin  float64  `json:"temp_min"`
	TempMax  float64  `json:"temp_max"`
	Humidity float64  `json:"humidity"`
	Pressure float64  `json:"pressure"`
}

// SampleCondition is a weather condition of a sample
type SampleCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// SampleWind is the wind block of a sample
type SampleWind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

// SampleClouds is the cloudiness block of a sample
type SampleClouds struct {
	All int `json:"all"` // percentage
}

// ForecastEntry represents a single derived forecast point for display
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Date        string    `json:"date"` // 2006-01-02
	Time        string    `json:"time"` // 15:04
	Temperature float64   `json:"temperature"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`

	// Daily aggregates, only filled in on week entries. Zero is a real value
	// (clear sky, calm wind, 0 °C) so the keys are always present.
	MinTemp          float64 `json:"minTemp"`
	MaxTemp          float64 `json:"maxTemp"`
	Humidity         float64 `json:"humidity"`
	WindSpeed        float64 `json:"windSpeed"`
	Clouds           float64 `json:"clouds"`
	KnownDescription bool    `json:"knownDescription"`
}

// Float returns a pointer to f, used to build payloads by hand
func Float(f float64) *float64 {
	return &f
}
