package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Location is a city selected by the location search
type Location struct {
	Label string `json:"label"` // "City, CC"
	Value string `json:"value"` // "lat lon"
}

// Coordinates parses the "lat lon" value of a location
func (l Location) Coordinates() (lat, lon float64, err error) {
	parts := strings.Fields(l.Value)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("location value %q is not \"lat lon\"", l.Value)
	}
	lat, err = strconv.ParseFloat(parts[0], 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lon, err = strconv.ParseFloat(parts[1], 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid longitude %q", parts[1])
	}
	return lat, lon, nil
}

// NewLocation builds a location from a label and coordinates
func NewLocation(label string, lat, lon float64) Location {
	return Location{
		Label: label,
		Value: fmt.Sprintf("%.4f %.4f", lat, lon),
	}
}

// CurrentWeather represents current conditions as reported by a provider
type CurrentWeather struct {
	Provider    string    `json:"provider"`
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"` // in Celsius
	FeelsLike   float64   `json:"feelsLike"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Humidity    float64   `json:"humidity"`  // percentage
	Pressure    float64   `json:"pressure"`  // in hPa
	WindSpeed   float64   `json:"windSpeed"` // in m/s
	WindDeg     int       `json:"windDeg"`
	Clouds      int       `json:"clouds"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Timezone    int       `json:"timezone"` // offset from UTC in seconds
	Timestamp   time.Time `json:"timestamp"`
}
