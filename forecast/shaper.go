// Package forecast turns raw forecast payloads into the lists the dashboard displays.
// All functions are pure.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"weather-dashboard/models"
)

// ErrMalformedPayload is returned when a payload misses fields the shaper needs
var ErrMalformedPayload = errors.New("malformed payload")

const dateLayout = "2006-01-02"

// Representative hours of a day for the week list, inclusive, in UTC
const (
	middayFrom = 11
	middayTo   = 14
)

// CurrentDate formats t as a calendar date on the forecast clock (UTC)
func CurrentDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// BuildTodayForecast returns the samples dated currentDate whose timestamp is at or after now,
// in source order. The result is empty, never nil, when nothing qualifies.
func BuildTodayForecast(payload models.ForecastPayload, currentDate string, now int64) ([]models.ForecastEntry, error) {
	entries := []models.ForecastEntry{}
	for i, s := range payload.List {
		entry, err := toEntry(i, s)
		if err != nil {
			return nil, err
		}
		if entry.Date != currentDate || s.Dt < now {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type dayBucket struct {
	rep       int // index of the representative sample
	midday    bool
	count     int
	min, max  float64
	humidity  float64
	windSpeed float64
	clouds    float64
}

// BuildWeekForecast returns one entry per calendar date present in the payload, in date order.
//
// The representative sample of a date is the first one whose UTC hour falls in 11:00-14:00,
// or the first sample of the date when there is none. Temperature range, humidity, wind and
// clouds are aggregated over every sample of the date. Descriptions found in known are
// replaced by their canonical spelling; others are kept unmodified.
func BuildWeekForecast(payload models.ForecastPayload, known Descriptions) ([]models.ForecastEntry, error) {
	entries := make([]models.ForecastEntry, len(payload.List))
	for i, s := range payload.List {
		e, err := toEntry(i, s)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}

	var order []string
	buckets := make(map[string]*dayBucket)
	for i, s := range payload.List {
		e := entries[i]
		b, ok := buckets[e.Date]
		if !ok {
			b = &dayBucket{rep: i, min: e.Temperature, max: e.Temperature}
			buckets[e.Date] = b
			order = append(order, e.Date)
		}

		hour := e.Timestamp.Hour()
		if !b.midday && hour >= middayFrom && hour <= middayTo {
			b.rep = i
			b.midday = true
		}

		b.count++
		b.min = min(b.min, e.Temperature)
		b.max = max(b.max, e.Temperature)
		b.humidity += s.Main.Humidity
		if s.Wind != nil {
			b.windSpeed += s.Wind.Speed
		}
		if s.Clouds != nil {
			b.clouds += float64(s.Clouds.All)
		}
	}

	week := make([]models.ForecastEntry, 0, len(order))
	for _, date := range order {
		b := buckets[date]
		e := entries[b.rep]
		n := float64(b.count)
		e.MinTemp = b.min
		e.MaxTemp = b.max
		e.Humidity = b.humidity / n
		e.WindSpeed = b.windSpeed / n
		e.Clouds = b.clouds / n
		if c, ok := known.Canonical(e.Description); ok {
			e.Description = c
			e.KnownDescription = true
		}
		week = append(week, e)
	}
	return week, nil
}

func toEntry(i int, s models.ForecastSample) (models.ForecastEntry, error) {
	switch {
	case s.Dt == 0:
		return models.ForecastEntry{}, fmt.Errorf("%w: list[%d]: missing dt", ErrMalformedPayload, i)
	case s.Main == nil:
		return models.ForecastEntry{}, fmt.Errorf("%w: list[%d]: missing main", ErrMalformedPayload, i)
	case s.Main.Temp == nil:
		return models.ForecastEntry{}, fmt.Errorf("%w: list[%d]: missing main.temp", ErrMalformedPayload, i)
	case len(s.Weather) == 0:
		return models.ForecastEntry{}, fmt.Errorf("%w: list[%d]: missing weather", ErrMalformedPayload, i)
	}

	ts := time.Unix(s.Dt, 0).UTC()
	return models.ForecastEntry{
		Timestamp:   ts,
		Date:        ts.Format(dateLayout),
		Time:        ts.Format("15:04"),
		Temperature: *s.Main.Temp,
		Description: s.Weather[0].Description,
		Icon:        s.Weather[0].Icon,
	}, nil
}
