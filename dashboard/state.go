package dashboard

import (
	"time"

	"weather-dashboard/models"
)

// Status is the phase of the dashboard
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// GenericErrorMessage is the only error text ever shown to users
const GenericErrorMessage = "Something went wrong"

// Colors used to render risk levels
const (
	colorHigh    = "#ff4444"
	colorMedium  = "#ffbb33"
	colorLow     = "#00C851"
	colorDefault = "#ffffff"
)

// RiskColor returns the display color for a risk level
func RiskColor(level models.RiskLevel) string {
	switch level {
	case models.RiskHigh:
		return colorHigh
	case models.RiskMedium:
		return colorMedium
	case models.RiskLow:
		return colorLow
	default:
		return colorDefault
	}
}

// WeekView is the week forecast block
type WeekView struct {
	City string                 `json:"city"`
	List []models.ForecastEntry `json:"list"`
}

// RiskView is the risk block with its display colors
type RiskView struct {
	FloodRisk      models.RiskLevel `json:"floodRisk"`
	LandslideRisk  models.RiskLevel `json:"landslideRisk"`
	FloodColor     string           `json:"floodColor"`
	LandslideColor string           `json:"landslideColor"`
}

// NewRiskView decorates a risk pair with colors
func NewRiskView(r models.Risk) RiskView {
	return RiskView{
		FloodRisk:      r.FloodRisk,
		LandslideRisk:  r.LandslideRisk,
		FloodColor:     RiskColor(r.FloodRisk),
		LandslideColor: RiskColor(r.LandslideRisk),
	}
}

// Data is everything a successful search produces
type Data struct {
	Today         models.CurrentWeather
	TodayForecast []models.ForecastEntry
	Week          WeekView
	Risk          RiskView
}

// State is the view state held by the controller. It is a value: transitions return a new State
// and never modify the receiver.
type State struct {
	Status        Status                 `json:"state"`
	SearchID      string                 `json:"searchId,omitempty"`
	Location      *models.Location       `json:"location,omitempty"`
	Today         *models.CurrentWeather `json:"today,omitempty"`
	TodayForecast []models.ForecastEntry `json:"todayForecast"`
	Week          *WeekView              `json:"week,omitempty"`
	Risk          *RiskView              `json:"risk,omitempty"`
	Error         bool                   `json:"error"`
	ErrorMessage  string                 `json:"errorMessage,omitempty"`
	UpdatedAt     time.Time              `json:"updatedAt"`

	generation uint64
}

// Generation returns the search generation this state belongs to
func (s State) Generation() uint64 {
	return s.generation
}

// SearchStarted enters Loading for a new search. Data and error from the previous search are dropped.
func (s State) SearchStarted(loc models.Location, generation uint64, searchID string, at time.Time) State {
	return State{
		Status:     StatusLoading,
		SearchID:   searchID,
		Location:   &loc,
		UpdatedAt:  at,
		generation: generation,
	}
}

// WeatherReceived enters Loaded with data. The second result is false, and the state unchanged,
// when the completion belongs to a search other than the one in progress.
func (s State) WeatherReceived(generation uint64, data Data, at time.Time) (State, bool) {
	if !s.accepts(generation) {
		return s, false
	}

	today := data.Today
	todayForecast := data.TodayForecast
	if todayForecast == nil {
		todayForecast = []models.ForecastEntry{}
	}
	week := data.Week
	risk := data.Risk
	return State{
		Status:        StatusLoaded,
		SearchID:      s.SearchID,
		Location:      s.Location,
		Today:         &today,
		TodayForecast: todayForecast,
		Week:          &week,
		Risk:          &risk,
		UpdatedAt:     at,
		generation:    generation,
	}, true
}

// WeatherFailed enters Failed with the generic message. Like WeatherReceived it ignores stale completions.
func (s State) WeatherFailed(generation uint64, at time.Time) (State, bool) {
	if !s.accepts(generation) {
		return s, false
	}
	return State{
		Status:       StatusFailed,
		SearchID:     s.SearchID,
		Location:     s.Location,
		Error:        true,
		ErrorMessage: GenericErrorMessage,
		UpdatedAt:    at,
		generation:   generation,
	}, true
}

func (s State) accepts(generation uint64) bool {
	return s.Status == StatusLoading && s.generation == generation
}
