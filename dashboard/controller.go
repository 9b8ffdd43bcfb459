// Package dashboard holds the view state of the weather dashboard and drives searches through it.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"weather-dashboard/forecast"
	"weather-dashboard/models"
	"weather-dashboard/observability"

	"github.com/google/uuid"
)

// WeatherFetcher returns current conditions and the raw forecast for a coordinate pair
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, models.ForecastPayload, error)
}

// RiskLookup resolves a "City, CC" label to its hazard risk
type RiskLookup interface {
	Lookup(city string) models.Risk
}

// Controller owns the dashboard view state. Searches may run concurrently; only the
// most recently started one is allowed to change the state when it completes.
type Controller struct {
	client WeatherFetcher
	risks  RiskLookup
	known  forecast.Descriptions
	now    func() time.Time
	newID  func() string

	mu          sync.Mutex
	state       State
	generation  uint64
	last        *models.Location
	subscribers map[chan State]struct{}
}

// NewController creates an idle controller
func NewController(client WeatherFetcher, risks RiskLookup) *Controller {
	c := &Controller{
		client:      client,
		risks:       risks,
		known:       forecast.AllDescriptions,
		now:         time.Now,
		newID:       uuid.NewString,
		subscribers: make(map[chan State]struct{}),
	}
	c.state = State{Status: StatusIdle, UpdatedAt: c.now()}
	return c
}

// View returns a snapshot of the current state
func (c *Controller) View() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastLocation returns the location of the most recent search
func (c *Controller) LastLocation() (models.Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return models.Location{}, false
	}
	return *c.last, true
}

// Search runs a full search for loc and returns the state after it completes. An error is returned
// only for a location whose coordinates cannot be parsed; fetch and shaping failures end in the
// Failed state instead. If a newer search started meanwhile, the returned state is that search's.
func (c *Controller) Search(ctx context.Context, loc models.Location) (State, error) {
	lat, lon, err := loc.Coordinates()
	if err != nil {
		return State{}, fmt.Errorf("invalid location %q: %w", loc.Label, err)
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	searchID := c.newID()
	c.last = &loc
	c.setLocked(c.state.SearchStarted(loc, gen, searchID, c.now()))
	c.mu.Unlock()

	logger := slog.With("search_id", searchID, "city", loc.Label)
	logger.Info("search started", "lat", lat, "lon", lon)

	data, err := c.load(ctx, loc, lat, lon)
	if err != nil {
		logger.Error("search failed", "error", err)
		return c.complete(logger, gen, func(s State, at time.Time) (State, bool) {
			return s.WeatherFailed(gen, at)
		}), nil
	}

	return c.complete(logger, gen, func(s State, at time.Time) (State, bool) {
		return s.WeatherReceived(gen, data, at)
	}), nil
}

// load fetches, shapes and annotates the weather for one location. Nothing is partially kept on error.
func (c *Controller) load(ctx context.Context, loc models.Location, lat, lon float64) (Data, error) {
	current, payload, err := c.client.FetchWeather(ctx, lat, lon)
	if err != nil {
		return Data{}, err
	}

	// one clock reading, so the date and the cutoff agree around midnight
	now := c.now()
	today, err := forecast.BuildTodayForecast(payload, forecast.CurrentDate(now), now.Unix())
	if err != nil {
		return Data{}, fmt.Errorf("today forecast: %w", err)
	}
	week, err := forecast.BuildWeekForecast(payload, c.known)
	if err != nil {
		return Data{}, fmt.Errorf("week forecast: %w", err)
	}

	current.City = loc.Label
	return Data{
		Today:         current,
		TodayForecast: today,
		Week:          WeekView{City: loc.Label, List: week},
		Risk:          NewRiskView(c.risks.Lookup(loc.Label)),
	}, nil
}

func (c *Controller) complete(logger *slog.Logger, gen uint64, transition func(State, time.Time) (State, bool)) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, applied := transition(c.state, c.now())
	if !applied {
		logger.Warn("discarding stale search result", "generation", gen, "current_generation", c.generation)
		observability.Searches.WithLabelValues("stale").Inc()
		return c.state
	}

	c.setLocked(next)
	observability.Searches.WithLabelValues(string(next.Status)).Inc()
	logger.Info("search finished", "state", next.Status)
	return next
}

// setLocked stores s and notifies subscribers. c.mu must be held.
func (c *Controller) setLocked(s State) {
	c.state = s
	for ch := range c.subscribers {
		select {
		case ch <- s:
		default:
			// slow subscriber: replace the pending state with the newest one
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// Subscribe returns a channel receiving every state change, starting with the current state.
// Slow readers only see the newest state. The returned function unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	ch <- c.state
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, ch)
			close(ch)
			c.mu.Unlock()
		})
	}
}
