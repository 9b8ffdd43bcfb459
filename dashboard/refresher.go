package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Refresher periodically re-runs the most recent search so the dashboard stays current.
// Every run refetches from the provider.
type Refresher struct {
	cron       *cron.Cron
	controller *Controller
}

// NewRefresher schedules refreshes of controller with a standard five field cron spec
func NewRefresher(controller *Controller, spec string) (*Refresher, error) {
	r := &Refresher{
		cron:       cron.New(),
		controller: controller,
	}
	if _, err := r.cron.AddFunc(spec, r.Refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start runs the scheduler in the background
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the scheduler; the returned context is done once a running refresh has finished
func (r *Refresher) Stop() context.Context {
	return r.cron.Stop()
}

// Refresh repeats the last search. It does nothing before the first search
// or while a search is still loading.
func (r *Refresher) Refresh() {
	loc, ok := r.controller.LastLocation()
	if !ok {
		return
	}
	if r.controller.View().Status == StatusLoading {
		slog.Debug("skipping refresh, search in progress", "city", loc.Label)
		return
	}

	slog.Info("refreshing dashboard", "city", loc.Label)
	if _, err := r.controller.Search(context.Background(), loc); err != nil {
		slog.Error("scheduled refresh failed", "error", err)
	}
}
