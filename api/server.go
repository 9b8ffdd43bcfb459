// Package api exposes the dashboard over HTTP and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/models"
	"weather-dashboard/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 10

	// a search body is a single {label, value} pair
	maxSearchBodyBytes = 16 * 1024
)

// Dashboard is the controller the API drives
type Dashboard interface {
	Search(ctx context.Context, loc models.Location) (dashboard.State, error)
	View() dashboard.State
	Subscribe() (<-chan dashboard.State, func())
}

// RiskTable answers risk queries
type RiskTable interface {
	Lookup(city string) models.Risk
	Records() []models.RiskRecord
}

// Server represents the API server
type Server struct {
	dashboard Dashboard
	geocoder  datasource.Geocoder
	risks     RiskTable
	server    *http.Server
}

// NewServer creates a new API server listening on port
func NewServer(d Dashboard, geocoder datasource.Geocoder, risks RiskTable, port int) *Server {
	s := &Server{
		dashboard: d,
		geocoder:  geocoder,
		risks:     risks,
	}
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     s.Routes(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(observability.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealthCheck)
		r.Get("/locations", s.handleSearchLocations)
		r.Post("/search", s.handleSearch)
		r.Get("/view", s.handleView)
		r.Get("/risk", s.handleRisk)
		r.Get("/risks", s.handleRisks)
		r.Get("/ws", s.handleViewWS)
	})
	return r
}

// Start begins the API server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	slog.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleSearchLocations resolves free text to selectable locations
func (s *Server) handleSearchLocations(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	locations, err := s.geocoder.SearchLocations(r.Context(), query, limit)
	if err != nil {
		slog.Error("location search failed", "query", query, "error", err)
		writeError(w, http.StatusBadGateway, "location search failed")
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

// handleSearch runs a search for the selected location and answers with the resulting view.
// A failed search is still a 200: the view carries the error flag.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var loc models.Location
	r.Body = http.MaxBytesReader(w, r.Body, maxSearchBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(loc.Label) == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	// the search outlives a client that goes away; other viewers still get the result
	state, err := s.dashboard.Search(context.WithoutCancel(r.Context()), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.View())
}

// handleRisk looks up the hazard risk of a "City, CC" label. Unknown cities are Low/Low.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'city' is required")
		return
	}
	writeJSON(w, http.StatusOK, s.risks.Lookup(city))
}

func (s *Server) handleRisks(w http.ResponseWriter, r *http.Request) {
	records := s.risks.Records()
	writeJSON(w, http.StatusOK, map[string]any{
		"cities": records,
		"count":  len(records),
	})
}

