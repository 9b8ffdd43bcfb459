package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/models"
	"weather-dashboard/risk"

	"github.com/gorilla/websocket"
)

type fetchFunc func(ctx context.Context, lat, lon float64) (models.CurrentWeather, models.ForecastPayload, error)

func (f fetchFunc) FetchWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, models.ForecastPayload, error) {
	return f(ctx, lat, lon)
}

type stubGeocoder struct {
	err       error
	lastLimit int
}

func (g *stubGeocoder) SearchLocations(ctx context.Context, query string, limit int) ([]models.Location, error) {
	g.lastLimit = limit
	if g.err != nil {
		return nil, g.err
	}
	return []models.Location{models.NewLocation("Chennai, IN", 13.0827, 80.2707)}, nil
}

func forecastPayload() models.ForecastPayload {
	start := time.Now().UTC().Truncate(3 * time.Hour).Add(3 * time.Hour)
	p := models.ForecastPayload{}
	for i := range 16 {
		ts := start.Add(time.Duration(3*i) * time.Hour)
		p.List = append(p.List, models.ForecastSample{
			Dt:      ts.Unix(),
			DtTxt:   ts.Format("2006-01-02 15:04:05"),
			Main:    &models.SampleMain{Temp: models.Float(25)},
			Weather: []models.SampleCondition{{Description: "clear sky", Icon: "01d"}},
		})
	}
	return p
}

func newTestServer(t *testing.T, fetch fetchFunc, geocoder *stubGeocoder) http.Handler {
	t.Helper()
	controller := dashboard.NewController(fetch, risk.Default())
	return NewServer(controller, geocoder, risk.Default(), 0).Routes()
}

func healthyFetch(ctx context.Context, lat, lon float64) (models.CurrentWeather, models.ForecastPayload, error) {
	return models.CurrentWeather{Temperature: 31, Description: "clear sky"}, forecastPayload(), nil
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, healthyFetch, &stubGeocoder{})
	rec := do(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec); got["status"] != "ok" {
		t.Errorf("unexpected body %v", got)
	}
}

func TestSearchLoadsView(t *testing.T) {
	h := newTestServer(t, healthyFetch, &stubGeocoder{})

	rec := do(t, h, http.MethodPost, "/api/search", `{"label":"Mumbai, IN","value":"19.0760 72.8777"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	state := decode[map[string]any](t, rec)
	if state["state"] != "loaded" || state["error"] != false {
		t.Fatalf("unexpected state %v", state)
	}
	riskBlock := state["risk"].(map[string]any)
	if riskBlock["floodRisk"] != "High" || riskBlock["landslideRisk"] != "Low" || riskBlock["floodColor"] != "#ff4444" {
		t.Errorf("unexpected risk block %v", riskBlock)
	}
	if today := state["today"].(map[string]any); today["city"] != "Mumbai, IN" {
		t.Errorf("unexpected today block %v", today)
	}
	if week := state["week"].(map[string]any); week["city"] != "Mumbai, IN" || len(week["list"].([]any)) == 0 {
		t.Errorf("unexpected week block %v", week)
	}

	view := decode[map[string]any](t, do(t, h, http.MethodGet, "/api/view", ""))
	if view["searchId"] != state["searchId"] {
		t.Errorf("view does not reflect the search: %v", view)
	}
}

func TestSearchFailureIsStillOK(t *testing.T) {
	h := newTestServer(t, func(ctx context.Context, lat, lon float64) (models.CurrentWeather, models.ForecastPayload, error) {
		return models.CurrentWeather{}, models.ForecastPayload{}, datasource.ErrNetworkFailure
	}, &stubGeocoder{})

	rec := do(t, h, http.MethodPost, "/api/search", `{"label":"Delhi, IN","value":"28.6139 77.2090"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	state := decode[map[string]any](t, rec)
	if state["state"] != "failed" || state["error"] != true || state["errorMessage"] != "Something went wrong" {
		t.Errorf("unexpected state %v", state)
	}
	if _, ok := state["today"]; ok {
		t.Errorf("failed view must not carry data: %v", state)
	}
	if strings.Contains(rec.Body.String(), "network failure") {
		t.Errorf("error detail leaked to the client: %s", rec.Body.String())
	}
}

func TestSearchBadRequests(t *testing.T) {
	h := newTestServer(t, healthyFetch, &stubGeocoder{})
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"label":`},
		{"missing label", `{"value":"1 2"}`},
		{"bad coordinates", `{"label":"X","value":"north south"}`},
		{"out of range", `{"label":"X","value":"95 10"}`},
		{"oversized body", `{"label":"` + strings.Repeat("a", maxSearchBodyBytes) + `","value":"1 2"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/api/search", tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestLocations(t *testing.T) {
	geocoder := &stubGeocoder{}
	h := newTestServer(t, healthyFetch, geocoder)

	rec := do(t, h, http.MethodGet, "/api/locations?q=chen&limit=50", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decode[[]models.Location](t, rec)
	if len(got) != 1 || got[0].Label != "Chennai, IN" {
		t.Errorf("unexpected locations %v", got)
	}
	if geocoder.lastLimit != maxSearchLimit {
		t.Errorf("expected limit capped at %d, got %d", maxSearchLimit, geocoder.lastLimit)
	}

	if rec := do(t, h, http.MethodGet, "/api/locations", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/locations?q=x&limit=zero", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rec.Code)
	}

	geocoder.err = errors.New("upstream down")
	if rec := do(t, h, http.MethodGet, "/api/locations?q=x", ""); rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestRiskEndpoints(t *testing.T) {
	h := newTestServer(t, healthyFetch, &stubGeocoder{})

	got := decode[models.Risk](t, do(t, h, http.MethodGet, "/api/risk?city=chennai,%20in", ""))
	if got.FloodRisk != models.RiskHigh || got.LandslideRisk != models.RiskLow {
		t.Errorf("unexpected risk %+v", got)
	}
	got = decode[models.Risk](t, do(t, h, http.MethodGet, "/api/risk?city=Paris,%20FR", ""))
	if got.FloodRisk != models.RiskLow || got.LandslideRisk != models.RiskLow {
		t.Errorf("expected Low/Low for unknown city, got %+v", got)
	}
	if rec := do(t, h, http.MethodGet, "/api/risk", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	all := decode[struct {
		Cities []models.RiskRecord `json:"cities"`
		Count  int                 `json:"count"`
	}](t, do(t, h, http.MethodGet, "/api/risks", ""))
	if all.Count != 10 || len(all.Cities) != 10 {
		t.Errorf("expected 10 cities, got %d", all.Count)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, healthyFetch, &stubGeocoder{})
	do(t, h, http.MethodGet, "/api/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "weather_dashboard_http_requests_total") {
		t.Errorf("expected request metrics, got %d", rec.Code)
	}
}

func TestViewWebSocket(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, healthyFetch, &stubGeocoder{}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first dashboard.State
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if first.Status != dashboard.StatusIdle {
		t.Fatalf("expected idle first, got %s", first.Status)
	}

	resp, err := http.Post(srv.URL+"/api/search", "application/json", strings.NewReader(`{"label":"Ooty, IN","value":"11.4102 76.6950"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	for {
		var s dashboard.State
		if err := conn.ReadJSON(&s); err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if s.Status == dashboard.StatusLoaded {
			if s.Risk.LandslideRisk != models.RiskHigh {
				t.Errorf("unexpected risk %+v", s.Risk)
			}
			return
		}
	}
}
