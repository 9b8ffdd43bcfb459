// Package observability holds the Prometheus collectors and the OpenTelemetry setup.
package observability

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "weather-dashboard"

var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_upstream_requests_total",
			Help: "Requests to weather providers by provider, endpoint and outcome.",
		},
		[]string{"provider", "endpoint", "outcome"},
	)
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_dashboard_upstream_request_seconds",
			Help:    "Latency of requests to weather providers.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "endpoint"},
	)
	Searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_searches_total",
			Help: "Dashboard searches by outcome (loaded, failed, stale).",
		},
		[]string{"outcome"},
	)
	LocationCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_location_cache_total",
			Help: "Location search cache lookups by result.",
		},
		[]string{"result"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequests, UpstreamLatency, Searches, LocationCache, httpRequests)
}

// Handler serves the Prometheus metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// Tracer returns the tracer used across the service
func Tracer() oteltrace.Tracer {
	return otel.Tracer(tracerName)
}

// SetupTracing installs the global tracer provider. Spans are exported over OTLP/HTTP
// when OTEL_EXPORTER_OTLP_ENDPOINT is set and dropped otherwise.
func SetupTracing(ctx context.Context, serviceName string) (shutdown func(context.Context) error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", serviceName)))
	if err != nil {
		slog.Error("failed to create otel resource", "error", err)
		res = resource.Default()
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		exp, err := otlptracehttp.New(ctx)
		if err != nil {
			slog.Error("failed to create otlp exporter", "error", err)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exp))
			slog.Info("exporting traces over otlp")
		}
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// Middleware counts requests per route and wraps each in a span
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := Tracer().Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int64("http.duration_ms", time.Since(start).Milliseconds()),
		)
	})
}
