package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"weather-dashboard/api"
	"weather-dashboard/cache"
	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/observability"
	"weather-dashboard/risk"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	// Parse command line arguments
	port := flag.Int("port", 8080, "Port to run the server on")
	configFile := flag.String("config", "config.json", "Path to configuration file")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable API rate limiting")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()})))

	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		fatal("failed to load configuration", err)
	}
	if !*enableRateLimiting {
		config.OpenWeatherMap.RateLimit.Enabled = false
		config.WeatherAPI.RateLimit.Enabled = false
	}

	risks := risk.Default()
	if config.RiskTable != "" {
		if risks, err = risk.Load(config.RiskTable); err != nil {
			fatal("failed to load risk table", err)
		}
	}
	slog.Info("risk table loaded", "cities", risks.Len())

	provider, err := datasource.NewProvider(config)
	if err != nil {
		fatal("failed to create weather provider", err)
	}
	geocoder, err := datasource.NewGeocoder(config)
	if err != nil {
		fatal("failed to create location search", err)
	}
	locations := cache.NewCachedGeocoder(geocoder, config.LocationCacheTTL)
	slog.Info("weather provider ready", "provider", provider.Name(), "location_cache_ttl", config.LocationCacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.SetupTracing(ctx, "weather-dashboard")

	controller := dashboard.NewController(datasource.NewClient(provider), risks)

	var refresher *dashboard.Refresher
	if config.RefreshSchedule != "" {
		refresher, err = dashboard.NewRefresher(controller, config.RefreshSchedule)
		if err != nil {
			fatal("failed to schedule refresh", err)
		}
		refresher.Start()
		slog.Info("auto refresh enabled", "schedule", config.RefreshSchedule)
	}

	go purgeLocations(ctx, locations, config.LocationCacheTTL)

	server := api.NewServer(controller, locations, risks, *port)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if refresher != nil {
		<-refresher.Stop().Done()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}
	slog.Info("shutdown complete")
}

// purgeLocations drops expired location search results until ctx is done
func purgeLocations(ctx context.Context, locations *cache.CachedGeocoder, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := locations.Purge(); n > 0 {
				hits, misses := locations.CacheStats()
				slog.Debug("purged location cache", "removed", n, "hits", hits, "misses", misses)
			}
		case <-ctx.Done():
			return
		}
	}
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
