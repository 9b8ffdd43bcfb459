package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"weather-dashboard/datasource"
	"weather-dashboard/models"
)

// mockProvider simulates upstream latency and counts calls per endpoint
type mockProvider struct {
	latency       time.Duration
	currentCalls  atomic.Int32
	forecastCalls atomic.Int32
}

func (m *mockProvider) Name() string { return "MockProvider" }

func (m *mockProvider) CurrentWeather(ctx context.Context, lat, lon float64) (models.CurrentWeather, error) {
	n := m.currentCalls.Add(1)
	fmt.Printf("%s - current weather #%d for %.2f,%.2f\n", time.Now().Format("15:04:05.000"), n, lat, lon)
	if err := m.wait(ctx); err != nil {
		return models.CurrentWeather{}, err
	}
	return models.CurrentWeather{Provider: m.Name(), Temperature: 22.5, Description: "clear sky", Timestamp: time.Now()}, nil
}

func (m *mockProvider) Forecast(ctx context.Context, lat, lon float64) (models.ForecastPayload, error) {
	n := m.forecastCalls.Add(1)
	fmt.Printf("%s - forecast #%d for %.2f,%.2f\n", time.Now().Format("15:04:05.000"), n, lat, lon)
	if err := m.wait(ctx); err != nil {
		return models.ForecastPayload{}, err
	}
	return models.ForecastPayload{Provider: m.Name(), List: []models.ForecastSample{}}, nil
}

func (m *mockProvider) wait(ctx context.Context) error {
	select {
	case <-time.After(m.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Exercises the rate limited provider through the same client the dashboard uses:
// every search costs one current weather and one forecast request.
func main() {
	requestsPerSecond := flag.Float64("rps", 1.0, "Rate limit in requests per second, per endpoint")
	burstSize := flag.Int("burst", 3, "Maximum burst size")
	totalSearches := flag.Int("searches", 10, "Total number of searches to run")
	concurrentSearches := flag.Int("concurrent", 5, "Number of concurrent searches")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall deadline")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	mock := &mockProvider{latency: 200 * time.Millisecond}
	client := datasource.NewClient(datasource.NewRateLimitedProvider(mock, *requestsPerSecond, *requestsPerSecond, *burstSize))

	fmt.Printf("Testing %s with:\n", client.Name())
	fmt.Printf("- Rate limit: %.2f requests/second per endpoint\n", *requestsPerSecond)
	fmt.Printf("- Burst size: %d\n", *burstSize)
	fmt.Printf("- Searches: %d (%d workers)\n", *totalSearches, *concurrentSearches)

	start := time.Now()
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	jobs := make(chan int)

	for w := 0; w < *concurrentSearches; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				before := time.Now()
				if _, _, err := client.FetchWeather(ctx, 19.07, 72.87); err != nil {
					failed.Add(1)
					slog.Warn("search failed", "worker", worker, "search", i, "error", err)
					continue
				}
				slog.Info("search completed", "worker", worker, "search", i, "elapsed", time.Since(before).Round(time.Millisecond))
			}
		}(w)
	}
	for i := 0; i < *totalSearches; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	total := time.Since(start)
	actualRPS := float64(mock.currentCalls.Load()) / total.Seconds()
	expectedMin := max(float64(*totalSearches-*burstSize) / *requestsPerSecond, 0)

	fmt.Println("\nTest completed!")
	fmt.Printf("Total time: %.2f seconds (theoretical minimum %.2f)\n", total.Seconds(), expectedMin)
	fmt.Printf("Current weather calls: %d, forecast calls: %d, failed searches: %d\n",
		mock.currentCalls.Load(), mock.forecastCalls.Load(), failed.Load())
	fmt.Printf("Actual requests per second per endpoint: %.2f\n", actualRPS)

	if actualRPS > *requestsPerSecond*1.5 && *totalSearches > *burstSize {
		fmt.Println("\nWARNING: actual rate significantly higher than the configured limit")
		os.Exit(1)
	}
	fmt.Println("\nRate limiting appears to be working correctly.")
}
