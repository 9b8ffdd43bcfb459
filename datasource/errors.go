package datasource

import (
	"errors"
	"fmt"
	"net/http"

	"weather-dashboard/forecast"
)

var (
	// ErrNetworkFailure is returned when a request fails or the provider answers with a non-success status
	ErrNetworkFailure = errors.New("network failure")

	// ErrMalformedPayload is returned when a response body lacks the expected fields
	ErrMalformedPayload = forecast.ErrMalformedPayload

	// ErrRateLimited is returned when waiting for the rate limiter is cancelled
	ErrRateLimited = errors.New("rate limit wait canceled")
)

// StatusError describes a non-200 answer from a provider
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// IsAuthFailure reports whether err is a 401/403 answer, which usually means a bad API key
func IsAuthFailure(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// networkFailure makes err match ErrNetworkFailure while keeping its cause
func networkFailure(err error) error {
	if err == nil || errors.Is(err, ErrNetworkFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
}
