package strava

import (
	"errors"
	"fmt"
)

var (
	ErrNoCredentials = errors.New("strava credentials missing from token store")
	ErrNotConfigured = errors.New("strava client id and secret are not configured")
)

// AuthError means the access token could not be obtained or refreshed.
// It is fatal to the current sync run and leaves the stored state untouched.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("strava auth: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RateLimitError is returned once the retry budget for 429 responses is exhausted.
type RateLimitError struct {
	Attempts int
	Limits   RateLimits
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("strava rate limit exceeded after %d attempts (usage %s of %s)",
		e.Attempts, e.Limits.GlobalUsage, e.Limits.GlobalLimit)
}

// APIError carries any other non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava api: %d %s", e.StatusCode, e.Message)
}
