package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when a provider answers successfully with an empty payload.
	ErrNoData = errors.New("no data")
	// ErrMissingKey is returned when a provider requires an API key that is not configured.
	ErrMissingKey = errors.New("missing API key")
)

// APIError represents a non 2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s (status: %d, endpoint: %s)", e.Provider, e.Message, e.StatusCode, e.Endpoint)
}

// MissingKey returns an error wrapping ErrMissingKey naming the configuration entry to set.
func MissingKey(provider, env string) error {
	return fmt.Errorf("%s: %w, set %s or the [keys] section of the config file", provider, ErrMissingKey, env)
}
