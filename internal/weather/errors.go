package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when aggregation or summarising is given no data.
	ErrEmptyInput = errors.New("no weather observations to aggregate")
	// ErrInvalidDays is returned when the requested forecast length is not positive.
	ErrInvalidDays = errors.New("days must be greater than zero")
	// ErrNoProviders is returned when the service has nothing to fetch from.
	ErrNoProviders = errors.New("no weather providers configured")
)

// FetchError wraps an upstream weather provider failure for a location.
type FetchError struct {
	Location Location
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch weather for %q: %v", e.Location.Query(), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
