package weather

import (
	"context"
	"time"
)

// SampleFetcher abstracts a forecast source (OpenWeatherMap, WeatherAPI, Open-Meteo).
// Samples are returned in chronological order.
type SampleFetcher interface {
	Name() string
	FetchSamples(ctx context.Context, loc Location) ([]Observation, error)
}

// CurrentFetcher returns the latest observed conditions for a location.
type CurrentFetcher interface {
	FetchCurrent(ctx context.Context, loc Location) (Current, error)
}

// SampleCache is the contract the in-memory and Redis caches satisfy.
// A miss is reported with ok == false and a nil error.
type SampleCache interface {
	Get(ctx context.Context, loc Location) (samples []Observation, ok bool, err error)
	Set(ctx context.Context, loc Location, samples []Observation, ttl time.Duration) error
}
