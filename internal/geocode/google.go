// Package geocode turns city names into coordinates for providers that only
// accept latitude/longitude.
package geocode

import (
	"context"
	"errors"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/agri-advisor/internal/weather"
)

var errMissingKey = errors.New("google geocoder api key is not configured")

// defaultMemoSize caps how many resolved locations are kept. Keys come from
// request input, so the memo must not grow with every distinct city string.
const defaultMemoSize = 1024

// lookupFunc matches geocoder.Geocoding and is swapped in tests.
type lookupFunc func(geocoder.Address) (geocoder.Location, error)

// Google resolves locations through the Google Geocoding API. Results are
// memoised since city coordinates don't move; once the memo is full the
// oldest entry is evicted.
type Google struct {
	lookup lookupFunc
	limit  int

	mu    sync.RWMutex
	known map[string]weather.Location
	order []string
}

// NewGoogle configures the package-level key used by kelvins/geocoder.
func NewGoogle(apiKey string) (*Google, error) {
	if apiKey == "" {
		return nil, errMissingKey
	}
	geocoder.ApiKey = apiKey
	return newGoogle(geocoder.Geocoding), nil
}

func newGoogle(lookup lookupFunc) *Google {
	return &Google{
		lookup: lookup,
		limit:  defaultMemoSize,
		known:  make(map[string]weather.Location),
	}
}

// Locate returns loc with Lat/Lon filled in.
func (g *Google) Locate(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if loc.Lat != nil && loc.Lon != nil {
		return loc, nil
	}
	if err := ctx.Err(); err != nil {
		return loc, err
	}

	key := loc.Key()
	g.mu.RLock()
	cached, ok := g.known[key]
	g.mu.RUnlock()
	if ok {
		return cached, nil
	}

	point, err := g.lookup(geocoder.Address{City: loc.City, Country: loc.Country})
	if err != nil {
		return loc, err
	}

	lat, lon := point.Latitude, point.Longitude
	loc.Lat, loc.Lon = &lat, &lon

	g.remember(key, loc)
	return loc, nil
}

func (g *Google) remember(key string, loc weather.Location) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.known[key]; ok {
		g.known[key] = loc
		return
	}
	for len(g.order) >= g.limit && len(g.order) > 0 {
		delete(g.known, g.order[0])
		g.order = g.order[1:]
	}
	g.known[key] = loc
	g.order = append(g.order, key)
}
