package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/agri-advisor/internal/weather"
)

func TestLocateMemoisesLookups(t *testing.T) {
	var calls int
	var gotAddr geocoder.Address
	g := newGoogle(func(a geocoder.Address) (geocoder.Location, error) {
		calls++
		gotAddr = a
		return geocoder.Location{Latitude: 18.52, Longitude: 73.85}, nil
	})

	loc, err := g.Locate(context.Background(), weather.Location{City: "Pune", Country: "India"})
	require.NoError(t, err)
	require.NotNil(t, loc.Lat)
	require.NotNil(t, loc.Lon)
	assert.Equal(t, 18.52, *loc.Lat)
	assert.Equal(t, 73.85, *loc.Lon)
	assert.Equal(t, geocoder.Address{City: "Pune", Country: "India"}, gotAddr)

	_, err = g.Locate(context.Background(), weather.Location{City: "pune", Country: "india"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLocateEvictsOldestWhenFull(t *testing.T) {
	calls := map[string]int{}
	g := newGoogle(func(a geocoder.Address) (geocoder.Location, error) {
		calls[a.City]++
		return geocoder.Location{Latitude: 1, Longitude: 2}, nil
	})
	g.limit = 2

	for _, city := range []string{"Pune", "Nashik", "Nagpur"} {
		_, err := g.Locate(context.Background(), weather.Location{City: city})
		require.NoError(t, err)
	}
	assert.Len(t, g.known, 2)
	assert.Len(t, g.order, 2)

	// Nagpur is still memoised, Pune was evicted.
	_, err := g.Locate(context.Background(), weather.Location{City: "Nagpur"})
	require.NoError(t, err)
	_, err = g.Locate(context.Background(), weather.Location{City: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls["Nagpur"])
	assert.Equal(t, 2, calls["Pune"])
	assert.Len(t, g.known, 2)
}

func TestLocateKeepsExistingCoordinates(t *testing.T) {
	g := newGoogle(func(geocoder.Address) (geocoder.Location, error) {
		t.Fatal("lookup should not be called")
		return geocoder.Location{}, nil
	})

	lat, lon := 1.0, 2.0
	loc, err := g.Locate(context.Background(), weather.Location{City: "x", Lat: &lat, Lon: &lon})
	require.NoError(t, err)
	assert.Equal(t, 1.0, *loc.Lat)
}

func TestLocateLookupError(t *testing.T) {
	g := newGoogle(func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("ZERO_RESULTS")
	})

	_, err := g.Locate(context.Background(), weather.Location{City: "Atlantis"})
	assert.EqualError(t, err, "ZERO_RESULTS")
}

func TestNewGoogleRequiresKey(t *testing.T) {
	_, err := NewGoogle("")
	assert.ErrorIs(t, err, errMissingKey)
}
