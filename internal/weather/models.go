package weather

import (
	"strings"
	"time"
)

// Location represents a place for which we fetch weather.
// City must be provided; Lat/Lon are filled by geocoding when a provider needs them.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for indexing this location in caches.
func (l Location) Key() string {
	key := strings.ToLower(strings.TrimSpace(l.City))
	if l.Country != "" {
		key += ":" + strings.ToLower(strings.TrimSpace(l.Country))
	}
	return key
}

// Query returns the "city,country" form accepted by most providers.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

// Observation is one timestamped weather sample as returned by a provider.
// Only Time, TemperatureC and Condition take part in daily aggregation.
type Observation struct {
	Time         time.Time `json:"time"`
	TemperatureC float64   `json:"temperatureC"`
	Condition    string    `json:"condition"`

	HumidityPct float64 `json:"humidityPercent,omitempty"`
	WindSpeedMS float64 `json:"windSpeed,omitempty"`
	RainMm      float64 `json:"rainMm,omitempty"`
	Rainy       bool    `json:"rainy,omitempty"`
}

// Current is the provider's view of the weather right now.
type Current struct {
	City         string  `json:"city"`
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPercent"`
	WindSpeedMS  float64 `json:"windSpeed"`
	Condition    string  `json:"condition"`
}

// ForecastEntry is one aggregated day.
type ForecastEntry struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
}

// ForecastResult is either a forecast with its summary or an error, never both.
type ForecastResult struct {
	Forecast       []ForecastEntry `json:"forecast,omitempty"`
	WeatherSummary string          `json:"weather_summary,omitempty"`
	Error          string          `json:"error,omitempty"`

	err error
}

func failedResult(err error) ForecastResult {
	return ForecastResult{Error: err.Error(), err: err}
}

// Err returns the underlying error of a failed result.
func (r ForecastResult) Err() error {
	return r.err
}

// Failed reports whether the result carries an error instead of a forecast.
func (r ForecastResult) Failed() bool {
	return r.Error != ""
}
