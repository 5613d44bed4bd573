package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/agri-advisor/internal/common"
	"github.com/i474232898/agri-advisor/internal/weather"
)

const defaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// Geocoder resolves a location to coordinates.
type Geocoder interface {
	Locate(ctx context.Context, loc weather.Location) (weather.Location, error)
}

// OpenMeteoProvider reads hourly forecasts from Open-Meteo. Open-Meteo only
// accepts coordinates, so locations without them go through the geocoder.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	days     int
	geocoder Geocoder
	httpCfg  common.HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, geocoder Geocoder, baseURL string, days int) *OpenMeteoProvider {
	if days <= 0 {
		days = weather.DefaultForecastDays
	}
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  common.FirstNonEmpty(baseURL, defaultOpenMeteoBaseURL),
		days:     days,
		geocoder: geocoder,
		httpCfg: common.HTTPClientConfig{
			Client:  client,
			Backoff: common.DefaultBackoff,
		},
		circuit: common.NewCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchSamples(ctx context.Context, loc weather.Location) ([]weather.Observation, error) {
	if loc.Lat == nil || loc.Lon == nil {
		if p.geocoder == nil {
			return nil, fmt.Errorf("openmeteo requires latitude and longitude")
		}
		located, err := p.geocoder.Locate(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("geocode %q: %w", loc.Query(), err)
		}
		loc = located
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", *loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", *loc.Lon))
		values.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation,weather_code,wind_speed_10m")
		values.Set("wind_speed_unit", "ms")
		values.Set("forecast_days", strconv.Itoa(p.days))
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := common.DoWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time          []string  `json:"time"`
			Temperature   []float64 `json:"temperature_2m"`
			Humidity      []float64 `json:"relative_humidity_2m"`
			Precipitation []float64 `json:"precipitation"`
			WeatherCode   []int     `json:"weather_code"`
			WindSpeed     []float64 `json:"wind_speed_10m"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode openmeteo response: %w", err)
	}

	h := payload.Hourly
	samples := make([]weather.Observation, 0, len(h.Time))
	for i, raw := range h.Time {
		ts, err := time.Parse("2006-01-02T15:04", raw)
		if err != nil || i >= len(h.Temperature) {
			continue
		}
		obs := weather.Observation{
			Time:         ts.UTC(),
			TemperatureC: h.Temperature[i],
			Condition:    "unknown",
		}
		if i < len(h.WeatherCode) {
			obs.Condition = describeOpenMeteoCode(h.WeatherCode[i])
		}
		if i < len(h.Humidity) {
			obs.HumidityPct = h.Humidity[i]
		}
		if i < len(h.WindSpeed) {
			obs.WindSpeedMS = h.WindSpeed[i]
		}
		if i < len(h.Precipitation) {
			obs.RainMm = h.Precipitation[i]
			obs.Rainy = obs.RainMm > 0
		}
		samples = append(samples, obs)
	}
	return samples, nil
}

// describeOpenMeteoCode maps WMO weather codes to short labels in the style
// of OpenWeatherMap descriptions.
func describeOpenMeteoCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code == 1 || code == 2:
		return "partly cloudy"
	case code == 3:
		return "overcast clouds"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "snow"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
