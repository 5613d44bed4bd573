package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/agri-advisor/internal/common"
	"github.com/i474232898/agri-advisor/internal/weather"
)

const defaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1"

// WeatherAPIProvider reads hourly forecasts from WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	days    int
	httpCfg common.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey, baseURL string, days int) *WeatherAPIProvider {
	if days <= 0 {
		days = weather.DefaultForecastDays
	}
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: common.FirstNonEmpty(baseURL, defaultWeatherAPIBaseURL),
		days:    days,
		httpCfg: common.HTTPClientConfig{
			Client:  client,
			Backoff: common.DefaultBackoff,
		},
		circuit: common.NewCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) FetchSamples(ctx context.Context, loc weather.Location) ([]weather.Observation, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("days", strconv.Itoa(p.days))
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		if loc.Lat != nil && loc.Lon != nil {
			values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
		} else {
			values.Set("q", loc.Query())
		}

		u := fmt.Sprintf("%s/forecast.json?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := common.DoWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch    int64   `json:"time_epoch"`
					TempC        float64 `json:"temp_c"`
					Humidity     float64 `json:"humidity"`
					WindKph      float64 `json:"wind_kph"`
					PrecipMm     float64 `json:"precip_mm"`
					WillItRain   int     `json:"will_it_rain"`
					ChanceOfRain int     `json:"chance_of_rain"`
					Condition    struct {
						Text string `json:"text"`
					} `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weatherapi response: %w", err)
	}

	var samples []weather.Observation
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			samples = append(samples, weather.Observation{
				Time:         time.Unix(h.TimeEpoch, 0).UTC(),
				TemperatureC: h.TempC,
				Condition:    strings.ToLower(strings.TrimSpace(h.Condition.Text)),
				HumidityPct:  h.Humidity,
				// Convert wind from kph to m/s.
				WindSpeedMS: h.WindKph / 3.6,
				RainMm:      h.PrecipMm,
				Rainy:       h.WillItRain == 1 || h.PrecipMm > 0,
			})
		}
	}
	return samples, nil
}
