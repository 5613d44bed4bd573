package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/agri-advisor/internal/common"
	"github.com/i474232898/agri-advisor/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider reads current conditions and the 5 day / 3 hour forecast
// from OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg common.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: common.FirstNonEmpty(baseURL, defaultOpenWeatherBaseURL),
		httpCfg: common.HTTPClientConfig{
			Client:  client,
			Backoff: common.DefaultBackoff,
		},
		circuit: common.NewCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owCurrentPayload struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []owCondition `json:"weather"`
}

type owForecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain *struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Weather []owCondition `json:"weather"`
	} `json:"list"`
}

// FetchCurrent calls /weather.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.Current, error) {
	var payload owCurrentPayload
	if err := p.get(ctx, "/weather", loc, &payload); err != nil {
		return weather.Current{}, err
	}

	return weather.Current{
		City:         common.FirstNonEmpty(payload.Name, loc.City),
		TemperatureC: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		WindSpeedMS:  payload.Wind.Speed,
		Condition:    describe(payload.Weather),
	}, nil
}

// FetchSamples calls /forecast, which covers five days in 3-hour steps.
func (p *OpenWeatherProvider) FetchSamples(ctx context.Context, loc weather.Location) ([]weather.Observation, error) {
	var payload owForecastPayload
	if err := p.get(ctx, "/forecast", loc, &payload); err != nil {
		return nil, err
	}

	samples := make([]weather.Observation, 0, len(payload.List))
	for _, item := range payload.List {
		obs := weather.Observation{
			Time:         time.Unix(item.Dt, 0).UTC(),
			TemperatureC: item.Main.Temp,
			Condition:    describe(item.Weather),
			HumidityPct:  item.Main.Humidity,
			WindSpeedMS:  item.Wind.Speed,
		}
		if item.Rain != nil {
			obs.Rainy = true
			obs.RainMm = item.Rain.ThreeH
		}
		samples = append(samples, obs)
	}
	return samples, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, loc weather.Location, out interface{}) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		if loc.Lat != nil && loc.Lon != nil {
			values.Set("lat", fmt.Sprintf("%f", *loc.Lat))
			values.Set("lon", fmt.Sprintf("%f", *loc.Lon))
		} else {
			values.Set("q", loc.Query())
		}

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := common.DoWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode openweather %s response: %w", path, err)
	}
	return nil
}

// describe returns the free-text description of the first condition, falling
// back to its short group name.
func describe(items []owCondition) string {
	if len(items) == 0 {
		return "unknown"
	}
	return common.FirstNonEmpty(items[0].Description, items[0].Main, "unknown")
}
