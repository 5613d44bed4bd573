package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/agri-advisor/internal/weather"
)

type AppConfig struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	// Timezone decides where forecast days start and end.
	Timezone string         `envconfig:"TIMEZONE" default:"UTC"`
	Location *time.Location `ignored:"true"`

	// Weather providers, tried in order: OpenWeatherMap, WeatherAPI, Open-Meteo.
	OpenWeatherAPIKey  string `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	OpenWeatherBaseURL string `envconfig:"OPENWEATHER_BASE_URL" validate:"omitempty,url"`
	WeatherAPIKey      string `envconfig:"WEATHERAPI_API_KEY"`
	WeatherAPIBaseURL  string `envconfig:"WEATHERAPI_BASE_URL" validate:"omitempty,url"`
	OpenMeteoBaseURL   string `envconfig:"OPENMETEO_BASE_URL" validate:"omitempty,url"`
	// Open-Meteo is only enabled when a geocoder key is present.
	GeocoderAPIKey string `envconfig:"GOOGLE_GEOCODER_API_KEY"`

	GroqAPIKey       string  `envconfig:"GROQ_API_KEY" validate:"required"`
	GroqBaseURL      string  `envconfig:"GROQ_BASE_URL" validate:"omitempty,url"`
	GroqTextModel    string  `envconfig:"GROQ_TEXT_MODEL" default:"llama-3.3-70b-versatile"`
	GroqVisionModel  string  `envconfig:"GROQ_VISION_MODEL" default:"llama-3.2-90b-vision-preview"`
	GeminiAPIKey     string  `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL    string  `envconfig:"GEMINI_BASE_URL" validate:"omitempty,url"`
	GeminiModel      string  `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash-exp"`
	AIRateLimitRPS   float64 `envconfig:"AI_RATE_LIMIT_RPS" default:"2" validate:"gte=0"`
	AIRateLimitBurst int     `envconfig:"AI_RATE_LIMIT_BURST" default:"4" validate:"gte=0"`

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	ForecastDays int           `envconfig:"FORECAST_DAYS" default:"7" validate:"min=1,max=16"`

	// Sample cache. Redis is used when RedisAddr is set, memory otherwise.
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"30m"`
	CacheMaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"500"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`

	// Cities whose forecasts are refreshed in the background.
	PrewarmCities    []string      `envconfig:"PREWARM_CITIES"`
	PrewarmCountries []string      `envconfig:"PREWARM_COUNTRIES"`
	PrewarmInterval  time.Duration `envconfig:"PREWARM_INTERVAL" default:"30m"`

	MaxUploadBytes int `envconfig:"MAX_UPLOAD_BYTES" default:"16777216" validate:"min=1"`
}

var validate = validator.New()

// Load reads configuration from the environment (and .env when present) with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if _, err := cfg.PrewarmLocations(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PrewarmLocations pairs PREWARM_CITIES with PREWARM_COUNTRIES. Countries may
// be omitted entirely; otherwise both lists must be the same length.
func (c *AppConfig) PrewarmLocations() ([]weather.Location, error) {
	if len(c.PrewarmCountries) > 0 && len(c.PrewarmCities) != len(c.PrewarmCountries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var locs []weather.Location
	for i, city := range c.PrewarmCities {
		city = strings.TrimSpace(city)
		if city == "" {
			continue
		}
		loc := weather.Location{City: city}
		if len(c.PrewarmCountries) > 0 {
			loc.Country = strings.TrimSpace(c.PrewarmCountries[i])
		}
		locs = append(locs, loc)
	}
	return locs, nil
}
