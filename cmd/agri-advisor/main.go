package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/agri-advisor/internal/advisor"
	"github.com/i474232898/agri-advisor/internal/ai"
	httpapi "github.com/i474232898/agri-advisor/internal/api/http"
	"github.com/i474232898/agri-advisor/internal/config"
	"github.com/i474232898/agri-advisor/internal/geocode"
	"github.com/i474232898/agri-advisor/internal/logging"
	"github.com/i474232898/agri-advisor/internal/scheduler"
	"github.com/i474232898/agri-advisor/internal/store"
	"github.com/i474232898/agri-advisor/internal/weather"
	"github.com/i474232898/agri-advisor/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sugar, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer sugar.Sync()

	// Shared HTTP client for outbound provider and model calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, closeCache := buildCache(ctx, cfg, sugar)
	defer closeCache()

	owm := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	fetchers := []weather.SampleFetcher{owm}
	if cfg.WeatherAPIKey != "" {
		fetchers = append(fetchers, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey, cfg.WeatherAPIBaseURL, cfg.ForecastDays))
	}
	// Open-Meteo does not require an API key, but geocoding requires a Google API key.
	if cfg.GeocoderAPIKey != "" {
		gc, err := geocode.NewGoogle(cfg.GeocoderAPIKey)
		if err != nil {
			sugar.Fatalw("failed to configure geocoder", "error", err)
		}
		fetchers = append(fetchers, providers.NewOpenMeteoProvider(httpClient, gc, cfg.OpenMeteoBaseURL, cfg.ForecastDays))
	}

	weatherService := weather.NewService(fetchers, owm,
		weather.WithCache(cache, cfg.CacheTTL),
		weather.WithTimezone(cfg.Location),
		weather.WithLogger(sugar.Named("weather")),
	)

	limiter := ai.NewLimiter(cfg.AIRateLimitRPS, cfg.AIRateLimitBurst)
	groq := ai.NewGroqClient(httpClient, ai.GroqConfig{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		TextModel:   cfg.GroqTextModel,
		VisionModel: cfg.GroqVisionModel,
	}, limiter)

	var schemes advisor.TextModel
	if cfg.GeminiAPIKey != "" {
		schemes = ai.NewGeminiClient(httpClient, ai.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
		}, limiter)
	} else {
		sugar.Warn("GEMINI_API_KEY not set; scheme information will use the Groq text model")
	}

	advisorService := advisor.New(advisor.Config{
		Text:         groq,
		Vision:       groq,
		Schemes:      schemes,
		Forecaster:   weatherService,
		ForecastDays: cfg.ForecastDays,
		Logger:       sugar.Named("advisor"),
	})

	locations, err := cfg.PrewarmLocations()
	if err != nil {
		sugar.Fatalw("invalid prewarm locations", "error", err)
	}
	sched := scheduler.New(locations, cfg.PrewarmInterval, weatherService, sugar.Named("scheduler"))
	if err := sched.Start(); err != nil {
		sugar.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "agri-advisor",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          2 * time.Minute,
		// Leave room for multipart framing around the image itself.
		BodyLimit:    cfg.MaxUploadBytes + 1<<20,
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "agri-advisor",
		})
	})

	httpapi.RegisterRoutes(app, advisorService, weatherService, httpapi.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		ForecastDays:   cfg.ForecastDays,
	})

	sugar.Infow("starting http server", "port", cfg.Port, "providers", len(fetchers))
	go serve(app, ":"+cfg.Port, sugar, stop)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		sugar.Errorw("error during shutdown", "error", err)
	}
}

// serve blocks on app.Listen. A listener that fails (port taken, bad address)
// cancels the root context so main shuts down instead of waiting for a signal.
func serve(app *fiber.App, addr string, sugar *zap.SugaredLogger, stop context.CancelFunc) {
	if err := app.Listen(addr); err != nil {
		sugar.Errorw("fiber server stopped", "addr", addr, "error", err)
		stop()
	}
}

// buildCache prefers Redis when configured and falls back to memory if it is
// unreachable. The returned func releases the Redis connection pool.
func buildCache(ctx context.Context, cfg *config.AppConfig, sugar *zap.SugaredLogger) (weather.SampleCache, func()) {
	noop := func() {}
	if cfg.RedisAddr == "" {
		return store.NewMemoryStore(cfg.CacheMaxEntries), noop
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rs, err := store.NewRedisStoreFromAddr(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		sugar.Warnw("redis unavailable; using in-memory cache", "addr", cfg.RedisAddr, "error", err)
		return store.NewMemoryStore(cfg.CacheMaxEntries), noop
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			sugar.Warnw("closing redis", "addr", cfg.RedisAddr, "error", err)
		}
	}
}
