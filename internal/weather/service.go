package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultCacheTTL = 30 * time.Minute

// Service fetches samples from providers, caches them and turns them into
// forecasts and condition reports.
type Service struct {
	fetchers []SampleFetcher
	current  CurrentFetcher
	cache    SampleCache
	cacheTTL time.Duration
	tz       *time.Location
	now      func() time.Time
	logger   *zap.SugaredLogger
}

type Option func(*Service)

func WithCache(cache SampleCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithClock overrides the clock used to pick the forecast reference date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTimezone sets the zone in which calendar days are cut.
func WithTimezone(tz *time.Location) Option {
	return func(s *Service) {
		if tz != nil {
			s.tz = tz
		}
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new Service. Fetchers are tried in order.
func NewService(fetchers []SampleFetcher, current CurrentFetcher, opts ...Option) *Service {
	s := &Service{
		fetchers: fetchers,
		current:  current,
		cacheTTL: defaultCacheTTL,
		tz:       time.UTC,
		now:      time.Now,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forecast returns a days-long daily forecast for loc, starting today.
// Failures are reported inside the result.
func (s *Service) Forecast(ctx context.Context, loc Location, days int) ForecastResult {
	if days <= 0 {
		days = DefaultForecastDays
	}

	samples, err := s.Samples(ctx, loc)
	if err != nil {
		s.logger.Errorw("forecast fetch failed", "location", loc.Key(), "error", err)
		return failedResult(err)
	}

	result := BuildForecastResult(samples, days, s.now().In(s.tz))
	if result.Failed() {
		s.logger.Warnw("forecast aggregation failed", "location", loc.Key(), "error", result.Error)
	}
	return result
}

// Conditions fetches current weather and forecast samples concurrently and
// analyses the 24 hours starting at the service clock.
func (s *Service) Conditions(ctx context.Context, loc Location) (ConditionsReport, error) {
	if s.current == nil {
		return ConditionsReport{}, &FetchError{Location: loc, Err: ErrNoProviders}
	}

	var (
		current Current
		samples []Observation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.current.FetchCurrent(gctx, loc)
		if err != nil {
			return &FetchError{Location: loc, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		samples, err = s.Samples(gctx, loc)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Errorw("conditions fetch failed", "location", loc.Key(), "error", err)
		return ConditionsReport{}, err
	}

	return AnalyzeConditions(current, samples, s.now())
}

// Samples returns forecast samples for loc, from cache when possible.
func (s *Service) Samples(ctx context.Context, loc Location) ([]Observation, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, loc)
		if err != nil {
			s.logger.Warnw("sample cache read failed", "location", loc.Key(), "error", err)
		} else if ok {
			s.logger.Debugw("sample cache hit", "location", loc.Key(), "samples", len(cached))
			return cached, nil
		}
	}
	return s.fetchAndCache(ctx, loc)
}

// Prewarm refreshes the cached samples for loc regardless of their age.
func (s *Service) Prewarm(ctx context.Context, loc Location) error {
	_, err := s.fetchAndCache(ctx, loc)
	return err
}

func (s *Service) fetchAndCache(ctx context.Context, loc Location) ([]Observation, error) {
	samples, err := s.fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, loc, samples, s.cacheTTL); err != nil {
			s.logger.Warnw("sample cache write failed", "location", loc.Key(), "error", err)
		}
	}
	return samples, nil
}

// fetch tries each provider in turn and returns the first non-empty answer.
func (s *Service) fetch(ctx context.Context, loc Location) ([]Observation, error) {
	if len(s.fetchers) == 0 {
		return nil, &FetchError{Location: loc, Err: ErrNoProviders}
	}

	var errs []error
	for _, f := range s.fetchers {
		samples, err := f.FetchSamples(ctx, loc)
		if err != nil {
			s.logger.Warnw("provider fetch failed", "provider", f.Name(), "location", loc.Key(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", f.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(samples) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name(), ErrEmptyInput))
			continue
		}
		s.logger.Debugw("provider fetch succeeded", "provider", f.Name(), "location", loc.Key(), "samples", len(samples))
		return samples, nil
	}
	return nil, &FetchError{Location: loc, Err: errors.Join(errs...)}
}
