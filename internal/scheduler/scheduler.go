package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/agri-advisor/internal/weather"
)

// Prewarmer refreshes cached weather for a location.
type Prewarmer interface {
	Prewarm(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically refreshes the forecast cache for configured locations
// so user requests for popular cities rarely wait on a provider.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Prewarmer
	locations []weather.Location
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(locations []weather.Location, interval time.Duration, service Prewarmer, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		locations: locations,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every configured location concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	s.logger.Infow("scheduler: running cache prewarm job", "locations", len(s.locations))

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if err := s.service.Prewarm(ctx, loc); err != nil {
				s.logger.Warnw("scheduler: prewarm failed", "location", loc.Key(), "error", err)
			}
		}(loc)
	}
	wg.Wait()
	s.logger.Info("scheduler: completed cache prewarm job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
