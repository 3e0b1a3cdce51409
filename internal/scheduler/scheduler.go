package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/owm-current-weather/internal/metrics"
	"github.com/i474232898/owm-current-weather/owm"
)

const (
	defaultInterval = 15 * time.Minute
	fetchTimeout    = 30 * time.Second
)

type Fetcher interface {
	Fetch(ctx context.Context, sel owm.LocationSelector, mods owm.Modifiers) (owm.Result, error)
}

// Scheduler periodically looks up the current weather for a watch list
// and logs each observation. Nothing is stored.
type Scheduler struct {
	scheduler *gocron.Scheduler
	client    Fetcher
	selectors []owm.LocationSelector
	mods      owm.Modifiers
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a new Scheduler. Raw output is never requested, since the
// job logs normalized fields.
func New(selectors []owm.LocationSelector, interval time.Duration, client Fetcher, mods owm.Modifiers, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	mods.Output = owm.OutputStructured

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		selectors: selectors,
		mods:      mods,
		interval:  interval,
		metrics:   m,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.selectors) == 0 {
		s.logger.Info("scheduler: no watch locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: started", "locations", len(s.selectors), "interval", s.interval)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runOnce() {
	s.logger.Debug("scheduler: running watch job")

	var wg sync.WaitGroup
	for _, sel := range s.selectors {
		wg.Add(1)
		go func(sel owm.LocationSelector) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			s.observe(ctx, sel)
		}(sel)
	}
	wg.Wait()

	s.logger.Debug("scheduler: completed watch job")
}

func (s *Scheduler) observe(ctx context.Context, sel owm.LocationSelector) {
	start := time.Now()
	res, err := s.client.Fetch(ctx, sel, s.mods)
	s.metrics.Observe(sel, "watch", res, err, time.Since(start))

	switch {
	case err != nil:
		s.logger.Warn("scheduler: lookup failed", "selector", sel, "error", err)
	case res.Failure != nil:
		s.logger.Warn("scheduler: upstream rejected lookup", "selector", sel,
			"code", res.Failure.Code, "message", res.Failure.Message)
	case res.Record != nil:
		r := res.Record
		s.logger.Info("scheduler: observed",
			"location", r.LocationName,
			"country", r.System.Country,
			"conditions", r.Conditions.Description,
			"temperature", r.Measurements.Temperature,
			"humidity", r.Measurements.Humidity,
			"observed_at", r.ObservedTime().Format(time.RFC3339),
		)
	}
}
