package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher is the job the scheduler runs.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refreshes the earthquake feed.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	refresher  Refresher
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

// New creates a Scheduler. runTimeout bounds each refresh.
func New(r Refresher, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		refresher:  r,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Start schedules the refresh job and starts the underlying scheduler. The
// first run happens immediately. Overlapping runs are skipped.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler: refresh interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("feed scheduler started", "interval", s.interval)
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("scheduled refresh failed", "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("scheduled refresh completed", "duration", time.Since(start))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
