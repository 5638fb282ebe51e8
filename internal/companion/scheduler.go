package companion

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// refresher is what the scheduler needs from the service.
type refresher interface {
	RefreshCollection(ctx context.Context) error
	RefreshFriends(ctx context.Context) error
	RefreshTradelists(ctx context.Context) error
}

// SchedulerConfig configures the background refresh scheduler.
type SchedulerConfig struct {
	Logger *slog.Logger

	// Interval between refresh rounds. Zero disables the scheduler.
	Interval time.Duration

	// RefreshTradelists includes the (much heavier) tradelist assembly in
	// every round; otherwise only collection and friends are refreshed.
	RefreshTradelists bool
}

// Scheduler periodically refreshes the persisted vendor data so API
// consumers see reasonably fresh state without triggering refreshes
// themselves.
type Scheduler struct {
	service refresher
	config  SchedulerConfig
	logger  *slog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler over the service. Returns nil when the
// interval is zero, which callers treat as "disabled".
func NewScheduler(service *Service, config SchedulerConfig) *Scheduler {
	if config.Interval == 0 {
		return nil
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Scheduler{
		service: serviceRefresher{service},
		config:  config,
		logger:  config.Logger,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the refresh loop. The first round runs after one interval,
// not immediately, so startup stays cheap.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Refresh scheduler started",
		"interval", s.config.Interval,
		"tradelists", s.config.RefreshTradelists)
}

// Stop stops the scheduler and waits for an in-flight round to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()

	s.logger.Info("Refresh scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runRound(ctx)
		}
	}
}

// runRound refreshes everything once. Failures are logged, not fatal: the
// next round retries, and a stale snapshot is still serveable.
func (s *Scheduler) runRound(ctx context.Context) {
	start := time.Now()

	if err := s.service.RefreshCollection(ctx); err != nil {
		s.logger.Error("Scheduled collection refresh failed", "error", err)
	}
	if err := s.service.RefreshFriends(ctx); err != nil {
		s.logger.Error("Scheduled friends refresh failed", "error", err)
	}
	if s.config.RefreshTradelists {
		if err := s.service.RefreshTradelists(ctx); err != nil {
			s.logger.Error("Scheduled tradelist refresh failed", "error", err)
		}
	}

	s.logger.Info("Refresh round finished", "elapsed", time.Since(start))
}

// serviceRefresher adapts Service's result-returning methods to the
// error-only shape the scheduler loops over.
type serviceRefresher struct {
	service *Service
}

func (r serviceRefresher) RefreshCollection(ctx context.Context) error {
	_, err := r.service.RefreshCollection(ctx)
	return err
}

func (r serviceRefresher) RefreshFriends(ctx context.Context) error {
	_, err := r.service.RefreshFriends(ctx)
	return err
}

func (r serviceRefresher) RefreshTradelists(ctx context.Context) error {
	_, err := r.service.RefreshTradelists(ctx)
	return err
}
