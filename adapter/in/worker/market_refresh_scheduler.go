package worker

import (
	"context"
	"time"

	"market_server/core/port/out"

	"github.com/rs/zerolog"
)

// =============================================================================
// Similar-User Refresh Scheduler
// =============================================================================

// SchedulerConfig holds refresh scheduler configuration.
type SchedulerConfig struct {
	// Interval between scans for stale profiles.
	Interval time.Duration

	// StalenessSec is the similar-user cache age that makes a profile due
	// for refresh.
	StalenessSec int64

	// BatchSize caps how many refresh jobs one scan enqueues.
	BatchSize int
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Interval:     10 * time.Minute,
		StalenessSec: int64((24 * time.Hour).Seconds()),
		BatchSize:    100,
	}
}

// RefreshScheduler periodically scans for profiles with stale similar-user
// caches and enqueues refresh jobs. Scanning and processing are decoupled:
// the jobs land on the stream and flow through the worker pool like any
// other job.
type RefreshScheduler struct {
	profileRepo out.ProfileRepository
	publisher   out.EventPublisher
	config      *SchedulerConfig
	log         zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefreshScheduler creates a new refresh scheduler.
func NewRefreshScheduler(profileRepo out.ProfileRepository, publisher out.EventPublisher, config *SchedulerConfig, log zerolog.Logger) *RefreshScheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	return &RefreshScheduler{
		profileRepo: profileRepo,
		publisher:   publisher,
		config:      config,
		log:         log.With().Str("component", "refresh_scheduler").Logger(),
	}
}

// Start launches the periodic scan loop.
func (s *RefreshScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()

		s.log.Info().
			Dur("interval", s.config.Interval).
			Int64("staleness_sec", s.config.StalenessSec).
			Msg("refresh scheduler started")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.scan(ctx)
			}
		}
	}()
}

// Stop halts the scan loop and waits for it to exit.
func (s *RefreshScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.log.Info().Msg("refresh scheduler stopped")
}

func (s *RefreshScheduler) scan(ctx context.Context) {
	ids, err := s.profileRepo.StaleSimilarUserIDs(ctx, s.config.StalenessSec, s.config.BatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("stale profile scan failed")
		return
	}
	if len(ids) == 0 {
		return
	}

	enqueued := 0
	for _, id := range ids {
		if err := s.publisher.PublishRefresh(ctx, id); err != nil {
			s.log.Error().Err(err).Str("user_id", id.String()).
				Msg("failed to enqueue refresh job")
			continue
		}
		enqueued++
	}

	s.log.Info().
		Int("stale", len(ids)).
		Int("enqueued", enqueued).
		Msg("refresh jobs enqueued")
}
