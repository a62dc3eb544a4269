package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
)

type refresher interface {
	RefreshAndBroadcast(ctx context.Context) (*MetricsSnapshot, error)
	Refresh(ctx context.Context) error
}

type subscriberCounter interface {
	SubscriberCount() int
}

// Scheduler keeps the dashboard snapshot warm. With subscribers online it
// refreshes and broadcasts every tick; with nobody watching it throttles
// down to a keep-warm refresh at the fallback interval.
type Scheduler struct {
	metrics     refresher
	subscribers subscriberCounter
	logg        *logger.Logger
	cfg         config.DashboardConfig
	now         func() time.Time

	lastFallback time.Time
}

// SchedulerParams bundles the dependencies required to build the scheduler.
type SchedulerParams struct {
	Metrics     refresher
	Subscribers subscriberCounter
	Logger      *logger.Logger
	Config      config.DashboardConfig
	Now         func() time.Time
}

// NewScheduler constructs a dashboard scheduler.
func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Metrics == nil {
		return nil, fmt.Errorf("metrics cache is required")
	}
	if params.Subscribers == nil {
		return nil, fmt.Errorf("subscriber counter is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		metrics:     params.Metrics,
		subscribers: params.Subscribers,
		logg:        params.Logger,
		cfg:         params.Config,
		now:         now,
	}, nil
}

// Run blocks until the context is cancelled. Refresh failures are logged
// and swallowed; the next tick proceeds regardless.
func (s *Scheduler) Run(ctx context.Context) {
	initial := time.NewTimer(s.cfg.InitialRefreshDelay)
	defer initial.Stop()

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-initial.C:
			if err := s.metrics.Refresh(ctx); err != nil {
				s.logError(ctx, "initial dashboard refresh failed", err)
			}
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.subscribers.SubscriberCount() > 0 {
		if _, err := s.metrics.RefreshAndBroadcast(ctx); err != nil {
			s.logError(ctx, "dashboard refresh failed", err)
		}
		return
	}

	// Nobody is watching; keep the cache warm on a slower cadence.
	now := s.now()
	if now.Sub(s.lastFallback) < s.cfg.FallbackInterval {
		return
	}
	s.lastFallback = now
	if err := s.metrics.Refresh(ctx); err != nil {
		s.logError(ctx, "fallback dashboard refresh failed", err)
	}
}

func (s *Scheduler) logError(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(ctx, msg, err)
	}
}
