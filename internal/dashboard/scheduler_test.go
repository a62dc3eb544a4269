package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
)

type stubRefresher struct {
	broadcasts int32
	refreshes  int32
	err        error
}

func (s *stubRefresher) RefreshAndBroadcast(context.Context) (*MetricsSnapshot, error) {
	atomic.AddInt32(&s.broadcasts, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &MetricsSnapshot{}, nil
}

func (s *stubRefresher) Refresh(context.Context) error {
	atomic.AddInt32(&s.refreshes, 1)
	return s.err
}

type stubSubscribers struct {
	count int32
}

func (s *stubSubscribers) SubscriberCount() int { return int(atomic.LoadInt32(&s.count)) }

func newTestScheduler(t *testing.T, ref *stubRefresher, subs *stubSubscribers, cfg config.DashboardConfig, now *time.Time) *Scheduler {
	t.Helper()
	s, err := NewScheduler(SchedulerParams{
		Metrics:     ref,
		Subscribers: subs,
		Config:      cfg,
		Now:         func() time.Time { return *now },
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func TestTickBroadcastsWithSubscribers(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	ref := &stubRefresher{}
	s := newTestScheduler(t, ref, &stubSubscribers{count: 2}, testDashboardConfig(), &now)

	s.tick(context.Background())
	s.tick(context.Background())

	if got := atomic.LoadInt32(&ref.broadcasts); got != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", got)
	}
	if got := atomic.LoadInt32(&ref.refreshes); got != 0 {
		t.Fatalf("expected no plain refreshes, got %d", got)
	}
}

func TestTickThrottlesWithoutSubscribers(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	ref := &stubRefresher{}
	cfg := testDashboardConfig()
	s := newTestScheduler(t, ref, &stubSubscribers{count: 0}, cfg, &now)

	s.tick(context.Background())
	if got := atomic.LoadInt32(&ref.refreshes); got != 1 {
		t.Fatalf("first idle tick should refresh, got %d", got)
	}

	// subsequent ticks inside the fallback window stay quiet
	now = now.Add(cfg.RefreshInterval)
	s.tick(context.Background())
	now = now.Add(cfg.RefreshInterval)
	s.tick(context.Background())
	if got := atomic.LoadInt32(&ref.refreshes); got != 1 {
		t.Fatalf("fallback window not honored, got %d refreshes", got)
	}

	now = now.Add(cfg.FallbackInterval)
	s.tick(context.Background())
	if got := atomic.LoadInt32(&ref.refreshes); got != 2 {
		t.Fatalf("expected refresh after fallback interval, got %d", got)
	}
	if got := atomic.LoadInt32(&ref.broadcasts); got != 0 {
		t.Fatalf("idle ticks must not broadcast, got %d", got)
	}
}

func TestTickSwallowsRefreshErrors(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	ref := &stubRefresher{err: errors.New("db down")}
	s := newTestScheduler(t, ref, &stubSubscribers{count: 1}, testDashboardConfig(), &now)

	s.tick(context.Background())
	s.tick(context.Background())

	if got := atomic.LoadInt32(&ref.broadcasts); got != 2 {
		t.Fatalf("errors must not stop the ticks, got %d broadcasts", got)
	}
}

func TestRunStopsOnContextAndWarmsCache(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	ref := &stubRefresher{}
	cfg := config.DashboardConfig{
		CacheTTL:            time.Second,
		RefreshInterval:     5 * time.Millisecond,
		FallbackInterval:    time.Hour,
		InitialRefreshDelay: time.Millisecond,
		ExpiringSoonWindow:  72 * time.Hour,
	}
	s := newTestScheduler(t, ref, &stubSubscribers{count: 1}, cfg, &now)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&ref.refreshes) == 0 || atomic.LoadInt32(&ref.broadcasts) == 0 {
		select {
		case <-deadline:
			t.Fatalf("scheduler never ran: refreshes=%d broadcasts=%d",
				atomic.LoadInt32(&ref.refreshes), atomic.LoadInt32(&ref.broadcasts))
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}
