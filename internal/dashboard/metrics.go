package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rodrigofuentes/gympulse-backend/internal/realtime"
	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
)

// MetricsSnapshot is the cached headline view pushed to the dashboard.
type MetricsSnapshot struct {
	CheckinsToday      int64     `json:"checkins_today"`
	ActiveMemberships  int64     `json:"active_memberships"`
	ExpiredMemberships int64     `json:"expired_memberships"`
	ExpiringSoon       int64     `json:"expiring_soon"`
	GeneratedAt        time.Time `json:"generated_at"`
}

type checkinCounter interface {
	CountSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type membershipCounter interface {
	CountByStatus(ctx context.Context, status enums.MembershipStatus) (int64, error)
	CountActiveExpiringBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// Metrics owns the snapshot cache. A fresh snapshot is served without
// touching the database; a stale or forced read recomputes the four
// aggregates concurrently and swaps the snapshot under the lock.
type Metrics struct {
	mu        sync.Mutex
	snapshot  *MetricsSnapshot
	fetchedAt time.Time

	checkins       checkinCounter
	memberships    membershipCounter
	publisher      realtime.Publisher
	logg           *logger.Logger
	ttl            time.Duration
	expiringWindow time.Duration
	now            func() time.Time
}

// MetricsParams bundles the dependencies required to build the metrics cache.
type MetricsParams struct {
	CheckinRepo    checkinCounter
	MembershipRepo membershipCounter
	Publisher      realtime.Publisher
	Logger         *logger.Logger
	Config         config.DashboardConfig
	Now            func() time.Time
}

// NewMetrics constructs the snapshot cache.
func NewMetrics(params MetricsParams) (*Metrics, error) {
	if params.CheckinRepo == nil {
		return nil, fmt.Errorf("checkins repository is required")
	}
	if params.MembershipRepo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("realtime publisher is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	ttl := params.Config.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	window := params.Config.ExpiringSoonWindow
	if window <= 0 {
		window = 72 * time.Hour
	}
	return &Metrics{
		checkins:       params.CheckinRepo,
		memberships:    params.MembershipRepo,
		publisher:      params.Publisher,
		logg:           params.Logger,
		ttl:            ttl,
		expiringWindow: window,
		now:            now,
	}, nil
}

// GetMetrics returns the snapshot, recomputing when it is stale or when
// force is set. A failed recompute leaves the previous snapshot intact.
func (m *Metrics) GetMetrics(ctx context.Context, force bool) (*MetricsSnapshot, error) {
	now := m.now()

	m.mu.Lock()
	if !force && m.snapshot != nil && now.Sub(m.fetchedAt) < m.ttl {
		snap := *m.snapshot
		m.mu.Unlock()
		return &snap, nil
	}
	m.mu.Unlock()

	snap, err := m.compute(ctx, now)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.snapshot = snap
	m.fetchedAt = now
	out := *snap
	m.mu.Unlock()
	return &out, nil
}

// RefreshAndBroadcast forces a recompute and pushes the snapshot to every
// dashboard subscriber.
func (m *Metrics) RefreshAndBroadcast(ctx context.Context) (*MetricsSnapshot, error) {
	snap, err := m.GetMetrics(ctx, true)
	if err != nil {
		return nil, err
	}
	m.publisher.Publish(realtime.EventDashboardUpdate, snap)
	return snap, nil
}

// Refresh recomputes the snapshot without broadcasting.
func (m *Metrics) Refresh(ctx context.Context) error {
	_, err := m.GetMetrics(ctx, true)
	return err
}

func (m *Metrics) compute(ctx context.Context, now time.Time) (*MetricsSnapshot, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var snap MetricsSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := m.checkins.CountSince(gctx, startOfDay)
		if err != nil {
			return fmt.Errorf("count today checkins: %w", err)
		}
		snap.CheckinsToday = count
		return nil
	})
	g.Go(func() error {
		count, err := m.memberships.CountByStatus(gctx, enums.MembershipStatusActive)
		if err != nil {
			return fmt.Errorf("count active memberships: %w", err)
		}
		snap.ActiveMemberships = count
		return nil
	})
	g.Go(func() error {
		count, err := m.memberships.CountByStatus(gctx, enums.MembershipStatusExpired)
		if err != nil {
			return fmt.Errorf("count expired memberships: %w", err)
		}
		snap.ExpiredMemberships = count
		return nil
	})
	g.Go(func() error {
		count, err := m.memberships.CountActiveExpiringBetween(gctx, now, now.Add(m.expiringWindow))
		if err != nil {
			return fmt.Errorf("count expiring memberships: %w", err)
		}
		snap.ExpiringSoon = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute dashboard metrics")
	}

	snap.GeneratedAt = now
	return &snap, nil
}
