package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
)

type membershipExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type metricsRefresher interface {
	Refresh(ctx context.Context) error
}

// MembershipExpiryJobParams configures the expiry sweep.
type MembershipExpiryJobParams struct {
	Logger      *logger.Logger
	Memberships membershipExpirer
	Dashboard   metricsRefresher
}

// NewMembershipExpiryJob builds the job that flips lapsed ACTIVE
// memberships to EXPIRED. The dashboard refresher is optional; when
// present the cached snapshot is recomputed after a sweep that changed
// rows.
func NewMembershipExpiryJob(params MembershipExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships service required")
	}
	return &membershipExpiryJob{
		logg:        params.Logger,
		memberships: params.Memberships,
		dashboard:   params.Dashboard,
		now:         time.Now,
	}, nil
}

type membershipExpiryJob struct {
	logg        *logger.Logger
	memberships membershipExpirer
	dashboard   metricsRefresher
	now         func() time.Time
}

func (j *membershipExpiryJob) Name() string { return "membership-expiry" }

func (j *membershipExpiryJob) Run(ctx context.Context) error {
	expired, err := j.memberships.ExpireDue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expire memberships: %w", err)
	}

	logCtx := j.logg.WithField(ctx, "count", expired)
	j.logg.Info(logCtx, "membership expiry sweep complete")

	if expired > 0 && j.dashboard != nil {
		if err := j.dashboard.Refresh(ctx); err != nil {
			j.logg.Error(ctx, "dashboard refresh after expiry failed", err)
		}
	}
	return nil
}
