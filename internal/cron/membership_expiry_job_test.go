package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
)

type stubExpirer struct {
	expired int64
	err     error
	calls   int
	cutoff  time.Time
}

func (s *stubExpirer) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	s.calls++
	s.cutoff = now
	return s.expired, s.err
}

type stubDashboard struct {
	refreshes int
}

func (s *stubDashboard) Refresh(context.Context) error {
	s.refreshes++
	return nil
}

func newExpiryJob(t *testing.T, exp *stubExpirer, dash *stubDashboard) Job {
	t.Helper()
	params := MembershipExpiryJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "cron-test"}),
		Memberships: exp,
	}
	if dash != nil {
		params.Dashboard = dash
	}
	job, err := NewMembershipExpiryJob(params)
	if err != nil {
		t.Fatalf("NewMembershipExpiryJob: %v", err)
	}
	return job
}

func TestMembershipExpiryJobSweeps(t *testing.T) {
	exp := &stubExpirer{expired: 3}
	dash := &stubDashboard{}
	job := newExpiryJob(t, exp, dash)

	if got := job.Name(); got != "membership-expiry" {
		t.Fatalf("name %q", got)
	}
	before := time.Now().UTC()
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exp.calls != 1 {
		t.Fatalf("expirer called %d times", exp.calls)
	}
	if exp.cutoff.Before(before) || exp.cutoff.Location() != time.UTC {
		t.Fatalf("cutoff %v", exp.cutoff)
	}
	if dash.refreshes != 1 {
		t.Fatalf("dashboard refreshed %d times", dash.refreshes)
	}
}

func TestMembershipExpiryJobSkipsRefreshWhenNothingExpired(t *testing.T) {
	exp := &stubExpirer{expired: 0}
	dash := &stubDashboard{}
	job := newExpiryJob(t, exp, dash)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dash.refreshes != 0 {
		t.Fatalf("dashboard refreshed %d times", dash.refreshes)
	}
}

func TestMembershipExpiryJobPropagatesErrors(t *testing.T) {
	exp := &stubExpirer{err: errors.New("db down")}
	job := newExpiryJob(t, exp, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected sweep error")
	}
}
