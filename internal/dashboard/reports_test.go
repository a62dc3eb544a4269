package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rodrigofuentes/gympulse-backend/internal/checkins"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

type stubCheckinAggregator struct {
	countBetween func(ctx context.Context, from, to time.Time) (int64, error)
	countByDay   func(ctx context.Context, from, to time.Time) ([]checkins.DayCount, error)
	countByHour  func(ctx context.Context, from, to time.Time) ([]checkins.HourCount, error)
}

func (s *stubCheckinAggregator) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return s.countBetween(ctx, from, to)
}

func (s *stubCheckinAggregator) CountByDay(ctx context.Context, from, to time.Time) ([]checkins.DayCount, error) {
	return s.countByDay(ctx, from, to)
}

func (s *stubCheckinAggregator) CountByHour(ctx context.Context, from, to time.Time) ([]checkins.HourCount, error) {
	return s.countByHour(ctx, from, to)
}

type stubRevenueSummer struct {
	sums map[string]decimal.Decimal
}

func (s *stubRevenueSummer) SumPaidBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	key := from.Format(dayFormat) + "/" + to.Format(dayFormat)
	return s.sums[key], nil
}

func newTestReports(t *testing.T, agg *stubCheckinAggregator, rev *stubRevenueSummer, now time.Time) *Reports {
	t.Helper()
	if rev == nil {
		rev = &stubRevenueSummer{}
	}
	r, err := NewReports(ReportsParams{
		CheckinRepo: agg,
		PaymentRepo: rev,
		Now:         func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewReports: %v", err)
	}
	return r
}

func TestDailyTrendZeroFillsSevenDays(t *testing.T) {
	now := time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC)
	agg := &stubCheckinAggregator{
		countByDay: func(_ context.Context, from, to time.Time) ([]checkins.DayCount, error) {
			if got := from.Format(dayFormat); got != "2025-08-26" {
				t.Fatalf("window start %s", got)
			}
			if got := to.Format(dayFormat); got != "2025-09-02" {
				t.Fatalf("window end %s", got)
			}
			return []checkins.DayCount{
				{Day: "2025-08-27", Count: 3},
				{Day: "2025-09-01", Count: 8},
			}, nil
		},
	}
	r := newTestReports(t, agg, nil, now)

	trend, err := r.DailyTrend(context.Background())
	if err != nil {
		t.Fatalf("DailyTrend: %v", err)
	}
	if len(trend) != 7 {
		t.Fatalf("expected 7 points, got %d", len(trend))
	}
	if trend[0].Day != "2025-08-26" || trend[0].Count != 0 {
		t.Fatalf("first point %+v", trend[0])
	}
	if trend[1].Day != "2025-08-27" || trend[1].Count != 3 {
		t.Fatalf("second point %+v", trend[1])
	}
	if trend[6].Day != "2025-09-01" || trend[6].Count != 8 {
		t.Fatalf("last point %+v", trend[6])
	}
}

func TestPeakHoursEarliestHourWinsTies(t *testing.T) {
	now := time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC)
	agg := &stubCheckinAggregator{
		countByHour: func(context.Context, time.Time, time.Time) ([]checkins.HourCount, error) {
			return []checkins.HourCount{
				{Hour: 18, Count: 12},
				{Hour: 7, Count: 12},
				{Hour: 12, Count: 5},
			}, nil
		},
	}
	r := newTestReports(t, agg, nil, now)

	report, err := r.PeakHours(context.Background())
	if err != nil {
		t.Fatalf("PeakHours: %v", err)
	}
	if len(report.Buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(report.Buckets))
	}
	if report.PeakHour != 7 || report.PeakCount != 12 {
		t.Fatalf("peak %d@%d", report.PeakCount, report.PeakHour)
	}
	if report.Buckets[0].Count != 0 || report.Buckets[12].Count != 5 {
		t.Fatalf("buckets not filled: %+v", report.Buckets[:13])
	}
}

func TestPeakHoursAllZero(t *testing.T) {
	now := time.Date(2025, 9, 1, 3, 0, 0, 0, time.UTC)
	agg := &stubCheckinAggregator{
		countByHour: func(context.Context, time.Time, time.Time) ([]checkins.HourCount, error) {
			return nil, nil
		},
	}
	r := newTestReports(t, agg, nil, now)

	report, err := r.PeakHours(context.Background())
	if err != nil {
		t.Fatalf("PeakHours: %v", err)
	}
	if report.PeakHour != 0 || report.PeakCount != 0 {
		t.Fatalf("expected empty peak, got %d@%d", report.PeakCount, report.PeakHour)
	}
}

func TestActivityHistoryInclusiveRange(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	agg := &stubCheckinAggregator{
		countByDay: func(_ context.Context, from, to time.Time) ([]checkins.DayCount, error) {
			if got := to.Format(dayFormat); got != "2025-08-11" {
				t.Fatalf("exclusive end %s", got)
			}
			_ = from
			return []checkins.DayCount{
				{Day: "2025-08-08", Count: 4},
				{Day: "2025-08-10", Count: 6},
			}, nil
		},
	}
	r := newTestReports(t, agg, nil, now)

	report, err := r.ActivityHistory(context.Background(), "2025-08-08", "2025-08-10")
	if err != nil {
		t.Fatalf("ActivityHistory: %v", err)
	}
	if len(report.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(report.Days))
	}
	if report.Days[1].Day != "2025-08-09" || report.Days[1].Count != 0 {
		t.Fatalf("middle day %+v", report.Days[1])
	}
	if report.Total != 10 {
		t.Fatalf("total %d", report.Total)
	}
	if report.From != "2025-08-08" || report.To != "2025-08-10" {
		t.Fatalf("echoed range %s..%s", report.From, report.To)
	}
}

func TestActivityHistoryRejectsBadInput(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	agg := &stubCheckinAggregator{
		countByDay: func(context.Context, time.Time, time.Time) ([]checkins.DayCount, error) {
			t.Fatal("repository must not be reached")
			return nil, nil
		},
	}
	r := newTestReports(t, agg, nil, now)

	cases := []struct {
		name string
		from string
		to   string
	}{
		{"missing from", "", "2025-08-10"},
		{"missing to", "2025-08-08", ""},
		{"slashes", "2025/08/08", "2025-08-10"},
		{"not a date", "2025-13-40", "2025-08-10"},
		{"inverted range", "2025-08-10", "2025-08-08"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.ActivityHistory(context.Background(), tc.from, tc.to)
			if err == nil {
				t.Fatal("expected error")
			}
			if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPerformanceComparesWeeks(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	agg := &stubCheckinAggregator{
		countBetween: func(_ context.Context, from, _ time.Time) (int64, error) {
			if from.Format(dayFormat) == "2025-08-25" {
				return 30, nil
			}
			return 20, nil
		},
	}
	rev := &stubRevenueSummer{sums: map[string]decimal.Decimal{
		"2025-08-25/2025-09-01": decimal.NewFromInt(1500),
		"2025-08-18/2025-08-25": decimal.NewFromInt(1200),
	}}
	r := newTestReports(t, agg, rev, now)

	report, err := r.Performance(context.Background())
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}
	if report.CurrentCheckins != 30 || report.PreviousCheckins != 20 {
		t.Fatalf("checkins %d/%d", report.CurrentCheckins, report.PreviousCheckins)
	}
	if report.CheckinVariationPct != 50 {
		t.Fatalf("checkin variation %v", report.CheckinVariationPct)
	}
	if report.RevenueVariationPct != 25 {
		t.Fatalf("revenue variation %v", report.RevenueVariationPct)
	}
}

func TestVariationPct(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"both zero", 0, 0, 0},
		{"from nothing", 5, 0, 100},
		{"growth", 150, 100, 50},
		{"decline", 50, 100, -50},
		{"rounded", 1, 3, -66.67},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := variationPct(tc.current, tc.previous); got != tc.want {
				t.Fatalf("variationPct(%v, %v) = %v, want %v", tc.current, tc.previous, got, tc.want)
			}
		})
	}
}
