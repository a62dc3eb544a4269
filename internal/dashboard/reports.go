package dashboard

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rodrigofuentes/gympulse-backend/internal/checkins"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

const dayFormat = "2006-01-02"

var dayRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TrendPoint is one day of the check-in trend.
type TrendPoint struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// PeakHoursReport is today's 24-bucket histogram. When several hours tie
// for the maximum, the earliest one wins.
type PeakHoursReport struct {
	Buckets   []checkins.HourCount `json:"buckets"`
	PeakHour  int                  `json:"peak_hour"`
	PeakCount int64                `json:"peak_count"`
}

// ActivityHistoryReport covers an inclusive day range.
type ActivityHistoryReport struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Days  []TrendPoint `json:"days"`
	Total int64        `json:"total"`
}

// PerformanceReport compares the trailing 7 days against the 7 before.
type PerformanceReport struct {
	CurrentCheckins     int64           `json:"current_checkins"`
	PreviousCheckins    int64           `json:"previous_checkins"`
	CheckinVariationPct float64         `json:"checkin_variation_pct"`
	CurrentRevenue      decimal.Decimal `json:"current_revenue"`
	PreviousRevenue     decimal.Decimal `json:"previous_revenue"`
	RevenueVariationPct float64         `json:"revenue_variation_pct"`
}

type checkinAggregator interface {
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountByDay(ctx context.Context, from, to time.Time) ([]checkins.DayCount, error)
	CountByHour(ctx context.Context, from, to time.Time) ([]checkins.HourCount, error)
}

type revenueSummer interface {
	SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// Reports serves the on-demand dashboard reports. Nothing here is cached.
type Reports struct {
	checkins checkinAggregator
	payments revenueSummer
	now      func() time.Time
}

// ReportsParams bundles the dependencies required to build the reports service.
type ReportsParams struct {
	CheckinRepo checkinAggregator
	PaymentRepo revenueSummer
	Now         func() time.Time
}

// NewReports constructs the reports service.
func NewReports(params ReportsParams) (*Reports, error) {
	if params.CheckinRepo == nil {
		return nil, fmt.Errorf("checkins repository is required")
	}
	if params.PaymentRepo == nil {
		return nil, fmt.Errorf("payments repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Reports{checkins: params.CheckinRepo, payments: params.PaymentRepo, now: now}, nil
}

// DailyTrend returns the last 7 days of check-in counts, ascending and
// zero-filled, today included.
func (r *Reports) DailyTrend(ctx context.Context) ([]TrendPoint, error) {
	now := r.now()
	startOfToday := startOfDay(now)
	from := startOfToday.AddDate(0, 0, -6)
	to := startOfToday.AddDate(0, 0, 1)

	rows, err := r.checkins.CountByDay(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "daily trend")
	}
	return zeroFill(from, 7, rows), nil
}

// PeakHours returns today's hourly histogram.
func (r *Reports) PeakHours(ctx context.Context) (*PeakHoursReport, error) {
	now := r.now()
	from := startOfDay(now)
	to := from.AddDate(0, 0, 1)

	rows, err := r.checkins.CountByHour(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "peak hours")
	}

	buckets := make([]checkins.HourCount, 24)
	for i := range buckets {
		buckets[i].Hour = i
	}
	for _, row := range rows {
		if row.Hour >= 0 && row.Hour < 24 {
			buckets[row.Hour].Count = row.Count
		}
	}

	report := &PeakHoursReport{Buckets: buckets}
	for _, b := range buckets {
		// strict greater-than keeps the earliest hour on ties
		if b.Count > report.PeakCount {
			report.PeakCount = b.Count
			report.PeakHour = b.Hour
		}
	}
	return report, nil
}

// ActivityHistory reports per-day counts over an inclusive [from, to]
// day range given as YYYY-MM-DD strings.
func (r *Reports) ActivityHistory(ctx context.Context, fromStr, toStr string) (*ActivityHistoryReport, error) {
	from, err := parseDay(fromStr, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseDay(toStr, "to")
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}

	toExclusive := to.AddDate(0, 0, 1)
	rows, err := r.checkins.CountByDay(ctx, from, toExclusive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activity history")
	}

	days := int(toExclusive.Sub(from).Hours() / 24)
	series := zeroFill(from, days, rows)
	var total int64
	for _, p := range series {
		total += p.Count
	}
	return &ActivityHistoryReport{
		From:  fromStr,
		To:    toStr,
		Days:  series,
		Total: total,
	}, nil
}

// Performance compares check-ins and PAID revenue week over week.
func (r *Reports) Performance(ctx context.Context) (*PerformanceReport, error) {
	now := r.now()
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	current, err := r.checkins.CountBetween(ctx, weekAgo, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "current week checkins")
	}
	previous, err := r.checkins.CountBetween(ctx, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "previous week checkins")
	}
	currentRevenue, err := r.payments.SumPaidBetween(ctx, weekAgo, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "current week revenue")
	}
	previousRevenue, err := r.payments.SumPaidBetween(ctx, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "previous week revenue")
	}

	return &PerformanceReport{
		CurrentCheckins:     current,
		PreviousCheckins:    previous,
		CheckinVariationPct: variationPct(float64(current), float64(previous)),
		CurrentRevenue:      currentRevenue,
		PreviousRevenue:     previousRevenue,
		RevenueVariationPct: variationPct(currentRevenue.InexactFloat64(), previousRevenue.InexactFloat64()),
	}, nil
}

// variationPct follows the reporting convention: no movement when both
// windows are empty, a flat +100% when something appeared from nothing,
// otherwise the percentage change rounded to two decimals.
func variationPct(current, previous float64) float64 {
	switch {
	case current == 0 && previous == 0:
		return 0
	case previous == 0:
		return 100
	default:
		return math.Round((current-previous)/previous*100*100) / 100
	}
}

func parseDay(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
	}
	if !dayRe.MatchString(value) {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, field+" must be YYYY-MM-DD")
	}
	day, err := time.Parse(dayFormat, value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" is not a valid date")
	}
	return day, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func zeroFill(from time.Time, days int, rows []checkins.DayCount) []TrendPoint {
	byDay := make(map[string]int64, len(rows))
	for _, row := range rows {
		byDay[row.Day] = row.Count
	}

	out := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i).Format(dayFormat)
		out = append(out, TrendPoint{Day: day, Count: byDay[day]})
	}
	return out
}
