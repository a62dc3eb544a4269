package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rodrigofuentes/gympulse-backend/internal/payments"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

const (
	revenueTrendDays  = 14
	revenueWindowDays = 30
)

// FinanceSummary is the headline revenue view.
type FinanceSummary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	DailyRevenue  decimal.Decimal `json:"daily_revenue"`
	WeeklyRevenue decimal.Decimal `json:"weekly_revenue"`
}

// RevenuePoint is one day of the revenue trend.
type RevenuePoint struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
}

// FinanceDashboard is the combined payload for the finance view.
type FinanceDashboard struct {
	Summary  FinanceSummary           `json:"summary"`
	Trend    []RevenuePoint           `json:"trend"`
	ByMethod []payments.MethodRevenue `json:"by_method"`
	ByPlan   []payments.PlanRevenue   `json:"by_plan"`
}

type revenueAggregator interface {
	SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	RevenueByDay(ctx context.Context, from, to time.Time) ([]payments.DayRevenue, error)
	RevenueByMethod(ctx context.Context, from, to time.Time) ([]payments.MethodRevenue, error)
	RevenueByPlan(ctx context.Context, from, to time.Time) ([]payments.PlanRevenue, error)
}

// Finance serves the revenue reports. PAID payments only; pending and
// refunded rows never count.
type Finance struct {
	payments revenueAggregator
	now      func() time.Time
}

// FinanceParams bundles the dependencies required to build the finance service.
type FinanceParams struct {
	PaymentRepo revenueAggregator
	Now         func() time.Time
}

// NewFinance constructs the finance service.
func NewFinance(params FinanceParams) (*Finance, error) {
	if params.PaymentRepo == nil {
		return nil, fmt.Errorf("payments repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Finance{payments: params.PaymentRepo, now: now}, nil
}

// Summary totals PAID revenue all-time, since local midnight, and over
// the trailing 7 days.
func (f *Finance) Summary(ctx context.Context) (*FinanceSummary, error) {
	now := f.now()
	epoch := time.Unix(0, 0)

	total, err := f.payments.SumPaidBetween(ctx, epoch, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "total revenue")
	}
	daily, err := f.payments.SumPaidBetween(ctx, startOfDay(now), now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "daily revenue")
	}
	weekly, err := f.payments.SumPaidBetween(ctx, now.AddDate(0, 0, -7), now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "weekly revenue")
	}

	return &FinanceSummary{TotalRevenue: total, DailyRevenue: daily, WeeklyRevenue: weekly}, nil
}

// RevenueTrend returns the last 14 days of PAID revenue, ascending and
// zero-filled, today included.
func (f *Finance) RevenueTrend(ctx context.Context) ([]RevenuePoint, error) {
	now := f.now()
	startOfToday := startOfDay(now)
	from := startOfToday.AddDate(0, 0, -(revenueTrendDays - 1))
	to := startOfToday.AddDate(0, 0, 1)

	rows, err := f.payments.RevenueByDay(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revenue trend")
	}

	byDay := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		byDay[row.Day] = row.Total
	}

	out := make([]RevenuePoint, 0, revenueTrendDays)
	for i := 0; i < revenueTrendDays; i++ {
		day := from.AddDate(0, 0, i).Format(dayFormat)
		out = append(out, RevenuePoint{Day: day, Total: byDay[day]})
	}
	return out, nil
}

// RevenueByMethod aggregates the trailing 30 days per payment method.
func (f *Finance) RevenueByMethod(ctx context.Context) ([]payments.MethodRevenue, error) {
	now := f.now()
	rows, err := f.payments.RevenueByMethod(ctx, now.AddDate(0, 0, -revenueWindowDays), now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revenue by method")
	}
	return rows, nil
}

// RevenueByPlan aggregates the trailing 30 days per membership plan.
func (f *Finance) RevenueByPlan(ctx context.Context) ([]payments.PlanRevenue, error) {
	now := f.now()
	rows, err := f.payments.RevenueByPlan(ctx, now.AddDate(0, 0, -revenueWindowDays), now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revenue by plan")
	}
	return rows, nil
}

// Dashboard assembles the combined finance payload.
func (f *Finance) Dashboard(ctx context.Context) (*FinanceDashboard, error) {
	summary, err := f.Summary(ctx)
	if err != nil {
		return nil, err
	}
	trend, err := f.RevenueTrend(ctx)
	if err != nil {
		return nil, err
	}
	byMethod, err := f.RevenueByMethod(ctx)
	if err != nil {
		return nil, err
	}
	byPlan, err := f.RevenueByPlan(ctx)
	if err != nil {
		return nil, err
	}

	return &FinanceDashboard{
		Summary:  *summary,
		Trend:    trend,
		ByMethod: byMethod,
		ByPlan:   byPlan,
	}, nil
}
