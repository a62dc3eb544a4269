package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

// DayRevenue is one bucket of the revenue trend.
type DayRevenue struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
}

// MethodRevenue aggregates paid revenue per payment method.
type MethodRevenue struct {
	Method enums.PaymentMethod `json:"method"`
	Total  decimal.Decimal     `json:"total"`
	Count  int64               `json:"count"`
}

// PlanRevenue aggregates paid revenue per membership plan.
type PlanRevenue struct {
	PlanID   *uuid.UUID      `json:"plan_id"`
	PlanName string          `json:"plan_name"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// Repository exposes payment persistence and revenue aggregates.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a payments repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new payment and returns the persisted model.
func (r *Repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// FindByID loads a payment by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns payments matching the query, newest first.
func (r *Repository) List(ctx context.Context, query ListPaymentsQuery) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if query.UserID != nil {
		q = q.Where("user_id = ?", *query.UserID)
	}
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.From != nil {
		q = q.Where("created_at >= ?", *query.From)
	}
	if query.To != nil {
		q = q.Where("created_at < ?", *query.To)
	}

	var out []models.Payment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SumPaidBetween totals PAID revenue inside [from, to).
func (r *Repository) SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", enums.PaymentStatusPaid, from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// RevenueByDay buckets PAID revenue per calendar day inside [from, to).
// Days without payments are absent; callers zero-fill.
func (r *Repository) RevenueByDay(ctx context.Context, from, to time.Time) ([]DayRevenue, error) {
	var rows []DayRevenue
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("to_char(paid_at, 'YYYY-MM-DD') AS day, SUM(amount) AS total").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", enums.PaymentStatusPaid, from, to).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RevenueByMethod aggregates PAID revenue per method inside [from, to).
func (r *Repository) RevenueByMethod(ctx context.Context, from, to time.Time) ([]MethodRevenue, error) {
	var rows []MethodRevenue
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("method, SUM(amount) AS total, COUNT(*) AS count").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", enums.PaymentStatusPaid, from, to).
		Group("method").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RevenueByPlan aggregates PAID revenue per plan inside [from, to).
// Memberships whose plan was deleted land in the "(sin plan)" bucket.
func (r *Repository) RevenueByPlan(ctx context.Context, from, to time.Time) ([]PlanRevenue, error) {
	var rows []PlanRevenue
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("memberships.plan_id AS plan_id, COALESCE(membership_plans.name, '(sin plan)') AS plan_name, SUM(payments.amount) AS total, COUNT(*) AS count").
		Joins("JOIN memberships ON memberships.id = payments.membership_id").
		Joins("LEFT JOIN membership_plans ON membership_plans.id = memberships.plan_id").
		Where("payments.status = ? AND payments.paid_at >= ? AND payments.paid_at < ?", enums.PaymentStatusPaid, from, to).
		Group("memberships.plan_id, membership_plans.name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
