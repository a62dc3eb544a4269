package checkins

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
)

const defaultListLimit = 100

// DayCount is one bucket of a per-day series.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// HourCount is one bucket of a per-hour series.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// Repository exposes the append-only ledger plus the aggregate reads
// the dashboard is built on.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a checkins repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends one row to the ledger.
func (r *Repository) Create(ctx context.Context, checkin *models.Checkin) (*models.Checkin, error) {
	if err := r.db.WithContext(ctx).Create(checkin).Error; err != nil {
		return nil, err
	}
	return checkin, nil
}

// List returns ledger rows matching the query, newest first, capped at 100.
func (r *Repository) List(ctx context.Context, query ListCheckinsQuery) ([]models.Checkin, error) {
	limit := query.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	q := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit)
	if query.UserID != nil {
		q = q.Where("user_id = ?", *query.UserID)
	}
	if query.From != nil {
		q = q.Where("timestamp >= ?", *query.From)
	}
	if query.To != nil {
		q = q.Where("timestamp < ?", *query.To)
	}

	var out []models.Checkin
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountSince counts ledger rows with a timestamp at or after the cutoff.
func (r *Repository) CountSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Checkin{}).
		Where("timestamp >= ?", cutoff).
		Count(&count).Error
	return count, err
}

// CountBetween counts ledger rows inside [from, to).
func (r *Repository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Checkin{}).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Count(&count).Error
	return count, err
}

// CountByDay buckets ledger rows per calendar day inside [from, to).
// Empty days are absent; callers zero-fill.
func (r *Repository) CountByDay(ctx context.Context, from, to time.Time) ([]DayCount, error) {
	var rows []DayCount
	err := r.db.WithContext(ctx).
		Model(&models.Checkin{}).
		Select("to_char(timestamp, 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByHour buckets ledger rows per hour-of-day inside [from, to).
func (r *Repository) CountByHour(ctx context.Context, from, to time.Time) ([]HourCount, error) {
	var rows []HourCount
	err := r.db.WithContext(ctx).
		Model(&models.Checkin{}).
		Select("EXTRACT(HOUR FROM timestamp)::int AS hour, COUNT(*) AS count").
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Group("hour").
		Order("hour ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUser returns one user's history, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Checkin, error) {
	return r.List(ctx, ListCheckinsQuery{UserID: &userID, Limit: limit})
}
