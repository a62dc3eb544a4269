package memberships

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a memberships repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new membership and returns the persisted model.
func (r *Repository) Create(ctx context.Context, membership *models.Membership) (*models.Membership, error) {
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// FindByID loads a membership with its plan preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	if err := r.db.WithContext(ctx).Preload("Plan").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns memberships matching the query, newest end date first.
func (r *Repository) List(ctx context.Context, query ListMembershipsQuery) ([]models.Membership, error) {
	q := r.db.WithContext(ctx).Preload("Plan").Order("end_date DESC")
	if query.UserID != nil {
		q = q.Where("user_id = ?", *query.UserID)
	}
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.ActiveOnly {
		q = q.Where("status = ?", enums.MembershipStatusActive)
	}

	var out []models.Membership
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindLatestActive returns the user's ACTIVE membership with the furthest
// end date, or gorm.ErrRecordNotFound when none exists.
func (r *Repository) FindLatestActive(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.MembershipStatusActive).
		Order("end_date DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Extend pushes the end date forward and forces the membership ACTIVE.
func (r *Repository) Extend(ctx context.Context, id uuid.UUID, newEndDate time.Time) (*models.Membership, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"end_date": newEndDate,
			"status":   enums.MembershipStatusActive,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// UpdateStatus transitions a membership to the provided status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) (*models.Membership, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// CountByStatus counts memberships currently in the given status.
func (r *Repository) CountByStatus(ctx context.Context, status enums.MembershipStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountActiveExpiringBetween counts ACTIVE memberships whose end date
// falls inside [from, to).
func (r *Repository) CountActiveExpiringBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("status = ? AND end_date >= ? AND end_date < ?", enums.MembershipStatusActive, from, to).
		Count(&count).Error
	return count, err
}

// ExpireAllBefore flips every ACTIVE membership whose end date passed the
// cutoff to EXPIRED and reports how many rows changed.
func (r *Repository) ExpireAllBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("status = ? AND end_date < ?", enums.MembershipStatusActive, cutoff).
		Update("status", enums.MembershipStatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
