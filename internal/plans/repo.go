package plans

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
)

// Repository exposes membership-plan persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a plans repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new plan and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreatePlanDTO) (*models.MembershipPlan, error) {
	plan := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

// FindByID loads a plan by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// List returns plans ordered by price, optionally restricted to active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error) {
	var out []models.MembershipPlan
	q := r.db.WithContext(ctx).Order("price ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the non-nil fields and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdatePlanDTO) (*models.MembershipPlan, error) {
	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Price != nil {
		updates["price"] = *dto.Price
	}
	if dto.DurationDays != nil {
		updates["duration_days"] = *dto.DurationDays
	}
	if dto.Features != nil {
		updates["features"] = pq.StringArray(dto.Features)
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.MembershipPlan{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}
