package plans

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
)

// PlanDTO is the catalog entry shape returned to clients.
type PlanDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	DurationDays int             `json:"duration_days"`
	Features     []string        `json:"features"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreatePlanRequest is the payload accepted by the create endpoint.
type CreatePlanRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=120"`
	Price        string   `json:"price" validate:"required"`
	Currency     string   `json:"currency" validate:"omitempty,len=3"`
	DurationDays int      `json:"duration_days" validate:"required,gt=0"`
	Features     []string `json:"features" validate:"omitempty,dive,min=1"`
}

// UpdatePlanRequest carries optional overrides; absent fields are left alone.
type UpdatePlanRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Price        *string  `json:"price"`
	DurationDays *int     `json:"duration_days" validate:"omitempty,gt=0"`
	Features     []string `json:"features"`
	IsActive     *bool    `json:"is_active"`
}

func FromModel(p *models.MembershipPlan) *PlanDTO {
	if p == nil {
		return nil
	}
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}
	return &PlanDTO{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Currency:     p.Currency,
		DurationDays: p.DurationDays,
		Features:     features,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// UpdatePlanDTO carries typed field overrides for the repo layer.
type UpdatePlanDTO struct {
	Name         *string
	Price        *decimal.Decimal
	DurationDays *int
	Features     []string
	IsActive     *bool
}

// CreatePlanDTO holds the data required by the repo to persist a new plan.
type CreatePlanDTO struct {
	Name         string
	Price        decimal.Decimal
	Currency     string
	DurationDays int
	Features     []string
}

func (c CreatePlanDTO) ToModel() *models.MembershipPlan {
	currency := c.Currency
	if currency == "" {
		currency = "MXN"
	}
	return &models.MembershipPlan{
		Name:         c.Name,
		Price:        c.Price,
		Currency:     currency,
		DurationDays: c.DurationDays,
		Features:     pq.StringArray(c.Features),
		IsActive:     true,
	}
}
