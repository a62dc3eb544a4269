package memberships

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rodrigofuentes/gympulse-backend/internal/plans"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a membership row.
type MembershipDTO struct {
	ID            uuid.UUID              `json:"id"`
	UserID        uuid.UUID              `json:"user_id"`
	PlanID        *uuid.UUID             `json:"plan_id,omitempty"`
	Status        enums.MembershipStatus `json:"status"`
	StartDate     time.Time              `json:"start_date"`
	EndDate       time.Time              `json:"end_date"`
	PriceSnapshot decimal.Decimal        `json:"price_snapshot"`
	Currency      string                 `json:"currency"`
	Plan          *plans.PlanDTO         `json:"plan,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// CreateMembershipRequest enrolls a user into a plan. StartDate defaults
// to now when omitted.
type CreateMembershipRequest struct {
	UserID    uuid.UUID  `json:"user_id" validate:"required"`
	PlanID    uuid.UUID  `json:"plan_id" validate:"required"`
	StartDate *time.Time `json:"start_date"`
}

// RenewMembershipRequest extends an existing membership.
type RenewMembershipRequest struct {
	ExtraDays int `json:"extra_days" validate:"required,gt=0"`
}

// ListMembershipsQuery scopes the list endpoint.
type ListMembershipsQuery struct {
	UserID     *uuid.UUID
	Status     *enums.MembershipStatus
	ActiveOnly bool
}

func FromModel(m *models.Membership) *MembershipDTO {
	if m == nil {
		return nil
	}
	return &MembershipDTO{
		ID:            m.ID,
		UserID:        m.UserID,
		PlanID:        m.PlanID,
		Status:        m.Status,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		PriceSnapshot: m.PriceSnapshot,
		Currency:      m.Currency,
		Plan:          plans.FromModel(m.Plan),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
