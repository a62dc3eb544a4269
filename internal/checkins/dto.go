package checkins

import (
	"time"

	"github.com/google/uuid"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

// CheckinDTO is the transport shape for one ledger row.
type CheckinDTO struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	MembershipID *uuid.UUID          `json:"membership_id,omitempty"`
	Status       enums.CheckinStatus `json:"status"`
	Notes        *string             `json:"notes,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}

// CreateCheckinRequest is the payload the front desk sends when a member
// walks in.
type CreateCheckinRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Notes  *string   `json:"notes" validate:"omitempty,max=500"`
}

// ListCheckinsQuery scopes the read endpoints.
type ListCheckinsQuery struct {
	UserID *uuid.UUID
	From   *time.Time
	To     *time.Time
	Limit  int
}

func FromModel(c *models.Checkin) *CheckinDTO {
	if c == nil {
		return nil
	}
	return &CheckinDTO{
		ID:           c.ID,
		UserID:       c.UserID,
		MembershipID: c.MembershipID,
		Status:       c.Status,
		Notes:        c.Notes,
		Timestamp:    c.Timestamp,
	}
}
