package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

// Checkin is one row in the append-only admission ledger. MembershipID is
// nil when entry was denied for lack of an active membership. Rows are
// never updated or deleted.
type Checkin struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	MembershipID *uuid.UUID          `gorm:"column:membership_id;type:uuid"`
	Status       enums.CheckinStatus `gorm:"column:status;type:text;not null"`
	Notes        *string             `gorm:"column:notes"`
	Timestamp    time.Time           `gorm:"column:timestamp;not null;autoCreateTime;index"`

	Membership *Membership `gorm:"foreignKey:MembershipID"`
}
