package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

// Membership grants a user access to the facility for a date window.
// PriceSnapshot is copied from the plan at purchase time and stays put
// even if the plan price changes later.
type Membership struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	PlanID        *uuid.UUID             `gorm:"column:plan_id;type:uuid;index"`
	Status        enums.MembershipStatus `gorm:"column:status;type:text;not null;default:'ACTIVE';index"`
	StartDate     time.Time              `gorm:"column:start_date;not null"`
	EndDate       time.Time              `gorm:"column:end_date;not null;index"`
	PriceSnapshot decimal.Decimal        `gorm:"column:price_snapshot;type:numeric(10,2);not null"`
	Currency      string                 `gorm:"column:currency;type:varchar(3);not null;default:'MXN'"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`

	Plan *MembershipPlan `gorm:"foreignKey:PlanID"`
}
