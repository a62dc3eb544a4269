package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

// Payment records money collected for a membership. Append-mostly; the
// reporting layer only ever aggregates these rows.
type Payment struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	MembershipID uuid.UUID           `gorm:"column:membership_id;type:uuid;not null;index"`
	Amount       decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Currency     string              `gorm:"column:currency;type:varchar(3);not null;default:'MXN'"`
	Method       enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status       enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'PENDING';index"`
	PaidAt       *time.Time          `gorm:"column:paid_at;index"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
