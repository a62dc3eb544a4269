package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// MembershipPlan is the catalog entry a membership is purchased from.
// Price edits never propagate to memberships already sold; those carry
// their own price snapshot.
type MembershipPlan struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null;uniqueIndex"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Currency     string          `gorm:"column:currency;type:varchar(3);not null;default:'MXN'"`
	DurationDays int             `gorm:"column:duration_days;not null"`
	Features     pq.StringArray  `gorm:"column:features;type:text[]"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
