package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

// PaymentDTO is the transport shape for a payment row.
type PaymentDTO struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	MembershipID uuid.UUID           `json:"membership_id"`
	Amount       decimal.Decimal     `json:"amount"`
	Currency     string              `json:"currency"`
	Method       enums.PaymentMethod `json:"method"`
	Status       enums.PaymentStatus `json:"status"`
	PaidAt       *time.Time          `json:"paid_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// CreatePaymentRequest records money taken for a membership. Status
// defaults to PAID since front desk collects on the spot.
type CreatePaymentRequest struct {
	UserID       uuid.UUID `json:"user_id" validate:"required"`
	MembershipID uuid.UUID `json:"membership_id" validate:"required"`
	Amount       string    `json:"amount" validate:"required"`
	Currency     string    `json:"currency" validate:"omitempty,len=3"`
	Method       string    `json:"method" validate:"required,oneof=CASH CARD TRANSFER STRIPE"`
	Status       string    `json:"status" validate:"omitempty,oneof=PENDING PAID FAILED REFUNDED"`
}

// ListPaymentsQuery scopes the list endpoint.
type ListPaymentsQuery struct {
	UserID *uuid.UUID
	Status *enums.PaymentStatus
	From   *time.Time
	To     *time.Time
}

func FromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:           p.ID,
		UserID:       p.UserID,
		MembershipID: p.MembershipID,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Method:       p.Method,
		Status:       p.Status,
		PaidAt:       p.PaidAt,
		CreatedAt:    p.CreatedAt,
	}
}
