package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

// Service defines the behavior needed by the payments controller.
type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (*PaymentDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PaymentDTO, error)
	List(ctx context.Context, query ListPaymentsQuery) ([]PaymentDTO, error)
}

type repository interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, query ListPaymentsQuery) ([]models.Payment, error)
}

type membershipFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
}

type service struct {
	repo        repository
	memberships membershipFinder
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build a payments service.
type ServiceParams struct {
	Repo           repository
	MembershipRepo membershipFinder
	Now            func() time.Time
}

// NewService constructs a payments service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository is required")
	}
	if params.MembershipRepo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, memberships: params.MembershipRepo, now: now}, nil
}

func (s *service) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentDTO, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	method, err := enums.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid method")
	}

	status := enums.PaymentStatusPaid
	if req.Status != "" {
		status, err = enums.ParsePaymentStatus(req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
	}

	membership, err := s.memberships.FindByID(ctx, req.MembershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}
	if membership.UserID != req.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "membership does not belong to user")
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = membership.Currency
	}
	if currency == "" {
		currency = "MXN"
	}

	payment := &models.Payment{
		UserID:       req.UserID,
		MembershipID: req.MembershipID,
		Amount:       amount,
		Currency:     currency,
		Method:       method,
		Status:       status,
	}
	if status == enums.PaymentStatusPaid {
		paidAt := s.now().UTC()
		payment.PaidAt = &paidAt
	}

	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PaymentDTO, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup payment")
	}
	return FromModel(payment), nil
}

func (s *service) List(ctx context.Context, query ListPaymentsQuery) ([]PaymentDTO, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
