package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

// Service defines the behavior needed by the plans controller.
type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (*PlanDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PlanDTO, error)
	List(ctx context.Context, activeOnly bool) ([]PlanDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdatePlanRequest) (*PlanDTO, error)
}

type repository interface {
	Create(ctx context.Context, dto CreatePlanDTO) (*models.MembershipPlan, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
	List(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error)
	Update(ctx context.Context, id uuid.UUID, dto UpdatePlanDTO) (*models.MembershipPlan, error)
}

type service struct {
	repo repository
}

// ServiceParams bundles the dependencies required to build a plans service.
type ServiceParams struct {
	Repo repository
}

// NewService constructs a plans service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("plans repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return price, nil
}

func (s *service) Create(ctx context.Context, req CreatePlanRequest) (*PlanDTO, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.Create(ctx, CreatePlanDTO{
		Name:         strings.TrimSpace(req.Name),
		Price:        price,
		Currency:     strings.ToUpper(req.Currency),
		DurationDays: req.DurationDays,
		Features:     req.Features,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "membership_plans_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "plan name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create plan")
	}
	return FromModel(plan), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PlanDTO, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup plan")
	}
	return FromModel(plan), nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]PlanDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}
	out := make([]PlanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdatePlanRequest) (*PlanDTO, error) {
	dto := UpdatePlanDTO{
		DurationDays: req.DurationDays,
		Features:     req.Features,
		IsActive:     req.IsActive,
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		dto.Name = &trimmed
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		dto.Price = &price
	}

	plan, err := s.repo.Update(ctx, id, dto)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		if db.IsUniqueViolation(err, "membership_plans_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "plan name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plan")
	}
	return FromModel(plan), nil
}
