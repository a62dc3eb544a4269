package memberships

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

// Actor identifies who is calling the service so list results can be
// scoped. Clients only ever see their own active memberships.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Service defines the behavior needed by the memberships controller and
// the expiry sweep job.
type Service interface {
	Create(ctx context.Context, req CreateMembershipRequest) (*MembershipDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*MembershipDTO, error)
	List(ctx context.Context, actor Actor, query ListMembershipsQuery) ([]MembershipDTO, error)
	Renew(ctx context.Context, id uuid.UUID, req RenewMembershipRequest) (*MembershipDTO, error)
	Cancel(ctx context.Context, id uuid.UUID) (*MembershipDTO, error)
	Freeze(ctx context.Context, id uuid.UUID) (*MembershipDTO, error)
	Unfreeze(ctx context.Context, id uuid.UUID) (*MembershipDTO, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type repository interface {
	Create(ctx context.Context, membership *models.Membership) (*models.Membership, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	List(ctx context.Context, query ListMembershipsQuery) ([]models.Membership, error)
	Extend(ctx context.Context, id uuid.UUID, newEndDate time.Time) (*models.Membership, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) (*models.Membership, error)
	ExpireAllBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type planFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
}

type service struct {
	repo  repository
	plans planFinder
	now   func() time.Time
}

// ServiceParams bundles the dependencies required to build a memberships service.
type ServiceParams struct {
	Repo     repository
	PlanRepo planFinder
	Now      func() time.Time
}

// NewService constructs a memberships service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.PlanRepo == nil {
		return nil, fmt.Errorf("plans repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, plans: params.PlanRepo, now: now}, nil
}

// Create enrolls the user into the plan. The end date is derived from the
// plan duration and the price is snapshotted so later plan edits do not
// reprice sold memberships.
func (s *service) Create(ctx context.Context, req CreateMembershipRequest) (*MembershipDTO, error) {
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup plan")
	}
	if !plan.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan is no longer offered")
	}

	start := s.now().UTC()
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}
	end := start.AddDate(0, 0, plan.DurationDays)

	currency := plan.Currency
	if currency == "" {
		currency = "MXN"
	}

	planID := plan.ID
	membership, err := s.repo.Create(ctx, &models.Membership{
		UserID:        req.UserID,
		PlanID:        &planID,
		Status:        enums.MembershipStatusActive,
		StartDate:     start,
		EndDate:       end,
		PriceSnapshot: plan.Price,
		Currency:      currency,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
	}
	membership.Plan = plan
	return FromModel(membership), nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*MembershipDTO, error) {
	membership, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}
	if actor.Role == enums.RoleClient && membership.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return FromModel(membership), nil
}

// List scopes results by role: clients are pinned to their own active
// memberships regardless of the query they send.
func (s *service) List(ctx context.Context, actor Actor, query ListMembershipsQuery) ([]MembershipDTO, error) {
	if actor.Role == enums.RoleClient {
		userID := actor.UserID
		query = ListMembershipsQuery{UserID: &userID, ActiveOnly: true}
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list memberships")
	}
	out := make([]MembershipDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Renew extends the end date by the requested days and reactivates the
// membership even when it had already expired.
func (s *service) Renew(ctx context.Context, id uuid.UUID, req RenewMembershipRequest) (*MembershipDTO, error) {
	if req.ExtraDays <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "extra_days must be positive")
	}

	membership, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}

	newEnd := membership.EndDate.AddDate(0, 0, req.ExtraDays)
	renewed, err := s.repo.Extend(ctx, id, newEnd)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "renew membership")
	}
	return FromModel(renewed), nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*MembershipDTO, error) {
	membership, err := s.repo.UpdateStatus(ctx, id, enums.MembershipStatusCancelled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel membership")
	}
	return FromModel(membership), nil
}

// Freeze pauses an ACTIVE membership. The end date is untouched, so a
// freeze does not buy extra days.
func (s *service) Freeze(ctx context.Context, id uuid.UUID) (*MembershipDTO, error) {
	return s.transition(ctx, id, enums.MembershipStatusActive, enums.MembershipStatusFrozen)
}

// Unfreeze puts a FROZEN membership back in play. The admission gate
// still re-checks the end date, so unfreezing a lapsed membership does
// not open the door.
func (s *service) Unfreeze(ctx context.Context, id uuid.UUID) (*MembershipDTO, error) {
	return s.transition(ctx, id, enums.MembershipStatusFrozen, enums.MembershipStatusActive)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, from, to enums.MembershipStatus) (*MembershipDTO, error) {
	membership, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}
	if membership.Status != from {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("membership is %s, expected %s", membership.Status, from))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update membership status")
	}
	return FromModel(updated), nil
}

// ExpireDue sweeps every ACTIVE membership past its end date.
func (s *service) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.ExpireAllBefore(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire memberships")
	}
	return count, nil
}
