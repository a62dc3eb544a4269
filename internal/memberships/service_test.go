package memberships

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

type stubRepo struct {
	createFn   func(ctx context.Context, m *models.Membership) (*models.Membership, error)
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	listFn     func(ctx context.Context, query ListMembershipsQuery) ([]models.Membership, error)
	extendFn   func(ctx context.Context, id uuid.UUID, newEnd time.Time) (*models.Membership, error)
	statusFn   func(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) (*models.Membership, error)
	expireFn   func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (s *stubRepo) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	if s.createFn != nil {
		return s.createFn(ctx, m)
	}
	m.ID = uuid.New()
	return m, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, query ListMembershipsQuery) ([]models.Membership, error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return nil, nil
}

func (s *stubRepo) Extend(ctx context.Context, id uuid.UUID, newEnd time.Time) (*models.Membership, error) {
	if s.extendFn != nil {
		return s.extendFn(ctx, id, newEnd)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) (*models.Membership, error) {
	if s.statusFn != nil {
		return s.statusFn(ctx, id, status)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ExpireAllBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.expireFn != nil {
		return s.expireFn(ctx, cutoff)
	}
	return 0, nil
}

type stubPlanRepo struct {
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
}

func (s *stubPlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func monthlyPlan() *models.MembershipPlan {
	return &models.MembershipPlan{
		ID:           uuid.New(),
		Name:         "Mensual",
		Price:        decimal.RequireFromString("499.90"),
		Currency:     "MXN",
		DurationDays: 30,
		IsActive:     true,
	}
}

func TestCreateSnapshotsPlanPriceAndDerivesEndDate(t *testing.T) {
	plan := monthlyPlan()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	var captured *models.Membership
	repo := &stubRepo{
		createFn: func(_ context.Context, m *models.Membership) (*models.Membership, error) {
			captured = m
			m.ID = uuid.New()
			return m, nil
		},
	}
	planRepo := &stubPlanRepo{
		findByIDFn: func(context.Context, uuid.UUID) (*models.MembershipPlan, error) {
			return plan, nil
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo, PlanRepo: planRepo, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	userID := uuid.New()
	out, err := svc.Create(context.Background(), CreateMembershipRequest{UserID: userID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	wantEnd := now.AddDate(0, 0, 30)
	if !captured.EndDate.Equal(wantEnd) {
		t.Fatalf("end date: want %v got %v", wantEnd, captured.EndDate)
	}
	if !captured.PriceSnapshot.Equal(plan.Price) {
		t.Fatalf("price snapshot: want %s got %s", plan.Price, captured.PriceSnapshot)
	}
	if captured.Status != enums.MembershipStatusActive {
		t.Fatalf("status: %s", captured.Status)
	}
	if out.Plan == nil || out.Plan.ID != plan.ID {
		t.Fatal("plan not attached to response")
	}

	// later plan edits must not touch the sold membership
	plan.Price = decimal.RequireFromString("999.00")
	if !captured.PriceSnapshot.Equal(decimal.RequireFromString("499.90")) {
		t.Fatal("price snapshot followed plan edit")
	}
}

func TestCreateRejectsInactivePlan(t *testing.T) {
	plan := monthlyPlan()
	plan.IsActive = false
	planRepo := &stubPlanRepo{
		findByIDFn: func(context.Context, uuid.UUID) (*models.MembershipPlan, error) {
			return plan, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: &stubRepo{}, PlanRepo: planRepo})

	_, err := svc.Create(context.Background(), CreateMembershipRequest{UserID: uuid.New(), PlanID: plan.ID})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenewExtendsFromCurrentEndDate(t *testing.T) {
	id := uuid.New()
	end := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	var extendedTo time.Time
	repo := &stubRepo{
		findByIDFn: func(context.Context, uuid.UUID) (*models.Membership, error) {
			return &models.Membership{ID: id, EndDate: end, Status: enums.MembershipStatusExpired}, nil
		},
		extendFn: func(_ context.Context, _ uuid.UUID, newEnd time.Time) (*models.Membership, error) {
			extendedTo = newEnd
			return &models.Membership{ID: id, EndDate: newEnd, Status: enums.MembershipStatusActive}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo, PlanRepo: &stubPlanRepo{}})

	out, err := svc.Renew(context.Background(), id, RenewMembershipRequest{ExtraDays: 15})
	if err != nil {
		t.Fatalf("Renew: %v", err)
	}
	if want := end.AddDate(0, 0, 15); !extendedTo.Equal(want) {
		t.Fatalf("extended to %v, want %v", extendedTo, want)
	}
	if out.Status != enums.MembershipStatusActive {
		t.Fatalf("renew should reactivate, got %s", out.Status)
	}
}

func TestListPinsClientsToOwnActiveRows(t *testing.T) {
	clientID := uuid.New()
	var captured ListMembershipsQuery
	repo := &stubRepo{
		listFn: func(_ context.Context, query ListMembershipsQuery) ([]models.Membership, error) {
			captured = query
			return nil, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo, PlanRepo: &stubPlanRepo{}})

	otherUser := uuid.New()
	_, err := svc.List(context.Background(), Actor{UserID: clientID, Role: enums.RoleClient}, ListMembershipsQuery{UserID: &otherUser})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if captured.UserID == nil || *captured.UserID != clientID {
		t.Fatalf("client query not pinned to own id: %+v", captured.UserID)
	}
	if !captured.ActiveOnly {
		t.Fatal("client query should be active-only")
	}
}

func TestGetHidesForeignMembershipFromClients(t *testing.T) {
	repo := &stubRepo{
		findByIDFn: func(context.Context, uuid.UUID) (*models.Membership, error) {
			return &models.Membership{ID: uuid.New(), UserID: uuid.New()}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo, PlanRepo: &stubPlanRepo{}})

	_, err := svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.RoleClient}, uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExpireDuePassesCutoff(t *testing.T) {
	now := time.Date(2025, 9, 1, 6, 0, 0, 0, time.UTC)
	var cutoff time.Time
	repo := &stubRepo{
		expireFn: func(_ context.Context, c time.Time) (int64, error) {
			cutoff = c
			return 3, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo, PlanRepo: &stubPlanRepo{}})

	count, err := svc.ExpireDue(context.Background(), now)
	if err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}
	if count != 3 {
		t.Fatalf("count: %d", count)
	}
	if !cutoff.Equal(now) {
		t.Fatalf("cutoff: %v", cutoff)
	}
}

func TestFreezeRequiresActiveStatus(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{
		findByIDFn: func(context.Context, uuid.UUID) (*models.Membership, error) {
			return &models.Membership{ID: id, Status: enums.MembershipStatusActive}, nil
		},
		statusFn: func(_ context.Context, _ uuid.UUID, status enums.MembershipStatus) (*models.Membership, error) {
			return &models.Membership{ID: id, Status: status}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo, PlanRepo: &stubPlanRepo{}})

	out, err := svc.Freeze(context.Background(), id)
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if out.Status != enums.MembershipStatusFrozen {
		t.Fatalf("status: %s", out.Status)
	}

	repo.findByIDFn = func(context.Context, uuid.UUID) (*models.Membership, error) {
		return &models.Membership{ID: id, Status: enums.MembershipStatusCancelled}, nil
	}
	_, err = svc.Freeze(context.Background(), id)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnfreezeOnlyFromFrozen(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{
		findByIDFn: func(context.Context, uuid.UUID) (*models.Membership, error) {
			return &models.Membership{ID: id, Status: enums.MembershipStatusFrozen}, nil
		},
		statusFn: func(_ context.Context, _ uuid.UUID, status enums.MembershipStatus) (*models.Membership, error) {
			return &models.Membership{ID: id, Status: status}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo, PlanRepo: &stubPlanRepo{}})

	out, err := svc.Unfreeze(context.Background(), id)
	if err != nil {
		t.Fatalf("Unfreeze: %v", err)
	}
	if out.Status != enums.MembershipStatusActive {
		t.Fatalf("status: %s", out.Status)
	}

	repo.findByIDFn = func(context.Context, uuid.UUID) (*models.Membership, error) {
		return &models.Membership{ID: id, Status: enums.MembershipStatusActive}, nil
	}
	_, err = svc.Unfreeze(context.Background(), id)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
