package plans

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

type stubRepo struct {
	createFn   func(ctx context.Context, dto CreatePlanDTO) (*models.MembershipPlan, error)
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
	listFn     func(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error)
	updateFn   func(ctx context.Context, id uuid.UUID, dto UpdatePlanDTO) (*models.MembershipPlan, error)
}

func (s *stubRepo) Create(ctx context.Context, dto CreatePlanDTO) (*models.MembershipPlan, error) {
	if s.createFn != nil {
		return s.createFn(ctx, dto)
	}
	return dto.ToModel(), nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error) {
	if s.listFn != nil {
		return s.listFn(ctx, activeOnly)
	}
	return nil, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, dto UpdatePlanDTO) (*models.MembershipPlan, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, dto)
	}
	return nil, gorm.ErrRecordNotFound
}

func TestCreateParsesPriceAndDefaultsCurrency(t *testing.T) {
	var captured CreatePlanDTO
	repo := &stubRepo{
		createFn: func(_ context.Context, dto CreatePlanDTO) (*models.MembershipPlan, error) {
			captured = dto
			return dto.ToModel(), nil
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	out, err := svc.Create(context.Background(), CreatePlanRequest{
		Name:         " Mensual ",
		Price:        "499.90",
		DurationDays: 30,
		Features:     []string{"area de pesas", "clases grupales"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !captured.Price.Equal(decimal.RequireFromString("499.90")) {
		t.Fatalf("price parsed wrong: %s", captured.Price)
	}
	if captured.Name != "Mensual" {
		t.Fatalf("name not trimmed: %q", captured.Name)
	}
	if out.Currency != "MXN" {
		t.Fatalf("expected MXN default, got %s", out.Currency)
	}
	if !out.IsActive {
		t.Fatal("new plans should be active")
	}
}

func TestCreateRejectsBadPrice(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubRepo{}})

	for _, price := range []string{"not-a-number", "-10"} {
		_, err := svc.Create(context.Background(), CreatePlanRequest{
			Name:         "Anual",
			Price:        price,
			DurationDays: 365,
		})
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("price %q: expected validation error, got %v", price, err)
		}
	}
}

func TestGetMapsNotFound(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubRepo{}})

	_, err := svc.Get(context.Background(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateParsesOptionalPrice(t *testing.T) {
	var captured UpdatePlanDTO
	repo := &stubRepo{
		updateFn: func(_ context.Context, _ uuid.UUID, dto UpdatePlanDTO) (*models.MembershipPlan, error) {
			captured = dto
			return &models.MembershipPlan{Currency: "MXN"}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo})

	price := "649.00"
	if _, err := svc.Update(context.Background(), uuid.New(), UpdatePlanRequest{Price: &price}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if captured.Price == nil || !captured.Price.Equal(decimal.RequireFromString("649.00")) {
		t.Fatalf("price not parsed: %+v", captured.Price)
	}
}
