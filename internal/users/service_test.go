package users

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
)

type stubRepo struct {
	createFn   func(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.User, error)
	listFn     func(ctx context.Context, limit, offset int) ([]models.User, error)
	updateFn   func(ctx context.Context, id uuid.UUID, dto UpdateUserDTO) (*models.User, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) error
}

func (s *stubRepo) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	if s.createFn != nil {
		return s.createFn(ctx, dto)
	}
	return dto.ToModel(), nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, dto UpdateUserDTO) (*models.User, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, dto)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestServiceCreateNormalizesAndHashes(t *testing.T) {
	var captured CreateUserDTO
	repo := &stubRepo{
		createFn: func(_ context.Context, dto CreateUserDTO) (*models.User, error) {
			captured = dto
			return dto.ToModel(), nil
		},
	}
	svc, err := NewService(ServiceParams{Repo: repo, PasswordConfig: testPasswordConfig()})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	out, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "  Front.Desk@GymPulse.MX ",
		Name:     "  Paola Rivas ",
		Password: "super-secret-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if captured.Email != "front.desk@gympulse.mx" {
		t.Fatalf("email not normalized: %q", captured.Email)
	}
	if captured.Name != "Paola Rivas" {
		t.Fatalf("name not trimmed: %q", captured.Name)
	}
	if captured.PasswordHash == "" || captured.PasswordHash == "super-secret-1" {
		t.Fatalf("password was not hashed")
	}
	if !strings.HasPrefix(captured.PasswordHash, "$argon2id$") {
		t.Fatalf("unexpected hash format %q", captured.PasswordHash)
	}
	if out.Role != enums.RoleClient {
		t.Fatalf("expected default role CLIENT, got %s", out.Role)
	}
}

func TestServiceCreateRejectsUnknownRole(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubRepo{}, PasswordConfig: testPasswordConfig()})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "a@b.mx",
		Name:     "Someone",
		Password: "super-secret-1",
		Role:     "JANITOR",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceGetMapsNotFound(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubRepo{}, PasswordConfig: testPasswordConfig()})

	_, err := svc.Get(context.Background(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceUpdateRehashesPassword(t *testing.T) {
	var captured UpdateUserDTO
	id := uuid.New()
	repo := &stubRepo{
		updateFn: func(_ context.Context, _ uuid.UUID, dto UpdateUserDTO) (*models.User, error) {
			captured = dto
			return &models.User{ID: id, Email: "a@b.mx", Role: enums.RoleClient}, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo, PasswordConfig: testPasswordConfig()})

	newPassword := "another-secret-1"
	if _, err := svc.Update(context.Background(), id, UpdateUserRequest{Password: &newPassword}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if captured.PasswordHash == nil || !strings.HasPrefix(*captured.PasswordHash, "$argon2id$") {
		t.Fatalf("password not rehashed: %+v", captured.PasswordHash)
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error when repo is missing")
	}
}
