package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rodrigofuentes/gympulse-backend/internal/users"
	pkgauth "github.com/rodrigofuentes/gympulse-backend/pkg/auth"
	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
	pkgerrors "github.com/rodrigofuentes/gympulse-backend/pkg/errors"
	"github.com/rodrigofuentes/gympulse-backend/pkg/security"
)

type stubUserRepo struct {
	createFn      func(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	findByEmailFn func(ctx context.Context, email string) (*models.User, error)
	lastLoginFn   func(ctx context.Context, id uuid.UUID, at time.Time) error
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createFn != nil {
		return s.createFn(ctx, dto)
	}
	m := dto.ToModel()
	m.ID = uuid.New()
	return m, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findByEmailFn != nil {
		return s.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.lastLoginFn != nil {
		return s.lastLoginFn(ctx, id, at)
	}
	return nil
}

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	return config.JWTConfig{
			Secret:            "secret",
			Issuer:            "gympulse",
			ExpirationMinutes: 30,
		}, config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		}
}

func TestRegisterIssuesClientToken(t *testing.T) {
	jwtCfg, pwCfg := testConfigs()
	stamped := false
	repo := &stubUserRepo{
		lastLoginFn: func(context.Context, uuid.UUID, time.Time) error {
			stamped = true
			return nil
		},
	}
	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: jwtCfg, PasswordConfig: pwCfg})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "New.Member@GymPulse.MX",
		Name:     "New Member",
		Password: "super-secret-1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if resp.User.Email != "new.member@gympulse.mx" {
		t.Fatalf("email not normalized: %q", resp.User.Email)
	}
	if resp.User.Role != enums.RoleClient {
		t.Fatalf("expected CLIENT role, got %s", resp.User.Role)
	}
	if !stamped {
		t.Fatal("expected last login stamp")
	}

	claims, err := pkgauth.ParseAccessToken(jwtCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.RoleClient || claims.Email != resp.User.Email {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	jwtCfg, pwCfg := testConfigs()
	hash, err := security.HashPassword("right-password", pwCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	stored := &models.User{
		ID:           uuid.New(),
		Email:        "member@gympulse.mx",
		Name:         "Member",
		PasswordHash: hash,
		Role:         enums.RoleStaff,
		IsActive:     true,
	}
	repo := &stubUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email != stored.Email {
				return nil, gorm.ErrRecordNotFound
			}
			return stored, nil
		},
	}
	svc, _ := NewService(ServiceParams{UserRepo: repo, JWTConfig: jwtCfg, PasswordConfig: pwCfg})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " Member@GymPulse.MX ", Password: "right-password"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.ID != stored.ID {
		t.Fatalf("unexpected user in response")
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: stored.Email, Password: "wrong-password"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	jwtCfg, pwCfg := testConfigs()
	hash, _ := security.HashPassword("right-password", pwCfg)
	repo := &stubUserRepo{
		findByEmailFn: func(context.Context, string) (*models.User, error) {
			return &models.User{
				ID:           uuid.New(),
				Email:        "gone@gympulse.mx",
				PasswordHash: hash,
				Role:         enums.RoleClient,
				IsActive:     false,
			}, nil
		},
	}
	svc, _ := NewService(ServiceParams{UserRepo: repo, JWTConfig: jwtCfg, PasswordConfig: pwCfg})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "gone@gympulse.mx", Password: "right-password"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive user, got %v", err)
	}
}

func TestLoginUnknownEmailHidesExistence(t *testing.T) {
	jwtCfg, pwCfg := testConfigs()
	svc, _ := NewService(ServiceParams{UserRepo: &stubUserRepo{}, JWTConfig: jwtCfg, PasswordConfig: pwCfg})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@gympulse.mx", Password: "whatever!"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if appErr.Message() != invalidCredentialsMessage {
		t.Fatalf("expected generic message, got %q", appErr.Message())
	}
}
