package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rodrigofuentes/gympulse-backend/internal/users"
	pkgauth "github.com/rodrigofuentes/gympulse-backend/pkg/auth"
	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
)

type stubUserService struct {
	users []users.UserDTO
}

func (s *stubUserService) Create(context.Context, users.CreateUserRequest) (*users.UserDTO, error) {
	return nil, nil
}

func (s *stubUserService) Get(context.Context, uuid.UUID) (*users.UserDTO, error) {
	return nil, nil
}

func (s *stubUserService) List(context.Context, int, int) ([]users.UserDTO, error) {
	return s.users, nil
}

func (s *stubUserService) Update(context.Context, uuid.UUID, users.UpdateUserRequest) (*users.UserDTO, error) {
	return nil, nil
}

func (s *stubUserService) Delete(context.Context, uuid.UUID) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0", CORSOrigins: "*"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "gympulse-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterParams{
		Config:      testConfig(),
		UserService: &stubUserService{users: []users.UserDTO{}},
	})
}

func bearerToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "someone@example.com",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestStaffRoutesBlockClients(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(RouterParams{Config: cfg, UserService: &stubUserService{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.RoleClient))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("client status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.RoleStaff))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("staff status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserDeleteIsAdminOnly(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(RouterParams{Config: cfg, UserService: &stubUserService{}})
	target := "/api/v1/users/" + uuid.NewString()

	req := httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.RoleStaff))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, target, nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.RoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status %d: %s", rec.Code, rec.Body.String())
	}
}
