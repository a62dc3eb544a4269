package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rodrigofuentes/gympulse-backend/api/controllers"
	"github.com/rodrigofuentes/gympulse-backend/api/middleware"
	"github.com/rodrigofuentes/gympulse-backend/internal/auth"
	"github.com/rodrigofuentes/gympulse-backend/internal/checkins"
	"github.com/rodrigofuentes/gympulse-backend/internal/dashboard"
	"github.com/rodrigofuentes/gympulse-backend/internal/memberships"
	"github.com/rodrigofuentes/gympulse-backend/internal/payments"
	"github.com/rodrigofuentes/gympulse-backend/internal/plans"
	"github.com/rodrigofuentes/gympulse-backend/internal/realtime"
	"github.com/rodrigofuentes/gympulse-backend/internal/users"
	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db"
	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
	"github.com/rodrigofuentes/gympulse-backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *redis.Client

	AuthService       auth.Service
	UserService       users.Service
	PlanService       plans.Service
	MembershipService memberships.Service
	PaymentService    payments.Service
	CheckinService    checkins.Service

	DashboardMetrics *dashboard.Metrics
	DashboardReports *dashboard.Reports
	Finance          *dashboard.Finance
	Hub              *realtime.Hub
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).
			Post("/register", controllers.AuthRegister(p.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		// any authenticated member
		r.Get("/plans", controllers.PlanList(p.PlanService, logg))
		r.Get("/plans/{planId}", controllers.PlanGet(p.PlanService, logg))
		r.Get("/memberships", controllers.MembershipList(p.MembershipService, logg))
		r.Get("/memberships/{membershipId}", controllers.MembershipGet(p.MembershipService, logg))
		r.Get("/me/checkins", controllers.MyCheckins(p.CheckinService, logg))

		// front desk and administration
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.UserList(p.UserService, logg))
				r.Post("/", controllers.UserCreate(p.UserService, logg))
				r.Get("/{userId}", controllers.UserGet(p.UserService, logg))
				r.Put("/{userId}", controllers.UserUpdate(p.UserService, logg))
				r.Get("/{userId}/checkins", controllers.CheckinListByUser(p.CheckinService, logg))
				// account removal stays admin-only
				r.With(middleware.RequireAdmin(logg)).
					Delete("/{userId}", controllers.UserDelete(p.UserService, logg))
			})

			r.Post("/plans", controllers.PlanCreate(p.PlanService, logg))
			r.Put("/plans/{planId}", controllers.PlanUpdate(p.PlanService, logg))

			r.Route("/memberships", func(r chi.Router) {
				r.Post("/", controllers.MembershipCreate(p.MembershipService, logg))
				r.Post("/{membershipId}/renew", controllers.MembershipRenew(p.MembershipService, logg))
				r.Post("/{membershipId}/cancel", controllers.MembershipCancel(p.MembershipService, logg))
				r.Post("/{membershipId}/freeze", controllers.MembershipFreeze(p.MembershipService, logg))
				r.Post("/{membershipId}/unfreeze", controllers.MembershipUnfreeze(p.MembershipService, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.PaymentList(p.PaymentService, logg))
				r.Post("/", controllers.PaymentCreate(p.PaymentService, logg))
				r.Get("/{paymentId}", controllers.PaymentGet(p.PaymentService, logg))
			})

			r.Route("/checkins", func(r chi.Router) {
				r.Get("/", controllers.CheckinList(p.CheckinService, logg))
				r.Post("/", controllers.CheckinCreate(p.CheckinService, logg))
				r.Get("/today", controllers.CheckinListToday(p.CheckinService, logg))
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/metrics", controllers.DashboardMetrics(p.DashboardMetrics, logg))
				r.Post("/refresh", controllers.DashboardRefresh(p.DashboardMetrics, logg))
				r.Get("/daily-trend", controllers.DashboardDailyTrend(p.DashboardReports, logg))
				r.Get("/peak-hours", controllers.DashboardPeakHours(p.DashboardReports, logg))
				r.Get("/activity-history", controllers.DashboardActivityHistory(p.DashboardReports, logg))
				r.Get("/performance", controllers.DashboardPerformance(p.DashboardReports, logg))
				r.Get("/ws", realtime.ServeWS(p.Hub, logg))
			})

			r.Route("/finance", func(r chi.Router) {
				r.Get("/summary", controllers.FinanceSummary(p.Finance, logg))
				r.Get("/revenue-trend", controllers.FinanceRevenueTrend(p.Finance, logg))
				r.Get("/revenue-by-method", controllers.FinanceRevenueByMethod(p.Finance, logg))
				r.Get("/revenue-by-plan", controllers.FinanceRevenueByPlan(p.Finance, logg))
				r.Get("/dashboard", controllers.FinanceDashboard(p.Finance, logg))
			})

		})
	})

	return r
}
