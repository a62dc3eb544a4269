package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rodrigofuentes/gympulse-backend/api/routes"
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
	"github.com/rodrigofuentes/gympulse-backend/pkg/metrics"
	"github.com/rodrigofuentes/gympulse-backend/pkg/migrate"
	"github.com/rodrigofuentes/gympulse-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	realtimeMetrics := metrics.NewRealtimeMetrics(prometheus.DefaultRegisterer)
	hub := realtime.NewHub(logg, realtimeMetrics)
	defer hub.Close()

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	planRepo := plans.NewRepository(gdb)
	membershipRepo := memberships.NewRepository(gdb)
	paymentRepo := payments.NewRepository(gdb)
	checkinRepo := checkins.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	planService, err := plans.NewService(plans.ServiceParams{Repo: planRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create plans service", err)
		os.Exit(1)
	}

	membershipService, err := memberships.NewService(memberships.ServiceParams{
		Repo:     membershipRepo,
		PlanRepo: planRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create memberships service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:           paymentRepo,
		MembershipRepo: membershipRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	checkinService, err := checkins.NewService(checkins.ServiceParams{
		Repo:           checkinRepo,
		UserRepo:       userRepo,
		MembershipRepo: membershipRepo,
		Publisher:      hub,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkins service", err)
		os.Exit(1)
	}

	dashboardMetrics, err := dashboard.NewMetrics(dashboard.MetricsParams{
		CheckinRepo:    checkinRepo,
		MembershipRepo: membershipRepo,
		Publisher:      hub,
		Logger:         logg,
		Config:         cfg.Dashboard,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard metrics", err)
		os.Exit(1)
	}

	dashboardReports, err := dashboard.NewReports(dashboard.ReportsParams{
		CheckinRepo: checkinRepo,
		PaymentRepo: paymentRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard reports", err)
		os.Exit(1)
	}

	financeService, err := dashboard.NewFinance(dashboard.FinanceParams{
		PaymentRepo: paymentRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create finance service", err)
		os.Exit(1)
	}

	scheduler, err := dashboard.NewScheduler(dashboard.SchedulerParams{
		Metrics:     dashboardMetrics,
		Subscribers: hub,
		Logger:      logg,
		Config:      cfg.Dashboard,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go scheduler.Run(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:            cfg,
			Logger:            logg,
			DB:                dbClient,
			Redis:             redisClient,
			AuthService:       authService,
			UserService:       userService,
			PlanService:       planService,
			MembershipService: membershipService,
			PaymentService:    paymentService,
			CheckinService:    checkinService,
			DashboardMetrics:  dashboardMetrics,
			DashboardReports:  dashboardReports,
			Finance:           financeService,
			Hub:               hub,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down")
}
