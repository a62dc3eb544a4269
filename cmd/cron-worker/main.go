package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rodrigofuentes/gympulse-backend/internal/checkins"
	"github.com/rodrigofuentes/gympulse-backend/internal/cron"
	"github.com/rodrigofuentes/gympulse-backend/internal/dashboard"
	"github.com/rodrigofuentes/gympulse-backend/internal/memberships"
	"github.com/rodrigofuentes/gympulse-backend/internal/plans"
	"github.com/rodrigofuentes/gympulse-backend/internal/realtime"
	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db"
	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
	"github.com/rodrigofuentes/gympulse-backend/pkg/metrics"
	"github.com/rodrigofuentes/gympulse-backend/pkg/migrate"
	"github.com/rodrigofuentes/gympulse-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	gdb := dbClient.DB()
	membershipRepo := memberships.NewRepository(gdb)
	planRepo := plans.NewRepository(gdb)
	checkinRepo := checkins.NewRepository(gdb)

	membershipService, err := memberships.NewService(memberships.ServiceParams{
		Repo:     membershipRepo,
		PlanRepo: planRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create memberships service", err)
		os.Exit(1)
	}

	// The worker keeps its own snapshot cache so an expiry sweep can
	// recompute counts without waiting on the api process. Broadcasts
	// from this process reach nobody; the hub exists to satisfy the
	// publisher dependency.
	hub := realtime.NewHub(logg, nil)
	defer hub.Close()

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

	expiryJob, err := cron.NewMembershipExpiryJob(cron.MembershipExpiryJobParams{
		Logger:      logg,
		Memberships: membershipService,
		Dashboard:   dashboardMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create membership expiry job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, cfg.Cron.LockKey, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob),
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
