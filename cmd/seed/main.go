package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rodrigofuentes/gympulse-backend/pkg/config"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db"
	"github.com/rodrigofuentes/gympulse-backend/pkg/db/models"
	"github.com/rodrigofuentes/gympulse-backend/pkg/enums"
	"github.com/rodrigofuentes/gympulse-backend/pkg/logger"
	"github.com/rodrigofuentes/gympulse-backend/pkg/migrate"
	"github.com/rodrigofuentes/gympulse-backend/pkg/security"
)

// seed loads the baseline data a fresh environment needs: the plan
// catalog, one admin, one front-desk staff account, and a demo client
// with an active membership. Running it twice is safe; every insert is
// keyed on a unique column and skipped when the row already exists.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.App.Env != "local" && cfg.App.Env != "development" {
		logg.Warn(ctx, fmt.Sprintf("refusing to seed env %q", cfg.App.Env))
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	gdb := dbClient.DB().WithContext(ctx)

	plans := []models.MembershipPlan{
		{
			Name:         "Mensual",
			Price:        decimal.NewFromInt(550),
			Currency:     "MXN",
			DurationDays: 30,
			Features:     pq.StringArray{"Acceso ilimitado", "Casillero"},
			IsActive:     true,
		},
		{
			Name:         "Trimestral",
			Price:        decimal.NewFromInt(1500),
			Currency:     "MXN",
			DurationDays: 90,
			Features:     pq.StringArray{"Acceso ilimitado", "Casillero", "1 asesoría"},
			IsActive:     true,
		},
		{
			Name:         "Anual",
			Price:        decimal.NewFromInt(5400),
			Currency:     "MXN",
			DurationDays: 365,
			Features:     pq.StringArray{"Acceso ilimitado", "Casillero", "4 asesorías", "Invitado mensual"},
			IsActive:     true,
		},
	}
	if err := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&plans).Error; err != nil {
		logg.Error(ctx, "failed to seed plans", err)
		os.Exit(1)
	}
	logg.Info(ctx, "plan catalog seeded")

	users := []struct {
		email    string
		name     string
		password string
		role     enums.Role
	}{
		{"admin@gympulse.local", "Admin", "admin-dev-password", enums.RoleAdmin},
		{"frontdesk@gympulse.local", "Front Desk", "staff-dev-password", enums.RoleStaff},
		{"demo@gympulse.local", "Demo Member", "demo-dev-password", enums.RoleClient},
	}
	for _, u := range users {
		hash, err := security.HashPassword(u.password, cfg.Password)
		if err != nil {
			logg.Error(ctx, "failed to hash seed password", err)
			os.Exit(1)
		}
		row := models.User{
			Email:        u.email,
			Name:         u.name,
			PasswordHash: hash,
			Role:         u.role,
			IsActive:     true,
		}
		if err := gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			logg.Error(ctx, fmt.Sprintf("failed to seed user %s", u.email), err)
			os.Exit(1)
		}
	}
	logg.Info(ctx, "accounts seeded")

	if err := seedDemoMembership(gdb); err != nil {
		logg.Error(ctx, "failed to seed demo membership", err)
		os.Exit(1)
	}

	logg.Info(ctx, "seed complete")
}

func seedDemoMembership(gdb *gorm.DB) error {
	var demo models.User
	if err := gdb.Where("email = ?", "demo@gympulse.local").First(&demo).Error; err != nil {
		return fmt.Errorf("load demo user: %w", err)
	}
	var plan models.MembershipPlan
	if err := gdb.Where("name = ?", "Mensual").First(&plan).Error; err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	var existing int64
	if err := gdb.Model(&models.Membership{}).
		Where("user_id = ? AND status = ?", demo.ID, enums.MembershipStatusActive).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("count memberships: %w", err)
	}
	if existing > 0 {
		return nil
	}

	now := time.Now().UTC()
	membership := models.Membership{
		UserID:        demo.ID,
		PlanID:        &plan.ID,
		Status:        enums.MembershipStatusActive,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, plan.DurationDays),
		PriceSnapshot: plan.Price,
		Currency:      plan.Currency,
	}
	return gdb.Create(&membership).Error
}
