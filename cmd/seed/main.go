package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/demo"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/workdays"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-payroll-engine/migrations"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	count := pflag.IntP("employees", "n", 25, "number of employees to create")
	month := pflag.StringP("month", "m", "", "attendance month in YYYY-MM (defaults to last month)")
	seed := pflag.Uint64("seed", 0, "faker seed; 0 picks a random one")
	adminEmail := pflag.String("admin-email", "admin@example.com", "email claim of the printed admin token")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: "console"})
	if err != nil {
		fmt.Println("Error building logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Store.Driver != "postgres" {
		log.Fatal("seeding needs STORE_DRIVER=postgres; memory stores do not outlive this process")
	}

	monthStart, err := seedMonth(*month)
	if err != nil {
		log.Fatal("invalid month", zap.Error(err))
	}

	ctx := context.Background()
	dsn := cfg.DatabaseURL()
	if err := database.Migrate(dsn, migrations.FS, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	calendar, err := workdays.NewCalendar(cfg.Payroll.Holidays)
	if err != nil {
		log.Fatal("invalid PAYROLL_HOLIDAYS", zap.Error(err))
	}

	seeder := demo.NewSeeder(*seed, postgresql.NewEmployeeRepository(db), postgresql.NewAttendanceRepository(db), calendar)
	result, err := seeder.Seed(ctx, *count, monthStart)
	if err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}
	log.Info("demo data created",
		zap.Int("employees", len(result.Employees)),
		zap.Int("attendance_records", result.Attendance),
		zap.String("month", monthStart.Format("2006-01")),
	)

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL).GenerateAccessToken("seed-admin", *adminEmail, "", true)
	if err != nil {
		log.Fatal("failed to sign admin token", zap.Error(err))
	}
	fmt.Printf("admin token (expires %d):\n%s\n", expiresAt, token)
}

func seedMonth(month string) (time.Time, error) {
	if month == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0), nil
	}
	return payroll.ParseMonth(month)
}
