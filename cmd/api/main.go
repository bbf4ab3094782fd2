package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/demo"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/workdays"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service"
	attendanceService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/migrations"
	"go.uber.org/zap"
)

const version = "v1.0.0"

type stores struct {
	tx         database.Transactor
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	payroll    payroll.PayrollRepository
	leave      leave.LeaveRequestRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if err != nil {
		fmt.Println("Error building logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calendar, err := workdays.NewCalendar(cfg.Payroll.Holidays)
	if err != nil {
		return fmt.Errorf("invalid PAYROLL_HOLIDAYS: %w", err)
	}

	st, err := openStores(ctx, cfg, calendar, log)
	if err != nil {
		return err
	}
	defer st.close()

	locker, closeLocker, err := newLocker(cfg, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	recorder := metrics.NewRecorder()
	rt := service.Runtime{
		Policy: retry.Policy{
			Timeout:    cfg.Store.CallTimeout,
			Delay:      cfg.Store.RetryDelay,
			MaxRetries: 1,
		},
		Metrics: recorder,
		Logger:  log,
	}

	payrollSvc := payrollService.NewPayrollService(
		st.tx,
		st.payroll,
		st.employees,
		st.attendance,
		calendar,
		payroll.GenerationSettings{OvertimeRatePerHour: cfg.Payroll.OvertimeRatePerHour},
		rt,
	)
	leaveSvc := leaveService.NewLeaveService(st.leave, st.employees, cfg.Leave.Limits, locker, rt)
	attendanceSvc := attendanceService.NewAttendanceService(st.attendance, st.employees, rt)

	if cfg.App.CronEnabled {
		scheduler := cron.NewScheduler(log)
		cron.NewEngineJobs(payrollSvc, attendanceSvc, st.employees, calendar, nil, log).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.CORSOrigins,
			Env:            cfg.App.Env,
			Version:        version,
			Metrics:        recorder.Handler(),
		},
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, calendar *workdays.Calendar, log *zap.Logger) (stores, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("using in-memory stores; data is lost on restart")
		st := stores{
			tx:         memory.NewTransactor(),
			employees:  memory.NewEmployeeRepository(),
			attendance: memory.NewAttendanceRepository(),
			payroll:    memory.NewPayrollRepository(),
			leave:      memory.NewLeaveRequestRepository(),
			close:      func() {},
		}
		if cfg.Store.SeedEmployees > 0 {
			now := time.Now().UTC()
			lastMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
			result, err := demo.NewSeeder(0, st.employees, st.attendance, calendar).Seed(ctx, cfg.Store.SeedEmployees, lastMonth)
			if err != nil {
				return stores{}, fmt.Errorf("failed to seed memory stores: %w", err)
			}
			log.Info("memory stores seeded",
				zap.Int("employees", len(result.Employees)),
				zap.Int("attendance_records", result.Attendance),
				zap.String("month", lastMonth.Format("2006-01")),
			)
		}
		return st, nil
	}

	dsn := cfg.DatabaseURL()
	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(dsn, migrations.FS, log); err != nil {
			return stores{}, err
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		return stores{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	return stores{
		tx:         postgresql.NewTransactor(db),
		employees:  postgresql.NewEmployeeRepository(db),
		attendance: postgresql.NewAttendanceRepository(db),
		payroll:    postgresql.NewPayrollRepository(db),
		leave:      postgresql.NewLeaveRequestRepository(db),
		close:      db.Close,
	}, nil
}

// newLocker shares ledger locks through Redis when REDIS_ADDR is set so
// several engine instances serialize on the same keys.
func newLocker(cfg *config.Config, log *zap.Logger) (lock.Locker, func(), error) {
	if cfg.Redis.Addr == "" {
		return lock.NewKeyedMutex(), func() {}, nil
	}

	client, err := lock.NewRedisClient(lock.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("leave ledger locks backed by redis", zap.String("addr", cfg.Redis.Addr))
	return lock.NewRedisLocker(client, "", cfg.Redis.LockTTL), func() { _ = client.Close() }, nil
}
