package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	Version        string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(
	JWTService jwt.Service,
	cfg RouterConfig,
	payrollHandler PayrollHandler,
	leaveHandler LeaveHandler,
	attendanceHandler AttendanceHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll-engine"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/payroll", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", payrollHandler.ListPayrollRecords)
				r.Post("/", payrollHandler.CreatePayrollRecord)
				r.Post("/compute", payrollHandler.ComputeNetSalary)
				r.Post("/generate", payrollHandler.GeneratePayroll)
				r.Post("/mark-paid", payrollHandler.MarkPaid)
				r.Get("/summary", payrollHandler.GetPayrollSummary)
				r.Get("/report", payrollHandler.GetPayrollReport)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPayrollRecord)
					r.Put("/", payrollHandler.UpdatePayrollRecord)
					r.Delete("/", payrollHandler.DeletePayrollRecord)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/types", leaveHandler.ListTypes)
				r.Get("/balances/{employeeID}", leaveHandler.GetBalance)

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", leaveHandler.CreateRequest)
					r.Get("/", leaveHandler.ListRequests)
					r.Get("/{id}", leaveHandler.GetRequest)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Get("/usage", leaveHandler.GetUsage)
						r.Post("/{id}/decision", leaveHandler.DecideRequest)
					})
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", attendanceHandler.List)
				r.Put("/", attendanceHandler.Upsert)
				r.Post("/bulk", attendanceHandler.BulkUpsert)
				r.Get("/statistics", attendanceHandler.Statistics)
				r.Get("/report", attendanceHandler.Report)
				r.Delete("/{id}", attendanceHandler.Delete)
			})
		})
	})
	return r
}
