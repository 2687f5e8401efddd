package http

import (
	"log/slog"
	"os"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/avvikelse/avvikelse-backend-go/internal/handler/http/middleware"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/jwt"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

type Handlers struct {
	Deviation DeviationHandler
	Leave     LeaveHandler
	Employee  EmployeeHandler
	TimeCode  TimeCodeHandler
	Export    ExportHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, m *metrics.Metrics, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "avvikelse-backend"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(m.Middleware)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Handle("/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/deviations", func(r chi.Router) {
				r.Get("/", h.Deviation.List)
				r.Get("/my", h.Deviation.ListMine)
				r.With(middleware.RequirePermission(user.PermissionDeviationCreate)).Post("/", h.Deviation.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Deviation.Get)
					r.Put("/", h.Deviation.Update)
					r.Delete("/", h.Deviation.Delete)
					r.Post("/submit", h.Deviation.Submit)

					// Manager decisions
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionDeviationApprove))
						r.Post("/approve", h.Deviation.Approve)
						r.Post("/reject", h.Deviation.Reject)
						r.Post("/return", h.Deviation.Return)
					})
				})
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Get("/", h.Leave.ListRequests)
				r.Get("/my", h.Leave.GetMyRequests)
				r.Post("/deduction-preview", h.Leave.PreviewDeduction)
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", h.Leave.CreateRequest)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Leave.GetRequest)
					r.Delete("/", h.Leave.DeleteRequest)
					r.Post("/submit", h.Leave.SubmitRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/approve", h.Leave.ApproveRequest)
						r.Post("/reject", h.Leave.RejectRequest)
					})
				})
			})

			r.Route("/leave-balances", func(r chi.Router) {
				r.Get("/my", h.Leave.GetMyBalance)
				r.Get("/{employeeID}", h.Leave.GetBalance)
				r.With(middleware.RequirePermission(user.PermissionEmployeeManage)).Put("/{employeeID}", h.Leave.SetBalance)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/{employeeID}", h.Employee.GetEmployee)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeViewAll))
					r.Get("/", h.Employee.ListEmployees)
				})

				// Payroll and admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.CreateEmployee)
					r.Put("/{employeeID}", h.Employee.UpdateEmployee)
				})
			})

			r.Route("/time-codes", func(r chi.Router) {
				r.Get("/", h.TimeCode.List)
				r.Get("/{code}", h.TimeCode.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTimeCodeManage))
					r.Post("/", h.TimeCode.Create)
					r.Put("/{code}", h.TimeCode.Update)
				})
			})

			r.Route("/export", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionExportValidate))
					r.Get("/validate", h.Export.Validate)
					r.Get("/report.xlsx", h.Export.Report)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionExportRun))
					r.Post("/", h.Export.Export)
					r.Get("/batches", h.Export.ListBatches)
					r.Get("/batches/{id}", h.Export.GetBatch)
					r.Get("/batches/{id}/file", h.Export.DownloadBatch)
				})
			})
		})
	})
	return r
}
