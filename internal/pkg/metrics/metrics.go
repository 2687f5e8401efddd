// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	ValidationsTotal *prometheus.CounterVec
	IssuesTotal      *prometheus.CounterVec
	BatchesExported  prometheus.Counter
	DeviationsExport prometheus.Counter
	VacationDeducted prometheus.Counter
	ExportReadiness  *prometheus.GaugeVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "export_validations_total",
				Help: "Export validations run, by verdict",
			},
			[]string{"verdict"},
		),
		IssuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "export_validation_issues_total",
				Help: "Validation issues reported, by type",
			},
			[]string{"type"},
		),
		BatchesExported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "export_batches_total",
			Help: "PAXML batches written",
		}),
		DeviationsExport: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "export_deviations_total",
			Help: "Deviations included in written batches",
		}),
		VacationDeducted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vacation_days_deducted_total",
			Help: "Vacation days debited on approval",
		}),
		ExportReadiness: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "export_readiness",
				Help: "Latest readiness check for the current period: errors, warnings and approved deviations",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.ValidationsTotal,
		m.IssuesTotal,
		m.BatchesExported,
		m.DeviationsExport,
		m.VacationDeducted,
		m.ExportReadiness,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests by route pattern, so ids don't explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
	})
}

// ObserveValidation records a verdict and its issue counts.
func (m *Metrics) ObserveValidation(verdict string, errors, warnings, infos int) {
	m.ValidationsTotal.WithLabelValues(verdict).Inc()
	m.IssuesTotal.WithLabelValues("error").Add(float64(errors))
	m.IssuesTotal.WithLabelValues("warning").Add(float64(warnings))
	m.IssuesTotal.WithLabelValues("info").Add(float64(infos))
}

func (m *Metrics) ObserveExport(deviations int) {
	m.BatchesExported.Inc()
	m.DeviationsExport.Add(float64(deviations))
}

func (m *Metrics) ObserveVacationDeduction(days float64) {
	if days > 0 {
		m.VacationDeducted.Add(days)
	}
}

func (m *Metrics) SetReadiness(errors, warnings, approved int) {
	m.ExportReadiness.WithLabelValues("errors").Set(float64(errors))
	m.ExportReadiness.WithLabelValues("warnings").Set(float64(warnings))
	m.ExportReadiness.WithLabelValues("approved").Set(float64(approved))
}
