package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/metrics"
)

type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) (export.ValidationResult, error)
}

type ExportJobs struct {
	checker  ReadinessChecker
	metrics  *metrics.Metrics
	logger   *slog.Logger
	interval time.Duration
}

func NewExportJobs(checker ReadinessChecker, m *metrics.Metrics, logger *slog.Logger, interval time.Duration) *ExportJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExportJobs{checker: checker, metrics: m, logger: logger, interval: interval}
}

func (j *ExportJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("export_readiness_check", j.interval, j.CheckExportReadiness)
}

// CheckExportReadiness validates the running month so payroll sees blockers before the export day.
func (j *ExportJobs) CheckExportReadiness(ctx context.Context) error {
	result, err := j.checker.CheckReadiness(ctx)
	if err != nil {
		return fmt.Errorf("readiness check: %w", err)
	}

	errs, warns, _ := result.Counts()
	j.metrics.SetReadiness(errs, warns, result.Stats.TotalDeviations)

	attrs := []any{
		"errors", errs,
		"warnings", warns,
		"approved", result.Stats.TotalDeviations,
		"duplicates", result.Stats.Duplicates,
	}
	if result.HasErrors {
		j.logger.Warn("Cron: current period is not exportable", attrs...)
		return nil
	}
	j.logger.Info("Cron: export readiness checked", attrs...)
	return nil
}
