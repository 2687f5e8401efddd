package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubChecker struct {
	result export.ValidationResult
	err    error
}

func (s stubChecker) CheckReadiness(context.Context) (export.ValidationResult, error) {
	return s.result, s.err
}

func TestCheckExportReadiness_SetsGauge(t *testing.T) {
	m := metrics.New()
	jobs := NewExportJobs(stubChecker{result: export.ValidationResult{
		HasErrors: true,
		Issues: []export.ValidationIssue{
			{ID: export.SummaryBlockedID, Type: export.IssueTypeError},
			{ID: "missing-date-1", Type: export.IssueTypeError},
			{ID: "future-date-2", Type: export.IssueTypeWarning},
		},
		Stats: export.ValidationStats{TotalDeviations: 5},
	}}, m, discard, time.Hour)

	require.NoError(t, jobs.CheckExportReadiness(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportReadiness.WithLabelValues("errors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportReadiness.WithLabelValues("warnings")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ExportReadiness.WithLabelValues("approved")))
}

func TestCheckExportReadiness_PropagatesLoadError(t *testing.T) {
	jobs := NewExportJobs(stubChecker{err: errors.New("db down")}, metrics.New(), discard, 0)
	assert.ErrorContains(t, jobs.CheckExportReadiness(context.Background()), "db down")
}

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(discard, time.Second)
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(context.Context) error {
		if runs.Add(1) == 1 {
			done <- struct{}{}
		}
		return nil
	})

	s.Start(context.Background())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(discard, 0)
	var order []string
	s.AddJob("a", time.Hour, func(context.Context) error { order = append(order, "a"); return nil })
	s.AddJob("b", time.Hour, func(context.Context) error { order = append(order, "b"); return errors.New("boom") })
	s.AddJob("c", time.Hour, func(context.Context) error { order = append(order, "c"); return nil })

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"a", "b", "c"}, order)
}
