package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/lock"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/metrics"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/storage"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc     *ExportService
	devs    *mockDeviationRepo
	batches *mockBatchRepo
	tx      *mockTransactor
	locker  *lock.Local
	files   *storage.LocalStorage
	metrics *metrics.Metrics
}

func newServiceFixture(t *testing.T, devs ...deviation.Deviation) serviceFixture {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := serviceFixture{
		devs:    newMockDeviationRepo(devs...),
		batches: &mockBatchRepo{},
		tx:      &mockTransactor{},
		locker:  lock.NewLocal(),
		files:   files,
		metrics: metrics.New(),
	}
	f.svc = NewExportService(
		f.devs,
		&mockEmployeeRepo{items: testEmployees},
		&mockTimeCodeRepo{items: testTimeCodes},
		f.batches,
		f.tx,
		f.locker,
		f.files,
		f.metrics,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config{OrgNumber: "556677-8899", PayrollSystem: "Kontek Lön", LockTTL: time.Minute},
	)
	f.svc.now = fixedClock
	return f
}

func payrollCtx() context.Context {
	return user.WithClaims(context.Background(), user.Claims{UserID: "payroll-1", Role: user.RolePayroll})
}

var july = export.PeriodRequest{From: "2025-07-01", To: "2025-07-31"}

func TestPreview_InvalidPeriod(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Preview(context.Background(), export.PeriodRequest{From: "2025-07-31", To: "2025-07-01"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "to", verrs[0].Field)
}

func TestPreview_ReportsIssuesAndCountsMetrics(t *testing.T) {
	broken := approvedDeviation(2, "E001", "2025-07-02")
	broken.TimeCode = nil
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"), broken)

	result, err := f.svc.Preview(context.Background(), july)
	require.NoError(t, err)

	assert.True(t, result.HasErrors)
	assert.False(t, result.IsValid)
	assert.Equal(t, 1, result.Stats.MissingTimeCodes)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ValidationsTotal.WithLabelValues("blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.IssuesTotal.WithLabelValues("error")))
}

func TestPreview_LoadFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.devs.listErr = errors.New("connection reset")

	_, err := f.svc.Preview(context.Background(), july)
	assert.ErrorContains(t, err, "connection reset")
}

func TestExport_Success(t *testing.T) {
	pending := approvedDeviation(3, "E002", "2025-07-03")
	pending.Status = deviation.StatusPending
	withComment := approvedDeviation(2, "E002", "2025-07-02")
	withComment.Comment = strPtr("Inventering")
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"), withComment, pending)

	resp, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Batch.DeviationCount)
	assert.Equal(t, "2025-07-01", resp.Batch.PeriodStart)
	assert.Equal(t, "payroll-1", resp.Batch.CreatedBy)
	assert.False(t, resp.Batch.WarningsAcknowledged)
	assert.True(t, resp.Validation.IsValid)
	assert.Equal(t, 1, f.tx.calls)
	assert.ElementsMatch(t, []int64{1, 2}, f.devs.markedIDs)

	marked, _ := f.devs.GetByID(context.Background(), 1)
	require.NotNil(t, marked.ExportBatchID)
	assert.Equal(t, resp.Batch.ID, *marked.ExportBatchID)
	untouched, _ := f.devs.GetByID(context.Background(), 3)
	assert.Nil(t, untouched.ExportBatchID)

	rc, name, err := f.svc.DownloadBatch(context.Background(), resp.Batch.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)

	assert.Equal(t, resp.Batch.FileName, name)
	assert.True(t, strings.HasPrefix(name, "paxml_20250701_20250731_"))
	doc := string(body)
	assert.Equal(t, 2, strings.Count(doc, "<tidtrans "))
	assert.Contains(t, doc, `anstid="E001"`)
	assert.Contains(t, doc, "<timmar>9.00</timmar>")
	assert.Contains(t, doc, "<info>Inventering</info>")
	assert.Contains(t, doc, "<programnamn>Kontek Lön</programnamn>")
	assert.NotContains(t, doc, `postid="3"`)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BatchesExported))
}

func TestExport_SecondRunFindsNothing(t *testing.T) {
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"))

	_, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july})
	require.NoError(t, err)

	// include_exported is ignored when writing a batch
	req := export.ExportRequest{PeriodRequest: july}
	req.IncludeExported = true
	_, err = f.svc.Export(payrollCtx(), req)
	assert.ErrorIs(t, err, export.ErrNothingToExport)
}

func TestExport_BlockedByErrors(t *testing.T) {
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"), approvedDeviation(2, "E001", "2025-07-01"))

	_, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july, AcknowledgeWarnings: true})

	require.ErrorIs(t, err, export.ErrExportBlocked)
	var blocked *export.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 1, blocked.Result.Stats.Duplicates)
	assert.Empty(t, f.batches.items)
	assert.Zero(t, f.tx.calls)
}

func TestExport_WarningsNeedAcknowledgement(t *testing.T) {
	weekend := approvedDeviation(1, "E001", "2025-07-05")
	f := newServiceFixture(t, weekend)

	_, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july})
	require.ErrorIs(t, err, export.ErrWarningsNotAcknowledged)
	var blocked *export.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.True(t, blocked.Result.HasWarnings)

	resp, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july, AcknowledgeWarnings: true})
	require.NoError(t, err)
	assert.True(t, resp.Batch.WarningsAcknowledged)
	assert.Equal(t, 1, resp.Batch.WarningCount)
}

func TestExport_NothingApproved(t *testing.T) {
	draft := approvedDeviation(1, "E001", "2025-07-01")
	draft.Status = deviation.StatusDraft
	f := newServiceFixture(t, draft)

	_, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july})
	assert.ErrorIs(t, err, export.ErrNothingToExport)
}

func TestExport_PeriodLocked(t *testing.T) {
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"))
	_, err := f.locker.Acquire(context.Background(), "export:2025-07-01:2025-07-31", time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july})
	assert.ErrorIs(t, err, export.ErrExportInProgress)
}

func TestExport_ReleasesLock(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july})
	require.ErrorIs(t, err, export.ErrNothingToExport)

	release, err := f.locker.Acquire(context.Background(), "export:2025-07-01:2025-07-31", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(context.Background()))
}

func TestExport_RemovesFileWhenRecordingFails(t *testing.T) {
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"))
	f.devs.markErr = deviation.ErrDeviationAlreadyExport

	_, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july})
	require.ErrorIs(t, err, deviation.ErrDeviationAlreadyExport)

	require.Len(t, f.batches.items, 1)
	ok, err := f.files.Exists(context.Background(), f.batches.items[0].FilePath)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExport_RequiresCaller(t *testing.T) {
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"))

	_, err := f.svc.Export(context.Background(), export.ExportRequest{PeriodRequest: july})
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestReportWorkbook(t *testing.T) {
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"))

	data, name, err := f.svc.ReportWorkbook(context.Background(), july)
	require.NoError(t, err)
	assert.Equal(t, "validation_20250701_20250731.xlsx", name)
	// xlsx is a zip archive
	assert.Equal(t, "PK", string(data[:2]))
}

func TestBatches_ListAndGet(t *testing.T) {
	f := newServiceFixture(t,
		approvedDeviation(1, "E001", "2025-07-01"),
		approvedDeviation(2, "E001", "2025-07-01"),
	)
	_, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: export.PeriodRequest{From: "2025-07-01", To: "2025-07-01"}})
	require.ErrorIs(t, err, export.ErrExportBlocked)

	f.devs.items[2] = approvedDeviation(2, "E001", "2025-07-02")
	for _, p := range []export.PeriodRequest{
		{From: "2025-07-01", To: "2025-07-01"},
		{From: "2025-07-02", To: "2025-07-02"},
	} {
		_, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: p})
		require.NoError(t, err)
	}

	list, err := f.svc.ListBatches(context.Background(), export.BatchFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Batches, 1)

	got, err := f.svc.GetBatch(context.Background(), list.Batches[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list.Batches[0], got)

	_, err = f.svc.GetBatch(context.Background(), "missing")
	assert.ErrorIs(t, err, export.ErrBatchNotFound)
}

func TestDownloadBatch_MissingFile(t *testing.T) {
	f := newServiceFixture(t, approvedDeviation(1, "E001", "2025-07-01"))
	resp, err := f.svc.Export(payrollCtx(), export.ExportRequest{PeriodRequest: july})
	require.NoError(t, err)

	require.NoError(t, f.files.Delete(context.Background(), f.batches.items[0].FilePath))

	_, _, err = f.svc.DownloadBatch(context.Background(), resp.Batch.ID)
	assert.ErrorIs(t, err, export.ErrBatchNotFound)
}

func TestCheckReadiness_UsesCurrentMonth(t *testing.T) {
	f := newServiceFixture(t,
		approvedDeviation(1, "E001", "2025-07-01"),
		approvedDeviation(2, "E001", "2025-06-30"),
	)

	result, err := f.svc.CheckReadiness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.TotalDeviations)
	assert.True(t, result.IsValid)
}
