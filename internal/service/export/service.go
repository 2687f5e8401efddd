package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/database"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/lock"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/metrics"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/paxml"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/report"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

type Config struct {
	OrgNumber     string
	CompanyName   string
	PayrollSystem string
	LockTTL       time.Duration
	Location      *time.Location
}

type ExportService struct {
	deviations deviation.DeviationRepository
	employees  employee.EmployeeRepository
	timeCodes  timecode.TimeCodeRepository
	batches    export.BatchRepository
	tx         database.Transactor
	locker     lock.Locker
	files      storage.FileStorage
	metrics    *metrics.Metrics
	validator  *Validator
	logger     *slog.Logger
	cfg        Config
	now        func() time.Time
}

func NewExportService(
	deviations deviation.DeviationRepository,
	employees employee.EmployeeRepository,
	timeCodes timecode.TimeCodeRepository,
	batches export.BatchRepository,
	tx database.Transactor,
	locker lock.Locker,
	files storage.FileStorage,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *ExportService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	s := &ExportService{
		deviations: deviations,
		employees:  employees,
		timeCodes:  timeCodes,
		batches:    batches,
		tx:         tx,
		locker:     locker,
		files:      files,
		metrics:    m,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
	s.validator = NewValidator(WithClock(s.localNow))
	return s
}

func (s *ExportService) localNow() time.Time {
	return s.now().In(s.cfg.Location)
}

type inputs struct {
	deviations []deviation.Deviation
	employees  []employee.Employee
	timeCodes  []timecode.TimeCode
}

// load reads the three validator inputs concurrently.
func (s *ExportService) load(ctx context.Context, from, to time.Time, includeExported bool) (inputs, error) {
	var in inputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		devs, err := s.deviations.ListForPeriod(gctx, from, to, includeExported)
		if err != nil {
			return fmt.Errorf("failed to load deviations: %w", err)
		}
		in.deviations = devs
		return nil
	})
	g.Go(func() error {
		emps, err := s.employees.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to load employees: %w", err)
		}
		in.employees = emps
		return nil
	})
	g.Go(func() error {
		codes, err := s.timeCodes.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load time codes: %w", err)
		}
		in.timeCodes = codes
		return nil
	})

	if err := g.Wait(); err != nil {
		return inputs{}, err
	}
	return in, nil
}

func (s *ExportService) validate(ctx context.Context, from, to time.Time, includeExported bool) (inputs, export.ValidationResult, error) {
	in, err := s.load(ctx, from, to, includeExported)
	if err != nil {
		return inputs{}, export.ValidationResult{}, err
	}
	result := s.validator.Validate(in.deviations, in.employees, in.timeCodes)

	errs, warns, infos := result.Counts()
	s.metrics.ObserveValidation(report.Verdict(result), errs, warns, infos)
	return in, result, nil
}

// Preview validates the period without exporting anything.
func (s *ExportService) Preview(ctx context.Context, req export.PeriodRequest) (export.ValidationResult, error) {
	from, to, err := req.Parse()
	if err != nil {
		return export.ValidationResult{}, err
	}
	_, result, err := s.validate(ctx, from, to, req.IncludeExported)
	return result, err
}

// CheckReadiness validates the current calendar month in the payroll time zone.
func (s *ExportService) CheckReadiness(ctx context.Context) (export.ValidationResult, error) {
	now := s.localNow()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	_, result, err := s.validate(ctx, from, to, false)
	return result, err
}

func (s *ExportService) Export(ctx context.Context, req export.ExportRequest) (export.ExportResponse, error) {
	claims, ok := user.ClaimsFromContext(ctx)
	if !ok {
		return export.ExportResponse{}, user.ErrInvalidToken
	}

	from, to, err := req.Parse()
	if err != nil {
		return export.ExportResponse{}, err
	}

	lockKey := fmt.Sprintf("export:%s:%s", from.Format(dateLayout), to.Format(dateLayout))
	release, err := s.locker.Acquire(ctx, lockKey, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return export.ExportResponse{}, export.ErrExportInProgress
		}
		return export.ExportResponse{}, fmt.Errorf("failed to acquire export lock: %w", err)
	}
	defer func() {
		// Release on a fresh context so a cancelled request still frees the period.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		release(releaseCtx)
	}()

	// Exported rows are never exported twice, whatever the request says.
	in, result, err := s.validate(ctx, from, to, false)
	if err != nil {
		return export.ExportResponse{}, err
	}

	if result.HasErrors {
		return export.ExportResponse{}, &export.BlockedError{Cause: export.ErrExportBlocked, Result: result}
	}
	if result.Stats.TotalDeviations == 0 {
		return export.ExportResponse{}, export.ErrNothingToExport
	}
	if result.HasWarnings && !req.AcknowledgeWarnings {
		return export.ExportResponse{}, &export.BlockedError{Cause: export.ErrWarningsNotAcknowledged, Result: result}
	}

	txs, ids, err := transactions(in.deviations)
	if err != nil {
		return export.ExportResponse{}, err
	}

	batchID, err := uuid.NewV7()
	if err != nil {
		return export.ExportResponse{}, fmt.Errorf("failed to generate batch id: %w", err)
	}
	created := s.localNow()

	var doc bytes.Buffer
	header := paxml.Header{
		OrgNumber:   s.cfg.OrgNumber,
		CompanyName: s.cfg.CompanyName,
		Program:     s.cfg.PayrollSystem,
		Created:     created,
	}
	if err := paxml.Write(&doc, header, txs); err != nil {
		return export.ExportResponse{}, fmt.Errorf("failed to write paxml: %w", err)
	}

	filePath := path.Join("exports", from.Format("2006"), from.Format("01"),
		fmt.Sprintf("paxml_%s_%s_%s.xml", from.Format("20060102"), to.Format("20060102"), batchID))
	storedPath, err := s.files.Upload(ctx, &doc, filePath)
	if err != nil {
		return export.ExportResponse{}, fmt.Errorf("failed to store export file: %w", err)
	}

	_, warnings, _ := result.Counts()
	batch := export.Batch{
		ID:                   batchID.String(),
		PeriodStart:          from,
		PeriodEnd:            to,
		DeviationCount:       len(ids),
		WarningCount:         warnings,
		WarningsAcknowledged: req.AcknowledgeWarnings && warnings > 0,
		FilePath:             storedPath,
		CreatedBy:            claims.UserID,
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		saved, err := s.batches.Create(txCtx, batch)
		if err != nil {
			return err
		}
		batch = saved
		return s.deviations.MarkExported(txCtx, ids, batch.ID, created)
	})
	if err != nil {
		if delErr := s.files.Delete(context.WithoutCancel(ctx), storedPath); delErr != nil {
			s.logger.Warn("failed to remove orphaned export file", "path", storedPath, "error", delErr)
		}
		return export.ExportResponse{}, fmt.Errorf("failed to record export batch: %w", err)
	}

	s.metrics.ObserveExport(len(ids))
	s.logger.Info("payroll export written",
		"batch_id", batch.ID,
		"period_start", from.Format(dateLayout),
		"period_end", to.Format(dateLayout),
		"deviations", len(ids),
		"warnings", warnings,
		"created_by", claims.UserID,
	)

	return export.ExportResponse{Batch: toBatchResponse(batch), Validation: result}, nil
}

// transactions maps approved deviations to PAXML rows. Callers only pass
// sets that validated without errors.
func transactions(devs []deviation.Deviation) ([]paxml.Transaction, []int64, error) {
	var (
		txs []paxml.Transaction
		ids []int64
	)
	for _, d := range devs {
		if !d.IsApproved() {
			continue
		}
		if d.Date == nil || d.StartTime == nil || d.EndTime == nil || d.TimeCode == nil {
			return nil, nil, fmt.Errorf("deviation %d is incomplete", d.ID)
		}
		hours, err := paxml.Hours(*d.StartTime, *d.EndTime)
		if err != nil {
			return nil, nil, fmt.Errorf("deviation %d: %w", d.ID, err)
		}
		tx := paxml.Transaction{
			PostID:     d.ID,
			EmployeeID: d.EmployeeID,
			TimeCode:   *d.TimeCode,
			Date:       *d.Date,
			Hours:      hours,
		}
		if d.Comment != nil {
			tx.Info = *d.Comment
		}
		txs = append(txs, tx)
		ids = append(ids, d.ID)
	}
	return txs, ids, nil
}

// ReportWorkbook renders the period's validation result as .xlsx.
func (s *ExportService) ReportWorkbook(ctx context.Context, req export.PeriodRequest) ([]byte, string, error) {
	from, to, err := req.Parse()
	if err != nil {
		return nil, "", err
	}
	_, result, err := s.validate(ctx, from, to, req.IncludeExported)
	if err != nil {
		return nil, "", err
	}

	period := report.Period{From: from, To: to}
	buf, err := report.ValidationWorkbook(period, result, s.localNow())
	if err != nil {
		return nil, "", fmt.Errorf("failed to build report: %w", err)
	}
	return buf.Bytes(), report.FileName(period), nil
}

func (s *ExportService) ListBatches(ctx context.Context, filter export.BatchFilter) (export.ListBatchResponse, error) {
	filter.Normalize()

	batches, total, err := s.batches.List(ctx, filter)
	if err != nil {
		return export.ListBatchResponse{}, fmt.Errorf("failed to list export batches: %w", err)
	}

	resp := export.ListBatchResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Batches:    make([]export.BatchResponse, 0, len(batches)),
	}
	for _, b := range batches {
		resp.Batches = append(resp.Batches, toBatchResponse(b))
	}
	return resp, nil
}

func (s *ExportService) GetBatch(ctx context.Context, id string) (export.BatchResponse, error) {
	b, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return export.BatchResponse{}, err
	}
	return toBatchResponse(b), nil
}

// DownloadBatch opens the stored PAXML file. The caller closes it.
func (s *ExportService) DownloadBatch(ctx context.Context, id string) (io.ReadCloser, string, error) {
	b, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.files.Download(ctx, b.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("export file missing for batch", "batch_id", b.ID, "path", b.FilePath)
			return nil, "", export.ErrBatchNotFound
		}
		return nil, "", err
	}
	return rc, path.Base(b.FilePath), nil
}

func toBatchResponse(b export.Batch) export.BatchResponse {
	return export.BatchResponse{
		ID:                   b.ID,
		PeriodStart:          b.PeriodStart.Format(dateLayout),
		PeriodEnd:            b.PeriodEnd.Format(dateLayout),
		DeviationCount:       b.DeviationCount,
		WarningCount:         b.WarningCount,
		WarningsAcknowledged: b.WarningsAcknowledged,
		FileName:             path.Base(b.FilePath),
		CreatedBy:            b.CreatedBy,
		CreatedAt:            b.CreatedAt.Format(time.RFC3339),
	}
}

var _ export.ExportService = (*ExportService)(nil)
