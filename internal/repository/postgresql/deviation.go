package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type deviationRepositoryImpl struct {
	db *database.DB
}

func NewDeviationRepository(db *database.DB) deviation.DeviationRepository {
	return &deviationRepositoryImpl{db: db}
}

// Times are read back as HH:MM so they compare equal to what the client sent.
const deviationColumns = `d.id, d.employee_id, d.date,
	to_char(d.start_time, 'HH24:MI'), to_char(d.end_time, 'HH24:MI'),
	d.time_code, d.comment, d.status, d.manager_comment,
	d.approved_by, d.approved_at, d.rejected_by, d.rejected_at,
	d.export_batch_id::text, d.exported_at, d.created_at, d.updated_at`

func scanDeviation(row pgx.Row) (deviation.Deviation, error) {
	var d deviation.Deviation
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.Date,
		&d.StartTime, &d.EndTime,
		&d.TimeCode, &d.Comment, &d.Status, &d.ManagerComment,
		&d.ApprovedBy, &d.ApprovedAt, &d.RejectedBy, &d.RejectedAt,
		&d.ExportBatchID, &d.ExportedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func collectDeviations(rows pgx.Rows) ([]deviation.Deviation, error) {
	defer rows.Close()

	var deviations []deviation.Deviation
	for rows.Next() {
		d, err := scanDeviation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deviation: %w", err)
		}
		deviations = append(deviations, d)
	}
	return deviations, rows.Err()
}

// Create implements deviation.DeviationRepository.
func (r *deviationRepositoryImpl) Create(ctx context.Context, d deviation.Deviation) (deviation.Deviation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO deviations (
			employee_id, date, start_time, end_time, time_code, comment, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3::text::time, $4::text::time, $5, $6, $7,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		d.EmployeeID, d.Date, d.StartTime, d.EndTime, d.TimeCode, d.Comment, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return deviation.Deviation{}, fmt.Errorf("failed to create deviation: %w", err)
	}

	return d, nil
}

// GetByID implements deviation.DeviationRepository.
func (r *deviationRepositoryImpl) GetByID(ctx context.Context, id int64) (deviation.Deviation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + deviationColumns + ` FROM deviations d WHERE d.id = $1`

	d, err := scanDeviation(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return deviation.Deviation{}, deviation.ErrDeviationNotFound
		}
		return deviation.Deviation{}, fmt.Errorf("failed to get deviation %d: %w", id, err)
	}
	return d, nil
}

// List implements deviation.DeviationRepository.
func (r *deviationRepositoryImpl) List(ctx context.Context, filter deviation.DeviationFilter) ([]deviation.Deviation, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("d.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.TimeCode != nil && *filter.TimeCode != "" {
		conditions = append(conditions, fmt.Sprintf("d.time_code = $%d", argIdx))
		args = append(args, *filter.TimeCode)
		argIdx++
	}
	if filter.DateFrom != nil && *filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("d.date >= $%d::date", argIdx))
		args = append(args, *filter.DateFrom)
		argIdx++
	}
	if filter.DateTo != nil && *filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("d.date <= $%d::date", argIdx))
		args = append(args, *filter.DateTo)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM deviations d WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count deviations: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM deviations d
		WHERE %s
		ORDER BY d.date DESC NULLS FIRST, d.start_time, d.id
		LIMIT $%d OFFSET $%d
	`, deviationColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deviations: %w", err)
	}
	deviations, err := collectDeviations(rows)
	if err != nil {
		return nil, 0, err
	}

	return deviations, total, nil
}

// ListForPeriod implements deviation.DeviationRepository.
// Rows without a date are included so the export validation can report them.
func (r *deviationRepositoryImpl) ListForPeriod(ctx context.Context, from, to time.Time, includeExported bool) ([]deviation.Deviation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + deviationColumns + `
		FROM deviations d
		WHERE (d.date BETWEEN $1 AND $2 OR (d.date IS NULL AND d.status = 'approved'))
		  AND ($3 OR d.export_batch_id IS NULL)
		ORDER BY d.employee_id, d.date, d.start_time, d.id
	`

	rows, err := q.Query(ctx, query, from, to, includeExported)
	if err != nil {
		return nil, fmt.Errorf("failed to list deviations for period: %w", err)
	}
	return collectDeviations(rows)
}

// Update implements deviation.DeviationRepository.
func (r *deviationRepositoryImpl) Update(ctx context.Context, d deviation.Deviation) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE deviations
		SET date = $2,
			start_time = $3::text::time,
			end_time = $4::text::time,
			time_code = $5,
			comment = $6,
			status = $7,
			manager_comment = $8,
			approved_by = $9,
			approved_at = $10,
			rejected_by = $11,
			rejected_at = $12,
			updated_at = NOW()
		WHERE id = $1 AND export_batch_id IS NULL
	`

	tag, err := q.Exec(ctx, query,
		d.ID, d.Date, d.StartTime, d.EndTime, d.TimeCode, d.Comment, d.Status, d.ManagerComment,
		d.ApprovedBy, d.ApprovedAt, d.RejectedBy, d.RejectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update deviation %d: %w", d.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return deviation.ErrDeviationNotFound
	}
	return nil
}

// Decide implements deviation.DeviationRepository.
func (r *deviationRepositoryImpl) Decide(ctx context.Context, d deviation.Deviation) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE deviations
		SET status = $2,
			manager_comment = $3,
			approved_by = $4,
			approved_at = $5,
			rejected_by = $6,
			rejected_at = $7,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND export_batch_id IS NULL
	`

	tag, err := q.Exec(ctx, query,
		d.ID, d.Status, d.ManagerComment, d.ApprovedBy, d.ApprovedAt, d.RejectedBy, d.RejectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to decide deviation %d: %w", d.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return deviation.ErrDeviationNotPending
	}
	return nil
}

// Delete implements deviation.DeviationRepository.
func (r *deviationRepositoryImpl) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM deviations WHERE id = $1 AND export_batch_id IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deviation %d: %w", id, err)
	}
	if tag.RowsAffected() != 1 {
		return deviation.ErrDeviationNotFound
	}
	return nil
}

// MarkExported implements deviation.DeviationRepository.
func (r *deviationRepositoryImpl) MarkExported(ctx context.Context, ids []int64, batchID string, exportedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE deviations
		SET export_batch_id = $1::uuid, exported_at = $2, updated_at = NOW()
		WHERE id = ANY($3) AND status = 'approved' AND export_batch_id IS NULL
	`

	tag, err := q.Exec(ctx, query, batchID, exportedAt, ids)
	if err != nil {
		return fmt.Errorf("failed to mark deviations exported: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		// another export got some of them first
		return deviation.ErrDeviationAlreadyExport
	}
	return nil
}
