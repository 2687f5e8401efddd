package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type exportBatchRepositoryImpl struct {
	db *database.DB
}

func NewExportBatchRepository(db *database.DB) export.BatchRepository {
	return &exportBatchRepositoryImpl{db: db}
}

const exportBatchColumns = `id::text, period_start, period_end, deviation_count, warning_count,
	warnings_acknowledged, file_path, created_by, created_at`

func scanExportBatch(row pgx.Row) (export.Batch, error) {
	var b export.Batch
	err := row.Scan(
		&b.ID, &b.PeriodStart, &b.PeriodEnd, &b.DeviationCount, &b.WarningCount,
		&b.WarningsAcknowledged, &b.FilePath, &b.CreatedBy, &b.CreatedAt,
	)
	return b, err
}

// Create implements export.BatchRepository.
func (r *exportBatchRepositoryImpl) Create(ctx context.Context, batch export.Batch) (export.Batch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO export_batches (
			id, period_start, period_end, deviation_count, warning_count,
			warnings_acknowledged, file_path, created_by, created_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		batch.ID, batch.PeriodStart, batch.PeriodEnd, batch.DeviationCount, batch.WarningCount,
		batch.WarningsAcknowledged, batch.FilePath, batch.CreatedBy,
	).Scan(&batch.CreatedAt)
	if err != nil {
		return export.Batch{}, fmt.Errorf("failed to create export batch: %w", err)
	}
	return batch, nil
}

// GetByID implements export.BatchRepository.
func (r *exportBatchRepositoryImpl) GetByID(ctx context.Context, id string) (export.Batch, error) {
	if _, err := uuid.Parse(id); err != nil {
		return export.Batch{}, export.ErrBatchNotFound
	}
	q := GetQuerier(ctx, r.db)

	b, err := scanExportBatch(q.QueryRow(ctx, `SELECT `+exportBatchColumns+` FROM export_batches WHERE id = $1::uuid`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return export.Batch{}, export.ErrBatchNotFound
		}
		return export.Batch{}, fmt.Errorf("failed to get export batch %s: %w", id, err)
	}
	return b, nil
}

// List implements export.BatchRepository.
func (r *exportBatchRepositoryImpl) List(ctx context.Context, filter export.BatchFilter) ([]export.Batch, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM export_batches`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count export batches: %w", err)
	}

	query := `
		SELECT ` + exportBatchColumns + `
		FROM export_batches
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := q.Query(ctx, query, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list export batches: %w", err)
	}
	defer rows.Close()

	var batches []export.Batch
	for rows.Next() {
		b, err := scanExportBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan export batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}
