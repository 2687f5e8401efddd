package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timeCodeRepositoryImpl struct {
	db *database.DB
}

func NewTimeCodeRepository(db *database.DB) timecode.TimeCodeRepository {
	return &timeCodeRepositoryImpl{db: db}
}

// GetByCode implements timecode.TimeCodeRepository.
func (r *timeCodeRepositoryImpl) GetByCode(ctx context.Context, code string) (timecode.TimeCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT code, name_sv, name_en, approval_type, created_at, updated_at
		FROM time_codes
		WHERE code = $1
	`

	var tc timecode.TimeCode
	err := q.QueryRow(ctx, query, code).Scan(&tc.Code, &tc.NameSv, &tc.NameEn, &tc.ApprovalType, &tc.CreatedAt, &tc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timecode.TimeCode{}, timecode.ErrTimeCodeNotFound
		}
		return timecode.TimeCode{}, fmt.Errorf("failed to get time code %s: %w", code, err)
	}
	tc.RequiresManagerApproval = tc.Rules().RequiresManagerApproval
	return tc, nil
}

// List implements timecode.TimeCodeRepository.
func (r *timeCodeRepositoryImpl) List(ctx context.Context) ([]timecode.TimeCode, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT code, name_sv, name_en, approval_type, created_at, updated_at
		FROM time_codes
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list time codes: %w", err)
	}
	defer rows.Close()

	var codes []timecode.TimeCode
	for rows.Next() {
		var tc timecode.TimeCode
		if err := rows.Scan(&tc.Code, &tc.NameSv, &tc.NameEn, &tc.ApprovalType, &tc.CreatedAt, &tc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan time code: %w", err)
		}
		tc.RequiresManagerApproval = tc.Rules().RequiresManagerApproval
		codes = append(codes, tc)
	}
	return codes, rows.Err()
}

// Create implements timecode.TimeCodeRepository.
func (r *timeCodeRepositoryImpl) Create(ctx context.Context, tc timecode.TimeCode) (timecode.TimeCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_codes (code, name_sv, name_en, approval_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (code) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, tc.Code, tc.NameSv, tc.NameEn, tc.ApprovalType).Scan(&tc.CreatedAt, &tc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timecode.TimeCode{}, timecode.ErrTimeCodeExists
		}
		return timecode.TimeCode{}, fmt.Errorf("failed to create time code: %w", err)
	}
	return tc, nil
}

// Update implements timecode.TimeCodeRepository.
func (r *timeCodeRepositoryImpl) Update(ctx context.Context, req timecode.UpdateTimeCodeRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_codes
		SET name_sv = COALESCE($2, name_sv),
			name_en = COALESCE($3, name_en),
			approval_type = COALESCE($4, approval_type),
			updated_at = NOW()
		WHERE code = $1
	`

	tag, err := q.Exec(ctx, query, req.Code, req.NameSv, req.NameEn, req.ApprovalType)
	if err != nil {
		return fmt.Errorf("failed to update time code %s: %w", req.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return timecode.ErrTimeCodeNotFound
	}
	return nil
}
