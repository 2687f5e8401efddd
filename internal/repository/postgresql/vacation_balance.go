package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/leave"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type vacationBalanceRepositoryImpl struct {
	db *database.DB
}

func NewVacationBalanceRepository(db *database.DB) leave.VacationBalanceRepository {
	return &vacationBalanceRepositoryImpl{db: db}
}

// Get implements leave.VacationBalanceRepository.
func (r *vacationBalanceRepositoryImpl) Get(ctx context.Context, employeeID string, year int) (leave.VacationBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, year, entitled_days::text, saved_days::text, used_days::text, updated_at
		FROM vacation_balances
		WHERE employee_id = $1 AND year = $2
	`

	var b leave.VacationBalance
	var entitled, saved, used string
	err := q.QueryRow(ctx, query, employeeID, year).Scan(&b.EmployeeID, &b.Year, &entitled, &saved, &used, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.VacationBalance{}, leave.ErrBalanceNotFound
		}
		return leave.VacationBalance{}, fmt.Errorf("failed to get vacation balance: %w", err)
	}

	if b.EntitledDays, err = decimal.NewFromString(entitled); err != nil {
		return leave.VacationBalance{}, fmt.Errorf("invalid entitled_days %q: %w", entitled, err)
	}
	if b.SavedDays, err = decimal.NewFromString(saved); err != nil {
		return leave.VacationBalance{}, fmt.Errorf("invalid saved_days %q: %w", saved, err)
	}
	if b.UsedDays, err = decimal.NewFromString(used); err != nil {
		return leave.VacationBalance{}, fmt.Errorf("invalid used_days %q: %w", used, err)
	}
	return b, nil
}

// Upsert implements leave.VacationBalanceRepository. Used days are never overwritten.
func (r *vacationBalanceRepositoryImpl) Upsert(ctx context.Context, balance leave.VacationBalance) (leave.VacationBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO vacation_balances (employee_id, year, entitled_days, saved_days, used_days, updated_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, 0, NOW())
		ON CONFLICT (employee_id, year) DO UPDATE
		SET entitled_days = EXCLUDED.entitled_days,
			saved_days = EXCLUDED.saved_days,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, balance.EmployeeID, balance.Year, balance.EntitledDays.String(), balance.SavedDays.String()); err != nil {
		return leave.VacationBalance{}, fmt.Errorf("failed to upsert vacation balance: %w", err)
	}
	return r.Get(ctx, balance.EmployeeID, balance.Year)
}

// Debit implements leave.VacationBalanceRepository.
func (r *vacationBalanceRepositoryImpl) Debit(ctx context.Context, employeeID string, year int, days decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	// The remaining-days guard keeps concurrent approvals from overdrawing.
	query := `
		UPDATE vacation_balances
		SET used_days = used_days + $3::numeric, updated_at = NOW()
		WHERE employee_id = $1 AND year = $2
		  AND entitled_days + saved_days - used_days >= $3::numeric
	`

	tag, err := q.Exec(ctx, query, employeeID, year, days.String())
	if err != nil {
		return fmt.Errorf("failed to debit vacation balance: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vacation_balances WHERE employee_id = $1 AND year = $2)`, employeeID, year).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check vacation balance: %w", err)
	}
	if !exists {
		return leave.ErrBalanceNotFound
	}
	return leave.ErrInsufficientBalance
}
