package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	Update(ctx context.Context, request LeaveRequest) error
	// Decide stores an approval or rejection only while the request is still
	// pending; otherwise it returns ErrLeaveRequestAlreadyProcessed.
	Decide(ctx context.Context, request LeaveRequest) error
	Delete(ctx context.Context, id string) error
	CheckOverlapping(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
}

// VacationBalanceRepository - interface for vacation_balances table
type VacationBalanceRepository interface {
	Get(ctx context.Context, employeeID string, year int) (VacationBalance, error)
	Upsert(ctx context.Context, balance VacationBalance) (VacationBalance, error)
	// Debit adds days to used_days; callers run it inside the approval transaction.
	Debit(ctx context.Context, employeeID string, year int, days decimal.Decimal) error
}
