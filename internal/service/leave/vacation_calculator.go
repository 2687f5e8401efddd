package leave

import (
	"log/slog"
	"strings"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/leave"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/calendar"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
)

// VacationCalculator turns a leave request into the number of vacation days to debit.
// Invalid input yields 0 and a warning, never an error.
type VacationCalculator struct {
	logger *slog.Logger
}

func NewVacationCalculator(logger *slog.Logger) *VacationCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &VacationCalculator{logger: logger}
}

// CalculateDeduction returns the working days in [start, end] scaled by scope.
// Only vacation deducts; half-day scopes count 0.5 per working day.
func (c *VacationCalculator) CalculateDeduction(leaveType leave.LeaveType, start, end time.Time, scope leave.Scope) float64 {
	if leaveType != leave.LeaveTypeVacation {
		return 0
	}
	if start.IsZero() || end.IsZero() {
		c.logger.Warn("vacation deduction skipped: missing date",
			slog.Time("start_date", start), slog.Time("end_date", end))
		return 0
	}
	if calendar.DateOf(start).After(calendar.DateOf(end)) {
		c.logger.Warn("vacation deduction skipped: start date after end date",
			slog.String("start_date", start.Format(validator.DateLayout)),
			slog.String("end_date", end.Format(validator.DateLayout)))
		return 0
	}

	workingDays := calendar.CalculateWorkingDays(start, end)
	return float64(workingDays) * scope.Factor()
}

// CalculateDeductionFromStrings parses YYYY-MM-DD dates before calculating.
func (c *VacationCalculator) CalculateDeductionFromStrings(leaveType, startDate, endDate, scope string) float64 {
	if leave.LeaveType(leaveType) != leave.LeaveTypeVacation {
		return 0
	}

	start, startOK := validator.IsValidDate(strings.TrimSpace(startDate))
	end, endOK := validator.IsValidDate(strings.TrimSpace(endDate))
	if !startOK || !endOK {
		c.logger.Warn("vacation deduction skipped: invalid date",
			slog.String("start_date", startDate), slog.String("end_date", endDate))
		return 0
	}

	if scope == "" {
		scope = string(leave.ScopeFullDay)
	}
	return c.CalculateDeduction(leave.LeaveTypeVacation, start, end, leave.Scope(scope))
}
