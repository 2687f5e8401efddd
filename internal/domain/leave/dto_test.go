package leave

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLeaveRequestRequest_Validate(t *testing.T) {
	req := CreateLeaveRequestRequest{StartDate: "2025-07-07", EndDate: "2025-07-11", LeaveType: "vacation"}
	require.NoError(t, req.Validate())
	assert.Equal(t, string(ScopeFullDay), req.Scope, "scope defaults to full-day")

	backwards := CreateLeaveRequestRequest{StartDate: "2025-07-11", EndDate: "2025-07-07", LeaveType: "vacation"}
	err := backwards.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_date must not be before start_date")

	bad := CreateLeaveRequestRequest{StartDate: "nope", EndDate: "2025-07-11", LeaveType: "holiday", Scope: "evening"}
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_date")
	assert.Contains(t, err.Error(), "leave_type")
	assert.Contains(t, err.Error(), "scope")
}

func TestScope_Factor(t *testing.T) {
	assert.Equal(t, 1.0, ScopeFullDay.Factor())
	assert.Equal(t, 0.5, ScopeMorning.Factor())
	assert.Equal(t, 0.5, ScopeAfternoon.Factor())
	assert.Equal(t, 1.0, ScopeCustom.Factor())
	assert.Equal(t, 1.0, Scope("").Factor())
}

func TestVacationBalance_Remaining(t *testing.T) {
	b := VacationBalance{
		EntitledDays: decimal.NewFromInt(25),
		SavedDays:    decimal.NewFromInt(3),
		UsedDays:     decimal.RequireFromString("4.5"),
	}
	assert.True(t, b.Remaining().Equal(decimal.RequireFromString("23.5")))
}

func TestSetBalanceRequest_Validate(t *testing.T) {
	req := SetBalanceRequest{EmployeeID: "E001", Year: 2025, EntitledDays: decimal.NewFromInt(25)}
	assert.NoError(t, req.Validate())

	bad := SetBalanceRequest{Year: 1999, EntitledDays: decimal.NewFromInt(-1)}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee_id")
	assert.Contains(t, err.Error(), "year")
	assert.Contains(t, err.Error(), "entitled_days")
}
