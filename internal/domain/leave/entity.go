package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaveType string

const (
	LeaveTypeVacation    LeaveType = "vacation"
	LeaveTypeSick        LeaveType = "sick"
	LeaveTypeParental    LeaveType = "parental"
	LeaveTypeUnpaidLeave LeaveType = "unpaid-leave"
	LeaveTypeCompTime    LeaveType = "comp-time"
	LeaveTypeOther       LeaveType = "other"
)

func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeVacation, LeaveTypeSick, LeaveTypeParental, LeaveTypeUnpaidLeave, LeaveTypeCompTime, LeaveTypeOther:
		return true
	}
	return false
}

// Scope is the part of each day a leave request covers.
type Scope string

const (
	ScopeFullDay   Scope = "full-day"
	ScopeMorning   Scope = "morning"
	ScopeAfternoon Scope = "afternoon"
	ScopeCustom    Scope = "custom"
)

func (s Scope) IsValid() bool {
	switch s {
	case ScopeFullDay, ScopeMorning, ScopeAfternoon, ScopeCustom:
		return true
	}
	return false
}

// Factor is the share of a working day deducted per day of leave.
func (s Scope) Factor() float64 {
	switch s {
	case ScopeMorning, ScopeAfternoon:
		return 0.5
	default:
		return 1
	}
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusDraft    LeaveRequestStatus = "draft"
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusDraft, LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected:
		return true
	}
	return false
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string

	StartDate time.Time
	EndDate   time.Time
	LeaveType LeaveType
	Scope     Scope

	// DeductedDays is the vacation debit computed when the request was saved.
	DeductedDays float64
	Comment      *string

	Status         LeaveRequestStatus
	ManagerComment *string
	ApprovedBy     *string
	ApprovedAt     *time.Time
	RejectedBy     *string
	RejectedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// VacationBalance is an employee's vacation day account for one year.
type VacationBalance struct {
	EmployeeID   string
	Year         int
	EntitledDays decimal.Decimal
	SavedDays    decimal.Decimal
	UsedDays     decimal.Decimal
	UpdatedAt    time.Time
}

func (b VacationBalance) Remaining() decimal.Decimal {
	return b.EntitledDays.Add(b.SavedDays).Sub(b.UsedDays)
}
