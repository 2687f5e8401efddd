package leave

import (
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLeaveRequestRequest struct {
	EmployeeID string  `json:"employee_id,omitempty"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	LeaveType  string  `json:"leave_type"`
	Scope      string  `json:"scope,omitempty"`
	Comment    *string `json:"comment,omitempty"`
	Submit     bool    `json:"submit"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Scope == "" {
		r.Scope = string(ScopeFullDay)
	}

	errs = append(errs, validateRange(r.StartDate, r.EndDate)...)

	if !LeaveType(r.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type must be vacation, sick, parental, unpaid-leave, comp-time or other"})
	}
	if !Scope(r.Scope).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "scope", Message: "scope must be full-day, morning, afternoon or custom"})
	}
	if r.Comment != nil && len(*r.Comment) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "comment", Message: "comment must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateRange(start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	startDate, startOK := validator.IsValidDate(start)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	endDate, endOK := validator.IsValidDate(end)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}

	return errs
}

type DecisionRequest struct {
	ID             string  `json:"-"`
	ManagerComment *string `json:"manager_comment,omitempty"`
}

func (r *DecisionRequest) Validate(requireComment bool) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if requireComment && validator.IsBlank(r.ManagerComment) {
		errs = append(errs, validator.ValidationError{Field: "manager_comment", Message: "manager_comment is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveRequestFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	LeaveType  *string `json:"leave_type,omitempty"`
	DateFrom   *string `json:"date_from,omitempty"`
	DateTo     *string `json:"date_to,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !LeaveRequestStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be draft, pending, approved or rejected"})
	}
	if f.LeaveType != nil && !LeaveType(*f.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "invalid leave_type"})
	}
	if f.DateFrom != nil {
		if _, ok := validator.IsValidDate(*f.DateFrom); !ok {
			errs = append(errs, validator.ValidationError{Field: "date_from", Message: "date_from must be in YYYY-MM-DD format"})
		}
	}
	if f.DateTo != nil {
		if _, ok := validator.IsValidDate(*f.DateTo); !ok {
			errs = append(errs, validator.ValidationError{Field: "date_to", Message: "date_to must be in YYYY-MM-DD format"})
		}
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeductionPreviewRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	LeaveType string `json:"leave_type"`
	Scope     string `json:"scope,omitempty"`
}

func (r *DeductionPreviewRequest) Validate() error {
	if r.Scope == "" {
		r.Scope = string(ScopeFullDay)
	}

	errs := validateRange(r.StartDate, r.EndDate)
	if !LeaveType(r.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "invalid leave_type"})
	}
	if !Scope(r.Scope).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "scope", Message: "scope must be full-day, morning, afternoon or custom"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeductionPreviewResponse struct {
	WorkingDays  int     `json:"working_days"`
	DeductedDays float64 `json:"deducted_days"`
}

type SetBalanceRequest struct {
	EmployeeID   string          `json:"-"`
	Year         int             `json:"year"`
	EntitledDays decimal.Decimal `json:"entitled_days"`
	SavedDays    decimal.Decimal `json:"saved_days"`
}

func (r *SetBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be between 2000 and 2100"})
	}
	if r.EntitledDays.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "entitled_days", Message: "must be non-negative"})
	}
	if r.SavedDays.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "saved_days", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type VacationBalanceResponse struct {
	EmployeeID    string          `json:"employee_id"`
	Year          int             `json:"year"`
	EntitledDays  decimal.Decimal `json:"entitled_days"`
	SavedDays     decimal.Decimal `json:"saved_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	RemainingDays decimal.Decimal `json:"remaining_days"`
}

func NewVacationBalanceResponse(b VacationBalance) VacationBalanceResponse {
	return VacationBalanceResponse{
		EmployeeID:    b.EmployeeID,
		Year:          b.Year,
		EntitledDays:  b.EntitledDays,
		SavedDays:     b.SavedDays,
		UsedDays:      b.UsedDays,
		RemainingDays: b.Remaining(),
	}
}

type LeaveRequestResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   *string `json:"employee_name,omitempty"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	LeaveType      string  `json:"leave_type"`
	Scope          string  `json:"scope"`
	DeductedDays   float64 `json:"deducted_days"`
	Comment        *string `json:"comment,omitempty"`
	Status         string  `json:"status"`
	ManagerComment *string `json:"manager_comment,omitempty"`
	ApprovedBy     *string `json:"approved_by,omitempty"`
	ApprovedAt     *string `json:"approved_at,omitempty"`
	RejectedBy     *string `json:"rejected_by,omitempty"`
	RejectedAt     *string `json:"rejected_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func NewLeaveRequestResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:             lr.ID,
		EmployeeID:     lr.EmployeeID,
		EmployeeName:   lr.EmployeeName,
		StartDate:      lr.StartDate.Format(validator.DateLayout),
		EndDate:        lr.EndDate.Format(validator.DateLayout),
		LeaveType:      string(lr.LeaveType),
		Scope:          string(lr.Scope),
		DeductedDays:   lr.DeductedDays,
		Comment:        lr.Comment,
		Status:         string(lr.Status),
		ManagerComment: lr.ManagerComment,
		ApprovedBy:     lr.ApprovedBy,
		RejectedBy:     lr.RejectedBy,
		CreatedAt:      lr.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      lr.UpdatedAt.Format(time.RFC3339),
	}
	if lr.ApprovedAt != nil {
		s := lr.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if lr.RejectedAt != nil {
		s := lr.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &s
	}
	return resp
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}
