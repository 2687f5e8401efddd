package deviation

import (
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
)

type CreateDeviationRequest struct {
	// EmployeeID is taken from the token unless a manager registers on behalf of someone.
	EmployeeID string  `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`
	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
	TimeCode   *string `json:"time_code,omitempty"`
	Comment    *string `json:"comment,omitempty"`
	Submit     bool    `json:"submit"`
}

func (r *CreateDeviationRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateFields(r.Date, r.StartTime, r.EndTime, r.TimeCode, r.Comment)...)

	if r.Submit {
		if validator.IsBlank(r.Date) || validator.IsBlank(r.StartTime) || validator.IsBlank(r.EndTime) || validator.IsBlank(r.TimeCode) {
			errs = append(errs, validator.ValidationError{Field: "submit", Message: ErrIncompleteForSubmission.Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateDeviationRequest struct {
	ID        int64   `json:"-"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	TimeCode  *string `json:"time_code,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

func (r *UpdateDeviationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id must be a positive integer"})
	}
	errs = append(errs, validateFields(r.Date, r.StartTime, r.EndTime, r.TimeCode, r.Comment)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateFields(date, start, end, code, comment *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if date != nil {
		if _, ok := validator.IsValidDate(*date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
		}
	}
	if start != nil && !validator.IsValidTimeOfDay(*start) {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time must be in HH:MM format"})
	}
	if end != nil && !validator.IsValidTimeOfDay(*end) {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be in HH:MM format"})
	}
	if start != nil && end != nil && validator.IsValidTimeOfDay(*start) && validator.IsValidTimeOfDay(*end) && *end <= *start {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be after start_time"})
	}
	if code != nil && !validator.IsValidTimeCode(*code) {
		errs = append(errs, validator.ValidationError{Field: "time_code", Message: "time_code may only contain letters and digits"})
	}
	if comment != nil && len(*comment) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "comment", Message: "comment must not exceed 1000 characters"})
	}

	return errs
}

// DecisionRequest carries a manager's approve/reject/return action.
type DecisionRequest struct {
	ID             int64   `json:"-"`
	ManagerComment *string `json:"manager_comment,omitempty"`
}

func (r *DecisionRequest) Validate(requireComment bool) error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id must be a positive integer"})
	}
	if requireComment && validator.IsBlank(r.ManagerComment) {
		errs = append(errs, validator.ValidationError{Field: "manager_comment", Message: "manager_comment is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeviationFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	TimeCode   *string `json:"time_code,omitempty"`
	DateFrom   *string `json:"date_from,omitempty"`
	DateTo     *string `json:"date_to,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *DeviationFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be draft, pending, approved, rejected or returned"})
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

type DeviationResponse struct {
	ID             int64   `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   *string `json:"employee_name,omitempty"`
	Date           *string `json:"date,omitempty"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	TimeCode       *string `json:"time_code,omitempty"`
	Comment        *string `json:"comment,omitempty"`
	Status         string  `json:"status"`
	ManagerComment *string `json:"manager_comment,omitempty"`
	ApprovedBy     *string `json:"approved_by,omitempty"`
	ApprovedAt     *string `json:"approved_at,omitempty"`
	RejectedBy     *string `json:"rejected_by,omitempty"`
	RejectedAt     *string `json:"rejected_at,omitempty"`
	ExportBatchID  *string `json:"export_batch_id,omitempty"`
	ExportedAt     *string `json:"exported_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func NewDeviationResponse(d Deviation) DeviationResponse {
	return DeviationResponse{
		ID:             d.ID,
		EmployeeID:     d.EmployeeID,
		Date:           formatDate(d.Date),
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		TimeCode:       d.TimeCode,
		Comment:        d.Comment,
		Status:         string(d.Status),
		ManagerComment: d.ManagerComment,
		ApprovedBy:     d.ApprovedBy,
		ApprovedAt:     formatTimestamp(d.ApprovedAt),
		RejectedBy:     d.RejectedBy,
		RejectedAt:     formatTimestamp(d.RejectedAt),
		ExportBatchID:  d.ExportBatchID,
		ExportedAt:     formatTimestamp(d.ExportedAt),
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      d.UpdatedAt.Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validator.DateLayout)
	return &s
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type ListDeviationResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Deviations []DeviationResponse `json:"deviations"`
}
