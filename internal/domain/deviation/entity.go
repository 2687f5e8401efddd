package deviation

import "time"

type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusReturned:
		return true
	}
	return false
}

// Deviation is one recorded exception from an employee's schedule.
// Date, times and time code stay optional until the record is finalized.
type Deviation struct {
	ID             int64
	EmployeeID     string
	Date           *time.Time
	StartTime      *string // "HH:MM"
	EndTime        *string // "HH:MM"
	TimeCode       *string
	Comment        *string
	Status         Status
	ManagerComment *string

	ApprovedBy *string
	ApprovedAt *time.Time
	RejectedBy *string
	RejectedAt *time.Time

	ExportBatchID *string
	ExportedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d Deviation) IsApproved() bool {
	return d.Status == StatusApproved
}

func (d Deviation) IsExported() bool {
	return d.ExportBatchID != nil
}

// IsEditable reports whether the owner may still change the record.
func (d Deviation) IsEditable() bool {
	return d.Status == StatusDraft || d.Status == StatusReturned
}

// HasConflictingDecision is true when both approval and rejection fields are set.
func (d Deviation) HasConflictingDecision() bool {
	approved := d.ApprovedBy != nil || d.ApprovedAt != nil
	rejected := d.RejectedBy != nil || d.RejectedAt != nil
	return approved && rejected
}

// Approve moves a pending record to approved and clears any rejection.
func (d *Deviation) Approve(by string, at time.Time, comment *string) {
	d.Status = StatusApproved
	d.ApprovedBy = &by
	d.ApprovedAt = &at
	d.RejectedBy = nil
	d.RejectedAt = nil
	d.ManagerComment = comment
}

// Reject moves a pending record to rejected and clears any approval.
func (d *Deviation) Reject(by string, at time.Time, comment *string) {
	d.Status = StatusRejected
	d.RejectedBy = &by
	d.RejectedAt = &at
	d.ApprovedBy = nil
	d.ApprovedAt = nil
	d.ManagerComment = comment
}

// Return sends a pending record back to the employee for correction.
func (d *Deviation) Return(comment *string) {
	d.Status = StatusReturned
	d.ApprovedBy = nil
	d.ApprovedAt = nil
	d.RejectedBy = nil
	d.RejectedAt = nil
	d.ManagerComment = comment
}
