package deviation

import "errors"

var (
	ErrDeviationNotFound       = errors.New("deviation not found")
	ErrDeviationNotEditable    = errors.New("deviation can only be changed while draft or returned")
	ErrDeviationNotPending     = errors.New("deviation is not waiting for approval")
	ErrDeviationAlreadyExport  = errors.New("deviation has already been exported to payroll")
	ErrRetroactiveNotAllowed   = errors.New("time code does not allow registration after the fact")
	ErrAdvanceNotAllowed       = errors.New("time code does not allow registration in advance")
	ErrIncompleteForSubmission = errors.New("date, start time, end time and time code are required before submitting")
	ErrNotOwner                = errors.New("deviation belongs to another employee")
	ErrSelfApproval            = errors.New("managers cannot decide on their own deviations")
)
