package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrLeaveRequestNotEditable      = errors.New("leave request can only be changed while draft")
	ErrInsufficientBalance          = errors.New("insufficient vacation balance")
	ErrBalanceNotFound              = errors.New("vacation balance not found")
	ErrOverlappingLeave             = errors.New("leave request overlaps an existing request")
	ErrNotOwner                     = errors.New("leave request belongs to another employee")
	ErrSelfApproval                 = errors.New("managers cannot decide on their own leave requests")
)
