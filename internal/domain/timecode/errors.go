package timecode

import "errors"

var (
	ErrTimeCodeNotFound     = errors.New("time code not found")
	ErrTimeCodeExists       = errors.New("time code already exists")
	ErrInvalidApprovalType  = errors.New("approval_type must be pre_approval, post_approval, attestation or flexible")
	ErrInvalidTimeCodeValue = errors.New("time code may only contain letters and digits")
)
