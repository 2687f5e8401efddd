package export

import (
	"errors"
	"fmt"
)

var (
	ErrExportBlocked           = errors.New("export blocked by validation errors")
	ErrWarningsNotAcknowledged = errors.New("validation warnings must be acknowledged before export")
	ErrNothingToExport         = errors.New("no approved deviations to export")
	ErrExportInProgress        = errors.New("an export for this period is already running")
	ErrBatchNotFound           = errors.New("export batch not found")
	ErrInvalidPeriod           = errors.New("invalid export period")
)

// BlockedError carries the validation result that stopped an export.
type BlockedError struct {
	Cause  error
	Result ValidationResult
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s (%d errors, %d warnings)", e.Cause.Error(), e.Result.CountByType(IssueTypeError), e.Result.CountByType(IssueTypeWarning))
}

func (e *BlockedError) Unwrap() error {
	return e.Cause
}
