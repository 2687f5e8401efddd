package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/leave"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Export stopped by validation: the result goes back so the client can show it
	var blocked *export.BlockedError
	if errors.As(err, &blocked) {
		code := "EXPORT_BLOCKED"
		if errors.Is(err, export.ErrWarningsNotAcknowledged) {
			code = "WARNINGS_NOT_ACKNOWLEDGED"
		}
		UnprocessableWithData(w, code, blocked.Cause.Error(), blocked.Result)
		return
	}

	switch {
	// Auth
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrPayrollAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrEmployeeIDRequired):
		Forbidden(w, "Account is not linked to an employee")

	// Deviation domain errors
	case errors.Is(err, deviation.ErrDeviationNotFound):
		NotFound(w, "Deviation not found")
	case errors.Is(err, deviation.ErrNotOwner),
		errors.Is(err, deviation.ErrSelfApproval):
		Forbidden(w, err.Error())
	case errors.Is(err, deviation.ErrDeviationNotEditable),
		errors.Is(err, deviation.ErrDeviationNotPending),
		errors.Is(err, deviation.ErrDeviationAlreadyExport):
		Conflict(w, err.Error())
	case errors.Is(err, deviation.ErrRetroactiveNotAllowed),
		errors.Is(err, deviation.ErrAdvanceNotAllowed),
		errors.Is(err, deviation.ErrIncompleteForSubmission):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrManagerNotFound):
		BadRequest(w, err.Error(), map[string]string{"manager_id": err.Error()})
	case errors.Is(err, employee.ErrEmployeeIDExists):
		Conflict(w, "Employee id already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")

	// Time code errors
	case errors.Is(err, timecode.ErrTimeCodeNotFound):
		NotFound(w, "Time code not found")
	case errors.Is(err, timecode.ErrTimeCodeExists):
		Conflict(w, "Time code already exists")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Vacation balance not found")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient vacation balance", nil)
	case errors.Is(err, leave.ErrOverlappingLeave),
		errors.Is(err, leave.ErrLeaveRequestNotEditable),
		errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrNotOwner),
		errors.Is(err, leave.ErrSelfApproval):
		Forbidden(w, err.Error())

	// Export
	case errors.Is(err, export.ErrBatchNotFound):
		NotFound(w, "Export batch not found")
	case errors.Is(err, export.ErrExportInProgress):
		Conflict(w, err.Error())
	case errors.Is(err, export.ErrNothingToExport),
		errors.Is(err, export.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
