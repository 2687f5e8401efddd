package deviation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
)

type DeviationServiceImpl struct {
	deviations deviation.DeviationRepository
	employees  employee.EmployeeRepository
	timeCodes  timecode.TimeCodeRepository
	logger     *slog.Logger
	location   *time.Location
	now        func() time.Time
}

func NewDeviationService(
	deviations deviation.DeviationRepository,
	employees employee.EmployeeRepository,
	timeCodes timecode.TimeCodeRepository,
	logger *slog.Logger,
	location *time.Location,
) *DeviationServiceImpl {
	if location == nil {
		location = time.UTC
	}
	return &DeviationServiceImpl{
		deviations: deviations,
		employees:  employees,
		timeCodes:  timeCodes,
		logger:     logger,
		location:   location,
		now:        time.Now,
	}
}

func callerFrom(ctx context.Context) (user.Claims, error) {
	claims, ok := user.ClaimsFromContext(ctx)
	if !ok {
		return user.Claims{}, user.ErrInvalidToken
	}
	return claims, nil
}

// today is the current payroll date, as a UTC midnight like parsed dates.
func (s *DeviationServiceImpl) today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// checkRegistrationWindow enforces the time code's approval type against the date.
// Unknown codes get attestation rules; the export validator reports them separately.
func (s *DeviationServiceImpl) checkRegistrationWindow(ctx context.Context, d deviation.Deviation) error {
	if d.Date == nil || d.TimeCode == nil {
		return nil
	}

	rules := timecode.Rules(timecode.ApprovalTypeAttestation)
	tc, err := s.timeCodes.GetByCode(ctx, *d.TimeCode)
	switch {
	case err == nil:
		rules = tc.Rules()
	case errors.Is(err, timecode.ErrTimeCodeNotFound):
	default:
		return fmt.Errorf("failed to get time code: %w", err)
	}

	today := s.today()
	if d.Date.After(today) && !rules.AllowAdvance {
		return deviation.ErrAdvanceNotAllowed
	}
	if d.Date.Before(today) && !rules.AllowRetroactive {
		return deviation.ErrRetroactiveNotAllowed
	}
	return nil
}

func isComplete(d deviation.Deviation) bool {
	return d.Date != nil && !validator.IsBlank(d.StartTime) && !validator.IsBlank(d.EndTime) && !validator.IsBlank(d.TimeCode)
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(validator.DateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

func (s *DeviationServiceImpl) respond(ctx context.Context, d deviation.Deviation) deviation.DeviationResponse {
	resp := deviation.NewDeviationResponse(d)
	if emp, err := s.employees.GetByEmployeeID(ctx, d.EmployeeID); err == nil {
		name := emp.FullName()
		resp.EmployeeName = &name
	}
	return resp
}

// CreateDeviation implements deviation.DeviationService.
func (s *DeviationServiceImpl) CreateDeviation(ctx context.Context, req deviation.CreateDeviationRequest) (deviation.DeviationResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return deviation.DeviationResponse{}, err
	}

	employeeID := claims.OwnEmployeeID()
	if req.EmployeeID != "" && req.EmployeeID != employeeID {
		if !claims.IsReviewer() {
			return deviation.DeviationResponse{}, deviation.ErrNotOwner
		}
		employeeID = req.EmployeeID
	}
	if employeeID == "" {
		return deviation.DeviationResponse{}, user.ErrEmployeeIDRequired
	}

	if err := req.Validate(); err != nil {
		return deviation.DeviationResponse{}, err
	}
	if _, err := s.employees.GetByEmployeeID(ctx, employeeID); err != nil {
		return deviation.DeviationResponse{}, err
	}

	d := deviation.Deviation{
		EmployeeID: employeeID,
		Date:       parseDate(req.Date),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		TimeCode:   req.TimeCode,
		Comment:    req.Comment,
		Status:     deviation.StatusDraft,
	}
	if req.Submit {
		if err := s.checkRegistrationWindow(ctx, d); err != nil {
			return deviation.DeviationResponse{}, err
		}
		d.Status = deviation.StatusPending
	}

	created, err := s.deviations.Create(ctx, d)
	if err != nil {
		return deviation.DeviationResponse{}, fmt.Errorf("failed to create deviation: %w", err)
	}
	return s.respond(ctx, created), nil
}

// getOwned loads a deviation the caller may see.
func (s *DeviationServiceImpl) getOwned(ctx context.Context, claims user.Claims, id int64) (deviation.Deviation, error) {
	d, err := s.deviations.GetByID(ctx, id)
	if err != nil {
		return deviation.Deviation{}, err
	}
	if !claims.IsReviewer() && d.EmployeeID != claims.OwnEmployeeID() {
		return deviation.Deviation{}, deviation.ErrNotOwner
	}
	return d, nil
}

// editable loads a deviation the caller may still change.
func (s *DeviationServiceImpl) editable(ctx context.Context, id int64) (deviation.Deviation, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return deviation.Deviation{}, err
	}
	d, err := s.getOwned(ctx, claims, id)
	if err != nil {
		return deviation.Deviation{}, err
	}
	if d.IsExported() {
		return deviation.Deviation{}, deviation.ErrDeviationAlreadyExport
	}
	if !d.IsEditable() {
		return deviation.Deviation{}, deviation.ErrDeviationNotEditable
	}
	return d, nil
}

// UpdateDeviation implements deviation.DeviationService. Only fields present in
// the request are changed.
func (s *DeviationServiceImpl) UpdateDeviation(ctx context.Context, req deviation.UpdateDeviationRequest) (deviation.DeviationResponse, error) {
	if err := req.Validate(); err != nil {
		return deviation.DeviationResponse{}, err
	}

	d, err := s.editable(ctx, req.ID)
	if err != nil {
		return deviation.DeviationResponse{}, err
	}

	if req.Date != nil {
		d.Date = parseDate(req.Date)
	}
	if req.StartTime != nil {
		d.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		d.EndTime = req.EndTime
	}
	if req.TimeCode != nil {
		d.TimeCode = req.TimeCode
	}
	if req.Comment != nil {
		d.Comment = req.Comment
	}
	if d.StartTime != nil && d.EndTime != nil && *d.EndTime <= *d.StartTime {
		return deviation.DeviationResponse{}, validator.ValidationErrors{
			{Field: "end_time", Message: "end_time must be after start_time"},
		}
	}

	if err := s.deviations.Update(ctx, d); err != nil {
		return deviation.DeviationResponse{}, err
	}
	return s.respond(ctx, d), nil
}

// DeleteDeviation implements deviation.DeviationService.
func (s *DeviationServiceImpl) DeleteDeviation(ctx context.Context, id int64) error {
	d, err := s.editable(ctx, id)
	if err != nil {
		return err
	}
	if d.Status != deviation.StatusDraft {
		return deviation.ErrDeviationNotEditable
	}
	return s.deviations.Delete(ctx, id)
}

// GetDeviation implements deviation.DeviationService.
func (s *DeviationServiceImpl) GetDeviation(ctx context.Context, id int64) (deviation.DeviationResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return deviation.DeviationResponse{}, err
	}
	d, err := s.getOwned(ctx, claims, id)
	if err != nil {
		return deviation.DeviationResponse{}, err
	}
	return s.respond(ctx, d), nil
}

// ListDeviations implements deviation.DeviationService. Employees only ever see their own.
func (s *DeviationServiceImpl) ListDeviations(ctx context.Context, filter deviation.DeviationFilter) (deviation.ListDeviationResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return deviation.ListDeviationResponse{}, err
	}
	if !user.HasPermission(claims.Role, user.PermissionDeviationViewAll) {
		return s.ListMyDeviations(ctx, filter)
	}
	return s.list(ctx, filter)
}

// ListMyDeviations implements deviation.DeviationService.
func (s *DeviationServiceImpl) ListMyDeviations(ctx context.Context, filter deviation.DeviationFilter) (deviation.ListDeviationResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return deviation.ListDeviationResponse{}, err
	}
	own := claims.OwnEmployeeID()
	if own == "" {
		return deviation.ListDeviationResponse{}, user.ErrEmployeeIDRequired
	}
	filter.EmployeeID = &own
	return s.list(ctx, filter)
}

func (s *DeviationServiceImpl) list(ctx context.Context, filter deviation.DeviationFilter) (deviation.ListDeviationResponse, error) {
	if err := filter.Validate(); err != nil {
		return deviation.ListDeviationResponse{}, err
	}

	devs, total, err := s.deviations.List(ctx, filter)
	if err != nil {
		return deviation.ListDeviationResponse{}, fmt.Errorf("failed to list deviations: %w", err)
	}

	names := make(map[string]string)
	if len(devs) > 0 {
		emps, err := s.employees.ListAll(ctx)
		if err != nil {
			return deviation.ListDeviationResponse{}, fmt.Errorf("failed to list employees: %w", err)
		}
		for _, e := range emps {
			names[e.EmployeeID] = e.FullName()
		}
	}

	resp := deviation.ListDeviationResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Deviations: make([]deviation.DeviationResponse, 0, len(devs)),
	}
	for _, d := range devs {
		r := deviation.NewDeviationResponse(d)
		if name, ok := names[d.EmployeeID]; ok {
			r.EmployeeName = &name
		}
		resp.Deviations = append(resp.Deviations, r)
	}
	return resp, nil
}

// SubmitDeviation implements deviation.DeviationService.
func (s *DeviationServiceImpl) SubmitDeviation(ctx context.Context, id int64) (deviation.DeviationResponse, error) {
	d, err := s.editable(ctx, id)
	if err != nil {
		return deviation.DeviationResponse{}, err
	}
	if !isComplete(d) {
		return deviation.DeviationResponse{}, deviation.ErrIncompleteForSubmission
	}
	if err := s.checkRegistrationWindow(ctx, d); err != nil {
		return deviation.DeviationResponse{}, err
	}

	d.Status = deviation.StatusPending
	if err := s.deviations.Update(ctx, d); err != nil {
		return deviation.DeviationResponse{}, err
	}
	return s.respond(ctx, d), nil
}

// decide loads a pending deviation the caller may decide on.
func (s *DeviationServiceImpl) decide(ctx context.Context, req deviation.DecisionRequest, requireComment bool) (user.Claims, deviation.Deviation, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return user.Claims{}, deviation.Deviation{}, err
	}
	if !user.HasPermission(claims.Role, user.PermissionDeviationApprove) {
		return user.Claims{}, deviation.Deviation{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(requireComment); err != nil {
		return user.Claims{}, deviation.Deviation{}, err
	}

	d, err := s.deviations.GetByID(ctx, req.ID)
	if err != nil {
		return user.Claims{}, deviation.Deviation{}, err
	}
	if own := claims.OwnEmployeeID(); own != "" && d.EmployeeID == own {
		return user.Claims{}, deviation.Deviation{}, deviation.ErrSelfApproval
	}
	if d.IsExported() {
		return user.Claims{}, deviation.Deviation{}, deviation.ErrDeviationAlreadyExport
	}
	if d.Status != deviation.StatusPending {
		return user.Claims{}, deviation.Deviation{}, deviation.ErrDeviationNotPending
	}
	return claims, d, nil
}

// ApproveDeviation implements deviation.DeviationService.
func (s *DeviationServiceImpl) ApproveDeviation(ctx context.Context, req deviation.DecisionRequest) (deviation.DeviationResponse, error) {
	claims, d, err := s.decide(ctx, req, false)
	if err != nil {
		return deviation.DeviationResponse{}, err
	}

	d.Approve(claims.UserID, s.now(), req.ManagerComment)
	if err := s.deviations.Decide(ctx, d); err != nil {
		return deviation.DeviationResponse{}, err
	}
	s.logger.Info("deviation approved", "deviation_id", d.ID, "employee_id", d.EmployeeID, "approved_by", claims.UserID)
	return s.respond(ctx, d), nil
}

// RejectDeviation implements deviation.DeviationService.
func (s *DeviationServiceImpl) RejectDeviation(ctx context.Context, req deviation.DecisionRequest) (deviation.DeviationResponse, error) {
	claims, d, err := s.decide(ctx, req, true)
	if err != nil {
		return deviation.DeviationResponse{}, err
	}

	d.Reject(claims.UserID, s.now(), req.ManagerComment)
	if err := s.deviations.Decide(ctx, d); err != nil {
		return deviation.DeviationResponse{}, err
	}
	return s.respond(ctx, d), nil
}

// ReturnDeviation implements deviation.DeviationService.
func (s *DeviationServiceImpl) ReturnDeviation(ctx context.Context, req deviation.DecisionRequest) (deviation.DeviationResponse, error) {
	_, d, err := s.decide(ctx, req, true)
	if err != nil {
		return deviation.DeviationResponse{}, err
	}

	d.Return(req.ManagerComment)
	if err := s.deviations.Decide(ctx, d); err != nil {
		return deviation.DeviationResponse{}, err
	}
	return s.respond(ctx, d), nil
}

var _ deviation.DeviationService = (*DeviationServiceImpl)(nil)
