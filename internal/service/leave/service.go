package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/leave"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/calendar"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/database"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/metrics"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type LeaveServiceImpl struct {
	tx         database.Transactor
	requests   leave.LeaveRequestRepository
	balances   leave.VacationBalanceRepository
	employees  employee.EmployeeRepository
	calculator *VacationCalculator
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	requests leave.LeaveRequestRepository,
	balances leave.VacationBalanceRepository,
	employees employee.EmployeeRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:         tx,
		requests:   requests,
		balances:   balances,
		employees:  employees,
		calculator: NewVacationCalculator(logger),
		metrics:    m,
		logger:     logger,
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

// CreateLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	employeeID := claims.OwnEmployeeID()
	if req.EmployeeID != "" && req.EmployeeID != employeeID {
		if !claims.IsReviewer() {
			return leave.LeaveRequestResponse{}, leave.ErrNotOwner
		}
		employeeID = req.EmployeeID
	}
	if employeeID == "" {
		return leave.LeaveRequestResponse{}, user.ErrEmployeeIDRequired
	}

	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if _, err := s.employees.GetByEmployeeID(ctx, employeeID); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	startDate, _ := time.Parse(validator.DateLayout, req.StartDate)
	endDate, _ := time.Parse(validator.DateLayout, req.EndDate)

	overlap, err := s.requests.CheckOverlapping(ctx, employeeID, startDate, endDate, nil)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to check overlapping leave requests: %w", err)
	}
	if overlap {
		return leave.LeaveRequestResponse{}, leave.ErrOverlappingLeave
	}

	leaveType := leave.LeaveType(req.LeaveType)
	deducted := s.calculator.CalculateDeduction(leaveType, startDate, endDate, leave.Scope(req.Scope))

	if deducted > 0 {
		if err := s.ensureBalance(ctx, employeeID, startDate.Year(), deducted); err != nil {
			return leave.LeaveRequestResponse{}, err
		}
	}

	status := leave.LeaveRequestStatusDraft
	if req.Submit {
		status = leave.LeaveRequestStatusPending
	}

	created, err := s.requests.Create(ctx, leave.LeaveRequest{
		EmployeeID:   employeeID,
		StartDate:    startDate,
		EndDate:      endDate,
		LeaveType:    leaveType,
		Scope:        leave.Scope(req.Scope),
		DeductedDays: deducted,
		Comment:      req.Comment,
		Status:       status,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return leave.NewLeaveRequestResponse(created), nil
}

// ensureBalance fails when the year's remaining vacation is below days.
// Requests spanning new year are charged to the start year.
func (s *LeaveServiceImpl) ensureBalance(ctx context.Context, employeeID string, year int, days float64) error {
	balance, err := s.balances.Get(ctx, employeeID, year)
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.ErrInsufficientBalance
		}
		return fmt.Errorf("failed to get vacation balance: %w", err)
	}
	if balance.Remaining().LessThan(decimal.NewFromFloat(days)) {
		return leave.ErrInsufficientBalance
	}
	return nil
}

// getOwned loads a request the caller may see.
func (s *LeaveServiceImpl) getOwned(ctx context.Context, claims user.Claims, id string) (leave.LeaveRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if !claims.IsReviewer() && request.EmployeeID != claims.OwnEmployeeID() {
		return leave.LeaveRequest{}, leave.ErrNotOwner
	}
	return request, nil
}

// SubmitLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) SubmitLeaveRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.getOwned(ctx, claims, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.Status != leave.LeaveRequestStatusDraft {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotEditable
	}

	request.Status = leave.LeaveRequestStatusPending
	if err := s.requests.Update(ctx, request); err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	return leave.NewLeaveRequestResponse(request), nil
}

// decide loads a pending request the caller may decide on.
func (s *LeaveServiceImpl) decide(ctx context.Context, req leave.DecisionRequest, requireComment bool) (user.Claims, leave.LeaveRequest, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return user.Claims{}, leave.LeaveRequest{}, err
	}
	if !user.HasPermission(claims.Role, user.PermissionLeaveApprove) {
		return user.Claims{}, leave.LeaveRequest{}, user.ErrManagerAccessRequired
	}
	if err := req.Validate(requireComment); err != nil {
		return user.Claims{}, leave.LeaveRequest{}, err
	}

	request, err := s.requests.GetByID(ctx, req.ID)
	if err != nil {
		return user.Claims{}, leave.LeaveRequest{}, err
	}
	if own := claims.OwnEmployeeID(); own != "" && request.EmployeeID == own {
		return user.Claims{}, leave.LeaveRequest{}, leave.ErrSelfApproval
	}
	if request.Status != leave.LeaveRequestStatusPending {
		return user.Claims{}, leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	return claims, request, nil
}

// ApproveLeaveRequest implements leave.LeaveService. Vacation is debited in
// the same transaction as the status change.
func (s *LeaveServiceImpl) ApproveLeaveRequest(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	claims, request, err := s.decide(ctx, req, false)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	approvedAt := s.now()
	request.Status = leave.LeaveRequestStatusApproved
	request.ApprovedBy = &claims.UserID
	request.ApprovedAt = &approvedAt
	request.RejectedBy = nil
	request.RejectedAt = nil
	request.ManagerComment = req.ManagerComment

	debit := request.LeaveType == leave.LeaveTypeVacation && request.DeductedDays > 0
	year := request.StartDate.Year()

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if debit {
			if err := s.ensureBalance(txCtx, request.EmployeeID, year, request.DeductedDays); err != nil {
				return err
			}
		}
		// Claim the request before touching the balance so only one approval debits.
		if err := s.requests.Decide(txCtx, request); err != nil {
			return err
		}
		if !debit {
			return nil
		}
		return s.balances.Debit(txCtx, request.EmployeeID, year, decimal.NewFromFloat(request.DeductedDays))
	})
	if err != nil {
		if errors.Is(err, leave.ErrInsufficientBalance) || errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.LeaveRequestResponse{}, leave.ErrInsufficientBalance
		}
		if errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to approve leave request: %w", err)
	}

	if debit {
		s.metrics.ObserveVacationDeduction(request.DeductedDays)
		s.logger.Info("vacation debited",
			"employee_id", request.EmployeeID,
			"leave_request_id", request.ID,
			"days", request.DeductedDays,
		)
	}
	return leave.NewLeaveRequestResponse(request), nil
}

// RejectLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) RejectLeaveRequest(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	claims, request, err := s.decide(ctx, req, true)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	rejectedAt := s.now()
	request.Status = leave.LeaveRequestStatusRejected
	request.RejectedBy = &claims.UserID
	request.RejectedAt = &rejectedAt
	request.ApprovedBy = nil
	request.ApprovedAt = nil
	request.ManagerComment = req.ManagerComment

	if err := s.requests.Decide(ctx, request); err != nil {
		if errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to reject leave request: %w", err)
	}
	return leave.NewLeaveRequestResponse(request), nil
}

// DeleteLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) DeleteLeaveRequest(ctx context.Context, id string) error {
	claims, err := callerFrom(ctx)
	if err != nil {
		return err
	}

	request, err := s.getOwned(ctx, claims, id)
	if err != nil {
		return err
	}
	if request.Status != leave.LeaveRequestStatusDraft {
		return leave.ErrLeaveRequestNotEditable
	}
	return s.requests.Delete(ctx, id)
}

// GetLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.getOwned(ctx, claims, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(request), nil
}

// ListLeaveRequests implements leave.LeaveService. Employees only ever see their own.
func (s *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	if !claims.IsReviewer() {
		return s.ListMyLeaveRequests(ctx, filter)
	}
	return s.list(ctx, filter)
}

// ListMyLeaveRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMyLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	own := claims.OwnEmployeeID()
	if own == "" {
		return leave.ListLeaveRequestResponse{}, user.ErrEmployeeIDRequired
	}
	filter.EmployeeID = &own
	return s.list(ctx, filter)
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	resp := leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    int(math.Ceil(float64(total) / float64(filter.Limit))),
		LeaveRequests: make([]leave.LeaveRequestResponse, 0, len(requests)),
	}
	for _, r := range requests {
		resp.LeaveRequests = append(resp.LeaveRequests, leave.NewLeaveRequestResponse(r))
	}
	return resp, nil
}

// PreviewDeduction implements leave.LeaveService.
func (s *LeaveServiceImpl) PreviewDeduction(ctx context.Context, req leave.DeductionPreviewRequest) (leave.DeductionPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.DeductionPreviewResponse{}, err
	}

	start, _ := time.Parse(validator.DateLayout, req.StartDate)
	end, _ := time.Parse(validator.DateLayout, req.EndDate)

	return leave.DeductionPreviewResponse{
		WorkingDays:  calendar.CalculateWorkingDays(start, end),
		DeductedDays: s.calculator.CalculateDeduction(leave.LeaveType(req.LeaveType), start, end, leave.Scope(req.Scope)),
	}, nil
}

// GetBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, employeeID string, year int) (leave.VacationBalanceResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return leave.VacationBalanceResponse{}, err
	}
	if employeeID == "" {
		employeeID = claims.OwnEmployeeID()
	}
	if !claims.IsReviewer() && employeeID != claims.OwnEmployeeID() {
		return leave.VacationBalanceResponse{}, leave.ErrNotOwner
	}
	if year == 0 {
		year = s.now().Year()
	}

	balance, err := s.balances.Get(ctx, employeeID, year)
	if err != nil {
		return leave.VacationBalanceResponse{}, err
	}
	return leave.NewVacationBalanceResponse(balance), nil
}

// SetBalance implements leave.LeaveService. used_days is left untouched.
func (s *LeaveServiceImpl) SetBalance(ctx context.Context, req leave.SetBalanceRequest) (leave.VacationBalanceResponse, error) {
	claims, err := callerFrom(ctx)
	if err != nil {
		return leave.VacationBalanceResponse{}, err
	}
	if !user.HasPermission(claims.Role, user.PermissionEmployeeManage) {
		return leave.VacationBalanceResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return leave.VacationBalanceResponse{}, err
	}
	if _, err := s.employees.GetByEmployeeID(ctx, req.EmployeeID); err != nil {
		return leave.VacationBalanceResponse{}, err
	}

	saved, err := s.balances.Upsert(ctx, leave.VacationBalance{
		EmployeeID:   req.EmployeeID,
		Year:         req.Year,
		EntitledDays: req.EntitledDays,
		SavedDays:    req.SavedDays,
	})
	if err != nil {
		return leave.VacationBalanceResponse{}, fmt.Errorf("failed to save vacation balance: %w", err)
	}
	return leave.NewVacationBalanceResponse(saved), nil
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)
