package leave

import (
	"context"
)

type LeaveService interface {
	CreateLeaveRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	SubmitLeaveRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	ApproveLeaveRequest(ctx context.Context, req DecisionRequest) (LeaveRequestResponse, error)
	RejectLeaveRequest(ctx context.Context, req DecisionRequest) (LeaveRequestResponse, error)
	DeleteLeaveRequest(ctx context.Context, id string) error
	GetLeaveRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	ListLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListMyLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)

	PreviewDeduction(ctx context.Context, req DeductionPreviewRequest) (DeductionPreviewResponse, error)
	GetBalance(ctx context.Context, employeeID string, year int) (VacationBalanceResponse, error)
	SetBalance(ctx context.Context, req SetBalanceRequest) (VacationBalanceResponse, error)
}
