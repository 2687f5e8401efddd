package deviation

import "context"

type DeviationService interface {
	CreateDeviation(ctx context.Context, req CreateDeviationRequest) (DeviationResponse, error)
	UpdateDeviation(ctx context.Context, req UpdateDeviationRequest) (DeviationResponse, error)
	DeleteDeviation(ctx context.Context, id int64) error
	GetDeviation(ctx context.Context, id int64) (DeviationResponse, error)
	ListDeviations(ctx context.Context, filter DeviationFilter) (ListDeviationResponse, error)
	ListMyDeviations(ctx context.Context, filter DeviationFilter) (ListDeviationResponse, error)

	SubmitDeviation(ctx context.Context, id int64) (DeviationResponse, error)
	ApproveDeviation(ctx context.Context, req DecisionRequest) (DeviationResponse, error)
	RejectDeviation(ctx context.Context, req DecisionRequest) (DeviationResponse, error)
	ReturnDeviation(ctx context.Context, req DecisionRequest) (DeviationResponse, error)
}
