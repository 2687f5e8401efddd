package timecode

import "context"

type TimeCodeRepository interface {
	GetByCode(ctx context.Context, code string) (TimeCode, error)
	List(ctx context.Context) ([]TimeCode, error)
	Create(ctx context.Context, tc TimeCode) (TimeCode, error)
	Update(ctx context.Context, req UpdateTimeCodeRequest) error
}
