package timecode

import "context"

type TimeCodeService interface {
	GetTimeCode(ctx context.Context, code string) (TimeCodeResponse, error)
	ListTimeCodes(ctx context.Context) ([]TimeCodeResponse, error)
	CreateTimeCode(ctx context.Context, req CreateTimeCodeRequest) (TimeCodeResponse, error)
	UpdateTimeCode(ctx context.Context, req UpdateTimeCodeRequest) (TimeCodeResponse, error)
}
