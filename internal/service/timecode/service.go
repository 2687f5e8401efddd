package timecode

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
)

type TimeCodeServiceImpl struct {
	repo   timecode.TimeCodeRepository
	logger *slog.Logger
}

func NewTimeCodeService(repo timecode.TimeCodeRepository, logger *slog.Logger) timecode.TimeCodeService {
	return &TimeCodeServiceImpl{repo: repo, logger: logger}
}

func canManage(ctx context.Context) error {
	claims, ok := user.ClaimsFromContext(ctx)
	if !ok {
		return user.ErrInvalidToken
	}
	if !user.HasPermission(claims.Role, user.PermissionTimeCodeManage) {
		return user.ErrPayrollAccessRequired
	}
	return nil
}

// GetTimeCode implements timecode.TimeCodeService.
func (s *TimeCodeServiceImpl) GetTimeCode(ctx context.Context, code string) (timecode.TimeCodeResponse, error) {
	tc, err := s.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return timecode.TimeCodeResponse{}, err
	}
	return timecode.NewTimeCodeResponse(tc), nil
}

// ListTimeCodes implements timecode.TimeCodeService.
func (s *TimeCodeServiceImpl) ListTimeCodes(ctx context.Context) ([]timecode.TimeCodeResponse, error) {
	codes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list time codes: %w", err)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].Code < codes[j].Code })

	out := make([]timecode.TimeCodeResponse, 0, len(codes))
	for _, tc := range codes {
		out = append(out, timecode.NewTimeCodeResponse(tc))
	}
	return out, nil
}

// CreateTimeCode implements timecode.TimeCodeService. A missing approval type
// becomes attestation.
func (s *TimeCodeServiceImpl) CreateTimeCode(ctx context.Context, req timecode.CreateTimeCodeRequest) (timecode.TimeCodeResponse, error) {
	if err := canManage(ctx); err != nil {
		return timecode.TimeCodeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return timecode.TimeCodeResponse{}, err
	}

	created, err := s.repo.Create(ctx, timecode.New(
		req.Code,
		strings.TrimSpace(req.NameSv),
		strings.TrimSpace(req.NameEn),
		timecode.ParseApprovalType(req.ApprovalType),
	))
	if err != nil {
		return timecode.TimeCodeResponse{}, err
	}

	s.logger.Info("time code created", "code", created.Code, "approval_type", created.ApprovalType)
	return timecode.NewTimeCodeResponse(created), nil
}

// UpdateTimeCode implements timecode.TimeCodeService.
func (s *TimeCodeServiceImpl) UpdateTimeCode(ctx context.Context, req timecode.UpdateTimeCodeRequest) (timecode.TimeCodeResponse, error) {
	if err := canManage(ctx); err != nil {
		return timecode.TimeCodeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return timecode.TimeCodeResponse{}, err
	}

	if err := s.repo.Update(ctx, req); err != nil {
		return timecode.TimeCodeResponse{}, err
	}

	tc, err := s.repo.GetByCode(ctx, req.Code)
	if err != nil {
		return timecode.TimeCodeResponse{}, fmt.Errorf("failed to reload time code: %w", err)
	}
	return timecode.NewTimeCodeResponse(tc), nil
}
