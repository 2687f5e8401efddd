package deviation

import (
	"context"
	"time"
)

type DeviationRepository interface {
	Create(ctx context.Context, d Deviation) (Deviation, error)
	GetByID(ctx context.Context, id int64) (Deviation, error)
	List(ctx context.Context, filter DeviationFilter) ([]Deviation, int64, error)
	// ListForPeriod returns every deviation dated within [from, to], regardless of status.
	ListForPeriod(ctx context.Context, from, to time.Time, includeExported bool) ([]Deviation, error)
	Update(ctx context.Context, d Deviation) error
	// Decide stores a manager decision only while the deviation is pending
	// and unexported; otherwise it returns ErrDeviationNotPending.
	Decide(ctx context.Context, d Deviation) error
	Delete(ctx context.Context, id int64) error
	MarkExported(ctx context.Context, ids []int64, batchID string, exportedAt time.Time) error
}
