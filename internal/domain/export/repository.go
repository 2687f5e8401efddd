package export

import "context"

type BatchRepository interface {
	Create(ctx context.Context, batch Batch) (Batch, error)
	GetByID(ctx context.Context, id string) (Batch, error)
	List(ctx context.Context, filter BatchFilter) ([]Batch, int64, error)
}
