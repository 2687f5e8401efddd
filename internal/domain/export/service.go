package export

import (
	"context"
	"io"
)

type ExportService interface {
	Preview(ctx context.Context, req PeriodRequest) (ValidationResult, error)
	Export(ctx context.Context, req ExportRequest) (ExportResponse, error)
	ReportWorkbook(ctx context.Context, req PeriodRequest) ([]byte, string, error)
	ListBatches(ctx context.Context, filter BatchFilter) (ListBatchResponse, error)
	GetBatch(ctx context.Context, id string) (BatchResponse, error)
	DownloadBatch(ctx context.Context, id string) (io.ReadCloser, string, error)
}
