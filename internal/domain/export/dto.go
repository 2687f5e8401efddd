package export

import (
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
)

// PeriodRequest selects the deviations dated within [From, To].
type PeriodRequest struct {
	From            string `json:"from"`
	To              string `json:"to"`
	IncludeExported bool   `json:"include_exported"`
}

// Parse validates the period and returns its bounds.
func (r PeriodRequest) Parse() (time.Time, time.Time, error) {
	var errs validator.ValidationErrors

	from, fromOK := validator.IsValidDate(r.From)
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
	}
	to, toOK := validator.IsValidDate(r.To)
	if !toOK {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
	}
	if fromOK && toOK {
		if to.Before(from) {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be before from"})
		} else if to.Sub(from) > 366*24*time.Hour {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "period must not exceed one year"})
		}
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return from, to, nil
}

type ExportRequest struct {
	PeriodRequest
	AcknowledgeWarnings bool `json:"acknowledge_warnings"`
}

type ExportResponse struct {
	Batch      BatchResponse    `json:"batch"`
	Validation ValidationResult `json:"validation"`
}

type BatchFilter struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *BatchFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type BatchResponse struct {
	ID                   string `json:"id"`
	PeriodStart          string `json:"period_start"`
	PeriodEnd            string `json:"period_end"`
	DeviationCount       int    `json:"deviation_count"`
	WarningCount         int    `json:"warning_count"`
	WarningsAcknowledged bool   `json:"warnings_acknowledged"`
	FileName             string `json:"file_name"`
	CreatedBy            string `json:"created_by"`
	CreatedAt            string `json:"created_at"`
}

type ListBatchResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Batches    []BatchResponse `json:"batches"`
}
