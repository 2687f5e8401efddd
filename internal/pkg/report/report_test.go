package report

import (
	"testing"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }
func idPtr(i int64) *int64    { return &i }

func blockedResult() export.ValidationResult {
	return export.ValidationResult{
		HasErrors:   true,
		HasWarnings: true,
		Issues: []export.ValidationIssue{
			{ID: export.SummaryBlockedID, Type: export.IssueTypeError, Category: export.CategoryData, Title: "Export blocked", Description: "Export blocked: 1 critical errors must be fixed."},
			{ID: "missing-time-code-4", Type: export.IssueTypeError, Category: export.CategoryData, Title: "Missing time code", EmployeeID: strPtr("E001"), DeviationID: idPtr(4), Action: strPtr("Add a time code to the deviation")},
			{ID: "future-date-5", Type: export.IssueTypeWarning, Category: export.CategoryBusiness, Title: "Future date", EmployeeID: strPtr("E002"), DeviationID: idPtr(5)},
		},
		Stats: export.ValidationStats{TotalDeviations: 2, ValidDeviations: 1, InvalidDeviations: 1, MissingTimeCodes: 1, DataErrors: 1},
	}
}

func TestValidationWorkbook(t *testing.T) {
	period := Period{From: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)}

	buf, err := ValidationWorkbook(period, blockedResult(), time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, IssuesSheet}, f.GetSheetList())

	verdict, err := f.GetCellValue(SummarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "blocked", verdict)

	errs, err := f.GetCellValue(SummarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "1", errs)

	rows, err := f.GetRows(IssuesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Type", rows[0][0])
	assert.Equal(t, "Missing time code", rows[2][2])
	assert.Equal(t, "E001", rows[2][4])
	assert.Equal(t, "4", rows[2][5])
	assert.Equal(t, "Add a time code to the deviation", rows[2][6])
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "blocked", Verdict(blockedResult()))
	assert.Equal(t, "warnings", Verdict(export.ValidationResult{HasWarnings: true, Stats: export.ValidationStats{TotalDeviations: 1}}))
	assert.Equal(t, "empty", Verdict(export.ValidationResult{IsValid: true}))
	assert.Equal(t, "valid", Verdict(export.ValidationResult{IsValid: true, Stats: export.ValidationStats{TotalDeviations: 3}}))
}

func TestFileName(t *testing.T) {
	p := Period{From: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "validation_20250701_20250731.xlsx", FileName(p))
}
