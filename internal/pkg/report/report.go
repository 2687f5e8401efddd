// Package report renders export validation results as Excel workbooks.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	IssuesSheet  = "Issues"
)

type Period struct {
	From time.Time
	To   time.Time
}

// ValidationWorkbook writes a summary sheet and one issue per row.
func ValidationWorkbook(period Period, result export.ValidationResult, generated time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(IssuesSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	errs, warns, _ := result.Counts()
	summary := [][2]interface{}{
		{"Period", fmt.Sprintf("%s – %s", period.From.Format("2006-01-02"), period.To.Format("2006-01-02"))},
		{"Generated", generated.Format("2006-01-02 15:04")},
		{"Verdict", Verdict(result)},
		{"Errors", errs},
		{"Warnings", warns},
		{"Total deviations", result.Stats.TotalDeviations},
		{"Valid deviations", result.Stats.ValidDeviations},
		{"Invalid deviations", result.Stats.InvalidDeviations},
		{"Missing time codes", result.Stats.MissingTimeCodes},
		{"Duplicates", result.Stats.Duplicates},
		{"Data errors", result.Stats.DataErrors},
	}
	f.SetColWidth(SummarySheet, "A", "A", 22)
	f.SetColWidth(SummarySheet, "B", "B", 28)
	for i, row := range summary {
		r := i + 1
		f.SetCellValue(SummarySheet, cell("A", r), row[0])
		f.SetCellValue(SummarySheet, cell("B", r), row[1])
	}
	f.SetCellStyle(SummarySheet, "A1", cell("A", len(summary)), headerStyle)

	headers := []string{"Type", "Category", "Title", "Description", "Employee", "Deviation", "Action"}
	widths := []float64{10, 12, 32, 70, 12, 12, 50}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(IssuesSheet, col, col, widths[i])
		f.SetCellValue(IssuesSheet, cell(col, 1), h)
	}
	f.SetCellStyle(IssuesSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetPanes(IssuesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, issue := range result.Issues {
		r := i + 2
		f.SetCellValue(IssuesSheet, cell("A", r), string(issue.Type))
		f.SetCellValue(IssuesSheet, cell("B", r), string(issue.Category))
		f.SetCellValue(IssuesSheet, cell("C", r), issue.Title)
		f.SetCellValue(IssuesSheet, cell("D", r), issue.Description)
		if issue.EmployeeID != nil {
			f.SetCellValue(IssuesSheet, cell("E", r), *issue.EmployeeID)
		}
		if issue.DeviationID != nil {
			f.SetCellValue(IssuesSheet, cell("F", r), strconv.FormatInt(*issue.DeviationID, 10))
		}
		if issue.Action != nil {
			f.SetCellValue(IssuesSheet, cell("G", r), *issue.Action)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// Verdict is the one-word outcome shown in reports and metrics.
func Verdict(result export.ValidationResult) string {
	switch {
	case result.HasErrors:
		return "blocked"
	case result.HasWarnings:
		return "warnings"
	case result.Stats.TotalDeviations == 0:
		return "empty"
	default:
		return "valid"
	}
}

// FileName is the download name for a period's report.
func FileName(period Period) string {
	return fmt.Sprintf("validation_%s_%s.xlsx", period.From.Format("20060102"), period.To.Format("20060102"))
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
