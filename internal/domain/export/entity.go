package export

import "time"

// IssueType decides whether an issue blocks the export.
type IssueType string

const (
	IssueTypeError   IssueType = "error"
	IssueTypeWarning IssueType = "warning"
	IssueTypeInfo    IssueType = "info"
)

type Category string

const (
	CategoryData     Category = "data"
	CategoryBusiness Category = "business"
	CategoryFormat   Category = "format"
)

// ValidationIssue is one line of a validation report.
type ValidationIssue struct {
	ID          string    `json:"id"`
	Type        IssueType `json:"type"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EmployeeID  *string   `json:"employee_id,omitempty"`
	DeviationID *int64    `json:"deviation_id,omitempty"`
	Action      *string   `json:"action,omitempty"`
}

type ValidationStats struct {
	TotalDeviations   int `json:"total_deviations"`
	ValidDeviations   int `json:"valid_deviations"`
	InvalidDeviations int `json:"invalid_deviations"`
	MissingTimeCodes  int `json:"missing_time_codes"`
	Duplicates        int `json:"duplicates"`
	DataErrors        int `json:"data_errors"`
}

type ValidationResult struct {
	IsValid     bool              `json:"is_valid"`
	HasErrors   bool              `json:"has_errors"`
	HasWarnings bool              `json:"has_warnings"`
	Issues      []ValidationIssue `json:"issues"`
	Stats       ValidationStats   `json:"stats"`
}

// Ids of the summary line that heads a report with errors or warnings.
const (
	SummaryBlockedID      = "export-blocked"
	SummaryWithWarningsID = "export-with-warnings"
)

func (i ValidationIssue) IsSummary() bool {
	return i.ID == SummaryBlockedID || i.ID == SummaryWithWarningsID
}

// CountByType counts issues of type t, the summary line included.
func (r ValidationResult) CountByType(t IssueType) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Type == t {
			n++
		}
	}
	return n
}

// Counts returns issue counts per type, the summary line excluded.
func (r ValidationResult) Counts() (errors, warnings, infos int) {
	for _, issue := range r.Issues {
		if issue.IsSummary() {
			continue
		}
		switch issue.Type {
		case IssueTypeError:
			errors++
		case IssueTypeWarning:
			warnings++
		case IssueTypeInfo:
			infos++
		}
	}
	return errors, warnings, infos
}

// Batch records one PAXML file handed over to payroll.
type Batch struct {
	ID                   string
	PeriodStart          time.Time
	PeriodEnd            time.Time
	DeviationCount       int
	WarningCount         int
	WarningsAcknowledged bool
	FilePath             string
	CreatedBy            string
	CreatedAt            time.Time
}
