package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
)

// Condition identifies one rule of the export validation.
type Condition string

const (
	ConditionNoApprovedDeviations   Condition = "no-approved-deviations"
	ConditionMissingTimeCode        Condition = "missing-time-code"
	ConditionMissingDate            Condition = "missing-date"
	ConditionMissingTimes           Condition = "missing-times"
	ConditionUnknownEmployee        Condition = "unknown-employee"
	ConditionUnknownTimeCode        Condition = "unknown-time-code"
	ConditionInvalidTimeFormat      Condition = "invalid-time-format"
	ConditionExcessiveOvertime      Condition = "excessive-overtime"
	ConditionWeekendWithoutOvertime Condition = "weekend-without-overtime-code"
	ConditionFutureDate             Condition = "future-date"
	ConditionDuplicate              Condition = "duplicate"
	ConditionExportBlocked          Condition = export.SummaryBlockedID
	ConditionExportWithWarnings     Condition = export.SummaryWithWarningsID
)

// subject holds the facts an issue template may refer to.
type subject struct {
	deviationID  *int64
	employeeID   string
	employeeName string // "First Last (E001)" or the bare id
	timeCode     string
	date         string
	startTime    string
	endTime      string
	hours        float64
	count        int
	deviationIDs []int64
}

type template struct {
	issueType export.IssueType
	category  export.Category
	title     string
	action    string
	key       func(s subject) string
	describe  func(s subject) string
}

func byDeviation(s subject) string {
	if s.deviationID == nil {
		return ""
	}
	return strconv.FormatInt(*s.deviationID, 10)
}

func byGroup(s subject) string {
	return strings.Join([]string{s.employeeID, s.date, s.startTime, s.endTime}, "-")
}

func global(subject) string { return "" }

var catalog = map[Condition]template{
	ConditionNoApprovedDeviations: {
		issueType: export.IssueTypeInfo,
		category:  export.CategoryData,
		title:     "No approved deviations",
		key:       global,
		describe: func(subject) string {
			return "There are no approved deviations to export for the selected period."
		},
	},
	ConditionMissingTimeCode: {
		issueType: export.IssueTypeError,
		category:  export.CategoryData,
		title:     "Missing time code",
		action:    "Add a time code to the deviation",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("Deviation %s for %s has no time code.", byDeviation(s), s.employeeName)
		},
	},
	ConditionMissingDate: {
		issueType: export.IssueTypeError,
		category:  export.CategoryData,
		title:     "Missing date",
		action:    "Add a date to the deviation",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("Deviation %s for %s has no date.", byDeviation(s), s.employeeName)
		},
	},
	ConditionMissingTimes: {
		issueType: export.IssueTypeError,
		category:  export.CategoryData,
		title:     "Missing start or end time",
		action:    "Add start and end time to the deviation",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("Deviation %s for %s is missing a start or end time.", byDeviation(s), s.employeeName)
		},
	},
	ConditionUnknownEmployee: {
		issueType: export.IssueTypeError,
		category:  export.CategoryData,
		title:     "Unknown employee",
		action:    "Register the employee or correct the employee id",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("Deviation %s refers to employee %q, which does not exist.", byDeviation(s), s.employeeID)
		},
	},
	ConditionUnknownTimeCode: {
		issueType: export.IssueTypeWarning,
		category:  export.CategoryBusiness,
		title:     "Unknown time code in payroll system",
		action:    "Check that the time code exists in the payroll system",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("Time code %q on deviation %s for %s is not registered.", s.timeCode, byDeviation(s), s.employeeName)
		},
	},
	ConditionInvalidTimeFormat: {
		issueType: export.IssueTypeError,
		category:  export.CategoryFormat,
		title:     "Invalid time format",
		action:    "Correct start and end time to HH:MM",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("Deviation %s for %s has an unreadable time span %q to %q.", byDeviation(s), s.employeeName, s.startTime, s.endTime)
		},
	},
	ConditionExcessiveOvertime: {
		issueType: export.IssueTypeWarning,
		category:  export.CategoryBusiness,
		title:     "Excessive overtime",
		action:    "Verify the hours against working time regulations",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("%s has %.1f hours of overtime on %s.", s.employeeName, s.hours, s.date)
		},
	},
	ConditionWeekendWithoutOvertime: {
		issueType: export.IssueTypeWarning,
		category:  export.CategoryBusiness,
		title:     "Weekend work without overtime code",
		action:    "Check whether an overtime code should be used",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("%s worked on %s, a weekend, with time code %q.", s.employeeName, s.date, s.timeCode)
		},
	},
	ConditionFutureDate: {
		issueType: export.IssueTypeWarning,
		category:  export.CategoryBusiness,
		title:     "Future date",
		action:    "Confirm that the deviation should be paid in this run",
		key:       byDeviation,
		describe: func(s subject) string {
			return fmt.Sprintf("Deviation %s for %s is dated %s, which is in the future.", byDeviation(s), s.employeeName, s.date)
		},
	},
	ConditionDuplicate: {
		issueType: export.IssueTypeError,
		category:  export.CategoryData,
		title:     "Duplicate detected",
		action:    "Remove or correct the duplicated deviations",
		key:       byGroup,
		describe: func(s subject) string {
			ids := make([]string, len(s.deviationIDs))
			for i, id := range s.deviationIDs {
				ids[i] = strconv.FormatInt(id, 10)
			}
			return fmt.Sprintf("%s has %d deviations on %s %s-%s (ids %s).", s.employeeName, s.count, s.date, s.startTime, s.endTime, strings.Join(ids, ", "))
		},
	},
	ConditionExportBlocked: {
		issueType: export.IssueTypeError,
		category:  export.CategoryData,
		title:     "Export blocked",
		action:    "Fix the errors below before exporting",
		key:       global,
		describe: func(s subject) string {
			return fmt.Sprintf("Export blocked: %d critical errors must be fixed.", s.count)
		},
	},
	ConditionExportWithWarnings: {
		issueType: export.IssueTypeWarning,
		category:  export.CategoryBusiness,
		title:     "Export possible with warnings",
		action:    "Review the warnings before exporting",
		key:       global,
		describe: func(s subject) string {
			return fmt.Sprintf("Export possible but %d warnings exist.", s.count)
		},
	},
}

// newIssue renders the catalog entry for c. Issues of the same condition and
// subject always share an id.
func newIssue(c Condition, s subject) export.ValidationIssue {
	tpl, ok := catalog[c]
	if !ok {
		panic(fmt.Sprintf("export: condition %q missing from catalog", c))
	}

	id := string(c)
	if k := tpl.key(s); k != "" {
		id += "-" + k
	}

	issue := export.ValidationIssue{
		ID:          id,
		Type:        tpl.issueType,
		Category:    tpl.category,
		Title:       tpl.title,
		Description: tpl.describe(s),
		DeviationID: s.deviationID,
	}
	if s.employeeID != "" {
		employeeID := s.employeeID
		issue.EmployeeID = &employeeID
	}
	if tpl.action != "" {
		action := tpl.action
		issue.Action = &action
	}
	return issue
}
