package export

import (
	"sync"
	"testing"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func fixedClock() time.Time {
	return time.Date(2025, time.July, 20, 10, 0, 0, 0, time.UTC)
}

func newTestValidator() *Validator {
	return NewValidator(WithClock(fixedClock))
}

// approvedDeviation is complete and passes every rule on a weekday.
func approvedDeviation(id int64, employeeID, date string) deviation.Deviation {
	return deviation.Deviation{
		ID:         id,
		EmployeeID: employeeID,
		Date:       day(date),
		StartTime:  strPtr("08:00"),
		EndTime:    strPtr("17:00"),
		TimeCode:   strPtr("100"),
		Status:     deviation.StatusApproved,
	}
}

var (
	testEmployees = []employee.Employee{
		{EmployeeID: "E001", FirstName: "Anna", LastName: "Andersson"},
		{EmployeeID: "E002", FirstName: "Bo", LastName: "Berg"},
	}
	testTimeCodes = []timecode.TimeCode{
		{Code: "100", NameSv: "Mertid", ApprovalType: timecode.ApprovalTypeAttestation},
		{Code: "210", NameSv: "Övertid enkel", ApprovalType: timecode.ApprovalTypePreApproval},
	}
)

func issuesOf(result export.ValidationResult, title string) []export.ValidationIssue {
	var out []export.ValidationIssue
	for _, issue := range result.Issues {
		if issue.Title == title {
			out = append(out, issue)
		}
	}
	return out
}

func TestValidate_NoApprovedDeviations(t *testing.T) {
	inputs := [][]deviation.Deviation{
		nil,
		{},
		{
			{ID: 1, EmployeeID: "E001", Status: deviation.StatusPending},
			{ID: 2, EmployeeID: "E001", Status: deviation.StatusRejected},
			{ID: 3, EmployeeID: "X999", Status: deviation.StatusDraft},
		},
	}

	for _, devs := range inputs {
		result := newTestValidator().Validate(devs, testEmployees, testTimeCodes)

		assert.True(t, result.IsValid)
		assert.False(t, result.HasErrors)
		assert.False(t, result.HasWarnings)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, export.IssueTypeInfo, result.Issues[0].Type)
		assert.Equal(t, export.ValidationStats{}, result.Stats)
	}
}

func TestValidate_CleanWeekdayDeviation(t *testing.T) {
	// 2025-07-02 is a Wednesday.
	result := newTestValidator().Validate(
		[]deviation.Deviation{approvedDeviation(1, "E001", "2025-07-02")},
		testEmployees, testTimeCodes,
	)

	assert.True(t, result.IsValid)
	assert.False(t, result.HasErrors)
	assert.False(t, result.HasWarnings)
	assert.Empty(t, result.Issues)
	assert.Equal(t, export.ValidationStats{TotalDeviations: 1, ValidDeviations: 1}, result.Stats)
}

func TestValidate_WeekendWithoutOvertimeCode(t *testing.T) {
	// 2025-07-05 is a Saturday.
	result := newTestValidator().Validate(
		[]deviation.Deviation{approvedDeviation(1, "E001", "2025-07-05")},
		[]employee.Employee{{EmployeeID: "E001", FirstName: "Anna", LastName: "Andersson"}},
		[]timecode.TimeCode{{Code: "100"}},
	)

	assert.False(t, result.HasErrors)
	assert.True(t, result.HasWarnings)
	assert.True(t, result.IsValid)

	weekend := issuesOf(result, "Weekend work without overtime code")
	require.Len(t, weekend, 1)
	assert.Equal(t, export.IssueTypeWarning, weekend[0].Type)
	assert.Equal(t, export.CategoryBusiness, weekend[0].Category)
	assert.Contains(t, weekend[0].Description, "Anna Andersson (E001)")
	require.NotNil(t, weekend[0].DeviationID)
	assert.Equal(t, int64(1), *weekend[0].DeviationID)

	// summary warning first, then the finding
	require.Len(t, result.Issues, 2)
	assert.Equal(t, "Export possible but 1 warnings exist.", result.Issues[0].Description)
}

func TestValidate_WeekendWithOvertimeCodeIsQuiet(t *testing.T) {
	d := approvedDeviation(1, "E001", "2025-07-05")
	d.TimeCode = strPtr("210")

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, testTimeCodes)

	assert.Empty(t, result.Issues)
	assert.True(t, result.IsValid)
}

func TestValidate_MissingTimeCodeCountsOnce(t *testing.T) {
	d := approvedDeviation(7, "E001", "2025-07-02")
	d.TimeCode = nil

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, testTimeCodes)

	assert.Equal(t, 1, result.Stats.MissingTimeCodes)
	assert.Equal(t, 0, result.Stats.ValidDeviations)
	assert.Equal(t, 1, result.Stats.InvalidDeviations)
	assert.Equal(t, 1, result.Stats.DataErrors)
	assert.Len(t, issuesOf(result, "Missing time code"), 1)
	assert.Empty(t, issuesOf(result, "Unknown time code in payroll system"))
	assert.True(t, result.HasErrors)
	assert.False(t, result.IsValid)
}

func TestValidate_SeveralErrorsOnOneDeviationCountOnce(t *testing.T) {
	d := deviation.Deviation{ID: 3, EmployeeID: "X999", Status: deviation.StatusApproved}

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, testTimeCodes)

	assert.Len(t, issuesOf(result, "Missing time code"), 1)
	assert.Len(t, issuesOf(result, "Missing date"), 1)
	assert.Len(t, issuesOf(result, "Missing start or end time"), 1)
	assert.Len(t, issuesOf(result, "Unknown employee"), 1)
	assert.Equal(t, 1, result.Stats.InvalidDeviations)
	assert.Equal(t, 1, result.Stats.DataErrors)

	// 4 errors plus the summary
	require.Len(t, result.Issues, 5)
	assert.Equal(t, "Export blocked: 4 critical errors must be fixed.", result.Issues[0].Description)
}

func TestValidate_UnknownTimeCodeIsNonBlocking(t *testing.T) {
	d := approvedDeviation(1, "E001", "2025-07-02")
	d.TimeCode = strPtr("999")

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, testTimeCodes)

	unknown := issuesOf(result, "Unknown time code in payroll system")
	require.Len(t, unknown, 1)
	assert.Equal(t, export.IssueTypeWarning, unknown[0].Type)
	assert.Equal(t, export.CategoryBusiness, unknown[0].Category)
	assert.Equal(t, 1, result.Stats.ValidDeviations)
	assert.False(t, result.HasErrors)
	assert.True(t, result.IsValid)
}

func TestValidate_PaddedOvertimeCodeOnWeekendIsQuiet(t *testing.T) {
	// 2025-07-05 is a Saturday.
	d := approvedDeviation(1, "E001", "2025-07-05")
	d.TimeCode = strPtr(" 210 ")

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, testTimeCodes)

	assert.Empty(t, issuesOf(result, "Weekend work without overtime code"))
	assert.Empty(t, issuesOf(result, "Unknown time code in payroll system"))
	assert.Empty(t, result.Issues)
	assert.True(t, result.IsValid)
}

func TestValidate_UnknownTimeCodeSkippedWithoutCodePlan(t *testing.T) {
	d := approvedDeviation(1, "E001", "2025-07-02")
	d.TimeCode = strPtr("999")

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, nil)

	assert.Empty(t, result.Issues)
}

func TestValidate_Duplicates(t *testing.T) {
	devs := []deviation.Deviation{
		approvedDeviation(1, "E001", "2025-07-02"),
		approvedDeviation(2, "E001", "2025-07-02"),
		approvedDeviation(3, "E001", "2025-07-02"),
		approvedDeviation(4, "E002", "2025-07-02"),
	}

	result := newTestValidator().Validate(devs, testEmployees, testTimeCodes)

	assert.Equal(t, 2, result.Stats.Duplicates)
	dupes := issuesOf(result, "Duplicate detected")
	require.Len(t, dupes, 1)
	assert.Equal(t, export.IssueTypeError, dupes[0].Type)
	assert.Equal(t, "duplicate-E001-2025-07-02-08:00-17:00", dupes[0].ID)
	assert.Contains(t, dupes[0].Description, "ids 1, 2, 3")
	assert.True(t, result.HasErrors)
	assert.False(t, result.IsValid)
	assert.Equal(t, 4, result.Stats.ValidDeviations)
}

func TestValidate_ExcessiveOvertime(t *testing.T) {
	d := approvedDeviation(1, "E001", "2025-07-02")
	d.TimeCode = strPtr("210")
	d.StartTime = strPtr("06:00")
	d.EndTime = strPtr("19:30")

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, testTimeCodes)

	over := issuesOf(result, "Excessive overtime")
	require.Len(t, over, 1)
	assert.Contains(t, over[0].Description, "13.5 hours")
	assert.True(t, result.IsValid)
}

func TestValidate_TwelveHoursOfOvertimeIsAccepted(t *testing.T) {
	d := approvedDeviation(1, "E001", "2025-07-02")
	d.TimeCode = strPtr("210")
	d.StartTime = strPtr("06:00")
	d.EndTime = strPtr("18:00")

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, testTimeCodes)

	assert.Empty(t, issuesOf(result, "Excessive overtime"))
}

func TestValidate_FutureDate(t *testing.T) {
	today := approvedDeviation(1, "E001", "2025-07-18")
	tomorrow := approvedDeviation(2, "E001", "2025-07-21")
	clock := func() time.Time { return time.Date(2025, time.July, 18, 23, 59, 0, 0, time.UTC) }

	result := NewValidator(WithClock(clock)).Validate([]deviation.Deviation{today, tomorrow}, testEmployees, testTimeCodes)

	future := issuesOf(result, "Future date")
	require.Len(t, future, 1)
	assert.Equal(t, int64(2), *future[0].DeviationID)
}

func TestValidate_InvalidTimeFormatDoesNotStopTheRun(t *testing.T) {
	bad := approvedDeviation(1, "E001", "2025-07-02")
	bad.StartTime = strPtr("8.00")
	weekend := approvedDeviation(2, "E002", "2025-07-05")

	result := newTestValidator().Validate([]deviation.Deviation{bad, weekend}, testEmployees, testTimeCodes)

	format := issuesOf(result, "Invalid time format")
	require.Len(t, format, 1)
	assert.Equal(t, export.CategoryFormat, format[0].Category)
	assert.Equal(t, export.IssueTypeError, format[0].Type)
	assert.Equal(t, 1, result.Stats.DataErrors)
	assert.Len(t, issuesOf(result, "Weekend work without overtime code"), 1)
	assert.True(t, result.HasErrors)
	assert.True(t, result.HasWarnings)
}

func TestValidate_AcceptsSecondsFromDatabase(t *testing.T) {
	d := approvedDeviation(1, "E001", "2025-07-02")
	d.StartTime = strPtr("08:00:00")
	d.EndTime = strPtr("17:00:00")

	result := newTestValidator().Validate([]deviation.Deviation{d}, testEmployees, testTimeCodes)

	assert.Empty(t, result.Issues)
}

func TestValidate_IsValidMatchesVerdict(t *testing.T) {
	missing := approvedDeviation(5, "E001", "2025-07-02")
	missing.EndTime = nil
	inputs := [][]deviation.Deviation{
		{approvedDeviation(1, "E001", "2025-07-02")},
		{approvedDeviation(1, "E001", "2025-07-05")},
		{approvedDeviation(1, "E001", "2025-07-02"), approvedDeviation(2, "E001", "2025-07-02")},
		{missing},
		{{ID: 9, Status: deviation.StatusPending}},
	}

	for i, devs := range inputs {
		result := newTestValidator().Validate(devs, testEmployees, testTimeCodes)
		approved := 0
		for _, d := range devs {
			if d.IsApproved() {
				approved++
			}
		}
		if approved == 0 {
			assert.True(t, result.IsValid, "case %d", i)
			continue
		}
		assert.Equal(t, !result.HasErrors && approved > 0, result.IsValid, "case %d", i)
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	devs := []deviation.Deviation{approvedDeviation(1, "E001", "2025-07-05")}
	before := *devs[0].StartTime

	newTestValidator().Validate(devs, testEmployees, testTimeCodes)

	assert.Equal(t, before, *devs[0].StartTime)
	assert.Equal(t, deviation.StatusApproved, devs[0].Status)
}

func TestValidate_Concurrent(t *testing.T) {
	v := newTestValidator()
	devs := []deviation.Deviation{
		approvedDeviation(1, "E001", "2025-07-05"),
		approvedDeviation(2, "E001", "2025-07-05"),
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := v.Validate(devs, testEmployees, testTimeCodes)
			assert.Equal(t, 1, result.Stats.Duplicates)
		}()
	}
	wg.Wait()
}

func TestCatalog_CoversEveryCondition(t *testing.T) {
	conditions := []Condition{
		ConditionNoApprovedDeviations, ConditionMissingTimeCode, ConditionMissingDate,
		ConditionMissingTimes, ConditionUnknownEmployee, ConditionUnknownTimeCode,
		ConditionInvalidTimeFormat, ConditionExcessiveOvertime, ConditionWeekendWithoutOvertime,
		ConditionFutureDate, ConditionDuplicate, ConditionExportBlocked, ConditionExportWithWarnings,
	}
	id := int64(4)

	for _, c := range conditions {
		assert.NotPanics(t, func() {
			issue := newIssue(c, subject{deviationID: &id, employeeID: "E001", employeeName: "E001"})
			assert.NotEmpty(t, issue.Title)
			assert.NotEmpty(t, issue.Description)
		}, string(c))
	}
	assert.Len(t, catalog, len(conditions))
}

func TestCatalog_WarningsAreBusinessOrFormat(t *testing.T) {
	for c, entry := range catalog {
		if entry.issueType != export.IssueTypeWarning {
			continue
		}
		assert.Contains(t, []export.Category{export.CategoryBusiness, export.CategoryFormat}, entry.category, string(c))
	}
}
