package export

import (
	"strings"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/deviation"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/employee"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/domain/timecode"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/calendar"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
)

// MaxOvertimeHours is the longest overtime span accepted without a warning.
const MaxOvertimeHours = 12.0

// Validator decides whether a set of deviations can be handed to payroll.
// It keeps no state between calls and is safe for concurrent use.
type Validator struct {
	now func() time.Time
}

type ValidatorOption func(*Validator)

// WithClock replaces time.Now for the future-date rule.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.now = now
	}
}

func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// run is the working state of one Validate call.
type run struct {
	employees map[string]employee.Employee
	timeCodes map[string]timecode.TimeCode
	today     time.Time
	issues    []export.ValidationIssue
	stats     export.ValidationStats
}

// Validate checks the approved deviations among deviations. Bad data never
// produces an error; every finding becomes an issue in the result.
func (v *Validator) Validate(deviations []deviation.Deviation, employees []employee.Employee, timeCodes []timecode.TimeCode) export.ValidationResult {
	approved := make([]deviation.Deviation, 0, len(deviations))
	for _, d := range deviations {
		if d.IsApproved() {
			approved = append(approved, d)
		}
	}

	if len(approved) == 0 {
		return export.ValidationResult{
			IsValid: true,
			Issues:  []export.ValidationIssue{newIssue(ConditionNoApprovedDeviations, subject{})},
		}
	}

	r := &run{
		employees: make(map[string]employee.Employee, len(employees)),
		timeCodes: make(map[string]timecode.TimeCode, len(timeCodes)),
		today:     calendar.DateOf(v.now()),
	}
	for _, e := range employees {
		r.employees[e.EmployeeID] = e
	}
	for _, tc := range timeCodes {
		r.timeCodes[tc.Code] = tc
	}
	r.stats.TotalDeviations = len(approved)

	for _, d := range approved {
		r.checkData(d)
	}
	for _, d := range approved {
		r.checkBusinessRules(d)
	}
	r.checkDuplicates(approved)

	return r.verdict()
}

func (r *run) add(c Condition, s subject) {
	r.issues = append(r.issues, newIssue(c, s))
}

func (r *run) subjectFor(d deviation.Deviation) subject {
	id := d.ID
	s := subject{
		deviationID:  &id,
		employeeID:   d.EmployeeID,
		employeeName: r.employeeName(d.EmployeeID),
	}
	if d.TimeCode != nil {
		s.timeCode = strings.TrimSpace(*d.TimeCode)
	}
	if d.Date != nil {
		s.date = d.Date.Format(validator.DateLayout)
	}
	if d.StartTime != nil {
		s.startTime = *d.StartTime
	}
	if d.EndTime != nil {
		s.endTime = *d.EndTime
	}
	return s
}

func (r *run) employeeName(employeeID string) string {
	e, ok := r.employees[employeeID]
	if !ok {
		return employeeID
	}
	if name := e.FullName(); name != "" {
		return name + " (" + employeeID + ")"
	}
	return employeeID
}

func (r *run) checkData(d deviation.Deviation) {
	s := r.subjectFor(d)
	invalid := false

	if validator.IsBlank(d.TimeCode) {
		r.add(ConditionMissingTimeCode, s)
		r.stats.MissingTimeCodes++
		invalid = true
	}
	if d.Date == nil {
		r.add(ConditionMissingDate, s)
		invalid = true
	}
	if validator.IsBlank(d.StartTime) || validator.IsBlank(d.EndTime) {
		r.add(ConditionMissingTimes, s)
		invalid = true
	}
	if _, ok := r.employees[d.EmployeeID]; !ok {
		r.add(ConditionUnknownEmployee, s)
		invalid = true
	}

	// An empty code list means the caller has no code plan to compare against.
	if s.timeCode != "" && len(r.timeCodes) > 0 {
		if _, ok := r.timeCodes[s.timeCode]; !ok {
			r.add(ConditionUnknownTimeCode, s)
		}
	}

	if invalid {
		r.stats.InvalidDeviations++
		r.stats.DataErrors++
	} else {
		r.stats.ValidDeviations++
	}
}

func (r *run) checkBusinessRules(d deviation.Deviation) {
	if d.Date == nil || validator.IsBlank(d.StartTime) || validator.IsBlank(d.EndTime) {
		return
	}
	s := r.subjectFor(d)

	hours, err := spanHours(*d.Date, *d.StartTime, *d.EndTime)
	if err != nil {
		r.add(ConditionInvalidTimeFormat, s)
		r.stats.DataErrors++
		return
	}
	s.hours = hours

	overtime := timecode.IsOvertimeCode(s.timeCode)
	if overtime && hours > MaxOvertimeHours {
		r.add(ConditionExcessiveOvertime, s)
	}
	if calendar.IsWeekend(*d.Date) && !overtime {
		r.add(ConditionWeekendWithoutOvertime, s)
	}
	if calendar.DateOf(*d.Date).After(r.today) {
		r.add(ConditionFutureDate, s)
	}
}

// spanHours places start and end on date and returns the hours between them.
func spanHours(date time.Time, start, end string) (float64, error) {
	from, err := clockOn(date, start)
	if err != nil {
		return 0, err
	}
	to, err := clockOn(date, end)
	if err != nil {
		return 0, err
	}
	return to.Sub(from).Hours(), nil
}

func clockOn(date time.Time, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	t, err := time.Parse(validator.TimeOfDayLayout, clock)
	if err != nil {
		// time columns read back from postgres carry seconds
		t, err = time.Parse("15:04:05", clock)
		if err != nil {
			return time.Time{}, err
		}
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

type duplicateKey struct {
	employeeID string
	date       string
	startTime  string
	endTime    string
}

func (r *run) checkDuplicates(approved []deviation.Deviation) {
	groups := make(map[duplicateKey][]deviation.Deviation)
	var order []duplicateKey

	for _, d := range approved {
		s := r.subjectFor(d)
		key := duplicateKey{employeeID: d.EmployeeID, date: s.date, startTime: s.startTime, endTime: s.endTime}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}

	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		ids := make([]int64, len(group))
		for i, d := range group {
			ids[i] = d.ID
		}
		r.add(ConditionDuplicate, subject{
			employeeID:   key.employeeID,
			employeeName: r.employeeName(key.employeeID),
			date:         key.date,
			startTime:    key.startTime,
			endTime:      key.endTime,
			count:        len(group),
			deviationIDs: ids,
		})
		r.stats.Duplicates += len(group) - 1
	}
}

func (r *run) verdict() export.ValidationResult {
	var errCount, warnCount int
	for _, issue := range r.issues {
		switch issue.Type {
		case export.IssueTypeError:
			errCount++
		case export.IssueTypeWarning:
			warnCount++
		}
	}

	result := export.ValidationResult{
		HasErrors:   errCount > 0,
		HasWarnings: warnCount > 0,
		IsValid:     errCount == 0 && r.stats.TotalDeviations > 0,
		Stats:       r.stats,
	}

	var summary []export.ValidationIssue
	switch {
	case errCount > 0:
		summary = append(summary, newIssue(ConditionExportBlocked, subject{count: errCount}))
	case warnCount > 0:
		summary = append(summary, newIssue(ConditionExportWithWarnings, subject{count: warnCount}))
	}
	result.Issues = append(summary, r.issues...)
	if result.Issues == nil {
		result.Issues = []export.ValidationIssue{}
	}

	return result
}
