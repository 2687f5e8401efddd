// Package calendar counts Swedish working days.
//
// The holiday table holds the eight fixed-date public holidays only.
// Movable feasts (Easter, Ascension, Midsummer) are not included, so ranges
// spanning them count one or two working days too many.
package calendar

import "time"

var fixedHolidays = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // nyårsdagen
	{time.January, 6},   // trettondedag jul
	{time.May, 1},       // första maj
	{time.June, 6},      // nationaldagen
	{time.December, 24}, // julafton
	{time.December, 25}, // juldagen
	{time.December, 26}, // annandag jul
	{time.December, 31}, // nyårsafton
}

// Holidays returns the holiday dates of year in UTC.
func Holidays(year int) []time.Time {
	days := make([]time.Time, 0, len(fixedHolidays))
	for _, h := range fixedHolidays {
		days = append(days, time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC))
	}
	return days
}

// IsHoliday compares calendar dates only; the clock and location of t are ignored.
func IsHoliday(t time.Time) bool {
	_, m, d := t.Date()
	for _, h := range fixedHolidays {
		if h.month == m && h.day == d {
			return true
		}
	}
	return false
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkingDay is true for weekdays that are not holidays.
func IsWorkingDay(t time.Time) bool {
	return !IsWeekend(t) && !IsHoliday(t)
}

// CalculateWorkingDays counts working days in the inclusive range [start, end].
// It returns 0 when start is after end.
func CalculateWorkingDays(start, end time.Time) int {
	from := DateOf(start)
	to := DateOf(end)

	count := 0
	for current := from; !current.After(to); current = current.AddDate(0, 0, 1) {
		if IsWorkingDay(current) {
			count++
		}
	}
	return count
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
