package services

import (
	"time"

	"finledger/internal/models"
)

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dateForDay builds a date on the given day of a month, clamping days past
// the end of the month to its last day (day 31 in February becomes Feb 28/29).
func dateForDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// addMonthsClamped advances t by the given number of calendar months,
// clamping the day-of-month when the target month is shorter: Jan 31 plus
// one month is Feb 28 (or 29), not Mar 2/3 as time.AddDate would produce.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, h, min, sec, t.Nanosecond(), t.Location())
}

// addYearsClamped advances t by whole years with the same day clamping
// (Feb 29 on a leap year steps to Feb 28).
func addYearsClamped(t time.Time, years int) time.Time {
	return addMonthsClamped(t, 12*years)
}

// stepDate advances start by the given number of interval units. DAY and
// WEEK steps are plain calendar days (a week is seven days); MONTH and YEAR
// steps clamp the day-of-month.
func stepDate(start time.Time, unit models.IntervalUnit, steps int) time.Time {
	switch unit {
	case models.IntervalUnitDay:
		return start.AddDate(0, 0, steps)
	case models.IntervalUnitWeek:
		return start.AddDate(0, 0, 7*steps)
	case models.IntervalUnitMonth:
		return addMonthsClamped(start, steps)
	case models.IntervalUnitYear:
		return addYearsClamped(start, steps)
	}
	return start
}
