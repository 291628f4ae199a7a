// Package calendar provides the date arithmetic shared by the aggregator:
// midnight normalization, whole-day differences and same-month checks.
package calendar

import (
	"math"
	"time"
)

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DaysBetween returns the number of calendar days from 'from' to 'to', both
// taken in from's location. The result is negative when to is earlier.
//
// Differences are computed on civil dates in UTC so a DST transition never
// yields a 23 or 25 hour "day".
func DaysBetween(from, to time.Time) int {
	loc := from.Location()
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}

// SameMonth reports whether t falls in the same calendar year and month as
// ref, evaluated in ref's location.
func SameMonth(t, ref time.Time) bool {
	ty, tm, _ := t.In(ref.Location()).Date()
	ry, rm, _ := ref.Date()
	return ty == ry && tm == rm
}

// MonthStart returns midnight on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns midnight on the first day of the month after t.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// DaysLeftInMonth counts days from t's day through the month's last day.
func DaysLeftInMonth(t time.Time) int {
	return DaysBetween(t, MonthEnd(t))
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonth parses a YYYY-MM value into a reference time in loc. The
// reference is the current instant when the month is the current one, and the
// last day of that month otherwise, so "days remaining" style figures stay
// meaningful for past and future months.
func ParseMonth(s string, now time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if SameMonth(now, t) {
		return now.In(loc), nil
	}
	return MonthEnd(t).AddDate(0, 0, -1), nil
}
