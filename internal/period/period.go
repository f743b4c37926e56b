// Package period computes budget period boundaries.
//
// All calculations work on calendar dates. The time of day of the input is
// dropped and the input's location is kept, so a start of 2024-02-10 23:30
// in Asia/Kuala_Lumpur yields dates in Asia/Kuala_Lumpur.
package period

import (
	"fmt"
	"time"

	"ronin/internal/models"
)

// Range is an inclusive span of calendar dates.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a date within r, both ends inclusive.
func (r Range) Contains(t time.Time) bool {
	d := truncate(t.In(r.Start.Location()))
	return !d.Before(r.Start) && !d.After(r.End)
}

// End returns the last date of the period of type p that begins at start.
//
//	WEEKLY     the first Sunday on or after start
//	MONTHLY    the last day of start's month
//	QUARTERLY  the last day of start's calendar quarter
//	YEARLY     December 31 of start's year
//	ONE_TIME   start itself; callers supply the real end date
//
// An unknown period type is a programming error and panics.
func End(start time.Time, p models.PeriodType) time.Time {
	d := truncate(start)
	switch p {
	case models.PeriodWeekly:
		return d.AddDate(0, 0, (7-int(d.Weekday()))%7)
	case models.PeriodMonthly:
		return lastDayOfMonth(d.Year(), d.Month(), d.Location())
	case models.PeriodQuarterly:
		quarterEnd := time.Month((int(d.Month())-1)/3*3 + 3)
		return lastDayOfMonth(d.Year(), quarterEnd, d.Location())
	case models.PeriodYearly:
		return time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, d.Location())
	case models.PeriodOneTime:
		return d
	default:
		panic(fmt.Sprintf("period: unknown period type %q", p))
	}
}

// Current returns the range of the period that begins at start.
func Current(start time.Time, p models.PeriodType) Range {
	return Range{Start: truncate(start), End: End(start, p)}
}

// Next returns the range that immediately follows the period beginning at
// start: it starts the day after End(start, p).
func Next(start time.Time, p models.PeriodType) Range {
	nextStart := End(start, p).AddDate(0, 0, 1)
	return Range{Start: nextStart, End: End(nextStart, p)}
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// lastDayOfMonth relies on time.Date normalizing day 0 to the previous
// month's last day.
func lastDayOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}
