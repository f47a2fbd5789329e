// Package timeutil contains the pure date arithmetic shared by the
// compliance and tax calculators. Every function takes explicit instants;
// nothing in this package reads the system clock.
package timeutil

import (
	"time"

	"github.com/fleetscope/fleet-app/fleet/constants"
)

// DaysBetween returns the ceiling of b-a in whole days. Both inputs are
// treated as instants; no localization is applied. A negative difference
// yields a negative day count.
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	days := diff / constants.HoursInDay
	if diff%constants.HoursInDay > 0 {
		days++
	}
	return int(days)
}

// IsWithinNextDays reports whether date falls in the half-open window
// (now, now+days].
func IsWithinNextDays(date time.Time, days int, now time.Time) bool {
	return now.Before(date) && !date.After(now.Add(time.Duration(days)*constants.HoursInDay))
}

// IsPast reports whether date is strictly before now.
func IsPast(date, now time.Time) bool {
	return date.Before(now)
}

// RangesOverlap reports whether [startA, endA) and [startB, endB) intersect.
// Intervals that merely touch do not overlap.
func RangesOverlap(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// TruncateToDay strips the time component, keeping only the date.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
