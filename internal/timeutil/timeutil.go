// Package timeutil holds the wall-clock date arithmetic shared by the view,
// layout and interaction packages. Every function is pure.
package timeutil

import "time"

// SnapGranularity is the grid every gesture and new event is snapped to.
const SnapGranularity = 15 * time.Minute

// StartOfDay returns 00:00:00.000 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// AddDays moves t by n calendar days, keeping the wall-clock time.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween counts calendar days from a's date to b's date, ignoring the
// time of day and any DST change in between.
func DaysBetween(a, b time.Time) int {
	b = b.In(a.Location())
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func AddWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

// AddMonths moves t by n calendar months. When the target month is shorter
// than t's day, the day is clamped to the target month's last day:
// Jan 31 + 1 month = Feb 28 (Feb 29 in leap years).
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func AddHours(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * time.Hour)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// StartOfWeek returns the start of the day that opens the week containing t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	diff := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return StartOfDay(AddDays(t, -diff))
}

// EndOfWeek returns 23:59:59.999 of the last day of the week containing t.
func EndOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return EndOfDay(AddDays(StartOfWeek(t, weekStart), 6))
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return EndOfDay(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()))
}

// SameDay reports whether a and b fall on the same calendar day. b is read
// in a's location so both sides compare wall-clock dates.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Days lists the start of every calendar day from from's day to to's day,
// inclusive. It returns nil when to's day precedes from's day.
func Days(from, to time.Time) []time.Time {
	first := StartOfDay(from)
	last := StartOfDay(to.In(from.Location()))
	if last.Before(first) {
		return nil
	}
	var out []time.Time
	for d := first; !d.After(last); d = AddDays(d, 1) {
		out = append(out, d)
	}
	return out
}

// Snap rounds t's minute component to the nearest 15-minute boundary.
// A remainder of 7 minutes or less rounds down, 8 or more rounds up
// (round-half-up on the 7.5 minute midpoint). Seconds are cleared.
func Snap(t time.Time) time.Time {
	step := int(SnapGranularity / time.Minute)
	minute := t.Minute()
	rem := minute % step
	if 2*rem < step {
		minute -= rem
	} else {
		minute += step - rem
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location())
}
