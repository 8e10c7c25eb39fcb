// Package classify decides how an event relates to calendar days. Every view
// and layout decision goes through IsMultiDay so that one event is never
// single-day in one view and multi-day in another.
package classify

import (
	"slices"
	"time"

	"eventcal/internal/model"
	"eventcal/internal/timeutil"
)

// IsMultiDay reports whether e is all-day or crosses a calendar-day boundary.
func IsMultiDay(e model.Event) bool {
	return e.AllDay || !timeutil.SameDay(e.Start, e.End)
}

// DaysSpanned lists the start of each calendar day from e's start day to its
// end day, inclusive.
func DaysSpanned(e model.Event) []time.Time {
	return timeutil.Days(e.Start, e.End)
}

// StartsOn reports whether e starts on day.
func StartsOn(e model.Event, day time.Time) bool {
	return timeutil.SameDay(day, e.Start)
}

// Touches reports whether e starts on, ends on or passes through day.
func Touches(e model.Event, day time.Time) bool {
	d := timeutil.StartOfDay(day)
	first := timeutil.StartOfDay(e.Start.In(d.Location()))
	last := timeutil.StartOfDay(e.End.In(d.Location()))
	return !d.Before(first) && !d.After(last)
}

// Compare orders by start time; on equal starts multi-day events come first.
func Compare(a, b model.Event) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	am, bm := IsMultiDay(a), IsMultiDay(b)
	switch {
	case am && !bm:
		return -1
	case !am && bm:
		return 1
	}
	return 0
}

// Sort returns a sorted copy of events. Ties keep their input order.
func Sort(events []model.Event) []model.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, Compare)
	return out
}
