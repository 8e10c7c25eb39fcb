package view

import (
	"time"

	"eventcal/internal/timeutil"
)

// State is the view anchor owned by the caller: the date the active view is
// built around and the active mode.
type State struct {
	CurrentDate time.Time `json:"current_date"`
	Mode        Mode      `json:"mode"`
}

// Updater is the narrow write side of the view state. The engine only ever
// asks the owner to change the state; it never holds it.
type Updater interface {
	SetCurrentDate(time.Time)
	SetMode(Mode)
}

// Next returns the state one page forward: +1 month, +1 week, +1 day or
// +AgendaDays depending on the mode.
func Next(s State, opts Options) State {
	return step(s, 1, opts)
}

// Previous returns the state one page back.
func Previous(s State, opts Options) State {
	return step(s, -1, opts)
}

// Today returns s anchored at now, keeping the mode.
func Today(s State, now time.Time) State {
	s.CurrentDate = now
	return s
}

func step(s State, dir int, opts Options) State {
	w, err := WindowFor(s.Mode)
	if err != nil {
		return s
	}
	s.CurrentDate = w.Step(s.CurrentDate, dir, opts)
	return s
}

// Title is the heading shown above a view.
func Title(s State, opts Options) string {
	d := s.CurrentDate
	switch s.Mode {
	case ModeWeek:
		return rangeTitle(timeutil.StartOfWeek(d, opts.WeekStart), timeutil.EndOfWeek(d, opts.WeekStart))
	case ModeDay:
		return d.Format("Mon January 2, 2006")
	case ModeAgenda:
		return rangeTitle(d, timeutil.AddDays(d, opts.agendaDays()-1))
	default:
		return d.Format("January 2006")
	}
}

func rangeTitle(start, end time.Time) string {
	if timeutil.SameMonth(start, end) {
		return start.Format("January 2006")
	}
	return start.Format("Jan") + " - " + end.Format("Jan 2006")
}
