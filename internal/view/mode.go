package view

import (
	"fmt"
	"strings"
	"time"

	"eventcal/internal/timeutil"
)

// Mode names one of the four calendar views.
type Mode string

const (
	ModeDay    Mode = "day"
	ModeWeek   Mode = "week"
	ModeMonth  Mode = "month"
	ModeAgenda Mode = "agenda"
)

// DefaultAgendaDays is the agenda window length when Options leaves it unset.
const DefaultAgendaDays = 30

// Modes lists every view mode in display order.
var Modes = []Mode{ModeMonth, ModeWeek, ModeDay, ModeAgenda}

// ParseMode maps a string to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeDay, ModeWeek, ModeMonth, ModeAgenda:
		return m, nil
	}
	return "", fmt.Errorf("view: unknown mode %q", s)
}

// Window is the per-mode variant that decides which days a view covers and
// how the anchor moves. The set of implementations is closed.
type Window interface {
	Mode() Mode
	// Days lists the start of every day the view renders, in order.
	Days(anchor time.Time, opts Options) []time.Time
	// Step moves the anchor by one page in direction dir (+1 or -1).
	Step(anchor time.Time, dir int, opts Options) time.Time
	// OmitEmpty reports whether days without visible events are dropped.
	OmitEmpty() bool
	sealed()
}

type dayWindow struct{}
type weekWindow struct{}
type monthWindow struct{}
type agendaWindow struct{}

// WindowFor returns the Window variant for m.
func WindowFor(m Mode) (Window, error) {
	switch m {
	case ModeDay:
		return dayWindow{}, nil
	case ModeWeek:
		return weekWindow{}, nil
	case ModeMonth:
		return monthWindow{}, nil
	case ModeAgenda:
		return agendaWindow{}, nil
	}
	return nil, fmt.Errorf("view: unknown mode %q", m)
}

func (dayWindow) Mode() Mode      { return ModeDay }
func (dayWindow) OmitEmpty() bool { return false }
func (dayWindow) sealed()         {}

func (dayWindow) Days(anchor time.Time, _ Options) []time.Time {
	return []time.Time{timeutil.StartOfDay(anchor)}
}

func (dayWindow) Step(anchor time.Time, dir int, _ Options) time.Time {
	return timeutil.AddDays(anchor, dir)
}

func (weekWindow) Mode() Mode      { return ModeWeek }
func (weekWindow) OmitEmpty() bool { return false }
func (weekWindow) sealed()         {}

func (weekWindow) Days(anchor time.Time, opts Options) []time.Time {
	start := timeutil.StartOfWeek(anchor, opts.WeekStart)
	return timeutil.Days(start, timeutil.AddDays(start, 6))
}

func (weekWindow) Step(anchor time.Time, dir int, _ Options) time.Time {
	return timeutil.AddWeeks(anchor, dir)
}

func (monthWindow) Mode() Mode      { return ModeMonth }
func (monthWindow) OmitEmpty() bool { return false }
func (monthWindow) sealed()         {}

// Days covers whole weeks from the week holding the 1st to the week holding
// the last day of the month.
func (monthWindow) Days(anchor time.Time, opts Options) []time.Time {
	first := timeutil.StartOfWeek(timeutil.StartOfMonth(anchor), opts.WeekStart)
	last := timeutil.EndOfWeek(timeutil.EndOfMonth(anchor), opts.WeekStart)
	return timeutil.Days(first, last)
}

func (monthWindow) Step(anchor time.Time, dir int, _ Options) time.Time {
	return timeutil.AddMonths(anchor, dir)
}

func (agendaWindow) Mode() Mode      { return ModeAgenda }
func (agendaWindow) OmitEmpty() bool { return true }
func (agendaWindow) sealed()         {}

func (agendaWindow) Days(anchor time.Time, opts Options) []time.Time {
	n := opts.agendaDays()
	start := timeutil.StartOfDay(anchor)
	return timeutil.Days(start, timeutil.AddDays(start, n-1))
}

func (agendaWindow) Step(anchor time.Time, dir int, opts Options) time.Time {
	return timeutil.AddDays(anchor, dir*opts.agendaDays())
}
