// Package interact turns pointer gestures and form submissions into event
// proposals. Nothing here mutates its input or commits anything: the caller
// receives a modified copy and decides whether to persist it.
package interact

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"eventcal/internal/colors"
	"eventcal/internal/layout"
	"eventcal/internal/model"
	"eventcal/internal/timeutil"
)

var (
	// ErrInvalidRange is returned when an edit would leave End at or before Start.
	ErrInvalidRange = errors.New("end must be after start")
	// ErrMalformedTime is returned by ParseTime for input it cannot read.
	ErrMalformedTime = errors.New("malformed time")
)

// Edge selects the endpoint moved by Resize.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

// ParseEdge reads "start" or "end".
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "top":
		return EdgeStart, nil
	case "end", "bottom":
		return EdgeEnd, nil
	}
	return 0, fmt.Errorf("unknown edge %q", s)
}

// Create proposes a new, unsaved one-hour event at the snapped time.
func Create(at time.Time) model.Event {
	start, end := layout.NewEventSlot(at)
	return model.Event{Start: start, End: end}
}

// Move proposes e dropped at at. Timed events start at the snapped drop time
// and keep their exact duration. All-day events shift by whole calendar days
// to the drop day and keep their day count.
func Move(e model.Event, at time.Time) model.Event {
	if e.AllDay {
		n := timeutil.DaysBetween(e.Start, at.In(e.Start.Location()))
		e.Start = timeutil.AddDays(timeutil.StartOfDay(e.Start), n)
		e.End = timeutil.EndOfDay(timeutil.AddDays(e.End, n))
		return e
	}
	d := e.Duration()
	e.Start = timeutil.Snap(at)
	e.End = e.Start.Add(d)
	return e
}

// MoveBy proposes e shifted by delta, e.g. a drag offset.
func MoveBy(e model.Event, delta time.Duration) model.Event {
	return Move(e, e.Start.Add(delta))
}

// Resize proposes e with one endpoint moved to the snapped at. All-day
// events resize by whole days.
func Resize(e model.Event, edge Edge, at time.Time) (model.Event, error) {
	switch {
	case edge == EdgeStart && e.AllDay:
		e.Start = timeutil.StartOfDay(at)
	case edge == EdgeStart:
		e.Start = timeutil.Snap(at)
	case e.AllDay:
		e.End = timeutil.EndOfDay(at)
	default:
		e.End = timeutil.Snap(at)
	}
	if !e.End.After(e.Start) {
		return model.Event{}, fmt.Errorf("resize %s to %s: %w", e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), ErrInvalidRange)
	}
	return e, nil
}

// Save prepares e for persisting: trimmed title with a placeholder when
// empty, all-day bounds, a default color, and a valid range.
func Save(e model.Event) (model.Event, error) {
	e = e.WithTitleFallback().Normalized()
	e.Color = strings.TrimSpace(e.Color)
	if e.Color == "" {
		e.Color = colors.DefaultTag
	}
	if e.Start.IsZero() || e.End.IsZero() {
		return model.Event{}, fmt.Errorf("save %q: missing start or end: %w", e.Title, ErrInvalidRange)
	}
	if !e.End.After(e.Start) {
		return model.Event{}, fmt.Errorf("save %q: %w", e.Title, ErrInvalidRange)
	}
	return e, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime reads a form or query value in loc. RFC 3339 values keep their
// offset and are converted to loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	v := strings.TrimSpace(s)
	for _, lay := range timeLayouts {
		if lay == time.RFC3339 {
			if t, err := time.Parse(lay, v); err == nil {
				return t.In(loc), nil
			}
			continue
		}
		if t, err := time.ParseInLocation(lay, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
}
