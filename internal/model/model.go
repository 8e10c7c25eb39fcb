package model

import (
	"strings"
	"time"

	"eventcal/internal/timeutil"
)

// UntitledLabel replaces an empty title when an event is saved.
const UntitledLabel = "(no title)"

// Event is a single time-bounded calendar entry. Events are values: the
// engine never mutates one in place, it returns a modified copy.
type Event struct {
	// ID is empty for an event that has not been saved yet.
	ID string `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	// Start / End are local wall-clock instants.
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`

	// Color is a palette name ("blue") or a hex literal ("#3b82f6").
	Color string `json:"color,omitempty"`

	// SourceID names the ICS source an imported event came from.
	SourceID string `json:"source_id,omitempty"`
}

// IsNew reports whether the event has not been assigned an ID.
func (e Event) IsNew() bool {
	return e.ID == ""
}

// Duration is End - Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Normalized returns a copy with all-day bounds applied: 00:00:00.000 of the
// start day and 23:59:59.999 of the end day.
func (e Event) Normalized() Event {
	if e.AllDay {
		e.Start = timeutil.StartOfDay(e.Start)
		e.End = timeutil.EndOfDay(e.End)
	}
	return e
}

// WithTitleFallback returns a copy whose trimmed title falls back to
// UntitledLabel when empty.
func (e Event) WithTitleFallback() Event {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		e.Title = UntitledLabel
	}
	return e
}
