// Package view resolves a view mode and anchor date into the ordered list
// of days to render, with the visible events bucketed per day.
package view

import (
	"time"

	"eventcal/internal/classify"
	"eventcal/internal/colors"
	"eventcal/internal/model"
	"eventcal/internal/timeutil"
)

// Options carries the settings shared by every view.
type Options struct {
	WeekStart  time.Weekday
	AgendaDays int
	// Colors filters events by tag. The zero Set shows everything.
	Colors colors.Set
	// Now marks the current day; zero disables the Today flag.
	Now time.Time
}

func (o Options) agendaDays() int {
	if o.AgendaDays <= 0 {
		return DefaultAgendaDays
	}
	return o.AgendaDays
}

// Day is the per-cell bucket of a resolved view. All slices are sorted with
// classify.Sort.
type Day struct {
	Date    time.Time `json:"date"`
	InRange bool      `json:"in_range"` // false for padding days of the month grid
	Today   bool      `json:"today"`

	// Starting holds events that start on Date.
	Starting []model.Event `json:"starting"`
	// Touching holds events that start, end or pass through Date.
	Touching []model.Event `json:"touching"`
	// MultiDay is the multi-day subset of Touching, drawn as spanning bars.
	MultiDay []model.Event `json:"multi_day"`
	// Timed is the single-day subset of Starting, placed on the time grid.
	Timed []model.Event `json:"timed"`
}

// Model is the resolved view.
type Model struct {
	Mode   Mode      `json:"mode"`
	Anchor time.Time `json:"anchor"`
	Title  string    `json:"title"`
	// From / To bound the covered days (To is the end of the last day).
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Days []Day     `json:"days"`
}

// Resolve computes the view for state over events. It is a pure function of
// its inputs.
func Resolve(state State, events []model.Event, opts Options) (Model, error) {
	w, err := WindowFor(state.Mode)
	if err != nil {
		return Model{}, err
	}

	days := w.Days(state.CurrentDate, opts)
	out := Model{
		Mode:   w.Mode(),
		Anchor: state.CurrentDate,
		Title:  Title(state, opts),
		Days:   make([]Day, 0, len(days)),
	}
	if len(days) > 0 {
		out.From = days[0]
		out.To = timeutil.EndOfDay(days[len(days)-1])
	}

	visible := make([]model.Event, 0, len(events))
	for _, e := range events {
		if opts.Colors.Visible(e.Color) {
			visible = append(visible, e)
		}
	}
	visible = classify.Sort(visible)

	for _, d := range days {
		bucket := bucketFor(d, visible)
		bucket.InRange = w.Mode() != ModeMonth || timeutil.SameMonth(d, state.CurrentDate)
		bucket.Today = !opts.Now.IsZero() && timeutil.SameDay(d, opts.Now)
		if w.OmitEmpty() && len(bucket.Touching) == 0 {
			continue
		}
		out.Days = append(out.Days, bucket)
	}
	return out, nil
}

// bucketFor expects sorted input and keeps that order.
func bucketFor(d time.Time, sorted []model.Event) Day {
	b := Day{Date: d}
	for _, e := range sorted {
		if !classify.Touches(e, d) {
			continue
		}
		b.Touching = append(b.Touching, e)
		multi := classify.IsMultiDay(e)
		if multi {
			b.MultiDay = append(b.MultiDay, e)
		}
		if classify.StartsOn(e, d) {
			b.Starting = append(b.Starting, e)
			if !multi {
				b.Timed = append(b.Timed, e)
			}
		}
	}
	return b
}
