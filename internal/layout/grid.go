package layout

import (
	"time"

	"eventcal/internal/model"
)

// Grid describes the hour rows of the day and week time grid.
type Grid struct {
	StartHour  int `json:"start_hour"`
	EndHour    int `json:"end_hour"`
	HourHeight int `json:"hour_height"`
}

// DefaultGrid shows the full day at 64px per hour.
var DefaultGrid = Grid{StartHour: 0, EndHour: 24, HourHeight: 64}

func (g Grid) normalized() Grid {
	if g.HourHeight <= 0 {
		g.HourHeight = DefaultGrid.HourHeight
	}
	if g.StartHour < 0 || g.StartHour > 23 {
		g.StartHour = DefaultGrid.StartHour
	}
	if g.EndHour <= g.StartHour || g.EndHour > 24 {
		g.EndHour = DefaultGrid.EndHour
	}
	return g
}

// Height is the pixel height of the whole grid.
func (g Grid) Height() int {
	g = g.normalized()
	return (g.EndHour - g.StartHour) * g.HourHeight
}

// Box is a timed event positioned inside a day column. Top and Height are
// pixels from the first grid row; Left and Width are fractions of the column.
type Box struct {
	Placement
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Hex    string  `json:"hex,omitempty"`
}

// DayColumn positions the timed events of day on the grid. Events are
// clipped to the grid's hours; events entirely outside it are dropped before
// lanes are assigned, so they never take column width.
func DayColumn(day time.Time, events []model.Event, g Grid) []Box {
	g = g.normalized()
	gridStart := wallClock(day, g.StartHour)
	gridEnd := wallClock(day, g.EndHour)
	minHeight := float64(g.HourHeight) / 4

	visible := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.End.After(gridStart) && e.Start.Before(gridEnd) && e.End.After(e.Start) {
			visible = append(visible, e)
		}
	}

	placements := AssignLanes(visible)
	out := make([]Box, 0, len(placements))
	for _, p := range placements {
		start, end := p.Event.Start, p.Event.End
		if start.Before(gridStart) {
			start = gridStart
		}
		if end.After(gridEnd) {
			end = gridEnd
		}

		top := gridOffset(day, g.StartHour, start) * float64(g.HourHeight)
		height := (gridOffset(day, g.StartHour, end) - gridOffset(day, g.StartHour, start)) * float64(g.HourHeight)
		if height < minHeight {
			height = minHeight
		}
		width := 1 / float64(p.Lanes)
		out = append(out, Box{
			Placement: p,
			Top:       top,
			Height:    height,
			Left:      float64(p.Lane) * width,
			Width:     width,
		})
	}
	return out
}

// wallClock is hour:00 on day's calendar date; hour 24 is the next midnight.
func wallClock(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}

// gridOffset is the wall-clock hours from startHour on day to t, so rows keep
// their labelled hour on days with a DST change.
func gridOffset(day time.Time, startHour int, t time.Time) float64 {
	t = t.In(day.Location())
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	clock := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600 + float64(t.Nanosecond())/float64(time.Hour)
	return to.Sub(from).Hours() + clock - float64(startHour)
}
