package layout

import (
	"time"

	"eventcal/internal/classify"
	"eventcal/internal/model"
	"eventcal/internal/timeutil"
)

// OverlapPx is how far a continuing bar segment reaches into the neighbouring
// cell so adjacent segments join without a visible gap.
const OverlapPx = 4

// Segment is the piece of a multi-day bar drawn in one day cell.
type Segment struct {
	Date time.Time `json:"date"`
	// First / Last are true only on the event's own first and last day, not
	// on the edges of a week row.
	First      bool `json:"first"`
	Last       bool `json:"last"`
	RoundLeft  bool `json:"round_left"`
	RoundRight bool `json:"round_right"`
	ExtraWidth int  `json:"extra_width"`
	OffsetX    int  `json:"offset_x"`
}

// SegmentFor styles e's segment on day.
//
//   - first and last day: rounded both sides, no overlap
//   - first day only: left rounded, widened by OverlapPx+1 to the right
//   - last day only: right rounded, widened by OverlapPx and shifted left by OverlapPx
//   - middle day: square, widened by 2*OverlapPx+1 and shifted left by OverlapPx
func SegmentFor(e model.Event, day time.Time) Segment {
	s := Segment{
		Date:  timeutil.StartOfDay(day),
		First: timeutil.SameDay(day, e.Start),
		Last:  timeutil.SameDay(day, e.End),
	}
	switch {
	case s.First && s.Last:
		s.RoundLeft, s.RoundRight = true, true
	case s.First:
		s.RoundLeft = true
		s.ExtraWidth = OverlapPx + 1
	case s.Last:
		s.RoundRight = true
		s.ExtraWidth = OverlapPx
		s.OffsetX = -OverlapPx
	default:
		s.ExtraWidth = 2*OverlapPx + 1
		s.OffsetX = -OverlapPx
	}
	return s
}

// Bar is a multi-day event drawn across a week row. Col is the index of the
// first covered day in the row and Span the number of covered days.
type Bar struct {
	Placement
	Col      int       `json:"col"`
	Span     int       `json:"span"`
	Hex      string    `json:"hex,omitempty"`
	Segments []Segment `json:"segments"`
}

// WeekRow lays the multi-day events touching days (one week row, in order)
// out as bars on day-granular lanes.
func WeekRow(days []time.Time, events []model.Event) []Bar {
	if len(days) == 0 {
		return nil
	}
	placements := assignDays(events)
	out := make([]Bar, 0, len(placements))
	for _, p := range placements {
		bar := Bar{Placement: p, Col: -1}
		for i, d := range days {
			if !classify.Touches(p.Event, d) {
				continue
			}
			if bar.Col < 0 {
				bar.Col = i
			}
			bar.Span++
			bar.Segments = append(bar.Segments, SegmentFor(p.Event, d))
		}
		if bar.Col < 0 {
			continue
		}
		out = append(out, bar)
	}
	return out
}
