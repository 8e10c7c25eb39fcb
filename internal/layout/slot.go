package layout

import (
	"time"

	"eventcal/internal/timeutil"
)

// Month cell row metrics in pixels.
const (
	EventHeight = 24
	EventGap    = 4
)

// NewEventSlot is the default range for an event created at t: the snapped
// start and one hour after it.
func NewEventSlot(t time.Time) (start, end time.Time) {
	start = timeutil.Snap(t)
	return start, timeutil.AddHours(start, 1)
}

// CellCapacity is the number of event rows that fit a month cell of the
// given content height.
func CellCapacity(cellHeight int) int {
	if cellHeight < EventHeight {
		return 0
	}
	return (cellHeight + EventGap) / (EventHeight + EventGap)
}

// Overflow splits total events over capacity rows. When they do not all fit,
// the last row is given to the "+N more" label.
func Overflow(total, capacity int) (shown, more int) {
	if total <= capacity {
		return total, 0
	}
	if capacity <= 0 {
		return 0, total
	}
	shown = capacity - 1
	return shown, total - shown
}
