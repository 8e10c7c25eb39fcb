package layout

import (
	"time"

	"eventcal/internal/colors"
	"eventcal/internal/model"
	"eventcal/internal/view"
)

// DefaultCellHeight is the content height of a month cell.
const DefaultCellHeight = 112

// Options configures Build.
type Options struct {
	Grid Grid
	// CellHeight is the month cell content height; zero uses DefaultCellHeight.
	CellHeight int
	// Colors resolves event tags to display colors.
	Colors colors.Set
}

// Column is one day of the time grid.
type Column struct {
	Date  time.Time `json:"date"`
	Today bool      `json:"today"`
	Boxes []Box     `json:"boxes"`
}

// Cell is one day of a week row.
type Cell struct {
	Date    time.Time     `json:"date"`
	InRange bool          `json:"in_range"`
	Today   bool          `json:"today"`
	Events  []model.Event `json:"events"`
	More    int           `json:"more"`
}

// Row is a week row: multi-day bars on top, single-day events per cell below.
type Row struct {
	Bars  []Bar  `json:"bars"`
	Lanes int    `json:"lanes"`
	Cells []Cell `json:"cells"`
}

// Section is one non-empty day of the agenda.
type Section struct {
	Date   time.Time     `json:"date"`
	Today  bool          `json:"today"`
	Events []model.Event `json:"events"`
}

// Render is the full geometry of a resolved view.
type Render struct {
	Mode  view.Mode `json:"mode"`
	Title string    `json:"title"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Grid  Grid      `json:"grid"`

	Columns []Column  `json:"columns,omitempty"`
	Rows    []Row     `json:"rows,omitempty"`
	Agenda  []Section `json:"agenda,omitempty"`
}

// Build lays out m. Day and week views get time-grid columns plus a bar
// row for multi-day events; month views get week rows; agenda views list
// the touching events of each section.
func Build(m view.Model, opts Options) Render {
	grid := opts.Grid.normalized()
	out := Render{Mode: m.Mode, Title: m.Title, From: m.From, To: m.To, Grid: grid}

	switch m.Mode {
	case view.ModeDay, view.ModeWeek:
		for _, d := range m.Days {
			boxes := DayColumn(d.Date, d.Timed, grid)
			for i := range boxes {
				boxes[i].Hex = opts.Colors.Hex(boxes[i].Event.Color)
			}
			out.Columns = append(out.Columns, Column{Date: d.Date, Today: d.Today, Boxes: boxes})
		}
		out.Rows = []Row{buildRow(m.Days, opts, false)}
	case view.ModeMonth:
		for i := 0; i < len(m.Days); i += 7 {
			out.Rows = append(out.Rows, buildRow(m.Days[i:min(i+7, len(m.Days))], opts, true))
		}
	case view.ModeAgenda:
		for _, d := range m.Days {
			out.Agenda = append(out.Agenda, Section{Date: d.Date, Today: d.Today, Events: d.Touching})
		}
	}
	return out
}

func buildRow(days []view.Day, opts Options, capped bool) Row {
	dates := make([]time.Time, len(days))
	seen := make(map[string]bool)
	var multi []model.Event
	for i, d := range days {
		dates[i] = d.Date
		for _, e := range d.MultiDay {
			k := rowKey(e)
			if seen[k] {
				continue
			}
			seen[k] = true
			multi = append(multi, e)
		}
	}

	bars := WeekRow(dates, multi)
	lanes := 0
	for i := range bars {
		bars[i].Hex = opts.Colors.Hex(bars[i].Event.Color)
		lanes = max(lanes, bars[i].Lane+1)
	}
	row := Row{Bars: bars, Lanes: lanes, Cells: make([]Cell, len(days))}

	capacity := CellCapacity(cellHeight(opts))
	for i, d := range days {
		c := Cell{Date: d.Date, InRange: d.InRange, Today: d.Today}
		if capped {
			shown, more := Overflow(len(d.Timed), max(capacity-lanes, 0))
			c.Events, c.More = d.Timed[:shown], more
		} else {
			c.Events = d.Timed
		}
		row.Cells[i] = c
	}
	return row
}

func cellHeight(opts Options) int {
	if opts.CellHeight <= 0 {
		return DefaultCellHeight
	}
	return opts.CellHeight
}

// rowKey identifies an event within one row; unsaved events have no ID.
func rowKey(e model.Event) string {
	if e.ID != "" {
		return e.ID
	}
	return e.Title + "|" + e.Start.String() + "|" + e.End.String()
}
