// Package textview draws a laid-out view as terminal text, for the CLI dump
// mode and the /api/view.txt endpoint.
package textview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"eventcal/internal/layout"
	"eventcal/internal/model"
	"eventcal/internal/view"
)

const cellWidth = 16

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	todayStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle   = lipgloss.NewStyle().Width(cellWidth).PaddingRight(1)
)

// Render draws r.
func Render(r layout.Render) string {
	var body string
	switch r.Mode {
	case view.ModeMonth:
		body = month(r)
	case view.ModeAgenda:
		body = agenda(r)
	default:
		body = grid(r)
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(r.Title), body) + "\n"
}

func month(r layout.Render) string {
	var rows []string
	if len(r.Rows) > 0 {
		var head []string
		for _, c := range r.Rows[0].Cells {
			head = append(head, cellStyle.Render(headerStyle.Render(c.Date.Format("Mon"))))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, head...))
	}
	for _, row := range r.Rows {
		rows = append(rows, bars(row)...)
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, cellStyle.Render(cell(c)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cell(c layout.Cell) string {
	day := fmt.Sprintf("%2d", c.Date.Day())
	switch {
	case c.Today:
		day = todayStyle.Render(day)
	case !c.InRange:
		day = mutedStyle.Render(day)
	}
	lines := []string{day}
	for _, e := range c.Events {
		lines = append(lines, truncate(e.Start.Format("15:04")+" "+e.Title, cellWidth-1))
	}
	if c.More > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("+%d more", c.More)))
	}
	return strings.Join(lines, "\n")
}

// bars draws one line per lane of multi-day bars, each bar starting at its
// column and spanning its days.
func bars(row layout.Row) []string {
	lanes := make([][]layout.Bar, row.Lanes)
	for _, b := range row.Bars {
		lanes[b.Lane] = append(lanes[b.Lane], b)
	}
	var out []string
	for _, lane := range lanes {
		line := []rune(strings.Repeat(" ", cellWidth*len(row.Cells)))
		for _, b := range lane {
			from, to := b.Col*cellWidth, (b.Col+b.Span)*cellWidth-1
			label := []rune(barLabel(b))
			for i := from; i < to && i < len(line); i++ {
				if k := i - from; k < len(label) {
					line[i] = label[k]
				} else {
					line[i] = '='
				}
			}
		}
		out = append(out, lipgloss.NewStyle().Foreground(lipgloss.Color(laneColor(lane))).Render(strings.TrimRight(string(line), " ")))
	}
	return out
}

func barLabel(b layout.Bar) string {
	left, right := "<", ">"
	if b.Segments[0].First {
		left = "["
	}
	if b.Segments[len(b.Segments)-1].Last {
		right = "]"
	}
	return left + b.Event.Title + right
}

func laneColor(lane []layout.Bar) string {
	if len(lane) == 0 {
		return ""
	}
	return lane[0].Hex
}

func grid(r layout.Render) string {
	var parts []string
	for _, row := range r.Rows {
		parts = append(parts, bars(row)...)
	}
	cols := make([]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		head := c.Date.Format("Mon 02")
		if c.Today {
			head = todayStyle.Render(head)
		}
		lines := []string{headerStyle.Render(head)}
		for _, b := range c.Boxes {
			prefix := ""
			if b.Lanes > 1 {
				prefix = fmt.Sprintf("%d/%d ", b.Lane+1, b.Lanes)
			}
			lines = append(lines, truncate(prefix+span(b.Event)+" "+b.Event.Title, cellWidth-1))
		}
		cols = append(cols, cellStyle.Render(strings.Join(lines, "\n")))
	}
	parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func agenda(r layout.Render) string {
	if len(r.Agenda) == 0 {
		return mutedStyle.Render("No events")
	}
	var lines []string
	for _, s := range r.Agenda {
		head := s.Date.Format("Mon Jan 2")
		if s.Today {
			head = todayStyle.Render(head)
		}
		lines = append(lines, headerStyle.Render(head))
		for _, e := range s.Events {
			lines = append(lines, "  "+span(e)+"  "+e.Title)
		}
	}
	return strings.Join(lines, "\n")
}

func span(e model.Event) string {
	if e.AllDay {
		return "all day"
	}
	return e.Start.Format("15:04") + "-" + e.End.Format("15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
