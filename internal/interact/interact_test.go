package interact_test

import (
	"errors"
	"testing"
	"time"

	"eventcal/internal/interact"
	"eventcal/internal/model"
)

func at(d, h, m int) time.Time {
	return time.Date(2025, time.March, d, h, m, 0, 0, time.UTC)
}

func TestCreate(t *testing.T) {
	e := interact.Create(at(3, 7, 38))
	if !e.IsNew() || e.AllDay {
		t.Errorf("event = %+v", e)
	}
	if !e.Start.Equal(at(3, 7, 45)) || e.Duration() != time.Hour {
		t.Errorf("range = %v .. %v", e.Start, e.End)
	}
}

func TestMove_PreservesDuration(t *testing.T) {
	orig := model.Event{ID: "1", Start: at(3, 9, 0), End: at(3, 10, 37)}
	tests := []struct {
		name string
		to   time.Time
		want time.Time
	}{
		{"snap down", at(4, 14, 7), at(4, 14, 0)},
		{"snap up", at(4, 14, 8), at(4, 14, 15)},
		{"next day boundary", at(4, 23, 55), at(5, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interact.Move(orig, tt.to)
			if !got.Start.Equal(tt.want) {
				t.Errorf("start = %v, want %v", got.Start, tt.want)
			}
			if got.Duration() != orig.Duration() {
				t.Errorf("duration = %v, want %v", got.Duration(), orig.Duration())
			}
		})
	}
	if !orig.Start.Equal(at(3, 9, 0)) {
		t.Errorf("input mutated")
	}
}

func TestMove_AllDay(t *testing.T) {
	orig := model.Event{ID: "1", AllDay: true, Start: at(3, 0, 0), End: at(4, 0, 0).Add(-time.Millisecond)}
	got := interact.Move(orig, at(10, 15, 20))
	if !got.Start.Equal(at(10, 0, 0)) || !got.End.Equal(at(11, 0, 0).Add(-time.Millisecond)) {
		t.Errorf("moved = %v .. %v", got.Start, got.End)
	}
}

func TestMove_AllDayAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	day := func(d int) time.Time { return time.Date(2025, time.March, d, 0, 0, 0, 0, loc) }
	endOf := func(d int) time.Time { return time.Date(2025, time.March, d, 23, 59, 59, 999000000, loc) }

	tests := []struct {
		name      string
		from, to  int
		span      int
		moved     func(model.Event) model.Event
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"one day onto the change", 8, 9, 1,
			func(e model.Event) model.Event { return interact.Move(e, time.Date(2025, 3, 9, 12, 0, 0, 0, loc)) },
			day(9), endOf(9)},
		{"one day by 24h", 8, 9, 1,
			func(e model.Event) model.Event { return interact.MoveBy(e, 24*time.Hour) },
			day(9), endOf(9)},
		{"three days over the change", 7, 10, 3,
			func(e model.Event) model.Event { return interact.Move(e, time.Date(2025, 3, 7, 8, 0, 0, 0, loc).AddDate(0, 0, 3)) },
			day(10), endOf(12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := model.Event{ID: "1", Title: "Off", AllDay: true, Start: day(tt.from), End: endOf(tt.from + tt.span - 1)}
			got := tt.moved(orig)
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("moved = %v .. %v, want %v .. %v", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			saved, err := interact.Save(got)
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if !saved.End.Equal(tt.wantEnd) {
				t.Errorf("saved end = %v, want %v", saved.End, tt.wantEnd)
			}
		})
	}
}

func TestMoveBy(t *testing.T) {
	orig := model.Event{Start: at(3, 9, 0), End: at(3, 10, 0)}
	got := interact.MoveBy(orig, 95*time.Minute)
	if !got.Start.Equal(at(3, 10, 30)) || !got.End.Equal(at(3, 11, 30)) {
		t.Errorf("moved = %v .. %v", got.Start, got.End)
	}
}

func TestResize(t *testing.T) {
	orig := model.Event{ID: "1", Start: at(3, 9, 0), End: at(3, 10, 0)}

	got, err := interact.Resize(orig, interact.EdgeEnd, at(3, 11, 20))
	if err != nil || !got.End.Equal(at(3, 11, 15)) || !got.Start.Equal(orig.Start) {
		t.Errorf("Resize(end) = %+v, %v", got, err)
	}

	got, err = interact.Resize(orig, interact.EdgeStart, at(3, 8, 10))
	if err != nil || !got.Start.Equal(at(3, 8, 15)) {
		t.Errorf("Resize(start) = %+v, %v", got, err)
	}

	if _, err := interact.Resize(orig, interact.EdgeEnd, at(3, 8, 30)); !errors.Is(err, interact.ErrInvalidRange) {
		t.Errorf("Resize before start: err = %v, want ErrInvalidRange", err)
	}
	if _, err := interact.Resize(orig, interact.EdgeEnd, at(3, 9, 5)); !errors.Is(err, interact.ErrInvalidRange) {
		t.Errorf("Resize to zero length: err = %v, want ErrInvalidRange", err)
	}
}

func TestSave(t *testing.T) {
	got, err := interact.Save(model.Event{Title: "  ", Start: at(3, 9, 0), End: at(3, 10, 0)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got.Title != model.UntitledLabel || got.Color != "blue" {
		t.Errorf("saved = %+v", got)
	}

	allDay, err := interact.Save(model.Event{Title: "Trip", AllDay: true, Start: at(3, 13, 0), End: at(5, 9, 0)})
	if err != nil {
		t.Fatalf("Save(all-day) error = %v", err)
	}
	if !allDay.Start.Equal(at(3, 0, 0)) || allDay.End.Hour() != 23 || allDay.End.Day() != 5 {
		t.Errorf("all-day bounds = %v .. %v", allDay.Start, allDay.End)
	}

	if _, err := interact.Save(model.Event{Start: at(3, 10, 0), End: at(3, 9, 0)}); !errors.Is(err, interact.ErrInvalidRange) {
		t.Errorf("inverted range: err = %v", err)
	}
}

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-03T09:30", time.Date(2025, 3, 3, 9, 30, 0, 0, loc)},
		{"2025-03-03 09:30", time.Date(2025, 3, 3, 9, 30, 0, 0, loc)},
		{"2025-03-03", time.Date(2025, 3, 3, 0, 0, 0, 0, loc)},
		{"2025-03-03T07:30:00Z", time.Date(2025, 3, 3, 9, 30, 0, 0, loc)},
	}
	for _, tt := range tests {
		got, err := interact.ParseTime(tt.in, loc)
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, %v", tt.in, got, err)
		}
	}

	_, err := interact.ParseTime("next tuesday", loc)
	if !errors.Is(err, interact.ErrMalformedTime) {
		t.Errorf("err = %v, want ErrMalformedTime", err)
	}
}

type recorder struct {
	calls []string
}

func (r *recorder) handler() interact.Handler {
	return interact.HandlerFuncs{
		Create: func(time.Time) { r.calls = append(r.calls, "create") },
		Save:   func(model.Event) { r.calls = append(r.calls, "save") },
		Update: func(model.Event) { r.calls = append(r.calls, "update") },
		Delete: func(string) { r.calls = append(r.calls, "delete") },
	}
}

func TestController_OneCallbackPerAction(t *testing.T) {
	existing := model.Event{ID: "42", Title: "x", Start: at(3, 9, 0), End: at(3, 10, 0)}
	tests := []struct {
		name string
		run  func(c *interact.Controller)
		want []string
	}{
		{"create", func(c *interact.Controller) { c.Create(at(3, 9, 0)) }, []string{"create"}},
		{"save new", func(c *interact.Controller) {
			_, _ = c.Save(model.Event{Start: at(3, 9, 0), End: at(3, 10, 0)})
		}, []string{"save"}},
		{"save existing", func(c *interact.Controller) { _, _ = c.Save(existing) }, []string{"update"}},
		{"move", func(c *interact.Controller) { c.Move(existing, at(4, 9, 0)) }, []string{"update"}},
		{"resize", func(c *interact.Controller) {
			_, _ = c.Resize(existing, interact.EdgeEnd, at(3, 12, 0))
		}, []string{"update"}},
		{"rejected resize", func(c *interact.Controller) {
			_, _ = c.Resize(existing, interact.EdgeEnd, at(3, 8, 30))
		}, nil},
		{"delete", func(c *interact.Controller) { _ = c.Delete(existing) }, []string{"delete"}},
		{"delete unsaved", func(c *interact.Controller) { _ = c.Delete(model.Event{}) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			tt.run(interact.NewController(r.handler()))
			if len(r.calls) != len(tt.want) {
				t.Fatalf("calls = %v, want %v", r.calls, tt.want)
			}
			for i := range tt.want {
				if r.calls[i] != tt.want[i] {
					t.Errorf("calls = %v, want %v", r.calls, tt.want)
				}
			}
		})
	}
}
