package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventcal/internal/ics"
	"eventcal/internal/model"
	"eventcal/internal/scheduler"
	"eventcal/internal/store"
)

const feed = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\nUID:one\r\nDTSTAMP:20250301T000000Z\r\n" +
	"DTSTART:20250303T090000Z\r\nDTEND:20250303T100000Z\r\nSUMMARY:One\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type fakeFetcher struct {
	bodies map[string]string
	calls  int
}

func (f *fakeFetcher) FetchAll(_ context.Context, sources []ics.Source) ([]ics.FetchResult, []error) {
	f.calls++
	var out []ics.FetchResult
	var errs []error
	for _, s := range sources {
		body, ok := f.bodies[s.ID]
		if !ok {
			errs = append(errs, errors.New("unreachable "+s.ID))
			continue
		}
		out = append(out, ics.FetchResult{Source: s, Body: []byte(body)})
	}
	return out, errs
}

func TestRunOnce(t *testing.T) {
	mem := store.NewMemory()
	local, _ := mem.Save(model.Event{Title: "local", Start: time.Now(), End: time.Now().Add(time.Hour)})

	f := &fakeFetcher{bodies: map[string]string{"work": feed, "broken": "not ics"}}
	r := scheduler.NewRefresher(f, mem, []ics.Source{{ID: "work"}, {ID: "broken"}, {ID: "down"}}, time.UTC)

	err := r.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected joined errors for broken and down sources")
	}

	all := mem.All()
	if len(all) != 2 {
		t.Fatalf("events = %+v", all)
	}
	if _, err := mem.Get("work:one"); err != nil {
		t.Errorf("imported event missing: %v", err)
	}
	if _, err := mem.Get(local.ID); err != nil {
		t.Errorf("local event lost: %v", err)
	}

	// A second run replaces rather than duplicates.
	_ = r.RunOnce(context.Background())
	if n := len(mem.All()); n != 2 {
		t.Errorf("after second run: %d events", n)
	}
}

func TestRunOnce_NoSources(t *testing.T) {
	f := &fakeFetcher{}
	r := scheduler.NewRefresher(f, store.NewMemory(), nil, nil)
	if err := r.RunOnce(context.Background()); err != nil {
		t.Errorf("RunOnce() = %v", err)
	}
	if f.calls != 0 {
		t.Errorf("fetcher called without sources")
	}
}

func TestStart(t *testing.T) {
	r := scheduler.NewRefresher(&fakeFetcher{}, store.NewMemory(), nil, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.Start(ctx, "not a schedule"); err == nil {
		t.Errorf("expected error for bad spec")
	}
	if err := r.Start(ctx, "*/15 * * * *"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if next := r.Next(); next.IsZero() || next.Minute()%15 != 0 {
		t.Errorf("Next() = %v", next)
	}
}

func TestValidateSpec(t *testing.T) {
	for spec, ok := range map[string]bool{"*/15 * * * *": true, "@every 10m": true, "soon": false} {
		if err := scheduler.ValidateSpec(spec); (err == nil) != ok {
			t.Errorf("ValidateSpec(%q) = %v", spec, err)
		}
	}
}
