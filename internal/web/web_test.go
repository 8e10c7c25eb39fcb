package web_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventcal/internal/config"
	"eventcal/internal/model"
	"eventcal/internal/store"
	"eventcal/internal/web"
)

var now = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

func newServer(t *testing.T, mutate func(*config.Config)) (*httptest.Server, *store.Memory) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	if mutate != nil {
		mutate(cfg)
	}
	mem := store.NewMemory()
	s, err := web.NewServer(web.Options{Config: cfg, Store: mem, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts, mem
}

func do(t *testing.T, ts *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthAndBasicAuth(t *testing.T) {
	ts, _ := newServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	})

	if code := do(t, ts, http.MethodGet, "/health", "", nil); code != http.StatusOK {
		t.Errorf("/health = %d", code)
	}
	if code := do(t, ts, http.MethodGet, "/api/state", "", nil); code != http.StatusUnauthorized {
		t.Errorf("/api/state without auth = %d", code)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/state", nil)
	req.SetBasicAuth("u", "p")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/api/state with auth = %d", resp.StatusCode)
	}
}

type eventJSON = model.Event

func TestEventsLifecycle(t *testing.T) {
	ts, mem := newServer(t, nil)

	var created eventJSON
	code := do(t, ts, http.MethodPost, "/api/events", `{"title":"","start":"2025-03-05T09:00","end":"2025-03-05T10:00"}`, &created)
	if code != http.StatusCreated || created.ID == "" || created.Title != model.UntitledLabel || created.Color != "blue" {
		t.Fatalf("create = %d %+v", code, created)
	}

	var updated eventJSON
	body := `{"id":"` + created.ID + `","title":"Review","start":"2025-03-05T09:00","end":"2025-03-05T11:00"}`
	if code := do(t, ts, http.MethodPost, "/api/events", body, &updated); code != http.StatusOK || updated.Title != "Review" {
		t.Errorf("update = %d %+v", code, updated)
	}

	var errResp struct{ Error string }
	if code := do(t, ts, http.MethodPost, "/api/events", `{"title":"x","start":"2025-03-05T11:00","end":"2025-03-05T10:00"}`, &errResp); code != http.StatusBadRequest {
		t.Errorf("inverted range = %d", code)
	}
	if code := do(t, ts, http.MethodPost, "/api/events", `{"title":"x","start":"tomorrow","end":"2025-03-05T10:00"}`, &errResp); code != http.StatusBadRequest || !strings.Contains(errResp.Error, "malformed") {
		t.Errorf("malformed time = %d %q", code, errResp.Error)
	}
	if code := do(t, ts, http.MethodPost, "/api/events", `{"id":"nope","title":"x","start":"2025-03-05T09:00","end":"2025-03-05T10:00"}`, &errResp); code != http.StatusNotFound {
		t.Errorf("update unknown = %d", code)
	}

	var list []eventJSON
	if code := do(t, ts, http.MethodGet, "/api/events?from=2025-03-05&to=2025-03-06", "", &list); code != http.StatusOK || len(list) != 1 {
		t.Errorf("list = %d %+v", code, list)
	}

	if code := do(t, ts, http.MethodDelete, "/api/events/"+created.ID, "", nil); code != http.StatusNoContent {
		t.Errorf("delete = %d", code)
	}
	if code := do(t, ts, http.MethodDelete, "/api/events/"+created.ID, "", &errResp); code != http.StatusNotFound {
		t.Errorf("second delete = %d", code)
	}
	if len(mem.All()) != 0 {
		t.Errorf("store not empty")
	}
}

func TestImportedEventsAreReadOnly(t *testing.T) {
	ts, mem := newServer(t, nil)
	mem.ReplaceSource("work", []model.Event{{ID: "work:standup", Title: "Standup",
		Start: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 5, 9, 15, 0, 0, time.UTC)}})

	var errResp struct{ Error string }
	body := `{"id":"work:standup","title":"Renamed","start":"2025-03-05T09:00","end":"2025-03-05T10:00"}`
	if code := do(t, ts, http.MethodPost, "/api/events", body, &errResp); code != http.StatusConflict || !strings.Contains(errResp.Error, "read-only") {
		t.Errorf("edit imported = %d %q", code, errResp.Error)
	}
	if code := do(t, ts, http.MethodDelete, "/api/events/work:standup", "", &errResp); code != http.StatusConflict {
		t.Errorf("delete imported = %d", code)
	}
	got, err := mem.Get("work:standup")
	if err != nil || got.Title != "Standup" || got.SourceID != "work" {
		t.Errorf("stored = %+v, %v", got, err)
	}
}

type viewJSON struct {
	Title string `json:"title"`
	Days  []struct {
		Date     time.Time     `json:"date"`
		Touching []model.Event `json:"touching"`
	} `json:"days"`
	Layout struct {
		Rows []struct {
			Bars []struct {
				Col  int `json:"col"`
				Span int `json:"span"`
			} `json:"bars"`
		} `json:"rows"`
		Columns []struct {
			Boxes []struct {
				Lane  int `json:"lane"`
				Lanes int `json:"lanes"`
			} `json:"boxes"`
		} `json:"columns"`
	} `json:"layout"`
}

func TestView(t *testing.T) {
	ts, mem := newServer(t, nil)
	for _, e := range []model.Event{
		{Title: "Offsite", Start: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 6, 17, 0, 0, 0, time.UTC)},
		{Title: "A", Start: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)},
		{Title: "B", Start: time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC), End: time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC), Color: "rose"},
	} {
		if _, err := mem.Save(e); err != nil {
			t.Fatal(err)
		}
	}

	var v viewJSON
	if code := do(t, ts, http.MethodGet, "/api/view?mode=week&date=2025-03-05", "", &v); code != http.StatusOK {
		t.Fatalf("view = %d", code)
	}
	if v.Title != "March 2025" || len(v.Days) != 7 {
		t.Fatalf("view = %q %d days", v.Title, len(v.Days))
	}
	bars := v.Layout.Rows[0].Bars
	if len(bars) != 1 || bars[0].Col != 2 || bars[0].Span != 3 {
		t.Errorf("bars = %+v", bars)
	}
	wed := v.Layout.Columns[3].Boxes
	if len(wed) != 2 || wed[0].Lanes != 2 || wed[1].Lane != 1 {
		t.Errorf("wed boxes = %+v", wed)
	}

	// Toggling rose off hides B; the cache must not serve the old render.
	if code := do(t, ts, http.MethodPost, "/api/colors/toggle", `{"tag":"rose"}`, nil); code != http.StatusOK {
		t.Fatalf("toggle = %d", code)
	}
	v = viewJSON{}
	do(t, ts, http.MethodGet, "/api/view?mode=week&date=2025-03-05", "", &v)
	if n := len(v.Layout.Columns[3].Boxes); n != 1 {
		t.Errorf("boxes after toggle = %d, want 1", n)
	}

	var errResp struct{ Error string }
	if code := do(t, ts, http.MethodGet, "/api/view?mode=year", "", &errResp); code != http.StatusBadRequest {
		t.Errorf("bad mode = %d", code)
	}
}

func TestViewText(t *testing.T) {
	ts, _ := newServer(t, nil)
	resp, err := ts.Client().Get(ts.URL + "/api/view.txt?mode=agenda")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("view.txt = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

type stateJSON struct {
	Handled bool   `json:"handled"`
	Action  string `json:"action"`
	State   struct {
		CurrentDate time.Time `json:"current_date"`
		Mode        string    `json:"mode"`
	} `json:"state"`
	Title string `json:"title"`
}

func TestNavigationAndKeys(t *testing.T) {
	ts, _ := newServer(t, nil)

	var st stateJSON
	do(t, ts, http.MethodGet, "/api/state", "", &st)
	if st.State.Mode != "week" || !st.State.CurrentDate.Equal(now) {
		t.Fatalf("initial state = %+v", st)
	}

	do(t, ts, http.MethodPost, "/api/state/navigate?dir=next", "", &st)
	if !st.State.CurrentDate.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("next = %v", st.State.CurrentDate)
	}
	if code := do(t, ts, http.MethodPost, "/api/state/navigate?dir=sideways", "", nil); code != http.StatusBadRequest {
		t.Errorf("bad dir = %d", code)
	}

	do(t, ts, http.MethodPost, "/api/keys", `{"key":"m"}`, &st)
	if !st.Handled || st.Action != "month" || st.State.Mode != "month" {
		t.Errorf("key m = %+v", st)
	}
	do(t, ts, http.MethodPost, "/api/keys", `{"key":"d","editable":true}`, &st)
	if st.Handled || st.State.Mode != "month" {
		t.Errorf("editable key = %+v", st)
	}
	do(t, ts, http.MethodPost, "/api/keys", `{"key":"d","dialog_open":true}`, &st)
	if st.Handled {
		t.Errorf("key handled while dialog open")
	}
	do(t, ts, http.MethodPost, "/api/keys", `{"key":"t"}`, &st)
	if !st.Handled || !st.State.CurrentDate.Equal(now) {
		t.Errorf("key t = %+v", st)
	}

	do(t, ts, http.MethodPost, "/api/state", `{"mode":"day","date":"2025-12-25"}`, &st)
	if st.Title != "Thu December 25, 2025" {
		t.Errorf("title = %q", st.Title)
	}
}

func TestGestures(t *testing.T) {
	ts, mem := newServer(t, nil)
	saved, _ := mem.Save(model.Event{Title: "x", Start: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)})
	rev := mem.Revision()

	var e eventJSON
	if code := do(t, ts, http.MethodPost, "/api/gestures/create", `{"at":"2025-03-05T07:38"}`, &e); code != http.StatusOK || e.Start.Minute() != 45 || e.ID != "" {
		t.Errorf("create = %d %+v", code, e)
	}
	if code := do(t, ts, http.MethodPost, "/api/gestures/move", `{"id":"`+saved.ID+`","at":"2025-03-06T14:10"}`, &e); code != http.StatusOK || e.Start.Day() != 6 || e.Duration() != time.Hour {
		t.Errorf("move = %d %+v", code, e)
	}
	if code := do(t, ts, http.MethodPost, "/api/gestures/move", `{"id":"`+saved.ID+`","delta_minutes":30}`, &e); code != http.StatusOK || e.Start.Minute() != 30 {
		t.Errorf("move by = %d %+v", code, e)
	}

	var errResp struct{ Error string }
	if code := do(t, ts, http.MethodPost, "/api/gestures/resize", `{"id":"`+saved.ID+`","edge":"end","at":"2025-03-05T08:30"}`, &errResp); code != http.StatusBadRequest {
		t.Errorf("invalid resize = %d", code)
	}
	if code := do(t, ts, http.MethodPost, "/api/gestures/resize", `{"id":"`+saved.ID+`","edge":"end","at":"2025-03-05T12:00"}`, &e); code != http.StatusOK || e.End.Hour() != 12 {
		t.Errorf("resize = %d %+v", code, e)
	}
	if code := do(t, ts, http.MethodPost, "/api/gestures/move", `{"id":"missing","at":"2025-03-06T14:10"}`, &errResp); code != http.StatusNotFound {
		t.Errorf("move missing = %d", code)
	}
	if mem.Revision() != rev {
		t.Errorf("gestures must not write to the store")
	}
}

func TestColorsAndExport(t *testing.T) {
	ts, mem := newServer(t, nil)
	_, _ = mem.Save(model.Event{Title: "Exported", Start: now, End: now.Add(time.Hour)})

	var colors struct {
		Palette []struct {
			Name   string `json:"name"`
			Active bool   `json:"active"`
		} `json:"palette"`
		Active []string `json:"active"`
	}
	do(t, ts, http.MethodGet, "/api/colors", "", &colors)
	if len(colors.Palette) != 5 || len(colors.Active) != 5 {
		t.Errorf("colors = %+v", colors)
	}
	do(t, ts, http.MethodPost, "/api/colors/toggle", `{"tag":"emerald"}`, &colors)
	if colors.Palette[0].Active || len(colors.Active) != 4 {
		t.Errorf("after toggle = %+v", colors)
	}

	resp, err := ts.Client().Get(ts.URL + "/api/events.ics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "SUMMARY:Exported") {
		t.Errorf("export = %s", buf.String())
	}
}
