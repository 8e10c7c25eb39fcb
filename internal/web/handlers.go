package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventcal/internal/colors"
	"eventcal/internal/ics"
	"eventcal/internal/interact"
	"eventcal/internal/keymap"
	"eventcal/internal/layout"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/store"
	"eventcal/internal/textview"
	"eventcal/internal/view"
)

// viewResponse is the JSON shape of /api/view: the per-day buckets and
// their layout.
type viewResponse struct {
	State  view.State    `json:"state"`
	Title  string        `json:"title"`
	Days   []view.Day    `json:"days"`
	Layout layout.Render `json:"layout"`
}

// render resolves and lays out the requested view. Results are cached per
// store revision, request and color set.
func (s *Server) render(r *http.Request) (viewResponse, error) {
	state := s.session.State()
	q := r.URL.Query()
	if v := q.Get("mode"); v != "" {
		m, err := view.ParseMode(v)
		if err != nil {
			return viewResponse{}, err
		}
		state.Mode = m
	}
	if v := q.Get("date"); v != "" {
		t, err := interact.ParseTime(v, s.loc)
		if err != nil {
			return viewResponse{}, err
		}
		state.CurrentDate = t
	}

	set := s.session.Colors()
	vopts := s.viewOptions(set)
	key := fmt.Sprintf("%d|%s|%s|%s|%s", s.store.Revision(), state.Mode,
		state.CurrentDate.Format(time.DateOnly), vopts.Now.Format(time.DateOnly), set.Key())
	if resp, ok := s.renders.Get(key); ok {
		return resp, nil
	}

	m, err := view.Resolve(state, s.store.All(), vopts)
	if err != nil {
		return viewResponse{}, err
	}
	resp := viewResponse{
		State:  state,
		Title:  m.Title,
		Days:   m.Days,
		Layout: layout.Build(m, s.layoutOptions(set)),
	}
	s.renders.Add(key, resp)
	return resp, nil
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	resp, err := s.render(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleViewText(w http.ResponseWriter, r *http.Request) {
	resp, err := s.render(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(textview.Render(resp.Layout)))
}

type stateResponse struct {
	State view.State `json:"state"`
	Title string     `json:"title"`
}

func (s *Server) stateResponse() stateResponse {
	st := s.session.State()
	return stateResponse{State: st, Title: view.Title(st, s.viewOptions(colors.Set{}))}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stateResponse())
}

type setStateRequest struct {
	Mode string `json:"mode"`
	Date string `json:"date"`
}

func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	var req setStateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Mode != "" {
		m, err := view.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.session.SetMode(m)
	}
	if req.Date != "" {
		t, err := interact.ParseTime(req.Date, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.session.SetCurrentDate(t)
	}
	writeJSON(w, http.StatusOK, s.stateResponse())
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	st := s.session.State()
	opts := s.viewOptions(colors.Set{})
	switch strings.ToLower(r.URL.Query().Get("dir")) {
	case "next":
		st = view.Next(st, opts)
	case "prev", "previous":
		st = view.Previous(st, opts)
	case "today":
		st = view.Today(st, s.now())
	default:
		writeError(w, http.StatusBadRequest, "dir must be next, prev or today")
		return
	}
	s.session.SetCurrentDate(st.CurrentDate)
	writeJSON(w, http.StatusOK, s.stateResponse())
}

type keysRequest struct {
	keymap.KeyEvent
	// DialogOpen suppresses shortcuts while an editor dialog is shown.
	DialogOpen bool `json:"dialog_open"`
}

type keysResponse struct {
	Handled bool          `json:"handled"`
	Action  keymap.Action `json:"action,omitempty"`
	stateResponse
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	var req keysRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.keys.SetSuppressed(req.DialogOpen)
	action, ok := s.keys.Dispatch(req.KeyEvent)
	writeJSON(w, http.StatusOK, keysResponse{Handled: ok, Action: action, stateResponse: s.stateResponse()})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events := s.store.All()
	q := r.URL.Query()
	if q.Get("from") == "" && q.Get("to") == "" {
		writeJSON(w, http.StatusOK, events)
		return
	}

	from, to := time.Time{}, time.Time{}
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = interact.ParseTime(v, s.loc); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = interact.ParseTime(v, s.loc); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if !from.IsZero() && e.End.Before(from) {
			continue
		}
		if !to.IsZero() && e.Start.After(to) {
			continue
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

// eventRequest is the editor form. Times accept the layouts of
// interact.ParseTime.
type eventRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"all_day"`
	Color       string `json:"color"`
}

func (s *Server) eventFromRequest(req eventRequest) (model.Event, error) {
	start, err := interact.ParseTime(req.Start, s.loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}
	end, err := interact.ParseTime(req.End, s.loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("end: %w", err)
	}
	return model.Event{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Start:       start,
		End:         end,
		AllDay:      req.AllDay,
		Color:       req.Color,
	}, nil
}

// commit persists what the interaction controller reports.
type commit struct {
	store EventStore
	saved model.Event
	err   error
}

func (c *commit) OnEventCreate(time.Time) {}

func (c *commit) OnEventSave(e model.Event) {
	c.saved, c.err = c.store.Save(e)
}

func (c *commit) OnEventUpdate(e model.Event) {
	c.saved, c.err = c.store.Save(e)
}

func (c *commit) OnEventDelete(id string) {
	c.err = c.store.Delete(id)
}

func (s *Server) handleSaveEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	e, err := s.eventFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := &commit{store: s.store}
	if _, err := interact.NewController(c).Save(e); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if c.err != nil {
		writeError(w, statusFor(c.err), c.err.Error())
		return
	}
	status := http.StatusOK
	if e.IsNew() {
		status = http.StatusCreated
	}
	appLog.Info("event saved", "id", c.saved.ID, "new", e.IsNew())
	writeJSON(w, status, c.saved)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	c := &commit{store: s.store}
	if err := interact.NewController(c).Delete(e); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if c.err != nil {
		writeError(w, statusFor(c.err), c.err.Error())
		return
	}
	appLog.Info("event deleted", "id", e.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="eventcal.ics"`)
	_, _ = w.Write([]byte(ics.Export(s.store.All(), s.now())))
}

// gestureRequest carries a pointer gesture. Event may be sent inline for
// unsaved proposals; otherwise ID names a stored event.
type gestureRequest struct {
	ID           string        `json:"id"`
	Event        *eventRequest `json:"event"`
	At           string        `json:"at"`
	DeltaMinutes int           `json:"delta_minutes"`
	Edge         string        `json:"edge"`
}

// handleGesture returns the proposed event for a create, move or resize
// gesture. Nothing is stored; the client saves the proposal when the
// gesture ends.
func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	kind := r.PathValue("kind")
	var at time.Time
	if req.At != "" {
		t, err := interact.ParseTime(req.At, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		at = t
	}

	if kind == "create" {
		if at.IsZero() {
			writeError(w, http.StatusBadRequest, "at is required")
			return
		}
		writeJSON(w, http.StatusOK, interact.Create(at))
		return
	}

	e, err := s.gestureTarget(req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	switch kind {
	case "move":
		if at.IsZero() {
			writeJSON(w, http.StatusOK, interact.MoveBy(e, time.Duration(req.DeltaMinutes)*time.Minute))
			return
		}
		writeJSON(w, http.StatusOK, interact.Move(e, at))
	case "resize":
		edge, err := interact.ParseEdge(req.Edge)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if at.IsZero() {
			writeError(w, http.StatusBadRequest, "at is required")
			return
		}
		out, err := interact.Resize(e, edge, at)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, out)
	default:
		writeError(w, http.StatusNotFound, "unknown gesture "+kind)
	}
}

func (s *Server) gestureTarget(req gestureRequest) (model.Event, error) {
	if req.Event != nil {
		return s.eventFromRequest(*req.Event)
	}
	if req.ID == "" {
		return model.Event{}, errors.New("id or event is required")
	}
	return s.store.Get(req.ID)
}

type colorDTO struct {
	colors.Entry
	Active bool `json:"active"`
}

type colorsResponse struct {
	Palette []colorDTO `json:"palette"`
	Active  []string   `json:"active"`
}

func colorsFor(set colors.Set) colorsResponse {
	resp := colorsResponse{Active: set.Active()}
	for _, e := range set.Palette() {
		resp.Palette = append(resp.Palette, colorDTO{Entry: e, Active: set.IsActive(e.Name)})
	}
	return resp
}

func (s *Server) handleColors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, colorsFor(s.session.Colors()))
}

type toggleRequest struct {
	Tag string `json:"tag"`
}

func (s *Server) handleToggleColor(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Tag) == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}
	writeJSON(w, http.StatusOK, colorsFor(s.session.ToggleColor(req.Tag)))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, interact.ErrInvalidRange), errors.Is(err, interact.ErrMalformedTime), errors.Is(err, interact.ErrUnsaved):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
