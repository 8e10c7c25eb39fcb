// Package web serves the calendar engine over HTTP: resolved views with
// their layout, navigation, keyboard dispatch, event editing and gesture
// proposals.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"eventcal/internal/colors"
	"eventcal/internal/config"
	"eventcal/internal/keymap"
	"eventcal/internal/layout"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/view"
)

// EventStore is the event collection the server edits.
type EventStore interface {
	All() []model.Event
	Get(id string) (model.Event, error)
	Save(e model.Event) (model.Event, error)
	Delete(id string) error
	Revision() uint64
}

// Options wires a Server.
type Options struct {
	Config *config.Config
	Store  EventStore
	// Now returns the current time; nil uses time.Now in the config timezone.
	Now func() time.Time
}

// Server holds the shared view session and the render cache.
type Server struct {
	cfg   *config.Config
	store EventStore
	loc   *time.Location
	now   func() time.Time
	mux   *http.ServeMux

	session *session
	keys    *keymap.Binding
	renders *lru.Cache[string, viewResponse]
}

// NewServer constructs a Server. The initial view is the current week.
func NewServer(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", cfg.Timezone)
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().In(loc) }
	}
	renders, err := lru.New[string, viewResponse](max(cfg.CacheSize, 1))
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		store:   opts.Store,
		loc:     loc,
		now:     now,
		mux:     http.NewServeMux(),
		renders: renders,
	}
	s.session = newSession(view.State{CurrentDate: now(), Mode: view.ModeWeek}, paletteSet(cfg.Palette))
	s.keys = keymap.Install(s.session, keymap.Options{View: s.viewOptions(colors.Set{}), Now: now})
	s.registerRoutes()
	return s, nil
}

// Handler returns the root handler, with basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Close detaches the keyboard binding.
func (s *Server) Close() {
	s.keys.Release()
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials mean disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="eventcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/view", s.handleView)
	s.mux.HandleFunc("GET /api/view.txt", s.handleViewText)

	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/state", s.handleSetState)
	s.mux.HandleFunc("POST /api/state/navigate", s.handleNavigate)
	s.mux.HandleFunc("POST /api/keys", s.handleKeys)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleSaveEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("GET /api/events.ics", s.handleExport)

	s.mux.HandleFunc("POST /api/gestures/{kind}", s.handleGesture)

	s.mux.HandleFunc("GET /api/colors", s.handleColors)
	s.mux.HandleFunc("POST /api/colors/toggle", s.handleToggleColor)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) viewOptions(set colors.Set) view.Options {
	return view.Options{
		WeekStart:  s.cfg.FirstWeekday(),
		AgendaDays: s.cfg.AgendaDays,
		Colors:     set,
		Now:        s.now(),
	}
}

func (s *Server) layoutOptions(set colors.Set) layout.Options {
	return layout.Options{
		Grid: layout.Grid{
			StartHour:  s.cfg.Grid.StartHour,
			EndHour:    s.cfg.Grid.EndHour,
			HourHeight: s.cfg.Grid.HourHeight,
		},
		Colors: set,
	}
}

func paletteSet(palette []config.PaletteEntry) colors.Set {
	entries := make([]colors.Entry, 0, len(palette))
	var active []string
	for _, p := range palette {
		entries = append(entries, colors.Entry{Name: p.Name, Label: p.Label, Hex: p.Hex})
		if p.Active {
			active = append(active, p.Name)
		}
	}
	return colors.NewSet(entries, active)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
