package web

import (
	"sync"
	"time"

	"eventcal/internal/colors"
	"eventcal/internal/view"
)

// session is the caller-owned view state shared by every request. It is the
// view.Updater the keyboard binding and navigation write through.
type session struct {
	mu     sync.RWMutex
	state  view.State
	colors colors.Set
}

func newSession(state view.State, set colors.Set) *session {
	return &session{state: state, colors: set}
}

func (s *session) State() view.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *session) SetCurrentDate(t time.Time) {
	s.mu.Lock()
	s.state.CurrentDate = t
	s.mu.Unlock()
}

func (s *session) SetMode(m view.Mode) {
	s.mu.Lock()
	s.state.Mode = m
	s.mu.Unlock()
}

func (s *session) Colors() colors.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.colors
}

// ToggleColor flips tag and returns the new set.
func (s *session) ToggleColor(tag string) colors.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors = s.colors.Toggle(tag)
	return s.colors
}
