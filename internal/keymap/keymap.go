// Package keymap maps single-key shortcuts to view actions.
package keymap

import (
	"strings"
	"sync"
	"time"

	"eventcal/internal/view"
)

// Action identifies what a shortcut does.
type Action string

const (
	ActionMonth    Action = "month"
	ActionWeek     Action = "week"
	ActionDay      Action = "day"
	ActionAgenda   Action = "agenda"
	ActionToday    Action = "today"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
)

// Keymap maps a key to an action.
type Keymap map[string]Action

// Default is the stock shortcut table.
var Default = Keymap{
	"m": ActionMonth,
	"w": ActionWeek,
	"d": ActionDay,
	"a": ActionAgenda,
	"t": ActionToday,
	"n": ActionNext,
	"p": ActionPrevious,
}

// KeyEvent is one key press. Editable is set when the focus is in a text
// field, in which case the key belongs to the field.
type KeyEvent struct {
	Key      string `json:"key"`
	Editable bool   `json:"editable"`
	Ctrl     bool   `json:"ctrl,omitempty"`
	Alt      bool   `json:"alt,omitempty"`
	Meta     bool   `json:"meta,omitempty"`
}

// Target is what a Binding drives: the view state owner. State is read to
// compute navigation; writes go through view.Updater.
type Target interface {
	view.Updater
	State() view.State
}

// Options configures navigation.
type Options struct {
	Keymap Keymap
	View   view.Options
	// Now returns the current time; nil uses time.Now.
	Now func() time.Time
}

// Binding is an installed keymap. Release detaches it.
type Binding struct {
	target Target
	keys   Keymap
	view   view.Options
	now    func() time.Time

	mu         sync.Mutex
	released   bool
	suppressed bool
	running    bool
}

// Install binds opts.Keymap (Default when nil) to target.
func Install(target Target, opts Options) *Binding {
	keys := opts.Keymap
	if keys == nil {
		keys = Default
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Binding{target: target, keys: keys, view: opts.View, now: now}
}

// SetSuppressed blocks dispatch while a dialog is open.
func (b *Binding) SetSuppressed(v bool) {
	b.mu.Lock()
	b.suppressed = v
	b.mu.Unlock()
}

// Release detaches the binding; later dispatches do nothing.
func (b *Binding) Release() {
	b.mu.Lock()
	b.released = true
	b.mu.Unlock()
}

// Dispatch runs the action bound to ev and reports whether one ran.
// Modified keys, editable targets, a suppressed or released binding and
// dispatches issued from inside an action are all ignored.
func (b *Binding) Dispatch(ev KeyEvent) (Action, bool) {
	if ev.Editable || ev.Ctrl || ev.Alt || ev.Meta {
		return "", false
	}
	action, ok := b.keys[strings.ToLower(ev.Key)]
	if !ok {
		return "", false
	}

	b.mu.Lock()
	if b.released || b.suppressed || b.running {
		b.mu.Unlock()
		return "", false
	}
	b.running = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}()

	b.apply(action)
	return action, true
}

func (b *Binding) apply(a Action) {
	switch a {
	case ActionMonth:
		b.target.SetMode(view.ModeMonth)
	case ActionWeek:
		b.target.SetMode(view.ModeWeek)
	case ActionDay:
		b.target.SetMode(view.ModeDay)
	case ActionAgenda:
		b.target.SetMode(view.ModeAgenda)
	case ActionToday:
		b.target.SetCurrentDate(view.Today(b.target.State(), b.now()).CurrentDate)
	case ActionNext:
		b.target.SetCurrentDate(view.Next(b.target.State(), b.view).CurrentDate)
	case ActionPrevious:
		b.target.SetCurrentDate(view.Previous(b.target.State(), b.view).CurrentDate)
	}
}
