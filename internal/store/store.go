// Package store keeps the caller-side event collection. The engine packages
// never hold events; the web server and scheduler read and write them here.
package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"eventcal/internal/classify"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
)

// ErrNotFound is returned for an unknown event ID.
var ErrNotFound = errors.New("event not found")

// ErrReadOnly is returned when Save or Delete targets an event imported from
// an ICS source; the next refresh of that source would undo the change.
var ErrReadOnly = errors.New("event is imported and read-only")

// Memory is an in-memory event store safe for concurrent use. Every write
// bumps Revision, which callers use to key derived caches.
type Memory struct {
	mu       sync.RWMutex
	events   map[string]model.Event
	revision uint64
}

func NewMemory() *Memory {
	return &Memory{events: make(map[string]model.Event)}
}

// Revision increases on every successful write.
func (m *Memory) Revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// All returns every event in classify order.
func (m *Memory) All() []model.Event {
	m.mu.RLock()
	out := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	m.mu.RUnlock()
	// Map order is random; sort by ID first so equal starts stay stable.
	slices.SortFunc(out, func(a, b model.Event) int { return strings.Compare(a.ID, b.ID) })
	return classify.Sort(out)
}

func (m *Memory) Get(id string) (model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	if !ok {
		return model.Event{}, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return e, nil
}

// Save inserts e, assigning a new ID when it has none, or replaces the
// stored event with the same ID. Replacing an unknown ID is an error.
func (m *Memory) Save(e model.Event) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.IsNew() {
		e.ID = uuid.NewString()
	} else if cur, ok := m.events[e.ID]; !ok {
		return model.Event{}, fmt.Errorf("update %q: %w", e.ID, ErrNotFound)
	} else if cur.SourceID != "" {
		return model.Event{}, fmt.Errorf("update %q from %s: %w", e.ID, cur.SourceID, ErrReadOnly)
	}
	e.SourceID = ""
	m.events[e.ID] = e
	m.revision++
	appLog.Debug("store: event saved", "id", e.ID, "revision", m.revision)
	return e, nil
}

func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[id]
	if !ok {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	if cur.SourceID != "" {
		return fmt.Errorf("delete %q from %s: %w", id, cur.SourceID, ErrReadOnly)
	}
	delete(m.events, id)
	m.revision++
	appLog.Debug("store: event deleted", "id", id, "revision", m.revision)
	return nil
}

// ReplaceSource swaps every event imported from sourceID for events. Local
// events (empty SourceID) are untouched. Imported events keep their IDs
// when present so repeated imports are stable.
func (m *Memory) ReplaceSource(sourceID string, events []model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.events {
		if e.SourceID == sourceID {
			delete(m.events, id)
			removed++
		}
	}
	for _, e := range events {
		e.SourceID = sourceID
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		m.events[e.ID] = e
	}
	m.revision++
	appLog.Info("store: source replaced", "source", sourceID, "removed", removed, "added", len(events), "revision", m.revision)
}
