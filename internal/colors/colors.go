// Package colors implements the color-visibility set used to filter events
// by their color tag.
package colors

import (
	"regexp"
	"slices"
	"strings"
)

// DefaultTag is given to saved events that carry no color.
const DefaultTag = "blue"

var hexPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// Entry is one togglable palette label.
type Entry struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Hex   string `json:"hex"`
}

// Set is an immutable view of the palette plus the currently active tags.
type Set struct {
	palette []Entry
	active  map[string]bool
}

// NewSet builds a Set over palette with the given active tags.
func NewSet(palette []Entry, active []string) Set {
	s := Set{
		palette: slices.Clone(palette),
		active:  make(map[string]bool, len(active)),
	}
	for _, tag := range active {
		s.active[normalize(tag)] = true
	}
	return s
}

// IsHex reports whether tag is a #RGB or #RRGGBB literal.
func IsHex(tag string) bool {
	return hexPattern.MatchString(tag)
}

// Visible reports whether an event tagged with tag should be rendered.
//
//   - no tag: always visible
//   - tag in the active set: visible
//   - hex literal not in the active set: visible (fail-open)
//   - palette name not in the active set: hidden
//   - any other name: visible (fail-open)
func (s Set) Visible(tag string) bool {
	tag = normalize(tag)
	if tag == "" || s.active[tag] {
		return true
	}
	if strings.HasPrefix(tag, "#") {
		return true
	}
	_, known := s.lookup(tag)
	return !known
}

// Toggle returns a copy of s with tag's membership flipped.
func (s Set) Toggle(tag string) Set {
	tag = normalize(tag)
	next := Set{palette: s.palette, active: make(map[string]bool, len(s.active)+1)}
	for k := range s.active {
		next.active[k] = true
	}
	if next.active[tag] {
		delete(next.active, tag)
	} else if tag != "" {
		next.active[tag] = true
	}
	return next
}

// Active lists active tags in palette order, followed by ad hoc tags sorted.
func (s Set) Active() []string {
	out := make([]string, 0, len(s.active))
	seen := make(map[string]bool, len(s.active))
	for _, e := range s.palette {
		n := normalize(e.Name)
		if s.active[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	var extra []string
	for tag := range s.active {
		if !seen[tag] {
			extra = append(extra, tag)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// IsActive reports whether tag is in the active set.
func (s Set) IsActive(tag string) bool {
	return s.active[normalize(tag)]
}

// Palette returns a copy of the palette entries.
func (s Set) Palette() []Entry {
	return slices.Clone(s.palette)
}

// Hex resolves tag to a display color: palette names map to their hex,
// literals pass through, and anything else falls back to the default tag.
func (s Set) Hex(tag string) string {
	if IsHex(tag) {
		return strings.ToLower(tag)
	}
	if e, ok := s.lookup(normalize(tag)); ok {
		return e.Hex
	}
	if e, ok := s.lookup(DefaultTag); ok {
		return e.Hex
	}
	return "#3b82f6"
}

// Key is a stable string for the active set, suitable for cache keys.
func (s Set) Key() string {
	return strings.Join(s.Active(), ",")
}

func (s Set) lookup(name string) (Entry, bool) {
	for _, e := range s.palette {
		if normalize(e.Name) == name {
			return e, true
		}
	}
	return Entry{}, false
}

func normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
