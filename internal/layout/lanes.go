// Package layout turns the events of a day or a week row into collision-free
// render geometry.
package layout

import (
	"slices"
	"time"

	"github.com/rdleal/intervalst/interval"

	"eventcal/internal/classify"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/timeutil"
)

// Placement is an event assigned to a lane. Lanes is the number of lanes
// used by the overlap cluster the event belongs to, so Lane/Lanes gives its
// horizontal slot.
type Placement struct {
	Event   model.Event `json:"event"`
	Lane    int         `json:"lane"`
	Lanes   int         `json:"lanes"`
	Cluster int         `json:"cluster"`
}

type span struct {
	start, end time.Time
}

// AssignLanes places events into lanes using their [Start, End) intervals.
// The result is in classify order and is identical for identical input.
func AssignLanes(events []model.Event) []Placement {
	return assign(events, func(e model.Event) span {
		return span{start: e.Start, end: e.End}
	})
}

// assignDays places events by whole days: [start day 00:00, day after end).
func assignDays(events []model.Event) []Placement {
	return assign(events, func(e model.Event) span {
		return span{
			start: timeutil.StartOfDay(e.Start),
			end:   timeutil.AddDays(timeutil.StartOfDay(e.End), 1),
		}
	})
}

func assign(events []model.Event, spanOf func(model.Event) span) []Placement {
	sorted := classify.Sort(events)
	spans := make([]span, len(sorted))
	for i, e := range sorted {
		s := spanOf(e)
		if s.end.Before(s.start) {
			s.end = s.start
		}
		spans[i] = s
	}

	out := make([]Placement, len(sorted))
	// laneEnds[l] is the end of the last event placed in lane l.
	var laneEnds []time.Time
	for i, e := range sorted {
		lane := -1
		for l, end := range laneEnds {
			if !end.After(spans[i].start) {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, spans[i].end)
		} else {
			laneEnds[lane] = spans[i].end
		}
		out[i] = Placement{Event: e, Lane: lane}
	}

	clusters := clusterSpans(spans)
	width := make(map[int]int)
	for i, c := range clusters {
		width[c] = max(width[c], out[i].Lane+1)
	}
	for i, c := range clusters {
		out[i].Cluster = c
		out[i].Lanes = width[c]
	}
	return out
}

// overlaps is the half-open interval test.
func overlaps(a, b span) bool {
	return a.start.Before(b.end) && b.start.Before(a.end)
}

// clusterSpans labels each span with the index of its connected overlap
// group. Labels are assigned in input order starting at 0.
func clusterSpans(spans []span) []int {
	parent := make([]int, len(spans))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	// The tree holds one node per distinct interval; identical intervals
	// share a group.
	tree := interval.NewSearchTree[int](func(x, y time.Time) int { return x.Compare(y) })
	type key struct{ s, e int64 }
	groups := make(map[key][]int)
	var order []key
	for i, s := range spans {
		k := key{s.start.UnixNano(), s.end.UnixNano()}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	for g, k := range order {
		members := groups[k]
		for _, m := range members[1:] {
			if overlaps(spans[members[0]], spans[m]) {
				union(members[0], m)
			}
		}
		s := spans[members[0]]
		if err := tree.Insert(s.start, s.end, g); err != nil {
			appLog.Debug("layout: interval not indexed", "start", s.start, "end", s.end, "err", err)
		}
	}

	for i, s := range spans {
		hits, ok := tree.AllIntersections(s.start, s.end)
		if !ok {
			continue
		}
		for _, g := range hits {
			j := groups[order[g]][0]
			if j != i && overlaps(s, spans[j]) {
				for _, m := range groups[order[g]] {
					union(i, m)
				}
			}
		}
	}

	labels := make([]int, len(spans))
	next := make(map[int]int)
	for i := range spans {
		r := find(i)
		l, ok := next[r]
		if !ok {
			l = len(next)
			next[r] = l
		}
		labels[i] = l
	}
	return labels
}

// Lanes returns the number of lanes used by placements.
func Lanes(ps []Placement) int {
	n := 0
	for _, p := range ps {
		n = max(n, p.Lane+1)
	}
	return n
}

// ByLane returns placements grouped per lane, each lane in start order.
func ByLane(ps []Placement) [][]Placement {
	out := make([][]Placement, Lanes(ps))
	for _, p := range ps {
		out[p.Lane] = append(out[p.Lane], p)
	}
	for _, lane := range out {
		slices.SortStableFunc(lane, func(a, b Placement) int { return classify.Compare(a.Event, b.Event) })
	}
	return out
}

// Clusters groups events into connected overlap clusters, each in classify
// order. Cluster i of the result has Placement.Cluster == i.
func Clusters(events []model.Event) [][]model.Event {
	ps := AssignLanes(events)
	n := 0
	for _, p := range ps {
		n = max(n, p.Cluster+1)
	}
	out := make([][]model.Event, n)
	for _, p := range ps {
		out[p.Cluster] = append(out[p.Cluster], p.Event)
	}
	return out
}
