// Package interval provides a canonical set of disjoint closed intervals
// over float64 values. It is the storage backend for the observation and
// selection windows in pkg/observe; any correct sorted-array or tree
// implementation could replace it behind the same operations.
package interval

import (
	"fmt"
	"sort"
)

// Span is a closed interval [Lo, Hi]. Both endpoints are included.
type Span struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// NewSpan returns a Span after checking the bounds are ordered.
func NewSpan(lo, hi float64) (Span, error) {
	if lo > hi {
		return Span{}, fmt.Errorf("span bounds out of order: [%v, %v]", lo, hi)
	}
	return Span{Lo: lo, Hi: hi}, nil
}

// Duration returns Hi - Lo.
func (s Span) Duration() float64 {
	return s.Hi - s.Lo
}

// Contains reports whether t lies in the closed interval.
func (s Span) Contains(t float64) bool {
	return t >= s.Lo && t <= s.Hi
}

// ContainsSpan reports whether o lies entirely within s.
func (s Span) ContainsSpan(o Span) bool {
	return o.Lo >= s.Lo && o.Hi <= s.Hi
}

// Overlaps reports whether the two closed intervals share at least one
// point. Spans that touch at a single endpoint overlap.
func (s Span) Overlaps(o Span) bool {
	return s.Lo <= o.Hi && o.Lo <= s.Hi
}

// Set is a union of disjoint closed intervals kept in canonical form:
// sorted by Lo, with no two spans overlapping or touching. The zero value
// is the empty set.
type Set struct {
	spans []Span
}

// NewSet builds a canonical Set from spans in any order. Overlapping and
// touching spans are merged. Spans with Lo > Hi are rejected.
func NewSet(spans ...Span) (Set, error) {
	for _, sp := range spans {
		if sp.Lo > sp.Hi {
			return Set{}, fmt.Errorf("span bounds out of order: [%v, %v]", sp.Lo, sp.Hi)
		}
	}
	return Set{spans: normalize(spans)}, nil
}

// normalize sorts and merges spans into canonical form. The input slice is
// not modified.
func normalize(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lo != sorted[j].Lo {
			return sorted[i].Lo < sorted[j].Lo
		}
		return sorted[i].Hi < sorted[j].Hi
	})

	merged := make([]Span, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		// Closed semantics: spans touching at one point merge too.
		if next.Lo <= current.Hi {
			if next.Hi > current.Hi {
				current.Hi = next.Hi
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

// Len returns the number of disjoint spans; 0 for the empty set.
func (s Set) Len() int {
	return len(s.spans)
}

// IsEmpty reports whether the set covers no points at all.
func (s Set) IsEmpty() bool {
	return len(s.spans) == 0
}

// Spans returns a copy of the canonical spans in ascending order.
func (s Set) Spans() []Span {
	out := make([]Span, len(s.spans))
	copy(out, s.spans)
	return out
}

// Contains reports whether t lies in some span of the set.
func (s Set) Contains(t float64) bool {
	// First span whose Hi bounds t from above.
	i := sort.Search(len(s.spans), func(i int) bool {
		return s.spans[i].Hi >= t
	})
	return i < len(s.spans) && s.spans[i].Contains(t)
}

// ContainsSpan reports whether sp lies entirely within one span of the set.
// Canonical spans are disjoint, so containment in the union implies
// containment in a single span.
func (s Set) ContainsSpan(sp Span) bool {
	i := sort.Search(len(s.spans), func(i int) bool {
		return s.spans[i].Hi >= sp.Lo
	})
	return i < len(s.spans) && s.spans[i].ContainsSpan(sp)
}

// Union returns the canonical union of the two sets.
func (s Set) Union(o Set) Set {
	combined := make([]Span, 0, len(s.spans)+len(o.spans))
	combined = append(combined, s.spans...)
	combined = append(combined, o.spans...)
	return Set{spans: normalize(combined)}
}

// Intersect returns the canonical intersection of the two sets. Spans that
// meet at a single point yield a degenerate span [t, t].
func (s Set) Intersect(o Set) Set {
	var out []Span
	i, j := 0, 0
	for i < len(s.spans) && j < len(o.spans) {
		a, b := s.spans[i], o.spans[j]
		lo := a.Lo
		if b.Lo > lo {
			lo = b.Lo
		}
		hi := a.Hi
		if b.Hi < hi {
			hi = b.Hi
		}
		if lo <= hi {
			out = append(out, Span{Lo: lo, Hi: hi})
		}
		// Advance whichever span ends first.
		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	return Set{spans: out}
}

// Equal reports whether the two sets cover exactly the same points.
func (s Set) Equal(o Set) bool {
	if len(s.spans) != len(o.spans) {
		return false
	}
	for i := range s.spans {
		if s.spans[i] != o.spans[i] {
			return false
		}
	}
	return true
}
