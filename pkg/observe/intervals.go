// Package observe is a query engine for time-aligned observations: discrete
// event streams (PointData), continuously sampled signals (ContinuousData)
// and derived selection windows (EventData), each annotated with the
// intervals over which the data was actually observed. Every operation
// propagates that observation support, so statistics downstream are never
// computed over unobserved time.
//
// All types are immutable values; every transformation returns a fresh
// instance, which makes concurrent read-only use safe without locking.
// Times are unitless float64s — callers are responsible for using one time
// unit consistently across all inputs.
package observe

import (
	"fmt"

	"github.com/leowmjw/go-obs-query/pkg/interval"
)

// TimeIntervals is a canonical set of non-overlapping closed time intervals.
// It wraps the interval.Set backend so the rest of the package stays
// unaware of how intervals are stored.
type TimeIntervals struct {
	set interval.Set
}

// EmptyIntervals returns the empty interval set.
func EmptyIntervals() TimeIntervals {
	return TimeIntervals{}
}

// NewInterval returns a TimeIntervals holding the single closed interval
// [lo, hi].
func NewInterval(lo, hi float64) (TimeIntervals, error) {
	sp, err := interval.NewSpan(lo, hi)
	if err != nil {
		return TimeIntervals{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	set, err := interval.NewSet(sp)
	if err != nil {
		return TimeIntervals{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return TimeIntervals{set: set}, nil
}

// NewTimeIntervals builds a canonical TimeIntervals from m [start, end]
// rows. Rows may overlap or arrive out of order; they are merged into
// canonical form. A row with start > end is a validation error.
func NewTimeIntervals(bounds [][2]float64) (TimeIntervals, error) {
	spans := make([]interval.Span, 0, len(bounds))
	for i, b := range bounds {
		sp, err := interval.NewSpan(b[0], b[1])
		if err != nil {
			return TimeIntervals{}, fmt.Errorf("%w: bounds row %d: %v", ErrValidation, i, err)
		}
		spans = append(spans, sp)
	}
	set, err := interval.NewSet(spans...)
	if err != nil {
		return TimeIntervals{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return TimeIntervals{set: set}, nil
}

// FromSet wraps an already-canonical interval.Set.
func FromSet(set interval.Set) TimeIntervals {
	return TimeIntervals{set: set}
}

// Set exposes the backend set, e.g. for containment checks against
// individual spans.
func (ti TimeIntervals) Set() interval.Set {
	return ti.set
}

// ToArray materializes the canonical intervals as k [start, end] rows.
func (ti TimeIntervals) ToArray() [][2]float64 {
	spans := ti.set.Spans()
	out := make([][2]float64, len(spans))
	for i, sp := range spans {
		out[i] = [2]float64{sp.Lo, sp.Hi}
	}
	return out
}

// Durations returns end - start for each canonical interval.
func (ti TimeIntervals) Durations() []float64 {
	spans := ti.set.Spans()
	out := make([]float64, len(spans))
	for i, sp := range spans {
		out[i] = sp.Duration()
	}
	return out
}

// Len returns the number of canonical intervals; 0 for the empty set.
func (ti TimeIntervals) Len() int {
	return ti.set.Len()
}

// IsEmpty reports whether the set covers no time at all.
func (ti TimeIntervals) IsEmpty() bool {
	return ti.set.IsEmpty()
}

// Contains reports whether t lies in some interval. Endpoints are included.
func (ti TimeIntervals) Contains(t float64) bool {
	return ti.set.Contains(t)
}

// Intersect returns the intersection of the two interval sets. Intervals
// that touch at a single point intersect in that point.
func (ti TimeIntervals) Intersect(other TimeIntervals) TimeIntervals {
	return TimeIntervals{set: ti.set.Intersect(other.set)}
}

// Union returns the merged union of the two interval sets.
func (ti TimeIntervals) Union(other TimeIntervals) TimeIntervals {
	return TimeIntervals{set: ti.set.Union(other.set)}
}

// Equal reports whether both sets cover exactly the same time.
func (ti TimeIntervals) Equal(other TimeIntervals) bool {
	return ti.set.Equal(other.set)
}

// QueryWindow makes TimeIntervals usable directly as a Query: the window is
// the set itself.
func (ti TimeIntervals) QueryWindow() TimeIntervals {
	return ti
}
