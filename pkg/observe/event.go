package observe

import "fmt"

// EventData is a labelled sub-window of a larger window of validity: a set
// of selection intervals (e.g. "running faster than threshold") layered on
// the observation intervals they were derived from. Using an EventData to
// query another dataset keeps the observation bookkeeping of both sides
// intact.
type EventData struct {
	selectIntervals TimeIntervals
	obsIntervals    TimeIntervals
}

// NewEventData builds an EventData after verifying that every selection
// interval is fully contained in the observation support. A selection
// cannot claim validity over unobserved time.
func NewEventData(selectIntervals, obsIntervals TimeIntervals) (EventData, error) {
	for _, sp := range selectIntervals.Set().Spans() {
		if !obsIntervals.Set().ContainsSpan(sp) {
			return EventData{}, fmt.Errorf("%w: selection [%v, %v] outside observation support",
				ErrValidation, sp.Lo, sp.Hi)
		}
	}
	return EventData{selectIntervals: selectIntervals, obsIntervals: obsIntervals}, nil
}

// SelectIntervals returns the selection intervals.
func (e EventData) SelectIntervals() TimeIntervals {
	return e.selectIntervals
}

// ObsIntervals returns the observation intervals.
func (e EventData) ObsIntervals() TimeIntervals {
	return e.obsIntervals
}

// Contains reports whether t lies in the selection intervals.
func (e EventData) Contains(t float64) bool {
	return e.selectIntervals.Contains(t)
}

// Supports reports whether t lies in the observation intervals, regardless
// of whether it is selected. A time can be supported but not selected.
func (e EventData) Supports(t float64) bool {
	return e.obsIntervals.Contains(t)
}

// Durations returns the duration of each selection interval.
func (e EventData) Durations() []float64 {
	return e.selectIntervals.Durations()
}

// ObsDurations returns the duration of each observation interval.
func (e EventData) ObsDurations() []float64 {
	return e.obsIntervals.Durations()
}

// Intersect intersects the selection and observation layers independently
// and re-validates the containment invariant.
func (e EventData) Intersect(other EventData) (EventData, error) {
	return NewEventData(
		e.selectIntervals.Intersect(other.selectIntervals),
		e.obsIntervals.Intersect(other.obsIntervals),
	)
}

// Union unions the selection and observation layers independently and
// re-validates the containment invariant.
func (e EventData) Union(other EventData) (EventData, error) {
	return NewEventData(
		e.selectIntervals.Union(other.selectIntervals),
		e.obsIntervals.Union(other.obsIntervals),
	)
}

// QueryWindow makes EventData usable as a Query: the effective window is
// the selection, not the full observation support.
func (e EventData) QueryWindow() TimeIntervals {
	return e.selectIntervals
}
