package observe

import "fmt"

// PointData is a point process: discrete event times restricted to the
// observation intervals, optionally with one mark row per event. Marks are
// vector-valued so a mark can carry one sample of a continuous signal.
type PointData struct {
	eventTimes   []float64
	marks        [][]float64
	obsIntervals TimeIntervals
}

// NewPointData builds an unmarked PointData. Every event time must lie
// inside the observation intervals.
func NewPointData(eventTimes []float64, obsIntervals TimeIntervals) (PointData, error) {
	return NewMarkedPointData(eventTimes, obsIntervals, nil)
}

// NewMarkedPointData builds a PointData carrying marks aligned 1:1 with the
// event times. Pass nil marks for an unmarked point process.
func NewMarkedPointData(eventTimes []float64, obsIntervals TimeIntervals, marks [][]float64) (PointData, error) {
	for i, t := range eventTimes {
		if !obsIntervals.Contains(t) {
			return PointData{}, fmt.Errorf("%w: event time %v (index %d) outside observation intervals",
				ErrValidation, t, i)
		}
	}
	if marks != nil {
		if len(marks) != len(eventTimes) {
			return PointData{}, fmt.Errorf("%w: %d marks vs %d event times",
				ErrShape, len(marks), len(eventTimes))
		}
		width := -1
		for i, row := range marks {
			if width == -1 {
				width = len(row)
			}
			if len(row) != width {
				return PointData{}, fmt.Errorf("%w: mark row %d has width %d, want %d",
					ErrShape, i, len(row), width)
			}
		}
	}
	return PointData{
		eventTimes:   copyFloats(eventTimes),
		marks:        copyRows(marks),
		obsIntervals: obsIntervals,
	}, nil
}

// EventTimes returns a copy of the event times.
func (p PointData) EventTimes() []float64 {
	return copyFloats(p.eventTimes)
}

// Marks returns a copy of the marks, or nil for an unmarked point process.
func (p PointData) Marks() [][]float64 {
	return copyRows(p.marks)
}

// ObsIntervals returns the observation intervals.
func (p PointData) ObsIntervals() TimeIntervals {
	return p.obsIntervals
}

// Len returns the number of events.
func (p PointData) Len() int {
	return len(p.eventTimes)
}

// TimeQuery keeps the events that lie inside the query window and
// intersects the observation intervals with it. The window decides which
// events survive; the intersection only updates the support bookkeeping.
// Marks follow their events.
func (p PointData) TimeQuery(query Query) (PointData, error) {
	window := query.QueryWindow()
	resultObs := p.obsIntervals.Intersect(window)

	var eventTimes []float64
	var marks [][]float64
	for i, t := range p.eventTimes {
		if !window.Contains(t) {
			continue
		}
		eventTimes = append(eventTimes, t)
		if p.marks != nil {
			marks = append(marks, p.marks[i])
		}
	}
	return NewMarkedPointData(eventTimes, resultObs, marks)
}

// MarkWith evaluates the continuous signal at each event time and attaches
// the result as that event's mark.
//
// With mergeObs true the point process is first queried against the
// signal's observation intervals, so events outside the signal's support
// are dropped and every resulting mark is a genuine interpolated value.
// With mergeObs false every original event is kept; events outside the
// signal's support receive an undefined mark (a NaN row of the signal's
// width) instead of being dropped.
func (p PointData) MarkWith(continuous ContinuousData, mergeObs bool, kind Interpolation) (PointData, error) {
	if err := continuous.checkInterpolation(kind); err != nil {
		return PointData{}, err
	}

	if mergeObs {
		queried, err := p.TimeQuery(continuous.ObsIntervals())
		if err != nil {
			return PointData{}, err
		}
		marks := make([][]float64, 0, queried.Len())
		for _, t := range queried.eventTimes {
			mark, err := continuous.At(t, kind)
			if err != nil {
				return PointData{}, err
			}
			marks = append(marks, mark)
		}
		return NewMarkedPointData(queried.eventTimes, queried.obsIntervals, marks)
	}

	supported := continuous.ObsIntervals()
	marks := make([][]float64, 0, len(p.eventTimes))
	for _, t := range p.eventTimes {
		if !supported.Contains(t) {
			marks = append(marks, UndefinedMark(continuous.Width()))
			continue
		}
		mark, err := continuous.At(t, kind)
		if err != nil {
			return PointData{}, err
		}
		marks = append(marks, mark)
	}
	return NewMarkedPointData(p.eventTimes, p.obsIntervals, marks)
}
