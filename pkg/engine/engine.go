package engine

import (
	"errors"
	"fmt"

	"github.com/leowmjw/go-obs-query/pkg/observe"
)

// ErrNotFound is returned when a request names a dataset the store does not
// hold (or holds under a different kind than the request needs).
var ErrNotFound = errors.New("dataset not found")

// FilterSpec derives a selection window by threshold-filtering one column
// of a named continuous dataset.
type FilterSpec struct {
	Dataset   string  `json:"dataset"`
	Column    int     `json:"column"`
	Op        string  `json:"op"`
	Threshold float64 `json:"threshold"`
}

// MarkSpec attaches interpolated values of a named continuous dataset as
// marks on a point dataset. MergeObs defaults to true: events outside the
// signal's support are dropped rather than marked undefined.
type MarkSpec struct {
	Dataset       string `json:"dataset"`
	Interpolation string `json:"interpolation,omitempty"`
	MergeObs      *bool  `json:"merge_obs,omitempty"`
}

// Request is one declarative query: restrict the target dataset to an
// optional explicit window, then to the selection derived from an optional
// Where filter, then optionally mark the surviving events from a continuous
// signal.
type Request struct {
	Dataset string        `json:"dataset"`
	Window  [][2]float64  `json:"window,omitempty"`
	Where   *FilterSpec   `json:"where,omitempty"`
	Mark    *MarkSpec     `json:"mark,omitempty"`
}

// NamedRequest pairs a Request with the label it was defined under.
type NamedRequest struct {
	Name string `json:"name"`
	Request
}

// Result carries the restricted dataset together with its support
// bookkeeping and the fingerprint of the stored data it came from.
type Result struct {
	Dataset         string        `json:"dataset"`
	Kind            DatasetKind   `json:"kind"`
	Fingerprint     string        `json:"fingerprint"`
	ObsIntervals    [][2]float64  `json:"obs_intervals"`
	SelectIntervals [][2]float64  `json:"select_intervals,omitempty"`
	SelectDurations []float64     `json:"select_durations,omitempty"`
	EventTimes      []float64     `json:"event_times,omitempty"`
	Marks           [][]float64   `json:"marks,omitempty"`
	Timestamps      []float64     `json:"timestamps,omitempty"`
	Samples         [][]float64   `json:"samples,omitempty"`
}

// Execute runs one request against the store.
func (s *Store) Execute(req Request) (*Result, error) {
	if req.Dataset == "" {
		return nil, fmt.Errorf("%w: request names no dataset", ErrNotFound)
	}

	var window *observe.TimeIntervals
	if req.Window != nil {
		w, err := observe.NewTimeIntervals(req.Window)
		if err != nil {
			return nil, err
		}
		window = &w
	}

	var selection *observe.EventData
	if req.Where != nil {
		ed, err := s.evalFilter(*req.Where)
		if err != nil {
			return nil, err
		}
		selection = &ed
	}

	s.mu.RLock()
	pointsEntry, isPoints := s.points[req.Dataset]
	continuousEntry, isContinuous := s.continuous[req.Dataset]
	s.mu.RUnlock()

	switch {
	case isPoints:
		return s.executePoints(req, pointsEntry, window, selection)
	case isContinuous:
		return executeContinuous(req, continuousEntry, window, selection)
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, req.Dataset)
	}
}

func (s *Store) executePoints(req Request, entry storedPoints, window *observe.TimeIntervals, selection *observe.EventData) (*Result, error) {
	data := entry.data
	var err error
	if window != nil {
		if data, err = data.TimeQuery(*window); err != nil {
			return nil, err
		}
	}
	if selection != nil {
		if data, err = data.TimeQuery(*selection); err != nil {
			return nil, err
		}
	}
	if req.Mark != nil {
		signal, ok := s.Continuous(req.Mark.Dataset)
		if !ok {
			return nil, fmt.Errorf("%w: mark dataset %q", ErrNotFound, req.Mark.Dataset)
		}
		kind, err := observe.ParseInterpolation(req.Mark.Interpolation)
		if err != nil {
			return nil, err
		}
		mergeObs := req.Mark.MergeObs == nil || *req.Mark.MergeObs
		if data, err = data.MarkWith(signal, mergeObs, kind); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Dataset:      req.Dataset,
		Kind:         KindPoints,
		Fingerprint:  formatFingerprint(entry.fingerprint),
		ObsIntervals: data.ObsIntervals().ToArray(),
		EventTimes:   data.EventTimes(),
		Marks:        data.Marks(),
	}
	attachSelection(result, selection)
	return result, nil
}

func executeContinuous(req Request, entry storedContinuous, window *observe.TimeIntervals, selection *observe.EventData) (*Result, error) {
	if req.Mark != nil {
		return nil, fmt.Errorf("%w: mark requires a point dataset, %q is continuous",
			observe.ErrCapability, req.Dataset)
	}
	data := entry.data
	var err error
	if window != nil {
		if data, err = data.TimeQuery(*window); err != nil {
			return nil, err
		}
	}
	if selection != nil {
		if data, err = data.TimeQuery(*selection); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Dataset:      req.Dataset,
		Kind:         KindContinuous,
		Fingerprint:  formatFingerprint(entry.fingerprint),
		ObsIntervals: data.ObsIntervals().ToArray(),
		Timestamps:   data.Timestamps(),
		Samples:      data.Samples(),
	}
	attachSelection(result, selection)
	return result, nil
}

func attachSelection(result *Result, selection *observe.EventData) {
	if selection == nil {
		return
	}
	result.SelectIntervals = selection.SelectIntervals().ToArray()
	result.SelectDurations = selection.Durations()
}

// evalFilter runs the threshold filter of a Where clause over its source
// signal and returns the resulting selection windows.
func (s *Store) evalFilter(spec FilterSpec) (observe.EventData, error) {
	source, ok := s.Continuous(spec.Dataset)
	if !ok {
		return observe.EventData{}, fmt.Errorf("%w: filter dataset %q", ErrNotFound, spec.Dataset)
	}
	pred, err := comparison(spec.Op, spec.Threshold)
	if err != nil {
		return observe.EventData{}, err
	}
	return source.FilterIntervals(pred, spec.Column)
}

// comparison builds a single-column threshold predicate.
func comparison(op string, threshold float64) (observe.Predicate, error) {
	switch op {
	case ">":
		return func(sample []float64) bool { return sample[0] > threshold }, nil
	case ">=":
		return func(sample []float64) bool { return sample[0] >= threshold }, nil
	case "<":
		return func(sample []float64) bool { return sample[0] < threshold }, nil
	case "<=":
		return func(sample []float64) bool { return sample[0] <= threshold }, nil
	case "==":
		return func(sample []float64) bool { return sample[0] == threshold }, nil
	case "!=":
		return func(sample []float64) bool { return sample[0] != threshold }, nil
	}
	return nil, fmt.Errorf("%w: unknown comparison operator %q", observe.ErrCapability, op)
}
