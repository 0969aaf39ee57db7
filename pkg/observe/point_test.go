package observe

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func mustPointData(t *testing.T, eventTimes []float64, obs [][2]float64) PointData {
	t.Helper()
	pd, err := NewPointData(eventTimes, mustIntervals(t, obs))
	if err != nil {
		t.Fatalf("NewPointData failed: %v", err)
	}
	return pd
}

func TestNewPointDataValidation(t *testing.T) {
	obs := mustIntervals(t, [][2]float64{{0, 10}})

	if _, err := NewPointData([]float64{1, 5, 11}, obs); !errors.Is(err, ErrValidation) {
		t.Errorf("event outside support: expected ErrValidation, got %v", err)
	}
	if _, err := NewMarkedPointData([]float64{1, 5}, obs, [][]float64{{1}}); !errors.Is(err, ErrShape) {
		t.Errorf("mark count mismatch: expected ErrShape, got %v", err)
	}
	if _, err := NewMarkedPointData([]float64{1, 5}, obs, [][]float64{{1}, {2, 3}}); !errors.Is(err, ErrShape) {
		t.Errorf("ragged marks: expected ErrShape, got %v", err)
	}
}

func TestPointDataTimeQuery(t *testing.T) {
	tests := []struct {
		name           string
		events         []float64
		obs            [][2]float64
		query          [][2]float64
		expectedEvents []float64
		expectedObs    [][2]float64
	}{
		{
			name:           "window keeps inner events",
			events:         []float64{1, 3, 6, 9},
			obs:            [][2]float64{{0, 10}},
			query:          [][2]float64{{2, 7}},
			expectedEvents: []float64{3, 6},
			expectedObs:    [][2]float64{{2, 7}},
		},
		{
			name:           "boundary events survive",
			events:         []float64{2, 7},
			obs:            [][2]float64{{0, 10}},
			query:          [][2]float64{{2, 7}},
			expectedEvents: []float64{2, 7},
			expectedObs:    [][2]float64{{2, 7}},
		},
		{
			name:           "all events outside yields empty result",
			events:         []float64{1, 2},
			obs:            [][2]float64{{0, 3}},
			query:          [][2]float64{{5, 8}},
			expectedEvents: nil,
			expectedObs:    [][2]float64{},
		},
		{
			name:           "split window",
			events:         []float64{1, 4, 8},
			obs:            [][2]float64{{0, 10}},
			query:          [][2]float64{{0, 2}, {7, 10}},
			expectedEvents: []float64{1, 8},
			expectedObs:    [][2]float64{{0, 2}, {7, 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd := mustPointData(t, tt.events, tt.obs)
			result, err := pd.TimeQuery(mustIntervals(t, tt.query))
			if err != nil {
				t.Fatalf("TimeQuery failed: %v", err)
			}
			if got := result.EventTimes(); !reflect.DeepEqual(got, tt.expectedEvents) {
				t.Errorf("event times = %v, want %v", got, tt.expectedEvents)
			}
			if got := result.ObsIntervals().ToArray(); !reflect.DeepEqual(got, tt.expectedObs) {
				t.Errorf("obs intervals = %v, want %v", got, tt.expectedObs)
			}
		})
	}
}

func TestPointDataTimeQueryEmptyResultHasZeroLengthObs(t *testing.T) {
	pd := mustPointData(t, []float64{1, 2}, [][2]float64{{0, 3}})
	result, err := pd.TimeQuery(mustIntervals(t, [][2]float64{{5, 8}}))
	if err != nil {
		t.Fatalf("TimeQuery failed: %v", err)
	}
	if result.Len() != 0 {
		t.Errorf("expected no surviving events, got %d", result.Len())
	}
	if result.ObsIntervals().Len() != 0 {
		t.Errorf("expected obs intervals of length 0, got %d", result.ObsIntervals().Len())
	}
}

func TestPointDataTimeQueryIdempotence(t *testing.T) {
	// Querying with the full observation window returns the dataset
	// unchanged.
	pd := mustPointData(t, []float64{1, 3, 6}, [][2]float64{{0, 4}, {5, 8}})
	result, err := pd.TimeQuery(pd.ObsIntervals())
	if err != nil {
		t.Fatalf("TimeQuery failed: %v", err)
	}
	if got := result.EventTimes(); !reflect.DeepEqual(got, pd.EventTimes()) {
		t.Errorf("event times changed: %v vs %v", got, pd.EventTimes())
	}
	if !result.ObsIntervals().Equal(pd.ObsIntervals()) {
		t.Error("obs intervals changed")
	}
}

func TestPointDataTimeQueryWithEventData(t *testing.T) {
	// The selection intervals act as the query window, not the
	// observation intervals of the EventData.
	pd := mustPointData(t, []float64{1, 3, 6, 9}, [][2]float64{{0, 10}})
	ed := mustEventData(t, [][2]float64{{2, 4}}, [][2]float64{{0, 10}})

	result, err := pd.TimeQuery(ed)
	if err != nil {
		t.Fatalf("TimeQuery failed: %v", err)
	}
	if got := result.EventTimes(); !reflect.DeepEqual(got, []float64{3}) {
		t.Errorf("event times = %v, want [3]", got)
	}
	if got := result.ObsIntervals().ToArray(); !reflect.DeepEqual(got, [][2]float64{{2, 4}}) {
		t.Errorf("obs intervals = %v, want [[2 4]]", got)
	}
}

func TestPointDataTimeQueryKeepsMarksAligned(t *testing.T) {
	obs := mustIntervals(t, [][2]float64{{0, 10}})
	pd, err := NewMarkedPointData([]float64{1, 3, 6}, obs, [][]float64{{10}, {30}, {60}})
	if err != nil {
		t.Fatalf("NewMarkedPointData failed: %v", err)
	}

	result, err := pd.TimeQuery(mustIntervals(t, [][2]float64{{2, 7}}))
	if err != nil {
		t.Fatalf("TimeQuery failed: %v", err)
	}
	if got := result.EventTimes(); !reflect.DeepEqual(got, []float64{3, 6}) {
		t.Errorf("event times = %v, want [3 6]", got)
	}
	if got := result.Marks(); !reflect.DeepEqual(got, [][]float64{{30}, {60}}) {
		t.Errorf("marks = %v, want [[30] [60]]", got)
	}
}

func TestPointDataMarkWithLinearIdentity(t *testing.T) {
	// Identity signal: interpolating at t returns t.
	pd := mustPointData(t, []float64{1, 3, 6}, [][2]float64{{0, 8}})
	signal, err := NewContinuousData(Column([]float64{0, 2, 4, 6, 8}), []float64{0, 2, 4, 6, 8})
	if err != nil {
		t.Fatalf("NewContinuousData failed: %v", err)
	}

	result, err := pd.MarkWith(signal, true, Linear)
	if err != nil {
		t.Fatalf("MarkWith failed: %v", err)
	}
	if got := result.EventTimes(); !reflect.DeepEqual(got, []float64{1, 3, 6}) {
		t.Errorf("event times = %v, want [1 3 6]", got)
	}
	if got := result.Marks(); !reflect.DeepEqual(got, [][]float64{{1}, {3}, {6}}) {
		t.Errorf("marks = %v, want [[1] [3] [6]]", got)
	}
}

func TestPointDataMarkWithMergeDropsUnsupportedEvents(t *testing.T) {
	pd := mustPointData(t, []float64{1, 5, 9}, [][2]float64{{0, 10}})
	signal, err := NewContinuousData(Column([]float64{0, 2, 4}), []float64{2, 4, 6})
	if err != nil {
		t.Fatalf("NewContinuousData failed: %v", err)
	}

	result, err := pd.MarkWith(signal, true, Linear)
	if err != nil {
		t.Fatalf("MarkWith failed: %v", err)
	}
	// Only t=5 lies in the signal's support [2, 6].
	if got := result.EventTimes(); !reflect.DeepEqual(got, []float64{5}) {
		t.Errorf("event times = %v, want [5]", got)
	}
	if got := result.Marks(); !reflect.DeepEqual(got, [][]float64{{3}}) {
		t.Errorf("marks = %v, want [[3]]", got)
	}
	if got := result.ObsIntervals().ToArray(); !reflect.DeepEqual(got, [][2]float64{{2, 6}}) {
		t.Errorf("obs intervals = %v, want [[2 6]]", got)
	}
}

func TestPointDataMarkWithoutMergeKeepsAllEvents(t *testing.T) {
	pd := mustPointData(t, []float64{1, 5, 9}, [][2]float64{{0, 10}})
	signal, err := NewContinuousData(Column([]float64{0, 2, 4}), []float64{2, 4, 6})
	if err != nil {
		t.Fatalf("NewContinuousData failed: %v", err)
	}

	result, err := pd.MarkWith(signal, false, Linear)
	if err != nil {
		t.Fatalf("MarkWith failed: %v", err)
	}
	if got := result.EventTimes(); !reflect.DeepEqual(got, []float64{1, 5, 9}) {
		t.Errorf("event times = %v, want all originals", got)
	}
	if !result.ObsIntervals().Equal(pd.ObsIntervals()) {
		t.Error("obs intervals should be unchanged")
	}

	marks := result.Marks()
	if len(marks) != 3 {
		t.Fatalf("expected 3 marks, got %d", len(marks))
	}
	if !math.IsNaN(marks[0][0]) {
		t.Errorf("mark for unsupported event should be NaN, got %v", marks[0][0])
	}
	if marks[1][0] != 3 {
		t.Errorf("mark for supported event = %v, want 3", marks[1][0])
	}
	if !math.IsNaN(marks[2][0]) {
		t.Errorf("mark for unsupported event should be NaN, got %v", marks[2][0])
	}
}

func TestPointDataMarkWithCapabilityError(t *testing.T) {
	pd := mustPointData(t, []float64{1}, [][2]float64{{0, 4}})
	wide, err := NewContinuousData([][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, []float64{0, 1, 2, 3})
	if err != nil {
		t.Fatalf("NewContinuousData failed: %v", err)
	}

	if _, err := pd.MarkWith(wide, true, Cubic); !errors.Is(err, ErrCapability) {
		t.Errorf("cubic on vector samples: expected ErrCapability, got %v", err)
	}
	if _, err := pd.MarkWith(wide, true, Linear); err != nil {
		t.Errorf("linear on vector samples should work, got %v", err)
	}
}
