package observe

import (
	"fmt"
	"sort"
)

// ContinuousData is a continuously sampled signal: one sample row per
// timestamp, timestamps strictly ascending. Samples may be scalar (width 1)
// or vector-valued. The observation intervals record where the signal is
// actually valid; all timestamps must lie inside them.
type ContinuousData struct {
	samples      [][]float64
	timestamps   []float64
	obsIntervals TimeIntervals
}

// Column wraps a scalar series as width-1 sample rows.
func Column(values []float64) [][]float64 {
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}
	return rows
}

// NewContinuousData builds a ContinuousData whose observation interval is
// the full sampled range [timestamps[0], timestamps[n-1]], i.e. it assumes
// the signal has no gaps.
func NewContinuousData(samples [][]float64, timestamps []float64) (ContinuousData, error) {
	obs := EmptyIntervals()
	if len(timestamps) > 0 {
		var err error
		obs, err = NewInterval(timestamps[0], timestamps[len(timestamps)-1])
		if err != nil {
			return ContinuousData{}, err
		}
	}
	return NewContinuousDataWithObs(samples, timestamps, obs)
}

// NewContinuousDataWithObs builds a ContinuousData with explicitly supplied
// observation intervals.
func NewContinuousDataWithObs(samples [][]float64, timestamps []float64, obsIntervals TimeIntervals) (ContinuousData, error) {
	if len(samples) != len(timestamps) {
		return ContinuousData{}, fmt.Errorf("%w: %d samples vs %d timestamps",
			ErrShape, len(samples), len(timestamps))
	}
	width := -1
	for i, row := range samples {
		if width == -1 {
			width = len(row)
		}
		if len(row) != width {
			return ContinuousData{}, fmt.Errorf("%w: sample row %d has width %d, want %d",
				ErrShape, i, len(row), width)
		}
	}
	for i := 1; i < len(timestamps); i++ {
		if timestamps[i] <= timestamps[i-1] {
			return ContinuousData{}, fmt.Errorf("%w: timestamps not strictly ascending at index %d",
				ErrValidation, i)
		}
	}
	for i, t := range timestamps {
		if !obsIntervals.Contains(t) {
			return ContinuousData{}, fmt.Errorf("%w: timestamp %v (index %d) outside observation intervals",
				ErrValidation, t, i)
		}
	}
	return ContinuousData{
		samples:      copyRows(samples),
		timestamps:   copyFloats(timestamps),
		obsIntervals: obsIntervals,
	}, nil
}

// NewContinuousDataInferGaps builds a ContinuousData whose observation
// intervals are inferred from gaps in the timestamps: the second difference
// of the timestamps is compared against gapFactor times the mean step, and
// each jump splits the observation range.
//
// This inference is best-effort only. It misjudges irregularly sampled
// signals and is kept behind this dedicated constructor on purpose; prefer
// supplying observation intervals explicitly.
func NewContinuousDataInferGaps(samples [][]float64, timestamps []float64, gapFactor float64) (ContinuousData, error) {
	if gapFactor <= 0 {
		gapFactor = 1.5
	}
	obs, err := inferObsIntervals(timestamps, gapFactor)
	if err != nil {
		return ContinuousData{}, err
	}
	return NewContinuousDataWithObs(samples, timestamps, obs)
}

func inferObsIntervals(timestamps []float64, gapFactor float64) (TimeIntervals, error) {
	n := len(timestamps)
	if n == 0 {
		return EmptyIntervals(), nil
	}
	if n < 3 {
		return NewInterval(timestamps[0], timestamps[n-1])
	}

	var stepSum float64
	for i := 1; i < n; i++ {
		stepSum += timestamps[i] - timestamps[i-1]
	}
	epsilon := gapFactor * stepSum / float64(n-1)

	var bounds [][2]float64
	start := 0
	for i := 0; i+2 < n; i++ {
		secondDiff := timestamps[i+2] - 2*timestamps[i+1] + timestamps[i]
		if secondDiff > epsilon {
			end := i + 1
			bounds = append(bounds, [2]float64{timestamps[start], timestamps[end]})
			start = end + 1
		}
	}
	bounds = append(bounds, [2]float64{timestamps[start], timestamps[n-1]})
	return NewTimeIntervals(bounds)
}

// Samples returns a copy of the sample rows.
func (c ContinuousData) Samples() [][]float64 {
	return copyRows(c.samples)
}

// Timestamps returns a copy of the timestamps.
func (c ContinuousData) Timestamps() []float64 {
	return copyFloats(c.timestamps)
}

// ObsIntervals returns the observation intervals.
func (c ContinuousData) ObsIntervals() TimeIntervals {
	return c.obsIntervals
}

// Len returns the number of samples.
func (c ContinuousData) Len() int {
	return len(c.samples)
}

// Width returns the number of values per sample, 0 for an empty signal.
func (c ContinuousData) Width() int {
	if len(c.samples) == 0 {
		return 0
	}
	return len(c.samples[0])
}

// TimeQuery restricts the signal to the query window. The resulting
// observation intervals are the intersection of this signal's intervals
// with the window; for each resulting interval [lo, hi] the samples from
// the first timestamp >= lo through the last timestamp <= hi are kept,
// concatenated in interval order. An empty intersection yields an empty
// signal.
func (c ContinuousData) TimeQuery(query Query) (ContinuousData, error) {
	resultObs := c.obsIntervals.Intersect(query.QueryWindow())

	var samples [][]float64
	var timestamps []float64
	for _, sp := range resultObs.Set().Spans() {
		// Closed interval on both ends.
		lo := sort.SearchFloat64s(c.timestamps, sp.Lo)
		hi := sort.Search(len(c.timestamps), func(i int) bool {
			return c.timestamps[i] > sp.Hi
		})
		samples = append(samples, c.samples[lo:hi]...)
		timestamps = append(timestamps, c.timestamps[lo:hi]...)
	}

	return NewContinuousDataWithObs(samples, timestamps, resultObs)
}

// Predicate evaluates one sample (or the selected columns of one sample)
// to a boolean flag.
type Predicate func(sample []float64) bool

// FilterIntervals scans the predicate's flag sequence for threshold
// crossings and returns the matching selection windows as an EventData:
// each rising edge opens an interval at the first true sample and the next
// falling edge closes it at the last true sample. A sequence that starts
// or ends true contributes a crossing at the first or last sample. The
// observation intervals of the result are this signal's, unchanged.
//
// When cols are given, only those sample columns are passed to the
// predicate, in the order requested.
func (c ContinuousData) FilterIntervals(pred Predicate, cols ...int) (EventData, error) {
	if pred == nil {
		return EventData{}, fmt.Errorf("%w: nil predicate", ErrValidation)
	}
	for _, col := range cols {
		if col < 0 || col >= c.Width() {
			return EventData{}, fmt.Errorf("%w: column %d out of range for width %d",
				ErrShape, col, c.Width())
		}
	}
	if len(c.samples) == 0 {
		return NewEventData(EmptyIntervals(), c.obsIntervals)
	}

	flags := make([]bool, len(c.samples))
	for i, row := range c.samples {
		if len(cols) > 0 {
			sub := make([]float64, len(cols))
			for j, col := range cols {
				sub[j] = row[col]
			}
			flags[i] = pred(sub)
		} else {
			flags[i] = pred(row)
		}
	}

	var bounds [][2]float64
	start := -1
	for i, flag := range flags {
		switch {
		case flag && start == -1:
			start = i
		case !flag && start != -1:
			bounds = append(bounds, [2]float64{c.timestamps[start], c.timestamps[i-1]})
			start = -1
		}
	}
	if start != -1 {
		bounds = append(bounds, [2]float64{c.timestamps[start], c.timestamps[len(flags)-1]})
	}

	selectIntervals, err := NewTimeIntervals(bounds)
	if err != nil {
		return EventData{}, err
	}
	return NewEventData(selectIntervals, c.obsIntervals)
}

func copyFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

func copyRows(in [][]float64) [][]float64 {
	if in == nil {
		return nil
	}
	out := make([][]float64, len(in))
	for i, row := range in {
		out[i] = copyFloats(row)
	}
	return out
}
