package observe

import (
	"fmt"
	"math"
	"sort"
)

// Interpolation selects how a ContinuousData is evaluated between samples.
type Interpolation string

const (
	Nearest   Interpolation = "nearest"
	Linear    Interpolation = "linear"
	Quadratic Interpolation = "quadratic"
	Cubic     Interpolation = "cubic"
)

// ParseInterpolation converts a string to an Interpolation kind.
func ParseInterpolation(s string) (Interpolation, error) {
	switch Interpolation(s) {
	case Nearest, Linear, Quadratic, Cubic:
		return Interpolation(s), nil
	case "":
		return Linear, nil
	}
	return "", fmt.Errorf("%w: unknown interpolation %q", ErrCapability, s)
}

// pointsNeeded returns the number of samples the kind interpolates across.
func (k Interpolation) pointsNeeded() int {
	switch k {
	case Quadratic:
		return 3
	case Cubic:
		return 4
	default:
		return 2
	}
}

// checkInterpolation validates the kind against this signal's shape, so
// capability errors surface before any per-event work happens.
func (c ContinuousData) checkInterpolation(kind Interpolation) error {
	switch kind {
	case Nearest, Linear:
	case Quadratic, Cubic:
		if c.Width() > 1 {
			return fmt.Errorf("%w: %s interpolation of %d-wide samples; only nearest and linear support vector samples",
				ErrCapability, kind, c.Width())
		}
	default:
		return fmt.Errorf("%w: unknown interpolation %q", ErrCapability, kind)
	}
	if len(c.samples) == 0 {
		return fmt.Errorf("%w: cannot interpolate an empty signal", ErrValidation)
	}
	if len(c.samples) < kind.pointsNeeded() {
		return fmt.Errorf("%w: %s interpolation needs at least %d samples, have %d",
			ErrValidation, kind, kind.pointsNeeded(), len(c.samples))
	}
	return nil
}

// At evaluates the signal at time t. A t exactly on a timestamp returns the
// stored sample; values strictly between two timestamps are interpolated
// per column. Times beyond the sampled range (possible when the observation
// intervals extend past the first or last sample) clamp to the end sample.
func (c ContinuousData) At(t float64, kind Interpolation) ([]float64, error) {
	if err := c.checkInterpolation(kind); err != nil {
		return nil, err
	}

	n := len(c.timestamps)
	idx := sort.SearchFloat64s(c.timestamps, t)
	if idx < n && c.timestamps[idx] == t {
		return copyFloats(c.samples[idx]), nil
	}
	if idx == 0 {
		return copyFloats(c.samples[0]), nil
	}
	if idx == n {
		return copyFloats(c.samples[n-1]), nil
	}

	// c.timestamps[idx-1] < t < c.timestamps[idx]
	switch kind {
	case Nearest:
		if t-c.timestamps[idx-1] <= c.timestamps[idx]-t {
			return copyFloats(c.samples[idx-1]), nil
		}
		return copyFloats(c.samples[idx]), nil
	case Linear:
		w := (t - c.timestamps[idx-1]) / (c.timestamps[idx] - c.timestamps[idx-1])
		out := make([]float64, c.Width())
		for col := range out {
			out[col] = c.samples[idx-1][col]*(1-w) + c.samples[idx][col]*w
		}
		return out, nil
	default:
		// Local polynomial through the nearest points, width 1 only.
		points := kind.pointsNeeded()
		start := idx - points/2
		if start < 0 {
			start = 0
		}
		if start > n-points {
			start = n - points
		}
		xs := c.timestamps[start : start+points]
		ys := make([]float64, points)
		for i := range ys {
			ys[i] = c.samples[start+i][0]
		}
		return []float64{lagrange(xs, ys, t)}, nil
	}
}

// lagrange evaluates the interpolating polynomial through (xs, ys) at t.
func lagrange(xs, ys []float64, t float64) float64 {
	var sum float64
	for i := range xs {
		basis := 1.0
		for k := range xs {
			if k != i {
				basis *= (t - xs[k]) / (xs[i] - xs[k])
			}
		}
		sum += ys[i] * basis
	}
	return sum
}

// UndefinedMark returns the "no value" mark for one sample of the given
// width: a row of NaNs.
func UndefinedMark(width int) []float64 {
	row := make([]float64, width)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}
