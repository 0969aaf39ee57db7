package observe

import (
	"errors"
	"reflect"
	"testing"
)

func mustIntervals(t *testing.T, bounds [][2]float64) TimeIntervals {
	t.Helper()
	ti, err := NewTimeIntervals(bounds)
	if err != nil {
		t.Fatalf("NewTimeIntervals failed: %v", err)
	}
	return ti
}

func TestNewTimeIntervalsCanonicalizes(t *testing.T) {
	tests := []struct {
		name     string
		bounds   [][2]float64
		expected [][2]float64
	}{
		{
			name:     "empty",
			bounds:   nil,
			expected: [][2]float64{},
		},
		{
			name:     "single",
			bounds:   [][2]float64{{1, 2}},
			expected: [][2]float64{{1, 2}},
		},
		{
			name:     "unordered rows",
			bounds:   [][2]float64{{5, 6}, {1, 2}},
			expected: [][2]float64{{1, 2}, {5, 6}},
		},
		{
			name:     "overlapping rows merged",
			bounds:   [][2]float64{{1, 4}, {3, 6}, {10, 11}},
			expected: [][2]float64{{1, 6}, {10, 11}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := mustIntervals(t, tt.bounds)
			if got := ti.ToArray(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ToArray() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCanonicalizationIdempotence(t *testing.T) {
	// Reconstructing from ToArray must be a fixed point.
	ti := mustIntervals(t, [][2]float64{{3, 7}, {0, 4}, {9, 9}, {12, 15}})
	rebuilt := mustIntervals(t, ti.ToArray())
	if !ti.Equal(rebuilt) {
		t.Errorf("rebuilt set %v differs from original %v", rebuilt.ToArray(), ti.ToArray())
	}
	if !reflect.DeepEqual(ti.ToArray(), rebuilt.ToArray()) {
		t.Errorf("ToArray not a fixed point: %v vs %v", ti.ToArray(), rebuilt.ToArray())
	}
}

func TestNewTimeIntervalsRejectsReversedBounds(t *testing.T) {
	_, err := NewTimeIntervals([][2]float64{{5, 1}})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := NewInterval(2, 1); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation from NewInterval, got %v", err)
	}
}

func TestTimeIntervalsContainsClosedBoundary(t *testing.T) {
	ti := mustIntervals(t, [][2]float64{{2, 5}})

	if !ti.Contains(2) {
		t.Error("lower endpoint should be contained")
	}
	if !ti.Contains(5) {
		t.Error("upper endpoint should be contained")
	}
	if ti.Contains(1.999) {
		t.Error("1.999 should not be contained in [2, 5]")
	}
}

func TestTimeIntervalsSetAlgebraLaws(t *testing.T) {
	a := mustIntervals(t, [][2]float64{{0, 3}, {6, 9}})
	b := mustIntervals(t, [][2]float64{{2, 7}})
	empty := EmptyIntervals()

	if !a.Intersect(b).Equal(b.Intersect(a)) {
		t.Error("intersection should be commutative")
	}
	if !a.Union(b).Equal(b.Union(a)) {
		t.Error("union should be commutative")
	}
	if a.Intersect(a).Len() != a.Len() {
		t.Error("A ∩ A should have the same length as A")
	}
	if a.Intersect(empty).Len() != 0 {
		t.Error("A ∩ ∅ should be empty")
	}
	if empty.Len() != 0 {
		t.Error("empty set should have length 0")
	}

	// Containment is monotone under union.
	for _, tv := range []float64{0, 1.5, 3, 6, 8, 9} {
		if a.Contains(tv) && !a.Union(b).Contains(tv) {
			t.Errorf("t=%v in A but not in A ∪ B", tv)
		}
	}
}

func TestTimeIntervalsIntersect(t *testing.T) {
	a := mustIntervals(t, [][2]float64{{0, 5}, {10, 15}})
	b := mustIntervals(t, [][2]float64{{3, 12}})

	expected := [][2]float64{{3, 5}, {10, 12}}
	if got := a.Intersect(b).ToArray(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Intersect = %v, want %v", got, expected)
	}
}

func TestTimeIntervalsDurations(t *testing.T) {
	ti := mustIntervals(t, [][2]float64{{0, 2.5}, {10, 14}})
	expected := []float64{2.5, 4}
	if got := ti.Durations(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Durations() = %v, want %v", got, expected)
	}
	if got := EmptyIntervals().Durations(); len(got) != 0 {
		t.Errorf("empty set durations = %v, want none", got)
	}
}

func TestTimeIntervalsQueryWindowIsItself(t *testing.T) {
	ti := mustIntervals(t, [][2]float64{{1, 2}})
	if !ti.QueryWindow().Equal(ti) {
		t.Error("TimeIntervals should be its own query window")
	}
}
