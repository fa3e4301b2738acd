package testutil

import (
	"math"
	"testing"
)

// WorstDeviation returns the index and size of the largest absolute
// difference between a and b over their common length, or -1 when they
// share no samples.
func WorstDeviation(a, b []float64) (int, float64) {
	idx, worst := -1, 0.0

	for i := range min(len(a), len(b)) {
		if d := math.Abs(a[i] - b[i]); idx < 0 || d > worst || math.IsNaN(d) {
			idx, worst = i, d
		}
	}

	return idx, worst
}

// RequireSliceNearlyEqual fails t unless got and want have the same length
// and agree sample by sample within eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}

	if i, d := WorstDeviation(got, want); i >= 0 && !(d <= eps) {
		t.Fatalf("sample %d off by %g (got %v, want %v, eps %g)", i, d, got[i], want[i], eps)
	}
}

// RequireFinite fails t on the first NaN or Inf sample.
func RequireFinite(t *testing.T, x []float64) {
	t.Helper()

	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is %v", i, v)
		}
	}
}

// RequireWithin fails t unless |got-want| <= eps. A -Inf want only
// matches a -Inf got.
func RequireWithin(t *testing.T, name string, got, want, eps float64) {
	t.Helper()

	if math.IsInf(want, -1) {
		if !math.IsInf(got, -1) {
			t.Fatalf("%s = %v, want -Inf", name, got)
		}

		return
	}

	if math.IsNaN(got) || math.Abs(got-want) > eps {
		t.Fatalf("%s = %.4f, want %.4f ± %g", name, got, want, eps)
	}
}
