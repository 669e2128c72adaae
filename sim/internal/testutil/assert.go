// Package testutil provides shared assertion helpers for the simulator test packages.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertSliceWithin fails when any element lies outside [lo, hi] by more than tol.
func AssertSliceWithin(t *testing.T, name string, xs []float64, lo, hi, tol float64) {
	t.Helper()
	for i, x := range xs {
		if math.IsNaN(x) || x < lo-tol || x > hi+tol {
			t.Errorf("%s[%d] = %v, want within [%v, %v]", name, i, x, lo, hi)
		}
	}
}
