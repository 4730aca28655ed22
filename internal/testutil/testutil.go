// Package testutil provides shared test fixtures: synthetic EDA signals,
// recording files and float comparisons that treat NaN as a value.
package testutil

import (
	"math"
	"testing"
)

// AssertNear checks that got is within tol of want. NaN matches only NaN.
func AssertNear(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(want) {
		if !math.IsNaN(got) {
			t.Errorf("got %g, want NaN", got)
		}
		return
	}
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("got %g, want %g ± %g", got, want, tol)
	}
}
