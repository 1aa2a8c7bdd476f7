package testutil

import (
	"math"
	"testing"
)

// DefaultTolerance is the absolute tolerance used by AssertNear when tol is zero.
const DefaultTolerance = 1e-9

// AssertNear fails the test if got differs from want by more than tol.
func AssertNear(t testing.TB, want, got, tol float64, msg string) {
	t.Helper()

	if tol == 0 {
		tol = DefaultTolerance
	}
	if math.IsNaN(got) || math.Abs(want-got) > tol {
		t.Fatalf("%s: expected %v, got %v (tolerance %v)", msg, want, got, tol)
	}
}

// AssertFinite fails the test if v is NaN or infinite.
func AssertFinite(t testing.TB, v float64, msg string) {
	t.Helper()

	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Fatalf("%s: expected finite value, got %v", msg, v)
	}
}
