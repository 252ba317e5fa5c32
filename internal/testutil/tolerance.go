package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// AxialAngle returns the angle in radians between the lines spanned by a
// and b, ignoring sign: a value in [0, π/2]. Zero vectors give π/2.
func AxialAngle(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return math.Pi / 2
	}
	c := math.Abs(r3.Dot(a, b)) / (na * nb)
	return math.Acos(math.Min(1, c))
}

// RequireAxisNear fails t if the line through got deviates from the line
// through want by more than eps radians.
func RequireAxisNear(t *testing.T, got, want r3.Vec, eps float64) {
	t.Helper()
	if a := AxialAngle(got, want); a > eps {
		t.Fatalf("axis %v deviates from %v by %v rad (> %v)", got, want, a, eps)
	}
}

// RequireUnit fails t if v does not have unit length within eps.
func RequireUnit(t *testing.T, v r3.Vec, eps float64) {
	t.Helper()
	if n := r3.Norm(v); math.Abs(n-1) > eps {
		t.Fatalf("|%v| = %v, want 1", v, n)
	}
}
