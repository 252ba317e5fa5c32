package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSine(t *testing.T) {
	s := Sine(1, 8, 2, 8)
	if len(s) != 8 {
		t.Fatalf("len = %d, want 8", len(s))
	}
	if math.Abs(s[0]) > 1e-15 || math.Abs(s[2]-2) > 1e-12 {
		t.Fatalf("s = %v", s)
	}
}

func TestLinearMotionStaysOnLine(t *testing.T) {
	dir := r3.Vec{X: 1, Y: 2, Z: -2}
	x, y, z := LinearMotion(dir, 5, 100, 64)
	for i := range x {
		p := r3.Vec{X: x[i], Y: y[i], Z: z[i]}
		if c := r3.Norm(r3.Cross(p, dir)); c > 1e-12 {
			t.Fatalf("sample %d leaves the line: |p×dir| = %v", i, c)
		}
	}
}

func TestEllipticalMotionRadii(t *testing.T) {
	major := r3.Vec{X: 3}
	minor := r3.Vec{Y: 1}
	x, y, z := EllipticalMotion(major, minor, 1, 4, 4)
	want := [][3]float64{{3, 0, 0}, {0, 1, 0}, {-3, 0, 0}, {0, -1, 0}}
	for i, w := range want {
		if math.Abs(x[i]-w[0]) > 1e-12 || math.Abs(y[i]-w[1]) > 1e-12 || math.Abs(z[i]-w[2]) > 1e-12 {
			t.Fatalf("sample %d = (%v, %v, %v), want %v", i, x[i], y[i], z[i], w)
		}
	}
}

func TestNoiseReproducible(t *testing.T) {
	a := Noise(42, 1, 64)
	b := Noise(42, 1, 64)
	c := Noise(43, 1, 64)
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
		if a[i] != c[i] {
			same = false
		}
		if a[i] < -1 || a[i] >= 1 {
			t.Fatalf("a[%d] = %v out of range", i, a[i])
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestAddNoiseChannelsIndependent(t *testing.T) {
	x := make([]float64, 16)
	y := make([]float64, 16)
	AddNoise(7, 0.5, x, y)
	RequireSliceNearlyEqual(t, x, Noise(7, 0.5, 16), 0)
	RequireSliceNearlyEqual(t, y, Noise(8, 0.5, 16), 0)
}
