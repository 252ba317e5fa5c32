package mwt

import (
	"errors"
	"math"
	"testing"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	b, err := NewSineTaperBasis(16, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(b, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func testRecord(n int) ThreeComponent {
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	for i := range n {
		phase := 2 * math.Pi * 0.25 * float64(i)
		x[i] = math.Cos(phase)
		y[i] = 0.5 * math.Sin(phase)
		z[i] = 0.1 * math.Cos(phase)
	}
	tc := NewThreeComponent(10, 0.01, x, y, z)
	tc.Meta = Metadata{"event": "e1"}
	return tc
}

func TestTransform3C(t *testing.T) {
	b, err := Transform3C(testEngine(t), testRecord(64))
	if err != nil {
		t.Fatalf("Transform3C: %v", err)
	}
	if b.NumBands() != 2 || b.NumWavelets() != 3 {
		t.Fatalf("bundle shape %d×%d", b.NumBands(), b.NumWavelets())
	}
	if b.BaseInterval() != 0.01 {
		t.Fatalf("BaseInterval = %v", b.BaseInterval())
	}
	if b.Meta()["event"] != "e1" {
		t.Fatalf("metadata = %v", b.Meta())
	}

	x, y, z, err := b.Triplet(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if x.Len() != 32 || y.Len() != 32 || z.Len() != 32 || x.T0 != 10 {
		t.Fatalf("triplet lengths %d %d %d, t0 %v", x.Len(), y.Len(), z.Len(), x.T0)
	}
	got, err := b.At(1, 2, AxisY)
	if err != nil || got != y {
		t.Fatalf("At(1, 2, y) = %p, %v; want %p", got, err, y)
	}
}

func TestBundleMetaIsCopy(t *testing.T) {
	b, err := Transform3C(testEngine(t), testRecord(32))
	if err != nil {
		t.Fatal(err)
	}
	m := b.Meta()
	m["event"] = "changed"
	if b.Meta()["event"] != "e1" {
		t.Fatal("Meta returned an alias")
	}
}

func TestBundleIndexRange(t *testing.T) {
	b, err := Transform3C(testEngine(t), testRecord(32))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.At(0, 0, 3); !errors.Is(err, ErrIndexRange) {
		t.Errorf("axis 3: err = %v", err)
	}
	if _, _, _, err := b.Triplet(2, 0); !errors.Is(err, ErrIndexRange) {
		t.Errorf("band 2: err = %v", err)
	}
	if _, err := b.Band(-1); !errors.Is(err, ErrIndexRange) {
		t.Errorf("band -1: err = %v", err)
	}
	if _, err := b.Envelope(0, 3); !errors.Is(err, ErrIndexRange) {
		t.Errorf("wavelet 3: err = %v", err)
	}
}

func TestNewBundleIncongruent(t *testing.T) {
	mk := func(nb, nw, n int) *Matrix {
		m, err := NewMatrix(nb, nw, constWaveforms(nb, nw, n), nil)
		if err != nil {
			t.Fatal(err)
		}
		return m
	}
	shifted := mk(2, 2, 8)
	w, _ := shifted.At(1, 1)
	w.T0 = 0.5

	tests := []struct {
		name    string
		x, y, z *Matrix
	}{
		{"shape", mk(2, 2, 8), mk(2, 3, 8), mk(2, 2, 8)},
		{"length", mk(2, 2, 8), mk(2, 2, 8), mk(2, 2, 9)},
		{"start", mk(2, 2, 8), mk(2, 2, 8), shifted},
		{"nil", mk(2, 2, 8), nil, mk(2, 2, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBundle(tt.x, tt.y, tt.z)
			if !errors.Is(err, ErrIncongruent) || b != nil {
				t.Fatalf("NewBundle = %v, %v; want nil, ErrIncongruent", b, err)
			}
		})
	}
}

func TestTransform3CSignalMismatch(t *testing.T) {
	tc := testRecord(32)
	tc.Components[AxisY].Dt = 0.02
	if _, err := Transform3C(testEngine(t), tc); !errors.Is(err, ErrSignalMismatch) {
		t.Fatalf("err = %v, want ErrSignalMismatch", err)
	}
}

func TestBundleEnvelope(t *testing.T) {
	b, err := Transform3C(testEngine(t), testRecord(64))
	if err != nil {
		t.Fatal(err)
	}
	env, err := b.Envelope(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	x, y, z, _ := b.Triplet(0, 1)
	ex, ey, ez := x.Envelope(), y.Envelope(), z.Envelope()
	for i, v := range env {
		want := math.Sqrt(ex[i]*ex[i] + ey[i]*ey[i] + ez[i]*ez[i])
		if math.Abs(v-want) > 1e-9*math.Max(1, want) {
			t.Fatalf("env[%d] = %v, want %v", i, v, want)
		}
	}
}
