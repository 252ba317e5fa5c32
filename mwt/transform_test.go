package mwt

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

// identityBasis returns a single centred unit impulse, which makes the
// transform reproduce the (decimated) input.
func identityBasis(t *testing.T, length int) Basis {
	t.Helper()
	h := make([]complex128, length)
	h[(length-1)/2] = 1
	b, err := NewBasis([][]complex128{h}, 0.25, 0.1)
	if err != nil {
		t.Fatalf("NewBasis: %v", err)
	}
	return b
}

func ramp(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i + 1)
	}
	return x
}

func TestEngineIdentityAlignment(t *testing.T) {
	for _, length := range []int{1, 3, 4, 9} {
		e, err := NewEngine(identityBasis(t, length), []int{1})
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		x := ramp(13)
		m, err := e.Transform(Signal{T0: 2, Dt: 0.1, Samples: x})
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}
		w, _ := m.At(0, 0)
		if w.Len() != len(x) || w.T0 != 2 {
			t.Fatalf("L=%d: len=%d t0=%v", length, w.Len(), w.T0)
		}
		for i, v := range w.Samples {
			if cmplx.Abs(v-complex(x[i], 0)) > 1e-9 {
				t.Fatalf("L=%d: y[%d] = %v, want %v", length, i, v, x[i])
			}
		}
	}
}

func TestEngineShiftedWavelet(t *testing.T) {
	// impulse one sample after the centre picks x[i+1]
	h := make([]complex128, 5)
	h[3] = 1
	b, err := NewBasis([][]complex128{h}, 0.2, 0)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(b, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	x := ramp(8)
	m, err := e.Transform(Signal{Dt: 1, Samples: x})
	if err != nil {
		t.Fatal(err)
	}
	w, _ := m.At(0, 0)
	for i, v := range w.Samples {
		want := 0.0
		if i+1 < len(x) {
			want = x[i+1]
		}
		if cmplx.Abs(v-complex(want, 0)) > 1e-9 {
			t.Errorf("y[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestEngineDecimation(t *testing.T) {
	x := ramp(10)
	tests := []struct {
		name      string
		d         int
		antiAlias bool
		want      []float64
	}{
		{name: "plain 2", d: 2, antiAlias: false, want: []float64{1, 3, 5, 7, 9}},
		{name: "plain 3", d: 3, antiAlias: false, want: []float64{1, 4, 7, 10}},
		{name: "boxcar 3", d: 3, antiAlias: true, want: []float64{1.5, 4, 7, 9.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(identityBasis(t, 3), []int{tt.d}, WithAntiAlias(tt.antiAlias))
			if err != nil {
				t.Fatal(err)
			}
			m, err := e.Transform(Signal{Dt: 0.5, Samples: x})
			if err != nil {
				t.Fatal(err)
			}
			w, _ := m.At(0, 0)
			if w.Decimation != tt.d || w.Dt() != 0.5*float64(tt.d) {
				t.Fatalf("decimation=%d dt=%v", w.Decimation, w.Dt())
			}
			if w.Len() != len(tt.want) {
				t.Fatalf("len = %d, want %d", w.Len(), len(tt.want))
			}
			for i, v := range w.Samples {
				if math.Abs(real(v)-tt.want[i]) > 1e-9 || math.Abs(imag(v)) > 1e-9 {
					t.Errorf("y[%d] = %v, want %v", i, v, tt.want[i])
				}
			}
		})
	}
}

func TestEngineBandAttributes(t *testing.T) {
	b, err := NewSineTaperBasis(16, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(b, []int{1, 2, 4})
	if err != nil {
		t.Fatal(err)
	}
	if e.NumBands() != 3 || e.NumWavelets() != 3 {
		t.Fatalf("engine shape %d×%d", e.NumBands(), e.NumWavelets())
	}
	m, err := e.Transform(Signal{Dt: 0.01, Samples: make([]float64, 100), Meta: Metadata{"station": "X"}})
	if err != nil {
		t.Fatal(err)
	}
	if m.Meta["station"] != "X" {
		t.Fatalf("metadata not propagated: %v", m.Meta)
	}
	for band, d := range []int{1, 2, 4} {
		info, err := m.Band(band)
		if err != nil {
			t.Fatal(err)
		}
		wantF0 := 25 / float64(d)
		if math.Abs(info.F0-wantF0) > 1e-9 {
			t.Errorf("band %d F0 = %v, want %v", band, info.F0, wantF0)
		}
		w, _ := m.At(band, 2)
		if w.Len() != (100+d-1)/d {
			t.Errorf("band %d len = %d", band, w.Len())
		}
	}
}

func TestNewEngineErrors(t *testing.T) {
	basis := identityBasis(t, 3)
	if _, err := NewEngine(basis, nil); !errors.Is(err, ErrInvalidDecimation) {
		t.Errorf("no bands: err = %v", err)
	}
	if _, err := NewEngine(basis, []int{1, 0}); !errors.Is(err, ErrInvalidDecimation) {
		t.Errorf("zero factor: err = %v", err)
	}
	if _, err := NewEngine(Basis{}, []int{1}); !errors.Is(err, ErrInvalidBasis) {
		t.Errorf("empty basis: err = %v", err)
	}

	e, _ := NewEngine(basis, []int{1})
	if _, err := e.Transform(Signal{Dt: 1}); !errors.Is(err, ErrEmptySignal) {
		t.Errorf("empty signal: err = %v", err)
	}
}
