package mwt

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestSineTaperBasisOrthonormal(t *testing.T) {
	b, err := NewSineTaperBasis(32, 4, 6)
	if err != nil {
		t.Fatalf("NewSineTaperBasis: %v", err)
	}
	if b.Len() != 32 || len(b.Wavelets) != 4 {
		t.Fatalf("basis shape %d×%d", len(b.Wavelets), b.Len())
	}
	if math.Abs(b.F0-6.0/32) > 1e-15 {
		t.Fatalf("F0 = %v", b.F0)
	}

	for i, hi := range b.Wavelets {
		for j, hj := range b.Wavelets {
			var dot complex128
			for n := range hi {
				dot += hi[n] * cmplx.Conj(hj[n])
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if cmplx.Abs(dot-complex(want, 0)) > 1e-12 {
				t.Errorf("<h%d, h%d> = %v, want %v", i, j, dot, want)
			}
		}
	}
}

func TestBasisValidate(t *testing.T) {
	tests := []struct {
		name  string
		basis Basis
	}{
		{"empty", Basis{F0: 0.1}},
		{"ragged", Basis{Wavelets: [][]complex128{{1, 2}, {1}}, F0: 0.1}},
		{"nyquist", Basis{Wavelets: [][]complex128{{1}}, F0: 0.5}},
		{"zero frequency", Basis{Wavelets: [][]complex128{{1}}, F0: 0}},
		{"negative width", Basis{Wavelets: [][]complex128{{1}}, F0: 0.1, FW: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.basis.Validate(); !errors.Is(err, ErrInvalidBasis) {
				t.Fatalf("err = %v, want ErrInvalidBasis", err)
			}
		})
	}

	if _, err := NewSineTaperBasis(1, 1, 1); !errors.Is(err, ErrInvalidBasis) {
		t.Errorf("short length: err = %v", err)
	}
	if _, err := NewSineTaperBasis(8, 8, 1); !errors.Is(err, ErrInvalidBasis) {
		t.Errorf("too many tapers: err = %v", err)
	}
}
