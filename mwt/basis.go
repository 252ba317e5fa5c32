package mwt

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrInvalidBasis is returned for an empty or inconsistent wavelet basis.
var ErrInvalidBasis = errors.New("mwt: invalid wavelet basis")

// Basis is a bank of complex analysing wavelets of common length. F0 and FW
// are normalised to the band sample rate (cycles per sample); the engine
// converts them to Hz for each band.
type Basis struct {
	Wavelets [][]complex128
	F0       float64 // centre frequency, cycles per sample
	FW       float64 // half-width, cycles per sample
}

// NewBasis validates a caller-designed wavelet bank.
func NewBasis(wavelets [][]complex128, f0, fw float64) (Basis, error) {
	b := Basis{Wavelets: wavelets, F0: f0, FW: fw}
	return b, b.Validate()
}

// Len returns the wavelet length in samples.
func (b Basis) Len() int {
	if len(b.Wavelets) == 0 {
		return 0
	}
	return len(b.Wavelets[0])
}

// Validate checks that the bank is non-empty with equal-length wavelets and
// a centre frequency below Nyquist.
func (b Basis) Validate() error {
	if len(b.Wavelets) == 0 || len(b.Wavelets[0]) == 0 {
		return fmt.Errorf("%w: no wavelets", ErrInvalidBasis)
	}
	for i, w := range b.Wavelets {
		if len(w) != len(b.Wavelets[0]) {
			return fmt.Errorf("%w: wavelet %d has length %d, want %d",
				ErrInvalidBasis, i, len(w), len(b.Wavelets[0]))
		}
	}
	if !(b.F0 > 0 && b.F0 < 0.5) {
		return fmt.Errorf("%w: centre frequency %v cycles/sample outside (0, 0.5)", ErrInvalidBasis, b.F0)
	}
	if b.FW < 0 {
		return fmt.Errorf("%w: negative half-width %v", ErrInvalidBasis, b.FW)
	}
	return nil
}

// NewSineTaperBasis builds count orthonormal sine tapers of the given length
// modulated to complete `cycles` oscillations over the wavelet support.
//
//	v_k[n] = sqrt(2/(L+1)) · sin(π(k+1)(n+1)/(L+1))
//	h_k[n] = v_k[n] · exp(i·2π·f0·(n − c)),  f0 = cycles/L, c = (L−1)/2
//
// The half-width of the bank is approximated by (count+1)/(2(L+1)).
func NewSineTaperBasis(length, count int, cycles float64) (Basis, error) {
	if length < 2 {
		return Basis{}, fmt.Errorf("%w: length %d < 2", ErrInvalidBasis, length)
	}
	if count < 1 || count >= length {
		return Basis{}, fmt.Errorf("%w: %d tapers for length %d", ErrInvalidBasis, count, length)
	}

	f0 := cycles / float64(length)
	norm := math.Sqrt(2 / float64(length+1))
	centre := float64(length-1) / 2

	wavelets := make([][]complex128, count)
	for k := range count {
		h := make([]complex128, length)
		for n := range length {
			taper := norm * math.Sin(math.Pi*float64((k+1)*(n+1))/float64(length+1))
			h[n] = complex(taper, 0) * cmplx.Exp(complex(0, 2*math.Pi*f0*(float64(n)-centre)))
		}
		wavelets[k] = h
	}

	return NewBasis(wavelets, f0, float64(count+1)/float64(2*(length+1)))
}
