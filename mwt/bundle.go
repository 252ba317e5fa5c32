package mwt

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Bundle is the multiwavelet transform of a three-component record: three
// structurally congruent matrices indexed by axis. A Bundle is never
// partially valid; NewBundle either returns a congruent bundle or an error.
type Bundle struct {
	axes [3]*Matrix
	meta Metadata
}

// NewBundle validates the congruence of three per-axis matrices.
// Provenance metadata is taken from the x matrix.
func NewBundle(x, y, z *Matrix) (*Bundle, error) {
	axes := [3]*Matrix{x, y, z}
	for axis, m := range axes {
		if m == nil {
			return nil, fmt.Errorf("%w: axis %d matrix is nil", ErrIncongruent, axis)
		}
	}
	if err := checkCongruent(axes); err != nil {
		return nil, err
	}
	return &Bundle{axes: axes, meta: x.Meta.Clone()}, nil
}

// Transform3C runs t on each channel of s and bundles the results.
func Transform3C(t Transformer, s ThreeComponent) (*Bundle, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var axes [3]*Matrix
	for axis, c := range s.Components {
		m, err := t.Transform(c)
		if err != nil {
			return nil, fmt.Errorf("mwt: transform of axis %d: %w", axis, err)
		}
		axes[axis] = m
	}

	b, err := NewBundle(axes[AxisX], axes[AxisY], axes[AxisZ])
	if err != nil {
		return nil, err
	}
	for k, v := range s.Meta {
		b.meta[k] = v
	}
	return b, nil
}

func checkCongruent(axes [3]*Matrix) error {
	ref := axes[AxisX]
	for axis := AxisY; axis <= AxisZ; axis++ {
		m := axes[axis]
		if m.nbands != ref.nbands || m.nwavelets != ref.nwavelets {
			return fmt.Errorf("%w: axis %d is %d×%d, axis 0 is %d×%d",
				ErrIncongruent, axis, m.nbands, m.nwavelets, ref.nbands, ref.nwavelets)
		}
		if math.Abs(m.BaseInterval()-ref.BaseInterval()) > 1e-9*ref.BaseInterval() {
			return fmt.Errorf("%w: axis %d base interval %v, axis 0 %v",
				ErrIncongruent, axis, m.BaseInterval(), ref.BaseInterval())
		}
		for i, w := range m.data {
			r := ref.data[i]
			band, wavelet := i/ref.nwavelets, i%ref.nwavelets
			if w.Len() != r.Len() {
				return fmt.Errorf("%w: band %d wavelet %d axis %d has %d samples, axis 0 has %d",
					ErrIncongruent, band, wavelet, axis, w.Len(), r.Len())
			}
			if w.T0 != r.T0 {
				return fmt.Errorf("%w: band %d wavelet %d axis %d starts at %v, axis 0 at %v",
					ErrIncongruent, band, wavelet, axis, w.T0, r.T0)
			}
			if w.Decimation != r.Decimation {
				return fmt.Errorf("%w: band %d wavelet %d axis %d decimation %d, axis 0 %d",
					ErrIncongruent, band, wavelet, axis, w.Decimation, r.Decimation)
			}
		}
	}
	return nil
}

// NumBands returns the number of frequency bands.
func (b *Bundle) NumBands() int { return b.axes[AxisX].nbands }

// NumWavelets returns the number of wavelets per band.
func (b *Bundle) NumWavelets() int { return b.axes[AxisX].nwavelets }

// BaseInterval returns the undecimated input sample interval.
func (b *Bundle) BaseInterval() float64 { return b.axes[AxisX].BaseInterval() }

// Meta returns a copy of the provenance table.
func (b *Bundle) Meta() Metadata { return b.meta.Clone() }

// Band returns the scalar attributes of a band.
func (b *Bundle) Band(band int) (BandInfo, error) {
	return b.axes[AxisX].Band(band)
}

// At returns the waveform for (band, wavelet, axis).
func (b *Bundle) At(band, wavelet, axis int) (*Waveform, error) {
	if axis < AxisX || axis > AxisZ {
		return nil, fmt.Errorf("%w: axis=%d", ErrIndexRange, axis)
	}
	return b.axes[axis].At(band, wavelet)
}

// Triplet returns the x, y and z waveforms of (band, wavelet).
func (b *Bundle) Triplet(band, wavelet int) (x, y, z *Waveform, err error) {
	var out [3]*Waveform
	for axis := range out {
		out[axis], err = b.At(band, wavelet, axis)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return out[AxisX], out[AxisY], out[AxisZ], nil
}

// Envelope returns the total three-component amplitude
// sqrt(|x|² + |y|² + |z|²) of (band, wavelet) for every sample.
func (b *Bundle) Envelope(band, wavelet int) ([]float64, error) {
	x, y, z, err := b.Triplet(band, wavelet)
	if err != nil {
		return nil, err
	}

	n := x.Len()
	total := make([]float64, n)
	power := make([]float64, n)
	for _, w := range [3]*Waveform{x, y, z} {
		re, im := splitComplex(w.Samples)
		vecmath.Power(power, re, im)
		for i, p := range power {
			total[i] += p
		}
	}
	for i, p := range total {
		total[i] = math.Sqrt(p)
	}
	return total, nil
}
