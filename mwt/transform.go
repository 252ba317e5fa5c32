package mwt

import (
	"errors"
	"fmt"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// ErrInvalidDecimation is returned for a decimation factor below 1.
var ErrInvalidDecimation = errors.New("mwt: decimation factor must be >= 1")

// Transformer maps a scalar signal to its band × wavelet decomposition.
// Implementations must be pure functions of the signal.
type Transformer interface {
	Transform(s Signal) (*Matrix, error)
	NumBands() int
	NumWavelets() int
}

type engineConfig struct {
	antiAlias bool
}

// Option configures an [Engine].
type Option func(*engineConfig) error

// WithAntiAlias enables or disables the boxcar average applied before
// decimation (default true).
func WithAntiAlias(enabled bool) Option {
	return func(cfg *engineConfig) error {
		cfg.antiAlias = enabled
		return nil
	}
}

// Engine is the reference multiwavelet transform. For every band it
// decimates the input, then correlates the decimated signal with each
// wavelet of the basis in the frequency domain. Output samples are aligned
// with the decimated input: sample i of every band is centred on input time
// T0 + i·Dt·decimation.
type Engine struct {
	basis      Basis
	decimation []int
	antiAlias  bool

	// conjugated, time-reversed wavelets
	kernels [][]complex128
}

// NewEngine creates an engine for the given basis and per-band decimation
// factors (one entry per band).
func NewEngine(basis Basis, decimation []int, opts ...Option) (*Engine, error) {
	if err := basis.Validate(); err != nil {
		return nil, err
	}
	if len(decimation) == 0 {
		return nil, fmt.Errorf("%w: no bands", ErrInvalidDecimation)
	}
	for band, d := range decimation {
		if d < 1 {
			return nil, fmt.Errorf("%w: band %d has %d", ErrInvalidDecimation, band, d)
		}
	}

	cfg := engineConfig{antiAlias: true}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	length := basis.Len()
	kernels := make([][]complex128, len(basis.Wavelets))
	for i, h := range basis.Wavelets {
		g := make([]complex128, length)
		for k, v := range h {
			g[length-1-k] = cmplx.Conj(v)
		}
		kernels[i] = g
	}

	return &Engine{
		basis:      basis,
		decimation: append([]int(nil), decimation...),
		antiAlias:  cfg.antiAlias,
		kernels:    kernels,
	}, nil
}

// NumBands returns the number of bands.
func (e *Engine) NumBands() int { return len(e.decimation) }

// NumWavelets returns the number of wavelets per band.
func (e *Engine) NumWavelets() int { return len(e.kernels) }

// Transform decomposes s into sub-band waveforms.
func (e *Engine) Transform(s Signal) (*Matrix, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	nw := e.NumWavelets()
	length := e.basis.Len()
	data := make([]*Waveform, 0, e.NumBands()*nw)

	for _, d := range e.decimation {
		x := decimate(s.Samples, d, e.antiAlias)
		bandDt := s.Dt * float64(d)

		outputs, err := correlateBank(x, e.kernels)
		if err != nil {
			return nil, err
		}
		for _, out := range outputs {
			data = append(data, &Waveform{
				T0:            s.T0,
				Dt0:           s.Dt,
				Decimation:    d,
				F0:            e.basis.F0 / bandDt,
				FW:            e.basis.FW / bandDt,
				WaveletLength: length,
				Samples:       out,
			})
		}
	}

	return NewMatrix(e.NumBands(), nw, data, s.Meta.Clone())
}

// decimate keeps every d-th sample, optionally after a zero-phase boxcar
// average of length d centred on the kept sample.
func decimate(x []float64, d int, antiAlias bool) []float64 {
	n := (len(x) + d - 1) / d
	out := make([]float64, n)
	if d == 1 || !antiAlias {
		for j := range out {
			out[j] = x[j*d]
		}
		return out
	}

	half := (d - 1) / 2
	for j := range out {
		lo := max(j*d-half, 0)
		hi := min(j*d-half+d, len(x))
		var sum float64
		for _, v := range x[lo:hi] {
			sum += v
		}
		out[j] = sum / float64(hi-lo)
	}
	return out
}

// correlateBank correlates x with every wavelet through one shared forward
// FFT of x. kernels hold the conjugated, time-reversed wavelets, so the
// linear convolution x*g evaluated at i+L-1-c gives
//
//	y[i] = Σ_k x[i-c+k]·conj(h[k]),  c = (L-1)/2
//
// with zero padding outside the record.
func correlateBank(x []float64, kernels [][]complex128) ([][]complex128, error) {
	n := len(x)
	length := len(kernels[0])
	fftSize := nextPowerOf2(n + length - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("mwt: failed to create FFT plan: %w", err)
	}

	signalFreq := make([]complex128, fftSize)
	for i, v := range x {
		signalFreq[i] = complex(v, 0)
	}
	if err := plan.Forward(signalFreq, signalFreq); err != nil {
		return nil, fmt.Errorf("mwt: forward FFT failed: %w", err)
	}

	centre := (length - 1) / 2
	offset := length - 1 - centre
	kernelFreq := make([]complex128, fftSize)
	outputs := make([][]complex128, len(kernels))

	for iw, g := range kernels {
		for i := range kernelFreq {
			kernelFreq[i] = 0
		}
		copy(kernelFreq, g)
		if err := plan.Forward(kernelFreq, kernelFreq); err != nil {
			return nil, fmt.Errorf("mwt: kernel FFT failed: %w", err)
		}
		for i := range kernelFreq {
			kernelFreq[i] *= signalFreq[i]
		}
		if err := plan.Inverse(kernelFreq, kernelFreq); err != nil {
			return nil, fmt.Errorf("mwt: inverse FFT failed: %w", err)
		}

		out := make([]complex128, n)
		copy(out, kernelFreq[offset:offset+n])
		outputs[iw] = out
	}

	return outputs, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
