package mwt

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by the sub-band types.
var (
	ErrEmptySignal     = errors.New("mwt: empty signal")
	ErrInvalidInterval = errors.New("mwt: sample interval must be positive and finite")
	ErrSignalMismatch  = errors.New("mwt: three-component channels differ in start time, interval or length")
	ErrWindowOutside   = errors.New("mwt: time window does not intersect the data")
	ErrInvalidWindow   = errors.New("mwt: time window end precedes start")
	ErrIndexRange      = errors.New("mwt: index out of range")
	ErrMalformedMatrix = errors.New("mwt: malformed band-wavelet matrix")
	ErrIncongruent     = errors.New("mwt: three-component matrices are not congruent")
)

// Axis indices of a three-component record.
const (
	AxisX = iota // x1, normally +east
	AxisY        // x2, normally +north
	AxisZ        // x3, normally +up
)

// Metadata is a key-value side table used only to pass provenance
// (station, event, processing attributes) through the pipeline.
type Metadata map[string]any

// Clone returns a shallow copy of m. A nil table clones to an empty one.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Signal is a uniformly sampled real scalar record.
type Signal struct {
	T0      float64 // time of the first sample in seconds
	Dt      float64 // sample interval in seconds
	Samples []float64
	Meta    Metadata
}

// Validate checks that s has samples and a usable sample interval.
func (s Signal) Validate() error {
	if len(s.Samples) == 0 {
		return ErrEmptySignal
	}
	if !(s.Dt > 0) || math.IsInf(s.Dt, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, s.Dt)
	}
	return nil
}

// ThreeComponent is a record of three orthogonal channels indexed by
// AxisX, AxisY and AxisZ. The sample interval is validated by whoever
// supplies the record; Validate only checks that the channels agree.
type ThreeComponent struct {
	Components [3]Signal
	Meta       Metadata
}

// NewThreeComponent builds a record from three equally sampled channels.
func NewThreeComponent(t0, dt float64, x, y, z []float64) ThreeComponent {
	var tc ThreeComponent
	for i, s := range [3][]float64{x, y, z} {
		tc.Components[i] = Signal{T0: t0, Dt: dt, Samples: s}
	}
	return tc
}

// Validate checks each channel and their mutual consistency.
func (tc ThreeComponent) Validate() error {
	ref := tc.Components[AxisX]
	for axis, s := range tc.Components {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("axis %d: %w", axis, err)
		}
		if len(s.Samples) != len(ref.Samples) {
			return fmt.Errorf("%w: axis %d has %d samples, axis 0 has %d",
				ErrSignalMismatch, axis, len(s.Samples), len(ref.Samples))
		}
		tol := 1e-9 * ref.Dt
		if math.Abs(s.Dt-ref.Dt) > tol || math.Abs(s.T0-ref.T0) > tol {
			return fmt.Errorf("%w: axis %d (t0=%v, dt=%v) vs axis 0 (t0=%v, dt=%v)",
				ErrSignalMismatch, axis, s.T0, s.Dt, ref.T0, ref.Dt)
		}
	}
	return nil
}

// Window is an inclusive time range [Start, End] in seconds.
type Window struct {
	Start float64
	End   float64
}

// Duration returns End - Start.
func (w Window) Duration() float64 { return w.End - w.Start }

// Waveform is one complex sub-band signal produced by a transform.
// Waveforms are treated as immutable once produced.
type Waveform struct {
	T0            float64 // time of the first sample
	Dt0           float64 // base (undecimated) sample interval
	Decimation    int     // band decimation factor
	F0            float64 // band centre frequency in Hz
	FW            float64 // band half-width in Hz
	WaveletLength int     // wavelet support in band samples
	Samples       []complex128
}

// Len returns the number of samples.
func (w *Waveform) Len() int { return len(w.Samples) }

// Dt returns the band sample interval, Dt0 × Decimation.
func (w *Waveform) Dt() float64 { return w.Dt0 * float64(w.Decimation) }

// Time returns the time of sample i.
func (w *Waveform) Time(i int) float64 { return w.T0 + float64(i)*w.Dt() }

// EndTime returns the time of the last sample.
func (w *Waveform) EndTime() float64 { return w.Time(w.Len() - 1) }

// WaveletDuration returns the wavelet support in seconds.
func (w *Waveform) WaveletDuration() float64 {
	return float64(w.WaveletLength) * w.Dt()
}

// Range converts an inclusive time window to the half-open sample range
// [lo, hi) it covers, clipped to the data. Sample positions are rounded to
// the nearest sample.
func (w *Waveform) Range(win Window) (lo, hi int, err error) {
	if win.End < win.Start {
		return 0, 0, fmt.Errorf("%w: [%v, %v]", ErrInvalidWindow, win.Start, win.End)
	}
	n := w.Len()
	dt := w.Dt()
	first := int(math.Round((win.Start - w.T0) / dt))
	last := int(math.Round((win.End - w.T0) / dt))
	if n == 0 || last < 0 || first > n-1 {
		return 0, 0, fmt.Errorf("%w: window [%v, %v], data [%v, %v]",
			ErrWindowOutside, win.Start, win.End, w.T0, w.EndTime())
	}
	first = max(first, 0)
	last = min(last, n-1)
	return first, last + 1, nil
}

// Window returns the samples inside win. The slice aliases the waveform
// data and must not be modified.
func (w *Waveform) Window(win Window) ([]complex128, error) {
	lo, hi, err := w.Range(win)
	if err != nil {
		return nil, err
	}
	return w.Samples[lo:hi], nil
}

// Envelope returns |z| for every sample.
func (w *Waveform) Envelope() []float64 {
	n := w.Len()
	re, im := splitComplex(w.Samples)
	out := make([]float64, n)
	vecmath.Magnitude(out, re, im)
	return out
}

func splitComplex(z []complex128) (re, im []float64) {
	re = make([]float64, len(z))
	im = make([]float64, len(z))
	for i, v := range z {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return re, im
}
