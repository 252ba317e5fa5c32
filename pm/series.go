package pm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-mwpm/internal/monitoring"
	"github.com/cwbudde/algo-mwpm/mwt"
)

// Errors returned by series construction and access.
var (
	ErrIndexRange     = errors.New("pm: sample index out of range")
	ErrWindowTooLong  = errors.New("pm: averaging window exceeds the band data span")
	ErrNoWindows      = errors.New("pm: no complete averaging window fits the data")
	ErrNoContribution = errors.New("pm: no wavelet produced an estimate")
	ErrMisaligned     = errors.New("pm: wavelets of a band differ in start time or length")
)

// Metadata keys posted on every series.
const (
	MetaBand            = "band"
	MetaF0              = "f0"
	MetaFW              = "fw"
	MetaDecimation      = "decfac"
	MetaAveragingLength = "averaging_length"
	MetaWindowSamples   = "window_samples"
	MetaSamples         = "nsamp"
	MetaSampleRate      = "samprate"
	MetaWaveletDuration = "wavelet_duration"
	MetaSeriesID        = "series_id"
)

// Series is a time series of particle-motion ellipses for one band, with
// one uncertainty record per ellipse. A Series is only ever returned fully
// built; entries change afterwards only through ZeroGaps.
type Series struct {
	T0              float64 // time of the first estimate
	Dt              float64 // interval between estimates
	Band            int
	F0              float64 // band centre frequency in Hz
	FW              float64 // band half-width in Hz
	Decimation      int     // output interval in base samples
	AveragingLength int     // base samples per averaging window, 1 if not averaged
	WindowSamples   int     // band samples per averaging window after rounding
	WaveletDuration float64
	Meta            mwt.Metadata

	ellipses []Ellipse
	errs     []Uncertainty
}

// Len returns the number of estimates.
func (s *Series) Len() int { return len(s.ellipses) }

// Time returns the time of estimate i.
func (s *Series) Time(i int) float64 { return s.T0 + float64(i)*s.Dt }

// EndTime returns the time of the last estimate.
func (s *Series) EndTime() float64 { return s.Time(s.Len() - 1) }

// Ellipse returns estimate i.
func (s *Series) Ellipse(i int) (Ellipse, error) {
	if i < 0 || i >= s.Len() {
		return Ellipse{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexRange, i, s.Len())
	}
	return s.ellipses[i], nil
}

// Uncertainty returns the error record of estimate i.
func (s *Series) Uncertainty(i int) (Uncertainty, error) {
	if i < 0 || i >= s.Len() {
		return Uncertainty{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexRange, i, s.Len())
	}
	return s.errs[i], nil
}

// ZeroGaps replaces every estimate whose sample time lies inside one of the
// gaps (inclusive, to within a small tolerance) with the null ellipse and
// null record. It returns the number of entries zeroed.
func (s *Series) ZeroGaps(gaps []mwt.Window) int {
	const tol = 1e-9
	n := s.Len()
	zeroed := 0
	for _, g := range gaps {
		if g.End < g.Start || n == 0 {
			continue
		}
		lo := int(math.Ceil((g.Start-s.T0)/s.Dt - tol))
		hi := int(math.Floor((g.End-s.T0)/s.Dt + tol))
		lo = max(lo, 0)
		hi = min(hi, n-1)
		for i := lo; i <= hi; i++ {
			if !s.ellipses[i].IsZero() || !s.errs[i].IsZero() {
				zeroed++
			}
			s.ellipses[i] = Ellipse{}
			s.errs[i] = Uncertainty{}
		}
	}
	return zeroed
}

// buildState tracks series construction. A build moves forward through
// the states and ends either live or failed.
type buildState int

const (
	stateUninitialized buildState = iota
	stateValidating
	stateAccumulating
	stateLive
	stateFailed
)

func (s buildState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateValidating:
		return "validating"
	case stateAccumulating:
		return "accumulating"
	case stateLive:
		return "live"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("buildState(%d)", int(s))
	}
}

// triplet holds the x, y and z waveforms of one wavelet.
type triplet [3]*mwt.Waveform

type builder struct {
	state  buildState
	cfg    config
	info   mwt.BandInfo
	bundle *mwt.Bundle
	waves  []triplet
}

func (b *builder) fail(err error) error {
	at := b.state
	b.state = stateFailed
	return fmt.Errorf("pm: series build failed while %s: %w", at, err)
}

// validate applies options, checks the band and collects its waveforms.
// Every wavelet and axis of the band must share T0 and length.
func (b *builder) validate(bundle *mwt.Bundle, band int, opts []Option) error {
	b.state = stateValidating
	if bundle == nil {
		return b.fail(fmt.Errorf("%w: nil bundle", mwt.ErrIndexRange))
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return b.fail(err)
	}
	info, err := bundle.Band(band)
	if err != nil {
		return b.fail(err)
	}

	nw := bundle.NumWavelets()
	waves := make([]triplet, nw)
	for iw := range nw {
		x, y, z, err := bundle.Triplet(band, iw)
		if err != nil {
			return b.fail(err)
		}
		waves[iw] = triplet{x, y, z}
	}
	ref := waves[0][mwt.AxisX]
	if ref.Len() == 0 {
		return b.fail(fmt.Errorf("%w: band %d has no samples", mwt.ErrEmptySignal, band))
	}
	for iw, t := range waves {
		for axis, w := range t {
			if w.Len() != ref.Len() || w.T0 != ref.T0 {
				return b.fail(fmt.Errorf("%w: wavelet %d axis %d has %d samples at %v, want %d at %v",
					ErrMisaligned, iw, axis, w.Len(), w.T0, ref.Len(), ref.T0))
			}
		}
	}

	b.cfg, b.info, b.bundle, b.waves = cfg, info, bundle, waves
	return nil
}

// accumulate estimates n outputs. estimate returns the per-wavelet
// ellipses of output i; they are merged with the bootstrap using the PCG
// stream (seed, i).
func (b *builder) accumulate(ctx context.Context, s *Series, n int, estimate func(i int) ([]Ellipse, error)) error {
	b.state = stateAccumulating
	s.ellipses = make([]Ellipse, n)
	s.errs = make([]Uncertainty, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			est, err := estimate(i)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			rng := rand.New(rand.NewPCG(b.cfg.seed, uint64(i)))
			e, u, err := combine(est, b.cfg, rng)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			s.ellipses[i], s.errs[i] = e, u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return b.fail(err)
	}
	if err := ctx.Err(); err != nil {
		return b.fail(err)
	}

	b.state = stateLive
	return nil
}

// newSeries fills the attributes shared by both construction modes.
func (b *builder) newSeries(t0, dt float64, decimation, avlen, nwin, n int) *Series {
	s := &Series{
		T0:              t0,
		Dt:              dt,
		Band:            b.info.Index,
		F0:              b.info.F0,
		FW:              b.info.FW,
		Decimation:      decimation,
		AveragingLength: avlen,
		WindowSamples:   nwin,
		WaveletDuration: b.info.WaveletDuration(),
		Meta:            b.bundle.Meta(),
	}
	s.Meta[MetaBand] = s.Band
	s.Meta[MetaF0] = s.F0
	s.Meta[MetaFW] = s.FW
	s.Meta[MetaDecimation] = s.Decimation
	s.Meta[MetaAveragingLength] = s.AveragingLength
	s.Meta[MetaWindowSamples] = s.WindowSamples
	s.Meta[MetaSamples] = n
	s.Meta[MetaSampleRate] = 1 / dt
	s.Meta[MetaWaveletDuration] = s.WaveletDuration
	s.Meta[MetaSeriesID] = uuid.NewString()
	return s
}

// NewSeries builds a series with one estimate per band sample. At sample i
// every wavelet contributes an Analytic ellipse; the estimates are merged
// with the bootstrap. The series shares the band's start time and interval.
//
// A wavelet whose estimate is not finite is logged and left out of that
// sample; a sample with no surviving wavelet aborts the build with
// ErrNoContribution.
func NewSeries(ctx context.Context, bundle *mwt.Bundle, band int, opts ...Option) (*Series, error) {
	var b builder
	if err := b.validate(bundle, band, opts); err != nil {
		return nil, err
	}

	ref := b.waves[0][mwt.AxisX]
	n := ref.Len()
	s := b.newSeries(ref.T0, b.info.SampleInterval, b.info.Decimation, 1, 1, n)

	up := b.cfg.up
	err := b.accumulate(ctx, s, n, func(i int) ([]Ellipse, error) {
		est := make([]Ellipse, 0, len(b.waves))
		for iw, t := range b.waves {
			e := Analytic(t[mwt.AxisX].Samples[i], t[mwt.AxisY].Samples[i], t[mwt.AxisZ].Samples[i], up)
			if !e.finite() {
				monitoring.Logf("pm: band %d sample %d: skipping wavelet %d: %v", band, i, iw, ErrNonFinite)
				continue
			}
			est = append(est, e)
		}
		if len(est) == 0 {
			return nil, fmt.Errorf("%w: sample at %v", ErrNoContribution, ref.Time(i))
		}
		return est, nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewAveragedSeries builds a time-averaged series. Each estimate fits a
// Windowed ellipse over avlen base samples (rounded to whole band samples,
// at least one, and posted as WindowSamples) for every wavelet and merges
// them with the bootstrap. Successive windows start step band samples
// apart, so the output interval is the band interval times step. Estimates
// are timed at window centres.
//
// A window longer than the band data span fails with ErrWindowTooLong
// before any window is processed. A wavelet whose window cannot be
// estimated, or whose estimate is not finite, is logged and skipped for
// that window; a window with no surviving wavelet aborts the build with
// ErrNoContribution.
func NewAveragedSeries(ctx context.Context, bundle *mwt.Bundle, band, step, avlen int, opts ...Option) (*Series, error) {
	var b builder
	if step < 1 || avlen < 1 {
		b.state = stateValidating
		return nil, b.fail(fmt.Errorf("%w: step=%d avlen=%d", ErrInvalidStep, step, avlen))
	}
	if err := b.validate(bundle, band, opts); err != nil {
		return nil, err
	}

	ref := b.waves[0][mwt.AxisX]
	ns := ref.Len()
	dtBand := b.info.SampleInterval
	window := float64(avlen) * bundle.BaseInterval()
	if span := float64(ns-1) * dtBand; window > span {
		return nil, b.fail(fmt.Errorf("%w: %v s window, %v s of data", ErrWindowTooLong, window, span))
	}

	nwin := max(1, int(math.Round(window/dtBand)))
	nout := 0
	if nwin <= ns {
		nout = (ns-nwin)/step + 1
	}
	if nout < 1 {
		return nil, b.fail(fmt.Errorf("%w: %d samples, window %d, step %d", ErrNoWindows, ns, nwin, step))
	}

	t0 := ref.T0 + float64(nwin-1)*dtBand/2
	s := b.newSeries(t0, dtBand*float64(step), b.info.Decimation*step, avlen, nwin, nout)

	up := b.cfg.up
	err := b.accumulate(ctx, s, nout, func(i int) ([]Ellipse, error) {
		i0 := i * step
		win := mwt.Window{Start: ref.Time(i0), End: ref.Time(i0 + nwin - 1)}
		est := make([]Ellipse, 0, len(b.waves))
		for iw, t := range b.waves {
			e, err := Windowed(t[mwt.AxisX], t[mwt.AxisY], t[mwt.AxisZ], win, up)
			if err == nil && !e.finite() {
				err = ErrNonFinite
			}
			if err != nil {
				monitoring.Logf("pm: band %d window %d: skipping wavelet %d: %v", band, i, iw, err)
				continue
			}
			est = append(est, e)
		}
		if len(est) == 0 {
			return nil, fmt.Errorf("%w: window [%v, %v]", ErrNoContribution, win.Start, win.End)
		}
		return est, nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
