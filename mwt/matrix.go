package mwt

import (
	"fmt"
	"math"
)

// BandInfo holds the scalar attributes shared by every wavelet of a band.
type BandInfo struct {
	Index          int
	F0             float64 // centre frequency in Hz
	FW             float64 // half-width in Hz
	Decimation     int
	SampleInterval float64 // base interval × decimation
	WaveletLength  int     // wavelet support in band samples
}

// WaveletDuration returns the wavelet support in seconds.
func (b BandInfo) WaveletDuration() float64 {
	return float64(b.WaveletLength) * b.SampleInterval
}

// Matrix is the band × wavelet table of sub-band waveforms produced by
// transforming one scalar signal.
type Matrix struct {
	nbands    int
	nwavelets int
	data      []*Waveform // band-major
	Meta      Metadata
}

// NewMatrix builds a matrix from band-major waveforms:
// data[band*nwavelets+wavelet]. All entries must share the base sample
// interval, and entries of a band must share decimation, F0 and FW.
func NewMatrix(nbands, nwavelets int, data []*Waveform, meta Metadata) (*Matrix, error) {
	if nbands < 1 || nwavelets < 1 {
		return nil, fmt.Errorf("%w: %d bands, %d wavelets", ErrMalformedMatrix, nbands, nwavelets)
	}
	if len(data) != nbands*nwavelets {
		return nil, fmt.Errorf("%w: got %d waveforms, want %d×%d",
			ErrMalformedMatrix, len(data), nbands, nwavelets)
	}
	for i, w := range data {
		if w == nil {
			return nil, fmt.Errorf("%w: nil waveform at band %d wavelet %d",
				ErrMalformedMatrix, i/nwavelets, i%nwavelets)
		}
		if w.Decimation < 1 || !(w.Dt0 > 0) {
			return nil, fmt.Errorf("%w: band %d wavelet %d has dt0=%v decimation=%d",
				ErrMalformedMatrix, i/nwavelets, i%nwavelets, w.Dt0, w.Decimation)
		}
	}

	ref := data[0]
	for b := range nbands {
		head := data[b*nwavelets]
		for iw := range nwavelets {
			w := data[b*nwavelets+iw]
			if math.Abs(w.Dt0-ref.Dt0) > 1e-9*ref.Dt0 {
				return nil, fmt.Errorf("%w: band %d wavelet %d base interval %v differs from %v",
					ErrMalformedMatrix, b, iw, w.Dt0, ref.Dt0)
			}
			if w.Decimation != head.Decimation || w.F0 != head.F0 || w.FW != head.FW {
				return nil, fmt.Errorf("%w: band %d wavelet %d attributes differ within band",
					ErrMalformedMatrix, b, iw)
			}
		}
	}

	return &Matrix{
		nbands:    nbands,
		nwavelets: nwavelets,
		data:      data,
		Meta:      meta,
	}, nil
}

// NumBands returns the number of frequency bands.
func (m *Matrix) NumBands() int { return m.nbands }

// NumWavelets returns the number of wavelets per band.
func (m *Matrix) NumWavelets() int { return m.nwavelets }

// BaseInterval returns the undecimated sample interval shared by all entries.
func (m *Matrix) BaseInterval() float64 { return m.data[0].Dt0 }

// At returns the waveform for (band, wavelet).
func (m *Matrix) At(band, wavelet int) (*Waveform, error) {
	if band < 0 || band >= m.nbands || wavelet < 0 || wavelet >= m.nwavelets {
		return nil, fmt.Errorf("%w: band=%d wavelet=%d, matrix is %d×%d",
			ErrIndexRange, band, wavelet, m.nbands, m.nwavelets)
	}
	return m.data[band*m.nwavelets+wavelet], nil
}

// Band returns the scalar attributes of a band.
func (m *Matrix) Band(band int) (BandInfo, error) {
	w, err := m.At(band, 0)
	if err != nil {
		return BandInfo{}, err
	}
	return BandInfo{
		Index:          band,
		F0:             w.F0,
		FW:             w.FW,
		Decimation:     w.Decimation,
		SampleInterval: w.Dt(),
		WaveletLength:  w.WaveletLength,
	}, nil
}
