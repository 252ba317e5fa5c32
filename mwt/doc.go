// Package mwt provides the multiwavelet sub-band representation consumed by
// the particle-motion estimators.
//
// A [Transformer] maps one uniformly sampled real [Signal] to a [Matrix] of
// complex sub-band [Waveform] values, one row per frequency band and one
// column per wavelet of the bank. Each band is decimated relative to the
// input, so every waveform carries its own sample interval
// (base interval × decimation factor).
//
// A [Bundle] groups the matrices of three orthogonal channels (x1 = east,
// x2 = north, x3 = up) and guarantees that they are structurally congruent:
// equal band and wavelet counts and, for every (band, wavelet) cell, equal
// start time and sample count on all three axes.
//
// # Usage
//
//	basis, err := mwt.NewSineTaperBasis(64, 5, 4)
//	engine, err := mwt.NewEngine(basis, []int{1, 2, 4, 8})
//	bundle, err := mwt.Transform3C(engine, signal3c)
//	x, y, z, err := bundle.Triplet(band, wavelet)
//
// The [Engine] is a reference implementation: a boxcar anti-alias decimator
// followed by FFT correlation with the basis wavelets. Any engine honouring
// the [Transformer] contract can be used instead.
package mwt
