// Package testutil provides synthetic three-component records and
// tolerance helpers for the package tests.
package testutil

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sine returns amplitude·sin(2π·freqHz·n/sampleRate) for n in [0, length).
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// LinearMotion returns the three channels of a sinusoid polarised along
// dir. The amplitude of the motion is |dir|.
func LinearMotion(dir r3.Vec, freqHz, sampleRate float64, length int) (x, y, z []float64) {
	return EllipticalMotion(dir, r3.Vec{}, freqHz, sampleRate, length)
}

// EllipticalMotion returns the channels of p(t) = major·cos(ωt) + minor·sin(ωt).
// major and minor are expected to be orthogonal; their lengths are the
// semi-axes.
func EllipticalMotion(major, minor r3.Vec, freqHz, sampleRate float64, length int) (x, y, z []float64) {
	x = make([]float64, length)
	y = make([]float64, length)
	z = make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range length {
		c, s := math.Cos(step*float64(i)), math.Sin(step*float64(i))
		p := r3.Add(r3.Scale(c, major), r3.Scale(s, minor))
		x[i], y[i], z[i] = p.X, p.Y, p.Z
	}
	return x, y, z
}

// Noise returns uniform white noise in [-amplitude, amplitude) from the PCG
// stream (seed, 0).
func Noise(seed uint64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewPCG(seed, 0))
	out := make([]float64, length)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// AddNoise adds independent noise to each channel in place, using seeds
// seed, seed+1 and seed+2.
func AddNoise(seed uint64, amplitude float64, channels ...[]float64) {
	for k, ch := range channels {
		n := Noise(seed+uint64(k), amplitude, len(ch))
		for i := range ch {
			ch[i] += n[i]
		}
	}
}
