// Package bootstrap implements nonparametric bootstrap estimators for
// redundant observations: a scalar mean with a confidence half-width and a
// mean direction of 3-D vectors with a one-sided angular confidence bound.
//
// Resampling draws from an explicit *rand.Rand so results are reproducible
// for a fixed seed:
//
//	rng := rand.New(rand.NewPCG(42, 0))
//	est, err := bootstrap.MeanVariance(dB, 0.95, 1000, rng)
package bootstrap

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by the estimators. All are raised before resampling.
var (
	ErrInvalidConfidence = errors.New("bootstrap: confidence must lie strictly between 0 and 1")
	ErrInvalidTrials     = errors.New("bootstrap: number of trials must be >= 1")
	ErrEmpty             = errors.New("bootstrap: no observations")
)

// Estimate is the result of a scalar bootstrap.
type Estimate struct {
	Center     float64 // median of the trial means
	Error      float64 // half the span between the (1-c) and c quantiles
	Confidence float64
	Trials     int
}

// VectorEstimate is the result of a directional bootstrap.
type VectorEstimate struct {
	Mean       r3.Vec  // unit mean direction, zero if the data have no direction
	AngleError float64 // one-sided angular bound in radians
	Confidence float64
	Trials     int
}

// ValidateConfidence reports whether c is a usable confidence level.
func ValidateConfidence(c float64) error {
	if !(c > 0 && c < 1) {
		return fmt.Errorf("%w: %v", ErrInvalidConfidence, c)
	}
	return nil
}

func validate(n int, confidence float64, trials int) error {
	if err := ValidateConfidence(confidence); err != nil {
		return err
	}
	if trials < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}
	if n == 0 {
		return ErrEmpty
	}
	return nil
}

func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// MeanVariance estimates the mean of x and its uncertainty. Each of the
// trials draws len(x) values with replacement and records their mean; the
// sorted trial means give the point estimate (their median) and the error
// (half the span between the confidence and 1-confidence quantiles, a
// sigma-like half-width).
//
// Apply it to decibel values when the quantity is an amplitude so that
// ratios average additively.
func MeanVariance(x []float64, confidence float64, trials int, rng *rand.Rand) (Estimate, error) {
	if err := validate(len(x), confidence, trials); err != nil {
		return Estimate{}, err
	}
	rng = ensureRand(rng)

	n := len(x)
	means := make([]float64, trials)
	for t := range means {
		var sum float64
		for range n {
			sum += x[rng.IntN(n)]
		}
		means[t] = sum / float64(n)
	}
	slices.Sort(means)

	hi := stat.Quantile(confidence, stat.Empirical, means, nil)
	lo := stat.Quantile(1-confidence, stat.Empirical, means, nil)

	return Estimate{
		Center:     stat.Quantile(0.5, stat.Empirical, means, nil),
		Error:      math.Abs(hi-lo) / 2,
		Confidence: confidence,
		Trials:     trials,
	}, nil
}

// Vector3 estimates the mean direction of v and an angular confidence
// bound. Each trial averages len(v) vectors drawn with replacement,
// componentwise and without renormalisation. The normalised average of the
// trial vectors is the mean direction; the angle of every trial vector to
// it is sorted and the value at ⌊trials·confidence⌋ (clamped to the last
// trial) is the error.
//
// The inputs are expected to be unit vectors sharing a hemisphere; the
// estimator does not resolve axial sign ambiguity.
func Vector3(v []r3.Vec, confidence float64, trials int, rng *rand.Rand) (VectorEstimate, error) {
	if err := validate(len(v), confidence, trials); err != nil {
		return VectorEstimate{}, err
	}
	rng = ensureRand(rng)

	n := len(v)
	samples := make([]r3.Vec, trials)
	var total r3.Vec
	for t := range samples {
		var sum r3.Vec
		for range n {
			sum = r3.Add(sum, v[rng.IntN(n)])
		}
		samples[t] = r3.Scale(1/float64(n), sum)
		total = r3.Add(total, samples[t])
	}

	est := VectorEstimate{Confidence: confidence, Trials: trials}
	norm := r3.Norm(total)
	if norm <= math.SmallestNonzeroFloat32 {
		return est, nil
	}
	est.Mean = r3.Scale(1/norm, total)

	angles := make([]float64, trials)
	for t, s := range samples {
		angles[t] = angleTo(s, est.Mean)
	}
	slices.Sort(angles)

	pos := int(math.Floor(float64(trials) * confidence))
	est.AngleError = angles[min(pos, trials-1)]
	return est, nil
}

// angleTo returns the angle between s and the unit vector u.
func angleTo(s, u r3.Vec) float64 {
	nrm := r3.Norm(s)
	if nrm <= math.SmallestNonzeroFloat32 {
		return math.Pi / 2
	}
	c := r3.Dot(s, u) / nrm
	return math.Acos(math.Max(-1, math.Min(1, c)))
}
