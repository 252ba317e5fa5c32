package pm

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cwbudde/algo-mwpm/stats/bootstrap"
)

var floorDB = toDB(AmplitudeFloor)

// toDB converts an amplitude to decibels, clamped at AmplitudeFloor.
func toDB(a float64) float64 {
	return 20 * math.Log10(math.Max(a, AmplitudeFloor))
}

// fromDB inverts toDB. Levels at the floor, to within rounding of the
// bootstrap mean, map back to 0.
func fromDB(db float64) float64 {
	if db <= floorDB+1e-9 {
		return 0
	}
	return math.Pow(10, db/20)
}

// alignAxial flips vectors into the hemisphere of the principal axis of
// their orientation tensor Σ v·vᵀ. The principal axis itself is signed by
// up. Axes are sign-ambiguous, so without this step two estimates of the
// same axis with opposite signs would cancel in the mean.
func alignAxial(vs []r3.Vec, up r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(vs))
	copy(out, vs)
	if len(vs) < 2 {
		return out
	}

	t := mat.NewSymDense(3, nil)
	for _, v := range vs {
		c := [3]float64{v.X, v.Y, v.Z}
		for i := range 3 {
			for j := i; j < 3; j++ {
				t.SetSym(i, j, t.At(i, j)+c[i]*c[j])
			}
		}
	}

	ref := vs[0]
	var es mat.EigenSym
	if es.Factorize(t, true) {
		var ev mat.Dense
		es.VectorsTo(&ev)
		// eigenvalues are ascending
		ref = r3.Vec{X: ev.At(0, 2), Y: ev.At(1, 2), Z: ev.At(2, 2)}
	}
	if r3.Dot(ref, up) < 0 {
		ref = r3.Scale(-1, ref)
	}

	for i, v := range out {
		if r3.Dot(v, ref) < 0 {
			out[i] = r3.Scale(-1, v)
		}
	}
	return out
}

// combine merges the per-wavelet ellipses of one output sample. Null
// ellipses carry no direction and are left out; if none remain the null
// ellipse and null record are returned.
func combine(est []Ellipse, cfg config, rng *rand.Rand) (Ellipse, Uncertainty, error) {
	var (
		majors, minors   []r3.Vec
		majorDB, minorDB []float64
		rect             []float64
	)
	for _, e := range est {
		if e.IsZero() {
			continue
		}
		majors = append(majors, e.Major)
		minors = append(minors, e.Minor)
		majorDB = append(majorDB, toDB(e.MajorNorm))
		minorDB = append(minorDB, toDB(e.MinorNorm))
		rect = append(rect, e.Rectilinearity())
	}
	nw := len(majors)
	if nw == 0 {
		return Ellipse{}, Uncertainty{}, nil
	}

	trials := cfg.trialsFor(nw)
	c := cfg.confidence

	majorEst, err := bootstrap.Vector3(alignAxial(majors, cfg.up), c, trials, rng)
	if err != nil {
		return Ellipse{}, Uncertainty{}, fmt.Errorf("pm: major axis bootstrap: %w", err)
	}
	minorEst, err := bootstrap.Vector3(alignAxial(minors, cfg.up), c, trials, rng)
	if err != nil {
		return Ellipse{}, Uncertainty{}, fmt.Errorf("pm: minor axis bootstrap: %w", err)
	}
	majorAmp, err := bootstrap.MeanVariance(majorDB, c, trials, rng)
	if err != nil {
		return Ellipse{}, Uncertainty{}, fmt.Errorf("pm: major amplitude bootstrap: %w", err)
	}
	minorAmp, err := bootstrap.MeanVariance(minorDB, c, trials, rng)
	if err != nil {
		return Ellipse{}, Uncertainty{}, fmt.Errorf("pm: minor amplitude bootstrap: %w", err)
	}
	rectEst, err := bootstrap.MeanVariance(rect, c, trials, rng)
	if err != nil {
		return Ellipse{}, Uncertainty{}, fmt.Errorf("pm: rectilinearity bootstrap: %w", err)
	}

	major := majorEst.Mean
	// major × (minor × major) removes the major component from the minor mean
	minor := r3.Cross(major, r3.Cross(minorEst.Mean, major))
	if n := r3.Norm(minor); n > AmplitudeFloor {
		minor = r3.Scale(1/n, minor)
	} else {
		minor = completeMinor(major, cfg.up)
	}

	e := Ellipse{
		Major:     major,
		Minor:     minor,
		MajorNorm: fromDB(majorAmp.Center),
		MinorNorm: fromDB(minorAmp.Center),
	}.orient(cfg.up)

	dof := nw - 1
	u := Uncertainty{
		MajorInclination:  majorEst.AngleError,
		MajorAzimuth:      majorEst.AngleError,
		MinorInclination:  minorEst.AngleError,
		MinorAzimuth:      minorEst.AngleError,
		MajorAmplitude:    majorAmp.Error,
		MinorAmplitude:    minorAmp.Error,
		Rectilinearity:    rectEst.Error,
		MajorDOF:          dof,
		MinorDOF:          dof,
		RectilinearityDOF: dof,
		MajorAmplitudeDOF: dof,
		MinorAmplitudeDOF: dof,
	}
	return e, u, nil
}
