package pm

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cwbudde/algo-mwpm/mwt"
)

// AmplitudeFloor is the numerical floor below which an amplitude is
// treated as zero (float32 machine epsilon).
const AmplitudeFloor = 1.1920929e-07

// Errors returned by the windowed estimator.
var (
	ErrWindowMismatch = errors.New("pm: window sample counts differ across axes")
	ErrSVD            = errors.New("pm: singular value decomposition failed")
	ErrNonFinite      = errors.New("pm: non-finite ellipse estimate")
)

// Up is the default reference direction, +x3.
var Up = r3.Vec{Z: 1}

// Ellipse is a particle-motion ellipse. Major and Minor are orthogonal unit
// vectors, or both zero for the null ellipse.
type Ellipse struct {
	Major     r3.Vec
	Minor     r3.Vec
	MajorNorm float64
	MinorNorm float64
}

// FromAxes builds an ellipse from unnormalised major and minor axis vectors.
func FromAxes(major, minor r3.Vec) Ellipse {
	var e Ellipse
	if n := r3.Norm(major); n > 0 {
		e.Major, e.MajorNorm = r3.Scale(1/n, major), n
	}
	if n := r3.Norm(minor); n > 0 {
		e.Minor, e.MinorNorm = r3.Scale(1/n, minor), n
	}
	return e
}

// IsZero reports whether e is the null ellipse.
func (e Ellipse) IsZero() bool { return e == Ellipse{} }

// finite reports whether every axis component and norm of e is finite.
func (e Ellipse) finite() bool {
	for _, v := range [...]float64{
		e.Major.X, e.Major.Y, e.Major.Z,
		e.Minor.X, e.Minor.Y, e.Minor.Z,
		e.MajorNorm, e.MinorNorm,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Rectilinearity returns 1 - minor/major clamped to [0, 1]: 1 for linear
// motion and 0 for circular motion. A minor norm at or below AmplitudeFloor
// gives 1, so purely linear motion reads as fully rectilinear. Only a major
// norm at or below AmplitudeFloor, which includes the null ellipse, gives 0.
func (e Ellipse) Rectilinearity() float64 {
	if e.MajorNorm <= AmplitudeFloor {
		return 0
	}
	return math.Max(0, math.Min(1, 1-e.MinorNorm/e.MajorNorm))
}

// MajorAzimuth returns the azimuth of the major axis in radians, clockwise
// from x2 (north), in (-π, π].
func (e Ellipse) MajorAzimuth() float64 { return azimuth(e.Major) }

// MajorInclination returns the angle of the major axis from x3 (up) in
// radians.
func (e Ellipse) MajorInclination() float64 { return inclination(e.Major) }

// MinorAzimuth returns the azimuth of the minor axis in radians.
func (e Ellipse) MinorAzimuth() float64 { return azimuth(e.Minor) }

// MinorInclination returns the angle of the minor axis from x3 in radians.
func (e Ellipse) MinorInclination() float64 { return inclination(e.Minor) }

// Points returns n points tracing the ellipse in 3-space, starting on the
// positive major axis. The first point is not repeated at the end.
func (e Ellipse) Points(n int) []r3.Vec {
	pts := make([]r3.Vec, n)
	dphi := 2 * math.Pi / float64(n)
	for i := range pts {
		phi := float64(i) * dphi
		pts[i] = r3.Add(
			r3.Scale(e.MajorNorm*math.Cos(phi), e.Major),
			r3.Scale(e.MinorNorm*math.Sin(phi), e.Minor),
		)
	}
	return pts
}

// String returns the six scaled axis components separated by blanks.
func (e Ellipse) String() string {
	var sb strings.Builder
	writeAxes(&sb, e)
	return sb.String()
}

func writeAxes(sb *strings.Builder, e Ellipse) {
	major := r3.Scale(e.MajorNorm, e.Major)
	minor := r3.Scale(e.MinorNorm, e.Minor)
	fmt.Fprintf(sb, "%g %g %g %g %g %g", major.X, major.Y, major.Z, minor.X, minor.Y, minor.Z)
}

func azimuth(v r3.Vec) float64 {
	az, _ := RegularizeAngle(math.Pi/2-math.Atan2(v.Y, v.X), true)
	return az
}

func inclination(v r3.Vec) float64 {
	return math.Acos(math.Max(-1, math.Min(1, v.Z)))
}

// orient flips each axis whose projection on up is negative.
func (e Ellipse) orient(up r3.Vec) Ellipse {
	if r3.Dot(up, e.Major) < 0 {
		e.Major = r3.Scale(-1, e.Major)
	}
	if r3.Dot(up, e.Minor) < 0 {
		e.Minor = r3.Scale(-1, e.Minor)
	}
	return e
}

// Analytic returns the ellipse traced by the harmonic motion whose complex
// amplitudes on the three axes are x, y and z.
//
// With r_i, θ_i the polar forms, the principal phases are φ1 = atan2(-b, a)/2
// and φ2 = φ1 + π/2 where a = Σ r_i² cos 2θ_i and b = Σ r_i² sin 2θ_i. The
// axis vectors are r_i cos(φ + θ_i); the longer one is the major axis.
// If all three amplitudes are below AmplitudeFloor the null ellipse is
// returned. For linear motion the minor direction is completed as the unit
// vector orthogonal to the major axis closest to up.
func Analytic(x, y, z complex128, up r3.Vec) Ellipse {
	amp := [3]complex128{x, y, z}
	var r, theta [3]float64
	for i, c := range amp {
		r[i] = cmplx.Abs(c)
		theta[i] = cmplx.Phase(c)
	}
	if r[0] < AmplitudeFloor && r[1] < AmplitudeFloor && r[2] < AmplitudeFloor {
		return Ellipse{}
	}

	var a, b float64
	for i := range r {
		a += r[i] * r[i] * math.Cos(2*theta[i])
		b += r[i] * r[i] * math.Sin(2*theta[i])
	}
	phi1 := math.Atan2(-b, a) / 2
	phi2 := phi1 + math.Pi/2

	x1 := project(r, theta, phi1)
	x2 := project(r, theta, phi2)
	n1, n2 := r3.Norm(x1), r3.Norm(x2)
	if n2 >= n1 {
		x1, x2 = x2, x1
		n1, n2 = n2, n1
	}

	e := Ellipse{
		Major:     r3.Scale(1/n1, x1),
		MajorNorm: n1,
		MinorNorm: n2,
	}
	if n2 <= AmplitudeFloor*n1 {
		e.Minor = completeMinor(e.Major, up)
	} else {
		e.Minor = r3.Scale(1/n2, x2)
	}
	return e.orient(up)
}

func project(r, theta [3]float64, phi float64) r3.Vec {
	return r3.Vec{
		X: r[0] * math.Cos(phi+theta[0]),
		Y: r[1] * math.Cos(phi+theta[1]),
		Z: r[2] * math.Cos(phi+theta[2]),
	}
}

// completeMinor returns the unit vector orthogonal to major that is closest
// to up, falling back to x1 then x2 when up is parallel to major.
func completeMinor(major, up r3.Vec) r3.Vec {
	for _, ref := range []r3.Vec{up, {X: 1}, {Y: 1}} {
		if n := r3.Norm(ref); n > 0 {
			ref = r3.Scale(1/n, ref)
		}
		m := r3.Sub(ref, r3.Scale(r3.Dot(ref, major), major))
		if n := r3.Norm(m); n > 1e-6 {
			return r3.Scale(1/n, m)
		}
	}
	return r3.Vec{}
}

// Windowed fits the least-squares ellipse to the samples of x, y and z
// inside w. The 3×N window matrix is decomposed and the left singular
// vector of the largest singular value σ, scaled by σ/√N, is passed to
// Analytic. For N = 1 this reproduces Analytic on that sample.
func Windowed(x, y, z *mwt.Waveform, w mwt.Window, up r3.Vec) (Ellipse, error) {
	var data [3][]complex128
	for axis, wf := range [3]*mwt.Waveform{x, y, z} {
		s, err := wf.Window(w)
		if err != nil {
			return Ellipse{}, fmt.Errorf("pm: axis %d: %w", axis, err)
		}
		data[axis] = s
	}
	if len(data[1]) != len(data[0]) || len(data[2]) != len(data[0]) {
		return Ellipse{}, fmt.Errorf("%w: %d, %d, %d",
			ErrWindowMismatch, len(data[0]), len(data[1]), len(data[2]))
	}

	c, err := principalAmplitudes(data[0], data[1], data[2])
	if err != nil {
		return Ellipse{}, err
	}
	return Analytic(c[0], c[1], c[2], up), nil
}

// principalAmplitudes returns σ/√N times the principal left singular
// vector of the complex 3×N matrix with rows xs, ys, zs.
//
// The complex SVD is computed on the real 6×2N embedding
//
//	[Re A  -Im A]
//	[Im A   Re A]
//
// whose singular values are those of A, each repeated, and whose left
// singular vector [u_r; u_i] maps back to u = u_r + i·u_i up to a phase.
// The ellipse is invariant to that phase.
func principalAmplitudes(xs, ys, zs []complex128) ([3]complex128, error) {
	var out [3]complex128
	n := len(xs)
	if n == 0 {
		return out, fmt.Errorf("%w: empty window", ErrSVD)
	}

	emb := mat.NewDense(6, 2*n, nil)
	for k, row := range [3][]complex128{xs, ys, zs} {
		for j, v := range row {
			emb.Set(k, j, real(v))
			emb.Set(k, n+j, -imag(v))
			emb.Set(k+3, j, imag(v))
			emb.Set(k+3, n+j, real(v))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(emb, mat.SVDThinU) {
		return out, ErrSVD
	}
	sigma := svd.Values(nil)[0]
	var u mat.Dense
	svd.UTo(&u)

	scale := sigma / math.Sqrt(float64(n))
	for k := range out {
		out[k] = complex(scale*u.At(k, 0), scale*u.At(k+3, 0))
	}
	return out, nil
}
