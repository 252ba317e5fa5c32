package pm

import (
	"fmt"
	"strings"
)

// Uncertainty holds the bootstrap error estimates attached to one ellipse.
// Angular errors are in radians and are one-sided confidence bounds on the
// axis direction, so the inclination and azimuth errors of an axis carry the
// same value. Amplitude errors are in dB. The zero value is the null record.
type Uncertainty struct {
	MajorInclination float64
	MajorAzimuth     float64
	MinorInclination float64
	MinorAzimuth     float64
	MajorAmplitude   float64
	MinorAmplitude   float64
	Rectilinearity   float64

	// Degrees of freedom of each estimate: contributing wavelets minus one.
	MajorDOF          int
	MinorDOF          int
	RectilinearityDOF int
	MajorAmplitudeDOF int
	MinorAmplitudeDOF int
}

// IsZero reports whether u is the null record.
func (u Uncertainty) IsZero() bool { return u == Uncertainty{} }

// String returns the error fields separated by blanks, in the column order
// used by Series.WriteTo.
func (u Uncertainty) String() string {
	var sb strings.Builder
	writeUncertainty(&sb, u)
	return sb.String()
}

func writeUncertainty(sb *strings.Builder, u Uncertainty) {
	fmt.Fprintf(sb, "%g %g %g %g %g %g %g %d %d %d %d %d",
		u.MajorInclination, u.MajorAzimuth,
		u.MinorInclination, u.MinorAzimuth,
		u.MajorAmplitude, u.MinorAmplitude, u.Rectilinearity,
		u.MajorDOF, u.MinorDOF, u.RectilinearityDOF,
		u.MajorAmplitudeDOF, u.MinorAmplitudeDOF)
}
