package pm

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cwbudde/algo-mwpm/mwt"
)

// DerivedTypeKey is the metadata key naming the quantity a Trace holds.
const DerivedTypeKey = "pm_derived_type"

// Trace is a real scalar time series derived from a Series.
type Trace struct {
	T0      float64
	Dt      float64
	Samples []float64
	Meta    mwt.Metadata
}

// Len returns the number of samples.
func (t *Trace) Len() int { return len(t.Samples) }

func (s *Series) project(name string, f func(Ellipse) float64) *Trace {
	t := &Trace{
		T0:      s.T0,
		Dt:      s.Dt,
		Samples: make([]float64, s.Len()),
		Meta:    s.Meta.Clone(),
	}
	t.Meta[DerivedTypeKey] = name
	for i, e := range s.ellipses {
		t.Samples[i] = f(e)
	}
	return t
}

// Rectilinearity returns the rectilinearity of every estimate.
func (s *Series) Rectilinearity() *Trace {
	return s.project("rectilinearity", Ellipse.Rectilinearity)
}

// MajorAmplitude returns the major axis length of every estimate.
func (s *Series) MajorAmplitude() *Trace {
	return s.project("major_amplitude", func(e Ellipse) float64 { return e.MajorNorm })
}

// MinorAmplitude returns the minor axis length of every estimate.
func (s *Series) MinorAmplitude() *Trace {
	return s.project("minor_amplitude", func(e Ellipse) float64 { return e.MinorNorm })
}

// MajorAzimuth returns the major axis azimuth of every estimate in radians.
func (s *Series) MajorAzimuth() *Trace {
	return s.project("major_azimuth", Ellipse.MajorAzimuth)
}

// MajorInclination returns the major axis inclination in radians.
func (s *Series) MajorInclination() *Trace {
	return s.project("major_inclination", Ellipse.MajorInclination)
}

// MinorAzimuth returns the minor axis azimuth in radians.
func (s *Series) MinorAzimuth() *Trace {
	return s.project("minor_azimuth", Ellipse.MinorAzimuth)
}

// MinorInclination returns the minor axis inclination in radians.
func (s *Series) MinorInclination() *Trace {
	return s.project("minor_inclination", Ellipse.MinorInclination)
}

// WriteTo writes s as text: one "# key value" header line per metadata
// entry in key order, then one line per estimate holding the time, the
// scaled major and minor axis vectors and the uncertainty fields.
func (s *Series) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	keys := make([]string, 0, len(s.Meta))
	for k := range s.Meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "# %s %v\n", k, s.Meta[k])
	}

	for i, e := range s.ellipses {
		fmt.Fprintf(&sb, "%.6f ", s.Time(i))
		writeAxes(&sb, e)
		sb.WriteByte(' ')
		writeUncertainty(&sb, s.errs[i])
		sb.WriteByte('\n')
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
