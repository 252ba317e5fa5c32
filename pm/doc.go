// Package pm estimates particle-motion ellipses from multiwavelet
// three-component sub-band data.
//
// An [Ellipse] is defined by orthonormal major and minor axis directions and
// their lengths. Two estimators are provided:
//
//   - [Analytic] solves in closed form for the ellipse traced by three
//     complex amplitudes observed at one instant.
//   - [Windowed] fits the least-squares ellipse to three complex
//     sub-signals over a time window through the principal left singular
//     vector of the 3×N data matrix.
//
// Both resolve the sign ambiguity of the axes with a caller supplied up
// direction: each axis is flipped if its projection on up is negative.
//
// A [Series] applies an estimator to every wavelet of a band and combines
// the redundant estimates with the bootstrap (package stats/bootstrap) into
// one ellipse and one [Uncertainty] record per output sample:
//
//	s, err := pm.NewSeries(ctx, bundle, band, pm.WithSeed(1))
//	s, err := pm.NewAveragedSeries(ctx, bundle, band, step, avlen)
//	rect := s.Rectilinearity()
package pm
