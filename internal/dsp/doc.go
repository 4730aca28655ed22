// Package dsp implements the small set of digital signal processing
// primitives the EDA pipeline needs: Butterworth filter design in
// second-order sections, zero-phase filtering, local extrema detection,
// Welch power spectral density and decimation.
//
// The routines follow the conventions of scipy.signal closely enough that
// results are comparable with reference EDA tooling:
//
//   - Butter designs digital filters via the bilinear transform with
//     frequency prewarping, one biquad per conjugate pole pair.
//   - FiltFilt pads the input with an odd extension of 3*ntaps samples and
//     seeds both passes with steady-state initial conditions.
//   - FindPeaks uses the plateau rule of find_peaks (midpoint of a flat top).
package dsp
