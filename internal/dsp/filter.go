package dsp

import (
	"errors"
	"fmt"
)

// ErrSignalTooShort is returned when a signal is not longer than the padding
// required by zero-phase filtering.
var ErrSignalTooShort = errors.New("signal too short for zero-phase filtering")

// Filter runs x through the cascade once. zi holds the per-section state and
// is updated in place; a nil zi starts from rest.
func (s SOS) Filter(x []float64, zi [][2]float64) []float64 {
	if zi == nil {
		zi = make([][2]float64, len(s))
	}
	y := make([]float64, len(x))
	for n, v := range x {
		for k, sec := range s {
			out := sec.B[0]*v + zi[k][0]
			zi[k][0] = sec.B[1]*v - sec.A[1]*out + zi[k][1]
			zi[k][1] = sec.B[2]*v - sec.A[2]*out
			v = out
		}
		y[n] = v
	}
	return y
}

// SteadyState returns initial conditions for a unit step input, so that
// filtering a constant signal c with SteadyState()*c produces no transient.
func (s SOS) SteadyState() [][2]float64 {
	zi := make([][2]float64, len(s))
	scale := 1.0
	for k, sec := range s {
		g := sec.dcGain()
		z1 := sec.B[2] - sec.A[2]*g
		z0 := sec.B[1] - sec.A[1]*g + z1
		zi[k] = [2]float64{scale * z0, scale * z1}
		scale *= g
	}
	return zi
}

// PadLen is the number of samples FiltFilt extends the signal by on each
// side.
func (s SOS) PadLen() int {
	ntaps := 2*len(s) + 1
	var zb, za int
	for _, sec := range s {
		if sec.B[2] == 0 {
			zb++
		}
		if sec.A[2] == 0 {
			za++
		}
	}
	ntaps -= min(zb, za)
	return 3 * ntaps
}

// FiltFilt applies the cascade forward and backward, giving a zero-phase
// result with squared magnitude response.
func (s SOS) FiltFilt(x []float64) ([]float64, error) {
	edge := s.PadLen()
	if len(x) <= edge {
		return nil, fmt.Errorf("%w: length %d must be greater than padlen %d", ErrSignalTooShort, len(x), edge)
	}

	ext := oddExtend(x, edge)
	zi := s.SteadyState()

	y := s.Filter(ext, scaledState(zi, ext[0]))
	reverse(y)
	y = s.Filter(y, scaledState(zi, y[0]))
	reverse(y)

	out := make([]float64, len(x))
	copy(out, y[edge:len(y)-edge])
	return out, nil
}

func scaledState(zi [][2]float64, c float64) [][2]float64 {
	out := make([][2]float64, len(zi))
	for i, z := range zi {
		out[i] = [2]float64{z[0] * c, z[1] * c}
	}
	return out
}

// oddExtend reflects n samples about each endpoint: 2*x[0]-x[n..1] on the
// left and 2*x[last]-x[last-1..last-n] on the right.
func oddExtend(x []float64, n int) []float64 {
	last := len(x) - 1
	ext := make([]float64, 0, len(x)+2*n)
	for i := n; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 1; i <= n; i++ {
		ext = append(ext, 2*x[last]-x[last-i])
	}
	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
