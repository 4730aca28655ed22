package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// FilterType selects the response of a designed filter.
type FilterType string

const (
	LowPass  FilterType = "lowpass"
	HighPass FilterType = "highpass"
)

// ErrInvalidCutoff is returned when a cutoff frequency is not strictly
// between zero and the Nyquist frequency.
var ErrInvalidCutoff = errors.New("cutoff frequency must be between 0 and nyquist")

// Section is one biquad in direct form II transposed. A[0] is always 1.
type Section struct {
	B [3]float64
	A [3]float64
}

// SOS is a cascade of second-order sections.
type SOS []Section

// Butter designs an order-N digital Butterworth filter with the given cutoff
// (Hz) for a signal sampled at fs (Hz).
func Butter(order int, cutoff, fs float64, kind FilterType) (SOS, error) {
	if order < 1 {
		return nil, fmt.Errorf("filter order must be positive, got %d", order)
	}
	if fs <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %g", fs)
	}
	if cutoff <= 0 || cutoff >= fs/2 {
		return nil, fmt.Errorf("%w: cutoff=%g Hz, nyquist=%g Hz", ErrInvalidCutoff, cutoff, fs/2)
	}
	if kind != LowPass && kind != HighPass {
		return nil, fmt.Errorf("unknown filter type %q", kind)
	}

	// Prewarped analog cutoff for the bilinear transform.
	fs2 := 2 * fs
	wc := fs2 * math.Tan(math.Pi*cutoff/fs)

	toDigital := func(p complex128) complex128 {
		var s complex128
		if kind == LowPass {
			s = complex(wc, 0) * p
		} else {
			s = complex(wc, 0) / p
		}
		return (complex(fs2, 0) + s) / (complex(fs2, 0) - s)
	}

	sos := make(SOS, 0, (order+1)/2)
	for k := 0; k < order/2; k++ {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		z := toDigital(cmplx.Exp(complex(0, theta)))
		sec := Section{A: [3]float64{1, -2 * real(z), real(z)*real(z) + imag(z)*imag(z)}}
		if kind == LowPass {
			sec.B = [3]float64{1, 2, 1}
		} else {
			sec.B = [3]float64{1, -2, 1}
		}
		sos = append(sos, sec.normalized(kind))
	}
	if order%2 == 1 {
		z := real(toDigital(complex(-1, 0)))
		sec := Section{A: [3]float64{1, -z, 0}}
		if kind == LowPass {
			sec.B = [3]float64{1, 1, 0}
		} else {
			sec.B = [3]float64{1, -1, 0}
		}
		sos = append(sos, sec.normalized(kind))
	}
	return sos, nil
}

// normalized scales B so the section has unit gain in its passband
// (z=1 for low-pass, z=-1 for high-pass).
func (s Section) normalized(kind FilterType) Section {
	var num, den float64
	if kind == LowPass {
		num = s.A[0] + s.A[1] + s.A[2]
		den = s.B[0] + s.B[1] + s.B[2]
	} else {
		num = s.A[0] - s.A[1] + s.A[2]
		den = s.B[0] - s.B[1] + s.B[2]
	}
	g := num / den
	for i := range s.B {
		s.B[i] *= g
	}
	return s
}

// dcGain returns H(1) for the section.
func (s Section) dcGain() float64 {
	return (s.B[0] + s.B[1] + s.B[2]) / (s.A[0] + s.A[1] + s.A[2])
}

// Response returns the magnitude of the cascade's frequency response at f Hz.
func (s SOS) Response(f, fs float64) float64 {
	z := cmplx.Exp(complex(0, -2*math.Pi*f/fs))
	h := complex(1, 0)
	for _, sec := range s {
		num := complex(sec.B[0], 0) + complex(sec.B[1], 0)*z + complex(sec.B[2], 0)*z*z
		den := complex(sec.A[0], 0) + complex(sec.A[1], 0)*z + complex(sec.A[2], 0)*z*z
		h *= num / den
	}
	return cmplx.Abs(h)
}
