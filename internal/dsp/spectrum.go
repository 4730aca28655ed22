package dsp

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// PSD is a one-sided power spectral density estimate.
type PSD struct {
	Freqs []float64 // Hz
	Power []float64 // units^2/Hz
}

// Welch estimates the power spectral density of x by averaging Blackman
// windowed periodograms of nperseg samples with 50% overlap. Each segment is
// mean-detrended. If x is shorter than nperseg a single segment spanning x
// is used.
func Welch(x []float64, fs float64, nperseg int) (PSD, error) {
	if fs <= 0 {
		return PSD{}, fmt.Errorf("sampling rate must be positive, got %g", fs)
	}
	if nperseg > len(x) {
		nperseg = len(x)
	}
	if nperseg < 2 {
		return PSD{}, fmt.Errorf("%w: need at least 2 samples for a spectrum, got %d", ErrSignalTooShort, len(x))
	}

	win := make([]float64, nperseg)
	for i := range win {
		win[i] = 1
	}
	window.Blackman(win)
	scale := 1 / (fs * floats.Dot(win, win))

	step := nperseg - nperseg/2
	fft := fourier.NewFFT(nperseg)
	nfreq := nperseg/2 + 1
	power := make([]float64, nfreq)
	seg := make([]float64, nperseg)
	var coeffs []complex128
	segments := 0
	for start := 0; start+nperseg <= len(x); start += step {
		copy(seg, x[start:start+nperseg])
		floats.AddConst(-stat.Mean(seg, nil), seg)
		floats.Mul(seg, win)
		coeffs = fft.Coefficients(coeffs, seg)
		for k, c := range coeffs {
			a := cmplx.Abs(c)
			power[k] += a * a * scale
		}
		segments++
	}
	floats.Scale(1/float64(segments), power)

	// One-sided spectrum: double everything except DC and, for even
	// lengths, the Nyquist bin.
	last := nfreq
	if nperseg%2 == 0 {
		last = nfreq - 1
	}
	for k := 1; k < last; k++ {
		power[k] *= 2
	}

	freqs := make([]float64, nfreq)
	for k := range freqs {
		freqs[k] = fft.Freq(k) * fs
	}
	return PSD{Freqs: freqs, Power: power}, nil
}

// BandPower integrates the PSD over [lo, hi] Hz with the trapezoidal rule.
// It returns 0 when fewer than two bins fall inside the band.
func (p PSD) BandPower(lo, hi float64) float64 {
	var f, pw []float64
	for i, v := range p.Freqs {
		if v >= lo && v <= hi {
			f = append(f, v)
			pw = append(pw, p.Power[i])
		}
	}
	if len(f) < 2 {
		return 0
	}
	return integrate.Trapezoidal(f, pw)
}

// TotalPower integrates the whole PSD.
func (p PSD) TotalPower() float64 {
	if len(p.Freqs) < 2 {
		return 0
	}
	return integrate.Trapezoidal(p.Freqs, p.Power)
}
