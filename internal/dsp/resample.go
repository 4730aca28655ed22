package dsp

import (
	"fmt"
	"math"
)

// Decimate low-pass filters x below the new Nyquist frequency and keeps
// every q-th sample. It returns the decimated signal and its sampling rate.
func Decimate(x []float64, fs float64, q int) ([]float64, float64, error) {
	if q < 1 {
		return nil, 0, fmt.Errorf("decimation factor must be positive, got %d", q)
	}
	if q == 1 {
		out := make([]float64, len(x))
		copy(out, x)
		return out, fs, nil
	}

	sos, err := Butter(8, 0.8*fs/(2*float64(q)), fs, LowPass)
	if err != nil {
		return nil, 0, fmt.Errorf("anti-alias filter: %w", err)
	}
	filtered, err := sos.FiltFilt(x)
	if err != nil {
		return nil, 0, fmt.Errorf("anti-alias filter: %w", err)
	}
	return Downsample(filtered, q), fs / float64(q), nil
}

// Downsample keeps every factor-th sample of x starting with the first.
// The result has ceil(len(x)/factor) samples.
func Downsample(x []float64, factor int) []float64 {
	if factor <= 1 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	out := make([]float64, 0, (len(x)+factor-1)/factor)
	for i := 0; i < len(x); i += factor {
		out = append(out, x[i])
	}
	return out
}

// InterpolateNaN replaces NaN samples by linear interpolation between the
// nearest finite neighbours. Leading and trailing NaNs take the nearest
// finite value. It returns the number of samples replaced; a signal with no
// finite samples is returned unchanged.
func InterpolateNaN(x []float64) ([]float64, int) {
	out := make([]float64, len(x))
	copy(out, x)

	prev := -1
	replaced := 0
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		switch {
		case prev == -1 && i > 0:
			for j := 0; j < i; j++ {
				out[j] = v
			}
			replaced += i
		case prev >= 0 && i-prev > 1:
			step := (v - out[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out[j] = out[prev] + step*float64(j-prev)
			}
			replaced += i - prev - 1
		}
		prev = i
	}
	if prev == -1 {
		return out, 0
	}
	for j := prev + 1; j < len(out); j++ {
		out[j] = out[prev]
		replaced++
	}
	return out, replaced
}
