package eda

import (
	"github.com/banshee-data/eda.report/internal/dsp"
	"gonum.org/v1/gonum/floats"
)

// Info describes the skin conductance responses found in a phasic signal.
// All slices are indexed per SCR and share the same length. Recovery and
// RecoveryTime are -1 and NaN for responses that never recover.
type Info struct {
	Onsets       []int
	Peaks        []int
	Height       []float64
	Amplitude    []float64
	RiseTime     []float64 // seconds
	Recovery     []int
	RecoveryTime []float64 // seconds
	SamplingRate float64
}

// N returns the number of detected responses.
func (in *Info) N() int {
	if in == nil {
		return 0
	}
	return len(in.Peaks)
}

// FindSCR detects skin conductance responses in a phasic signal.
//
// Candidate peaks are the local maxima whose value is at least
// p.AmplitudeMin of the largest one. Each peak's onset is the closest
// preceding local minimum; peaks with no preceding minimum are dropped.
func FindSCR(phasic []float64, samplingRate float64, p Params) *Info {
	info := &Info{SamplingRate: samplingRate}

	candidates := dsp.FindPeaks(phasic)
	if len(candidates) == 0 {
		return info
	}

	heights := make([]float64, len(candidates))
	for i, idx := range candidates {
		heights[i] = phasic[idx]
	}
	maxHeight := floats.Max(heights)
	if maxHeight <= 0 {
		return info
	}

	var peaks []int
	for i, idx := range candidates {
		if heights[i]/maxHeight >= p.AmplitudeMin {
			peaks = append(peaks, idx)
		}
	}

	onsets := dsp.ClosestBefore(peaks, dsp.FindTroughs(phasic))
	for i, peak := range peaks {
		onset := onsets[i]
		if onset < 0 {
			continue
		}
		height := phasic[peak]
		info.Onsets = append(info.Onsets, onset)
		info.Peaks = append(info.Peaks, peak)
		info.Height = append(info.Height, height)
		info.Amplitude = append(info.Amplitude, height-phasic[onset])
		info.RiseTime = append(info.RiseTime, float64(peak-onset)/samplingRate)
	}

	info.Recovery, info.RecoveryTime = recoveries(phasic, info.Peaks, info.Amplitude, samplingRate, p.RecoveryPercentage)
	return info
}

// recoveries finds, for each peak, the sample between the peak and the
// lowest point before the next peak whose value is closest to (but not
// above) height - amplitude*pct. A response only recovers when the signal
// drops strictly below that level.
func recoveries(phasic []float64, peaks []int, amplitudes []float64, samplingRate, pct float64) ([]int, []float64) {
	recovery := make([]int, len(peaks))
	recoveryTime := make([]float64, len(peaks))
	for i, peak := range peaks {
		recovery[i] = -1
		recoveryTime[i] = nan

		end := len(phasic)
		if i+1 < len(peaks) {
			end = peaks[i+1]
		}
		segment := phasic[peak:end]
		if len(segment) == 0 {
			continue
		}
		segment = segment[:floats.MinIdx(segment)]
		if len(segment) == 0 {
			continue
		}

		target := phasic[peak] - amplitudes[i]*pct
		if floats.Min(segment) >= target {
			continue
		}
		best := -1
		for j, v := range segment {
			if v <= target && (best < 0 || v > segment[best]) {
				best = j
			}
		}
		recovery[i] = peak + best
		recoveryTime[i] = float64(best) / samplingRate
	}
	return recovery, recoveryTime
}
