package eda

import (
	"fmt"
	"math"

	"github.com/banshee-data/eda.report/internal/dsp"
	"github.com/banshee-data/eda.report/internal/monitoring"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Minimum signal durations for the optional metrics.
const (
	minSympatheticSeconds = 64
	minAutocorSeconds     = 30
)

// Sympathetic index settings (Posada-Quintero et al. 2016).
const (
	sympatheticRate    = 2.0  // Hz, approximate rate after decimation
	sympatheticHighcut = 0.01 // Hz
	sympatheticOrder   = 8
	sympatheticNPerSeg = 128
)

// IntervalMetrics summarises one processed signal. Metrics that cannot be
// computed are NaN.
type IntervalMetrics struct {
	PeaksN             int
	PeaksAmplitudeMean float64
	TonicSD            float64
	Sympathetic        float64
	SympatheticN       float64
	Autocorrelation    float64
}

// IntervalMetricColumns are the metric column names in output order.
var IntervalMetricColumns = []string{
	"SCR_Peaks_N",
	"SCR_Peaks_Amplitude_Mean",
	"EDA_Tonic_SD",
	"EDA_Sympathetic",
	"EDA_SympatheticN",
	"EDA_Autocorrelation",
}

// Values returns the metrics as floats in IntervalMetricColumns order.
func (m IntervalMetrics) Values() []float64 {
	return []float64{
		float64(m.PeaksN),
		m.PeaksAmplitudeMean,
		m.TonicSD,
		m.Sympathetic,
		m.SympatheticN,
		m.Autocorrelation,
	}
}

// IntervalRelated computes the interval metrics of a processed signal.
// EDA_Sympathetic requires more than 64 s of signal and EDA_Autocorrelation
// more than 30 s; shorter signals get NaN for those metrics.
func IntervalRelated(sig *Signals, samplingRate float64, p Params) (IntervalMetrics, error) {
	if sig.Len() == 0 {
		return IntervalMetrics{}, ErrEmptySignal
	}
	if samplingRate <= 0 {
		return IntervalMetrics{}, fmt.Errorf("sampling rate must be positive, got %g", samplingRate)
	}

	m := IntervalMetrics{
		PeaksAmplitudeMean: nan,
		Sympathetic:        nan,
		SympatheticN:       nan,
		Autocorrelation:    nan,
	}

	// NaN amplitudes count as peaks but not toward the mean.
	var ampSum float64
	var ampN int
	for i, v := range sig.Peaks {
		if v == 1 {
			m.PeaksN++
			if a := sig.Amplitude[i]; !math.IsNaN(a) {
				ampSum += a
				ampN++
			}
		}
	}
	if ampN > 0 {
		m.PeaksAmplitudeMean = ampSum / float64(ampN)
	}
	m.TonicSD = popStdDev(sig.Tonic)

	n := float64(sig.Len())
	if n > samplingRate*minSympatheticSeconds {
		symp, err := Sympathetic(sig.Clean, samplingRate, p)
		if err != nil {
			return IntervalMetrics{}, fmt.Errorf("sympathetic index: %w", err)
		}
		m.Sympathetic, m.SympatheticN = symp.Power, symp.Normalized
	} else {
		monitoring.Logf("eda: signal shorter than %d s, EDA_Sympathetic set to NaN", minSympatheticSeconds)
	}
	if n > samplingRate*minAutocorSeconds {
		ac, err := Autocorrelation(sig.Clean, samplingRate, p.AutocorLagSeconds)
		if err != nil {
			return IntervalMetrics{}, fmt.Errorf("autocorrelation: %w", err)
		}
		m.Autocorrelation = ac
	} else {
		monitoring.Logf("eda: signal shorter than %d s, EDA_Autocorrelation set to NaN", minAutocorSeconds)
	}
	return m, nil
}

// popStdDev is the population standard deviation ignoring NaNs.
func popStdDev(x []float64) float64 {
	finite := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return nan
	}
	return stat.PopStdDev(finite, nil)
}

// SympatheticIndex is the spectral power of the cleaned signal in the
// sympathetic band, absolute and relative to the total power.
type SympatheticIndex struct {
	Power      float64
	Normalized float64
}

// Sympathetic computes the EDA sympathetic index. The signal is decimated to
// about 2 Hz, high-pass filtered at 0.01 Hz and its Welch PSD integrated over
// p.SympatheticBand.
func Sympathetic(cleaned []float64, samplingRate float64, p Params) (SympatheticIndex, error) {
	q := int(math.Round(samplingRate / sympatheticRate))
	if q < 1 {
		q = 1
	}
	x, fs, err := dsp.Decimate(cleaned, samplingRate, q)
	if err != nil {
		return SympatheticIndex{}, err
	}

	hp, err := dsp.Butter(sympatheticOrder, sympatheticHighcut, fs, dsp.HighPass)
	if err != nil {
		return SympatheticIndex{}, err
	}
	filtered, err := hp.FiltFilt(x)
	if err != nil {
		return SympatheticIndex{}, err
	}

	psd, err := dsp.Welch(filtered, fs, sympatheticNPerSeg)
	if err != nil {
		return SympatheticIndex{}, err
	}
	band := psd.BandPower(p.SympatheticBand[0], p.SympatheticBand[1])
	total := psd.TotalPower()
	idx := SympatheticIndex{Power: band, Normalized: nan}
	if total > 0 {
		idx.Normalized = band / total
	}
	return idx, nil
}

// Autocorrelation returns the normalised autocorrelation of x at the given
// lag in seconds.
func Autocorrelation(x []float64, samplingRate, lagSeconds float64) (float64, error) {
	lag := int(lagSeconds * samplingRate)
	if lag < 0 || lag >= len(x) {
		return nan, fmt.Errorf("lag of %d samples out of range for %d samples", lag, len(x))
	}
	mean := stat.Mean(x, nil)
	centred := make([]float64, len(x))
	copy(centred, x)
	floats.AddConst(-mean, centred)

	denom := floats.Dot(centred, centred)
	if denom == 0 {
		return nan, nil
	}
	return floats.Dot(centred[:len(x)-lag], centred[lag:]) / denom, nil
}
