package eda

import (
	"fmt"
	"math"
)

var nan = math.NaN()

// Signals is the per-sample processed table. Every column has one entry
// per input sample. Event columns (SCR_Onsets, SCR_Peaks, SCR_Recovery) hold
// 1 at event samples and 0 elsewhere; feature columns hold the feature at
// the event sample and 0 elsewhere.
type Signals struct {
	Raw    []float64
	Clean  []float64
	Tonic  []float64
	Phasic []float64

	Onsets       []float64
	Peaks        []float64
	Height       []float64
	Amplitude    []float64
	RiseTime     []float64
	Recovery     []float64
	RecoveryTime []float64
}

// SignalColumns lists the Signals columns in table order.
var SignalColumns = []string{
	"EDA_Raw", "EDA_Clean", "EDA_Tonic", "EDA_Phasic",
	"SCR_Onsets", "SCR_Peaks", "SCR_Height", "SCR_Amplitude",
	"SCR_RiseTime", "SCR_Recovery", "SCR_RecoveryTime",
}

// Len returns the number of samples.
func (s *Signals) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Raw)
}

// Column returns a column by name, or nil if the name is unknown.
func (s *Signals) Column(name string) []float64 {
	switch name {
	case "EDA_Raw":
		return s.Raw
	case "EDA_Clean":
		return s.Clean
	case "EDA_Tonic":
		return s.Tonic
	case "EDA_Phasic":
		return s.Phasic
	case "SCR_Onsets":
		return s.Onsets
	case "SCR_Peaks":
		return s.Peaks
	case "SCR_Height":
		return s.Height
	case "SCR_Amplitude":
		return s.Amplitude
	case "SCR_RiseTime":
		return s.RiseTime
	case "SCR_Recovery":
		return s.Recovery
	case "SCR_RecoveryTime":
		return s.RecoveryTime
	}
	return nil
}

// Process cleans raw, decomposes it and detects SCRs.
func Process(raw []float64, samplingRate float64, p Params) (*Signals, *Info, error) {
	if samplingRate <= 0 {
		return nil, nil, fmt.Errorf("sampling rate must be positive, got %g", samplingRate)
	}
	cleaned, err := Clean(raw, samplingRate, p)
	if err != nil {
		return nil, nil, err
	}
	comp, err := Decompose(cleaned, samplingRate, p)
	if err != nil {
		return nil, nil, err
	}
	info := FindSCR(comp.Phasic, samplingRate, p)

	n := len(raw)
	sig := &Signals{
		Raw:          append([]float64(nil), raw...),
		Clean:        cleaned,
		Tonic:        comp.Tonic,
		Phasic:       comp.Phasic,
		Onsets:       make([]float64, n),
		Peaks:        make([]float64, n),
		Height:       make([]float64, n),
		Amplitude:    make([]float64, n),
		RiseTime:     make([]float64, n),
		Recovery:     make([]float64, n),
		RecoveryTime: make([]float64, n),
	}
	for i, peak := range info.Peaks {
		sig.Onsets[info.Onsets[i]] = 1
		sig.Peaks[peak] = 1
		sig.Height[peak] = info.Height[i]
		sig.Amplitude[peak] = info.Amplitude[i]
		sig.RiseTime[peak] = info.RiseTime[i]
		if r := info.Recovery[i]; r >= 0 {
			sig.Recovery[r] = 1
			sig.RecoveryTime[r] = info.RecoveryTime[i]
		}
	}
	return sig, info, nil
}
