package eda

import (
	"fmt"

	"github.com/banshee-data/eda.report/internal/dsp"
)

// Components is the phasic/tonic decomposition of a cleaned signal.
type Components struct {
	Phasic []float64
	Tonic  []float64
}

// Decompose splits a cleaned signal into phasic and tonic components with a
// complementary pair of Butterworth filters at p.PhasicCutoff.
func Decompose(cleaned []float64, samplingRate float64, p Params) (Components, error) {
	if len(cleaned) == 0 {
		return Components{}, ErrEmptySignal
	}

	hp, err := dsp.Butter(p.PhasicOrder, p.PhasicCutoff, samplingRate, dsp.HighPass)
	if err != nil {
		return Components{}, fmt.Errorf("phasic filter: %w", err)
	}
	lp, err := dsp.Butter(p.PhasicOrder, p.PhasicCutoff, samplingRate, dsp.LowPass)
	if err != nil {
		return Components{}, fmt.Errorf("tonic filter: %w", err)
	}

	phasic, err := hp.FiltFilt(cleaned)
	if err != nil {
		return Components{}, fmt.Errorf("phasic: %w", err)
	}
	tonic, err := lp.FiltFilt(cleaned)
	if err != nil {
		return Components{}, fmt.Errorf("tonic: %w", err)
	}
	return Components{Phasic: phasic, Tonic: tonic}, nil
}
