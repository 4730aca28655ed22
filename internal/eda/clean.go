package eda

import (
	"errors"
	"fmt"

	"github.com/banshee-data/eda.report/internal/dsp"
	"github.com/banshee-data/eda.report/internal/monitoring"
)

// ErrEmptySignal is returned when there are no samples to process.
var ErrEmptySignal = errors.New("empty EDA signal")

// minCleanRate is the sampling rate at or below which cleaning is skipped.
const minCleanRate = 6.0

// Clean interpolates missing samples and low-pass filters the signal.
// Signals sampled at 6 Hz or less are returned without filtering.
func Clean(raw []float64, samplingRate float64, p Params) ([]float64, error) {
	if len(raw) == 0 {
		return nil, ErrEmptySignal
	}

	signal, missing := dsp.InterpolateNaN(raw)
	if missing > 0 {
		monitoring.Logf("eda: interpolated %d missing samples", missing)
	}

	if samplingRate <= minCleanRate {
		monitoring.Logf("eda: sampling rate %.1f Hz is too low for cleaning, returning the raw signal", samplingRate)
		return signal, nil
	}

	sos, err := dsp.Butter(p.CleanOrder, p.CleanHighcut, samplingRate, dsp.LowPass)
	if err != nil {
		return nil, fmt.Errorf("clean filter: %w", err)
	}
	cleaned, err := sos.FiltFilt(signal)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	return cleaned, nil
}
