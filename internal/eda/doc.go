// Package eda processes electrodermal activity signals.
//
// Process cleans a raw skin conductance signal, separates it into a fast
// phasic component and a slow tonic component, and detects skin conductance
// responses (SCRs) in the phasic component. IntervalRelated summarises a
// processed signal into one row of interval metrics.
//
// The processing chain matches the "neurokit" method of common EDA tooling:
//
//	raw -> Clean (3 Hz low-pass, order 4)
//	    -> Phasic (0.05 Hz high-pass, order 2) / Tonic (0.05 Hz low-pass, order 2)
//	    -> Peaks (local maxima >= 10% of the largest, onset = preceding trough)
//
// All filters are zero-phase (forward-backward).
package eda
