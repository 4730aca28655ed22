package eda

// Params holds the processing constants. The zero value is not usable; start
// from DefaultParams.
type Params struct {
	// CleanHighcut is the low-pass cutoff (Hz) applied when cleaning.
	CleanHighcut float64
	CleanOrder   int

	// PhasicCutoff separates the phasic (above) and tonic (below) components.
	PhasicCutoff float64
	PhasicOrder  int

	// AmplitudeMin is the minimum peak height relative to the largest peak.
	AmplitudeMin float64

	// RecoveryPercentage is the fraction of amplitude an SCR must decay by
	// to count as recovered.
	RecoveryPercentage float64

	// AutocorLagSeconds is the lag used for EDA_Autocorrelation.
	AutocorLagSeconds float64

	// SympatheticBand is the frequency band (Hz) of EDA_Sympathetic.
	SympatheticBand [2]float64
}

// DefaultParams returns the standard neurokit-style constants.
func DefaultParams() Params {
	return Params{
		CleanHighcut:       3,
		CleanOrder:         4,
		PhasicCutoff:       0.05,
		PhasicOrder:        2,
		AmplitudeMin:       0.1,
		RecoveryPercentage: 0.5,
		AutocorLagSeconds:  4,
		SympatheticBand:    [2]float64{0.045, 0.25},
	}
}
