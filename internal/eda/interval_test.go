package eda

import (
	"math"
	"testing"

	"github.com/banshee-data/eda.report/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, fs, freq float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
	}
	return x
}

func TestIntervalRelated_Synthetic(t *testing.T) {
	t.Parallel()

	raw := testutil.DefaultSyntheticEDA().Samples()
	sig, info, err := Process(raw, 10, DefaultParams())
	require.NoError(t, err)

	m, err := IntervalRelated(sig, 10, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, info.N(), m.PeaksN)
	var sum float64
	for _, a := range info.Amplitude {
		sum += a
	}
	assert.InDelta(t, sum/float64(info.N()), m.PeaksAmplitudeMean, 1e-12)
	assert.Greater(t, m.TonicSD, 0.0)

	// 120 s is long enough for both optional metrics.
	assert.False(t, math.IsNaN(m.Sympathetic))
	assert.GreaterOrEqual(t, m.SympatheticN, 0.0)
	assert.LessOrEqual(t, m.SympatheticN, 1.0)
	assert.GreaterOrEqual(t, m.Autocorrelation, -1.0)
	assert.LessOrEqual(t, m.Autocorrelation, 1.0)

	assert.Len(t, m.Values(), len(IntervalMetricColumns))
	assert.Equal(t, float64(m.PeaksN), m.Values()[0])
}

func TestIntervalRelated_NoPeaks(t *testing.T) {
	t.Parallel()

	n := 40
	sig := &Signals{
		Raw:       testutil.Constant(n, 1),
		Clean:     testutil.Constant(n, 1),
		Tonic:     testutil.Constant(n, 1),
		Phasic:    make([]float64, n),
		Peaks:     make([]float64, n),
		Amplitude: make([]float64, n),
	}
	m, err := IntervalRelated(sig, 10, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 0, m.PeaksN)
	assert.True(t, math.IsNaN(m.PeaksAmplitudeMean))
	assert.Equal(t, 0.0, m.TonicSD)
}

func TestIntervalRelated_AmplitudeMeanIgnoresNaN(t *testing.T) {
	t.Parallel()

	n := 40
	sig := &Signals{
		Raw:       testutil.Constant(n, 1),
		Clean:     testutil.Constant(n, 1),
		Tonic:     testutil.Constant(n, 1),
		Phasic:    make([]float64, n),
		Peaks:     make([]float64, n),
		Amplitude: testutil.Constant(n, math.NaN()),
	}
	sig.Peaks[5], sig.Amplitude[5] = 1, 0.4
	sig.Peaks[15] = 1
	sig.Peaks[25], sig.Amplitude[25] = 1, 0.2

	m, err := IntervalRelated(sig, 10, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 3, m.PeaksN)
	testutil.AssertNear(t, m.PeaksAmplitudeMean, 0.3, 1e-12)
}

func TestIntervalRelated_Errors(t *testing.T) {
	t.Parallel()

	_, err := IntervalRelated(&Signals{}, 10, DefaultParams())
	assert.ErrorIs(t, err, ErrEmptySignal)

	_, err = IntervalRelated(&Signals{Raw: []float64{1}}, 0, DefaultParams())
	assert.Error(t, err)
}

func TestAutocorrelation(t *testing.T) {
	t.Parallel()

	// 4 s lag is half a period of an 8 s sine and a full period of a 4 s one.
	anti, err := Autocorrelation(sine(1000, 10, 1.0/8), 10, 4)
	require.NoError(t, err)
	assert.Less(t, anti, -0.9)

	in, err := Autocorrelation(sine(1000, 10, 1.0/4), 10, 4)
	require.NoError(t, err)
	assert.Greater(t, in, 0.9)

	flat, err := Autocorrelation(testutil.Constant(100, 3), 10, 4)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(flat))

	_, err = Autocorrelation(testutil.Constant(30, 3), 10, 4)
	assert.Error(t, err)
}

func TestSympathetic_Band(t *testing.T) {
	t.Parallel()

	inBand, err := Sympathetic(sine(3000, 10, 0.1), 10, DefaultParams())
	require.NoError(t, err)
	assert.Greater(t, inBand.Power, 0.0)
	assert.Greater(t, inBand.Normalized, 0.9)

	outBand, err := Sympathetic(sine(3000, 10, 0.5), 10, DefaultParams())
	require.NoError(t, err)
	assert.Less(t, outBand.Normalized, 0.05)
}
