package dsp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButter_PassbandAndCutoff(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		order    int
		cutoff   float64
		fs       float64
		kind     FilterType
		passband float64
	}{
		{"lowpass_order4", 4, 3, 10, LowPass, 0},
		{"lowpass_order3", 3, 3, 100, LowPass, 0},
		{"highpass_order2", 2, 0.05, 10, HighPass, 5},
		{"highpass_order8", 8, 0.01, 2, HighPass, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sos, err := Butter(tc.order, tc.cutoff, tc.fs, tc.kind)
			require.NoError(t, err)
			assert.Len(t, sos, (tc.order+1)/2)
			assert.InDelta(t, 1.0, sos.Response(tc.passband, tc.fs), 1e-9)
			assert.InDelta(t, 1/math.Sqrt2, sos.Response(tc.cutoff, tc.fs), 1e-6)
		})
	}
}

func TestButter_InvalidArguments(t *testing.T) {
	t.Parallel()

	_, err := Butter(4, 6, 10, LowPass)
	assert.True(t, errors.Is(err, ErrInvalidCutoff))

	_, err = Butter(4, 0, 10, LowPass)
	assert.True(t, errors.Is(err, ErrInvalidCutoff))

	_, err = Butter(0, 1, 10, LowPass)
	assert.Error(t, err)

	_, err = Butter(2, 1, 10, FilterType("bandstop"))
	assert.Error(t, err)
}

func TestSOS_PadLen(t *testing.T) {
	t.Parallel()

	lp4, err := Butter(4, 3, 10, LowPass)
	require.NoError(t, err)
	assert.Equal(t, 15, lp4.PadLen())

	hp2, err := Butter(2, 0.05, 10, HighPass)
	require.NoError(t, err)
	assert.Equal(t, 9, hp2.PadLen())

	lp3, err := Butter(3, 3, 100, LowPass)
	require.NoError(t, err)
	assert.Equal(t, 12, lp3.PadLen())
}

func TestFiltFilt_ConstantSignal(t *testing.T) {
	t.Parallel()

	x := make([]float64, 50)
	for i := range x {
		x[i] = 4.2
	}

	lp, err := Butter(4, 3, 10, LowPass)
	require.NoError(t, err)
	y, err := lp.FiltFilt(x)
	require.NoError(t, err)
	require.Len(t, y, len(x))
	for i, v := range y {
		assert.InDelta(t, 4.2, v, 1e-9, "lowpass sample %d", i)
	}

	hp, err := Butter(2, 0.05, 10, HighPass)
	require.NoError(t, err)
	y, err = hp.FiltFilt(x)
	require.NoError(t, err)
	for i, v := range y {
		assert.InDelta(t, 0, v, 1e-9, "highpass sample %d", i)
	}
}

func TestFiltFilt_SinusoidAttenuation(t *testing.T) {
	t.Parallel()

	const fs = 100.0
	slow := make([]float64, 2000)
	fast := make([]float64, 2000)
	for i := range slow {
		ts := float64(i) / fs
		slow[i] = math.Sin(2 * math.Pi * 0.5 * ts)
		fast[i] = math.Sin(2 * math.Pi * 30 * ts)
	}

	lp, err := Butter(4, 3, fs, LowPass)
	require.NoError(t, err)

	ySlow, err := lp.FiltFilt(slow)
	require.NoError(t, err)
	yFast, err := lp.FiltFilt(fast)
	require.NoError(t, err)

	// Compare the middle of the signal, away from edge effects.
	for i := 500; i < 1500; i++ {
		assert.InDelta(t, slow[i], ySlow[i], 1e-3)
		assert.InDelta(t, 0, yFast[i], 1e-3)
	}
}

func TestFiltFilt_TooShort(t *testing.T) {
	t.Parallel()

	lp, err := Butter(4, 3, 10, LowPass)
	require.NoError(t, err)

	_, err = lp.FiltFilt(make([]float64, 15))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSignalTooShort))

	_, err = lp.FiltFilt(make([]float64, 16))
	assert.NoError(t, err)
}

func TestOddExtend(t *testing.T) {
	t.Parallel()

	got := oddExtend([]float64{1, 2, 4, 7}, 2)
	assert.Equal(t, []float64{-2, 0, 1, 2, 4, 7, 10, 12}, got)
}

func TestSteadyState_NoTransient(t *testing.T) {
	t.Parallel()

	sos, err := Butter(4, 1, 10, LowPass)
	require.NoError(t, err)

	x := make([]float64, 20)
	for i := range x {
		x[i] = 2
	}
	y := sos.Filter(x, scaledState(sos.SteadyState(), 2))
	for _, v := range y {
		assert.InDelta(t, 2, v, 1e-12)
	}
}
