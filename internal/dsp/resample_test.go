package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsample(t *testing.T) {
	testCases := []struct {
		name   string
		n      int
		factor int
		want   int
	}{
		{"exact_multiple", 5000, 100, 50},
		{"remainder", 5001, 100, 51},
		{"shorter_than_factor", 7, 100, 1},
		{"empty", 0, 100, 0},
		{"factor_one", 10, 1, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x := make([]float64, tc.n)
			for i := range x {
				x[i] = float64(i)
			}
			got := Downsample(x, tc.factor)
			require.Len(t, got, tc.want)
			for i, v := range got {
				step := tc.factor
				if step < 1 {
					step = 1
				}
				assert.Equal(t, float64(i*step), v)
			}
		})
	}
}

func TestDecimate(t *testing.T) {
	t.Parallel()

	x := make([]float64, 1000)
	for i := range x {
		x[i] = 1.5
	}
	y, rate, err := Decimate(x, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 2.0, rate)
	assert.Len(t, y, 200)
	for _, v := range y {
		assert.InDelta(t, 1.5, v, 1e-9)
	}

	_, _, err = Decimate(x, 10, 0)
	assert.Error(t, err)
}

func TestInterpolateNaN(t *testing.T) {
	nan := math.NaN()

	got, n := InterpolateNaN([]float64{nan, 1, nan, nan, 4, nan})
	assert.Equal(t, []float64{1, 1, 2, 3, 4, 4}, got)
	assert.Equal(t, 4, n)

	got, n = InterpolateNaN([]float64{1, 2})
	assert.Equal(t, []float64{1, 2}, got)
	assert.Equal(t, 0, n)

	got, n = InterpolateNaN([]float64{nan, nan})
	assert.Equal(t, 0, n)
	assert.True(t, math.IsNaN(got[0]))
}
