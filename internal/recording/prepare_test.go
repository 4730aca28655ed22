package recording

import (
	"testing"

	"github.com/banshee-data/eda.report/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_ProcessedLength(t *testing.T) {
	t.Parallel()

	for _, n := range []int{30100, 30101, 30199, 35000, 35001, 41234, 100000} {
		x := testutil.Constant(n, 1)
		got, err := Prepare(x, 30000, 100)
		require.NoError(t, err)

		want := (n - 30000 + 99) / 100
		assert.Len(t, got, want, "n=%d", n)
		assert.Equal(t, want, ProcessedLen(n, 30000, 100))
	}
}

func TestPrepare_KeepsFirstOfEachBlock(t *testing.T) {
	t.Parallel()

	x := make([]float64, 35000)
	for i := range x {
		x[i] = float64(i)
	}
	got, err := Prepare(x, 30000, 100)
	require.NoError(t, err)
	require.Len(t, got, 50)
	assert.Equal(t, 30000.0, got[0])
	assert.Equal(t, 30100.0, got[1])
	assert.Equal(t, 34900.0, got[49])
}

func TestPrepare_Errors(t *testing.T) {
	t.Parallel()

	_, err := Prepare(testutil.Constant(30000, 1), 30000, 100)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Prepare(testutil.Constant(10, 1), 0, 0)
	assert.Error(t, err)

	assert.Equal(t, 0, ProcessedLen(100, 200, 10))
}

func TestCrop(t *testing.T) {
	t.Parallel()

	x := []float64{1, 2, 3}
	if diff := cmp.Diff([]float64{2, 3}, Crop(x, 1)); diff != "" {
		t.Errorf("Crop mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(x, Crop(x, 0)); diff != "" {
		t.Errorf("Crop(0) mismatch (-want +got):\n%s", diff)
	}
	if got := Crop(x, 5); got != nil {
		t.Errorf("Crop past end = %v, want nil", got)
	}
	if diff := cmp.Diff([]float64{1, 3}, Downsample(x, 2)); diff != "" {
		t.Errorf("Downsample mismatch (-want +got):\n%s", diff)
	}
}
