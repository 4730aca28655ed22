package recording

import (
	"fmt"

	"github.com/banshee-data/eda.report/internal/dsp"
)

// Crop discards the first n samples.
func Crop(x []float64, n int) []float64 {
	if n <= 0 {
		return x
	}
	if n >= len(x) {
		return nil
	}
	return x[n:]
}

// Downsample keeps every factor-th sample starting with the first, so
// ceil(len(x)/factor) samples remain.
func Downsample(x []float64, factor int) []float64 {
	return dsp.Downsample(x, factor)
}

// Prepare crops trim samples and downsamples the rest.
func Prepare(x []float64, trim, factor int) ([]float64, error) {
	if factor < 1 {
		return nil, fmt.Errorf("downsample factor must be positive, got %d", factor)
	}
	cropped := Crop(x, trim)
	if len(cropped) == 0 {
		return nil, fmt.Errorf("%w: %d samples is not more than the %d-sample trim", ErrEmpty, len(x), trim)
	}
	return Downsample(cropped, factor), nil
}

// ProcessedLen is the number of samples Prepare returns for n input samples.
func ProcessedLen(n, trim, factor int) int {
	if n <= trim || factor < 1 {
		return 0
	}
	return (n - trim + factor - 1) / factor
}
