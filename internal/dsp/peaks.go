package dsp

// FindPeaks returns the indices of local maxima in x. A flat peak reports
// the midpoint of its plateau (rounded down). The first and last samples
// are never peaks.
func FindPeaks(x []float64) []int {
	var peaks []int
	n := len(x)
	i := 1
	for i < n-1 {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < n-1 && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				peaks = append(peaks, (i+ahead-1)/2)
				i = ahead
			}
		}
		i++
	}
	return peaks
}

// FindTroughs returns the indices of local minima in x.
func FindTroughs(x []float64) []int {
	neg := make([]float64, len(x))
	for i, v := range x {
		neg[i] = -v
	}
	return FindPeaks(neg)
}

// ClosestBefore returns, for each target, the largest candidate strictly
// smaller than it, or -1 when there is none. candidates must be sorted.
func ClosestBefore(targets, candidates []int) []int {
	out := make([]int, len(targets))
	for i, t := range targets {
		out[i] = -1
		lo, hi := 0, len(candidates)
		for lo < hi {
			mid := (lo + hi) / 2
			if candidates[mid] < t {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			out[i] = candidates[lo-1]
		}
	}
	return out
}
