package tailmetrics

import "math/rand"

// topKLargest returns the k largest values of x, in no particular order,
// using quickselect (introselect-style, randomized pivot) rather than a
// full sort — the performance contract in spec.md §9. NaNs sort below all
// finite values, so they surface in the result only when every value is
// NaN or when k == len(x).
//
// x is copied; the caller's slice is never mutated.
func topKLargest(x []float64, k int) []float64 {
	n := len(x)
	if k <= 0 {
		return nil
	}
	if k >= n {
		out := make([]float64, n)
		copy(out, x)
		return out
	}

	buf := make([]float64, n)
	copy(buf, x)

	// We want the k elements with the largest value, which is the same as
	// selecting the partition point at index n-k in ascending order.
	target := n - k
	lo, hi := 0, n-1
	rng := rand.New(rand.NewSource(1)) // deterministic: tie-break policy only, not a scenario seed
	for lo < hi {
		pivotIdx := lo + rng.Intn(hi-lo+1)
		pivotIdx = partition(buf, lo, hi, pivotIdx)
		if pivotIdx == target {
			break
		} else if pivotIdx < target {
			lo = pivotIdx + 1
		} else {
			hi = pivotIdx - 1
		}
	}

	return buf[target:]
}

// less reports whether a sorts before b for quickselect purposes: NaN
// sorts below every non-NaN value, -Inf included; two NaNs compare equal.
func less(a, b float64) bool {
	if a != a { // a is NaN
		return b == b // NaN < anything that isn't NaN
	}
	if b != b { // b is NaN, a is not
		return false
	}
	return a < b
}

func partition(buf []float64, lo, hi, pivotIdx int) int {
	pivot := buf[pivotIdx]
	buf[pivotIdx], buf[hi] = buf[hi], buf[pivotIdx]
	store := lo
	for i := lo; i < hi; i++ {
		if less(buf[i], pivot) {
			buf[i], buf[store] = buf[store], buf[i]
			store++
		}
	}
	buf[store], buf[hi] = buf[hi], buf[store]
	return store
}
