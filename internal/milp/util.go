package milp

import "math"

var invPhi = (math.Sqrt(5) - 1) / 2 // 1/golden ratio

// GoldenSectionMax finds the ζ in [lo,hi] maximizing the unimodal
// (concave) function f, used by TailContribution.BestZeta implementations
// to avoid materializing the per-scenario u_k variables in the LP (see
// TailContribution's doc comment).
func GoldenSectionMax(f func(float64) float64, lo, hi float64, iters int) float64 {
	if hi <= lo {
		return lo
	}
	if iters <= 0 {
		iters = 60
	}
	a, b := lo, hi
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, fd := f(c), f(d)
	for i := 0; i < iters; i++ {
		if fc < fd {
			a = c
			c = d
			fc = fd
			d = a + invPhi*(b-a)
			fd = f(d)
		} else {
			b = d
			d = c
			fd = fc
			c = b - invPhi*(b-a)
			fc = f(c)
		}
		if b-a < 1e-9 {
			break
		}
	}
	return (a + b) / 2
}
