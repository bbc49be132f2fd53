package objective

import (
	"math"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/milp"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
)

// CVaRTerm is the in-process stand-in for the Rockafellar-Uryasev
// linearization's (ζ, u_1..u_S) family: rather than materializing one
// continuous variable per scenario (up to 10,000 of them) in the MILP, it
// evaluates the equivalent concave expression directly, exploiting that for
// a fixed selection the optimal u_k is a clamp of p_k(x)-ζ and the optimal ζ
// is found by a bounded unimodal search (see milp.TailContribution).
type CVaRTerm struct {
	Matrix         *scenario.Matrix
	DriverVarIndex []int // DriverVarIndex[i] = problem variable index of driver i's selector
	Alpha          float64
	ZetaLo, ZetaHi float64
	MaxExcess      float64
	NamePrefix     string
}

var _ milp.TailContribution = (*CVaRTerm)(nil)

func (t *CVaRTerm) ZetaBounds() (float64, float64) { return t.ZetaLo, t.ZetaHi }
func (t *CVaRTerm) Prefix() string                 { return t.NamePrefix }

func (t *CVaRTerm) pointsSeries(x []float64) []float64 {
	weights := make([]float64, t.Matrix.D())
	for i, vi := range t.DriverVarIndex {
		weights[i] = x[vi]
	}
	return t.Matrix.WeightedSeries(weights)
}

// Evaluate returns ζ + (1/((1-α)·S))·Σ clamp(p_k(x)-ζ, 0, maxExcess).
func (t *CVaRTerm) Evaluate(x []float64, zeta float64) float64 {
	p := t.pointsSeries(x)
	return t.valueAt(p, zeta)
}

func (t *CVaRTerm) valueAt(p []float64, zeta float64) float64 {
	s := len(p)
	if s == 0 {
		return zeta
	}
	var sum float64
	for _, pk := range p {
		u := pk - zeta
		if u < 0 {
			u = 0
		} else if u > t.MaxExcess {
			u = t.MaxExcess
		}
		sum += u
	}
	return zeta + sum/((1-t.Alpha)*float64(s))
}

// BestZeta finds the ζ maximizing Evaluate(x, ·) via golden-section search,
// valid because the clamp-sum is concave in ζ for fixed x.
func (t *CVaRTerm) BestZeta(x []float64) float64 {
	p := t.pointsSeries(x)
	f := func(z float64) float64 { return t.valueAt(p, z) }
	return milp.GoldenSectionMax(f, t.ZetaLo, t.ZetaHi, 80)
}

// LinearMajorant builds a per-scenario secant over-estimate of clamp(p_k(x)-
// ζ, 0, maxExcess) and sums it into one linear function of x and ζ.
// clamp(y,0,M) <= max(y,0) always (capping only ever lowers the value), and
// max(y,0) is convex, so its chord over [a_k,b_k] — the range p_k(x)-ζ can
// take for x in [lo,hi] and ζ in [zetaLo,zetaHi] — lies everywhere above it.
// Summing the chords keeps the result a single valid upper bound on
// Evaluate(x,ζ) across the whole box, suitable for branch-and-bound pruning.
func (t *CVaRTerm) LinearMajorant(lo, hi []float64, zetaVar int) (milp.LinExpr, float64) {
	s := t.Matrix.S()
	coeffs := milp.LinExpr{}
	if s == 0 {
		coeffs[zetaVar] = 1
		return coeffs, 0
	}

	loW := make([]float64, t.Matrix.D())
	hiW := make([]float64, t.Matrix.D())
	for i, vi := range t.DriverVarIndex {
		loW[i] = lo[vi]
		hiW[i] = hi[vi]
	}
	pLo := t.Matrix.WeightedSeries(loW)
	pHi := t.Matrix.WeightedSeries(hiW)
	zetaLo, zetaHi := lo[zetaVar], hi[zetaVar]

	slopes := make([]float64, s)
	var slopeSum, constSum float64
	for k := 0; k < s; k++ {
		a := pLo[k] - zetaHi
		b := pHi[k] - zetaLo
		ca := math.Max(a, 0)
		var slope float64
		if b > a+1e-9 {
			slope = (math.Max(b, 0) - ca) / (b - a)
		}
		slopes[k] = slope
		slopeSum += slope
		constSum += ca - slope*a
	}

	c := 1 / ((1 - t.Alpha) * float64(s))
	driverCoef := t.Matrix.WeightedColumnSums(slopes)
	for i, vi := range t.DriverVarIndex {
		coeffs[vi] = driverCoef[i] * c
	}
	coeffs[zetaVar] = 1 - slopeSum*c
	return coeffs, constSum * c
}
