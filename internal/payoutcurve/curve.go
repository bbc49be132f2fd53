// Package payoutcurve fits rank→payout curves over observed (rank, payout)
// pairs and predicts payout at arbitrary integer ranks (spec.md §4.2).
package payoutcurve

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/pkg/logger"
)

// ModelKind selects the payout-curve functional form.
type ModelKind string

const (
	PowerLaw        ModelKind = "power_law"
	Exponential     ModelKind = "exponential"
	PiecewiseLinear ModelKind = "piecewise_linear"
	Hybrid          ModelKind = "hybrid"
)

// Curve is a fitted rank→payout model. The zero value is unfitted; call Fit
// before Predict.
type Curve struct {
	Kind ModelKind

	params []float64 // meaning depends on Kind; see Predict
	fitted bool

	RMSE float64
	R2   float64

	// ranks/payouts are retained only for PiecewiseLinear, which predicts by
	// interpolation rather than a closed-form parametric model.
	ranks   []float64
	payouts []float64
}

// NewCurve returns an unfitted curve of the given kind.
func NewCurve(kind ModelKind) *Curve {
	return &Curve{Kind: kind}
}

// Fit fits the curve to the observed (rank, payout) pairs. ranks and
// payouts must be the same length, with at least two points.
func (c *Curve) Fit(ranks, payouts []float64) error {
	if len(ranks) < 2 || len(ranks) != len(payouts) {
		return ErrInsufficientPoints
	}

	switch c.Kind {
	case PiecewiseLinear:
		return c.fitPiecewiseLinear(ranks, payouts)
	case PowerLaw:
		return c.fitParametric(ranks, payouts, 2, powerLawEval)
	case Exponential:
		return c.fitParametric(ranks, payouts, 2, exponentialEval)
	case Hybrid:
		return c.fitHybrid(ranks, payouts)
	default:
		return fmt.Errorf("payoutcurve: unknown model kind %q", c.Kind)
	}
}

// Predict returns the payout at the given integer rank, clamped to >= 0
// (spec.md §4.2). Returns ErrNotFitted if Fit has not succeeded.
func (c *Curve) Predict(rank int) (float64, error) {
	if !c.fitted {
		return 0, ErrNotFitted
	}
	r := float64(rank)
	var v float64
	switch c.Kind {
	case PiecewiseLinear:
		v = interpolate(c.ranks, c.payouts, r)
	case PowerLaw:
		v = powerLawEval(c.params, r)
	case Exponential:
		v = exponentialEval(c.params, r)
	case Hybrid:
		v = hybridEval(c.params, r)
	}
	return math.Max(0, v), nil
}

// powerLawEval evaluates a*r^(-b). Parameters are stored in log space
// (params = [log a, log b]) so an unconstrained optimizer never produces a
// non-positive a or b, satisfying the mandatory positivity bound.
func powerLawEval(params []float64, r float64) float64 {
	a, b := math.Exp(params[0]), math.Exp(params[1])
	return a * math.Pow(r, -b)
}

// exponentialEval evaluates a*e^(-b*r), same log-space positivity trick.
func exponentialEval(params []float64, r float64) float64 {
	a, b := math.Exp(params[0]), math.Exp(params[1])
	return a * math.Exp(-b*r)
}

// hybridEval evaluates a power-law for r<=c and a tangent-matched linear
// extension beyond c (spec.md §4.2). params = [log a, log b, log c].
func hybridEval(params []float64, r float64) float64 {
	a, b, c := math.Exp(params[0]), math.Exp(params[1]), math.Exp(params[2])
	if r <= c {
		return a * math.Pow(r, -b)
	}
	fc := a * math.Pow(c, -b)
	slope := -b * a * math.Pow(c, -b-1)
	return fc + slope*(r-c)
}

func (c *Curve) fitParametric(ranks, payouts []float64, nParams int, eval func([]float64, float64) float64) error {
	x0 := seededGuess(payouts, nParams)

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			return sumSquaredResiduals(params, ranks, payouts, eval)
		},
	}

	result, err := fitWithFallback(problem, x0)
	if err != nil {
		logger.GetLogger().WithField("model", c.Kind).WithField("error", err).Warn("payoutcurve: fit failed")
		return ErrCurveFit
	}

	c.params = result.X
	c.fitted = true
	c.computeGoodness(ranks, payouts, func(r float64) float64 { return eval(c.params, r) })
	return nil
}

func (c *Curve) fitHybrid(ranks, payouts []float64) error {
	minRank, maxRank := ranks[0], ranks[0]
	for _, r := range ranks[1:] {
		if r < minRank {
			minRank = r
		}
		if r > maxRank {
			maxRank = r
		}
	}
	cGuess := minRank + (maxRank-minRank)*0.2
	if cGuess < 1 {
		cGuess = 1
	}
	x0 := append(seededGuess(payouts, 2), math.Log(cGuess))

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			return sumSquaredResiduals(params, ranks, payouts, hybridEval)
		},
	}

	result, err := fitWithFallback(problem, x0)
	if err != nil {
		logger.GetLogger().WithField("model", c.Kind).WithField("error", err).Warn("payoutcurve: hybrid fit failed")
		return ErrCurveFit
	}

	c.params = result.X
	c.fitted = true
	c.computeGoodness(ranks, payouts, func(r float64) float64 { return hybridEval(c.params, r) })
	return nil
}

func (c *Curve) fitPiecewiseLinear(ranks, payouts []float64) error {
	idx := make([]int, len(ranks))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return ranks[idx[i]] < ranks[idx[j]] })

	sortedRanks := make([]float64, len(ranks))
	sortedPayouts := make([]float64, len(payouts))
	for i, j := range idx {
		sortedRanks[i] = ranks[j]
		sortedPayouts[i] = payouts[j]
	}
	c.ranks = sortedRanks
	c.payouts = sortedPayouts
	c.fitted = true
	c.computeGoodness(ranks, payouts, func(r float64) float64 { return interpolate(c.ranks, c.payouts, r) })
	return nil
}

// fitWithFallback runs NelderMead first (derivative-free, robust to the
// log-space reparameterization's curvature) and falls back to BFGS if it
// doesn't report a convergence status, mirroring the pack's penalty-method
// optimizers' two-method fallback.
func fitWithFallback(problem optimize.Problem, x0 []float64) (*optimize.Result, error) {
	settings := &optimize.Settings{FuncEvaluations: 5000}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil || !isConverged(result.Status) {
		result, err = optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	}
	if err != nil {
		return nil, err
	}
	if !isConverged(result.Status) {
		return nil, fmt.Errorf("payoutcurve: solver status %v", result.Status)
	}
	return result, nil
}

func isConverged(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.FunctionConvergence, optimize.GradientThreshold, optimize.StepConvergence:
		return true
	default:
		return false
	}
}

func sumSquaredResiduals(params, ranks, payouts []float64, eval func([]float64, float64) float64) float64 {
	var sum float64
	for i, r := range ranks {
		resid := eval(params, r) - payouts[i]
		sum += resid * resid
	}
	return sum
}

// seededGuess derives a deterministic initial guess from payouts[0] and a
// typical exponent near 1, per spec.md §4.2.
func seededGuess(payouts []float64, nParams int) []float64 {
	a := payouts[0]
	if a <= 0 {
		a = 1
	}
	guess := make([]float64, nParams)
	guess[0] = math.Log(a)
	if nParams > 1 {
		guess[1] = math.Log(1.0)
	}
	return guess
}

func interpolate(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		if n == 1 {
			return ys[0]
		}
		return extrapolate(xs[0], ys[0], xs[1], ys[1], x)
	}
	if x >= xs[n-1] {
		return extrapolate(xs[n-2], ys[n-2], xs[n-1], ys[n-1], x)
	}
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

func extrapolate(x0, y0, x1, y1, x float64) float64 {
	if x1 == x0 {
		return y0
	}
	slope := (y1 - y0) / (x1 - x0)
	return y0 + slope*(x-x0)
}

func (c *Curve) computeGoodness(ranks, payouts []float64, predict func(float64) float64) {
	residuals := make([]float64, len(ranks))
	for i, r := range ranks {
		residuals[i] = predict(r) - payouts[i]
	}
	var ss float64
	for _, res := range residuals {
		ss += res * res
	}
	c.RMSE = math.Sqrt(ss / float64(len(residuals)))

	mean := stat.Mean(payouts, nil)
	var ssTot float64
	for _, p := range payouts {
		ssTot += (p - mean) * (p - mean)
	}
	if ssTot == 0 {
		c.R2 = 1
	} else {
		c.R2 = 1 - ss/ssTot
	}
}
