// Package objective translates a scenario matrix and a set of binary
// lineup-selector variables into MILP auxiliary variables, constraints, and
// an objective expression, per spec.md §4.3. It composes problems; it never
// solves them.
package objective

import (
	"fmt"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/milp"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
)

// DefaultAlphas and DefaultWeights are the multi-CVaR defaults named in
// spec.md §4.3: 0.70·CVaR(0.99) + 0.30·CVaR(0.95).
var (
	DefaultAlphas  = []float64{0.99, 0.95}
	DefaultWeights = []float64{0.70, 0.30}
)

func validateInputs(matrix *scenario.Matrix, alpha float64) error {
	if matrix == nil || matrix.S() == 0 {
		return ErrEmptyScenarios
	}
	if alpha <= 0 || alpha >= 1 {
		return ErrInvalidAlpha
	}
	return nil
}

// AddMean adds the mean-points objective: maximize Σ_i mean_i·x_i.
func AddMean(p *milp.Problem, matrix *scenario.Matrix, driverVarIndex []int) error {
	if matrix == nil || matrix.S() == 0 {
		return ErrEmptyScenarios
	}
	means := matrix.ColumnMeans()
	if p.Objective == nil {
		p.Objective = milp.LinExpr{}
	}
	for i, vi := range driverVarIndex {
		p.Objective[vi] += means[i]
	}
	p.Maximize = true
	return nil
}

// BuildBoundedUpperTailCVaR returns the raw ζ bounds and CVaRTerm for an
// upper-tail CVaR quantile without registering them on a problem — the
// "returns the raw auxiliary variables plus a CVaR expression" half of the
// builder's dual API (spec.md §4.3), letting callers compose custom
// weightings.
func BuildBoundedUpperTailCVaR(matrix *scenario.Matrix, driverVarIndex []int, nRoster int, alpha float64, prefix string) (*CVaRTerm, float64, float64, error) {
	if err := validateInputs(matrix, alpha); err != nil {
		return nil, 0, 0, err
	}
	means := matrix.ColumnMeans()
	minMean, maxMean := means[0], means[0]
	for _, m := range means[1:] {
		if m < minMean {
			minMean = m
		}
		if m > maxMean {
			maxMean = m
		}
	}
	minCell, maxCell := matrix.MinMaxCell()
	zetaLo := float64(nRoster) * minMean
	zetaHi := float64(nRoster) * maxMean
	maxExcess := float64(nRoster) * (maxCell - minCell)

	term := &CVaRTerm{
		Matrix:         matrix,
		DriverVarIndex: driverVarIndex,
		Alpha:          alpha,
		ZetaLo:         zetaLo,
		ZetaHi:         zetaHi,
		MaxExcess:      maxExcess,
		NamePrefix:     prefix,
	}
	return term, zetaLo, zetaHi, nil
}

// AddBoundedUpperTailCVaR registers one upper-tail CVaR quantile on p with
// the given linear combination weight, adding the prefix-disambiguated ζ
// variable (spec.md §4.3's mandatory-disambiguation requirement) and
// returning its variable index.
func AddBoundedUpperTailCVaR(p *milp.Problem, matrix *scenario.Matrix, driverVarIndex []int, nRoster int, alpha, weight float64, prefix string) (int, error) {
	term, zetaLo, zetaHi, err := BuildBoundedUpperTailCVaR(matrix, driverVarIndex, nRoster, alpha, prefix)
	if err != nil {
		return -1, err
	}
	zetaIdx := p.AddVar(milp.Var{Name: prefix + "_zeta", Kind: milp.Continuous, Lo: zetaLo, Hi: zetaHi})
	p.TailTerms = append(p.TailTerms, milp.TailTerm{ZetaVar: zetaIdx, Weight: weight, Contribution: term})
	p.Maximize = true
	return zetaIdx, nil
}

// AddMultiCVaR registers a linear combination of upper-tail CVaR quantiles,
// defaulting to DefaultAlphas/DefaultWeights when alphas is empty. Each
// quantile gets its own ("q{index}") variable prefix so their ζ variables
// never collide.
func AddMultiCVaR(p *milp.Problem, matrix *scenario.Matrix, driverVarIndex []int, nRoster int, alphas, weights []float64) ([]int, error) {
	if len(alphas) == 0 {
		alphas = DefaultAlphas
		weights = DefaultWeights
	}
	if len(alphas) != len(weights) {
		return nil, ErrMismatchedWeights
	}
	zetaIdxs := make([]int, len(alphas))
	for j, alpha := range alphas {
		prefix := fmt.Sprintf("q%d", j)
		idx, err := AddBoundedUpperTailCVaR(p, matrix, driverVarIndex, nRoster, alpha, weights[j], prefix)
		if err != nil {
			return nil, err
		}
		zetaIdxs[j] = idx
	}
	return zetaIdxs, nil
}

// StandardCVaRLoss evaluates the classical Rockafellar-Uryasev
// minimization-form CVaR of losses (negative points) at a fixed selection —
// a sub-expression for downstream risk-budget checks, never the primary
// tournament objective (spec.md §4.3 item 2).
func StandardCVaRLoss(matrix *scenario.Matrix, driverVarIndex []int, alpha float64) (func(x []float64) float64, error) {
	if err := validateInputs(matrix, alpha); err != nil {
		return nil, err
	}
	return func(x []float64) float64 {
		weights := make([]float64, matrix.D())
		for i, vi := range driverVarIndex {
			weights[i] = x[vi]
		}
		points := matrix.WeightedSeries(weights)
		losses := make([]float64, len(points))
		for i, v := range points {
			losses[i] = -v
		}
		// ζ* for the minimization form is the VaR of losses; golden-section
		// search over the observed loss range keeps this symmetric with the
		// maximization builder instead of requiring a separate top-k pass.
		lo, hi := minMax(losses)
		f := func(zeta float64) float64 {
			var sum float64
			for _, l := range losses {
				if u := l - zeta; u > 0 {
					sum += u
				}
			}
			return -(zeta + sum/((1-alpha)*float64(len(losses))))
		}
		bestZeta := milp.GoldenSectionMax(f, lo, hi, 80)
		return -f(bestZeta)
	}, nil
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
