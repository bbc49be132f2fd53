package milp

import (
	"context"
	"math"
	"time"
)

// node is one branch-and-bound subproblem: the problem's variable bounds
// tightened by prior branching decisions.
type node struct {
	lo, hi []float64
}

// Solve runs best-effort branch-and-bound on p until it proves optimality,
// exhausts the search, or timeLimit elapses. It accepts context
// cancellation between nodes (spec.md §5).
func Solve(ctx context.Context, p *Problem, timeLimit time.Duration) Solution {
	n := len(p.Vars)
	if n == 0 {
		return Solution{Status: Error}
	}

	lo0 := make([]float64, n)
	hi0 := make([]float64, n)
	for i, v := range p.Vars {
		lo0[i] = v.Lo
		hi0[i] = v.Hi
	}

	deadline := time.Now().Add(timeLimit)
	stack := []node{{lo: lo0, hi: hi0}}

	var incumbent []float64
	incumbentVal := math.Inf(-1)
	haveIncumbent := false
	sawUnbounded := false
	timedOut := false

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			timedOut = true
			break
		}
		if time.Now().After(deadline) {
			timedOut = true
			break
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		objective, constAdj := augmentedObjective(p, cur.lo, cur.hi)
		rel := solveRelaxation(p.Vars, cur.lo, cur.hi, p.Constraints, objective, p.Maximize)
		switch rel.status {
		case Infeasible:
			continue
		case Unbounded:
			sawUnbounded = true
			continue
		case Error:
			continue
		}

		// rel.obj was solved against a linear majorant of every TailTerm, so
		// it's a sound upper bound on the best value achievable anywhere in
		// this node's subtree — unlike evaluating the true (tight) ζ/u_k
		// formula at the single point rel.x, which is not guaranteed to
		// dominate what a deeper, still-fractional branch could reach.
		pruneBound := rel.obj + constAdj
		if haveIncumbent && pruneBound <= incumbentVal+simplexEps {
			continue // cannot possibly improve on the incumbent
		}

		branchVar, fracBest := mostFractionalBinary(p.Vars, rel.x)
		if branchVar == -1 {
			// Integral (or no binaries to branch on): candidate leaf. Record
			// the exact tight value here, not the majorant used for pruning.
			trueValue, zetas := evaluateWithTailTerms(p, rel.x)
			if !haveIncumbent || trueValue > incumbentVal {
				incumbent = append([]float64(nil), rel.x...)
				for zi, zv := range zetas {
					incumbent[zi] = zv
				}
				incumbentVal = trueValue
				haveIncumbent = true
			}
			continue
		}
		_ = fracBest

		loFloor := append([]float64(nil), cur.lo...)
		hiFloor := append([]float64(nil), cur.hi...)
		hiFloor[branchVar] = 0
		loCeil := append([]float64(nil), cur.lo...)
		hiCeil := append([]float64(nil), cur.hi...)
		loCeil[branchVar] = 1

		stack = append(stack, node{lo: loFloor, hi: hiFloor}, node{lo: loCeil, hi: hiCeil})
	}

	if sawUnbounded && !haveIncumbent {
		return Solution{Status: Unbounded}
	}
	if !haveIncumbent {
		if timedOut {
			return Solution{Status: TimeLimit}
		}
		return Solution{Status: Infeasible}
	}

	status := Optimal
	if timedOut {
		status = Feasible
	}
	return Solution{Status: status, Values: incumbent, Objective: incumbentVal}
}

// augmentedObjective copies p.Objective and adds each TailTerm's linear
// majorant (scaled by its Weight) over the node's variable box, plus the sum
// of their constant offsets. Passing the result to solveRelaxation in place
// of the bare p.Objective makes the relaxation's own reported value a valid
// branch-and-bound bound and lets the chosen fractional x actually respond
// to the tail objective instead of an arbitrary feasible vertex.
func augmentedObjective(p *Problem, lo, hi []float64) (LinExpr, float64) {
	augmented := make(LinExpr, len(p.Objective))
	for idx, coef := range p.Objective {
		augmented[idx] = coef
	}
	var constant float64
	for _, t := range p.TailTerms {
		coeffs, c := t.Contribution.LinearMajorant(lo, hi, t.ZetaVar)
		for idx, coef := range coeffs {
			augmented[idx] += t.Weight * coef
		}
		constant += t.Weight * c
	}
	return augmented, constant
}

// evaluateWithTailTerms computes the full objective (linear part plus each
// TailTerm's concave contribution at its analytically optimal ζ) for x,
// returning the per-ζ-variable values so callers can populate Solution.
func evaluateWithTailTerms(p *Problem, x []float64) (value float64, zetaValues map[int]float64) {
	value = linExprValue(p.Objective, x)
	zetaValues = make(map[int]float64, len(p.TailTerms))
	for _, t := range p.TailTerms {
		z := t.Contribution.BestZeta(x)
		zetaValues[t.ZetaVar] = z
		value += t.Weight * t.Contribution.Evaluate(x, z)
	}
	return value, zetaValues
}

func linExprValue(e LinExpr, x []float64) float64 {
	var v float64
	for idx, coef := range e {
		v += coef * x[idx]
	}
	return v
}

// mostFractionalBinary returns the binary variable index farthest from an
// integer value, or -1 if every binary variable is already integral.
func mostFractionalBinary(vars []Var, x []float64) (idx int, frac float64) {
	idx = -1
	best := 1e-6
	for i, v := range vars {
		if v.Kind != Binary {
			continue
		}
		f := x[i] - math.Floor(x[i])
		dist := math.Min(f, 1-f)
		if dist > best {
			best = dist
			idx = i
			frac = dist
		}
	}
	return idx, frac
}
