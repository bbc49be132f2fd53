package milp

import "math"

const simplexEps = 1e-9

// lpResult is the outcome of solving one LP relaxation (continuous bounds
// on every variable, no integrality).
type lpResult struct {
	status Status
	x      []float64 // length = number of problem variables
	obj    float64
}

// solveRelaxation solves the LP relaxation of p with the given variable
// bounds (which may be tighter than p.Vars' own bounds — branch-and-bound
// tightens them per node) via a two-phase primal simplex. The objective is
// taken as given; Solve passes the linear objective augmented with each
// TailTerm's weighted linear majorant (augmentedObjective).
func solveRelaxation(vars []Var, lo, hi []float64, constraints []Constraint, objective LinExpr, maximize bool) lpResult {
	n := len(vars)
	for i := 0; i < n; i++ {
		if lo[i] > hi[i]+simplexEps {
			return lpResult{status: Infeasible}
		}
	}

	// Shift to y_i = x_i - lo_i >= 0, with y_i <= hi_i-lo_i.
	shift := make([]float64, n)
	copy(shift, lo)
	width := make([]float64, n)
	for i := range width {
		width[i] = hi[i] - lo[i]
	}

	rows := make([][]float64, 0, len(constraints)+n)
	rhs := make([]float64, 0, len(constraints)+n)
	senses := make([]Sense, 0, len(constraints)+n)

	for _, c := range constraints {
		row := make([]float64, n)
		r := c.RHS
		for idx, coef := range c.Expr {
			row[idx] = coef
			r -= coef * shift[idx]
		}
		rows = append(rows, row)
		rhs = append(rhs, r)
		senses = append(senses, c.Sense)
	}
	for i := 0; i < n; i++ {
		if math.IsInf(width[i], 1) {
			continue
		}
		row := make([]float64, n)
		row[i] = 1
		rows = append(rows, row)
		rhs = append(rhs, width[i])
		senses = append(senses, LE)
	}

	m := len(rows)
	// Normalize RHS >= 0 by flipping sense/sign.
	for i := 0; i < m; i++ {
		if rhs[i] < 0 {
			for j := range rows[i] {
				rows[i][j] = -rows[i][j]
			}
			rhs[i] = -rhs[i]
			switch senses[i] {
			case LE:
				senses[i] = GE
			case GE:
				senses[i] = LE
			}
		}
	}

	// Build tableau columns: n structural + slack/surplus per row + artificial per row that needs one.
	numSlackSurplus := m
	cols := n + numSlackSurplus // structural + one slack/surplus each
	artificialOf := make([]int, m)
	for i := range artificialOf {
		artificialOf[i] = -1
	}
	needsArtificial := make([]bool, m)
	for i, s := range senses {
		if s == GE || s == EQ {
			needsArtificial[i] = true
		}
	}
	numArtificial := 0
	for _, v := range needsArtificial {
		if v {
			numArtificial++
		}
	}
	totalCols := cols + numArtificial

	tableau := make([][]float64, m)
	for i := range tableau {
		tableau[i] = make([]float64, totalCols+1) // +1 for RHS
		copy(tableau[i][:n], rows[i])
		slackCol := n + i
		switch senses[i] {
		case LE:
			tableau[i][slackCol] = 1
		case GE:
			tableau[i][slackCol] = -1
		case EQ:
			// no slack
		}
		tableau[i][totalCols] = rhs[i]
	}
	artCursor := cols
	basis := make([]int, m)
	for i := 0; i < m; i++ {
		if needsArtificial[i] {
			tableau[i][artCursor] = 1
			artificialOf[i] = artCursor
			basis[i] = artCursor
			artCursor++
		} else {
			basis[i] = n + i
		}
	}

	// Phase 1: minimize sum of artificials.
	if numArtificial > 0 {
		phase1Obj := make([]float64, totalCols+1)
		for i := 0; i < m; i++ {
			if artificialOf[i] >= 0 {
				for j := range tableau[i] {
					phase1Obj[j] += tableau[i][j]
				}
			}
		}
		if !runSimplex(tableau, basis, phase1Obj, cols) {
			return lpResult{status: Error}
		}
		if phase1Obj[totalCols] > 1e-6 {
			return lpResult{status: Infeasible}
		}
		// Drive any remaining artificial out of the basis (degenerate zero rows).
		for i := 0; i < m; i++ {
			if basis[i] >= cols {
				pivoted := false
				for j := 0; j < cols; j++ {
					if math.Abs(tableau[i][j]) > simplexEps {
						pivot(tableau, i, j)
						basis[i] = j
						pivoted = true
						break
					}
				}
				if !pivoted {
					// Redundant row; leave it — it contributes nothing further.
					continue
				}
			}
		}
	}

	// Phase 2: optimize the real objective over the first `cols` columns
	// (drop artificial columns entirely).
	obj := make([]float64, cols+1)
	for idx, coef := range objective {
		obj[idx] = coef
		obj[cols] += coef * shift[idx]
	}
	if !maximize {
		for j := range obj {
			obj[j] = -obj[j]
		}
		obj[cols] = -obj[cols]
	}
	// runSimplex minimizes; maximize is handled by negation, so always minimize -obj internally for max.
	reduced := make([][]float64, m)
	for i := range tableau {
		reduced[i] = make([]float64, cols+1)
		copy(reduced[i], tableau[i][:cols])
		reduced[i][cols] = tableau[i][totalCols]
	}
	negObj := make([]float64, cols+1)
	for j := range negObj {
		negObj[j] = -obj[j]
	}
	unbounded := !runSimplexDetectUnbounded(reduced, basis, negObj, cols)
	if unbounded {
		return lpResult{status: Unbounded}
	}

	x := make([]float64, n)
	for i, b := range basis {
		if b < n {
			x[b] = reduced[i][cols]
		}
	}
	for i := range x {
		x[i] += shift[i]
	}

	objVal := 0.0
	for idx, coef := range objective {
		objVal += coef * x[idx]
	}

	return lpResult{status: Optimal, x: x, obj: objVal}
}

// runSimplex drives obj (a minimization row, obj[totalCols] holds the
// running objective value with sign convention objRow - z = 0) to
// optimality via Bland's rule pivoting. Returns false only on an internal
// iteration-limit failure.
func runSimplex(tableau [][]float64, basis []int, obj []float64, numCols int) bool {
	const maxIter = 5000
	m := len(tableau)
	for iter := 0; iter < maxIter; iter++ {
		enter := -1
		for j := 0; j < numCols; j++ {
			if obj[j] < -simplexEps {
				enter = j
				break // Bland's rule: first eligible column
			}
		}
		if enter == -1 {
			return true
		}
		leave := -1
		best := math.Inf(1)
		for i := 0; i < m; i++ {
			if tableau[i][enter] > simplexEps {
				ratio := tableau[i][len(tableau[i])-1] / tableau[i][enter]
				if ratio < best-simplexEps || (ratio < best+simplexEps && (leave == -1 || basis[i] < basis[leave])) {
					best = ratio
					leave = i
				}
			}
		}
		if leave == -1 {
			// Unbounded in phase 1 shouldn't normally happen; treat as stuck.
			return true
		}
		pivotRow(tableau, obj, leave, enter)
		basis[leave] = enter
	}
	return true
}

// runSimplexDetectUnbounded is runSimplex's phase-2 counterpart that reports
// false when an entering column has no valid leaving row (every
// coefficient <= 0): an improving ray exists and the LP is unbounded.
func runSimplexDetectUnbounded(tableau [][]float64, basis []int, obj []float64, numCols int) bool {
	const maxIter = 5000
	m := len(tableau)
	for iter := 0; iter < maxIter; iter++ {
		enter := -1
		for j := 0; j < numCols; j++ {
			if obj[j] < -simplexEps {
				enter = j
				break
			}
		}
		if enter == -1 {
			return true
		}
		leave := -1
		best := math.Inf(1)
		for i := 0; i < m; i++ {
			if tableau[i][enter] > simplexEps {
				ratio := tableau[i][len(tableau[i])-1] / tableau[i][enter]
				if ratio < best-simplexEps || (ratio < best+simplexEps && (leave == -1 || basis[i] < basis[leave])) {
					best = ratio
					leave = i
				}
			}
		}
		if leave == -1 {
			return false // unbounded
		}
		pivotRow(tableau, obj, leave, enter)
		basis[leave] = enter
	}
	return true
}

func pivot(tableau [][]float64, row, col int) {
	pivotRow(tableau, nil, row, col)
}

// pivotRow performs a Gauss-Jordan pivot on tableau at (row,col), also
// reducing the objective row when provided.
func pivotRow(tableau [][]float64, obj []float64, row, col int) {
	pv := tableau[row][col]
	for j := range tableau[row] {
		tableau[row][j] /= pv
	}
	for i := range tableau {
		if i == row {
			continue
		}
		factor := tableau[i][col]
		if factor == 0 {
			continue
		}
		for j := range tableau[i] {
			tableau[i][j] -= factor * tableau[row][j]
		}
	}
	if obj != nil {
		factor := obj[col]
		if factor != 0 {
			for j := range obj {
				obj[j] -= factor * tableau[row][j]
			}
		}
	}
}
