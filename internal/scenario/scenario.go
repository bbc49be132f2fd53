// Package scenario defines the ScenarioSource collaborator contract and the
// immutable ScenarioMatrix it produces, plus a cache that makes repeated
// lineup solves against the same (slate, N) pair re-sample exactly once.
package scenario

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Matrix is an immutable (S, D) driver-points matrix: row k is the
// driver-points outcome vector under scenario k. Column index identifies a
// driver within the request; row order carries no semantics.
type Matrix struct {
	dense *mat.Dense
	s, d  int
}

// NewMatrix wraps a dense (S x D) row-major slice of slices into an
// immutable Matrix. It panics if rows are ragged, matching the teacher's
// fail-fast posture for malformed scenario data (caught at ingress, never
// at solve time).
func NewMatrix(rows [][]float64) *Matrix {
	s := len(rows)
	if s == 0 {
		return &Matrix{dense: mat.NewDense(0, 0, nil), s: 0, d: 0}
	}
	d := len(rows[0])
	flat := make([]float64, 0, s*d)
	for _, row := range rows {
		if len(row) != d {
			panic("scenario: ragged scenario matrix")
		}
		flat = append(flat, row...)
	}
	return &Matrix{dense: mat.NewDense(s, d, flat), s: s, d: d}
}

// S returns the scenario count.
func (m *Matrix) S() int { return m.s }

// D returns the driver (column) count.
func (m *Matrix) D() int { return m.d }

// Row returns scenario k's driver-points vector. The returned slice aliases
// the underlying dense storage and must not be mutated.
func (m *Matrix) Row(k int) []float64 {
	return m.dense.RawRowView(k)
}

// Col copies driver i's points across all scenarios.
func (m *Matrix) Col(i int) []float64 {
	out := make([]float64, m.s)
	mat.Col(out, i, m.dense)
	return out
}

// SubsetRows returns a new Matrix containing only the given scenario row
// indices, in the given order, with column order unchanged. Used by
// regime-aware generation to carve out the scenario subset classified into
// one regime.
func (m *Matrix) SubsetRows(indices []int) *Matrix {
	rows := make([][]float64, len(indices))
	for i, idx := range indices {
		rows[i] = append([]float64(nil), m.Row(idx)...)
	}
	return NewMatrix(rows)
}

// LineupSeries computes, for each scenario, the sum of points across the
// given driver column indices — the per-scenario series p_k(x) from
// spec.md §4.3 — via a dense mat-vec product rather than an element-by-
// element loop over S, per the §9 performance contract.
func (m *Matrix) LineupSeries(driverIDs []int) []float64 {
	weights := make([]float64, m.d)
	for _, id := range driverIDs {
		weights[id] = 1
	}
	return m.WeightedSeries(weights)
}

// WeightedSeries computes, for each scenario, the weighted sum of driver
// points using an arbitrary (possibly fractional) per-driver weight vector
// — the generalization of LineupSeries used when evaluating a relaxed MILP
// node whose selection variables are not yet integral.
func (m *Matrix) WeightedSeries(weights []float64) []float64 {
	selector := mat.NewVecDense(m.d, append([]float64(nil), weights...))
	out := mat.NewVecDense(m.s, nil)
	out.MulVec(m.dense, selector)
	return out.RawVector().Data
}

// WeightedColumnSums computes, for each driver column i, Σ_k weights[k]·M[k,i]
// — the transpose of WeightedSeries. Branch-and-bound's CVaR relaxation uses
// it to turn a per-scenario secant slope into a per-driver linear
// coefficient without an element-by-element loop over S×D.
func (m *Matrix) WeightedColumnSums(weights []float64) []float64 {
	rowVec := mat.NewVecDense(m.s, append([]float64(nil), weights...))
	out := mat.NewVecDense(m.d, nil)
	out.MulVec(m.dense.T(), rowVec)
	return out.RawVector().Data
}

// ColumnMeans returns the per-driver mean projected points across all
// scenarios — the "mean_i" input to the Mean objective builder.
func (m *Matrix) ColumnMeans() []float64 {
	means := make([]float64, m.d)
	for i := 0; i < m.d; i++ {
		col := m.Col(i)
		var sum float64
		for _, v := range col {
			sum += v
		}
		means[i] = sum / float64(m.s)
	}
	return means
}

// MinMaxCell returns the minimum and maximum cell value across the whole
// matrix, used to bound ζ and u_k in the upper-tail CVaR builder (§4.3).
func (m *Matrix) MinMaxCell() (min, max float64) {
	raw := m.dense.RawMatrix().Data
	if len(raw) == 0 {
		return 0, 0
	}
	min, max = raw[0], raw[0]
	for _, v := range raw[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// DriverIndexMap is the bidirectional index map established once at request
// ingress (spec.md §9): opaque display ids on one side, dense column
// indices on the other.
type DriverIndexMap struct {
	ToIndex map[string]int
	ToID    map[int]string
}

// NewDriverIndexMap builds the bidirectional map from an ordered list of
// display ids; index i is assigned to displayIDs[i].
func NewDriverIndexMap(displayIDs []string) DriverIndexMap {
	m := DriverIndexMap{
		ToIndex: make(map[string]int, len(displayIDs)),
		ToID:    make(map[int]string, len(displayIDs)),
	}
	for i, id := range displayIDs {
		m.ToIndex[id] = i
		m.ToID[i] = id
	}
	return m
}

// Source is the pluggable stochastic scenario generator collaborator
// (spec.md §6.1). Implementations must be deterministic under an identical
// seed and spec, and must not mutate driver ordering within a request.
type Source interface {
	Sample(ctx context.Context, nScenarios int, seed *int64) (*Matrix, DriverIndexMap, error)
}
