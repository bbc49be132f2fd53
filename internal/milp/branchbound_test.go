package milp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knapsack(values, weights []float64, capacity float64) *Problem {
	p := &Problem{Maximize: true, Objective: LinExpr{}}
	for _, v := range values {
		idx := p.AddVar(Var{Name: "x", Kind: Binary, Lo: 0, Hi: 1})
		p.Objective[idx] = v
	}
	expr := LinExpr{}
	for i, w := range weights {
		expr[i] = w
	}
	p.AddConstraint(Constraint{Name: "capacity", Expr: expr, Sense: LE, RHS: capacity})
	return p
}

func TestSolve_KnapsackFindsOptimalIntegerSolution(t *testing.T) {
	p := knapsack([]float64{60, 100, 120}, []float64{10, 20, 30}, 50)
	sol := Solve(context.Background(), p, time.Second)

	require.Equal(t, Optimal, sol.Status)
	assert.InDelta(t, 220, sol.Objective, 1e-6)
	assert.InDelta(t, 0, sol.Values[0], 1e-6)
	assert.InDelta(t, 1, sol.Values[1], 1e-6)
	assert.InDelta(t, 1, sol.Values[2], 1e-6)
}

func TestSolve_InfeasibleWhenConstraintsConflict(t *testing.T) {
	p := &Problem{Maximize: true, Objective: LinExpr{0: 1}}
	p.AddVar(Var{Name: "x", Kind: Binary, Lo: 0, Hi: 1})
	p.AddConstraint(Constraint{Name: "a", Expr: LinExpr{0: 1}, Sense: GE, RHS: 2})

	sol := Solve(context.Background(), p, time.Second)
	assert.Equal(t, Infeasible, sol.Status)
}

func TestSolve_RespectsFixedBounds(t *testing.T) {
	p := knapsack([]float64{60, 100, 120}, []float64{10, 20, 30}, 50)
	// Fix item 0 to be excluded and item 2 to be locked in.
	p.Vars[0].Lo, p.Vars[0].Hi = 0, 0
	p.Vars[2].Lo, p.Vars[2].Hi = 1, 1

	sol := Solve(context.Background(), p, time.Second)
	require.Equal(t, Optimal, sol.Status)
	assert.InDelta(t, 0, sol.Values[0], 1e-6)
	assert.InDelta(t, 1, sol.Values[2], 1e-6)
}

func TestSolve_NoVariablesReturnsError(t *testing.T) {
	p := &Problem{Maximize: true, Objective: LinExpr{}}
	sol := Solve(context.Background(), p, time.Second)
	assert.Equal(t, Error, sol.Status)
}

func TestSolve_ContextCancellationStopsSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := knapsack([]float64{60, 100, 120}, []float64{10, 20, 30}, 50)
	sol := Solve(ctx, p, time.Second)
	assert.Contains(t, []Status{Infeasible, TimeLimit}, sol.Status)
}

type boundedTail struct {
	lo, hi float64
	weight float64
}

func (b boundedTail) ZetaBounds() (float64, float64) { return b.lo, b.hi }
func (b boundedTail) Evaluate(x []float64, zeta float64) float64 {
	return zeta
}
func (b boundedTail) BestZeta(x []float64) float64 { return b.hi }
func (b boundedTail) Prefix() string                { return "zeta" }
func (b boundedTail) LinearMajorant(lo, hi []float64, zetaVar int) (LinExpr, float64) {
	return LinExpr{zetaVar: 1}, 0
}

func TestSolve_TailTermContributesToObjective(t *testing.T) {
	p := &Problem{Maximize: true, Objective: LinExpr{}}
	idx := p.AddVar(Var{Name: "x", Kind: Binary, Lo: 0, Hi: 1})
	p.Objective[idx] = 1
	zetaIdx := p.AddVar(Var{Name: "zeta", Kind: Continuous, Lo: 0, Hi: 10})
	p.TailTerms = append(p.TailTerms, TailTerm{
		ZetaVar:      zetaIdx,
		Weight:       1,
		Contribution: boundedTail{lo: 0, hi: 10, weight: 1},
	})

	sol := Solve(context.Background(), p, time.Second)
	require.Equal(t, Optimal, sol.Status)
	assert.InDelta(t, 11, sol.Objective, 1e-6)
	assert.InDelta(t, 10, sol.Values[zetaIdx], 1e-6)
}
