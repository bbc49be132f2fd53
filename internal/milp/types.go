// Package milp implements the small, in-process MILP backend consumed by
// the objective builders and the portfolio generator (spec.md §6.3). No
// CBC/GLPK binding exists anywhere in the reference corpus, so this is a
// from-scratch bounded-variable branch-and-bound solver: a primal simplex
// over the LP relaxation, branching on the most fractional binary variable,
// depth-first from a LIFO node stack (the x=1 child is explored first), with
// nodes pruned by relaxation bound and a hard time limit.
package milp

import "errors"

// ErrNoVariables describes a Problem with no variables. Solve does not
// return it; it reports such a Problem as a Solution with Status Error.
var ErrNoVariables = errors.New("milp: problem has no variables")

// VarKind distinguishes binary selector variables from bounded continuous
// auxiliaries (ζ, u_k).
type VarKind int

const (
	Continuous VarKind = iota
	Binary
)

// Var is one decision variable. Lo/Hi are the relaxation bounds; for Binary
// variables they start at [0,1] and are tightened to a single point by
// branching.
type Var struct {
	Name string
	Kind VarKind
	Lo   float64
	Hi   float64
}

// Sense is a constraint's comparison operator.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

// LinExpr is a sparse linear expression over variable indices.
type LinExpr map[int]float64

// Constraint is one linear (in)equality: Expr <sense> RHS.
type Constraint struct {
	Name  string
	Expr  LinExpr
	Sense Sense
	RHS   float64
}

// TailContribution is a concave, piecewise-linear function of the variable
// assignment contributed by a CVaR objective term (spec.md §4.3). It is
// evaluated directly rather than expanded into per-scenario u_k variables,
// which would otherwise add one continuous variable per scenario (up to
// 10,000) to every LP relaxation. The structure is mathematically
// equivalent to the Rockafellar-Uryasev linearization: for a fixed
// selection x, the optimal u_k is clamp(p_k(x)-ζ, 0, maxExcess), and the
// optimal ζ is found by a bounded unimodal (golden-section) search because
// ζ + (1/((1-α)S))·Σ clamp(...) is concave in ζ for fixed x.
type TailContribution interface {
	// ZetaBounds returns the mandated bound on ζ: [nRoster*minMean,
	// nRoster*maxMean] (spec.md §4.3). A bound is mandatory — an unbounded ζ
	// or unbounded u_k is exactly the failure mode §8's regression test
	// exercises.
	ZetaBounds() (lo, hi float64)
	// Evaluate returns the value of ζ + (1/((1-α)S))·Σ u_k(ζ) at the given
	// (possibly fractional) selection x and ζ.
	Evaluate(x []float64, zeta float64) float64
	// BestZeta returns the ζ in ZetaBounds() maximizing Evaluate(x, ·).
	BestZeta(x []float64) float64
	// Prefix is the caller-supplied name prefix disambiguating this term's
	// ζ variable from other quantiles in a multi-CVaR objective.
	Prefix() string
	// LinearMajorant returns a linear function over the Problem's full
	// variable index space — keyed by the driver selector variables this
	// term reads plus zetaVar — that upper-bounds Evaluate(x, ζ) for every x
	// in the box [lo,hi] and every ζ in ZetaBounds(). Branch-and-bound folds
	// this (scaled by the TailTerm's Weight) into the LP relaxation's
	// objective before solving each node, so the relaxation's own reported
	// value is a sound upper bound for pruning and the chosen fractional x
	// is actually steered by the tail contribution rather than ignoring it
	// until after the fact.
	LinearMajorant(lo, hi []float64, zetaVar int) (coeffs LinExpr, constant float64)
}

// TailTerm attaches a TailContribution to a Problem with its own ζ
// variable and a linear combination weight (spec.md §4.3's multi-CVaR
// weighted sum).
type TailTerm struct {
	ZetaVar      int // index into Problem.Vars
	Weight       float64
	Contribution TailContribution
}

// Problem is the MILP passed to Solve: binary/continuous variables, linear
// constraints, a linear objective over those variables, and zero or more
// TailTerms contributing a concave CVaR expression. Maximize selects
// maximization (used by every objective in spec.md §4.3 except the
// standard-CVaR sub-expression, which callers negate to reuse the same
// solver).
type Problem struct {
	Vars       []Var
	Constraints []Constraint
	Objective  LinExpr
	TailTerms  []TailTerm
	Maximize   bool
}

// AddVar appends a variable and returns its index.
func (p *Problem) AddVar(v Var) int {
	p.Vars = append(p.Vars, v)
	return len(p.Vars) - 1
}

// AddConstraint appends a constraint.
func (p *Problem) AddConstraint(c Constraint) {
	p.Constraints = append(p.Constraints, c)
}

// Status mirrors the solver status enum required by spec.md §6.3.
type Status int

const (
	Optimal Status = iota
	Feasible
	Infeasible
	Unbounded
	TimeLimit
	Error
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "Optimal"
	case Feasible:
		return "Feasible"
	case Infeasible:
		return "Infeasible"
	case Unbounded:
		return "Unbounded"
	case TimeLimit:
		return "TimeLimit"
	default:
		return "Error"
	}
}

// Solution is the result of a Solve call.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
}
