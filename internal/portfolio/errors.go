package portfolio

import "errors"

var (
	// ErrUnbounded indicates a missing bound on u_k or ζ — a fatal bug in
	// the objective formulation, never an expected runtime outcome
	// (spec.md §4.4.8).
	ErrUnbounded = errors.New("portfolio: MILP reported unbounded — objective is missing a mandatory bound")
	// ErrNoFeasibleLineup indicates the very first lineup in a portfolio had
	// no feasible roster under the given constraints.
	ErrNoFeasibleLineup = errors.New("portfolio: no feasible lineup under the given constraints")
	// ErrSolverTimeout indicates the solver hit its time limit on the first
	// lineup with no incumbent at all.
	ErrSolverTimeout = errors.New("portfolio: solver timed out before finding any feasible lineup")
)
