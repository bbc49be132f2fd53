package portfolio

import (
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/milp"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

// buildBase constructs a fresh MILP with one binary selector variable per
// driver (driverVar[i] is driver i's variable index) and the DraftKings
// roster/salary/stacking/lock/exclude constraints from spec.md §4.4.3. The
// caller still needs to add the objective, diversity penalty, and exposure
// cuts.
func buildBase(drivers []model.DriverRecord, spec model.ConstraintSpec) (*milp.Problem, []int) {
	p := &milp.Problem{Objective: milp.LinExpr{}}
	d := len(drivers)
	driverVar := make([]int, d)

	locked := toSet(spec.Drivers.Locked)
	excluded := toSet(spec.Drivers.Excluded)
	for _, v := range spec.Drivers.Vetoes {
		excluded[v.DriverID] = struct{}{}
	}

	for i, drv := range drivers {
		lo, hi := 0.0, 1.0
		if _, ok := locked[drv.DriverID]; ok {
			lo = 1
		}
		if _, ok := excluded[drv.DriverID]; ok {
			hi = 0
		}
		driverVar[i] = p.AddVar(milp.Var{Name: "x", Kind: milp.Binary, Lo: lo, Hi: hi})
	}

	// Roster size: Σ x_i = n_roster.
	rosterExpr := milp.LinExpr{}
	for _, vi := range driverVar {
		rosterExpr[vi] = 1
	}
	p.AddConstraint(milp.Constraint{Name: "roster_size", Expr: rosterExpr, Sense: milp.EQ, RHS: float64(spec.NRoster)})

	// Salary cap: Σ salary_i·x_i <= cap.
	salaryExpr := milp.LinExpr{}
	for i, vi := range driverVar {
		salaryExpr[vi] = float64(drivers[i].Salary)
	}
	p.AddConstraint(milp.Constraint{Name: "salary_cap", Expr: salaryExpr, Sense: milp.LE, RHS: float64(spec.SalaryCap)})

	// Team stacking: semi-continuous via a binary y_t per team.
	byTeam := make(map[string][]int)
	for i, drv := range drivers {
		byTeam[drv.Team] = append(byTeam[drv.Team], driverVar[i])
	}
	minStack, maxStack := spec.MinStack, spec.MaxStack
	if minStack <= 0 {
		minStack = 2
	}
	if maxStack <= 0 {
		maxStack = 3
	}
	for team, vars := range byTeam {
		yt := p.AddVar(milp.Var{Name: "y_" + team, Kind: milp.Binary, Lo: 0, Hi: 1})

		upper := milp.LinExpr{}
		for _, vi := range vars {
			upper[vi] = 1
		}
		upper[yt] = -float64(len(vars))
		p.AddConstraint(milp.Constraint{Name: "stack_upper_" + team, Expr: upper, Sense: milp.LE, RHS: 0})

		lower := milp.LinExpr{}
		for _, vi := range vars {
			lower[vi] = 1
		}
		lower[yt] = -float64(minStack)
		p.AddConstraint(milp.Constraint{Name: "stack_lower_" + team, Expr: lower, Sense: milp.GE, RHS: 0})

		cap := milp.LinExpr{}
		for _, vi := range vars {
			cap[vi] = 1
		}
		p.AddConstraint(milp.Constraint{Name: "stack_cap_" + team, Expr: cap, Sense: milp.LE, RHS: float64(maxStack)})
	}

	return p, driverVar
}

// applyExposureCuts zeroes out drivers (and, transitively, their team's
// stacking indicator) that have already reached their exposure cap
// (spec.md §4.4.4). It mutates the variable bounds directly rather than
// adding constraints, since a fixed bound is cheaper for the solver than an
// extra row and is exactly equivalent for a binary variable.
func applyExposureCuts(p *milp.Problem, drivers []model.DriverRecord, driverVar []int, book *model.ExposureBook, maxDriverExposure, maxTeamExposure float64) {
	if book.Issued == 0 {
		return
	}
	teamCapped := make(map[string]bool)
	if maxTeamExposure > 0 && maxTeamExposure < 1 {
		for team := range book.TeamCount {
			if book.TeamExposure(team) >= maxTeamExposure {
				teamCapped[team] = true
			}
		}
	}
	if maxDriverExposure <= 0 || maxDriverExposure >= 1 {
		maxDriverExposure = 1.0
	}
	for i, drv := range drivers {
		vi := driverVar[i]
		if book.DriverExposure(drv.DriverID) >= maxDriverExposure && maxDriverExposure < 1 {
			p.Vars[vi].Hi = 0
			if p.Vars[vi].Lo > 0 {
				p.Vars[vi].Lo = 0
			}
		}
		if teamCapped[drv.Team] {
			p.Vars[vi].Hi = 0
		}
	}
}

// applyDiversityPenalty subtracts w_div·Σ_{i∈L_j} x_i from the objective
// for every previously emitted lineup, penalizing overlap with that lineup
// (spec.md §4.4.5).
func applyDiversityPenalty(p *milp.Problem, driverVar []int, prior []model.Lineup, weight float64) {
	if weight <= 0 {
		return
	}
	for _, lineup := range prior {
		for _, id := range lineup.DriverIDs {
			p.Objective[driverVar[id]] -= weight
		}
	}
}

func toSet(ids []int) map[int]struct{} {
	s := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}
