package contest

import (
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/milp"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

// LeverageConfig tunes the leverage-aware objective extension (spec.md
// §4.5.4).
type LeverageConfig struct {
	Lambda                 float64
	MaxTotalOwnership      float64 // fraction, e.g. 0.6
	MinLowOwnershipDrivers int
	LowOwnershipThreshold  float64 // percent, default 10
}

// DefaultLeverageConfig returns spec.md's documented defaults.
func DefaultLeverageConfig() LeverageConfig {
	return LeverageConfig{
		Lambda:                 1.0,
		MaxTotalOwnership:      1.0,
		MinLowOwnershipDrivers: 2,
		LowOwnershipThreshold:  10,
	}
}

// ApplyLeveragePenalty subtracts λ_lev·(o_i/100)²·x_i from the objective for
// every driver with known ownership (spec.md §4.5.4's penalty term).
func ApplyLeveragePenalty(p *milp.Problem, driverVar []int, drivers []model.DriverRecord, lambda float64) {
	if lambda <= 0 {
		return
	}
	for i, drv := range drivers {
		if drv.ProjectedOwnership == nil {
			continue
		}
		o := *drv.ProjectedOwnership / 100
		p.Objective[driverVar[i]] -= lambda * o * o
	}
}

// ApplyOwnershipConstraints adds the total-ownership cap and the
// low-ownership-count floor (spec.md §4.5.4).
func ApplyOwnershipConstraints(p *milp.Problem, driverVar []int, drivers []model.DriverRecord, nRoster int, cfg LeverageConfig) {
	totalExpr := milp.LinExpr{}
	lowExpr := milp.LinExpr{}
	hasLow := false
	for i, drv := range drivers {
		if drv.ProjectedOwnership == nil {
			continue
		}
		o := *drv.ProjectedOwnership
		totalExpr[driverVar[i]] = o / 100
		if o < cfg.LowOwnershipThreshold {
			lowExpr[driverVar[i]] = 1
			hasLow = true
		}
	}
	if len(totalExpr) > 0 && cfg.MaxTotalOwnership > 0 {
		p.AddConstraint(milp.Constraint{
			Name:  "max_total_ownership",
			Expr:  totalExpr,
			Sense: milp.LE,
			RHS:   cfg.MaxTotalOwnership * float64(nRoster),
		})
	}
	if hasLow && cfg.MinLowOwnershipDrivers > 0 {
		p.AddConstraint(milp.Constraint{
			Name:  "min_low_ownership_drivers",
			Expr:  lowExpr,
			Sense: milp.GE,
			RHS:   float64(cfg.MinLowOwnershipDrivers),
		})
	}
}

// ComputeLeverageMetrics aggregates ownership exposure for an emitted
// lineup (spec.md §4.5.4), using the mean of l.ScenarioSeries (the lineup's
// per-scenario total points) as the proxy for total_points in
// leverage_score.
func ComputeLeverageMetrics(l model.Lineup, drivers map[int]model.DriverRecord, lambda float64) model.LeverageMetrics {
	var sum, max, totalPoints float64
	n := 0
	for _, v := range l.ScenarioSeries {
		totalPoints += v
	}
	if len(l.ScenarioSeries) > 0 {
		totalPoints /= float64(len(l.ScenarioSeries))
	}
	for _, id := range l.DriverIDs {
		drv, ok := drivers[id]
		if !ok || drv.ProjectedOwnership == nil {
			continue
		}
		o := *drv.ProjectedOwnership
		sum += o
		if o > max {
			max = o
		}
		n++
	}
	avg := 0.0
	if n > 0 {
		avg = sum / float64(n)
	}
	meanSquare := 0.0
	if n > 0 {
		var sq float64
		for _, id := range l.DriverIDs {
			drv, ok := drivers[id]
			if !ok || drv.ProjectedOwnership == nil {
				continue
			}
			o := *drv.ProjectedOwnership
			sq += o * o
		}
		meanSquare = sq / float64(n)
	}
	return model.LeverageMetrics{
		AvgOwnership:   avg,
		MaxOwnership:   max,
		TotalOwnership: sum,
		LeverageScore:  totalPoints - lambda*meanSquare/100,
	}
}

