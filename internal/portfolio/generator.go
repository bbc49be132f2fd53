// Package portfolio implements the Portfolio Generator (C4, spec.md §4.4):
// it wires the MILP solver and the objective builders into a
// DraftKings-compliant multi-lineup search with exposure limits, diversity
// penalties, and mean-baseline tail validation. It works on a scenario
// matrix passed in by the caller; it does not use the scenario cache.
package portfolio

import (
	"context"
	"fmt"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/contest"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/milp"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/objective"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/tailmetrics"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/pkg/logger"
)

// Generate builds up to cfg.NLineups lineups against matrix/spec, one MILP
// solve per lineup, applying exposure cuts and a diversity penalty before
// each subsequent solve (spec.md §4.4.1-§4.4.5). drivers must be ordered by
// DriverID 0..D-1 matching matrix's column order.
func Generate(ctx context.Context, matrix *scenario.Matrix, drivers []model.DriverRecord, spec model.ConstraintSpec, cfg Config) (*model.Portfolio, error) {
	log := logger.WithComponent("portfolio")
	book := model.NewExposureBook()
	driverByID := make(map[int]model.DriverRecord, len(drivers))
	for _, d := range drivers {
		driverByID[d.DriverID] = d
	}

	var lineups []model.Lineup
	status := model.StatusComplete

	for n := 0; n < cfg.NLineups; n++ {
		select {
		case <-ctx.Done():
			status = model.StatusPartial
			goto done
		default:
		}

		p, driverVar := buildBase(drivers, spec)
		applyExposureCuts(p, drivers, driverVar, book, cfg.MaxDriverExposure, cfg.MaxTeamExposure)
		applyDiversityPenalty(p, driverVar, lineups, cfg.DiversityWeight)

		if err := addObjective(p, matrix, driverVar, spec.NRoster, cfg); err != nil {
			return nil, err
		}

		if cfg.LeverageEnabled {
			contest.ApplyLeveragePenalty(p, driverVar, drivers, cfg.Leverage.Lambda)
			contest.ApplyOwnershipConstraints(p, driverVar, drivers, spec.NRoster, cfg.Leverage)
		}

		sol := milp.Solve(ctx, p, cfg.TimeLimitPerLineup)

		switch sol.Status {
		case milp.Unbounded:
			return nil, ErrUnbounded
		case milp.Infeasible:
			if n == 0 {
				return nil, ErrNoFeasibleLineup
			}
			status = model.StatusPartial
			goto done
		case milp.TimeLimit:
			if n == 0 && len(sol.Values) == 0 {
				return nil, ErrSolverTimeout
			}
			if len(sol.Values) == 0 {
				status = model.StatusPartial
				goto done
			}
			// Fall through: a TimeLimit solve with an incumbent is usable,
			// but the portfolio is marked partial since the search never
			// confirmed optimality and was cut short of NLineups.
			status = model.StatusPartial
		case milp.Optimal, milp.Feasible:
			// full lineup, continue normally
		default:
			log.WithField("status", sol.Status.String()).Warn("unexpected solver status, truncating portfolio")
			status = model.StatusPartial
			goto done
		}

		lineup := extractLineup(matrix, drivers, driverVar, sol, cfg.resolvedAlphas())
		if cfg.LeverageEnabled {
			lev := contest.ComputeLeverageMetrics(lineup, driverByID, cfg.Leverage.Lambda)
			lineup.Leverage = &lev
		}
		lineups = append(lineups, lineup)
		book.Accept(lineup, driverByID)

		if sol.Status == milp.TimeLimit {
			goto done
		}
	}

done:
	portfolio := &model.Portfolio{
		Lineups:     lineups,
		Exposure:    book,
		Status:      status,
		Correlation: correlationSummary(lineups),
	}
	return portfolio, nil
}

func addObjective(p *milp.Problem, matrix *scenario.Matrix, driverVar []int, nRoster int, cfg Config) error {
	switch cfg.ObjectiveType {
	case "", "cvar":
		_, err := objective.AddMultiCVaR(p, matrix, driverVar, nRoster, cfg.Alphas, cfg.Weights)
		return err
	case "mean":
		return objective.AddMean(p, matrix, driverVar)
	default:
		return fmt.Errorf("portfolio: unknown objective type %q", cfg.ObjectiveType)
	}
}

func extractLineup(matrix *scenario.Matrix, drivers []model.DriverRecord, driverVar []int, sol milp.Solution, alphas []float64) model.Lineup {
	var driverIDs []int
	totalSalary := 0
	teamCounts := make(map[string]int)
	for i, vi := range driverVar {
		if sol.Values[vi] > 0.5 {
			driverIDs = append(driverIDs, drivers[i].DriverID)
			totalSalary += drivers[i].Salary
			teamCounts[drivers[i].Team]++
		}
	}
	series := matrix.LineupSeries(driverIDs)

	lineup := model.Lineup{
		DriverIDs:      driverIDs,
		TotalSalary:    totalSalary,
		TeamCounts:     teamCounts,
		ScenarioSeries: series,
	}
	if tm, err := tailmetrics.Compute(series, alphas); err == nil {
		lineup.TailMetrics = &model.TailMetrics{
			Alphas:            tm.Alphas,
			CVaR:              tm.CVaR,
			VaR:               tm.VaR,
			TopPct:            tm.TopPct,
			ConditionalUpside: tm.ConditionalUpside,
		}
	}
	return lineup
}

// resolvedAlphas returns the requested CVaR quantiles, or the builder's
// defaults when Alphas is unset. Kept here as a tiny shim so generator.go
// can pass a single slice through to tailmetrics.Compute regardless of
// which objective type produced the lineup.
func (c Config) resolvedAlphas() []float64 {
	if len(c.Alphas) == 0 {
		return objective.DefaultAlphas
	}
	return c.Alphas
}
