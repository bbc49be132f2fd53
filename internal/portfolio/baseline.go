package portfolio

import (
	"context"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/tailmetrics"
)

// CompareToMeanBaseline runs a second, mean-objective generation pass over
// the same scenario matrix and constraints, and reports whether the
// CVaR-objective portfolio actually improved the tail relative to a
// mean-maximizing one — the real comparison spec.md §6.4 requires, never a
// synthetic multiplier. portfolio must already be populated by Generate with
// cfg.ObjectiveType == "cvar".
func CompareToMeanBaseline(ctx context.Context, matrix *scenario.Matrix, drivers []model.DriverRecord, spec model.ConstraintSpec, cfg Config, portfolio *model.Portfolio) (*model.TailValidation, error) {
	baselineCfg := cfg
	baselineCfg.ObjectiveType = "mean"

	baseline, err := Generate(ctx, matrix, drivers, spec, baselineCfg)
	if err != nil {
		return nil, err
	}

	alphas := cfg.resolvedAlphas()
	baselineCVaR := meanTop1PctCVaR(baseline.Lineups, alphas)
	portfolioCVaR := meanTop1PctCVaR(portfolio.Lineups, alphas)

	tv := &model.TailValidation{
		MeanBaselineCVaR99: baselineCVaR,
		PortfolioCVaR99:    portfolioCVaR,
	}
	if baselineCVaR != 0 {
		tv.TailImprovement = (portfolioCVaR - baselineCVaR) / absFloat(baselineCVaR)
	}

	if len(portfolio.Lineups) > 0 {
		optimizeFn := func(resample []float64) []int {
			return portfolio.Lineups[0].DriverIDs
		}
		if sr, err := tailmetrics.ValidateTailStability(portfolio.Lineups[0].ScenarioSeries, 0.99, optimizeFn, 200, cfg.Seed); err == nil {
			tv.Stable = sr.Stable
			tv.CV = sr.CV
			tv.LineupConsistency = sr.LineupConsistency
		}
	}

	return tv, nil
}

func meanTop1PctCVaR(lineups []model.Lineup, alphas []float64) float64 {
	if len(lineups) == 0 {
		return 0
	}
	alpha := 0.99
	if len(alphas) > 0 {
		alpha = alphas[0]
	}
	var sum float64
	var n int
	for _, l := range lineups {
		if l.TailMetrics == nil {
			continue
		}
		if v, ok := l.TailMetrics.CVaR[alpha]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
