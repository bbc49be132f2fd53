package contest

import (
	"math"
	"sort"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/payoutcurve"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
)

// TieBreakPolicy declares how a dead-heat between my lineup and a field
// lineup is broken for ranking. Defaulting to MeLosesTies avoids the
// optimism a silent tie-wins default would introduce (spec.md §4.5.2).
type TieBreakPolicy int

const (
	MeLosesTies TieBreakPolicy = iota
	MeWinsTies
)

// SimConfig bundles the tunables for Simulate/SimulatePortfolio.
type SimConfig struct {
	FieldSize     int
	NContestSims  int
	SalaryCap     int
	CashFraction  float64 // default 0.25
	TieBreak      TieBreakPolicy
	FieldSample   FieldSampleConfig
	Seed          int64
}

// DefaultSimConfig fills in spec.md's documented defaults.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		CashFraction: 0.25,
		TieBreak:     MeLosesTies,
		FieldSample:  DefaultFieldSampleConfig(),
	}
}

// Simulate runs n_contest_sims independent contests for a single lineup
// against a freshly sampled field each time (spec.md §4.5.2). myDriverIDs is
// the lineup being evaluated; ownership/salaries index drivers densely
// 0..D-1, matching scenarioMatrix's columns.
func Simulate(myDriverIDs []int, scenarioMatrix *scenario.Matrix, ownership []float64, salaries []int, curve *payoutcurve.Curve, cfg SimConfig) ([]model.ContestResult, error) {
	results := make([]model.ContestResult, 0, cfg.NContestSims)
	s := scenarioMatrix.S()
	if s == 0 {
		return results, nil
	}
	cashFraction := cfg.CashFraction
	if cashFraction <= 0 {
		cashFraction = 0.25
	}

	for sim := 0; sim < cfg.NContestSims; sim++ {
		row := scenarioMatrix.Row(sim % s)
		myScore := sumAt(row, myDriverIDs)

		opponents := SampleField(ownership, salaries, cfg.FieldSize-1, cfg.SalaryCap, len(myDriverIDs), cfg.FieldSample, cfg.Seed+int64(sim))
		fieldScores := make([]float64, len(opponents))
		for i, lineup := range opponents {
			fieldScores[i] = sumAt(row, lineup)
		}

		rank := rankAmong(myScore, fieldScores, cfg.TieBreak)
		fieldSize := len(opponents) + 1

		payout := 0.0
		if curve != nil {
			if p, err := curve.Predict(rank); err == nil {
				payout = p
			}
		}

		cashThreshold := int(math.Ceil(float64(fieldSize) * cashFraction))
		top1Threshold := int(math.Ceil(float64(fieldSize) * 0.01))

		winningScore := myScore
		if len(fieldScores) > 0 {
			maxField := fieldScores[0]
			for _, v := range fieldScores[1:] {
				if v > maxField {
					maxField = v
				}
			}
			if maxField > winningScore {
				winningScore = maxField
			}
		}

		results = append(results, model.ContestResult{
			Rank:         rank,
			Payout:       payout,
			Score:        myScore,
			WinningScore: winningScore,
			FieldSize:    fieldSize,
			Cashed:       rank <= cashThreshold,
			Top1Pct:      rank <= top1Threshold,
		})
	}
	return results, nil
}

// SimulatePortfolio runs Simulate for every lineup in a portfolio, returning
// results indexed in lineup order (spec.md §4.5.2's simulate_portfolio).
func SimulatePortfolio(lineups []model.Lineup, scenarioMatrix *scenario.Matrix, ownership []float64, salaries []int, curve *payoutcurve.Curve, cfg SimConfig) ([][]model.ContestResult, error) {
	out := make([][]model.ContestResult, len(lineups))
	for i, l := range lineups {
		results, err := Simulate(l.DriverIDs, scenarioMatrix, ownership, salaries, curve, cfg)
		if err != nil {
			return nil, err
		}
		out[i] = results
	}
	return out, nil
}

func sumAt(row []float64, ids []int) float64 {
	var sum float64
	for _, id := range ids {
		if id < len(row) {
			sum += row[id]
		}
	}
	return sum
}

// rankAmong computes my 1-indexed descending rank among fieldScores using a
// single sort plus binary search rather than an O(n^2) pairwise-comparison
// loop (spec.md §4.5.2's vectorized-rank requirement).
func rankAmong(myScore float64, fieldScores []float64, tieBreak TieBreakPolicy) int {
	sorted := append([]float64(nil), fieldScores...)
	sort.Float64s(sorted)

	lowerIdx := sort.SearchFloat64s(sorted, myScore)
	upperIdx := sort.Search(len(sorted), func(i int) bool { return sorted[i] > myScore })
	equal := upperIdx - lowerIdx
	above := len(sorted) - upperIdx

	if tieBreak == MeLosesTies {
		return above + equal + 1
	}
	return above + 1
}
