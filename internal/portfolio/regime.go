package portfolio

import (
	"context"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/contest"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
)

// GenerateByRegime implements the regime-aware allocation operation
// (spec.md §4.5.5): classify every scenario row, allocate cfg.NLineups
// proportionally across regime weights (remainder to the highest-weight
// regime), then run an independent Generate pass against the scenario
// subset classified into each regime. classify is pluggable and may be nil
// to take contest.HeuristicClassifier; the allocation policy itself is not
// pluggable. regimeWeights may be nil, in which case every regime actually
// observed in the partition is weighted equally.
func GenerateByRegime(ctx context.Context, matrix *scenario.Matrix, drivers []model.DriverRecord, spec model.ConstraintSpec, cfg Config, classify contest.Classifier, regimeWeights map[model.RegimeTag]float64) (*model.Portfolio, error) {
	rows := make([][]float64, matrix.S())
	for k := 0; k < matrix.S(); k++ {
		rows[k] = matrix.Row(k)
	}
	partition := contest.PartitionByRegime(rows, classify)

	weights := regimeWeights
	if weights == nil {
		weights = make(map[model.RegimeTag]float64, len(partition))
		for tag := range partition {
			weights[tag] = 1
		}
	}
	budgets := contest.AllocateLineups(cfg.NLineups, weights)

	book := model.NewExposureBook()
	driverByID := make(map[int]model.DriverRecord, len(drivers))
	for _, d := range drivers {
		driverByID[d.DriverID] = d
	}

	var lineups []model.Lineup
	status := model.StatusComplete
	var firstErr error

	for tag, n := range budgets {
		if n <= 0 {
			continue
		}
		indices := partition[tag]
		if len(indices) == 0 {
			status = model.StatusPartial
			continue
		}

		subCfg := cfg
		subCfg.NLineups = n
		result, err := Generate(ctx, matrix.SubsetRows(indices), drivers, spec, subCfg)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			status = model.StatusPartial
			continue
		}
		if result.Status != model.StatusComplete {
			status = model.StatusPartial
		}
		for _, l := range result.Lineups {
			lineups = append(lineups, l)
			book.Accept(l, driverByID)
		}
	}

	if len(lineups) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		if cfg.NLineups > 0 {
			return nil, ErrNoFeasibleLineup
		}
	}

	return &model.Portfolio{
		Lineups:     lineups,
		Exposure:    book,
		Status:      status,
		Correlation: correlationSummary(lineups),
	}, nil
}
