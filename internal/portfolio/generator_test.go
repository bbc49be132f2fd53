package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
)

func sampleDrivers(n int) []model.DriverRecord {
	drivers := make([]model.DriverRecord, n)
	teams := []string{"HMS", "JGR", "RFK", "TRD"}
	for i := 0; i < n; i++ {
		drivers[i] = model.DriverRecord{
			DriverID: i,
			Name:     "Driver" + string(rune('A'+i)),
			Team:     teams[i%len(teams)],
			Salary:   6000 + (i%5)*1000,
		}
	}
	return drivers
}

func sampleMatrix(s, d int, seed int64) *scenario.Matrix {
	src := &scenario.MockSource{}
	ids := make([]string, d)
	means := make([]float64, d)
	skew := make([]float64, d)
	for i := 0; i < d; i++ {
		ids[i] = "driver-" + string(rune('A'+i))
		means[i] = 30 + float64(i)
		skew[i] = 1.0
	}
	src.DisplayIDs = ids
	src.Means = means
	src.Skew = skew
	m, _, err := src.Sample(context.Background(), s, &seed)
	if err != nil {
		panic(err)
	}
	return m
}

func TestGenerate_ProducesFeasibleRoster(t *testing.T) {
	drivers := sampleDrivers(12)
	matrix := sampleMatrix(500, 12, 7)
	spec := model.DefaultConstraintSpec()
	cfg := DefaultConfig()
	cfg.NLineups = 3
	cfg.TimeLimitPerLineup = 5 * time.Second

	portfolio, err := Generate(context.Background(), matrix, drivers, spec, cfg)
	require.NoError(t, err)
	require.Len(t, portfolio.Lineups, 3)

	for _, l := range portfolio.Lineups {
		assert.Len(t, l.DriverIDs, spec.NRoster)
		assert.LessOrEqual(t, l.TotalSalary, spec.SalaryCap)
		for _, count := range l.TeamCounts {
			assert.LessOrEqual(t, count, spec.MaxStack)
		}
		require.NotNil(t, l.TailMetrics)
	}
	assert.Equal(t, model.StatusComplete, portfolio.Status)
	require.NotNil(t, portfolio.Correlation)
}

func TestGenerate_ExcludedDriverNeverSelected(t *testing.T) {
	drivers := sampleDrivers(10)
	matrix := sampleMatrix(300, 10, 11)
	spec := model.DefaultConstraintSpec()
	spec.Drivers.Excluded = []int{0, 1}
	cfg := DefaultConfig()
	cfg.NLineups = 1

	portfolio, err := Generate(context.Background(), matrix, drivers, spec, cfg)
	require.NoError(t, err)
	require.Len(t, portfolio.Lineups, 1)
	for _, id := range portfolio.Lineups[0].DriverIDs {
		assert.NotEqual(t, 0, id)
		assert.NotEqual(t, 1, id)
	}
}

func TestGenerate_LockedDriverAlwaysSelected(t *testing.T) {
	drivers := sampleDrivers(10)
	matrix := sampleMatrix(300, 10, 13)
	spec := model.DefaultConstraintSpec()
	spec.Drivers.Locked = []int{3}
	cfg := DefaultConfig()
	cfg.NLineups = 1

	portfolio, err := Generate(context.Background(), matrix, drivers, spec, cfg)
	require.NoError(t, err)
	require.Len(t, portfolio.Lineups, 1)
	assert.Contains(t, portfolio.Lineups[0].DriverIDs, 3)
}

func TestGenerate_NoFeasibleLineupOnFirstSolve(t *testing.T) {
	drivers := sampleDrivers(4) // fewer than NRoster=6
	matrix := sampleMatrix(100, 4, 17)
	spec := model.DefaultConstraintSpec()
	cfg := DefaultConfig()
	cfg.NLineups = 1

	_, err := Generate(context.Background(), matrix, drivers, spec, cfg)
	assert.ErrorIs(t, err, ErrNoFeasibleLineup)
}

func TestGenerate_MeanObjective(t *testing.T) {
	drivers := sampleDrivers(12)
	matrix := sampleMatrix(200, 12, 19)
	spec := model.DefaultConstraintSpec()
	cfg := DefaultConfig()
	cfg.ObjectiveType = "mean"
	cfg.NLineups = 1

	portfolio, err := Generate(context.Background(), matrix, drivers, spec, cfg)
	require.NoError(t, err)
	require.Len(t, portfolio.Lineups, 1)
	assert.Len(t, portfolio.Lineups[0].DriverIDs, spec.NRoster)
}

func TestCompareToMeanBaseline(t *testing.T) {
	drivers := sampleDrivers(12)
	matrix := sampleMatrix(500, 12, 23)
	spec := model.DefaultConstraintSpec()
	cfg := DefaultConfig()
	cfg.NLineups = 2

	portfolio, err := Generate(context.Background(), matrix, drivers, spec, cfg)
	require.NoError(t, err)

	tv, err := CompareToMeanBaseline(context.Background(), matrix, drivers, spec, cfg, portfolio)
	require.NoError(t, err)
	require.NotNil(t, tv)
	assert.NotZero(t, tv.PortfolioCVaR99)
}

func TestGenerate_LeverageEnabledPopulatesMetricsAndCapsOwnership(t *testing.T) {
	drivers := sampleDrivers(12)
	for i := range drivers {
		o := float64(2 + i*4) // two drivers (2%, 6%) under the 10% low-ownership threshold
		drivers[i].ProjectedOwnership = &o
	}
	matrix := sampleMatrix(500, 12, 29)
	spec := model.DefaultConstraintSpec()
	cfg := DefaultConfig()
	cfg.NLineups = 1
	cfg.LeverageEnabled = true
	cfg.Leverage.MaxTotalOwnership = 0.5

	portfolio, err := Generate(context.Background(), matrix, drivers, spec, cfg)
	require.NoError(t, err)
	require.Len(t, portfolio.Lineups, 1)

	lineup := portfolio.Lineups[0]
	require.NotNil(t, lineup.Leverage)

	var total float64
	for _, id := range lineup.DriverIDs {
		for _, d := range drivers {
			if d.DriverID == id {
				total += *d.ProjectedOwnership
			}
		}
	}
	assert.LessOrEqual(t, total/100, cfg.Leverage.MaxTotalOwnership*float64(spec.NRoster)+1e-6)
	assert.InDelta(t, total, lineup.Leverage.TotalOwnership, 1e-6)
}

func TestCorrelationSummary_SingleLineupIsNil(t *testing.T) {
	lineups := []model.Lineup{{DriverIDs: []int{1, 2, 3}}}
	assert.Nil(t, correlationSummary(lineups))
}

func TestCorrelationSummary_IdenticalLineupsAreFullyCorrelated(t *testing.T) {
	lineups := []model.Lineup{
		{DriverIDs: []int{1, 2, 3}},
		{DriverIDs: []int{1, 2, 3}},
	}
	summary := correlationSummary(lineups)
	require.NotNil(t, summary)
	assert.InDelta(t, 1.0, summary.MeanPairwiseJaccard, 1e-9)
	assert.InDelta(t, 1.0, summary.MaxPairwiseJaccard, 1e-9)
}
