package contest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/payoutcurve"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
)

func TestSampleField_RespectsSalaryCapAndRosterSize(t *testing.T) {
	ownership := []float64{20, 15, 15, 10, 10, 10, 8, 7, 3, 2}
	salaries := []int{10000, 9000, 8500, 8000, 7500, 7000, 6500, 6000, 5500, 5000}

	lineups := SampleField(ownership, salaries, 20, 45000, 6, DefaultFieldSampleConfig(), 1)
	require.NotEmpty(t, lineups)
	for _, l := range lineups {
		assert.LessOrEqual(t, len(l), 6)
		assert.LessOrEqual(t, salaryOf(l, salaries), 45000)
		seen := make(map[int]bool)
		for _, id := range l {
			assert.False(t, seen[id], "duplicate driver in sampled lineup")
			seen[id] = true
		}
	}
}

func TestSimulate_RankAndCashWithinBounds(t *testing.T) {
	src := &scenario.MockSource{
		DisplayIDs: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		Means:      []float64{40, 38, 36, 34, 32, 30, 28, 26},
		Skew:       []float64{1, 1, 1, 1, 1, 1, 1, 1},
	}
	seed := int64(5)
	matrix, _, err := src.Sample(context.Background(), 50, &seed)
	require.NoError(t, err)

	ownership := []float64{25, 20, 15, 15, 10, 8, 5, 2}
	salaries := []int{9000, 8500, 8000, 7500, 7000, 6500, 6000, 5500}

	curve := payoutcurve.NewCurve(payoutcurve.PowerLaw)
	require.NoError(t, curve.Fit([]float64{1, 5, 20, 100}, []float64{500, 100, 20, 2}))

	cfg := DefaultSimConfig()
	cfg.FieldSize = 20
	cfg.NContestSims = 10
	cfg.SalaryCap = 50000

	results, err := Simulate([]int{0, 1, 2, 3, 4, 5}, matrix, ownership, salaries, curve, cfg)
	require.NoError(t, err)
	require.Len(t, results, 10)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Rank, 1)
		assert.LessOrEqual(t, r.Rank, r.FieldSize)
		assert.GreaterOrEqual(t, r.Payout, 0.0)
	}
}

func TestComputeContestMetrics_SingleSampleIsZeroWidthCI(t *testing.T) {
	results := []model.ContestResult{{Rank: 1, Payout: 100, Cashed: true, Top1Pct: true}}
	m := ComputeContestMetrics(results, 20, DefaultMetricsConfig())
	assert.Equal(t, m.ROIPct, m.ROICILow)
	assert.Equal(t, m.ROIPct, m.ROICIHigh)
}

func TestComputeContestMetrics_BoundedProbabilities(t *testing.T) {
	results := []model.ContestResult{
		{Rank: 1, Payout: 500, Cashed: true, Top1Pct: true},
		{Rank: 50, Payout: 0, Cashed: false, Top1Pct: false},
		{Rank: 10, Payout: 20, Cashed: true, Top1Pct: false},
	}
	m := ComputeContestMetrics(results, 20, DefaultMetricsConfig())
	assert.GreaterOrEqual(t, m.CashPct, 0.0)
	assert.LessOrEqual(t, m.CashPct, 1.0)
	assert.GreaterOrEqual(t, m.WinPct, 0.0)
	assert.LessOrEqual(t, m.WinPct, 1.0)
}

func TestAllocateLineups_RemainderGoesToHighestWeight(t *testing.T) {
	weights := map[model.RegimeTag]float64{
		model.RegimeDominator: 0.5,
		model.RegimeChaos:     0.3,
		model.RegimeMixed:     0.2,
	}
	alloc := AllocateLineups(10, weights)
	sum := 0
	for _, n := range alloc {
		sum += n
	}
	assert.Equal(t, 10, sum)
	assert.GreaterOrEqual(t, alloc[model.RegimeDominator], alloc[model.RegimeChaos])
}

func TestHeuristicClassifier_ReturnsKnownTag(t *testing.T) {
	tag := HeuristicClassifier([]float64{40, 39, 38, 37, 36, 35})
	switch tag {
	case model.RegimeDominator, model.RegimeChaos, model.RegimeFuelMileage, model.RegimeMixed:
		// ok
	default:
		t.Fatalf("unexpected regime tag %q", tag)
	}
}
