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

// regimeRow builds one 12-driver scenario row of a deliberately chosen
// shape so contest.HeuristicClassifier assigns it a known regime tag.
func regimeRow(tag model.RegimeTag) []float64 {
	switch tag {
	case model.RegimeDominator:
		row := make([]float64, 12)
		row[0] = 500
		for i := 1; i < 12; i++ {
			row[i] = 10
		}
		return row
	case model.RegimeFuelMileage:
		row := make([]float64, 12)
		for i := range row {
			row[i] = 30
		}
		return row
	case model.RegimeChaos:
		row := make([]float64, 12)
		for i := range row {
			row[i] = 20 + float64(i)*8
		}
		return row
	default:
		row := make([]float64, 12)
		for i := range row {
			row[i] = 20 + float64(i)*5
		}
		return row
	}
}

func regimeMatrix(perRegime int) *scenario.Matrix {
	var rows [][]float64
	for _, tag := range []model.RegimeTag{model.RegimeDominator, model.RegimeFuelMileage, model.RegimeChaos} {
		for i := 0; i < perRegime; i++ {
			rows = append(rows, regimeRow(tag))
		}
	}
	return scenario.NewMatrix(rows)
}

func TestGenerateByRegime_AllocatesAndGeneratesPerRegime(t *testing.T) {
	drivers := sampleDrivers(12)
	spec := model.DefaultConstraintSpec()
	matrix := regimeMatrix(40)
	cfg := DefaultConfig()
	cfg.NLineups = 3
	cfg.TimeLimitPerLineup = 5 * time.Second

	result, err := GenerateByRegime(context.Background(), matrix, drivers, spec, cfg, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Lineups, 3)
	assert.Equal(t, model.StatusComplete, result.Status)
	for _, l := range result.Lineups {
		assert.Len(t, l.DriverIDs, spec.NRoster)
	}
}

func TestGenerateByRegime_ZeroWeightRegimeGetsNoLineups(t *testing.T) {
	drivers := sampleDrivers(12)
	spec := model.DefaultConstraintSpec()
	matrix := regimeMatrix(40)
	cfg := DefaultConfig()
	cfg.NLineups = 2

	weights := map[model.RegimeTag]float64{
		model.RegimeDominator:   1,
		model.RegimeFuelMileage: 1,
		model.RegimeChaos:       0,
	}
	result, err := GenerateByRegime(context.Background(), matrix, drivers, spec, cfg, nil, weights)
	require.NoError(t, err)
	require.Len(t, result.Lineups, 2)
}

func TestGenerateByRegime_NoScenariosReturnsNoFeasibleLineup(t *testing.T) {
	drivers := sampleDrivers(12)
	spec := model.DefaultConstraintSpec()
	matrix := scenario.NewMatrix(nil)
	cfg := DefaultConfig()
	cfg.NLineups = 1

	_, err := GenerateByRegime(context.Background(), matrix, drivers, spec, cfg, nil, nil)
	assert.ErrorIs(t, err, ErrNoFeasibleLineup)
}
