package portfolio

import (
	"time"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/contest"
)

// Config is the public contract of generate_portfolio (spec.md §4.4.1).
type Config struct {
	SlateID             string
	NScenarios          int
	NLineups            int
	ObjectiveType       string // "cvar" (default) or "mean"
	MaxDriverExposure   float64
	MaxTeamExposure     float64
	DiversityWeight     float64
	Alphas              []float64
	Weights             []float64
	TimeLimitPerLineup  time.Duration
	Seed                int64

	// LeverageEnabled turns on the ownership-squared penalty term and the
	// total/low-ownership constraints (spec.md §4.5.4). Leverage is left at
	// its model-level nil/zero value for every lineup when this is false.
	LeverageEnabled bool
	Leverage        contest.LeverageConfig
}

// DefaultConfig fills in spec.md's documented defaults.
func DefaultConfig() Config {
	return Config{
		ObjectiveType:      "cvar",
		MaxDriverExposure:  1.0,
		MaxTeamExposure:    1.0,
		DiversityWeight:    0.15,
		TimeLimitPerLineup: 30 * time.Second,
		Leverage:           contest.DefaultLeverageConfig(),
	}
}
