package contest

import (
	"math"
	"math/rand"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/pkg/logger"
)

// FieldSampleConfig tunes sample_field (spec.md §4.5.1). Alpha and K control
// the concentration of the Dirichlet-like ownership perturbation; defaults
// deliver modest concentration around the given ownership.
type FieldSampleConfig struct {
	Alpha          float64
	K              float64
	OversampleMult int
	MaxRefills     int
}

// DefaultFieldSampleConfig returns spec.md's documented tunable defaults.
func DefaultFieldSampleConfig() FieldSampleConfig {
	return FieldSampleConfig{Alpha: 1.0, K: 50.0, OversampleMult: 3, MaxRefills: 3}
}

// SampleField draws n_lineups roster-valid opponent lineups from a
// perturbed ownership distribution (spec.md §4.5.1). salaries is indexed by
// driver id (dense 0..D-1), matching ownership's indexing. Returns fewer
// than n_lineups (never zero unless ownership/roster are degenerate) when
// the salary cap makes the target shortfall unreachable within
// cfg.MaxRefills; the caller must treat a shortfall as a warning, not an
// error (spec.md §4.5.6).
func SampleField(ownership []float64, salaries []int, nLineups, salaryCap, rosterSize int, cfg FieldSampleConfig, seed int64) [][]int {
	d := len(ownership)
	if d == 0 {
		return nil
	}
	if rosterSize > d {
		rosterSize = d
	}
	rng := rand.New(rand.NewSource(seed))
	log := logger.WithComponent("contest.field")

	var accepted [][]int
	oversample := cfg.OversampleMult
	if oversample < 1 {
		oversample = 3
	}

	for refill := 0; refill <= cfg.MaxRefills && len(accepted) < nLineups; refill++ {
		perturbed := perturbOwnership(ownership, cfg.Alpha, cfg.K, rng)
		need := nLineups - len(accepted)
		batch := need * oversample
		if batch < 1 {
			batch = 1
		}
		for i := 0; i < batch && len(accepted) < nLineups; i++ {
			lineup := drawLineupWithoutReplacement(perturbed, rosterSize, rng)
			if salaryOf(lineup, salaries) <= salaryCap {
				accepted = append(accepted, lineup)
			}
		}
	}

	if len(accepted) < nLineups {
		log.WithField("requested", nLineups).WithField("yielded", len(accepted)).
			Warn("contest: field sampler yielded fewer lineups than requested, accepting shortfall")
	}
	return accepted
}

// perturbOwnership draws g_i ~ Gamma(alpha*p_i*K, 1) and renormalizes,
// introducing ownership uncertainty (spec.md §4.5.1).
func perturbOwnership(ownership []float64, alpha, k float64, rng *rand.Rand) []float64 {
	var sum float64
	for _, v := range ownership {
		sum += v
	}
	p := make([]float64, len(ownership))
	if sum > 0 {
		for i, v := range ownership {
			p[i] = v / sum
		}
	}

	g := make([]float64, len(p))
	var gSum float64
	for i, pi := range p {
		shape := alpha * pi * k
		if shape <= 0 {
			shape = 1e-6
		}
		g[i] = gammaSample(rng, shape, 1.0)
		gSum += g[i]
	}
	if gSum == 0 {
		// Degenerate perturbation (all-zero ownership): fall back to
		// uniform so sampling can still proceed.
		uniform := 1.0 / float64(len(p))
		for i := range g {
			g[i] = uniform
		}
		return g
	}
	for i := range g {
		g[i] /= gSum
	}
	return g
}

// drawLineupWithoutReplacement performs roster_size sequential weighted
// draws, renormalizing the remaining weight after each pick (spec.md
// §4.5.1's "sequential multinomial" construction).
func drawLineupWithoutReplacement(weights []float64, rosterSize int, rng *rand.Rand) []int {
	remaining := append([]float64(nil), weights...)
	picked := make(map[int]bool, rosterSize)
	lineup := make([]int, 0, rosterSize)

	for len(lineup) < rosterSize {
		var total float64
		for i, w := range remaining {
			if picked[i] {
				continue
			}
			total += w
		}
		if total <= 0 {
			break
		}
		target := rng.Float64() * total
		var cum float64
		chosen := -1
		for i, w := range remaining {
			if picked[i] {
				continue
			}
			cum += w
			if target <= cum {
				chosen = i
				break
			}
		}
		if chosen == -1 {
			break
		}
		picked[chosen] = true
		lineup = append(lineup, chosen)
	}
	return lineup
}

func salaryOf(lineup []int, salaries []int) int {
	total := 0
	for _, id := range lineup {
		if id < len(salaries) {
			total += salaries[id]
		}
	}
	return total
}

// gammaSample draws from Gamma(shape, scale) via Marsaglia-Tsang, the same
// construction internal/scenario's mock source uses for driver-outcome
// sampling.
func gammaSample(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return gammaSample(rng, shape+1, scale) * math.Pow(u, 1/shape)
	}
	dd := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*dd)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return dd * v * scale
		}
		if math.Log(u) < 0.5*x*x+dd*(1-v+math.Log(v)) {
			return dd * v * scale
		}
	}
}
