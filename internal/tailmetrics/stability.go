package tailmetrics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// StabilityResult reports the bootstrap tail-stability check of spec.md
// §4.1: coefficient of variation of the resampled CVaR, mean pairwise
// Jaccard similarity of the resulting re-optimized lineups, and a combined
// stable flag (cv < 0.2 and consistency > 0.7).
type StabilityResult struct {
	CV                float64
	LineupConsistency float64
	Stable            bool
}

// OptimizeFunc re-solves a lineup against a resampled scenario vector; it is
// supplied by the caller (the portfolio generator) so tailmetrics stays free
// of any MILP dependency.
type OptimizeFunc func(resample []float64) []int

// ValidateTailStability bootstrap-resamples x with replacement nBootstrap
// times, calls optimizeFn on each resample, and reports the coefficient of
// variation of the resulting CVaR_alpha values together with the mean
// pairwise Jaccard similarity of the resulting lineups.
func ValidateTailStability(x []float64, alpha float64, optimizeFn OptimizeFunc, nBootstrap int, seed int64) (*StabilityResult, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, ErrEmptyScenarios
	}
	if nBootstrap < 1 {
		nBootstrap = 1
	}

	rng := rand.New(rand.NewSource(seed))
	cvars := make([]float64, 0, nBootstrap)
	lineups := make([][]int, 0, nBootstrap)

	resample := make([]float64, len(x))
	for i := 0; i < nBootstrap; i++ {
		for j := range resample {
			resample[j] = x[rng.Intn(len(x))]
		}
		c, err := CVaR(resample, alpha)
		if err != nil {
			return nil, err
		}
		cvars = append(cvars, c)
		if optimizeFn != nil {
			lineups = append(lineups, optimizeFn(append([]float64(nil), resample...)))
		}
	}

	mean := stat.Mean(cvars, nil)
	sd := stat.StdDev(cvars, nil)
	cv := 0.0
	if mean != 0 {
		cv = math.Abs(sd / mean)
	}

	consistency := 1.0
	if len(lineups) > 1 {
		consistency = meanPairwiseJaccard(lineups)
	}

	return &StabilityResult{
		CV:                cv,
		LineupConsistency: consistency,
		Stable:            cv < 0.2 && consistency > 0.7,
	}, nil
}

func meanPairwiseJaccard(lineups [][]int) float64 {
	sets := make([]map[int]struct{}, len(lineups))
	for i, l := range lineups {
		s := make(map[int]struct{}, len(l))
		for _, id := range l {
			s[id] = struct{}{}
		}
		sets[i] = s
	}

	var sum float64
	var pairs int
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			sum += jaccard(sets[i], sets[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 1.0
	}
	return sum / float64(pairs)
}

func jaccard(a, b map[int]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for id := range a {
		if _, ok := b[id]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}
