// Package tailmetrics computes tail-risk statistics (VaR, CVaR, top-X%,
// conditional upside) over scenario point vectors, plus adaptive scenario
// sizing and bootstrap tail-stability validation. All operations are pure
// and stateless over a length-S real vector.
package tailmetrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/pkg/logger"
)

// kForAlpha computes k = ceil((1-alpha)*S), enforcing k>=1 and falling back
// to the entire vector (with a warning) when S < k — this only happens for
// pathologically small S relative to alpha.
func kForAlpha(s int, alpha float64) int {
	k := int(math.Ceil((1 - alpha) * float64(s)))
	if k < 1 {
		k = 1
	}
	if k > s {
		logger.GetLogger().WithField("samples", s).WithField("k", k).
			Warn("tailmetrics: tail sample count exceeds scenario count, using entire vector")
		k = s
	}
	return k
}

func validateAlpha(alpha float64) error {
	if alpha <= 0 || alpha >= 1 {
		return ErrInvalidAlpha
	}
	return nil
}

// CVaR returns the mean of the top-k scenario outcomes, k = ceil((1-alpha)*S).
func CVaR(x []float64, alpha float64) (float64, error) {
	if err := validateAlpha(alpha); err != nil {
		return 0, err
	}
	if len(x) == 0 {
		return 0, ErrEmptyScenarios
	}
	if len(x) == 1 {
		return x[0], nil
	}
	k := kForAlpha(len(x), alpha)
	top := topKLargest(x, k)
	return stat.Mean(top, nil), nil
}

// VaR returns the minimum of the same top-k selection used by CVaR — the
// quantile threshold itself.
func VaR(x []float64, alpha float64) (float64, error) {
	if err := validateAlpha(alpha); err != nil {
		return 0, err
	}
	if len(x) == 0 {
		return 0, ErrEmptyScenarios
	}
	if len(x) == 1 {
		return x[0], nil
	}
	k := kForAlpha(len(x), alpha)
	top := topKLargest(x, k)
	return minOf(top), nil
}

// TopXPct returns the maximum of the same top-k selection used by CVaR.
func TopXPct(x []float64, alpha float64) (float64, error) {
	if err := validateAlpha(alpha); err != nil {
		return 0, err
	}
	if len(x) == 0 {
		return 0, ErrEmptyScenarios
	}
	if len(x) == 1 {
		return x[0], nil
	}
	k := kForAlpha(len(x), alpha)
	top := topKLargest(x, k)
	return maxOf(top), nil
}

// ConditionalUpside is CVaR minus the unconditional mean: the expected
// excess given a tail event.
func ConditionalUpside(x []float64, alpha float64) (float64, error) {
	c, err := CVaR(x, alpha)
	if err != nil {
		return 0, err
	}
	return c - stat.Mean(x, nil), nil
}

// TailMetrics bundles CVaR/VaR/Top/ConditionalUpside for each requested
// alpha.
type TailMetrics struct {
	Alphas            []float64
	CVaR              map[float64]float64
	VaR               map[float64]float64
	TopPct            map[float64]float64
	ConditionalUpside map[float64]float64
}

// Compute evaluates the full tail-metrics bundle for each alpha in alphas.
func Compute(x []float64, alphas []float64) (*TailMetrics, error) {
	if len(x) == 0 {
		return nil, ErrEmptyScenarios
	}
	out := &TailMetrics{
		Alphas:            alphas,
		CVaR:              make(map[float64]float64, len(alphas)),
		VaR:               make(map[float64]float64, len(alphas)),
		TopPct:            make(map[float64]float64, len(alphas)),
		ConditionalUpside: make(map[float64]float64, len(alphas)),
	}
	mean := stat.Mean(x, nil)
	for _, a := range alphas {
		if err := validateAlpha(a); err != nil {
			return nil, err
		}
		var top []float64
		if len(x) == 1 {
			top = x
		} else {
			k := kForAlpha(len(x), a)
			top = topKLargest(x, k)
		}
		c := stat.Mean(top, nil)
		out.CVaR[a] = c
		out.VaR[a] = minOf(top)
		out.TopPct[a] = maxOf(top)
		out.ConditionalUpside[a] = c - mean
	}
	return out, nil
}

// PctLabel derives an integer percentage label ("Top 1%" -> 1) from alpha
// using round, not truncation, to avoid the floating-point label drift
// called out in spec.md §9.
func PctLabel(alpha float64) int {
	return int(math.Round((1 - alpha) * 100))
}

const (
	minTailSamplesDefault = 100
	tierFloor99           = 10000
	tierFloor95           = 2000
	tierFloorDefault      = 1000
)

// AdaptiveScenarioCount returns the minimum scenario count S needed so the
// tail region for alpha has at least minTailSamples samples, floored by a
// per-alpha tier.
func AdaptiveScenarioCount(alpha float64, minTailSamples int) int {
	if minTailSamples <= 0 {
		minTailSamples = minTailSamplesDefault
	}
	fromTail := int(math.Ceil(float64(minTailSamples) / (1 - alpha)))
	floor := tierFloorDefault
	switch {
	case alpha >= 0.99:
		floor = tierFloor99
	case alpha >= 0.95:
		floor = tierFloor95
	}
	if fromTail > floor {
		return fromTail
	}
	return floor
}

func minOf(x []float64) float64 {
	m := x[0]
	for _, v := range x[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(x []float64) float64 {
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
