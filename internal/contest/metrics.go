package contest

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

// MetricsConfig tunes the bootstrap confidence intervals in
// ComputeContestMetrics.
type MetricsConfig struct {
	NBootstrap int
	Seed       int64
}

// DefaultMetricsConfig returns a reasonable bootstrap resample count.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{NBootstrap: 1000}
}

// ComputeContestMetrics aggregates a lineup's simulated contest results into
// ROI/cash%/win%/EV/avg_rank with bootstrap confidence intervals (spec.md
// §4.5.3). A single-sample input degenerates to zero-width CIs, never an
// error (spec.md §4.5.6).
func ComputeContestMetrics(results []model.ContestResult, buyin float64, cfg MetricsConfig) model.ContestMetrics {
	n := len(results)
	if n == 0 {
		return model.ContestMetrics{}
	}

	payouts := make([]float64, n)
	cashed := make([]float64, n)
	top1 := make([]float64, n)
	ranks := make([]float64, n)
	for i, r := range results {
		payouts[i] = r.Payout
		if r.Cashed {
			cashed[i] = 1
		}
		if r.Top1Pct {
			top1[i] = 1
		}
		ranks[i] = float64(r.Rank)
	}

	meanPayout := stat.Mean(payouts, nil)
	cashP := stat.Mean(cashed, nil)
	winP := stat.Mean(top1, nil)
	avgRank := stat.Mean(ranks, nil)

	roiPct := 0.0
	if buyin != 0 {
		roiPct = (meanPayout - buyin) / buyin * 100
	}

	roiLow, roiHigh := roiPct, roiPct
	cashSE, winSE := 0.0, 0.0
	if n > 1 {
		nBoot := cfg.NBootstrap
		if nBoot < 1 {
			nBoot = 1000
		}
		roiLow, roiHigh = bootstrapROICI(payouts, buyin, nBoot, cfg.Seed)
		cashSE = math.Sqrt(cashP * (1 - cashP) / float64(n))
		winSE = math.Sqrt(winP * (1 - winP) / float64(n))
	}

	return model.ContestMetrics{
		ROIPct:     roiPct,
		ROICILow:   roiLow,
		ROICIHigh:  roiHigh,
		CashPct:    cashP,
		CashStdErr: cashSE,
		WinPct:     winP,
		WinStdErr:  winSE,
		EV:         meanPayout,
		AvgRank:    avgRank,
	}
}

// bootstrapROICI resamples payouts with replacement nBoot times and returns
// the 5th/95th percentile of the resulting ROI% distribution.
func bootstrapROICI(payouts []float64, buyin float64, nBoot int, seed int64) (low, high float64) {
	rng := rand.New(rand.NewSource(seed))
	rois := make([]float64, nBoot)
	resample := make([]float64, len(payouts))
	for b := 0; b < nBoot; b++ {
		for i := range resample {
			resample[i] = payouts[rng.Intn(len(payouts))]
		}
		mean := stat.Mean(resample, nil)
		roi := 0.0
		if buyin != 0 {
			roi = (mean - buyin) / buyin * 100
		}
		rois[b] = roi
	}
	sort.Float64s(rois)
	low = percentile(rois, 0.05)
	high = percentile(rois, 0.95)
	return low, high
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
