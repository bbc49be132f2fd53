package contest

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

// Classifier assigns a qualitative regime tag to one scenario's
// driver-points row. Pluggable per spec.md §4.5.5; HeuristicClassifier is
// the shipped default.
type Classifier func(row []float64) model.RegimeTag

// HeuristicClassifier tags a scenario row by variance and dominance:
// a top driver scoring more than twice an even share of the row's points
// (share > 2/len(row)) is "dominator"; very
// even, low-variance spreads are "fuel_mileage" (everyone finishes close on
// strategy, not pace); high-variance, no-clear-leader rows are "chaos";
// everything else is "mixed". Placeholder-quality by design (spec.md §9).
func HeuristicClassifier(row []float64) model.RegimeTag {
	if len(row) == 0 {
		return model.RegimeMixed
	}
	mean := stat.Mean(row, nil)
	sd := stat.StdDev(row, nil)
	cv := 0.0
	if mean != 0 {
		cv = sd / mean
	}

	sorted := append([]float64(nil), row...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	var total float64
	for _, v := range sorted {
		total += v
	}
	topShare := 0.0
	if total > 0 {
		topShare = sorted[0] / total
	}

	switch {
	case topShare > 2.0/float64(len(row)):
		return model.RegimeDominator
	case cv < 0.15:
		return model.RegimeFuelMileage
	case cv > 0.4:
		return model.RegimeChaos
	default:
		return model.RegimeMixed
	}
}

// PartitionByRegime classifies every scenario row and returns, per regime,
// the row indices assigned to it.
func PartitionByRegime(rows [][]float64, classify Classifier) map[model.RegimeTag][]int {
	if classify == nil {
		classify = HeuristicClassifier
	}
	out := make(map[model.RegimeTag][]int)
	for i, row := range rows {
		tag := classify(row)
		out[tag] = append(out[tag], i)
	}
	return out
}

// AllocateLineups partitions totalLineups proportionally across the given
// regime weights: integer allocation with the remainder going to the
// highest-weight regime (spec.md §4.5.5). Weights need not sum to 1.
func AllocateLineups(totalLineups int, weights map[model.RegimeTag]float64) map[model.RegimeTag]int {
	out := make(map[model.RegimeTag]int, len(weights))
	if totalLineups <= 0 || len(weights) == 0 {
		return out
	}
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return out
	}

	allocated := 0
	var topWeight float64
	var topTag model.RegimeTag
	for tag, w := range weights {
		n := int(math.Floor(w / sum * float64(totalLineups)))
		out[tag] = n
		allocated += n
		if w > topWeight {
			topWeight = w
			topTag = tag
		}
	}
	if remainder := totalLineups - allocated; remainder > 0 {
		out[topTag] += remainder
	}
	return out
}
