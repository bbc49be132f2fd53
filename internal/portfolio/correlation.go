package portfolio

import "github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"

// correlationSummary computes the mean and max pairwise Jaccard similarity
// of driver sets across a portfolio's lineups (spec.md §4.4.6), used to flag
// over-correlated chalk-heavy portfolios. Returns nil for fewer than two
// lineups, since no pair exists to compare.
func correlationSummary(lineups []model.Lineup) *model.CorrelationSummary {
	if len(lineups) < 2 {
		return nil
	}
	sets := make([]map[int]struct{}, len(lineups))
	for i, l := range lineups {
		s := make(map[int]struct{}, len(l.DriverIDs))
		for _, id := range l.DriverIDs {
			s[id] = struct{}{}
		}
		sets[i] = s
	}

	var sum, max float64
	var pairs int
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			sim := jaccard(sets[i], sets[j])
			sum += sim
			if sim > max {
				max = sim
			}
			pairs++
		}
	}
	return &model.CorrelationSummary{
		MeanPairwiseJaccard: sum / float64(pairs),
		MaxPairwiseJaccard:  max,
	}
}

func jaccard(a, b map[int]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for id := range a {
		if _, ok := b[id]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
