package stats

import (
	"sort"

	"github.com/verte-zerg/digitrace/internal/model"
)

// SelectWeakDigits selects the digits with the lowest pass rate.
func SelectWeakDigits(aggs []model.DigitAggregate, top int) map[int]struct{} {
	weakSet := map[int]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.DigitAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Attempts > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri := candidates[i].PassRate()
		rj := candidates[j].PassRate()
		if ri == rj {
			ci := candidates[i].AvgCoverage()
			cj := candidates[j].AvgCoverage()
			if ci == cj {
				return candidates[i].Digit < candidates[j].Digit
			}
			return ci < cj
		}
		return ri < rj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		weakSet[candidates[i].Digit] = struct{}{}
	}
	return weakSet
}
