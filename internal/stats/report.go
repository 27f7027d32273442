package stats

import (
	"context"
	"sort"

	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Progress     model.Progress
	Achievements []model.Achievement
	Attempts     []model.AttemptRecord
	Digits       []model.DigitAggregate
	Window       int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	progress, err := st.GetProgress(ctx)
	if err != nil {
		return Report{}, err
	}
	achievements, err := st.ListAchievements(ctx)
	if err != nil {
		return Report{}, err
	}
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}

	return Report{
		Progress:     progress,
		Achievements: achievements,
		Attempts:     attempts,
		Digits:       AggregateAttempts(attempts),
		Window:       cfg.Window,
	}, nil
}

// AggregateAttempts folds attempts into per-digit aggregates ordered by digit.
func AggregateAttempts(attempts []model.AttemptRecord) []model.DigitAggregate {
	byDigit := map[int]*model.DigitAggregate{}
	for _, a := range attempts {
		agg, ok := byDigit[a.Digit]
		if !ok {
			agg = &model.DigitAggregate{Digit: a.Digit}
			byDigit[a.Digit] = agg
		}
		agg.Attempts++
		if a.Passed {
			agg.Passes++
		}
		agg.CoverageSum += a.Coverage
		if a.Coverage > agg.BestCoverage {
			agg.BestCoverage = a.Coverage
		}
	}
	out := make([]model.DigitAggregate, 0, len(byDigit))
	for _, agg := range byDigit {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Digit < out[j].Digit
	})
	return out
}
