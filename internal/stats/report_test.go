package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "digitrace.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	digits := []int{3, 3, 5}
	for i, d := range digits {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		rec := model.AttemptRecord{
			RunID:     "run",
			Digit:     d,
			StartedAt: start,
			EndedAt:   start.Add(4 * time.Second),
			Points:    20,
			Matched:   i + 3,
			Total:     7,
			Coverage:  float64(i+3) / 7,
			Passed:    true,
		}
		if _, err := st.InsertAttempt(ctx, rec); err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
	}
	completed := []int{3, 5}
	if err := st.SaveProgress(ctx, model.ProgressPatch{WritingCompleted: &completed}); err != nil {
		t.Fatalf("save progress: %v", err)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, Window: 5})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(report.Attempts))
	}
	if report.Attempts[0].Matched != 4 || report.Attempts[1].Digit != 5 {
		t.Fatalf("unexpected attempts: %+v", report.Attempts)
	}
	if len(report.Digits) != 2 || report.Digits[0].Digit != 3 || report.Digits[0].Attempts != 1 {
		t.Fatalf("unexpected aggregates: %+v", report.Digits)
	}
	if len(report.Progress.WritingCompleted) != 2 {
		t.Fatalf("expected progress to be loaded, got %+v", report.Progress)
	}
	if report.Window != 5 {
		t.Fatalf("expected window 5, got %d", report.Window)
	}
}

func TestAggregateAttempts(t *testing.T) {
	aggs := AggregateAttempts([]model.AttemptRecord{
		{Digit: 9, Coverage: 0.2},
		{Digit: 0, Coverage: 1, Passed: true},
		{Digit: 9, Coverage: 0.6, Passed: true},
	})
	if len(aggs) != 2 || aggs[0].Digit != 0 || aggs[1].Digit != 9 {
		t.Fatalf("unexpected aggregates: %+v", aggs)
	}
	nine := aggs[1]
	if nine.Attempts != 2 || nine.Passes != 1 || nine.BestCoverage != 0.6 {
		t.Fatalf("unexpected aggregate for 9: %+v", nine)
	}
}
