package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/digitrace/internal/model"
)

// InsertAttempt stores an evaluated attempt.
func (s *Store) InsertAttempt(ctx context.Context, rec model.AttemptRecord) (int64, error) {
	passed := 0
	if rec.Passed {
		passed = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, digit, started_at, ended_at, points, matched, total, coverage, passed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Digit,
		formatTime(rec.StartedAt),
		formatTime(rec.EndedAt),
		rec.Points,
		rec.Matched,
		rec.Total,
		rec.Coverage,
		passed,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAttempts returns attempts filtered by stats config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT run_id, digit, started_at, ended_at, points, matched, total, coverage, passed
		FROM attempts
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptRecord
	for rows.Next() {
		var rec model.AttemptRecord
		var startedAt, endedAt string
		var passed int
		if err := rows.Scan(&rec.RunID, &rec.Digit, &startedAt, &endedAt, &rec.Points, &rec.Matched, &rec.Total, &rec.Coverage, &passed); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		rec.Passed = passed == 1
		attempts = append(attempts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// GetDigitAggregates aggregates the most recent window attempts per digit.
func (s *Store) GetDigitAggregates(ctx context.Context, window int) ([]model.DigitAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT digit, coverage, passed FROM attempts
		ORDER BY ended_at DESC, id DESC
		LIMIT ?
	)
	SELECT digit, COUNT(*) AS attempts, SUM(passed) AS passes,
		SUM(coverage) AS coverage_sum, MAX(coverage) AS best_coverage
	FROM recent
	GROUP BY digit
	ORDER BY digit`

	rows, err := s.db.QueryContext(ctx, query, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.DigitAggregate
	for rows.Next() {
		var agg model.DigitAggregate
		if err := rows.Scan(&agg.Digit, &agg.Attempts, &agg.Passes, &agg.CoverageSum, &agg.BestCoverage); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
