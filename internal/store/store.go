// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/digitrace/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for progress, achievements and attempt history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Read-modify-write transactions share a single connection.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progress (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			writing_completed TEXT NOT NULL,
			total_stars INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			icon TEXT NOT NULL,
			unlocked_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			digit INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			points INTEGER NOT NULL,
			matched INTEGER NOT NULL,
			total INTEGER NOT NULL,
			coverage REAL NOT NULL,
			passed INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_digit ON attempts(digit);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetProgress returns the stored progress, or a default record when none exists.
func (s *Store) GetProgress(ctx context.Context) (model.Progress, error) {
	return getProgress(ctx, s.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProgress(ctx context.Context, q queryer) (model.Progress, error) {
	var completed, updatedAt string
	var p model.Progress
	err := q.QueryRowContext(ctx,
		`SELECT writing_completed, total_stars, updated_at FROM progress WHERE id = 1`,
	).Scan(&completed, &p.TotalStars, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Progress{WritingCompleted: []int{}}, nil
	}
	if err != nil {
		return model.Progress{}, err
	}
	p.WritingCompleted, err = decodeDigits(completed)
	if err != nil {
		return model.Progress{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Progress{}, err
	}
	return p, nil
}

// SaveProgress merges patch into the stored record. Nil fields keep their value.
func (s *Store) SaveProgress(ctx context.Context, patch model.ProgressPatch) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	current, err := getProgress(ctx, tx)
	if err != nil {
		return err
	}
	if patch.WritingCompleted != nil {
		current.WritingCompleted = *patch.WritingCompleted
	}
	if patch.TotalStars != nil {
		current.TotalStars = *patch.TotalStars
	}
	if err = writeProgress(ctx, tx, current, s.now()); err != nil {
		return err
	}
	return tx.Commit()
}

// AddStars adds count stars and returns the new total.
func (s *Store) AddStars(ctx context.Context, count int) (total int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	current, err := getProgress(ctx, tx)
	if err != nil {
		return 0, err
	}
	current.TotalStars += count
	if err = writeProgress(ctx, tx, current, s.now()); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return current.TotalStars, nil
}

func writeProgress(ctx context.Context, tx *sql.Tx, p model.Progress, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO progress (id, writing_completed, total_stars, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			writing_completed = excluded.writing_completed,
			total_stars = excluded.total_stars,
			updated_at = excluded.updated_at`,
		encodeDigits(p.WritingCompleted),
		p.TotalStars,
		formatTime(now),
	)
	return err
}

// UnlockAchievement stores a. It is a no-op when the id is already unlocked.
func (s *Store) UnlockAchievement(ctx context.Context, a model.Achievement) error {
	unlockedAt := a.UnlockedAt
	if unlockedAt.IsZero() {
		unlockedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO achievements (id, name, description, icon, unlocked_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Description, a.Icon, formatTime(unlockedAt),
	)
	return err
}

// ListAchievements returns unlocked achievements in unlock order.
func (s *Store) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, icon, unlocked_at FROM achievements ORDER BY unlocked_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Achievement
	for rows.Next() {
		var a model.Achievement
		var unlockedAt string
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &unlockedAt); err != nil {
			return nil, err
		}
		parsed, err := parseTime(unlockedAt)
		if err != nil {
			return nil, err
		}
		a.UnlockedAt = parsed
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Reset clears progress and achievements, and the attempt history when
// history is true.
func (s *Store) Reset(ctx context.Context, history bool) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmts := []string{`DELETE FROM progress`, `DELETE FROM achievements`}
	if history {
		stmts = append(stmts, `DELETE FROM attempts`)
	}
	for _, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// timeLayout is fixed-width UTC so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

func encodeDigits(digits []int) string {
	sorted := append([]int(nil), digits...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func decodeDigits(value string) ([]int, error) {
	out := []int{}
	if strings.TrimSpace(value) == "" {
		return out, nil
	}
	for _, part := range strings.Split(value, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid digit %q in progress: %w", part, err)
		}
		out = append(out, d)
	}
	return out, nil
}
