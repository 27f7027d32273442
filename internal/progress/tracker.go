// Package progress tracks digit completion and awards for a practice run.
//
// The in-memory completion set is the source of truth for the run. Writes to
// the ProgressStore are queued to a background worker and never awaited; a
// failed write is logged and does not roll back in-memory state.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/digitrace/internal/logger"
	"github.com/verte-zerg/digitrace/internal/model"
)

// DigitCount is the size of a full completion set.
const DigitCount = 10

const persistTimeout = 5 * time.Second

// MasteryAchievement is unlocked once every digit has been traced.
var MasteryAchievement = model.Achievement{
	ID:          "writing_master",
	Name:        "Writing Master",
	Description: "Traced every digit from 0 to 9",
	Icon:        "✍️",
}

var hints = []string{
	"Try following the grey digit!",
	"Take it slow, one stroke at a time!",
	"Great effort! Keep practicing, you can do it!",
}

// ProgressStore persists learner progress.
type ProgressStore interface {
	GetProgress(ctx context.Context) (model.Progress, error)
	SaveProgress(ctx context.Context, patch model.ProgressPatch) error
	AddStars(ctx context.Context, count int) (int, error)
	UnlockAchievement(ctx context.Context, achievement model.Achievement) error
}

// History records evaluated attempts.
type History interface {
	InsertAttempt(ctx context.Context, rec model.AttemptRecord) (int64, error)
}

// FeedbackKind is the feedback shown for an evaluated attempt.
type FeedbackKind int

const (
	FeedbackSuccess FeedbackKind = iota
	FeedbackError
	FeedbackCelebration
)

func (k FeedbackKind) String() string {
	switch k {
	case FeedbackSuccess:
		return "success"
	case FeedbackError:
		return "error"
	case FeedbackCelebration:
		return "celebration"
	default:
		return "unknown"
	}
}

// Award describes what an evaluated attempt earned.
type Award struct {
	Digit       int
	Kind        FeedbackKind
	NewDigit    bool
	Stars       int
	Mastery     bool
	Failures    int
	Hint        string
	TotalStars  int
	CompletedBy int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithHistory records evaluated attempts into h.
func WithHistory(h History) Option {
	return func(t *Tracker) {
		t.history = h
	}
}

// WithStarsPerDigit sets the stars awarded for a newly completed digit.
func WithStarsPerDigit(n int) Option {
	return func(t *Tracker) {
		t.starsPerDigit = n
	}
}

type job struct {
	name string
	run  func(ctx context.Context) error
}

// Tracker owns the completion set and the failure counter for a run.
type Tracker struct {
	store         ProgressStore
	history       History
	logger        *slog.Logger
	starsPerDigit int

	completed       map[int]struct{}
	totalStars      int
	failures        int
	masteryUnlocked bool

	// queue is unbounded: Record never blocks and no job is dropped.
	mu      sync.Mutex
	closed  bool
	queue   []job
	wake    chan struct{}
	pending sync.WaitGroup
	done    chan struct{}
}

// NewTracker starts a tracker and its persistence worker.
func NewTracker(store ProgressStore, opts ...Option) *Tracker {
	t := &Tracker{
		store:         store,
		logger:        logger.Discard(),
		starsPerDigit: model.DefaultTraceSettings().StarsPerDigit,
		completed:     map[int]struct{}{},
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.worker()
	return t
}

// Load seeds the completion set and star total from the store. On failure
// the tracker keeps its empty state and the error is returned for logging.
func (t *Tracker) Load(ctx context.Context) error {
	p, err := t.store.GetProgress(ctx)
	if err != nil {
		err = fmt.Errorf("%w: failed to load progress: %v", model.ErrPersistence, err)
		t.logger.Warn("progress load failed", "error", err)
		return err
	}
	for _, d := range p.WritingCompleted {
		if d >= 0 && d < DigitCount {
			t.completed[d] = struct{}{}
		}
	}
	t.totalStars = p.TotalStars
	t.masteryUnlocked = len(t.completed) >= DigitCount
	return nil
}

// Record applies an evaluated result for digit and returns the award.
func (t *Tracker) Record(digit int, res model.MatchResult) Award {
	if !res.Passed {
		t.failures++
		return Award{
			Digit:       digit,
			Kind:        FeedbackError,
			Failures:    t.failures,
			Hint:        HintFor(t.failures),
			TotalStars:  t.totalStars,
			CompletedBy: len(t.completed),
		}
	}

	award := Award{Digit: digit, Kind: FeedbackSuccess}
	if _, ok := t.completed[digit]; !ok {
		t.completed[digit] = struct{}{}
		award.NewDigit = true
		award.Stars = t.starsPerDigit
		t.totalStars += t.starsPerDigit

		completed := t.Completed()
		t.enqueue("save progress", func(ctx context.Context) error {
			return t.store.SaveProgress(ctx, model.ProgressPatch{WritingCompleted: &completed})
		})
		stars := t.starsPerDigit
		t.enqueue("add stars", func(ctx context.Context) error {
			_, err := t.store.AddStars(ctx, stars)
			return err
		})

		if len(t.completed) >= DigitCount && !t.masteryUnlocked {
			t.masteryUnlocked = true
			award.Mastery = true
			award.Kind = FeedbackCelebration
			t.enqueue("unlock achievement", func(ctx context.Context) error {
				return t.store.UnlockAchievement(ctx, MasteryAchievement)
			})
		}
	}
	award.TotalStars = t.totalStars
	award.CompletedBy = len(t.completed)
	return award
}

// RecordAttempt queues an attempt for the history, if one is configured.
func (t *Tracker) RecordAttempt(rec model.AttemptRecord) {
	if t.history == nil {
		return
	}
	t.enqueue("insert attempt", func(ctx context.Context) error {
		_, err := t.history.InsertAttempt(ctx, rec)
		return err
	})
}

// ResetHints clears the failure counter.
func (t *Tracker) ResetHints() {
	t.failures = 0
}

// Failures returns the failed attempts since the last hint reset.
func (t *Tracker) Failures() int {
	return t.failures
}

// Hint returns the current escalating hint, or "" before any failure.
func (t *Tracker) Hint() string {
	return HintFor(t.failures)
}

// Completed returns the completed digits in ascending order.
func (t *Tracker) Completed() []int {
	out := make([]int, 0, len(t.completed))
	for d := range t.completed {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// IsComplete reports whether digit has been passed at least once.
func (t *Tracker) IsComplete(digit int) bool {
	_, ok := t.completed[digit]
	return ok
}

// TotalStars returns the optimistic star total.
func (t *Tracker) TotalStars() int {
	return t.totalStars
}

// Flush waits until every queued persistence job has run.
func (t *Tracker) Flush() {
	t.pending.Wait()
}

// Close flushes pending work and stops the worker. Later writes are dropped.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.pending.Wait()
	t.signal()
	<-t.done
}

// HintFor returns the hint shown after the given number of failures.
func HintFor(failures int) string {
	if failures <= 0 {
		return ""
	}
	if failures > len(hints) {
		failures = len(hints)
	}
	return hints[failures-1]
}

func (t *Tracker) enqueue(name string, run func(ctx context.Context) error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.logger.Warn("dropping persistence job after close", "job", name)
		return
	}
	t.pending.Add(1)
	t.queue = append(t.queue, job{name: name, run: run})
	t.mu.Unlock()
	t.signal()
}

func (t *Tracker) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *Tracker) worker() {
	defer close(t.done)
	for {
		t.mu.Lock()
		if len(t.queue) == 0 {
			closed := t.closed
			t.mu.Unlock()
			if closed {
				return
			}
			<-t.wake
			continue
		}
		j := t.queue[0]
		t.queue[0] = job{}
		t.queue = t.queue[1:]
		t.mu.Unlock()
		t.runJob(j)
	}
}

func (t *Tracker) runJob(j job) {
	defer t.pending.Done()
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := j.run(ctx); err != nil {
		if !errors.Is(err, model.ErrPersistence) {
			err = fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		t.logger.Warn("persistence failed", "job", j.name, "error", err)
	}
}
