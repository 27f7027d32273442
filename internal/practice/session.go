// Package practice runs a digit tracing session.
package practice

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/digitrace/internal/capture"
	"github.com/verte-zerg/digitrace/internal/catalog"
	"github.com/verte-zerg/digitrace/internal/feedback"
	"github.com/verte-zerg/digitrace/internal/logger"
	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/picker"
	"github.com/verte-zerg/digitrace/internal/progress"
)

// NoticeInsufficient is shown when a stroke ends before enough points were captured.
const NoticeInsufficient = "Keep your finger down a little longer"

// View is a read-only snapshot of the session for rendering.
type View struct {
	RunID      string
	Digit      int
	Template   model.DigitTemplate
	Canvas     model.Canvas
	State      model.AttemptState
	Stroke     []model.Point
	Signals    feedback.Signals
	Marker     model.Point
	Result     *model.MatchResult
	Award      *progress.Award
	Notice     string
	Completed  []int
	TotalStars int
	Guide      bool
	Hint       string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPicker replaces the digit picker.
func WithPicker(p *picker.Picker) Option {
	return func(s *Session) {
		if p != nil {
			s.picker = p
		}
	}
}

// WithWeakFactor sets the weight bonus for weak digits.
func WithWeakFactor(factor float64) Option {
	return func(s *Session) {
		s.weakFactor = factor
	}
}

// WithClock overrides the time source used for attempt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session wires the catalog, capture machine, tracker and picker together.
// It is not safe for concurrent use; callers drive it from one loop.
type Session struct {
	catalog *catalog.Catalog
	machine *capture.Machine
	tracker *progress.Tracker
	picker  *picker.Picker
	logger  *slog.Logger
	now     func() time.Time

	runID      string
	digit      int
	guide      bool
	notice     string
	award      *progress.Award
	startedAt  time.Time
	weakSet    map[int]struct{}
	weakFactor float64
}

// New starts a session on digit with a canvas of the given side.
func New(cat *catalog.Catalog, tracker *progress.Tracker, digit int, side float64, settings model.TraceSettings, opts ...Option) (*Session, error) {
	tmpl, err := cat.Template(digit)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s := &Session{
		catalog: cat,
		machine: capture.New(tmpl, side, settings),
		tracker: tracker,
		picker:  picker.New(),
		logger:  logger.Discard(),
		now:     time.Now,
		runID:   uuid.NewString(),
		digit:   digit,
		weakSet: map[int]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("run_id", s.runID)
	s.logger.Info("practice session started", "digit", digit, "canvas", side)
	return s, nil
}

// RunID returns the identifier shared by every attempt of this session.
func (s *Session) RunID() string {
	return s.runID
}

// Digit returns the digit being practiced.
func (s *Session) Digit() int {
	return s.digit
}

// SelectDigit switches to digit, discarding any attempt in progress.
func (s *Session) SelectDigit(digit int) error {
	tmpl, err := s.catalog.Template(digit)
	if err != nil {
		return err
	}
	s.digit = digit
	s.machine.SetTemplate(tmpl)
	s.tracker.ResetHints()
	s.award = nil
	s.notice = ""
	return nil
}

// PointerDown forwards a touch start to the capture machine.
func (s *Session) PointerDown(p model.Point) capture.Event {
	ev := s.machine.PointerDown(p)
	if ev.Kind == capture.EventArmed {
		s.startedAt = s.now()
		s.notice = ""
		s.award = nil
	}
	return ev
}

// PointerMove forwards a drag to the capture machine.
func (s *Session) PointerMove(p model.Point) capture.Event {
	return s.machine.PointerMove(p)
}

// PointerUp ends the attempt and scores it when the machine evaluated it.
func (s *Session) PointerUp(p model.Point) capture.Event {
	ev := s.machine.PointerUp(p)
	if errors.Is(ev.Err, model.ErrInsufficientInput) {
		s.notice = NoticeInsufficient
		s.logger.Debug("stroke too short", "digit", s.digit, "points", ev.Points)
		return ev
	}
	switch ev.Kind {
	case capture.EventRetry:
		s.logger.Debug("released outside end zone", "digit", s.digit)
	case capture.EventEvaluated:
		s.score(*ev.Result, ev.Points)
	}
	return ev
}

func (s *Session) score(res model.MatchResult, points int) {
	s.tracker.RecordAttempt(model.AttemptRecord{
		RunID:     s.runID,
		Digit:     s.digit,
		StartedAt: s.startedAt,
		EndedAt:   s.now(),
		Points:    points,
		Matched:   res.MatchedWaypointCount,
		Total:     res.TotalWaypointCount,
		Coverage:  res.Coverage,
		Passed:    res.Passed,
	})
	award := s.tracker.Record(s.digit, res)
	s.award = &award
	s.logger.Info("attempt evaluated",
		"digit", s.digit,
		"coverage", res.Coverage,
		"passed", res.Passed,
		"feedback", award.Kind.String(),
		"stars", award.Stars,
	)
}

// Dismiss acknowledges the feedback. After a success the session advances
// to the next digit; after an error the digit stays. It reports whether
// there was feedback to dismiss.
func (s *Session) Dismiss() bool {
	if !s.machine.Dismiss() {
		return false
	}
	award := s.award
	s.award = nil
	if award == nil || award.Kind == progress.FeedbackError {
		return true
	}
	next, ok := s.picker.Pick(s.digit, s.weakSet, s.weakFactor)
	if !ok {
		s.tracker.ResetHints()
		return true
	}
	if err := s.SelectDigit(next); err != nil {
		s.logger.Error("failed to advance digit", "digit", next, "error", err)
	}
	return true
}

// Clear wipes the canvas and the hint counter.
func (s *Session) Clear() {
	s.machine.Reset()
	s.tracker.ResetHints()
	s.award = nil
	s.notice = ""
}

// ToggleGuide flips the waypoint guide and returns the new value.
func (s *Session) ToggleGuide() bool {
	s.guide = !s.guide
	return s.guide
}

// Resize updates the canvas side.
func (s *Session) Resize(side float64) {
	s.machine.Resize(side)
}

// SetWeakDigits biases the next-digit choice toward set. An empty set
// restores the sequential order.
func (s *Session) SetWeakDigits(set map[int]struct{}) {
	s.weakSet = map[int]struct{}{}
	for d := range set {
		s.weakSet[d] = struct{}{}
	}
}

// Snapshot returns the current view.
func (s *Session) Snapshot() View {
	v := View{
		RunID:      s.runID,
		Digit:      s.digit,
		Template:   s.machine.Template(),
		Canvas:     s.machine.Canvas(),
		State:      s.machine.State(),
		Stroke:     s.machine.Stroke(),
		Signals:    s.machine.Signals(),
		Marker:     s.machine.Marker(),
		Notice:     s.notice,
		Completed:  s.tracker.Completed(),
		TotalStars: s.tracker.TotalStars(),
		Guide:      s.guide,
		Hint:       s.tracker.Hint(),
	}
	if res := s.machine.Result(); res != nil {
		copied := *res
		copied.Unmatched = append([]int(nil), res.Unmatched...)
		v.Result = &copied
	}
	if s.award != nil {
		copied := *s.award
		v.Award = &copied
	}
	return v
}
