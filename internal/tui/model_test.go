package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/digitrace/internal/catalog"
	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/practice"
	"github.com/verte-zerg/digitrace/internal/progress"
)

type stubStore struct{}

func (stubStore) GetProgress(context.Context) (model.Progress, error) {
	return model.Progress{}, nil
}

func (stubStore) SaveProgress(context.Context, model.ProgressPatch) error {
	return nil
}

func (stubStore) AddStars(_ context.Context, n int) (int, error) {
	return n, nil
}

func (stubStore) UnlockAchievement(context.Context, model.Achievement) error {
	return nil
}

type stubWeak struct {
	aggs []model.DigitAggregate
	err  error
}

func (s stubWeak) GetDigitAggregates(context.Context, int) ([]model.DigitAggregate, error) {
	return s.aggs, s.err
}

func newTestModel(t *testing.T, digit int, weak WeakSource) *Model {
	t.Helper()
	tracker := progress.NewTracker(stubStore{})
	t.Cleanup(tracker.Close)
	cfg := model.Config{
		FeedbackDelayMs: 1500,
		WeakTop:         2,
		WeakWindow:      10,
		FocusWeak:       weak != nil,
		Trace:           model.DefaultTraceSettings(),
	}
	session, err := practice.New(catalog.Default(), tracker, digit, cfg.Trace.CanvasSize, cfg.Trace)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	m := NewModel(cfg, session, weak, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return m
}

func cellFor(t *testing.T, m *Model, p model.Point) (int, int) {
	t.Helper()
	col, row, ok := m.layout.toCell(p)
	if !ok {
		t.Fatalf("point %+v is off the canvas", p)
	}
	return m.layout.originX + col, m.layout.originY + row
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// traceOne drags along the vertical stroke of the 1 and returns the release command.
func traceOne(t *testing.T, m *Model) tea.Cmd {
	t.Helper()
	v := m.session.Snapshot()
	start := v.Canvas.Scale(v.Template.Start())
	top := v.Canvas.Scale(v.Template.Waypoints[1])
	end := v.Canvas.Scale(v.Template.End())
	mid := model.Point{X: top.X, Y: (top.Y + end.Y) / 2}

	x, y := cellFor(t, m, start)
	m.Update(mouse(x, y, tea.MouseActionPress))
	for _, p := range []model.Point{top, mid, end} {
		x, y = cellFor(t, m, p)
		m.Update(mouse(x, y, tea.MouseActionMotion))
	}
	_, cmd := m.Update(mouse(x, y, tea.MouseActionRelease))
	return cmd
}

func TestWindowSizeResizesSession(t *testing.T) {
	m := newTestModel(t, 1, nil)
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 15})
	if got := m.session.Snapshot().Canvas.Side; got != 112 {
		t.Fatalf("expected canvas side 112, got %v", got)
	}
}

func TestMouseTraceShowsSuccessAndAdvances(t *testing.T) {
	m := newTestModel(t, 1, nil)
	cmd := traceOne(t, m)
	if cmd == nil {
		t.Fatalf("expected a feedback timer")
	}

	v := m.session.Snapshot()
	if v.State != model.StateFeedback || v.Award == nil || v.Award.Kind != progress.FeedbackSuccess {
		t.Fatalf("expected success feedback, got state %v award %+v", v.State, v.Award)
	}
	if out := m.View(); !strings.Contains(out, "Great job! +2 ★") {
		t.Fatalf("expected success banner in view:\n%s", out)
	}

	stale := feedbackTimeoutMsg{seq: m.feedbackSeq - 1}
	m.Update(stale)
	if m.session.Snapshot().State != model.StateFeedback {
		t.Fatalf("stale timer should not dismiss")
	}
	m.Update(feedbackTimeoutMsg{seq: m.feedbackSeq})
	if m.session.Digit() != 2 {
		t.Fatalf("expected to advance to 2, got %d", m.session.Digit())
	}
}

func TestPressOutsideStartDoesNotArm(t *testing.T) {
	m := newTestModel(t, 1, nil)
	v := m.session.Snapshot()
	x, y := cellFor(t, m, v.Canvas.Scale(model.Point{X: 0.95, Y: 0.95}))
	m.Update(mouse(x, y, tea.MouseActionPress))
	if m.tracing || m.session.Snapshot().State != model.StateIdle {
		t.Fatalf("expected press far from the start to be ignored")
	}
	m.Update(mouse(x, y, tea.MouseActionRelease))
	if m.session.Snapshot().State != model.StateIdle {
		t.Fatalf("expected idle state")
	}
}

func TestKeysSelectClearAndQuit(t *testing.T) {
	m := newTestModel(t, 1, nil)
	m.Update(keyPress("4"))
	if m.session.Digit() != 4 {
		t.Fatalf("expected digit 4, got %d", m.session.Digit())
	}
	m.Update(keyPress("g"))
	if !m.session.Snapshot().Guide {
		t.Fatalf("expected guide on")
	}
	m.Update(keyPress("c"))
	if m.session.Snapshot().State != model.StateIdle {
		t.Fatalf("expected idle after clear")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestEnterDismissesFeedback(t *testing.T) {
	m := newTestModel(t, 1, nil)
	traceOne(t, m)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Digit() != 2 || m.session.Snapshot().State != model.StateIdle {
		t.Fatalf("expected enter to dismiss and advance")
	}
}

func TestDemoBlocksPointerInput(t *testing.T) {
	m := newTestModel(t, 1, nil)
	_, cmd := m.Update(keyPress("d"))
	if cmd == nil || !m.demoActive() {
		t.Fatalf("expected demo to start")
	}
	v := m.session.Snapshot()
	x, y := cellFor(t, m, v.Canvas.Scale(v.Template.Start()))
	m.Update(mouse(x, y, tea.MouseActionPress))
	if m.session.Snapshot().State != model.StateIdle {
		t.Fatalf("expected pointer input to be ignored during demo")
	}
	if out := m.View(); !strings.Contains(out, "Watch how the digit is drawn") {
		t.Fatalf("expected demo banner:\n%s", out)
	}

	steps := len(m.demoPath)
	for i := 0; i < steps; i++ {
		m.Update(demoTickMsg{seq: m.demoSeq})
	}
	if m.demoActive() {
		t.Fatalf("expected demo to finish after %d ticks", steps)
	}
	m.Update(mouse(x, y, tea.MouseActionPress))
	if m.session.Snapshot().State != model.StateArmed {
		t.Fatalf("expected pointer input after demo")
	}
}

func TestInitLoadsWeakDigits(t *testing.T) {
	weak := stubWeak{aggs: []model.DigitAggregate{
		{Digit: 3, Attempts: 4, Passes: 1},
		{Digit: 5, Attempts: 4, Passes: 4},
		{Digit: 8, Attempts: 2, Passes: 0},
	}}
	m := newTestModel(t, 1, weak)
	cmd := m.Init()
	if cmd == nil {
		t.Fatalf("expected weak refresh command")
	}
	msg, ok := cmd().(weakSetMsg)
	if !ok {
		t.Fatalf("expected weakSetMsg")
	}
	if msg.err != nil || len(msg.set) != 2 {
		t.Fatalf("unexpected weak set %+v", msg)
	}
	for _, d := range []int{3, 8} {
		if _, ok := msg.set[d]; !ok {
			t.Fatalf("expected digit %d in weak set %v", d, msg.set)
		}
	}
	m.Update(msg)

	failing := newTestModel(t, 1, stubWeak{err: errors.New("locked")})
	msg = failing.Init()().(weakSetMsg)
	if msg.err == nil {
		t.Fatalf("expected error to be reported")
	}
	failing.Update(msg)

	if newTestModel(t, 1, nil).Init() != nil {
		t.Fatalf("expected no command without weak focus")
	}
}

func TestStatusLines(t *testing.T) {
	tmpl, err := catalog.Default().Template(7)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	v := practice.View{Digit: 7, Template: tmpl}
	lines := statusLines(v, false)
	if lines[0] != "Press on the green S and trace to the red E" || lines[1] != tmpl.Hint {
		t.Fatalf("unexpected idle status %q", lines)
	}

	v.Notice = practice.NoticeInsufficient
	if got := statusLines(v, false)[0]; got != practice.NoticeInsufficient {
		t.Fatalf("expected notice banner, got %q", got)
	}

	v.Result = &model.MatchResult{MatchedWaypointCount: 1, TotalWaypointCount: 3}
	v.Award = &progress.Award{Kind: progress.FeedbackError, Failures: 2}
	v.Hint = progress.HintFor(2)
	lines = statusLines(v, false)
	if lines[0] != "Not quite, 1 of 3 points covered. Try again!" || lines[1] != progress.HintFor(2) {
		t.Fatalf("unexpected error status %q", lines)
	}

	v.Award = &progress.Award{Kind: progress.FeedbackCelebration, Stars: 2, Mastery: true}
	if got := statusLines(v, false)[0]; !strings.Contains(got, "Writing Master unlocked") {
		t.Fatalf("unexpected celebration banner %q", got)
	}
}

func TestFitWidthTruncates(t *testing.T) {
	if got := fitWidth("Trace the digit 3", 40); got != "Trace the digit 3" {
		t.Fatalf("unexpected untruncated value %q", got)
	}
	got := fitWidth("Trace the digit 3  ·  ★ 12", 10)
	if got != "Trace the…" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
