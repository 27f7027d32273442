// Package tui provides the Bubble Tea tracing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/digitrace/internal/capture"
	logpkg "github.com/verte-zerg/digitrace/internal/logger"
	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/practice"
	"github.com/verte-zerg/digitrace/internal/progress"
	statsPkg "github.com/verte-zerg/digitrace/internal/stats"
)

const (
	demoInterval    = 40 * time.Millisecond
	weakLoadTimeout = 2 * time.Second
)

// WeakSource provides recent per-digit aggregates for weak-digit focus.
type WeakSource interface {
	GetDigitAggregates(ctx context.Context, window int) ([]model.DigitAggregate, error)
}

type feedbackTimeoutMsg struct {
	seq int
}

type demoTickMsg struct {
	seq int
}

type weakSetMsg struct {
	set map[int]struct{}
	err error
}

// Model implements the Bubble Tea tracing UI.
type Model struct {
	cfg     model.Config
	session *practice.Session
	weak    WeakSource
	logger  *slog.Logger
	keys    keyMap
	help    help.Model

	width  int
	height int
	layout layout

	tracing     bool
	feedbackSeq int

	demoSeq  int
	demoPath []model.Point
	demoIdx  int
}

// NewModel constructs a tracing TUI model. weak may be nil when weak-digit
// focus is disabled.
func NewModel(cfg model.Config, session *practice.Session, weak WeakSource, logger *slog.Logger) *Model {
	if logger == nil {
		logger = logpkg.Discard()
	}
	m := &Model{
		cfg:     cfg,
		session: session,
		weak:    weak,
		logger:  logger,
		keys:    newKeyMap(),
		help:    help.New(),
	}
	m.layout = newLayout(0, 0, cfg.Trace.CanvasSize)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.refreshWeakCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout = newLayout(msg.Width, msg.Height, m.cfg.Trace.CanvasSize)
		m.session.Resize(m.layout.side)
		m.stopDemo()
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		if m.demoActive() {
			return m, nil
		}
		return m, m.handleMouse(msg)
	case feedbackTimeoutMsg:
		if msg.seq != m.feedbackSeq || m.session.Snapshot().State != model.StateFeedback {
			return m, nil
		}
		return m, m.dismiss()
	case demoTickMsg:
		if msg.seq != m.demoSeq || !m.demoActive() {
			return m, nil
		}
		m.demoIdx++
		if m.demoIdx >= len(m.demoPath) {
			m.stopDemo()
			return m, nil
		}
		return m, m.demoTick()
	case weakSetMsg:
		if msg.err != nil {
			m.logger.Warn("failed to load weak digits", "error", msg.err)
			return m, nil
		}
		if len(msg.set) == 0 {
			m.logger.Info("no stats available for weak-digit focus yet; using sequential order")
		}
		m.session.SetWeakDigits(msg.set)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Digit):
		m.stopDemo()
		m.tracing = false
		digit := int(msg.String()[0] - '0')
		if err := m.session.SelectDigit(digit); err != nil {
			m.logger.Error("failed to select digit", "digit", digit, "error", err)
		}
		m.feedbackSeq++
	case key.Matches(msg, m.keys.Clear):
		m.stopDemo()
		m.tracing = false
		m.session.Clear()
		m.feedbackSeq++
	case key.Matches(msg, m.keys.Guide):
		m.session.ToggleGuide()
	case key.Matches(msg, m.keys.Demo):
		return m.startDemo()
	case key.Matches(msg, m.keys.Dismiss):
		return m.dismiss()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p, inside := m.layout.toPoint(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return nil
		}
		if m.tracing {
			// The previous release never arrived.
			m.session.Clear()
		}
		ev := m.session.PointerDown(p)
		m.tracing = ev.Kind == capture.EventArmed
	case tea.MouseActionMotion:
		if !m.tracing || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		m.session.PointerMove(p)
	case tea.MouseActionRelease:
		if !m.tracing {
			return nil
		}
		m.tracing = false
		ev := m.session.PointerUp(p)
		if ev.Kind == capture.EventEvaluated {
			return m.scheduleDismiss()
		}
	}
	return nil
}

func (m *Model) scheduleDismiss() tea.Cmd {
	m.feedbackSeq++
	if m.cfg.FeedbackDelayMs <= 0 {
		return nil
	}
	delay := time.Duration(m.cfg.FeedbackDelayMs) * time.Millisecond
	if award := m.session.Snapshot().Award; award != nil && award.Kind == progress.FeedbackCelebration {
		delay *= 2
	}
	seq := m.feedbackSeq
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return feedbackTimeoutMsg{seq: seq}
	})
}

func (m *Model) dismiss() tea.Cmd {
	if !m.session.Dismiss() {
		return nil
	}
	m.feedbackSeq++
	return m.refreshWeakCmd()
}

func (m *Model) refreshWeakCmd() tea.Cmd {
	if !m.cfg.FocusWeak || m.weak == nil {
		return nil
	}
	weak := m.weak
	window := m.cfg.WeakWindow
	top := m.cfg.WeakTop
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), weakLoadTimeout)
		defer cancel()
		aggs, err := weak.GetDigitAggregates(ctx, window)
		if err != nil {
			return weakSetMsg{err: fmt.Errorf("failed to load digit aggregates: %w", err)}
		}
		return weakSetMsg{set: statsPkg.SelectWeakDigits(aggs, top)}
	}
}

func (m *Model) startDemo() tea.Cmd {
	m.tracing = false
	m.session.Clear()
	v := m.session.Snapshot()
	scaled := make([]model.Point, len(v.Template.Waypoints))
	for i, wp := range v.Template.Waypoints {
		scaled[i] = v.Canvas.Scale(wp)
	}
	m.demoPath = samplePath(scaled, m.layout.colPx())
	m.demoIdx = 0
	m.demoSeq++
	return m.demoTick()
}

func (m *Model) demoTick() tea.Cmd {
	seq := m.demoSeq
	return tea.Tick(demoInterval, func(time.Time) tea.Msg {
		return demoTickMsg{seq: seq}
	})
}

func (m *Model) stopDemo() {
	m.demoPath = nil
	m.demoIdx = 0
	m.demoSeq++
}

func (m *Model) demoActive() bool {
	return len(m.demoPath) > 0
}
