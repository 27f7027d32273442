// Package capture owns the lifecycle of a single tracing attempt.
//
// A Machine is driven by pointer events in arrival order from one goroutine.
// It never blocks: every call returns immediately with the resulting Event.
package capture

import (
	"github.com/verte-zerg/digitrace/internal/feedback"
	"github.com/verte-zerg/digitrace/internal/matcher"
	"github.com/verte-zerg/digitrace/internal/model"
)

// EventKind describes what a pointer event did to the attempt.
type EventKind int

const (
	// EventIgnored means the event did not apply to the current state.
	EventIgnored EventKind = iota
	// EventArmed means the touch began on the start marker.
	EventArmed
	// EventMoved means a point was appended and signals were refreshed.
	EventMoved
	// EventRetry means the finger lifted outside the end zone; not scored.
	EventRetry
	// EventInsufficient means the stroke was too short to evaluate.
	EventInsufficient
	// EventEvaluated means the matcher produced a verdict.
	EventEvaluated
)

func (k EventKind) String() string {
	switch k {
	case EventArmed:
		return "armed"
	case EventMoved:
		return "moved"
	case EventRetry:
		return "retry"
	case EventInsufficient:
		return "insufficient"
	case EventEvaluated:
		return "evaluated"
	default:
		return "ignored"
	}
}

// Event is the outcome of one pointer event.
type Event struct {
	Kind    EventKind
	Marker  model.Point
	Signals feedback.Signals
	Result  *model.MatchResult
	// Points is the stroke length at the time of the event.
	Points int
	// Err is set when the stroke could not be evaluated.
	Err error
}

// Machine is the capture state machine for one digit template.
type Machine struct {
	tmpl     model.DigitTemplate
	canvas   model.Canvas
	settings model.TraceSettings

	state   model.AttemptState
	stroke  []model.Point
	marker  model.Point
	signals feedback.Signals
	result  *model.MatchResult
}

// New returns an idle machine for tmpl on a canvas of the given side.
func New(tmpl model.DigitTemplate, side float64, settings model.TraceSettings) *Machine {
	m := &Machine{
		tmpl:     tmpl,
		canvas:   model.Canvas{Side: side},
		settings: settings,
	}
	m.Reset()
	return m
}

// Reset discards any attempt and re-snaps the marker to the template start.
func (m *Machine) Reset() {
	m.state = model.StateIdle
	m.stroke = nil
	m.signals = feedback.Signals{}
	m.result = nil
	m.snapMarker()
}

// SetTemplate switches to another digit and resets the attempt.
func (m *Machine) SetTemplate(tmpl model.DigitTemplate) {
	m.tmpl = tmpl
	m.Reset()
}

// Resize changes the canvas side. Live stroke points and the marker are
// rescaled so they stay comparable with the template.
func (m *Machine) Resize(side float64) {
	if side <= 0 || side == m.canvas.Side {
		return
	}
	next := model.Canvas{Side: side}
	for i, p := range m.stroke {
		m.stroke[i] = m.canvas.Rescale(p, next)
	}
	m.marker = m.canvas.Rescale(m.marker, next)
	m.canvas = next
}

// PointerDown arms the machine when p lands within the start tolerance.
func (m *Machine) PointerDown(p model.Point) Event {
	if m.state != model.StateIdle {
		return m.ignored()
	}
	start := m.canvas.Scale(m.tmpl.Start())
	if model.Dist(p, start) > m.settings.StartTolerance {
		return m.ignored()
	}
	m.state = model.StateArmed
	m.stroke = []model.Point{p}
	m.marker = p
	m.result = nil
	m.signals = feedback.Evaluate(p, len(m.stroke), m.tmpl, m.canvas, m.settings)
	return Event{Kind: EventArmed, Marker: p, Signals: m.signals, Points: 1}
}

// PointerMove appends q to the live stroke and refreshes the signals.
func (m *Machine) PointerMove(q model.Point) Event {
	if m.state != model.StateArmed && m.state != model.StateTracing {
		return m.ignored()
	}
	m.state = model.StateTracing
	m.stroke = append(m.stroke, q)
	m.marker = q
	m.signals = feedback.Evaluate(q, len(m.stroke), m.tmpl, m.canvas, m.settings)
	return Event{Kind: EventMoved, Marker: q, Signals: m.signals, Points: len(m.stroke)}
}

// PointerUp ends the attempt. Releasing outside the end zone is a silent
// retry; releasing inside it evaluates the stroke.
func (m *Machine) PointerUp(r model.Point) Event {
	if m.state != model.StateArmed && m.state != model.StateTracing {
		return m.ignored()
	}
	end := m.canvas.Scale(m.tmpl.End())
	if model.Dist(r, end) > m.settings.EndTolerance {
		m.Reset()
		return Event{Kind: EventRetry, Marker: m.marker}
	}

	m.state = model.StateEvaluating
	points := len(m.stroke)
	if points < m.settings.MinPoints {
		m.Reset()
		return Event{Kind: EventInsufficient, Marker: m.marker, Points: points, Err: model.ErrInsufficientInput}
	}

	res := matcher.Match(m.stroke, m.tmpl, m.canvas, m.settings)
	m.result = &res
	m.state = model.StateFeedback
	m.signals = feedback.Signals{}
	return Event{Kind: EventEvaluated, Marker: m.marker, Result: m.result, Points: points}
}

// Dismiss acknowledges the feedback and returns to idle.
func (m *Machine) Dismiss() bool {
	if m.state != model.StateFeedback {
		return false
	}
	m.Reset()
	return true
}

// State returns the current attempt state.
func (m *Machine) State() model.AttemptState {
	return m.state
}

// Stroke returns a copy of the live stroke.
func (m *Machine) Stroke() []model.Point {
	return append([]model.Point(nil), m.stroke...)
}

// Signals returns the most recent live signals.
func (m *Machine) Signals() feedback.Signals {
	return m.signals
}

// Result returns the verdict held while in feedback, or nil.
func (m *Machine) Result() *model.MatchResult {
	return m.result
}

// Marker returns the tracing marker position in canvas pixels.
func (m *Machine) Marker() model.Point {
	return m.marker
}

// Canvas returns the current canvas geometry.
func (m *Machine) Canvas() model.Canvas {
	return m.canvas
}

// Template returns the active template.
func (m *Machine) Template() model.DigitTemplate {
	return m.tmpl
}

func (m *Machine) snapMarker() {
	if len(m.tmpl.Waypoints) == 0 {
		return
	}
	m.marker = m.canvas.Scale(m.tmpl.Start())
}

func (m *Machine) ignored() Event {
	return Event{Kind: EventIgnored, Marker: m.marker, Signals: m.signals, Points: len(m.stroke)}
}
