package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/digitrace/internal/catalog"
	"github.com/verte-zerg/digitrace/internal/feedback"
	"github.com/verte-zerg/digitrace/internal/model"
)

const side = 280.0

func newMachine(t *testing.T, digit int) (*Machine, model.DigitTemplate) {
	t.Helper()
	tmpl, err := catalog.Default().Template(digit)
	require.NoError(t, err)
	return New(tmpl, side, model.DefaultTraceSettings()), tmpl
}

func px(p model.Point) model.Point {
	return model.Canvas{Side: side}.Scale(p)
}

func TestPointerDownFarFromStartStaysIdle(t *testing.T) {
	m, tmpl := newMachine(t, 1)
	start := px(tmpl.Start())

	ev := m.PointerDown(model.Point{X: start.X + 200, Y: start.Y})
	assert.Equal(t, EventIgnored, ev.Kind)
	assert.Equal(t, model.StateIdle, m.State())
	assert.Empty(t, m.Stroke())

	ev = m.PointerMove(model.Point{X: start.X + 150, Y: start.Y})
	assert.Equal(t, EventIgnored, ev.Kind)
	assert.Empty(t, m.Stroke())
}

func TestPointerDownOnToleranceEdgeArms(t *testing.T) {
	m, tmpl := newMachine(t, 1)
	start := px(tmpl.Start())
	p := model.Point{X: start.X + 80, Y: start.Y}

	ev := m.PointerDown(p)
	assert.Equal(t, EventArmed, ev.Kind)
	assert.Equal(t, model.StateArmed, m.State())
	assert.Equal(t, []model.Point{p}, m.Stroke())
	assert.Equal(t, p, m.Marker())
}

func TestFullTraceEvaluatesAndDismisses(t *testing.T) {
	m, tmpl := newMachine(t, 5)
	require.Equal(t, EventArmed, m.PointerDown(px(tmpl.Start())).Kind)
	for _, wp := range tmpl.Waypoints[1:] {
		ev := m.PointerMove(px(wp))
		require.Equal(t, EventMoved, ev.Kind)
		assert.True(t, ev.Signals.OnPath)
	}
	assert.Equal(t, model.StateTracing, m.State())

	ev := m.PointerUp(px(tmpl.End()))
	require.Equal(t, EventEvaluated, ev.Kind)
	require.NotNil(t, ev.Result)
	assert.True(t, ev.Result.Passed)
	assert.Equal(t, 1.0, ev.Result.Coverage)
	assert.Equal(t, len(tmpl.Waypoints), ev.Points)
	assert.Equal(t, model.StateFeedback, m.State())

	// Feedback holds until dismissed; touches are ignored meanwhile.
	assert.Equal(t, EventIgnored, m.PointerDown(px(tmpl.Start())).Kind)
	assert.Equal(t, model.StateFeedback, m.State())

	assert.True(t, m.Dismiss())
	assert.Equal(t, model.StateIdle, m.State())
	assert.Nil(t, m.Result())
	assert.Empty(t, m.Stroke())
	assert.False(t, m.Dismiss())
}

func TestReleaseOutsideEndZoneIsSilentRetry(t *testing.T) {
	m, tmpl := newMachine(t, 7)
	m.PointerDown(px(tmpl.Start()))
	m.PointerMove(model.Point{X: 150, Y: 40})
	m.PointerMove(model.Point{X: 200, Y: 40})

	ev := m.PointerUp(model.Point{X: 200, Y: 40})
	assert.Equal(t, EventRetry, ev.Kind)
	assert.Nil(t, ev.Result)
	assert.Equal(t, model.StateIdle, m.State())
	assert.Empty(t, m.Stroke())
	assert.Equal(t, px(tmpl.Start()), m.Marker())
}

func TestShortStrokeIsInsufficientAndNeverMatched(t *testing.T) {
	m, tmpl := newMachine(t, 7)
	m.PointerDown(px(tmpl.Start()))
	m.PointerMove(px(tmpl.Waypoints[1]))

	ev := m.PointerUp(px(tmpl.End()))
	assert.Equal(t, EventInsufficient, ev.Kind)
	assert.ErrorIs(t, ev.Err, model.ErrInsufficientInput)
	assert.Equal(t, 2, ev.Points)
	assert.Nil(t, ev.Result)
	assert.Nil(t, m.Result())
	assert.Equal(t, model.StateIdle, m.State())
	assert.Empty(t, m.Stroke())

	// A third point is enough to be evaluated.
	m.PointerDown(px(tmpl.Start()))
	m.PointerMove(px(tmpl.Waypoints[1]))
	m.PointerMove(px(tmpl.End()))
	ev = m.PointerUp(px(tmpl.End()))
	assert.Equal(t, EventEvaluated, ev.Kind)
	require.NotNil(t, ev.Result)
	assert.True(t, ev.Result.Passed)
}

func TestUpWithoutDownIsIgnored(t *testing.T) {
	m, tmpl := newMachine(t, 2)
	ev := m.PointerUp(px(tmpl.End()))
	assert.Equal(t, EventIgnored, ev.Kind)
	assert.Equal(t, model.StateIdle, m.State())
}

func TestOffPathMoveReportsAmberGlow(t *testing.T) {
	tmpl, err := catalog.Default().Template(7)
	require.NoError(t, err)
	settings := model.DefaultTraceSettings()
	settings.PathTolerance = 0.05
	m := New(tmpl, side, settings)

	m.PointerDown(px(tmpl.Start()))
	m.PointerMove(model.Point{X: 60, Y: 40})
	ev := m.PointerMove(model.Point{X: 140, Y: 200})
	assert.Equal(t, 3, ev.Points)
	assert.False(t, ev.Signals.OnPath)
	assert.Equal(t, feedback.GlowOffPath, m.Signals().Glow)
	assert.Equal(t, model.StateTracing, m.State())
}

func TestResizeRescalesLiveStroke(t *testing.T) {
	m, tmpl := newMachine(t, 1)
	m.PointerDown(px(tmpl.Start()))
	m.PointerMove(px(tmpl.Waypoints[1]))

	m.Resize(side / 2)
	assert.Equal(t, side/2, m.Canvas().Side)
	half := model.Canvas{Side: side / 2}
	stroke := m.Stroke()
	require.Len(t, stroke, 2)
	assertNear(t, half.Scale(tmpl.Waypoints[0]), stroke[0])
	assertNear(t, half.Scale(tmpl.Waypoints[1]), stroke[1])
	assertNear(t, half.Scale(tmpl.Waypoints[1]), m.Marker())

	m.PointerMove(half.Scale(tmpl.End()))
	ev := m.PointerUp(half.Scale(tmpl.End()))
	require.Equal(t, EventEvaluated, ev.Kind)
	assert.Equal(t, 1.0, ev.Result.Coverage)
}

func TestSetTemplateResetsAttempt(t *testing.T) {
	m, tmpl := newMachine(t, 1)
	m.PointerDown(px(tmpl.Start()))
	other, err := catalog.Default().Template(4)
	require.NoError(t, err)

	m.SetTemplate(other)
	assert.Equal(t, model.StateIdle, m.State())
	assert.Empty(t, m.Stroke())
	assert.Equal(t, px(other.Start()), m.Marker())
	assert.Equal(t, 4, m.Template().Digit)
}

func assertNear(t *testing.T, want, got model.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}
