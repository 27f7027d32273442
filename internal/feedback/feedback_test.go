package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/digitrace/internal/catalog"
	"github.com/verte-zerg/digitrace/internal/model"
)

var canvas = model.Canvas{Side: 280}

func digitSeven(t *testing.T) model.DigitTemplate {
	t.Helper()
	tmpl, err := catalog.Default().Template(7)
	require.NoError(t, err)
	return tmpl
}

func tight() model.TraceSettings {
	s := model.DefaultTraceSettings()
	s.PathTolerance = 0.05
	return s
}

func TestGraceAtStrokeStart(t *testing.T) {
	tmpl := digitSeven(t)
	far := model.Point{X: 140, Y: 200}
	for captured := 1; captured < 3; captured++ {
		s := Evaluate(far, captured, tmpl, canvas, tight())
		assert.True(t, s.OnPath, "captured=%d", captured)
		assert.Equal(t, GlowOnPath, s.Glow)
		assert.False(t, s.Pulse)
	}
	s := Evaluate(far, 3, tmpl, canvas, tight())
	assert.False(t, s.OnPath)
	assert.Equal(t, GlowOffPath, s.Glow)
}

func TestPulseCadence(t *testing.T) {
	tmpl := digitSeven(t)
	far := model.Point{X: 140, Y: 200}
	var pulses []int
	for captured := 3; captured <= 24; captured++ {
		if Evaluate(far, captured, tmpl, canvas, tight()).Pulse {
			pulses = append(pulses, captured)
		}
	}
	assert.Equal(t, []int{8, 16, 24}, pulses)
}

func TestNoPulseWhileOnPath(t *testing.T) {
	tmpl := digitSeven(t)
	onStart := canvas.Scale(tmpl.Start())
	s := Evaluate(onStart, 16, tmpl, canvas, tight())
	assert.True(t, s.OnPath)
	assert.False(t, s.Pulse)
	assert.Zero(t, s.NearestWaypoint)
}

func TestApproachIndependentOfPath(t *testing.T) {
	tmpl := digitSeven(t)
	end := canvas.Scale(tmpl.End())

	nearEndOffPath := model.Point{X: end.X + 50, Y: end.Y}
	s := Evaluate(nearEndOffPath, 10, tmpl, canvas, tight())
	assert.False(t, s.OnPath)
	assert.True(t, s.Approach)
	assert.InDelta(t, 50, s.DistanceToEnd, 1e-9)
	assert.InDelta(t, 0.5, s.RingIntensity, 1e-9)

	onPathFarFromEnd := canvas.Scale(tmpl.Start())
	s = Evaluate(onPathFarFromEnd, 10, tmpl, canvas, tight())
	assert.True(t, s.OnPath)
	assert.False(t, s.Approach)
	assert.Zero(t, s.RingIntensity)
}

func TestRingIntensityPeaksAtEnd(t *testing.T) {
	tmpl := digitSeven(t)
	s := Evaluate(canvas.Scale(tmpl.End()), 10, tmpl, canvas, tight())
	assert.True(t, s.Approach)
	assert.Equal(t, 1.0, s.RingIntensity)
}
