// Package feedback derives live guidance signals for a stroke in progress.
package feedback

import (
	"math"

	"github.com/verte-zerg/digitrace/internal/model"
)

// Strokes shorter than this are always reported on-path.
const graceLength = 3

// Glow is the colour cue around the tracing marker.
type Glow int

const (
	GlowNone Glow = iota
	GlowOnPath
	GlowOffPath
)

func (g Glow) String() string {
	switch g {
	case GlowOnPath:
		return "on-path"
	case GlowOffPath:
		return "off-path"
	default:
		return "none"
	}
}

// Signals are the per-move cues. On-path and approach are independent.
type Signals struct {
	OnPath          bool
	NearestWaypoint float64
	Glow            Glow
	Pulse           bool

	Approach      bool
	DistanceToEnd float64
	RingIntensity float64
}

// Evaluate computes the signals for the latest point of a stroke with
// captured points in total.
func Evaluate(current model.Point, captured int, tmpl model.DigitTemplate, canvas model.Canvas, settings model.TraceSettings) Signals {
	var s Signals

	s.NearestWaypoint = math.Inf(1)
	for _, wp := range tmpl.Waypoints {
		if d := model.Dist(current, canvas.Scale(wp)); d < s.NearestWaypoint {
			s.NearestWaypoint = d
		}
	}
	nearPath := s.NearestWaypoint < settings.PathTolerancePx(canvas)
	s.OnPath = nearPath || captured < graceLength
	if s.OnPath {
		s.Glow = GlowOnPath
	} else {
		s.Glow = GlowOffPath
		s.Pulse = settings.PulseEvery > 0 && captured%settings.PulseEvery == 0
	}

	s.DistanceToEnd = model.Dist(current, canvas.Scale(tmpl.End()))
	if settings.GuideRadius > 0 && s.DistanceToEnd < settings.GuideRadius {
		s.Approach = true
		s.RingIntensity = 1 - s.DistanceToEnd/settings.GuideRadius
	}
	return s
}
