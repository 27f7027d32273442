// Package matcher scores a completed stroke against a digit template.
//
// Scoring is unordered coverage: a waypoint counts as matched when any stroke
// point lies within the path tolerance of it, regardless of the order or
// direction in which the stroke visited the waypoints.
package matcher

import (
	"math"

	"github.com/verte-zerg/digitrace/internal/model"
)

// Match scores stroke against tmpl on the given canvas.
func Match(stroke []model.Point, tmpl model.DigitTemplate, canvas model.Canvas, settings model.TraceSettings) model.MatchResult {
	tolerance := settings.PathTolerancePx(canvas)
	total := len(tmpl.Waypoints)
	matched := 0
	var unmatched []int
	for i, wp := range tmpl.Waypoints {
		if nearestDistance(canvas.Scale(wp), stroke) < tolerance {
			matched++
			continue
		}
		unmatched = append(unmatched, i)
	}

	coverage := 0.0
	if total > 0 {
		coverage = float64(matched) / float64(total)
	}
	return model.MatchResult{
		MatchedWaypointCount: matched,
		TotalWaypointCount:   total,
		Coverage:             coverage,
		Passed:               coverage >= settings.MinAccuracy,
		Unmatched:            unmatched,
	}
}

func nearestDistance(target model.Point, points []model.Point) float64 {
	best := math.Inf(1)
	for _, p := range points {
		if d := model.Dist(target, p); d < best {
			best = d
		}
	}
	return best
}
