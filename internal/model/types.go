// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Digit           int     `validate:"gte=0,lte=9"`
	WeakTop         int     `validate:"gte=0,lte=10"`
	WeakFactor      float64 `validate:"gte=0"`
	WeakWindow      int     `validate:"gte=0"`
	FeedbackDelayMs int     `validate:"gte=0"`
	LogLevel        string  `validate:"oneof=debug info warn error"`
	FocusWeak       bool
	TemplatesPath   string
	Trace           TraceSettings
}

// TraceSettings holds the tolerances that drive capture, feedback and matching.
// Distances are canvas pixels except PathTolerance, which is a fraction of the
// canvas side so it follows the canvas when it is resized.
type TraceSettings struct {
	CanvasSize     float64 `validate:"gt=0"`
	StartTolerance float64 `validate:"gt=0"`
	EndTolerance   float64 `validate:"gt=0"`
	PathTolerance  float64 `validate:"gt=0,lte=1"`
	MinAccuracy    float64 `validate:"gte=0,lte=1"`
	MinPoints      int     `validate:"gte=1"`
	GuideRadius    float64 `validate:"gt=0"`
	PulseEvery     int     `validate:"gte=1"`
	StarsPerDigit  int     `validate:"gte=0"`
}

// DefaultTraceSettings returns the forgiving defaults tuned for young learners.
func DefaultTraceSettings() TraceSettings {
	return TraceSettings{
		CanvasSize:     280,
		StartTolerance: 80,
		EndTolerance:   80,
		PathTolerance:  0.4,
		MinAccuracy:    0.3,
		MinPoints:      3,
		GuideRadius:    100,
		PulseEvery:     8,
		StarsPerDigit:  2,
	}
}

// PathTolerancePx converts the path tolerance into pixels for the canvas.
func (s TraceSettings) PathTolerancePx(c Canvas) float64 {
	return s.PathTolerance * c.Side
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since  *time.Time
	Last   int
	Window int
}

// DigitTemplate is the reference path for one digit.
type DigitTemplate struct {
	Digit     int
	Waypoints []Point
	Hint      string
}

// Start returns the canonical start waypoint.
func (t DigitTemplate) Start() Point {
	return t.Waypoints[0]
}

// End returns the canonical end waypoint.
func (t DigitTemplate) End() Point {
	return t.Waypoints[len(t.Waypoints)-1]
}

// MatchResult is the verdict for one evaluated stroke.
type MatchResult struct {
	MatchedWaypointCount int
	TotalWaypointCount   int
	Coverage             float64
	Passed               bool

	// Unmatched lists template waypoint indices with no nearby stroke point.
	Unmatched []int
}

// AttemptState is the lifecycle state of one tracing attempt.
type AttemptState int

const (
	StateIdle AttemptState = iota
	StateArmed
	StateTracing
	StateEvaluating
	StateFeedback
)

func (s AttemptState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateTracing:
		return "tracing"
	case StateEvaluating:
		return "evaluating"
	case StateFeedback:
		return "feedback"
	default:
		return "unknown"
	}
}

// Progress is the persisted learner progress record.
type Progress struct {
	WritingCompleted []int
	TotalStars       int
	UpdatedAt        time.Time
}

// ProgressPatch is a partial progress record. Nil fields are left untouched.
type ProgressPatch struct {
	WritingCompleted *[]int
	TotalStars       *int
}

// Achievement is an unlockable reward, unique by ID.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	UnlockedAt  time.Time
}

// AttemptRecord captures one evaluated tracing attempt.
type AttemptRecord struct {
	RunID     string
	Digit     int
	StartedAt time.Time
	EndedAt   time.Time
	Points    int
	Matched   int
	Total     int
	Coverage  float64
	Passed    bool
}

// DigitAggregate aggregates attempt history for one digit.
type DigitAggregate struct {
	Digit        int
	Attempts     int
	Passes       int
	CoverageSum  float64
	BestCoverage float64
}

// PassRate returns passes over attempts, or 1 when there are no attempts.
func (a DigitAggregate) PassRate() float64 {
	if a.Attempts == 0 {
		return 1.0
	}
	return float64(a.Passes) / float64(a.Attempts)
}

// AvgCoverage returns the mean coverage across attempts.
func (a DigitAggregate) AvgCoverage() float64 {
	if a.Attempts == 0 {
		return 0
	}
	return a.CoverageSum / float64(a.Attempts)
}
