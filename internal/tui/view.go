package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/digitrace/internal/feedback"
	"github.com/verte-zerg/digitrace/internal/model"
	"github.com/verte-zerg/digitrace/internal/practice"
	"github.com/verte-zerg/digitrace/internal/progress"
)

const digitCount = 10

var (
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	guideStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	missStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	onPathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	offPathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pulseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	inkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	demoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4DA3FF"))
	ringStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FADB14"))
	startStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	endStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	markerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	border       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true)
)

type cell struct {
	r     rune
	style lipgloss.Style
	set   bool
}

type grid struct {
	l     layout
	cells [][]cell
}

func newGrid(l layout) *grid {
	cells := make([][]cell, l.rows)
	for i := range cells {
		cells[i] = make([]cell, l.cols())
	}
	return &grid{l: l, cells: cells}
}

func (g *grid) put(p model.Point, r rune, style lipgloss.Style) {
	col, row, ok := g.l.toCell(p)
	if !ok {
		return
	}
	g.cells[row][col] = cell{r: r, style: style, set: true}
}

func (g *grid) line(pts []model.Point, r rune, style lipgloss.Style) {
	for _, p := range samplePath(pts, g.l.colPx()/2) {
		g.put(p, r, style)
	}
}

func (g *grid) render() string {
	lines := make([]string, len(g.cells))
	for i, row := range g.cells {
		var b strings.Builder
		for _, c := range row {
			if !c.set {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	v := m.session.Snapshot()
	leftPad := strings.Repeat(" ", m.layout.originX-1)

	canvas := border.BorderForeground(borderColor(v)).Render(m.renderCanvas(v))
	canvasLines := strings.Split(canvas, "\n")
	for i, line := range canvasLines {
		canvasLines[i] = leftPad + line
	}

	status := statusLines(v, m.demoActive())
	out := make([]string, 0, len(canvasLines)+footerLines+headerLines)
	out = append(out, m.center(footerStyle.Render(fitWidth(headerLine(v), m.width))))
	out = append(out, canvasLines...)
	bannerLine := bannerStyle.Render(fitWidth(status[0], m.width))
	if v.Award != nil && v.Award.Kind == progress.FeedbackError {
		bannerLine = errorStyle.Render(fitWidth(status[0], m.width))
	}
	out = append(out,
		m.center(bannerLine),
		m.center(completionRow(v)),
		m.center(footerStyle.Render(fitWidth(status[1], m.width))),
		m.center(m.help.View(m.keys)),
	)
	return strings.Join(out, "\n")
}

func (m *Model) center(s string) string {
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
}

func (m *Model) renderCanvas(v practice.View) string {
	g := newGrid(m.layout)
	scaled := make([]model.Point, len(v.Template.Waypoints))
	for i, wp := range v.Template.Waypoints {
		scaled[i] = v.Canvas.Scale(wp)
	}

	g.line(scaled, '·', pathStyle)
	if v.Guide {
		for i, p := range scaled {
			r := '+'
			if i < 9 {
				r = rune('1' + i)
			}
			g.put(p, r, guideStyle)
		}
	}
	if v.Result != nil && !v.Result.Passed {
		for _, idx := range v.Result.Unmatched {
			if idx >= 0 && idx < len(scaled) {
				g.put(scaled[idx], 'x', missStyle)
			}
		}
	}
	if len(scaled) > 0 && v.Signals.Approach {
		end := scaled[len(scaled)-1]
		radius := math.Max(m.layout.rowPx(), m.cfg.Trace.GuideRadius*(1-v.Signals.RingIntensity))
		steps := max(12, int(2*math.Pi*radius/m.layout.colPx()))
		for i := 0; i < steps; i++ {
			a := 2 * math.Pi * float64(i) / float64(steps)
			g.put(model.Point{X: end.X + radius*math.Cos(a), Y: end.Y + radius*math.Sin(a)}, '∘', ringStyle)
		}
	}

	g.line(v.Stroke, '•', strokeStyle(v))
	if m.demoActive() {
		g.line(m.demoPath[:m.demoIdx+1], '•', demoStyle)
	}

	if len(scaled) > 0 {
		g.put(scaled[0], 'S', startStyle)
		g.put(scaled[len(scaled)-1], 'E', endStyle)
	}
	switch {
	case m.demoActive():
		g.put(m.demoPath[m.demoIdx], '●', demoStyle)
	case v.State == model.StateArmed || v.State == model.StateTracing:
		g.put(v.Marker, '●', markerStyle)
	}
	return g.render()
}

func strokeStyle(v practice.View) lipgloss.Style {
	if v.Result != nil {
		if v.Result.Passed {
			return onPathStyle
		}
		return pulseStyle
	}
	if v.Signals.Pulse {
		return pulseStyle
	}
	switch v.Signals.Glow {
	case feedback.GlowOnPath:
		return onPathStyle
	case feedback.GlowOffPath:
		return offPathStyle
	default:
		return inkStyle
	}
}

func borderColor(v practice.View) lipgloss.Color {
	switch {
	case v.Award != nil && v.Award.Kind == progress.FeedbackError:
		return lipgloss.Color("#FF4D4F")
	case v.Award != nil:
		return lipgloss.Color("#52C41A")
	case v.Signals.Glow == feedback.GlowOnPath:
		return lipgloss.Color("#52C41A")
	case v.Signals.Glow == feedback.GlowOffPath:
		return lipgloss.Color("#C89A3A")
	default:
		return lipgloss.Color("#4A4A4A")
	}
}

func headerLine(v practice.View) string {
	return fmt.Sprintf("Trace the digit %d  ·  ★ %d  ·  %d/%d digits", v.Digit, v.TotalStars, len(v.Completed), digitCount)
}

// statusLines returns the banner and the hint line for v.
func statusLines(v practice.View, demo bool) [2]string {
	var banner string
	switch {
	case demo:
		banner = "Watch how the digit is drawn"
	case v.Award != nil && v.Award.Kind == progress.FeedbackCelebration:
		banner = fmt.Sprintf("You traced every digit! %s unlocked (+%d ★)", progress.MasteryAchievement.Name, v.Award.Stars)
	case v.Award != nil && v.Award.Kind == progress.FeedbackSuccess && v.Award.NewDigit:
		banner = fmt.Sprintf("Great job! +%d ★", v.Award.Stars)
	case v.Award != nil && v.Award.Kind == progress.FeedbackSuccess:
		banner = "Great job!"
	case v.Award != nil && v.Result != nil:
		banner = fmt.Sprintf("Not quite, %d of %d points covered. Try again!", v.Result.MatchedWaypointCount, v.Result.TotalWaypointCount)
	case v.Award != nil:
		banner = "Not quite. Try again!"
	case v.Notice != "":
		banner = v.Notice
	case v.State == model.StateArmed || v.State == model.StateTracing:
		banner = "Keep going to the red E"
	default:
		banner = "Press on the green S and trace to the red E"
	}

	hint := v.Template.Hint
	if v.Hint != "" {
		hint = v.Hint
	}
	return [2]string{banner, hint}
}

func completionRow(v practice.View) string {
	done := make(map[int]bool, len(v.Completed))
	for _, d := range v.Completed {
		done[d] = true
	}
	parts := make([]string, 0, digitCount)
	for d := 0; d < digitCount; d++ {
		label := fmt.Sprintf(" %d ", d)
		if done[d] {
			label = fmt.Sprintf("%d✓ ", d)
		}
		switch {
		case d == v.Digit:
			parts = append(parts, currentStyle.Render(label))
		case done[d]:
			parts = append(parts, doneStyle.Render(label))
		default:
			parts = append(parts, footerStyle.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func fitWidth(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
