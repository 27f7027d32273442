package tui

import (
	"math"

	"github.com/verte-zerg/digitrace/internal/model"
)

const (
	// cellPx is the height of one terminal row in canvas pixels. A row holds
	// two columns, so a column is cellPx/2 wide.
	cellPx = 14.0

	minRows      = 4
	headerLines  = 1
	footerLines  = 4
	borderLines  = 2
	reservedRows = headerLines + borderLines + footerLines
)

// layout maps terminal cells to canvas pixels. The canvas is rows tall and
// 2*rows wide, drawn inside a one-cell border.
type layout struct {
	rows    int
	side    float64
	originX int
	originY int
}

func newLayout(width, height int, canvasSize float64) layout {
	maxRows := max(minRows, int(canvasSize/cellPx))
	rows := max(minRows, min(height-reservedRows, maxRows))
	side := math.Min(canvasSize, float64(rows)*cellPx)
	leftPad := max(0, (width-(2*rows+2))/2)
	return layout{
		rows:    rows,
		side:    side,
		originX: leftPad + 1,
		originY: headerLines + 1,
	}
}

func (l layout) cols() int {
	return 2 * l.rows
}

func (l layout) rowPx() float64 {
	return l.side / float64(l.rows)
}

func (l layout) colPx() float64 {
	return l.side / float64(l.cols())
}

// toPoint converts a terminal cell to the canvas pixel at its centre. inside
// reports whether the cell lies on the canvas.
func (l layout) toPoint(x, y int) (p model.Point, inside bool) {
	c := x - l.originX
	r := y - l.originY
	p = model.Point{
		X: (float64(c) + 0.5) * l.colPx(),
		Y: (float64(r) + 0.5) * l.rowPx(),
	}
	inside = c >= 0 && c < l.cols() && r >= 0 && r < l.rows
	return p, inside
}

// toCell converts a canvas pixel to a grid cell.
func (l layout) toCell(p model.Point) (col, row int, ok bool) {
	col = int(math.Floor(p.X / l.colPx()))
	row = int(math.Floor(p.Y / l.rowPx()))
	ok = col >= 0 && col < l.cols() && row >= 0 && row < l.rows
	return col, row, ok
}

// samplePath returns points along the polyline through pts spaced at most
// step pixels apart.
func samplePath(pts []model.Point, step float64) []model.Point {
	if len(pts) == 0 {
		return nil
	}
	out := []model.Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		n := max(1, int(math.Ceil(model.Dist(a, b)/step)))
		for k := 1; k <= n; k++ {
			t := float64(k) / float64(n)
			out = append(out, model.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
		}
	}
	return out
}
