package tui

import (
	"testing"

	"github.com/verte-zerg/digitrace/internal/model"
)

func TestNewLayoutFitsTerminal(t *testing.T) {
	l := newLayout(80, 30, 280)
	if l.rows != 20 || l.side != 280 {
		t.Fatalf("expected 20 rows at 280px, got %d rows at %v", l.rows, l.side)
	}
	if l.originX != 20 || l.originY != 2 {
		t.Fatalf("unexpected origin (%d,%d)", l.originX, l.originY)
	}

	small := newLayout(40, 15, 280)
	if small.rows != 8 || small.side != 112 {
		t.Fatalf("expected 8 rows at 112px, got %d rows at %v", small.rows, small.side)
	}

	tiny := newLayout(10, 3, 280)
	if tiny.rows != minRows || tiny.originX != 1 {
		t.Fatalf("expected minimum layout, got %+v", tiny)
	}
}

func TestToPointUsesCellCentre(t *testing.T) {
	l := newLayout(80, 30, 280)
	p, inside := l.toPoint(20, 2)
	if !inside {
		t.Fatalf("expected origin cell to be inside")
	}
	if p != (model.Point{X: 3.5, Y: 7}) {
		t.Fatalf("unexpected point %+v", p)
	}
	if _, inside := l.toPoint(19, 2); inside {
		t.Fatalf("expected cell left of the canvas to be outside")
	}
	if _, inside := l.toPoint(20+l.cols(), 2); inside {
		t.Fatalf("expected cell right of the canvas to be outside")
	}
	far, inside := l.toPoint(10, 40)
	if inside || far.X >= 0 || far.Y <= l.side {
		t.Fatalf("expected unclamped outside point, got %+v inside=%v", far, inside)
	}
}

func TestToCellRoundTrip(t *testing.T) {
	l := newLayout(100, 24, 280)
	for row := 0; row < l.rows; row++ {
		for col := 0; col < l.cols(); col++ {
			p, inside := l.toPoint(l.originX+col, l.originY+row)
			if !inside {
				t.Fatalf("cell (%d,%d) reported outside", col, row)
			}
			gotCol, gotRow, ok := l.toCell(p)
			if !ok || gotCol != col || gotRow != row {
				t.Fatalf("round trip (%d,%d) -> (%d,%d) ok=%v", col, row, gotCol, gotRow, ok)
			}
		}
	}
}

func TestSamplePath(t *testing.T) {
	pts := samplePath([]model.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, 3)
	if len(pts) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(pts))
	}
	if pts[len(pts)-1] != (model.Point{X: 10, Y: 0}) {
		t.Fatalf("expected path to end at the last point, got %+v", pts[len(pts)-1])
	}
	if samplePath(nil, 3) != nil {
		t.Fatalf("expected nil for empty path")
	}
}
