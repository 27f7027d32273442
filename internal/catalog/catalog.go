// Package catalog holds the reference digit paths.
package catalog

import (
	"fmt"

	"github.com/verte-zerg/digitrace/internal/model"
)

// Catalog is an immutable table of digit templates indexed by digit.
type Catalog struct {
	templates [10]model.DigitTemplate
}

type builtin struct {
	points [][2]float64
	hint   string
}

var builtins = [10]builtin{
	0: {
		points: [][2]float64{{0.5, 0.1}, {0.8, 0.3}, {0.8, 0.7}, {0.5, 0.9}, {0.2, 0.7}, {0.2, 0.3}, {0.5, 0.1}},
		hint:   "Draw an oval starting from the top",
	},
	1: {
		points: [][2]float64{{0.3, 0.2}, {0.5, 0.1}, {0.5, 0.9}},
		hint:   "Slant up from the left, then go straight down",
	},
	2: {
		points: [][2]float64{{0.2, 0.3}, {0.3, 0.1}, {0.7, 0.1}, {0.8, 0.3}, {0.2, 0.9}, {0.8, 0.9}},
		hint:   "Make a little hook, slide down, then draw a line across",
	},
	3: {
		points: [][2]float64{{0.2, 0.2}, {0.6, 0.1}, {0.7, 0.3}, {0.5, 0.5}, {0.7, 0.7}, {0.6, 0.9}, {0.2, 0.8}},
		hint:   "Draw two bumps facing right",
	},
	4: {
		points: [][2]float64{{0.6, 0.1}, {0.2, 0.6}, {0.8, 0.6}, {0.6, 0.6}, {0.6, 0.9}},
		hint:   "Slant down, go across, then straight down",
	},
	5: {
		points: [][2]float64{{0.7, 0.1}, {0.3, 0.1}, {0.3, 0.4}, {0.6, 0.4}, {0.8, 0.6}, {0.6, 0.9}, {0.2, 0.8}},
		hint:   "Go across, then down, then draw a round belly",
	},
	6: {
		points: [][2]float64{{0.7, 0.2}, {0.5, 0.1}, {0.2, 0.4}, {0.2, 0.7}, {0.5, 0.9}, {0.7, 0.7}, {0.5, 0.5}, {0.2, 0.6}},
		hint:   "Curve down from the top, then close a small loop",
	},
	7: {
		points: [][2]float64{{0.2, 0.1}, {0.8, 0.1}, {0.4, 0.9}},
		hint:   "Go across, then slant down",
	},
	8: {
		points: [][2]float64{{0.5, 0.5}, {0.3, 0.3}, {0.5, 0.1}, {0.7, 0.3}, {0.5, 0.5}, {0.3, 0.7}, {0.5, 0.9}, {0.7, 0.7}, {0.5, 0.5}},
		hint:   "Draw two loops stacked on top of each other",
	},
	9: {
		points: [][2]float64{{0.7, 0.4}, {0.5, 0.1}, {0.3, 0.3}, {0.5, 0.5}, {0.7, 0.3}, {0.7, 0.7}, {0.5, 0.9}, {0.3, 0.8}},
		hint:   "Draw a small loop, then curve down",
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{}
	for digit, b := range builtins {
		c.templates[digit] = model.DigitTemplate{
			Digit:     digit,
			Waypoints: toPoints(b.points),
			Hint:      b.hint,
		}
	}
	return c
}

// Template returns the template for a digit.
func (c *Catalog) Template(digit int) (model.DigitTemplate, error) {
	if digit < 0 || digit >= len(c.templates) {
		return model.DigitTemplate{}, fmt.Errorf("%w: %d", model.ErrInvalidDigit, digit)
	}
	t := c.templates[digit]
	t.Waypoints = append([]model.Point(nil), t.Waypoints...)
	return t, nil
}

// Digits returns every digit in the catalog in ascending order.
func (c *Catalog) Digits() []int {
	out := make([]int, len(c.templates))
	for i := range c.templates {
		out[i] = i
	}
	return out
}

// Size returns the number of digits in the catalog.
func (c *Catalog) Size() int {
	return len(c.templates)
}

func toPoints(raw [][2]float64) []model.Point {
	out := make([]model.Point, len(raw))
	for i, p := range raw {
		out[i] = model.Point{X: p[0], Y: p[1]}
	}
	return out
}

func validate(t model.DigitTemplate) error {
	if t.Digit < 0 || t.Digit > 9 {
		return fmt.Errorf("%w: %d", model.ErrInvalidDigit, t.Digit)
	}
	if len(t.Waypoints) < 2 {
		return fmt.Errorf("digit %d: need at least 2 waypoints, got %d", t.Digit, len(t.Waypoints))
	}
	for i, p := range t.Waypoints {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return fmt.Errorf("digit %d: waypoint %d (%.2f, %.2f) outside the unit square", t.Digit, i, p.X, p.Y)
		}
	}
	return nil
}
