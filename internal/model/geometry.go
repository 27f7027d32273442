package model

import "math"

// Point is a 2D coordinate, either normalized or in canvas pixels.
type Point struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Canvas is the square drawing surface.
type Canvas struct {
	Side float64
}

// Scale maps a normalized point into canvas pixels.
func (c Canvas) Scale(p Point) Point {
	return Point{X: p.X * c.Side, Y: p.Y * c.Side}
}

// Rescale maps a pixel point from this canvas onto another one.
func (c Canvas) Rescale(p Point, to Canvas) Point {
	if c.Side <= 0 {
		return p
	}
	f := to.Side / c.Side
	return Point{X: p.X * f, Y: p.Y * f}
}
