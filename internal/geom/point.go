package geom

import "math"

// Point is a 2D position. Whether it lives in scene space or screen space is
// implied by the caller; crossing spaces always goes through ToScene/ToScreen.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales both coordinates by f.
func (p Point) Mul(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Div divides both coordinates by f.
func (p Point) Div(f float64) Point {
	return Point{X: p.X / f, Y: p.Y / f}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Round rounds both coordinates to the nearest integer.
func (p Point) Round() Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// Near reports whether p and q differ by less than eps on both axes.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) < eps && math.Abs(p.Y-q.Y) < eps
}
