package shape

import (
	"math"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
)

// Params is the canonical, scene-space description of one shape. Every
// implementation is a plain value type, so storing or passing a Params
// never shares mutable state.
type Params interface {
	Kind() Kind
	// Bounds returns the axis-aligned extent in scene space.
	Bounds() geom.Rect
	isParams()
}

// CircleParams is a circle centred at (X, Y).
type CircleParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// EllipseParams is an ellipse centred at (X, Y) rotated by RA radians.
type EllipseParams struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	RX float64 `json:"rX"`
	RY float64 `json:"rY"`
	RA float64 `json:"rA"`
}

// RectParams has its corner at (X, Y). W and H may be negative, which flips
// the rectangle rather than being an error.
type RectParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// LineParams runs from (X, Y) to (X+W, Y+H).
type LineParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CrossParams is the cursor cross-hair position.
type CrossParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridParams places the grid origin at (X, Y) with lines every Step units.
type GridParams struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Step float64 `json:"step"`
}

func (CircleParams) Kind() Kind  { return Circle }
func (EllipseParams) Kind() Kind { return Ellipse }
func (RectParams) Kind() Kind    { return Rectangle }
func (LineParams) Kind() Kind    { return Line }
func (CrossParams) Kind() Kind   { return Trace }
func (GridParams) Kind() Kind    { return Grid }

func (CircleParams) isParams()  {}
func (EllipseParams) isParams() {}
func (RectParams) isParams()    {}
func (LineParams) isParams()    {}
func (CrossParams) isParams()   {}
func (GridParams) isParams()    {}

func (p CircleParams) Bounds() geom.Rect {
	return geom.Rect{X: p.X - p.R, Y: p.Y - p.R, Width: 2 * p.R, Height: 2 * p.R}
}

func (p EllipseParams) Bounds() geom.Rect {
	sin, cos := math.Sincos(p.RA)
	ex := math.Sqrt(p.RX*p.RX*cos*cos + p.RY*p.RY*sin*sin)
	ey := math.Sqrt(p.RX*p.RX*sin*sin + p.RY*p.RY*cos*cos)
	return geom.Rect{X: p.X - ex, Y: p.Y - ey, Width: 2 * ex, Height: 2 * ey}
}

func (p RectParams) Bounds() geom.Rect {
	return geom.BoundsOf(geom.Pt(p.X, p.Y), geom.Pt(p.X+p.W, p.Y+p.H))
}

func (p LineParams) Bounds() geom.Rect {
	return geom.BoundsOf(geom.Pt(p.X, p.Y), geom.Pt(p.X+p.W, p.Y+p.H))
}

func (p CrossParams) Bounds() geom.Rect {
	return geom.Rect{X: p.X, Y: p.Y}
}

// Bounds is only the grid origin. Framing code uses Record.Extent, which
// leaves grids out.
func (p GridParams) Bounds() geom.Rect {
	return geom.Rect{X: p.X, Y: p.Y}
}
