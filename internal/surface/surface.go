// Package surface defines the drawing contract layers render into.
// Coordinates handed to a Surface are always in screen space.
package surface

import (
	"image/color"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
)

// Pen carries stroke and fill settings for one primitive call.
type Pen struct {
	Color color.RGBA
	Fill  color.RGBA // zero alpha means no fill
	Width float64
	Dash  []float64
	Alpha float64 // layer opacity, 0 is treated as 1
}

// Filled reports whether the pen paints an interior.
func (p Pen) Filled() bool {
	return p.Fill.A > 0
}

// Opacity returns the effective layer opacity.
func (p Pen) Opacity() float64 {
	if p.Alpha <= 0 || p.Alpha > 1 {
		return 1
	}
	return p.Alpha
}

// Surface is a 2D drawing target exposing only primitive strokes and a
// clear operation. Rasterisation is left to the implementation.
type Surface interface {
	// Size returns the surface extent in screen pixels.
	Size() (w, h int)
	// Clear erases everything drawn so far.
	Clear()
	Line(a, b geom.Point, pen Pen)
	// Ellipse draws an ellipse centred at c, rotated by rot radians.
	Ellipse(c geom.Point, rx, ry, rot float64, pen Pen)
	// Polygon draws a closed path through pts.
	Polygon(pts []geom.Point, pen Pen)
}

// Factory creates a surface of the given size. The stage uses it to give
// every layer its own independent surface.
type Factory func(w, h int) Surface
