package shape

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface"
)

var (
	ErrInvalidShapeKind = errors.New("invalid shape kind")
	ErrParamsMismatch   = errors.New("params do not match shape kind")
)

const (
	// DefaultGridStep is used when a grid is derived from a zero-length drag.
	DefaultGridStep = 50.0
	// minGridSpacing is the smallest on-screen spacing at which minor grid
	// lines are still drawn.
	minGridSpacing = 4.0
)

// GridMinorColor is the colour of the light grid lines between the axes.
var GridMinorColor = color.RGBA{R: 200, G: 200, B: 230, A: 255}

// Variant is the per-kind operation table.
type Variant struct {
	// Derive computes canonical params from a scene-space start/end pair.
	// It is pure: the same pair always yields the same params.
	Derive func(start, end geom.Point) Params
	// Render converts params to screen space under v and draws them.
	// It never modifies p.
	Render func(dst surface.Surface, p Params, v geom.View, pen surface.Pen) error
	// Persistent variants may be committed into a layer's shape list.
	Persistent bool
}

var variants = map[Kind]Variant{
	Circle: {
		Derive: func(start, end geom.Point) Params {
			return CircleParams{X: start.X, Y: start.Y, R: start.Dist(end)}
		},
		Render:     renderCircle,
		Persistent: true,
	},
	Ellipse: {
		Derive:     deriveEllipse,
		Render:     renderEllipse,
		Persistent: true,
	},
	Rectangle: {
		Derive: func(start, end geom.Point) Params {
			return RectParams{X: start.X, Y: start.Y, W: end.X - start.X, H: end.Y - start.Y}
		},
		Render:     renderRect,
		Persistent: true,
	},
	Line: {
		Derive: func(start, end geom.Point) Params {
			return LineParams{X: start.X, Y: start.Y, W: end.X - start.X, H: end.Y - start.Y}
		},
		Render:     renderLine,
		Persistent: true,
	},
	Trace: {
		Derive: func(start, _ geom.Point) Params {
			return CrossParams{X: start.X, Y: start.Y}
		},
		Render: renderCross,
	},
	Grid: {
		Derive:     deriveGrid,
		Render:     renderGrid,
		Persistent: true,
	},
}

// Lookup returns the variant registered for k.
func Lookup(k Kind) (Variant, error) {
	v, ok := variants[k]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %s", ErrInvalidShapeKind, k)
	}
	return v, nil
}

// Derive is shorthand for Lookup(k) followed by Derive.
func Derive(k Kind, start, end geom.Point) (Params, error) {
	v, err := Lookup(k)
	if err != nil {
		return nil, err
	}
	return v.Derive(start, end), nil
}

// Render draws p with the variant matching its kind.
func Render(dst surface.Surface, p Params, v geom.View, pen surface.Pen) error {
	if p == nil {
		return fmt.Errorf("%w: nil params", ErrParamsMismatch)
	}
	variant, err := Lookup(p.Kind())
	if err != nil {
		return err
	}
	return variant.Render(dst, p, v, pen)
}

// Kinds returns every kind that has a variant, in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(variants))
	for k := Circle; k <= Grid; k++ {
		if _, ok := variants[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func mismatch(want Kind, p Params) error {
	return fmt.Errorf("%w: %s variant got %T", ErrParamsMismatch, want, p)
}

func deriveEllipse(start, end geom.Point) Params {
	dx := end.X - start.X
	dy := end.Y - start.Y
	hyp := math.Hypot(dx, dy)

	var ra float64
	if hyp > 0 {
		ra = math.Acos(math.Abs(dy) / hyp)
	}
	return EllipseParams{
		X:  start.X,
		Y:  start.Y,
		RX: math.Abs(dx),
		RY: math.Abs(dy),
		RA: ra,
	}
}

func deriveGrid(start, end geom.Point) Params {
	step := math.Max(math.Abs(end.X-start.X), math.Abs(end.Y-start.Y))
	if step == 0 {
		step = DefaultGridStep
	}
	return GridParams{X: start.X, Y: start.Y, Step: step}
}

func renderCircle(dst surface.Surface, p Params, v geom.View, pen surface.Pen) error {
	c, ok := p.(CircleParams)
	if !ok {
		return mismatch(Circle, p)
	}
	r := v.ToScreenLen(c.R)
	dst.Ellipse(v.ToScreen(geom.Pt(c.X, c.Y)), r, r, 0, pen)
	return nil
}

func renderEllipse(dst surface.Surface, p Params, v geom.View, pen surface.Pen) error {
	e, ok := p.(EllipseParams)
	if !ok {
		return mismatch(Ellipse, p)
	}
	dst.Ellipse(v.ToScreen(geom.Pt(e.X, e.Y)), v.ToScreenLen(e.RX), v.ToScreenLen(e.RY), e.RA, pen)
	return nil
}

func renderRect(dst surface.Surface, p Params, v geom.View, pen surface.Pen) error {
	r, ok := p.(RectParams)
	if !ok {
		return mismatch(Rectangle, p)
	}
	o := v.ToScreen(geom.Pt(r.X, r.Y))
	w, h := v.ToScreenLen(r.W), v.ToScreenLen(r.H)
	dst.Polygon([]geom.Point{
		o,
		geom.Pt(o.X+w, o.Y),
		geom.Pt(o.X+w, o.Y+h),
		geom.Pt(o.X, o.Y+h),
	}, pen)
	return nil
}

func renderLine(dst surface.Surface, p Params, v geom.View, pen surface.Pen) error {
	l, ok := p.(LineParams)
	if !ok {
		return mismatch(Line, p)
	}
	a := v.ToScreen(geom.Pt(l.X, l.Y))
	b := v.ToScreen(geom.Pt(l.X+l.W, l.Y+l.H))
	dst.Line(a, b, pen)
	return nil
}

// renderCross draws a full-width and full-height line through the point.
func renderCross(dst surface.Surface, p Params, v geom.View, pen surface.Pen) error {
	c, ok := p.(CrossParams)
	if !ok {
		return mismatch(Trace, p)
	}
	w, h := dst.Size()
	at := v.ToScreen(geom.Pt(c.X, c.Y))
	dst.Line(geom.Pt(at.X, 0), geom.Pt(at.X, float64(h)), pen)
	dst.Line(geom.Pt(0, at.Y), geom.Pt(float64(w), at.Y), pen)
	return nil
}

// renderGrid draws the two axes through the origin with the given pen and
// the minor lines across the visible surface in GridMinorColor.
func renderGrid(dst surface.Surface, p Params, v geom.View, pen surface.Pen) error {
	g, ok := p.(GridParams)
	if !ok {
		return mismatch(Grid, p)
	}
	w, h := dst.Size()
	fw, fh := float64(w), float64(h)
	o := v.ToScreen(geom.Pt(g.X, g.Y))
	step := v.ToScreenLen(g.Step)

	if step >= minGridSpacing {
		minor := pen
		minor.Color = GridMinorColor
		minor.Fill = color.RGBA{}
		minor.Width = 1

		// Start at the first line in [0, step) so only visible space is walked.
		for x := o.X - math.Floor(o.X/step)*step; x <= fw; x += step {
			if math.Abs(x-o.X) > 1e-9 {
				dst.Line(geom.Pt(x, 0), geom.Pt(x, fh), minor)
			}
		}
		for y := o.Y - math.Floor(o.Y/step)*step; y <= fh; y += step {
			if math.Abs(y-o.Y) > 1e-9 {
				dst.Line(geom.Pt(0, y), geom.Pt(fw, y), minor)
			}
		}
	}

	dst.Line(geom.Pt(o.X, 0), geom.Pt(o.X, fh), pen)
	dst.Line(geom.Pt(0, o.Y), geom.Pt(fw, o.Y), pen)
	return nil
}
