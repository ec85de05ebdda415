// Package raster implements surface.Surface on top of fogleman/gg. It backs
// the terminal frontend and PNG snapshots.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface"
)

// Canvas is a transparent RGBA raster.
type Canvas struct {
	dc   *gg.Context
	w, h int
}

var _ surface.Surface = (*Canvas)(nil)

// New creates a transparent canvas.
func New(w, h int) *Canvas {
	return &Canvas{dc: gg.NewContext(w, h), w: w, h: h}
}

// Factory adapts New to surface.Factory.
func Factory(w, h int) surface.Surface {
	return New(w, h)
}

func (c *Canvas) Size() (int, int) {
	return c.w, c.h
}

func (c *Canvas) Clear() {
	c.dc.SetColor(color.Transparent)
	c.dc.Clear()
}

func (c *Canvas) Line(a, b geom.Point, pen surface.Pen) {
	c.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	c.stroke(pen)
}

func (c *Canvas) Ellipse(centre geom.Point, rx, ry, rot float64, pen surface.Pen) {
	// gg transforms path points as they are added, so the rotation can be
	// popped before painting.
	c.dc.Push()
	c.dc.RotateAbout(rot, centre.X, centre.Y)
	c.dc.DrawEllipse(centre.X, centre.Y, rx, ry)
	c.dc.Pop()
	c.paint(pen)
}

func (c *Canvas) Polygon(pts []geom.Point, pen surface.Pen) {
	if len(pts) == 0 {
		return
	}
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	c.dc.ClosePath()
	c.paint(pen)
}

func (c *Canvas) paint(pen surface.Pen) {
	if pen.Filled() {
		c.setColor(pen.Fill, pen.Opacity())
		c.dc.FillPreserve()
	}
	c.stroke(pen)
}

func (c *Canvas) stroke(pen surface.Pen) {
	c.setColor(pen.Color, pen.Opacity())
	w := pen.Width
	if w <= 0 {
		w = 1
	}
	c.dc.SetLineWidth(w)
	c.dc.SetDash(pen.Dash...)
	c.dc.Stroke()
}

func (c *Canvas) setColor(col color.RGBA, opacity float64) {
	c.dc.SetRGBA(
		float64(col.R)/255,
		float64(col.G)/255,
		float64(col.B)/255,
		float64(col.A)/255*opacity,
	)
}

var (
	faceOnce sync.Once
	faceErr  error
	fontData *truetype.Font
)

func loadFont() (*truetype.Font, error) {
	faceOnce.Do(func() {
		fontData, faceErr = truetype.Parse(gomono.TTF)
		if faceErr != nil {
			faceErr = fmt.Errorf("failed to parse font: %w", faceErr)
		}
	})
	return fontData, faceErr
}

// Annotate writes text with its baseline starting at (x, y).
func (c *Canvas) Annotate(text string, x, y, size float64, col color.RGBA) error {
	f, err := loadFont()
	if err != nil {
		return err
	}
	c.dc.SetFontFace(truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	c.setColor(col, 1)
	c.dc.DrawString(text, x, y)
	return nil
}

// Image returns the backing image. It is not a copy.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// Compose paints srcs over dst in order, aligned at the origin.
func Compose(dst draw.Image, srcs ...image.Image) {
	for _, src := range srcs {
		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Over)
	}
}

// Flatten composes srcs over an opaque background into a new RGBA image.
func Flatten(w, h int, bg color.Color, srcs ...image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	Compose(dst, srcs...)
	return dst
}

// Scale resamples src to w x h with bilinear filtering.
func Scale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// EncodeRGBA writes img as PNG.
func EncodeRGBA(w io.Writer, img *image.RGBA) error {
	return gg.NewContextForRGBA(img).EncodePNG(w)
}
