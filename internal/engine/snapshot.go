package engine

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface/raster"
)

// fitPadding is the margin in pixels kept around content when fitting.
const fitPadding = 16

// SnapshotOptions controls PNG rendering of the composed scene.
type SnapshotOptions struct {
	// Fit frames all stored shapes instead of using the current view.
	Fit bool
	// Width scales the output to this many pixels, keeping the aspect ratio.
	// Zero keeps the surface size.
	Width int
	// Caption stamps the view state in the bottom-left corner.
	Caption bool
	// Background is painted under the layers. Nil means white.
	Background color.Color
}

// Snapshot renders every non-ephemeral layer into a raster and writes it as
// PNG. The engine's own surfaces are not touched.
func (e *Engine) Snapshot(w io.Writer, opts SnapshotOptions) error {
	width, height := e.stage.Size()
	v := e.stage.View()
	if opts.Fit {
		if b, ok := e.stage.ContentBounds(); ok {
			v = fitView(b, width, height)
		}
	}

	canvas := raster.New(width, height)
	if err := e.stage.CompositeView(canvas, v); err != nil {
		return fmt.Errorf("compose snapshot: %w", err)
	}
	if opts.Caption {
		label := fmt.Sprintf("offset %.0f,%.0f  zoom %.2f", v.Offset.X, v.Offset.Y, v.Zoom)
		if err := canvas.Annotate(label, 4, float64(height)-6, 12, color.RGBA{R: 90, G: 90, B: 90, A: 255}); err != nil {
			return err
		}
	}

	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	img := raster.Flatten(width, height, bg, canvas.Image())
	if opts.Width > 0 && opts.Width != width {
		h := int(math.Round(float64(height) * float64(opts.Width) / float64(width)))
		img = raster.Scale(img, opts.Width, max(h, 1))
	}
	return raster.EncodeRGBA(w, img)
}

// fitView returns the view that centres b on a w x h surface with padding.
// Degenerate bounds keep unit zoom along the missing axis.
func fitView(b geom.Rect, w, h int) geom.View {
	availW := math.Max(float64(w)-2*fitPadding, 1)
	availH := math.Max(float64(h)-2*fitPadding, 1)

	zoom := math.Inf(1)
	if b.Width > 0 {
		zoom = availW / b.Width
	}
	if b.Height > 0 {
		zoom = math.Min(zoom, availH/b.Height)
	}
	if math.IsInf(zoom, 1) {
		zoom = 1
	}

	c := b.Center()
	m := geom.Translate(float64(w)/2, float64(h)/2).
		Multiply(geom.Scale(zoom, zoom)).
		Multiply(geom.Translate(-c.X, -c.Y))
	return geom.View{Offset: m.Apply(geom.Point{}), Zoom: zoom}
}
