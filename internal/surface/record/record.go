// Package record implements a retained Surface that stores draw commands
// instead of rasterising them. Remote frontends replay the commands on their
// own canvas; tests use it to assert what a layer drew.
package record

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface"
)

// Op names understood by frontends.
const (
	OpClear   = "clear"
	OpLine    = "line"
	OpEllipse = "ellipse"
	OpPolygon = "polygon"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// Commands are kept in painter's order (back to front).
type DrawCommand struct {
	Op string `json:"op"`

	// Points holds [a, b] for a line, the vertices of a polygon and the
	// centre of an ellipse.
	Points []geom.Point `json:"points,omitempty"`

	// Ellipse radii and rotation in radians.
	RX       float64 `json:"rx,omitempty"`
	RY       float64 `json:"ry,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`

	Stroke      string    `json:"stroke,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
	Opacity     float64   `json:"opacity,omitempty"` // Global alpha
}

// Surface records commands. The zero value is not usable; call New.
type Surface struct {
	w, h     int
	commands []DrawCommand
	version  uint64
	clears   int
}

var _ surface.Surface = (*Surface)(nil)

// New creates a recording surface of the given size.
func New(w, h int) *Surface {
	return &Surface{w: w, h: h}
}

// Factory adapts New to surface.Factory.
func Factory(w, h int) surface.Surface {
	return New(w, h)
}

func (s *Surface) Size() (int, int) {
	return s.w, s.h
}

// Clear drops every recorded command. Frontends receive a leading clear op
// in the next frame.
func (s *Surface) Clear() {
	s.commands = s.commands[:0]
	s.clears++
	s.version++
}

func (s *Surface) Line(a, b geom.Point, pen surface.Pen) {
	s.push(DrawCommand{Op: OpLine, Points: []geom.Point{a, b}}, pen)
}

func (s *Surface) Ellipse(c geom.Point, rx, ry, rot float64, pen surface.Pen) {
	s.push(DrawCommand{Op: OpEllipse, Points: []geom.Point{c}, RX: rx, RY: ry, Rotation: rot}, pen)
}

func (s *Surface) Polygon(pts []geom.Point, pen surface.Pen) {
	cp := make([]geom.Point, len(pts))
	copy(cp, pts)
	s.push(DrawCommand{Op: OpPolygon, Points: cp}, pen)
}

func (s *Surface) push(cmd DrawCommand, pen surface.Pen) {
	cmd.Stroke = Hex(pen.Color)
	if pen.Filled() {
		cmd.Fill = Hex(pen.Fill)
	}
	cmd.StrokeWidth = pen.Width
	if len(pen.Dash) > 0 {
		cmd.Dash = append([]float64(nil), pen.Dash...)
	}
	cmd.Opacity = pen.Opacity()
	s.commands = append(s.commands, cmd)
	s.version++
}

// Commands returns a copy of the recorded commands.
func (s *Surface) Commands() []DrawCommand {
	out := make([]DrawCommand, len(s.commands))
	copy(out, s.commands)
	return out
}

// Frame returns the commands prefixed with a clear op, ready to be replayed
// on a frontend canvas that still shows the previous frame.
func (s *Surface) Frame() []DrawCommand {
	out := make([]DrawCommand, 0, len(s.commands)+1)
	out = append(out, DrawCommand{Op: OpClear})
	return append(out, s.commands...)
}

// Version increases on every mutation. Callers compare versions to decide
// whether a layer needs to be resent.
func (s *Surface) Version() uint64 {
	return s.version
}

// Clears returns how many times Clear has been called.
func (s *Surface) Clears() int {
	return s.clears
}

// Ops returns just the op names, which is what most assertions care about.
func (s *Surface) Ops() []string {
	ops := make([]string, len(s.commands))
	for i, c := range s.commands {
		ops[i] = c.Op
	}
	return ops
}

// Hex formats c as #rrggbb, or #rrggbbaa when not opaque.
func Hex(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// String renders the command list compactly, one op per line. Handy in test
// failure output.
func (s *Surface) String() string {
	var b strings.Builder
	for _, c := range s.commands {
		fmt.Fprintf(&b, "%s %v\n", c.Op, c.Points)
	}
	return b.String()
}
