package record

import (
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface"
)

func TestRecordsInPainterOrder(t *testing.T) {
	s := New(10, 10)
	pen := surface.Pen{Color: color.RGBA{A: 255}, Width: 1}

	s.Line(geom.Pt(0, 0), geom.Pt(1, 1), pen)
	s.Ellipse(geom.Pt(5, 5), 2, 3, 0.5, pen)
	s.Polygon([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, pen)

	got := strings.Join(s.Ops(), ",")
	if got != "line,ellipse,polygon" {
		t.Errorf("ops = %s", got)
	}

	frame := s.Frame()
	if frame[0].Op != OpClear || len(frame) != 4 {
		t.Errorf("frame = %+v", frame)
	}
}

func TestClearAndVersion(t *testing.T) {
	s := New(10, 10)
	v0 := s.Version()
	s.Line(geom.Pt(0, 0), geom.Pt(1, 1), surface.Pen{})
	if s.Version() == v0 {
		t.Fatal("version should advance on draw")
	}

	v1 := s.Version()
	s.Clear()
	if s.Version() == v1 {
		t.Error("version should advance on clear")
	}
	if len(s.Commands()) != 0 || s.Clears() != 1 {
		t.Errorf("commands=%d clears=%d", len(s.Commands()), s.Clears())
	}
}

func TestPenEncoding(t *testing.T) {
	s := New(1, 1)
	s.Line(geom.Pt(0, 0), geom.Pt(1, 1), surface.Pen{
		Color: color.RGBA{R: 0x96, A: 0xff},
		Fill:  color.RGBA{G: 0x10, A: 0x80},
		Width: 2,
		Dash:  []float64{1, 3},
		Alpha: 0.3,
	})

	c := s.Commands()[0]
	if c.Stroke != "#960000" || c.Fill != "#00100080" {
		t.Errorf("colors = %q %q", c.Stroke, c.Fill)
	}
	if c.Opacity != 0.3 || len(c.Dash) != 2 {
		t.Errorf("opacity=%v dash=%v", c.Opacity, c.Dash)
	}

	out, err := json.Marshal(s.Commands())
	if err != nil {
		t.Fatal(err)
	}
	var back []DrawCommand
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back[0].Points[1] != geom.Pt(1, 1) {
		t.Errorf("points = %v", back[0].Points)
	}
}

func TestPolygonCopiesPoints(t *testing.T) {
	s := New(1, 1)
	pts := []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	s.Polygon(pts, surface.Pen{})
	pts[0] = geom.Pt(9, 9)

	if s.Commands()[0].Points[0] != geom.Pt(1, 1) {
		t.Error("recorded polygon aliases caller slice")
	}
}
