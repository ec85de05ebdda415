package engine

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"slices"
	"testing"

	"github.com/filkovsp/WEB-Drawing-App/internal/dispatch"
	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(320, 240, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func draw(t *testing.T, e *Engine, from, to geom.Point) dispatch.Outcome {
	t.Helper()
	var last dispatch.Outcome
	for _, ev := range []input.Event{
		input.MoveTo(from.X, from.Y),
		input.ClickAt(input.Left, from.X, from.Y),
		input.MoveTo(to.X, to.Y),
		input.ClickAt(input.Left, to.X, to.Y),
	} {
		out, err := e.Dispatch(ev)
		if err != nil {
			t.Fatalf("dispatch %s: %v", ev.Kind, err)
		}
		last = out
	}
	return last
}

func TestDrawThroughEngine(t *testing.T) {
	e := newEngine(t)

	out, err := e.Dispatch(input.ClickAt(input.Left, 1, 1))
	if err != nil || out.Advisory != dispatch.AdvisoryPickShape {
		t.Fatalf("no selection: %+v %v", out, err)
	}

	if err := e.SelectName("rect"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetColor("#ff0000"); err != nil {
		t.Fatal(err)
	}
	out = draw(t, e, geom.Pt(10, 10), geom.Pt(40, 30))
	if out.Committed == nil || out.Committed.Kind != shape.Rectangle {
		t.Fatalf("outcome = %+v", out)
	}

	recs, err := e.Shapes(stage.MainLayer)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || shape.FormatColor(recs[0].Style.Color) != "#ff0000" {
		t.Errorf("records = %+v", recs)
	}
}

func TestSelectionErrors(t *testing.T) {
	e := newEngine(t)
	if err := e.SelectName("hexagon"); !errors.Is(err, shape.ErrInvalidShapeKind) {
		t.Errorf("err = %v", err)
	}
	if err := e.SetColor("nope"); err == nil {
		t.Error("expected color error")
	}
	if err := e.SetWidth(0); err == nil {
		t.Error("expected width error")
	}
}

func TestSelectCancelsConstruction(t *testing.T) {
	e := newEngine(t)
	e.Select(shape.Circle)
	_, _ = e.Dispatch(input.ClickAt(input.Left, 5, 5))

	e.Select(shape.Line)
	if e.disp.State().ClickCount != 0 {
		t.Error("switching shapes should reset the click cycle")
	}
}

func TestGridSeeded(t *testing.T) {
	e := newEngine(t, WithGrid(40))

	ids := e.LayerIDs()
	if !slices.Equal(ids, []string{GridLayer, "main", "model", "trace"}) {
		t.Fatalf("layers = %v", ids)
	}
	recs, _ := e.Shapes(GridLayer)
	if len(recs) != 1 || recs[0].Params != (shape.GridParams{Step: 40}) {
		t.Fatalf("grid = %+v", recs)
	}

	if err := e.Clear(false); err != nil {
		t.Fatal(err)
	}
	if recs, _ := e.Shapes(GridLayer); len(recs) != 1 {
		t.Error("grid not restored after clear")
	}

	_ = e.stage.Drag(geom.Pt(30, 30))
	if err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if recs, _ := e.Shapes(GridLayer); len(recs) != 1 || recs[0].Params != (shape.GridParams{Step: 40}) {
		t.Errorf("grid after reset = %+v", recs)
	}

	if err := e.RemoveLayer(GridLayer); err != nil {
		t.Fatal(err)
	}
	if err := e.Reset(); err != nil {
		t.Errorf("reset without grid layer: %v", err)
	}
}

func TestFramesOnlyDirty(t *testing.T) {
	e := newEngine(t)
	all := e.Frames(false)
	if len(all) != 3 {
		t.Fatalf("got %d frames", len(all))
	}
	if got := e.Frames(true); len(got) != 0 {
		t.Errorf("nothing changed but got %d frames", len(got))
	}

	_, _ = e.Dispatch(input.MoveTo(10, 10))
	dirty := e.Frames(true)
	if len(dirty) != 1 || dirty[0].Layer != stage.TraceLayer {
		t.Errorf("dirty frames = %+v", dirty)
	}
	if dirty[0].Commands[0].Op != "clear" {
		t.Error("frame should start with a clear")
	}
}

func TestViewAndPointer(t *testing.T) {
	e := newEngine(t)
	var views []stage.ViewChange
	e.OnViewChange(func(v stage.ViewChange) { views = append(views, v) })

	_, _ = e.Dispatch(input.MoveTo(160, 120))
	_, _ = e.Dispatch(input.WheelAt(160, 120, 1))

	if len(views) != 1 || views[0].Zoom != 1.2 {
		t.Errorf("views = %+v", views)
	}
	if e.View() != views[0] {
		t.Errorf("View() = %+v", e.View())
	}
	if p := e.Pointer(); p != geom.Pt(160, 120) {
		t.Errorf("pointer = %v", p)
	}

	if err := e.Center(); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshot(t *testing.T) {
	e := newEngine(t)
	e.Select(shape.Circle)
	draw(t, e, geom.Pt(100, 100), geom.Pt(120, 100))

	tests := []struct {
		name  string
		opts  SnapshotOptions
		wantW int
		wantH int
	}{
		{"current view", SnapshotOptions{}, 320, 240},
		{"fit", SnapshotOptions{Fit: true, Caption: true}, 320, 240},
		{"scaled", SnapshotOptions{Width: 160}, 160, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := e.Snapshot(&buf, tt.opts); err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %v", b)
			}
		})
	}
}

func TestFitView(t *testing.T) {
	v := fitView(geom.Rect{X: 0, Y: 0, Width: 100, Height: 50}, 232, 232)
	if v.Zoom != 2 {
		t.Errorf("zoom = %v, want 2", v.Zoom)
	}
	if got := v.ToScreen(geom.Pt(50, 25)); !got.Near(geom.Pt(116, 116), 1e-9) {
		t.Errorf("centre at %v", got)
	}

	point := fitView(geom.Rect{X: 5, Y: 5}, 100, 100)
	if point.Zoom != 1 {
		t.Errorf("degenerate zoom = %v", point.Zoom)
	}
}

func TestFitIgnoresGrid(t *testing.T) {
	e, err := New(800, 600, WithGrid(50))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.stage.ContentBounds(); ok {
		t.Error("grid alone reported content bounds")
	}

	if err := e.SelectName("rect"); err != nil {
		t.Fatal(err)
	}
	draw(t, e, geom.Pt(500, 500), geom.Pt(600, 550))

	b, ok := e.stage.ContentBounds()
	if !ok || b != (geom.Rect{X: 500, Y: 500, Width: 100, Height: 50}) {
		t.Fatalf("content bounds = %+v, %v", b, ok)
	}
	v := fitView(b, 800, 600)
	if math.Abs(v.Zoom-7.68) > 1e-9 {
		t.Errorf("fit zoom = %v, want 7.68", v.Zoom)
	}
	if got := v.ToScreen(geom.Pt(550, 525)); !got.Near(geom.Pt(400, 300), 1e-6) {
		t.Errorf("content centre at %v, want surface centre", got)
	}
}
