// Package layer implements one independently clearable drawing surface with
// its own ordered list of committed shapes.
package layer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface"
	"github.com/filkovsp/WEB-Drawing-App/internal/typeid"
)

// ErrEphemeralLayer is returned when committing into a layer whose contents
// are never kept.
var ErrEphemeralLayer = errors.New("layer is ephemeral")

// Decoration is applied to every pen a layer draws with.
type Decoration struct {
	Alpha float64
	Dash  []float64
}

// Decorations of the two reserved ephemeral layers.
var (
	TraceDecoration = Decoration{Alpha: 0.3, Dash: []float64{1, 3}}
	ModelDecoration = Decoration{Alpha: 0.6, Dash: []float64{1, 2}}
)

// Layer pairs a surface with the shapes committed into it. It caches the
// last view it was given so it can redraw on its own; it never reads the
// stage's view state directly.
type Layer struct {
	id        string
	ephemeral bool
	deco      Decoration
	dst       surface.Surface
	view      geom.View
	shapes    []shape.Record
	newID     func() string
	logger    *slog.Logger
}

// Option configures a Layer.
type Option func(*Layer)

// Ephemeral marks the layer as never holding committed shapes.
func Ephemeral() Option {
	return func(l *Layer) { l.ephemeral = true }
}

// WithDecoration sets the opacity and dash pattern for everything drawn.
func WithDecoration(d Decoration) Option {
	return func(l *Layer) { l.deco = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Layer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithIDGenerator overrides how record ids are produced.
func WithIDGenerator(fn func() string) Option {
	return func(l *Layer) { l.newID = fn }
}

// New creates a layer drawing into dst with the identity view.
func New(id string, dst surface.Surface, opts ...Option) *Layer {
	l := &Layer{
		id:     id,
		dst:    dst,
		view:   geom.IdentityView(),
		deco:   Decoration{Alpha: 1},
		newID:  typeid.NewShapeID,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("layer", id)
	return l
}

func (l *Layer) ID() string               { return l.id }
func (l *Layer) IsEphemeral() bool        { return l.ephemeral }
func (l *Layer) Surface() surface.Surface { return l.dst }
func (l *Layer) View() geom.View          { return l.view }
func (l *Layer) Decoration() Decoration   { return l.deco }
func (l *Layer) Len() int                 { return len(l.shapes) }

// Sketch renders p with the layer's current view without storing it.
func (l *Layer) Sketch(kind shape.Kind, p shape.Params, style shape.Style) error {
	v, err := shape.Lookup(kind)
	if err != nil {
		return err
	}
	if p == nil || p.Kind() != kind {
		return fmt.Errorf("%w: sketch %s with %T", shape.ErrParamsMismatch, kind, p)
	}
	return v.Render(l.dst, p, l.view, l.pen(style))
}

// SketchBetween derives params from two screen positions and sketches them.
func (l *Layer) SketchBetween(kind shape.Kind, start, end geom.Point, style shape.Style) error {
	p, err := shape.Derive(kind, l.view.ToScene(start), l.view.ToScene(end))
	if err != nil {
		return err
	}
	return l.Sketch(kind, p, style)
}

// Commit converts the screen positions start and end to scene space with
// the layer's current view, derives canonical params, stores the record and
// draws it once. On error nothing is stored or drawn.
func (l *Layer) Commit(kind shape.Kind, start, end geom.Point, style shape.Style) (shape.Record, error) {
	if l.ephemeral {
		return shape.Record{}, fmt.Errorf("commit %s into %q: %w", kind, l.id, ErrEphemeralLayer)
	}
	v, err := shape.Lookup(kind)
	if err != nil {
		return shape.Record{}, err
	}
	if !v.Persistent {
		return shape.Record{}, fmt.Errorf("%w: %s cannot be committed", shape.ErrInvalidShapeKind, kind)
	}

	rec := shape.Record{
		ID:               l.newID(),
		Kind:             kind,
		Params:           v.Derive(l.view.ToScene(start), l.view.ToScene(end)),
		Style:            style,
		OffsetAtCreation: l.view.Offset,
		ZoomAtCreation:   l.view.Zoom,
	}
	if err := v.Render(l.dst, rec.Params, l.view, l.pen(style)); err != nil {
		return shape.Record{}, err
	}
	l.shapes = append(l.shapes, rec)

	l.logger.Debug("shape committed", "id", rec.ID, "kind", kind, "params", rec.Params)
	return rec, nil
}

// RedrawAll clears the surface and renders every stored record in insertion
// order with the current view.
func (l *Layer) RedrawAll() error {
	l.dst.Clear()
	return l.renderAll(l.dst, l.view)
}

// Apply caches v and redraws.
func (l *Layer) Apply(v geom.View) error {
	l.view = v
	return l.RedrawAll()
}

// RenderTo replays the stored records into another surface under v. The
// layer's own surface and view are untouched.
func (l *Layer) RenderTo(dst surface.Surface, v geom.View) error {
	return l.renderAll(dst, v)
}

func (l *Layer) renderAll(dst surface.Surface, v geom.View) error {
	var errs []error
	for _, rec := range l.shapes {
		if err := shape.Render(dst, rec.Params, v, l.pen(rec.Style)); err != nil {
			errs = append(errs, fmt.Errorf("render %s: %w", rec.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Clear erases the surface. Stored records survive only when keep is true.
func (l *Layer) Clear(keep bool) {
	l.dst.Clear()
	if !keep {
		l.shapes = nil
	}
}

// ClearAndReset discards everything and returns to the identity view.
func (l *Layer) ClearAndReset() {
	l.Clear(false)
	l.view = geom.IdentityView()
}

// Shapes returns a copy of the stored records.
func (l *Layer) Shapes() []shape.Record {
	out := make([]shape.Record, len(l.shapes))
	copy(out, l.shapes)
	return out
}

// Bounds returns the scene-space extent of all stored records. ok is false
// when no record has a finite extent.
func (l *Layer) Bounds() (r geom.Rect, ok bool) {
	for _, rec := range l.shapes {
		b, has := rec.Extent()
		if !has {
			continue
		}
		if !ok {
			r, ok = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, ok
}

func (l *Layer) pen(style shape.Style) surface.Pen {
	pen := style.Pen()
	pen.Alpha = l.deco.Alpha
	pen.Dash = l.deco.Dash
	return pen
}
