// Package stage owns the set of layers of one drawing and the authoritative
// pan/zoom state they all render with.
package stage

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/layer"
	"github.com/filkovsp/WEB-Drawing-App/internal/observe"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface/record"
	"github.com/filkovsp/WEB-Drawing-App/internal/typeid"
)

// Reserved layer ids.
const (
	MainLayer  = "main"
	ModelLayer = "model"
	TraceLayer = "trace"
)

// DefaultZoomStep is the zoom increment used when none is configured.
const DefaultZoomStep = 0.2

const zoomEpsilon = 1e-9

var (
	ErrUnknownLayer  = errors.New("unknown layer")
	ErrLayerExists   = errors.New("layer already exists")
	ErrReservedLayer = errors.New("layer id is reserved")
	ErrInvalidZoom   = errors.New("invalid zoom step")
)

// ViewChange is what observers receive after every pan or zoom. Values are
// rounded for display; the stage keeps full precision internally.
type ViewChange struct {
	Offset geom.Point `json:"offset"`
	Zoom   float64    `json:"zoom"`
}

// Stage is one drawing session's layer set. It is not safe for concurrent
// use: every call runs to completion before the next one starts.
type Stage struct {
	w, h       int
	newSurface surface.Factory
	layers     map[string]*layer.Layer
	userOrder  []string
	state      geom.ViewState
	views      observe.List[ViewChange]
	logger     *slog.Logger
}

// Option configures a Stage.
type Option func(*Stage)

// WithLogger sets the logger for the stage and its layers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithZoomStep sets the zoom increment.
func WithZoomStep(step float64) Option {
	return func(s *Stage) { s.state.ZoomStep = step }
}

// WithSurfaceFactory sets how layer surfaces are created. The default
// records draw commands.
func WithSurfaceFactory(f surface.Factory) Option {
	return func(s *Stage) {
		if f != nil {
			s.newSurface = f
		}
	}
}

// New creates a stage of w x h pixels with the three reserved layers.
func New(w, h int, opts ...Option) (*Stage, error) {
	s := &Stage{
		w:          w,
		h:          h,
		newSurface: record.Factory,
		layers:     make(map[string]*layer.Layer),
		state:      geom.NewViewState(DefaultZoomStep),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !(s.state.ZoomStep > 0) || math.IsInf(s.state.ZoomStep, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidZoom, s.state.ZoomStep)
	}

	s.layers[MainLayer] = s.makeLayer(MainLayer)
	s.layers[ModelLayer] = s.makeLayer(ModelLayer, layer.Ephemeral(), layer.WithDecoration(layer.ModelDecoration))
	s.layers[TraceLayer] = s.makeLayer(TraceLayer, layer.Ephemeral(), layer.WithDecoration(layer.TraceDecoration))
	return s, nil
}

func (s *Stage) makeLayer(id string, opts ...layer.Option) *layer.Layer {
	opts = append(opts, layer.WithLogger(s.logger))
	return layer.New(id, s.newSurface(s.w, s.h), opts...)
}

// Size returns the surface size shared by every layer.
func (s *Stage) Size() (w, h int) {
	return s.w, s.h
}

// Main, Model and Trace return the reserved layers.
func (s *Stage) Main() *layer.Layer  { return s.layers[MainLayer] }
func (s *Stage) Model() *layer.Layer { return s.layers[ModelLayer] }
func (s *Stage) Trace() *layer.Layer { return s.layers[TraceLayer] }

// Layer looks up a layer by id.
func (s *Stage) Layer(id string) (*layer.Layer, error) {
	l, ok := s.layers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, id)
	}
	return l, nil
}

// LayerIDs returns every layer id in compositing order, bottom to top:
// user layers in creation order, then main, model and trace.
func (s *Stage) LayerIDs() []string {
	ids := slices.Clone(s.userOrder)
	return append(ids, MainLayer, ModelLayer, TraceLayer)
}

// AddLayer creates a user layer below main. An empty id generates one. The
// new layer adopts the current view immediately.
func (s *Stage) AddLayer(id string) (*layer.Layer, error) {
	if id == "" {
		id = typeid.NewLayerID()
	}
	if _, ok := s.layers[id]; ok {
		return nil, fmt.Errorf("%w: %q", ErrLayerExists, id)
	}
	l := s.makeLayer(id)
	if err := l.Apply(s.state.View()); err != nil {
		return nil, err
	}
	s.layers[id] = l
	s.userOrder = append(s.userOrder, id)

	s.logger.Debug("layer added", "layer", id)
	return l, nil
}

// RemoveLayer deletes a user layer.
func (s *Stage) RemoveLayer(id string) error {
	if isReserved(id) {
		s.logger.Warn("refusing to remove reserved layer", "layer", id)
		return fmt.Errorf("%w: %q", ErrReservedLayer, id)
	}
	if _, ok := s.layers[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, id)
	}
	delete(s.layers, id)
	s.userOrder = slices.DeleteFunc(s.userOrder, func(v string) bool { return v == id })

	s.logger.Debug("layer removed", "layer", id)
	return nil
}

func isReserved(id string) bool {
	return id == MainLayer || id == ModelLayer || id == TraceLayer
}

// State returns a copy of the view state.
func (s *Stage) State() geom.ViewState {
	return s.state
}

// View returns the offset/zoom pair layers render with.
func (s *Stage) View() geom.View {
	return s.state.View()
}

// OnViewChange subscribes fn to view changes.
func (s *Stage) OnViewChange(fn func(ViewChange)) (unsubscribe func()) {
	return s.views.Subscribe(fn)
}

// SurfaceCenter is the middle of the surface in screen space.
func (s *Stage) SurfaceCenter() geom.Point {
	return geom.Pt(float64(s.w)/2, float64(s.h)/2)
}

// Drag pans every non-ephemeral layer by d screen pixels.
func (s *Stage) Drag(d geom.Point) error {
	s.state.Pan = s.state.Pan.Add(d)
	s.logger.Debug("drag", "dx", d.X, "dy", d.Y, "pan", s.state.Pan)
	return s.applyView()
}

// ZoomIn steps the zoom factor up, keeping the scene point under the screen
// position anchor fixed. It returns the new factor.
func (s *Stage) ZoomIn(anchor geom.Point) (float64, error) {
	old := s.state.ZoomFactor
	step := s.state.ZoomStep
	q := anchor.Sub(s.state.Pan)

	s.state.ZoomOffset = s.state.ZoomOffset.Sub(q.Sub(s.state.ZoomOffset).Mul(step / old))
	s.state.ZoomFactor = old + step

	s.logger.Debug("zoom in", "zoom", s.state.ZoomFactor, "anchor", anchor)
	return s.state.ZoomFactor, s.applyView()
}

// ZoomOut steps the zoom factor down around anchor. When the result would
// fall below twice the zoom step nothing changes and the current factor is
// returned.
func (s *Stage) ZoomOut(anchor geom.Point) (float64, error) {
	old := s.state.ZoomFactor
	step := s.state.ZoomStep
	next := old - step
	if next < 2*step-zoomEpsilon {
		s.logger.Debug("zoom out clamped", "zoom", old)
		return old, nil
	}
	q := anchor.Sub(s.state.Pan)

	s.state.ZoomOffset = s.state.ZoomOffset.Add(q.Sub(s.state.ZoomOffset).Mul(step / old))
	s.state.ZoomFactor = next

	s.logger.Debug("zoom out", "zoom", s.state.ZoomFactor, "anchor", anchor)
	return s.state.ZoomFactor, s.applyView()
}

// Center pans so that the middle of the scene's unzoomed extent sits in the
// middle of the surface at the current zoom.
func (s *Stage) Center() error {
	z := s.state.ZoomFactor
	eff := s.state.EffectiveOffset()
	return s.Drag(geom.Pt(
		-eff.X+float64(s.w)*(1-z)/2,
		-eff.Y+float64(s.h)*(1-z)/2,
	))
}

// Clear erases every layer. Non-ephemeral layers keep their records when
// keep is true; ephemeral layers are always emptied.
func (s *Stage) Clear(keep bool) {
	for _, id := range s.LayerIDs() {
		l := s.layers[id]
		l.Clear(keep && !l.IsEphemeral())
	}
}

// ClearAndReset empties every layer and returns to the initial view.
func (s *Stage) ClearAndReset() {
	for _, l := range s.layers {
		l.ClearAndReset()
	}
	s.state = geom.NewViewState(s.state.ZoomStep)
	s.logger.Debug("stage reset")
	s.notify()
}

// Composite renders every non-ephemeral layer into dst, bottom to top, with
// the current view.
func (s *Stage) Composite(dst surface.Surface) error {
	return s.CompositeView(dst, s.state.View())
}

// CompositeView is Composite with an explicit view, used to frame content
// differently from what is on screen.
func (s *Stage) CompositeView(dst surface.Surface, v geom.View) error {
	var errs []error
	for _, id := range s.LayerIDs() {
		l := s.layers[id]
		if l.IsEphemeral() {
			continue
		}
		if err := l.RenderTo(dst, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ContentBounds is the scene-space union of every stored shape. ok is false
// when nothing has been committed.
func (s *Stage) ContentBounds() (r geom.Rect, ok bool) {
	for _, id := range s.LayerIDs() {
		b, has := s.layers[id].Bounds()
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

// applyView hands the new view to every non-ephemeral layer, then notifies.
func (s *Stage) applyView() error {
	v := s.state.View()
	var errs []error
	for _, id := range s.LayerIDs() {
		l := s.layers[id]
		if l.IsEphemeral() {
			continue
		}
		if err := l.Apply(v); err != nil {
			errs = append(errs, err)
		}
	}
	s.notify()
	return errors.Join(errs...)
}

func (s *Stage) notify() {
	s.views.Notify(s.Display())
}

// Display returns the view rounded the way observers receive it: offset to
// whole pixels, zoom to two decimals.
func (s *Stage) Display() ViewChange {
	return ViewChange{
		Offset: s.state.EffectiveOffset().Round(),
		Zoom:   math.Round(s.state.ZoomFactor*100) / 100,
	}
}
