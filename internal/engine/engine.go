// Package engine is the command/query facade over one drawing session: a
// stage, its dispatcher and the palette selection.
package engine

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/filkovsp/WEB-Drawing-App/internal/dispatch"
	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface/record"
)

// GridLayer is the user layer the background grid lives in.
const GridLayer = "grid"

// GridStyle is used for the grid axes.
var GridStyle = shape.Style{Color: color.RGBA{R: 120, G: 120, B: 140, A: 255}, Width: 1.5}

// Engine is not safe for concurrent use. Callers that share one across
// goroutines must serialise access.
type Engine struct {
	stage *stage.Stage
	disp  *dispatch.Dispatcher
	sel   dispatch.Selection

	zoomStep   float64
	showGrid   bool
	gridStep   float64
	traceColor color.RGBA
	factory    surface.Factory

	// Last record-surface version handed out per layer.
	sent map[string]uint64

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithZoomStep(step float64) Option {
	return func(e *Engine) { e.zoomStep = step }
}

// WithGrid enables the background grid with lines every step scene units.
func WithGrid(step float64) Option {
	return func(e *Engine) {
		e.showGrid = true
		e.gridStep = step
	}
}

// WithStyle sets the initial stroke and fill.
func WithStyle(s shape.Style) Option {
	return func(e *Engine) { e.sel.Style = s }
}

func WithTraceColor(c color.RGBA) Option {
	return func(e *Engine) { e.traceColor = c }
}

// WithSurfaceFactory overrides the layer surfaces. The default records draw
// commands, which is what Frames reads.
func WithSurfaceFactory(f surface.Factory) Option {
	return func(e *Engine) { e.factory = f }
}

// New creates an engine over a w x h surface.
func New(w, h int, opts ...Option) (*Engine, error) {
	e := &Engine{
		sel:        dispatch.Selection{Style: shape.DefaultStyle()},
		zoomStep:   stage.DefaultZoomStep,
		gridStep:   shape.DefaultGridStep,
		traceColor: dispatch.DefaultTraceColor,
		factory:    record.Factory,
		sent:       make(map[string]uint64),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	st, err := stage.New(w, h,
		stage.WithZoomStep(e.zoomStep),
		stage.WithSurfaceFactory(e.factory),
		stage.WithLogger(e.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create stage: %w", err)
	}
	e.stage = st
	e.disp = dispatch.New(st,
		dispatch.WithLogger(e.logger),
		dispatch.WithTraceColor(e.traceColor),
	)

	if e.showGrid {
		if _, err := st.AddLayer(GridLayer); err != nil {
			return nil, err
		}
		if err := e.seedGrid(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// seedGrid commits the grid with its origin at the scene origin, unless the
// grid layer already holds one.
func (e *Engine) seedGrid() error {
	if !e.showGrid {
		return nil
	}
	l, err := e.stage.Layer(GridLayer)
	if err != nil || l.Len() > 0 {
		return err
	}
	v := l.View()
	origin := v.ToScreen(geom.Point{})
	end := v.ToScreen(geom.Pt(e.gridStep, 0))
	_, err = l.Commit(shape.Grid, origin, end, GridStyle)
	return err
}

// --- Commands ---

// Dispatch feeds one input event through the dispatcher.
func (e *Engine) Dispatch(ev input.Event) (dispatch.Outcome, error) {
	return e.disp.Dispatch(ev, e.sel)
}

// Select changes the palette selection. Switching shapes abandons a
// construction in progress.
func (e *Engine) Select(kind shape.Kind) {
	if kind != e.sel.Kind {
		e.disp.Cancel()
	}
	e.sel.Kind = kind
	e.logger.Debug("shape selected", "kind", kind)
}

// SelectName resolves a palette name and selects it.
func (e *Engine) SelectName(name string) error {
	k, err := shape.ParseKind(name)
	if err != nil {
		return err
	}
	e.Select(k)
	return nil
}

// SetColor sets the stroke colour for subsequent shapes.
func (e *Engine) SetColor(hex string) error {
	c, err := shape.ParseColor(hex)
	if err != nil {
		return err
	}
	e.sel.Style.Color = c
	return nil
}

// SetFill sets the fill colour. An empty string disables fill.
func (e *Engine) SetFill(hex string) error {
	c, err := shape.ParseColor(hex)
	if err != nil {
		return err
	}
	e.sel.Style.Fill = c
	return nil
}

// SetWidth sets the stroke width.
func (e *Engine) SetWidth(w float64) error {
	if w <= 0 {
		return fmt.Errorf("stroke width must be positive, got %v", w)
	}
	e.sel.Style.Width = w
	return nil
}

func (e *Engine) Center() error {
	return e.stage.Center()
}

// Clear erases every layer, keeping stored shapes when keep is true.
func (e *Engine) Clear(keep bool) error {
	e.disp.Cancel()
	e.stage.Clear(keep)
	return e.seedGrid()
}

// Reset clears everything and restores the initial view.
func (e *Engine) Reset() error {
	e.disp.Cancel()
	e.stage.ClearAndReset()
	return e.seedGrid()
}

// AddLayer creates a user layer and returns its id.
func (e *Engine) AddLayer(id string) (string, error) {
	l, err := e.stage.AddLayer(id)
	if err != nil {
		return "", err
	}
	return l.ID(), nil
}

func (e *Engine) RemoveLayer(id string) error {
	if err := e.stage.RemoveLayer(id); err != nil {
		return err
	}
	delete(e.sent, id)
	if id == GridLayer {
		e.showGrid = false
	}
	return nil
}

// --- Queries ---

// View returns the rounded view as observers see it.
func (e *Engine) View() stage.ViewChange {
	return e.stage.Display()
}

// State returns the full-precision view state.
func (e *Engine) State() geom.ViewState {
	return e.stage.State()
}

// Pointer returns the pointer's rounded scene position.
func (e *Engine) Pointer() geom.Point {
	return e.disp.Pointer()
}

func (e *Engine) Selection() dispatch.Selection {
	return e.sel
}

// Shapes returns the records stored in a layer.
func (e *Engine) Shapes(layerID string) ([]shape.Record, error) {
	l, err := e.stage.Layer(layerID)
	if err != nil {
		return nil, err
	}
	return l.Shapes(), nil
}

func (e *Engine) LayerIDs() []string {
	return e.stage.LayerIDs()
}

func (e *Engine) Size() (w, h int) {
	return e.stage.Size()
}

// OnViewChange subscribes fn to pan and zoom changes.
func (e *Engine) OnViewChange(fn func(stage.ViewChange)) func() {
	return e.stage.OnViewChange(fn)
}

// OnPointer subscribes fn to pointer moves in scene space.
func (e *Engine) OnPointer(fn func(geom.Point)) func() {
	return e.disp.OnPointer(fn)
}

// Stage exposes the underlying stage to frontends that render it directly.
func (e *Engine) Stage() *stage.Stage {
	return e.stage
}
