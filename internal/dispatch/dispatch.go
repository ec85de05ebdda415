// Package dispatch interprets tracked pointer state and the selected shape
// kind as stage and layer operations.
package dispatch

import (
	"image/color"
	"log/slog"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
	"github.com/filkovsp/WEB-Drawing-App/internal/observe"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
)

// AdvisoryPickShape is returned when the user clicks without a selection.
const AdvisoryPickShape = "Pick a shape from the tool bar!"

// DefaultTraceColor is the cross-hair colour.
var DefaultTraceColor = color.RGBA{R: 150, A: 255}

// Selection is the palette state supplied with every event.
type Selection struct {
	Kind  shape.Kind  `json:"kind"`
	Style shape.Style `json:"style"`
}

// Outcome describes what an event did.
type Outcome struct {
	// Advisory is a user-facing prompt. It is never an error.
	Advisory string `json:"advisory,omitempty"`
	// Committed is set when the event completed a construction cycle.
	Committed *shape.Record `json:"committed,omitempty"`
	// Zoom is the factor after a wheel event, zero otherwise.
	Zoom float64 `json:"zoom,omitempty"`
}

// Dispatcher owns the pointer tracker of one drawing session.
type Dispatcher struct {
	stage      *stage.Stage
	tracker    *input.Tracker
	traceStyle shape.Style
	pointers   observe.List[geom.Point]
	logger     *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTraceColor sets the cross-hair colour.
func WithTraceColor(c color.RGBA) Option {
	return func(d *Dispatcher) { d.traceStyle.Color = c }
}

// New creates a dispatcher driving st.
func New(st *stage.Stage, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		stage:      st,
		tracker:    input.NewTracker(),
		traceStyle: shape.Style{Color: DefaultTraceColor, Width: 1},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnPointer subscribes fn to the rounded scene position of the pointer.
func (d *Dispatcher) OnPointer(fn func(geom.Point)) (unsubscribe func()) {
	return d.pointers.Subscribe(fn)
}

// State returns the tracker snapshot.
func (d *Dispatcher) State() input.State {
	return d.tracker.State()
}

// Pointer returns the pointer position in scene space, rounded.
func (d *Dispatcher) Pointer() geom.Point {
	return d.stage.View().ToScene(d.tracker.State().Current).Round()
}

// Cancel abandons a construction cycle in progress.
func (d *Dispatcher) Cancel() {
	d.stage.Model().Clear(false)
	d.tracker.ResetClickCount()
}

// Dispatch processes one event to completion. Errors come only from the
// layer operations an event triggers; an empty selection is an advisory.
func (d *Dispatcher) Dispatch(ev input.Event, sel Selection) (Outcome, error) {
	// Only the primary button takes part in construction.
	if ev.Kind == input.Click && ev.Button != input.Left {
		return Outcome{}, nil
	}

	st := d.tracker.Track(ev)

	switch ev.Kind {
	case input.Leave:
		d.stage.Trace().Clear(false)
	case input.Key:
	default:
		if err := d.trace(st); err != nil {
			return Outcome{}, err
		}
	}

	switch ev.Kind {
	case input.Click:
		return d.click(st, sel)

	case input.Move:
		if d.tracker.InProgress() && !st.MouseDown && sel.Kind != shape.None {
			model := d.stage.Model()
			model.Clear(false)
			if err := model.SketchBetween(sel.Kind, st.Start, st.Current, sel.Style); err != nil {
				return Outcome{}, err
			}
		}
		if st.MouseDown && st.Button == input.Middle {
			return Outcome{}, d.stage.Drag(st.MoveDelta)
		}

	case input.Key:
		if ev.Key == input.KeyEscape {
			d.logger.Debug("construction cancelled")
			d.Cancel()
		}

	case input.Wheel:
		if st.MouseDown {
			break
		}
		anchor := d.stage.SurfaceCenter()
		if st.Inside {
			anchor = st.Current
		}
		var (
			z   float64
			err error
		)
		if ev.WheelDelta > 0 {
			z, err = d.stage.ZoomIn(anchor)
		} else {
			z, err = d.stage.ZoomOut(anchor)
		}
		return Outcome{Zoom: z}, err
	}
	return Outcome{}, nil
}

func (d *Dispatcher) click(st input.State, sel Selection) (Outcome, error) {
	if sel.Kind == shape.None {
		d.tracker.ResetClickCount()
		return Outcome{Advisory: AdvisoryPickShape}, nil
	}
	if !d.tracker.Complete() {
		return Outcome{}, nil
	}

	d.stage.Model().Clear(false)
	defer d.tracker.ResetClickCount()

	rec, err := d.stage.Main().Commit(sel.Kind, st.Start, st.End, sel.Style)
	if err != nil {
		d.logger.Warn("commit rejected", "kind", sel.Kind, "error", err)
		return Outcome{}, err
	}
	return Outcome{Committed: &rec}, nil
}

// trace mirrors the pointer and redraws the cross-hair.
func (d *Dispatcher) trace(st input.State) error {
	d.pointers.Notify(d.stage.View().ToScene(st.Current).Round())

	tr := d.stage.Trace()
	tr.Clear(false)
	if !st.Inside {
		return nil
	}
	return tr.SketchBetween(shape.Trace, st.Current, st.Current, d.traceStyle)
}
