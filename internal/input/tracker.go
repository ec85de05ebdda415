package input

import "github.com/filkovsp/WEB-Drawing-App/internal/geom"

// State is a snapshot of everything the tracker has derived so far.
type State struct {
	Current    geom.Point `json:"current"`
	Previous   geom.Point `json:"previous"`
	MoveDelta  geom.Point `json:"moveDelta"`
	Start      geom.Point `json:"start"`
	End        geom.Point `json:"end"`
	Button     Button     `json:"button"`
	MouseDown  bool       `json:"mouseDown"`
	ClickCount int        `json:"clickCount"`
	Inside     bool       `json:"inside"`
}

// Tracker turns a stream of normalized events into pointer state.
// It has no drawing side effects; cancelling a construction cycle is up to
// the caller (ResetClickCount plus clearing its own preview).
type Tracker struct {
	s State
}

// NewTracker creates a tracker with the pointer outside the surface.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Track applies ev and returns the resulting state.
func (t *Tracker) Track(ev Event) State {
	switch ev.Kind {
	case Move:
		t.s.Previous = t.s.Current
		t.s.Current = ev.Position
		t.s.MoveDelta = t.s.Current.Sub(t.s.Previous)
		t.s.Inside = true

	case ButtonDown:
		t.s.Button = ev.Button
		t.s.MouseDown = true

	case ButtonUp:
		t.s.MouseDown = false
		t.s.Button = NoButton

	case Leave:
		if t.s.MouseDown {
			t.s.MouseDown = false
			t.s.End = t.s.Current
		}
		t.s.Inside = false

	case Click:
		t.s.Current = ev.Position
		t.s.Button = ev.Button
		switch t.s.ClickCount {
		case 0:
			t.s.Start = t.s.Current
			t.s.ClickCount = 1
		case 1:
			t.s.End = t.s.Current
			t.s.ClickCount = 2
		}
		// A third click before the caller resets is ignored: the cycle is
		// already complete and start/end must stay as recorded.

	case Wheel, Key:
	}
	return t.s
}

// State returns the current snapshot.
func (t *Tracker) State() State {
	return t.s
}

// Complete reports whether a two-click construction cycle has finished.
func (t *Tracker) Complete() bool {
	return t.s.ClickCount == 2
}

// InProgress reports whether the first click of a cycle has been recorded.
func (t *Tracker) InProgress() bool {
	return t.s.ClickCount == 1
}

// ResetClickCount starts a new construction cycle.
func (t *Tracker) ResetClickCount() {
	t.s.ClickCount = 0
	t.s.MouseDown = false
}
