package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
)

// PixelAt maps a terminal cell to the surface pixel at its centre. A cell
// covers one pixel column and two pixel rows.
func PixelAt(cx, cy int) geom.Point {
	return geom.Pt(float64(cx)+0.5, float64(2*cy)+1)
}

// pointer remembers what the terminal does not report reliably: which button
// went down, and whether the pointer is over the drawing area.
type pointer struct {
	pressed input.Button
	inside  bool
}

func buttonOf(b tea.MouseButton) input.Button {
	switch b {
	case tea.MouseButtonLeft:
		return input.Left
	case tea.MouseButtonMiddle:
		return input.Middle
	case tea.MouseButtonRight:
		return input.Right
	}
	return input.NoButton
}

// translate turns one mouse message into drawing events. rows is the height
// of the drawing area in cells; anything below it is the status bar and
// counts as leaving the surface.
func (p *pointer) translate(msg tea.MouseMsg, rows int) []input.Event {
	if msg.Y >= rows || msg.Y < 0 || msg.X < 0 {
		if !p.inside {
			return nil
		}
		p.inside = false
		pos := PixelAt(msg.X, msg.Y)
		return []input.Event{input.LeaveAt(pos.X, pos.Y)}
	}
	p.inside = true
	pos := PixelAt(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return []input.Event{input.WheelAt(pos.X, pos.Y, 1)}
	case tea.MouseButtonWheelDown:
		return []input.Event{input.WheelAt(pos.X, pos.Y, -1)}
	}

	switch msg.Action {
	case tea.MouseActionPress:
		b := buttonOf(msg.Button)
		if b == input.NoButton {
			return nil
		}
		p.pressed = b
		return []input.Event{input.Down(b, pos.X, pos.Y)}

	case tea.MouseActionRelease:
		// Legacy mouse encodings report releases without a button.
		b := buttonOf(msg.Button)
		if b == input.NoButton {
			b = p.pressed
		}
		p.pressed = input.NoButton
		if b == input.NoButton {
			return nil
		}
		evs := []input.Event{input.Up(b, pos.X, pos.Y)}
		if b == input.Left {
			evs = append(evs, input.ClickAt(b, pos.X, pos.Y))
		}
		return evs

	case tea.MouseActionMotion:
		return []input.Event{input.MoveTo(pos.X, pos.Y)}
	}
	return nil
}
