package input

import (
	"fmt"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
)

// Kind identifies a normalized pointer or keyboard event.
type Kind int

const (
	Move Kind = iota
	ButtonDown
	ButtonUp
	Click
	Leave
	Wheel
	Key
)

var kindNames = [...]string{"move", "buttonDown", "buttonUp", "click", "leave", "wheel", "key"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a wire name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Button is the pointer button that produced an event.
type Button int

const (
	NoButton Button = iota
	Left
	Middle
	Right
)

var buttonNames = [...]string{"none", "left", "middle", "right"}

func (b Button) String() string {
	if b < 0 || int(b) >= len(buttonNames) {
		return fmt.Sprintf("button(%d)", int(b))
	}
	return buttonNames[b]
}

func (b Button) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Button) UnmarshalText(text []byte) error {
	for i, name := range buttonNames {
		if name == string(text) {
			*b = Button(i)
			return nil
		}
	}
	return fmt.Errorf("unknown button %q", text)
}

// KeyEscape is the only key the drawing core reacts to.
const KeyEscape = "Escape"

// Event is a normalized input event. Position is always in screen space.
// WheelDelta is only meaningful for Wheel events and Key for Key events.
type Event struct {
	Kind       Kind       `json:"kind"`
	Position   geom.Point `json:"position"`
	Button     Button     `json:"button,omitempty"`
	WheelDelta float64    `json:"wheelDelta,omitempty"`
	Key        string     `json:"key,omitempty"`
}

// Convenience constructors used by frontends and tests.

func MoveTo(x, y float64) Event { return Event{Kind: Move, Position: geom.Pt(x, y)} }

func Down(b Button, x, y float64) Event {
	return Event{Kind: ButtonDown, Button: b, Position: geom.Pt(x, y)}
}

func Up(b Button, x, y float64) Event {
	return Event{Kind: ButtonUp, Button: b, Position: geom.Pt(x, y)}
}

func ClickAt(b Button, x, y float64) Event {
	return Event{Kind: Click, Button: b, Position: geom.Pt(x, y)}
}

func LeaveAt(x, y float64) Event { return Event{Kind: Leave, Position: geom.Pt(x, y)} }

func WheelAt(x, y, delta float64) Event {
	return Event{Kind: Wheel, Position: geom.Pt(x, y), WheelDelta: delta}
}

func Press(key string) Event { return Event{Kind: Key, Key: key} }
