package shape

import (
	"fmt"
	"strings"
)

// Kind enumerates the shape variants. None is the "nothing selected" state a
// palette may report; it has no variant.
type Kind int

const (
	None Kind = iota
	Circle
	Ellipse
	Rectangle
	Line
	Trace
	Grid
)

var kindNames = map[Kind]string{
	None:      "none",
	Circle:    "circle",
	Ellipse:   "ellipse",
	Rectangle: "rectangle",
	Line:      "line",
	Trace:     "trace",
	Grid:      "grid",
}

var kindAliases = map[string]Kind{
	"":       None,
	"rect":   Rectangle,
	"tracer": Trace,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a palette name to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidShapeKind, s)
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
