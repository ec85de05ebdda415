package shape

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/filkovsp/WEB-Drawing-App/internal/surface"
)

// Style is the stroke and fill a shape is drawn with.
type Style struct {
	Color color.RGBA `json:"-"`
	Fill  color.RGBA `json:"-"`
	Width float64    `json:"width"`
}

// DefaultStyle is a 1px black stroke without fill.
func DefaultStyle() Style {
	return Style{Color: color.RGBA{A: 0xff}, Width: 1}
}

// ParseColor accepts #rgb or #rrggbb. An empty string, "none" and
// "transparent" yield the fully transparent colour.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "transparent":
		return color.RGBA{}, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// FormatColor is the inverse of ParseColor for opaque colours.
func FormatColor(c color.RGBA) string {
	if c.A == 0 {
		return ""
	}
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

type styleJSON struct {
	Color string  `json:"color"`
	Fill  string  `json:"fill,omitempty"`
	Width float64 `json:"width"`
}

func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(styleJSON{Color: FormatColor(s.Color), Fill: FormatColor(s.Fill), Width: s.Width})
}

func (s *Style) UnmarshalJSON(b []byte) error {
	var raw styleJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c, err := ParseColor(raw.Color)
	if err != nil {
		return err
	}
	f, err := ParseColor(raw.Fill)
	if err != nil {
		return err
	}
	*s = Style{Color: c, Fill: f, Width: raw.Width}
	return nil
}

// Pen converts the style to a surface pen with full layer opacity.
func (s Style) Pen() surface.Pen {
	return surface.Pen{Color: s.Color, Fill: s.Fill, Width: s.Width, Alpha: 1}
}
