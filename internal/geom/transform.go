package geom

// View is the offset/zoom pair a layer renders with. Layers receive it by
// value and never hold a reference to the Stage's state.
type View struct {
	Offset Point   `json:"offset"`
	Zoom   float64 `json:"zoom"`
}

// IdentityView returns the view with no offset and unit zoom.
func IdentityView() View {
	return View{Zoom: 1}
}

// ToScene maps a screen position into scene space under v:
// (screen - offset) / zoom.
//
// Zoom must be positive. The Stage guarantees that; nothing here checks it.
func (v View) ToScene(p Point) Point {
	return v.Matrix().Invert().Apply(p)
}

// ToScreen maps a scene position into screen space under v:
// scene * zoom + offset. It inverts ToScene.
func (v View) ToScreen(p Point) Point {
	return v.Matrix().Apply(p)
}

// ToScreenLen scales a magnitude (radius, width, height) into screen units.
// Magnitudes are never translated.
func (v View) ToScreenLen(m float64) float64 {
	return m * v.Zoom
}

// Matrix returns v as Translate(offset) * Scale(zoom).
func (v View) Matrix() Matrix2D {
	return Translate(v.Offset.X, v.Offset.Y).Multiply(Scale(v.Zoom, v.Zoom))
}

// IsIdentity reports whether v leaves coordinates untouched.
func (v View) IsIdentity() bool {
	return v.Offset == (Point{}) && v.Zoom == 1
}

// ViewState is the authoritative pan/zoom state owned by the Stage.
type ViewState struct {
	Pan        Point   `json:"pan"`
	ZoomOffset Point   `json:"zoomOffset"`
	ZoomFactor float64 `json:"zoomFactor"`
	ZoomStep   float64 `json:"zoomStep"`
}

// NewViewState returns a state with no pan, unit zoom and the given step.
func NewViewState(step float64) ViewState {
	return ViewState{ZoomFactor: 1, ZoomStep: step}
}

// EffectiveOffset is Pan + ZoomOffset.
func (s ViewState) EffectiveOffset() Point {
	return s.Pan.Add(s.ZoomOffset)
}

// View copies the fields a layer needs to render.
func (s ViewState) View() View {
	return View{Offset: s.EffectiveOffset(), Zoom: s.ZoomFactor}
}
