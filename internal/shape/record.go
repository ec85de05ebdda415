package shape

import "github.com/filkovsp/WEB-Drawing-App/internal/geom"

// Record is one committed shape. Params are in scene space; the view at
// creation is kept for reference only and is never used to redraw.
type Record struct {
	ID               string     `json:"id"`
	Kind             Kind       `json:"kind"`
	Params           Params     `json:"params"`
	Style            Style      `json:"style"`
	OffsetAtCreation geom.Point `json:"offsetAtCreation"`
	ZoomAtCreation   float64    `json:"zoomAtCreation"`
}

// Extent is the record's scene-space bounds for framing. A grid covers the
// whole plane and reports ok=false.
func (r Record) Extent() (geom.Rect, bool) {
	if r.Kind == Grid || r.Params == nil {
		return geom.Rect{}, false
	}
	return r.Params.Bounds(), true
}
