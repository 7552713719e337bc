package editor

import (
	"github.com/gogpu/gg"
	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// Zoom limits.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// Viewport maps world coordinates to screen coordinates:
//
//	screen = world*Zoom + Pan
type Viewport struct {
	PanX, PanY float64
	Zoom       float64
}

// NewViewport returns the identity view.
func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// Matrix returns the world-to-screen transform.
func (v Viewport) Matrix() gg.Matrix {
	return gg.Translate(v.PanX, v.PanY).Multiply(gg.Scale(v.Zoom, v.Zoom))
}

// ToWorld converts a screen point to world coordinates.
func (v Viewport) ToWorld(x, y float64) diagram.Point {
	p := v.Matrix().Invert().TransformPoint(gg.Pt(x, y))
	return diagram.Pt(p.X, p.Y)
}

// ToScreen converts a world point to screen coordinates.
func (v Viewport) ToScreen(p diagram.Point) (x, y float64) {
	s := v.Matrix().TransformPoint(gg.Pt(p.X, p.Y))
	return s.X, s.Y
}

// PanBy shifts the view by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// ZoomAt multiplies the zoom by factor, clamped to [MinZoom, MaxZoom],
// keeping the world point under screen position (x, y) fixed.
func (v *Viewport) ZoomAt(x, y, factor float64) {
	w := v.ToWorld(x, y)
	z := min(max(v.Zoom*factor, MinZoom), MaxZoom)
	v.Zoom = z
	v.PanX = x - w.X*z
	v.PanY = y - w.Y*z
}

// Reset restores the identity view.
func (v *Viewport) Reset() {
	*v = NewViewport()
}
