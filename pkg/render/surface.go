package render

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// Surface is the 2D drawing target of the pipeline. Path and transform
// calls follow *gg.Context; Raster adapts a gg context to it.
type Surface interface {
	Width() int
	Height() int
	Clear()

	Push()
	Pop()
	Transform(m gg.Matrix)
	Translate(x, y float64)
	Rotate(angle float64)

	SetHexColor(hex string)
	SetLineWidth(width float64)
	SetDash(lengths ...float64)
	ClearDash()

	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	DrawLine(x1, y1, x2, y2 float64)
	DrawRectangle(x, y, w, h float64)
	DrawCircle(x, y, r float64)
	Fill() error
	Stroke() error

	// SetFontSize selects the text size in world units.
	SetFontSize(size float64)
	DrawStringAnchored(s string, x, y, ax, ay float64)
}

// ErrNoSurface is returned when a raster surface cannot be created.
var ErrNoSurface = errors.New("render: surface unavailable")

var defaultFont = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// Raster is a Surface backed by a software gg context using the Go
// Regular font.
type Raster struct {
	*gg.Context
	font *text.FontSource
}

// NewRaster creates a w×h raster surface.
func NewRaster(w, h int) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrNoSurface, w, h)
	}
	src, err := defaultFont()
	if err != nil {
		return nil, fmt.Errorf("%w: load font: %v", ErrNoSurface, err)
	}
	return &Raster{Context: gg.NewContext(w, h), font: src}, nil
}

// SetFontSize selects a face scaled by the current transform, since gg
// draws text in device space.
func (r *Raster) SetFontSize(size float64) {
	m := r.GetTransform()
	px := size * math.Sqrt(math.Abs(m.A*m.E-m.B*m.D))
	if px < 1 {
		px = 1
	}
	r.SetFont(r.font.Face(px))
}

// DrawStringAnchored draws s anchored at user-space (x, y).
func (r *Raster) DrawStringAnchored(s string, x, y, ax, ay float64) {
	dx, dy := r.TransformPoint(x, y)
	r.Context.DrawStringAnchored(s, dx, dy, ax, ay)
}
