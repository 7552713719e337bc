// Package render paints a diagram store onto a 2D surface.
package render

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/editor"
)

// Paint colours.
const (
	GridColor      = "#e0e0e0"
	SelectColor    = "#1e88e5"
	CollisionColor = "#e53935"
	HintColor      = "#9e9e9e"
	ConnectColor   = "#43a047"
	LabelColor     = "#424242"
	ExportColor    = "#ffffff" // background of plain frames
)

// minGridPixels is the screen spacing below which the grid is not painted.
const minGridPixels = 4.0

// Overlay is the transient interaction state painted over the drawing.
type Overlay struct {
	Draft *editor.WireDraft
	Drag  *editor.DragSession
}

// Frame is everything one paint pass needs.
type Frame struct {
	Store     *diagram.Store
	Transform gg.Matrix // world to surface
	Overlay   Overlay

	// Plain skips the grid and selection highlights and paints ExportColor
	// instead of the drawing's background, for exports.
	Plain bool

	// HideGrid skips the grid only. Hosts that mark the grid themselves set it.
	HideGrid bool
}

// FromEditor builds the frame for an editor's current state.
func FromEditor(ed *editor.Editor) Frame {
	f := Frame{Store: ed.Store(), Transform: ed.Viewport().Matrix()}
	if d, ok := ed.Draft(); ok {
		f.Overlay.Draft = &d
	}
	if d, ok := ed.Drag(); ok {
		f.Overlay.Drag = &d
	}
	return f
}

// Draw paints f onto s in one pass: background, grid, visible layers in
// order, then overlays. It returns the first paint error, if any.
func Draw(s Surface, f Frame) error {
	p := &pen{s: s}
	st := f.Store.Settings()

	bg := st.Background
	if f.Plain {
		bg = ExportColor
	}
	s.Clear()
	s.SetHexColor(bg)
	s.DrawRectangle(0, 0, float64(s.Width()), float64(s.Height()))
	p.fill()

	s.Push()
	s.Transform(f.Transform)
	zoom := math.Sqrt(math.Abs(f.Transform.A*f.Transform.E - f.Transform.B*f.Transform.D))
	if zoom == 0 {
		zoom = 1
	}

	if st.ShowGrid && !f.Plain && !f.HideGrid {
		drawGrid(p, f.Transform, st.GridSize, zoom)
	}

	sel := f.Store.Selection()
	if f.Plain {
		sel = diagram.Selection{}
	}
	elems := f.Store.Elements()
	for _, l := range f.Store.Layers() {
		if !l.Visible {
			continue
		}
		for _, e := range elems {
			if e.Layer == l.ID {
				drawElement(p, f.Store, e, l, sel.Contains(e.ID), zoom)
			}
		}
	}

	drawOverlay(p, f.Store, f.Overlay, zoom)
	s.Pop()

	if p.err != nil {
		diagram.Logger().Warn("render failed", "err", p.err)
	}
	return p.err
}

// drawGrid paints grid lines covering the visible world area.
func drawGrid(p *pen, m gg.Matrix, size, zoom float64) {
	if size <= 0 || size*zoom < minGridPixels {
		return
	}
	inv := m.Invert()
	a := inv.TransformPoint(gg.Pt(0, 0))
	b := inv.TransformPoint(gg.Pt(float64(p.s.Width()), float64(p.s.Height())))
	x0, x1 := min(a.X, b.X), max(a.X, b.X)
	y0, y1 := min(a.Y, b.Y), max(a.Y, b.Y)

	p.s.SetHexColor(GridColor)
	p.s.SetLineWidth(1 / zoom)
	for x := math.Floor(x0/size) * size; x <= x1; x += size {
		p.s.DrawLine(x, y0, x, y1)
	}
	for y := math.Floor(y0/size) * size; y <= y1; y += size {
		p.s.DrawLine(x0, y, x1, y)
	}
	p.stroke()
}

func drawElement(p *pen, store *diagram.Store, e diagram.Element, l diagram.Layer, selected bool, zoom float64) {
	s := p.s
	color := l.Color
	if selected {
		color = SelectColor
	}

	switch e.Kind {
	case diagram.KindWire:
		s.SetHexColor(color)
		s.SetLineWidth(e.Width)
		setDash(s, e.Style)
		p.line(e.Start.X, e.Start.Y, e.End.X, e.End.Y)
		s.ClearDash()

	case diagram.KindText:
		if selected {
			s.SetHexColor(SelectColor)
		} else {
			s.SetHexColor(e.Color)
		}
		s.SetFontSize(e.FontSize)
		s.DrawStringAnchored(e.Text, e.Pos.X, e.Pos.Y, 0.5, 0.5)

	case diagram.KindComponent:
		spec := store.Catalog().Spec(e.Type)
		s.Push()
		s.Translate(e.Pos.X, e.Pos.Y)
		s.Rotate(e.Rotation * math.Pi / 180)
		s.SetHexColor(color)
		s.SetLineWidth(2)
		g, ok := glyphs[e.Type]
		if !ok {
			g = boxGlyph
		}
		g(p, spec.Width, spec.Height)
		if !ok {
			s.SetFontSize(10)
			s.DrawStringAnchored(spec.Name, 0, 0, 0.5, 0.5)
		}
		s.Pop()

		box := store.Bounds(e)
		if selected {
			s.SetHexColor(SelectColor)
			s.SetLineWidth(1 / zoom)
			s.SetDash(4/zoom, 3/zoom)
			s.DrawRectangle(box.Min().X-3, box.Min().Y-3, box.W+6, box.H+6)
			p.stroke()
			s.ClearDash()
		}
		if label := e.Caption(); label != "" {
			s.SetHexColor(LabelColor)
			s.SetFontSize(11)
			s.DrawStringAnchored(label, box.X, box.Max().Y+8, 0.5, 0.5)
		}
	}
}

func setDash(s Surface, style string) {
	switch style {
	case "dashed":
		s.SetDash(8, 4)
	case "dotted":
		s.SetDash(2, 3)
	default:
		s.ClearDash()
	}
}

func drawOverlay(p *pen, store *diagram.Store, o Overlay, zoom float64) {
	s := p.s
	if d := o.Draft; d != nil {
		s.SetHexColor(SelectColor)
		s.SetLineWidth(diagram.DefaultWireWidth)
		s.SetDash(6/zoom, 4/zoom)
		p.line(d.Start.X, d.Start.Y, d.Current.X, d.Current.Y)
		s.ClearDash()
		s.DrawCircle(d.Start.X, d.Start.Y, 3/zoom)
		p.fill()
	}

	d := o.Drag
	if d == nil {
		return
	}
	if d.Colliding {
		s.SetHexColor(CollisionColor)
		s.SetLineWidth(2 / zoom)
		if e, ok := store.Element(d.ID); ok {
			b := store.Bounds(e)
			s.DrawRectangle(b.Min().X, b.Min().Y, b.W, b.H)
			p.stroke()
		}
		if other, ok := store.Element(d.CollidesWith); ok {
			b := store.Bounds(other)
			s.DrawRectangle(b.Min().X, b.Min().Y, b.W, b.H)
			p.stroke()
		}
	}
	target, connect := d.ConnectTarget()
	for _, c := range d.Candidates {
		if connect && c.Point == target.Point {
			s.SetHexColor(ConnectColor)
			s.DrawCircle(c.X, c.Y, 5/zoom)
			p.fill()
			continue
		}
		s.SetHexColor(HintColor)
		s.SetLineWidth(1 / zoom)
		s.DrawCircle(c.X, c.Y, 4/zoom)
		p.stroke()
	}
}
