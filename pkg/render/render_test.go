package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/gg"
	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/editor"
)

// recorder is a Surface that logs every call.
type recorder struct {
	ops       []string
	strokeErr error
}

func (r *recorder) add(format string, args ...any) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *recorder) Width() int                   { return 200 }
func (r *recorder) Height() int                  { return 100 }
func (r *recorder) Clear()                       { r.add("clear") }
func (r *recorder) Push()                        { r.add("push") }
func (r *recorder) Pop()                         { r.add("pop") }
func (r *recorder) Transform(m gg.Matrix)        { r.add("transform") }
func (r *recorder) Translate(x, y float64)       { r.add("translate %g %g", x, y) }
func (r *recorder) Rotate(a float64)             { r.add("rotate %.4f", a) }
func (r *recorder) SetHexColor(hex string)       { r.add("color %s", hex) }
func (r *recorder) SetLineWidth(w float64)       { r.add("width %g", w) }
func (r *recorder) SetDash(l ...float64)         { r.add("dash") }
func (r *recorder) ClearDash()                   { r.add("nodash") }
func (r *recorder) MoveTo(x, y float64)          { r.add("move %g %g", x, y) }
func (r *recorder) LineTo(x, y float64)          { r.add("lineto %g %g", x, y) }
func (r *recorder) ClosePath()                   { r.add("close") }
func (r *recorder) DrawCircle(x, y, rad float64) { r.add("circle %g %g", x, y) }
func (r *recorder) SetFontSize(size float64)     { r.add("font %g", size) }

func (r *recorder) Fill() error {
	r.add("fill")
	return nil
}

func (r *recorder) DrawLine(x1, y1, x2, y2 float64) {
	r.add("line %g %g %g %g", x1, y1, x2, y2)
}

func (r *recorder) DrawRectangle(x, y, w, h float64) {
	r.add("rect %g %g %g %g", x, y, w, h)
}

func (r *recorder) Stroke() error {
	r.add("stroke")
	return r.strokeErr
}

func (r *recorder) DrawStringAnchored(s string, x, y, ax, ay float64) {
	r.add("text %s", s)
}

func (r *recorder) index(op string) int {
	return slices.Index(r.ops, op)
}

func (r *recorder) has(prefix string) bool {
	return slices.ContainsFunc(r.ops, func(op string) bool { return strings.HasPrefix(op, prefix) })
}

func newFrame(s *diagram.Store) Frame {
	return Frame{Store: s, Transform: gg.Identity()}
}

func TestDrawOrder(t *testing.T) {
	s := diagram.NewStore()
	s.AddWire(diagram.Pt(1, 2), diagram.Pt(3, 4))

	r := &recorder{}
	if err := Draw(r, newFrame(s)); err != nil {
		t.Fatal(err)
	}
	if r.ops[0] != "clear" {
		t.Errorf("first op: got %q, want clear", r.ops[0])
	}
	if r.ops[len(r.ops)-1] != "pop" {
		t.Errorf("last op: got %q, want pop", r.ops[len(r.ops)-1])
	}
	bg := r.index("color #ffffff")
	push := r.index("push")
	wire := r.index("line 1 2 3 4")
	if !(bg >= 0 && bg < push && push < wire) {
		t.Errorf("ops out of order: background %d, push %d, wire %d", bg, push, wire)
	}
	if !r.has("color " + GridColor) {
		t.Errorf("grid not painted")
	}
}

func TestPlainFrameUsesExportBackground(t *testing.T) {
	st := diagram.DefaultSettings()
	st.Background = "#202020"
	s := diagram.NewStore(diagram.WithSettings(st))

	r := &recorder{}
	Draw(r, newFrame(s))
	if r.index("color #202020") < 0 {
		t.Errorf("editor frame should paint the drawing background")
	}

	r = &recorder{}
	f := newFrame(s)
	f.Plain = true
	Draw(r, f)
	if r.index("color "+ExportColor) < 0 || r.has("color #202020") {
		t.Errorf("plain frame background: %v", r.ops)
	}
}

func TestDrawSkipsGridWhenHidden(t *testing.T) {
	st := diagram.DefaultSettings()
	st.ShowGrid = false
	s := diagram.NewStore(diagram.WithSettings(st))
	r := &recorder{}
	Draw(r, newFrame(s))
	if r.has("color " + GridColor) {
		t.Errorf("grid painted while hidden")
	}

	r = &recorder{}
	f := newFrame(diagram.NewStore())
	f.HideGrid = true
	Draw(r, f)
	if r.has("color " + GridColor) {
		t.Errorf("grid painted with HideGrid")
	}
}

func TestDrawLayers(t *testing.T) {
	st := diagram.DefaultSettings()
	st.ShowGrid = false
	s := diagram.NewStore(diagram.WithSettings(st))
	base := s.ActiveLayer()
	top := s.AddLayer("top", "#ff0000")
	hidden := s.AddLayer("hidden", "")

	s.SetActiveLayer(top.ID)
	s.AddWire(diagram.Pt(10, 10), diagram.Pt(20, 20))
	s.SetActiveLayer(base)
	s.AddWire(diagram.Pt(30, 30), diagram.Pt(40, 40))
	s.SetActiveLayer(hidden.ID)
	s.AddWire(diagram.Pt(50, 50), diagram.Pt(60, 60))
	s.SetLayerVisible(hidden.ID, false)

	r := &recorder{}
	Draw(r, newFrame(s))
	first := r.index("line 30 30 40 40")
	second := r.index("line 10 10 20 20")
	if first < 0 || second < 0 || first > second {
		t.Errorf("layers not painted in declaration order: %d, %d", first, second)
	}
	if r.index("line 50 50 60 60") >= 0 {
		t.Errorf("hidden layer painted")
	}
	if r.index("color #ff0000") < 0 {
		t.Errorf("layer colour not used")
	}
}

func TestDrawComponentGlyphs(t *testing.T) {
	st := diagram.DefaultSettings()
	st.ShowGrid = false
	s := diagram.NewStore(diagram.WithSettings(st))
	c, _ := s.AddComponent("resistor", diagram.Pt(100, 50), diagram.ComponentProps{Rotation: 90, Label: "R1", Value: "4k7"})
	s.AddComponent("flux-capacitor", diagram.Pt(300, 50), diagram.ComponentProps{})
	s.Select(c.ID)

	r := &recorder{}
	if err := Draw(r, newFrame(s)); err != nil {
		t.Fatal(err)
	}
	if r.index("translate 100 50") < 0 || r.index("rotate 1.5708") < 0 {
		t.Errorf("component not transformed: %v", r.ops)
	}
	if r.index("color "+SelectColor) < 0 {
		t.Errorf("selected component not highlighted")
	}
	if r.index("text R1 4k7") < 0 {
		t.Errorf("label missing")
	}
	// Unknown type: labelled box.
	if r.index("rect -20 -20 40 40") < 0 || r.index("text Component") < 0 {
		t.Errorf("fallback box missing")
	}
}

func TestGlyphTableCoversCatalogs(t *testing.T) {
	for _, name := range diagram.CatalogNames() {
		cat, _ := diagram.CatalogByName(name)
		for _, typ := range cat.Types() {
			if !HasGlyph(typ) {
				t.Errorf("%s catalog type %q has no glyph", name, typ)
			}
		}
	}
}

func TestGlyphsAreDeterministic(t *testing.T) {
	for typ, g := range glyphs {
		a, b := &recorder{}, &recorder{}
		g(&pen{s: a}, 60, 40)
		g(&pen{s: b}, 60, 40)
		if !slices.Equal(a.ops, b.ops) || len(a.ops) == 0 {
			t.Errorf("glyph %q is not a pure function of its inputs", typ)
		}
	}
}

func TestDrawOverlays(t *testing.T) {
	st := diagram.DefaultSettings()
	st.ShowGrid = false
	st.SnapToFeatures = false
	s := diagram.NewStore(diagram.WithSettings(st))
	s.AddComponent("resistor", diagram.Pt(0, 0), diagram.ComponentProps{})
	s.AddComponent("resistor", diagram.Pt(200, 0), diagram.ComponentProps{})
	ed := editor.New(s)

	ed.PointerDown(200, 0, editor.Modifiers{})
	ed.PointerMove(10, 0)

	r := &recorder{}
	Draw(r, FromEditor(ed))
	if r.index("color "+CollisionColor) < 0 {
		t.Errorf("collision highlight missing")
	}
	ed.PointerUp(10, 0)

	ed.SetTool(editor.ToolWire)
	ed.PointerDown(500, 500, editor.Modifiers{})
	ed.PointerMove(600, 500)
	r = &recorder{}
	Draw(r, FromEditor(ed))
	if r.index("line 500 500 600 500") < 0 {
		t.Errorf("draft preview missing")
	}
}

func TestDrawHintsSkipAttachedPoint(t *testing.T) {
	st := diagram.DefaultSettings()
	st.ShowGrid = false
	st.SnapToFeatures = false
	s := diagram.NewStore(diagram.WithSettings(st))
	s.AddComponent("resistor", diagram.Pt(300, 0), diagram.ComponentProps{})
	s.AddWire(diagram.Pt(300, 0), diagram.Pt(300, 200))
	ed := editor.New(s)

	ed.PointerDown(315, 0, editor.Modifiers{})
	ed.PointerMove(315, 0)
	r := &recorder{}
	Draw(r, FromEditor(ed))
	if r.index("color "+ConnectColor) >= 0 {
		t.Errorf("attached wire end drawn as a connect target")
	}
	if r.index("color "+HintColor) < 0 {
		t.Errorf("nearby point hint missing")
	}
	ed.PointerUp(315, 0)
}

func TestDrawReportsStrokeError(t *testing.T) {
	s := diagram.NewStore()
	s.AddWire(diagram.Pt(0, 0), diagram.Pt(10, 0))
	boom := errors.New("boom")
	r := &recorder{strokeErr: boom}
	if err := Draw(r, newFrame(s)); !errors.Is(err, boom) {
		t.Errorf("got %v, want stroke error", err)
	}
	if r.ops[len(r.ops)-1] != "pop" {
		t.Errorf("transform not restored after error")
	}
}

func TestNewRasterRejectsEmptySize(t *testing.T) {
	if _, err := NewRaster(0, 10); !errors.Is(err, ErrNoSurface) {
		t.Errorf("got %v, want ErrNoSurface", err)
	}
}
