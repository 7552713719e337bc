package editor

import (
	"errors"
	"testing"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// newPlainEditor returns an editor whose store does no snapping, so screen
// and world coordinates map one to one.
func newPlainEditor(t *testing.T) *Editor {
	t.Helper()
	st := diagram.DefaultSettings()
	st.ShowGrid = false
	st.SnapToFeatures = false
	return New(diagram.NewStore(diagram.WithSettings(st)))
}

func mustAdd(t *testing.T, s *diagram.Store, typ string, x, y float64) diagram.Element {
	t.Helper()
	e, err := s.AddComponent(typ, diagram.Pt(x, y), diagram.ComponentProps{})
	if err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	return e
}

func countKind(s *diagram.Store, k diagram.Kind) int {
	n := 0
	for _, e := range s.Elements() {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func TestDragCollisionReverts(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	mustAdd(t, s, "resistor", 0, 0)
	b := mustAdd(t, s, "resistor", 200, 0)
	depth := s.History().Len()

	if err := ed.PointerDown(200, 0, Modifiers{}); err != nil {
		t.Fatal(err)
	}
	if ed.State() != StateDragging {
		t.Fatalf("state: got %v, want dragging", ed.State())
	}
	ed.PointerMove(100, 0)
	ed.PointerMove(0, 0)

	d, ok := ed.Drag()
	if !ok || !d.Colliding {
		t.Fatalf("drag session should report a collision: %+v", d)
	}

	out, err := ed.PointerUp(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if out != DropRevert {
		t.Errorf("outcome: got %v, want revert", out)
	}
	got, _ := s.Element(b.ID)
	if got.Pos != diagram.Pt(200, 0) {
		t.Errorf("position after revert: got %v, want (200,0)", got.Pos)
	}
	if s.History().Len() != depth {
		t.Errorf("revert pushed history: %d -> %d", depth, s.History().Len())
	}
	if ed.State() != StateIdle {
		t.Errorf("state after drop: got %v", ed.State())
	}
}

func TestDragConnectCreatesOneWire(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	mustAdd(t, s, "resistor", 0, 0)
	free, _ := s.AddWire(diagram.Pt(150, 100), diagram.Pt(300, 100))
	b := mustAdd(t, s, "resistor", 200, 300)
	depth := s.History().Len()
	wires := countKind(s, diagram.KindWire)

	ed.PointerDown(200, 300, Modifiers{})
	ed.PointerMove(170, 200)
	ed.PointerMove(155, 100)
	out, err := ed.PointerUp(155, 100)
	if err != nil {
		t.Fatal(err)
	}
	if out != DropConnect {
		t.Fatalf("outcome: got %v, want connect", out)
	}
	if n := countKind(s, diagram.KindWire); n != wires+1 {
		t.Fatalf("wires: got %d, want %d", n, wires+1)
	}
	if s.History().Len() != depth+1 {
		t.Errorf("connect should push exactly once: %d -> %d", depth, s.History().Len())
	}

	got, _ := s.Element(b.ID)
	if got.Pos != diagram.Pt(155, 100) {
		t.Errorf("final position: got %v", got.Pos)
	}
	elems := s.Elements()
	w := elems[len(elems)-1]
	if !w.IsWire() || w.Start != got.Pos || w.End != free.Start {
		t.Errorf("new wire: got %v -> %v, want %v -> %v", w.Start, w.End, got.Pos, free.Start)
	}

	// One undo takes back both the move and the wire.
	s.Undo()
	got, _ = s.Element(b.ID)
	if got.Pos != diagram.Pt(200, 300) || countKind(s, diagram.KindWire) != wires {
		t.Errorf("undo after connect: pos %v, wires %d", got.Pos, countKind(s, diagram.KindWire))
	}
}

func TestClickConnectedComponentAddsNoWire(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	s.AddWire(diagram.Pt(150, 100), diagram.Pt(300, 100))
	b := mustAdd(t, s, "resistor", 200, 300)

	ed.PointerDown(200, 300, Modifiers{})
	ed.PointerMove(155, 100)
	if out, _ := ed.PointerUp(155, 100); out != DropConnect {
		t.Fatalf("first drop: got %v, want connect", out)
	}
	wires := countKind(s, diagram.KindWire)
	depth := s.History().Len()

	// The wire just made ends at the component centre.
	ed.PointerDown(180, 105, Modifiers{})
	out, err := ed.PointerUp(180, 105)
	if err != nil {
		t.Fatal(err)
	}
	if out != DropNone {
		t.Errorf("click on a wired component: got %v, want none", out)
	}
	if n := countKind(s, diagram.KindWire); n != wires {
		t.Errorf("wires: got %d, want %d", n, wires)
	}
	if s.History().Len() != depth {
		t.Errorf("history: got %d entries, want %d", s.History().Len(), depth)
	}
	if got, _ := s.Element(b.ID); got.Pos != diagram.Pt(155, 100) {
		t.Errorf("position: got %v", got.Pos)
	}
}

func TestDropOntoWireEndAddsNoWire(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	s.AddWire(diagram.Pt(400, 300), diagram.Pt(500, 300))
	c := mustAdd(t, s, "resistor", 200, 300)
	depth := s.History().Len()

	ed.PointerDown(200, 300, Modifiers{})
	ed.PointerMove(300, 300)
	out, err := ed.PointerUp(400, 300)
	if err != nil {
		t.Fatal(err)
	}
	if out != DropMove {
		t.Errorf("outcome: got %v, want move", out)
	}
	if n := countKind(s, diagram.KindWire); n != 1 {
		t.Errorf("wires: got %d, want 1", n)
	}
	for _, e := range s.Elements() {
		if e.IsWire() && e.Start == e.End {
			t.Errorf("zero-length wire %s at %v", e.ID, e.Start)
		}
	}
	if got, _ := s.Element(c.ID); got.Pos != diagram.Pt(400, 300) {
		t.Errorf("position: got %v", got.Pos)
	}
	if s.History().Len() != depth+1 {
		t.Errorf("history: got %d entries, want %d", s.History().Len(), depth+1)
	}
}

func TestDragMoveAndClick(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	a := mustAdd(t, s, "resistor", 0, 0)
	depth := s.History().Len()

	// Grabbing off-centre keeps the offset.
	ed.PointerDown(10, 5, Modifiers{})
	out, _ := ed.PointerUp(10, 5)
	if out != DropNone || s.History().Len() != depth {
		t.Errorf("click without move: outcome %v, history %d", out, s.History().Len())
	}
	if id, _ := s.Selection().Single(); id != a.ID {
		t.Errorf("click should select the component")
	}

	ed.PointerDown(10, 5, Modifiers{})
	for i := 1; i <= 20; i++ {
		ed.PointerMove(10+float64(i*20), 5)
	}
	out, _ = ed.PointerUp(410, 305)
	if out != DropMove {
		t.Errorf("outcome: got %v, want move", out)
	}
	got, _ := s.Element(a.ID)
	if got.Pos != diagram.Pt(400, 300) {
		t.Errorf("position: got %v, want (400,300)", got.Pos)
	}
	if s.History().Len() != depth+1 {
		t.Errorf("a drag of many moves should push once: got %d entries, want %d", s.History().Len(), depth+1)
	}
}

func TestWireDraft(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	ed.SetTool(ToolWire)
	depth := s.History().Len()

	ed.PointerDown(0, 0, Modifiers{})
	if ed.State() != StateWireDrafting {
		t.Fatalf("state: got %v", ed.State())
	}
	ed.PointerMove(50, 0)
	if d, _ := ed.Draft(); d.Current != diagram.Pt(50, 0) {
		t.Errorf("draft current: got %v", d.Current)
	}
	ed.PointerDown(100, 0, Modifiers{})

	if ed.State() != StateIdle {
		t.Errorf("state after commit: got %v", ed.State())
	}
	if s.Len() != 1 || s.History().Len() != depth+1 {
		t.Fatalf("commit: %d elements, %d history entries", s.Len(), s.History().Len())
	}
	w := s.Elements()[0]
	if w.Start != diagram.Pt(0, 0) || w.End != diagram.Pt(100, 0) {
		t.Errorf("wire: got %v -> %v", w.Start, w.End)
	}
}

func TestZeroLengthWireDiscarded(t *testing.T) {
	ed := New(nil)
	s := ed.Store()
	ed.SetTool(ToolWire)
	depth := s.History().Len()

	ed.PointerDown(10, 10, Modifiers{})
	ed.PointerDown(10, 10, Modifiers{})

	if s.Len() != 0 {
		t.Errorf("zero-length wire created")
	}
	if s.History().Len() != depth {
		t.Errorf("discarded draft pushed history")
	}
	if ed.State() != StateIdle {
		t.Errorf("state: got %v, want idle", ed.State())
	}
}

func TestEscapeCancelsDraft(t *testing.T) {
	ed := newPlainEditor(t)
	ed.SetTool(ToolWire)
	ed.PointerDown(0, 0, Modifiers{})
	ed.KeyDown(KeyEscape)
	if _, ok := ed.Draft(); ok || ed.State() != StateIdle {
		t.Errorf("escape should cancel the draft")
	}
	ed.PointerDown(100, 100, Modifiers{})
	if ed.State() != StateWireDrafting || ed.Store().Len() != 0 {
		t.Errorf("next press should start a new draft")
	}
}

func TestPlacementTools(t *testing.T) {
	ed := New(nil)
	s := ed.Store()

	if err := ed.SetComponentTool("lamp"); err != nil {
		t.Fatal(err)
	}
	if err := ed.PointerDown(33, 47, Modifiers{}); err != nil {
		t.Fatal(err)
	}
	c := s.Elements()[0]
	if c.Type != "lamp" || c.Pos != diagram.Pt(40, 40) {
		t.Errorf("placed component: %+v", c)
	}
	if id, _ := s.Selection().Single(); id != c.ID {
		t.Errorf("placed component should be selected")
	}
	if ed.State() != StateIdle {
		t.Errorf("placement must not leave idle")
	}

	ed.SetTool(ToolText)
	ed.SetTextValue("VCC")
	ed.PointerDown(200, 200, Modifiers{})
	if txt := s.Elements()[1]; txt.Text != "VCC" || !txt.IsText() {
		t.Errorf("placed text: %+v", txt)
	}

	ed.SetTool(ToolErase)
	ed.PointerDown(40, 40, Modifiers{})
	if _, ok := s.Element(c.ID); ok {
		t.Errorf("erase tool did not delete")
	}
	ed.PointerDown(900, 900, Modifiers{})
	if s.Len() != 1 {
		t.Errorf("erase on empty space removed something")
	}
}

func TestPlacementOnLockedLayer(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	s.SetLayerLocked(s.ActiveLayer(), true)
	ed.SetComponentTool("resistor")
	if err := ed.PointerDown(0, 0, Modifiers{}); !errors.Is(err, diagram.ErrLayerLocked) {
		t.Errorf("got %v, want ErrLayerLocked", err)
	}
}

func TestSelectSkipsLockedLayers(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	mustAdd(t, s, "resistor", 0, 0)
	s.SetLayerLocked(s.ActiveLayer(), true)

	ed.PointerDown(0, 0, Modifiers{})
	if !s.Selection().Empty() || ed.State() != StateIdle {
		t.Errorf("locked element was grabbed")
	}
}

func TestShiftClickMultiSelect(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	a := mustAdd(t, s, "resistor", 0, 0)
	b := mustAdd(t, s, "resistor", 200, 0)

	ed.PointerDown(0, 0, Modifiers{})
	ed.PointerUp(0, 0)
	ed.PointerDown(200, 0, Modifiers{Shift: true})
	if ed.State() != StateIdle {
		t.Errorf("shift-click must not start a drag")
	}
	sel := s.Selection()
	if !sel.IsMulti() || !sel.Contains(a.ID) || !sel.Contains(b.ID) {
		t.Errorf("multi-selection: got %v", sel.IDs())
	}

	if err := ed.KeyDown(KeyDelete); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Errorf("delete key left %d elements", s.Len())
	}

	ed.PointerDown(500, 500, Modifiers{})
	if !s.Selection().Empty() {
		t.Errorf("click on empty space should clear the selection")
	}
}

func TestPressDuringDragIgnored(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	a := mustAdd(t, s, "resistor", 0, 0)

	ed.PointerDown(0, 0, Modifiers{})
	ed.PointerMove(100, 100)
	if err := ed.PointerDown(300, 300, Modifiers{}); err != nil {
		t.Fatal(err)
	}
	if ed.State() != StateDragging {
		t.Errorf("second press interrupted the drag")
	}
	if err := ed.SetTool(ToolWire); !errors.Is(err, ErrBusy) {
		t.Errorf("SetTool during drag: got %v", err)
	}
	if err := ed.KeyDown(KeyUndo); !errors.Is(err, ErrBusy) {
		t.Errorf("undo during drag: got %v", err)
	}
	ed.PointerUp(100, 100)
	if got, _ := s.Element(a.ID); got.Pos != diagram.Pt(100, 100) {
		t.Errorf("position: got %v", got.Pos)
	}
}

func TestPanTool(t *testing.T) {
	ed := newPlainEditor(t)
	depth := ed.Store().History().Len()
	ed.SetTool(ToolPan)

	ed.PointerDown(0, 0, Modifiers{})
	if ed.State() != StatePanning {
		t.Fatalf("state: got %v", ed.State())
	}
	ed.PointerMove(10, 5)
	ed.PointerUp(20, 10)

	v := ed.Viewport()
	if v.PanX != 20 || v.PanY != 10 {
		t.Errorf("pan: got (%v,%v), want (20,10)", v.PanX, v.PanY)
	}
	if ed.Store().History().Len() != depth {
		t.Errorf("panning pushed history")
	}

	// Picking now goes through the panned view.
	ed.SetTool(ToolComponent)
	ed.PointerDown(20, 10, Modifiers{})
	if c := ed.Store().Elements()[0]; c.Pos != diagram.Pt(0, 0) {
		t.Errorf("placement under panned view: got %v", c.Pos)
	}
}

func TestRotateKey(t *testing.T) {
	ed := newPlainEditor(t)
	s := ed.Store()
	a := mustAdd(t, s, "resistor", 0, 0)
	s.Select(a.ID)
	depth := s.History().Len()

	for i := 0; i < 5; i++ {
		if err := ed.KeyDown(KeyRotate); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := s.Element(a.ID)
	if got.Rotation != 90 {
		t.Errorf("rotation after five turns: got %v, want 90", got.Rotation)
	}
	if s.History().Len() != depth+5 {
		t.Errorf("history: got %d, want %d", s.History().Len(), depth+5)
	}

	if err := ed.KeyDown(KeyUndo); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Element(a.ID); got.Rotation != 0 {
		t.Errorf("rotation after undo: got %v, want 0", got.Rotation)
	}
}

func TestToggleKeys(t *testing.T) {
	ed := New(nil)
	st := ed.Store().Settings()
	ed.KeyDown(KeyToggleGrid)
	ed.KeyDown(KeyToggleSnap)
	got := ed.Store().Settings()
	if got.ShowGrid == st.ShowGrid || got.SnapToFeatures == st.SnapToFeatures {
		t.Errorf("toggles had no effect: %+v", got)
	}
	if err := ed.KeyDown(KeyUndo); !errors.Is(err, diagram.ErrNothingToUndo) {
		t.Errorf("settings changes must not enter history: got %v", err)
	}
}

func TestParseTool(t *testing.T) {
	for tool := ToolSelect; tool <= ToolErase; tool++ {
		got, ok := ParseTool(tool.String())
		if !ok || got != tool {
			t.Errorf("ParseTool(%q) = %v, %v", tool.String(), got, ok)
		}
	}
	if _, ok := ParseTool("lasso"); ok {
		t.Errorf("unknown tool parsed")
	}
}
