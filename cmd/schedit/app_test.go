package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/schematic-toolkit/internal/config"
	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/editor"
)

func newTestApp(t *testing.T) (*App, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(100, 30)

	cfg := config.Default()
	cfg.LastDir = t.TempDir()
	cfg.LibraryPath = filepath.Join(t.TempDir(), "lib.db")
	a := newApp(screen, cfg)
	a.mode = ModeCanvas
	return a, screen
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

// click presses and releases the primary button on a cell.
func click(a *App, x, y int) {
	a.handleMouse(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	a.handleMouse(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want editor.Key
	}{
		{key(tcell.KeyEscape), editor.KeyEscape},
		{key(tcell.KeyDelete), editor.KeyDelete},
		{key(tcell.KeyBackspace2), editor.KeyDelete},
		{tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl), editor.KeyUndo},
		{tcell.NewEventKey(tcell.KeyCtrlY, 0, tcell.ModCtrl), editor.KeyRedo},
		{tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModCtrl), editor.KeySelectAll},
		{runeKey('r'), editor.KeyRotate},
		{runeKey('+'), editor.KeyZoomIn},
		{runeKey('g'), editor.KeyToggleGrid},
		{runeKey('q'), editor.KeyNone},
		{key(tcell.KeyF5), editor.KeyNone},
	}
	for _, tt := range tests {
		if got := keyFor(tt.ev); got != tt.want {
			t.Errorf("keyFor(%v) = %v, want %v", tt.ev.Name(), got, tt.want)
		}
	}
}

func TestPlaceComponentFromPalette(t *testing.T) {
	a, screen := newTestApp(t)

	a.handleKey(runeKey('c'))
	if a.mode != ModePalette {
		t.Fatalf("mode = %v, want palette", a.mode)
	}
	a.handleKey(key(tcell.KeyDown))
	a.handleKey(key(tcell.KeyEnter))
	types := a.ed.Store().Catalog().Types()
	if a.ed.Tool() != editor.ToolComponent || a.ed.ComponentType() != types[1] {
		t.Fatalf("tool = %v %q, want component %q", a.ed.Tool(), a.ed.ComponentType(), types[1])
	}

	click(a, 20, 10)
	s := a.ed.Store()
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if !a.modified {
		t.Error("drawing not marked modified")
	}

	a.draw()
	drawn := false
	for y := 0; y < a.canvasHeight && !drawn; y++ {
		for x := 0; x < a.canvasWidth; x++ {
			if r := cell(screen, x, y); r != ' ' && r != '·' {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Error("component not drawn on the canvas")
	}

	a.handleKey(tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl))
	if s.Len() != 0 {
		t.Errorf("after undo Len = %d, want 0", s.Len())
	}
}

func TestDrawWire(t *testing.T) {
	a, _ := newTestApp(t)
	a.handleKey(runeKey('w'))
	click(a, 10, 5)
	if _, ok := a.ed.Draft(); !ok {
		t.Fatal("no wire draft after first click")
	}
	click(a, 30, 5)
	s := a.ed.Store()
	if s.Len() != 1 || !s.Elements()[0].IsWire() {
		t.Fatalf("elements = %+v, want one wire", s.Elements())
	}
}

func TestEscapeOpensMenu(t *testing.T) {
	a, _ := newTestApp(t)
	a.ed.Store().AddText(diagram.Pt(0, 0), "x")
	a.ed.Store().SelectAll()

	a.handleKey(key(tcell.KeyEscape))
	if a.mode != ModeCanvas || !a.ed.Store().Selection().Empty() {
		t.Fatalf("first Escape should clear selection, mode = %v", a.mode)
	}
	a.handleKey(key(tcell.KeyEscape))
	if a.mode != ModeMenu {
		t.Fatalf("second Escape: mode = %v, want menu", a.mode)
	}
	a.handleKey(key(tcell.KeyEscape))
	if a.mode != ModeCanvas {
		t.Errorf("Escape in menu: mode = %v, want canvas", a.mode)
	}
}

func TestMenuQuit(t *testing.T) {
	a, _ := newTestApp(t)
	a.mode = ModeMenu
	for i := 0; i < len(a.menuItems); i++ {
		a.handleKey(key(tcell.KeyDown))
	}
	if a.menuItems[a.menuSelected] != "Quit" {
		t.Fatalf("last item = %q", a.menuItems[a.menuSelected])
	}
	if !a.handleKey(key(tcell.KeyEnter)) {
		t.Error("Quit did not end the loop")
	}
	if !a.handleKey(tcell.NewEventKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)) {
		t.Error("Ctrl+Q did not end the loop")
	}
}

func TestSaveAndExport(t *testing.T) {
	a, _ := newTestApp(t)
	a.ed.Store().AddComponent("resistor", diagram.Pt(0, 0), diagram.ComponentProps{Label: "R1"})
	a.modified = true
	dir := t.TempDir()

	a.handleKey(tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl))
	if a.mode != ModeInput {
		t.Fatalf("Ctrl+S on a new drawing: mode = %v, want input", a.mode)
	}
	path := filepath.Join(dir, "amp.json")
	a.inputBuffer = path
	a.handleKey(key(tcell.KeyEnter))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("not saved: %v", err)
	}
	if a.modified || a.filename != path {
		t.Errorf("after save: modified=%v filename=%q", a.modified, a.filename)
	}

	a.handleKey(tcell.NewEventKey(tcell.KeyCtrlE, 0, tcell.ModCtrl))
	if !strings.HasSuffix(a.inputBuffer, "amp.svg") {
		t.Errorf("export suggestion = %q", a.inputBuffer)
	}
	a.handleKey(key(tcell.KeyEnter))
	data, err := os.ReadFile(filepath.Join(dir, "amp.svg"))
	if err != nil || !strings.HasPrefix(string(data), "<?xml") {
		t.Fatalf("export: %v %q", err, data[:min(len(data), 10)])
	}

	b, _ := newTestApp(t)
	if err := b.loadFile(path); err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if b.ed.Store().Len() != 1 || b.modified {
		t.Errorf("loaded Len=%d modified=%v", b.ed.Store().Len(), b.modified)
	}
}

func TestSaveAsRejectsImageFormats(t *testing.T) {
	a, _ := newTestApp(t)
	a.promptSaveAs()
	a.inputBuffer = filepath.Join(t.TempDir(), "amp.png")
	a.handleKey(key(tcell.KeyEnter))
	if a.filename != "" || a.messageType != MsgWarning {
		t.Errorf("filename=%q messageType=%v", a.filename, a.messageType)
	}
}

func TestLayersFromKeyboardAndSidebar(t *testing.T) {
	a, _ := newTestApp(t)
	s := a.ed.Store()
	first := s.ActiveLayer()

	a.handleKey(runeKey('n'))
	a.inputBuffer = "Notes"
	a.handleKey(key(tcell.KeyEnter))
	if l, _ := s.Layer(s.ActiveLayer()); l.Name != "Notes" {
		t.Fatalf("active layer = %q, want Notes", l.Name)
	}

	a.handleKey(runeKey('l'))
	if !s.LayerLocked(s.ActiveLayer()) {
		t.Fatal("layer not locked")
	}
	a.handleKey(runeKey('t'))
	a.inputBuffer = "hello"
	a.handleKey(key(tcell.KeyEnter))
	click(a, 20, 10)
	if s.Len() != 0 || a.messageType != MsgWarning {
		t.Errorf("placed on locked layer: Len=%d message=%q", s.Len(), a.message)
	}

	click(a, a.canvasWidth+3, sidebarLayerRow)
	if s.ActiveLayer() != first {
		t.Errorf("sidebar click: active = %q, want %q", s.ActiveLayer(), first)
	}
	click(a, 20, 10)
	if s.Len() != 1 || s.Elements()[0].Text != "hello" {
		t.Errorf("text not placed: %+v", s.Elements())
	}
}

func TestEditLabel(t *testing.T) {
	a, _ := newTestApp(t)
	s := a.ed.Store()
	e, _ := s.AddComponent("resistor", diagram.Pt(0, 0), diagram.ComponentProps{})
	s.Select(e.ID)

	a.handleKey(runeKey('e'))
	a.inputBuffer = "R7"
	a.handleKey(key(tcell.KeyEnter))
	if got, _ := s.Element(e.ID); got.Label != "R7" {
		t.Errorf("label = %q, want R7", got.Label)
	}
}
