package main

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/editor"
)

// keyFor maps a tcell key event to an editor shortcut.
func keyFor(ev *tcell.EventKey) editor.Key {
	switch ev.Key() {
	case tcell.KeyEscape:
		return editor.KeyEscape
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		return editor.KeyDelete
	case tcell.KeyCtrlZ:
		return editor.KeyUndo
	case tcell.KeyCtrlY:
		return editor.KeyRedo
	case tcell.KeyCtrlA:
		return editor.KeySelectAll
	case tcell.KeyRune:
		return editor.KeyForRune(ev.Rune(), ev.Modifiers()&(tcell.ModCtrl|tcell.ModMeta) != 0)
	}
	return editor.KeyNone
}

// track runs an edit and marks the drawing modified if it reached the history.
func (a *App) track(fn func() error) error {
	h := a.ed.Store().History()
	n, cur := h.Len(), h.Cursor()
	err := fn()
	if h.Len() != n || h.Cursor() != cur {
		a.modified = true
	}
	return err
}

// report shows an edit error in the status bar.
func (a *App) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, diagram.ErrNothingToUndo), errors.Is(err, diagram.ErrNothingToRedo):
		a.showMessage(err.Error(), MsgInfo)
	case errors.Is(err, diagram.ErrLayerLocked):
		a.showMessage("Layer is locked", MsgWarning)
	case errors.Is(err, editor.ErrBusy):
	default:
		a.showMessage(err.Error(), MsgError)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlS:
		a.save()
		return false
	case tcell.KeyCtrlO:
		a.promptOpen()
		return false
	case tcell.KeyCtrlE:
		a.promptExport()
		return false
	case tcell.KeyF1:
		a.mode = ModeHelp
		a.helpScrollOffset = 0
		return false
	}

	switch a.mode {
	case ModeMenu:
		return a.handleMenuKey(ev)
	case ModeInput:
		a.handleInputKey(ev)
	case ModePalette:
		a.handlePaletteKey(ev)
	case ModeHelp:
		a.handleHelpKey(ev)
	default:
		a.handleCanvasKey(ev)
	}
	return false
}

func (a *App) handleMenuKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		if a.menuSelected > 0 {
			a.menuSelected--
		}
	case tcell.KeyDown:
		if a.menuSelected < len(a.menuItems)-1 {
			a.menuSelected++
		}
	case tcell.KeyEnter:
		return a.executeMenuItem()
	case tcell.KeyEscape:
		a.mode = ModeCanvas
	}
	return false
}

func (a *App) executeMenuItem() bool {
	switch a.menuSelected {
	case 0: // New
		a.setStore(a.newStore())
		a.filename = ""
		a.mode = ModeCanvas
		a.showMessage("New drawing", MsgInfo)
	case 1: // Open
		a.promptOpen()
	case 2: // Save
		a.save()
	case 3: // Save As
		a.promptSaveAs()
	case 4: // Export
		a.promptExport()
	case 5: // Save to Library
		a.promptLibrary()
	case 6: // Edit Canvas
		a.mode = ModeCanvas
	case 7: // Catalog
		a.toggleCatalog()
	case 8: // Export format
		a.cycleExportFormat()
	case 9: // Quit
		return true
	}
	return false
}

func (a *App) toggleCatalog() {
	if a.config.Catalog == "logic" {
		a.config.Catalog = "circuit"
	} else {
		a.config.Catalog = "logic"
	}
	a.updateMenuItems()
	if a.ed.Store().Len() == 0 {
		a.setStore(a.newStore())
	}
	a.showMessage("Catalog: "+a.config.Catalog, MsgSuccess)
}

var exportFormats = []string{"svg", "png", "dxf", "json", "schz"}

func (a *App) cycleExportFormat() {
	next := exportFormats[0]
	for i, f := range exportFormats {
		if f == a.config.ExportFormat {
			next = exportFormats[(i+1)%len(exportFormats)]
		}
	}
	a.config.ExportFormat = next
	a.updateMenuItems()
}

// prompt switches to input mode; action runs on Enter.
func (a *App) prompt(label, initial string, action func(string)) {
	a.inputPrompt = label
	a.inputBuffer = initial
	a.inputAction = action
	a.mode = ModeInput
}

func (a *App) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		a.mode = ModeCanvas
		if a.inputAction != nil {
			action := a.inputAction
			a.inputAction = nil
			action(a.inputBuffer)
		}
	case tcell.KeyEscape:
		a.mode = ModeCanvas
		a.inputAction = nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(a.inputBuffer); len(r) > 0 {
			a.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		a.inputBuffer += string(ev.Rune())
	}
}

func (a *App) handlePaletteKey(ev *tcell.EventKey) {
	types := a.ed.Store().Catalog().Types()
	switch ev.Key() {
	case tcell.KeyUp:
		if a.paletteSelected > 0 {
			a.paletteSelected--
		}
	case tcell.KeyDown:
		if a.paletteSelected < len(types)-1 {
			a.paletteSelected++
		}
	case tcell.KeyEnter:
		if a.paletteSelected < len(types) {
			a.report(a.ed.SetComponentTool(types[a.paletteSelected]))
		}
		a.mode = ModeCanvas
	case tcell.KeyEscape:
		a.mode = ModeCanvas
	}
}

func (a *App) handleHelpKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		if a.helpScrollOffset > 0 {
			a.helpScrollOffset--
		}
	case tcell.KeyDown:
		if a.helpScrollOffset < len(helpLines)-1 {
			a.helpScrollOffset++
		}
	default:
		a.mode = ModeCanvas
	}
}

// toolKeys select tools from the canvas.
var toolKeys = map[rune]editor.Tool{
	's': editor.ToolSelect,
	'p': editor.ToolPan,
	'w': editor.ToolWire,
	'x': editor.ToolErase,
}

func (a *App) handleCanvasKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		if _, drafting := a.ed.Draft(); !drafting && a.ed.Store().Selection().Empty() {
			a.mode = ModeMenu
			return
		}
	case tcell.KeyLeft:
		a.panBy(4, 0)
		return
	case tcell.KeyRight:
		a.panBy(-4, 0)
		return
	case tcell.KeyUp:
		a.panBy(0, 2)
		return
	case tcell.KeyDown:
		a.panBy(0, -2)
		return
	case tcell.KeyTab:
		a.cycleLayer()
		return
	case tcell.KeyRune:
		if a.handleCanvasRune(ev.Rune()) {
			return
		}
	}

	k := keyFor(ev)
	if k == editor.KeyNone {
		return
	}
	a.report(a.track(func() error { return a.ed.KeyDown(k) }))
}

// handleCanvasRune runs the shell's own letter commands.
func (a *App) handleCanvasRune(r rune) bool {
	if t, ok := toolKeys[r]; ok {
		a.report(a.ed.SetTool(t))
		a.showMessage("Tool: "+a.ed.Tool().String(), MsgInfo)
		return true
	}
	switch r {
	case 'c':
		a.paletteSelected = 0
		for i, t := range a.ed.Store().Catalog().Types() {
			if t == a.ed.ComponentType() {
				a.paletteSelected = i
			}
		}
		a.mode = ModePalette
	case 't':
		a.prompt("Text: ", editor.DefaultText, func(s string) {
			if s == "" {
				return
			}
			a.ed.SetTextValue(s)
			a.report(a.ed.SetTool(editor.ToolText))
		})
	case 'e':
		a.editSelected()
	case 'n':
		a.prompt("Layer name: ", "", func(s string) {
			if s == "" {
				return
			}
			a.track(func() error {
				l := a.ed.Store().AddLayer(s, "")
				return a.ed.Store().SetActiveLayer(l.ID)
			})
			a.showMessage("Added layer "+s, MsgSuccess)
		})
	case 'v':
		a.toggleActiveLayer(false)
	case 'l':
		a.toggleActiveLayer(true)
	case '?':
		a.mode = ModeHelp
		a.helpScrollOffset = 0
	default:
		return false
	}
	return true
}

// editSelected relabels the selected component or rewrites the selected text.
func (a *App) editSelected() {
	s := a.ed.Store()
	id, ok := s.Selection().Single()
	if !ok {
		a.showMessage("Select one element to edit", MsgWarning)
		return
	}
	e, _ := s.Element(id)
	switch {
	case e.IsComponent():
		a.prompt("Label: ", e.Label, func(v string) {
			a.report(a.track(func() error { return s.UpdateElementStrict(id, diagram.Relabel(v)) }))
		})
	case e.IsText():
		a.prompt("Text: ", e.Text, func(v string) {
			a.report(a.track(func() error { return s.UpdateElementStrict(id, diagram.Patch{Text: &v}) }))
		})
	default:
		a.showMessage("Wires have no label", MsgInfo)
	}
}

func (a *App) cycleLayer() {
	s := a.ed.Store()
	layers := s.Layers()
	for i, l := range layers {
		if l.ID == s.ActiveLayer() {
			next := layers[(i+1)%len(layers)]
			s.SetActiveLayer(next.ID)
			a.showMessage("Active layer: "+next.Name, MsgInfo)
			return
		}
	}
}

func (a *App) toggleActiveLayer(lock bool) {
	s := a.ed.Store()
	l, ok := s.Layer(s.ActiveLayer())
	if !ok {
		return
	}
	a.report(a.track(func() error {
		if lock {
			return s.SetLayerLocked(l.ID, !l.Locked)
		}
		return s.SetLayerVisible(l.ID, !l.Visible)
	}))
	l, _ = s.Layer(l.ID)
	a.showMessage(fmt.Sprintf("%s: visible %t, locked %t", l.Name, l.Visible, l.Locked), MsgInfo)
}

// panBy scrolls the view by whole cells.
func (a *App) panBy(cols, rows int) {
	v := a.ed.Viewport()
	v.PanBy(float64(cols*dotsX), float64(rows*dotsY))
	a.ed.SetViewport(v)
}

// canvasPoint converts a cell to the editor's screen coordinates, at the
// cell centre.
func canvasPoint(x, y int) (float64, float64) {
	return float64(x*dotsX + dotsX/2), float64(y*dotsY + dotsY/2)
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()

	// Only the canvas takes pointer input; the sidebar picks layers.
	if a.mode != ModeCanvas {
		return
	}
	if x >= a.canvasWidth || y >= a.canvasHeight {
		if buttons&tcell.Button1 != 0 && !a.leftMouseDown {
			a.clickSidebar(y)
		}
		a.leftMouseDown = buttons&tcell.Button1 != 0
		return
	}
	px, py := canvasPoint(x, y)

	switch {
	case buttons&tcell.WheelUp != 0:
		a.ed.Wheel(px, py, 1)
		return
	case buttons&tcell.WheelDown != 0:
		a.ed.Wheel(px, py, -1)
		return
	}

	// Middle drag pans regardless of tool
	if buttons&tcell.Button3 != 0 {
		if a.middleMouseDown {
			a.panBy(x-a.middleX, y-a.middleY)
		}
		a.middleMouseDown = true
		a.middleX, a.middleY = x, y
		return
	}
	a.middleMouseDown = false

	left := buttons&tcell.Button1 != 0
	switch {
	case left && !a.leftMouseDown:
		a.leftMouseDown = true
		mods := editor.Modifiers{
			Shift: ev.Modifiers()&tcell.ModShift != 0,
			Ctrl:  ev.Modifiers()&tcell.ModCtrl != 0,
		}
		a.report(a.track(func() error { return a.ed.PointerDown(px, py, mods) }))
	case left:
		a.ed.PointerMove(px, py)
	case a.leftMouseDown:
		a.leftMouseDown = false
		var outcome editor.DropOutcome
		err := a.track(func() error {
			var err error
			outcome, err = a.ed.PointerUp(px, py)
			return err
		})
		a.report(err)
		switch outcome {
		case editor.DropConnect:
			a.showMessage("Connected", MsgSuccess)
		case editor.DropRevert:
			a.showMessage("Overlaps another component", MsgWarning)
		}
	default:
		a.ed.PointerMove(px, py)
	}
}

// clickSidebar activates the layer listed on row y.
func (a *App) clickSidebar(y int) {
	i := y - sidebarLayerRow
	layers := a.ed.Store().Layers()
	if i < 0 || i >= len(layers) {
		return
	}
	a.ed.Store().SetActiveLayer(layers[i].ID)
	a.showMessage("Active layer: "+layers[i].Name, MsgInfo)
}
