// Package editor turns pointer and keyboard events into diagram store
// mutations. It owns the tool selection, the interaction state machine and
// the viewport; the host forwards events in screen coordinates and reads
// state back for painting.
package editor

import (
	"errors"
	"fmt"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// State is the interaction state. Exactly one is active at a time.
type State int

const (
	StateIdle State = iota
	StatePanning
	StateDragging
	StateWireDrafting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePanning:
		return "panning"
	case StateDragging:
		return "dragging"
	case StateWireDrafting:
		return "wire-drafting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Tool selects what a primary pointer-down does.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPan
	ToolWire
	ToolComponent
	ToolText
	ToolErase
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPan:
		return "pan"
	case ToolWire:
		return "wire"
	case ToolComponent:
		return "component"
	case ToolText:
		return "text"
	case ToolErase:
		return "erase"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool returns the tool with the given name.
func ParseTool(name string) (Tool, bool) {
	for t := ToolSelect; t <= ToolErase; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return ToolSelect, false
}

// ErrBusy is returned when an action is refused because a drag, pan or wire
// draft is in progress.
var ErrBusy = errors.New("editor: interaction in progress")

// DefaultText is the content of newly placed text annotations.
const DefaultText = "Text"

// ZoomStep is the factor applied by one zoom key press or wheel notch.
const ZoomStep = 1.1

// Editor is the interaction state machine for one drawing.
type Editor struct {
	store *diagram.Store
	view  Viewport

	width, height float64 // viewport size in screen units

	tool      Tool
	compType  string
	textValue string

	state State
	drag  *DragSession
	draft *WireDraft

	panX, panY float64 // last pointer position while panning
}

// New creates an editor over store. A nil store gets a fresh one.
func New(store *diagram.Store) *Editor {
	if store == nil {
		store = diagram.NewStore()
	}
	ed := &Editor{
		store:     store,
		view:      NewViewport(),
		tool:      ToolSelect,
		textValue: DefaultText,
	}
	if types := store.Catalog().Types(); len(types) > 0 {
		ed.compType = types[0]
	}
	return ed
}

// Store returns the underlying store.
func (ed *Editor) Store() *diagram.Store { return ed.store }

// State returns the current interaction state.
func (ed *Editor) State() State { return ed.state }

// Tool returns the current tool.
func (ed *Editor) Tool() Tool { return ed.tool }

// ComponentType returns the type placed by ToolComponent.
func (ed *Editor) ComponentType() string { return ed.compType }

// Viewport returns the current view.
func (ed *Editor) Viewport() Viewport { return ed.view }

// SetViewport replaces the view.
func (ed *Editor) SetViewport(v Viewport) {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	ed.view = v
}

// SetSize records the screen size of the viewport, used as the pivot for
// keyboard zoom.
func (ed *Editor) SetSize(w, h float64) {
	ed.width, ed.height = w, h
}

// SetTool switches tools. An open wire draft is cancelled; switching during
// a drag or pan is refused.
func (ed *Editor) SetTool(t Tool) error {
	if ed.state == StateDragging || ed.state == StatePanning {
		return ErrBusy
	}
	ed.CancelDraft()
	ed.tool = t
	return nil
}

// SetComponentTool switches to ToolComponent placing components of type typ.
func (ed *Editor) SetComponentTool(typ string) error {
	if err := ed.SetTool(ToolComponent); err != nil {
		return err
	}
	ed.compType = typ
	return nil
}

// SetTextValue sets the content of text placed by ToolText.
func (ed *Editor) SetTextValue(s string) {
	ed.textValue = s
}

// Drag returns the live drag session, if any.
func (ed *Editor) Drag() (DragSession, bool) {
	if ed.drag == nil {
		return DragSession{}, false
	}
	return ed.drag.clone(), true
}

// Draft returns the open wire draft, if any.
func (ed *Editor) Draft() (WireDraft, bool) {
	if ed.draft == nil {
		return WireDraft{}, false
	}
	return *ed.draft, true
}

// CancelDraft discards an open wire draft. It reports whether there was one.
func (ed *Editor) CancelDraft() bool {
	if ed.draft == nil {
		return false
	}
	ed.draft = nil
	ed.state = StateIdle
	return true
}

// KeyDown runs the command bound to k. Commands other than Escape are
// ignored while a drag or pan is in progress.
func (ed *Editor) KeyDown(k Key) error {
	if k == KeyEscape {
		if !ed.CancelDraft() && ed.state == StateIdle {
			ed.store.ClearSelection()
		}
		return nil
	}
	if ed.state == StateDragging || ed.state == StatePanning {
		return ErrBusy
	}

	switch k {
	case KeyDelete:
		ed.store.DeleteSelection()
	case KeyRotate:
		return ed.rotateSelection()
	case KeyUndo:
		ed.CancelDraft()
		return ed.store.Undo()
	case KeyRedo:
		ed.CancelDraft()
		return ed.store.Redo()
	case KeyZoomIn:
		ed.view.ZoomAt(ed.width/2, ed.height/2, ZoomStep)
	case KeyZoomOut:
		ed.view.ZoomAt(ed.width/2, ed.height/2, 1/ZoomStep)
	case KeyResetView:
		ed.view.Reset()
	case KeyToggleGrid:
		st := ed.store.Settings()
		st.ShowGrid = !st.ShowGrid
		ed.store.SetSettings(st)
	case KeyToggleSnap:
		st := ed.store.Settings()
		st.SnapToFeatures = !st.SnapToFeatures
		ed.store.SetSettings(st)
	case KeySelectAll:
		ed.store.SelectAll()
	}
	return nil
}

// rotateSelection turns every selected component a quarter turn clockwise as
// one undo step.
func (ed *Editor) rotateSelection() error {
	var ids []string
	for _, id := range ed.store.Selection().IDs() {
		if e, ok := ed.store.Element(id); ok && e.IsComponent() && !ed.store.LayerLocked(e.Layer) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := ed.store.Begin()
	if err != nil {
		return err
	}
	for _, id := range ids {
		e, _ := ed.store.Element(id)
		if err := ed.store.UpdateElement(id, diagram.RotateTo(e.Rotation+90)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
