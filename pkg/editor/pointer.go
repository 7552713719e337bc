package editor

import (
	"math"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// Modifiers describes keyboard modifiers held during a pointer event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
}

// PointerDown handles a primary-button press at screen point (x, y). A press
// while a drag or pan is in progress is ignored.
func (ed *Editor) PointerDown(x, y float64, mods Modifiers) error {
	if ed.state == StateDragging || ed.state == StatePanning {
		return nil
	}
	w := ed.view.ToWorld(x, y)

	if ed.state == StateWireDrafting {
		return ed.finishWire(w)
	}

	switch ed.tool {
	case ToolPan:
		ed.state = StatePanning
		ed.panX, ed.panY = x, y
	case ToolSelect:
		return ed.selectAt(w, mods)
	case ToolWire:
		start := ed.store.SnapPoint(w)
		ed.draft = &WireDraft{Start: start, Current: start}
		ed.state = StateWireDrafting
	case ToolComponent:
		e, err := ed.store.AddComponent(ed.compType, ed.store.SnapPoint(w), diagram.ComponentProps{})
		if err != nil {
			return err
		}
		ed.store.Select(e.ID)
	case ToolText:
		e, err := ed.store.AddText(ed.store.SnapPoint(w), ed.textValue)
		if err != nil {
			return err
		}
		ed.store.Select(e.ID)
	case ToolErase:
		if e, ok := ed.store.HitTestEditable(w); ok {
			ed.store.DeleteElements(e.ID)
		}
	}
	return nil
}

func (ed *Editor) selectAt(w diagram.Point, mods Modifiers) error {
	e, ok := ed.store.HitTestEditable(w)
	if !ok {
		if !mods.Shift {
			ed.store.ClearSelection()
		}
		return nil
	}
	if mods.Shift {
		ed.store.ToggleMulti(e.ID)
		return nil
	}
	ed.store.Select(e.ID)
	if e.IsComponent() {
		return ed.beginDrag(e, w)
	}
	return nil
}

// finishWire commits the open draft at world point w. A zero-length wire
// is discarded.
func (ed *Editor) finishWire(w diagram.Point) error {
	d := ed.draft
	ed.draft = nil
	ed.state = StateIdle

	end := ed.store.SnapPoint(w)
	if end == d.Start {
		return nil
	}
	e, err := ed.store.AddWire(d.Start, end)
	if err != nil {
		return err
	}
	ed.store.Select(e.ID)
	return nil
}

// PointerMove handles pointer motion to screen point (x, y).
func (ed *Editor) PointerMove(x, y float64) {
	switch ed.state {
	case StatePanning:
		ed.view.PanBy(x-ed.panX, y-ed.panY)
		ed.panX, ed.panY = x, y
	case StateDragging:
		ed.dragTo(ed.view.ToWorld(x, y))
	case StateWireDrafting:
		ed.draft.Current = ed.store.SnapPoint(ed.view.ToWorld(x, y))
	}
}

// PointerUp handles a primary-button release at screen point (x, y). Ending a
// drag returns its outcome.
func (ed *Editor) PointerUp(x, y float64) (DropOutcome, error) {
	switch ed.state {
	case StatePanning:
		ed.PointerMove(x, y)
		ed.state = StateIdle
	case StateDragging:
		return ed.endDrag(ed.view.ToWorld(x, y))
	}
	return DropNone, nil
}

// Wheel zooms about screen point (x, y); positive delta zooms in.
func (ed *Editor) Wheel(x, y, delta float64) {
	if delta == 0 {
		return
	}
	ed.view.ZoomAt(x, y, math.Pow(ZoomStep, delta))
}
