package editor

import (
	"slices"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// HintRadius is how far from a dragged component connection candidates are
// collected for display. Only candidates within diagram.ConnectThreshold
// are wired on drop.
const HintRadius = 3 * diagram.ConnectThreshold

// DropOutcome is how a drag resolved on pointer-up.
type DropOutcome int

const (
	DropNone    DropOutcome = iota // not dragging, or released without moving
	DropConnect                    // moved and auto-wired to a connection point
	DropRevert                     // collided; restored to the starting position
	DropMove                       // moved
)

func (o DropOutcome) String() string {
	switch o {
	case DropConnect:
		return "connect"
	case DropRevert:
		return "revert"
	case DropMove:
		return "move"
	}
	return "none"
}

// DragSession is the transient state of a component drag.
type DragSession struct {
	ID     string
	Offset diagram.Point // pointer minus component position at grab time
	Origin diagram.Point // position before the drag
	Pos    diagram.Point // live candidate position

	Colliding    bool
	CollidesWith string

	// Candidates are nearby connection points, nearest first.
	Candidates []diagram.ConnectionPoint

	tx *diagram.Tx
}

func (d *DragSession) clone() DragSession {
	c := *d
	c.Candidates = slices.Clone(d.Candidates)
	c.tx = nil
	return c
}

// ConnectTarget returns the candidate a drop would wire to. A point at the
// component's own position is already attached and never a target.
func (d *DragSession) ConnectTarget() (diagram.ConnectionPoint, bool) {
	if d.Colliding {
		return diagram.ConnectionPoint{}, false
	}
	for _, c := range d.Candidates {
		if c.Dist > diagram.ConnectThreshold {
			break
		}
		if c.Point != d.Pos {
			return c, true
		}
	}
	return diagram.ConnectionPoint{}, false
}

// WireDraft is an uncommitted wire.
type WireDraft struct {
	Start   diagram.Point
	Current diagram.Point
}

// beginDrag grabs component e at world point w. Moves inside the drag are
// bracketed by one store transaction.
func (ed *Editor) beginDrag(e diagram.Element, w diagram.Point) error {
	tx, err := ed.store.Begin()
	if err != nil {
		return err
	}
	ed.drag = &DragSession{
		ID:     e.ID,
		Offset: w.Sub(e.Pos),
		Origin: e.Pos,
		Pos:    e.Pos,
		tx:     tx,
	}
	ed.state = StateDragging
	return nil
}

// dragTo recomputes the candidate position for pointer world point w and
// moves the element there without recording history.
func (ed *Editor) dragTo(w diagram.Point) {
	d := ed.drag
	pos := ed.store.SnapPointExcluding(w.Sub(d.Offset), d.ID)
	d.CollidesWith, d.Colliding = ed.store.Collides(d.ID, pos)
	d.Candidates = ed.store.FindNearbyConnectionPoints(pos, HintRadius, d.ID)
	if pos != d.Pos {
		d.Pos = pos
		ed.store.UpdateElement(d.ID, diagram.MoveTo(pos))
	}
}

// endDrag resolves the drag into exactly one outcome.
func (ed *Editor) endDrag(w diagram.Point) (DropOutcome, error) {
	ed.dragTo(w)
	d := ed.drag
	ed.drag = nil
	ed.state = StateIdle

	if d.Colliding {
		diagram.Logger().Warn("drag reverted on collision",
			"id", d.ID, "with", d.CollidesWith, "x", d.Pos.X, "y", d.Pos.Y)
		return DropRevert, d.tx.Rollback()
	}
	if !d.tx.Dirty() {
		return DropNone, d.tx.Commit()
	}
	if target, ok := d.ConnectTarget(); ok {
		if _, err := ed.store.AddWire(d.Pos, target.Point); err != nil {
			// The move still stands when the active layer refuses the wire.
			if cerr := d.tx.Commit(); cerr != nil {
				return DropMove, cerr
			}
			return DropMove, err
		}
		return DropConnect, d.tx.Commit()
	}
	return DropMove, d.tx.Commit()
}
