package diagram

import "strings"

// Kind tags the variant held by an Element.
type Kind string

const (
	KindComponent Kind = "component"
	KindWire      Kind = "wire"
	KindText      Kind = "text"
)

// Valid reports whether k names a known element variant.
func (k Kind) Valid() bool {
	switch k {
	case KindComponent, KindWire, KindText:
		return true
	}
	return false
}

// Default element attributes.
const (
	DefaultWireStyle = "solid"
	DefaultWireWidth = 2.0
	DefaultFontSize  = 14.0
	DefaultTextColor = "#000000"
)

// Element is one drawing primitive. Which fields are meaningful depends on
// Kind:
//
//	component: Type, Pos, Rotation, Label, Value
//	wire:      Start, End, Style, Width
//	text:      Pos, Text, FontSize, Color
//
// Element holds no references, so copying the struct copies the element.
// Wire endpoints are absolute world coordinates.
type Element struct {
	ID    string
	Kind  Kind
	Layer string

	Type     string
	Pos      Point
	Rotation float64
	Label    string
	Value    string

	Start Point
	End   Point
	Style string
	Width float64

	Text     string
	FontSize float64
	Color    string
}

// IsComponent reports whether e is a component.
func (e Element) IsComponent() bool { return e.Kind == KindComponent }

// IsWire reports whether e is a wire.
func (e Element) IsWire() bool { return e.Kind == KindWire }

// IsText reports whether e is a text annotation.
func (e Element) IsText() bool { return e.Kind == KindText }

// Anchor returns the point an element is positioned by: the position of a
// component or text, the start point of a wire.
func (e Element) Anchor() Point {
	if e.Kind == KindWire {
		return e.Start
	}
	return e.Pos
}

// Layer is a named, independently visible and lockable group of elements.
// Paint order follows declaration order.
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
	Color   string
}

// ComponentProps are the optional properties given when placing a component.
type ComponentProps struct {
	Rotation float64
	Label    string
	Value    string
}

// Patch is a partial update of an element. Nil fields are left unchanged and
// fields that do not apply to the element's kind are ignored.
type Patch struct {
	Layer *string

	Type     *string
	Pos      *Point
	Rotation *float64
	Label    *string
	Value    *string

	Start *Point
	End   *Point
	Style *string
	Width *float64

	Text     *string
	FontSize *float64
	Color    *string
}

// apply returns e with p applied.
func (p Patch) apply(e Element) Element {
	if p.Layer != nil {
		e.Layer = *p.Layer
	}
	switch e.Kind {
	case KindComponent:
		if p.Type != nil {
			e.Type = *p.Type
		}
		if p.Pos != nil {
			e.Pos = *p.Pos
		}
		if p.Rotation != nil {
			e.Rotation = normalizeRotation(*p.Rotation)
		}
		if p.Label != nil {
			e.Label = *p.Label
		}
		if p.Value != nil {
			e.Value = *p.Value
		}
	case KindWire:
		if p.Start != nil {
			e.Start = *p.Start
		}
		if p.End != nil {
			e.End = *p.End
		}
		if p.Style != nil {
			e.Style = *p.Style
		}
		if p.Width != nil {
			e.Width = *p.Width
		}
	case KindText:
		if p.Pos != nil {
			e.Pos = *p.Pos
		}
		if p.Text != nil {
			e.Text = *p.Text
		}
		if p.FontSize != nil {
			e.FontSize = *p.FontSize
		}
		if p.Color != nil {
			e.Color = *p.Color
		}
	}
	return e
}

// Caption returns a component's label and value joined by a space.
func (e Element) Caption() string {
	return strings.TrimSpace(e.Label + " " + e.Value)
}

// MoveTo returns a patch that moves a component or text to pos.
func MoveTo(pos Point) Patch {
	return Patch{Pos: &pos}
}

// RotateTo returns a patch that sets a component's rotation.
func RotateTo(degrees float64) Patch {
	return Patch{Rotation: &degrees}
}

// Relabel returns a patch that sets a component's label.
func Relabel(label string) Patch {
	return Patch{Label: &label}
}

func normalizeRotation(deg float64) float64 {
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}
	return deg
}
