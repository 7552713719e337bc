package diagram

import (
	"math"
	"sort"
)

// Spatial query constants, in world units.
const (
	// WireHitTolerance is the maximum perpendicular distance from a wire
	// that still counts as a hit.
	WireHitTolerance = 8.0

	// TextHitWidth and TextHitHeight size the fixed box centred on a text
	// anchor used for hit-testing.
	TextHitWidth  = 100.0
	TextHitHeight = 20.0

	// ConnectThreshold is how close a dropped component must be to a
	// connection point for the editor to auto-wire it.
	ConnectThreshold = 10.0
)

// Bounds returns the axis-aligned box of an element. Component boxes come
// from the catalog footprint and ignore rotation.
func (s *Store) Bounds(e Element) Rect {
	switch e.Kind {
	case KindComponent:
		return s.ComponentBox(e.Type, e.Pos)
	case KindWire:
		return RectFromPoints(e.Start, e.End)
	default:
		return Rect{e.Pos.X, e.Pos.Y, TextHitWidth, TextHitHeight}
	}
}

// ComponentBox returns the footprint of a component of type typ centred at pos.
func (s *Store) ComponentBox(typ string, pos Point) Rect {
	spec := s.catalog.Spec(typ)
	return Rect{pos.X, pos.Y, spec.Width, spec.Height}
}

// Pins returns the absolute positions of a component's pins, rotated with the
// component.
func (s *Store) Pins(e Element) []Point {
	if e.Kind != KindComponent {
		return nil
	}
	spec := s.catalog.Spec(e.Type)
	pins := make([]Point, len(spec.Pins))
	for i, p := range spec.Pins {
		pins[i] = e.Pos.Add(p.Rotate(e.Rotation))
	}
	return pins
}

// SnapPoint returns the nearest snap candidate within the snap threshold, or
// p unchanged. Candidates are scanned in order: the nearest grid intersection
// (when the grid is shown), then for each element component centres and box
// edge midpoints and wire endpoints (when feature snap is on). On equal
// distance the earlier candidate wins.
func (s *Store) SnapPoint(p Point) Point {
	return s.SnapPointExcluding(p, "")
}

// SnapPointExcluding is SnapPoint ignoring the features of one element,
// typically the one being dragged.
func (s *Store) SnapPointExcluding(p Point, exclude string) Point {
	st := s.settings
	best := p
	bestDist := math.Inf(1)
	consider := func(c Point) {
		d := p.Dist(c)
		if d <= st.SnapThreshold && d < bestDist {
			best, bestDist = c, d
		}
	}

	if st.ShowGrid && st.GridSize > 0 {
		g := st.GridSize
		consider(Point{math.Round(p.X/g) * g, math.Round(p.Y/g) * g})
	}

	if st.SnapToFeatures {
		for _, e := range s.elements {
			if e.ID == exclude || !s.LayerVisible(e.Layer) {
				continue
			}
			switch e.Kind {
			case KindComponent:
				consider(e.Pos)
				for _, m := range s.Bounds(e).EdgeMidpoints() {
					consider(m)
				}
			case KindWire:
				consider(e.Start)
				consider(e.End)
			}
		}
	}
	return best
}

// HitTest returns the topmost element under p. Later elements are on top of
// earlier ones; elements on hidden layers are skipped.
func (s *Store) HitTest(p Point) (Element, bool) {
	return s.hitTest(p, false)
}

// HitTestEditable is HitTest that also skips elements on locked layers.
func (s *Store) HitTestEditable(p Point) (Element, bool) {
	return s.hitTest(p, true)
}

func (s *Store) hitTest(p Point, skipLocked bool) (Element, bool) {
	for i := len(s.elements) - 1; i >= 0; i-- {
		e := s.elements[i]
		if !s.LayerVisible(e.Layer) {
			continue
		}
		if skipLocked && s.LayerLocked(e.Layer) {
			continue
		}
		if s.hits(e, p) {
			return e, true
		}
	}
	return Element{}, false
}

func (s *Store) hits(e Element, p Point) bool {
	switch e.Kind {
	case KindWire:
		return SegmentDistance(p, e.Start, e.End) < WireHitTolerance
	default:
		return s.Bounds(e).Contains(p)
	}
}

// ConnectionPoint is a pin or wire endpoint found near a query point.
type ConnectionPoint struct {
	Point
	ElementID string
	Index     int // pin index, or 0/1 for a wire's start/end
	Dist      float64
}

// FindNearbyConnectionPoints returns every component pin and wire endpoint
// within threshold of p, nearest first. Elements whose ids are listed in
// exclude and elements on hidden layers contribute nothing.
func (s *Store) FindNearbyConnectionPoints(p Point, threshold float64, exclude ...string) []ConnectionPoint {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	var out []ConnectionPoint
	add := func(e Element, idx int, c Point) {
		if d := p.Dist(c); d <= threshold {
			out = append(out, ConnectionPoint{Point: c, ElementID: e.ID, Index: idx, Dist: d})
		}
	}
	for _, e := range s.elements {
		if skip[e.ID] || !s.LayerVisible(e.Layer) {
			continue
		}
		switch e.Kind {
		case KindComponent:
			for i, pin := range s.Pins(e) {
				add(e, i, pin)
			}
		case KindWire:
			add(e, 0, e.Start)
			add(e, 1, e.End)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Dist < out[j].Dist })
	return out
}

// Collides reports whether the component id, if centred at pos, would overlap
// the box of any other component, and returns the first one found. The scan
// is linear and stops at the first overlap; boxes ignore rotation.
func (s *Store) Collides(id string, pos Point) (string, bool) {
	i := s.indexOf(id)
	if i < 0 || s.elements[i].Kind != KindComponent {
		return "", false
	}
	box := s.ComponentBox(s.elements[i].Type, pos)
	for _, e := range s.elements {
		if e.ID == id || e.Kind != KindComponent {
			continue
		}
		if RectOverlap(box, s.Bounds(e)) > 0 {
			return e.ID, true
		}
	}
	return "", false
}

// ContentBounds returns the union of the boxes of every element on a visible
// layer, and false if there are none.
func (s *Store) ContentBounds() (Rect, bool) {
	var r Rect
	found := false
	for _, e := range s.elements {
		if !s.LayerVisible(e.Layer) {
			continue
		}
		b := s.Bounds(e)
		if !found {
			r, found = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, found
}
