package diagram

import (
	"fmt"
	"slices"
)

// Layers returns a copy of the layer table in paint order.
func (s *Store) Layers() []Layer {
	return slices.Clone(s.layers)
}

// Layer returns the layer with the given id.
func (s *Store) Layer(id string) (Layer, bool) {
	if i := s.layerIndex(id); i >= 0 {
		return s.layers[i], true
	}
	return Layer{}, false
}

func (s *Store) layerIndex(id string) int {
	for i := range s.layers {
		if s.layers[i].ID == id {
			return i
		}
	}
	return -1
}

// LayerVisible reports whether the layer exists and is visible.
func (s *Store) LayerVisible(id string) bool {
	i := s.layerIndex(id)
	return i >= 0 && s.layers[i].Visible
}

// LayerLocked reports whether the layer exists and is locked.
func (s *Store) LayerLocked(id string) bool {
	i := s.layerIndex(id)
	return i >= 0 && s.layers[i].Locked
}

// ActiveLayer returns the id of the layer new elements are placed on.
func (s *Store) ActiveLayer() string {
	return s.activeLayer
}

// SetActiveLayer selects the layer new elements are placed on.
func (s *Store) SetActiveLayer(id string) error {
	if s.layerIndex(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	s.activeLayer = id
	return nil
}

// AddLayer appends a visible, unlocked layer on top of the paint order.
func (s *Store) AddLayer(name, color string) Layer {
	if color == "" {
		color = DefaultLayerColor
	}
	l := Layer{ID: s.uniqueID(), Name: name, Visible: true, Color: color}
	s.layers = append(s.layers, l)
	s.changed()
	return l
}

func (s *Store) updateLayer(id string, fn func(*Layer)) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	fn(&s.layers[i])
	s.changed()
	return nil
}

// RenameLayer changes a layer's display name.
func (s *Store) RenameLayer(id, name string) error {
	return s.updateLayer(id, func(l *Layer) { l.Name = name })
}

// SetLayerVisible shows or hides a layer. Hidden layers are neither painted
// nor hit-tested.
func (s *Store) SetLayerVisible(id string, visible bool) error {
	return s.updateLayer(id, func(l *Layer) { l.Visible = visible })
}

// SetLayerLocked locks or unlocks a layer. Elements on a locked layer are
// painted but cannot be selected, dragged or erased, and nothing new can be
// placed on it.
func (s *Store) SetLayerLocked(id string, locked bool) error {
	return s.updateLayer(id, func(l *Layer) { l.Locked = locked })
}

// SetLayerColor changes a layer's display colour.
func (s *Store) SetLayerColor(id, color string) error {
	return s.updateLayer(id, func(l *Layer) { l.Color = color })
}

// RemoveLayer deletes a layer, moving its elements to the first remaining
// layer. The last layer cannot be removed.
func (s *Store) RemoveLayer(id string) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	if len(s.layers) == 1 {
		return ErrLastLayer
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	target := s.layers[0].ID
	for j := range s.elements {
		if s.elements[j].Layer == id {
			s.elements[j].Layer = target
		}
	}
	if s.activeLayer == id {
		s.activeLayer = target
	}
	s.changed()
	return nil
}
