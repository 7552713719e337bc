package diagram

import (
	"errors"
	"fmt"
	"slices"
)

// Default layer attributes.
const (
	DefaultLayerName  = "Default"
	DefaultLayerColor = "#000000"
)

// Store owns the ordered element collection, the layer table and the
// selection of one drawing, and records a history snapshot after every
// committed mutation.
//
// Every mutating call is atomic: it either applies completely or returns an
// error leaving the store untouched.
type Store struct {
	catalog  *Catalog
	history  *History
	settings Settings
	newID    func() string

	elements    []Element
	layers      []Layer
	activeLayer string
	selection   Selection

	tx *Tx
}

// NewStore creates an empty store with a single default layer and records
// that state as the first history entry.
func NewStore(opts ...Option) *Store {
	s := &Store{
		catalog:  CircuitCatalog(),
		settings: DefaultSettings(),
		newID:    defaultIDGenerator,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = NewHistory(MaxHistory)
	}

	layer := Layer{
		ID:      s.uniqueID(),
		Name:    DefaultLayerName,
		Visible: true,
		Color:   DefaultLayerColor,
	}
	s.layers = []Layer{layer}
	s.activeLayer = layer.ID
	s.history.Reset(s.snapshot())
	return s
}

// Catalog returns the component-type catalog.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// History returns the store's history.
func (s *Store) History() *History {
	return s.history
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	return s.settings
}

// SetSettings replaces the settings. Settings are not part of the undo history.
func (s *Store) SetSettings(st Settings) {
	s.settings = st
}

// Elements returns a copy of the element collection in insertion order.
func (s *Store) Elements() []Element {
	return slices.Clone(s.elements)
}

// Len returns the number of elements.
func (s *Store) Len() int {
	return len(s.elements)
}

// Element returns the element with the given id.
func (s *Store) Element(id string) (Element, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.elements[i], true
	}
	return Element{}, false
}

func (s *Store) indexOf(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) idTaken(id string) bool {
	if id == "" || s.indexOf(id) >= 0 {
		return true
	}
	return s.layerIndex(id) >= 0
}

// uniqueID draws an id from the generator, suffixing it if a custom
// generator produced one that is already taken.
func (s *Store) uniqueID() string {
	id := s.newID()
	if !s.idTaken(id) {
		return id
	}
	for n := 2; ; n++ {
		cand := fmt.Sprintf("%s-%d", id, n)
		if !s.idTaken(cand) {
			return cand
		}
	}
}

// snapshot copies the current collection.
func (s *Store) snapshot() Snapshot {
	return Snapshot{Elements: s.elements, Layers: s.layers}.Clone()
}

// restore replaces the collection with a copy of snap and clears the selection.
func (s *Store) restore(snap Snapshot) {
	c := snap.Clone()
	s.elements = c.Elements
	s.layers = c.Layers
	if s.layerIndex(s.activeLayer) < 0 && len(s.layers) > 0 {
		s.activeLayer = s.layers[0].ID
	}
	s.selection.clear()
}

// changed records a committed mutation: one history push, or a mark on the
// open transaction.
func (s *Store) changed() {
	if s.tx != nil {
		s.tx.dirty = true
		return
	}
	s.history.Push(s.snapshot())
}

func (s *Store) editableLayer(id string) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	if s.layers[i].Locked {
		return fmt.Errorf("%w: %s", ErrLayerLocked, s.layers[i].Name)
	}
	return nil
}

// AddComponent places a component of type typ centred at pos on the active layer.
func (s *Store) AddComponent(typ string, pos Point, props ComponentProps) (Element, error) {
	if err := s.editableLayer(s.activeLayer); err != nil {
		return Element{}, err
	}
	e := Element{
		ID:       s.uniqueID(),
		Kind:     KindComponent,
		Layer:    s.activeLayer,
		Type:     typ,
		Pos:      pos,
		Rotation: normalizeRotation(props.Rotation),
		Label:    props.Label,
		Value:    props.Value,
	}
	s.elements = append(s.elements, e)
	s.changed()
	return e, nil
}

// AddWire adds a wire between two absolute points on the active layer.
func (s *Store) AddWire(start, end Point) (Element, error) {
	if err := s.editableLayer(s.activeLayer); err != nil {
		return Element{}, err
	}
	e := Element{
		ID:    s.uniqueID(),
		Kind:  KindWire,
		Layer: s.activeLayer,
		Start: start,
		End:   end,
		Style: DefaultWireStyle,
		Width: DefaultWireWidth,
	}
	s.elements = append(s.elements, e)
	s.changed()
	return e, nil
}

// AddText adds a text annotation anchored at pos on the active layer.
func (s *Store) AddText(pos Point, text string) (Element, error) {
	if err := s.editableLayer(s.activeLayer); err != nil {
		return Element{}, err
	}
	e := Element{
		ID:       s.uniqueID(),
		Kind:     KindText,
		Layer:    s.activeLayer,
		Pos:      pos,
		Text:     text,
		FontSize: DefaultFontSize,
		Color:    DefaultTextColor,
	}
	s.elements = append(s.elements, e)
	s.changed()
	return e, nil
}

// UpdateElement applies p to the element with the given id.
//
// An unknown id is a no-op: nothing changes, nothing is pushed and nil is
// returned. Use UpdateElementStrict to observe the miss. Moving an element to
// an unknown layer returns ErrUnknownLayer.
func (s *Store) UpdateElement(id string, p Patch) error {
	err := s.UpdateElementStrict(id, p)
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nil
	}
	return err
}

// UpdateElementStrict is UpdateElement reporting unknown ids as *NotFoundError.
func (s *Store) UpdateElementStrict(id string, p Patch) error {
	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	if p.Layer != nil && s.layerIndex(*p.Layer) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, *p.Layer)
	}
	s.elements[i] = p.apply(s.elements[i])
	s.changed()
	return nil
}

// DeleteElements removes every element whose id is listed and returns how
// many were removed. Unknown ids are ignored; when nothing is removed no
// history entry is pushed. Selection references to removed elements are
// dropped.
func (s *Store) DeleteElements(ids ...string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.elements[:0:0]
	for _, e := range s.elements {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	removed := len(s.elements) - len(kept)
	if removed == 0 {
		return 0
	}
	s.elements = kept
	s.selection.retain(s.has)
	s.changed()
	return removed
}

func (s *Store) has(id string) bool {
	return s.indexOf(id) >= 0
}

// Replace swaps in a whole new collection, as an import does. The incoming
// data is validated first; on error the store is untouched. Elements that
// reference a layer missing from layers get that layer created. One history
// entry is pushed and the selection is cleared.
func (s *Store) Replace(elements []Element, layers []Layer, st Settings) error {
	seen := make(map[string]bool, len(elements)+len(layers))
	outLayers := slices.Clone(layers)
	layerIDs := make(map[string]bool, len(layers))
	for i, l := range outLayers {
		if l.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("layers[%d].id", i), Reason: "missing"}
		}
		if seen[l.ID] {
			return &ValidationError{Field: fmt.Sprintf("layers[%d].id", i), Reason: "duplicate id " + l.ID}
		}
		seen[l.ID] = true
		layerIDs[l.ID] = true
	}
	for i, e := range elements {
		field := fmt.Sprintf("elements[%d]", i)
		if e.ID == "" {
			return &ValidationError{Field: field + ".id", Reason: "missing"}
		}
		if seen[e.ID] {
			return &ValidationError{Field: field + ".id", Reason: "duplicate id " + e.ID}
		}
		seen[e.ID] = true
		if !e.Kind.Valid() {
			return &ValidationError{Field: field + ".kind", Reason: fmt.Sprintf("unknown kind %q", e.Kind)}
		}
	}
	outElems := slices.Clone(elements)
	for i := range outElems {
		if outElems[i].Layer == "" {
			if len(outLayers) == 0 {
				outLayers = append(outLayers, s.freshDefaultLayer(seen))
				layerIDs[outLayers[0].ID] = true
			}
			outElems[i].Layer = outLayers[0].ID
		}
		if !layerIDs[outElems[i].Layer] {
			id := outElems[i].Layer
			if seen[id] && !layerIDs[id] {
				return &ValidationError{Field: fmt.Sprintf("elements[%d].layer", i), Reason: "layer id collides with element id " + id}
			}
			outLayers = append(outLayers, Layer{ID: id, Name: id, Visible: true, Color: DefaultLayerColor})
			layerIDs[id] = true
		}
	}
	if len(outLayers) == 0 {
		outLayers = append(outLayers, s.freshDefaultLayer(seen))
	}

	s.elements = outElems
	s.layers = outLayers
	s.settings = st
	if s.layerIndex(s.activeLayer) < 0 {
		s.activeLayer = s.layers[0].ID
	}
	s.selection.clear()
	s.changed()
	Logger().Debug("document replaced", "elements", len(outElems), "layers", len(outLayers))
	return nil
}

func (s *Store) freshDefaultLayer(taken map[string]bool) Layer {
	id := s.newID()
	for n := 2; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", id, n)
	}
	taken[id] = true
	return Layer{ID: id, Name: DefaultLayerName, Visible: true, Color: DefaultLayerColor}
}

// Undo restores the previous history entry and clears the selection.
func (s *Store) Undo() error {
	if s.tx != nil {
		return ErrTxActive
	}
	snap, err := s.history.Undo()
	if err != nil {
		return err
	}
	s.restore(snap)
	return nil
}

// Redo restores the next history entry and clears the selection.
func (s *Store) Redo() error {
	if s.tx != nil {
		return ErrTxActive
	}
	snap, err := s.history.Redo()
	if err != nil {
		return err
	}
	s.restore(snap)
	return nil
}
