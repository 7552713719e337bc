package diagram

import "slices"

// Selection holds either one selected element or a set of multi-selected
// elements, never both.
type Selection struct {
	single string
	multi  []string
}

// Single returns the singly selected id, if any.
func (sel Selection) Single() (string, bool) {
	return sel.single, sel.single != ""
}

// Multi returns a copy of the multi-selection.
func (sel Selection) Multi() []string {
	return slices.Clone(sel.multi)
}

// IDs returns every selected id.
func (sel Selection) IDs() []string {
	if sel.single != "" {
		return []string{sel.single}
	}
	return slices.Clone(sel.multi)
}

// Contains reports whether id is selected in either mode.
func (sel Selection) Contains(id string) bool {
	return id != "" && (sel.single == id || slices.Contains(sel.multi, id))
}

// Empty reports whether nothing is selected.
func (sel Selection) Empty() bool {
	return sel.single == "" && len(sel.multi) == 0
}

// IsMulti reports whether the selection is in multi mode.
func (sel Selection) IsMulti() bool {
	return len(sel.multi) > 0
}

func (sel *Selection) clear() {
	sel.single = ""
	sel.multi = nil
}

func (sel *Selection) retain(keep func(string) bool) {
	if sel.single != "" && !keep(sel.single) {
		sel.single = ""
	}
	sel.multi = slices.DeleteFunc(sel.multi, func(id string) bool { return !keep(id) })
	if len(sel.multi) == 0 {
		sel.multi = nil
	}
}

// Selection returns the current selection.
func (s *Store) Selection() Selection {
	return Selection{single: s.selection.single, multi: slices.Clone(s.selection.multi)}
}

// Select makes id the single selection, leaving multi mode. Unknown ids
// clear the selection.
func (s *Store) Select(id string) {
	s.selection.clear()
	if s.has(id) {
		s.selection.single = id
	}
}

// ToggleMulti adds id to or removes it from the multi-selection. A current
// single selection is carried over into the set.
func (s *Store) ToggleMulti(id string) {
	if !s.has(id) {
		return
	}
	if s.selection.single != "" {
		s.selection.multi = []string{s.selection.single}
		s.selection.single = ""
	}
	if i := slices.Index(s.selection.multi, id); i >= 0 {
		s.selection.multi = slices.Delete(s.selection.multi, i, i+1)
		if len(s.selection.multi) == 0 {
			s.selection.multi = nil
		}
		return
	}
	s.selection.multi = append(s.selection.multi, id)
}

// SelectAll multi-selects every element on visible, unlocked layers.
func (s *Store) SelectAll() {
	s.selection.clear()
	for _, e := range s.elements {
		if s.LayerVisible(e.Layer) && !s.LayerLocked(e.Layer) {
			s.selection.multi = append(s.selection.multi, e.ID)
		}
	}
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() {
	s.selection.clear()
}

// DeleteSelection removes every selected element and returns how many were removed.
func (s *Store) DeleteSelection() int {
	return s.DeleteElements(s.selection.IDs()...)
}
