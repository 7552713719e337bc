package diagram

// MaxHistory is the default number of retained snapshots.
const MaxHistory = 50

// Snapshot is a structurally independent copy of the element collection and
// layer table at one point in time.
type Snapshot struct {
	Elements []Element
	Layers   []Layer
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Elements: make([]Element, len(s.Elements)),
		Layers:   make([]Layer, len(s.Layers)),
	}
	copy(c.Elements, s.Elements)
	copy(c.Layers, s.Layers)
	return c
}

// History is an append-only list of snapshots plus a cursor. The entry under
// the cursor is the current state; entries after it form the redo branch.
type History struct {
	entries    []Snapshot
	cursor     int
	maxEntries int
}

// NewHistory creates a history that retains at most maxEntries snapshots.
// A non-positive limit selects MaxHistory.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = MaxHistory
	}
	return &History{maxEntries: maxEntries, cursor: -1}
}

// Push truncates the redo branch, appends a copy of s and moves the cursor to
// it. The oldest entries are discarded beyond the retention limit.
func (h *History) Push(s Snapshot) {
	h.entries = append(h.entries[:h.cursor+1], s.Clone())

	if len(h.entries) > h.maxEntries {
		excess := len(h.entries) - h.maxEntries
		h.entries = append([]Snapshot(nil), h.entries[excess:]...)
	}
	h.cursor = len(h.entries) - 1

	Logger().Debug("history push", "cursor", h.cursor, "depth", len(h.entries))
}

// Reset discards every entry and starts over with s as the only one.
func (h *History) Reset(s Snapshot) {
	h.entries = nil
	h.cursor = -1
	h.Push(s)
}

// Undo moves the cursor back one entry and returns a copy of it.
func (h *History) Undo() (Snapshot, error) {
	if h.cursor <= 0 {
		return Snapshot{}, ErrNothingToUndo
	}
	h.cursor--
	Logger().Debug("history undo", "cursor", h.cursor)
	return h.entries[h.cursor].Clone(), nil
}

// Redo moves the cursor forward one entry and returns a copy of it.
func (h *History) Redo() (Snapshot, error) {
	if h.cursor >= len(h.entries)-1 {
		return Snapshot{}, ErrNothingToRedo
	}
	h.cursor++
	Logger().Debug("history redo", "cursor", h.cursor)
	return h.entries[h.cursor].Clone(), nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	return len(h.entries)
}

// Cursor returns the index of the current snapshot.
func (h *History) Cursor() int {
	return h.cursor
}

// Limit returns the retention limit.
func (h *History) Limit() int {
	return h.maxEntries
}
