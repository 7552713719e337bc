package diagram

// Tx brackets a group of mutations into a single history entry. While a
// transaction is open, mutations apply to the live collection immediately
// but push nothing; Commit pushes one snapshot if anything changed and
// Rollback restores the collection as it was at Begin.
type Tx struct {
	store  *Store
	before Snapshot
	dirty  bool
	done   bool
}

// Begin opens a transaction. Only one may be open at a time.
func (s *Store) Begin() (*Tx, error) {
	if s.tx != nil {
		return nil, ErrTxActive
	}
	s.tx = &Tx{store: s, before: s.snapshot()}
	return s.tx, nil
}

// InTx reports whether a transaction is open.
func (s *Store) InTx() bool {
	return s.tx != nil
}

// Dirty reports whether any mutation happened inside the transaction.
func (tx *Tx) Dirty() bool {
	return tx.dirty
}

// Commit closes the transaction, pushing one history entry if it changed anything.
func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	s := tx.store
	s.tx = nil
	if tx.dirty {
		s.history.Push(s.snapshot())
	}
	return nil
}

// Rollback closes the transaction and restores the collection it started
// from. Nothing is pushed. The selection survives for elements that still
// exist afterwards.
func (tx *Tx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	s := tx.store
	s.tx = nil
	if tx.dirty {
		sel := s.selection
		c := tx.before.Clone()
		s.elements = c.Elements
		s.layers = c.Layers
		s.selection = sel
		s.selection.retain(s.has)
		if s.layerIndex(s.activeLayer) < 0 {
			s.activeLayer = s.layers[0].ID
		}
	}
	return nil
}
