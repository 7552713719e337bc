package diagram

import (
	"errors"
	"fmt"
)

// Errors returned by store operations.
var (
	// ErrNothingToUndo indicates the history cursor is at the oldest entry.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the history cursor is at the newest entry.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrTxActive indicates a transaction is already open on the store.
	ErrTxActive = errors.New("transaction already active")

	// ErrTxDone indicates the transaction was already committed or rolled back.
	ErrTxDone = errors.New("transaction already finished")

	// ErrLayerLocked indicates an edit targeted a locked layer.
	ErrLayerLocked = errors.New("layer is locked")

	// ErrUnknownLayer indicates a layer id that is not present in the store.
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrLastLayer indicates an attempt to remove the only remaining layer.
	ErrLastLayer = errors.New("cannot remove the last layer")
)

// ValidationError reports a malformed document or element.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid document: " + e.Reason
	}
	return fmt.Sprintf("invalid document: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an element id that is not present in the store.
// UpdateElement and DeleteElements treat unknown ids as a no-op and never
// return it; UpdateElementStrict does.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("element %q not found", e.ID)
}

// ExportError reports a failed export. The store is never modified by an
// export, failed or not.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
