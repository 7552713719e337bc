package editor

// Key is an editor command bound to a keyboard shortcut. Hosts translate
// their native key events into Keys.
type Key int

const (
	KeyNone Key = iota
	KeyEscape
	KeyDelete
	KeyRotate
	KeyUndo
	KeyRedo
	KeyZoomIn
	KeyZoomOut
	KeyResetView
	KeyToggleGrid
	KeyToggleSnap
	KeySelectAll
)

var keyNames = [...]string{
	KeyNone:       "none",
	KeyEscape:     "escape",
	KeyDelete:     "delete",
	KeyRotate:     "rotate",
	KeyUndo:       "undo",
	KeyRedo:       "redo",
	KeyZoomIn:     "zoom-in",
	KeyZoomOut:    "zoom-out",
	KeyResetView:  "reset-view",
	KeyToggleGrid: "toggle-grid",
	KeyToggleSnap: "toggle-snap",
	KeySelectAll:  "select-all",
}

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return "unknown"
	}
	return keyNames[k]
}

// KeyForRune maps a typed character, with or without Ctrl held, to its
// shortcut. Unbound characters map to KeyNone.
func KeyForRune(r rune, ctrl bool) Key {
	if ctrl {
		switch r {
		case 'z', 'Z':
			return KeyUndo
		case 'y', 'Y':
			return KeyRedo
		case 'a', 'A':
			return KeySelectAll
		}
		return KeyNone
	}
	switch r {
	case 'r', 'R':
		return KeyRotate
	case '+', '=':
		return KeyZoomIn
	case '-', '_':
		return KeyZoomOut
	case '0':
		return KeyResetView
	case 'g', 'G':
		return KeyToggleGrid
	case 'f', 'F':
		return KeyToggleSnap
	}
	return KeyNone
}
