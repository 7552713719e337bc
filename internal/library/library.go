// Package library stores exported drawings in a SQLite database so the
// command-line tools can keep a shared collection of schematics.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/diagramfile"
)

const schema = `
CREATE TABLE IF NOT EXISTS drawings (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    elements   INTEGER NOT NULL,
    data       BLOB NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

var now = time.Now

// Entry describes one stored drawing.
type Entry struct {
	ID        string
	Name      string
	Elements  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ============================================================
// SQLite Repository
// ============================================================

// Library is a drawing collection backed by SQLite.
type Library struct {
	db *sql.DB
}

// New wraps an open database. Call Init before use.
func New(db *sql.DB) *Library {
	return &Library{db: db}
}

// Open opens (creating if needed) the library at path and applies the schema.
func Open(ctx context.Context, path string) (*Library, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	lib := New(db)
	if err := lib.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return lib, nil
}

// OpenSQLite opens the sqlite database at dbPath.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Init applies the schema.
func (l *Library) Init(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (l *Library) Close() error {
	return l.db.Close()
}

// Put stores data under name, replacing any drawing with the same name.
// The data must be a valid JSON document or .schz bundle; bundles are
// stored as their JSON drawing.
func (l *Library) Put(ctx context.Context, name string, data []byte) (Entry, error) {
	if name == "" {
		return Entry{}, &diagram.ValidationError{Field: "name", Reason: "empty"}
	}
	if diagramfile.IsBundle(data) {
		inner, err := diagramfile.ReadBundleBytes(data)
		if err != nil {
			return Entry{}, err
		}
		data = inner
	}
	doc, err := diagramfile.DecodeJSON(data)
	if err != nil {
		return Entry{}, err
	}

	ts := now().UTC()
	e := Entry{Name: name, Elements: len(doc.Elements), CreatedAt: ts, UpdatedAt: ts}
	if old, err := l.Stat(ctx, name); err == nil {
		e.ID = old.ID
		e.CreatedAt = old.CreatedAt
	} else {
		var nf *diagram.NotFoundError
		if !errors.As(err, &nf) {
			return Entry{}, err
		}
		e.ID = uuid.NewString()
	}

	_, err = l.db.ExecContext(ctx, `
        INSERT INTO drawings (id, name, elements, data, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            elements = excluded.elements,
            data = excluded.data,
            updated_at = excluded.updated_at
    `, e.ID, e.Name, e.Elements, data, formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return Entry{}, fmt.Errorf("store %s: %w", name, err)
	}
	diagram.Logger().Debug("library put", "name", name, "elements", e.Elements)
	return e, nil
}

// Get returns the stored JSON document for name or id.
func (l *Library) Get(ctx context.Context, ref string) ([]byte, error) {
	row := l.db.QueryRowContext(ctx, `
        SELECT data FROM drawings WHERE name = ? OR id = ?
    `, ref, ref)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &diagram.NotFoundError{ID: ref}
		}
		return nil, err
	}
	return data, nil
}

// Load returns a new store holding the drawing stored under ref.
func (l *Library) Load(ctx context.Context, ref string, opts ...diagram.Option) (*diagram.Store, error) {
	data, err := l.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return diagramfile.LoadBytes(data, opts...)
}

// Stat returns the metadata for name or id.
func (l *Library) Stat(ctx context.Context, ref string) (Entry, error) {
	row := l.db.QueryRowContext(ctx, `
        SELECT id, name, elements, created_at, updated_at
        FROM drawings
        WHERE name = ? OR id = ?
    `, ref, ref)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, &diagram.NotFoundError{ID: ref}
		}
		return Entry{}, err
	}
	return e, nil
}

// List returns every entry ordered by name.
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
        SELECT id, name, elements, created_at, updated_at
        FROM drawings
        ORDER BY name
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the drawing stored under name or id.
func (l *Library) Delete(ctx context.Context, ref string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM drawings WHERE name = ? OR id = ?`, ref, ref)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &diagram.NotFoundError{ID: ref}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	var created, updated string
	if err := sc.Scan(&e.ID, &e.Name, &e.Elements, &created, &updated); err != nil {
		return Entry{}, err
	}
	var err error
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Entry{}, fmt.Errorf("created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Entry{}, fmt.Errorf("updated_at: %w", err)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
