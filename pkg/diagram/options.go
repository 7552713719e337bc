package diagram

import "github.com/google/uuid"

// Settings are the per-document editing and display settings.
type Settings struct {
	GridSize       float64
	ShowGrid       bool
	SnapToFeatures bool
	SnapThreshold  float64
	Background     string
}

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		GridSize:       20,
		ShowGrid:       true,
		SnapToFeatures: true,
		SnapThreshold:  15,
		Background:     "#ffffff",
	}
}

// Option configures a Store.
type Option func(*Store)

// WithCatalog sets the component-type catalog. The default is CircuitCatalog.
func WithCatalog(c *Catalog) Option {
	return func(s *Store) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithHistory injects the history the store pushes to.
func WithHistory(h *History) Option {
	return func(s *Store) {
		if h != nil {
			s.history = h
		}
	}
}

// WithIDGenerator replaces the default UUID generator for element and layer ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithSettings sets the initial settings.
func WithSettings(st Settings) Option {
	return func(s *Store) {
		s.settings = st
	}
}

func defaultIDGenerator() string {
	return uuid.NewString()
}
