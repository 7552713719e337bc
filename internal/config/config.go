// Package config holds persistent settings for the schematic tools: a
// small TOML-style file in the home directory, overridden by environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// FileName is the config file name inside the home directory.
const FileName = ".schedit"

// Config holds persistent editor and tool settings.
type Config struct {
	Catalog        string  // component catalog: "circuit" or "logic"
	ExportFormat   string  // default export format
	GridSize       float64 // grid spacing for new drawings
	ShowGrid       bool
	SnapToFeatures bool
	LastDir        string // last used directory
	LibraryPath    string // SQLite drawing library

	// Export service
	Port         string
	Environment  string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
}

// Default returns the default configuration.
func Default() Config {
	cwd, _ := os.Getwd()
	lib := "schematics.db"
	if home, err := os.UserHomeDir(); err == nil {
		lib = filepath.Join(home, ".schedit.d", "library.db")
	}
	return Config{
		Catalog:        "circuit",
		ExportFormat:   "svg",
		GridSize:       diagram.DefaultSettings().GridSize,
		ShowGrid:       true,
		SnapToFeatures: true,
		LastDir:        cwd,
		LibraryPath:    lib,
		Port:           "3000",
		Environment:    "development",
		ReadTimeout:    10,
		WriteTimeout:   10,
	}
}

// Path returns the path to the config file.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads the config file, if present, then applies environment
// overrides. Unknown keys and invalid values are ignored.
func Load() Config {
	cfg := Default()
	if data, err := os.ReadFile(Path()); err == nil {
		cfg = Parse(string(data), cfg)
	}
	return applyEnv(cfg)
}

// Parse applies the settings in text on top of base.
func Parse(text string, base Config) Config {
	cfg := base
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		cfg.set(strings.TrimSpace(key), unquote(strings.TrimSpace(val)))
	}
	return cfg
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}

// set assigns one setting by key.
func (c *Config) set(key, val string) {
	switch key {
	case "catalog":
		if _, ok := diagram.CatalogByName(val); ok {
			c.Catalog = val
		}
	case "export_format":
		switch val {
		case "json", "schz", "svg", "dxf", "png":
			c.ExportFormat = val
		}
	case "grid_size":
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			c.GridSize = f
		}
	case "show_grid":
		if b, err := strconv.ParseBool(val); err == nil {
			c.ShowGrid = b
		}
	case "snap_to_features":
		if b, err := strconv.ParseBool(val); err == nil {
			c.SnapToFeatures = b
		}
	case "last_dir":
		if val != "" {
			c.LastDir = val
		}
	case "library":
		if val != "" {
			c.LibraryPath = val
		}
	}
}

func applyEnv(c Config) Config {
	if v := getEnv("SCHED_CATALOG", ""); v != "" {
		c.set("catalog", v)
	}
	if v := getEnv("SCHED_GRID", ""); v != "" {
		c.set("grid_size", v)
	}
	c.LibraryPath = getEnv("SCHED_LIBRARY", c.LibraryPath)
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENV", c.Environment)
	c.ReadTimeout = getEnvAsInt("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", c.WriteTimeout)
	return c
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// Format renders the persistent settings in the file format Parse reads.
func Format(c Config) string {
	var sb strings.Builder
	sb.WriteString("# schedit configuration\n")
	fmt.Fprintf(&sb, "catalog = %q\n", c.Catalog)
	fmt.Fprintf(&sb, "export_format = %q\n", c.ExportFormat)
	fmt.Fprintf(&sb, "grid_size = %s\n", strconv.FormatFloat(c.GridSize, 'f', -1, 64))
	fmt.Fprintf(&sb, "show_grid = %t\n", c.ShowGrid)
	fmt.Fprintf(&sb, "snap_to_features = %t\n", c.SnapToFeatures)
	fmt.Fprintf(&sb, "last_dir = %q\n", c.LastDir)
	fmt.Fprintf(&sb, "library = %q\n", c.LibraryPath)
	return sb.String()
}

// Save writes the persistent settings to the config file.
func Save(c Config) error {
	return os.WriteFile(Path(), []byte(Format(c)), 0644)
}

// Settings returns the engine settings for a new drawing.
func (c Config) Settings() diagram.Settings {
	st := diagram.DefaultSettings()
	st.GridSize = c.GridSize
	st.ShowGrid = c.ShowGrid
	st.SnapToFeatures = c.SnapToFeatures
	return st
}

// CatalogOrDefault returns the configured catalog.
func (c Config) CatalogOrDefault() *diagram.Catalog {
	if cat, ok := diagram.CatalogByName(c.Catalog); ok {
		return cat
	}
	return diagram.CircuitCatalog()
}
