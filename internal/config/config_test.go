package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	text := `# comment
[editor]
catalog = "logic"
export_format = "dxf"
grid_size = 25
show_grid = false
snap_to_features = false
last_dir = "/tmp/work"
library = "/tmp/lib.db"
unknown = "ignored"
not a setting
`
	cfg := Parse(text, Default())
	if cfg.Catalog != "logic" {
		t.Errorf("Catalog = %q, want logic", cfg.Catalog)
	}
	if cfg.ExportFormat != "dxf" {
		t.Errorf("ExportFormat = %q, want dxf", cfg.ExportFormat)
	}
	if cfg.GridSize != 25 {
		t.Errorf("GridSize = %v, want 25", cfg.GridSize)
	}
	if cfg.ShowGrid || cfg.SnapToFeatures {
		t.Errorf("ShowGrid/SnapToFeatures = %v/%v, want false/false", cfg.ShowGrid, cfg.SnapToFeatures)
	}
	if cfg.LastDir != "/tmp/work" || cfg.LibraryPath != "/tmp/lib.db" {
		t.Errorf("paths = %q %q", cfg.LastDir, cfg.LibraryPath)
	}
}

func TestParseInvalidValuesKeepBase(t *testing.T) {
	base := Default()
	tests := []struct {
		name string
		line string
	}{
		{"unknown catalog", `catalog = "hydraulic"`},
		{"unknown format", `export_format = "pdf"`},
		{"negative grid", `grid_size = -4`},
		{"non-numeric grid", `grid_size = "big"`},
		{"bad bool", `show_grid = maybe`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.line, base); got != base {
				t.Errorf("Parse(%q) changed config: %+v", tt.line, got)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Catalog = "logic"
	cfg.GridSize = 12.5
	cfg.ShowGrid = false
	cfg.LastDir = `C:\drawings "new"`

	got := Parse(Format(cfg), Default())
	if got.Catalog != cfg.Catalog || got.GridSize != cfg.GridSize ||
		got.ShowGrid != cfg.ShowGrid || got.LastDir != cfg.LastDir {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestLoadAndSave(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"SCHED_CATALOG", "SCHED_GRID", "SCHED_LIBRARY", "PORT", "ENV", "READ_TIMEOUT", "WRITE_TIMEOUT"} {
		t.Setenv(k, "")
	}

	if got := Load(); got.Catalog != "circuit" {
		t.Fatalf("Load without file: Catalog = %q", got.Catalog)
	}

	cfg := Default()
	cfg.Catalog = "logic"
	cfg.ExportFormat = "png"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, FileName)); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	got := Load()
	if got.Catalog != "logic" || got.ExportFormat != "png" {
		t.Errorf("Load = %q/%q, want logic/png", got.Catalog, got.ExportFormat)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SCHED_CATALOG", "logic")
	t.Setenv("SCHED_GRID", "40")
	t.Setenv("SCHED_LIBRARY", "/data/lib.db")
	t.Setenv("PORT", "8080")
	t.Setenv("READ_TIMEOUT", "30")
	t.Setenv("WRITE_TIMEOUT", "not-a-number")

	cfg := Load()
	if cfg.Catalog != "logic" || cfg.GridSize != 40 || cfg.LibraryPath != "/data/lib.db" {
		t.Errorf("overrides = %q %v %q", cfg.Catalog, cfg.GridSize, cfg.LibraryPath)
	}
	if cfg.Port != "8080" || cfg.ReadTimeout != 30 {
		t.Errorf("server = %q %d", cfg.Port, cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10 {
		t.Errorf("WriteTimeout = %d, want default 10", cfg.WriteTimeout)
	}
}

func TestSettingsAndCatalog(t *testing.T) {
	cfg := Default()
	cfg.GridSize = 8
	cfg.ShowGrid = false
	st := cfg.Settings()
	if st.GridSize != 8 || st.ShowGrid {
		t.Errorf("Settings = %+v", st)
	}
	cfg.Catalog = "logic"
	if got := cfg.CatalogOrDefault().Name(); got != "logic" {
		t.Errorf("catalog = %q, want logic", got)
	}
	cfg.Catalog = "bogus"
	if got := cfg.CatalogOrDefault().Name(); got != "circuit" {
		t.Errorf("fallback catalog = %q, want circuit", got)
	}
}
