package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ha1tch/schematic-toolkit/internal/library"
	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/diagramfile"
)

// File operations

func (a *App) loadFile(path string) error {
	s, err := diagramfile.LoadFile(path, diagram.WithCatalog(a.config.CatalogOrDefault()))
	if err != nil {
		return err
	}
	a.setStore(s)
	a.filename = path
	a.config.LastDir = filepath.Dir(path)
	a.showMessage("Opened "+filepath.Base(path), MsgSuccess)
	return nil
}

func (a *App) saveFile(path string) error {
	if err := diagramfile.SaveFile(path, a.ed.Store()); err != nil {
		return err
	}
	a.config.LastDir = filepath.Dir(path)
	return nil
}

// defaultPath suggests a file name with the given extension.
func (a *App) defaultPath(ext string) string {
	if a.filename != "" {
		return strings.TrimSuffix(a.filename, filepath.Ext(a.filename)) + "." + ext
	}
	return filepath.Join(a.config.LastDir, "untitled."+ext)
}

func (a *App) save() {
	if a.filename == "" {
		a.promptSaveAs()
		return
	}
	if err := a.saveFile(a.filename); err != nil {
		a.showMessage("Save failed: "+err.Error(), MsgError)
		return
	}
	a.modified = false
	a.showMessage("Saved "+filepath.Base(a.filename), MsgSuccess)
}

func (a *App) promptSaveAs() {
	a.prompt("Save as: ", a.defaultPath(diagramfile.FormatJSON), func(path string) {
		if path == "" {
			return
		}
		switch diagramfile.FormatFromPath(path) {
		case diagramfile.FormatJSON, diagramfile.FormatBundle:
		default:
			a.showMessage("Save as .json or .schz; use Export for images", MsgWarning)
			return
		}
		a.filename = path
		a.save()
	})
}

func (a *App) promptOpen() {
	dir := a.config.LastDir
	if dir != "" && !strings.HasSuffix(dir, string(os.PathSeparator)) {
		dir += string(os.PathSeparator)
	}
	a.prompt("Open: ", dir, func(path string) {
		if path == "" {
			return
		}
		if err := a.loadFile(path); err != nil {
			a.showMessage("Open failed: "+err.Error(), MsgError)
			return
		}
		a.mode = ModeCanvas
	})
}

func (a *App) promptExport() {
	a.prompt("Export to: ", a.defaultPath(a.config.ExportFormat), func(path string) {
		if path == "" {
			return
		}
		if err := a.saveFile(path); err != nil {
			a.showMessage("Export failed: "+err.Error(), MsgError)
			return
		}
		a.showMessage("Exported "+filepath.Base(path), MsgSuccess)
	})
}

func (a *App) promptLibrary() {
	name := strings.TrimSuffix(filepath.Base(a.filename), filepath.Ext(a.filename))
	if a.filename == "" {
		name = ""
	}
	a.prompt("Library name: ", name, func(name string) {
		if name == "" {
			return
		}
		if err := a.saveToLibrary(name); err != nil {
			a.showMessage("Library: "+err.Error(), MsgError)
			return
		}
		a.showMessage("Stored "+name+" in library", MsgSuccess)
	})
}

func (a *App) saveToLibrary(name string) error {
	data, err := diagramfile.ExportJSON(a.ed.Store())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	lib, err := library.Open(ctx, a.config.LibraryPath)
	if err != nil {
		return err
	}
	defer lib.Close()
	_, err = lib.Put(ctx, name, data)
	return err
}
