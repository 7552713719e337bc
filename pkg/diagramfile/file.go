// Package diagramfile reads and writes drawings: JSON and .schz bundles
// round-trip, SVG, DXF and PNG are export-only.
package diagramfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// Export formats.
const (
	FormatJSON   = "json"
	FormatBundle = "schz"
	FormatSVG    = "svg"
	FormatDXF    = "dxf"
	FormatPNG    = "png"
)

// ErrUnknownFormat is wrapped in an ExportError for unsupported formats.
var ErrUnknownFormat = errors.New("unknown format")

// Formats lists every export format.
func Formats() []string {
	return []string{FormatJSON, FormatBundle, FormatSVG, FormatDXF, FormatPNG}
}

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatBundle:
		return "application/zip"
	case FormatSVG:
		return "image/svg+xml"
	case FormatDXF:
		return "application/dxf"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// ExportOptions adjusts the image formats. Zero values use the defaults.
type ExportOptions struct {
	Title string  // SVG title
	Scale float64 // PNG pixels per world unit
}

// Export renders s in the given format.
func Export(s *diagram.Store, format string) ([]byte, error) {
	return ExportWith(s, format, ExportOptions{})
}

// ExportWith renders s in the given format with opts applied.
func ExportWith(s *diagram.Store, format string, opts ExportOptions) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(s)
	case FormatBundle:
		var buf bytes.Buffer
		if err := WriteBundle(&buf, s); err != nil {
			return nil, &diagram.ExportError{Format: format, Err: err}
		}
		return buf.Bytes(), nil
	case FormatSVG:
		so := DefaultSVGOptions()
		so.Title = opts.Title
		return []byte(ExportSVG(s, so)), nil
	case FormatDXF:
		return ExportDXF(s)
	case FormatPNG:
		po := DefaultPNGOptions()
		if opts.Scale > 0 {
			po.Scale = opts.Scale
		}
		return ExportPNG(s, po)
	}
	return nil, &diagram.ExportError{Format: format, Err: ErrUnknownFormat}
}

// Decode reads a JSON document or a .schz bundle.
func Decode(data []byte) (*Document, error) {
	if IsBundle(data) {
		inner, err := ReadBundleBytes(data)
		if err != nil {
			return nil, err
		}
		data = inner
	}
	return DecodeJSON(data)
}

// LoadFile reads a JSON or .schz file into a new store.
func LoadFile(path string, opts ...diagram.Option) (*diagram.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data, opts...)
}

// LoadBytes decodes a JSON document or .schz bundle into a new store.
func LoadBytes(data []byte, opts ...diagram.Option) (*diagram.Store, error) {
	d, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s := diagram.NewStore(opts...)
	if err := d.Apply(s); err != nil {
		return nil, err
	}
	// A freshly loaded drawing starts with a clean history.
	s.History().Reset(diagram.Snapshot{Elements: s.Elements(), Layers: s.Layers()})
	return s, nil
}

// SaveFile writes s in the format implied by the path's extension.
func SaveFile(path string, s *diagram.Store) error {
	data, err := Export(s, FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
