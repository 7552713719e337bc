package diagramfile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// Bundle entry names.
const (
	bundleDrawing = "drawing.json"
	bundlePreview = "preview.svg"
)

// WriteBundle writes s to w as a .schz archive holding the JSON document
// and an SVG preview.
func WriteBundle(w io.Writer, s *diagram.Store) error {
	data, err := ExportJSON(s)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)

	dw, err := zw.Create(bundleDrawing)
	if err != nil {
		return err
	}
	if _, err := dw.Write(data); err != nil {
		return err
	}

	pw, err := zw.Create(bundlePreview)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(pw, ExportSVG(s, DefaultSVGOptions())); err != nil {
		return err
	}
	return zw.Close()
}

// WriteBundleFile writes s to a .schz file.
func WriteBundleFile(path string, s *diagram.Store) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteBundle(file, s); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadBundle extracts the JSON document from a .schz archive.
func ReadBundle(r io.ReaderAt, size int64) ([]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != bundleDrawing {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		return data, err
	}
	return nil, fmt.Errorf("%s not found in archive", bundleDrawing)
}

// ReadBundleBytes extracts the JSON document from .schz bytes.
func ReadBundleBytes(data []byte) ([]byte, error) {
	return ReadBundle(bytes.NewReader(data), int64(len(data)))
}

// IsBundle reports whether data looks like a zip archive.
func IsBundle(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("PK\x03\x04"))
}
