package diagramfile

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/render"
)

// PNGOptions configures PNG export.
type PNGOptions struct {
	Scale       float64 // output pixels per world unit
	Padding     float64 // margin around the content, in world units
	Supersample int     // render at this multiple, then downsample
	MaxSide     int     // clamp on the output width and height
}

// DefaultPNGOptions returns sensible defaults.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Scale:       1,
		Padding:     20,
		Supersample: 4,
		MaxSide:     4096,
	}
}

// ExportPNG rasterizes the visible layers of the store onto an opaque white
// background.
func ExportPNG(s *diagram.Store, opts PNGOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, s, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG writes the PNG rendering of s to w. Surface failures are
// reported as *diagram.ExportError; the store is never modified.
func WritePNG(w io.Writer, s *diagram.Store, opts PNGOptions) error {
	def := DefaultPNGOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.Supersample <= 0 {
		opts.Supersample = def.Supersample
	}
	if opts.MaxSide <= 0 {
		opts.MaxSide = def.MaxSide
	}

	frame := exportFrame(s, opts.Padding)
	scale := opts.Scale
	if side := max(frame.W, frame.H) * scale; side > float64(opts.MaxSide) {
		scale *= float64(opts.MaxSide) / side
	}
	width := int(math.Ceil(frame.W * scale))
	height := int(math.Ceil(frame.H * scale))

	ss := opts.Supersample
	surf, err := render.NewRaster(width*ss, height*ss)
	if err != nil {
		diagram.Logger().Warn("png surface unavailable", "err", err)
		return &diagram.ExportError{Format: "png", Err: err}
	}
	defer surf.Close()

	lo := frame.Min()
	k := scale * float64(ss)
	m := gg.Scale(k, k).Multiply(gg.Translate(-lo.X, -lo.Y))
	if err := render.Draw(surf, render.Frame{Store: s, Transform: m, Plain: true}); err != nil {
		return &diagram.ExportError{Format: "png", Err: err}
	}

	large := surf.Image()
	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(final, final.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)

	if err := png.Encode(w, final); err != nil {
		return &diagram.ExportError{Format: "png", Err: err}
	}
	return nil
}
