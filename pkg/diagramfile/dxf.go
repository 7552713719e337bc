package diagramfile

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// dxfWriter emits DXF group-code/value pairs.
type dxfWriter struct {
	w   io.Writer
	err error
}

func (d *dxfWriter) pair(code int, value string) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%3d\n%s\n", code, value)
}

func (d *dxfWriter) num(code int, v float64) {
	d.pair(code, strconv.FormatFloat(v, 'f', -1, 64))
}

func (d *dxfWriter) integer(code, v int) {
	d.pair(code, strconv.Itoa(v))
}

// point writes a 2D point with Y flipped for the CAD y-up convention.
func (d *dxfWriter) point(base int, p diagram.Point) {
	d.num(base, p.X)
	d.num(base+10, flipY(p.Y))
	d.num(base+20, 0)
}

func flipY(y float64) float64 {
	if y == 0 {
		return 0
	}
	return -y
}

// flipAngle turns a clockwise screen rotation into the counter-clockwise
// y-up angle DXF expects, in [0, 360).
func flipAngle(deg float64) float64 {
	a := math.Mod(-deg, 360)
	if a < 0 {
		a += 360
	}
	if a == 0 {
		return 0
	}
	return a
}

func (d *dxfWriter) section(name string) {
	d.pair(0, "SECTION")
	d.pair(2, name)
}

func (d *dxfWriter) endsec() {
	d.pair(0, "ENDSEC")
}

// aciColors maps AutoCAD colour indices 1-7 to RGB.
var aciColors = []struct {
	index   int
	r, g, b float64
}{
	{1, 255, 0, 0},
	{2, 255, 255, 0},
	{3, 0, 255, 0},
	{4, 0, 255, 255},
	{5, 0, 0, 255},
	{6, 255, 0, 255},
	{7, 0, 0, 0}, // white on dark backgrounds, black on light
}

// aciColor returns the nearest basic colour index for a #rrggbb string.
func aciColor(hex string) int {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return 7
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)
	if r > 200 && g > 200 && b > 200 {
		return 7
	}
	best, bestDist := 7, math.Inf(1)
	for _, c := range aciColors {
		d := (r-c.r)*(r-c.r) + (g-c.g)*(g-c.g) + (b-c.b)*(b-c.b)
		if d < bestDist {
			best, bestDist = c.index, d
		}
	}
	return best
}

// dxfName turns a display name into a valid R12 table name.
func dxfName(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '$':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "UNNAMED"
	}
	return sb.String()
}

// layerNames assigns each layer a unique DXF name.
func layerNames(layers []diagram.Layer) map[string]string {
	names := make(map[string]string, len(layers))
	used := make(map[string]bool, len(layers))
	for _, l := range layers {
		base := dxfName(l.Name)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[l.ID] = name
	}
	return names
}

// blockName is the DXF block a component type is inserted from.
func blockName(typ string) string {
	return "SCH_" + dxfName(typ)
}

// ExportDXF renders the store as an ASCII R12 DXF drawing: a layer table,
// one block per component type, and an INSERT, LINE or TEXT entity per
// element. Every layer is written; hidden layers get a negative colour
// number. Y is flipped.
func ExportDXF(s *diagram.Store) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDXF(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDXF writes the DXF rendering of s to w.
func WriteDXF(w io.Writer, s *diagram.Store) error {
	d := &dxfWriter{w: w}
	layers := s.Layers()
	elems := s.Elements()
	names := layerNames(layers)

	d.section("HEADER")
	d.pair(9, "$ACADVER")
	d.pair(1, "AC1009")
	if r, ok := s.ContentBounds(); ok {
		d.pair(9, "$EXTMIN")
		d.num(10, r.Min().X)
		d.num(20, flipY(r.Max().Y))
		d.pair(9, "$EXTMAX")
		d.num(10, r.Max().X)
		d.num(20, flipY(r.Min().Y))
	}
	d.endsec()

	d.section("TABLES")
	d.pair(0, "TABLE")
	d.pair(2, "LAYER")
	d.integer(70, len(layers))
	for _, l := range layers {
		flags := 0
		if l.Locked {
			flags |= 4
		}
		color := aciColor(l.Color)
		if !l.Visible {
			color = -color
		}
		d.pair(0, "LAYER")
		d.pair(2, names[l.ID])
		d.integer(70, flags)
		d.integer(62, color)
		d.pair(6, "CONTINUOUS")
	}
	d.pair(0, "ENDTAB")
	d.endsec()

	d.section("BLOCKS")
	seen := make(map[string]bool)
	for _, e := range elems {
		if !e.IsComponent() || seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		spec := s.Catalog().Spec(e.Type)
		d.pair(0, "BLOCK")
		d.pair(8, "0")
		d.pair(2, blockName(e.Type))
		d.integer(70, 0)
		d.point(10, diagram.Point{})
		box := diagram.Rect{W: spec.Width, H: spec.Height}
		lo, hi := box.Min(), box.Max()
		corners := []diagram.Point{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}}
		for i, c := range corners {
			d.pair(0, "LINE")
			d.pair(8, "0")
			d.point(10, c)
			d.point(11, corners[(i+1)%len(corners)])
		}
		d.pair(0, "ENDBLK")
		d.pair(8, "0")
	}
	d.endsec()

	d.section("ENTITIES")
	for _, e := range elems {
		layer := names[e.Layer]
		switch e.Kind {
		case diagram.KindComponent:
			d.pair(0, "INSERT")
			d.pair(8, layer)
			d.pair(2, blockName(e.Type))
			d.point(10, e.Pos)
			if a := flipAngle(e.Rotation); a != 0 {
				d.num(50, a)
			}
		case diagram.KindWire:
			d.pair(0, "LINE")
			d.pair(8, layer)
			d.point(10, e.Start)
			d.point(11, e.End)
		case diagram.KindText:
			d.pair(0, "TEXT")
			d.pair(8, layer)
			d.point(10, e.Pos)
			d.num(40, e.FontSize)
			d.pair(1, strings.ReplaceAll(e.Text, "\n", " "))
		}
	}
	d.endsec()
	d.pair(0, "EOF")

	if d.err != nil {
		return &diagram.ExportError{Format: "dxf", Err: d.err}
	}
	return nil
}
