package diagramfile

import (
	"fmt"
	"html"
	"strings"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// SVGOptions controls SVG export.
type SVGOptions struct {
	Padding   float64 // margin around the content
	Title     string  // optional title drawn above the content
	LabelSize float64 // font size of component labels
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Padding:   20,
		LabelSize: 11,
	}
}

// emptyExtent is the canvas size of a drawing with no visible content.
const emptyExtent = 100.0

// exportFrame returns the world rectangle an export covers.
func exportFrame(s *diagram.Store, pad float64) diagram.Rect {
	r, ok := s.ContentBounds()
	if !ok {
		return diagram.Rect{W: emptyExtent, H: emptyExtent}
	}
	r.W += 2 * pad
	r.H += 2 * pad
	return r
}

// ExportSVG renders the visible layers of the store as a standalone SVG
// document: a white background, one line per wire, one rect plus optional
// label per component and one text per annotation.
func ExportSVG(s *diagram.Store, opts SVGOptions) string {
	if opts.LabelSize == 0 {
		opts.LabelSize = 11
	}
	frame := exportFrame(s, opts.Padding)
	titleH := 0.0
	if opts.Title != "" {
		titleH = 30
	}
	minP := frame.Min()

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`+"\n",
		num(frame.W), num(frame.H+titleH), num(minP.X), num(minP.Y-titleH), num(frame.W), num(frame.H+titleH)))
	sb.WriteString(fmt.Sprintf(`  <rect x="%s" y="%s" width="%s" height="%s" fill="#ffffff"/>`+"\n",
		num(minP.X), num(minP.Y-titleH), num(frame.W), num(frame.H+titleH)))

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`  <text x="%s" y="%s" text-anchor="middle" font-family="sans-serif" font-size="16" font-weight="bold">%s</text>`+"\n",
			num(frame.X), num(minP.Y-titleH/2), html.EscapeString(opts.Title)))
	}

	layers := s.Layers()
	elems := s.Elements()

	// Component boxes are obstacles for label placement.
	var boxes []diagram.Rect
	for _, e := range elems {
		if e.IsComponent() && s.LayerVisible(e.Layer) {
			boxes = append(boxes, s.Bounds(e))
		}
	}
	placer := diagram.NewLabelPlacer(boxes)

	for _, l := range layers {
		if !l.Visible {
			continue
		}
		sb.WriteString(fmt.Sprintf(`  <g id="%s">`+"\n", html.EscapeString(l.ID)))
		for _, e := range elems {
			if e.Layer != l.ID {
				continue
			}
			switch e.Kind {
			case diagram.KindWire:
				dash := ""
				switch e.Style {
				case "dashed":
					dash = ` stroke-dasharray="8,4"`
				case "dotted":
					dash = ` stroke-dasharray="2,3"`
				}
				sb.WriteString(fmt.Sprintf(`    <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"%s/>`+"\n",
					num(e.Start.X), num(e.Start.Y), num(e.End.X), num(e.End.Y), l.Color, num(e.Width), dash))

			case diagram.KindComponent:
				box := s.Bounds(e)
				lo := box.Min()
				rot := ""
				if e.Rotation != 0 {
					rot = fmt.Sprintf(` transform="rotate(%s %s %s)"`, num(e.Rotation), num(box.X), num(box.Y))
				}
				sb.WriteString(fmt.Sprintf(`    <rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-width="2" data-type="%s"%s/>`+"\n",
					num(lo.X), num(lo.Y), num(box.W), num(box.H), l.Color, html.EscapeString(e.Type), rot))
				if label := e.Caption(); label != "" {
					w := float64(len(label)) * opts.LabelSize * 0.6
					pos := placer.PlaceLabel(box, w, opts.LabelSize, 4)
					sb.WriteString(fmt.Sprintf(`    <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%s" fill="#424242">%s</text>`+"\n",
						num(pos.X), num(pos.Y), num(opts.LabelSize), html.EscapeString(label)))
				}

			case diagram.KindText:
				sb.WriteString(fmt.Sprintf(`    <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%s" fill="%s">%s</text>`+"\n",
					num(e.Pos.X), num(e.Pos.Y), num(e.FontSize), e.Color, html.EscapeString(e.Text)))
			}
		}
		sb.WriteString("  </g>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// num formats a coordinate compactly.
func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
