package main

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/diagramfile"
)

func TestParseOutputFlags(t *testing.T) {
	tests := []struct {
		args []string
		opts outputOptions
		rest []string
	}{
		{[]string{"in.json"}, outputOptions{scale: 1}, []string{"in.json"}},
		{[]string{"in.json", "-o", "out.svg", "-t", "Amp"}, outputOptions{output: "out.svg", title: "Amp", scale: 1}, []string{"in.json"}},
		{[]string{"--scale", "2.5", "a", "b"}, outputOptions{scale: 2.5}, []string{"a", "b"}},
		{[]string{"--scale", "-1", "a"}, outputOptions{scale: 1}, []string{"a"}},
		{[]string{"a", "-o"}, outputOptions{scale: 1}, []string{"a"}},
	}
	for _, tt := range tests {
		opts, rest := parseOutputFlags(tt.args)
		if opts != tt.opts || !reflect.DeepEqual(rest, tt.rest) {
			t.Errorf("parseOutputFlags(%v) = %+v %v, want %+v %v", tt.args, opts, rest, tt.opts, tt.rest)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"amp.json", "svg", "amp.svg"},
		{"dir/amp.schz", "png", "dir/amp.png"},
		{"noext", "dxf", "noext.dxf"},
	}
	for _, tt := range tests {
		if got := defaultOutput(tt.input, tt.format); got != tt.want {
			t.Errorf("defaultOutput(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := diagram.NewStore()
	s.AddComponent("resistor", diagram.Pt(0, 0), diagram.ComponentProps{})
	s.AddComponent("resistor", diagram.Pt(100, 0), diagram.ComponentProps{})
	s.AddComponent("lamp", diagram.Pt(200, 0), diagram.ComponentProps{})
	s.AddWire(diagram.Pt(0, 0), diagram.Pt(100, 0))
	s.AddText(diagram.Pt(0, 50), "note")

	sum := summarize(s)
	if sum.Components != 3 || sum.Wires != 1 || sum.Texts != 1 {
		t.Errorf("counts = %d/%d/%d", sum.Components, sum.Wires, sum.Texts)
	}
	if sum.Types["resistor"] != 2 || sum.Types["lamp"] != 1 {
		t.Errorf("types = %v", sum.Types)
	}
	if !sum.HasBounds {
		t.Error("no bounds for non-empty drawing")
	}

	if empty := summarize(diagram.NewStore()); empty.HasBounds {
		t.Error("empty drawing reports bounds")
	}
}

func TestEncodeFormats(t *testing.T) {
	s := diagram.NewStore()
	s.AddComponent("diode", diagram.Pt(0, 0), diagram.ComponentProps{})

	tests := []struct {
		format string
		prefix []byte
	}{
		{diagramfile.FormatJSON, []byte("{")},
		{diagramfile.FormatSVG, []byte("<?xml")},
		{diagramfile.FormatDXF, []byte("  0\nSECTION")},
		{diagramfile.FormatPNG, []byte("\x89PNG")},
		{diagramfile.FormatBundle, []byte("PK")},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data, err := encode(s, tt.format, outputOptions{title: "T", scale: 1})
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !bytes.HasPrefix(data, tt.prefix) {
				t.Errorf("output starts %q, want %q", data[:min(len(data), 10)], tt.prefix)
			}
		})
	}

	if _, err := encode(s, "pdf", outputOptions{scale: 1}); err == nil {
		t.Error("encode(pdf) succeeded")
	}
}
