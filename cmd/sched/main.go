// Command sched is a CLI tool for working with schematic drawings.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ha1tch/schematic-toolkit/internal/config"
	"github.com/ha1tch/schematic-toolkit/internal/library"
	"github.com/ha1tch/schematic-toolkit/internal/script"
	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/diagramfile"
)

const usage = `sched - schematic drawing toolkit

Usage:
  sched <command> [options]

Commands:
  convert    Convert between formats (json, schz, svg, dxf, png)
  info       Show drawing information
  validate   Validate a drawing file
  library    Store and fetch drawings in the local library
  script     Build a drawing from a Lua script

Examples:
  sched convert amp.json -o amp.svg
  sched convert amp.schz -o amp.png --scale 2
  sched info amp.json
  sched library put amp amp.json
  sched library get amp -o amp.dxf
  sched script divider.lua -o divider.json

Use "sched <command> -h" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "convert":
		cmdConvert(args)
	case "info":
		cmdInfo(args)
	case "validate":
		cmdValidate(args)
	case "library", "lib":
		cmdLibrary(args)
	case "script":
		cmdScript(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

// outputOptions are the flags shared by commands that write a drawing.
type outputOptions struct {
	output string
	title  string
	scale  float64
}

// parseOutputFlags reads -o, -t and --scale from args, returning the
// remaining positional arguments.
func parseOutputFlags(args []string) (outputOptions, []string) {
	opts := outputOptions{scale: 1}
	var rest []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				opts.output = args[i+1]
				i++
			}
		case "-t", "--title":
			if i+1 < len(args) {
				opts.title = args[i+1]
				i++
			}
		case "--scale":
			if i+1 < len(args) {
				if v, err := strconv.ParseFloat(args[i+1], 64); err == nil && v > 0 {
					opts.scale = v
				}
				i++
			}
		default:
			rest = append(rest, args[i])
		}
	}
	return opts, rest
}

// defaultOutput swaps the extension of input for format.
func defaultOutput(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

// encode produces the bytes of s in format.
func encode(s *diagram.Store, format string, opts outputOptions) ([]byte, error) {
	return diagramfile.ExportWith(s, format, diagramfile.ExportOptions{
		Title: opts.title,
		Scale: opts.scale,
	})
}

func writeDrawing(s *diagram.Store, opts outputOptions) error {
	format := diagramfile.FormatFromPath(opts.output)
	data, err := encode(s, format, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(opts.output, data, 0644)
}

func loadDrawing(path string) (*diagram.Store, error) {
	cfg := config.Load()
	return diagramfile.LoadFile(path, diagram.WithCatalog(cfg.CatalogOrDefault()))
}

func cmdConvert(args []string) {
	opts, rest := parseOutputFlags(args)
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sched convert <input> [-o output] [-t title] [--scale n]")
		os.Exit(1)
	}
	input := rest[0]

	s, err := loadDrawing(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}

	if opts.output == "" {
		opts.output = defaultOutput(input, config.Load().ExportFormat)
		if opts.output == input {
			opts.output = defaultOutput(input, diagramfile.FormatSVG)
		}
	}

	if err := writeDrawing(s, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", opts.output, err)
		os.Exit(1)
	}

	fmt.Printf("Written: %s\n", opts.output)
}

// summary counts what a drawing holds.
type summary struct {
	Components int
	Wires      int
	Texts      int
	Types      map[string]int
	Bounds     diagram.Rect
	HasBounds  bool
}

func summarize(s *diagram.Store) summary {
	sum := summary{Types: make(map[string]int)}
	for _, e := range s.Elements() {
		switch e.Kind {
		case diagram.KindComponent:
			sum.Components++
			sum.Types[e.Type]++
		case diagram.KindWire:
			sum.Wires++
		case diagram.KindText:
			sum.Texts++
		}
	}
	sum.Bounds, sum.HasBounds = s.ContentBounds()
	return sum
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sched info <input>")
		os.Exit(1)
	}

	input := args[0]
	s, err := loadDrawing(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}
	printInfo(s)
}

func printInfo(s *diagram.Store) {
	sum := summarize(s)
	st := s.Settings()

	fmt.Printf("Elements:    %d\n", s.Len())
	fmt.Printf("Components:  %d\n", sum.Components)
	fmt.Printf("Wires:       %d\n", sum.Wires)
	fmt.Printf("Texts:       %d\n", sum.Texts)
	fmt.Printf("Grid:        %g (shown: %t, snap: %t)\n", st.GridSize, st.ShowGrid, st.SnapToFeatures)
	if sum.HasBounds {
		b := sum.Bounds
		fmt.Printf("Bounds:      %g,%g %gx%g\n", b.X, b.Y, b.W, b.H)
	}
	fmt.Println()

	fmt.Println("Layers:")
	for _, l := range s.Layers() {
		flags := ""
		if !l.Visible {
			flags += " [hidden]"
		}
		if l.Locked {
			flags += " [locked]"
		}
		fmt.Printf("  %-16s %s%s\n", l.Name, l.Color, flags)
	}

	if len(sum.Types) > 0 {
		types := make([]string, 0, len(sum.Types))
		for t := range sum.Types {
			types = append(types, t)
		}
		sort.Strings(types)
		fmt.Println("Types:")
		for _, t := range types {
			fmt.Printf("  %-16s %d\n", t, sum.Types[t])
		}
	}
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sched validate <input>")
		os.Exit(1)
	}

	input := args[0]
	data, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}

	doc, err := diagramfile.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	s := diagram.NewStore()
	if err := doc.Apply(s); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: valid drawing (version %s) with %d elements, %d layers\n",
		input, doc.Version, s.Len(), len(s.Layers()))
}

func cmdLibrary(args []string) {
	const libUsage = `Usage:
  sched library list
  sched library put <name> <file>
  sched library get <name> [-o output]
  sched library info <name>
  sched library rm <name>`

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, libUsage)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := config.Load()
	lib, err := library.Open(ctx, cfg.LibraryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening library %s: %v\n", cfg.LibraryPath, err)
		os.Exit(1)
	}
	defer lib.Close()

	sub := args[0]
	opts, rest := parseOutputFlags(args[1:])

	fail := func(err error) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		lib.Close()
		os.Exit(1)
	}

	switch sub {
	case "list", "ls":
		entries, err := lib.List(ctx)
		if err != nil {
			fail(err)
		}
		if len(entries) == 0 {
			fmt.Println("Library is empty")
			return
		}
		for _, e := range entries {
			fmt.Printf("%-24s %4d elements  %s\n", e.Name, e.Elements, e.UpdatedAt.Local().Format(time.DateTime))
		}

	case "put", "add":
		if len(rest) < 2 {
			fmt.Fprintln(os.Stderr, libUsage)
			os.Exit(1)
		}
		data, err := os.ReadFile(rest[1])
		if err != nil {
			fail(err)
		}
		e, err := lib.Put(ctx, rest[0], data)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Stored: %s (%d elements, id %s)\n", e.Name, e.Elements, e.ID)

	case "get":
		if len(rest) < 1 {
			fmt.Fprintln(os.Stderr, libUsage)
			os.Exit(1)
		}
		if opts.output == "" {
			data, err := lib.Get(ctx, rest[0])
			if err != nil {
				fail(err)
			}
			os.Stdout.Write(data)
			return
		}
		s, err := lib.Load(ctx, rest[0], diagram.WithCatalog(cfg.CatalogOrDefault()))
		if err != nil {
			fail(err)
		}
		if err := writeDrawing(s, opts); err != nil {
			fail(err)
		}
		fmt.Printf("Written: %s\n", opts.output)

	case "info":
		if len(rest) < 1 {
			fmt.Fprintln(os.Stderr, libUsage)
			os.Exit(1)
		}
		s, err := lib.Load(ctx, rest[0], diagram.WithCatalog(cfg.CatalogOrDefault()))
		if err != nil {
			fail(err)
		}
		printInfo(s)

	case "rm", "delete":
		if len(rest) < 1 {
			fmt.Fprintln(os.Stderr, libUsage)
			os.Exit(1)
		}
		if err := lib.Delete(ctx, rest[0]); err != nil {
			fail(err)
		}
		fmt.Printf("Removed: %s\n", rest[0])

	default:
		fmt.Fprintf(os.Stderr, "Unknown library command: %s\n", sub)
		fmt.Fprintln(os.Stderr, libUsage)
		os.Exit(1)
	}
}

func cmdScript(args []string) {
	opts, rest := parseOutputFlags(args)
	var base string
	timeout := script.DefaultTimeout
	var positional []string
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-i", "--input":
			if i+1 < len(rest) {
				base = rest[i+1]
				i++
			}
		case "--timeout":
			if i+1 < len(rest) {
				if d, err := time.ParseDuration(rest[i+1]); err == nil {
					timeout = d
				}
				i++
			}
		default:
			positional = append(positional, rest[i])
		}
	}
	if len(positional) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sched script <script.lua> [-i base] [-o output] [--timeout 5s]")
		os.Exit(1)
	}
	src := positional[0]

	cfg := config.Load()
	var s *diagram.Store
	if base != "" {
		var err error
		if s, err = loadDrawing(base); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", base, err)
			os.Exit(1)
		}
	} else {
		s = diagram.NewStore(
			diagram.WithCatalog(cfg.CatalogOrDefault()),
			diagram.WithSettings(cfg.Settings()),
		)
	}

	runner := script.NewRunner(script.WithTimeout(timeout), script.WithOutput(os.Stdout))
	res, err := runner.RunFile(context.Background(), s, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.output == "" {
		opts.output = defaultOutput(src, diagramfile.FormatJSON)
	}
	if err := writeDrawing(s, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", opts.output, err)
		os.Exit(1)
	}

	fmt.Printf("Added %d components, %d wires, %d texts, %d layers\n",
		res.Components, res.Wires, res.Texts, res.Layers)
	fmt.Printf("Written: %s\n", opts.output)
}
