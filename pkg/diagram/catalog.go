package diagram

import "sort"

// TypeSpec describes one component type: its footprint and connection pins.
// Pin offsets are relative to the component centre at rotation 0.
// Label is the reference designator prefix shown for the type (R, C, U).
type TypeSpec struct {
	Type   string
	Name   string
	Width  float64
	Height float64
	Pins   []Point
	Label  string
}

// DefaultTypeSpec is used for component types missing from the catalog.
var DefaultTypeSpec = TypeSpec{Name: "Component", Width: 40, Height: 40, Label: "X"}

// Catalog is the registry of component types available to one editor.
// The engine itself is type-agnostic; a catalog is the only per-surface
// configuration.
type Catalog struct {
	name  string
	specs map[string]TypeSpec
	order []string
}

// NewCatalog builds a catalog. Later specs replace earlier ones with the
// same Type.
func NewCatalog(name string, specs ...TypeSpec) *Catalog {
	c := &Catalog{name: name, specs: make(map[string]TypeSpec, len(specs))}
	for _, s := range specs {
		c.Register(s)
	}
	return c
}

// Register adds or replaces a type.
func (c *Catalog) Register(s TypeSpec) {
	if _, ok := c.specs[s.Type]; !ok {
		c.order = append(c.order, s.Type)
	}
	c.specs[s.Type] = s
}

// Name returns the catalog name.
func (c *Catalog) Name() string {
	return c.name
}

// Lookup returns the spec registered for typ.
func (c *Catalog) Lookup(typ string) (TypeSpec, bool) {
	s, ok := c.specs[typ]
	return s, ok
}

// Spec returns the spec for typ, or DefaultTypeSpec carrying typ when the
// type is not registered.
func (c *Catalog) Spec(typ string) TypeSpec {
	if s, ok := c.specs[typ]; ok {
		return s
	}
	s := DefaultTypeSpec
	s.Type = typ
	return s
}

// Types returns the registered type tags in registration order.
func (c *Catalog) Types() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func twoPin(typ, name, label string, w, h float64) TypeSpec {
	return TypeSpec{
		Type: typ, Name: name, Label: label, Width: w, Height: h,
		Pins: []Point{{-w / 2, 0}, {w / 2, 0}},
	}
}

func gate(typ, name string) TypeSpec {
	return TypeSpec{
		Type: typ, Name: name, Label: "U", Width: 60, Height: 40,
		Pins: []Point{{-30, -10}, {-30, 10}, {30, 0}},
	}
}

// CircuitCatalog returns the electrical schematic component set.
func CircuitCatalog() *Catalog {
	return NewCatalog("circuit",
		twoPin("resistor", "Resistor", "R", 60, 20),
		twoPin("capacitor", "Capacitor", "C", 40, 30),
		twoPin("inductor", "Inductor", "L", 60, 20),
		twoPin("diode", "Diode", "D", 40, 20),
		twoPin("led", "LED", "LED", 40, 24),
		TypeSpec{Type: "battery", Name: "Battery", Label: "BT", Width: 40, Height: 40,
			Pins: []Point{{0, -20}, {0, 20}}},
		TypeSpec{Type: "ground", Name: "Ground", Label: "GND", Width: 30, Height: 30,
			Pins: []Point{{0, -15}}},
		twoPin("switch", "Switch", "SW", 50, 20),
		twoPin("lamp", "Lamp", "LP", 40, 40),
		TypeSpec{Type: "transistor", Name: "Transistor", Label: "Q", Width: 40, Height: 50,
			Pins: []Point{{-20, 0}, {10, -25}, {10, 25}}},
	)
}

// LogicCatalog returns the digital logic gate set.
func LogicCatalog() *Catalog {
	return NewCatalog("logic",
		gate("and", "AND"),
		gate("or", "OR"),
		gate("nand", "NAND"),
		gate("nor", "NOR"),
		gate("xor", "XOR"),
		TypeSpec{Type: "not", Name: "NOT", Label: "U", Width: 50, Height: 30,
			Pins: []Point{{-25, 0}, {25, 0}}},
		TypeSpec{Type: "input", Name: "Input", Label: "IN", Width: 40, Height: 20,
			Pins: []Point{{20, 0}}},
		TypeSpec{Type: "output", Name: "Output", Label: "OUT", Width: 40, Height: 20,
			Pins: []Point{{-20, 0}}},
	)
}

var builtinCatalogs = map[string]func() *Catalog{
	"circuit": CircuitCatalog,
	"logic":   LogicCatalog,
}

// CatalogByName returns a fresh copy of a built-in catalog.
func CatalogByName(name string) (*Catalog, bool) {
	fn, ok := builtinCatalogs[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// CatalogNames lists the built-in catalogs.
func CatalogNames() []string {
	names := make([]string, 0, len(builtinCatalogs))
	for n := range builtinCatalogs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
