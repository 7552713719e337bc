package diagramfile

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
)

// FormatVersion is written into every exported document. Imports accept
// any 1.x version.
const FormatVersion = "1.0"

// now is replaced in tests.
var now = time.Now

// Document is a decoded drawing.
type Document struct {
	Version   string
	Timestamp time.Time
	Elements  []diagram.Element
	Layers    []diagram.Layer
	Settings  diagram.Settings
}

// jsonDocument is the JSON representation of a Document.
type jsonDocument struct {
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Elements  []jsonElement `json:"elements"`
	Layers    []jsonLayer   `json:"layers"`
	Settings  jsonSettings  `json:"settings"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonElement struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Layer string `json:"layer"`

	// component
	Type     string  `json:"type,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Label    string  `json:"label,omitempty"`
	Value    string  `json:"value,omitempty"`

	// wire
	Start *jsonPoint `json:"start,omitempty"`
	End   *jsonPoint `json:"end,omitempty"`
	Style string     `json:"style,omitempty"`
	Width float64    `json:"width,omitempty"`

	// text
	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`
}

type jsonLayer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible *bool  `json:"visible,omitempty"`
	Locked  bool   `json:"locked,omitempty"`
	Color   string `json:"color,omitempty"`
}

type jsonSettings struct {
	GridSize       float64 `json:"gridSize"`
	ShowGrid       bool    `json:"showGrid"`
	SnapToFeatures bool    `json:"snapToFeatures"`
	SnapThreshold  float64 `json:"snapThreshold"`
	Background     string  `json:"background"`
}

// DocumentOf captures the current contents of a store.
func DocumentOf(s *diagram.Store) *Document {
	return &Document{
		Version:   FormatVersion,
		Timestamp: now().UTC(),
		Elements:  s.Elements(),
		Layers:    s.Layers(),
		Settings:  s.Settings(),
	}
}

// ExportJSON serializes the store's contents.
func ExportJSON(s *diagram.Store) ([]byte, error) {
	return EncodeJSON(DocumentOf(s))
}

// EncodeJSON serializes a document as indented JSON.
func EncodeJSON(d *Document) ([]byte, error) {
	j := jsonDocument{
		Version:   d.Version,
		Timestamp: d.Timestamp.Format(time.RFC3339),
		Elements:  make([]jsonElement, 0, len(d.Elements)),
		Layers:    make([]jsonLayer, 0, len(d.Layers)),
		Settings: jsonSettings{
			GridSize:       d.Settings.GridSize,
			ShowGrid:       d.Settings.ShowGrid,
			SnapToFeatures: d.Settings.SnapToFeatures,
			SnapThreshold:  d.Settings.SnapThreshold,
			Background:     d.Settings.Background,
		},
	}
	if j.Version == "" {
		j.Version = FormatVersion
	}

	for _, e := range d.Elements {
		je := jsonElement{ID: e.ID, Kind: string(e.Kind), Layer: e.Layer}
		switch e.Kind {
		case diagram.KindComponent:
			je.Type = e.Type
			je.X, je.Y = e.Pos.X, e.Pos.Y
			je.Rotation = e.Rotation
			je.Label = e.Label
			je.Value = e.Value
		case diagram.KindWire:
			je.Start = &jsonPoint{e.Start.X, e.Start.Y}
			je.End = &jsonPoint{e.End.X, e.End.Y}
			je.Style = e.Style
			je.Width = e.Width
		case diagram.KindText:
			je.X, je.Y = e.Pos.X, e.Pos.Y
			je.Text = e.Text
			je.FontSize = e.FontSize
			je.Color = e.Color
		}
		j.Elements = append(j.Elements, je)
	}

	for _, l := range d.Layers {
		visible := l.Visible
		j.Layers = append(j.Layers, jsonLayer{
			ID:      l.ID,
			Name:    l.Name,
			Visible: &visible,
			Locked:  l.Locked,
			Color:   l.Color,
		})
	}

	return json.MarshalIndent(j, "", "  ")
}

// DecodeJSON validates and decodes a document. Structural problems are
// reported as *diagram.ValidationError.
func DecodeJSON(data []byte) (*Document, error) {
	if err := validateJSON(data); err != nil {
		return nil, err
	}

	var j jsonDocument
	defaults := diagram.DefaultSettings()
	j.Settings = jsonSettings{
		GridSize:       defaults.GridSize,
		ShowGrid:       defaults.ShowGrid,
		SnapToFeatures: defaults.SnapToFeatures,
		SnapThreshold:  defaults.SnapThreshold,
		Background:     defaults.Background,
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, &diagram.ValidationError{Field: "document", Reason: err.Error()}
	}

	d := &Document{
		Version: j.Version,
		Settings: diagram.Settings{
			GridSize:       j.Settings.GridSize,
			ShowGrid:       j.Settings.ShowGrid,
			SnapToFeatures: j.Settings.SnapToFeatures,
			SnapThreshold:  j.Settings.SnapThreshold,
			Background:     j.Settings.Background,
		},
	}
	if d.Settings.Background == "" {
		d.Settings.Background = defaults.Background
	}
	if t, err := time.Parse(time.RFC3339, j.Timestamp); err == nil {
		d.Timestamp = t
	}

	for _, je := range j.Elements {
		e := diagram.Element{
			ID:    je.ID,
			Kind:  diagram.Kind(je.Kind),
			Layer: je.Layer,
		}
		switch e.Kind {
		case diagram.KindComponent:
			e.Type = je.Type
			e.Pos = diagram.Pt(je.X, je.Y)
			e.Rotation = je.Rotation
			e.Label = je.Label
			e.Value = je.Value
		case diagram.KindWire:
			if je.Start != nil {
				e.Start = diagram.Pt(je.Start.X, je.Start.Y)
			}
			if je.End != nil {
				e.End = diagram.Pt(je.End.X, je.End.Y)
			}
			e.Style = je.Style
			e.Width = je.Width
		case diagram.KindText:
			e.Pos = diagram.Pt(je.X, je.Y)
			e.Text = je.Text
			e.FontSize = je.FontSize
			e.Color = je.Color
		}
		d.Elements = append(d.Elements, e)
	}

	for _, jl := range j.Layers {
		l := diagram.Layer{
			ID:      jl.ID,
			Name:    jl.Name,
			Visible: jl.Visible == nil || *jl.Visible,
			Locked:  jl.Locked,
			Color:   jl.Color,
		}
		if l.Name == "" {
			l.Name = l.ID
		}
		d.Layers = append(d.Layers, l)
	}
	return d, nil
}

// validateJSON checks the document shape before decoding.
func validateJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return &diagram.ValidationError{Field: "document", Reason: "not valid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return &diagram.ValidationError{Field: "document", Reason: "not a JSON object"}
	}

	if v := root.Get("version"); v.Exists() {
		if v.Type != gjson.String {
			return &diagram.ValidationError{Field: "version", Reason: "not a string"}
		}
		if major, _, _ := strings.Cut(v.String(), "."); major != "1" {
			return &diagram.ValidationError{Field: "version", Reason: fmt.Sprintf("unsupported version %q", v.String())}
		}
	}

	elems := root.Get("elements")
	if !elems.Exists() {
		return &diagram.ValidationError{Field: "elements", Reason: "missing"}
	}
	if !elems.IsArray() {
		return &diagram.ValidationError{Field: "elements", Reason: "not an array"}
	}
	var err error
	i := 0
	elems.ForEach(func(_, e gjson.Result) bool {
		field := fmt.Sprintf("elements[%d]", i)
		i++
		if !e.IsObject() {
			err = &diagram.ValidationError{Field: field, Reason: "not an object"}
			return false
		}
		if e.Get("id").Type != gjson.String {
			err = &diagram.ValidationError{Field: field + ".id", Reason: "missing"}
			return false
		}
		if !diagram.Kind(e.Get("kind").String()).Valid() {
			err = &diagram.ValidationError{Field: field + ".kind", Reason: fmt.Sprintf("unknown kind %q", e.Get("kind").String())}
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	if l := root.Get("layers"); l.Exists() && !l.IsArray() {
		return &diagram.ValidationError{Field: "layers", Reason: "not an array"}
	}
	if st := root.Get("settings"); st.Exists() && !st.IsObject() {
		return &diagram.ValidationError{Field: "settings", Reason: "not an object"}
	}
	return nil
}

// Apply replaces the store's contents with d as one undo step.
func (d *Document) Apply(s *diagram.Store) error {
	return s.Replace(d.Elements, d.Layers, d.Settings)
}

// ImportJSON validates data and replaces the store's contents with it. On
// error the store is left untouched.
func ImportJSON(s *diagram.Store, data []byte) error {
	d, err := DecodeJSON(data)
	if err == nil {
		err = d.Apply(s)
	}
	if err != nil {
		diagram.Logger().Warn("import rejected", "err", err)
		return err
	}
	return nil
}
