package main

import (
	"errors"
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/diagramfile"
)

type handlers struct {
	defaultCatalog string
}

// load decodes the request body into a new store. The catalog query
// parameter overrides the service default.
func (h *handlers) load(c fiber.Ctx) (*diagram.Store, string, error) {
	body := c.Body()
	if len(body) == 0 {
		return nil, "", &diagram.ValidationError{Field: "document", Reason: "empty body"}
	}
	doc, err := diagramfile.Decode(body)
	if err != nil {
		return nil, "", err
	}
	cat, ok := diagram.CatalogByName(c.Query("catalog", h.defaultCatalog))
	if !ok {
		return nil, "", &diagram.ValidationError{Field: "catalog", Reason: "unknown catalog"}
	}
	s := diagram.NewStore(diagram.WithCatalog(cat))
	if err := doc.Apply(s); err != nil {
		return nil, "", err
	}
	return s, doc.Version, nil
}

// fail maps an error to a JSON error response.
func fail(c fiber.Ctx, err error) error {
	var ve *diagram.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "invalid document",
			"field":  ve.Field,
			"reason": ve.Reason,
		})
	}
	if errors.Is(err, diagramfile.ErrUnknownFormat) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "unknown format",
			"formats": diagramfile.Formats(),
		})
	}
	diagram.Logger().Warn("export failed", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (h *handlers) formats(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"formats": diagramfile.Formats()})
}

func (h *handlers) catalog(c fiber.Ctx) error {
	cat, ok := diagram.CatalogByName(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":    "unknown catalog",
			"catalogs": diagram.CatalogNames(),
		})
	}
	types := make([]fiber.Map, 0)
	for _, typ := range cat.Types() {
		spec := cat.Spec(typ)
		types = append(types, fiber.Map{
			"type":   typ,
			"name":   spec.Name,
			"label":  spec.Label,
			"width":  spec.Width,
			"height": spec.Height,
			"pins":   len(spec.Pins),
		})
	}
	return c.JSON(fiber.Map{"catalog": cat.Name(), "types": types})
}

func (h *handlers) validate(c fiber.Ctx) error {
	s, version, err := h.load(c)
	if err != nil {
		var ve *diagram.ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"valid":  false,
				"field":  ve.Field,
				"reason": ve.Reason,
			})
		}
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"valid":    true,
		"catalog":  s.Catalog().Name(),
		"version":  version,
		"elements": s.Len(),
		"layers":   len(s.Layers()),
	})
}

func (h *handlers) export(c fiber.Ctx) error {
	format := c.Params("format")
	if !slices.Contains(diagramfile.Formats(), format) {
		return fail(c, &diagram.ExportError{Format: format, Err: diagramfile.ErrUnknownFormat})
	}
	s, _, err := h.load(c)
	if err != nil {
		return fail(c, err)
	}
	opts := diagramfile.ExportOptions{Title: c.Query("title")}
	if v, err := strconv.ParseFloat(c.Query("scale"), 64); err == nil {
		opts.Scale = v
	}
	data, err := diagramfile.ExportWith(s, format, opts)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, diagramfile.ContentType(format))
	return c.Send(data)
}
