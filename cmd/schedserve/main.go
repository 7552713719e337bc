// Command schedserve is a stateless HTTP service that renders schematic
// drawings posted as JSON into SVG, DXF, PNG or bundle files.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/ha1tch/schematic-toolkit/internal/config"
)

// bodyLimit caps request documents.
const bodyLimit = 16 * 1024 * 1024

// ============================================================
// Export Service
// ============================================================

func main() {
	cfg := config.Load()
	app := newApp(cfg)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Export Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newApp(cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    bodyLimit,
		AppName:      "Schematic Export Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Drawing Routes
	// ============================================================

	h := &handlers{defaultCatalog: cfg.Catalog}
	app.Get("/formats", h.formats)
	app.Get("/catalogs/:name", h.catalog)
	app.Post("/validate", h.validate)
	app.Post("/export/:format", h.export)

	return app
}
