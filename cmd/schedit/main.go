// Command schedit is a terminal editor for schematic drawings.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/schematic-toolkit/internal/config"
	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/editor"
)

// App holds the terminal shell around the drawing editor.
type App struct {
	screen      tcell.Screen
	ed          *editor.Editor
	filename    string
	modified    bool
	mode        Mode
	message     string
	messageType MessageType
	config      config.Config

	// Message flash state
	messageFlashStart int64 // Unix milliseconds when message was shown

	// Mouse tracking
	leftMouseDown   bool
	middleMouseDown bool
	middleX         int
	middleY         int

	// UI regions
	sidebarWidth int
	canvasWidth  int
	canvasHeight int

	// Menu state
	menuItems    []string
	menuSelected int

	// Palette state
	paletteSelected int

	// Input state
	inputBuffer string
	inputPrompt string
	inputAction func(string)

	// Help scroll state
	helpScrollOffset int
}

// Mode represents the shell mode.
type Mode int

const (
	ModeCanvas Mode = iota
	ModeMenu
	ModeInput
	ModePalette // component type picker
	ModeHelp
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
	MsgWarning                    // Warnings, flash
)

// Flash timing for status messages.
const (
	flashPhase  = 125 // ms per normal/inverted phase
	flashPeriod = 500 // ms of flashing
)

// flashes reports whether a message type flashes when shown.
func flashes(t MessageType) bool {
	switch t {
	case MsgError, MsgSuccess, MsgWarning:
		return true
	}
	return false
}

// flashInverted reports whether a flashing message is drawn inverted
// elapsed milliseconds after it was shown.
func flashInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= flashPeriod {
		return false
	}
	phase := elapsed / flashPhase
	return phase == 1 || phase == 3
}

// newApp creates the shell around an empty drawing.
func newApp(screen tcell.Screen, cfg config.Config) *App {
	a := &App{
		screen:       screen,
		config:       cfg,
		sidebarWidth: 26,
	}
	a.setStore(a.newStore())
	a.updateMenuItems()
	return a
}

func (a *App) newStore() *diagram.Store {
	return diagram.NewStore(
		diagram.WithCatalog(a.config.CatalogOrDefault()),
		diagram.WithSettings(a.config.Settings()),
	)
}

// setStore replaces the drawing under edit, keeping the view.
func (a *App) setStore(s *diagram.Store) {
	var view editor.Viewport
	if a.ed != nil {
		view = a.ed.Viewport()
	} else {
		view = editor.NewViewport()
		view.PanBy(4*dotsX, 2*dotsY)
	}
	a.ed = editor.New(s)
	a.ed.SetViewport(view)
	a.resize()
	a.modified = false
}

// resize recomputes the canvas region from the screen size.
func (a *App) resize() {
	w, h := a.screen.Size()
	a.canvasWidth = max(w-a.sidebarWidth-1, 1)
	a.canvasHeight = max(h-2, 1)
	a.ed.SetSize(float64(a.canvasWidth*dotsX), float64(a.canvasHeight*dotsY))
}

func (a *App) updateMenuItems() {
	catalogLabel := "Catalog: Circuit"
	if a.config.Catalog == "logic" {
		catalogLabel = "Catalog: Logic"
	}
	formatLabel := fmt.Sprintf("Export Format: %s", a.config.ExportFormat)

	a.menuItems = []string{
		"New Drawing",
		"Open File",
		"Save",
		"Save As",
		"Export",
		"Save to Library",
		"Edit Canvas",
		catalogLabel,
		formatLabel,
		"Quit",
	}
}

func (a *App) run() {
	// Periodic refresh while a message is flashing
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if a.message != "" && a.messageFlashStart > 0 {
				elapsed := time.Now().UnixMilli() - a.messageFlashStart
				if elapsed >= 0 && elapsed < flashPeriod+200 {
					a.screen.PostEvent(tcell.NewEventInterrupt(nil))
				}
			}
		}
	}()

	for {
		a.draw()
		a.screen.Show()

		ev := a.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.resize()
			a.screen.Sync()
		case *tcell.EventKey:
			if a.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *tcell.EventInterrupt:
			// Refresh event for flash animation
		case nil:
			return
		}
	}
}

func (a *App) showMessage(msg string, msgType MessageType) {
	a.message = msg
	a.messageType = msgType
	a.messageFlashStart = time.Now().UnixMilli()
	if a.screen != nil {
		a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// setupLogging sends library logs to the file named by SCHEDIT_LOG.
func setupLogging() (func(), error) {
	path := os.Getenv("SCHEDIT_LOG")
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	diagram.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { f.Close() }, nil
}

func main() {
	closeLog, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()

	a := newApp(screen, config.Load())

	if len(os.Args) > 1 {
		if err := a.loadFile(os.Args[1]); err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		a.mode = ModeCanvas
	} else {
		a.mode = ModeMenu
	}

	a.run()

	screen.Fini()
	config.Save(a.config)
}
