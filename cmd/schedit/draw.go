package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/schematic-toolkit/pkg/diagram"
	"github.com/ha1tch/schematic-toolkit/pkg/editor"
	"github.com/ha1tch/schematic-toolkit/pkg/render"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleMenu       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleSidebar    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLayerAct   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLayerOff   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// sidebarLayerRow is the screen row of the first layer in the sidebar.
const sidebarLayerRow = 8

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()

	a.drawCanvas()
	a.drawSidebar(w, h)

	switch a.mode {
	case ModeMenu:
		a.drawMenuOverlay(w, h)
	case ModeInput:
		a.drawInputBox(w, h)
	case ModePalette:
		a.drawPalette(w, h)
	case ModeHelp:
		a.drawHelp(w, h)
	}

	a.drawStatusBar(w, h)
}

func (a *App) drawCanvas() {
	surf := newCellSurface(a.screen, 0, 0, a.canvasWidth, a.canvasHeight)
	frame := render.FromEditor(a.ed)
	frame.HideGrid = true
	if err := render.Draw(surf, frame); err != nil {
		a.showMessage("Render: "+err.Error(), MsgError)
	}
	a.drawGridDots()
}

// drawGridDots marks grid intersections on empty cells.
func (a *App) drawGridDots() {
	st := a.ed.Store().Settings()
	if !st.ShowGrid || st.GridSize <= 0 {
		return
	}
	v := a.ed.Viewport()
	step := st.GridSize * v.Zoom
	// Skip grids denser than one mark per two cells.
	if step < 2*dotsX || step < dotsY {
		return
	}
	color := tcell.GetColor(render.HintColor)
	tl := v.ToWorld(0, 0)
	br := v.ToWorld(float64(a.canvasWidth*dotsX), float64(a.canvasHeight*dotsY))
	for wx := math.Floor(tl.X/st.GridSize) * st.GridSize; wx <= br.X; wx += st.GridSize {
		for wy := math.Floor(tl.Y/st.GridSize) * st.GridSize; wy <= br.Y; wy += st.GridSize {
			sx, sy := v.ToScreen(diagram.Pt(wx, wy))
			col, row := int(sx/dotsX), int(sy/dotsY)
			if col < 0 || row < 0 || col >= a.canvasWidth || row >= a.canvasHeight {
				continue
			}
			r, _, style, _ := a.screen.GetContent(col, row)
			if r == ' ' || r == 0 {
				a.screen.SetContent(col, row, '·', nil, style.Foreground(color))
			}
		}
	}
}

func (a *App) drawSidebar(w, h int) {
	x0 := a.canvasWidth
	for y := 0; y < h-2; y++ {
		a.screen.SetContent(x0, y, '│', nil, styleBorder)
	}
	x := x0 + 2
	width := w - x - 1

	s := a.ed.Store()
	st := s.Settings()
	a.drawString(x, 0, "DRAWING", styleSidebarH)
	a.drawString(x, 1, truncate(fmt.Sprintf("Tool: %s", a.toolLabel()), width), styleSidebar)
	a.drawString(x, 2, truncate(fmt.Sprintf("Zoom: %.0f%%", a.ed.Viewport().Zoom*100), width), styleSidebar)
	a.drawString(x, 3, truncate(fmt.Sprintf("Grid: %g %s", st.GridSize, onOff(st.ShowGrid)), width), styleSidebar)
	a.drawString(x, 4, truncate(fmt.Sprintf("Snap: %s", onOff(st.SnapToFeatures)), width), styleSidebar)
	a.drawString(x, 5, truncate(fmt.Sprintf("Elements: %d", s.Len()), width), styleSidebar)

	a.drawString(x, sidebarLayerRow-1, "LAYERS", styleSidebarH)
	row := sidebarLayerRow
	for _, l := range s.Layers() {
		if row >= h-4 {
			break
		}
		style := styleSidebar
		if !l.Visible {
			style = styleLayerOff
		}
		marker := "  "
		if l.ID == s.ActiveLayer() {
			marker = "> "
			style = styleLayerAct
		}
		flags := ""
		if !l.Visible {
			flags += " (hidden)"
		}
		if l.Locked {
			flags += " (locked)"
		}
		a.drawString(x, row, truncate(marker+l.Name+flags, width), style)
		row++
	}

	row++
	if ids := s.Selection().IDs(); len(ids) > 0 && row < h-4 {
		a.drawString(x, row, "SELECTION", styleSidebarH)
		row++
		for _, id := range ids {
			if row >= h-3 {
				a.drawString(x, row, "...", styleSidebar)
				break
			}
			e, ok := s.Element(id)
			if !ok {
				continue
			}
			desc := string(e.Kind)
			switch {
			case e.IsComponent():
				desc = s.Catalog().Spec(e.Type).Name
				if c := e.Caption(); c != "" {
					desc += " " + c
				}
			case e.IsText():
				desc = "text " + e.Text
			}
			a.drawString(x, row, truncate(desc, width), styleSidebar)
			row++
		}
	}
}

func (a *App) toolLabel() string {
	label := a.ed.Tool().String()
	if a.ed.Tool() == editor.ToolComponent {
		label += " " + a.ed.ComponentType()
	}
	return label
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (a *App) drawStatusBar(w, h int) {
	y := h - 1

	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[New]"
	if a.filename != "" {
		if len(a.filename) > 30 {
			fileInfo = filepath.Base(a.filename)
		} else {
			fileInfo = a.filename
		}
	}
	if a.modified {
		fileInfo += " *"
	}
	a.drawString(1, y, fileInfo, styleStatus)

	modeStr := a.modeString()
	a.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	if a.message != "" {
		style := styleMsgInfo
		switch a.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		case MsgWarning:
			style = styleMsgWarning
		}
		if flashes(a.messageType) && flashInverted(time.Now().UnixMilli()-a.messageFlashStart) {
			style = style.Reverse(true)
		}
		a.drawString(w-len([]rune(a.message))-2, y, a.message, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	a.drawString(1, y, truncate(a.helpString(), w-2), styleHelp)
}

func (a *App) drawMenuOverlay(w, h int) {
	menuWidth := 40
	menuHeight := len(a.menuItems) + 4

	startX := max((w-menuWidth)/2, 0)
	startY := max((h-menuHeight)/2, 0)

	a.drawTitledBox(startX, startY, menuWidth, menuHeight, "schedit")

	for i, item := range a.menuItems {
		style := styleMenu
		if i == a.menuSelected {
			style = styleMenuSel
		}
		a.drawString(startX+1, startY+2+i, fmt.Sprintf(" %-*s", menuWidth-3, item), style)
	}
}

func (a *App) drawPalette(w, h int) {
	cat := a.ed.Store().Catalog()
	types := cat.Types()
	boxW := 32
	boxH := len(types) + 4
	startX := max((w-boxW)/2, 0)
	startY := max((h-boxH)/2, 0)

	a.drawTitledBox(startX, startY, boxW, boxH, cat.Name())
	for i, typ := range types {
		style := styleMenu
		if i == a.paletteSelected {
			style = styleMenuSel
		}
		spec := cat.Spec(typ)
		a.drawString(startX+1, startY+2+i, fmt.Sprintf(" %-*s%4s", boxW-7, spec.Name, spec.Label), style)
	}
}

var helpLines = []string{
	"Tools",
	"  s  select / drag      p  pan",
	"  w  wire               c  component palette",
	"  t  text               x  erase",
	"",
	"Editing",
	"  Del      delete selection   r       rotate 90°",
	"  Ctrl+Z   undo               Ctrl+Y  redo",
	"  Ctrl+A   select all         e       edit label/text",
	"  Shift+click  add to selection",
	"",
	"View",
	"  + -  zoom   0  reset   arrows  pan   wheel  zoom at pointer",
	"  g  grid     f  feature snap    middle-drag  pan",
	"",
	"Layers",
	"  Tab  next layer   n  new layer",
	"  v    show/hide    l  lock/unlock",
	"",
	"Files",
	"  Ctrl+S save   Ctrl+O open   Ctrl+E export   Ctrl+Q quit",
}

func (a *App) drawHelp(w, h int) {
	boxW := min(64, w-2)
	boxH := min(len(helpLines)+4, h-2)
	startX := max((w-boxW)/2, 0)
	startY := max((h-boxH)/2, 0)

	a.drawTitledBox(startX, startY, boxW, boxH, "Help")
	for i := 0; i < boxH-4; i++ {
		n := i + a.helpScrollOffset
		if n >= len(helpLines) {
			break
		}
		a.drawString(startX+2, startY+2+i, truncate(helpLines[n], boxW-4), styleMenu)
	}
}

// drawTitledBox draws a bordered box with optional title
func (a *App) drawTitledBox(x, y, w, h int, title string) {
	a.screen.SetContent(x, y, '┌', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		a.screen.SetContent(x+i, y, '─', nil, styleBorder)
	}
	a.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)

	if title != "" {
		titleX := x + (w-len(title)-2)/2
		a.screen.SetContent(titleX, y, ' ', nil, styleBorder)
		a.drawString(titleX+1, y, title, styleSidebarH)
		a.screen.SetContent(titleX+1+len(title), y, ' ', nil, styleBorder)
	}

	for row := 1; row < h-1; row++ {
		a.screen.SetContent(x, y+row, '│', nil, styleBorder)
		for col := 1; col < w-1; col++ {
			a.screen.SetContent(x+col, y+row, ' ', nil, styleDefault)
		}
		a.screen.SetContent(x+w-1, y+row, '│', nil, styleBorder)
	}

	a.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		a.screen.SetContent(x+i, y+h-1, '─', nil, styleBorder)
	}
	a.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
}

func (a *App) drawInputBox(w, h int) {
	boxW := min(60, w)
	boxX := (w - boxW) / 2
	boxY := (h - 3) / 2

	a.drawTitledBox(boxX, boxY, boxW, 3, "")
	for col := boxX + 1; col < boxX+boxW-1; col++ {
		a.screen.SetContent(col, boxY+1, ' ', nil, styleInput)
	}
	line := a.inputPrompt + a.inputBuffer + "_"
	if r := []rune(line); len(r) > boxW-4 {
		line = string(r[len(r)-(boxW-4):])
	}
	a.drawString(boxX+2, boxY+1, line, styleInput)
}

func (a *App) drawString(x, y int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		a.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func (a *App) modeString() string {
	switch a.mode {
	case ModeMenu:
		return "MENU"
	case ModeInput:
		return "INPUT"
	case ModePalette:
		return "COMPONENTS"
	case ModeHelp:
		return "HELP"
	}
	if a.ed.State() == editor.StateIdle {
		return ""
	}
	return strings.ToUpper(a.ed.State().String())
}

func (a *App) helpString() string {
	switch a.mode {
	case ModeMenu, ModePalette:
		return "↑↓:Select  Enter:Confirm  Esc:Canvas"
	case ModeInput:
		return "Type text  Enter:Confirm  Esc:Cancel"
	case ModeHelp:
		return "↑↓:Scroll  any key:Close"
	}
	return "s:Select w:Wire c:Component t:Text x:Erase p:Pan  r:Rotate Del:Delete  ?:Help  Esc:Menu"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}
