package main

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/gg"
)

// Sub-cell resolution of the canvas. The editor works in dots; one
// terminal cell is dotsX by dotsY dots.
const (
	dotsX = 8
	dotsY = 16
)

// cellSurface rasterises render calls onto a rectangle of terminal cells.
type cellSurface struct {
	screen tcell.Screen
	x0, y0 int // top-left cell
	cols   int
	rows   int

	m      gg.Matrix
	stack  []gg.Matrix
	color  tcell.Color
	dashed bool
	font   float64 // font size in dots

	paths   [][]gg.Point // device-space subpaths
	cur     []gg.Point
	circles []circle
}

type circle struct {
	c gg.Point
	r float64
}

func newCellSurface(screen tcell.Screen, x0, y0, cols, rows int) *cellSurface {
	return &cellSurface{
		screen: screen,
		x0:     x0,
		y0:     y0,
		cols:   cols,
		rows:   rows,
		m:      gg.Identity(),
		color:  tcell.ColorWhite,
	}
}

func (s *cellSurface) Width() int  { return s.cols * dotsX }
func (s *cellSurface) Height() int { return s.rows * dotsY }

func (s *cellSurface) Clear() {
	s.newPath()
	s.stack = s.stack[:0]
	s.m = gg.Identity()
	for y := 0; y < s.rows; y++ {
		for x := 0; x < s.cols; x++ {
			s.screen.SetContent(s.x0+x, s.y0+y, ' ', nil, styleDefault)
		}
	}
}

func (s *cellSurface) Push() { s.stack = append(s.stack, s.m) }

func (s *cellSurface) Pop() {
	if n := len(s.stack); n > 0 {
		s.m = s.stack[n-1]
		s.stack = s.stack[:n-1]
	}
}

func (s *cellSurface) Transform(m gg.Matrix)  { s.m = s.m.Multiply(m) }
func (s *cellSurface) Translate(x, y float64) { s.Transform(gg.Translate(x, y)) }
func (s *cellSurface) Rotate(angle float64)   { s.Transform(gg.Rotate(angle)) }

func (s *cellSurface) SetHexColor(hex string)     { s.color = tcell.GetColor(hex) }
func (s *cellSurface) SetLineWidth(float64)       {}
func (s *cellSurface) SetDash(lengths ...float64) { s.dashed = len(lengths) > 0 }
func (s *cellSurface) ClearDash()                 { s.dashed = false }
func (s *cellSurface) SetFontSize(size float64)   { s.font = size * s.scale() }

func (s *cellSurface) scale() float64 {
	return math.Sqrt(math.Abs(s.m.A*s.m.E - s.m.B*s.m.D))
}

func (s *cellSurface) point(x, y float64) gg.Point {
	return s.m.TransformPoint(gg.Pt(x, y))
}

func (s *cellSurface) MoveTo(x, y float64) {
	if len(s.cur) > 0 {
		s.paths = append(s.paths, s.cur)
	}
	s.cur = []gg.Point{s.point(x, y)}
}

func (s *cellSurface) LineTo(x, y float64) {
	if len(s.cur) == 0 {
		s.MoveTo(x, y)
		return
	}
	s.cur = append(s.cur, s.point(x, y))
}

func (s *cellSurface) ClosePath() {
	if len(s.cur) > 1 {
		s.cur = append(s.cur, s.cur[0])
	}
}

func (s *cellSurface) DrawLine(x1, y1, x2, y2 float64) {
	s.MoveTo(x1, y1)
	s.LineTo(x2, y2)
}

func (s *cellSurface) DrawRectangle(x, y, w, h float64) {
	s.MoveTo(x, y)
	s.LineTo(x+w, y)
	s.LineTo(x+w, y+h)
	s.LineTo(x, y+h)
	s.ClosePath()
}

func (s *cellSurface) DrawCircle(x, y, r float64) {
	s.circles = append(s.circles, circle{c: s.point(x, y), r: r * s.scale()})
}

func (s *cellSurface) newPath() {
	s.paths = s.paths[:0]
	s.cur = nil
	s.circles = s.circles[:0]
}

func (s *cellSurface) flush() [][]gg.Point {
	if len(s.cur) > 0 {
		s.paths = append(s.paths, s.cur)
		s.cur = nil
	}
	return s.paths
}

// Stroke draws each segment with box-drawing characters.
func (s *cellSurface) Stroke() error {
	for _, p := range s.flush() {
		for i := 1; i < len(p); i++ {
			s.segment(p[i-1], p[i])
		}
	}
	for _, c := range s.circles {
		if c.r < dotsX {
			s.plot(c.c, 'o')
			continue
		}
		s.ring(c, func(a, b gg.Point) { s.segment(a, b) })
	}
	s.newPath()
	return nil
}

// Fill paints the cells whose centres fall inside the path.
func (s *cellSurface) Fill() error {
	for _, p := range s.flush() {
		s.fillPolygon(p)
	}
	for _, c := range s.circles {
		if c.r < dotsX {
			s.plot(c.c, '●')
			continue
		}
		var poly []gg.Point
		s.ring(c, func(a, _ gg.Point) { poly = append(poly, a) })
		s.fillPolygon(poly)
	}
	s.newPath()
	return nil
}

func (s *cellSurface) ring(c circle, seg func(a, b gg.Point)) {
	const n = 16
	for i := 0; i < n; i++ {
		a0 := 2 * math.Pi * float64(i) / n
		a1 := 2 * math.Pi * float64(i+1) / n
		seg(gg.Pt(c.c.X+c.r*math.Cos(a0), c.c.Y+c.r*math.Sin(a0)),
			gg.Pt(c.c.X+c.r*math.Cos(a1), c.c.Y+c.r*math.Sin(a1)))
	}
}

func (s *cellSurface) fillPolygon(p []gg.Point) {
	if len(p) < 3 {
		return
	}
	lo, hi := p[0], p[0]
	for _, q := range p[1:] {
		lo.X, lo.Y = min(lo.X, q.X), min(lo.Y, q.Y)
		hi.X, hi.Y = max(hi.X, q.X), max(hi.Y, q.Y)
	}
	c0, r0 := int(math.Floor(lo.X/dotsX)), int(math.Floor(lo.Y/dotsY))
	c1, r1 := int(math.Floor(hi.X/dotsX)), int(math.Floor(hi.Y/dotsY))
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, s.cols-1), min(r1, s.rows-1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			centre := gg.Pt((float64(col)+0.5)*dotsX, (float64(row)+0.5)*dotsY)
			if inside(p, centre) {
				s.screen.SetContent(s.x0+col, s.y0+row, ' ', nil, styleDefault.Background(s.color))
			}
		}
	}
}

// inside is an even-odd point-in-polygon test.
func inside(p []gg.Point, q gg.Point) bool {
	in := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > q.Y) != (b.Y > q.Y) && q.X < (b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// segment plots the cells a device-space segment passes through.
func (s *cellSurface) segment(a, b gg.Point) {
	dx := (b.X - a.X) / dotsX
	dy := (b.Y - a.Y) / dotsY
	r := lineRune(dx, dy, s.dashed)
	steps := int(math.Ceil(max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		s.plot(a, r)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s.plot(gg.Pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t), r)
	}
}

// lineRune picks the character for a segment with the given cell slope.
func lineRune(dx, dy float64, dashed bool) rune {
	ax, ay := math.Abs(dx), math.Abs(dy)
	switch {
	case ay <= ax*0.4:
		if dashed {
			return '╌'
		}
		return '─'
	case ax <= ay*0.4:
		if dashed {
			return '┆'
		}
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// plot writes r into the cell holding device point p, keeping the cell's
// background and joining crossing lines.
func (s *cellSurface) plot(p gg.Point, r rune) {
	col, row := int(math.Floor(p.X/dotsX)), int(math.Floor(p.Y/dotsY))
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return
	}
	x, y := s.x0+col, s.y0+row
	old, _, style, _ := s.screen.GetContent(x, y)
	if (old == '─' && r == '│') || (old == '│' && r == '─') {
		r = '┼'
	}
	s.screen.SetContent(x, y, r, nil, style.Foreground(s.color))
}

// DrawStringAnchored writes s on the row holding the anchor point. Text
// smaller than half a cell is skipped.
func (s *cellSurface) DrawStringAnchored(str string, x, y, ax, ay float64) {
	if s.font > 0 && s.font < dotsY/2 {
		return
	}
	p := s.point(x, y)
	runes := []rune(str)
	col := int(math.Floor(p.X/dotsX - ax*float64(len(runes)) + 0.5))
	row := int(math.Floor(p.Y / dotsY))
	if row < 0 || row >= s.rows {
		return
	}
	for i, r := range runes {
		c := col + i
		if c < 0 || c >= s.cols {
			continue
		}
		_, _, style, _ := s.screen.GetContent(s.x0+c, s.y0+row)
		s.screen.SetContent(s.x0+c, s.y0+row, r, nil, style.Foreground(s.color))
	}
}
