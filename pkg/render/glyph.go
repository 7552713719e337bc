package render

import "math"

// pen wraps a Surface and keeps the first paint error.
type pen struct {
	s   Surface
	err error
}

func (p *pen) stroke() {
	if err := p.s.Stroke(); err != nil && p.err == nil {
		p.err = err
	}
}

func (p *pen) fill() {
	if err := p.s.Fill(); err != nil && p.err == nil {
		p.err = err
	}
}

func (p *pen) line(x1, y1, x2, y2 float64) {
	p.s.DrawLine(x1, y1, x2, y2)
	p.stroke()
}

func (p *pen) poly(closed bool, pts ...float64) {
	p.s.MoveTo(pts[0], pts[1])
	for i := 2; i+1 < len(pts); i += 2 {
		p.s.LineTo(pts[i], pts[i+1])
	}
	if closed {
		p.s.ClosePath()
	}
}

// Glyph draws a component symbol centred on the origin inside a w×h box,
// using the current colour and line width.
type Glyph func(p *pen, w, h float64)

// glyphs is the symbol table by component type.
var glyphs = map[string]Glyph{
	"resistor":   resistorGlyph,
	"capacitor":  capacitorGlyph,
	"inductor":   inductorGlyph,
	"diode":      diodeGlyph,
	"led":        ledGlyph,
	"battery":    batteryGlyph,
	"ground":     groundGlyph,
	"switch":     switchGlyph,
	"lamp":       lampGlyph,
	"transistor": transistorGlyph,
	"and":        gateGlyph(false, false),
	"nand":       gateGlyph(false, true),
	"or":         gateGlyph(true, false),
	"nor":        gateGlyph(true, true),
	"xor":        xorGlyph,
	"not":        notGlyph,
	"input":      portGlyph(true),
	"output":     portGlyph(false),
}

// HasGlyph reports whether typ has a dedicated symbol.
func HasGlyph(typ string) bool {
	_, ok := glyphs[typ]
	return ok
}

func resistorGlyph(p *pen, w, h float64) {
	hw, lead := w/2, w/6
	p.line(-hw, 0, -hw+lead, 0)
	p.line(hw-lead, 0, hw, 0)
	body := w - 2*lead
	pts := []float64{-hw + lead, 0}
	for i := 1; i <= 6; i++ {
		y := h / 2
		if i%2 == 0 {
			y = -h / 2
		}
		if i == 6 {
			y = 0
		}
		pts = append(pts, -hw+lead+body*float64(i)/6, y)
	}
	p.poly(false, pts...)
	p.stroke()
}

func capacitorGlyph(p *pen, w, h float64) {
	gap := w / 8
	p.line(-w/2, 0, -gap, 0)
	p.line(gap, 0, w/2, 0)
	p.line(-gap, -h/2, -gap, h/2)
	p.line(gap, -h/2, gap, h/2)
}

func inductorGlyph(p *pen, w, h float64) {
	hw := w / 2
	loops := 4
	r := w / float64(2*loops+2)
	p.line(-hw, 0, -hw+r, 0)
	p.line(hw-r, 0, hw, 0)
	for i := 0; i < loops; i++ {
		cx := -hw + r + r + float64(i)*2*r
		p.s.MoveTo(cx-r, 0)
		for a := 1; a <= 8; a++ {
			t := math.Pi - float64(a)*math.Pi/8
			p.s.LineTo(cx+r*math.Cos(t), -min(r, h/2)*math.Sin(t))
		}
		p.stroke()
	}
}

func diodeGlyph(p *pen, w, h float64) {
	s := h / 2
	p.line(-w/2, 0, -s, 0)
	p.line(s, 0, w/2, 0)
	p.poly(true, -s, -s, s, 0, -s, s)
	p.fill()
	p.line(s, -s, s, s)
}

func ledGlyph(p *pen, w, h float64) {
	diodeGlyph(p, w, h*0.7)
	for _, x := range []float64{0, h / 4} {
		p.line(x, -h/2*0.7, x+h/4, -h/2)
		p.line(x+h/4, -h/2, x+h/8, -h/2)
	}
}

func batteryGlyph(p *pen, w, h float64) {
	gap := h / 10
	p.line(0, -h/2, 0, -gap)
	p.line(0, gap, 0, h/2)
	p.line(-w/2, -gap, w/2, -gap)
	p.line(-w/4, gap, w/4, gap)
}

func groundGlyph(p *pen, w, h float64) {
	p.line(0, -h/2, 0, 0)
	for i, f := range []float64{1, 0.6, 0.25} {
		y := float64(i) * h / 6
		p.line(-w/2*f, y, w/2*f, y)
	}
}

func switchGlyph(p *pen, w, h float64) {
	hw := w / 2
	p.line(-hw, 0, -hw/3, 0)
	p.line(hw/3, 0, hw, 0)
	p.line(-hw/3, 0, hw/3, -h/2)
	p.s.DrawCircle(-hw/3, 0, 2)
	p.fill()
}

func lampGlyph(p *pen, w, h float64) {
	r := min(w, h) / 2
	p.s.DrawCircle(0, 0, r)
	p.stroke()
	d := r * math.Sqrt2 / 2
	p.line(-d, -d, d, d)
	p.line(-d, d, d, -d)
}

func transistorGlyph(p *pen, w, h float64) {
	r := min(w, h) / 2
	p.s.DrawCircle(0, 0, r)
	p.stroke()
	p.line(-w/2, 0, -r/3, 0)
	p.line(-r/3, -r/2, -r/3, r/2)
	p.line(-r/3, -r/4, w/4, -h/2)
	p.line(-r/3, r/4, w/4, h/2)
}

// gateGlyph returns an AND or OR body, optionally with an inverting bubble.
func gateGlyph(curved, inverted bool) Glyph {
	return func(p *pen, w, h float64) {
		hw, hh := w/2, h/2
		body := hw
		if inverted {
			body = hw - 6
		}
		// inputs and output
		p.line(-hw, -h/4, -hw*0.6, -h/4)
		p.line(-hw, h/4, -hw*0.6, h/4)
		p.line(body, 0, hw, 0)

		left := -hw * 0.6
		if curved {
			p.s.MoveTo(left, -hh)
			for a := 0; a <= 12; a++ {
				t := -math.Pi/2 + float64(a)*math.Pi/12
				p.s.LineTo(left+(body-left)*math.Cos(t), hh*math.Sin(t))
			}
			for a := 0; a <= 6; a++ {
				t := math.Pi/2 - float64(a)*math.Pi/6
				p.s.LineTo(left+hw*0.2*math.Cos(t), hh*math.Sin(t))
			}
		} else {
			mid := left + (body-left)/2
			r := body - mid
			p.s.MoveTo(left, -hh)
			p.s.LineTo(mid, -hh)
			for a := 0; a <= 12; a++ {
				t := -math.Pi/2 + float64(a)*math.Pi/12
				p.s.LineTo(mid+r*math.Cos(t), hh*math.Sin(t))
			}
			p.s.LineTo(left, hh)
			p.s.ClosePath()
		}
		p.stroke()
		if inverted {
			p.s.DrawCircle(body+3, 0, 3)
			p.stroke()
		}
	}
}

func xorGlyph(p *pen, w, h float64) {
	gateGlyph(true, false)(p, w, h)
	left := -w/2*0.6 - 5
	p.s.MoveTo(left, -h/2)
	for a := 0; a <= 6; a++ {
		t := -math.Pi/2 + float64(a)*math.Pi/6
		p.s.LineTo(left+w*0.1*math.Cos(t), h/2*math.Sin(t))
	}
	p.stroke()
}

func notGlyph(p *pen, w, h float64) {
	hw := w / 2
	tip := hw - 8
	p.line(-hw, 0, -hw/2, 0)
	p.poly(true, -hw/2, -h/2, tip, 0, -hw/2, h/2)
	p.stroke()
	p.s.DrawCircle(tip+3, 0, 3)
	p.stroke()
	p.line(tip+6, 0, hw, 0)
}

// portGlyph draws a pointed terminal; inputs point right, outputs left.
func portGlyph(input bool) Glyph {
	return func(p *pen, w, h float64) {
		hw, hh := w/2, h/2
		if input {
			p.poly(true, -hw, -hh, hw-hh, -hh, hw, 0, hw-hh, hh, -hw, hh)
		} else {
			p.poly(true, -hw, 0, -hw+hh, -hh, hw, -hh, hw, hh, -hw+hh, hh)
		}
		p.stroke()
	}
}

// boxGlyph is the fallback for types without a symbol.
func boxGlyph(p *pen, w, h float64) {
	p.s.DrawRectangle(-w/2, -h/2, w, h)
	p.stroke()
}
