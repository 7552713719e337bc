// Geometric primitives shared by the store, the editor and the exporters.

package diagram

import "math"

// Point represents a 2D coordinate in world units.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rotate returns p rotated about the origin by the given angle in degrees,
// rounded to the nearest quarter turn. Y grows downward, so a positive
// angle turns clockwise on screen.
func (p Point) Rotate(degrees float64) Point {
	q := int(math.Round(degrees/90)) % 4
	if q < 0 {
		q += 4
	}
	for ; q > 0; q-- {
		p = Point{-p.Y, p.X}
	}
	return p
}

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Center
	W, H float64 // Full width and height
}

// Min returns the top-left corner.
func (r Rect) Min() Point {
	return Point{r.X - r.W/2, r.Y - r.H/2}
}

// Max returns the bottom-right corner.
func (r Rect) Max() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return math.Abs(p.X-r.X) <= r.W/2 && math.Abs(p.Y-r.Y) <= r.H/2
}

// EdgeMidpoints returns the midpoints of the top, right, bottom and left edges.
func (r Rect) EdgeMidpoints() [4]Point {
	return [4]Point{
		{r.X, r.Y - r.H/2},
		{r.X + r.W/2, r.Y},
		{r.X, r.Y + r.H/2},
		{r.X - r.W/2, r.Y},
	}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	a, b := r.Min(), r.Max()
	c, d := o.Min(), o.Max()
	minX, minY := math.Min(a.X, c.X), math.Min(a.Y, c.Y)
	maxX, maxY := math.Max(b.X, d.X), math.Max(b.Y, d.Y)
	return Rect{(minX + maxX) / 2, (minY + maxY) / 2, maxX - minX, maxY - minY}
}

// RectFromPoints returns the bounding rectangle of two corner points.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

// RectOverlap returns the overlap area between two rectangles.
// Returns 0 if they don't overlap; touching edges do not overlap.
func RectOverlap(a, b Rect) float64 {
	aHalfW, aHalfH := a.W/2, a.H/2
	bHalfW, bHalfH := b.W/2, b.H/2

	dx := math.Abs(a.X - b.X)
	dy := math.Abs(a.Y - b.Y)

	overlapX := (aHalfW + bHalfW) - dx
	overlapY := (aHalfH + bHalfH) - dy

	if overlapX <= 0 || overlapY <= 0 {
		return 0
	}

	return overlapX * overlapY
}

// SegmentDistance returns the perpendicular distance from p to the segment ab,
// clamped to the segment endpoints.
func SegmentDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{a.X + t*dx, a.Y + t*dy})
}

// LabelPlacer manages label placement with collision avoidance.
type LabelPlacer struct {
	obstacles []Rect
}

// NewLabelPlacer creates a LabelPlacer with initial obstacles (component boxes).
func NewLabelPlacer(boxes []Rect) *LabelPlacer {
	obstacles := make([]Rect, len(boxes))
	copy(obstacles, boxes)
	return &LabelPlacer{obstacles: obstacles}
}

// PlaceLabel finds the best position for a label near a box.
// Returns the center position for the label.
func (lp *LabelPlacer) PlaceLabel(box Rect, labelW, labelH, gap float64) Point {
	candidates := []Point{
		{box.X, box.Y + box.H/2 + labelH/2 + gap},             // below
		{box.X, box.Y - box.H/2 - labelH/2 - gap},             // above
		{box.X + box.W/2 + labelW/2 + gap, box.Y},             // right
		{box.X - box.W/2 - labelW/2 - gap, box.Y},             // left
		{box.X + box.W/2 + labelW/2 + gap, box.Y - box.H/2},   // top-right
		{box.X - box.W/2 - labelW/2 - gap, box.Y + box.H/2},   // bottom-left
	}

	bestPos := candidates[0]
	bestOverlap := math.MaxFloat64

	for _, pos := range candidates {
		labelRect := Rect{pos.X, pos.Y, labelW, labelH}

		totalOverlap := 0.0
		for _, obs := range lp.obstacles {
			totalOverlap += RectOverlap(labelRect, obs)
		}

		if totalOverlap == 0 {
			lp.obstacles = append(lp.obstacles, labelRect)
			return pos
		}

		if totalOverlap < bestOverlap {
			bestOverlap = totalOverlap
			bestPos = pos
		}
	}

	lp.obstacles = append(lp.obstacles, Rect{bestPos.X, bestPos.Y, labelW, labelH})
	return bestPos
}
