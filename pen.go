package scritch

// Point is a pen coordinate in stage space
type Point struct {
	X, Y float64
}

// Stroke is one pen record: a polyline with a color and width. A
// stamp is encoded as exactly two identical points with Size 0; the
// renderer disambiguates on that sentinel.
type Stroke struct {
	Points []Point
	Color  Color
	Size   float64
}

// IsStamp reports whether the stroke is a stamp marker
func (s Stroke) IsStamp() bool {
	return s.Size == 0 && len(s.Points) == 2 && s.Points[0] == s.Points[1]
}

// PenLayer accumulates stroke records as sprites draw. Closed strokes
// are append-only; at most one stroke is open at a time, growing while
// the drawing sprite keeps its pen down. Records survive Start/Stop
// and are emptied only by Clear.
type PenLayer struct {
	strokes []Stroke
	open    Stroke
	drawing bool
}

// NewPenLayer creates an empty pen layer
func NewPenLayer() *PenLayer {
	return &PenLayer{}
}

// Drawing reports whether a stroke is currently open
func (p *PenLayer) Drawing() bool {
	return p.drawing
}

// Extend appends a point to the open stroke, opening a new stroke with
// the given color and size if none is open. Consecutive identical
// points are deduplicated.
func (p *PenLayer) Extend(pt Point, color Color, size float64) {
	if !p.drawing {
		p.open = Stroke{Points: []Point{pt}, Color: color, Size: size}
		p.drawing = true
		return
	}
	last := p.open.Points[len(p.open.Points)-1]
	if last != pt {
		p.open.Points = append(p.open.Points, pt)
	}
}

// Close finishes the open stroke. Strokes with fewer than two points
// are discarded.
func (p *PenLayer) Close() {
	if p.drawing && len(p.open.Points) >= 2 {
		p.strokes = append(p.strokes, p.open)
	}
	p.open = Stroke{}
	p.drawing = false
}

// Stamp appends a stamp marker at the given position
func (p *PenLayer) Stamp(pt Point, color Color) {
	p.strokes = append(p.strokes, Stroke{Points: []Point{pt, pt}, Color: color, Size: 0})
}

// Clear discards every record, including the open stroke
func (p *PenLayer) Clear() {
	p.strokes = nil
	p.open = Stroke{}
	p.drawing = false
}

// Strokes returns the recorded strokes, including the open stroke once
// it has at least two points. The returned slices are copies; callers
// may hold them across ticks.
func (p *PenLayer) Strokes() []Stroke {
	out := make([]Stroke, 0, len(p.strokes)+1)
	for _, s := range p.strokes {
		out = append(out, copyStroke(s))
	}
	if p.drawing && len(p.open.Points) >= 2 {
		out = append(out, copyStroke(p.open))
	}
	return out
}

func copyStroke(s Stroke) Stroke {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	return Stroke{Points: pts, Color: s.Color, Size: s.Size}
}
