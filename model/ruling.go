package model

import "math"

// rulingTolerance is how far two rulings may miss each other and still be
// considered intersecting.
const rulingTolerance = 1.0

// Ruling is a straight horizontal or vertical line segment on the page
type Ruling struct {
	Start Point
	End   Point
}

// NewRuling creates a ruling with its endpoints ordered left-to-right or
// top-to-bottom
func NewRuling(x1, y1, x2, y2 float64) Ruling {
	if x1 > x2 || (x1 == x2 && y1 > y2) {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}
	return Ruling{Start: Point{X: x1, Y: y1}, End: Point{X: x2, Y: y2}}
}

// HorizontalRuling creates a horizontal ruling at y spanning left to right
func HorizontalRuling(y, left, right float64) Ruling {
	return NewRuling(left, y, right, y)
}

// VerticalRuling creates a vertical ruling at x spanning top to bottom
func VerticalRuling(x, top, bottom float64) Ruling {
	return NewRuling(x, top, x, bottom)
}

// Horizontal reports whether the ruling runs along the X axis
func (r Ruling) Horizontal() bool {
	return math.Abs(r.Start.Y-r.End.Y) < rulingTolerance && !r.Vertical()
}

// Vertical reports whether the ruling runs along the Y axis
func (r Ruling) Vertical() bool {
	return math.Abs(r.Start.X-r.End.X) < rulingTolerance &&
		math.Abs(r.Start.Y-r.End.Y) >= math.Abs(r.Start.X-r.End.X)
}

// Position returns Y for a horizontal ruling and X for a vertical one
func (r Ruling) Position() float64 {
	if r.Vertical() {
		return (r.Start.X + r.End.X) / 2
	}
	return (r.Start.Y + r.End.Y) / 2
}

// Length returns the length of the segment
func (r Ruling) Length() float64 {
	return r.Start.Distance(r.End)
}

// Bounds returns the rectangle spanned by the segment. It is degenerate
// along the ruling's thin axis.
func (r Ruling) Bounds() Rect {
	return RectFromEdges(r.Start.X, r.Start.Y, r.End.X, r.End.Y)
}

// Intersects reports whether a horizontal and a vertical ruling cross
func (r Ruling) Intersects(other Ruling) bool {
	h, v := r, other
	if h.Vertical() {
		h, v = v, h
	}
	if !h.Horizontal() || !v.Vertical() {
		return false
	}
	x, y := v.Position(), h.Position()
	hb, vb := h.Bounds(), v.Bounds()
	return x >= hb.Left()-rulingTolerance && x <= hb.Right()+rulingTolerance &&
		y >= vb.Top()-rulingTolerance && y <= vb.Bottom()+rulingTolerance
}

// Crop clips the ruling to area. The second result is false when nothing
// of the ruling lies inside area.
func (r Ruling) Crop(area Rect) (Ruling, bool) {
	b := r.Bounds()
	if !area.Intersects(b) {
		return Ruling{}, false
	}
	clip := area.Intersection(b)
	if r.Vertical() {
		x := r.Position()
		return VerticalRuling(x, clip.Top(), clip.Bottom()), true
	}
	y := r.Position()
	return HorizontalRuling(y, clip.Left(), clip.Right()), true
}

// CropRulings clips every ruling to area, dropping those outside it
func CropRulings(rulings []Ruling, area Rect) []Ruling {
	var out []Ruling
	for _, r := range rulings {
		if c, ok := r.Crop(area); ok {
			out = append(out, c)
		}
	}
	return out
}

// HasIntersections reports whether any horizontal ruling crosses any
// vertical ruling
func HasIntersections(rulings []Ruling) bool {
	for i, a := range rulings {
		if !a.Horizontal() {
			continue
		}
		for j, b := range rulings {
			if i != j && b.Vertical() && a.Intersects(b) {
				return true
			}
		}
	}
	return false
}

// BorderRulings returns the four rulings along the edges of area
func BorderRulings(area Rect) []Ruling {
	return []Ruling{
		HorizontalRuling(area.Top(), area.Left(), area.Right()),
		HorizontalRuling(area.Bottom(), area.Left(), area.Right()),
		VerticalRuling(area.Left(), area.Top(), area.Bottom()),
		VerticalRuling(area.Right(), area.Top(), area.Bottom()),
	}
}
