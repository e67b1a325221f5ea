package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle in page space.
//
// The origin is the top-left corner of the page and Y grows downward, so
// Top() is the smaller Y value and Bottom() the larger one.
type Rect struct {
	X      float64 // Left
	Y      float64 // Top
	Width  float64
	Height float64
}

// NewRect creates a rectangle from its top-left corner and size
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromEdges creates a rectangle from its four edges
func RectFromEdges(left, top, right, bottom float64) Rect {
	return Rect{
		X:      math.Min(left, right),
		Y:      math.Min(top, bottom),
		Width:  math.Abs(right - left),
		Height: math.Abs(bottom - top),
	}
}

// Left returns the left edge X coordinate
func (r Rect) Left() float64 { return r.X }

// Right returns the right edge X coordinate
func (r Rect) Right() float64 { return r.X + r.Width }

// Top returns the top edge Y coordinate
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the bottom edge Y coordinate
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the area of the rectangle
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// IsEmpty returns true if the rectangle has zero area
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ContainsPoint checks if a point lies inside the rectangle, edges included
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() &&
		p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Contains checks if other lies fully inside r, edges included
func (r Rect) Contains(other Rect) bool {
	return other.Left() >= r.Left() && other.Right() <= r.Right() &&
		other.Top() >= r.Top() && other.Bottom() <= r.Bottom()
}

// Intersects checks if two rectangles overlap. Touching edges count.
func (r Rect) Intersects(other Rect) bool {
	return !(r.Right() < other.Left() ||
		r.Left() > other.Right() ||
		r.Bottom() < other.Top() ||
		r.Top() > other.Bottom())
}

// Intersection returns the overlapping part of two rectangles
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}
	return RectFromEdges(
		math.Max(r.Left(), other.Left()),
		math.Max(r.Top(), other.Top()),
		math.Min(r.Right(), other.Right()),
		math.Min(r.Bottom(), other.Bottom()),
	)
}

// Union returns the smallest rectangle covering both rectangles
func (r Rect) Union(other Rect) Rect {
	return RectFromEdges(
		math.Min(r.Left(), other.Left()),
		math.Min(r.Top(), other.Top()),
		math.Max(r.Right(), other.Right()),
		math.Max(r.Bottom(), other.Bottom()),
	)
}

// Expand grows the rectangle by margin on all sides
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// HorizontalOverlap returns the length shared by the two X ranges
func (r Rect) HorizontalOverlap(other Rect) float64 {
	return math.Max(0, math.Min(r.Right(), other.Right())-math.Max(r.Left(), other.Left()))
}

// VerticalOverlap returns the length shared by the two Y ranges
func (r Rect) VerticalOverlap(other Rect) float64 {
	return math.Max(0, math.Min(r.Bottom(), other.Bottom())-math.Max(r.Top(), other.Top()))
}

// HorizontalOverlapRatio returns the X overlap divided by the narrower width
func (r Rect) HorizontalOverlapRatio(other Rect) float64 {
	return ratio(r.HorizontalOverlap(other), math.Min(r.Width, other.Width))
}

// VerticalOverlapRatio returns the Y overlap divided by the shorter height
func (r Rect) VerticalOverlapRatio(other Rect) float64 {
	return ratio(r.VerticalOverlap(other), math.Min(r.Height, other.Height))
}

// OverlapRatio returns intersection over union of the two areas
func (r Rect) OverlapRatio(other Rect) float64 {
	inter := r.HorizontalOverlap(other) * r.VerticalOverlap(other)
	return ratio(inter, r.Area()+other.Area()-inter)
}

// CoverageOf returns the share of other's area that lies inside r
func (r Rect) CoverageOf(other Rect) float64 {
	inter := r.HorizontalOverlap(other) * r.VerticalOverlap(other)
	return ratio(inter, other.Area())
}

// Gap returns the shortest distance between the edges of two rectangles.
// Intersecting rectangles have a gap of zero.
func (r Rect) Gap(other Rect) float64 {
	dx := math.Max(0, math.Max(r.Left(), other.Left())-math.Min(r.Right(), other.Right()))
	dy := math.Max(0, math.Max(r.Top(), other.Top())-math.Min(r.Bottom(), other.Bottom()))
	return math.Hypot(dx, dy)
}

// IsAdjacent reports whether the gap between two rectangles is below threshold
func (r Rect) IsAdjacent(other Rect, threshold float64) bool {
	return r.Gap(other) < threshold
}

// UnionAll returns the bounding rectangle of rects, or false when rects is empty
func UnionAll(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	bounds := rects[0]
	for _, r := range rects[1:] {
		bounds = bounds.Union(r)
	}
	return bounds, true
}

// FloatEqual reports whether a and b differ by at most tolerance
func FloatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func ratio(num, denom float64) float64 {
	if denom <= 0 {
		return 0
	}
	return num / denom
}
