package model

import "math"

// Color represents an RGB color
type Color struct {
	R, G, B uint8
}

// NearlyEqual reports whether every channel differs by at most tolerance
func (c Color) NearlyEqual(other Color, tolerance float64) bool {
	return math.Abs(float64(c.R)-float64(other.R)) <= tolerance &&
		math.Abs(float64(c.G)-float64(other.G)) <= tolerance &&
		math.Abs(float64(c.B)-float64(other.B)) <= tolerance
}

// IsNearWhite reports whether all channels are close to 255
func (c Color) IsNearWhite() bool {
	return c.NearlyEqual(Color{R: 255, G: 255, B: 255}, 10)
}

// IsNearBlack reports whether all channels are close to 0
func (c Color) IsNearBlack() bool {
	return c.NearlyEqual(Color{}, 10)
}

// Shape is the kind of path a fill area was painted from
type Shape int

const (
	// ShapeRect is an axis-aligned rectangle
	ShapeRect Shape = iota
	// ShapeSector is a curved path such as a pie slice
	ShapeSector
)

func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "Rect"
	case ShapeSector:
		return "Sector"
	default:
		return "Unknown"
	}
}

// FillArea is one filled shape on the page
type FillArea struct {
	Rect  Rect
	Color Color
	Shape Shape
}

// Bounds returns the rectangle covered by the fill
func (f FillArea) Bounds() Rect { return f.Rect }
