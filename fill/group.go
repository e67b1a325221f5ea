package fill

import (
	"math"

	"github.com/tsawler/tabextract/model"
)

// colorTolerance is the per-channel distance under which two fill colors
// are treated as the same color
const colorTolerance = 1.5

// legendMaxSize bounds both sides of a legend marker
const legendMaxSize = 15.0

// AreaType is the kind of chart element a group was built from
type AreaType int

const (
	// AreaOther is a group of unknown origin
	AreaOther AreaType = iota
	// AreaBar is a group of rectangular fills
	AreaBar
	// AreaPie is a group of sector fills
	AreaPie
)

func (t AreaType) String() string {
	switch t {
	case AreaBar:
		return "Bar"
	case AreaPie:
		return "Pie"
	default:
		return "Other"
	}
}

// Group is an ordered set of fill areas treated as one visual unit,
// typically one bar of a bar chart or one pie.
type Group struct {
	areas  []model.FillArea
	rect   model.Rect
	typ    AreaType
	colors []model.Color
}

// NewGroup creates a group whose bounds are the union of the member areas.
// The areas are copied.
func NewGroup(typ AreaType, areas ...model.FillArea) *Group {
	g := &Group{
		areas: append([]model.FillArea(nil), areas...),
		typ:   typ,
	}
	for i, a := range g.areas {
		if i == 0 {
			g.rect = a.Rect
			continue
		}
		g.rect = g.rect.Union(a.Rect)
	}
	return g
}

// Areas returns the member fill areas in insertion order
func (g *Group) Areas() []model.FillArea { return g.areas }

// Bounds returns the group's bounding rectangle
func (g *Group) Bounds() model.Rect { return g.rect }

// Type returns the kind of fills the group was built from
func (g *Group) Type() AreaType { return g.typ }

// Length returns the longer side of the group rectangle
func (g *Group) Length() float64 {
	return math.Max(g.rect.Width, g.rect.Height)
}

// IsVertical reports whether the group is taller than it is wide
func (g *Group) IsVertical() bool {
	return g.rect.Height > g.rect.Width
}

// IsLegend reports whether the group looks like a small square legend marker
func (g *Group) IsLegend() bool {
	return model.FloatEqual(g.rect.Width, g.rect.Height, 1.0) &&
		g.rect.Width < legendMaxSize && g.rect.Height < legendMaxSize
}

// ColorSet returns the deduplicated member colors. The result is cached.
func (g *Group) ColorSet() []model.Color {
	if g.colors == nil {
		g.colors = ColorSet(g.areas)
	}
	return g.colors
}

// ColorCount returns the number of distinct member colors
func (g *Group) ColorCount() int {
	return len(g.ColorSet())
}

// NearlyEqualColor reports whether two groups carry the same color set
// under tolerance: equal set sizes and every color matched in the other set.
func (g *Group) NearlyEqualColor(other *Group, tolerance float64) bool {
	a, b := g.ColorSet(), other.ColorSet()
	if len(a) != len(b) {
		return false
	}
	for _, c := range a {
		if !containsColor(b, c, tolerance) {
			return false
		}
	}
	for _, c := range b {
		if !containsColor(a, c, tolerance) {
			return false
		}
	}
	return true
}

// ColorSet reduces the colors of areas to a set. A color within tolerance
// of an already accepted color is folded into it; the first one seen wins.
func ColorSet(areas []model.FillArea) []model.Color {
	set := make([]model.Color, 0, len(areas))
	for _, a := range areas {
		if !containsColor(set, a.Color, colorTolerance) {
			set = append(set, a.Color)
		}
	}
	return set
}

func containsColor(set []model.Color, c model.Color, tolerance float64) bool {
	for _, s := range set {
		if s.NearlyEqual(c, tolerance) {
			return true
		}
	}
	return false
}

// AllNearlyEqualColor reports whether every pair of groups has the same
// color set
func AllNearlyEqualColor(groups []*Group) bool {
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			if !groups[i].NearlyEqualColor(groups[j], colorTolerance) {
				return false
			}
		}
	}
	return true
}

// MostCommonColorCount returns the modal distinct-color count across groups.
// Ties go to the count seen first. Zero groups yields zero.
func MostCommonColorCount(groups []*Group) int {
	counts := make(map[int]int)
	var order []int
	for _, g := range groups {
		n := g.ColorCount()
		if _, ok := counts[n]; !ok {
			order = append(order, n)
		}
		counts[n]++
	}

	best, bestFreq := 0, 0
	for _, n := range order {
		if counts[n] > bestFreq {
			best, bestFreq = n, counts[n]
		}
	}
	return best
}

// BoundingBox returns the union of the group rectangles
func BoundingBox(groups []*Group) (model.Rect, bool) {
	rects := make([]model.Rect, len(groups))
	for i, g := range groups {
		rects[i] = g.rect
	}
	return model.UnionAll(rects)
}
