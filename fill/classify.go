package fill

import (
	"math"

	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/text"
)

// PageContext is the page view the classifiers query
type PageContext interface {
	RulingsIn(r model.Rect) []model.Ruling
	TextRunsIn(r model.Rect) []*text.Run
}

// regularityCV is the coefficient of variation under which group extents are
// considered evenly sized
const regularityCV = 0.2

// IsPossibleTableRegion decides whether groups look like table shading
// rather than a chart. The checks run in a fixed order and the first one
// that matches decides; nothing matching means chart.
func IsPossibleTableRegion(ctx PageContext, groups []*Group) bool {
	if len(groups) < 2 {
		return false
	}

	ref := groups[0]
	for _, g := range groups[1:] {
		if g.Length() > ref.Length() {
			ref = g
		}
	}
	vertical := ref.IsVertical()
	refRect := ref.Bounds()

	// Evenly sized bands.
	extents := make([]float64, len(groups))
	for i, g := range groups {
		if vertical {
			extents[i] = g.Bounds().Height
		} else {
			extents[i] = g.Bounds().Width
		}
	}
	mean, std := meanStd(extents)
	if mean > 0 && std < regularityCV*mean {
		return true
	}

	// Cross-axis stacking.
	hNum, vNum := 0, 0
	for _, g := range groups {
		if g.Bounds().HorizontalOverlap(refRect) > 0 {
			hNum++
		}
		if g.Bounds().VerticalOverlap(refRect) > 0 {
			vNum++
		}
	}
	if (vertical && vNum < hNum) || (!vertical && hNum < vNum) {
		return true
	}

	// Shaded rows with grid lines and text.
	bounds, _ := BoundingBox(groups)
	if MostCommonColorCount(groups) > 1 &&
		model.HasIntersections(ctx.RulingsIn(bounds)) &&
		len(ctx.TextRunsIn(bounds)) >= 2*len(groups) {
		return true
	}

	return false
}

// IsDense reports whether every group touches, or lies close to, at least
// one other group. Fewer than two groups are never dense.
func IsDense(groups []*Group) bool {
	if len(groups) < 2 {
		return false
	}

	var sum, maxSpan float64
	for _, g := range groups {
		span := math.Min(g.Bounds().Width, g.Bounds().Height)
		sum += span
		maxSpan = math.Max(maxSpan, span)
	}
	avgSpan := sum / float64(len(groups))
	threshold := 2.5 * (avgSpan + maxSpan) / 2

	for i, g := range groups {
		found := false
		for j, other := range groups {
			if i == j {
				continue
			}
			if g.Bounds().Intersects(other.Bounds()) || g.Bounds().Gap(other.Bounds()) < threshold {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// meanStd returns the mean and population standard deviation of values
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
