package fill

import (
	"sort"

	"github.com/tsawler/tabextract/model"
)

const (
	// minFillSide drops slivers that are rulings drawn as fills
	minFillSide = 3.0
	// bandTolerance aligns tops (or lefts) into one band
	bandTolerance = 4.0
	// joinTolerance lets touching bars of a band join
	joinTolerance = 3.0
	// mergeOverlap is the overlap ratio above which joined bars merge
	mergeOverlap = 0.1
	// sectorGap lets nearby sectors join into one pie
	sectorGap = 4.0
)

// GroupFillAreas builds bar and pie groups from the fills of a page.
// Fills outside bounds, near-white or near-black fills and slivers are
// ignored. Rectangles overlapping a sector are treated as part of the pie
// drawing and dropped. Bar groups come first, then pie groups.
func GroupFillAreas(areas []model.FillArea, bounds model.Rect) []*Group {
	var rects, sectors []model.FillArea
	for _, a := range areas {
		if !usableFill(a, bounds) {
			continue
		}
		if a.Shape == model.ShapeSector {
			sectors = append(sectors, a)
		} else {
			rects = append(rects, a)
		}
	}

	if len(sectors) > 0 {
		kept := rects[:0]
		for _, r := range rects {
			overlapsSector := false
			for _, s := range sectors {
				if s.Rect.Intersects(r.Rect) {
					overlapsSector = true
					break
				}
			}
			if !overlapsSector {
				kept = append(kept, r)
			}
		}
		rects = kept
	}

	var groups []*Group
	groups = append(groups, groupBars(rects)...)
	groups = append(groups, groupPies(sectors)...)
	return groups
}

func usableFill(a model.FillArea, bounds model.Rect) bool {
	r := a.Rect
	if r.Left() <= bounds.Left()+1 || r.Right() > bounds.Right() ||
		r.Top() <= bounds.Top()+1 || r.Bottom() > bounds.Bottom() {
		return false
	}
	if a.Color.IsNearWhite() || a.Color.IsNearBlack() {
		return false
	}
	return r.Width > minFillSide && r.Height > minFillSide
}

func groupBars(fills []model.FillArea) []*Group {
	if len(fills) == 0 {
		return nil
	}

	rects := make([]model.Rect, len(fills))
	for i, f := range fills {
		rects[i] = f.Rect
	}
	sort.SliceStable(rects, func(i, j int) bool { return rects[i].Area() > rects[j].Area() })
	if len(rects) > 1 && containsAll(rects[0], rects[1:]) {
		// A background panel behind the bars.
		rects = rects[1:]
	}

	// Rows of bars sharing a top, joined left to right.
	sortByTop(rects)
	var rowBars []model.Rect
	for _, band := range bands(rects, func(base, other model.Rect) bool {
		return base.VerticalOverlap(other) > 0 && model.FloatEqual(base.Top(), other.Top(), bandTolerance)
	}) {
		rowBars = append(rowBars, joinHorizontal(band)...)
	}

	// Columns of those sharing a left, joined top to bottom.
	sortByLeft(rowBars)
	var bars []model.Rect
	for _, band := range bands(rowBars, func(base, other model.Rect) bool {
		return base.HorizontalOverlap(other) > 0 && model.FloatEqual(base.Left(), other.Left(), bandTolerance)
	}) {
		bars = append(bars, joinVertical(band)...)
	}

	merged := mergeOverlapping(bars, func(target, r model.Rect) bool {
		return target.OverlapRatio(r) > mergeOverlap || nearlyContains(target, r) || nearlyContains(r, target)
	}, func(a, b model.Rect) bool {
		return a.OverlapRatio(b) > mergeOverlap
	})

	return collectGroups(AreaBar, merged, fills)
}

func groupPies(sectors []model.FillArea) []*Group {
	if len(sectors) == 0 {
		return nil
	}

	rects := make([]model.Rect, len(sectors))
	for i, s := range sectors {
		rects[i] = s.Rect
	}
	sortByLeft(rects)

	var pies []model.Rect
	base := rects[0]
	for _, other := range rects[1:] {
		if joinsSector(base, other) {
			base = base.Union(other)
			continue
		}
		pies = append(pies, base)
		base = other
	}
	pies = append(pies, base)

	merged := mergeOverlapping(pies, func(target, r model.Rect) bool {
		return target.Intersects(r) || nearlyContains(target, r)
	}, func(a, b model.Rect) bool {
		return a.OverlapRatio(b) > 0
	})

	return collectGroups(AreaPie, merged, sectors)
}

func joinsSector(base, other model.Rect) bool {
	if base.Intersects(other) {
		return true
	}
	if base.VerticalOverlap(other) > 0 &&
		(base.OverlapRatio(other) > 0 || horizontalDistance(base, other) < sectorGap) {
		return true
	}
	return base.HorizontalOverlap(other) > 0 &&
		(base.OverlapRatio(other) > 0 || verticalDistance(base, other) < sectorGap)
}

// bands splits sorted rects into runs that match the first rect of the run
func bands(rects []model.Rect, same func(base, other model.Rect) bool) [][]model.Rect {
	if len(rects) == 0 {
		return nil
	}
	var out [][]model.Rect
	band := []model.Rect{rects[0]}
	for _, r := range rects[1:] {
		if same(band[0], r) {
			band = append(band, r)
			continue
		}
		out = append(out, band)
		band = []model.Rect{r}
	}
	return append(out, band)
}

func joinHorizontal(band []model.Rect) []model.Rect {
	sorted := append([]model.Rect(nil), band...)
	sortByLeft(sorted)

	var out []model.Rect
	base := sorted[0]
	for _, other := range sorted[1:] {
		touching := model.FloatEqual(base.Right(), other.Left(), joinTolerance) ||
			base.Intersects(other) || base.Contains(other) || other.Contains(base)
		if touching && model.FloatEqual(base.Height, other.Height, joinTolerance) {
			base = base.Union(other)
			continue
		}
		out = append(out, base)
		base = other
	}
	return append(out, base)
}

func joinVertical(band []model.Rect) []model.Rect {
	sorted := append([]model.Rect(nil), band...)
	sortByTop(sorted)

	var out []model.Rect
	base := sorted[0]
	for _, other := range sorted[1:] {
		if model.FloatEqual(base.Bottom(), other.Top(), bandTolerance) || base.Intersects(other) {
			base = base.Union(other)
			continue
		}
		out = append(out, base)
		base = other
	}
	return append(out, base)
}

// mergeOverlapping visits rects from largest to smallest. A rect already
// covered by a result is skipped; otherwise it grows by absorbing every
// rect linked to it until nothing new joins.
func mergeOverlapping(rects []model.Rect, covered, linked func(a, b model.Rect) bool) []model.Rect {
	sorted := append([]model.Rect(nil), rects...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Area() > sorted[j].Area() })

	var targets []model.Rect
	for _, r := range sorted {
		skip := false
		for _, t := range targets {
			if covered(t, r) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		merged := r
		for rounds := len(sorted); rounds > 0; rounds-- {
			grown := false
			for _, other := range sorted {
				if linked(other, merged) && !merged.Contains(other) {
					merged = merged.Union(other)
					grown = true
				}
			}
			if !grown {
				break
			}
		}
		targets = append(targets, merged)
	}
	return targets
}

func collectGroups(typ AreaType, rects []model.Rect, fills []model.FillArea) []*Group {
	var groups []*Group
	for _, r := range rects {
		var members []model.FillArea
		for _, f := range fills {
			if r.Contains(f.Rect) {
				members = append(members, f)
			}
		}
		if len(members) > 0 {
			groups = append(groups, NewGroup(typ, members...))
		}
	}
	return groups
}

func containsAll(outer model.Rect, rects []model.Rect) bool {
	for _, r := range rects {
		if !outer.Contains(r) {
			return false
		}
	}
	return true
}

func nearlyContains(outer, inner model.Rect) bool {
	return outer.Expand(1).Contains(inner)
}

func horizontalDistance(a, b model.Rect) float64 {
	if a.Right() < b.Left() {
		return b.Left() - a.Right()
	}
	if b.Right() < a.Left() {
		return a.Left() - b.Right()
	}
	return 0
}

func verticalDistance(a, b model.Rect) float64 {
	if a.Bottom() < b.Top() {
		return b.Top() - a.Bottom()
	}
	if b.Bottom() < a.Top() {
		return a.Top() - b.Bottom()
	}
	return 0
}

func sortByTop(rects []model.Rect) {
	sort.SliceStable(rects, func(i, j int) bool { return rects[i].Top() < rects[j].Top() })
}

func sortByLeft(rects []model.Rect) {
	sort.SliceStable(rects, func(i, j int) bool { return rects[i].Left() < rects[j].Left() })
}
