package fill

import (
	"math"

	"github.com/tsawler/tabextract/model"
)

// ChartContext is a PageContext that also knows its typical glyph size
type ChartContext interface {
	PageContext
	AverageGlyphSize() (width, height float64)
}

// ChartType identifies the kind of chart found
type ChartType int

const (
	// ChartBar is a bar or column chart
	ChartBar ChartType = iota
	// ChartPie is a pie chart
	ChartPie
)

func (t ChartType) String() string {
	switch t {
	case ChartBar:
		return "Bar"
	case ChartPie:
		return "Pie"
	default:
		return "Unknown"
	}
}

// Chart is a page region recognized as a chart
type Chart struct {
	Type       ChartType
	Rect       model.Rect
	Confidence float64
}

const (
	chartConfidence   = 0.5
	minClusterSize    = 4
	maxClusterSize    = 18
	maxClusterRuns    = 40
	maxBarRuns        = 8
	maxPieAspectRatio = 5.0
)

// DetectChartRegions finds bar and pie charts among fill groups.
//
// Bar groups are clustered into candidate charts. A cluster is kept when it
// is dense, carries little text and is not better explained as table
// shading. Pie groups with at least two sectors and a sane aspect ratio are
// kept as they are. Legend markers near a chart are folded into its region.
func DetectChartRegions(ctx ChartContext, groups []*Group) []Chart {
	avgW, avgH := ctx.AverageGlyphSize()

	var bars, pies, legends []*Group
	for _, g := range groups {
		if g.IsLegend() {
			legends = append(legends, g)
		}
		switch g.Type() {
		case AreaBar:
			if g.IsLegend() {
				continue
			}
			r := g.Bounds()
			if r.Width > 10*avgW && r.Height > 10*avgW {
				continue
			}
			if countRunsInside(ctx, r.Expand(-1)) > maxBarRuns {
				continue
			}
			bars = append(bars, g)
		case AreaPie:
			if countRunsInside(ctx, g.Bounds().Expand(-1)) > 3*len(g.Areas()) {
				continue
			}
			pies = append(pies, g)
		}
	}

	legendGap := 2 * math.Max(avgW, avgH)
	var charts []Chart

	for _, cluster := range clusterBars(bars, avgW) {
		if len(cluster) < minClusterSize || len(cluster) > maxClusterSize {
			continue
		}
		region, _ := BoundingBox(cluster)
		runs := len(ctx.TextRunsIn(region))
		if runs > maxClusterRuns || !IsDense(cluster) {
			continue
		}
		if IsPossibleTableRegion(ctx, cluster) {
			continue
		}

		colors := MostCommonColorCount(cluster)
		if colors < 2 && float64(runs) > 1.5*float64(len(cluster)) && runs > 20 {
			continue
		}
		isChart := colors >= 2 || len(cluster) >= 8
		if !isChart && runs/len(cluster) <= 1 && AllNearlyEqualColor(cluster) {
			isChart = true
		}
		if isChart {
			region = mergeLegends(region, legends, charts, legendGap)
			charts = append(charts, Chart{Type: ChartBar, Rect: region, Confidence: chartConfidence})
		}
	}

	for _, g := range pies {
		if len(g.Areas()) < 2 {
			continue
		}
		r := g.Bounds()
		if r.Width > maxPieAspectRatio*r.Height || r.Height > maxPieAspectRatio*r.Width {
			continue
		}
		r = mergeLegends(r, legends, charts, legendGap)
		charts = append(charts, Chart{Type: ChartPie, Rect: r, Confidence: chartConfidence})
	}

	return charts
}

func countRunsInside(ctx PageContext, r model.Rect) int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return len(ctx.TextRunsIn(r))
}

// clusterBars grows a cluster from the longest bar, adding bars that line
// up with a member, then repeats on what is left.
func clusterBars(groups []*Group, avgCharWidth float64) [][]*Group {
	var clusters [][]*Group
	remaining := groups
	for len(remaining) > 0 {
		if len(remaining) < 2 {
			clusters = append(clusters, remaining)
			break
		}

		seed := 0
		for i, g := range remaining {
			if g.Length() > remaining[seed].Length() {
				seed = i
			}
		}
		seedRect := remaining[seed].Bounds()
		minGap := math.Min(2*math.Min(seedRect.Width, seedRect.Height), 5*avgCharWidth)
		vertical := remaining[seed].IsVertical()

		marked := make([]bool, len(remaining))
		marked[seed] = true
		cluster := []*Group{remaining[seed]}
		for grown := true; grown; {
			grown = false
			for i, one := range remaining {
				if marked[i] {
					continue
				}
				for _, other := range cluster {
					if barNeighbors(one.Bounds(), other.Bounds(), vertical, minGap) {
						marked[i] = true
						cluster = append(cluster, one)
						grown = true
						break
					}
				}
			}
		}
		clusters = append(clusters, cluster)

		var rest []*Group
		for i, g := range remaining {
			if !marked[i] {
				rest = append(rest, g)
			}
		}
		remaining = rest
	}
	return clusters
}

func barNeighbors(one, other model.Rect, vertical bool, minGap float64) bool {
	if one.Gap(other) < 1.0 {
		if one.VerticalOverlapRatio(other) > 0.9 && model.FloatEqual(one.Height, other.Height, 1.0) {
			return true
		}
		if one.HorizontalOverlapRatio(other) > 0.9 && model.FloatEqual(one.Width, other.Width, 1.0) {
			return true
		}
	}
	if vertical {
		return one.VerticalOverlapRatio(other) > 0.9 &&
			(model.FloatEqual(one.Left(), other.Right(), minGap) || model.FloatEqual(one.Right(), other.Left(), minGap))
	}
	return one.HorizontalOverlapRatio(other) > 0.9 &&
		(model.FloatEqual(one.Top(), other.Bottom(), minGap) || model.FloatEqual(one.Bottom(), other.Top(), minGap))
}

// mergeLegends grows region over every legend marker that touches or sits
// near it, unless the marker already belongs to a detected chart.
func mergeLegends(region model.Rect, legends []*Group, charts []Chart, gap float64) model.Rect {
	for _, l := range legends {
		lr := l.Bounds()
		taken := false
		for _, c := range charts {
			if c.Rect.Intersects(lr) {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		if region.Intersects(lr) || region.Gap(lr) < gap {
			region = region.Union(lr)
		}
	}
	return region
}
