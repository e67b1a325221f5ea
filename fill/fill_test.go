package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/text"
)

var (
	red   = model.Color{R: 200, G: 30, B: 30}
	blue  = model.Color{R: 30, G: 30, B: 200}
	green = model.Color{R: 30, G: 200, B: 30}
)

type fakePage struct {
	rulings []model.Ruling
	runs    []*text.Run
	avgW    float64
	avgH    float64
}

func (p *fakePage) RulingsIn(r model.Rect) []model.Ruling {
	var out []model.Ruling
	for _, ru := range p.rulings {
		if r.Intersects(ru.Bounds()) {
			out = append(out, ru)
		}
	}
	return out
}

func (p *fakePage) TextRunsIn(r model.Rect) []*text.Run {
	var out []*text.Run
	for _, run := range p.runs {
		if r.Intersects(run.Bounds()) {
			out = append(out, run)
		}
	}
	return out
}

func (p *fakePage) AverageGlyphSize() (float64, float64) { return p.avgW, p.avgH }

func area(x, y, w, h float64, c model.Color) model.FillArea {
	return model.FillArea{Rect: model.NewRect(x, y, w, h), Color: c}
}

func sector(x, y, w, h float64, c model.Color) model.FillArea {
	return model.FillArea{Rect: model.NewRect(x, y, w, h), Color: c, Shape: model.ShapeSector}
}

func bar(x, y, w, h float64, colors ...model.Color) *Group {
	if len(colors) == 0 {
		colors = []model.Color{red}
	}
	var areas []model.FillArea
	step := h / float64(len(colors))
	for i, c := range colors {
		areas = append(areas, area(x, y+float64(i)*step, w, step, c))
	}
	return NewGroup(AreaBar, areas...)
}

// columnChart returns bars of width 10 spaced 5 apart, bottoms at y=300
func columnChart(heights ...float64) []*Group {
	var groups []*Group
	for i, h := range heights {
		groups = append(groups, bar(100+float64(i)*15, 300-h, 10, h))
	}
	return groups
}

func runAt(x, y float64) *text.Run {
	return text.NewRun(text.NewGlyph("x", model.NewRect(x, y, 6, 10), "F", 10, 3))
}

// ============================================================================
// Colors
// ============================================================================

func TestColorSet(t *testing.T) {
	tests := []struct {
		name   string
		colors []model.Color
		want   int
	}{
		{"empty", nil, 0},
		{"within one on every channel", []model.Color{{R: 10, G: 10, B: 10}, {R: 11, G: 11, B: 11}}, 1},
		{"two apart on one channel", []model.Color{{R: 10, G: 10, B: 10}, {R: 12, G: 10, B: 10}}, 2},
		{"distinct", []model.Color{red, blue, green, red}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var areas []model.FillArea
			for _, c := range tt.colors {
				areas = append(areas, area(0, 0, 10, 10, c))
			}
			assert.Len(t, ColorSet(areas), tt.want)
		})
	}
}

func TestColorSet_FirstSeenWins(t *testing.T) {
	set := ColorSet([]model.FillArea{
		area(0, 0, 5, 5, model.Color{R: 11, G: 11, B: 11}),
		area(0, 0, 5, 5, model.Color{R: 10, G: 10, B: 10}),
	})
	require.Len(t, set, 1)
	assert.Equal(t, model.Color{R: 11, G: 11, B: 11}, set[0])
}

func TestGroup_NearlyEqualColor(t *testing.T) {
	a := bar(0, 0, 10, 40, red, blue)
	b := bar(20, 0, 10, 40, blue, red)
	c := bar(40, 0, 10, 40, red)
	d := bar(60, 0, 10, 40, red, green)

	assert.True(t, a.NearlyEqualColor(b, colorTolerance))
	assert.False(t, a.NearlyEqualColor(c, colorTolerance))
	assert.False(t, a.NearlyEqualColor(d, colorTolerance))

	assert.True(t, AllNearlyEqualColor([]*Group{a, b}))
	assert.False(t, AllNearlyEqualColor([]*Group{a, b, d}))
	assert.True(t, AllNearlyEqualColor(nil))
}

func TestMostCommonColorCount(t *testing.T) {
	tests := []struct {
		name   string
		groups []*Group
		want   int
	}{
		{"empty", nil, 0},
		{"single color bars", columnChart(10, 20, 30), 1},
		{"majority two colors", []*Group{bar(0, 0, 10, 10, red, blue), bar(20, 0, 10, 10, red, blue), bar(40, 0, 10, 10)}, 2},
		{"tie goes to first seen", []*Group{bar(0, 0, 10, 10), bar(20, 0, 10, 10, red, blue), bar(40, 0, 10, 10, red, blue), bar(60, 0, 10, 10)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MostCommonColorCount(tt.groups))
		})
	}
}

// ============================================================================
// Group shape
// ============================================================================

func TestGroup_Shape(t *testing.T) {
	g := NewGroup(AreaBar, area(0, 0, 10, 10, red), area(0, 10, 10, 30, blue))

	assert.Equal(t, model.NewRect(0, 0, 10, 40), g.Bounds())
	assert.Equal(t, 40.0, g.Length())
	assert.True(t, g.IsVertical())
	assert.Equal(t, AreaBar, g.Type())
	assert.Equal(t, "Bar", g.Type().String())
	assert.Len(t, g.Areas(), 2)
}

func TestGroup_IsLegend(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		want bool
	}{
		{"small square", 10, 10, true},
		{"almost square", 10, 10.8, true},
		{"not square", 10, 12, false},
		{"large square", 20, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGroup(AreaBar, area(0, 0, tt.w, tt.h, red))
			assert.Equal(t, tt.want, g.IsLegend())
		})
	}
}

// ============================================================================
// Table-vs-chart
// ============================================================================

func TestIsPossibleTableRegion_RegularColumns(t *testing.T) {
	var groups []*Group
	for i, w := range []float64{100, 101, 102, 99, 103} {
		groups = append(groups, bar(50, 100+float64(i)*20, w, 10))
	}
	assert.True(t, IsPossibleTableRegion(&fakePage{}, groups))
}

func TestIsPossibleTableRegion_SingleGroup(t *testing.T) {
	assert.False(t, IsPossibleTableRegion(&fakePage{}, []*Group{bar(0, 0, 10, 100)}))
	assert.False(t, IsPossibleTableRegion(&fakePage{}, nil))
}

func TestIsPossibleTableRegion_IrregularBarsAreChart(t *testing.T) {
	assert.False(t, IsPossibleTableRegion(&fakePage{}, columnChart(20, 60, 100, 40)))
}

func TestIsPossibleTableRegion_CrossAxisStacking(t *testing.T) {
	// One tall bar with several short bars stacked beside its x range.
	groups := []*Group{
		bar(0, 0, 20, 100),
		bar(5, 110, 10, 20),
		bar(5, 140, 10, 60),
		bar(5, 210, 10, 5),
	}
	assert.True(t, IsPossibleTableRegion(&fakePage{}, groups))
}

func TestIsPossibleTableRegion_ShadedRowsWithGrid(t *testing.T) {
	groups := []*Group{
		bar(100, 280, 10, 20, red, blue),
		bar(115, 240, 10, 60, red, blue),
		bar(130, 200, 10, 100, red, blue),
		bar(145, 260, 10, 40, red, blue),
	}
	page := &fakePage{
		rulings: []model.Ruling{
			model.HorizontalRuling(250, 100, 155),
			model.VerticalRuling(127, 200, 300),
		},
	}
	assert.False(t, IsPossibleTableRegion(page, groups), "no text yet")

	for i := 0; i < 8; i++ {
		page.runs = append(page.runs, runAt(100+float64(i%4)*12, 210+float64(i/4)*40))
	}
	assert.True(t, IsPossibleTableRegion(page, groups))
}

// ============================================================================
// Density
// ============================================================================

func TestIsDense(t *testing.T) {
	tests := []struct {
		name   string
		groups []*Group
		want   bool
	}{
		{"no groups", nil, false},
		{"one group", []*Group{bar(0, 0, 10, 10)}, false},
		{"three adjacent", []*Group{bar(0, 0, 10, 10), bar(12, 0, 10, 10), bar(24, 0, 10, 10)}, true},
		{"overlapping", []*Group{bar(0, 0, 10, 10), bar(5, 5, 10, 10)}, true},
		{"one isolated", []*Group{bar(0, 0, 10, 10), bar(12, 0, 10, 10), bar(200, 0, 10, 10)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDense(tt.groups))
		})
	}
}

// ============================================================================
// Grouping
// ============================================================================

var pageBounds = model.NewRect(0, 0, 600, 800)

func TestGroupFillAreas_Bars(t *testing.T) {
	groups := GroupFillAreas([]model.FillArea{
		area(100, 100, 20, 50, red),
		area(120, 100, 20, 50, blue),
		area(200, 100, 20, 50, red),
		area(300, 100, 20, 30, red),
		area(300, 130, 20, 30, green),
	}, pageBounds)

	require.Len(t, groups, 3)
	assert.Equal(t, model.NewRect(100, 100, 40, 50), groups[0].Bounds())
	assert.Len(t, groups[0].Areas(), 2)
	assert.Equal(t, model.NewRect(300, 100, 20, 60), groups[1].Bounds())
	assert.Len(t, groups[1].Areas(), 2)
	assert.Equal(t, model.NewRect(200, 100, 20, 50), groups[2].Bounds())
	for _, g := range groups {
		assert.Equal(t, AreaBar, g.Type())
	}
}

func TestGroupFillAreas_Filters(t *testing.T) {
	groups := GroupFillAreas([]model.FillArea{
		area(100, 100, 20, 50, model.Color{R: 255, G: 255, B: 255}),
		area(200, 100, 20, 50, model.Color{R: 2, G: 2, B: 2}),
		area(300, 100, 2, 50, red),
		area(0, 100, 20, 50, red),
		area(590, 100, 20, 50, red),
	}, pageBounds)

	assert.Empty(t, groups)
	assert.Empty(t, GroupFillAreas(nil, pageBounds))
}

func TestGroupFillAreas_DropsBackgroundPanel(t *testing.T) {
	groups := GroupFillAreas([]model.FillArea{
		area(50, 50, 200, 200, model.Color{R: 230, G: 230, B: 200}),
		area(100, 100, 20, 50, red),
		area(150, 100, 20, 50, red),
	}, pageBounds)

	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.Len(t, g.Areas(), 1)
	}
}

func TestGroupFillAreas_Pie(t *testing.T) {
	groups := GroupFillAreas([]model.FillArea{
		sector(50, 300, 40, 40, red),
		sector(80, 300, 40, 40, blue),
		area(60, 310, 10, 10, green),
	}, pageBounds)

	require.Len(t, groups, 1)
	assert.Equal(t, AreaPie, groups[0].Type())
	assert.Equal(t, model.NewRect(50, 300, 70, 40), groups[0].Bounds())
	assert.Len(t, groups[0].Areas(), 2)
}

// ============================================================================
// Charts
// ============================================================================

func chartPage() *fakePage {
	return &fakePage{avgW: 6, avgH: 10}
}

func TestDetectChartRegions_BarChart(t *testing.T) {
	charts := DetectChartRegions(chartPage(), columnChart(20, 60, 100, 40, 80))

	require.Len(t, charts, 1)
	assert.Equal(t, ChartBar, charts[0].Type)
	assert.Equal(t, model.RectFromEdges(100, 200, 170, 300), charts[0].Rect)
	assert.Equal(t, 0.5, charts[0].Confidence)
}

func TestDetectChartRegions_MergesLegend(t *testing.T) {
	groups := append(columnChart(20, 60, 100, 40, 80), NewGroup(AreaBar, area(180, 210, 8, 8, red)))
	charts := DetectChartRegions(chartPage(), groups)

	require.Len(t, charts, 1)
	assert.Equal(t, model.RectFromEdges(100, 200, 188, 300), charts[0].Rect)
}

func TestDetectChartRegions_TooFewBars(t *testing.T) {
	assert.Empty(t, DetectChartRegions(chartPage(), columnChart(20, 60, 100)))
}

func TestDetectChartRegions_TableShading(t *testing.T) {
	var groups []*Group
	for i := 0; i < 5; i++ {
		groups = append(groups, bar(100, 100+float64(i)*15, 100, 10))
	}
	assert.Empty(t, DetectChartRegions(chartPage(), groups))
}

func TestDetectChartRegions_Pie(t *testing.T) {
	pie := NewGroup(AreaPie, sector(300, 300, 40, 40, red), sector(330, 300, 40, 40, blue))
	lone := NewGroup(AreaPie, sector(100, 500, 40, 40, red))
	flat := NewGroup(AreaPie, sector(100, 600, 300, 20, red), sector(150, 600, 100, 20, blue))

	charts := DetectChartRegions(chartPage(), []*Group{pie, lone, flat})

	require.Len(t, charts, 1)
	assert.Equal(t, ChartPie, charts[0].Type)
	assert.Equal(t, model.NewRect(300, 300, 70, 40), charts[0].Rect)
}
