package tables

import (
	"math"
	"sort"

	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/spatial"
)

// GridDetector detects table grids from page rulings
type GridDetector struct {
	// Tolerance for considering rulings aligned (in points)
	AlignmentTolerance float64

	// Minimum number of aligned rulings to form a grid axis
	MinAlignedLines int

	// Minimum ruling length to consider (in points)
	MinLineLength float64

	// Share of the grid extent an aligned group must span to be a boundary
	MinExtentCoverage float64
}

// NewGridDetector creates a new grid detector with default settings
func NewGridDetector() *GridDetector {
	return &GridDetector{
		AlignmentTolerance: 3.0,  // 3 points tolerance
		MinAlignedLines:    2,    // At least 2 lines
		MinLineLength:      10.0, // At least 10 points long
		MinExtentCoverage:  0.25,
	}
}

// GridHypothesis represents a potential table grid detected from rulings
type GridHypothesis struct {
	// Bounding box of the grid
	BBox model.Rect

	// Horizontal boundary positions (Y coordinates, top to bottom)
	HorizontalLines []float64

	// Vertical boundary positions (X coordinates, left to right)
	VerticalLines []float64

	// Confidence score (0-1)
	Confidence float64

	// Number of rows and columns
	Rows int
	Cols int

	// Whether the grid has complete borders
	HasTopBorder    bool
	HasBottomBorder bool
	HasLeftBorder   bool
	HasRightBorder  bool

	hGroups, vGroups []AlignedLineGroup
	tolerance        float64
}

// AlignedLineGroup represents a group of rulings aligned on an axis
type AlignedLineGroup struct {
	// Position on the alignment axis (X for vertical rulings, Y for horizontal)
	Position float64

	// Rulings in this group
	Lines []model.Ruling

	// Total coverage (sum of ruling lengths)
	TotalLength float64

	// Span of the rulings (min to max on the perpendicular axis)
	MinExtent float64
	MaxExtent float64
}

// covers reports whether some ruling of the group runs through v on the
// group's extent axis
func (g AlignedLineGroup) covers(v, tolerance float64, horizontal bool) bool {
	for _, r := range g.Lines {
		b := r.Bounds()
		lo, hi := b.Top(), b.Bottom()
		if horizontal {
			lo, hi = b.Left(), b.Right()
		}
		if v >= lo-tolerance && v <= hi+tolerance {
			return true
		}
	}
	return false
}

// DetectFromRulings splits the rulings into groups that touch each other and
// finds one grid per group. Grids are returned in reading order.
func (gd *GridDetector) DetectFromRulings(rulings []model.Ruling) []*GridHypothesis {
	rulings = gd.filterByLength(rulings)

	var hypotheses []*GridHypothesis
	for _, component := range connectedRulings(rulings) {
		var horizontals, verticals []model.Ruling
		for _, r := range component {
			switch {
			case r.Horizontal():
				horizontals = append(horizontals, r)
			case r.Vertical():
				verticals = append(verticals, r)
			}
		}
		if h := gd.DetectFromLines(horizontals, verticals); h != nil {
			hypotheses = append(hypotheses, h)
		}
	}

	sort.SliceStable(hypotheses, func(i, j int) bool {
		return spatial.ReadingLess(hypotheses[i].BBox, hypotheses[j].BBox)
	})
	return hypotheses
}

// DetectFromLines detects a grid hypothesis from horizontal and vertical
// rulings that belong to one table. It returns nil when they do not form a
// grid of at least one cell.
func (gd *GridDetector) DetectFromLines(horizontals, verticals []model.Ruling) *GridHypothesis {
	horizontals = gd.filterByLength(horizontals)
	verticals = gd.filterByLength(verticals)

	if len(horizontals) < gd.MinAlignedLines || len(verticals) < gd.MinAlignedLines {
		return nil
	}

	hGroups := gd.groupAlignedLines(horizontals, true)
	vGroups := gd.groupAlignedLines(verticals, false)

	if len(hGroups) < gd.MinAlignedLines || len(vGroups) < gd.MinAlignedLines {
		return nil
	}

	return gd.findGrid(hGroups, vGroups)
}

// filterByLength filters rulings by minimum length
func (gd *GridDetector) filterByLength(lines []model.Ruling) []model.Ruling {
	result := make([]model.Ruling, 0, len(lines))
	for _, line := range lines {
		if line.Length() >= gd.MinLineLength {
			result = append(result, line)
		}
	}
	return result
}

// connectedRulings partitions rulings into sets connected through
// horizontal/vertical crossings. Rulings that cross nothing are dropped.
func connectedRulings(rulings []model.Ruling) [][]model.Ruling {
	parent := make([]int, len(rulings))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	crossed := make([]bool, len(rulings))
	for i := range rulings {
		for j := i + 1; j < len(rulings); j++ {
			if rulings[i].Intersects(rulings[j]) {
				crossed[i], crossed[j] = true, true
				if a, b := find(i), find(j); a != b {
					parent[b] = a
				}
			}
		}
	}

	index := make(map[int]int)
	var out [][]model.Ruling
	for i, r := range rulings {
		if !crossed[i] {
			continue
		}
		root := find(i)
		k, ok := index[root]
		if !ok {
			k = len(out)
			index[root] = k
			out = append(out, nil)
		}
		out[k] = append(out[k], r)
	}
	return out
}

// groupAlignedLines groups rulings that are aligned on the same axis
func (gd *GridDetector) groupAlignedLines(lines []model.Ruling, isHorizontal bool) []AlignedLineGroup {
	if len(lines) == 0 {
		return nil
	}

	sorted := append([]model.Ruling(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position() < sorted[j].Position()
	})

	// Group rulings by position
	var groups []AlignedLineGroup
	currentGroup := AlignedLineGroup{
		Position: sorted[0].Position(),
		Lines:    []model.Ruling{sorted[0]},
	}

	for _, line := range sorted[1:] {
		pos := line.Position()

		if pos-currentGroup.Position <= gd.AlignmentTolerance {
			currentGroup.Lines = append(currentGroup.Lines, line)
			// Update position to average
			n := float64(len(currentGroup.Lines))
			currentGroup.Position = (currentGroup.Position*(n-1) + pos) / n
		} else {
			gd.finalizeGroup(&currentGroup, isHorizontal)
			groups = append(groups, currentGroup)

			currentGroup = AlignedLineGroup{
				Position: pos,
				Lines:    []model.Ruling{line},
			}
		}
	}

	gd.finalizeGroup(&currentGroup, isHorizontal)
	groups = append(groups, currentGroup)

	return groups
}

// finalizeGroup calculates final metrics for an aligned line group
func (gd *GridDetector) finalizeGroup(group *AlignedLineGroup, isHorizontal bool) {
	if len(group.Lines) == 0 {
		return
	}

	group.TotalLength = 0
	group.MinExtent = math.MaxFloat64
	group.MaxExtent = -math.MaxFloat64

	for _, line := range group.Lines {
		group.TotalLength += line.Length()

		b := line.Bounds()
		// For horizontal rulings the extent is the X range
		minVal, maxVal := b.Left(), b.Right()
		if !isHorizontal {
			minVal, maxVal = b.Top(), b.Bottom()
		}

		group.MinExtent = math.Min(group.MinExtent, minVal)
		group.MaxExtent = math.Max(group.MaxExtent, maxVal)
	}
}

// findGrid builds the grid spanned by aligned line groups
func (gd *GridDetector) findGrid(hGroups, vGroups []AlignedLineGroup) *GridHypothesis {
	// Left/Right come from vertical ruling positions, Top/Bottom from
	// horizontal ones.
	gridLeft, gridRight := positionRange(vGroups)
	gridTop, gridBottom := positionRange(hGroups)

	if gridRight <= gridLeft || gridBottom <= gridTop {
		return nil
	}

	relevantH := gd.filterGroupsByExtent(hGroups, gridLeft, gridRight)
	relevantV := gd.filterGroupsByExtent(vGroups, gridTop, gridBottom)

	if len(relevantH) < gd.MinAlignedLines || len(relevantV) < gd.MinAlignedLines {
		return nil
	}

	hypothesis := &GridHypothesis{
		HorizontalLines: make([]float64, len(relevantH)),
		VerticalLines:   make([]float64, len(relevantV)),
		Rows:            len(relevantH) - 1,
		Cols:            len(relevantV) - 1,
		hGroups:         relevantH,
		vGroups:         relevantV,
		tolerance:       gd.AlignmentTolerance,
	}
	for i, g := range relevantH {
		hypothesis.HorizontalLines[i] = g.Position
	}
	for i, g := range relevantV {
		hypothesis.VerticalLines[i] = g.Position
	}

	top, bottom := hypothesis.HorizontalLines[0], hypothesis.HorizontalLines[hypothesis.Rows]
	left, right := hypothesis.VerticalLines[0], hypothesis.VerticalLines[hypothesis.Cols]
	hypothesis.BBox = model.RectFromEdges(left, top, right, bottom)

	// A border is complete when its ruling runs along the whole side.
	hypothesis.HasTopBorder = hypothesis.edgeCoverage(0, true) == 1
	hypothesis.HasBottomBorder = hypothesis.edgeCoverage(hypothesis.Rows, true) == 1
	hypothesis.HasLeftBorder = hypothesis.edgeCoverage(0, false) == 1
	hypothesis.HasRightBorder = hypothesis.edgeCoverage(hypothesis.Cols, false) == 1

	hypothesis.Confidence = gd.calculateConfidence(hypothesis)

	if hypothesis.Rows == 0 || hypothesis.Cols == 0 {
		return nil
	}
	return hypothesis
}

// positionRange returns the minimum and maximum position across all groups
func positionRange(groups []AlignedLineGroup) (lo, hi float64) {
	if len(groups) == 0 {
		return 0, 0
	}
	lo, hi = groups[0].Position, groups[0].Position
	for _, g := range groups[1:] {
		lo = math.Min(lo, g.Position)
		hi = math.Max(hi, g.Position)
	}
	return lo, hi
}

// filterGroupsByExtent keeps groups spanning enough of the given extent
func (gd *GridDetector) filterGroupsByExtent(groups []AlignedLineGroup, minExtent, maxExtent float64) []AlignedLineGroup {
	var result []AlignedLineGroup

	required := (maxExtent - minExtent) * gd.MinExtentCoverage
	for _, g := range groups {
		overlapMin := math.Max(g.MinExtent, minExtent)
		overlapMax := math.Min(g.MaxExtent, maxExtent)
		if overlapMax > overlapMin && overlapMax-overlapMin >= required {
			result = append(result, g)
		}
	}

	return result
}

// HasHorizontalEdge reports whether a ruling separates row-1 from row at
// column col. Row 0 and row Rows are the outer borders.
func (h *GridHypothesis) HasHorizontalEdge(row, col int) bool {
	mid := (h.VerticalLines[col] + h.VerticalLines[col+1]) / 2
	return h.hGroups[row].covers(mid, h.tolerance, true)
}

// HasVerticalEdge reports whether a ruling separates col-1 from col at row
// row. Column 0 and column Cols are the outer borders.
func (h *GridHypothesis) HasVerticalEdge(row, col int) bool {
	mid := (h.HorizontalLines[row] + h.HorizontalLines[row+1]) / 2
	return h.vGroups[col].covers(mid, h.tolerance, false)
}

// edgeCoverage returns the share of cell edges along one boundary that have
// a ruling
func (h *GridHypothesis) edgeCoverage(index int, horizontal bool) float64 {
	n, present := h.Cols, 0
	if !horizontal {
		n = h.Rows
	}
	if n <= 0 {
		return 0
	}
	for k := 0; k < n; k++ {
		if horizontal && h.HasHorizontalEdge(index, k) || !horizontal && h.HasVerticalEdge(k, index) {
			present++
		}
	}
	return float64(present) / float64(n)
}

// calculateConfidence calculates a confidence score for a grid hypothesis
func (gd *GridDetector) calculateConfidence(h *GridHypothesis) float64 {
	score := 0.0

	// Factor 1: Number of cells (more cells = higher confidence, up to a point)
	cellCount := h.Rows * h.Cols
	if cellCount >= 4 {
		score += 0.2
	}
	if cellCount >= 9 {
		score += 0.1
	}

	// Factor 2: Grid regularity (similar row heights and column widths)
	score += gd.calculateRegularity(h) * 0.3

	// Factor 3: Border completeness
	borderScore := 0.0
	for _, ok := range []bool{h.HasTopBorder, h.HasBottomBorder, h.HasLeftBorder, h.HasRightBorder} {
		if ok {
			borderScore += 0.25
		}
	}
	score += borderScore * 0.2

	// Factor 4: Line coverage (how much of the grid is covered by actual rulings)
	score += gd.calculateLineCoverage(h) * 0.2

	return math.Min(1.0, score)
}

// calculateRegularity measures how regular the grid spacing is
func (gd *GridDetector) calculateRegularity(h *GridHypothesis) float64 {
	rowScore := 1.0
	if h.Rows > 1 {
		rowScore = math.Max(0, 1-coefficientOfVariation(spacings(h.HorizontalLines)))
	}

	colScore := 1.0
	if h.Cols > 1 {
		colScore = math.Max(0, 1-coefficientOfVariation(spacings(h.VerticalLines)))
	}

	return (rowScore + colScore) / 2
}

// calculateLineCoverage returns the fraction of cell edges drawn with a ruling
func (gd *GridDetector) calculateLineCoverage(h *GridHypothesis) float64 {
	total, present := 0, 0
	for i := 0; i <= h.Rows; i++ {
		for j := 0; j < h.Cols; j++ {
			total++
			if h.HasHorizontalEdge(i, j) {
				present++
			}
		}
	}
	for i := 0; i < h.Rows; i++ {
		for j := 0; j <= h.Cols; j++ {
			total++
			if h.HasVerticalEdge(i, j) {
				present++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total)
}

// spacings returns the distances between consecutive sorted positions
func spacings(positions []float64) []float64 {
	if len(positions) < 2 {
		return nil
	}
	out := make([]float64, len(positions)-1)
	for i := range out {
		out[i] = positions[i+1] - positions[i]
	}
	return out
}

// coefficientOfVariation calculates CV (std dev / mean)
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)
	if m == 0 {
		return 0
	}

	return math.Sqrt(variance(values)) / m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return sum / float64(len(values))
}

// ToTableGrid converts a grid hypothesis to a model.TableGrid
func (h *GridHypothesis) ToTableGrid() *model.TableGrid {
	grid := model.NewTableGrid()
	grid.Rows = append([]float64(nil), h.HorizontalLines...)
	grid.Cols = append([]float64(nil), h.VerticalLines...)

	// A boundary counts as drawn when any of its cell edges has a ruling
	grid.HasHLines = make([]bool, len(h.HorizontalLines))
	for i := range grid.HasHLines {
		grid.HasHLines[i] = h.edgeCoverage(i, true) > 0
	}
	grid.HasVLines = make([]bool, len(h.VerticalLines))
	for i := range grid.HasVLines {
		grid.HasVLines[i] = h.edgeCoverage(i, false) > 0
	}

	return grid
}
