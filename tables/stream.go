package tables

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/tabextract/fill"
	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/page"
	"github.com/tsawler/tabextract/spatial"
	"github.com/tsawler/tabextract/text"
)

// StreamExtractor builds a table from text alignment alone. Every text line
// becomes a row; columns are the horizontal extents that runs on successive
// lines keep overlapping.
type StreamExtractor struct {
	config Config
}

// NewStreamExtractor creates a text-alignment extractor
func NewStreamExtractor(config Config) *StreamExtractor {
	return &StreamExtractor{config: config}
}

func (e *StreamExtractor) Name() string    { return Stream.String() }
func (e *StreamExtractor) Version() string { return "1.0" }

// Extract returns a single table holding all text of p, or nothing when p
// has no text
func (e *StreamExtractor) Extract(p *page.Page) ([]*model.Table, error) {
	lines := textLines(p.TextRuns())
	if len(lines) == 0 {
		return nil, nil
	}
	return []*model.Table{e.buildTable(p, lines)}, nil
}

// textLines drops blank runs and groups the rest into lines, top to bottom
func textLines(runs []*text.Run) []*text.Line {
	var kept []*text.Run
	for _, r := range runs {
		if !r.IsBlank() {
			kept = append(kept, r)
		}
	}
	spatial.SortReadingOrder(kept)
	return text.GroupByLines(kept)
}

// columnPositions returns the right edges of the text columns, left to
// right. The runs of the first line open the columns; a run on a later line
// widens the first column it overlaps or opens a new one.
func columnPositions(lines []*text.Line) []float64 {
	if len(lines) == 0 {
		return nil
	}

	var regions []model.Rect
	for _, r := range lines[0].Runs {
		regions = append(regions, r.Bounds())
	}

	for _, line := range lines[1:] {
		var opened []model.Rect
		for _, r := range line.Runs {
			b := r.Bounds()
			found := false
			for k := range regions {
				if regions[k].HorizontalOverlap(b) > 0 {
					regions[k] = regions[k].Union(b)
					found = true
					break
				}
			}
			if !found {
				opened = append(opened, b)
			}
		}
		regions = append(regions, opened...)
	}

	rights := make([]float64, len(regions))
	for i, r := range regions {
		rights[i] = r.Right()
	}
	sort.Float64s(rights)
	return rights
}

// columnOf returns the first column whose right edge is at or past left
func columnOf(left float64, columns []float64) int {
	for j, right := range columns {
		if left <= right {
			return j
		}
	}
	return len(columns) - 1
}

func (e *StreamExtractor) buildTable(p *page.Page, lines []*text.Line) *model.Table {
	columns := columnPositions(lines)

	bounds := lines[0].Bounds()
	for _, l := range lines[1:] {
		bounds = bounds.Union(l.Bounds())
	}

	grid := streamGrid(lines, columns, bounds)

	slots := make([][]slot, len(lines))
	for i, line := range lines {
		slots[i] = make([]slot, len(columns))
		for j := range slots[i] {
			slots[i][j].spanEnd = j
		}
		for _, r := range line.Runs {
			j := columnOf(r.Bounds().Left(), columns)
			s := &slots[i][j]
			s.runs = append(s.runs, r)

			// A run reaching past its column's right edge may span the
			// following columns.
			k := j
			for k+1 < len(columns) && r.Bounds().Right() > columns[k]+e.config.AlignmentTolerance {
				k++
			}
			s.spanEnd = max(s.spanEnd, k)
		}
	}

	table := model.NewTable(len(lines), len(columns))
	table.Rect = bounds
	table.Method = e.Name()

	for i := range slots {
		for j := 0; j < len(columns); j++ {
			s := slots[i][j]
			c := model.Cell{
				Text:    joinRuns(s.runs),
				Rect:    grid.CellRect(i, j),
				RowSpan: 1,
				ColSpan: 1,
			}

			if e.config.DetectMergedCells && s.spanEnd > j && spanFree(slots[i], j+1, s.spanEnd) {
				c.ColSpan = s.spanEnd - j + 1
				c.Rect = c.Rect.Union(grid.CellRect(i, s.spanEnd))
				table.SetCell(i, j, c)
				for k := j + 1; k <= s.spanEnd; k++ {
					table.SetCell(i, k, model.Cell{Rect: grid.CellRect(i, k)})
				}
				j = s.spanEnd
				continue
			}
			table.SetCell(i, j, c)
		}
	}

	tol := e.config.AlignmentTolerance
	grid.HasHLines = rulingsAlong(grid.Rows, p.HorizontalRulings(), tol)
	grid.HasVLines = rulingsAlong(grid.Cols, p.VerticalRulings(), tol)

	var runs []*text.Run
	for _, l := range lines {
		runs = append(runs, l.Runs...)
	}
	drawn := lineScore(grid)
	table.HasGrid = drawn >= 0.5
	table.Confidence = streamConfidence(grid, runs, drawn, tol)
	return table
}

// slot collects the runs assigned to one cell and the last column they
// reach
type slot struct {
	runs    []*text.Run
	spanEnd int
}

// spanFree reports whether the slots from..to hold no runs
func spanFree(row []slot, from, to int) bool {
	for k := from; k <= to; k++ {
		if len(row[k].runs) > 0 {
			return false
		}
	}
	return true
}

// joinRuns joins the trimmed text of runs with single spaces
func joinRuns(runs []*text.Run) string {
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		if s := strings.TrimSpace(r.Text()); s != "" {
			parts = append(parts, s)
		}
	}
	return norm.NFKC.String(strings.Join(parts, " "))
}

// streamGrid places row boundaries halfway between lines and column
// boundaries on the column right edges
func streamGrid(lines []*text.Line, columns []float64, bounds model.Rect) *model.TableGrid {
	grid := model.NewTableGrid()
	grid.Rows = make([]float64, 0, len(lines)+1)
	grid.Rows = append(grid.Rows, bounds.Top())
	for i := 1; i < len(lines); i++ {
		grid.Rows = append(grid.Rows, (lines[i-1].Bounds().Bottom()+lines[i].Bounds().Top())/2)
	}
	grid.Rows = append(grid.Rows, bounds.Bottom())

	grid.Cols = make([]float64, 0, len(columns)+1)
	grid.Cols = append(grid.Cols, bounds.Left())
	grid.Cols = append(grid.Cols, columns...)
	return grid
}

// rulingsAlong reports for each boundary position whether a ruling lies on
// it
func rulingsAlong(positions []float64, rulings []model.Ruling, tolerance float64) []bool {
	out := make([]bool, len(positions))
	for i, pos := range positions {
		for _, r := range rulings {
			if math.Abs(r.Position()-pos) < tolerance {
				out[i] = true
				break
			}
		}
	}
	return out
}

// streamConfidence weighs grid regularity, text alignment, drawn lines and
// cell occupancy
func streamConfidence(grid *model.TableGrid, runs []*text.Run, lineScore, tolerance float64) float64 {
	score := 0.0

	// Factor 1: Grid regularity (0-0.3)
	score += gridRegularity(grid) * 0.3

	// Factor 2: Alignment quality (0-0.3)
	score += alignmentQuality(runs, grid, tolerance) * 0.3

	// Factor 3: Line presence (0-0.2)
	score += lineScore * 0.2

	// Factor 4: Cell occupancy (0-0.2)
	score += cellOccupancy(runs, grid) * 0.2

	return score
}

// gridRegularity scores how even the row heights and column widths are
func gridRegularity(grid *model.TableGrid) float64 {
	if grid.RowCount() < 2 || grid.ColCount() < 2 {
		return 0
	}
	rowScore := math.Max(0, 1-coefficientOfVariation(spacings(grid.Rows)))
	colScore := math.Max(0, 1-coefficientOfVariation(spacings(grid.Cols)))
	return (rowScore + colScore) / 2
}

// alignmentQuality returns the fraction of runs with at least two edges on
// grid boundaries
func alignmentQuality(runs []*text.Run, grid *model.TableGrid, tolerance float64) float64 {
	if len(runs) == 0 {
		return 0
	}
	aligned := 0
	for _, r := range runs {
		b := r.Bounds()
		n := 0
		for _, ok := range []bool{
			nearAny(b.Left(), grid.Cols, 2*tolerance),
			nearAny(b.Right(), grid.Cols, 2*tolerance),
			nearAny(b.Top(), grid.Rows, 2*tolerance),
			nearAny(b.Bottom(), grid.Rows, 2*tolerance),
		} {
			if ok {
				n++
			}
		}
		if n >= 2 {
			aligned++
		}
	}
	return float64(aligned) / float64(len(runs))
}

func nearAny(v float64, positions []float64, tolerance float64) bool {
	for _, p := range positions {
		if math.Abs(v-p) < tolerance {
			return true
		}
	}
	return false
}

// lineScore is the share of grid boundaries drawn with a ruling, averaged
// over both axes
func lineScore(grid *model.TableGrid) float64 {
	if len(grid.HasHLines) == 0 || len(grid.HasVLines) == 0 {
		return 0
	}
	return (fraction(grid.HasHLines) + fraction(grid.HasVLines)) / 2
}

func fraction(flags []bool) float64 {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return float64(n) / float64(len(flags))
}

// cellOccupancy returns the fraction of grid cells holding a run center
func cellOccupancy(runs []*text.Run, grid *model.TableGrid) float64 {
	total := grid.RowCount() * grid.ColCount()
	if total == 0 {
		return 0
	}
	occupied := make(map[[2]int]bool)
	for _, r := range runs {
		if row, col := grid.Locate(r.Bounds().Center()); row >= 0 {
			occupied[[2]int{row, col}] = true
		}
	}
	return float64(len(occupied)) / float64(total)
}

// TextRegionDetector proposes blocks of text lines that are laid out in
// several columns. Text inside chart regions is ignored.
type TextRegionDetector struct {
	config Config
}

// NewTextRegionDetector creates a text-block detector
func NewTextRegionDetector(config Config) *TextRegionDetector {
	return &TextRegionDetector{config: config}
}

// Detect splits the page text into blocks at wide vertical gaps and keeps
// the blocks with enough rows and columns. Regions are returned top to
// bottom, grown by one point so that edge rulings stay clear of the text.
func (d *TextRegionDetector) Detect(p *page.Page) ([]model.Rect, error) {
	charts := p.ChartRegions()

	var runs []*text.Run
	for _, r := range p.TextRuns() {
		if !inChart(r.Bounds(), charts) {
			runs = append(runs, r)
		}
	}

	_, avgH := p.AverageGlyphSize()
	maxGap := d.config.BlockGap * avgH

	var regions []model.Rect
	for _, block := range splitBlocks(textLines(runs), maxGap) {
		if len(block) < d.config.MinRows || len(columnPositions(block)) < d.config.MinCols {
			continue
		}
		bounds := block[0].Bounds()
		for _, l := range block[1:] {
			bounds = bounds.Union(l.Bounds())
		}
		regions = append(regions, bounds.Expand(1))
	}
	return regions, nil
}

func inChart(r model.Rect, charts []fill.Chart) bool {
	c := r.Center()
	for _, chart := range charts {
		if chart.Rect.ContainsPoint(c) {
			return true
		}
	}
	return false
}

// splitBlocks groups consecutive lines, starting a new block wherever the
// vertical gap to the previous line exceeds maxGap
func splitBlocks(lines []*text.Line, maxGap float64) [][]*text.Line {
	var blocks [][]*text.Line
	var current []*text.Line
	for _, l := range lines {
		if len(current) > 0 {
			prev := current[len(current)-1].Bounds()
			if l.Bounds().Top()-prev.Bottom() > maxGap {
				blocks = append(blocks, current)
				current = nil
			}
		}
		current = append(current, l)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}
