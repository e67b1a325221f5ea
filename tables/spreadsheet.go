package tables

import (
	"github.com/tsawler/tabextract/cell"
	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/page"
)

// SpreadsheetExtractor builds tables from the cells enclosed by rulings.
// Every set of crossing rulings on the page becomes one table.
type SpreadsheetExtractor struct {
	config Config
	grids  *GridDetector
}

// NewSpreadsheetExtractor creates a ruling-based extractor
func NewSpreadsheetExtractor(config Config) *SpreadsheetExtractor {
	return &SpreadsheetExtractor{config: config, grids: gridDetectorFor(config)}
}

func gridDetectorFor(config Config) *GridDetector {
	gd := NewGridDetector()
	if config.AlignmentTolerance > 0 {
		gd.AlignmentTolerance = config.AlignmentTolerance
	}
	if config.MinRulingLength > 0 {
		gd.MinLineLength = config.MinRulingLength
	}
	return gd
}

func (e *SpreadsheetExtractor) Name() string    { return Spreadsheet.String() }
func (e *SpreadsheetExtractor) Version() string { return "1.0" }

// Extract finds one table per ruling grid on p
func (e *SpreadsheetExtractor) Extract(p *page.Page) ([]*model.Table, error) {
	var tables []*model.Table
	for _, h := range e.grids.DetectFromRulings(p.Rulings()) {
		tables = append(tables, e.buildTable(p, h))
	}
	return tables, nil
}

// buildTable fills a table with the text of each grid cell. Cells whose
// separating ruling is missing are merged when they form a rectangle.
func (e *SpreadsheetExtractor) buildTable(p *page.Page, h *GridHypothesis) *model.Table {
	grid := h.ToTableGrid()
	table := model.NewTable(h.Rows, h.Cols)
	table.Rect = h.BBox
	table.HasGrid = true
	table.Confidence = h.Confidence
	table.Method = e.Name()

	var spans [][]span
	if e.config.DetectMergedCells {
		spans = mergedSpans(h)
	} else {
		spans = singleSpans(h.Rows, h.Cols)
	}

	for i := 0; i < h.Rows; i++ {
		for j := 0; j < h.Cols; j++ {
			s := spans[i][j]
			if s.rows == 0 {
				table.SetCell(i, j, model.Cell{Rect: grid.CellRect(i, j)})
				continue
			}
			rect := grid.CellRect(i, j).Union(grid.CellRect(i+s.rows-1, j+s.cols-1))

			c := cell.New(rect)
			c.SetPosition(i, j)
			c.CollectText(p, e.config.Merger)

			out := c.ToCell()
			out.RowSpan, out.ColSpan = s.rows, s.cols
			table.SetCell(i, j, out)
		}
	}
	return table
}

// span is the extent of a merged cell anchored at its top-left grid cell.
// Cells covered by another cell have a zero span.
type span struct {
	rows, cols int
}

func singleSpans(rows, cols int) [][]span {
	out := make([][]span, rows)
	for i := range out {
		out[i] = make([]span, cols)
		for j := range out[i] {
			out[i][j] = span{rows: 1, cols: 1}
		}
	}
	return out
}

// mergedSpans joins neighbouring grid cells that no ruling separates.
// A joined set that is not rectangular is left as single cells.
func mergedSpans(h *GridHypothesis) [][]span {
	rows, cols := h.Rows, h.Cols
	parent := make([]int, rows*cols)
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
	union := func(a, b int) {
		if ra, rb := find(a), find(b); ra != rb {
			if rb < ra {
				ra, rb = rb, ra
			}
			parent[rb] = ra
		}
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j+1 < cols && !h.HasVerticalEdge(i, j+1) {
				union(i*cols+j, i*cols+j+1)
			}
			if i+1 < rows && !h.HasHorizontalEdge(i+1, j) {
				union(i*cols+j, (i+1)*cols+j)
			}
		}
	}

	type extent struct{ top, left, bottom, right, n int }
	extents := make(map[int]*extent)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			root := find(i*cols + j)
			ex, ok := extents[root]
			if !ok {
				ex = &extent{top: i, left: j, bottom: i, right: j}
				extents[root] = ex
			}
			ex.top, ex.bottom = min(ex.top, i), max(ex.bottom, i)
			ex.left, ex.right = min(ex.left, j), max(ex.right, j)
			ex.n++
		}
	}

	out := make([][]span, rows)
	for i := range out {
		out[i] = make([]span, cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			ex := extents[find(i*cols+j)]
			height, width := ex.bottom-ex.top+1, ex.right-ex.left+1
			switch {
			case height*width != ex.n:
				out[i][j] = span{rows: 1, cols: 1}
			case i == ex.top && j == ex.left:
				out[i][j] = span{rows: height, cols: width}
			default:
				out[i][j] = span{}
			}
		}
	}
	return out
}

// RulingRegionDetector proposes the bounds of every ruling grid as a table
// region
type RulingRegionDetector struct {
	grids *GridDetector
}

// NewRulingRegionDetector creates a detector sharing the grid settings of
// config
func NewRulingRegionDetector(config Config) *RulingRegionDetector {
	return &RulingRegionDetector{grids: gridDetectorFor(config)}
}

// Detect returns the grid bounds in reading order
func (d *RulingRegionDetector) Detect(p *page.Page) ([]model.Rect, error) {
	var regions []model.Rect
	for _, h := range d.grids.DetectFromRulings(p.Rulings()) {
		regions = append(regions, h.BBox)
	}
	return regions, nil
}
