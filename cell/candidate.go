package cell

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/text"
)

const (
	// collectCoverage is the share of a run's area that must fall inside
	// the cell for the run to belong to it.
	collectCoverage = 0.5

	// Fallback average glyph size for cells without visible text.
	fallbackWidth  = 6.0
	fallbackHeight = 8.0
)

// Candidate is a provisional table cell: a rectangle, the text runs that
// belong to it and the structural metadata written by later passes.
//
// Derived values are cached. Text and text bounds are dropped whenever the
// rectangle or the run list changes; line groups and average glyph size
// depend only on the rectangle and are dropped when it moves. A Candidate
// must be confined to one goroutine until its caches are filled.
type Candidate struct {
	rect      model.Rect
	runs      []*text.Run
	collected bool

	text       string
	textCached bool
	textBounds model.Rect
	hasBounds  bool
	boundsSet  bool

	lines          []*text.Line
	avgWidth       float64
	avgHeight      float64
	linesCollected bool

	row, col int

	// Merge eligibility toward each neighbour, set by structural validators.
	CanMergeUp    bool
	CanMergeDown  bool
	CanMergeLeft  bool
	CanMergeRight bool

	// StructType is an opaque structural label; empty means unset.
	StructType string

	Status Status
}

// New creates an empty candidate covering rect. Its position is unassigned
// until SetPosition is called.
func New(rect model.Rect) *Candidate {
	return &Candidate{rect: rect, row: -1, col: -1}
}

// FromRun creates a candidate covering a single run.
func FromRun(r *text.Run) *Candidate {
	c := New(r.Bounds())
	c.SetRuns([]*text.Run{r})
	return c
}

// Bounds returns the cell rectangle.
func (c *Candidate) Bounds() model.Rect { return c.rect }

// SetBounds moves the cell and drops cached text, lines and sizes.
func (c *Candidate) SetBounds(r model.Rect) {
	c.rect = r
	c.invalidate()
	c.dropLines()
}

// Runs returns a copy of the runs currently held by the cell.
func (c *Candidate) Runs() []*text.Run {
	return append([]*text.Run(nil), c.runs...)
}

// SetRuns replaces the cell's runs and drops cached text.
func (c *Candidate) SetRuns(runs []*text.Run) {
	c.runs = append([]*text.Run(nil), runs...)
	c.invalidate()
}

// AddRun appends a run and drops cached text.
func (c *Candidate) AddRun(r *text.Run) {
	c.runs = append(c.runs, r)
	c.invalidate()
}

// Collected reports whether CollectText has run since the last mutation.
func (c *Candidate) Collected() bool { return c.collected }

func (c *Candidate) invalidate() {
	c.collected = false
	c.textCached = false
	c.text = ""
	c.boundsSet = false
}

func (c *Candidate) dropLines() {
	c.lines = nil
	c.avgWidth, c.avgHeight = 0, 0
	c.linesCollected = false
}

// CollectText gathers the runs that lie mostly inside the cell, puts them
// in reading order and lets merger coalesce them. A nil merger keeps the
// runs as found.
func (c *Candidate) CollectText(src RunSource, merger RunMerger) {
	found := SortReadingOrder(src.TextRunsIn(c.rect))

	kept := make([]*text.Run, 0, len(found))
	for _, r := range found {
		if c.rect.CoverageOf(r.Bounds()) > collectCoverage {
			kept = append(kept, r)
		}
	}
	if merger != nil {
		kept = merger.MergeRuns(kept)
	}

	c.SetRuns(kept)
	c.collected = true
}

// TextOrCollect returns the cell text, collecting it first if needed.
func (c *Candidate) TextOrCollect(src RunSource, merger RunMerger) string {
	if !c.collected {
		c.CollectText(src, merger)
	}
	return c.Text()
}

// Text returns the NFKC-normalized, trimmed text of the cell. Runs on
// different lines are separated by a newline.
func (c *Candidate) Text() string {
	if c.textCached {
		return c.text
	}

	var sb strings.Builder
	for i, r := range c.runs {
		if i > 0 && c.runs[i-1].Bounds().VerticalOverlapRatio(r.Bounds()) <= orderOverlap {
			sb.WriteString("\n")
		}
		sb.WriteString(r.Text())
	}
	c.text = strings.TrimSpace(norm.NFKC.String(sb.String()))
	c.textCached = true
	return c.text
}

// TextBounds returns the union of the cell's runs. The second result is
// false when the cell holds no runs.
func (c *Candidate) TextBounds() (model.Rect, bool) {
	if !c.boundsSet {
		c.textBounds, c.hasBounds = model.Rect{}, false
		for _, r := range c.runs {
			if !c.hasBounds {
				c.textBounds, c.hasBounds = r.Bounds(), true
			} else {
				c.textBounds = c.textBounds.Union(r.Bounds())
			}
		}
		c.boundsSet = true
	}
	return c.textBounds, c.hasBounds
}

// CollectLines segments the glyphs inside the cell (expanded by one unit)
// into lines and records their average size. Leading and trailing blank
// glyphs are ignored; a cell without visible glyphs gets a 6x8 fallback size.
func (c *Candidate) CollectLines(src GlyphSource) []*text.Line {
	glyphs := trimBlank(src.GlyphsIn(c.rect.Expand(1)))
	c.linesCollected = true

	if len(glyphs) == 0 {
		c.avgWidth, c.avgHeight = fallbackWidth, fallbackHeight
		c.lines = nil
		return nil
	}

	var w, h float64
	for _, g := range glyphs {
		w += g.Rect.Width
		h += g.Rect.Height
	}
	c.avgWidth = w / float64(len(glyphs))
	c.avgHeight = h / float64(len(glyphs))

	ordered := append([]text.Glyph(nil), glyphs...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	c.lines = text.GroupByLines(SortReadingOrder(text.Segment(ordered, nil)))
	return c.lines
}

// Lines returns the line groups recorded by CollectLines or Merge. It is
// nil after SetBounds until lines are collected again.
func (c *Candidate) Lines() []*text.Line { return c.lines }

// LinesCollected reports whether the line groups match the current
// rectangle.
func (c *Candidate) LinesCollected() bool { return c.linesCollected }

// LinesOrCollect returns the line groups, collecting them first if the
// rectangle changed since the last collection.
func (c *Candidate) LinesOrCollect(src GlyphSource) []*text.Line {
	if !c.linesCollected {
		c.CollectLines(src)
	}
	return c.lines
}

// AverageTextSize returns the average glyph width and height recorded by
// CollectLines. Both are zero after SetBounds until lines are collected
// again.
func (c *Candidate) AverageTextSize() (width, height float64) {
	return c.avgWidth, c.avgHeight
}

// AverageTextSizeOrCollect returns the average glyph size, collecting lines
// first if the rectangle changed since the last collection.
func (c *Candidate) AverageTextSizeOrCollect(src GlyphSource) (width, height float64) {
	c.LinesOrCollect(src)
	return c.avgWidth, c.avgHeight
}

// SetAverageTextSize overrides the recorded average glyph size.
func (c *Candidate) SetAverageTextSize(width, height float64) {
	c.avgWidth, c.avgHeight = width, height
}

// Position returns the row and column indices, or -1 when unassigned.
func (c *Candidate) Position() (row, col int) { return c.row, c.col }

// SetPosition assigns the row and column indices. It panics when either
// index is negative.
func (c *Candidate) SetPosition(row, col int) {
	if row < 0 || col < 0 {
		panic(fmt.Sprintf("cell: negative position (%d, %d)", row, col))
	}
	c.row, c.col = row, col
}

// Merge returns a new cell covering both c and other. Line groups are
// concatenated in argument order, average sizes are averaged and the
// structural type survives only when both cells agree on it. The result
// counts as collected only when both inputs are. Neither input is modified.
func (c *Candidate) Merge(other *Candidate) *Candidate {
	m := New(c.rect.Union(other.rect))
	m.lines = make([]*text.Line, 0, len(c.lines)+len(other.lines))
	m.lines = append(m.lines, c.lines...)
	m.lines = append(m.lines, other.lines...)
	m.avgWidth = (c.avgWidth + other.avgWidth) / 2
	m.avgHeight = (c.avgHeight + other.avgHeight) / 2
	m.linesCollected = c.linesCollected && other.linesCollected
	if c.StructType != "" && c.StructType == other.StructType {
		m.StructType = c.StructType
	}
	return m
}

// ToCell converts the candidate into a table cell.
func (c *Candidate) ToCell() model.Cell {
	return model.Cell{Text: c.Text(), Rect: c.rect, RowSpan: 1, ColSpan: 1}
}

func trimBlank(glyphs []text.Glyph) []text.Glyph {
	start, end := 0, len(glyphs)
	for start < end && glyphs[start].IsBlank() {
		start++
	}
	for end > start && glyphs[end-1].IsBlank() {
		end--
	}
	return glyphs[start:end]
}
