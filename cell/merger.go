package cell

import (
	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/text"
)

// RunSource returns the page's text runs overlapping a rectangle.
type RunSource interface {
	TextRunsIn(r model.Rect) []*text.Run
}

// GlyphSource returns the page's glyphs lying inside a rectangle, in
// drawing order.
type GlyphSource interface {
	GlyphsIn(r model.Rect) []text.Glyph
}

// RunMerger coalesces fragmented runs collected for a cell.
type RunMerger interface {
	MergeRuns(runs []*text.Run) []*text.Run
}

// MergerFunc adapts a function to RunMerger.
type MergerFunc func(runs []*text.Run) []*text.Run

// MergeRuns calls f.
func (f MergerFunc) MergeRuns(runs []*text.Run) []*text.Run { return f(runs) }

// DefaultMerger fuses consecutive runs that share a line and sit closer
// than one average glyph width, inserting a space where the gap looks like
// a word break.
type DefaultMerger struct{}

// MergeRuns implements RunMerger. Input runs are left untouched.
func (DefaultMerger) MergeRuns(runs []*text.Run) []*text.Run {
	if len(runs) == 0 {
		return nil
	}

	var out []*text.Run
	current := clone(runs[0])
	for _, next := range runs[1:] {
		if gap, ok := fusable(current, next); ok {
			if gap > 0.3*pairWidth(current, next) && !current.EndsWithSpace() && !next.First().IsBlank() {
				current.Append(spaceBetween(current, gap))
			}
			current.Extend(next)
			continue
		}
		out = append(out, current)
		current = clone(next)
	}
	return append(out, current)
}

func fusable(a, b *text.Run) (float64, bool) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.VerticalOverlapRatio(bb) <= 0.5 {
		return 0, false
	}
	gap := bb.Left() - ab.Right()
	return gap, gap < pairWidth(a, b)
}

func pairWidth(a, b *text.Run) float64 {
	wa, _ := a.AverageGlyphSize()
	wb, _ := b.AverageGlyphSize()
	switch {
	case wa == 0:
		return wb
	case wb == 0:
		return wa
	default:
		return (wa + wb) / 2
	}
}

func spaceBetween(r *text.Run, gap float64) text.Glyph {
	last := r.Last()
	return text.Glyph{
		Text:       " ",
		Rect:       model.NewRect(last.Rect.Right(), last.Rect.Top(), gap, last.Rect.Height),
		FontName:   last.FontName,
		FontSize:   last.FontSize,
		SpaceWidth: last.SpaceWidth,
		Direction:  text.Neutral,
		Index:      last.Index,
	}
}

func clone(r *text.Run) *text.Run {
	c := text.NewRun(r.First())
	for _, g := range r.Glyphs()[1:] {
		c.Append(g)
	}
	return c
}
