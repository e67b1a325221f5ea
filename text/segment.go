package text

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/tsawler/tabextract/model"
)

const (
	// duplicateOverlap is the intersection-over-union above which an
	// identical glyph is treated as a rendering duplicate.
	duplicateOverlap = 0.5

	// spaceTolerance scales the declared space width into an expected gap.
	spaceTolerance = 0.5

	// averageCharTolerance scales the running glyph width into an expected gap.
	averageCharTolerance = 0.3

	// sameLineVariance is how far two bottoms may differ and still share a line.
	sameLineVariance = 0.1
)

// lineState tracks the line currently being filled.
type lineState struct {
	maxBottom float64
	maxHeight float64
	lastRight float64
}

func (l *lineState) reset() {
	l.maxBottom = -math.MaxFloat64
	l.maxHeight = -1
}

func (l *lineState) extend(g Glyph) {
	l.maxBottom = math.Max(l.maxBottom, g.Rect.Bottom())
	l.maxHeight = math.Max(l.maxHeight, g.Rect.Height)
}

// contains reports whether g shares the line, comparing bottoms and heights.
func (l *lineState) contains(g Glyph) bool {
	b, h := g.Rect.Bottom(), g.Rect.Height
	return model.FloatEqual(b, l.maxBottom, sameLineVariance) ||
		(l.maxBottom <= b && l.maxBottom >= b-h) ||
		(b <= l.maxBottom && b >= l.maxBottom-l.maxHeight)
}

// Segment groups glyphs, given in drawing order, into text runs.
//
// Consecutive glyphs join the same run when they sit on the same line, no
// vertical ruling separates them, and the gap between them is below the
// word-spacing threshold. A space glyph is synthesized wherever the gap is
// wider than expected for adjacent characters. Finally every run is split so
// that none mixes left-to-right and right-to-left content.
//
// When a glyph declares no space width (0 or NaN), the word-spacing
// threshold falls back to the expected character gap, so closely set glyphs
// still join one run instead of each starting its own.
func Segment(glyphs []Glyph, verticalRulings []model.Ruling) []*Run {
	if len(glyphs) == 0 {
		return nil
	}

	first := glyphs[0]
	runs := []*Run{NewRun(first)}

	prevAvgWidth := first.Rect.Width
	lastSpaceWidth := -1.0
	line := lineState{
		maxBottom: first.Rect.Bottom(),
		maxHeight: first.Rect.Height,
		lastRight: first.Rect.Right(),
	}

	for _, g := range glyphs[1:] {
		current := runs[len(runs)-1]
		prev := current.Last()

		if isDuplicate(prev, g) {
			continue
		}

		if !g.sameFont(prev) {
			prevAvgWidth = -1
		}

		crossing := crossesRuling(prev, g, verticalRulings)

		spaceWidth := g.SpaceWidth
		deltaSpace := math.MaxFloat64
		if !math.IsNaN(spaceWidth) && spaceWidth != 0 {
			if lastSpaceWidth < 0 {
				deltaSpace = spaceWidth * spaceTolerance
			} else {
				deltaSpace = (spaceWidth + lastSpaceWidth) / 2 * spaceTolerance
			}
		}

		avgWidth := g.Rect.Width / float64(max(1, utf8.RuneCountInString(g.Text)))
		if prevAvgWidth >= 0 {
			avgWidth = (prevAvgWidth + avgWidth) / 2
		}
		expectedGap := math.Min(avgWidth*averageCharTolerance, deltaSpace)

		expectedStart := line.lastRight + expectedGap

		sameLine := line.contains(g)
		if !sameLine {
			line.reset()
			expectedStart = -math.MaxFloat64
		}
		line.lastRight = g.Rect.Right()

		var space *Glyph
		if !crossing && sameLine && expectedStart < g.Rect.Left() && !prev.IsBlank() {
			sp := synthesizeSpace(prev, expectedStart)
			current.Append(sp)
			space = &sp
		}

		line.extend(g)

		gapFrom := prev.Rect.Right()
		if space != nil {
			gapFrom = space.Rect.Right()
		}
		gap := g.Rect.Left() - gapFrom

		threshold := spaceWidth
		if math.IsNaN(threshold) || threshold == 0 {
			threshold = expectedGap
		}

		joins := gap < threshold
		if gap < 0 {
			joins = current.Bounds().VerticalOverlap(g.Rect) > 0
		}

		if !crossing && sameLine && joins {
			current.Append(g)
		} else {
			runs = append(runs, NewRun(g))
		}

		if !math.IsNaN(spaceWidth) {
			lastSpaceWidth = spaceWidth
		}
		if space != nil {
			prevAvgWidth = (avgWidth + space.Rect.Width) / 2
		} else {
			prevAvgWidth = avgWidth
		}
	}

	var out []*Run
	for _, r := range runs {
		out = append(out, SplitByDirection(r)...)
	}
	return out
}

// isDuplicate reports whether g repeats prev: the same character drawn on
// top of it, or a space drawn at its position.
func isDuplicate(prev, g Glyph) bool {
	if g.Text == prev.Text && prev.Rect.OverlapRatio(g.Rect) > duplicateOverlap {
		return true
	}
	return g.Text == " " &&
		model.FloatEqual(prev.Rect.Left(), g.Rect.Left(), sameLineVariance) &&
		model.FloatEqual(prev.Rect.Top(), g.Rect.Top(), sameLineVariance)
}

// crossesRuling reports whether a vertical ruling passes between a and b.
func crossesRuling(a, b Glyph, verticalRulings []model.Ruling) bool {
	for _, r := range verticalRulings {
		rb := r.Bounds()
		if !overlapsVertically(a.Rect, rb) || !overlapsVertically(b.Rect, rb) {
			continue
		}
		x := r.Position()
		lo, hi := math.Min(a.Rect.Left(), b.Rect.Left()), math.Max(a.Rect.Left(), b.Rect.Left())
		if lo < x && x < hi {
			return true
		}
	}
	return false
}

func overlapsVertically(r, ruling model.Rect) bool {
	return math.Min(r.Bottom(), ruling.Bottom())-math.Max(r.Top(), ruling.Top()) > 0
}

func synthesizeSpace(prev Glyph, expectedStart float64) Glyph {
	return Glyph{
		Text:       " ",
		Rect:       model.NewRect(prev.Rect.Left(), prev.Rect.Top(), expectedStart-prev.Rect.Left(), prev.Rect.Height),
		FontName:   prev.FontName,
		FontSize:   prev.FontSize,
		SpaceWidth: prev.SpaceWidth,
		Direction:  Neutral,
		Index:      prev.Index,
	}
}

// SplitByDirection breaks r wherever the strong writing direction flips.
// Neutral glyphs stay with the sub-run they follow; leading neutral glyphs
// join the first strong sub-run. A run without strong glyphs is returned
// unchanged.
func SplitByDirection(r *Run) []*Run {
	var (
		out     []*Run
		current *Run
		dir     = Neutral
	)
	for _, g := range r.glyphs {
		gd := g.WritingDirection()
		if current != nil && gd != Neutral && dir != Neutral && gd != dir {
			out = append(out, current)
			current = nil
		}
		if current == nil {
			current = NewRun(g)
		} else {
			current.Append(g)
		}
		if gd != Neutral {
			dir = gd
		}
	}
	if current != nil {
		out = append(out, current)
	}
	return out
}

// GroupByLines collects runs, given top to bottom, into lines. A run starts
// a new line when it barely overlaps the current one vertically.
func GroupByLines(runs []*Run) []*Line {
	var lines []*Line
	var last *Line
	for _, r := range runs {
		if last == nil || last.Bounds().VerticalOverlapRatio(r.Bounds()) < 0.1 {
			last = &Line{}
			lines = append(lines, last)
		}
		last.add(r)
	}
	for _, l := range lines {
		sortByLeft(l.Runs)
	}
	return lines
}

func sortByLeft(runs []*Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Bounds().Left() < runs[j].Bounds().Left()
	})
}
