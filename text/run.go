package text

import (
	"strings"

	"github.com/tsawler/tabextract/model"
)

// Run is a contiguous group of glyphs forming a word or line fragment.
// It owns its glyphs and always holds at least one.
type Run struct {
	glyphs []Glyph
	rect   model.Rect
}

// NewRun creates a run from one or more glyphs.
func NewRun(first Glyph, rest ...Glyph) *Run {
	r := &Run{glyphs: make([]Glyph, 0, 1+len(rest)), rect: first.Rect}
	r.Append(first)
	for _, g := range rest {
		r.Append(g)
	}
	return r
}

// Append adds a glyph to the end of the run and grows its bounds.
func (r *Run) Append(g Glyph) {
	if len(r.glyphs) == 0 {
		r.rect = g.Rect
	} else {
		r.rect = r.rect.Union(g.Rect)
	}
	r.glyphs = append(r.glyphs, g)
}

// Extend appends every glyph of other.
func (r *Run) Extend(other *Run) {
	for _, g := range other.glyphs {
		r.Append(g)
	}
}

// Glyphs returns the run's glyphs. The slice must not be modified.
func (r *Run) Glyphs() []Glyph { return r.glyphs }

// Len returns the number of glyphs.
func (r *Run) Len() int { return len(r.glyphs) }

// Bounds returns the union of the glyph rectangles.
func (r *Run) Bounds() model.Rect { return r.rect }

// First returns the first glyph.
func (r *Run) First() Glyph { return r.glyphs[0] }

// Last returns the last glyph.
func (r *Run) Last() Glyph { return r.glyphs[len(r.glyphs)-1] }

// Text concatenates the glyph texts.
func (r *Run) Text() string {
	var sb strings.Builder
	for _, g := range r.glyphs {
		sb.WriteString(g.Text)
	}
	return sb.String()
}

// EndsWithSpace reports whether the last glyph is whitespace.
func (r *Run) EndsWithSpace() bool {
	return len(r.glyphs) > 0 && r.Last().IsBlank()
}

// IsBlank reports whether every glyph is whitespace.
func (r *Run) IsBlank() bool {
	for _, g := range r.glyphs {
		if !g.IsBlank() {
			return false
		}
	}
	return true
}

// Direction returns the dominant writing direction, counting neutral
// glyphs as LTR.
func (r *Run) Direction() Direction {
	ltr, rtl := 0, 0
	for _, g := range r.glyphs {
		switch g.WritingDirection() {
		case RTL:
			rtl++
		case LTR:
			ltr++
		}
	}
	if rtl > ltr {
		return RTL
	}
	return LTR
}

// AverageGlyphSize returns the mean width and height of the non-blank glyphs,
// or zeros when the run is blank.
func (r *Run) AverageGlyphSize() (width, height float64) {
	n := 0
	for _, g := range r.glyphs {
		if g.IsBlank() {
			continue
		}
		width += g.Rect.Width
		height += g.Rect.Height
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return width / float64(n), height / float64(n)
}

// Line is a horizontal band of runs ordered left to right.
type Line struct {
	Runs []*Run
	rect model.Rect
}

// Bounds returns the union of the line's runs.
func (l *Line) Bounds() model.Rect { return l.rect }

// Text joins the runs of the line.
func (l *Line) Text() string {
	var sb strings.Builder
	for _, r := range l.Runs {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

func (l *Line) add(r *Run) {
	if len(l.Runs) == 0 {
		l.rect = r.Bounds()
	} else {
		l.rect = l.rect.Union(r.Bounds())
	}
	l.Runs = append(l.Runs, r)
}
