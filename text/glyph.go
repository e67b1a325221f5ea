package text

import (
	"strings"

	"github.com/tsawler/tabextract/model"
)

// Glyph is one rendered character as produced by a page decoder.
type Glyph struct {
	Text       string
	Rect       model.Rect
	FontName   string
	FontSize   float64
	SpaceWidth float64 // Declared inter-word space width; 0 or NaN when unknown
	Direction  Direction
	Index      int // Position in the decoder's drawing order
}

// NewGlyph creates a glyph and derives its direction from text.
func NewGlyph(text string, rect model.Rect, fontName string, fontSize, spaceWidth float64) Glyph {
	return Glyph{
		Text:       text,
		Rect:       rect,
		FontName:   fontName,
		FontSize:   fontSize,
		SpaceWidth: spaceWidth,
		Direction:  DetectDirection(text),
	}
}

// Bounds returns the glyph's bounding rectangle.
func (g Glyph) Bounds() model.Rect { return g.Rect }

// IsBlank reports whether the glyph renders only whitespace.
func (g Glyph) IsBlank() bool {
	return strings.TrimSpace(g.Text) == ""
}

// WritingDirection returns the declared direction, falling back to the
// direction of the glyph's text when none was declared.
func (g Glyph) WritingDirection() Direction {
	if g.Direction != Neutral {
		return g.Direction
	}
	return DetectDirection(g.Text)
}

func (g Glyph) sameFont(other Glyph) bool {
	return g.FontName == other.FontName && model.FloatEqual(g.FontSize, other.FontSize, 0.1)
}
