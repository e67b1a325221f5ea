package text

import "unicode"

// Direction represents the writing direction of text.
type Direction int

const (
	// Neutral for digits, punctuation, whitespace and symbols
	Neutral Direction = iota
	// LTR (Left-to-Right) for Latin, Cyrillic, CJK, etc.
	LTR
	// RTL (Right-to-Left) for Arabic, Hebrew, etc.
	RTL
)

// String returns "LTR", "RTL" or "Neutral".
func (d Direction) String() string {
	switch d {
	case LTR:
		return "LTR"
	case RTL:
		return "RTL"
	case Neutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// Strong returns d with Neutral resolved to LTR.
func (d Direction) Strong() Direction {
	if d == RTL {
		return RTL
	}
	return LTR
}

var rtlScripts = []*unicode.RangeTable{
	unicode.Arabic,
	unicode.Hebrew,
	unicode.Syriac,
	unicode.Thaana,
	unicode.Nko,
	unicode.Samaritan,
	unicode.Mandaic,
	unicode.Adlam,
}

// CharDirection returns the inherent direction of a single character.
// Unknown scripts are treated as LTR.
func CharDirection(r rune) Direction {
	switch {
	case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSpace(r), unicode.IsSymbol(r):
		return Neutral
	case unicode.IsOneOf(rtlScripts, r):
		return RTL
	case unicode.IsMark(r), unicode.IsControl(r):
		return Neutral
	default:
		return LTR
	}
}

// DetectDirection returns the dominant direction of s by counting strong
// characters. Ties go to LTR; a string without strong characters is Neutral.
func DetectDirection(s string) Direction {
	ltr, rtl := 0, 0
	for _, r := range s {
		switch CharDirection(r) {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	switch {
	case ltr == 0 && rtl == 0:
		return Neutral
	case rtl > ltr:
		return RTL
	default:
		return LTR
	}
}
