package cell

import (
	"sort"

	"github.com/tsawler/tabextract/text"
)

const (
	// orderOverlap is the overlap ratio two runs need to count as stacked
	// or side by side when checking an existing order.
	orderOverlap = 0.5

	// bandOverlap is the vertical overlap ratio a run needs with the first
	// run of a band to join that band.
	bandOverlap = 0.8
)

// SortReadingOrder returns runs in reading order. When the given order is
// already plausible it is kept as is; otherwise runs are regrouped into
// horizontal bands, each band read left to right, bands top to bottom.
// The input slice is not modified.
func SortReadingOrder(runs []*text.Run) []*text.Run {
	out := append([]*text.Run(nil), runs...)
	if inReadingOrder(out) {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Bounds().Top() < out[j].Bounds().Top()
	})

	sorted := make([]*text.Run, 0, len(out))
	for start := 0; start < len(out); {
		head := out[start].Bounds()
		end := start + 1
		for end < len(out) && head.VerticalOverlapRatio(out[end].Bounds()) > bandOverlap {
			end++
		}
		band := out[start:end]
		sort.SliceStable(band, func(i, j int) bool {
			return band[i].Bounds().Left() < band[j].Bounds().Left()
		})
		sorted = append(sorted, band...)
		start = end
	}
	return sorted
}

// inReadingOrder reports whether every consecutive pair is stacked top to
// bottom, placed left to right, or continues diagonally down and left.
func inReadingOrder(runs []*text.Run) bool {
	for i := 1; i < len(runs); i++ {
		a, b := runs[i-1].Bounds(), runs[i].Bounds()
		hRatio := a.HorizontalOverlapRatio(b)
		vRatio := a.VerticalOverlapRatio(b)

		stacked := hRatio > orderOverlap && a.Bottom() <= b.Top()
		sideBySide := vRatio > orderOverlap && a.Right() <= b.Left()
		diagonal := hRatio <= orderOverlap && vRatio <= orderOverlap &&
			b.Left() < a.Left() && b.Top() > a.Bottom()

		if !stacked && !sideBySide && !diagonal {
			return false
		}
	}
	return true
}
