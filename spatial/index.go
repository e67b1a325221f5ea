package spatial

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/tsawler/tabextract/model"
)

// Boxed is anything with a bounding rectangle in page space.
type Boxed interface {
	Bounds() model.Rect
}

type entry[T Boxed] struct {
	item T
	rect model.Rect
	seq  int
}

// Index is an R-tree over rectangle-bearing items. The zero value is an
// empty index ready for use.
//
// Query results are always returned in reading order. An Index must not be
// mutated concurrently; once it stops changing, queries may run from any
// number of goroutines.
type Index[T Boxed] struct {
	tree   rtree.RTreeG[entry[T]]
	bounds model.Rect
	count  int
}

// New creates an index holding items.
func New[T Boxed](items ...T) *Index[T] {
	ix := &Index[T]{}
	ix.AddAll(items)
	return ix
}

// Add inserts one item and extends the running bounds.
func (ix *Index[T]) Add(item T) {
	r := item.Bounds()
	ix.tree.Insert(corners(r), farCorner(r), entry[T]{item: item, rect: r, seq: ix.count})
	if ix.count == 0 {
		ix.bounds = r
	} else {
		ix.bounds = ix.bounds.Union(r)
	}
	ix.count++
}

// AddAll inserts every item in order.
func (ix *Index[T]) AddAll(items []T) {
	for _, item := range items {
		ix.Add(item)
	}
}

// Clear removes every item so the index can be reused.
func (ix *Index[T]) Clear() {
	ix.tree = rtree.RTreeG[entry[T]]{}
	ix.bounds = model.Rect{}
	ix.count = 0
}

// Len returns the number of items in the index.
func (ix *Index[T]) Len() int {
	return ix.count
}

// Bounds returns the bounding rectangle of all items. The second result is
// false when the index is empty.
func (ix *Index[T]) Bounds() (model.Rect, bool) {
	if ix.count == 0 {
		return model.Rect{}, false
	}
	return ix.bounds, true
}

// Contains returns the items lying fully inside query.
func (ix *Index[T]) Contains(query model.Rect) []T {
	return ix.search(query, query.Contains)
}

// Intersects returns the items overlapping query. Touching edges count.
func (ix *Index[T]) Intersects(query model.Rect) []T {
	return ix.search(query, query.Intersects)
}

// All returns every item in reading order.
func (ix *Index[T]) All() []T {
	var found []entry[T]
	ix.tree.Scan(func(_, _ [2]float64, e entry[T]) bool {
		found = append(found, e)
		return true
	})
	return collect(found)
}

func (ix *Index[T]) search(query model.Rect, keep func(model.Rect) bool) []T {
	var found []entry[T]
	ix.tree.Search(corners(query), farCorner(query), func(_, _ [2]float64, e entry[T]) bool {
		if keep(e.rect) {
			found = append(found, e)
		}
		return true
	})
	return collect(found)
}

func collect[T Boxed](found []entry[T]) []T {
	sort.Slice(found, func(i, j int) bool {
		if c := compareReading(found[i].rect, found[j].rect); c != 0 {
			return c < 0
		}
		return found[i].seq < found[j].seq
	})
	items := make([]T, len(found))
	for i, e := range found {
		items[i] = e.item
	}
	return items
}

func corners(r model.Rect) [2]float64 {
	return [2]float64{r.Left(), r.Top()}
}

func farCorner(r model.Rect) [2]float64 {
	return [2]float64{r.Right(), r.Bottom()}
}

// SortReadingOrder stably sorts items top-to-bottom, then left-to-right.
func SortReadingOrder[T Boxed](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return compareReading(items[i].Bounds(), items[j].Bounds()) < 0
	})
}

// ReadingLess reports whether a comes before b in reading order.
func ReadingLess(a, b model.Rect) bool {
	return compareReading(a, b) < 0
}

// compareReading orders by top edge, then left edge, both rounded to two
// decimals so float jitter does not reorder items on the same line.
func compareReading(a, b model.Rect) int {
	if at, bt := round2(a.Top()), round2(b.Top()); at != bt {
		if at < bt {
			return -1
		}
		return 1
	}
	if al, bl := round2(a.Left()), round2(b.Left()); al != bl {
		if al < bl {
			return -1
		}
		return 1
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
