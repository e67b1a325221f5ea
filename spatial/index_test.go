package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabextract/model"
)

type box struct {
	name string
	rect model.Rect
}

func (b box) Bounds() model.Rect { return b.rect }

func names(items []box) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.name
	}
	return out
}

func assertReadingOrder(t *testing.T, items []box) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1].rect, items[i].rect
		assert.False(t, ReadingLess(cur, prev), "%s before %s", items[i-1].name, items[i].name)
	}
}

func sampleBoxes() []box {
	return []box{
		{"c", model.NewRect(50, 30, 10, 10)},
		{"a", model.NewRect(0, 0, 10, 10)},
		{"d", model.NewRect(0, 30.001, 10, 10)},
		{"b", model.NewRect(40, 0, 10, 10)},
		{"point", model.NewRect(70, 70, 0, 0)},
	}
}

func TestIndex_Empty(t *testing.T) {
	var ix Index[box]
	_, ok := ix.Bounds()
	assert.False(t, ok)
	assert.Zero(t, ix.Len())
	assert.Empty(t, ix.Intersects(model.NewRect(0, 0, 100, 100)))
	assert.Empty(t, ix.Contains(model.NewRect(0, 0, 100, 100)))
}

func TestIndex_IntersectsBoundsReturnsEverything(t *testing.T) {
	items := sampleBoxes()
	ix := New(items...)

	bounds, ok := ix.Bounds()
	require.True(t, ok)
	assert.Equal(t, model.NewRect(0, 0, 70, 70), bounds)

	all := ix.Intersects(bounds)
	assert.Len(t, all, len(items))
	assertReadingOrder(t, all)
}

func TestIndex_ReadingOrderRoundsJitter(t *testing.T) {
	ix := New(sampleBoxes()...)
	got := names(ix.All())
	// "d" sits 0.001 below "c", which rounds away, so left edge decides.
	assert.Equal(t, []string{"a", "b", "d", "c", "point"}, got)
}

func TestIndex_Contains(t *testing.T) {
	ix := New(sampleBoxes()...)

	got := ix.Contains(model.NewRect(0, 0, 50, 10))
	assert.Equal(t, []string{"a", "b"}, names(got))

	got = ix.Contains(model.NewRect(0, 0, 49, 10))
	assert.Equal(t, []string{"a"}, names(got), "partially covered items are excluded")

	got = ix.Contains(model.NewRect(70, 70, 0, 0))
	assert.Equal(t, []string{"point"}, names(got), "degenerate rectangles are supported")
}

func TestIndex_ContainsIncludesNestedRect(t *testing.T) {
	inner := box{"inner", model.NewRect(10, 10, 5, 5)}
	outer := model.NewRect(5, 5, 20, 20)
	ix := New(inner, box{"far", model.NewRect(100, 100, 1, 1)})
	assert.Contains(t, names(ix.Contains(outer)), "inner")
}

func TestIndex_IntersectsTouchingEdges(t *testing.T) {
	ix := New(box{"a", model.NewRect(0, 0, 10, 10)})
	assert.Len(t, ix.Intersects(model.NewRect(10, 10, 5, 5)), 1)
	assert.Empty(t, ix.Intersects(model.NewRect(10.5, 10.5, 5, 5)))
}

func TestIndex_StableForIdenticalRects(t *testing.T) {
	r := model.NewRect(1, 1, 1, 1)
	ix := New(box{"first", r}, box{"second", r}, box{"third", r})
	assert.Equal(t, []string{"first", "second", "third"}, names(ix.Intersects(r)))
}

func TestIndex_ClearAndReuse(t *testing.T) {
	ix := New(sampleBoxes()...)
	ix.Clear()

	_, ok := ix.Bounds()
	assert.False(t, ok)
	assert.Empty(t, ix.All())

	ix.Add(box{"z", model.NewRect(5, 5, 1, 1)})
	bounds, ok := ix.Bounds()
	require.True(t, ok)
	assert.Equal(t, model.NewRect(5, 5, 1, 1), bounds)
	assert.Equal(t, 1, ix.Len())
}

func TestSortReadingOrder(t *testing.T) {
	items := sampleBoxes()
	SortReadingOrder(items)
	assert.Equal(t, []string{"a", "b", "d", "c", "point"}, names(items))
}
