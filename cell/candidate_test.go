package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/spatial"
	"github.com/tsawler/tabextract/text"
)

func word(s string, x, y float64) *text.Run {
	var glyphs []text.Glyph
	for i, ch := range s {
		glyphs = append(glyphs, text.NewGlyph(string(ch), model.NewRect(x+float64(6*i), y, 6, 10), "F", 10, 3))
	}
	return text.NewRun(glyphs[0], glyphs[1:]...)
}

func texts(runs []*text.Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.Text()
	}
	return out
}

type runIndex struct {
	ix    *spatial.Index[*text.Run]
	calls int
}

func newRunIndex(runs ...*text.Run) *runIndex {
	return &runIndex{ix: spatial.New(runs...)}
}

func (s *runIndex) TextRunsIn(r model.Rect) []*text.Run {
	s.calls++
	return s.ix.Intersects(r)
}

type glyphList []text.Glyph

func (l glyphList) GlyphsIn(r model.Rect) []text.Glyph {
	var out []text.Glyph
	for _, g := range l {
		if r.Contains(g.Rect) {
			out = append(out, g)
		}
	}
	return out
}

func TestCollectText_KeepsRunsMostlyInside(t *testing.T) {
	src := newRunIndex(
		word("hello", 0, 0),
		word("edge", 45, 0),
		word("far", 200, 200),
	)
	c := New(model.NewRect(0, 0, 50, 12))
	c.CollectText(src, nil)

	assert.True(t, c.Collected())
	assert.Equal(t, []string{"hello"}, texts(c.Runs()))
	assert.Equal(t, "hello", c.Text())
}

func TestCollectText_UsesMerger(t *testing.T) {
	src := newRunIndex(word("cd", 14, 0), word("ab", 0, 0))
	c := New(model.NewRect(0, 0, 50, 12))
	c.CollectText(src, DefaultMerger{})
	assert.Equal(t, "ab cd", c.Text())
	require.Len(t, c.Runs(), 1)
}

func TestCollectText_MultiLineCell(t *testing.T) {
	src := newRunIndex(word("second", 0, 14), word("first", 0, 0))
	c := New(model.NewRect(0, 0, 60, 30))
	c.CollectText(src, DefaultMerger{})
	assert.Equal(t, "first\nsecond", c.Text())
}

func TestText_NormalizesAndTrims(t *testing.T) {
	c := New(model.NewRect(0, 0, 50, 12))
	c.SetRuns([]*text.Run{word(" ﬁne ", 0, 0)})
	assert.Equal(t, "fine", c.Text())
}

func TestText_CacheInvalidatedOnMutation(t *testing.T) {
	c := New(model.NewRect(0, 0, 100, 12))
	c.AddRun(word("a", 0, 0))
	assert.Equal(t, "a", c.Text())

	c.AddRun(word("b", 6, 0))
	assert.Equal(t, "ab", c.Text())

	bounds, ok := c.TextBounds()
	require.True(t, ok)
	assert.Equal(t, model.NewRect(0, 0, 12, 10), bounds)

	c.SetRuns(nil)
	assert.Equal(t, "", c.Text())
	_, ok = c.TextBounds()
	assert.False(t, ok)
}

func TestSetBounds_DropsLines(t *testing.T) {
	glyphs := glyphList{
		text.NewGlyph("a", model.NewRect(0, 0, 6, 10), "F", 10, 3),
		text.NewGlyph("b", model.NewRect(100, 100, 8, 12), "F", 10, 3),
	}
	c := New(model.NewRect(0, 0, 10, 12))
	c.CollectLines(glyphs)
	require.True(t, c.LinesCollected())

	c.SetBounds(model.NewRect(100, 100, 10, 14))
	assert.False(t, c.LinesCollected())
	assert.Empty(t, c.Lines())
	w, h := c.AverageTextSize()
	assert.Zero(t, w)
	assert.Zero(t, h)

	other := New(model.NewRect(0, 50, 10, 12))
	other.CollectLines(glyphs)
	merged := c.Merge(other)
	assert.Empty(t, merged.Lines())
	assert.False(t, merged.LinesCollected())

	lines := c.LinesOrCollect(glyphs)
	require.Len(t, lines, 1)
	assert.Equal(t, "b", lines[0].Text())
	w, h = c.AverageTextSizeOrCollect(glyphs)
	assert.Equal(t, 8.0, w)
	assert.Equal(t, 12.0, h)
}

func TestLinesOrCollect_CollectsOnce(t *testing.T) {
	glyphs := glyphList{text.NewGlyph("a", model.NewRect(0, 0, 6, 10), "F", 10, 3)}
	c := New(model.NewRect(0, 0, 10, 12))
	first := c.LinesOrCollect(glyphs)
	require.Len(t, first, 1)
	assert.Same(t, first[0], c.LinesOrCollect(nil)[0])

	// Runs do not affect line groups.
	c.SetRuns([]*text.Run{word("z", 0, 0)})
	assert.True(t, c.LinesCollected())
}

func TestRuns_ReturnsCopy(t *testing.T) {
	c := New(model.NewRect(0, 0, 100, 12))
	c.SetRuns([]*text.Run{word("a", 0, 0)})
	assert.Equal(t, "a", c.Text())

	runs := c.Runs()
	runs[0] = word("b", 0, 0)
	assert.Equal(t, "a", c.Text())
	assert.Equal(t, []string{"a"}, texts(c.Runs()))
}

func TestTextOrCollect_CollectsOnce(t *testing.T) {
	src := newRunIndex(word("x", 0, 0))
	c := New(model.NewRect(0, 0, 10, 12))
	assert.Equal(t, "x", c.TextOrCollect(src, nil))
	assert.Equal(t, "x", c.TextOrCollect(src, nil))
	assert.Equal(t, 1, src.calls)

	c.SetBounds(model.NewRect(0, 0, 20, 12))
	assert.False(t, c.Collected())
	c.TextOrCollect(src, nil)
	assert.Equal(t, 2, src.calls)
}

func TestCollectLines_AverageSize(t *testing.T) {
	glyphs := glyphList{
		text.NewGlyph(" ", model.NewRect(0, 0, 2, 2), "F", 10, 3),
		text.NewGlyph("a", model.NewRect(2, 0, 4, 8), "F", 10, 3),
		text.NewGlyph("b", model.NewRect(6, 0, 8, 12), "F", 10, 3),
		text.NewGlyph(" ", model.NewRect(14, 0, 2, 2), "F", 10, 3),
	}
	c := New(model.NewRect(0, 0, 20, 12))
	lines := c.CollectLines(glyphs)

	w, h := c.AverageTextSize()
	assert.Equal(t, 6.0, w)
	assert.Equal(t, 10.0, h)
	require.Len(t, lines, 1)
	assert.Equal(t, "ab", lines[0].Text())
	assert.Equal(t, lines, c.Lines())
}

func TestCollectLines_FallbackSize(t *testing.T) {
	c := New(model.NewRect(0, 0, 20, 12))
	lines := c.CollectLines(glyphList{text.NewGlyph(" ", model.NewRect(1, 1, 2, 2), "F", 10, 3)})
	assert.Empty(t, lines)

	w, h := c.AverageTextSize()
	assert.Equal(t, 6.0, w)
	assert.Equal(t, 8.0, h)
}

func TestMerge(t *testing.T) {
	glyphs := glyphList{
		text.NewGlyph("a", model.NewRect(0, 0, 6, 10), "F", 10, 3),
		text.NewGlyph("b", model.NewRect(0, 20, 6, 10), "F", 10, 3),
	}
	a := New(model.NewRect(0, 0, 10, 12))
	a.CollectLines(glyphs)
	a.StructType = "header"
	b := New(model.NewRect(0, 18, 10, 14))
	b.CollectLines(glyphs)
	b.StructType = "header"
	b.SetAverageTextSize(10, 20)

	ab := a.Merge(b)
	ba := b.Merge(a)

	assert.Equal(t, ab.Bounds(), ba.Bounds())
	assert.Equal(t, model.NewRect(0, 0, 10, 32), ab.Bounds())
	require.Len(t, ab.Lines(), 2)
	assert.Equal(t, "a", ab.Lines()[0].Text())
	assert.Equal(t, "b", ba.Lines()[0].Text())
	assert.Equal(t, "header", ab.StructType)

	w, h := ab.AverageTextSize()
	assert.Equal(t, 8.0, w)
	assert.Equal(t, 15.0, h)

	assert.Equal(t, model.NewRect(0, 0, 10, 12), a.Bounds(), "inputs are not modified")
	assert.Len(t, a.Lines(), 1)
}

func TestMerge_StructTypeRequiresAgreement(t *testing.T) {
	a, b := New(model.NewRect(0, 0, 1, 1)), New(model.NewRect(1, 0, 1, 1))
	a.StructType = "header"
	assert.Empty(t, a.Merge(b).StructType)

	b.StructType = "body"
	assert.Empty(t, a.Merge(b).StructType)

	a.StructType = ""
	b.StructType = ""
	assert.Empty(t, a.Merge(b).StructType)
}

func TestPosition(t *testing.T) {
	c := New(model.NewRect(0, 0, 1, 1))
	row, col := c.Position()
	assert.Equal(t, -1, row)
	assert.Equal(t, -1, col)

	c.SetPosition(2, 3)
	row, col = c.Position()
	assert.Equal(t, 2, row)
	assert.Equal(t, 3, col)

	assert.Panics(t, func() { c.SetPosition(-1, 0) })
	assert.Panics(t, func() { c.SetPosition(0, -1) })
}

func TestFlagsAndStatusAreStoredOnly(t *testing.T) {
	c := FromRun(word("x", 0, 0))
	assert.False(t, c.CanMergeUp || c.CanMergeDown || c.CanMergeLeft || c.CanMergeRight)
	assert.Equal(t, StatusNormal, c.Status)

	c.CanMergeRight = true
	c.Status = StatusConfused
	c.AddRun(word("y", 6, 0))
	assert.True(t, c.CanMergeRight)
	assert.Equal(t, StatusConfused, c.Status)
	assert.Equal(t, "Confused", c.Status.String())
	assert.Equal(t, "Abnormal", StatusAbnormal.String())
}

func TestToCell(t *testing.T) {
	c := FromRun(word("x", 0, 0))
	got := c.ToCell()
	assert.Equal(t, "x", got.Text)
	assert.Equal(t, model.NewRect(0, 0, 6, 10), got.Rect)
	assert.Equal(t, 1, got.RowSpan)
}
