package tabextract

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabextract/fill"
	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/ocr"
	"github.com/tsawler/tabextract/page"
	"github.com/tsawler/tabextract/tables"
	"github.com/tsawler/tabextract/text"
)

var letter = model.NewRect(0, 0, 600, 800)

func word(s string, x, y float64) []text.Glyph {
	var out []text.Glyph
	for i, ch := range s {
		out = append(out, text.NewGlyph(string(ch), model.NewRect(x+float64(6*i), y, 6, 10), "F", 10, 3))
	}
	return out
}

// gridPage holds a 2x2 ruled table whose top-left cell reads label
func gridPage(number int, label string) *page.Page {
	rulings := []model.Ruling{
		model.HorizontalRuling(100, 100, 300),
		model.HorizontalRuling(150, 100, 300),
		model.HorizontalRuling(200, 100, 300),
		model.VerticalRuling(100, 100, 200),
		model.VerticalRuling(200, 100, 200),
		model.VerticalRuling(300, 100, 200),
	}
	return page.New(number, letter, word(label, 110, 120), rulings, nil)
}

func TestTables_PageOrder(t *testing.T) {
	var pages []*page.Page
	labels := []string{"one", "two", "three", "four", "five", "six"}
	for i, l := range labels {
		pages = append(pages, gridPage(i+1, l))
	}

	results, err := FromPages(pages...).Concurrency(3).Tables(context.Background())
	require.NoError(t, err)
	require.Len(t, results, len(labels))

	for i, r := range results {
		assert.Equal(t, i+1, r.Page)
		require.Len(t, r.Tables, 1)
		assert.Equal(t, labels[i], r.Tables[0].Cell(0, 0).Text)
		assert.Equal(t, i+1, r.Tables[0].PageNumber)
		assert.Equal(t, "Vector", r.Tables[0].Method)
	}
}

func TestTables_Method(t *testing.T) {
	results, err := FromPages(gridPage(1, "x")).Method(tables.Bitmap).Tables(context.Background())
	require.NoError(t, err)
	require.Len(t, results[0].Tables, 1)
	assert.Equal(t, "Bitmap", results[0].Tables[0].Method)
}

func TestTables_MethodName(t *testing.T) {
	ext := FromPages(gridPage(1, "x")).MethodName("stream")
	assert.Equal(t, "Basic", ext.Options().Method)

	_, err := FromPages(gridPage(1, "x")).MethodName("Hough").Tables(context.Background())
	assert.ErrorIs(t, err, tables.ErrUnknownMethod)
}

func TestTables_NoPages(t *testing.T) {
	_, err := FromPages().Tables(context.Background())
	assert.ErrorIs(t, err, ErrNoPages)

	_, err = FromPages().Charts(context.Background())
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestTables_InvalidOptions(t *testing.T) {
	_, err := FromPages(gridPage(1, "x")).Concurrency(0).Tables(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")

	opts := DefaultOptions()
	opts.Method = "Hough"
	_, err = FromPages(gridPage(1, "x")).WithOptions(opts).Tables(context.Background())
	assert.Error(t, err)
}

func TestTables_Pages(t *testing.T) {
	ext := FromPages(gridPage(1, "a"), gridPage(2, "b"), gridPage(3, "c"))

	results, err := ext.Pages(3, 1).Tables(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []int{1, 3}, []int{results[0].Page, results[1].Page})

	_, err = ext.Pages(9).Tables(context.Background())
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestTables_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FromPages(gridPage(1, "x")).Tables(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractor_Immutable(t *testing.T) {
	base := FromPages(gridPage(1, "x")).Pages(1)
	stream := base.Method(tables.Stream).GuessArea().Pages(1)

	assert.Equal(t, "Vector", base.Options().Method)
	assert.False(t, base.Options().GuessArea)
	assert.Equal(t, []int{1}, base.Options().Pages)

	assert.Equal(t, "Basic", stream.Options().Method)
	assert.True(t, stream.Options().GuessArea)
	assert.Equal(t, []int{1, 1}, stream.Options().Pages)
}

func TestExtractor_FromPagesCopies(t *testing.T) {
	pages := []*page.Page{gridPage(1, "x")}
	ext := FromPages(pages...)
	pages[0] = gridPage(2, "y")

	results, err := ext.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Page)
}

type failingRecognizer struct{}

func (failingRecognizer) Recognize(image.Image) (string, error) {
	return "", errors.New("no engine")
}

func TestTables_RecognizerErrorWrapped(t *testing.T) {
	_, err := FromPages(gridPage(5, "")).Method(tables.Bitmap).Recognizer(failingRecognizer{}).Tables(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extracting tables")
	assert.Contains(t, err.Error(), "page 5")
}

func TestOCR_NotEnabled(t *testing.T) {
	ext := FromPages(gridPage(1, "x")).OCR()
	defer ext.Close()

	_, err := ext.Tables(context.Background())
	if err == nil {
		t.Skip("built with OCR support")
	}
	assert.ErrorIs(t, err, ErrOCRNotEnabled)
}

func TestClose_DerivedDoesNotOwnClient(t *testing.T) {
	owner := FromPages(gridPage(1, "x"))
	owner.ocrClient = &ocr.Client{}
	owner.ownsOCR = true

	derived := owner.Method(tables.Bitmap).GuessArea()
	assert.Same(t, owner.ocrClient, derived.ocrClient)
	assert.False(t, derived.ownsOCR)
	require.NoError(t, derived.Close())
	assert.True(t, owner.ownsOCR)

	require.NoError(t, owner.Close())
	assert.False(t, owner.ownsOCR)
	require.NoError(t, owner.Close())
}

func TestTables_Logs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	_, err := FromPages(gridPage(1, "x")).Logger(logger).Tables(context.Background())
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "table extraction finished", entry.Message)
	assert.Equal(t, 1, entry.Data["tables"])
}

// barChart returns five two-tone columns with ten short labels above the
// shortest ones
func barChart() *page.Page {
	red := model.Color{R: 200, G: 30, B: 30}
	blue := model.Color{R: 30, G: 30, B: 200}

	var fills []model.FillArea
	for i, h := range []float64{20, 60, 100, 40, 80} {
		x := 100 + float64(i)*15
		fills = append(fills,
			model.FillArea{Rect: model.NewRect(x, 300-h, 10, h/2), Color: red},
			model.FillArea{Rect: model.NewRect(x, 300-h/2, 10, h/2), Color: blue},
		)
	}
	var runs []*text.Run
	for k := 0; k < 6; k++ {
		runs = append(runs, text.NewRun(word("x", 102, 200+float64(k)*12)[0]))
	}
	for k := 0; k < 4; k++ {
		runs = append(runs, text.NewRun(word("y", 147, 200+float64(k)*12)[0]))
	}
	return page.New(2, letter, nil, nil, fills, page.WithRuns(runs))
}

func TestCharts(t *testing.T) {
	results, err := FromPages(gridPage(1, "x"), barChart()).Charts(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1, results[0].Page)
	assert.Empty(t, results[0].Charts)

	assert.Equal(t, 2, results[1].Page)
	require.Len(t, results[1].Charts, 1)
	assert.Equal(t, fill.ChartBar, results[1].Charts[0].Type)
}

func TestMust(t *testing.T) {
	assert.Equal(t, 3, Must(3, nil))
	assert.Panics(t, func() { Must(0, errors.New("boom")) })
}
