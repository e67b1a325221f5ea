package tables

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/page"
	"github.com/tsawler/tabextract/raster"
)

// BitmapExtractor rasterizes the page and finds the table grid in the
// pixels, so scanned pages and pages drawn with odd vector paths are read
// the same way. Cells left without page text are passed to the configured
// Recognizer.
type BitmapExtractor struct {
	config      Config
	spreadsheet *SpreadsheetExtractor
}

// NewBitmapExtractor creates a raster-based extractor
func NewBitmapExtractor(config Config) *BitmapExtractor {
	if config.BitmapScale <= 0 {
		config.BitmapScale = DefaultConfig().BitmapScale
	}
	return &BitmapExtractor{config: config, spreadsheet: NewSpreadsheetExtractor(config)}
}

func (e *BitmapExtractor) Name() string    { return Bitmap.String() }
func (e *BitmapExtractor) Version() string { return "1.0" }

// Extract renders p, recovers its rulings from the image and extracts the
// grid tables of a page rebuilt with those rulings
func (e *BitmapExtractor) Extract(p *page.Page) ([]*model.Table, error) {
	scale := e.config.BitmapScale
	img := raster.Render(p, scale)
	rulings := raster.FindRulings(img, scale, e.config.MinRulingLength)

	p.Logger().WithField("rulings", len(rulings)).Debug("rulings recovered from raster")

	rebuilt := page.New(p.Number(), p.Bounds(), p.Glyphs(), rulings, nil, page.WithLogger(p.Logger()))
	tables, err := e.spreadsheet.Extract(rebuilt)
	if err != nil {
		return nil, err
	}

	for _, t := range tables {
		t.Method = e.Name()
		if e.config.Recognizer == nil {
			continue
		}
		if err := e.recognizeEmpty(t, img, scale); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// recognizeEmpty fills the empty anchor cells of t with recognized text
func (e *BitmapExtractor) recognizeEmpty(t *model.Table, img *image.Gray, scale float64) error {
	for i := range t.Rows {
		for j := range t.Rows[i] {
			c := t.Cell(i, j)
			if c.Text != "" || c.RowSpan == 0 {
				continue
			}
			crop := cellPixels(c.Rect, scale)
			if crop.Empty() {
				continue
			}
			txt, err := e.config.Recognizer.Recognize(img.SubImage(crop))
			if err != nil {
				return fmt.Errorf("recognizing cell (%d, %d): %w", i, j, err)
			}
			c.Text = strings.TrimSpace(txt)
		}
	}
	return nil
}

// cellPixels maps a cell to pixel space, inset so the grid lines are left
// out
func cellPixels(r model.Rect, scale float64) image.Rectangle {
	inset := int(math.Ceil(scale))
	// Built field by field: image.Rect would swap the corners of a cell
	// thinner than the inset instead of leaving it empty.
	return image.Rectangle{
		Min: image.Pt(int(math.Floor(r.Left()*scale))+inset, int(math.Floor(r.Top()*scale))+inset),
		Max: image.Pt(int(math.Ceil(r.Right()*scale))-inset, int(math.Ceil(r.Bottom()*scale))-inset),
	}
}
