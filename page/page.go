package page

import (
	"image"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/tabextract/fill"
	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/spatial"
	"github.com/tsawler/tabextract/text"
)

// Option configures a Page
type Option func(*Page)

// WithLogger sets the logger used while building and querying the page
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Page) {
		if log != nil {
			p.log = log
		}
	}
}

// WithRuns supplies text runs from an external segmenter. The glyph stream
// is then only used for glyph queries.
func WithRuns(runs []*text.Run) Option {
	return func(p *Page) {
		p.runs = runs
		p.customRuns = true
	}
}

// WithImage attaches a scanned image of the page. The image is stretched
// over the page area when the page is rasterized.
func WithImage(img image.Image) Option {
	return func(p *Page) {
		p.image = img
	}
}

// Page holds the primitives of one page together with spatial indices over
// its glyphs and text runs.
//
// A Page is not safe for concurrent use. Distinct pages share nothing and may
// be processed on different goroutines.
type Page struct {
	number  int
	area    model.Rect
	glyphs  []text.Glyph
	rulings []model.Ruling
	fills   []model.FillArea

	runs       []*text.Run
	customRuns bool

	glyphIndex *spatial.Index[text.Glyph]
	runIndex   *spatial.Index[*text.Run]

	image image.Image
	log   logrus.FieldLogger

	avgSize *[2]float64
	results *results
}

// results holds derived values that depend on the rulings and fills
type results struct {
	groups []*fill.Group
	charts []fill.Chart
}

// New builds a page from decoded primitives. Glyphs must be in drawing
// order: each page glyph's Index is reassigned to its position in glyphs,
// replacing any index the decoder set. The caller's slice is not modified.
// Unless WithRuns is given, the glyphs are segmented into runs using the
// vertical rulings as hard separators.
func New(number int, area model.Rect, glyphs []text.Glyph, rulings []model.Ruling, fills []model.FillArea, opts ...Option) *Page {
	p := &Page{
		number:  number,
		area:    area,
		glyphs:  append([]text.Glyph(nil), glyphs...),
		rulings: append([]model.Ruling(nil), rulings...),
		fills:   append([]model.FillArea(nil), fills...),
		log:     discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range p.glyphs {
		p.glyphs[i].Index = i
	}
	p.glyphIndex = spatial.New(p.glyphs...)

	if !p.customRuns {
		p.runs = text.Segment(p.glyphs, p.VerticalRulings())
	}
	p.runIndex = spatial.New(p.runs...)

	p.log.WithFields(logrus.Fields{
		"page":    number,
		"glyphs":  len(p.glyphs),
		"runs":    len(p.runs),
		"rulings": len(p.rulings),
		"fills":   len(p.fills),
	}).Debug("page built")
	return p
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Number returns the page number
func (p *Page) Number() int { return p.number }

// Bounds returns the page area
func (p *Page) Bounds() model.Rect { return p.area }

// Logger returns the page's logger with the page number attached
func (p *Page) Logger() logrus.FieldLogger {
	return p.log.WithField("page", p.number)
}

// Image returns the scanned page image, or nil
func (p *Page) Image() image.Image { return p.image }

// Glyphs returns all glyphs in drawing order
func (p *Page) Glyphs() []text.Glyph { return p.glyphs }

// GlyphsIn returns the glyphs lying fully inside r, in reading order
func (p *Page) GlyphsIn(r model.Rect) []text.Glyph {
	return p.glyphIndex.Contains(r)
}

// TextRuns returns every text run of the page
func (p *Page) TextRuns() []*text.Run { return p.runs }

// TextRunsIn returns the runs intersecting r, in reading order. The runs are
// shared with the page; callers that mutate them change the page.
func (p *Page) TextRunsIn(r model.Rect) []*text.Run {
	return p.runIndex.Intersects(r)
}

// Rulings returns every ruling of the page
func (p *Page) Rulings() []model.Ruling { return p.rulings }

// HorizontalRulings returns the horizontal rulings
func (p *Page) HorizontalRulings() []model.Ruling {
	var out []model.Ruling
	for _, r := range p.rulings {
		if r.Horizontal() {
			out = append(out, r)
		}
	}
	return out
}

// VerticalRulings returns the vertical rulings
func (p *Page) VerticalRulings() []model.Ruling {
	var out []model.Ruling
	for _, r := range p.rulings {
		if r.Vertical() {
			out = append(out, r)
		}
	}
	return out
}

// RulingsIn returns the rulings touching r
func (p *Page) RulingsIn(r model.Rect) []model.Ruling {
	var out []model.Ruling
	for _, ru := range p.rulings {
		if r.Intersects(ru.Bounds()) {
			out = append(out, ru)
		}
	}
	return out
}

// Fills returns the filled shapes of the page
func (p *Page) Fills() []model.FillArea { return p.fills }

// AverageGlyphSize returns the mean width and height of the non-blank
// glyphs. Pages without text report 6 by 8.
func (p *Page) AverageGlyphSize() (width, height float64) {
	if p.avgSize == nil {
		w, h := averageSize(p.glyphs)
		p.avgSize = &[2]float64{w, h}
	}
	return p.avgSize[0], p.avgSize[1]
}

// averageSize is a plain sum, so the order glyphs are visited in does not
// matter
func averageSize(glyphs []text.Glyph) (float64, float64) {
	var sumW, sumH float64
	n := 0
	for _, g := range glyphs {
		if g.IsBlank() {
			continue
		}
		sumW += g.Rect.Width
		sumH += g.Rect.Height
		n++
	}
	if n == 0 {
		return defaultGlyphWidth, defaultGlyphHeight
	}
	return sumW / float64(n), sumH / float64(n)
}

const (
	defaultGlyphWidth  = 6.0
	defaultGlyphHeight = 8.0
)

// AddRuling adds a ruling to the page and drops the cached fill groups and
// chart regions. Existing runs are kept.
func (p *Page) AddRuling(r model.Ruling) {
	p.rulings = append(p.rulings, r)
	p.results = nil
}

// FillGroups returns the bar and pie groups built from the page fills. The
// result is computed once and cached.
func (p *Page) FillGroups() []*fill.Group {
	return p.derived().groups
}

// ChartRegions returns the charts found among the fill groups. The result
// is computed once and cached.
func (p *Page) ChartRegions() []fill.Chart {
	return p.derived().charts
}

func (p *Page) derived() *results {
	if p.results != nil {
		return p.results
	}
	groups := fill.GroupFillAreas(p.fills, p.area)
	charts := fill.DetectChartRegions(p, groups)
	p.results = &results{groups: groups, charts: charts}

	p.log.WithFields(logrus.Fields{
		"page":   p.number,
		"groups": len(groups),
		"charts": len(charts),
	}).Debug("fill areas classified")
	return p.results
}

// Area returns a page restricted to r. It keeps the glyphs inside r, the
// rulings clipped to r and the fills inside r, and adds four rulings along
// the edges of r. The scanned image is not carried over.
func (p *Page) Area(r model.Rect) *Page {
	rulings := append(model.CropRulings(p.rulings, r), model.BorderRulings(r)...)

	var fills []model.FillArea
	for _, f := range p.fills {
		if r.Contains(f.Rect) {
			fills = append(fills, f)
		}
	}

	opts := []Option{WithLogger(p.log)}
	if p.customRuns {
		opts = append(opts, WithRuns(p.runIndex.Contains(r)))
	}

	var glyphs []text.Glyph
	for _, g := range p.glyphs {
		if r.Contains(g.Rect) {
			glyphs = append(glyphs, g)
		}
	}

	return New(p.number, r, glyphs, rulings, fills, opts...)
}
