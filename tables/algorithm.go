package tables

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/tabextract/cell"
	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/page"
)

// ExtractionAlgorithm turns a page, or a region cropped from one, into
// tables
type ExtractionAlgorithm interface {
	// Extract finds the tables on p
	Extract(p *page.Page) ([]*model.Table, error)

	// Name returns the algorithm name recorded on its tables
	Name() string

	// Version returns the algorithm version
	Version() string
}

// DetectionAlgorithm proposes page regions likely to hold a table
type DetectionAlgorithm interface {
	Detect(p *page.Page) ([]model.Rect, error)
}

// Recognizer reads the text in a cell image
type Recognizer interface {
	Recognize(img image.Image) (string, error)
}

// ErrUnknownMethod is returned by ParseMethod for names it does not know
var ErrUnknownMethod = errors.New("unknown extraction method")

// Config holds extraction configuration
type Config struct {
	// Minimum rows for a text cluster to be proposed as a table region
	MinRows int

	// Minimum columns for a text cluster to be proposed as a table region
	MinCols int

	// Tolerance for row/column alignment (points)
	AlignmentTolerance float64

	// Minimum ruling length to take part in a grid (points)
	MinRulingLength float64

	// Vertical gap, in average glyph heights, that separates text blocks
	BlockGap float64

	// Whether to detect cells spanning several rows or columns
	DetectMergedCells bool

	// Pixels per point when rasterizing a page
	BitmapScale float64

	// Fuses the runs collected into a cell; nil keeps them as found
	Merger cell.RunMerger

	// Reads cells that have no text on the page; nil disables OCR
	Recognizer Recognizer

	// Logger for dispatch decisions
	Logger logrus.FieldLogger
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		AlignmentTolerance: 3.0,
		MinRulingLength:    10.0,
		BlockGap:           2.0,
		DetectMergedCells:  true,
		BitmapScale:        2.0,
		Merger:             cell.DefaultMerger{},
		Logger:             discardLogger(),
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.WarnLevel)
	return l
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return discardLogger()
	}
	return c.Logger
}

// Method names one of the fixed extraction pipelines
type Method int

const (
	// Spreadsheet builds tables from ruling grids
	Spreadsheet Method = iota
	// Stream builds tables from text alignment
	Stream
	// Compound runs Spreadsheet, then Stream on the text left over
	Compound
	// Bitmap rasterizes the page and finds the grid in pixels
	Bitmap
)

var methodNames = [...]string{
	Spreadsheet: "Vector",
	Stream:      "Basic",
	Compound:    "Compound",
	Bitmap:      "Bitmap",
}

// Methods returns every method in declaration order
func Methods() []Method {
	return []Method{Spreadsheet, Stream, Compound, Bitmap}
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// ParseMethod resolves a method from its name. Matching ignores case and
// also accepts the Go constant names ("spreadsheet", "stream").
func ParseMethod(name string) (Method, error) {
	for _, m := range Methods() {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	switch strings.ToLower(name) {
	case "spreadsheet", "lattice":
		return Spreadsheet, nil
	case "stream":
		return Stream, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Pipeline binds an extraction algorithm to an optional detector.
type Pipeline struct {
	Extractor ExtractionAlgorithm
	Detector  DetectionAlgorithm

	// WholePage skips region guessing even when it is requested
	WholePage bool

	Logger logrus.FieldLogger
}

// NewPipeline resolves the algorithms of m with the given configuration
func NewPipeline(m Method, config Config) *Pipeline {
	pl := &Pipeline{Logger: config.logger()}
	switch m {
	case Spreadsheet:
		pl.Extractor = NewSpreadsheetExtractor(config)
		pl.Detector = NewRulingRegionDetector(config)
	case Stream:
		pl.Extractor = NewStreamExtractor(config)
		pl.Detector = NewTextRegionDetector(config)
	case Compound:
		pl.Extractor = NewCompoundExtractor(config)
	case Bitmap:
		pl.Extractor = NewBitmapExtractor(config)
		pl.WholePage = true
	default:
		panic(fmt.Sprintf("tables: unknown method %d", int(m)))
	}
	return pl
}

// ExtractTables runs m with the default configuration
func (m Method) ExtractTables(p *page.Page, guessArea bool) ([]*model.Table, error) {
	return NewPipeline(m, DefaultConfig()).ExtractTables(p, guessArea)
}

// ExtractTables extracts the tables of p.
//
// Without guessArea, or without a detector, the whole page is extracted.
// Otherwise each detected region is cropped from the page, with rulings
// along its edges, and extracted on its own; the tables are returned in
// detector order. A detector that finds nothing falls back to the whole
// page.
func (pl *Pipeline) ExtractTables(p *page.Page, guessArea bool) ([]*model.Table, error) {
	log := pl.logger().WithFields(logrus.Fields{
		"page":   p.Number(),
		"method": pl.Extractor.Name(),
	})

	if !guessArea || pl.Detector == nil || pl.WholePage {
		return pl.extract(p, log)
	}

	regions, err := pl.Detector.Detect(p)
	if err != nil {
		return nil, fmt.Errorf("detecting table regions on page %d: %w", p.Number(), err)
	}
	if len(regions) == 0 {
		log.Debug("no table regions detected, extracting whole page")
		return pl.extract(p, log)
	}

	log.WithField("regions", len(regions)).Debug("extracting detected regions")
	var tables []*model.Table
	for _, r := range regions {
		found, err := pl.extract(p.Area(r), log)
		if err != nil {
			return nil, err
		}
		tables = append(tables, found...)
	}
	return tables, nil
}

func (pl *Pipeline) extract(p *page.Page, log logrus.FieldLogger) ([]*model.Table, error) {
	tables, err := pl.Extractor.Extract(p)
	if err != nil {
		return nil, fmt.Errorf("%s extraction on page %d: %w", pl.Extractor.Name(), p.Number(), err)
	}
	for _, t := range tables {
		t.PageNumber = p.Number()
		if t.Method == "" {
			t.Method = pl.Extractor.Name()
		}
	}
	log.WithField("tables", len(tables)).Debug("extracted")
	return tables, nil
}

func (pl *Pipeline) logger() logrus.FieldLogger {
	if pl.Logger == nil {
		return discardLogger()
	}
	return pl.Logger
}
