package tabextract

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/tabextract/cell"
	"github.com/tsawler/tabextract/fill"
	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/ocr"
	"github.com/tsawler/tabextract/page"
	"github.com/tsawler/tabextract/tables"
)

var (
	// ErrNoPages is returned when an extractor has no pages to work on.
	ErrNoPages = errors.New("no pages to extract from")

	// ErrPageNotFound is returned when a selected page number is not among
	// the extractor's pages.
	ErrPageNotFound = errors.New("page not found")

	// ErrOCRNotEnabled is returned by OCR when the module was built without
	// OCR support.
	ErrOCRNotEnabled = ocr.ErrOCRNotEnabled
)

// PageResult holds the tables found on one page.
type PageResult struct {
	Page   int
	Tables []*model.Table
}

// ChartResult holds the chart regions found on one page.
type ChartResult struct {
	Page   int
	Charts []fill.Chart
}

// Extractor provides a fluent interface for extracting tables from pages.
// Each configuration method returns a new Extractor instance, making it
// safe to share a configured Extractor and to chain methods.
type Extractor struct {
	pages []*page.Page

	// Configuration
	options    Options
	recognizer tables.Recognizer
	merger     cell.RunMerger
	log        logrus.FieldLogger

	// OCR client opened by OCR. Only the Extractor that opened it owns it;
	// Extractors derived from it share the client but never close it.
	ocrClient *ocr.Client
	ownsOCR   bool

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		pages:      e.pages,
		options:    e.options.clone(),
		recognizer: e.recognizer,
		merger:     e.merger,
		log:        e.log,
		ocrClient:  e.ocrClient,
		err:        e.err,
	}
}

// Close releases the OCR client if this Extractor opened it with OCR.
// Extractors derived from it by further chaining do not own the client, and
// their Close is a no-op; once the owner is closed they fail with
// ocr.ErrClosed. It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if !e.ownsOCR || e.ocrClient == nil {
		return nil
	}
	err := e.ocrClient.Close()
	e.ownsOCR = false
	return err
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Method selects the extraction method.
//
// Example:
//
//	results, err := tabextract.FromPages(p).Method(tables.Stream).Tables(ctx)
func (e *Extractor) Method(m tables.Method) *Extractor {
	newExt := e.clone()
	newExt.options.Method = m.String()
	return newExt
}

// MethodName selects the extraction method by name. An unknown name is
// reported by the terminal operation.
func (e *Extractor) MethodName(name string) *Extractor {
	newExt := e.clone()
	m, err := tables.ParseMethod(name)
	if err != nil {
		if newExt.err == nil {
			newExt.err = err
		}
		return newExt
	}
	newExt.options.Method = m.String()
	return newExt
}

// GuessArea extracts only the regions the method's detector proposes.
func (e *Extractor) GuessArea() *Extractor {
	newExt := e.clone()
	newExt.options.GuessArea = true
	return newExt
}

// Concurrency sets how many pages are processed at once.
func (e *Extractor) Concurrency(n int) *Extractor {
	newExt := e.clone()
	newExt.options.Concurrency = n
	return newExt
}

// Pages restricts extraction to the given page numbers. Multiple calls are
// cumulative.
func (e *Extractor) Pages(numbers ...int) *Extractor {
	newExt := e.clone()
	newExt.options.Pages = append(newExt.options.Pages, numbers...)
	return newExt
}

// WithOptions replaces all options at once.
func (e *Extractor) WithOptions(opts Options) *Extractor {
	newExt := e.clone()
	newExt.options = opts.clone()
	return newExt
}

// Logger sets the logger used for dispatch decisions.
func (e *Extractor) Logger(l logrus.FieldLogger) *Extractor {
	newExt := e.clone()
	newExt.log = l
	return newExt
}

// Recognizer sets the OCR engine used by the Bitmap method for cells with
// no page text.
func (e *Extractor) Recognizer(r tables.Recognizer) *Extractor {
	newExt := e.clone()
	newExt.recognizer = r
	return newExt
}

// Merger sets how runs collected into a grid cell are fused.
func (e *Extractor) Merger(m cell.RunMerger) *Extractor {
	newExt := e.clone()
	newExt.merger = m
	return newExt
}

// OCR opens a Tesseract client and uses it as the recognizer. Without OCR
// support compiled in, the terminal operation fails with ErrOCRNotEnabled.
// The returned Extractor owns the client and must be closed.
func (e *Extractor) OCR() *Extractor {
	newExt := e.clone()
	client, err := ocr.New()
	if err != nil {
		if newExt.err == nil {
			newExt.err = fmt.Errorf("opening OCR client: %w", err)
		}
		return newExt
	}
	newExt.ocrClient = client
	newExt.ownsOCR = true
	newExt.recognizer = client
	return newExt
}

// Options returns the current options.
func (e *Extractor) Options() Options {
	return e.options.clone()
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Tables extracts the tables of every selected page. Pages are processed
// concurrently; results come back in page order.
//
// Example:
//
//	results, err := tabextract.FromPages(pages...).
//	    Method(tables.Compound).
//	    Concurrency(8).
//	    Tables(ctx)
func (e *Extractor) Tables(ctx context.Context) ([]PageResult, error) {
	selected, err := e.prepare()
	if err != nil {
		return nil, err
	}
	method, err := tables.ParseMethod(e.options.Method)
	if err != nil {
		return nil, err
	}
	config := e.config()

	results := make([]PageResult, len(selected))
	err = e.forEachPage(ctx, selected, func(i int, p *page.Page) error {
		found, err := tables.NewPipeline(method, config).ExtractTables(p, e.options.GuessArea)
		if err != nil {
			return err
		}
		results[i] = PageResult{Page: p.Number(), Tables: found}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extracting tables: %w", err)
	}

	e.logger().WithFields(logrus.Fields{
		"pages":  len(selected),
		"method": method.String(),
		"tables": countTables(results),
	}).Info("table extraction finished")
	return results, nil
}

// Charts returns the chart regions of every selected page, in page order.
func (e *Extractor) Charts(ctx context.Context) ([]ChartResult, error) {
	selected, err := e.prepare()
	if err != nil {
		return nil, err
	}

	results := make([]ChartResult, len(selected))
	err = e.forEachPage(ctx, selected, func(i int, p *page.Page) error {
		results[i] = ChartResult{Page: p.Number(), Charts: p.ChartRegions()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("detecting charts: %w", err)
	}
	return results, nil
}

// prepare checks the accumulated error and the options and resolves the
// selected pages
func (e *Extractor) prepare() ([]*page.Page, error) {
	if e.err != nil {
		return nil, e.err
	}
	if len(e.pages) == 0 {
		return nil, ErrNoPages
	}
	if err := e.options.Validate(); err != nil {
		return nil, err
	}
	return e.resolvePages()
}

// resolvePages returns the selected pages in the order they were given to
// the extractor
func (e *Extractor) resolvePages() ([]*page.Page, error) {
	if len(e.options.Pages) == 0 {
		return e.pages, nil
	}

	byNumber := make(map[int]*page.Page, len(e.pages))
	for _, p := range e.pages {
		byNumber[p.Number()] = p
	}
	wanted := make(map[int]bool, len(e.options.Pages))
	for _, n := range e.options.Pages {
		if _, ok := byNumber[n]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrPageNotFound, n)
		}
		wanted[n] = true
	}

	var out []*page.Page
	for _, p := range e.pages {
		if wanted[p.Number()] {
			out = append(out, p)
		}
	}
	return out, nil
}

// forEachPage runs fn for every page, at most Concurrency at a time. Each
// page is confined to the goroutine that processes it.
func (e *Extractor) forEachPage(ctx context.Context, pages []*page.Page, fn func(int, *page.Page) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.Concurrency)
	for i, p := range pages {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i, p)
		})
	}
	return g.Wait()
}

func (e *Extractor) config() tables.Config {
	config := tables.DefaultConfig()
	config.BitmapScale = e.options.BitmapScale
	config.Recognizer = e.recognizer
	config.Logger = e.logger()
	if e.merger != nil {
		config.Merger = e.merger
	}
	return config
}

func (e *Extractor) logger() logrus.FieldLogger {
	if e.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		l.SetLevel(logrus.WarnLevel)
		return l
	}
	return e.log
}

func countTables(results []PageResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Tables)
	}
	return n
}
