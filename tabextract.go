// Package tabextract provides a fluent API for extracting tables and charts
// from decoded pages.
//
// Basic usage:
//
//	p := page.New(1, bounds, glyphs, rulings, fills)
//	results, err := tabextract.FromPages(p).Tables(ctx)
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	results, err := tabextract.FromPages(pages...).
//	    Method(tables.Stream).
//	    GuessArea().
//	    Concurrency(8).
//	    Tables(ctx)
//
// For finer control, the tables package exposes the extraction pipelines
// directly.
package tabextract

import (
	"github.com/tsawler/tabextract/page"
)

// FromPages returns an Extractor over the given pages.
//
// Example:
//
//	results, err := tabextract.FromPages(p1, p2).Tables(ctx)
func FromPages(pages ...*page.Page) *Extractor {
	return &Extractor{
		pages:   append([]*page.Page(nil), pages...),
		options: DefaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	results := tabextract.Must(tabextract.FromPages(p).Tables(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
