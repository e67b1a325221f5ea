package tables

import (
	"sort"

	"github.com/tsawler/tabextract/model"
	"github.com/tsawler/tabextract/page"
	"github.com/tsawler/tabextract/spatial"
)

// CompoundExtractor extracts ruled tables first, then runs stream
// extraction on text blocks that no ruled table covers.
type CompoundExtractor struct {
	spreadsheet *SpreadsheetExtractor
	stream      *StreamExtractor
	blocks      *TextRegionDetector
}

// NewCompoundExtractor creates an extractor combining both strategies
func NewCompoundExtractor(config Config) *CompoundExtractor {
	return &CompoundExtractor{
		spreadsheet: NewSpreadsheetExtractor(config),
		stream:      NewStreamExtractor(config),
		blocks:      NewTextRegionDetector(config),
	}
}

func (e *CompoundExtractor) Name() string    { return Compound.String() }
func (e *CompoundExtractor) Version() string { return "1.0" }

// Extract returns the ruled tables and the stream tables of uncovered text
// blocks, in reading order. Each table keeps the name of the strategy that
// produced it.
func (e *CompoundExtractor) Extract(p *page.Page) ([]*model.Table, error) {
	tables, err := e.spreadsheet.Extract(p)
	if err != nil {
		return nil, err
	}

	blocks, err := e.blocks.Detect(p)
	if err != nil {
		return nil, err
	}
	for _, block := range blocks {
		if covered(block, tables) {
			continue
		}
		found, err := e.stream.Extract(p.Area(block))
		if err != nil {
			return nil, err
		}
		tables = append(tables, found...)
	}

	sort.SliceStable(tables, func(i, j int) bool {
		return spatial.ReadingLess(tables[i].Rect, tables[j].Rect)
	})
	return tables, nil
}

func covered(r model.Rect, tables []*model.Table) bool {
	for _, t := range tables {
		if t.Rect.Intersects(r) {
			return true
		}
	}
	return false
}
