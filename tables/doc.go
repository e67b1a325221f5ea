// Package tables extracts tables from pages.
//
// # Methods
//
// Extraction runs one of a fixed set of pipelines, named by [Method]:
//
//   - [Spreadsheet] ("Vector") - cells are the rectangles enclosed by rulings
//   - [Stream] ("Basic") - rows are text lines, columns come from text alignment
//   - [Compound] - ruled tables first, then stream tables for the uncovered text
//   - [Bitmap] - the page is rasterized and the grid is found in the pixels
//
// Each method pairs an [ExtractionAlgorithm] with an optional
// [DetectionAlgorithm]:
//
//	tables, err := tables.Stream.ExtractTables(p, true)
//
// With area guessing on, every region the detector proposes is cropped from
// the page with [page.Page.Area] and extracted on its own. The results are
// concatenated in detector order. A detector that finds nothing falls back
// to the whole page. Bitmap always works on the whole page.
//
// # Configuration
//
// [NewPipeline] takes a [Config]:
//
//	config := tables.DefaultConfig()
//	config.Recognizer = client // OCR for empty bitmap cells
//	tables, err := tables.NewPipeline(tables.Bitmap, config).ExtractTables(p, false)
//
// # Confidence Scoring
//
// Grid tables score cell count, spacing regularity, border completeness and
// ruling coverage. Stream tables score:
//
//   - Grid regularity (30%)
//   - Alignment quality (30%)
//   - Line presence (20%)
//   - Cell occupancy (20%)
package tables
