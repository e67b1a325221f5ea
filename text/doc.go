// Package text turns a stream of positioned glyphs into text runs.
//
// A page decoder hands over [Glyph] values in the order they were drawn.
// [Segment] walks that stream and groups neighbouring glyphs into [Run]
// values using adaptive spacing:
//
//   - the expected gap between characters is the smaller of half the
//     declared space width and 30% of the running average glyph width
//   - a space glyph is synthesized where the gap is wider than expected
//   - a vertical ruling between two glyphs always separates them
//
// Runs never mix left-to-right and right-to-left content; see [Direction]
// and [SplitByDirection]. [GroupByLines] arranges runs into [Line] bands.
//
// The segmentation is heuristic. Wrong splits or merges are expected to be
// corrected by later structural passes.
package text
