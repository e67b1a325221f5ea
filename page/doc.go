// Package page holds the decoded primitives of one page.
//
// A [Page] owns the glyph stream, rulings and fills, an index over glyphs
// and one over text runs, and a cache of fill-area results. The cache is
// filled on first use and dropped by [Page.AddRuling]. [Page.Area] returns
// a cropped page with rulings along the crop edges, which is what the table
// extractors run on when a detector proposes regions.
package page
