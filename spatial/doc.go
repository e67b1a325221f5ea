// Package spatial provides an R-tree backed index over rectangles.
//
// Items are anything implementing [Boxed]. Queries return items fully inside
// ([Index.Contains]) or overlapping ([Index.Intersects]) a query rectangle,
// always in reading order: top edge first, then left edge, rounded to two
// decimals.
//
//	ix := spatial.New(runs...)
//	inCell := ix.Intersects(cellRect)
package spatial
