// Package raster turns the vector content of a page into a bitmap and back.
//
// [Render] paints rulings and fill outlines with golang.org/x/image/vector.
// [FindRulings] scans a bitmap for long runs of dark pixels and reports them
// as rulings in page units. Together they let the bitmap extractor see
// table borders that were drawn as shaded cells rather than lines.
package raster
