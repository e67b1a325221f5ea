// Package model provides the geometric primitives and result types shared by
// the extraction packages.
//
// # Coordinates
//
// All rectangles live in page space with the origin at the top-left corner
// and Y growing downward. [Rect.Top] is therefore the smaller Y value.
//
// # Primitives
//
//   - [Rect] - axis-aligned rectangle with overlap ratios, union and gaps
//   - [Point] - 2D point with distance calculation
//   - [Ruling] - horizontal or vertical line segment
//   - [FillArea] - filled shape with a [Color] and a [Shape]
//
// # Results
//
// The [Table] type holds the extracted rows and columns of [Cell] values
// together with the algorithm name and page it came from. [TableGrid]
// describes row and column boundaries before cells are filled in.
package model
