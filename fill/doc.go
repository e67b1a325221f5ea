// Package fill groups the colored fills of a page and classifies them.
//
// Fills are gathered into bar and pie groups with GroupFillAreas. The
// classifiers then decide whether a set of groups is table shading
// (IsPossibleTableRegion) or part of a chart (DetectChartRegions).
//
// Example:
//
//	groups := fill.GroupFillAreas(p.Fills(), p.Bounds())
//	if fill.IsPossibleTableRegion(p, groups) {
//		// treat the shading as table rows
//	}
package fill
