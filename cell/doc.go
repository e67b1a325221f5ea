// Package cell models provisional table cells.
//
// A [Candidate] is created by a caller that already knows the cell geometry,
// for example from ruling intersections. It pulls text runs from the page
// ([Candidate.CollectText]), keeps them in reading order
// ([SortReadingOrder]) and exposes normalized text. Merge eligibility flags,
// row/column position, structural type and [Status] are written by
// structural validators; the cell only stores them.
package cell
