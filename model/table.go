package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Table represents a table with cells organized in rows and columns
type Table struct {
	ID         uuid.UUID
	Rows       [][]Cell
	Rect       Rect
	Method     string  // Name of the extraction algorithm that produced it
	PageNumber int     // 1-indexed page number, 0 when unknown
	HasGrid    bool    // Whether table has visible rulings
	Confidence float64 // Detection confidence (0-1)
}

// NewTable creates a new table with given dimensions
func NewTable(rows, cols int) *Table {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("model: negative table dimensions %dx%d", rows, cols))
	}
	table := &Table{
		ID:         uuid.New(),
		Rows:       make([][]Cell, rows),
		Confidence: 1.0,
	}
	for i := 0; i < rows; i++ {
		table.Rows[i] = make([]Cell, cols)
		for j := 0; j < cols; j++ {
			table.Rows[i][j] = Cell{RowSpan: 1, ColSpan: 1}
		}
	}
	return table
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the first row
func (t *Table) ColCount() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Cell returns the cell at the given row and column (0-indexed).
// It panics when either index is out of range.
func (t *Table) Cell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		panic(fmt.Sprintf("model: row index %d out of range [0,%d)", row, len(t.Rows)))
	}
	if col < 0 || col >= len(t.Rows[row]) {
		panic(fmt.Sprintf("model: col index %d out of range [0,%d)", col, len(t.Rows[row])))
	}
	return &t.Rows[row][col]
}

// SetCell sets the cell at the given position
func (t *Table) SetCell(row, col int, cell Cell) {
	*t.Cell(row, col) = cell
}

// Text returns the table contents with tabs between cells and newlines
// between rows
func (t *Table) Text() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			sb.WriteString(cell.Text)
			if j < len(row)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Cell represents a table cell
type Cell struct {
	Text    string
	Rect    Rect
	RowSpan int
	ColSpan int
}

// TableGrid represents the detected grid structure
type TableGrid struct {
	Rows      []float64 // Y-coordinates of row boundaries, top to bottom
	Cols      []float64 // X-coordinates of column boundaries, left to right
	HasHLines []bool    // Horizontal ruling presence
	HasVLines []bool    // Vertical ruling presence
}

// NewTableGrid creates a new empty grid
func NewTableGrid() *TableGrid {
	return &TableGrid{}
}

// RowCount returns the number of rows
func (g *TableGrid) RowCount() int {
	if len(g.Rows) <= 1 {
		return 0
	}
	return len(g.Rows) - 1
}

// ColCount returns the number of columns
func (g *TableGrid) ColCount() int {
	if len(g.Cols) <= 1 {
		return 0
	}
	return len(g.Cols) - 1
}

// CellRect returns the rectangle for a cell, or an empty Rect when out of range
func (g *TableGrid) CellRect(row, col int) Rect {
	if row < 0 || row >= g.RowCount() || col < 0 || col >= g.ColCount() {
		return Rect{}
	}
	return RectFromEdges(g.Cols[col], g.Rows[row], g.Cols[col+1], g.Rows[row+1])
}

// Bounds returns the rectangle covered by the whole grid
func (g *TableGrid) Bounds() Rect {
	if g.RowCount() == 0 || g.ColCount() == 0 {
		return Rect{}
	}
	return RectFromEdges(g.Cols[0], g.Rows[0], g.Cols[len(g.Cols)-1], g.Rows[len(g.Rows)-1])
}

// Locate returns the row and column of the cell containing p, or -1 for
// both when p is outside the grid
func (g *TableGrid) Locate(p Point) (row, col int) {
	row, col = -1, -1
	for i := 0; i < g.RowCount(); i++ {
		if p.Y >= g.Rows[i] && p.Y <= g.Rows[i+1] {
			row = i
			break
		}
	}
	for i := 0; i < g.ColCount(); i++ {
		if p.X >= g.Cols[i] && p.X <= g.Cols[i+1] {
			col = i
			break
		}
	}
	if row < 0 || col < 0 {
		return -1, -1
	}
	return row, col
}
