package layout

import (
	"fmt"

	"github.com/gogpu/plot"
)

// Grid places subplots in a fixed rows x cols matrix. Slots are
// row-major, top-to-bottom: slot 0 is the top-left cell, slot cols-1
// the top-right, slot cols the leftmost cell of the second row. Each
// cell occupies 1/cols x 1/rows of device space.
type Grid struct {
	rows, cols int
}

// NewGrid creates a grid layout. rows and cols below 1 are raised to 1.
func NewGrid(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return &Grid{rows: rows, cols: cols}
}

// Rows returns the configured row count.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the configured column count.
func (g *Grid) Cols() int { return g.cols }

// CellSlot linearizes a (row, col) pair into the row-major slot index
// Place expects. Out-of-range pairs return ErrInvalidSlot.
func (g *Grid) CellSlot(row, col int) (int, error) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return 0, fmt.Errorf("layout: cell (%d, %d) outside %dx%d grid: %w",
			row, col, g.rows, g.cols, plot.ErrInvalidSlot)
	}
	return row*g.cols + col, nil
}

// Place implements plot.Layout.
func (g *Grid) Place(slot, total int) (plot.Transform, error) {
	if err := checkSlot(slot, total, g.rows*g.cols); err != nil {
		return plot.Transform{}, err
	}
	row := slot / g.cols
	col := slot % g.cols

	cellW := 2 / float32(g.cols)
	cellH := 2 / float32(g.rows)
	cell := plot.Rect{
		XMin: -1 + float32(col)*cellW,
		XMax: -1 + float32(col+1)*cellW,
		// Row 0 sits at the top of device space.
		YMin: 1 - float32(row+1)*cellH,
		YMax: 1 - float32(row)*cellH,
	}
	return placeIn(cell)
}
