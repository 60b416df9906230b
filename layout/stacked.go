package layout

import (
	"github.com/gogpu/plot"
)

// Stacked places subplots in a single column of equal-height rows,
// top-to-bottom: slot 0 is the topmost row. The row count follows the
// selection size and must be updated via SetCount before rebuilding
// batches whenever the selection count changes; the view controller
// does this at the start of each rebuild.
type Stacked struct {
	count int
}

// NewStacked creates a stacked layout with n rows. n below zero is
// treated as zero; a zero-row stack places nothing until SetCount.
func NewStacked(n int) *Stacked {
	s := &Stacked{}
	s.SetCount(n)
	return s
}

// SetCount updates the number of rows.
func (s *Stacked) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	s.count = n
}

// Count returns the current number of rows.
func (s *Stacked) Count() int { return s.count }

// Place implements plot.Layout. With n rows, slot k maps onto the
// device rectangle spanning the full width and the k-th height
// fraction from the top: for n=2, slot 0 is (-1, 0, 1, 1) and slot 1
// is (-1, -1, 1, 0).
func (s *Stacked) Place(slot, total int) (plot.Transform, error) {
	if err := checkSlot(slot, total, s.count); err != nil {
		return plot.Transform{}, err
	}
	rowH := 2 / float32(s.count)
	cell := plot.Rect{
		XMin: -1,
		XMax: 1,
		YMin: 1 - float32(slot+1)*rowH,
		YMax: 1 - float32(slot)*rowH,
	}
	return placeIn(cell)
}
