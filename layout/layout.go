// Package layout provides placement strategies for subplot grids.
//
// A strategy implements [plot.Layout]: it maps a slot index and the
// declared slot total to the affine transform placing that subplot's
// local [-1,1]x[-1,1] space inside the canvas's normalized device
// space. Strategies are interchangeable at runtime via
// canvas.SetLayout; swapping one in invalidates all placements, which
// are recomputed from scratch on the next redraw.
//
// Three strategies are provided:
//   - [Grid]: a fixed rows x cols matrix of equal cells
//   - [Boxed]: explicit per-slot rectangles, e.g. from probe geometry
//   - [Stacked]: a single column of equal-height rows
package layout

import (
	"fmt"

	"github.com/gogpu/plot"
)

// checkSlot validates a slot against the declared frame total and a
// strategy capacity. capacity < 0 means the strategy imposes no bound
// of its own.
func checkSlot(slot, total, capacity int) error {
	if total <= 0 {
		return fmt.Errorf("layout: total %d: %w", total, plot.ErrInvalidSlot)
	}
	if slot < 0 || slot >= total {
		return fmt.Errorf("layout: slot %d of %d: %w", slot, total, plot.ErrInvalidSlot)
	}
	if capacity >= 0 && slot >= capacity {
		return fmt.Errorf("layout: slot %d exceeds capacity %d: %w", slot, capacity, plot.ErrInvalidSlot)
	}
	return nil
}

// placeIn returns the transform mapping local NDC onto the device-space
// cell. The cell is produced by the strategies themselves and is always
// well-formed, so the error path is unreachable in practice.
func placeIn(cell plot.Rect) (plot.Transform, error) {
	tr, err := plot.MapRect(plot.NDC(), cell)
	if err != nil {
		return plot.Transform{}, fmt.Errorf("layout: degenerate cell %v: %w", cell, err)
	}
	return tr, nil
}
