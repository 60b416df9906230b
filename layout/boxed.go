package layout

import (
	"github.com/gogpu/plot"
)

// Boxed places each subplot at an explicitly supplied device-space
// rectangle instead of a computed cell. The rectangles typically come
// from physical sensor geometry (one box per recording site); the
// geometry collaborator supplies them and Boxed consumes them
// read-only. Call SetBoxes again whenever the external geometry
// changes.
type Boxed struct {
	boxes []plot.Rect
}

// NewBoxed creates a boxed layout with no boxes. Place fails until
// SetBoxes supplies geometry.
func NewBoxed() *Boxed {
	return &Boxed{}
}

// SetBoxes replaces the per-slot placement rectangles. The slice is
// copied; the caller keeps ownership of its geometry.
func (b *Boxed) SetBoxes(boxes []plot.Rect) {
	b.boxes = append(b.boxes[:0:0], boxes...)
}

// Len returns the number of configured boxes.
func (b *Boxed) Len() int { return len(b.boxes) }

// Place implements plot.Layout.
func (b *Boxed) Place(slot, total int) (plot.Transform, error) {
	if err := checkSlot(slot, total, len(b.boxes)); err != nil {
		return plot.Transform{}, err
	}
	return placeIn(b.boxes[slot])
}

// BoxesFromPositions converts raw position centers and shared
// half-extents into placement rectangles normalized to device space.
// The centers are rescaled so the bounding box of all boxes fits
// [-1,1]x[-1,1]; relative geometry is preserved. This matches how
// probe layouts are usually specified: site centers in micrometers
// plus one box half-size.
func BoxesFromPositions(centers [][2]float32, halfW, halfH float32) []plot.Rect {
	if len(centers) == 0 {
		return nil
	}
	minX, minY := centers[0][0]-halfW, centers[0][1]-halfH
	maxX, maxY := centers[0][0]+halfW, centers[0][1]+halfH
	for _, c := range centers[1:] {
		if v := c[0] - halfW; v < minX {
			minX = v
		}
		if v := c[0] + halfW; v > maxX {
			maxX = v
		}
		if v := c[1] - halfH; v < minY {
			minY = v
		}
		if v := c[1] + halfH; v > maxY {
			maxY = v
		}
	}
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}

	boxes := make([]plot.Rect, len(centers))
	for i, c := range centers {
		boxes[i] = plot.Rect{
			XMin: -1 + 2*(c[0]-halfW-minX)/spanX,
			XMax: -1 + 2*(c[0]+halfW-minX)/spanX,
			YMin: -1 + 2*(c[1]-halfH-minY)/spanY,
			YMax: -1 + 2*(c[1]+halfH-minY)/spanY,
		}
	}
	return boxes
}
