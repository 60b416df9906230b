package visual

import (
	"fmt"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/batch"
)

// Lines renders a line list, two vertices per segment. Polylines are
// expanded into independent segments at Add time so a whole frame of
// paths still uploads and draws as one list.
type Lines struct {
	b *batch.Builder

	// verts backs the expanded polyline vertices the builder
	// references until Finalize.
	verts []float32

	geom *batch.Geometry
}

// NewLines creates an empty line visual.
func NewLines() *Lines {
	return &Lines{b: batch.NewBuilder()}
}

// Kind returns KindLines.
func (v *Lines) Kind() Kind { return KindLines }

// Reset drops all accumulated segments.
func (v *Lines) Reset() {
	v.b.Reset()
	v.verts = v.verts[:0]
	v.geom = nil
}

// AddPath appends a polyline connecting consecutive points of xy
// (interleaved data-space coordinates). Paths with fewer than two
// points contribute nothing. A validation failure leaves the
// accumulated state untouched.
func (v *Lines) AddPath(xy []float32, color plot.RGBA, bounds plot.Rect, slot int) error {
	if len(xy)%2 != 0 {
		return fmt.Errorf("visual: path coordinates have odd length %d: %w", len(xy), plot.ErrInvalidBounds)
	}
	if len(xy) < 4 {
		return nil
	}

	start := len(v.verts)
	for i := 0; i+3 < len(xy); i += 2 {
		v.verts = append(v.verts, xy[i], xy[i+1], xy[i+2], xy[i+3])
	}

	if err := v.b.Add(v.verts[start:], color, bounds, slot); err != nil {
		v.verts = v.verts[:start]
		return err
	}
	return nil
}

// AddSegments appends independent segments, four floats per segment
// (x0, y0, x1, y1). The slice is referenced until Finalize.
func (v *Lines) AddSegments(xy []float32, color plot.RGBA, bounds plot.Rect, slot int) error {
	if len(xy)%4 != 0 {
		return fmt.Errorf("visual: segment coordinates length %d is not a multiple of 4: %w", len(xy), plot.ErrInvalidBounds)
	}
	return v.b.Add(xy, color, bounds, slot)
}

// Finalize bakes placement into the vertices and publishes the
// geometry. On error the accumulated segments are retained.
func (v *Lines) Finalize(l plot.Layout, total int) error {
	geom, err := v.b.Finalize(l, total)
	if err != nil {
		return err
	}
	v.verts = v.verts[:0]
	v.geom = geom
	return nil
}

// Geometry returns the last finalized buffer, or nil before the first
// Finalize.
func (v *Lines) Geometry() *batch.Geometry { return v.geom }
