package visual

import (
	"fmt"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/batch"
)

// Triangles renders a triangle list for filled shapes such as
// histogram bars. Vertices are consumed three at a time.
type Triangles struct {
	b    *batch.Builder
	geom *batch.Geometry
}

// NewTriangles creates an empty triangle visual.
func NewTriangles() *Triangles {
	return &Triangles{b: batch.NewBuilder()}
}

// Kind returns KindTriangles.
func (v *Triangles) Kind() Kind { return KindTriangles }

// Reset drops all accumulated triangles.
func (v *Triangles) Reset() {
	v.b.Reset()
	v.geom = nil
}

// Add appends triangles from interleaved data-space coordinates, six
// floats per triangle. The slice is referenced until Finalize. A
// validation failure leaves the accumulated state untouched.
func (v *Triangles) Add(xy []float32, color plot.RGBA, bounds plot.Rect, slot int) error {
	if len(xy)%6 != 0 {
		return fmt.Errorf("visual: triangle coordinates length %d is not a multiple of 6: %w", len(xy), plot.ErrInvalidBounds)
	}
	return v.b.Add(xy, color, bounds, slot)
}

// Finalize bakes placement into the vertices and publishes the
// geometry. On error the accumulated triangles are retained.
func (v *Triangles) Finalize(l plot.Layout, total int) error {
	geom, err := v.b.Finalize(l, total)
	if err != nil {
		return err
	}
	v.geom = geom
	return nil
}

// Geometry returns the last finalized buffer, or nil before the first
// Finalize.
func (v *Triangles) Geometry() *batch.Geometry { return v.geom }

// BarVertices expands histogram bin counts into triangle-list vertices,
// two triangles per bar. Bar i spans x in [i/n, (i+1)/n] and rises from
// y=0 to counts[i], so the natural data bounds for the result are
// (0, 0, 1, maxBin); bars taller than maxBin clip against the subplot
// cell. Pairs with view.Histogram for amplitude-histogram subplots.
func BarVertices(counts []float32, maxBin float32) []float32 {
	n := len(counts)
	if n == 0 || maxBin <= 0 {
		return nil
	}
	verts := make([]float32, 0, n*12)
	barW := 1 / float32(n)
	for i, h := range counts {
		if h <= 0 {
			continue
		}
		x0 := float32(i) * barW
		x1 := x0 + barW
		verts = append(verts,
			x0, 0, x1, 0, x1, h,
			x1, h, x0, h, x0, 0,
		)
	}
	return verts
}
