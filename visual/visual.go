// Package visual defines the drawable kinds the engine renders and the
// accumulators that turn per-subplot primitives into single-upload
// geometry. Each visual owns one GPU pipeline's worth of data: all
// subplots contribute entries, Finalize bakes layout placement into the
// vertices, and the whole visual renders in one draw call.
package visual

import (
	"github.com/gogpu/plot"
	"github.com/gogpu/plot/batch"
)

// Kind identifies the primitive class a visual renders with. Exactly
// one pipeline and one draw call serve each kind.
type Kind uint8

const (
	// KindPoints renders quad-expanded round markers.
	KindPoints Kind = iota
	// KindLines renders a line list, two vertices per segment.
	KindLines
	// KindTriangles renders a triangle list for filled shapes.
	KindTriangles
	// KindText renders glyph quads sampled from an alpha atlas.
	KindText
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindPoints:
		return "points"
	case KindLines:
		return "lines"
	case KindTriangles:
		return "triangles"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Visual accumulates primitives for one drawable across all subplots
// of a redraw cycle and finalizes them into one geometry buffer.
//
// The cycle contract: Reset at the start of the build phase, any
// number of Add calls, then Finalize exactly once. A failed Finalize
// keeps the accumulated entries so the caller may retry with a
// corrected layout. Geometry returns the last finalized buffer and is
// valid until the next Finalize or Reset.
type Visual interface {
	Kind() Kind
	Reset()
	Finalize(l plot.Layout, total int) error
	Geometry() *batch.Geometry
}
