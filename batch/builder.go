// Package batch accumulates per-subplot geometry contributions and
// concatenates them into a single upload per drawable kind.
//
// A Builder collects entries during the Building phase of a redraw
// cycle. Each entry carries raw data-space coordinates, a color, a
// data-bounds rectangle, and a subplot slot. Finalize makes exactly one
// pass over the entries, folds each entry's placement and data-bounds
// transforms into a single scale+offset pair, applies it while copying
// the coordinates into one contiguous position buffer with a parallel
// per-vertex color buffer, and hands the result to the drawable's
// uploader. Entry coordinate slices are referenced, not copied, until
// that pass.
package batch

import (
	"fmt"

	"github.com/gogpu/plot"
)

// Entry is one subplot's contribution to a drawable's next frame.
type Entry struct {
	// XY holds interleaved x,y data-space coordinates. The slice is
	// referenced until Finalize; callers must not mutate it before the
	// cycle completes.
	XY []float32

	// Color applies to every vertex of the entry.
	Color plot.RGBA

	// Bounds is the data-space window mapped onto the subplot's cell.
	Bounds plot.Rect

	// Slot is the subplot placement index under the active layout.
	Slot int
}

// Geometry is the concatenated output of one Finalize pass: interleaved
// NDC positions and a parallel per-vertex RGBA color buffer. Both
// slices are producer-owned; double-buffering keeps them intact through
// the following Finalize (so the last presented frame can be redrawn),
// after which their storage is recycled.
type Geometry struct {
	Positions []float32
	Colors    []float32

	// Quads carries four extra floats per vertex (corner offset x, y in
	// em units and atlas u, v) for quad-expanded vertices. It is nil
	// for plain point, line, and triangle geometry; marker and glyph
	// producers fill it alongside Positions.
	Quads []float32
}

// VertexCount returns the number of vertices in the geometry.
func (g *Geometry) VertexCount() int {
	if g == nil {
		return 0
	}
	return len(g.Positions) / 2
}

// Empty reports whether the geometry holds no vertices.
func (g *Geometry) Empty() bool { return g.VertexCount() == 0 }

// Builder accumulates entries for one drawable between Reset and
// Finalize. The zero value is ready to use.
type Builder struct {
	entries []Entry

	// Output storage, grow-only and double-buffered so the Geometry
	// returned by the previous Finalize keeps its contents while the
	// next pass writes. The canvas re-presents the last frame's
	// geometry on resize; writing would corrupt it.
	positions [2][]float32
	colors    [2][]float32
	cur       int

	// Per-entry transform scratch for the resolve pass.
	transforms []plot.Transform
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Reset empties the accumulator at the start of a rebuild cycle.
// Previously returned Geometry contents become invalid.
func (b *Builder) Reset() {
	b.entries = b.entries[:0]
}

// Len returns the number of accumulated entries.
func (b *Builder) Len() int { return len(b.entries) }

// Add appends one contribution. The coordinate slice is referenced, not
// copied; the call is O(1) amortized. Bounds are validated fail-fast:
// a degenerate or non-finite rectangle returns ErrInvalidBounds and
// leaves the accumulator and any previously finalized output unchanged.
// Odd-length coordinate slices and negative slots are rejected the same
// way.
func (b *Builder) Add(xy []float32, color plot.RGBA, bounds plot.Rect, slot int) error {
	if err := bounds.Validate(); err != nil {
		return fmt.Errorf("batch: add entry: %w", err)
	}
	if len(xy)%2 != 0 {
		return fmt.Errorf("batch: odd coordinate count %d: %w", len(xy), plot.ErrInvalidBounds)
	}
	if slot < 0 {
		return fmt.Errorf("batch: slot %d: %w", slot, plot.ErrInvalidSlot)
	}
	b.entries = append(b.entries, Entry{XY: xy, Color: color, Bounds: bounds, Slot: slot})
	return nil
}

// Finalize concatenates all accumulated entries in insertion order into
// a single Geometry. For each entry the placement transform (from the
// layout) and the data-bounds transform are composed once and applied
// per vertex during the copy; later entries follow earlier ones in the
// output, so later primitives overlap earlier ones on screen.
//
// Zero entries yield an empty Geometry, not an error: the drawable
// renders nothing that frame. A layout failure (ErrInvalidSlot) aborts
// the pass; the entries are retained so the caller can inspect them,
// no partial output is exposed, and the previously returned Geometry
// keeps its contents (placements resolve before the shared output
// buffers are touched).
//
// On success the accumulator is cleared for the next cycle.
func (b *Builder) Finalize(l plot.Layout, total int) (*Geometry, error) {
	// Resolve every transform first. The previous frame's Geometry
	// aliases the output buffers below, so nothing may be written
	// until the whole pass is known to succeed.
	if cap(b.transforms) < len(b.entries) {
		b.transforms = make([]plot.Transform, len(b.entries))
	}
	trs := b.transforms[:len(b.entries)]

	floats := 0
	for i := range b.entries {
		e := &b.entries[i]
		floats += len(e.XY)

		data, err := plot.MapToNDC(e.Bounds)
		if err != nil {
			return nil, fmt.Errorf("batch: entry %d: %w", i, err)
		}
		place, err := l.Place(e.Slot, total)
		if err != nil {
			return nil, fmt.Errorf("batch: entry %d: %w", i, err)
		}
		// One composition per entry, two multiply-adds per vertex.
		trs[i] = place.Compose(data)
	}

	next := b.cur ^ 1
	pos := growFloats(b.positions[next], floats)
	col := growFloats(b.colors[next], floats*2)

	for i := range b.entries {
		e := &b.entries[i]
		tr := trs[i]

		r, g, bl, a := float32(e.Color.R), float32(e.Color.G), float32(e.Color.B), float32(e.Color.A)
		for j := 0; j+1 < len(e.XY); j += 2 {
			pos = append(pos, tr.SX*e.XY[j]+tr.TX, tr.SY*e.XY[j+1]+tr.TY)
			col = append(col, r, g, bl, a)
		}
	}

	b.positions[next] = pos
	b.colors[next] = col
	b.cur = next
	b.entries = b.entries[:0]
	return &Geometry{Positions: pos, Colors: col}, nil
}

// growFloats returns a slice with capacity for at least n floats,
// reusing the backing array when it is large enough.
func growFloats(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, 0, n)
	}
	return s[:0]
}
