package plot

import "fmt"

// Transform is a 2D axis-independent affine map: scale plus offset per
// axis, no rotation or shear.
//
//	x' = SX*x + TX
//	y' = SY*y + TY
//
// This is the only transform shape the engine needs: data bounds map to
// device rectangles and subplot cells map into canvas space, both along
// the axes. Keeping the representation to four scalars lets a placement
// and a data transform be composed once per batch entry and applied to
// millions of vertices as two multiply-adds each.
type Transform struct {
	SX, SY, TX, TY float32
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{SX: 1, SY: 1}
}

// Apply maps a single point.
func (t Transform) Apply(x, y float32) (float32, float32) {
	return t.SX*x + t.TX, t.SY*y + t.TY
}

// ApplyXY maps interleaved x,y pairs from src into dst. The slices may
// alias. dst must be at least as long as src; the number of floats
// written is len(src).
func (t Transform) ApplyXY(dst, src []float32) {
	for i := 0; i+1 < len(src); i += 2 {
		dst[i] = t.SX*src[i] + t.TX
		dst[i+1] = t.SY*src[i+1] + t.TY
	}
}

// Compose returns the transform equivalent to applying inner first and
// then t. Composition is associative, so a placement transform composed
// with a data-bounds transform collapses to a single scale+offset pair.
func (t Transform) Compose(inner Transform) Transform {
	return Transform{
		SX: t.SX * inner.SX,
		SY: t.SY * inner.SY,
		TX: t.SX*inner.TX + t.TX,
		TY: t.SY*inner.TY + t.TY,
	}
}

// ApplyRect maps a rectangle through the transform. Negative scales
// swap the affected extents so the result stays min/max ordered.
func (t Transform) ApplyRect(r Rect) Rect {
	x0, y0 := t.Apply(r.XMin, r.YMin)
	x1, y1 := t.Apply(r.XMax, r.YMax)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect{XMin: x0, YMin: y0, XMax: x1, YMax: y1}
}

// MapRect returns the transform that carries the four corners of src
// exactly onto the four corners of dst, scaling and translating each
// axis independently. A degenerate or non-finite src is rejected with
// ErrInvalidBounds rather than producing infinities.
func MapRect(src, dst Rect) (Transform, error) {
	if err := src.Validate(); err != nil {
		return Transform{}, fmt.Errorf("map rect: %w", err)
	}
	sx := dst.Width() / src.Width()
	sy := dst.Height() / src.Height()
	return Transform{
		SX: sx,
		SY: sy,
		TX: dst.XMin - sx*src.XMin,
		TY: dst.YMin - sy*src.YMin,
	}, nil
}

// MapToNDC returns the transform mapping the data-bounds rectangle onto
// the full normalized device rectangle [-1,1]x[-1,1].
func MapToNDC(bounds Rect) (Transform, error) {
	return MapRect(bounds, NDC())
}
