package plot

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in data or device space.
// XMin/YMin is the lower-left corner, XMax/YMax the upper-right.
type Rect struct {
	XMin, YMin, XMax, YMax float32
}

// NDC returns the full normalized device rectangle [-1,1]x[-1,1].
func NDC() Rect {
	return Rect{XMin: -1, YMin: -1, XMax: 1, YMax: 1}
}

// NewRect constructs a rectangle from its four extents.
func NewRect(xMin, yMin, xMax, yMax float32) Rect {
	return Rect{XMin: xMin, YMin: yMin, XMax: xMax, YMax: yMax}
}

// Width returns XMax - XMin.
func (r Rect) Width() float32 { return r.XMax - r.XMin }

// Height returns YMax - YMin.
func (r Rect) Height() float32 { return r.YMax - r.YMin }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (x, y float32) {
	return (r.XMin + r.XMax) / 2, (r.YMin + r.YMax) / 2
}

// Contains reports whether (x, y) lies inside the rectangle,
// inclusive of its edges.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Validate checks that the rectangle is usable as a data-bounds window:
// all extents finite, XMin < XMax and YMin < YMax. A degenerate or
// inverted rectangle returns ErrInvalidBounds with detail.
func (r Rect) Validate() error {
	for _, v := range [4]float32{r.XMin, r.YMin, r.XMax, r.YMax} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite extent in %v: %w", r, ErrInvalidBounds)
		}
	}
	if r.XMin >= r.XMax {
		return fmt.Errorf("x extent [%g, %g] is empty: %w", r.XMin, r.XMax, ErrInvalidBounds)
	}
	if r.YMin >= r.YMax {
		return fmt.Errorf("y extent [%g, %g] is empty: %w", r.YMin, r.YMax, ErrInvalidBounds)
	}
	return nil
}

// String returns a compact representation for logs and errors.
func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.XMin, r.YMin, r.XMax, r.YMax)
}
