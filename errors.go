package plot

import "errors"

// Engine errors. Call sites wrap these with fmt.Errorf("...: %w", err)
// so callers can match with errors.Is.
var (
	// ErrInvalidBounds is returned for a malformed data-bounds rectangle:
	// degenerate (zero width or height), inverted, or containing NaN.
	// The engine fails fast rather than producing infinities downstream.
	ErrInvalidBounds = errors.New("plot: invalid data bounds")

	// ErrInvalidSlot is returned when a subplot slot index falls outside
	// the declared slot range of the active layout. Out-of-range slots
	// are a programming error and are never silently clamped.
	ErrInvalidSlot = errors.New("plot: slot index out of range")

	// ErrDataUnavailable is returned by data providers when an entity's
	// samples cannot be fetched. It is non-fatal: the affected subplot
	// renders empty at its original slot while the rest of the frame
	// proceeds.
	ErrDataUnavailable = errors.New("plot: data unavailable")

	// ErrSurfaceLost is returned when the GPU surface has been
	// invalidated externally (for example by a resize race). It is
	// recoverable: the canvas re-creates size-dependent resources and
	// runs one extra redraw cycle.
	ErrSurfaceLost = errors.New("plot: surface lost")

	// ErrCanvasClosed is returned when operating on a canvas after
	// teardown. This is a fatal precondition violation surfaced
	// immediately to the caller.
	ErrCanvasClosed = errors.New("plot: canvas closed")
)
