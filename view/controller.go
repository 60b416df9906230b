// Package view turns selection changes into populated batches. A
// Controller owns the canvas build callback: it drains the selection
// queue, fetches every selected entity's record through the injected
// DataProvider, and runs the attached series functions so each visual
// accumulates its frame's primitives.
package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/canvas"
	"github.com/gogpu/plot/visual"
)

// Record is one entity's numeric data: interleaved sample coordinates,
// their data-space bounds, an optional label, and any auxiliary named
// scalars the provider persists alongside the samples.
type Record struct {
	XY      []float32
	Bounds  plot.Rect
	Label   string
	Scalars map[string]float64
}

// DataProvider fetches entity records by ID. Implementations may be
// slow (disk, network); fetch failures are reported with
// plot.ErrDataUnavailable wrapped in the returned error.
type DataProvider interface {
	Fetch(ctx context.Context, id uint32) (Record, error)
}

// Entity is one selected item as seen by a series function: its ID,
// its subplot slot within the current selection, the selection size,
// its palette color, and the fetched record.
type Entity struct {
	ID     uint32
	Slot   int
	Total  int
	Color  plot.RGBA
	Record Record
}

// SeriesFunc populates one visual's batch for one entity. It runs once
// per surviving entity per redraw cycle.
type SeriesFunc func(e Entity) error

// series pairs a visual with its population function.
type series struct {
	v  visual.Visual
	fn SeriesFunc
}

// Controller mediates between selection events and the canvas redraw
// cycle. Selection changes are enqueued and consumed synchronously at
// the start of the next cycle; since selection state is absolute, only
// the newest queued message matters.
type Controller struct {
	cv *canvas.Canvas
	dp DataProvider

	series   []series
	selected []uint32

	// queued holds the latest selection message; hasQueue marks
	// whether one is pending. The slice is reused across messages,
	// and a newer message overwrites an unconsumed older one.
	queued   []uint32
	hasQueue bool

	bins      int
	maxBin    float32
	invertedY bool
}

// ControllerOption configures a Controller at creation time.
type ControllerOption func(*Controller)

// WithBins sets the bin count for histogram series. Default 64.
func WithBins(n int) ControllerOption {
	return func(c *Controller) { c.bins = n }
}

// WithMaxBin sets the histogram normalization ceiling. Zero means
// auto-scale per frame. Default 0.
func WithMaxBin(v float32) ControllerOption {
	return func(c *Controller) { c.maxBin = v }
}

// WithInvertedY flips the vertical orientation of every subplot. The
// flip is an explicit style choice and applies immediately on the next
// frame, without animation.
func WithInvertedY(inverted bool) ControllerOption {
	return func(c *Controller) { c.invertedY = inverted }
}

// NewController creates a controller bound to the canvas and installs
// itself as the canvas build callback.
func NewController(cv *canvas.Canvas, dp DataProvider, opts ...ControllerOption) *Controller {
	c := &Controller{
		cv:   cv,
		dp:   dp,
		bins: 64,
	}
	for _, opt := range opts {
		opt(c)
	}
	cv.SetBuildFunc(c.build)
	return c
}

// Attach pairs a visual with the series function that populates it.
// The visual must already be registered with the canvas; attachment
// order is irrelevant since draw order follows registration order.
func (c *Controller) Attach(v visual.Visual, fn SeriesFunc) {
	c.series = append(c.series, series{v: v, fn: fn})
}

// Bins returns the configured histogram bin count.
func (c *Controller) Bins() int { return c.bins }

// MaxBin returns the histogram normalization ceiling, zero for
// auto-scale.
func (c *Controller) MaxBin() float32 { return c.maxBin }

// InvertedY reports whether subplots render with a flipped vertical
// axis.
func (c *Controller) InvertedY() bool { return c.invertedY }

// Selection returns the entity IDs of the last consumed selection.
func (c *Controller) Selection() []uint32 { return c.selected }

// OnSelection enqueues a selection change and requests a redraw. The
// message is consumed at the start of the next cycle; a message
// arriving while a cycle is in flight applies to the follow-up cycle,
// keeping every frame internally consistent. Selection state is
// absolute, so a newer message replaces an unconsumed older one.
func (c *Controller) OnSelection(ids []uint32) error {
	c.queued = append(c.queued[:0], ids...)
	c.hasQueue = true
	return c.cv.Redraw()
}

// build is the canvas Building-phase callback: drain the queue, fetch
// every entity, then populate all attached visuals.
func (c *Controller) build() error {
	if c.hasQueue {
		c.selected = append(c.selected[:0], c.queued...)
		c.hasQueue = false
	}

	total := len(c.selected)
	if sc, ok := c.cv.Layout().(interface{ SetCount(int) }); ok {
		sc.SetCount(total)
	}
	c.cv.SetSlotCount(total)

	// Fetch everything before touching any batch, so a slow or failed
	// fetch delays the cycle but never leaves visuals half-populated.
	entities := make([]Entity, 0, total)
	ctx := context.Background()
	for i, id := range c.selected {
		rec, err := c.dp.Fetch(ctx, id)
		if err != nil {
			if errors.Is(err, plot.ErrDataUnavailable) {
				// The entity's slot renders empty; entities after it
				// keep their original slots.
				plot.Logger().Warn("entity data unavailable",
					"id", id, "slot", i, "error", err)
				continue
			}
			return fmt.Errorf("view: fetch entity %d: %w", id, err)
		}
		if c.invertedY {
			rec = flipY(rec)
		}
		entities = append(entities, Entity{
			ID:     id,
			Slot:   i,
			Total:  total,
			Color:  plot.ClusterColor(i),
			Record: rec,
		})
	}

	for _, s := range c.series {
		s.v.Reset()
	}
	for _, s := range c.series {
		for _, e := range entities {
			if err := s.fn(e); err != nil {
				return fmt.Errorf("view: series for entity %d (%v): %w", e.ID, s.v.Kind(), err)
			}
		}
	}
	return nil
}

// flipY mirrors the record's sample Y coordinates around the midline
// of its bounds. The bounds themselves are unchanged, so the mapping
// into the subplot stays valid; orientation snaps on the next frame.
func flipY(rec Record) Record {
	mid := rec.Bounds.YMin + rec.Bounds.YMax
	flipped := make([]float32, len(rec.XY))
	for i := 0; i+1 < len(rec.XY); i += 2 {
		flipped[i] = rec.XY[i]
		flipped[i+1] = mid - rec.XY[i+1]
	}
	rec.XY = flipped
	return rec
}
