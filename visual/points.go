package visual

import (
	"fmt"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/batch"
)

// DefaultMarkerSize is the default marker height as a fraction of the
// viewport height.
const DefaultMarkerSize = 0.02

// quadCorners lists the six triangle-list corners of a unit quad
// centered on the anchor, wound counterclockwise in y-up coordinates.
var quadCorners = [6][2]float32{
	{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5},
	{0.5, 0.5}, {-0.5, 0.5}, {-0.5, -0.5},
}

// PointsOption configures a Points visual.
type PointsOption func(*pointsConfig)

type pointsConfig struct {
	markerSize float32
}

func defaultPointsConfig() pointsConfig {
	return pointsConfig{markerSize: DefaultMarkerSize}
}

// WithMarkerSize sets the marker height as a fraction of the viewport
// height. Markers stay square under aspect correction.
func WithMarkerSize(size float32) PointsOption {
	return func(c *pointsConfig) {
		if size > 0 {
			c.markerSize = size
		}
	}
}

// Points renders scatter markers. Each point expands to six vertices
// sharing the point's anchor position; the shader offsets the corners
// by the marker size so markers keep their shape regardless of the
// per-subplot data transform.
type Points struct {
	b    *batch.Builder
	size float32

	// anchors backs the expanded per-vertex anchor coordinates the
	// builder references until Finalize.
	anchors []float32

	// quadAcc accumulates corner offsets and uv in lockstep with the
	// anchors; quadOut holds the copies handed out via Geometry,
	// double-buffered like the builder's output so the previous
	// frame's quads survive the next Finalize.
	quadAcc []float32
	quadOut [2][]float32
	quadCur int

	geom *batch.Geometry
}

// NewPoints creates an empty marker visual.
func NewPoints(opts ...PointsOption) *Points {
	cfg := defaultPointsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Points{b: batch.NewBuilder(), size: cfg.markerSize}
}

// Kind returns KindPoints.
func (p *Points) Kind() Kind { return KindPoints }

// MarkerSize returns the marker height fraction for the draw uniform.
func (p *Points) MarkerSize() float32 { return p.size }

// Reset drops all accumulated markers.
func (p *Points) Reset() {
	p.b.Reset()
	p.anchors = p.anchors[:0]
	p.quadAcc = p.quadAcc[:0]
	p.geom = nil
}

// Add appends one subplot's markers. xy holds interleaved data-space
// coordinates, one pair per marker. A validation failure leaves the
// accumulated state untouched.
func (p *Points) Add(xy []float32, color plot.RGBA, bounds plot.Rect, slot int) error {
	if len(xy)%2 != 0 {
		return fmt.Errorf("visual: marker coordinates have odd length %d: %w", len(xy), plot.ErrInvalidBounds)
	}

	anchorStart := len(p.anchors)
	quadStart := len(p.quadAcc)
	for i := 0; i+1 < len(xy); i += 2 {
		for _, c := range quadCorners {
			p.anchors = append(p.anchors, xy[i], xy[i+1])
			p.quadAcc = append(p.quadAcc, c[0], c[1], c[0]+0.5, c[1]+0.5)
		}
	}

	if err := p.b.Add(p.anchors[anchorStart:], color, bounds, slot); err != nil {
		p.anchors = p.anchors[:anchorStart]
		p.quadAcc = p.quadAcc[:quadStart]
		return err
	}
	return nil
}

// Finalize bakes placement into the anchors and publishes the
// geometry. On error the accumulated markers are retained.
func (p *Points) Finalize(l plot.Layout, total int) error {
	geom, err := p.b.Finalize(l, total)
	if err != nil {
		return err
	}
	next := p.quadCur ^ 1
	p.quadOut[next] = append(p.quadOut[next][:0], p.quadAcc...)
	geom.Quads = p.quadOut[next]
	p.quadCur = next
	p.quadAcc = p.quadAcc[:0]
	p.anchors = p.anchors[:0]
	p.geom = geom
	return nil
}

// Geometry returns the last finalized buffer, or nil before the first
// Finalize.
func (p *Points) Geometry() *batch.Geometry { return p.geom }
