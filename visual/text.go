package visual

import (
	"fmt"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/batch"
	"github.com/gogpu/plot/text"
)

// DefaultLabelSize is the rasterization size of label glyphs in
// pixels per em.
const DefaultLabelSize = 32

// Align selects which part of a label sits on its anchor point.
type Align uint8

const (
	// AlignLeft starts the label at the anchor.
	AlignLeft Align = iota
	// AlignCenter centers the label on the anchor.
	AlignCenter
	// AlignRight ends the label at the anchor.
	AlignRight
)

// TextOption configures a Text visual.
type TextOption func(*textConfig)

type textConfig struct {
	labelPx   int
	align     Align
	atlasSize int
}

func defaultTextConfig() textConfig {
	return textConfig{labelPx: DefaultLabelSize, align: AlignLeft}
}

// WithLabelSize sets the glyph rasterization size in pixels per em.
// Larger sizes stay crisp when labels render tall but fill the atlas
// faster.
func WithLabelSize(px int) TextOption {
	return func(c *textConfig) {
		if px > 0 {
			c.labelPx = px
		}
	}
}

// WithAlign sets the label alignment relative to the anchor point.
func WithAlign(a Align) TextOption {
	return func(c *textConfig) {
		c.align = a
	}
}

// WithAtlasSize sets the glyph atlas side length in pixels.
func WithAtlasSize(n int) TextOption {
	return func(c *textConfig) {
		c.atlasSize = n
	}
}

// Text renders labels as glyph quads. Each glyph contributes four
// vertices sharing the label's anchor position plus a quad channel
// holding the corner offset in em units and the atlas coordinates.
// The shader scales offsets by the label height uniform, so the
// per-subplot data transform moves labels without distorting them.
type Text struct {
	source *text.Source
	shaper *text.Shaper
	atlas  *text.Atlas

	b       *batch.Builder
	labelPx int
	align   Align

	anchors []float32
	quadAcc []float32

	// quadOut is double-buffered like the builder's output so the
	// previous frame's quads survive the next Finalize.
	quadOut [2][]float32
	quadCur int

	geom *batch.Geometry
}

// NewText creates an empty label visual drawing from src.
func NewText(src *text.Source, opts ...TextOption) *Text {
	cfg := defaultTextConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Text{
		source:  src,
		shaper:  text.NewShaper(),
		atlas:   text.NewAtlas(src, cfg.atlasSize),
		b:       batch.NewBuilder(),
		labelPx: cfg.labelPx,
		align:   cfg.align,
	}
}

// Kind returns KindText.
func (t *Text) Kind() Kind { return KindText }

// Atlas exposes the glyph atlas for texture upload.
func (t *Text) Atlas() *text.Atlas { return t.atlas }

// LabelSize returns the glyph rasterization size in pixels per em.
func (t *Text) LabelSize() int { return t.labelPx }

// Reset drops all accumulated labels. Atlas contents survive resets;
// glyphs rasterized for earlier frames stay cached.
func (t *Text) Reset() {
	t.b.Reset()
	t.anchors = t.anchors[:0]
	t.quadAcc = t.quadAcc[:0]
	t.geom = nil
}

// AddLabel places label with its anchor at the data-space point x, y.
// Shaping and rasterization happen immediately; the atlas gains any
// glyphs it has not seen at this size. A failure leaves the
// accumulated state untouched.
func (t *Text) AddLabel(x, y float32, label string, color plot.RGBA, bounds plot.Rect, slot int) error {
	run, err := t.shaper.Shape(t.source, label, float64(t.labelPx))
	if err != nil {
		return fmt.Errorf("visual: shape label %q: %w", label, err)
	}
	if len(run.Glyphs) == 0 {
		return nil
	}

	var dx float32
	switch t.align {
	case AlignCenter:
		dx = -run.Width / 2
	case AlignRight:
		dx = -run.Width
	}

	anchorStart := len(t.anchors)
	quadStart := len(t.quadAcc)
	em := float32(t.labelPx)

	for _, g := range run.Glyphs {
		reg, err := t.atlas.Glyph(g.Rune, t.labelPx)
		if err != nil {
			t.anchors = t.anchors[:anchorStart]
			t.quadAcc = t.quadAcc[:quadStart]
			return fmt.Errorf("visual: rasterize %q: %w", g.Rune, err)
		}
		if reg.Empty() {
			continue
		}

		left := (g.X + dx + reg.BearingX) / em
		right := left + float32(reg.W)/em
		top := (g.Y + reg.BearingY) / em
		bottom := top - float32(reg.H)/em

		t.anchors = append(t.anchors, x, y, x, y, x, y, x, y)
		t.quadAcc = append(t.quadAcc,
			left, bottom, reg.U0, reg.V1,
			right, bottom, reg.U1, reg.V1,
			right, top, reg.U1, reg.V0,
			left, top, reg.U0, reg.V0,
		)
	}

	if len(t.anchors) == anchorStart {
		// Whitespace-only label, nothing to draw.
		return nil
	}

	if err := t.b.Add(t.anchors[anchorStart:], color, bounds, slot); err != nil {
		t.anchors = t.anchors[:anchorStart]
		t.quadAcc = t.quadAcc[:quadStart]
		return err
	}
	return nil
}

// Finalize bakes placement into the anchors and publishes the
// geometry. Four vertices per glyph; the renderer derives the index
// list. On error the accumulated labels are retained.
func (t *Text) Finalize(l plot.Layout, total int) error {
	geom, err := t.b.Finalize(l, total)
	if err != nil {
		return err
	}
	next := t.quadCur ^ 1
	t.quadOut[next] = append(t.quadOut[next][:0], t.quadAcc...)
	geom.Quads = t.quadOut[next]
	t.quadCur = next
	t.quadAcc = t.quadAcc[:0]
	t.anchors = t.anchors[:0]
	t.geom = geom
	return nil
}

// Geometry returns the last finalized buffer, or nil before the first
// Finalize.
func (t *Text) Geometry() *batch.Geometry { return t.geom }
