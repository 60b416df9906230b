package text

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultAtlasSize is the default atlas side length in pixels. 512x512
// holds a few hundred glyphs at typical label sizes, far more than a
// plot's worth of short labels needs.
const DefaultAtlasSize = 512

// glyphPadding keeps one transparent pixel between packed glyphs so
// linear sampling never bleeds a neighbor in.
const glyphPadding = 1

// ErrAtlasFull is returned when a glyph does not fit in the atlas.
var ErrAtlasFull = errors.New("text: glyph atlas full")

// Region locates one rasterized glyph inside the atlas and carries its
// metrics. Bearings and advance are in pixels at the rasterized size;
// BearingY measures from the baseline up to the bitmap top.
type Region struct {
	U0, V0, U1, V1 float32 // normalized atlas rect, v grows downward

	W, H int // bitmap extents in pixels

	BearingX float32
	BearingY float32
	Advance  float32
}

// Empty reports whether the glyph has no ink, as for spaces.
func (r Region) Empty() bool { return r.W == 0 || r.H == 0 }

type glyphKey struct {
	r    rune
	size int
}

// Atlas packs rasterized glyph masks into a single alpha image for
// upload as a GPU texture. Glyphs are rasterized on first use and
// cached by rune and pixel size. Packing is shelf based: glyphs fill a
// row left to right and a taller glyph opens a new row.
//
// Atlas is safe for concurrent use, though the engine only touches it
// from the build phase.
type Atlas struct {
	mu      sync.Mutex
	source  *Source
	img     *image.Alpha
	regions map[glyphKey]Region
	faces   map[int]font.Face

	penX, penY, rowH int
	dirty            bool
}

// NewAtlas creates an empty atlas backed by src. A size of 0 selects
// DefaultAtlasSize.
func NewAtlas(src *Source, size int) *Atlas {
	if size <= 0 {
		size = DefaultAtlasSize
	}
	return &Atlas{
		source:  src,
		img:     image.NewAlpha(image.Rect(0, 0, size, size)),
		regions: make(map[glyphKey]Region),
		faces:   make(map[int]font.Face),
	}
}

// Size returns the atlas side length in pixels.
func (a *Atlas) Size() int { return a.img.Rect.Dx() }

// Image exposes the backing alpha image for texture upload. The
// returned image is owned by the atlas; treat it as read-only.
func (a *Atlas) Image() *image.Alpha { return a.img }

// Dirty reports whether glyphs were added since the last MarkClean.
// The upload phase uses it to skip redundant texture writes.
func (a *Atlas) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// MarkClean clears the dirty flag after the atlas texture was uploaded.
func (a *Atlas) MarkClean() {
	a.mu.Lock()
	a.dirty = false
	a.mu.Unlock()
}

// Glyph returns the atlas region for r at sizePx, rasterizing and
// packing it on first use. Glyphs the font cannot render come back as
// an empty Region with a fallback advance, so missing coverage renders
// as a gap rather than failing the frame.
func (a *Atlas) Glyph(r rune, sizePx int) (Region, error) {
	if sizePx <= 0 {
		return Region{}, fmt.Errorf("text: glyph size %d out of range", sizePx)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := glyphKey{r: r, size: sizePx}
	if reg, ok := a.regions[key]; ok {
		return reg, nil
	}

	face, err := a.face(sizePx)
	if err != nil {
		return Region{}, err
	}

	bounds, advance, ok := face.GlyphBounds(r)
	if !ok {
		// No coverage. Cache an empty region so repeated labels do
		// not retry the lookup.
		reg := Region{Advance: float32(sizePx) / 3}
		a.regions[key] = reg
		return reg, nil
	}

	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6
	w, h := maxX-minX, maxY-minY

	reg := Region{
		W:        w,
		H:        h,
		BearingX: float32(bounds.Min.X) / 64,
		BearingY: -float32(bounds.Min.Y) / 64,
		Advance:  float32(advance) / 64,
	}

	if w <= 0 || h <= 0 {
		// Whitespace carries only an advance.
		reg.W, reg.H = 0, 0
		a.regions[key] = reg
		return reg, nil
	}

	x, y, err := a.pack(w, h)
	if err != nil {
		return Region{}, err
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	d.DrawString(string(r))

	draw.Draw(a.img, image.Rect(x, y, x+w, y+h), mask, image.Point{}, draw.Src)

	size := float32(a.Size())
	reg.U0 = float32(x) / size
	reg.V0 = float32(y) / size
	reg.U1 = float32(x+w) / size
	reg.V1 = float32(y+h) / size

	a.regions[key] = reg
	a.dirty = true
	return reg, nil
}

// pack reserves a w x h rectangle and returns its top-left corner.
func (a *Atlas) pack(w, h int) (int, int, error) {
	size := a.Size()
	if w+2*glyphPadding > size || h+2*glyphPadding > size {
		return 0, 0, fmt.Errorf("text: glyph %dx%d exceeds atlas %dx%d: %w", w, h, size, size, ErrAtlasFull)
	}
	if a.penX+w+glyphPadding > size {
		// Open a new shelf below the current one.
		a.penY += a.rowH + glyphPadding
		a.penX = 0
		a.rowH = 0
	}
	if a.penY+h+glyphPadding > size {
		return 0, 0, fmt.Errorf("text: atlas %dx%d out of shelves: %w", size, size, ErrAtlasFull)
	}
	x, y := a.penX, a.penY
	a.penX += w + glyphPadding
	if h > a.rowH {
		a.rowH = h
	}
	return x, y, nil
}

// face returns the cached rasterization face for sizePx.
func (a *Atlas) face(sizePx int) (font.Face, error) {
	if f, ok := a.faces[sizePx]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(a.source.raster, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("text: create face at %dpx: %w", sizePx, err)
	}
	a.faces[sizePx] = f
	return f, nil
}

// Close releases the cached rasterization faces.
func (a *Atlas) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	for size, f := range a.faces {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(a.faces, size)
	}
	return firstErr
}
