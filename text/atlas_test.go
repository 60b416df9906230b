package text

import (
	"errors"
	"image"
	"testing"
)

func TestAtlasGlyphMetrics(t *testing.T) {
	a := NewAtlas(testSource(t), 0)
	defer a.Close()

	reg, err := a.Glyph('A', 32)
	if err != nil {
		t.Fatalf("Glyph('A', 32): %v", err)
	}
	if reg.Empty() {
		t.Fatal("Glyph('A'): empty region for inked glyph")
	}
	if reg.W <= 0 || reg.H <= 0 {
		t.Errorf("extents = %dx%d, want positive", reg.W, reg.H)
	}
	if reg.Advance <= 0 {
		t.Errorf("Advance = %f, want > 0", reg.Advance)
	}
	if reg.BearingY <= 0 {
		t.Errorf("BearingY = %f, want > 0 for a glyph above the baseline", reg.BearingY)
	}
	if reg.U1 <= reg.U0 || reg.V1 <= reg.V0 {
		t.Errorf("uv rect (%f,%f)-(%f,%f) not positive", reg.U0, reg.V0, reg.U1, reg.V1)
	}
	if reg.U0 < 0 || reg.V0 < 0 || reg.U1 > 1 || reg.V1 > 1 {
		t.Errorf("uv rect (%f,%f)-(%f,%f) outside [0,1]", reg.U0, reg.V0, reg.U1, reg.V1)
	}
}

func TestAtlasCachesRegions(t *testing.T) {
	a := NewAtlas(testSource(t), 0)
	defer a.Close()

	first, err := a.Glyph('g', 24)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Dirty() {
		t.Fatal("Dirty() = false after packing a glyph")
	}
	a.MarkClean()

	second, err := a.Glyph('g', 24)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("cached region changed: %+v then %+v", first, second)
	}
	if a.Dirty() {
		t.Error("Dirty() = true after cache hit")
	}
}

func TestAtlasWhitespace(t *testing.T) {
	a := NewAtlas(testSource(t), 0)
	defer a.Close()

	reg, err := a.Glyph(' ', 24)
	if err != nil {
		t.Fatalf("Glyph(' '): %v", err)
	}
	if !reg.Empty() {
		t.Errorf("space region = %+v, want empty", reg)
	}
	if reg.Advance <= 0 {
		t.Errorf("space Advance = %f, want > 0", reg.Advance)
	}
	if a.Dirty() {
		t.Error("Dirty() = true after whitespace only")
	}
}

func TestAtlasSizesAreDistinct(t *testing.T) {
	a := NewAtlas(testSource(t), 0)
	defer a.Close()

	small, err := a.Glyph('W', 16)
	if err != nil {
		t.Fatal(err)
	}
	large, err := a.Glyph('W', 48)
	if err != nil {
		t.Fatal(err)
	}
	if large.W <= small.W || large.H <= small.H {
		t.Errorf("48px glyph %dx%d not larger than 16px glyph %dx%d",
			large.W, large.H, small.W, small.H)
	}
}

func TestAtlasPackingDoesNotOverlap(t *testing.T) {
	a := NewAtlas(testSource(t), 0)
	defer a.Close()

	var rects []image.Rectangle
	size := a.Size()
	for r := 'A'; r <= 'Z'; r++ {
		reg, err := a.Glyph(r, 24)
		if err != nil {
			t.Fatalf("Glyph(%q): %v", r, err)
		}
		if reg.Empty() {
			continue
		}
		px := image.Rect(
			int(reg.U0*float32(size)),
			int(reg.V0*float32(size)),
			int(reg.U1*float32(size)),
			int(reg.V1*float32(size)),
		)
		if !px.In(image.Rect(0, 0, size, size)) {
			t.Fatalf("glyph %q rect %v outside atlas", r, px)
		}
		for i, prev := range rects {
			if px.Overlaps(prev) {
				t.Fatalf("glyph %q rect %v overlaps earlier rect %v (index %d)", r, px, prev, i)
			}
		}
		rects = append(rects, px)
	}
	if len(rects) < 20 {
		t.Fatalf("packed only %d glyph rects, want at least 20", len(rects))
	}
}

func TestAtlasFull(t *testing.T) {
	a := NewAtlas(testSource(t), 16)
	defer a.Close()

	if _, err := a.Glyph('M', 64); !errors.Is(err, ErrAtlasFull) {
		t.Fatalf("Glyph on tiny atlas: got %v, want ErrAtlasFull", err)
	}
}

func TestAtlasGlyphAfterClose(t *testing.T) {
	a := NewAtlas(testSource(t), 0)
	if _, err := a.Glyph('x', 24); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Faces are rebuilt on demand after Close.
	if _, err := a.Glyph('y', 24); err != nil {
		t.Fatalf("Glyph after Close: %v", err)
	}
}

func TestAtlasRejectsBadSize(t *testing.T) {
	a := NewAtlas(testSource(t), 0)
	defer a.Close()
	if _, err := a.Glyph('x', 0); err == nil {
		t.Fatal("Glyph(size 0): got nil error")
	}
}
