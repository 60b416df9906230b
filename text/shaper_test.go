package text

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// testSource parses the embedded Go Regular font, which carries Latin,
// Greek, and Cyrillic coverage plus kerning tables.
func testSource(t *testing.T) *Source {
	t.Helper()
	src, err := NewSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewSource(goregular.TTF): %v", err)
	}
	return src
}

func TestNewSourceRejectsEmptyData(t *testing.T) {
	if _, err := NewSource(nil); !errors.Is(err, ErrEmptyFont) {
		t.Fatalf("NewSource(nil): got %v, want ErrEmptyFont", err)
	}
}

func TestNewSourceRejectsGarbage(t *testing.T) {
	if _, err := NewSource([]byte("definitely not a font")); err == nil {
		t.Fatal("NewSource(garbage): got nil error")
	}
}

func TestSourceName(t *testing.T) {
	src := testSource(t)
	if src.Name() == "" {
		t.Error("Name(): got empty family name for Go Regular")
	}
}

func TestShapeBasicLatin(t *testing.T) {
	src := testSource(t)
	shaper := NewShaper()

	run, err := shaper.Shape(src, "Hello", 16)
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if got, want := len(run.Glyphs), 5; got != want {
		t.Fatalf("Shape(\"Hello\"): got %d glyphs, want %d", got, want)
	}
	if run.RTL {
		t.Error("Shape(\"Hello\"): RTL = true, want false")
	}
	if run.Width <= 0 {
		t.Errorf("Width = %f, want > 0", run.Width)
	}

	// Pen positions advance monotonically for LTR text.
	var prevX float32 = -1
	for i, g := range run.Glyphs {
		if g.X <= prevX {
			t.Errorf("glyph %d: X=%f, want > %f", i, g.X, prevX)
		}
		prevX = g.X
	}
	last := run.Glyphs[len(run.Glyphs)-1]
	if last.X >= run.Width {
		t.Errorf("last glyph X=%f, want < total width %f", last.X, run.Width)
	}
}

func TestShapeEmptyLabel(t *testing.T) {
	src := testSource(t)
	run, err := NewShaper().Shape(src, "", 16)
	if err != nil {
		t.Fatalf("Shape(\"\"): %v", err)
	}
	if len(run.Glyphs) != 0 || run.Width != 0 {
		t.Errorf("Shape(\"\") = %+v, want empty run", run)
	}
}

func TestShapeNilSource(t *testing.T) {
	if _, err := NewShaper().Shape(nil, "x", 16); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Shape(nil source): got %v, want ErrNoSource", err)
	}
}

func TestShapeKerning(t *testing.T) {
	src := testSource(t)
	shaper := NewShaper()

	a, err := shaper.Shape(src, "A", 16)
	if err != nil {
		t.Fatal(err)
	}
	v, err := shaper.Shape(src, "V", 16)
	if err != nil {
		t.Fatal(err)
	}
	av, err := shaper.Shape(src, "AV", 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(av.Glyphs) != 2 {
		t.Fatalf("Shape(\"AV\"): got %d glyphs, want 2", len(av.Glyphs))
	}

	individual := a.Width + v.Width
	if av.Width < individual {
		t.Logf("kerning tightened AV: %.2f < %.2f", av.Width, individual)
	}
	// Shaping never widens the pair beyond the separate advances.
	if av.Width > individual+0.01 {
		t.Errorf("Shape(\"AV\"): width %f exceeds separate advances %f", av.Width, individual)
	}
}

func TestShapeDetectsRTL(t *testing.T) {
	src := testSource(t)
	run, err := NewShaper().Shape(src, "שלום", 16)
	if err != nil {
		t.Fatalf("Shape(hebrew): %v", err)
	}
	if !run.RTL {
		t.Error("Shape(hebrew): RTL = false, want true")
	}
	if len(run.Glyphs) != 4 {
		t.Errorf("Shape(hebrew): got %d glyphs, want 4", len(run.Glyphs))
	}
}

func TestShapeRuneMapping(t *testing.T) {
	src := testSource(t)
	run, err := NewShaper().Shape(src, "ab", 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Glyphs) != 2 {
		t.Fatalf("got %d glyphs, want 2", len(run.Glyphs))
	}
	if run.Glyphs[0].Rune != 'a' || run.Glyphs[1].Rune != 'b' {
		t.Errorf("runes = %q, %q, want 'a', 'b'", run.Glyphs[0].Rune, run.Glyphs[1].Rune)
	}
}

func TestShaperConcurrent(t *testing.T) {
	src := testSource(t)
	shaper := NewShaper()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				run, err := shaper.Shape(src, "cluster 42", 16)
				if err != nil {
					done <- err
					return
				}
				if len(run.Glyphs) != 10 {
					done <- errors.New("wrong glyph count under concurrency")
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}
