package text

import (
	"errors"
	"sync"

	"github.com/go-text/typesetting/di"
	tsfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// ErrNoSource is returned when shaping without a font source.
var ErrNoSource = errors.New("text: nil font source")

// Glyph is one positioned glyph in a shaped run. Positions are in
// pixels at the requested size, y up, with the origin at the start of
// the run baseline.
type Glyph struct {
	// Rune is the source rune the glyph maps back to. Ligatures
	// collapse onto their first rune.
	Rune rune

	// X, Y is the pen position the glyph is drawn at.
	X, Y float32
}

// Run is the shaped form of one label.
type Run struct {
	Glyphs []Glyph

	// Width is the total horizontal advance in pixels.
	Width float32

	// RTL reports whether the paragraph base direction was
	// right-to-left. Callers use it for anchor-side alignment.
	RTL bool
}

// Shaper turns label strings into positioned glyph runs using
// HarfBuzz shaping. It is safe for concurrent use; the underlying
// HarfbuzzShaper instances are pooled because they carry mutable
// buffers and are not concurrent-safe themselves.
type Shaper struct {
	pool sync.Pool
}

// NewShaper creates a Shaper.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape shapes label at sizePx pixels per em using src. An empty
// label yields an empty run and no error. Only horizontal layout is
// produced; the base direction is detected from the text itself so
// Hebrew or Arabic labels come out in visual order.
func (s *Shaper) Shape(src *Source, label string, sizePx float64) (Run, error) {
	if src == nil {
		return Run{}, ErrNoSource
	}
	if label == "" {
		return Run{}, nil
	}

	runes := []rune(label)
	dir := baseDirection(label)

	// font.Face is not safe for concurrent use, so each call wraps
	// the shared read-only Font in a fresh Face. NewFace is cheap.
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      tsfont.NewFace(src.shaping),
		Size:      fixed.Int26_6(sizePx * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.pool.Put(hb)

	run := Run{
		Glyphs: make([]Glyph, 0, len(out.Glyphs)),
		RTL:    dir == di.DirectionRTL,
	}

	var x float32
	for _, g := range out.Glyphs {
		r := rune(0)
		if idx := g.TextIndex(); idx >= 0 && idx < len(runes) {
			r = runes[idx]
		}
		run.Glyphs = append(run.Glyphs, Glyph{
			Rune: r,
			X:    x + fixedToFloat(g.XOffset),
			Y:    fixedToFloat(g.YOffset),
		})
		x += fixedToFloat(g.Advance)
	}
	run.Width = x
	return run, nil
}

// baseDirection resolves the paragraph base direction per UAX #9.
func baseDirection(label string) di.Direction {
	var p bidi.Paragraph
	_, _ = p.SetString(label, bidi.DefaultDirection(bidi.Neutral))
	if p.Direction() == bidi.RightToLeft {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// detectScript returns the script of the first non-space rune.
// Labels are short and single-script in practice; mixed-script text
// shapes with the first script's rules.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
