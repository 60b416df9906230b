// Package text shapes and rasterizes subplot labels for the text
// visual. It is a deliberately small stack: HarfBuzz shaping via
// go-text/typesetting for correct advances, kerning, and RTL scripts,
// and glyph rasterization via golang.org/x/image into an alpha atlas
// the GPU samples from. Labels are short strings (cluster ids,
// channel names), so the package favors a per-rune atlas over full
// run caching.
package text

import (
	"bytes"
	"errors"
	"fmt"

	tsfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrEmptyFont is returned when constructing a Source from no data.
var ErrEmptyFont = errors.New("text: empty font data")

// Source is a loaded font usable for both shaping and rasterization.
// One Source serves any number of labels and sizes; it is heavyweight
// and should be shared. Source is safe for concurrent use once created.
type Source struct {
	data []byte

	// shaping holds the typesetting font for HarfBuzz shaping.
	// tsfont.Font is read-only and safe for concurrent use.
	shaping *tsfont.Font

	// raster holds the x/image font for alpha-mask rasterization.
	raster *opentype.Font

	name string
}

// NewSource parses TTF or OTF font data. The data slice is retained;
// callers must not mutate it afterwards.
func NewSource(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFont
	}

	face, err := tsfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}

	rf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font for rasterization: %w", err)
	}

	s := &Source{data: data, shaping: face.Font, raster: rf}
	if name, err := rf.Name(nil, sfnt.NameIDFamily); err == nil {
		s.name = name
	}
	return s, nil
}

// Name returns the font family name, or "" when the font does not
// declare one.
func (s *Source) Name() string { return s.name }
