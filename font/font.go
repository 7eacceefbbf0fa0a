// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package font provides the Font resource kind: a parsed TrueType or
// OpenType typeface used to shape and measure label text.
//
// Shaping runs the HarfBuzz port of go-text/typesetting, so kerning and
// ligatures are applied. Vertical metrics come from golang.org/x/image.
package font

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/gres"
)

// Kind is the registry kind name of fonts.
const Kind = "font"

// ErrEmptyData is returned when font data is empty.
var ErrEmptyData = errors.New("font: empty font data")

type (
	// Handle is a shared handle to a registered Font.
	Handle = gres.Handle[*Font]
	// Registry is the directory of fonts.
	Registry = gres.Registry[*Font]
)

// NewRegistry creates an empty font registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[*Font](Kind, opts...)
}

// Glyph is one shaped glyph, positioned in pixels relative to the pen
// origin of the text.
type Glyph struct {
	ID       uint32
	Cluster  int // index of the first rune of the glyph's cluster
	X, Y     float64
	XAdvance float64
}

// Metrics are the vertical metrics of a font at one size, in pixels.
// Descent is positive below the baseline.
type Metrics struct {
	Ascent    float64
	Descent   float64
	LineGap   float64
	XHeight   float64
	CapHeight float64
}

// LineHeight returns the distance between two baselines.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Font is a parsed typeface. It is safe for concurrent use.
type Font struct {
	name string
	path string
	data []byte

	face   *gotext.Font
	sfnt   *opentype.Font
	family string

	// HarfbuzzShaper keeps internal buffers and is not safe for concurrent use.
	shapers sync.Pool
}

// FromBytes returns a constructor parsing font data.
func FromBytes(data []byte) gres.Constructor[*Font] {
	return func(name string) (*Font, error) {
		return parse(name, "", data)
	}
}

// FromFile returns a constructor parsing the font file at path.
func FromFile(path string) gres.Constructor[*Font] {
	return func(name string) (*Font, error) {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("font: %w", err)
		}
		return parse(name, path, data)
	}
}

func parse(name, path string, data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font: parse %q: %w", name, err)
	}
	sf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: parse %q: %w", name, err)
	}
	f := &Font{
		name: name,
		path: path,
		data: data,
		face: face.Font,
		sfnt: sf,
		shapers: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
	if family, err := sf.Name(nil, sfnt.NameIDFamily); err == nil {
		f.family = family
	}
	gres.Logger().Debug("font: parsed", "name", name, "family", f.family, "glyphs", sf.NumGlyphs())
	return f, nil
}

// Name returns the font name.
func (f *Font) Name() string { return f.name }

// Path returns the file the font was read from, or "".
func (f *Font) Path() string { return f.path }

// Data returns the raw font data.
func (f *Font) Data() []byte { return f.data }

// Family returns the family name recorded in the font, or "".
func (f *Font) Family() string { return f.family }

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int { return f.sfnt.NumGlyphs() }

// HasGlyph reports whether the font maps r to a glyph.
func (f *Font) HasGlyph(r rune) bool {
	var buf sfnt.Buffer
	idx, err := f.sfnt.GlyphIndex(&buf, r)
	return err == nil && idx != 0
}

// Metrics returns the vertical metrics at size pixels per em.
func (f *Font) Metrics(size float64) Metrics {
	var buf sfnt.Buffer
	m, err := f.sfnt.Metrics(&buf, toFixed(size), xfont.HintingNone)
	if err != nil {
		return Metrics{}
	}
	ascent, descent, height := fromFixed(m.Ascent), fromFixed(m.Descent), fromFixed(m.Height)
	descent = max(descent, -descent)
	return Metrics{
		Ascent:    ascent,
		Descent:   descent,
		LineGap:   max(height-ascent-descent, 0),
		XHeight:   fromFixed(m.XHeight),
		CapHeight: fromFixed(m.CapHeight),
	}
}

// Shape converts text into positioned glyphs at size pixels per em.
func (f *Font) Shape(text string, size float64) []Glyph {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.face),
		Size:      toFixed(size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := f.shapers.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	f.shapers.Put(hb)

	glyphs := make([]Glyph, len(out.Glyphs))
	var x float64
	for i, g := range out.Glyphs {
		adv := fromFixed(g.Advance)
		glyphs[i] = Glyph{
			ID:       uint32(g.GlyphID),
			Cluster:  g.TextIndex(),
			X:        x + fromFixed(g.XOffset),
			Y:        fromFixed(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}
	return glyphs
}

// Measure returns the advance width of text and the line height at size
// pixels per em.
func (f *Font) Measure(text string, size float64) (width, height float64) {
	for _, g := range f.Shape(text, size) {
		width += g.XAdvance
	}
	return width, f.Metrics(size).LineHeight()
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }
