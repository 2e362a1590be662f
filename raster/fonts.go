package raster

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontSet is the set of typefaces a Software rasterizer draws with. The Go
// fonts cover Latin text; glyphs they lack, such as emoji, are looked up in
// the fallbacks in order. A FontSet is read-only once built.
type FontSet struct {
	regular   *opentype.Font
	medium    *opentype.Font
	bold      *opentype.Font
	fallbacks []*opentype.Font
}

// DefaultFonts returns the Go regular, medium and bold faces with no fallbacks.
func DefaultFonts() (*FontSet, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	medium, err := opentype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse medium font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &FontSet{regular: regular, medium: medium, bold: bold}, nil
}

// WithFallbacks returns a copy of fs that also searches fonts for missing glyphs.
func (fs *FontSet) WithFallbacks(fonts ...*opentype.Font) *FontSet {
	out := *fs
	out.fallbacks = append(append([]*opentype.Font(nil), fs.fallbacks...), fonts...)
	return &out
}

// LoadFontDir parses every .ttf and .otf file in dir, in name order. Only
// outline fonts work; bitmap colour-emoji fonts fail to parse.
func LoadFontDir(dir string) ([]*opentype.Font, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read font dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".ttf" || ext == ".otf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	fonts := make([]*opentype.Font, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", name, err)
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", name, err)
		}
		fonts = append(fonts, f)
	}
	return fonts, nil
}

// forWeight maps a CSS weight to the closest bundled face.
func (fs *FontSet) forWeight(weight int) *opentype.Font {
	switch {
	case weight >= 600:
		return fs.bold
	case weight >= 500:
		return fs.medium
	default:
		return fs.regular
	}
}

type faceKey struct {
	font *opentype.Font
	size int
}

// faces caches font.Face values for one render. Faces are not safe for
// concurrent use, so each Rasterize call owns its own faces.
type faces struct {
	set   *FontSet
	cache map[faceKey]font.Face
	buf   sfnt.Buffer
}

func newFaces(set *FontSet) *faces {
	return &faces{set: set, cache: make(map[faceKey]font.Face)}
}

func (f *faces) face(fnt *opentype.Font, size int) (font.Face, error) {
	key := faceKey{fnt, size}
	if fc, ok := f.cache[key]; ok {
		return fc, nil
	}
	fc, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	f.cache[key] = fc
	return fc, nil
}

func (f *faces) close() {
	for _, fc := range f.cache {
		fc.Close()
	}
}

func (f *faces) hasGlyph(fnt *opentype.Font, r rune) bool {
	idx, err := fnt.GlyphIndex(&f.buf, r)
	return err == nil && idx != 0
}

// zeroWidth reports runes that only modify their neighbours: variation
// selectors and the zero-width joiner.
func zeroWidth(r rune) bool {
	return r == '\u200d' || (r >= '\ufe00' && r <= '\ufe0f')
}

// textRun is a stretch of text drawn with a single face.
type textRun struct {
	face font.Face
	text string
}

// runs splits s into stretches that share a face, falling back per rune.
func (f *faces) runs(s string, size, weight int) ([]textRun, error) {
	primary := f.set.forWeight(weight)
	var out []textRun
	var cur *opentype.Font
	var b strings.Builder
	flush := func() error {
		if b.Len() == 0 {
			return nil
		}
		fc, err := f.face(cur, size)
		if err != nil {
			return err
		}
		out = append(out, textRun{face: fc, text: b.String()})
		b.Reset()
		return nil
	}
	for _, r := range s {
		if zeroWidth(r) {
			continue
		}
		pick := primary
		if !f.hasGlyph(primary, r) {
			for _, fb := range f.set.fallbacks {
				if f.hasGlyph(fb, r) {
					pick = fb
					break
				}
			}
		}
		if pick != cur {
			if err := flush(); err != nil {
				return nil, err
			}
			cur = pick
		}
		b.WriteRune(r)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *faces) width(s string, size, weight int) (fixed.Int26_6, error) {
	runs, err := f.runs(s, size, weight)
	if err != nil {
		return 0, err
	}
	var w fixed.Int26_6
	for _, r := range runs {
		w += font.MeasureString(r.face, r.text)
	}
	return w, nil
}

// lineMetrics returns the line box height and the baseline offset from the
// top of that box, both in pixels.
func (f *faces) lineMetrics(size, weight int, lineHeight float64) (height, baseline int, err error) {
	fc, err := f.face(f.set.forWeight(weight), size)
	if err != nil {
		return 0, 0, err
	}
	if lineHeight <= 0 {
		lineHeight = 1.2
	}
	m := fc.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	height = int(math.Round(float64(size) * lineHeight))
	baseline = (height-(ascent+descent))/2 + ascent
	return height, baseline, nil
}

// wrap breaks s into lines no wider than maxWidth pixels. Words wider than
// a whole line are split between characters.
func (f *faces) wrap(s string, size, weight, maxWidth int) ([]string, error) {
	limit := fixed.I(maxWidth)
	var lines []string
	var line string
	for _, word := range strings.Fields(s) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		w, err := f.width(candidate, size, weight)
		if err != nil {
			return nil, err
		}
		if w <= limit || maxWidth <= 0 {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		ww, err := f.width(word, size, weight)
		if err != nil {
			return nil, err
		}
		if ww <= limit {
			line = word
			continue
		}
		pieces, err := f.breakWord(word, size, weight, limit)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines, nil
}

func (f *faces) breakWord(word string, size, weight int, limit fixed.Int26_6) ([]string, error) {
	var pieces []string
	var cur []rune
	for _, r := range word {
		next := string(append(cur, r))
		w, err := f.width(next, size, weight)
		if err != nil {
			return nil, err
		}
		if w > limit && len(cur) > 0 {
			pieces = append(pieces, string(cur))
			cur = []rune{r}
			continue
		}
		cur = append(cur, r)
	}
	return append(pieces, string(cur)), nil
}
