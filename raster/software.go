// Package raster turns og card trees into pixels. Software draws in pure Go
// with golang.org/x/image; Chrome screenshots the HTML rendering of the tree
// in a headless browser.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/eringen/ogcard/og"
)

// Software is an og.Rasterizer that lays out and paints the tree itself.
// It is safe for concurrent use; each call allocates its own canvas and faces.
type Software struct {
	fonts   *FontSet
	fetcher Fetcher
}

// SoftwareOption configures a Software rasterizer.
type SoftwareOption func(*Software)

// WithFonts replaces the default Go fonts.
func WithFonts(fs *FontSet) SoftwareOption {
	return func(s *Software) {
		s.fonts = fs
	}
}

// WithFetcher sets how image nodes are loaded (default: HTTP with a 10s timeout).
func WithFetcher(f Fetcher) SoftwareOption {
	return func(s *Software) {
		s.fetcher = f
	}
}

// NewSoftware creates a Software rasterizer.
func NewSoftware(opts ...SoftwareOption) (*Software, error) {
	s := &Software{}
	for _, opt := range opts {
		opt(s)
	}
	if s.fonts == nil {
		fonts, err := DefaultFonts()
		if err != nil {
			return nil, err
		}
		s.fonts = fonts
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(10 * time.Second)
	}
	return s, nil
}

// Rasterize implements og.Rasterizer and returns PNG bytes.
func (s *Software) Rasterize(ctx context.Context, root *og.Node, width, height int) ([]byte, error) {
	img, err := s.Draw(ctx, root, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw lays out and paints root onto a new width by height canvas.
func (s *Software) Draw(ctx context.Context, root *og.Node, width, height int) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fc := newFaces(s.fonts)
	defer fc.close()

	bounds := image.Rect(0, 0, width, height)
	l := &layouter{faces: fc}
	tree, err := l.place(root, bounds)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	p := &painter{ctx: ctx, dst: image.NewRGBA(bounds), faces: fc, fetch: s.fetcher}
	if err := p.paint(tree); err != nil {
		return nil, fmt.Errorf("paint: %w", err)
	}
	return p.dst, nil
}
