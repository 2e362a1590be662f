package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/eringen/ogcard/og"
)

var testNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

type stubFetcher struct {
	img image.Image
	err error
}

func (f stubFetcher) Fetch(context.Context, string) (image.Image, error) {
	return f.img, f.err
}

func solid(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newTestSoftware(t *testing.T, opts ...SoftwareOption) *Software {
	t.Helper()
	s, err := NewSoftware(opts...)
	if err != nil {
		t.Fatalf("NewSoftware: %v", err)
	}
	return s
}

func near(got color.RGBA, want color.NRGBA, tol int) bool {
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	return d(got.R, want.R) <= tol && d(got.G, want.G) <= tol && d(got.B, want.B) <= tol
}

func TestRasterizeProducesFullHDPNG(t *testing.T) {
	s := newTestSoftware(t)
	tree := og.Layout(og.Request{Title: "Hello, world", Excerpt: "An excerpt"}, nil, testNow)
	out, err := s.Rasterize(context.Background(), tree, og.CanvasWidth, og.CanvasHeight)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1920 || b.Dy() != 1080 {
		t.Errorf("size = %dx%d, want 1920x1080", b.Dx(), b.Dy())
	}
}

func TestDrawPaintsResolvedStyle(t *testing.T) {
	s := newTestSoftware(t)
	cfg := &og.StyleConfig{
		BackgroundColor: og.String("#102030"),
		BorderColor:     og.String("#ff0000"),
		ResourceBgColor: og.String("#00ff00"),
		AccentStart:     og.String("#0000ff"),
	}
	img, err := s.Draw(context.Background(), og.Layout(og.Request{Title: "Styled"}, cfg, testNow), 1920, 1080)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	checks := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"canvas background", 10, 10, color.NRGBA{0x10, 0x20, 0x30, 255}},
		{"left border", 128, 500, color.NRGBA{255, 0, 0, 255}},
		{"panel background", 1000, 100, color.NRGBA{0, 255, 0, 255}},
		{"orb centre uses accent start", 1380, 540, color.NRGBA{0, 0, 255, 255}},
	}
	for _, c := range checks {
		if got := img.RGBAAt(c.x, c.y); !near(got, c.want, 6) {
			t.Errorf("%s at (%d,%d) = %v, want %v", c.name, c.x, c.y, got, c.want)
		}
	}
}

func TestDrawTitleInk(t *testing.T) {
	s := newTestSoftware(t)
	img, err := s.Draw(context.Background(), og.Layout(og.Request{Title: "WWWWWWWW"}, nil, testNow), 1920, 1080)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	bg := color.NRGBA{0, 0, 0, 255}
	inked := false
	for y := 146; y < 216 && !inked; y++ {
		for x := 194; x < 600; x++ {
			if !near(img.RGBAAt(x, y), bg, 10) {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("no title pixels found in the title area")
	}
}

func TestDrawImagePanel(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	s := newTestSoftware(t, WithFetcher(stubFetcher{img: solid(blue, 16, 9)}))
	tree := og.Layout(og.Request{Title: "Icon", ResourceIcon: "https://cdn.example/icon.png"}, nil, testNow)
	img, err := s.Draw(context.Background(), tree, 1920, 1080)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := img.RGBAAt(1380, 540); !near(got, color.NRGBA{0, 0, 255, 255}, 4) {
		t.Errorf("panel centre = %v, want icon colour", got)
	}
	if got := img.RGBAAt(975, 90); !near(got, color.NRGBA{0, 0, 255, 255}, 4) {
		t.Errorf("icon should cover the column, corner = %v", got)
	}
}

func TestRasterizeErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	s := newTestSoftware(t, WithFetcher(stubFetcher{err: boom}))
	tree := og.Layout(og.Request{Title: "x", ResourceIcon: "https://unreachable/icon.png"}, nil, testNow)
	if _, err := s.Rasterize(context.Background(), tree, 1920, 1080); !errors.Is(err, boom) {
		t.Errorf("image failure error = %v, want %v", err, boom)
	}

	bad := og.Layout(og.Request{Title: "x"}, &og.StyleConfig{BackgroundColor: og.String("nope")}, testNow)
	if _, err := s.Rasterize(context.Background(), bad, 1920, 1080); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("bad colour error = %v, want ErrInvalidColor", err)
	}
}

func TestRasterizeHonoursCancelledContext(t *testing.T) {
	s := newTestSoftware(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Rasterize(ctx, og.Layout(og.Request{Title: "x"}, nil, testNow), 1920, 1080); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
