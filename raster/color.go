package raster

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// ErrInvalidColor is returned when a node carries a colour string the
// software rasterizer cannot read.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor reads any CSS colour: names, hex, rgb()/rgba() in comma or
// space syntax, hsl(), hwb() and "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	c, err := csscolorparser.Parse(strings.TrimSpace(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}, nil
}

// channel converts a 0-1 component to 0-255, clamping out-of-range input.
func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-t) + float64(y)*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
