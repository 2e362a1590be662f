package raster

import (
	"context"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/eringen/ogcard/og"
)

type painter struct {
	ctx   context.Context
	dst   *image.RGBA
	faces *faces
	fetch Fetcher
}

func (p *painter) paint(b *box) error {
	n := b.node
	if err := p.background(b); err != nil {
		return err
	}
	if err := p.border(b); err != nil {
		return err
	}
	content := inner(b.rect, insets(n))
	switch n.Kind {
	case og.KindText:
		if err := p.text(b, content); err != nil {
			return err
		}
	case og.KindImage:
		if err := p.image(n.Src, content); err != nil {
			return err
		}
	}
	for _, c := range b.children {
		if err := p.paint(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *painter) background(b *box) error {
	n := b.node
	var src image.Image
	switch {
	case n.Gradient != nil:
		g, err := newGradient(n.Gradient, b.rect)
		if err != nil {
			return err
		}
		src = g
	case n.Background != "":
		c, err := ParseColor(n.Background)
		if err != nil {
			return err
		}
		src = image.NewUniform(c)
	default:
		return nil
	}
	if n.Radius > 0 {
		mask := &roundedMask{rect: b.rect, radius: float64(n.Radius)}
		draw.DrawMask(p.dst, b.rect, src, b.rect.Min, mask, b.rect.Min, draw.Over)
		return nil
	}
	draw.Draw(p.dst, b.rect, src, b.rect.Min, draw.Over)
	return nil
}

// border draws straight edges. Rounded boxes in the card never carry one.
func (p *painter) border(b *box) error {
	w := b.node.Border.Width
	if w == (og.Edges{}) {
		return nil
	}
	c, err := ParseColor(b.node.Border.Color)
	if err != nil {
		return err
	}
	src := image.NewUniform(c)
	r := b.rect
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w.Top),
		image.Rect(r.Max.X-w.Right, r.Min.Y, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Max.Y-w.Bottom, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w.Left, r.Max.Y),
	}
	for _, e := range edges {
		if e = e.Intersect(r); !e.Empty() {
			draw.Draw(p.dst, e, src, image.Point{}, draw.Over)
		}
	}
	return nil
}

func (p *painter) text(b *box, content image.Rectangle) error {
	n := b.node
	if len(b.lines) == 0 {
		return nil
	}
	c, err := ParseColor(n.Color)
	if err != nil {
		return err
	}
	lineH, baseline, err := p.faces.lineMetrics(n.FontSize, n.FontWeight, n.LineHeight)
	if err != nil {
		return err
	}
	d := &font.Drawer{Dst: p.dst, Src: image.NewUniform(c)}
	for i, line := range b.lines {
		runs, err := p.faces.runs(line, n.FontSize, n.FontWeight)
		if err != nil {
			return err
		}
		d.Dot = fixed.P(content.Min.X, content.Min.Y+i*lineH+baseline)
		for _, r := range runs {
			d.Face = r.face
			d.DrawString(r.text)
		}
	}
	return nil
}

// image draws src scaled to cover dst, cropping the overflow evenly.
func (p *painter) image(src string, dst image.Rectangle) error {
	if dst.Empty() {
		return nil
	}
	img, err := p.fetch.Fetch(p.ctx, src)
	if err != nil {
		return err
	}
	sb := img.Bounds()
	if sb.Empty() {
		return nil
	}
	scale := math.Max(float64(dst.Dx())/float64(sb.Dx()), float64(dst.Dy())/float64(sb.Dy()))
	cropW := int(math.Round(float64(dst.Dx()) / scale))
	cropH := int(math.Round(float64(dst.Dy()) / scale))
	x0 := sb.Min.X + (sb.Dx()-cropW)/2
	y0 := sb.Min.Y + (sb.Dy()-cropH)/2
	crop := image.Rect(x0, y0, x0+cropW, y0+cropH).Intersect(sb)
	draw.CatmullRom.Scale(p.dst, dst, img, crop, draw.Over, nil)
	return nil
}

// gradient is an image.Image that evaluates a two-stop gradient over rect.
// Radial gradients are circles reaching the closest side of rect.
type gradient struct {
	kind     og.GradientKind
	rect     image.Rectangle
	from, to color.NRGBA
	dx, dy   float64
	length   float64
}

func newGradient(g *og.Gradient, rect image.Rectangle) (*gradient, error) {
	from, err := ParseColor(g.From)
	if err != nil {
		return nil, err
	}
	to, err := ParseColor(g.To)
	if err != nil {
		return nil, err
	}
	out := &gradient{kind: g.Kind, rect: rect, from: from, to: to}
	if g.Kind == og.Radial {
		out.length = math.Min(float64(rect.Dx()), float64(rect.Dy())) / 2
	} else {
		theta := g.Angle * math.Pi / 180
		out.dx, out.dy = math.Sin(theta), -math.Cos(theta)
		out.length = math.Abs(float64(rect.Dx())*out.dx) + math.Abs(float64(rect.Dy())*out.dy)
	}
	return out, nil
}

func (g *gradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *gradient) Bounds() image.Rectangle { return g.rect }

func (g *gradient) At(x, y int) color.Color {
	if g.length == 0 {
		return g.from
	}
	cx := float64(g.rect.Min.X) + float64(g.rect.Dx())/2
	cy := float64(g.rect.Min.Y) + float64(g.rect.Dy())/2
	px, py := float64(x)+0.5-cx, float64(y)+0.5-cy
	var t float64
	if g.kind == og.Radial {
		t = math.Hypot(px, py) / g.length
	} else {
		t = (px*g.dx+py*g.dy)/g.length + 0.5
	}
	return lerpColor(g.from, g.to, t)
}

// roundedMask is an anti-aliased alpha mask for a rectangle with round corners.
type roundedMask struct {
	rect   image.Rectangle
	radius float64
}

func (m *roundedMask) ColorModel() color.Model { return color.AlphaModel }

func (m *roundedMask) Bounds() image.Rectangle { return m.rect }

func (m *roundedMask) At(x, y int) color.Color {
	r := math.Min(m.radius, math.Min(float64(m.rect.Dx()), float64(m.rect.Dy()))/2)
	px, py := float64(x)+0.5, float64(y)+0.5
	cx := math.Max(float64(m.rect.Min.X)+r, math.Min(px, float64(m.rect.Max.X)-r))
	cy := math.Max(float64(m.rect.Min.Y)+r, math.Min(py, float64(m.rect.Max.Y)-r))
	a := r - math.Hypot(px-cx, py-cy) + 0.5
	switch {
	case a <= 0:
		return color.Alpha{}
	case a >= 1:
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{A: uint8(a * 0xff)}
}
