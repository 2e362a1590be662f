package raster

import (
	"image"

	"github.com/eringen/ogcard/og"
)

// box is a node placed on the canvas. rect is the border box in canvas
// pixels; lines holds wrapped text for text nodes.
type box struct {
	node     *og.Node
	rect     image.Rectangle
	lines    []string
	children []*box
}

// layouter is a single-pass flex layout over og.Node trees. It supports the
// subset the card uses: fixed or content sizes, grow, gap, padding, borders,
// justify and align.
type layouter struct {
	faces *faces
}

func insets(n *og.Node) og.Edges {
	b, p := n.Border.Width, n.Padding
	return og.Edges{
		Top:    b.Top + p.Top,
		Right:  b.Right + p.Right,
		Bottom: b.Bottom + p.Bottom,
		Left:   b.Left + p.Left,
	}
}

func inner(r image.Rectangle, e og.Edges) image.Rectangle {
	in := image.Rect(r.Min.X+e.Left, r.Min.Y+e.Top, r.Max.X-e.Right, r.Max.Y-e.Bottom)
	if in.Dx() < 0 {
		in.Max.X = in.Min.X
	}
	if in.Dy() < 0 {
		in.Max.Y = in.Min.Y
	}
	return in
}

// measure returns the natural outer size of n when it may be at most maxW wide.
func (l *layouter) measure(n *og.Node, maxW int) (w, h int, err error) {
	in := insets(n)
	outerW := maxW
	if n.Width > 0 {
		outerW = n.Width
	}
	avail := outerW - in.Horizontal()

	switch n.Kind {
	case og.KindText:
		lines, err := l.faces.wrap(n.Text, n.FontSize, n.FontWeight, avail)
		if err != nil {
			return 0, 0, err
		}
		lineH, _, err := l.faces.lineMetrics(n.FontSize, n.FontWeight, n.LineHeight)
		if err != nil {
			return 0, 0, err
		}
		for _, line := range lines {
			lw, err := l.faces.width(line, n.FontSize, n.FontWeight)
			if err != nil {
				return 0, 0, err
			}
			if lw.Ceil() > w {
				w = lw.Ceil()
			}
		}
		w += in.Horizontal()
		h = len(lines)*lineH + in.Vertical()
	case og.KindImage:
		w, h = in.Horizontal(), in.Vertical()
	default:
		gaps := 0
		if len(n.Children) > 1 {
			gaps = n.Gap * (len(n.Children) - 1)
		}
		var mainSum, crossMax int
		remaining := avail
		if n.Direction != og.Column {
			remaining -= gaps
		}
		for _, c := range n.Children {
			cw, ch, err := l.measure(c, remaining)
			if err != nil {
				return 0, 0, err
			}
			if c.Height > 0 {
				ch = c.Height
			}
			if n.Direction == og.Column {
				mainSum += ch
				crossMax = max(crossMax, cw)
			} else {
				mainSum += cw
				crossMax = max(crossMax, ch)
				remaining -= cw
			}
		}
		if n.Direction == og.Column {
			w, h = crossMax, mainSum+gaps
		} else {
			w, h = mainSum+gaps, crossMax
		}
		w += in.Horizontal()
		h += in.Vertical()
	}
	if n.Width > 0 {
		w = n.Width
	}
	if n.Height > 0 {
		h = n.Height
	}
	return w, h, nil
}

// place lays n out inside r and returns the positioned subtree.
func (l *layouter) place(n *og.Node, r image.Rectangle) (*box, error) {
	b := &box{node: n, rect: r}
	content := inner(r, insets(n))

	switch n.Kind {
	case og.KindText:
		lines, err := l.faces.wrap(n.Text, n.FontSize, n.FontWeight, content.Dx())
		if err != nil {
			return nil, err
		}
		b.lines = lines
		return b, nil
	case og.KindImage:
		return b, nil
	}
	if len(n.Children) == 0 {
		return b, nil
	}

	column := n.Direction == og.Column
	mainSize, crossSize := content.Dx(), content.Dy()
	if column {
		mainSize, crossSize = crossSize, mainSize
	}
	gaps := n.Gap * (len(n.Children) - 1)

	mains := make([]int, len(n.Children))
	crosses := make([]int, len(n.Children))
	used, grows := 0, 0
	for i, c := range n.Children {
		var cw, ch int
		if column {
			switch {
			case c.Width > 0:
				cw = c.Width
			case n.Align == og.AlignStretch:
				cw = content.Dx()
			default:
				w, _, err := l.measure(c, content.Dx())
				if err != nil {
					return nil, err
				}
				cw = w
			}
			if c.Height > 0 {
				ch = c.Height
			} else {
				_, h, err := l.measure(c, cw)
				if err != nil {
					return nil, err
				}
				ch = h
			}
			mains[i], crosses[i] = ch, cw
		} else {
			if c.Width > 0 {
				cw = c.Width
			} else {
				w, _, err := l.measure(c, max(mainSize-gaps-used, 0))
				if err != nil {
					return nil, err
				}
				cw = w
			}
			switch {
			case c.Height > 0:
				ch = c.Height
			case n.Align == og.AlignStretch:
				ch = content.Dy()
			default:
				_, h, err := l.measure(c, cw)
				if err != nil {
					return nil, err
				}
				ch = h
			}
			mains[i], crosses[i] = cw, ch
		}
		used += mains[i]
		grows += c.Grow
	}

	free := mainSize - used - gaps
	if free > 0 && grows > 0 {
		left := free
		last := -1
		for i, c := range n.Children {
			if c.Grow > 0 {
				extra := free * c.Grow / grows
				mains[i] += extra
				left -= extra
				last = i
			}
		}
		mains[last] += left
		free = 0
	}

	offset, spacing := 0, n.Gap
	if free > 0 {
		switch n.Justify {
		case og.JustifyCenter:
			offset = free / 2
		case og.JustifyEnd:
			offset = free
		case og.JustifySpaceBetween:
			if len(n.Children) > 1 {
				spacing += free / (len(n.Children) - 1)
			}
		}
	}

	pos := offset
	for i, c := range n.Children {
		cross := 0
		switch n.Align {
		case og.AlignCenter:
			cross = (crossSize - crosses[i]) / 2
		case og.AlignEnd:
			cross = crossSize - crosses[i]
		}
		var cr image.Rectangle
		if column {
			cr = image.Rect(content.Min.X+cross, content.Min.Y+pos, content.Min.X+cross+crosses[i], content.Min.Y+pos+mains[i])
		} else {
			cr = image.Rect(content.Min.X+pos, content.Min.Y+cross, content.Min.X+pos+mains[i], content.Min.Y+cross+crosses[i])
		}
		child, err := l.place(c, cr)
		if err != nil {
			return nil, err
		}
		b.children = append(b.children, child)
		pos += mains[i] + spacing
	}
	return b, nil
}
