package raster

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/ogcard/og"
)

const fontStack = `Inter, "Segoe UI", Roboto, "Helvetica Neue", Arial, "Apple Color Emoji", "Segoe UI Emoji", "Noto Color Emoji", sans-serif`

// HTML renders root as a standalone page of exactly width by height pixels.
// Every element carries a data-node attribute with its node ID.
func HTML(root *og.Node, width, height int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<!DOCTYPE html><html><head><meta charset="utf-8"><style>*{box-sizing:border-box;margin:0;padding:0}html,body{width:%dpx;height:%dpx;overflow:hidden;background:transparent}body{font-family:%s}</style></head><body>`,
			width, height, fontStack)
		writeNode(&b, root)
		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeNode(b *strings.Builder, n *og.Node) {
	attrs := ""
	if n.ID != "" {
		attrs = ` data-node="` + templ.EscapeString(n.ID) + `"`
	}
	style := templ.EscapeString(nodeCSS(n))
	switch n.Kind {
	case og.KindText:
		fmt.Fprintf(b, `<div%s style="%s">%s</div>`, attrs, style, templ.EscapeString(n.Text))
	case og.KindImage:
		fmt.Fprintf(b, `<img%s src="%s" alt="" style="%s">`, attrs, templ.EscapeString(n.Src), style)
	default:
		fmt.Fprintf(b, `<div%s style="%s">`, attrs, style)
		for _, c := range n.Children {
			writeNode(b, c)
		}
		b.WriteString("</div>")
	}
}

func px(v int) string { return strconv.Itoa(v) + "px" }

// cssValue drops values that could break out of a declaration.
func cssValue(v string) (string, bool) {
	if v == "" || strings.ContainsAny(v, ";{}<>\"\\") {
		return "", false
	}
	return v, true
}

func nodeCSS(n *og.Node) string {
	var decl []string
	add := func(prop, val string) {
		decl = append(decl, prop+":"+val)
	}
	addColor := func(prop, val string) {
		if v, ok := cssValue(val); ok {
			add(prop, v)
		}
	}

	if n.Kind == og.KindBox {
		add("display", "flex")
		dir := "row"
		if n.Direction == og.Column {
			dir = "column"
		}
		add("flex-direction", dir)
		if n.Justify != "" {
			add("justify-content", flexKeyword(string(n.Justify)))
		}
		if n.Align != og.AlignStretch {
			add("align-items", flexKeyword(string(n.Align)))
		}
		if n.Gap > 0 {
			add("gap", px(n.Gap))
		}
	}
	add("flex-shrink", "0")
	if n.Width > 0 {
		add("width", px(n.Width))
	}
	if n.Height > 0 {
		add("height", px(n.Height))
	}
	if n.Grow > 0 {
		add("flex-grow", strconv.Itoa(n.Grow))
		add("min-height", "0")
	}
	if n.Padding != (og.Edges{}) {
		add("padding", fmt.Sprintf("%dpx %dpx %dpx %dpx", n.Padding.Top, n.Padding.Right, n.Padding.Bottom, n.Padding.Left))
	}

	switch {
	case n.Gradient != nil:
		from, ok1 := cssValue(n.Gradient.From)
		to, ok2 := cssValue(n.Gradient.To)
		if ok1 && ok2 {
			if n.Gradient.Kind == og.Radial {
				add("background", fmt.Sprintf("radial-gradient(circle closest-side, %s, %s)", from, to))
			} else {
				add("background", fmt.Sprintf("linear-gradient(%sdeg, %s, %s)", strconv.FormatFloat(n.Gradient.Angle, 'f', -1, 64), from, to))
			}
		}
	case n.Background != "":
		addColor("background-color", n.Background)
	}
	if w := n.Border.Width; w != (og.Edges{}) {
		add("border-style", "solid")
		add("border-width", fmt.Sprintf("%dpx %dpx %dpx %dpx", w.Top, w.Right, w.Bottom, w.Left))
		addColor("border-color", n.Border.Color)
	}
	if n.Radius > 0 {
		add("border-radius", px(n.Radius))
	}

	switch n.Kind {
	case og.KindText:
		add("font-size", px(n.FontSize))
		if n.FontWeight > 0 {
			add("font-weight", strconv.Itoa(n.FontWeight))
		}
		addColor("color", n.Color)
		if n.LineHeight > 0 {
			add("line-height", strconv.FormatFloat(n.LineHeight, 'f', -1, 64))
		}
		add("overflow-wrap", "anywhere")
	case og.KindImage:
		add("object-fit", "cover")
		add("display", "block")
	}
	return strings.Join(decl, ";")
}

func flexKeyword(v string) string {
	switch v {
	case "start":
		return "flex-start"
	case "end":
		return "flex-end"
	}
	return v
}
