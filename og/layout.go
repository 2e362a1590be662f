package og

import (
	"time"
	"unicode/utf8"
)

// Card geometry, in pixels.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080

	canvasPadY  = 80
	canvasPadX  = 128
	leftWidth   = 842
	rightWidth  = 822
	columnPad   = 64
	sectionGap  = 48
	titleSize   = 58
	titleSmall  = 51
	excerptSize = 26
	metaSize    = 24
	emojiSize   = 192

	// Titles longer than this, after truncation, use the smaller font.
	longTitle = 40
)

// The series badge gradient does not follow the accent colours.
const (
	seriesGradientFrom = "#3b82f6"
	seriesGradientTo   = "#8b5cf6"
)

// Layout fills request defaults relative to now, resolves cfg and builds the
// card tree.
func Layout(req Request, cfg *StyleConfig, now time.Time) *Node {
	return Build(req.WithDefaults(now), ResolveStyle(cfg))
}

// Build assembles the two-column card for req. It does not fill defaults;
// callers that want them use Layout or Request.WithDefaults first.
func Build(req Request, style Style) *Node {
	panel := ResolvePanel(req)
	return &Node{
		ID:         "canvas",
		Kind:       KindBox,
		Width:      CanvasWidth,
		Height:     CanvasHeight,
		Padding:    Symmetric(canvasPadY, canvasPadX),
		Direction:  Row,
		Background: style.BackgroundColor,
		Children: []*Node{
			leftColumn(req, style),
			rightColumn(panel, style),
		},
	}
}

// TitleFontSize is the font size used for an already truncated title.
func TitleFontSize(title string) int {
	if utf8.RuneCountInString(title) > longTitle {
		return titleSmall
	}
	return titleSize
}

func leftColumn(req Request, style Style) *Node {
	var top []*Node
	if req.HasSeries() {
		top = append(top, seriesHeader(req, style))
	}
	top = append(top, mainBlock(req, style))

	return &Node{
		ID:        "content",
		Kind:      KindBox,
		Width:     leftWidth,
		Direction: Column,
		Justify:   JustifySpaceBetween,
		Padding:   All(columnPad),
		Border:    Border{Width: All(style.BorderWidth), Color: style.BorderColor},
		Children: []*Node{
			{ID: "content-top", Kind: KindBox, Direction: Column, Gap: sectionGap, Children: top},
			footer(req, style),
		},
	}
}

func seriesHeader(req Request, style Style) *Node {
	badge := &Node{
		ID:        "series-badge",
		Kind:      KindBox,
		Width:     56,
		Height:    56,
		Radius:    28,
		Direction: Row,
		Justify:   JustifyCenter,
		Align:     AlignCenter,
		Gradient:  &Gradient{Kind: Linear, Angle: 135, From: seriesGradientFrom, To: seriesGradientTo},
		Children:  []*Node{text("series-badge-glyph", "S", 26, 700, "#ffffff", 1)},
	}
	return &Node{
		ID:        "series-header",
		Kind:      KindBox,
		Direction: Row,
		Align:     AlignCenter,
		Gap:       20,
		Children: []*Node{
			badge,
			text("series-name", req.SeriesName+" /", 26, 400, style.TextSecondary, 1.2),
			text("chapter-number", req.ChapterNumber, 26, 700, style.TextPrimary, 1.2),
		},
	}
}

func mainBlock(req Request, style Style) *Node {
	title := Truncate(req.Title, TitleLimit)
	children := []*Node{
		text("title", title, TitleFontSize(title), style.FontWeight, style.TextPrimary, 1.2),
	}
	if req.Excerpt != "" {
		children = append(children,
			text("excerpt", Truncate(req.Excerpt, ExcerptLimit), excerptSize, 400, style.TextSecondary, 1.4))
	}
	return &Node{ID: "main", Kind: KindBox, Direction: Column, Gap: 24, Children: children}
}

func footer(req Request, style Style) *Node {
	author := &Node{
		ID:        "footer-author",
		Kind:      KindBox,
		Direction: Row,
		Align:     AlignCenter,
		Gap:       16,
		Children: []*Node{
			{
				ID:       "author-avatar",
				Kind:     KindBox,
				Width:    40,
				Height:   40,
				Radius:   20,
				Gradient: &Gradient{Kind: Linear, Angle: 135, From: style.AccentStart, To: style.AccentEnd},
			},
			text("author-name", req.AuthorName, metaSize, style.FontWeight, style.TextPrimary, 1.2),
		},
	}
	return &Node{
		ID:        "footer",
		Kind:      KindBox,
		Direction: Row,
		Align:     AlignCenter,
		Gap:       24,
		Children: []*Node{
			author,
			rule("footer-rule-1", style),
			text("read-time", req.ReadTime, metaSize, 400, style.TextSecondary, 1.2),
			rule("footer-rule-2", style),
			text("publish-date", req.PublishDate, metaSize, 400, style.TextSecondary, 1.2),
		},
	}
}

func rightColumn(p Panel, style Style) *Node {
	n := &Node{
		ID:         "panel",
		Kind:       KindBox,
		Width:      rightWidth,
		Direction:  Column,
		Justify:    JustifyCenter,
		Align:      AlignCenter,
		Background: style.ResourceBgColor,
		Border: Border{
			Width: Edges{Top: style.BorderWidth, Right: style.BorderWidth, Bottom: style.BorderWidth},
			Color: style.BorderColor,
		},
	}
	switch p := p.(type) {
	case PanelImage:
		n.Align = AlignStretch
		n.Justify = JustifyStart
		n.Children = []*Node{{ID: "panel-image", Kind: KindImage, Src: p.URL, Grow: 1}}
	case PanelEmoji:
		n.Gap = 32
		n.Children = []*Node{text("panel-emoji", p.Glyph, emojiSize, 400, style.TextPrimary, 1)}
		if p.Name != "" {
			n.Children = append(n.Children, text("panel-emoji-name", p.Name, 40, style.FontWeight, style.TextPrimary, 1.2))
		}
	default:
		n.Children = []*Node{{
			ID:       "panel-orb",
			Kind:     KindBox,
			Width:    440,
			Height:   440,
			Radius:   220,
			Gradient: &Gradient{Kind: Radial, From: style.AccentStart, To: style.AccentEnd},
		}}
	}
	return n
}

func rule(id string, style Style) *Node {
	return &Node{ID: id, Kind: KindBox, Width: 2, Height: 28, Background: style.BorderColor}
}

func text(id, s string, size, weight int, color string, lineHeight float64) *Node {
	return &Node{
		ID:         id,
		Kind:       KindText,
		Text:       s,
		FontSize:   size,
		FontWeight: weight,
		Color:      color,
		LineHeight: lineHeight,
	}
}
