package og

// Panel is the content of the right-hand column. It is exactly one of
// PanelImage, PanelEmoji or PanelDecorative.
type Panel interface {
	panel()
}

// PanelImage fills the column with the image at URL.
type PanelImage struct {
	URL string
}

// PanelEmoji shows a large glyph with an optional label beneath it.
type PanelEmoji struct {
	Glyph string
	Name  string
}

// PanelDecorative is the accent-coloured orb used when a request names no
// resource art.
type PanelDecorative struct{}

func (PanelImage) panel()      {}
func (PanelEmoji) panel()      {}
func (PanelDecorative) panel() {}

// ResolvePanel picks the right-column content. An icon URL wins over an
// emoji; with neither the panel is decorative.
func ResolvePanel(r Request) Panel {
	switch {
	case r.ResourceIcon != "":
		return PanelImage{URL: r.ResourceIcon}
	case r.ResourceEmoji != "":
		return PanelEmoji{Glyph: r.ResourceEmoji, Name: r.ResourceName}
	default:
		return PanelDecorative{}
	}
}
