package og

// Style is a fully resolved card style. Every field is set.
type Style struct {
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	TextPrimary     string `json:"textPrimary"`
	TextSecondary   string `json:"textSecondary"`
	AccentStart     string `json:"accentStart"`
	AccentEnd       string `json:"accentEnd"`
	ResourceBgColor string `json:"resourceBgColor"`
	FontWeight      int    `json:"fontWeight"`
	BorderWidth     int    `json:"borderWidth"`
}

// DefaultStyle is the fallback for every field a StyleConfig leaves unset.
var DefaultStyle = Style{
	BackgroundColor: "#000000",
	BorderColor:     "#262626",
	TextPrimary:     "#ffffff",
	TextSecondary:   "#a3a3a3",
	AccentStart:     "#3b82f6",
	AccentEnd:       "#8b5cf6",
	ResourceBgColor: "#000000",
	FontWeight:      500,
	BorderWidth:     2,
}

// StyleConfig is a partial style override. A nil field means "use the default".
//
// Values are not validated: FontWeight is expected in 400-700 and BorderWidth in
// 1-5, but anything supplied is passed through to the rasterizer as is.
type StyleConfig struct {
	BackgroundColor *string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BorderColor     *string `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	TextPrimary     *string `json:"textPrimary,omitempty" yaml:"textPrimary,omitempty"`
	TextSecondary   *string `json:"textSecondary,omitempty" yaml:"textSecondary,omitempty"`
	AccentStart     *string `json:"accentStart,omitempty" yaml:"accentStart,omitempty"`
	AccentEnd       *string `json:"accentEnd,omitempty" yaml:"accentEnd,omitempty"`
	ResourceBgColor *string `json:"resourceBgColor,omitempty" yaml:"resourceBgColor,omitempty"`
	FontWeight      *int    `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	BorderWidth     *int    `json:"borderWidth,omitempty" yaml:"borderWidth,omitempty"`
}

// ResolveStyle overlays cfg on DefaultStyle. A nil cfg yields DefaultStyle.
func ResolveStyle(cfg *StyleConfig) Style {
	s := DefaultStyle
	if cfg == nil {
		return s
	}
	pickString(&s.BackgroundColor, cfg.BackgroundColor)
	pickString(&s.BorderColor, cfg.BorderColor)
	pickString(&s.TextPrimary, cfg.TextPrimary)
	pickString(&s.TextSecondary, cfg.TextSecondary)
	pickString(&s.AccentStart, cfg.AccentStart)
	pickString(&s.AccentEnd, cfg.AccentEnd)
	pickString(&s.ResourceBgColor, cfg.ResourceBgColor)
	if cfg.FontWeight != nil {
		s.FontWeight = *cfg.FontWeight
	}
	if cfg.BorderWidth != nil {
		s.BorderWidth = *cfg.BorderWidth
	}
	return s
}

func pickString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// String returns a pointer to v, for building a StyleConfig literal.
func String(v string) *string { return &v }

// Int returns a pointer to v, for building a StyleConfig literal.
func Int(v int) *int { return &v }
