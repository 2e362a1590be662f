package ogcard

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/ogcard/og"
)

// ParseCardQuery reads a card request and style overrides from query
// parameters. Style parameters that are absent stay nil, and numbers that do
// not parse are ignored. When no style parameter is present the returned
// config is nil.
func ParseCardQuery(q url.Values) (og.Request, *og.StyleConfig) {
	req := og.Request{
		Title:         q.Get("title"),
		Excerpt:       q.Get("excerpt"),
		AuthorName:    q.Get("author"),
		SeriesName:    q.Get("series"),
		ChapterNumber: q.Get("chapter"),
		ReadTime:      q.Get("readTime"),
		PublishDate:   q.Get("date"),
		ResourceIcon:  q.Get("icon"),
		ResourceEmoji: q.Get("emoji"),
		ResourceName:  q.Get("resource"),
	}

	var cfg og.StyleConfig
	set := false
	str := func(dst **string, key string) {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			*dst = og.String(v)
			set = true
		}
	}
	num := func(dst **int, key string) {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return
		}
		*dst = og.Int(n)
		set = true
	}
	str(&cfg.BackgroundColor, "bg")
	str(&cfg.BorderColor, "border")
	str(&cfg.TextPrimary, "textPrimary")
	str(&cfg.TextSecondary, "textSecondary")
	str(&cfg.AccentStart, "accentStart")
	str(&cfg.AccentEnd, "accentEnd")
	str(&cfg.ResourceBgColor, "resourceBg")
	num(&cfg.FontWeight, "fontWeight")
	num(&cfg.BorderWidth, "borderWidth")

	if !set {
		return req, nil
	}
	return req, &cfg
}

// canonicalCard is what a rendered card depends on: the defaulted request
// and the resolved style.
type canonicalCard struct {
	Request og.Request `json:"r"`
	Style   og.Style   `json:"s"`
}

// canonicalQuery returns a stable string for req and cfg. Requests that
// render identically on the same day map to the same string.
func canonicalQuery(req og.Request, cfg *og.StyleConfig, now time.Time) string {
	b, err := json.Marshal(canonicalCard{
		Request: req.WithDefaults(now),
		Style:   og.ResolveStyle(cfg),
	})
	if err != nil {
		return ""
	}
	return string(b)
}
