package og

import (
	"time"
	"unicode/utf8"
)

const (
	// TitleLimit is the longest title shown without truncation.
	TitleLimit = 60
	// ExcerptLimit is the longest excerpt shown without truncation.
	ExcerptLimit = 100

	// DefaultReadTime is shown when a request carries no read time.
	DefaultReadTime = "5 min read"
	// DateLayout formats the default publish date, e.g. "March 4, 2025".
	DateLayout = "January 2, 2006"

	ellipsis = "..."
)

// DefaultAuthorName is the handle shown when a request names no author.
var DefaultAuthorName = "@author"

// Request is the content shown on a card. Only Title is required.
type Request struct {
	Title         string `json:"title" yaml:"title" form:"title"`
	Excerpt       string `json:"excerpt,omitempty" yaml:"excerpt,omitempty" form:"excerpt"`
	AuthorName    string `json:"authorName,omitempty" yaml:"authorName,omitempty" form:"author"`
	SeriesName    string `json:"seriesName,omitempty" yaml:"seriesName,omitempty" form:"series"`
	ChapterNumber string `json:"chapterNumber,omitempty" yaml:"chapterNumber,omitempty" form:"chapter"`
	ReadTime      string `json:"readTime,omitempty" yaml:"readTime,omitempty" form:"readTime"`
	PublishDate   string `json:"publishDate,omitempty" yaml:"publishDate,omitempty" form:"date"`
	ResourceIcon  string `json:"resourceIcon,omitempty" yaml:"resourceIcon,omitempty" form:"icon"`
	ResourceEmoji string `json:"resourceEmoji,omitempty" yaml:"resourceEmoji,omitempty" form:"emoji"`
	ResourceName  string `json:"resourceName,omitempty" yaml:"resourceName,omitempty" form:"resource"`
}

// WithDefaults returns a copy of r with the author, read time and publish date
// filled in when empty. now supplies the default date.
func (r Request) WithDefaults(now time.Time) Request {
	if r.AuthorName == "" {
		r.AuthorName = DefaultAuthorName
	}
	if r.ReadTime == "" {
		r.ReadTime = DefaultReadTime
	}
	if r.PublishDate == "" {
		r.PublishDate = now.Format(DateLayout)
	}
	return r
}

// HasSeries reports whether the series header is shown.
func (r Request) HasSeries() bool {
	return r.SeriesName != "" || r.ChapterNumber != ""
}

// Truncate cuts s to limit characters. Longer strings keep their first
// limit-3 characters followed by "...". The cut ignores word boundaries.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return string(runes[:keep]) + ellipsis
}
