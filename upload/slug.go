package upload

import (
	"strconv"
	"strings"
	"time"
)

// MaxSlugLength caps the slug part of generated filenames.
const MaxSlugLength = 50

// Slugify converts a title to a lowercase, hyphenated, filename-safe slug of
// at most MaxSlugLength characters.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > MaxSlugLength {
		out = out[:MaxSlugLength]
	}
	return out
}

// Filename returns the stored name of a card image: og-{id}-{slug}.png.
// An empty id is replaced by the epoch milliseconds of now.
func Filename(id, title string, now time.Time) string {
	if id == "" {
		id = strconv.FormatInt(now.UnixMilli(), 10)
	}
	return "og-" + id + "-" + Slugify(title) + ".png"
}
