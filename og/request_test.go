package og

import (
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	long65 := strings.Repeat("abcde", 13)
	long120 := strings.Repeat("x", 120)
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"empty", "", TitleLimit, ""},
		{"short", "Short Title", TitleLimit, "Short Title"},
		{"exactly at limit", strings.Repeat("a", 60), TitleLimit, strings.Repeat("a", 60)},
		{"one over", strings.Repeat("a", 61), TitleLimit, strings.Repeat("a", 57) + "..."},
		{"title 65", long65, TitleLimit, long65[:57] + "..."},
		{"excerpt at limit", strings.Repeat("y", 100), ExcerptLimit, strings.Repeat("y", 100)},
		{"excerpt over", long120, ExcerptLimit, long120[:97] + "..."},
		{"splits mid-word", "internationalization", 10, "interna..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}

func TestTruncateCountsCharacters(t *testing.T) {
	s := strings.Repeat("é", 61)
	got := Truncate(s, TitleLimit)
	want := strings.Repeat("é", 57) + "..."
	if got != want {
		t.Errorf("Truncate multibyte = %q, want %q", got, want)
	}
}

func TestWithDefaults(t *testing.T) {
	now := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)

	got := Request{Title: "T"}.WithDefaults(now)
	if got.AuthorName != DefaultAuthorName {
		t.Errorf("AuthorName = %q, want %q", got.AuthorName, DefaultAuthorName)
	}
	if got.ReadTime != "5 min read" {
		t.Errorf("ReadTime = %q, want %q", got.ReadTime, "5 min read")
	}
	if got.PublishDate != "March 4, 2025" {
		t.Errorf("PublishDate = %q, want %q", got.PublishDate, "March 4, 2025")
	}

	set := Request{Title: "T", AuthorName: "@me", ReadTime: "9 min", PublishDate: "Someday"}.WithDefaults(now)
	if set.AuthorName != "@me" || set.ReadTime != "9 min" || set.PublishDate != "Someday" {
		t.Errorf("WithDefaults overwrote supplied fields: %+v", set)
	}
}
