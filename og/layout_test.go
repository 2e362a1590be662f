package og

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

func TestResolvePanelPriority(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Panel
	}{
		{"all three", Request{ResourceIcon: "https://x/icon.png", ResourceEmoji: "⚛️", ResourceName: "React"}, PanelImage{URL: "https://x/icon.png"}},
		{"icon only", Request{ResourceIcon: "https://x/icon.png"}, PanelImage{URL: "https://x/icon.png"}},
		{"emoji and name", Request{ResourceEmoji: "⚛️", ResourceName: "React"}, PanelEmoji{Glyph: "⚛️", Name: "React"}},
		{"emoji only", Request{ResourceEmoji: "🐹"}, PanelEmoji{Glyph: "🐹"}},
		{"name only", Request{ResourceName: "React"}, PanelDecorative{}},
		{"nothing", Request{}, PanelDecorative{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ResolvePanel(tt.req)); diff != "" {
				t.Errorf("ResolvePanel mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildCanvas(t *testing.T) {
	root := Layout(Request{Title: "Hello"}, nil, fixedNow)
	if root.Width != 1920 || root.Height != 1080 {
		t.Fatalf("canvas = %dx%d, want 1920x1080", root.Width, root.Height)
	}
	if root.Padding != Symmetric(80, 128) {
		t.Errorf("canvas padding = %+v, want 80/128", root.Padding)
	}
	left, right := root.Find("content"), root.Find("panel")
	if left == nil || right == nil {
		t.Fatal("missing left or right column")
	}
	if left.Width != 842 {
		t.Errorf("left width = %d, want 842", left.Width)
	}
	if right.Width != 822 {
		t.Errorf("right width = %d, want 822", right.Width)
	}
	if left.Width+right.Width != root.Width-root.Padding.Horizontal() {
		t.Errorf("columns do not fill the canvas")
	}
}

func TestBuildBorders(t *testing.T) {
	root := Layout(Request{Title: "Hello"}, &StyleConfig{BorderWidth: Int(10), BorderColor: String("#123456")}, fixedNow)
	left, right := root.Find("content"), root.Find("panel")
	if left.Border != (Border{Width: All(10), Color: "#123456"}) {
		t.Errorf("left border = %+v", left.Border)
	}
	if right.Border.Width.Left != 0 {
		t.Errorf("right column has a left border of %d", right.Border.Width.Left)
	}
	if right.Border.Width.Top != 10 || right.Border.Width.Right != 10 || right.Border.Width.Bottom != 10 {
		t.Errorf("right border = %+v, want 10 on top/right/bottom", right.Border.Width)
	}
}

func TestSeriesHeaderPresence(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"none", Request{Title: "t"}, false},
		{"series only", Request{Title: "t", SeriesName: "Go Basics"}, true},
		{"chapter only", Request{Title: "t", ChapterNumber: "Chapter 3"}, true},
		{"both", Request{Title: "t", SeriesName: "Go Basics", ChapterNumber: "Chapter 3"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Layout(tt.req, nil, fixedNow).Find("series-header") != nil
			if got != tt.want {
				t.Errorf("series header present = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeriesHeaderContent(t *testing.T) {
	root := Layout(Request{Title: "t", SeriesName: "Go Basics", ChapterNumber: "Chapter 3"}, &StyleConfig{AccentStart: String("#ff0000")}, fixedNow)
	badge := root.Find("series-badge")
	want := &Gradient{Kind: Linear, Angle: 135, From: "#3b82f6", To: "#8b5cf6"}
	if diff := cmp.Diff(want, badge.Gradient); diff != "" {
		t.Errorf("badge gradient should ignore accents (-want +got):\n%s", diff)
	}
	if got := root.Find("series-badge-glyph").Text; got != "S" {
		t.Errorf("badge glyph = %q, want %q", got, "S")
	}
	if got := root.Find("series-name").Text; got != "Go Basics /" {
		t.Errorf("series text = %q, want %q", got, "Go Basics /")
	}
	chapter := root.Find("chapter-number")
	if chapter.Text != "Chapter 3" || chapter.FontWeight != 700 {
		t.Errorf("chapter = %q weight %d, want bold %q", chapter.Text, chapter.FontWeight, "Chapter 3")
	}
}

func TestShortTitleWithEmoji(t *testing.T) {
	root := Layout(Request{Title: "Short Title", ResourceEmoji: "⚛️", ResourceName: "React"}, nil, fixedNow)

	if root.Find("series-header") != nil {
		t.Error("series header should be omitted")
	}
	title := root.Find("title")
	if title.Text != "Short Title" || title.FontSize != 58 {
		t.Errorf("title = %q at %dpx, want %q at 58px", title.Text, title.FontSize, "Short Title")
	}
	emoji := root.Find("panel-emoji")
	if emoji == nil || emoji.Text != "⚛️" || emoji.FontSize != 192 {
		t.Fatalf("emoji node = %+v", emoji)
	}
	if name := root.Find("panel-emoji-name"); name == nil || name.Text != "React" {
		t.Errorf("emoji label = %+v, want React", name)
	}
	if root.Find("panel-orb") != nil || root.Find("panel-image") != nil {
		t.Error("only the emoji variant should be present")
	}
}

func TestLongTitle(t *testing.T) {
	title := strings.Repeat("Long words ", 6)[:65]
	root := Layout(Request{Title: title}, nil, fixedNow)
	got := root.Find("title")
	if got.Text != title[:57]+"..." {
		t.Errorf("title = %q, want %q", got.Text, title[:57]+"...")
	}
	if got.FontSize != 51 {
		t.Errorf("title font size = %d, want 51", got.FontSize)
	}
}

func TestTitleFontSize(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"", 58},
		{strings.Repeat("a", 40), 58},
		{strings.Repeat("a", 41), 51},
		{strings.Repeat("a", 57) + "...", 51},
	}
	for _, tt := range tests {
		if got := TitleFontSize(tt.title); got != tt.want {
			t.Errorf("TitleFontSize(%d chars) = %d, want %d", len(tt.title), got, tt.want)
		}
	}
}

func TestExcerpt(t *testing.T) {
	if Layout(Request{Title: "t"}, nil, fixedNow).Find("excerpt") != nil {
		t.Error("excerpt node present without an excerpt")
	}
	long := strings.Repeat("e", 130)
	ex := Layout(Request{Title: "t", Excerpt: long}, nil, fixedNow).Find("excerpt")
	if ex == nil {
		t.Fatal("excerpt node missing")
	}
	if ex.Text != long[:97]+"..." || ex.FontSize != 26 {
		t.Errorf("excerpt = %q at %dpx", ex.Text, ex.FontSize)
	}
}

func TestFooter(t *testing.T) {
	root := Layout(Request{Title: "t"}, &StyleConfig{AccentStart: String("#010203"), AccentEnd: String("#040506")}, fixedNow)
	if got := root.Find("author-name").Text; got != DefaultAuthorName {
		t.Errorf("author = %q, want %q", got, DefaultAuthorName)
	}
	if got := root.Find("read-time").Text; got != "5 min read" {
		t.Errorf("read time = %q", got)
	}
	if got := root.Find("publish-date").Text; got != "January 15, 2025" {
		t.Errorf("date = %q, want %q", got, "January 15, 2025")
	}
	avatar := root.Find("author-avatar").Gradient
	if avatar.From != "#010203" || avatar.To != "#040506" {
		t.Errorf("author avatar gradient = %+v, want resolved accents", avatar)
	}
	footer := root.Find("footer")
	ids := make([]string, 0, len(footer.Children))
	for _, c := range footer.Children {
		ids = append(ids, c.ID)
	}
	want := []string{"footer-author", "footer-rule-1", "read-time", "footer-rule-2", "publish-date"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("footer order mismatch (-want +got):\n%s", diff)
	}
}

func TestPanelVariants(t *testing.T) {
	img := Layout(Request{Title: "t", ResourceIcon: "https://cdn/icon.png", ResourceEmoji: "⚛️"}, nil, fixedNow)
	n := img.Find("panel-image")
	if n == nil || n.Kind != KindImage || n.Src != "https://cdn/icon.png" || n.Grow != 1 {
		t.Fatalf("image panel = %+v", n)
	}
	if img.Find("panel").Align != AlignStretch {
		t.Error("image panel should stretch across the column")
	}
	if img.Find("panel-emoji") != nil {
		t.Error("emoji shown despite icon")
	}

	orb := Layout(Request{Title: "t"}, &StyleConfig{AccentStart: String("#aa0000"), AccentEnd: String("#00aa00"), ResourceBgColor: String("#101010")}, fixedNow)
	o := orb.Find("panel-orb")
	if o == nil {
		t.Fatal("decorative orb missing")
	}
	if o.Gradient.Kind != Radial || o.Gradient.From != "#aa0000" || o.Gradient.To != "#00aa00" {
		t.Errorf("orb gradient = %+v", o.Gradient)
	}
	if bg := orb.Find("panel").Background; bg != "#101010" {
		t.Errorf("panel background = %q, want %q", bg, "#101010")
	}
	var texts int
	orb.Find("panel").Walk(func(n *Node) {
		if n.Kind == KindText {
			texts++
		}
	})
	if texts != 0 {
		t.Errorf("decorative panel has %d text nodes, want 0", texts)
	}
}

func TestTreeIsSerializable(t *testing.T) {
	root := Layout(Request{Title: "JSON", SeriesName: "S", ResourceEmoji: "🐹"}, nil, fixedNow)
	b, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Node
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(root, &back); diff != "" {
		t.Errorf("tree changed across JSON (-want +got):\n%s", diff)
	}
}

type recordingRasterizer struct {
	root          *Node
	width, height int
	err           error
}

func (r *recordingRasterizer) Rasterize(_ context.Context, root *Node, width, height int) ([]byte, error) {
	r.root, r.width, r.height = root, width, height
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png"), nil
}

func TestGenerate(t *testing.T) {
	r := &recordingRasterizer{}
	got, err := Generate(context.Background(), r, Request{Title: "Hi"}, &StyleConfig{BorderWidth: Int(10)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(got) != "png" {
		t.Errorf("Generate returned %q, want rasterizer output", got)
	}
	if r.width != 1920 || r.height != 1080 {
		t.Errorf("rasterized at %dx%d, want 1920x1080", r.width, r.height)
	}
	if r.root.Find("content").Border.Width.Top != 10 {
		t.Error("style override did not reach the tree")
	}
}

func TestGenerateRasterizerError(t *testing.T) {
	boom := errors.New("backend down")
	_, err := Generate(context.Background(), &recordingRasterizer{err: boom}, Request{Title: "Hi"}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Generate error = %v, want wrapped %v", err, boom)
	}
}
