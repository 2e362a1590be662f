package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eringen/ogcard/og"
)

// resetFlags returns every flag of cmd and its subcommands to its default so
// one run's flags do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("ogcard %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestVersion(t *testing.T) {
	if got := execute(t, "version"); got != "ogcard dev\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestRenderTree(t *testing.T) {
	out := execute(t, "render", "--title", "From the CLI", "--series", "Go", "--borderWidth", "4", "--format", "tree")

	var tree og.Node
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("decode tree: %v\n%s", err, out)
	}
	if got := tree.Find("title").Text; got != "From the CLI" {
		t.Errorf("title = %q", got)
	}
	if tree.Find("series-header") == nil {
		t.Error("series header missing")
	}
	if got := tree.Find("content").Border.Width; got != og.All(4) {
		t.Errorf("border = %+v, want 4 on every side", got)
	}
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	execute(t, "render", "--title", "First", "--series", "Go", "--borderWidth", "4", "--format", "tree")
	out := execute(t, "render", "--title", "Second", "--format", "tree")

	var tree og.Node
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("decode tree: %v\n%s", err, out)
	}
	if tree.Find("series-header") != nil {
		t.Error("series header carried over from the previous run")
	}
	if got := tree.Find("content").Border.Width; got != og.All(og.DefaultStyle.BorderWidth) {
		t.Errorf("border = %+v, want the default width", got)
	}
}

func TestRenderPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.png")
	execute(t, "render", "--title", "Pixels", "--format", "png", "-o", path)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if cfg.Width != og.CanvasWidth || cfg.Height != og.CanvasHeight {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestUploadToDisk(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OGCARD_UPLOAD_DIR", dir)
	t.Setenv("OGCARD_URL", "https://cards.example.com")

	out := execute(t, "upload", "--title", "My Post!", "--id", "abc123")

	if got, want := strings.TrimSpace(out), "https://cards.example.com/og/files/og-abc123-my-post.png"; got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "og-abc123-my-post.png")); err != nil {
		t.Errorf("file not written: %v", err)
	}
}
