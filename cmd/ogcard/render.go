package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/ogcard"
	"github.com/eringen/ogcard/og"
	"github.com/eringen/ogcard/raster"
)

var (
	renderOut    string
	renderFormat string
	renderer     string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one card to a file",
	Long: `Renders a card from flags. --format selects png (default), tree (the
layout tree as JSON) or html (the HTML page the chrome backend screenshots).

Example:
  ogcard render --title "Hello, world" --emoji "⚛️" --resource React -o card.png`,
	RunE: runRender,
}

func init() {
	addCardFlags(renderCmd)
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "-", "output file, - for stdout")
	renderCmd.Flags().StringVar(&renderFormat, "format", "png", "png, tree or html")
	renderCmd.Flags().StringVar(&renderer, "renderer", "", "software or chrome (overrides config)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := ogcard.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if renderer != "" {
		cfg.Renderer = renderer
	}
	req, style := cardFromFlags(cmd)
	if cfg.DefaultAuthor != "" && req.AuthorName == "" {
		req.AuthorName = cfg.DefaultAuthor
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), renderOut)
	if err != nil {
		return err
	}
	defer closeOut()

	switch renderFormat {
	case "tree":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(og.Layout(req, style, time.Now()))
	case "html":
		tree := og.Layout(req, style, time.Now())
		return raster.HTML(tree, og.CanvasWidth, og.CanvasHeight).Render(cmd.Context(), out)
	case "png":
	default:
		return fmt.Errorf("unknown format %q", renderFormat)
	}

	r, release, err := ogcard.NewRasterizer(cfg)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	png, err := og.Generate(cmd.Context(), r, req, style)
	if err != nil {
		return err
	}
	logger.Debug("card rendered", zap.Int("bytes", len(png)), zap.Duration("took", time.Since(start)))
	_, err = out.Write(png)
	return err
}

func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "-" || path == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
