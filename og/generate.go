// Package og builds Open Graph preview cards: it resolves card styles, lays
// out the two-column card as a plain tree and hands the tree to a Rasterizer.
//
// The package keeps no state between calls. Rasterizer implementations live
// in package raster; uploading rendered cards lives in package upload.
package og

import (
	"context"
	"fmt"
	"time"
)

// Rasterizer turns a card tree into PNG bytes of exactly width by height pixels.
type Rasterizer interface {
	Rasterize(ctx context.Context, root *Node, width, height int) ([]byte, error)
}

// Generate lays out req with cfg and rasterizes it at CanvasWidth by
// CanvasHeight. Rasterizer errors are returned to the caller.
func Generate(ctx context.Context, r Rasterizer, req Request, cfg *StyleConfig) ([]byte, error) {
	tree := Layout(req, cfg, time.Now())
	png, err := r.Rasterize(ctx, tree, CanvasWidth, CanvasHeight)
	if err != nil {
		return nil, fmt.Errorf("rasterize card: %w", err)
	}
	return png, nil
}
