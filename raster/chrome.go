package raster

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/eringen/ogcard/og"
)

const imagesLoaded = `Array.from(document.images).every(i => i.complete)`

// Chrome is an og.Rasterizer that loads the HTML rendering of a tree into a
// headless Chrome tab and screenshots the viewport. It renders emoji and
// SVG icons that the Software rasterizer cannot.
type Chrome struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	timeout    time.Duration
}

// NewChrome launches a headless browser shared by all Rasterize calls. Each
// call opens its own tab and gives up after timeout when timeout > 0.
func NewChrome(timeout time.Duration, opts ...chromedp.ExecAllocatorOption) (*Chrome, error) {
	all := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	all = append(all, opts...)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), all...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return &Chrome{browserCtx: browserCtx, cancel: cancel, timeout: timeout}, nil
}

// Close shuts the browser down.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

// Rasterize implements og.Rasterizer.
func (c *Chrome) Rasterize(ctx context.Context, root *og.Node, width, height int) ([]byte, error) {
	var doc bytes.Buffer
	if err := HTML(root, width, height).Render(ctx, &doc); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()
	if c.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, c.timeout)
		defer cancelTimeout()
	}
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var loaded bool
	var shot []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc.String()).Do(ctx)
		}),
		chromedp.WaitReady("body > *", chromedp.ByQuery),
		chromedp.Poll(imagesLoaded, &loaded, chromedp.WithPollingTimeout(5*time.Second)),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome screenshot: %w", err)
	}
	return shot, nil
}
