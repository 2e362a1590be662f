package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
)

// ErrImageFetch is returned when a resource icon cannot be loaded or decoded.
var ErrImageFetch = errors.New("fetch image")

const maxImageBytes = 10 << 20 // 10MB

// Fetcher loads the images referenced by image nodes.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (image.Image, error)
}

// HTTPFetcher loads http(s) URLs and base64 data URLs. PNG, JPEG, GIF and
// WebP are decoded; SVG is not.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher whose requests give up after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, src string) (image.Image, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURL(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrImageFetch, src, resp.Status)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrImageFetch, src, err)
	}
	return img, nil
}

func decodeDataURL(src string) (image.Image, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 || !strings.HasSuffix(src[:comma], ";base64") {
		return nil, fmt.Errorf("%w: unsupported data url", ErrImageFetch)
	}
	raw, err := base64.StdEncoding.DecodeString(src[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: data url: %v", ErrImageFetch, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode data url: %v", ErrImageFetch, err)
	}
	return img, nil
}
