package ogcard

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/ogcard/metrics"
	"github.com/eringen/ogcard/og"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// instrumentedRasterizer bounds each render by timeout and records its
// outcome and duration.
type instrumentedRasterizer struct {
	next    og.Rasterizer
	backend string
	timeout time.Duration
	metrics *metrics.Metrics
}

func (r *instrumentedRasterizer) Rasterize(ctx context.Context, root *og.Node, width, height int) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	start := time.Now()
	png, err := r.next.Rasterize(ctx, root, width, height)
	r.metrics.ObserveRender(r.backend, err == nil, time.Since(start))
	return png, err
}
