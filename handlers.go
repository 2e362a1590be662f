package ogcard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/ogcard/og"
	"github.com/eringen/ogcard/raster"
)

var errTitleRequired = echo.NewHTTPError(http.StatusBadRequest, "title is required")

// cardRequest parses the query, rejects cards without a title and fills in
// the configured defaults.
func (a *App) cardRequest(c echo.Context) (og.Request, *og.StyleConfig, error) {
	req, cfg := ParseCardQuery(c.QueryParams())
	if strings.TrimSpace(req.Title) == "" {
		return og.Request{}, nil, errTitleRequired
	}
	return a.withDefaults(req), cfg, nil
}

func (a *App) withDefaults(req og.Request) og.Request {
	if req.AuthorName == "" {
		req.AuthorName = a.Config.DefaultAuthor
	}
	return req.WithDefaults(a.now())
}

func (a *App) handleOG(c echo.Context) error {
	req, cfg, err := a.cardRequest(c)
	if err != nil {
		return err
	}
	png, err := a.renderCard(c.Request().Context(), req, cfg)
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", ogCacheControl)
	return c.Blob(http.StatusOK, "image/png", png)
}

// renderCard serves a card from the render cache, rendering it at most once
// per key at a time.
func (a *App) renderCard(ctx context.Context, req og.Request, cfg *og.StyleConfig) ([]byte, error) {
	key := cacheKey(canonicalQuery(req, cfg, a.now()))

	png, ok, err := a.Cache.Get(ctx, key)
	switch {
	case err != nil:
		a.Metrics.ObserveCache("error")
		a.Logger.Warn("render cache get failed", zap.Error(err))
	case ok:
		a.Metrics.ObserveCache("hit")
		return png, nil
	default:
		a.Metrics.ObserveCache("miss")
	}

	v, err, _ := a.renders.Do(key, func() (any, error) {
		// shared by every waiting caller, so one client going away must not
		// cancel the render for the others
		rctx := context.WithoutCancel(ctx)
		png, err := og.Generate(rctx, a.Rasterizer, req, cfg)
		if err != nil {
			return nil, err
		}
		if err := a.Cache.Set(rctx, key, png); err != nil {
			a.Logger.Warn("render cache set failed", zap.Error(err))
		}
		return png, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (a *App) handlePreview(c echo.Context) error {
	req, cfg, err := a.cardRequest(c)
	if err != nil {
		return err
	}
	tree := og.Layout(req, cfg, a.now())
	return Render(c, raster.HTML(tree, og.CanvasWidth, og.CanvasHeight))
}

func (a *App) handleTree(c echo.Context) error {
	req, cfg, err := a.cardRequest(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, og.Layout(req, cfg, a.now()))
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		msg = fmt.Sprint(he.Message)
	case errors.Is(err, ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, raster.ErrInvalidColor):
		code, msg = http.StatusBadRequest, "invalid color"
	case errors.Is(err, raster.ErrImageFetch):
		code, msg = http.StatusBadGateway, "resource icon unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = http.StatusGatewayTimeout, "render timed out"
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
		)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"error": msg})
	}
	if err != nil {
		a.Logger.Error("write error response", zap.Error(err))
	}
}
