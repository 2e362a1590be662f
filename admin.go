package ogcard

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/ogcard/upload"
)

func (a *App) handleAdmin(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": IsAdmin(c),
		"csrf":          CsrfToken(c),
	})
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many login attempts, try again later"})
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		a.Logger.Warn("admin login failed", zap.String("remote_ip", ip))
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid password"})
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"authenticated": true})
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"authenticated": false})
}

func (a *App) handleImageList(c echo.Context) error {
	images, err := a.Store.ListImages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, images)
}

func (a *App) handleImageUpload(c echo.Context) error {
	var in UploadRequest
	if err := c.Bind(&in); err != nil {
		return err
	}
	if in.Styles == nil && !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		form, err := c.FormParams()
		if err != nil {
			return err
		}
		_, in.Styles = ParseCardQuery(form)
	}
	if strings.TrimSpace(in.Title) == "" {
		return errTitleRequired
	}

	ctx := c.Request().Context()
	rec, ok := a.Uploader.Upload(ctx, a.withDefaults(in.Request), in.Styles, in.ID)
	if !ok {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "upload failed"})
	}
	img, err := a.Store.SaveImage(ctx, OGImage{
		ContentID: in.ID,
		Filename:  rec.Filename,
		URL:       rec.URL,
		Key:       rec.Key,
		Title:     in.Title,
		Size:      rec.Size,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"id":       img.ID,
		"url":      img.URL,
		"filename": img.Filename,
	})
}

func (a *App) handleImageDelete(c echo.Context) error {
	ctx := c.Request().Context()
	img, err := a.Store.GetImage(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if d, ok := a.Storage.(upload.Deleter); ok && img.Key != "" {
		if err := d.DeleteFiles(ctx, img.Key); err != nil {
			a.Logger.Warn("delete stored card failed", zap.String("key", img.Key), zap.Error(err))
		}
	}
	if err := a.Store.DeleteImage(ctx, img.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
