package folio

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/media"
)

// handleThumb serves /thumbs/:width/<image path> as a resized JPEG. Only
// images under the discovered roots and widths from the allow-list are served.
// Sources that cannot be decoded redirect to the original file.
func (a *App) handleThumb(c echo.Context) error {
	width, err := strconv.Atoi(c.Param("width"))
	if err != nil || !a.thumbs.Allowed(width) {
		a.metrics.thumbnails.WithLabelValues("bad_width").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "width not allowed")
	}
	rel := c.Param("*")
	if u, err := url.PathUnescape(rel); err == nil {
		rel = u
	}
	if !a.isImagePath("/"+rel) || !a.discoverer.IsImage(rel) {
		return echo.ErrNotFound
	}

	thumb, err := a.thumbs.Thumbnail(rel, width)
	switch {
	case errors.Is(err, media.ErrBadPath), errors.Is(err, os.ErrNotExist):
		return echo.ErrNotFound
	case errors.Is(err, media.ErrUndecodable):
		a.metrics.thumbnails.WithLabelValues("original").Inc()
		a.Log.Debug("thumbnail fallback to original", zap.String("path", rel), zap.Error(err))
		return c.Redirect(http.StatusFound, originalURL(rel))
	case err != nil:
		a.metrics.thumbnails.WithLabelValues("error").Inc()
		a.Log.Warn("thumbnail failed", zap.String("path", rel), zap.Int("width", width), zap.Error(err))
		return err
	}

	c.Response().Header().Set("ETag", thumb.ETag)
	if c.Request().Header.Get("If-None-Match") == thumb.ETag {
		a.metrics.thumbnails.WithLabelValues("not_modified").Inc()
		return c.NoContent(http.StatusNotModified)
	}
	a.metrics.thumbnails.WithLabelValues("served").Inc()
	return c.File(thumb.Path)
}

// originalURL re-encodes a slash-separated file path as a site URL.
func originalURL(rel string) string {
	segs := strings.Split(strings.TrimPrefix(rel, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segs, "/")
}
