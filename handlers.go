package folio

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

func (a *App) gridThumbWidth() int {
	if a.thumbs == nil || !a.thumbs.Allowed(a.Config.GridThumbWidth) {
		return 0
	}
	return a.Config.GridThumbWidth
}

// page assembles the layout data shared by every page. Navigation lookups
// that fail leave their section empty.
func (a *App) page(c echo.Context, meta views.PageMeta) views.Page {
	ctx := c.Request().Context()
	p := views.Page{
		Site:       a.site(),
		Meta:       meta,
		Nav:        views.Nav{SiteTitle: a.Config.Name, Active: c.Request().URL.Path},
		ThumbWidth: a.gridThumbWidth(),
	}
	if home, err := a.Content.Home(ctx); err == nil && home.SiteTitle != "" {
		p.Nav.SiteTitle = home.SiteTitle
	}
	if series, err := a.Content.SeriesList(ctx); err == nil {
		p.Nav.Series = series
	}
	if slugs, err := a.Content.InfoPageSlugs(ctx); err == nil {
		for _, s := range slugs {
			title := content.TitleFromSlug(s)
			if info, err := a.Content.InfoPage(ctx, s); err == nil && info.Title != "" {
				title = info.Title
			}
			p.Nav.Info = append(p.Nav.Info, views.InfoLink{Slug: s, Title: title})
		}
	}
	return p
}

func (a *App) renderNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, views.PageMeta{Title: "Not found"})))
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	home, err := a.Content.Home(ctx)
	if err != nil {
		return err
	}
	collections, err := a.Content.Collections(ctx)
	if err != nil {
		return err
	}
	p := a.page(c, views.PageMeta{
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL),
		Image:       home.HeroImageURL,
	})
	return Render(c, a.Views.Home(p, home, collections))
}

func (a *App) handleCollection(c echo.Context) error {
	col, err := a.Content.Collection(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, content.ErrNotFound) || (err == nil && len(col.Photos) == 0) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	pageURL := BuildURL(a.Config.URL, "collections", col.Slug)
	p := a.page(c, views.PageMeta{
		Title:       col.Title,
		Description: col.Title,
		URL:         pageURL,
		Image:       col.Cover.Src,
		JSONLD:      views.GalleryJsonLD(a.site(), pageURL, col.Title, col.Photos),
	})
	return Render(c, a.Views.Collection(p, col))
}

func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("category")
	photos, err := a.Content.CategoryPhotos(ctx, slug)
	if errors.Is(err, content.ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	title := content.TitleFromSlug(slug)
	if col, err := a.Content.Collection(ctx, slug); err == nil {
		title = col.Title
	}
	p := a.page(c, views.PageMeta{
		Title: title,
		URL:   BuildURL(a.Config.URL, "category", slug),
	})
	return Render(c, a.Views.Mosaic(p, title, photos))
}

func (a *App) handleGallery(c echo.Context) error {
	g, err := a.Content.Gallery(c.Request().Context(), c.Param("series"), c.Param("gallery"))
	if errors.Is(err, content.ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	pageURL := BuildURL(a.Config.URL, "works", g.SeriesSlug, g.Slug)
	meta := views.PageMeta{
		Title:       g.Title,
		Description: g.Caption,
		URL:         pageURL,
		OGType:      "article",
		JSONLD:      views.GalleryJsonLD(a.site(), pageURL, g.Title, g.Photos),
	}
	if len(g.Photos) > 0 {
		meta.Image = g.Photos[0].Src
	}
	return Render(c, a.Views.Gallery(a.page(c, meta), g))
}

func (a *App) handleInfo(c echo.Context) error {
	info, err := a.Content.InfoPage(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, content.ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	p := a.page(c, views.PageMeta{
		Title:       info.Title,
		Description: FirstSentence(info.Body.PlainText()),
		URL:         BuildURL(a.Config.URL, "info", info.Slug),
	})
	return Render(c, a.Views.Info(p, info))
}

func (a *App) handleContact(c echo.Context) error {
	doc, err := a.Content.Contact(c.Request().Context())
	if err != nil {
		return err
	}
	p := a.page(c, views.PageMeta{
		Title: "Contact",
		URL:   BuildURL(a.Config.URL, "contact"),
	})
	return Render(c, a.Views.Contact(p, doc))
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	collections, err := a.Content.Collections(ctx)
	if err != nil {
		return err
	}
	series, err := a.Content.SeriesList(ctx)
	if err != nil {
		return err
	}
	info, err := a.Content.InfoPageSlugs(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, collections, series, info)
}

func (a *App) handleFeed(c echo.Context) error {
	collections, err := a.Content.Collections(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderFeed(c, collections)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.staticDir, "favicon.svg"))
}

// handleRobots serves the user's robots.txt, or one that allows everything
// and points at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	p := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: " + BuildURL(a.Config.URL) + "sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		if rerr := a.renderNotFound(c); rerr != nil {
			a.Log.Warn("render not found page", zap.Error(rerr))
		}
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error",
			zap.Error(err),
			zap.String("uri", c.Request().RequestURI),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		// skip navigation lookups: the content source may be what failed
		p := views.Page{Site: a.site(), Meta: views.PageMeta{Title: "Error"}, Nav: views.Nav{SiteTitle: a.Config.Name}}
		_ = RenderStatus(c, code, a.Views.ServerError(p))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
