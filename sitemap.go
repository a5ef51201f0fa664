package folio

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

func (a *App) renderSitemap(c echo.Context, collections []content.Collection, series []content.SeriesLink, info []string) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "contact")},
	}
	for _, col := range collections {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "collections", col.Slug)})
	}
	for _, s := range series {
		for _, g := range s.Galleries {
			urls = append(urls, sitemapURL{Loc: BuildURL(base, "works", g.SeriesSlug, g.Slug)})
		}
	}
	for _, slug := range info {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "info", slug)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
