package folio

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	GUID        string        `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// renderFeed lists one item per collection with its cover as enclosure.
// Collections carry no dates, so items have no pubDate.
func (a *App) renderFeed(c echo.Context, collections []content.Collection) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(collections))
	for _, col := range collections {
		link := BuildURL(base, "collections", col.Slug)
		item := rssItem{
			Title:       col.Title,
			Link:        link,
			Description: fmt.Sprintf("%s: %d images", col.Title, len(col.Photos)),
			GUID:        link,
		}
		if col.Cover.Src != "" {
			item.Enclosure = &rssEnclosure{URL: absoluteURL(base, col.Cover.Src), Type: "image/" + imageType(col.Cover.Src)}
		}
		items = append(items, item)
	}
	description := a.Config.Description
	if description == "" {
		description = a.Config.Name
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
