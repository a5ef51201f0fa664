package views

import (
	"time"

	"github.com/eringen/folio/content"
)

// SiteConfig holds site-wide settings that every page needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute or site-relative
	JSONLD      string // defaults to the WebSite block
}

// InfoLink is an entry in the Info dropdown.
type InfoLink struct {
	Slug  string
	Title string
}

// Href returns the site path of the info page.
func (l InfoLink) Href() string {
	return "/info/" + l.Slug + "/"
}

// Nav is the data the header navigation is built from.
type Nav struct {
	SiteTitle string
	Series    []content.SeriesLink
	Info      []InfoLink
	Active    string // request path, used to mark the current link
}

// Page bundles what the layout needs around a page body.
type Page struct {
	Site SiteConfig
	Meta PageMeta
	Nav  Nav
	// ThumbWidth routes local grid images through the thumbnail endpoint at
	// this width. Zero serves originals.
	ThumbWidth int
}

// AdminStatus is shown on the admin dashboard.
type AdminStatus struct {
	Source       string
	CacheBackend string
	Breaker      string // empty when the source has no breaker
	Watching     bool
	Collections  int
	Photos       int
	Series       int
	Galleries    int
	InfoPages    int
	CheckedAt    time.Time
}
