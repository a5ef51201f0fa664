// Package content defines the descriptors shared by every content source and
// the Provider interface the site is rendered from.
package content

import (
	"context"
	"errors"

	"github.com/eringen/folio/richtext"
)

// ErrNotFound is returned when a requested document or collection does not
// exist. Providers never return any other error for missing content.
var ErrNotFound = errors.New("content: not found")

// Default placeholder dimensions.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800

	WorkWidth  = 2400
	WorkHeight = 1600
)

// DefaultSiteTitle is used when no site title is configured.
const DefaultSiteTitle = "Showcase"

// Photo is a single displayable image.
type Photo struct {
	Src        string `json:"src"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Alt        string `json:"alt"`
	Title      string `json:"title,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// Collection is a named, sluggable group of photos with a cover image.
// A Collection returned by a Provider always has at least one photo.
type Collection struct {
	Slug   string  `json:"slug"`
	Title  string  `json:"title"`
	Cover  Photo   `json:"cover"`
	Photos []Photo `json:"photos"`
}

// SeriesLink is a navigation entry for a series and its galleries.
type SeriesLink struct {
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Galleries []GalleryLink `json:"galleries"`
}

// GalleryLink points at one gallery inside a series.
type GalleryLink struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	SeriesSlug string `json:"seriesSlug"`
	ImageCount int    `json:"imageCount"`
}

// Href returns the site path of the gallery page.
func (g GalleryLink) Href() string {
	return "/works/" + g.SeriesSlug + "/" + g.Slug + "/"
}

// Gallery is a full gallery page.
type Gallery struct {
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	SeriesSlug     string        `json:"seriesSlug"`
	SeriesTitle    string        `json:"seriesTitle"`
	Year           string        `json:"year,omitempty"`
	Caption        string        `json:"caption,omitempty"`
	LayoutBlocks   []LayoutBlock `json:"layoutBlocks,omitempty"`
	Photos         []Photo       `json:"photos"`
	OtherGalleries []GalleryLink `json:"otherGalleries,omitempty"`
}

// LayoutBlockKind distinguishes text and image layout blocks.
type LayoutBlockKind string

const (
	LayoutText  LayoutBlockKind = "text"
	LayoutImage LayoutBlockKind = "image"
)

// LayoutBlock is an ordered content unit rendered above a gallery's grid.
type LayoutBlock struct {
	Kind    LayoutBlockKind `json:"kind"`
	Body    richtext.Body   `json:"body,omitempty"`
	Image   Photo           `json:"image,omitempty"`
	Caption string          `json:"caption,omitempty"`
}

// InfoPage is a free-form informational page such as About or CV.
type InfoPage struct {
	Slug  string        `json:"slug"`
	Title string        `json:"title"`
	Body  richtext.Body `json:"body"`
}

// Contact is the contact page document.
type Contact struct {
	Body richtext.Body `json:"body"`
}

// HeroMargin controls how much of the viewport width the home hero uses.
type HeroMargin string

const (
	HeroNone   HeroMargin = "none"
	HeroSmall  HeroMargin = "small"
	HeroMedium HeroMargin = "medium"
	HeroLarge  HeroMargin = "large"
)

// ParseHeroMargin maps a stored value to a HeroMargin, defaulting to medium.
func ParseHeroMargin(s string) HeroMargin {
	switch m := HeroMargin(s); m {
	case HeroNone, HeroSmall, HeroMedium, HeroLarge:
		return m
	}
	return HeroMedium
}

// Home is the home page document merged with site settings.
// An empty HeroImageURL means no hero image is configured.
type Home struct {
	HeroImageURL string        `json:"heroImageUrl"`
	HeroMargin   HeroMargin    `json:"heroMargin"`
	Intro        richtext.Body `json:"intro,omitempty"`
	SiteTitle    string        `json:"siteTitle"`
}

// Provider is implemented by every content source. Absent configuration or
// content yields empty lists, zero documents, or ErrNotFound for lookups by
// slug; transport failures are absorbed by the implementation.
type Provider interface {
	Collections(ctx context.Context) ([]Collection, error)
	Collection(ctx context.Context, slug string) (Collection, error)
	SeriesList(ctx context.Context) ([]SeriesLink, error)
	Gallery(ctx context.Context, series, gallery string) (Gallery, error)
	InfoPage(ctx context.Context, slug string) (InfoPage, error)
	InfoPageSlugs(ctx context.Context) ([]string, error)
	Contact(ctx context.Context) (Contact, error)
	Home(ctx context.Context) (Home, error)
}

