package sanity

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/richtext"
)

const (
	heroWidth  = 1920
	heroHeight = 1080
)

type dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type assetDoc struct {
	Ref string `json:"_ref"`
	ID  string `json:"_id"`
}

func (a *assetDoc) ref() string {
	if a == nil {
		return ""
	}
	if a.Ref != "" {
		return a.Ref
	}
	return a.ID
}

type photoDoc struct {
	Asset      *assetDoc   `json:"asset"`
	Dimensions *dimensions `json:"dimensions"`
	Alt        string      `json:"alt"`
	Caption    string      `json:"caption"`
}

type galleryLinkDoc struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	ImageCount int    `json:"imageCount"`
}

type seriesDoc struct {
	Title     string           `json:"title"`
	Slug      string           `json:"slug"`
	Galleries []galleryLinkDoc `json:"galleries"`
}

type layoutBlockDoc struct {
	Type       string        `json:"_type"`
	Key        string        `json:"_key"`
	Body       richtext.Body `json:"body"`
	ImageRef   string        `json:"imageRef"`
	Dimensions *dimensions   `json:"dimensions"`
	Alt        string        `json:"alt"`
	Caption    string        `json:"caption"`
}

type galleryDoc struct {
	Title        string           `json:"title"`
	Slug         string           `json:"slug"`
	SeriesSlug   string           `json:"seriesSlug"`
	SeriesTitle  string           `json:"seriesTitle"`
	Year         string           `json:"year"`
	Caption      string           `json:"caption"`
	LayoutBlocks []layoutBlockDoc `json:"layoutBlocks"`
	Photos       []photoDoc       `json:"photos"`
}

type collectionDoc struct {
	Title  string     `json:"title"`
	Slug   string     `json:"slug"`
	Photos []photoDoc `json:"photos"`
}

type homeDoc struct {
	HeroImageRef    string        `json:"heroImageRef"`
	HeroImageMargin string        `json:"heroImageMargin"`
	Intro           richtext.Body `json:"intro"`
}

type settingsDoc struct {
	Title string `json:"title"`
}

// Provider implements content.Provider on top of a Client. Every failure is
// logged and degrades to the same defaults as an unconfigured store.
type Provider struct {
	c   *Client
	log *zap.Logger
}

var _ content.Provider = (*Provider)(nil)

// NewProvider returns a provider backed by c.
func NewProvider(c *Client, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{c: c, log: logger.Named("sanity-provider")}
}

// Client returns the underlying client.
func (p *Provider) Client() *Client {
	return p.c
}

// query runs q and reports whether out was filled. Absent configuration and
// null results are silent; other failures are logged.
func (p *Provider) query(ctx context.Context, name, q string, params map[string]any, out any) bool {
	err := p.c.Query(ctx, q, params, out)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotConfigured), errors.Is(err, ErrNoResult):
		return false
	default:
		p.log.Warn("query failed", zap.String("query", name), zap.Error(err))
		return false
	}
}

// photo maps a stored image to a Photo. Real dimensions are used when the
// asset reports them; the URL asks for a 1200px wide rendition.
func (p *Provider) photo(ref string, dims *dimensions, alt, title string) content.Photo {
	w, h := content.DefaultWidth, content.DefaultHeight
	if dims != nil && dims.Width > 0 && dims.Height > 0 {
		w, h = int(dims.Width), int(dims.Height)
	}
	reqH := int(math.Round(float64(content.DefaultWidth) * float64(h) / float64(w)))
	if alt == "" {
		alt = title
	}
	if title == "" {
		title = alt
	}
	return content.Photo{
		Src:    p.c.ImageURL(ref, content.DefaultWidth, reqH),
		Width:  w,
		Height: h,
		Alt:    alt,
		Title:  title,
	}
}

func (p *Provider) photos(docs []photoDoc, fallbackTitle, collection string) []content.Photo {
	out := make([]content.Photo, 0, len(docs))
	for _, d := range docs {
		title := d.Caption
		if title == "" {
			title = d.Alt
		}
		if title == "" {
			title = fallbackTitle
		}
		ph := p.photo(d.Asset.ref(), d.Dimensions, d.Alt, title)
		if ph.Src == "" {
			continue
		}
		ph.Collection = collection
		out = append(out, ph)
	}
	return out
}

// SeriesList implements content.Provider.
func (p *Provider) SeriesList(ctx context.Context) ([]content.SeriesLink, error) {
	var docs []seriesDoc
	if !p.query(ctx, "seriesList", seriesListQuery, nil, &docs) {
		return []content.SeriesLink{}, nil
	}
	out := make([]content.SeriesLink, 0, len(docs))
	for _, s := range docs {
		link := content.SeriesLink{Slug: s.Slug, Title: s.Title, Galleries: []content.GalleryLink{}}
		for _, g := range s.Galleries {
			link.Galleries = append(link.Galleries, content.GalleryLink{
				Slug:       g.Slug,
				Title:      g.Title,
				SeriesSlug: s.Slug,
				ImageCount: g.ImageCount,
			})
		}
		out = append(out, link)
	}
	return out, nil
}

// Gallery implements content.Provider.
func (p *Provider) Gallery(ctx context.Context, series, gallery string) (content.Gallery, error) {
	var doc galleryDoc
	params := map[string]any{"seriesSlug": series, "gallerySlug": gallery}
	if !p.query(ctx, "galleryBySlugs", galleryBySlugsQuery, params, &doc) {
		return content.Gallery{}, content.ErrNotFound
	}

	g := content.Gallery{
		Title:       doc.Title,
		Slug:        doc.Slug,
		SeriesSlug:  doc.SeriesSlug,
		SeriesTitle: doc.SeriesTitle,
		Year:        doc.Year,
		Caption:     doc.Caption,
		Photos:      p.photos(doc.Photos, doc.Title, doc.SeriesTitle),
	}
	for _, b := range doc.LayoutBlocks {
		switch b.Type {
		case "galleryLayoutBlockText":
			if !b.Body.Empty() {
				g.LayoutBlocks = append(g.LayoutBlocks, content.LayoutBlock{Kind: content.LayoutText, Body: b.Body})
			}
		case "galleryLayoutBlockImage":
			img := p.photo(b.ImageRef, b.Dimensions, b.Alt, b.Caption)
			if img.Src == "" {
				continue
			}
			g.LayoutBlocks = append(g.LayoutBlocks, content.LayoutBlock{Kind: content.LayoutImage, Image: img, Caption: b.Caption})
		}
	}

	list, _ := p.SeriesList(ctx)
	for _, s := range list {
		for _, link := range s.Galleries {
			if link.SeriesSlug == g.SeriesSlug && link.Slug == g.Slug {
				continue
			}
			g.OtherGalleries = append(g.OtherGalleries, link)
		}
	}
	return g, nil
}

// Collections maps each series to a collection of all its gallery images.
// Series without a displayable image are left out.
func (p *Provider) Collections(ctx context.Context) ([]content.Collection, error) {
	var docs []collectionDoc
	if !p.query(ctx, "collections", collectionsQuery, nil, &docs) {
		return []content.Collection{}, nil
	}
	out := make([]content.Collection, 0, len(docs))
	for _, d := range docs {
		if d.Slug == "" {
			continue
		}
		photos := p.photos(d.Photos, d.Title, d.Title)
		if len(photos) == 0 {
			continue
		}
		out = append(out, content.Collection{Slug: d.Slug, Title: d.Title, Cover: photos[0], Photos: photos})
	}
	return out, nil
}

// Collection implements content.Provider.
func (p *Provider) Collection(ctx context.Context, slug string) (content.Collection, error) {
	cs, _ := p.Collections(ctx)
	for _, c := range cs {
		if c.Slug == slug {
			return c, nil
		}
	}
	return content.Collection{}, content.ErrNotFound
}

// InfoPage implements content.Provider.
func (p *Provider) InfoPage(ctx context.Context, slug string) (content.InfoPage, error) {
	var page content.InfoPage
	if !p.query(ctx, "infoPageBySlug", infoPageBySlugQuery, map[string]any{"slug": slug}, &page) {
		return content.InfoPage{}, content.ErrNotFound
	}
	if page.Slug == "" {
		page.Slug = slug
	}
	if page.Title == "" {
		page.Title = content.TitleFromSlug(slug)
	}
	return page, nil
}

// InfoPageSlugs implements content.Provider.
func (p *Provider) InfoPageSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	if !p.query(ctx, "infoPageSlugs", infoPageSlugsQuery, nil, &slugs) {
		return []string{}, nil
	}
	out := slugs[:0]
	for _, s := range slugs {
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// Contact implements content.Provider.
func (p *Provider) Contact(ctx context.Context) (content.Contact, error) {
	var c content.Contact
	if !p.query(ctx, "contact", contactQuery, nil, &c) {
		return content.Contact{}, nil
	}
	return c, nil
}

// Home fetches the home document and the site settings concurrently.
func (p *Provider) Home(ctx context.Context) (content.Home, error) {
	h := content.Home{HeroMargin: content.HeroMedium, SiteTitle: content.DefaultSiteTitle}
	if !p.c.Configured() {
		return h, nil
	}

	var home homeDoc
	var settings settingsDoc
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.query(gctx, "home", homeQuery, nil, &home)
		return nil
	})
	g.Go(func() error {
		p.query(gctx, "siteSettings", siteSettingsQuery, nil, &settings)
		return nil
	})
	_ = g.Wait()

	if settings.Title != "" {
		h.SiteTitle = settings.Title
	}
	if home.HeroImageRef != "" {
		h.HeroImageURL = p.c.ImageURL(home.HeroImageRef, heroWidth, heroHeight)
	}
	h.HeroMargin = content.ParseHeroMargin(home.HeroImageMargin)
	h.Intro = home.Intro
	return h, nil
}
