package discover

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/richtext"
)

const (
	contactPage = "contact"
	homePage    = "home"
)

// HomeConfig carries home page settings that the filesystem cannot express.
type HomeConfig struct {
	HeroImage  string // public URL of the hero image; empty uses the first cover
	HeroMargin content.HeroMargin
	SiteTitle  string
}

// Provider implements content.Provider over a Discoverer and a directory of
// Markdown pages.
type Provider struct {
	d        *Discoverer
	pagesDir string
	home     HomeConfig
	log      *zap.Logger
}

var _ content.Provider = (*Provider)(nil)

// NewProvider returns a filesystem content provider.
func NewProvider(d *Discoverer, pagesDir string, home HomeConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if home.HeroMargin == "" {
		home.HeroMargin = content.HeroMedium
	}
	if home.SiteTitle == "" {
		home.SiteTitle = content.DefaultSiteTitle
	}
	return &Provider{d: d, pagesDir: pagesDir, home: home, log: logger.Named("fs-provider")}
}

// Discoverer returns the underlying discoverer.
func (p *Provider) Discoverer() *Discoverer {
	return p.d
}

// Collections implements content.Provider.
func (p *Provider) Collections(ctx context.Context) ([]content.Collection, error) {
	return p.d.Collections(), nil
}

// Collection implements content.Provider.
func (p *Provider) Collection(ctx context.Context, slug string) (content.Collection, error) {
	for _, c := range p.d.Collections() {
		if c.Slug == slug {
			return c, nil
		}
	}
	return content.Collection{}, content.ErrNotFound
}

// CategoryPhotos returns every work image of a category for the mosaic
// page. Only known collections have a mosaic; those without a work folder
// show the collection's own photos.
func (p *Provider) CategoryPhotos(ctx context.Context, slug string) ([]content.Photo, error) {
	c, err := p.Collection(ctx, slug)
	if err != nil {
		return nil, err
	}
	if _, ok := p.d.categoryFolder(slug); ok {
		photos := p.d.CategoryImages(slug)
		if photos == nil {
			photos = []content.Photo{}
		}
		return photos, nil
	}
	return c.Photos, nil
}

// Dirs returns every directory whose contents the provider reads, pages
// included.
func (p *Provider) Dirs() []string {
	return append(p.d.Dirs(), p.pagesDir)
}

// SeriesList groups works by category. Series follow the configured display
// order, galleries keep natural folder order.
func (p *Provider) SeriesList(ctx context.Context) ([]content.SeriesLink, error) {
	var out []content.SeriesLink
	index := make(map[string]int)
	for _, w := range p.d.Works() {
		slug := content.Slugify(w.Category)
		i, ok := index[slug]
		if !ok {
			i = len(out)
			index[slug] = i
			out = append(out, content.SeriesLink{Slug: slug, Title: p.seriesTitle(slug)})
		}
		out[i].Galleries = append(out[i].Galleries, content.GalleryLink{
			Slug:       w.Slug,
			Title:      w.Title,
			SeriesSlug: slug,
			ImageCount: len(w.Photos),
		})
	}
	sortBySlug(p.d, out, func(s content.SeriesLink) string { return s.Slug })
	return out, nil
}

func (p *Provider) seriesTitle(slug string) string {
	if t, ok := p.d.cfg.Titles[slug]; ok && t != "" {
		return t
	}
	return content.TitleFromSlug(slug)
}

// Gallery implements content.Provider.
func (p *Provider) Gallery(ctx context.Context, series, gallery string) (content.Gallery, error) {
	folder, ok := p.d.categoryFolder(series)
	if !ok {
		return content.Gallery{}, content.ErrNotFound
	}
	works := p.d.categoryWorks(folder)
	for _, w := range works {
		if w.Slug != gallery {
			continue
		}
		g := content.Gallery{
			Title:       w.Title,
			Slug:        w.Slug,
			SeriesSlug:  series,
			SeriesTitle: p.seriesTitle(series),
			Year:        w.Year,
			Caption:     w.Caption,
			Photos:      w.Photos,
		}
		if body := p.readPage(filepath.Join(p.d.dir(p.d.cfg.WorkDir), folder, w.Folder, "notes.md")); !body.Empty() {
			g.LayoutBlocks = []content.LayoutBlock{{Kind: content.LayoutText, Body: body}}
		}
		g.OtherGalleries = p.otherGalleries(ctx, series, w.Slug)
		return g, nil
	}
	return content.Gallery{}, content.ErrNotFound
}

// otherGalleries lists every gallery across all series except the given one.
func (p *Provider) otherGalleries(ctx context.Context, series, gallery string) []content.GalleryLink {
	list, _ := p.SeriesList(ctx)
	var out []content.GalleryLink
	for _, s := range list {
		for _, g := range s.Galleries {
			if g.SeriesSlug == series && g.Slug == gallery {
				continue
			}
			out = append(out, g)
		}
	}
	return out
}

// InfoPage reads <pages>/<slug>.md. The first "# " heading becomes the title.
func (p *Provider) InfoPage(ctx context.Context, slug string) (content.InfoPage, error) {
	if !validPageSlug(slug) {
		return content.InfoPage{}, content.ErrNotFound
	}
	path := filepath.Join(p.pagesDir, slug+".md")
	if _, err := os.Stat(path); err != nil {
		return content.InfoPage{}, content.ErrNotFound
	}
	title, body := richtext.SplitTitle(p.readPage(path))
	if title == "" {
		title = content.TitleFromSlug(slug)
	}
	return content.InfoPage{Slug: slug, Title: title, Body: body}, nil
}

// InfoPageSlugs lists the Markdown pages other than contact and home.
func (p *Provider) InfoPageSlugs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.pagesDir)
	if err != nil {
		return []string{}, nil
	}
	slugs := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".md" {
			continue
		}
		slug := strings.TrimSuffix(name, ".md")
		if slug == contactPage || slug == homePage || !validPageSlug(slug) {
			continue
		}
		slugs = append(slugs, slug)
	}
	content.SortNatural(slugs)
	return slugs, nil
}

// Contact reads <pages>/contact.md. A missing file yields an empty document.
func (p *Provider) Contact(ctx context.Context) (content.Contact, error) {
	_, body := richtext.SplitTitle(p.readPage(filepath.Join(p.pagesDir, contactPage+".md")))
	return content.Contact{Body: body}, nil
}

// Home combines configured hero settings with <pages>/home.md.
func (p *Provider) Home(ctx context.Context) (content.Home, error) {
	h := content.Home{
		HeroImageURL: p.home.HeroImage,
		HeroMargin:   p.home.HeroMargin,
		SiteTitle:    p.home.SiteTitle,
	}
	if h.HeroImageURL == "" {
		if cs := p.d.Collections(); len(cs) > 0 {
			h.HeroImageURL = cs[0].Cover.Src
		}
	}
	_, h.Intro = richtext.SplitTitle(p.readPage(filepath.Join(p.pagesDir, homePage+".md")))
	return h, nil
}

func (p *Provider) readPage(path string) richtext.Body {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.log.Warn("read page", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	return richtext.FromMarkdown(string(data))
}

func validPageSlug(slug string) bool {
	return slug != "" && content.Slugify(slug) == slug
}
