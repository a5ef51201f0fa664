package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/richtext"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func testPage() Page {
	return Page{
		Site: SiteConfig{Name: "Studio", URL: "https://example.com"},
		Meta: PageMeta{Title: "Chairs", URL: "https://example.com/collections/chairs/"},
		Nav: Nav{
			SiteTitle: "Studio <Ana>",
			Series: []content.SeriesLink{{
				Slug:  "furniture",
				Title: "Furniture",
				Galleries: []content.GalleryLink{
					{Slug: "oak-chair", Title: "Oak Chair", SeriesSlug: "furniture", ImageCount: 3},
				},
			}},
			Info:   []InfoLink{{Slug: "about", Title: "About"}},
			Active: "/info/about/",
		},
	}
}

func TestLayoutNavigation(t *testing.T) {
	out := render(t, NotFound(testPage()))

	assert.Contains(t, out, "<title>Chairs | Studio &lt;Ana&gt;</title>")
	assert.Contains(t, out, `href="/works/furniture/oak-chair/">Oak Chair <span class="count">(3)</span>`)
	assert.Contains(t, out, `<a href="/info/about/" aria-current="page">About</a>`)
	assert.Contains(t, out, `href="/contact/"`)
	assert.Contains(t, out, `data-drawer-toggle`)
	assert.Contains(t, out, `<link rel="canonical" href="https://example.com/collections/chairs/">`)
	assert.Contains(t, out, `"@type":"WebSite"`)
	assert.Contains(t, out, "Not found")
}

func TestLayoutOmitsEmptyDropdowns(t *testing.T) {
	p := testPage()
	p.Nav.Series = nil
	p.Nav.Info = nil
	out := render(t, NotFound(p))
	assert.NotContains(t, out, ">Works<")
	assert.NotContains(t, out, ">Info<")
	assert.Contains(t, out, ">Contact<")
}

func TestHomeEmptyState(t *testing.T) {
	home := content.Home{HeroMargin: content.HeroMedium, SiteTitle: "Showcase"}
	out := render(t, Home(testPage(), home, nil))
	assert.Contains(t, out, `class="empty"`)
	assert.NotContains(t, out, `class="hero`)
}

func TestHomeHeroAndTiles(t *testing.T) {
	home := content.Home{
		HeroImageURL: "/Pictures/hero.jpg",
		HeroMargin:   content.HeroLarge,
		SiteTitle:    "Showcase",
		Intro:        richtext.FromMarkdown("Hello **there**"),
	}
	photos := []content.Photo{
		{Src: "/Pictures/chairs/a.jpg", Width: 1200, Height: 800, Alt: "a"},
		{Src: "/Pictures/chairs/b.jpg", Width: 1200, Height: 800, Alt: "b"},
	}
	cols := []content.Collection{
		{Slug: "chairs", Title: "Chairs", Cover: photos[0], Photos: photos},
		{Slug: "lamps", Title: "Lamps", Cover: photos[0], Photos: photos[:1]},
	}
	p := testPage()
	p.ThumbWidth = 640
	out := render(t, Home(p, home, cols))

	assert.Contains(t, out, `class="hero hero--large"`)
	assert.Contains(t, out, "<strong>there</strong>")
	assert.Contains(t, out, `href="/collections/chairs/" data-crossfade data-index="0"`)
	assert.Contains(t, out, `data-srcs="[&#34;/thumbs/640/Pictures/chairs/a.jpg&#34;,&#34;/thumbs/640/Pictures/chairs/b.jpg&#34;]"`)
	// single-image collections do not rotate
	assert.Contains(t, out, `<a class="tile" href="/collections/lamps/"><img`)
}

func TestImageSrc(t *testing.T) {
	tests := []struct {
		src   string
		width int
		want  string
	}{
		{"/Pictures/a%20b/c.jpg", 640, "/thumbs/640/Pictures/a%20b/c.jpg"},
		{"/Pictures/c.jpg", 0, "/Pictures/c.jpg"},
		{"/Pictures/c.avif", 640, "/Pictures/c.avif"},
		{"/Pictures/c.WEBP", 640, "/thumbs/640/Pictures/c.WEBP"},
		{"https://cdn.sanity.io/images/p/d/x-1x1.jpg?w=1200", 640, "https://cdn.sanity.io/images/p/d/x-1x1.jpg?w=1200"},
		{"//cdn.example.com/a.jpg", 640, "//cdn.example.com/a.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImageSrc(content.Photo{Src: tt.src}, tt.width), tt.src)
	}
}

func TestHeroClassDefaultsToMedium(t *testing.T) {
	assert.Equal(t, "hero hero--medium", HeroClass(""))
	assert.Equal(t, "hero hero--none", HeroClass(content.HeroNone))
}

func TestGalleryPage(t *testing.T) {
	g := content.Gallery{
		Title:       "Oak Chair",
		SeriesTitle: "Furniture",
		Year:        "2020",
		Caption:     "Solid oak",
		LayoutBlocks: []content.LayoutBlock{
			{Kind: content.LayoutText, Body: richtext.FromMarkdown("Made by hand.")},
			{Kind: content.LayoutImage, Image: content.Photo{Src: "/work/x.jpg", Alt: "x"}, Caption: "Detail"},
		},
		Photos: []content.Photo{{Src: "/work/a.jpg", Alt: "Oak Chair - Image 1", Title: "Oak Chair - Image 1"}},
		OtherGalleries: []content.GalleryLink{
			{Slug: "pine", Title: "Pine", SeriesSlug: "furniture"},
		},
	}
	out := render(t, Gallery(testPage(), g))

	assert.Contains(t, out, `<p class="series">Furniture</p><h1>Oak Chair</h1><p class="year">2020</p>`)
	assert.Contains(t, out, "<p>Made by hand.</p>")
	assert.Contains(t, out, "<figcaption>Detail</figcaption>")
	assert.Contains(t, out, `data-lightbox-index="0"`)
	assert.Contains(t, out, `<a href="/works/furniture/pine/">Pine</a>`)
}

func TestContactEmptyState(t *testing.T) {
	out := render(t, Contact(testPage(), content.Contact{}))
	assert.Contains(t, out, `class="empty"`)

	out = render(t, Contact(testPage(), content.Contact{Body: richtext.FromMarkdown("mail@example.com")}))
	assert.Contains(t, out, "<p>mail@example.com</p>")
	assert.NotContains(t, out, `class="empty"`)
}

func TestMosaicEscapesTitles(t *testing.T) {
	out := render(t, Mosaic(testPage(), "Chairs & Tables", []content.Photo{{Src: "/a.jpg", Alt: `"quoted"`}}))
	assert.Contains(t, out, "<h1>Chairs &amp; Tables</h1>")
	assert.Contains(t, out, `alt="&#34;quoted&#34;"`)
}

func TestAdminFormsCarryCSRF(t *testing.T) {
	out := render(t, AdminLogin(testPage(), true, "tok<1>"))
	assert.Contains(t, out, `name="_csrf" value="tok&lt;1&gt;"`)
	assert.Contains(t, out, "Wrong password.")

	out = render(t, AdminDashboard(testPage(), AdminStatus{Source: "filesystem", CacheBackend: "memory", Collections: 2}, "refreshed", "tok"))
	assert.Equal(t, 2, strings.Count(out, `name="_csrf" value="tok"`))
	assert.Contains(t, out, "<th scope=\"row\">Collections</th><td>2</td>")
	assert.NotContains(t, out, "Content store circuit")
}

func TestGalleryJsonLD(t *testing.T) {
	ld := GalleryJsonLD(SiteConfig{URL: "https://example.com/", Author: "Ana"}, "https://example.com/collections/chairs/", "Chairs",
		[]content.Photo{{Src: "/Pictures/chairs/a.jpg", Width: 10, Height: 5, Title: "a"}})
	assert.Contains(t, ld, `"contentUrl":"https://example.com/Pictures/chairs/a.jpg"`)
	assert.Contains(t, ld, `"@type":"ImageGallery"`)
	assert.Contains(t, ld, `"name":"Ana"`)
}
