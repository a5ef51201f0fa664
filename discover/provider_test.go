package discover

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/content"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"public/Pictures/Chairs/1.jpg":              "",
		"public/Pictures/Paintings/1.jpg":           "",
		"public/work/chairs/oak-chair/project.json": `{"title":"Oak Chair","year":"2020","caption":"Solid oak"}`,
		"public/work/chairs/oak-chair/1.jpg":        "",
		"public/work/chairs/oak-chair/2.jpg":        "",
		"public/work/chairs/oak-chair/notes.md":     "Built for the **2020** show.",
		"public/work/chairs/pine-stool/1.jpg":       "",
		"public/work/paintings/blue-period/1.jpg":   "",
		"pages/about.md":                            "# About the Studio\n\nWe make things.",
		"pages/cv.md":                               "Born 1980.",
		"pages/contact.md":                          "# Contact\n\nWrite to [us](mailto:hi@example.com).",
		"pages/home.md":                             "Furniture and paintings.",
		"pages/notes.txt":                           "ignored",
	})

	cfg := DefaultCollectionsConfig()
	cfg.PublicDir = filepath.Join(root, "public")
	d := New(cfg, nil)
	return NewProvider(d, filepath.Join(root, "pages"), HomeConfig{SiteTitle: "Studio"}, nil)
}

func TestProviderCollection(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	c, err := p.Collection(ctx, "paintings")
	require.NoError(t, err)
	assert.Equal(t, "Paintings", c.Title)

	_, err = p.Collection(ctx, "missing")
	assert.True(t, errors.Is(err, content.ErrNotFound))
}

func TestProviderSeriesList(t *testing.T) {
	p := newTestProvider(t)
	series, err := p.SeriesList(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, "chairs", series[0].Slug)
	assert.Equal(t, "Chairs", series[0].Title)
	assert.Equal(t, []content.GalleryLink{
		{Slug: "oak-chair", Title: "Oak Chair", SeriesSlug: "chairs", ImageCount: 2},
		{Slug: "pine-stool", Title: "Pine Stool", SeriesSlug: "chairs", ImageCount: 1},
	}, series[0].Galleries)
	assert.Equal(t, "paintings", series[1].Slug)
}

func TestProviderGallery(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	g, err := p.Gallery(ctx, "chairs", "oak-chair")
	require.NoError(t, err)
	assert.Equal(t, "Oak Chair", g.Title)
	assert.Equal(t, "Chairs", g.SeriesTitle)
	assert.Equal(t, "2020", g.Year)
	assert.Equal(t, "Solid oak", g.Caption)
	assert.Len(t, g.Photos, 2)
	require.Len(t, g.LayoutBlocks, 1)
	assert.Equal(t, content.LayoutText, g.LayoutBlocks[0].Kind)
	require.Len(t, g.OtherGalleries, 2)
	assert.Equal(t, "/works/chairs/pine-stool/", g.OtherGalleries[0].Href())
	assert.Equal(t, "/works/paintings/blue-period/", g.OtherGalleries[1].Href())

	_, err = p.Gallery(ctx, "chairs", "missing")
	assert.ErrorIs(t, err, content.ErrNotFound)
	_, err = p.Gallery(ctx, "lamps", "oak-chair")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestProviderInfoPages(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	page, err := p.InfoPage(ctx, "about")
	require.NoError(t, err)
	assert.Equal(t, "About the Studio", page.Title)
	assert.Equal(t, "We make things.", page.Body.PlainText())

	page, err = p.InfoPage(ctx, "cv")
	require.NoError(t, err)
	assert.Equal(t, "Cv", page.Title)

	_, err = p.InfoPage(ctx, "press")
	assert.ErrorIs(t, err, content.ErrNotFound)
	_, err = p.InfoPage(ctx, "../pages/about")
	assert.ErrorIs(t, err, content.ErrNotFound)

	slugs, err := p.InfoPageSlugs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"about", "cv"}, slugs)
}

func TestProviderContactAndHome(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	c, err := p.Contact(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Write to us.", c.Body.PlainText())

	h, err := p.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/Pictures/Chairs/1.jpg", h.HeroImageURL)
	assert.Equal(t, content.HeroMedium, h.HeroMargin)
	assert.Equal(t, "Studio", h.SiteTitle)
	assert.Equal(t, "Furniture and paintings.", h.Intro.PlainText())
}

func TestProviderEmptyTree(t *testing.T) {
	root := t.TempDir()
	d := New(Config{PublicDir: filepath.Join(root, "public")}, nil)
	p := NewProvider(d, filepath.Join(root, "pages"), HomeConfig{HeroImage: "/hero.jpg"}, nil)
	ctx := context.Background()

	cs, err := p.Collections(ctx)
	require.NoError(t, err)
	assert.Empty(t, cs)

	series, err := p.SeriesList(ctx)
	require.NoError(t, err)
	assert.Empty(t, series)

	slugs, err := p.InfoPageSlugs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, slugs)
	assert.Empty(t, slugs)

	c, err := p.Contact(ctx)
	require.NoError(t, err)
	assert.True(t, c.Body.Empty())

	h, err := p.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/hero.jpg", h.HeroImageURL)
}

func TestProviderCategoryPhotos(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	photos, err := p.CategoryPhotos(ctx, "chairs")
	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, "/work/chairs/oak-chair/1.jpg", photos[0].Src)
	assert.Equal(t, "/work/chairs/pine-stool/1.jpg", photos[2].Src)

	_, err = p.CategoryPhotos(ctx, "nothing")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestProviderCategoryPhotosRequiresKnownCollection(t *testing.T) {
	p := newTestProvider(t)
	writeFiles(t, p.d.cfg.PublicDir, map[string]string{
		"work/sculpture/bust/1.jpg": "",
	})

	_, err := p.CategoryPhotos(context.Background(), "sculpture")
	assert.ErrorIs(t, err, content.ErrNotFound, "a work folder alone is not a category")
}

func TestProviderDirsIncludePages(t *testing.T) {
	p := newTestProvider(t)
	dirs := p.Dirs()
	assert.Contains(t, dirs, p.pagesDir)
	for _, d := range p.d.Dirs() {
		assert.Contains(t, dirs, d)
	}
}
