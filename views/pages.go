package views

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/richtext"
)

// maxRotation caps how many images a home tile cycles through.
const maxRotation = 6

// Home renders the hero, intro copy and the collection grid.
func Home(p Page, home content.Home, collections []content.Collection) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		if home.HeroImageURL != "" {
			w.raw(`<section`)
			w.attr("class", HeroClass(home.HeroMargin))
			w.raw(`><img`)
			w.attr("src", home.HeroImageURL)
			w.attr("alt", home.SiteTitle)
			w.raw(` fetchpriority="high"></section>`)
		}
		if !home.Intro.Empty() {
			w.raw(`<section class="intro">`)
			if err := w.child(ctx, richtext.Render(home.Intro)); err != nil {
				return err
			}
			w.raw(`</section>`)
		}
		if len(collections) == 0 {
			w.raw(`<p class="empty">No collections yet. Add a folder of images to get started.</p>`)
			return nil
		}
		w.raw(`<ul class="collection-grid">`)
		for i, c := range collections {
			srcs := rotation(c, p.ThumbWidth)
			w.raw(`<li><a class="tile"`)
			w.attr("href", "/collections/"+c.Slug+"/")
			if len(srcs) > 1 {
				b, _ := json.Marshal(srcs)
				w.raw(` data-crossfade`)
				w.attr("data-index", strconv.Itoa(i))
				w.attr("data-srcs", string(b))
			}
			w.raw(`><img`)
			w.attr("src", srcs[0])
			w.attr("alt", c.Cover.Alt)
			writeDims(w, c.Cover)
			w.raw(` loading="lazy"><span class="tile-title">`)
			w.text(c.Title)
			w.raw(`</span></a></li>`)
		}
		w.raw(`</ul>`)
		return nil
	}))
}

// rotation lists the cover followed by the collection's other photos.
func rotation(c content.Collection, thumbWidth int) []string {
	srcs := []string{ImageSrc(c.Cover, thumbWidth)}
	for _, ph := range c.Photos {
		if len(srcs) == maxRotation {
			break
		}
		if ph.Src == c.Cover.Src {
			continue
		}
		srcs = append(srcs, ImageSrc(ph, thumbWidth))
	}
	return srcs
}

// Collection renders every photo of a collection in a lightbox grid.
func Collection(p Page, c content.Collection) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<section class="collection"><h1>`)
		w.text(c.Title)
		w.raw(`</h1>`)
		writePhotoGrid(w, c.Photos, p.ThumbWidth)
		w.raw(`</section>`)
		return nil
	}))
}

// Gallery renders a works gallery: heading, layout blocks, photo grid and
// links to the other galleries.
func Gallery(p Page, g content.Gallery) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<article class="gallery"><header>`)
		if g.SeriesTitle != "" {
			w.raw(`<p class="series">`)
			w.text(g.SeriesTitle)
			w.raw(`</p>`)
		}
		w.raw(`<h1>`)
		w.text(g.Title)
		w.raw(`</h1>`)
		if g.Year != "" {
			w.raw(`<p class="year">`)
			w.text(g.Year)
			w.raw(`</p>`)
		}
		if g.Caption != "" {
			w.raw(`<p class="caption">`)
			w.text(g.Caption)
			w.raw(`</p>`)
		}
		w.raw(`</header>`)

		for _, b := range g.LayoutBlocks {
			switch b.Kind {
			case content.LayoutText:
				w.raw(`<div class="layout-text">`)
				if err := w.child(ctx, richtext.Render(b.Body)); err != nil {
					return err
				}
				w.raw(`</div>`)
			case content.LayoutImage:
				w.raw(`<figure class="layout-image"><img`)
				w.attr("src", b.Image.Src)
				w.attr("alt", b.Image.Alt)
				writeDims(w, b.Image)
				w.raw(` loading="lazy">`)
				if b.Caption != "" {
					w.raw(`<figcaption>`)
					w.text(b.Caption)
					w.raw(`</figcaption>`)
				}
				w.raw(`</figure>`)
			}
		}

		writePhotoGrid(w, g.Photos, p.ThumbWidth)

		if len(g.OtherGalleries) > 0 {
			w.raw(`<nav class="other-galleries"><h2>Other galleries</h2><ul>`)
			for _, o := range g.OtherGalleries {
				w.raw(`<li><a`)
				w.attr("href", o.Href())
				w.raw(`>`)
				w.text(o.Title)
				w.raw(`</a></li>`)
			}
			w.raw(`</ul></nav>`)
		}
		w.raw(`</article>`)
		return nil
	}))
}

// Mosaic renders a flat wall of images for a category.
func Mosaic(p Page, title string, photos []content.Photo) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<section class="mosaic-page"><h1>`)
		w.text(title)
		w.raw(`</h1>`)
		if len(photos) == 0 {
			w.raw(`<p class="empty">Nothing here yet.</p></section>`)
			return nil
		}
		w.raw(`<div class="mosaic" data-lightbox>`)
		for i, ph := range photos {
			writeLightboxItem(w, ph, i, p.ThumbWidth)
		}
		w.raw(`</div></section>`)
		return nil
	}))
}

// Info renders a free-form info page.
func Info(p Page, page content.InfoPage) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<article class="info"><h1>`)
		w.text(page.Title)
		w.raw(`</h1>`)
		if err := w.child(ctx, richtext.Render(page.Body)); err != nil {
			return err
		}
		w.raw(`</article>`)
		return nil
	}))
}

// Contact renders the contact document, or a placeholder when it is empty.
func Contact(p Page, c content.Contact) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<article class="contact"><h1>Contact</h1>`)
		if c.Body.Empty() {
			w.raw(`<p class="empty">Contact details are not available yet.</p></article>`)
			return nil
		}
		if err := w.child(ctx, richtext.Render(c.Body)); err != nil {
			return err
		}
		w.raw(`</article>`)
		return nil
	}))
}

func NotFound(p Page) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<section class="error-page"><h1>Not found</h1><p>The page you are looking for does not exist.</p><p><a href="/">Back to the start</a></p></section>`)
		return nil
	}))
}

func ServerError(p Page) templ.Component {
	return Layout(p, component(func(ctx context.Context, w *writer) error {
		w.raw(`<section class="error-page"><h1>Something went wrong</h1><p>Please try again in a moment.</p></section>`)
		return nil
	}))
}

func writePhotoGrid(w *writer, photos []content.Photo, thumbWidth int) {
	if len(photos) == 0 {
		w.raw(`<p class="empty">No images yet.</p>`)
		return
	}
	w.raw(`<div class="photo-grid" data-lightbox>`)
	for i, ph := range photos {
		writeLightboxItem(w, ph, i, thumbWidth)
	}
	w.raw(`</div>`)
}

// writeLightboxItem links the thumbnail to the full image so the grid works
// without the script.
func writeLightboxItem(w *writer, ph content.Photo, index, thumbWidth int) {
	w.raw(`<a class="photo"`)
	w.attr("href", ph.Src)
	w.attr("data-lightbox-index", strconv.Itoa(index))
	if ph.Title != "" {
		w.attr("data-title", ph.Title)
	}
	w.raw(`><img`)
	w.attr("src", ImageSrc(ph, thumbWidth))
	w.attr("alt", ph.Alt)
	writeDims(w, ph)
	w.raw(` loading="lazy"></a>`)
}

func writeDims(w *writer, ph content.Photo) {
	if ph.Width > 0 && ph.Height > 0 {
		w.attr("width", strconv.Itoa(ph.Width))
		w.attr("height", strconv.Itoa(ph.Height))
	}
}
