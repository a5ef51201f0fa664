package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

// Layout wraps body in the document shell: head metadata, header navigation
// and the site script.
func Layout(p Page, body templ.Component) templ.Component {
	return component(func(ctx context.Context, w *writer) error {
		title := p.Nav.SiteTitle
		if title == "" {
			title = p.Site.Name
		}
		docTitle := title
		if p.Meta.Title != "" && p.Meta.Title != title {
			docTitle = p.Meta.Title + " | " + title
		}
		ogType := p.Meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		ld := p.Meta.JSONLD
		if ld == "" {
			ld = WebsiteJsonLD(p.Site)
		}

		w.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<title>`)
		w.text(docTitle)
		w.raw(`</title>`)
		if p.Meta.Description != "" {
			w.raw(`<meta name="description"`)
			w.attr("content", p.Meta.Description)
			w.raw(`>`)
		}
		if p.Meta.URL != "" {
			w.raw(`<link rel="canonical"`)
			w.attr("href", p.Meta.URL)
			w.raw(`><meta property="og:url"`)
			w.attr("content", p.Meta.URL)
			w.raw(`>`)
		}
		w.raw(`<meta property="og:title"`)
		w.attr("content", docTitle)
		w.raw(`><meta property="og:type"`)
		w.attr("content", ogType)
		w.raw(`>`)
		if p.Meta.Image != "" {
			w.raw(`<meta property="og:image"`)
			w.attr("content", absURL(p.Site.URL, p.Meta.Image))
			w.raw(`>`)
		}
		w.raw(`<link rel="icon" href="/favicon.svg" type="image/svg+xml">`)
		w.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		w.attr("title", title)
		w.raw(`><link rel="stylesheet" href="/public/site.css">`)
		w.raw(`<script type="application/ld+json">`, ld, `</script>`)
		w.raw(`</head><body>`)

		writeHeader(w, title, p.Nav)

		w.raw(`<main id="main">`)
		if err := w.child(ctx, body); err != nil {
			return err
		}
		w.raw(`</main><footer class="site-footer"><p>&copy; `)
		w.text(title)
		w.raw(`</p></footer><script src="/public/site.js" defer></script></body></html>`)
		return nil
	})
}

func writeHeader(w *writer, title string, nav Nav) {
	w.raw(`<header class="site-header"><a class="brand" href="/">`)
	w.text(title)
	w.raw(`</a>`)
	w.raw(`<button class="nav-toggle" type="button" data-drawer-toggle aria-controls="site-nav" aria-expanded="false">Menu</button>`)
	w.raw(`<nav id="site-nav" class="site-nav" data-drawer data-state="closed">`)

	if len(nav.Series) > 0 {
		w.raw(`<div class="dropdown" data-dropdown data-state="closed">`)
		w.raw(`<button type="button" class="dropdown-toggle" data-dropdown-toggle aria-expanded="false">Works</button>`)
		w.raw(`<div class="dropdown-panel" data-dropdown-panel hidden>`)
		for _, s := range nav.Series {
			if len(s.Galleries) == 0 {
				continue
			}
			w.raw(`<p class="dropdown-group">`)
			w.text(s.Title)
			w.raw(`</p><ul>`)
			for _, g := range s.Galleries {
				w.raw(`<li><a`)
				w.attr("href", g.Href())
				if g.Href() == nav.Active {
					w.raw(` aria-current="page"`)
				}
				w.raw(`>`)
				w.text(g.Title)
				w.raw(` <span class="count">(`, strconv.Itoa(g.ImageCount), `)</span></a></li>`)
			}
			w.raw(`</ul>`)
		}
		w.raw(`</div></div>`)
	}

	if len(nav.Info) > 0 {
		w.raw(`<div class="dropdown" data-dropdown data-state="closed">`)
		w.raw(`<button type="button" class="dropdown-toggle" data-dropdown-toggle aria-expanded="false">Info</button>`)
		w.raw(`<div class="dropdown-panel" data-dropdown-panel hidden><ul>`)
		for _, l := range nav.Info {
			w.raw(`<li><a`)
			w.attr("href", l.Href())
			if l.Href() == nav.Active {
				w.raw(` aria-current="page"`)
			}
			w.raw(`>`)
			w.text(l.Title)
			w.raw(`</a></li>`)
		}
		w.raw(`</ul></div></div>`)
	}

	w.raw(`<a class="nav-link" href="/contact/"`)
	if nav.Active == "/contact/" {
		w.raw(` aria-current="page"`)
	}
	w.raw(`>Contact</a></nav></header>`)
}
