package views

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/media"
)

// writer accumulates escaped HTML for a component.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) raw(parts ...string) {
	for _, p := range parts {
		w.buf.WriteString(p)
	}
}

func (w *writer) text(s string) {
	w.buf.WriteString(html.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (w *writer) attr(name, value string) {
	w.buf.WriteByte(' ')
	w.buf.WriteString(name)
	w.buf.WriteString(`="`)
	w.buf.WriteString(html.EscapeString(value))
	w.buf.WriteByte('"')
}

func (w *writer) child(ctx context.Context, c templ.Component) error {
	if c == nil {
		return nil
	}
	return c.Render(ctx, &w.buf)
}

// component buffers fn's output so a failing render writes nothing.
func component(fn func(ctx context.Context, w *writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		var w writer
		if err := fn(ctx, &w); err != nil {
			return err
		}
		_, err := out.Write(w.buf.Bytes())
		return err
	})
}

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// absURL resolves a site-relative src against the site URL. Absolute URLs
// are returned unchanged.
func absURL(base, src string) string {
	if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(src, "/")
}

// ImageSrc returns the URL a grid should load for ph. Local images in a
// decodable format go through the thumbnail endpoint when a width is set;
// remote URLs and other formats (avif) are left alone.
func ImageSrc(ph content.Photo, thumbWidth int) string {
	if thumbWidth <= 0 || !strings.HasPrefix(ph.Src, "/") || strings.HasPrefix(ph.Src, "//") {
		return ph.Src
	}
	if !media.Resizable(strings.SplitN(ph.Src, "?", 2)[0]) {
		return ph.Src
	}
	return "/thumbs/" + strconv.Itoa(thumbWidth) + ph.Src
}

// HeroClass returns the CSS class for a hero margin preset.
func HeroClass(m content.HeroMargin) string {
	return "hero hero--" + string(content.ParseHeroMargin(string(m)))
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalLD(data)
}

// GalleryJsonLD produces a Schema.org ImageGallery JSON-LD block.
func GalleryJsonLD(cfg SiteConfig, pageURL, title string, photos []content.Photo) string {
	images := make([]map[string]interface{}, 0, len(photos))
	for _, ph := range photos {
		images = append(images, map[string]interface{}{
			"@type":      "ImageObject",
			"contentUrl": absURL(cfg.URL, ph.Src),
			"name":       ph.Title,
			"width":      ph.Width,
			"height":     ph.Height,
		})
	}
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "ImageGallery",
		"name":     title,
		"url":      pageURL,
		"image":    images,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalLD(data)
}

func marshalLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
