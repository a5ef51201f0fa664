package folio

import (
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// maxDescription bounds meta descriptions derived from page text.
const maxDescription = 160

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// absoluteURL resolves a site-relative src against base. Absolute URLs are
// returned unchanged.
func absoluteURL(base, src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(src, "/")
}

// imageType returns the MIME subtype for an image URL, defaulting to jpeg.
func imageType(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	switch ext := strings.ToLower(path.Ext(src)); ext {
	case ".png", ".gif", ".webp", ".avif":
		return ext[1:]
	}
	return "jpeg"
}

// FirstSentence returns the first sentence of s, cut to a meta description
// length on a word boundary.
func FirstSentence(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		s = s[:i+1]
	}
	if utf8.RuneCountInString(s) <= maxDescription {
		return s
	}
	r := []rune(s)[:maxDescription]
	cut := string(r)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
