package content

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Slugify lower-cases s, collapses each whitespace run into a single hyphen
// and drops every character outside [a-z0-9-]. It is idempotent.
func Slugify(s string) string {
	var sb strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// TitleFromSlug turns "oak-chair" into "Oak Chair".
func TitleFromSlug(slug string) string {
	s := strings.ReplaceAll(slug, "-", " ")
	out := []rune(s)
	prevWord := false
	for i, r := range out {
		word := isWordRune(r)
		if word && !prevWord {
			out[i] = unicode.ToUpper(r)
		}
		prevWord = word
	}
	return string(out)
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// BaseName returns the file name without directory or extension.
func BaseName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// SortNatural sorts names in place with a locale-aware collator that compares
// digit runs numerically, so "img2" sorts before "img10".
func SortNatural(names []string) {
	// collators are not safe for concurrent use
	c := collate.New(language.English, collate.Numeric)
	c.SortStrings(names)
}

// JoinURL joins prefix with path segments, percent-encoding every segment
// independently. A segment containing "/" is split first so the separators
// are kept and never double-encoded.
func JoinURL(prefix string, segments ...string) string {
	var parts []string
	for _, seg := range segments {
		for _, p := range strings.Split(seg, "/") {
			if p == "" {
				continue
			}
			parts = append(parts, url.PathEscape(p))
		}
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if len(parts) == 0 {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + "/" + strings.Join(parts, "/")
}
