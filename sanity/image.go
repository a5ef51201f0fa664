package sanity

import (
	"fmt"
	"strconv"
	"strings"
)

// ImageRef is a parsed image asset reference of the form
// "image-<id>-<width>x<height>-<format>".
type ImageRef struct {
	ID     string
	Width  int
	Height int
	Format string
}

// ParseImageRef parses an asset reference or asset document id.
func ParseImageRef(ref string) (ImageRef, bool) {
	rest, ok := strings.CutPrefix(ref, "image-")
	if !ok {
		return ImageRef{}, false
	}
	parts := strings.Split(rest, "-")
	if len(parts) < 3 {
		return ImageRef{}, false
	}
	format := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	id := strings.Join(parts[:len(parts)-2], "-")

	ws, hs, ok := strings.Cut(dims, "x")
	if !ok || id == "" || format == "" {
		return ImageRef{}, false
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return ImageRef{}, false
	}
	return ImageRef{ID: id, Width: w, Height: h, Format: format}, true
}

// imageURL returns the CDN URL of ref sized to width x height. A zero size
// is omitted from the query. An unresolvable reference yields "".
func imageURL(base, projectID, dataset, ref string, width, height int) string {
	r, ok := ParseImageRef(ref)
	if !ok || projectID == "" || dataset == "" {
		return ""
	}
	u := fmt.Sprintf("%s/images/%s/%s/%s-%dx%d.%s",
		strings.TrimSuffix(base, "/"), projectID, dataset, r.ID, r.Width, r.Height, r.Format)
	var q []string
	if width > 0 {
		q = append(q, "w="+strconv.Itoa(width))
	}
	if height > 0 {
		q = append(q, "h="+strconv.Itoa(height))
	}
	if len(q) > 0 {
		u += "?" + strings.Join(q, "&")
	}
	return u
}
