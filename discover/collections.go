package discover

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/folio/content"
)

// Collections returns every non-empty collection in display order. In
// category mode it returns Categories. A missing root yields an empty list.
func (d *Discoverer) Collections() []content.Collection {
	if d.cfg.Mode == ModeCategories {
		return d.Categories()
	}

	root := d.dir(d.cfg.CollectionsRoot)
	prefix := urlPrefix(d.cfg.CollectionsRoot)
	seen := make(map[string]string)
	var out []content.Collection

	for _, folder := range d.subdirs(root) {
		files := d.listImages(filepath.Join(root, folder))
		if len(files) == 0 {
			continue
		}
		slug := content.Slugify(folder)
		if slug == "" {
			d.log.Warn("folder has no usable slug", zap.String("folder", folder))
			continue
		}
		if kept, dup := seen[slug]; dup {
			d.log.Warn("slug collision, skipping folder",
				zap.String("slug", slug),
				zap.String("kept", kept),
				zap.String("skipped", folder),
			)
			continue
		}
		seen[slug] = folder

		photos := make([]content.Photo, 0, len(files))
		for _, f := range files {
			p := d.photo(filepath.Join(root, folder, f), content.JoinURL(prefix, folder, f),
				content.DefaultWidth, content.DefaultHeight)
			name := content.BaseName(f)
			p.Alt = name
			p.Title = name
			p.Collection = folder
			photos = append(photos, p)
		}
		out = append(out, content.Collection{
			Slug:   slug,
			Title:  d.title(slug, folder),
			Cover:  photos[0],
			Photos: photos,
		})
	}

	sortBySlug(d, out, func(c content.Collection) string { return c.Slug })
	return out
}

// Categories returns one collection per category slug that has a cover image
// in the categories directory. The slugs come from DisplayOrder, or from the
// folders under the work directory when no order is configured. A category's
// photos are its work images; when it has none the cover stands in, so no
// category is ever surfaced empty.
func (d *Discoverer) Categories() []content.Collection {
	coverDir := d.dir(d.cfg.CategoriesDir)
	covers := d.listImages(coverDir)
	if len(covers) == 0 {
		return nil
	}

	slugs := d.cfg.DisplayOrder
	if len(slugs) == 0 {
		for _, folder := range d.subdirs(d.dir(d.cfg.WorkDir)) {
			if s := content.Slugify(folder); s != "" {
				slugs = append(slugs, s)
			}
		}
	}

	prefix := urlPrefix(d.cfg.CategoriesDir)
	var out []content.Collection
	for _, slug := range slugs {
		file, ok := pickCover(covers, slug)
		if !ok {
			continue
		}
		title := d.title(slug, slug)
		cover := d.photo(filepath.Join(coverDir, file), content.JoinURL(prefix, file),
			content.WorkWidth, content.WorkHeight)
		cover.Alt = title
		cover.Title = title
		cover.Collection = slug

		photos := d.CategoryImages(slug)
		if len(photos) == 0 {
			photos = []content.Photo{cover}
		}
		out = append(out, content.Collection{Slug: slug, Title: title, Cover: cover, Photos: photos})
	}

	sortBySlug(d, out, func(c content.Collection) string { return c.Slug })
	return out
}

// pickCover chooses the cover for slug: the file whose base name equals the
// slug (case-insensitive), else the first whose name starts with it, else the
// first file overall.
func pickCover(files []string, slug string) (string, bool) {
	if len(files) == 0 {
		return "", false
	}
	slug = strings.ToLower(slug)
	for _, f := range files {
		if strings.ToLower(content.BaseName(f)) == slug {
			return f, true
		}
	}
	for _, f := range files {
		if strings.HasPrefix(strings.ToLower(f), slug) {
			return f, true
		}
	}
	return files[0], true
}
