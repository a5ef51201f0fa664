package discover

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/eringen/folio/content"
)

// MetaFile is the optional sidecar inside a project folder.
const MetaFile = "project.json"

// ProjectMeta is the decoded sidecar. Every field is optional.
type ProjectMeta struct {
	Title   string   `json:"title"`
	Year    yearText `json:"year"`
	Caption string   `json:"caption"`
}

// yearText accepts both "2020" and 2020.
type yearText string

func (y *yearText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*y = yearText(s)
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("year: %w", err)
	}
	*y = yearText(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// Work is one project folder under work/<category>/.
type Work struct {
	Slug     string
	Folder   string
	Title    string
	Year     string
	Caption  string
	Category string // category folder name
	Photos   []content.Photo
}

// readProjectMeta reads dir/project.json. A missing or malformed file yields
// ok == false and is never an error.
func (d *Discoverer) readProjectMeta(dir string) (ProjectMeta, bool) {
	var meta ProjectMeta
	path := filepath.Join(dir, MetaFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.log.Debug("read project meta", zap.String("path", path), zap.Error(err))
		}
		return meta, false
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		d.log.Debug("malformed project meta", zap.String("path", path), zap.Error(err))
		return ProjectMeta{}, false
	}
	return meta, true
}

// project lists one project folder. ok is false when it holds no images.
func (d *Discoverer) project(category, folder string) (Work, bool) {
	dir := filepath.Join(d.dir(d.cfg.WorkDir), category, folder)
	files := d.listImages(dir)
	if len(files) == 0 {
		return Work{}, false
	}

	meta, hasMeta := d.readProjectMeta(dir)
	label := content.TitleFromSlug(folder)
	if hasMeta && meta.Title != "" {
		label = meta.Title
	}

	prefix := urlPrefix(d.cfg.WorkDir)
	photos := make([]content.Photo, 0, len(files))
	for i, f := range files {
		p := d.photo(filepath.Join(dir, f), content.JoinURL(prefix, category, folder, f),
			content.WorkWidth, content.WorkHeight)
		p.Alt = fmt.Sprintf("%s - Image %d", label, i+1)
		p.Title = content.BaseName(f)
		p.Collection = category
		photos = append(photos, p)
	}

	return Work{
		Slug:     content.Slugify(folder),
		Folder:   folder,
		Title:    label,
		Year:     string(meta.Year),
		Caption:  meta.Caption,
		Category: category,
		Photos:   photos,
	}, true
}

// Works returns every non-empty project, grouped by category folder in
// natural order.
func (d *Discoverer) Works() []Work {
	root := d.dir(d.cfg.WorkDir)
	var works []Work
	for _, category := range d.subdirs(root) {
		works = append(works, d.categoryWorks(category)...)
	}
	return works
}

func (d *Discoverer) categoryWorks(category string) []Work {
	var works []Work
	seen := make(map[string]bool)
	for _, folder := range d.subdirs(filepath.Join(d.dir(d.cfg.WorkDir), category)) {
		w, ok := d.project(category, folder)
		if !ok {
			continue
		}
		if w.Slug == "" || seen[w.Slug] {
			d.log.Warn("skipping project with duplicate or empty slug",
				zap.String("category", category), zap.String("folder", folder))
			continue
		}
		seen[w.Slug] = true
		works = append(works, w)
	}
	return works
}

// categoryFolder resolves a category slug to its folder under work/.
func (d *Discoverer) categoryFolder(slug string) (string, bool) {
	for _, folder := range d.subdirs(d.dir(d.cfg.WorkDir)) {
		if folder == slug || content.Slugify(folder) == slug {
			return folder, true
		}
	}
	return "", false
}

// CategoryImages flattens the images of every project in a category, projects
// in natural order. An unknown category yields nil.
func (d *Discoverer) CategoryImages(slug string) []content.Photo {
	folder, ok := d.categoryFolder(slug)
	if !ok {
		return nil
	}
	var photos []content.Photo
	for _, w := range d.categoryWorks(folder) {
		photos = append(photos, w.Photos...)
	}
	return photos
}
