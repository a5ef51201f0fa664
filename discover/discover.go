// Package discover derives portfolio content from folders of images under a
// public directory.
//
// Two layouts are understood. In collection mode every subdirectory of the
// collections root is a collection. In category mode a fixed list of category
// slugs is matched against cover images in a flat categories directory, and
// the photos of each category come from project folders under work/.
package discover

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/folio/content"
)

// Mode selects how collections are enumerated.
type Mode string

const (
	ModeCollections Mode = "collections"
	ModeCategories  Mode = "categories"
)

// TitleMode selects how a collection title is derived.
type TitleMode int

const (
	// TitleFolder uses the folder name verbatim.
	TitleFolder TitleMode = iota
	// TitleLookup uses Config.Titles, then content.TitleFromSlug.
	TitleLookup
)

var (
	collectionExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif"}
	categoryExtensions   = []string{".png", ".jpg", ".jpeg", ".webp", ".gif"}
)

// Prober reports the real pixel dimensions of an image file.
type Prober interface {
	Dimensions(path string) (width, height int, err error)
}

// Config controls where and how content is discovered.
type Config struct {
	PublicDir       string // directory served at "/" (default "public")
	CollectionsRoot string // collection folders, relative to PublicDir (default "Pictures")
	CategoriesDir   string // flat category covers, relative to PublicDir (default "categories")
	WorkDir         string // work/<category>/<project>, relative to PublicDir (default "work")

	Mode         Mode
	TitleMode    TitleMode
	Titles       map[string]string // slug -> display title, used by TitleLookup
	DisplayOrder []string          // preferred collection order by slug
	Extensions   []string          // overrides the mode's extension allow-list

	// Prober, when set, replaces placeholder dimensions with real ones.
	Prober Prober
}

func (c *Config) setDefaults() {
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.CollectionsRoot == "" {
		c.CollectionsRoot = "Pictures"
	}
	if c.CategoriesDir == "" {
		c.CategoriesDir = "categories"
	}
	if c.WorkDir == "" {
		c.WorkDir = "work"
	}
	if c.Mode == "" {
		c.Mode = ModeCollections
	}
	if len(c.Extensions) == 0 {
		if c.Mode == ModeCategories {
			c.Extensions = categoryExtensions
		} else {
			c.Extensions = collectionExtensions
		}
	}
}

// DefaultCollectionsConfig mirrors the Pictures folder layout.
func DefaultCollectionsConfig() Config {
	return Config{
		Mode:         ModeCollections,
		TitleMode:    TitleFolder,
		DisplayOrder: []string{"chairs", "paintings", "interior-design"},
	}
}

// DefaultCategoriesConfig mirrors the categories + work layout.
func DefaultCategoriesConfig() Config {
	return Config{
		Mode:         ModeCategories,
		TitleMode:    TitleLookup,
		DisplayOrder: []string{"design", "chairs", "paintings"},
		Titles: map[string]string{
			"design":    "Design",
			"chairs":    "Chairs",
			"paintings": "Paintings",
		},
	}
}

// Discoverer enumerates collections, works and photos. It holds no state
// between calls; every call re-reads the filesystem.
type Discoverer struct {
	cfg  Config
	exts map[string]bool
	log  *zap.Logger
}

// New returns a Discoverer for cfg. A nil logger is replaced with a no-op one.
func New(cfg Config, logger *zap.Logger) *Discoverer {
	cfg.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[strings.ToLower(e)] = true
	}
	return &Discoverer{cfg: cfg, exts: exts, log: logger.Named("discover")}
}

// Config returns the effective configuration.
func (d *Discoverer) Config() Config {
	return d.cfg
}

// Dirs returns the directories whose contents feed discovery.
func (d *Discoverer) Dirs() []string {
	if d.cfg.Mode == ModeCategories {
		return []string{d.dir(d.cfg.CategoriesDir), d.dir(d.cfg.WorkDir)}
	}
	return []string{d.dir(d.cfg.CollectionsRoot), d.dir(d.cfg.WorkDir)}
}

func (d *Discoverer) dir(rel string) string {
	return filepath.Join(d.cfg.PublicDir, filepath.FromSlash(rel))
}

// urlPrefix is the public URL path of a directory relative to PublicDir.
func urlPrefix(rel string) string {
	return "/" + strings.Trim(path.Clean(filepath.ToSlash(rel)), "/")
}

// IsImage reports whether name has an allowed image extension.
func (d *Discoverer) IsImage(name string) bool {
	return d.exts[strings.ToLower(filepath.Ext(name))]
}

// listImages returns the image files directly inside dir in natural order.
// A missing or unreadable directory yields nil.
func (d *Discoverer) listImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			d.log.Warn("read image dir", zap.String("dir", dir), zap.Error(err))
		}
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !d.IsImage(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	content.SortNatural(files)
	return files
}

// subdirs returns the immediate subdirectories of dir in natural order.
func (d *Discoverer) subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			d.log.Warn("read dir", zap.String("dir", dir), zap.Error(err))
		}
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	content.SortNatural(dirs)
	return dirs
}

// photo builds a Photo for file, probing its size when possible.
func (d *Discoverer) photo(file, src string, width, height int) content.Photo {
	if d.cfg.Prober != nil {
		w, h, err := d.cfg.Prober.Dimensions(file)
		if err == nil && w > 0 && h > 0 {
			width, height = w, h
		} else if err != nil {
			d.log.Debug("probe dimensions", zap.String("path", file), zap.Error(err))
		}
	}
	return content.Photo{Src: src, Width: width, Height: height}
}

func (d *Discoverer) title(slug, folder string) string {
	if d.cfg.TitleMode == TitleFolder {
		return folder
	}
	if t, ok := d.cfg.Titles[slug]; ok && t != "" {
		return t
	}
	return content.TitleFromSlug(slug)
}

func (d *Discoverer) rank(slug string) int {
	for i, s := range d.cfg.DisplayOrder {
		if s == slug {
			return i
		}
	}
	// Unlisted slugs go after the listed ones, not before them.
	return len(d.cfg.DisplayOrder)
}

// sortBySlug orders items by preferred display order, then ascending slug.
func sortBySlug[T any](d *Discoverer, items []T, slug func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := slug(items[i]), slug(items[j])
		ra, rb := d.rank(a), d.rank(b)
		if ra != rb {
			return ra < rb
		}
		return a < b
	})
}
