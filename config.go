package folio

import (
	"time"

	"go.uber.org/zap"

	"github.com/eringen/folio/cache"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/discover"
	"github.com/eringen/folio/sanity"
)

// Content sources.
const (
	SourceFilesystem = "filesystem"
	SourceSanity     = "sanity"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Showcase")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for the feed and meta tags
	Author      string // Author name for JSON-LD

	Addr string // Listen address (default ":3000")

	Source    string          // SourceFilesystem (default) or SourceSanity
	PublicDir string          // Served at /public and image roots (default "public")
	PagesDir  string          // Markdown pages for the filesystem source (default "content")
	Discovery discover.Config // Filesystem layout; PublicDir is filled from above
	Home      discover.HomeConfig
	Sanity    sanity.Config

	RevalidationSecret string        // Required by /api/revalidate; empty rejects every call
	CacheTTL           time.Duration // Content cache TTL (default 5min)
	RedisURL           string        // Shared cache backend; empty keeps the cache in memory
	RedisPrefix        string        // Key prefix in Redis (default "folio:")

	WatchContent    bool   // Invalidate the cache when image folders change
	ProbeDimensions bool   // Read real image sizes instead of placeholders
	DataDir         string // Dimension database and thumbnail cache (default "data")
	ThumbWidths     []int  // Allowed thumbnail widths (default media.DefaultWidths)
	GridThumbWidth  int    // Width grids request; 0 serves originals (default 640)

	AdminPassword string // Enables /admin/ when set
	SessionSecret string // Required when AdminPassword is set
	CookieSecure  bool   // Set true for HTTPS
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = content.DefaultSiteTitle
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Source == "" {
		c.Source = SourceFilesystem
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.PagesDir == "" {
		c.PagesDir = "content"
	}
	if c.Discovery.PublicDir == "" {
		c.Discovery.PublicDir = c.PublicDir
	}
	if c.Home.SiteTitle == "" {
		c.Home.SiteTitle = c.Name
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.GridThumbWidth == 0 {
		c.GridThumbWidth = 640
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default PublicDir).
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the logger used by the App and the providers it builds.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Log = l
		}
	}
}

// WithProvider replaces the provider the App would build from Source.
func WithProvider(p content.Provider) Option {
	return func(a *App) {
		a.provider = p
	}
}

// WithCacheBackend replaces the backend chosen from RedisURL.
func WithCacheBackend(b cache.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithViews overrides the default page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
