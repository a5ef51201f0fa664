// Package folio is a photo-portfolio site engine built with Go, Echo, and templ.
// It serves collections, works galleries, info pages and a contact page from
// either a folder of images or a Sanity dataset, behind one content cache.
//
// Page markup is supplied through ViewFuncs; DefaultViews renders the stock
// templates from the views package.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/folio/cache"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/discover"
	"github.com/eringen/folio/media"
	"github.com/eringen/folio/sanity"
	"github.com/eringen/folio/views"
)

// ViewFuncs holds the templ components the App calls when rendering pages.
// Replace any of them with WithViews to own the markup.
type ViewFuncs struct {
	Home           func(p views.Page, home content.Home, collections []content.Collection) templ.Component
	Collection     func(p views.Page, c content.Collection) templ.Component
	Gallery        func(p views.Page, g content.Gallery) templ.Component
	Mosaic         func(p views.Page, title string, photos []content.Photo) templ.Component
	Info           func(p views.Page, page content.InfoPage) templ.Component
	Contact        func(p views.Page, c content.Contact) templ.Component
	AdminLogin     func(p views.Page, showError bool, csrfToken string) templ.Component
	AdminDashboard func(p views.Page, st views.AdminStatus, message, csrfToken string) templ.Component
	NotFound       func(p views.Page) templ.Component
	ServerError    func(p views.Page) templ.Component
}

// DefaultViews returns the stock templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           views.Home,
		Collection:     views.Collection,
		Gallery:        views.Gallery,
		Mosaic:         views.Mosaic,
		Info:           views.Info,
		Contact:        views.Contact,
		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
	}
}

// App is the central folio application. It wires together the content
// provider, cache, handlers, middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Content  *ContentCache
	Views    ViewFuncs
	Log      *zap.Logger
	Registry *prometheus.Registry

	provider   content.Provider
	backend    cache.Backend
	ownRedis   *cache.Redis
	discoverer *discover.Discoverer
	sanity     *sanity.Client
	dims       *media.DimensionStore
	thumbs     *media.Thumbnailer
	watcher    *discover.Watcher
	metrics    *metrics

	loginLimiter      *AttemptLimiter
	revalidateLimiter *AttemptLimiter
	customRoutes      []func(*App)
	staticDir         string
	initialized       bool
}

// New creates a folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config:    cfg,
		Echo:      e,
		Views:     DefaultViews(),
		Log:       zap.NewNop(),
		Registry:  prometheus.NewRegistry(),
		staticDir: cfg.PublicDir,
	}

	for _, opt := range opts {
		opt(a)
	}
	a.metrics = newMetrics(a.Registry)

	return a
}

func (a *App) adminEnabled() bool {
	return a.Config.AdminPassword != ""
}

// Init builds the provider, cache, middleware and routes without starting
// the server. Start calls it; tests call it directly.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if a.adminEnabled() && a.Config.SessionSecret == "" {
		return errors.New("folio: SessionSecret is required when AdminPassword is set")
	}

	if a.provider == nil {
		if err := a.buildProvider(); err != nil {
			return err
		}
	}

	if a.backend == nil {
		if a.Config.RedisURL != "" {
			r, err := cache.DialRedis(ctx, a.Config.RedisURL, a.Config.RedisPrefix)
			if err != nil {
				return fmt.Errorf("folio: init cache: %w", err)
			}
			a.backend = r
			a.ownRedis = r
		} else {
			a.backend = cache.NewMemory()
		}
	}
	a.Content = NewContentCache(a.provider, a.backend, a.Config.CacheTTL, a.Log)
	a.Content.requests = a.metrics.cacheRequests

	if a.discoverer != nil {
		thumbs, err := media.NewThumbnailer(
			a.Config.PublicDir,
			filepath.Join(a.Config.DataDir, "thumbs"),
			a.Config.ThumbWidths,
			a.Log,
		)
		if err != nil {
			return fmt.Errorf("folio: init thumbnails: %w", err)
		}
		a.thumbs = thumbs
	}

	a.loginLimiter = NewAttemptLimiter(5, time.Minute)
	a.revalidateLimiter = NewAttemptLimiter(10, time.Minute)

	if a.Config.WatchContent && a.discoverer != nil {
		dirs := a.discoverer.Dirs()
		if fp, ok := a.provider.(*discover.Provider); ok {
			dirs = fp.Dirs()
		}
		w, err := discover.NewWatcher(dirs, 500*time.Millisecond, a.onContentChange, a.Log)
		if err != nil {
			return fmt.Errorf("folio: init watcher: %w", err)
		}
		a.watcher = w
		a.watcher.Start()
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.Log.Info("content ready",
		zap.String("source", a.sourceName()),
		zap.String("cache", a.backend.Name()),
		zap.Bool("watch", a.watcher != nil),
	)
	a.initialized = true
	return nil
}

func (a *App) buildProvider() error {
	switch a.Config.Source {
	case SourceSanity:
		a.sanity = sanity.NewClient(a.Config.Sanity, a.Log)
		if !a.sanity.Configured() {
			a.Log.Warn("sanity project not configured; serving empty content")
		}
		a.provider = sanity.NewProvider(a.sanity, a.Log)
	case SourceFilesystem:
		dcfg := a.Config.Discovery
		if a.Config.ProbeDimensions {
			store, err := media.NewDimensionStore(filepath.Join(a.Config.DataDir, "dimensions.db"))
			if err != nil {
				return fmt.Errorf("folio: init dimension store: %w", err)
			}
			a.dims = store
			dcfg.Prober = store
		}
		a.discoverer = discover.New(dcfg, a.Log)
		a.provider = discover.NewProvider(a.discoverer, a.Config.PagesDir, a.Config.Home, a.Log)
	default:
		return fmt.Errorf("folio: unknown content source %q", a.Config.Source)
	}
	return nil
}

func (a *App) sourceName() string {
	switch {
	case a.sanity != nil:
		return SourceSanity
	case a.discoverer != nil:
		return SourceFilesystem
	default:
		return "custom"
	}
}

func (a *App) onContentChange() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Refresh(ctx); err != nil {
		a.Log.Warn("refresh after file change", zap.Error(err))
		return
	}
	a.Log.Info("content changed; cache flushed")
}

// Refresh drops all cached content so the next request reads the source.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.Content.Invalidate(ctx); err != nil {
		return fmt.Errorf("folio: invalidate cache: %w", err)
	}
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	a.Log.Info("listening", zap.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// imageRoots lists the public URL prefixes of the discovered image folders.
func (a *App) imageRoots() []string {
	if a.discoverer == nil {
		return nil
	}
	cfg := a.discoverer.Config()
	var roots []string
	for _, dir := range []string{cfg.CollectionsRoot, cfg.CategoriesDir, cfg.WorkDir} {
		if dir = strings.Trim(filepath.ToSlash(dir), "/"); dir != "" {
			roots = append(roots, "/"+dir)
		}
	}
	return roots
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded framework assets win over files of the same name in the
	// user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))
	for _, name := range []string{"site.js", "site.css"} {
		e.GET("/public/"+name, echo.WrapHandler(embeddedHandler))
	}

	e.Static("/public", a.staticDir)
	for _, root := range a.imageRoots() {
		e.Static(root, filepath.Join(a.Config.PublicDir, filepath.FromSlash(strings.TrimPrefix(root, "/"))))
	}
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.Registry}))

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/api/revalidate", a.handleRevalidate)
	if a.thumbs != nil {
		e.GET("/thumbs/:width/*", a.handleThumb)
	}

	e.GET("/", a.handleHome)
	e.GET("/collections/:slug/", a.handleCollection)
	e.GET("/category/:category/", a.handleCategory)
	e.GET("/works/:series/:gallery/", a.handleGallery)
	e.GET("/info/:slug/", a.handleInfo)
	e.GET("/contact/", a.handleContact)

	if a.adminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.POST("/admin/refresh/", a.handleAdminRefresh)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.revalidateLimiter != nil {
		a.revalidateLimiter.Close()
	}
	if a.dims != nil {
		errs = append(errs, a.dims.Close())
	}
	if a.ownRedis != nil {
		errs = append(errs, a.ownRedis.Close())
	}
	return errors.Join(errs...)
}
