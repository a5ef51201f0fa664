package folio

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/folio/cache"
	"github.com/eringen/folio/content"
)

// CategorySource is implemented by providers that can list every image of a
// category for the mosaic page.
type CategorySource interface {
	CategoryPhotos(ctx context.Context, slug string) ([]content.Photo, error)
}

// ContentCache memoizes a content.Provider in a cache.Backend. Values are
// stored as JSON so the same cache works in memory and in Redis. Not-found
// results and errors are never stored.
//
// Keys carry a generation that Invalidate bumps, so a fetch that started
// before an invalidation can never publish its result to later readers.
type ContentCache struct {
	p        content.Provider
	b        cache.Backend
	ttl      time.Duration
	log      *zap.Logger
	requests *prometheus.CounterVec // op, result; may be nil
	gen      atomic.Uint64
}

var (
	_ content.Provider = (*ContentCache)(nil)
	_ CategorySource   = (*ContentCache)(nil)
)

// NewContentCache wraps p. A nil backend uses an in-memory one.
func NewContentCache(p content.Provider, b cache.Backend, ttl time.Duration, logger *zap.Logger) *ContentCache {
	if b == nil {
		b = cache.NewMemory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentCache{p: p, b: b, ttl: ttl, log: logger.Named("content-cache")}
}

// Provider returns the wrapped provider.
func (c *ContentCache) Provider() content.Provider {
	return c.p
}

// Backend returns the cache backend.
func (c *ContentCache) Backend() cache.Backend {
	return c.b
}

// Invalidate drops every cached value so the next read refetches. Reads
// already in flight finish but their results are not stored.
func (c *ContentCache) Invalidate(ctx context.Context) error {
	c.gen.Add(1)
	return c.b.Flush(ctx)
}

func (c *ContentCache) key(gen uint64, key string) string {
	return "g" + strconv.FormatUint(gen, 10) + ":" + key
}

func (c *ContentCache) observe(op, result string) {
	if c.requests != nil {
		c.requests.WithLabelValues(op, result).Inc()
	}
}

// cached returns the value under key, calling fetch on a miss. Backend
// failures are logged and fall through to the provider.
func cached[T any](ctx context.Context, c *ContentCache, op, name string, fetch func(context.Context) (T, error)) (T, error) {
	gen := c.gen.Load()
	key := c.key(gen, name)
	if raw, ok, err := c.b.Get(ctx, key); err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.observe(op, "hit")
			return v, nil
		}
		c.log.Warn("cache entry undecodable", zap.String("key", key))
	}

	c.observe(op, "miss")
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if c.gen.Load() != gen {
		c.observe(op, "stale")
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := c.b.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// Collections implements content.Provider.
func (c *ContentCache) Collections(ctx context.Context) ([]content.Collection, error) {
	return cached(ctx, c, "collections", "collections", c.p.Collections)
}

// Collection implements content.Provider.
func (c *ContentCache) Collection(ctx context.Context, slug string) (content.Collection, error) {
	return cached(ctx, c, "collection", "collection:"+slug, func(ctx context.Context) (content.Collection, error) {
		return c.p.Collection(ctx, slug)
	})
}

// SeriesList implements content.Provider.
func (c *ContentCache) SeriesList(ctx context.Context) ([]content.SeriesLink, error) {
	return cached(ctx, c, "series", "series", c.p.SeriesList)
}

// Gallery implements content.Provider.
func (c *ContentCache) Gallery(ctx context.Context, series, gallery string) (content.Gallery, error) {
	return cached(ctx, c, "gallery", "gallery:"+series+"/"+gallery, func(ctx context.Context) (content.Gallery, error) {
		return c.p.Gallery(ctx, series, gallery)
	})
}

// InfoPage implements content.Provider.
func (c *ContentCache) InfoPage(ctx context.Context, slug string) (content.InfoPage, error) {
	return cached(ctx, c, "info", "info:"+slug, func(ctx context.Context) (content.InfoPage, error) {
		return c.p.InfoPage(ctx, slug)
	})
}

// InfoPageSlugs implements content.Provider.
func (c *ContentCache) InfoPageSlugs(ctx context.Context) ([]string, error) {
	return cached(ctx, c, "info-slugs", "info-slugs", c.p.InfoPageSlugs)
}

// Contact implements content.Provider.
func (c *ContentCache) Contact(ctx context.Context) (content.Contact, error) {
	return cached(ctx, c, "contact", "contact", c.p.Contact)
}

// Home implements content.Provider.
func (c *ContentCache) Home(ctx context.Context) (content.Home, error) {
	return cached(ctx, c, "home", "home", c.p.Home)
}

// CategoryPhotos lists a category's images. Providers without a category
// notion fall back to the photos of the collection with the same slug.
func (c *ContentCache) CategoryPhotos(ctx context.Context, slug string) ([]content.Photo, error) {
	return cached(ctx, c, "category", "category:"+slug, func(ctx context.Context) ([]content.Photo, error) {
		if src, ok := c.p.(CategorySource); ok {
			return src.CategoryPhotos(ctx, slug)
		}
		col, err := c.p.Collection(ctx, slug)
		if errors.Is(err, content.ErrNotFound) {
			return nil, content.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return col.Photos, nil
	})
}
