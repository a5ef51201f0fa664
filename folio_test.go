package folio

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/cache"
	"github.com/eringen/folio/discover"
)

const testSecret = "s3cret"

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

// newTestApp builds an initialized filesystem-backed App over a temp site.
func newTestApp(t *testing.T, mutate func(*SiteConfig), opts ...Option) *App {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"public/Pictures/Chairs/1.jpg":              "jpeg-bytes",
		"public/Pictures/Chairs/2.jpg":              "jpeg-bytes",
		"public/Pictures/empty/.keep":               "",
		"public/work/chairs/oak-chair/project.json": `{"title":"Oak Chair","year":"2020"}`,
		"public/work/chairs/oak-chair/1.jpg":        "jpeg-bytes",
		"pages/about.md":                            "# About\n\nWe make chairs.",
		"pages/contact.md":                          "Write to hi@example.com.",
	})
	writePNG(t, filepath.Join(root, "public/Pictures/Chairs/3.png"), 1000, 500)

	cfg := SiteConfig{
		Name:               "Studio",
		URL:                "https://studio.example",
		PublicDir:          filepath.Join(root, "public"),
		PagesDir:           filepath.Join(root, "pages"),
		DataDir:            filepath.Join(root, "data"),
		Discovery:          discover.DefaultCollectionsConfig(),
		RevalidationSecret: testSecret,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	a := New(cfg, opts...)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func do(a *App, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHomePage(t *testing.T) {
	a := newTestApp(t, nil)
	rec := do(a, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/collections/chairs/"`)
	assert.Contains(t, body, "Oak Chair")
	assert.Contains(t, body, `href="/info/about/">About</a>`)
	assert.NotContains(t, body, "/collections/empty/")
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCollectionPages(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(a, http.MethodGet, "/collections/chairs/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/Pictures/Chairs/1.jpg"`)
	assert.Contains(t, rec.Body.String(), `"@type":"ImageGallery"`)

	for _, path := range []string{"/collections/missing/", "/collections/empty/"} {
		rec = do(a, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Not found", path)
	}

	rec = do(a, http.MethodGet, "/collections/chairs", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
}

func TestGalleryPages(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(a, http.MethodGet, "/works/chairs/oak-chair/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Oak Chair - Image 1")
	assert.Contains(t, rec.Body.String(), `<p class="year">2020</p>`)

	rec = do(a, http.MethodGet, "/works/chairs/nope/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryMosaic(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(a, http.MethodGet, "/category/chairs/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/work/chairs/oak-chair/1.jpg"`)

	rec = do(a, http.MethodGet, "/category/nothing/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInfoAndContactPages(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(a, http.MethodGet, "/info/about/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>About</h1>")
	assert.Contains(t, rec.Body.String(), `content="We make chairs."`)

	rec = do(a, http.MethodGet, "/info/press/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(a, http.MethodGet, "/contact/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hi@example.com")
}

func TestImagesAndAssetsAreServed(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(a, http.MethodGet, "/Pictures/Chairs/1.jpg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))

	rec = do(a, http.MethodGet, "/public/site.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Crossfade")
}

func TestRevalidate(t *testing.T) {
	a := newTestApp(t, nil)
	ctx := context.Background()

	// warm the cache, then change the tree behind it
	_, err := a.Content.Collections(ctx)
	require.NoError(t, err)
	writeFiles(t, a.Config.PublicDir, map[string]string{"Pictures/Lamps/1.jpg": "x"})

	rec := do(a, http.MethodGet, "/api/revalidate?secret=wrong", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid secret"}`, rec.Body.String())
	cols, _ := a.Content.Collections(ctx)
	assert.Len(t, cols, 1, "a rejected call must not invalidate")

	rec = do(a, http.MethodGet, "/api/revalidate?secret="+testSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Revalidated bool  `json:"revalidated"`
		Now         int64 `json:"now"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Revalidated)
	assert.Positive(t, got.Now)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	cols, _ = a.Content.Collections(ctx)
	assert.Len(t, cols, 2)
}

func TestRevalidateWithoutConfiguredSecret(t *testing.T) {
	a := newTestApp(t, func(c *SiteConfig) { c.RevalidationSecret = "" })
	rec := do(a, http.MethodGet, "/api/revalidate?secret=", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRevalidateRateLimit(t *testing.T) {
	a := newTestApp(t, nil)
	for i := 0; i < 10; i++ {
		rec := do(a, http.MethodGet, "/api/revalidate?secret=guess", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i)
	}
	rec := do(a, http.MethodGet, "/api/revalidate?secret="+testSecret, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/revalidate?secret="+testSecret, nil)
	req.RemoteAddr = "198.51.100.7:4000"
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "limit is per client")
}

func TestRevalidateFailure(t *testing.T) {
	b := &flakyBackend{Memory: cache.NewMemory(), flushErr: assert.AnError}
	a := newTestApp(t, nil, WithCacheBackend(b))

	rec := do(a, http.MethodGet, "/api/revalidate?secret="+testSecret, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Revalidation failed", got["message"])
	assert.Contains(t, got["error"], assert.AnError.Error())
}

func TestThumbnails(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(a, http.MethodGet, "/thumbs/640/Pictures/Chairs/3.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = do(a, http.MethodGet, "/thumbs/640/Pictures/Chairs/3.png", http.Header{"If-None-Match": []string{etag}})
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = do(a, http.MethodGet, "/thumbs/333/Pictures/Chairs/3.png", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(a, http.MethodGet, "/thumbs/640/secrets/3.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(a, http.MethodGet, "/thumbs/640/Pictures/Chairs/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThumbnailFallbacks(t *testing.T) {
	a := newTestApp(t, nil)
	writeFiles(t, a.Config.PublicDir, map[string]string{
		"Pictures/Prints/a.avif":     "avif-bytes",
		"Pictures/Prints/broken.jpg": "jpeg-bytes",
	})

	rec := do(a, http.MethodGet, "/collections/prints/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `src="/Pictures/Prints/a.avif"`)
	assert.NotContains(t, body, "/thumbs/640/Pictures/Prints/a.avif")
	assert.Contains(t, body, `src="/thumbs/640/Pictures/Prints/broken.jpg"`)

	tests := []struct {
		thumb, original string
	}{
		{"/thumbs/640/Pictures/Prints/a.avif", "/Pictures/Prints/a.avif"},
		{"/thumbs/640/Pictures/Prints/broken.jpg", "/Pictures/Prints/broken.jpg"},
	}
	for _, tt := range tests {
		rec := do(a, http.MethodGet, tt.thumb, nil)
		require.Equal(t, http.StatusFound, rec.Code, tt.thumb)
		assert.Equal(t, tt.original, rec.Header().Get("Location"))

		rec = do(a, http.MethodGet, tt.original, nil)
		assert.Equal(t, http.StatusOK, rec.Code, tt.original)
	}
}

func TestWatcherPicksUpPageEdits(t *testing.T) {
	a := newTestApp(t, func(cfg *SiteConfig) { cfg.WatchContent = true })

	rec := do(a, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), `href="/info/cv/"`)

	writeFiles(t, a.Config.PagesDir, map[string]string{"cv.md": "# CV\n\nBorn 1980."})

	assert.Eventually(t, func() bool {
		return strings.Contains(do(a, http.MethodGet, "/", nil).Body.String(), `href="/info/cv/"`)
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSitemapAndFeed(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(a, http.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, loc := range []string{
		"https://studio.example/",
		"https://studio.example/collections/chairs/",
		"https://studio.example/works/chairs/oak-chair/",
		"https://studio.example/info/about/",
		"https://studio.example/contact/",
	} {
		assert.Contains(t, body, "<loc>"+loc+"</loc>")
	}

	rec = do(a, http.MethodGet, "/feed.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<enclosure url="https://studio.example/Pictures/Chairs/1.jpg" type="image/jpeg">`)
}

func TestRobotsDefault(t *testing.T) {
	a := newTestApp(t, nil)
	rec := do(a, http.MethodGet, "/robots.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://studio.example/sitemap.xml")
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(a, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	do(a, http.MethodGet, "/", nil)
	do(a, http.MethodGet, "/api/revalidate?secret=nope", nil)

	rec = do(a, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `folio_revalidations_total{outcome="unauthorized"} 1`)
	assert.Contains(t, body, `folio_content_cache_requests_total{op="collections",result="miss"}`)
	assert.Contains(t, body, "folio_http_requests_total")
}

func TestCustomProvider(t *testing.T) {
	p := newFakeProvider()
	a := newTestApp(t, nil, WithProvider(p))

	rec := do(a, http.MethodGet, "/works/furniture/oak-chair/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Furniture")

	rec = do(a, http.MethodGet, "/thumbs/640/Pictures/Chairs/3.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "thumbnails need the filesystem source")
}

func TestAdminRoutesDisabledWithoutPassword(t *testing.T) {
	a := newTestApp(t, nil)
	rec := do(a, http.MethodGet, "/admin/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitRequiresSessionSecretForAdmin(t *testing.T) {
	a := New(SiteConfig{AdminPassword: "pw"}, WithProvider(newFakeProvider()))
	defer a.Close()
	err := a.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SessionSecret")
}

func TestUnknownSource(t *testing.T) {
	a := New(SiteConfig{Source: "ftp"})
	defer a.Close()
	assert.ErrorContains(t, a.Init(context.Background()), `unknown content source "ftp"`)
}

func TestAdminFlow(t *testing.T) {
	a := newTestApp(t, func(c *SiteConfig) {
		c.AdminPassword = "letmein"
		c.SessionSecret = "0123456789abcdef0123456789abcdef"
	})

	rec := do(a, http.MethodGet, "/admin/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/admin/login/"`)
	csrf := cookieValue(rec, "_csrf")
	require.NotEmpty(t, csrf)

	post := func(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		form.Set("_csrf", csrf)
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "_csrf", Value: csrf})
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		a.Echo.ServeHTTP(rec, req)
		return rec
	}

	rec = post("/admin/login/", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password.")

	rec = post("/admin/login/", url.Values{"password": {"letmein"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			session = c
		}
	}
	require.NotNil(t, session)

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(session)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: csrf})
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<th scope="row">Collections</th><td>1</td>`)
	assert.Contains(t, rec.Body.String(), `<th scope="row">Content source</th><td>filesystem</td>`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = post("/admin/refresh/", url.Values{}, session)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/?msg=Content+refreshed.", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodPost, "/admin/refresh/", nil)
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "missing CSRF token")
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
