package media

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	writePNG(t, p, 40, 30)

	w, h, err := Probe(p)
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
}

func TestProbeRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(p, []byte("not an image"), 0o644))

	_, _, err := Probe(p)
	assert.Error(t, err)

	_, _, err = Probe(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDimensionStoreCachesUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "img", "a.png")
	writePNG(t, img, 20, 10)

	s, err := NewDimensionStore(filepath.Join(dir, "data", "dims.db"))
	require.NoError(t, err)
	defer s.Close()

	calls := 0
	s.probe = func(path string) (int, int, error) {
		calls++
		return Probe(path)
	}

	for i := 0; i < 3; i++ {
		w, h, err := s.Dimensions(img)
		require.NoError(t, err)
		assert.Equal(t, 20, w)
		assert.Equal(t, 10, h)
	}
	assert.Equal(t, 1, calls, "unchanged file should be probed once")

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDimensionStoreReprobesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.png")
	writePNG(t, img, 20, 10)

	s, err := NewDimensionStore(filepath.Join(dir, "dims.db"))
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Dimensions(img)
	require.NoError(t, err)

	writePNG(t, img, 64, 48)
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(img, later, later))

	w, h, err := s.Dimensions(img)
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "row should be replaced, not duplicated")
}

func TestDimensionStoreMissingFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDimensionStore(filepath.Join(dir, "dims.db"))
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Dimensions(filepath.Join(dir, "nope.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestThumbnailWidthAllowList(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "src", "chairs", "a.png"), 100, 50)

	th, err := NewThumbnailer(filepath.Join(dir, "src"), filepath.Join(dir, "cache"), []int{32, 64}, nil)
	require.NoError(t, err)

	tests := []struct {
		width int
		ok    bool
	}{
		{32, true},
		{64, true},
		{50, false},
		{0, false},
		{4000, false},
	}
	for _, tt := range tests {
		_, err := th.Thumbnail("chairs/a.png", tt.width)
		if tt.ok {
			assert.NoError(t, err, "width %d", tt.width)
		} else {
			assert.ErrorIs(t, err, ErrWidthNotAllowed, "width %d", tt.width)
		}
	}
}

func TestThumbnailResizesAndCaches(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "src", "My Folder", "a.png"), 100, 50)

	th, err := NewThumbnailer(filepath.Join(dir, "src"), filepath.Join(dir, "cache"), []int{40}, nil)
	require.NoError(t, err)

	first, err := th.Thumbnail("My Folder/a.png", 40)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ETag)

	f, err := os.Open(first.Path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 20, cfg.Height)

	stat1, err := os.Stat(first.Path)
	require.NoError(t, err)

	second, err := th.Thumbnail("My Folder/a.png", 40)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	stat2, err := os.Stat(second.Path)
	require.NoError(t, err)
	assert.Equal(t, stat1.ModTime(), stat2.ModTime(), "cached rendition should not be rewritten")
}

func TestThumbnailDoesNotUpscale(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "src", "a.png"), 30, 15)

	th, err := NewThumbnailer(filepath.Join(dir, "src"), filepath.Join(dir, "cache"), []int{320}, nil)
	require.NoError(t, err)

	thumb, err := th.Thumbnail("a.png", 320)
	require.NoError(t, err)
	f, err := os.Open(thumb.Path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Width)
}

func TestThumbnailRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "secret.png"), 10, 10)
	th, err := NewThumbnailer(filepath.Join(dir, "src"), filepath.Join(dir, "cache"), []int{32}, nil)
	require.NoError(t, err)

	for _, rel := range []string{"../secret.png", "a/../../secret.png", "", "a//b.png"} {
		_, err := th.Thumbnail(rel, 32)
		assert.ErrorIs(t, err, ErrBadPath, rel)
	}

	_, err = th.Thumbnail("missing.png", 32)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestThumbnailUndecodableSources(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.avif"), []byte("avif-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.jpg"), []byte("not a jpeg"), 0o644))
	th, err := NewThumbnailer(src, filepath.Join(dir, "cache"), []int{32}, nil)
	require.NoError(t, err)

	for _, rel := range []string{"a.avif", "broken.jpg"} {
		_, err := th.Thumbnail(rel, 32)
		assert.ErrorIs(t, err, ErrUndecodable, rel)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Empty(t, entries, "failed renders must not leave files behind")
}

func TestResizable(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"a.png", true},
		{"a.gif", true},
		{"a.webp", true},
		{"a.avif", false},
		{"a", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resizable(tt.name), tt.name)
	}
}

func TestThumbnailConcurrentRequests(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "src", "a.png"), 200, 100)
	th, err := NewThumbnailer(filepath.Join(dir, "src"), filepath.Join(dir, "cache"), []int{64}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	paths := make([]string, 8)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			thumb, err := th.Thumbnail("a.png", 64)
			if err == nil {
				paths[i] = thumb.Path
			}
		}(i)
	}
	wg.Wait()
	for _, p := range paths {
		assert.Equal(t, paths[0], p)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
