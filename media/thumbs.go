package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
)

const jpegQuality = 80

// DefaultWidths are the rendition widths served when none are configured.
var DefaultWidths = []int{320, 640, 1200, 1920}

var (
	// ErrWidthNotAllowed is returned for widths outside the configured set.
	ErrWidthNotAllowed = errors.New("media: width not allowed")
	// ErrBadPath is returned for paths that escape the source root.
	ErrBadPath = errors.New("media: bad path")
	// ErrUndecodable is returned when the source cannot be decoded, either
	// because its format has no decoder or because the file is damaged.
	ErrUndecodable = errors.New("media: undecodable image")
)

// resizable lists the extensions with a registered decoder.
var resizable = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Resizable reports whether name has a format the Thumbnailer can decode.
func Resizable(name string) bool {
	return resizable[strings.ToLower(filepath.Ext(name))]
}

// Thumb is a rendition written to the disk cache.
type Thumb struct {
	Path string
	ETag string
}

// Thumbnailer resizes images below Root into JPEG renditions kept in
// CacheDir. Cache entries are named after a hash of the source path, its
// size and mtime, and the width, so an edited source yields a new entry.
type Thumbnailer struct {
	root     string
	cacheDir string
	widths   []int
	log      *zap.Logger
	group    singleflight.Group
}

// NewThumbnailer returns a Thumbnailer. Empty widths fall back to DefaultWidths.
func NewThumbnailer(root, cacheDir string, widths []int, logger *zap.Logger) (*Thumbnailer, error) {
	if len(widths) == 0 {
		widths = DefaultWidths
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create thumb cache: %w", err)
	}
	return &Thumbnailer{
		root:     root,
		cacheDir: cacheDir,
		widths:   slices.Clone(widths),
		log:      logger.Named("thumbs"),
	}, nil
}

// Widths returns the allowed rendition widths.
func (t *Thumbnailer) Widths() []int {
	return slices.Clone(t.widths)
}

// Allowed reports whether width is in the configured set.
func (t *Thumbnailer) Allowed(width int) bool {
	return slices.Contains(t.widths, width)
}

// Thumbnail returns the cached rendition of rel at width, generating it on
// first request. Concurrent requests for the same rendition share one encode.
func (t *Thumbnailer) Thumbnail(rel string, width int) (Thumb, error) {
	if !t.Allowed(width) {
		return Thumb{}, ErrWidthNotAllowed
	}
	src, err := t.resolve(rel)
	if err != nil {
		return Thumb{}, err
	}
	info, err := os.Stat(src)
	if err != nil {
		return Thumb{}, err
	}
	if info.IsDir() {
		return Thumb{}, os.ErrNotExist
	}
	if !Resizable(src) {
		return Thumb{}, ErrUndecodable
	}

	sum := xxhash.Sum64String(src + "\x00" + strconv.FormatInt(info.Size(), 10) + "\x00" +
		strconv.FormatInt(info.ModTime().UnixNano(), 10) + "\x00" + strconv.Itoa(width))
	key := strconv.FormatUint(sum, 16)
	thumb := Thumb{
		Path: filepath.Join(t.cacheDir, key+".jpg"),
		ETag: `"` + key + `"`,
	}
	if _, err := os.Stat(thumb.Path); err == nil {
		return thumb, nil
	}

	_, err, _ = t.group.Do(key, func() (interface{}, error) {
		if _, err := os.Stat(thumb.Path); err == nil {
			return nil, nil
		}
		data, err := resizeFile(src, width)
		if err != nil {
			return nil, err
		}
		tmp := thumb.Path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return nil, err
		}
		if err := os.Rename(tmp, thumb.Path); err != nil {
			os.Remove(tmp)
			return nil, err
		}
		t.log.Debug("rendition written", zap.String("src", rel), zap.Int("width", width))
		return nil, nil
	})
	if err != nil {
		return Thumb{}, err
	}
	return thumb, nil
}

// resolve maps a slash-separated path to a file below the root.
func (t *Thumbnailer) resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", ErrBadPath
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return "", ErrBadPath
		}
	}
	return filepath.Join(t.root, filepath.FromSlash(rel)), nil
}

func resizeFile(path string, width int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return resize(img, width)
}

// resize scales img down to width, keeping the aspect ratio, and encodes it
// as JPEG. Narrower images are re-encoded at their own size.
func resize(img image.Image, width int) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
