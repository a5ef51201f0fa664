// Package media reads image headers, caches their dimensions, and produces
// resized JPEG renditions of images found on disk.
package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// Probe returns the pixel dimensions of the image at path by decoding only
// its header. Formats without a registered decoder (avif) return an error.
func Probe(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("media: probe %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
