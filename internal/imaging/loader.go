package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of layer source images.
//
// Entries are keyed by the cleaned path and remember the file's modification
// time. A Load after the file changed on disk decodes it again, which lets a
// watch loop rebuild a document without clearing the whole cache.
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("art/hero.png")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cacheEntry
}

type cacheEntry struct {
	img     image.Image
	format  string
	modTime time.Time
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cacheEntry),
	}
}

// Load returns the decoded image at path. PNG, JPEG and GIF are supported.
// JPEG orientation tags are applied.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *ImageCache) load(path string) (cacheEntry, error) {
	key := filepath.Clean(path)

	stat, err := os.Stat(key)
	if err != nil {
		return cacheEntry{}, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.images[key]
	c.mu.RUnlock()
	if ok && e.modTime.Equal(stat.ModTime()) {
		return e, nil
	}

	f, err := os.Open(key)
	if err != nil {
		return cacheEntry{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return cacheEntry{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return cacheEntry{}, fmt.Errorf("failed to read image: %w", err)
	}
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return cacheEntry{}, fmt.Errorf("failed to decode image: %w", err)
	}

	e = cacheEntry{img: img, format: format, modTime: stat.ModTime()}
	c.mu.Lock()
	c.images[key] = e
	c.mu.Unlock()

	return e, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Evict removes the image loaded from path, if any.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, filepath.Clean(path))
	c.mu.Unlock()
}

// ImageInfo contains metadata about an image file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoder name: "png", "jpeg" or "gif".
	Format string `json:"format"`

	// ColorDepth is "8-bit" or "16-bit" per channel.
	ColorDepth string `json:"color_depth"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch e.img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Paletted:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := e.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        e.format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// Place draws img at the top-left of a transparent width x height canvas.
// Pixels outside the canvas are dropped.
func Place(img image.Image, width, height int) *image.NRGBA {
	canvas := imaging.New(width, height, color.Transparent)
	if img == nil {
		return canvas
	}
	b := img.Bounds()
	src := imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Min.Y+height))
	return imaging.Paste(canvas, src, image.Point{})
}

// SavePNG writes img to path as PNG at the given compression level.
func SavePNG(path string, img image.Image, level png.CompressionLevel) error {
	if err := imaging.Save(img, path, imaging.PNGCompressionLevel(level)); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}
