package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// pageExtensions lists the file extensions treated as page images.
var pageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsPageFile reports whether name has a page image extension.
func IsPageFile(name string) bool {
	return pageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListPages returns the page image files directly inside folder, sorted by path.
//
// Subdirectories (including a previously written panels directory) are not
// descended into. The sort is a plain byte-wise sort of the full path, which is
// the order pages are processed and reported in.
func ListPages(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read page folder: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsPageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(folder, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadPage decodes a page image from disk into a zero-origin NRGBA image.
//
// Supported formats are PNG, JPEG, GIF, WebP, BMP and TIFF. EXIF orientation
// is not applied; scans are expected upright.
func LoadPage(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}

	return imaging.Clone(img), nil
}

// Clone returns a zero-origin NRGBA copy of img that can be painted on freely.
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// ImageCache provides thread-safe caching of decoded pages to avoid redundant disk reads.
//
// Pages are keyed by the exact path string passed to Load. The MCP server keeps
// one cache for the lifetime of the process; the extraction pipeline does not
// cache, since a page's pixels are only needed while that page is processed.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*image.NRGBA
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*image.NRGBA),
	}
}

// Load retrieves a page from the cache or decodes it from disk if not cached.
//
// Callers must not modify the returned image; take a copy with imaging.Clone
// before painting on it.
func (c *ImageCache) Load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := LoadPage(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached pages.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// PageInfo describes a decoded page.
type PageInfo struct {
	// Path is the source path of the page.
	Path string `json:"path"`

	// Width is the page width in pixels.
	Width int `json:"width"`

	// Height is the page height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension ("png", "jpeg", "webp", ...).
	Format string `json:"format"`
}

// Info returns metadata for a decoded page.
func Info(path string, img image.Image) PageInfo {
	b := img.Bounds()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch format {
	case "jpg":
		format = "jpeg"
	case "tif":
		format = "tiff"
	case "":
		format = "unknown"
	}
	return PageInfo{
		Path:   path,
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
	}
}
