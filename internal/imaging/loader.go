package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache provides thread-safe caching of decoded plate images.
//
// Detection is re-run every time the user moves a slider, so the decoded
// image is kept in memory keyed by its file path. The cache holds at most
// Capacity images; when full, the least recently loaded entry is evicted.
// A capacity of zero means unbounded.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu       sync.RWMutex
	images   map[string]image.Image
	order    []string
	capacity int
}

// NewImageCache creates an empty cache holding at most capacity images.
func NewImageCache(capacity int) *ImageCache {
	return &ImageCache{
		images:   make(map[string]image.Image),
		capacity: capacity,
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, TIFF and BMP. The image is cached
// under the exact path string provided.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, _, err := Decode(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.images[path]; ok {
		return cached, nil
	}
	if c.capacity > 0 && len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.images, oldest)
	}
	c.images[path] = img
	c.order = append(c.order, path)

	return img, nil
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
	c.images = make(map[string]image.Image)
	c.order = nil
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[path]; !ok {
		return
	}
	delete(c.images, path)
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Decode reads and decodes one image file without caching it. The format
// name reported by the registered decoder is returned alongside.
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// ImageInfo contains metadata about a plate image file.
type ImageInfo struct {
	// Filename is the base name of the file.
	Filename string `json:"filename"`

	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name: "png", "jpeg", "gif", "tiff" or "bmp".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	// Many microscope cameras export 16-bit TIFF; detection works on the
	// top 8 bits.
	ColorDepth string `json:"color_depth"`

	// Grayscale is true for single-channel images.
	Grayscale bool `json:"grayscale"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and returns its metadata.
//
// The format comes from the file header via image.DecodeConfig, so a TIFF
// saved with a .tif, .tiff or missing extension is reported the same way.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	colorDepth := "8-bit"
	grayscale := false
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64:
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
		grayscale = true
	case *image.Gray:
		grayscale = true
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Filename:      filepath.Base(path),
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    colorDepth,
		Grayscale:     grayscale,
		FileSizeBytes: stat.Size(),
	}, nil
}
